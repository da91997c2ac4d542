// Package client talks to a dotenvpull server.
//
// Payloads cross the wire sealed; the client base64-encodes them on the way
// out and decodes them on the way back. Error responses are mapped back to
// the sentinels of internal/errors by their code, falling back to the HTTP
// status. Failures to reach the server, or answers that are not the
// protocol, are ErrTransport.
package client
