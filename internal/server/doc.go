// Package server exposes a store.Store over HTTP+JSON.
//
// Routes:
//
//	POST   /push     {project_id, encrypted_content}             -> {message, access_key}
//	GET    /pull     X-API-Key                                    -> {encrypted_content}
//	PUT    /update   X-API-Key, {project_id, encrypted_content}   -> {message}
//	DELETE /delete   X-API-Key                                    -> {message}
//	POST   /share    {project_id, encrypted_content, share_code}  -> {message}
//	GET    /share    X-Share-Code, X-Project-Id                   -> {encrypted_content}
//	GET    /ping                                                  -> {status, store}
//
// encrypted_content is the standard base64 encoding of a sealed payload.
// The server never sees a plaintext or a key; it stores and returns opaque
// bytes.
//
// Failures are answered with {detail, code}, where code is one of the Code
// constants. Missing credentials or fields are rejected before the store is
// touched.
package server
