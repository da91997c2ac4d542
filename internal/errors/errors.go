package errors

import "errors"

// Protocol errors describe the state of records held by the server.
var (
	// ErrConflict indicates an active record already exists for the project.
	ErrConflict = errors.New("a record for this project already exists")

	// ErrNotFound indicates no record matches the supplied credential.
	ErrNotFound = errors.New("record not found")

	// ErrBadRequest indicates a required header or field was missing.
	ErrBadRequest = errors.New("bad request")
)

// Cryptographic errors indicate failures while sealing or opening payloads.
var (
	// ErrAuthenticationFailure indicates the integrity tag did not verify.
	// Either the key is wrong or the payload was tampered with.
	ErrAuthenticationFailure = errors.New("message authentication failed")

	// ErrEncoding indicates malformed base64 or JSON.
	ErrEncoding = errors.New("malformed encoding")

	// ErrInvalidKeyLength indicates a key that is not 32 bytes.
	ErrInvalidKeyLength = errors.New("invalid encryption key length")
)

// Infrastructure errors are transient and usually safe to retry.
var (
	// ErrStorageUnavailable indicates the persistence layer could not be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTransport indicates the server could not be reached or answered garbage.
	ErrTransport = errors.New("transport error")
)

// Client state errors concern the local configuration file.
var (
	// ErrUnknownProject indicates the project has no entry in the local config.
	ErrUnknownProject = errors.New("project not found in local config")

	// ErrDestinationExists indicates the output file exists and overwrite was not requested.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrConfig indicates the local config is missing fields or malformed.
	ErrConfig = errors.New("invalid configuration")

	// ErrInvalidArgument indicates a malformed command argument, such as a
	// project id or a date.
	ErrInvalidArgument = errors.New("invalid argument")
)
