package server

// Request headers.
const (
	HeaderAPIKey    = "X-API-Key"
	HeaderShareCode = "X-Share-Code"
	HeaderProjectID = "X-Project-Id"
	HeaderRequestID = "X-Request-Id"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// Code classifies an error response.
type Code string

const (
	CodeConflict           Code = "conflict"
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeEncoding           Code = "encoding"
	CodeStorageUnavailable Code = "storage_unavailable"
	CodeInternal           Code = "internal"
)

// PushRequest is the body of POST /push.
type PushRequest struct {
	ProjectID        string `json:"project_id"`
	EncryptedContent string `json:"encrypted_content"`
}

// PushResponse returns the access key of a new record.
type PushResponse struct {
	Message   string `json:"message"`
	AccessKey string `json:"access_key"`
}

// UpdateRequest is the body of PUT /update. ProjectID is informational;
// the record is selected by the access key alone.
type UpdateRequest struct {
	ProjectID        string `json:"project_id,omitempty"`
	EncryptedContent string `json:"encrypted_content"`
}

// ShareRequest is the body of POST /share.
type ShareRequest struct {
	ProjectID        string `json:"project_id"`
	EncryptedContent string `json:"encrypted_content"`
	ShareCode        string `json:"share_code"`
}

// ContentResponse carries a sealed payload back to the client.
type ContentResponse struct {
	EncryptedContent string `json:"encrypted_content"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PingResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   Code   `json:"code"`
}
