package server

import (
	"errors"
	"net/http"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
)

// classify maps an error to a status and a response code. Conflict is
// answered with 400 and infrastructure failures with 500, as deployed
// clients expect; the code field tells them apart.
func classify(err error) (int, Code) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, kerrors.ErrConflict):
		return http.StatusBadRequest, CodeConflict
	case errors.Is(err, kerrors.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, CodeBadRequest
	case errors.Is(err, kerrors.ErrBadRequest):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, kerrors.ErrEncoding):
		return http.StatusBadRequest, CodeEncoding
	case errors.Is(err, kerrors.ErrStorageUnavailable):
		return http.StatusInternalServerError, CodeStorageUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// CodeError returns the sentinel matching a response code, or nil if the
// code is unknown.
func CodeError(code Code) error {
	switch code {
	case CodeConflict:
		return kerrors.ErrConflict
	case CodeNotFound:
		return kerrors.ErrNotFound
	case CodeBadRequest:
		return kerrors.ErrBadRequest
	case CodeEncoding:
		return kerrors.ErrEncoding
	case CodeStorageUnavailable:
		return kerrors.ErrStorageUnavailable
	default:
		return nil
	}
}

// StatusError returns the sentinel for a bare HTTP status, for responses
// without a decodable body.
func StatusError(status int) error {
	switch {
	case status == http.StatusNotFound:
		return kerrors.ErrNotFound
	case status == http.StatusServiceUnavailable:
		return kerrors.ErrStorageUnavailable
	case status >= 400 && status < 500:
		return kerrors.ErrBadRequest
	default:
		return nil
	}
}
