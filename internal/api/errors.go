package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/scribe/internal/decode"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// isClientError reports whether err was caused by the request rather than
// the server: malformed input, a rejected configuration, or a setting that
// would divide by zero.
func isClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, decode.ErrConfiguration) ||
		errors.Is(err, decode.ErrArithmetic)
}

func errorStatus(err error) (int, string) {
	if isClientError(err) {
		return http.StatusBadRequest, "invalid_request_error"
	}
	return http.StatusInternalServerError, "server_error"
}
