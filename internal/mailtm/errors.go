package mailtm

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the remote API's status semantics. Every failed
// request wraps one of these, so callers can classify with errors.Is.
var (
	// ErrMissingArgument maps 400: the payload is missing or incomplete.
	ErrMissingArgument = errors.New("payload is missing or incomplete")
	// ErrTokenInvalid maps 401: the bearer token is wrong or absent.
	ErrTokenInvalid = errors.New("account token is invalid or missing")
	// ErrEntityNotFound maps 404: the account or message does not exist.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrMethodNotAllowed maps 405.
	ErrMethodNotAllowed = errors.New("method not allowed for this endpoint")
	// ErrRefusedToProcess maps 418: the server refused the request.
	ErrRefusedToProcess = errors.New("server refused to process the request")
	// ErrEntityUnprocessable maps 422: the payload failed validation, for
	// example an address on a wrong domain.
	ErrEntityUnprocessable = errors.New("unprocessable entity")
	// ErrRateLimited maps 429: the service allows 8 requests per second.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// APIError carries the HTTP status a request failed with, wrapping the
// matching sentinel error.
type APIError struct {
	StatusCode int
	err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mail.tm: %v (status %d)", e.err, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.err }

// statusError maps a non-2xx response status to a typed error.
func statusError(status int) error {
	switch status {
	case 400:
		return &APIError{StatusCode: status, err: ErrMissingArgument}
	case 401:
		return &APIError{StatusCode: status, err: ErrTokenInvalid}
	case 404:
		return &APIError{StatusCode: status, err: ErrEntityNotFound}
	case 405:
		return &APIError{StatusCode: status, err: ErrMethodNotAllowed}
	case 418:
		return &APIError{StatusCode: status, err: ErrRefusedToProcess}
	case 422:
		return &APIError{StatusCode: status, err: ErrEntityUnprocessable}
	case 429:
		return &APIError{StatusCode: status, err: ErrRateLimited}
	default:
		return &APIError{StatusCode: status, err: errors.New("unexpected response")}
	}
}
