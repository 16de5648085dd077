package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidURL    = errors.New("invalid URL format")
	ErrPriceNotFound = errors.New("could not find price on this page")

	ErrTrackerNotFound = errors.New("tracker not found")
)

// FetchError is a transport-level failure: timeout, DNS, refused or reset connection.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPStatusError reports a page that was fetched but answered with a non-success status.
type HTTPStatusError struct {
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("failed to fetch page (Status: %d)", e.Status)
}

// StatusCode maps an extraction error to the HTTP status the API answers with.
// Transport failures, like any other unexpected error, are a 500.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, ErrPriceNotFound):
		return http.StatusNotFound
	case errors.As(err, &statusErr):
		if statusErr.Status < 300 || statusErr.Status > 599 {
			return http.StatusBadGateway
		}
		return statusErr.Status
	default:
		return http.StatusInternalServerError
	}
}
