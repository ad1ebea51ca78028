package ovh

import (
	"context"
	"errors"
	"net/http"

	"github.com/ovh/go-ovh/ovh"
)

// IsTransient reports whether err is worth retrying: a transport failure,
// a server-side error or rate limiting.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *ovh.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
	}

	// Anything that never produced an API response is a network failure.
	return true
}

// IsPermanent reports whether err is an API error that must not be retried.
func IsPermanent(err error) bool {
	var apiErr *ovh.APIError
	return errors.As(err, &apiErr) && !IsTransient(err)
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// StatusCode returns the HTTP status of an API error, or 0.
func StatusCode(err error) int {
	var apiErr *ovh.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func hasStatus(err error, code int) bool {
	return err != nil && StatusCode(err) == code
}
