package fileserver

import (
	"errors"
	"fmt"
)

// AdminAPIError carries the HTTP status and server-provided message of
// a failed admin API call.
type AdminAPIError struct {
	Status  int
	Message string
}

func (e *AdminAPIError) Error() string {
	return fmt.Sprintf("admin api error (status=%d): %s", e.Status, e.Message)
}

// NewAdminAPIError creates an AdminAPIError
func NewAdminAPIError(status int, message string) *AdminAPIError {
	return &AdminAPIError{
		Status:  status,
		Message: message,
	}
}

// IsAdminAPIError reports whether err is an AdminAPIError with the
// given status.
func IsAdminAPIError(err error, status int) bool {
	var apiErr *AdminAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}

// Predefined errors
var (
	// ErrMissingAPIKey is returned client-side, before any request is
	// issued, when no key is configured.
	ErrMissingAPIKey = errors.New("fileserver: admin api key is not configured")
)
