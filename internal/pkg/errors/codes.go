package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidInput    = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrServiceUnavail  = 1005
	ErrUpstreamFailure = 1006

	// Catalog errors (2000-2999)
	ErrCatalogQueryFailed  = 2000
	ErrCatalogUpdateFailed = 2001
	ErrCatalogUnavailable  = 2002
	ErrEmptyFilePath       = 2003
	ErrInvalidFileList     = 2004

	// File server admin API errors (3000-3999)
	ErrAdminKeyMissing   = 3000
	ErrAdminRequest      = 3001
	ErrAdminUnavailable  = 3002
	ErrPartialFailure    = 3003
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidInput:    {ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},
	ErrUpstreamFailure: {ErrUpstreamFailure, http.StatusInternalServerError, "Upstream request failed"},

	// Catalog errors
	ErrCatalogQueryFailed:  {ErrCatalogQueryFailed, http.StatusInternalServerError, "Catalog query failed"},
	ErrCatalogUpdateFailed: {ErrCatalogUpdateFailed, http.StatusInternalServerError, "Catalog update failed"},
	ErrCatalogUnavailable:  {ErrCatalogUnavailable, http.StatusServiceUnavailable, "Catalog database unavailable"},
	ErrEmptyFilePath:       {ErrEmptyFilePath, http.StatusBadRequest, "filePath is required"},
	ErrInvalidFileList:     {ErrInvalidFileList, http.StatusBadRequest, "deletedFiles must be a non-empty array"},

	// File server admin API errors
	ErrAdminKeyMissing:  {ErrAdminKeyMissing, http.StatusUnauthorized, "Admin API key not configured"},
	ErrAdminRequest:     {ErrAdminRequest, http.StatusBadGateway, "Admin API request failed"},
	ErrAdminUnavailable: {ErrAdminUnavailable, http.StatusServiceUnavailable, "Admin API unavailable"},
	ErrPartialFailure:   {ErrPartialFailure, http.StatusOK, "Operation partially failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
