package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// ErrorType represents different categories of GitHub API errors.
type ErrorType string

const (
	ErrorTypeAuth      ErrorType = "authentication"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeThrottled ErrorType = "throttled"
	ErrorTypeNetwork   ErrorType = "network"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// APIError represents a structured error from GitHub operations. Failures
// are classified at the point of occurrence and converted into state or an
// operator-facing message; none of them propagate into the reconciler or
// the setup flow as an unhandled fault.
type APIError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Cause    error     `json:"-"`
	Resource string    `json:"resource,omitempty"`

	// ResumeAt is set for throttled errors: requests before this time
	// will keep failing. The flow surfaces it and does not retry.
	ResumeAt time.Time `json:"resume_at,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is a not-found classification.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeNotFound
}

// IsThrottled reports whether err is a throttled classification.
func IsThrottled(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeThrottled
}

// ThrottledUntil returns the resume time carried by a throttled error and
// whether err was one.
func ThrottledUntil(err error) (time.Time, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Type == ErrorTypeThrottled {
		return apiErr.ResumeAt, true
	}
	return time.Time{}, false
}

// WrapAPIError wraps a go-github or transport error into our structured
// error type.
func WrapAPIError(err error, resource string) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Resource == "" {
			apiErr.Resource = resource
		}
		return apiErr
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &APIError{
			Type:     ErrorTypeThrottled,
			Message:  fmt.Sprintf("rate limit exceeded, resets at %v", rateErr.Rate.Reset.Time),
			Cause:    err,
			Resource: resource,
			ResumeAt: rateErr.Rate.Reset.Time,
		}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return classifyStatus(respErr.Response.StatusCode, respErr.Message, resource, time.Time{}, err)
	}

	if isNetworkError(err) {
		return &APIError{
			Type:     ErrorTypeNetwork,
			Message:  "network error occurred, check your connection and try again",
			Cause:    err,
			Resource: resource,
		}
	}

	return &APIError{
		Type:     ErrorTypeUnknown,
		Message:  err.Error(),
		Cause:    err,
		Resource: resource,
	}
}

// classifyStatus maps an HTTP status code from GitHub into a structured
// error. resumeAt is used for throttled responses when the caller parsed a
// rate-limit reset header.
func classifyStatus(status int, message, resource string, resumeAt time.Time, cause error) *APIError {
	baseErr := &APIError{
		Message:  message,
		Resource: resource,
		Cause:    cause,
	}

	switch status {
	case http.StatusUnauthorized:
		baseErr.Type = ErrorTypeAuth
		baseErr.Message = "authentication failed, check your GitHub credentials"

	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(message), "rate limit") || !resumeAt.IsZero() {
			baseErr.Type = ErrorTypeThrottled
			baseErr.ResumeAt = resumeAt
			baseErr.Message = "GitHub API rate limit exceeded"
			if !resumeAt.IsZero() {
				baseErr.Message = fmt.Sprintf("GitHub API rate limit exceeded, resets at %v", resumeAt)
			}
		} else {
			baseErr.Type = ErrorTypeAuth
			baseErr.Message = "insufficient permissions, your token may be missing required scopes"
		}

	case http.StatusNotFound:
		baseErr.Type = ErrorTypeNotFound
		if strings.Contains(resource, "org") {
			baseErr.Message = "organization not found"
		} else if strings.Contains(resource, "user") {
			baseErr.Message = "user not found"
		} else {
			baseErr.Message = "resource not found"
		}

	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		baseErr.Type = ErrorTypeNetwork
		baseErr.Message = "GitHub is temporarily unavailable, try again later"

	default:
		baseErr.Type = ErrorTypeUnknown
		if baseErr.Message == "" {
			baseErr.Message = fmt.Sprintf("unexpected status %d", status)
		}
	}

	return baseErr
}

// isNetworkError checks if an error is a network-related error.
func isNetworkError(err error) bool {
	errStr := strings.ToLower(err.Error())
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"network is unreachable",
		"no such host",
		"timeout",
		"dial tcp",
		"i/o timeout",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}
