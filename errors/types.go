package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Channel / transport errors
	ErrCodeChannelClosed     ErrorCode = "CHANNEL_CLOSED"
	ErrCodeChannelDial       ErrorCode = "CHANNEL_DIAL"
	ErrCodeFrameInvalid      ErrorCode = "FRAME_INVALID"
	ErrCodeFrameUnknownType  ErrorCode = "FRAME_UNKNOWN_TYPE"
	ErrCodeSyncUnavailable   ErrorCode = "SYNC_UNAVAILABLE"
	ErrCodeCredentialMissing ErrorCode = "CREDENTIAL_MISSING"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// OrbitError represents a structured error with context
type OrbitError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *OrbitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *OrbitError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *OrbitError) WithDetail(key string, value interface{}) *OrbitError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *OrbitError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new OrbitError
func New(code ErrorCode, message string) *OrbitError {
	return &OrbitError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an OrbitError
func Wrap(err error, code ErrorCode, message string) *OrbitError {
	return &OrbitError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific OrbitError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	orbitErr, ok := err.(*OrbitError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return orbitErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	orbitErr, ok := err.(*OrbitError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return orbitErr.Code
}
