package app

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-minifs/internal/services"
)

// ImageTarget selects the image a command works on
type ImageTarget struct {
	ImagePath string
	Remote    string
}

// Validate ensures the image target is usable
func (it *ImageTarget) Validate() error {
	if it.ImagePath == "" && it.Remote == "" {
		return NewError(ErrCodeInvalidInput, "image path is required", nil)
	}
	return nil
}

// IsRemote reports whether commands go to a server instead of a local image
func (it *ImageTarget) IsRemote() bool {
	return it.Remote != ""
}

// String returns a string representation of the image target
func (it *ImageTarget) String() string {
	if it.IsRemote() {
		return "Server: " + it.Remote
	}
	return "Image: " + it.ImagePath
}

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeIntegrity      = "INTEGRITY"
	ErrCodeExhausted      = "EXHAUSTED"
	ErrCodeIOFailure      = "IO_FAILURE"
	ErrCodeRemote         = "REMOTE"
	ErrCodeNotImplemented = "NOT_IMPLEMENTED"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// FromError maps an engine error to a CommonError with a user-facing message
func FromError(err error) *CommonError {
	if err == nil {
		return nil
	}

	var common *CommonError
	if errors.As(err, &common) {
		return common
	}

	switch services.KindOf(err) {
	case services.KindIntegrity:
		return NewError(ErrCodeIntegrity, "image failed integrity check", err)
	case services.KindExhausted:
		return NewError(ErrCodeExhausted, "filesystem limit reached", err)
	case services.KindLogical:
		return NewError(ErrCodeInvalidInput, "invalid request", err)
	default:
		return NewError(ErrCodeIOFailure, "image access failed", err)
	}
}
