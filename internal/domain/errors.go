package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrNoSourceImage      = errors.New("no source image selected")
	ErrBlankPrompt        = errors.New("prompt is blank")
	ErrGenerationInFlight = errors.New("generation already in flight")
	ErrImageTooLarge      = errors.New("image exceeds size limit")
	ErrUnsupportedImage   = errors.New("unsupported image type")
	ErrNoImage            = errors.New("no image returned")
)

// IsValidation reports whether err is a precondition failure that should be
// surfaced inline without contacting the provider.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoSourceImage) ||
		errors.Is(err, ErrBlankPrompt) ||
		errors.Is(err, ErrImageTooLarge) ||
		errors.Is(err, ErrUnsupportedImage)
}

// RemoteError describes a failed exchange with the image provider. Message is
// safe to show to the user; Cause carries the underlying failure for logs.
type RemoteError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *RemoteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Cause }

// NewRemoteError wraps a provider failure with a user-facing message.
func NewRemoteError(provider, message string, cause error) *RemoteError {
	return &RemoteError{Provider: provider, Message: message, Cause: cause}
}

// UserMessage extracts the short message to display near the action controls.
// Unknown failures collapse to a generic fallback; the caller is expected to
// log the original error for diagnostics.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if IsValidation(err) || errors.Is(err, ErrGenerationInFlight) {
		return err.Error()
	}
	if errors.Is(err, ErrNoImage) {
		return ErrNoImage.Error()
	}
	return "image generation failed, please try again"
}
