package image

import (
	"context"
	"strings"
)

// EditRequest is the normalized payload handed to any editor implementation:
// the raw source image bytes, its declared MIME type, and the free-text
// instruction describing the desired edit.
type EditRequest struct {
	Data      []byte
	MIME      string
	Prompt    string
	RequestID string
}

// EditResult is the edited image returned by a provider.
type EditResult struct {
	Data []byte
	MIME string
}

// Editor is the contract implemented by all image-edit providers. Every call
// performs exactly one exchange with the remote capability; implementations
// hold no per-request state and may be shared across sessions.
type Editor interface {
	Edit(ctx context.Context, req EditRequest) (*EditResult, error)
}

const (
	ProviderGemini    = "gemini"
	ProviderQwen      = "qwen"
	ProviderSynthetic = "synthetic"
)

// NormalizeProvider sanitizes free-form configuration into a supported
// provider name, defaulting to gemini.
func NormalizeProvider(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderQwen:
		return ProviderQwen
	case ProviderSynthetic:
		return ProviderSynthetic
	default:
		return ProviderGemini
	}
}
