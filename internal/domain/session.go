package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// RequestState tracks the lifecycle of the current generate action.
type RequestState string

const (
	StateIdle      RequestState = "IDLE"
	StateInFlight  RequestState = "IN_FLIGHT"
	StateSucceeded RequestState = "SUCCEEDED"
	StateFailed    RequestState = "FAILED"
)

// Image is an in-memory image payload plus its declared MIME type.
type Image struct {
	Data []byte
	MIME string
}

// Empty reports whether the image carries no payload.
func (img Image) Empty() bool { return len(img.Data) == 0 }

// DataURI renders the image as a base64 data URI for embedding in the page.
func (img Image) DataURI() string {
	if img.Empty() {
		return ""
	}
	mime := img.MIME
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.Data))
}

// EditSession is the single source of truth for one browser session: the
// selected source image, the prompt, the latest edit result, and the state of
// the current generate action. All transitions are synchronous and pure; the
// caller is responsible for serializing access.
type EditSession struct {
	ID     string
	Source Image
	Result Image
	Prompt string
	State  RequestState
	// ErrorMessage is the user-facing message for StateFailed.
	ErrorMessage string
	// Epoch increases whenever the source image or the whole session is
	// replaced. A generate outcome is applied only when the epoch it was
	// launched under is still current, so responses arriving after a reset
	// or a new selection are discarded instead of resurrecting stale state.
	Epoch     uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEditSession returns an empty session in the idle state.
func NewEditSession(id string) *EditSession {
	now := time.Now()
	return &EditSession{
		ID:        id,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SelectImage replaces the source image wholesale, clearing any previous
// result and error. Selecting with no payload is a silent no-op.
func (s *EditSession) SelectImage(data []byte, mime string) {
	if len(data) == 0 {
		return
	}
	s.Source = Image{Data: data, MIME: mime}
	s.Result = Image{}
	s.ErrorMessage = ""
	// A fresh selection supersedes any outstanding generate: the epoch bump
	// below guarantees its outcome is discarded, so the state returns to
	// idle and a new generate is allowed immediately.
	s.State = StateIdle
	s.Epoch++
	s.UpdatedAt = time.Now()
}

// SetPrompt stores the prompt text verbatim.
func (s *EditSession) SetPrompt(text string) {
	s.Prompt = text
	s.UpdatedAt = time.Now()
}

// BeginGenerate validates preconditions and moves the session into the
// in-flight state, returning the epoch stamp the launch belongs to. The
// returned epoch must be handed back to CompleteGenerate.
func (s *EditSession) BeginGenerate() (uint64, error) {
	if s.State == StateInFlight {
		return 0, ErrGenerationInFlight
	}
	if s.Source.Empty() {
		s.ErrorMessage = UserMessage(ErrNoSourceImage)
		return 0, ErrNoSourceImage
	}
	if strings.TrimSpace(s.Prompt) == "" {
		s.ErrorMessage = UserMessage(ErrBlankPrompt)
		return 0, ErrBlankPrompt
	}
	s.Result = Image{}
	s.ErrorMessage = ""
	s.State = StateInFlight
	s.UpdatedAt = time.Now()
	return s.Epoch, nil
}

// CompleteGenerate applies the outcome of a generate launched at the given
// epoch. Outcomes for a superseded epoch are discarded: the session was reset
// or re-seeded while the request was outstanding and must not be overwritten.
// It reports whether the outcome was applied.
func (s *EditSession) CompleteGenerate(epoch uint64, result Image, err error) bool {
	if epoch != s.Epoch {
		return false
	}
	s.UpdatedAt = time.Now()
	if err != nil {
		s.State = StateFailed
		s.ErrorMessage = UserMessage(err)
		return true
	}
	if result.Empty() {
		s.State = StateFailed
		s.ErrorMessage = UserMessage(ErrNoImage)
		return true
	}
	s.Result = result
	s.State = StateSucceeded
	s.ErrorMessage = ""
	return true
}

// Reset returns every field to its initial empty value and bumps the epoch so
// an in-flight outcome, if any, is discarded when it arrives.
func (s *EditSession) Reset() {
	s.Source = Image{}
	s.Result = Image{}
	s.Prompt = ""
	s.State = StateIdle
	s.ErrorMessage = ""
	s.Epoch++
	s.UpdatedAt = time.Now()
}
