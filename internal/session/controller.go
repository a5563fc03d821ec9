package session

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/image"
)

// Controller orchestrates every session transition. It is the only component
// that reads or writes session state, and it holds the entry mutex for every
// mutation except the provider exchange itself.
type Controller struct {
	store         *Store
	editor        image.Editor
	logger        zerolog.Logger
	maxImageBytes int64
}

// NewController wires the store and the configured editor.
func NewController(store *Store, editor image.Editor, logger zerolog.Logger, maxImageBytes int64) *Controller {
	if maxImageBytes <= 0 {
		maxImageBytes = 8 << 20
	}
	return &Controller{
		store:         store,
		editor:        editor,
		logger:        logger,
		maxImageBytes: maxImageBytes,
	}
}

// Create starts a fresh session and returns its snapshot.
func (c *Controller) Create() domain.EditSession {
	return *c.store.Create()
}

// Snapshot returns a copy of the session state for rendering.
func (c *Controller) Snapshot(id string) (domain.EditSession, error) {
	entry, err := c.store.Get(id)
	if err != nil {
		return domain.EditSession{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return *entry.session, nil
}

// SelectImage stores a newly uploaded source image, replacing any previous
// one and clearing the prior result. Uploads over the byte cap or with a
// non-image MIME type are rejected before touching the session.
func (c *Controller) SelectImage(id string, data []byte, mime string) (domain.EditSession, error) {
	if int64(len(data)) > c.maxImageBytes {
		return domain.EditSession{}, domain.ErrImageTooLarge
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/") {
		return domain.EditSession{}, domain.ErrUnsupportedImage
	}
	entry, err := c.store.Get(id)
	if err != nil {
		return domain.EditSession{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.SelectImage(data, mime)
	return *entry.session, nil
}

// UpdatePrompt stores the prompt text verbatim.
func (c *Controller) UpdatePrompt(id, text string) (domain.EditSession, error) {
	entry, err := c.store.Get(id)
	if err != nil {
		return domain.EditSession{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.SetPrompt(text)
	return *entry.session, nil
}

// Reset clears the session back to its initial empty state. Any generate
// still in flight keeps running, but its outcome is discarded on arrival.
func (c *Controller) Reset(id string) (domain.EditSession, error) {
	entry, err := c.store.Get(id)
	if err != nil {
		return domain.EditSession{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.Reset()
	return *entry.session, nil
}

// Generate runs one edit exchange for the session: validate and enter the
// in-flight state, call the provider with no lock held, then apply the
// outcome under the epoch captured at launch. The completion step always
// runs, so the in-flight flag cannot leak, and a session that was reset or
// re-seeded meanwhile silently discards the result.
func (c *Controller) Generate(ctx context.Context, id string) (domain.EditSession, error) {
	entry, err := c.store.Get(id)
	if err != nil {
		return domain.EditSession{}, err
	}

	entry.mu.Lock()
	epoch, err := entry.session.BeginGenerate()
	if err != nil {
		snapshot := *entry.session
		entry.mu.Unlock()
		return snapshot, err
	}
	req := image.EditRequest{
		Data:      entry.session.Source.Data,
		MIME:      entry.session.Source.MIME,
		Prompt:    entry.session.Prompt,
		RequestID: id,
	}
	entry.mu.Unlock()

	result, editErr := c.edit(ctx, req)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	applied := entry.session.CompleteGenerate(epoch, result, editErr)
	if !applied {
		c.logger.Debug().
			Str("session_id", id).
			Uint64("epoch", epoch).
			Msg("session: discarded stale generate outcome")
		return *entry.session, nil
	}
	if editErr != nil {
		c.logger.Warn().
			Err(editErr).
			Str("session_id", id).
			Msg("session: generate failed")
		return *entry.session, editErr
	}
	return *entry.session, nil
}

func (c *Controller) edit(ctx context.Context, req image.EditRequest) (domain.Image, error) {
	res, err := c.editor.Edit(ctx, req)
	if err != nil {
		return domain.Image{}, err
	}
	if res == nil || len(res.Data) == 0 {
		return domain.Image{}, domain.ErrNoImage
	}
	return domain.Image{Data: res.Data, MIME: res.MIME}, nil
}
