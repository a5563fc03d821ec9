package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/middleware"
)

// SessionCreate starts a fresh edit session.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	sess := a.Controller.Create()
	a.Logger.Debug().Str("session_id", sess.ID).Msg("session created")
	a.json(w, http.StatusCreated, toSessionResponse(sess))
}

// SessionGet returns the current session snapshot.
func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Controller.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		a.writeSessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSessionResponse(sess))
}

// SessionSelectImage stores the uploaded source image. The upload travels as
// a multipart form with an "image" file field.
func (a *App) SessionSelectImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	locale := middleware.LocaleFromContext(r.Context())

	// One extra KiB so a payload just over the cap is read far enough to be
	// rejected by the controller instead of truncated silently.
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxImageBytes+1024)
	if err := r.ParseMultipartForm(a.Config.MaxImageBytes + 1024); err != nil {
		a.error(w, http.StatusRequestEntityTooLarge, "image_too_large", localize(locale, "image_too_large"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read upload")
		return
	}
	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	sess, err := a.Controller.SelectImage(id, data, mime)
	if err != nil {
		a.writeSessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSessionResponse(sess))
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// SessionUpdatePrompt stores the instruction text verbatim.
func (a *App) SessionUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	sess, err := a.Controller.UpdatePrompt(chi.URLParam(r, "id"), req.Prompt)
	if err != nil {
		a.writeSessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSessionResponse(sess))
}

// SessionGenerate runs one edit exchange and returns the resulting state.
// The request blocks for the duration of the provider call; a concurrent
// generate on the same session is rejected with 409.
func (a *App) SessionGenerate(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Controller.Generate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeSessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSessionResponse(sess))
}

// SessionReset clears the session back to its initial empty state.
func (a *App) SessionReset(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Controller.Reset(chi.URLParam(r, "id"))
	if err != nil {
		a.writeSessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSessionResponse(sess))
}

// writeSessionError maps controller failures onto the HTTP error envelope.
// Remote and validation failures are part of the normal session lifecycle;
// only unclassified errors are logged as faults and reported generically.
func (a *App) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	message := localizeError(err, locale)

	var remote *domain.RemoteError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		a.error(w, http.StatusNotFound, "not_found", message)
	case errors.Is(err, domain.ErrGenerationInFlight):
		a.error(w, http.StatusConflict, "conflict", message)
	case domain.IsValidation(err):
		a.error(w, http.StatusUnprocessableEntity, "validation_error", message)
	case errors.As(err, &remote):
		a.error(w, http.StatusBadGateway, "provider_error", message)
	default:
		a.Logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("handlers: unclassified failure")
		a.error(w, http.StatusInternalServerError, "internal", message)
	}
}
