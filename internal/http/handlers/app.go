package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/session"
)

// App bundles the dependencies every handler needs.
type App struct {
	Controller *session.Controller
	Config     *infra.Config
	Logger     infra.Logger
}

// NewApp builds the handler container.
func NewApp(controller *session.Controller, cfg *infra.Config, logger infra.Logger) *App {
	return &App{Controller: controller, Config: cfg, Logger: logger}
}

type sessionResponse struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	Prompt      string    `json:"prompt"`
	SourceImage string    `json:"source_image,omitempty"`
	ResultImage string    `json:"result_image,omitempty"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toSessionResponse(s domain.EditSession) sessionResponse {
	return sessionResponse{
		ID:          s.ID,
		State:       string(s.State),
		Prompt:      s.Prompt,
		SourceImage: s.Source.DataURI(),
		ResultImage: s.Result.DataURI(),
		Error:       s.ErrorMessage,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}
