package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/records"
)

// Generator runs one synthesis job to a terminal result.
type Generator interface {
	Generate(ctx context.Context, inputText string) (*domain.JobResult, error)
}

// RecordService resolves and mutates stored subtopic records.
type RecordService interface {
	Locate(ctx context.Context, identifier, scopeHint string) (*domain.ResolutionOutcome, error)
	AttachVideo(ctx context.Context, identifier, videoURL string, metadata map[string]any, scopeHint string) (*domain.ResolutionOutcome, error)
	CreateRecord(ctx context.Context, input records.CreateRecordInput) (*records.CreatedRecord, error)
}

// App is the handler container; dependencies are injected at startup.
type App struct {
	Logger    infra.Logger
	Generator Generator
	Records   RecordService
}

func NewApp(logger infra.Logger, generator Generator, recordSvc RecordService) *App {
	return &App{Logger: logger, Generator: generator, Records: recordSvc}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// fail maps the domain error taxonomy onto HTTP responses. Resolution misses
// carry their diagnostics (identifier, searched collections) in the payload.
func (a *App) fail(w http.ResponseWriter, err error) {
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		a.json(w, http.StatusNotFound, map[string]any{
			"error":       "not_found",
			"message":     nf.Error(),
			"identifier":  nf.Identifier,
			"collections": nf.Collections,
		})
	case errors.Is(err, domain.ErrInvalidScript), errors.Is(err, domain.ErrInvalidRecord):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrPollTimeout):
		a.error(w, http.StatusGatewayTimeout, "generation_timeout", err.Error())
	case errors.Is(err, domain.ErrGenerationFailed):
		a.error(w, http.StatusBadGateway, "provider_error", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("unhandled request error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
