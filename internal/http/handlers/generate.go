package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/domain"
)

type generateRequest struct {
	SubtopicID  string `json:"subtopicId"`
	Subtopic    string `json:"subtopic"`
	Description string `json:"description"`
	Collection  string `json:"collection"`
}

type generateResponse struct {
	VideoURL      string          `json:"videoUrl"`
	Matched       bool            `json:"matched"`
	Location      domain.Location `json:"location"`
	Collection    string          `json:"collection,omitempty"`
	ModifiedCount int64           `json:"modifiedCount"`
}

// Generate runs the whole frontend flow in one request: synthesize a video
// from the subtopic description, then attach the resulting URL to the stored
// record. The response only leaves this handler once the job is terminal, so
// the route sits behind the rate limiter and a generous write timeout.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.SubtopicID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "subtopicId is required")
		return
	}

	result, err := a.Generator.Generate(r.Context(), req.Description)
	if err != nil {
		a.fail(w, err)
		return
	}

	metadata := map[string]any{}
	if req.Subtopic != "" {
		metadata["unitName"] = req.Subtopic
	}
	outcome, err := a.Records.AttachVideo(r.Context(), req.SubtopicID, result.ResultURL, metadata, req.Collection)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.json(w, http.StatusOK, generateResponse{
		VideoURL:      result.ResultURL,
		Matched:       outcome.Matched,
		Location:      outcome.Location,
		Collection:    outcome.Collection,
		ModifiedCount: outcome.ModifiedCount,
	})
}
