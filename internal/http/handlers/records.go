package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/records"
)

type createRecordRequest struct {
	UnitName    string         `json:"unitName"`
	Description string         `json:"description"`
	ParentID    string         `json:"parentId"`
	Collection  string         `json:"collection"`
	Metadata    map[string]any `json:"metadata"`
}

// CreateRecord inserts a subtopic, nested under a parent when parentId is
// given, and reports which shape the record landed in.
func (a *App) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	created, err := a.Records.CreateRecord(r.Context(), records.CreateRecordInput{
		UnitName:    req.UnitName,
		Description: req.Description,
		ParentID:    req.ParentID,
		Collection:  req.Collection,
		Metadata:    req.Metadata,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, created)
}

// LocateRecord reports where an identifier resolves without mutating it.
func (a *App) LocateRecord(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "id")
	outcome, err := a.Records.Locate(r.Context(), identifier, r.URL.Query().Get("collection"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, outcome)
}

type attachVideoRequest struct {
	VideoURL   string         `json:"videoUrl"`
	Metadata   map[string]any `json:"metadata"`
	Collection string         `json:"collection"`
}

// AttachVideo writes an already-generated video URL onto a record, for
// callers that ran generation separately or are repairing a missed attach.
func (a *App) AttachVideo(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "id")
	var req attachVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	outcome, err := a.Records.AttachVideo(r.Context(), identifier, req.VideoURL, req.Metadata, req.Collection)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, outcome)
}
