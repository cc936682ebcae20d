package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/records"
)

type stubGenerator struct {
	result *domain.JobResult
	err    error
	input  string
}

func (g *stubGenerator) Generate(ctx context.Context, inputText string) (*domain.JobResult, error) {
	g.input = inputText
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type stubRecords struct {
	outcome *domain.ResolutionOutcome
	created *records.CreatedRecord
	err     error

	identifier string
	videoURL   string
	scopeHint  string
}

func (s *stubRecords) Locate(ctx context.Context, identifier, scopeHint string) (*domain.ResolutionOutcome, error) {
	s.identifier, s.scopeHint = identifier, scopeHint
	return s.outcome, s.err
}

func (s *stubRecords) AttachVideo(ctx context.Context, identifier, videoURL string, metadata map[string]any, scopeHint string) (*domain.ResolutionOutcome, error) {
	s.identifier, s.videoURL, s.scopeHint = identifier, videoURL, scopeHint
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func (s *stubRecords) CreateRecord(ctx context.Context, input records.CreateRecordInput) (*records.CreatedRecord, error) {
	return s.created, s.err
}

func newTestServer(t *testing.T, gen handlers.Generator, rec handlers.RecordService) *httptest.Server {
	t.Helper()
	app := handlers.NewApp(zerolog.New(io.Discard), gen, rec)
	cfg := &infra.Config{AllowedOrigins: []string{"http://localhost:3000"}, RateLimitPerMin: 100}
	srv := httptest.NewServer(httpapi.NewRouter(app, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestGenerateHappyPath(t *testing.T) {
	gen := &stubGenerator{result: &domain.JobResult{ResultURL: "https://cdn/video1.mp4", Polls: 3}}
	rec := &stubRecords{outcome: &domain.ResolutionOutcome{
		Matched:       true,
		Location:      domain.LocationNestedUnit,
		Collection:    "physics",
		ModifiedCount: 1,
	}}
	srv := newTestServer(t, gen, rec)

	resp := postJSON(t, srv.URL+"/v1/generations/", map[string]any{
		"subtopicId":  "sub-42",
		"subtopic":    "Kinematics",
		"description": "A body moving under constant acceleration",
		"collection":  "physics",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["videoUrl"] != "https://cdn/video1.mp4" {
		t.Fatalf("videoUrl = %v", body["videoUrl"])
	}
	if body["matched"] != true || body["location"] != "nestedUnit" || body["modifiedCount"] != float64(1) {
		t.Fatalf("body = %v", body)
	}
	if gen.input != "A body moving under constant acceleration" {
		t.Fatalf("generator input = %q", gen.input)
	}
	if rec.identifier != "sub-42" || rec.videoURL != "https://cdn/video1.mp4" || rec.scopeHint != "physics" {
		t.Fatalf("attach call = %q %q %q", rec.identifier, rec.videoURL, rec.scopeHint)
	}
}

func TestGenerateRequiresSubtopicID(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubRecords{})

	resp := postJSON(t, srv.URL+"/v1/generations/", map[string]any{"description": "some text"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.ErrInvalidScript, http.StatusBadRequest},
		{"provider", domain.ErrGenerationFailed, http.StatusBadGateway},
		{"timeout", domain.ErrPollTimeout, http.StatusGatewayTimeout},
		{"store", domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &stubGenerator{err: tc.err}, &stubRecords{})
			resp := postJSON(t, srv.URL+"/v1/generations/", map[string]any{
				"subtopicId":  "sub-42",
				"description": "long enough script",
			})
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
			resp.Body.Close()
		})
	}
}

func TestAttachVideoNotFoundPayloadListsCollections(t *testing.T) {
	rec := &stubRecords{err: &domain.NotFoundError{
		Identifier:  "sub-42",
		Collections: []string{"physics", "math"},
	}}
	srv := newTestServer(t, &stubGenerator{}, rec)

	resp := postJSON(t, srv.URL+"/v1/records/sub-42/video", map[string]any{"videoUrl": "https://cdn/v.mp4"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["identifier"] != "sub-42" {
		t.Fatalf("identifier = %v", body["identifier"])
	}
	cols, _ := body["collections"].([]any)
	if len(cols) != 2 || cols[0] != "physics" {
		t.Fatalf("collections = %v", body["collections"])
	}
}

func TestAttachVideoReturnsOutcome(t *testing.T) {
	rec := &stubRecords{outcome: &domain.ResolutionOutcome{
		Matched:       true,
		Location:      domain.LocationMainDocument,
		Collection:    "subtopics",
		ModifiedCount: 0,
	}}
	srv := newTestServer(t, &stubGenerator{}, rec)

	resp := postJSON(t, srv.URL+"/v1/records/abc/video", map[string]any{
		"videoUrl":   "https://cdn/v.mp4",
		"collection": "subtopics",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["matched"] != true || body["location"] != "mainDocument" || body["modifiedCount"] != float64(0) {
		t.Fatalf("body = %v", body)
	}
	if rec.identifier != "abc" || rec.scopeHint != "subtopics" {
		t.Fatalf("attach call = %q %q", rec.identifier, rec.scopeHint)
	}
}

func TestCreateRecordReturnsShape(t *testing.T) {
	rec := &stubRecords{created: &records.CreatedRecord{
		ID:         "unit-uuid",
		Location:   domain.LocationNestedUnit,
		Collection: "subtopics",
	}}
	srv := newTestServer(t, &stubGenerator{}, rec)

	resp := postJSON(t, srv.URL+"/v1/records/", map[string]any{"unitName": "Optics", "parentId": "parent1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["id"] != "unit-uuid" || body["location"] != "nestedUnit" {
		t.Fatalf("body = %v", body)
	}
}

func TestLocateRecordNotFoundOutcome(t *testing.T) {
	rec := &stubRecords{outcome: &domain.ResolutionOutcome{Matched: false, Location: domain.LocationNotFound}}
	srv := newTestServer(t, &stubGenerator{}, rec)

	resp, err := http.Get(srv.URL + "/v1/records/000000000000000000000000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["matched"] != false || body["location"] != "notFound" {
		t.Fatalf("body = %v", body)
	}
}
