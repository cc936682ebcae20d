package did

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("did: api key is required")

// Provider status tokens. Anything outside this set is treated as still
// in progress by callers.
const (
	StatusCreated  = "created"
	StatusStarted  = "started"
	StatusDone     = "done"
	StatusError    = "error"
	StatusRejected = "rejected"
)

// API is the narrow surface the orchestrator polls against. Client talks to
// the real service; Stub satisfies it for keyless development deployments.
type API interface {
	CreateTalk(ctx context.Context, req TalkRequest) (*Talk, error)
	GetTalk(ctx context.Context, id string) (*TalkStatus, error)
}

// Options configures the D-ID talks client.
type Options struct {
	APIKey         string
	BaseURL        string
	PresenterID    string
	VoiceID        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the D-ID text-to-video "talks" API.
type Client struct {
	apiKey      string
	baseURL     string
	presenterID string
	voiceID     string
	httpClient  *http.Client
	logger      *infra.Logger
}

// TalkRequest captures the inputs for one synthesis job.
type TalkRequest struct {
	Script      string
	PresenterID string // overrides the configured presenter when set
}

// Talk is the handle returned by a successful submission.
type Talk struct {
	ID string
}

// TalkStatus is one poll observation for a submitted talk.
type TalkStatus struct {
	ID        string
	Status    string
	ResultURL string
}

type createTalkRequest struct {
	Script      talkScript `json:"script"`
	PresenterID string     `json:"presenter_id,omitempty"`
}

type talkScript struct {
	Type     string        `json:"type"`
	Input    string        `json:"input"`
	Provider voiceProvider `json:"provider"`
}

type voiceProvider struct {
	Type    string `json:"type"`
	VoiceID string `json:"voice_id"`
}

type talkResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ResultURL string `json:"result_url"`
	Error     struct {
		Kind        string `json:"kind"`
		Description string `json:"description"`
	} `json:"error"`
	Description string `json:"description"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.d-id.com"
	}
	voiceID := strings.TrimSpace(opts.VoiceID)
	if voiceID == "" {
		voiceID = "en-US-JennyNeural"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		presenterID: strings.TrimSpace(opts.PresenterID),
		voiceID:     voiceID,
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// CreateTalk submits one synthesis job and returns its handle. Exactly one
// outbound request is issued; failures are never retried here.
func (c *Client) CreateTalk(ctx context.Context, req TalkRequest) (*Talk, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	script := strings.TrimSpace(req.Script)
	if script == "" {
		return nil, errors.New("did: script is required")
	}
	presenter := strings.TrimSpace(req.PresenterID)
	if presenter == "" {
		presenter = c.presenterID
	}
	payload := createTalkRequest{
		Script: talkScript{
			Type:     "text",
			Input:    script,
			Provider: voiceProvider{Type: "microsoft", VoiceID: c.voiceID},
		},
		PresenterID: presenter,
	}

	decoded, err := c.do(ctx, http.MethodPost, "/talks", payload)
	if err != nil {
		return nil, err
	}
	if decoded.ID == "" {
		return nil, errors.New("did: empty talk id")
	}
	c.logger.Debug().
		Str("talk_id", decoded.ID).
		Str("status", decoded.Status).
		Msg("did: talk submitted")
	return &Talk{ID: decoded.ID}, nil
}

// GetTalk fetches the current status for a submitted talk.
func (c *Client) GetTalk(ctx context.Context, id string) (*TalkStatus, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("did: talk id is required")
	}
	decoded, err := c.do(ctx, http.MethodGet, "/talks/"+id, nil)
	if err != nil {
		return nil, err
	}
	return &TalkStatus{ID: decoded.ID, Status: decoded.Status, ResultURL: decoded.ResultURL}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*talkResponse, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("did: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("did: build request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("did: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("did: read response: %w", err)
	}
	var decoded talkResponse
	if resp.StatusCode >= 300 {
		if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Description != "" {
			return nil, fmt.Errorf("did: %s (%s)", decoded.Description, decoded.Error.Kind)
		}
		return nil, fmt.Errorf("did: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("did: decode response: %w", err)
	}
	return &decoded, nil
}

var _ API = (*Client)(nil)
