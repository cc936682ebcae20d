package did

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Stub is an in-process stand-in for the talks API, used when no API key is
// configured. Talks become done after Delay of wall-clock time and resolve to
// a deterministic CDN-style URL.
type Stub struct {
	Delay time.Duration

	mu    sync.Mutex
	seq   int
	talks map[string]time.Time
}

func NewStub(delay time.Duration) *Stub {
	return &Stub{Delay: delay, talks: make(map[string]time.Time)}
}

func (s *Stub) CreateTalk(ctx context.Context, req TalkRequest) (*Talk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.seq++
	id := fmt.Sprintf("talk_stub_%d", s.seq)
	s.talks[id] = time.Now().Add(s.Delay)
	s.mu.Unlock()
	return &Talk{ID: id}, nil
}

func (s *Stub) GetTalk(ctx context.Context, id string) (*TalkStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	ready, ok := s.talks[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("did: unknown talk %s", id)
	}
	if time.Now().Before(ready) {
		return &TalkStatus{ID: id, Status: StatusStarted}, nil
	}
	return &TalkStatus{
		ID:        id,
		Status:    StatusDone,
		ResultURL: fmt.Sprintf("https://cdn.example.com/talks/%s.mp4", id),
	}, nil
}

var _ API = (*Stub)(nil)
