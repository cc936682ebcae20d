package generation

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/did"
)

// MinScriptLength is the shortest script the provider accepts.
const MinScriptLength = 3

// Clock abstracts time for the poll loop so tests can simulate long waits
// without real delays.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options configures an Orchestrator.
type Options struct {
	Provider     did.API
	Clock        Clock
	Logger       *infra.Logger
	PollInterval time.Duration
	MaxWait      time.Duration
}

// Orchestrator drives one synthesis job from submission to a terminal state:
// a single submission call, then bounded polling until done, failed, or the
// wait budget runs out. No job state is persisted locally.
type Orchestrator struct {
	provider     did.API
	clock        Clock
	logger       *infra.Logger
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewOrchestrator constructs an orchestrator with sane polling defaults.
func NewOrchestrator(opts Options) *Orchestrator {
	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Orchestrator{
		provider:     opts.Provider,
		clock:        clock,
		logger:       logger,
		pollInterval: interval,
		maxWait:      opts.MaxWait,
	}
}

// SubmitJob validates the script and issues exactly one submission call.
// The returned job is in the submitted state; it is never auto-retried.
func (o *Orchestrator) SubmitJob(ctx context.Context, inputText string) (*domain.GenerationJob, error) {
	script := strings.TrimSpace(inputText)
	if utf8.RuneCountInString(script) < MinScriptLength {
		return nil, fmt.Errorf("%w: script must be at least %d characters", domain.ErrInvalidScript, MinScriptLength)
	}
	talk, err := o.provider.CreateTalk(ctx, did.TalkRequest{Script: script})
	if err != nil {
		return nil, fmt.Errorf("submit talk: %w: %w", domain.ErrGenerationFailed, err)
	}
	now := o.clock.Now()
	o.logger.Info().Str("talk_id", talk.ID).Int("script_len", len(script)).Msg("generation job submitted")
	return &domain.GenerationJob{
		ID:          talk.ID,
		InputText:   script,
		Status:      domain.JobStatusSubmitted,
		SubmittedAt: now,
		UpdatedAt:   now,
	}, nil
}

// AwaitCompletion polls the provider until the job reaches a terminal status
// or the wait budget is exhausted. At least one status check is performed
// even with a zero budget. A failed poll call is fatal; callers wanting
// resilience wrap the whole operation. Unrecognized status tokens count as
// still in progress. There is no provider-side cancellation: on timeout the
// external job's fate is simply unknown.
func (o *Orchestrator) AwaitCompletion(ctx context.Context, job *domain.GenerationJob) (*domain.JobResult, error) {
	start := o.clock.Now()
	deadline := start.Add(o.maxWait)
	polls := 0

	for {
		status, err := o.provider.GetTalk(ctx, job.ID)
		if err != nil {
			job.Status = domain.JobStatusFailed
			job.UpdatedAt = o.clock.Now()
			return nil, fmt.Errorf("poll talk %s: %w: %w", job.ID, domain.ErrGenerationFailed, err)
		}
		polls++
		job.UpdatedAt = o.clock.Now()

		switch status.Status {
		case did.StatusDone:
			job.Status = domain.JobStatusDone
			job.ResultURL = status.ResultURL
			o.logger.Info().
				Str("talk_id", job.ID).
				Int("polls", polls).
				Str("result_url", status.ResultURL).
				Msg("generation job done")
			return &domain.JobResult{
				ResultURL: status.ResultURL,
				Polls:     polls,
				Elapsed:   job.UpdatedAt.Sub(start),
			}, nil
		case did.StatusError, did.StatusRejected:
			job.Status = domain.JobStatusFailed
			o.logger.Warn().Str("talk_id", job.ID).Str("status", status.Status).Msg("generation job failed")
			return nil, fmt.Errorf("talk %s reported %s: %w", job.ID, status.Status, domain.ErrGenerationFailed)
		default:
			job.Status = domain.JobStatusInProgress
		}

		if !o.clock.Now().Before(deadline) {
			job.Status = domain.JobStatusTimedOut
			o.logger.Warn().
				Str("talk_id", job.ID).
				Int("polls", polls).
				Dur("max_wait", o.maxWait).
				Msg("generation job timed out")
			return nil, fmt.Errorf("talk %s still pending after %d polls: %w", job.ID, polls, domain.ErrPollTimeout)
		}
		if err := o.clock.Sleep(ctx, o.pollInterval); err != nil {
			job.Status = domain.JobStatusTimedOut
			return nil, fmt.Errorf("await talk %s: %w", job.ID, err)
		}
	}
}

// Generate is the request-handler path: submit, then await completion.
func (o *Orchestrator) Generate(ctx context.Context, inputText string) (*domain.JobResult, error) {
	job, err := o.SubmitJob(ctx, inputText)
	if err != nil {
		return nil, err
	}
	return o.AwaitCompletion(ctx, job)
}
