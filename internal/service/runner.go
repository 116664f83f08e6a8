package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/models"
	"github.com/leadtriage/backend/internal/notify"
	"github.com/leadtriage/backend/internal/store"
)

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunAborted   RunStatus = "aborted"
	RunCancelled RunStatus = "cancelled"
)

const notifyTimeout = 10 * time.Second

type RunSummary struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Status     RunStatus  `json:"status"`
	Total      int        `json:"total"`
	Done       int        `json:"done"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Error      string     `json:"error,omitempty"`
}

// Runner executes one background qualification run at a time over the
// store's unqualified leads and merges each result as it lands.
type Runner struct {
	Store        *store.Store
	Orchestrator *Orchestrator
	Notifier     notify.Notifier
	Logger       zerolog.Logger

	mu      sync.Mutex
	current *RunSummary
	latest  *RunSummary
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	hubOnce sync.Once
	events  *hub
}

func (r *Runner) hub() *hub {
	r.hubOnce.Do(func() { r.events = newHub() })
	return r.events
}

// Start launches a run and returns its initial summary. The run outlives
// ctx's cancellation but keeps its values; use Cancel to stop it.
func (r *Runner) Start(ctx context.Context) (RunSummary, error) {
	r.mu.Lock()
	if r.current != nil {
		running := *r.current
		r.mu.Unlock()
		return running, apperr.Conflict("a qualification run is already in progress").WithOp("service.start_run").WithDetails(running.ID)
	}

	leads := r.Store.Unqualified()
	run := &RunSummary{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    RunRunning,
		Total:     len(leads),
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.current = run
	r.latest = run
	r.cancel = cancel
	snapshot := *run
	r.mu.Unlock()

	r.hub().publish(ProgressEvent{Type: EventRunStarted, RunID: run.ID, Total: run.Total, Run: &snapshot})
	r.Logger.Info().Str("run_id", run.ID).Int("leads", run.Total).Msg("qualification run started")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.execute(runCtx, run, leads)
	}()
	return snapshot, nil
}

func (r *Runner) execute(ctx context.Context, run *RunSummary, leads []models.Lead) {
	onProgress := func(done, total int) {
		r.mu.Lock()
		run.Done = done
		r.mu.Unlock()
		r.hub().publish(ProgressEvent{Type: EventProgress, RunID: run.ID, Done: done, Total: total})
	}
	onResult := func(id string, q models.Qualification) {
		r.Store.SetQualification(ctx, id, q)
	}

	results, err := r.Orchestrator.run(ctx, leads, onProgress, onResult)

	r.mu.Lock()
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Succeeded = len(results)
	run.Failed = run.Done - run.Succeeded
	switch {
	case err == nil:
		run.Status = RunCompleted
	case errors.Is(err, context.Canceled):
		run.Status = RunCancelled
		run.Error = err.Error()
	default:
		run.Status = RunAborted
		run.Error = err.Error()
	}
	final := *run
	r.current = nil
	r.cancel = nil
	r.mu.Unlock()

	r.Logger.Info().
		Str("run_id", final.ID).
		Str("status", string(final.Status)).
		Int("total", final.Total).
		Int("succeeded", final.Succeeded).
		Int("failed", final.Failed).
		Msg("qualification run finished")

	if final.Status != RunCompleted || final.Failed > 0 {
		r.notify(ctx, final, err)
	}
	r.hub().publish(ProgressEvent{Type: EventRunFinished, RunID: final.ID, Done: final.Done, Total: final.Total, Run: &final})
}

func (r *Runner) notify(ctx context.Context, run RunSummary, cause error) {
	if r.Notifier == nil {
		return
	}
	s := notify.Summary{
		RunID:     run.ID,
		Total:     run.Total,
		Succeeded: run.Succeeded,
		Failed:    run.Failed,
		Aborted:   run.Status != RunCompleted,
		StartedAt: run.StartedAt,
	}
	if run.FinishedAt != nil {
		s.FinishedAt = *run.FinishedAt
	}
	if cause != nil {
		s.Cause = describeCause(cause)
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := r.Notifier.Notify(nctx, s); err != nil {
		r.Logger.Error().Err(err).Str("run_id", run.ID).Msg("run summary notification failed")
	}
}

func describeCause(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case apperr.KindAuth:
			return "the scoring service rejected or is missing credentials (" + e.Message + ")"
		case apperr.KindInternal:
			if errors.Is(err, context.Canceled) {
				return "the run was cancelled"
			}
		}
		return e.Message
	}
	return err.Error()
}

// QualifyOne scores a single lead synchronously and stores the result.
func (r *Runner) QualifyOne(ctx context.Context, id string) (models.Lead, error) {
	lead, ok := r.Store.Get(id)
	if !ok {
		return models.Lead{}, apperr.NotFound("lead not found").WithOp("service.qualify_one").WithDetails(id)
	}
	q, err := r.Orchestrator.Qualifier.Qualify(ctx, lead)
	if err != nil {
		r.Logger.Error().Err(err).Str("lead_id", id).Str("kind", apperr.GetKind(err).String()).Msg("lead qualification failed")
		return models.Lead{}, err
	}
	r.Store.SetQualification(ctx, id, q)
	updated, _ := r.Store.Get(id)
	return updated, nil
}

// Cancel stops the active run between leads. It reports whether a run was
// active.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	return true
}

// Running reports whether a run is in progress.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// Latest returns the most recent run, finished or not.
func (r *Runner) Latest() (RunSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return RunSummary{}, false
	}
	return *r.latest, true
}

// Subscribe returns a progress stream and a function that ends it.
func (r *Runner) Subscribe() (<-chan ProgressEvent, func()) {
	return r.hub().subscribe()
}

// Wait blocks until any in-flight run returns.
func (r *Runner) Wait() {
	r.wg.Wait()
}
