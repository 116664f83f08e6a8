package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/blob"
	"github.com/leadtriage/backend/internal/models"
	"github.com/leadtriage/backend/internal/notify"
	"github.com/leadtriage/backend/internal/store"
)

type staticSeeds []models.Lead

func (s staticSeeds) Seed(context.Context) ([]models.Lead, error) { return s, nil }

type capturedNotifier struct {
	mu        sync.Mutex
	summaries []notify.Summary
}

func (c *capturedNotifier) Notify(_ context.Context, s notify.Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries = append(c.summaries, s)
	return nil
}

func (c *capturedNotifier) all() []notify.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Summary(nil), c.summaries...)
}

type lockedQualifier struct {
	mu    sync.Mutex
	inner *scriptedQualifier
	gate  chan struct{}
}

func (l *lockedQualifier) Qualify(ctx context.Context, lead models.Lead) (models.Qualification, error) {
	if l.gate != nil {
		select {
		case <-l.gate:
		case <-ctx.Done():
			return models.Qualification{}, apperr.Wrap(apperr.KindTransport, "cancelled", ctx.Err())
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Qualify(ctx, lead)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seeds := staticSeeds{}
	for i, l := range fiveLeads() {
		l.Timestamp = base.Add(time.Duration(i) * time.Hour)
		seeds = append(seeds, l)
	}
	s := store.New(store.Options{
		Persister: store.BlobPersister{Blobs: blob.NewMemory(), Key: "lead-qualifier-storage"},
		Seeds:     seeds,
		Logger:    zerolog.Nop(),
	})
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s
}

func TestRunnerMergesResultsAndNotifiesOnFailure(t *testing.T) {
	st := newTestStore(t)
	q := &lockedQualifier{inner: &scriptedQualifier{fail: map[string]error{"3": apperr.New(apperr.KindMalformed, "no score")}}}
	n := &capturedNotifier{}
	r := &Runner{
		Store:        st,
		Orchestrator: &Orchestrator{Qualifier: q, Cooldown: 0, AbortOnAuth: true, Logger: zerolog.Nop()},
		Notifier:     n,
		Logger:       zerolog.Nop(),
	}

	events, stop := r.Subscribe()
	defer stop()

	run, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if run.Total != 5 || run.Status != RunRunning {
		t.Fatalf("unexpected initial run %+v", run)
	}
	r.Wait()

	latest, ok := r.Latest()
	if !ok || latest.Status != RunCompleted || latest.Succeeded != 4 || latest.Failed != 1 {
		t.Fatalf("unexpected final run %+v", latest)
	}
	if latest.FinishedAt == nil {
		t.Fatalf("expected finish time")
	}
	stats := st.Stats()
	if stats.Qualified != 4 || stats.Pending != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if lead, _ := st.Get("3"); lead.Qualification != nil {
		t.Fatalf("failed lead should stay unqualified")
	}

	sums := n.all()
	if len(sums) != 1 || sums[0].Failed != 1 || sums[0].Aborted {
		t.Fatalf("expected one failure summary, got %+v", sums)
	}

	progress := 0
	finished := false
	for !finished {
		select {
		case ev := <-events:
			switch ev.Type {
			case EventProgress:
				progress++
			case EventRunFinished:
				finished = true
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for events, saw %d progress", progress)
		}
	}
	if progress != 5 {
		t.Fatalf("expected 5 progress events, got %d", progress)
	}
}

func TestRunnerAbortsOnMissingCredentials(t *testing.T) {
	st := newTestStore(t)
	authErr := apperr.New(apperr.KindAuth, "scoring API key is not configured")
	fail := map[string]error{}
	for _, l := range fiveLeads() {
		fail[l.ID] = authErr
	}
	q := &lockedQualifier{inner: &scriptedQualifier{fail: fail}}
	n := &capturedNotifier{}
	r := &Runner{
		Store:        st,
		Orchestrator: &Orchestrator{Qualifier: q, AbortOnAuth: true, Logger: zerolog.Nop()},
		Notifier:     n,
		Logger:       zerolog.Nop(),
	}

	if _, err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Wait()

	latest, _ := r.Latest()
	if latest.Status != RunAborted || latest.Done != 1 {
		t.Fatalf("expected abort after first lead, got %+v", latest)
	}
	sums := n.all()
	if len(sums) != 1 || !sums[0].Aborted {
		t.Fatalf("expected exactly one abort summary, got %+v", sums)
	}
	if !strings.Contains(sums[0].Cause, "credentials") {
		t.Fatalf("expected credential cause, got %q", sums[0].Cause)
	}
}

func TestRunnerRejectsConcurrentStart(t *testing.T) {
	st := newTestStore(t)
	gate := make(chan struct{})
	q := &lockedQualifier{inner: &scriptedQualifier{}, gate: gate}
	r := &Runner{
		Store:        st,
		Orchestrator: &Orchestrator{Qualifier: q, Logger: zerolog.Nop()},
		Logger:       zerolog.Nop(),
	}

	first, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := r.Start(context.Background())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("conflict should report the active run")
	}
	close(gate)
	r.Wait()
	if r.Running() {
		t.Fatalf("run should be finished")
	}
	if latest, _ := r.Latest(); latest.Status != RunCompleted || latest.Succeeded != 5 {
		t.Fatalf("unexpected final run %+v", latest)
	}
}

func TestRunnerCancel(t *testing.T) {
	st := newTestStore(t)
	gate := make(chan struct{})
	q := &lockedQualifier{inner: &scriptedQualifier{}, gate: gate}
	n := &capturedNotifier{}
	r := &Runner{
		Store:        st,
		Orchestrator: &Orchestrator{Qualifier: q, Logger: zerolog.Nop()},
		Notifier:     n,
		Logger:       zerolog.Nop(),
	}
	if _, err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !r.Cancel() {
		t.Fatalf("expected an active run to cancel")
	}
	r.Wait()
	latest, _ := r.Latest()
	if latest.Status != RunCancelled {
		t.Fatalf("expected cancelled run, got %+v", latest)
	}
	if r.Cancel() {
		t.Fatalf("cancel should report no active run")
	}
	if len(st.Unqualified()) != 5 {
		t.Fatalf("no lead should be qualified after cancel")
	}
}

func TestQualifyOne(t *testing.T) {
	st := newTestStore(t)
	r := &Runner{
		Store:        st,
		Orchestrator: &Orchestrator{Qualifier: &lockedQualifier{inner: &scriptedQualifier{}}, Logger: zerolog.Nop()},
		Logger:       zerolog.Nop(),
	}
	lead, err := r.QualifyOne(context.Background(), "2")
	if err != nil {
		t.Fatalf("qualify one: %v", err)
	}
	if lead.Qualification == nil || lead.Qualification.Score != 75 {
		t.Fatalf("expected stored qualification, got %+v", lead)
	}
	if _, err := r.QualifyOne(context.Background(), "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSchedulerRejectsBadExpression(t *testing.T) {
	if _, err := NewScheduler("every minute", &Runner{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected parse error")
	}
	s, err := NewScheduler("*/5 * * * *", &Runner{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
}
