package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/models"
)

type scriptedQualifier struct {
	fail  map[string]error
	calls []string
	after func(id string)
}

func (s *scriptedQualifier) Qualify(ctx context.Context, lead models.Lead) (models.Qualification, error) {
	s.calls = append(s.calls, lead.ID)
	if s.after != nil {
		defer s.after(lead.ID)
	}
	if err, ok := s.fail[lead.ID]; ok {
		return models.Qualification{}, err
	}
	return models.Qualification{Score: 75, Status: models.StatusQualified, Reasoning: "ok", ExtractedData: models.ExtractedData{PainPoints: []string{}}}, nil
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func fiveLeads() []models.Lead {
	out := make([]models.Lead, 0, 5)
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		out = append(out, models.Lead{ID: id, Source: models.SourceEmail, RawData: models.RawData{Message: "hello"}})
	}
	return out
}

func TestQualifyBatchIsolatesFailures(t *testing.T) {
	q := &scriptedQualifier{fail: map[string]error{"3": apperr.New(apperr.KindTransport, "still down")}}
	rec := &sleepRecorder{}
	o := &Orchestrator{Qualifier: q, Cooldown: time.Second, Sleep: rec.sleep, AbortOnAuth: true, Logger: zerolog.Nop()}

	var progress [][2]int
	results, err := o.QualifyBatch(context.Background(), fiveLeads(), func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	if err != nil {
		t.Fatalf("expected no batch error, got %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if _, ok := results["3"]; ok {
		t.Fatalf("failed lead should be absent from results")
	}
	if len(progress) != 5 {
		t.Fatalf("expected 5 progress calls, got %d", len(progress))
	}
	for i, p := range progress {
		if p[0] != i+1 || p[1] != 5 {
			t.Fatalf("unexpected progress %v at %d", p, i)
		}
	}
	if len(rec.delays) != 4 {
		t.Fatalf("expected 4 cooldowns between 5 leads, got %d", len(rec.delays))
	}
	for _, d := range rec.delays {
		if d != time.Second {
			t.Fatalf("unexpected cooldown %v", d)
		}
	}
	if len(q.calls) != 5 {
		t.Fatalf("expected every lead attempted, got %v", q.calls)
	}
}

func TestQualifyBatchAbortsOnAuth(t *testing.T) {
	q := &scriptedQualifier{fail: map[string]error{"2": apperr.New(apperr.KindAuth, "bad key")}}
	rec := &sleepRecorder{}
	o := &Orchestrator{Qualifier: q, Cooldown: time.Second, Sleep: rec.sleep, AbortOnAuth: true, Logger: zerolog.Nop()}

	progressCalls := 0
	results, err := o.QualifyBatch(context.Background(), fiveLeads(), func(done, total int) { progressCalls++ })
	if !apperr.Is(err, apperr.KindAuth) {
		t.Fatalf("expected auth failure, got %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected partial results from lead 1, got %d", len(results))
	}
	if progressCalls != 2 || len(q.calls) != 2 {
		t.Fatalf("expected remaining leads abandoned, got %d progress and %d calls", progressCalls, len(q.calls))
	}
}

func TestQualifyBatchContinuesOnAuthWhenNotAborting(t *testing.T) {
	q := &scriptedQualifier{fail: map[string]error{"2": apperr.New(apperr.KindAuth, "bad key")}}
	o := &Orchestrator{Qualifier: q, Cooldown: 0, Logger: zerolog.Nop()}

	results, err := o.QualifyBatch(context.Background(), fiveLeads(), nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(results) != 4 || len(q.calls) != 5 {
		t.Fatalf("expected 4 results over 5 calls, got %d over %d", len(results), len(q.calls))
	}
}

func TestQualifyBatchStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := &scriptedQualifier{after: func(id string) {
		if id == "2" {
			cancel()
		}
	}}
	rec := &sleepRecorder{}
	o := &Orchestrator{Qualifier: q, Cooldown: time.Second, Sleep: rec.sleep, Logger: zerolog.Nop()}

	results, err := o.QualifyBatch(ctx, fiveLeads(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(results) != 2 || len(q.calls) != 2 {
		t.Fatalf("expected 2 results before cancel, got %d results and %d calls", len(results), len(q.calls))
	}
}

func TestQualifyBatchEmpty(t *testing.T) {
	o := &Orchestrator{Qualifier: &scriptedQualifier{}, Logger: zerolog.Nop()}
	results, err := o.QualifyBatch(context.Background(), nil, func(int, int) { t.Fatalf("no progress expected") })
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty result, got %v %v", results, err)
	}
}
