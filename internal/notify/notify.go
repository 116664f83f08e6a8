// Package notify delivers the one operator-facing message a qualification run
// produces when it aborts or leaves leads unscored.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Summary struct {
	RunID      string
	Total      int
	Succeeded  int
	Failed     int
	Aborted    bool
	Cause      string
	StartedAt  time.Time
	FinishedAt time.Time
}

type Notifier interface {
	Notify(ctx context.Context, s Summary) error
}

// FormatSummary renders a summary as a single plain-text message.
func FormatSummary(s Summary) string {
	var b strings.Builder
	switch {
	case s.Aborted:
		fmt.Fprintf(&b, "Lead qualification run %s stopped early", s.RunID)
	case s.Failed > 0:
		fmt.Fprintf(&b, "Lead qualification run %s finished with failures", s.RunID)
	default:
		fmt.Fprintf(&b, "Lead qualification run %s finished", s.RunID)
	}
	fmt.Fprintf(&b, ": %d of %d leads scored", s.Succeeded, s.Total)
	if s.Failed > 0 {
		fmt.Fprintf(&b, ", %d left pending", s.Failed)
	}
	if unattempted := s.Total - s.Succeeded - s.Failed; unattempted > 0 {
		fmt.Fprintf(&b, ", %d not attempted", unattempted)
	}
	b.WriteString(".")
	if s.Cause != "" {
		fmt.Fprintf(&b, " Cause: %s.", strings.TrimSuffix(s.Cause, "."))
	}
	if !s.StartedAt.IsZero() && !s.FinishedAt.IsZero() {
		fmt.Fprintf(&b, " Took %s.", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	}
	return b.String()
}

type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, s Summary) error {
	ev := n.Logger.Warn()
	if s.Aborted {
		ev = n.Logger.Error()
	}
	ev.Str("run_id", s.RunID).
		Int("total", s.Total).
		Int("succeeded", s.Succeeded).
		Int("failed", s.Failed).
		Bool("aborted", s.Aborted).
		Msg(FormatSummary(s))
	return nil
}

// Multi fans a summary out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, s Summary) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
