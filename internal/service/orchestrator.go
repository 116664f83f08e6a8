package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadtriage/backend/internal/ai"
	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/models"
)

const DefaultCooldown = time.Second

// ProgressFunc receives (completed, total) once per attempted lead.
type ProgressFunc func(done, total int)

// Orchestrator qualifies leads one at a time with a fixed cooldown between
// calls. A lead that fails is logged and left out of the result map.
type Orchestrator struct {
	Qualifier   ai.Qualifier
	Cooldown    time.Duration
	Sleep       ai.SleepFunc
	AbortOnAuth bool
	Logger      zerolog.Logger
}

// QualifyBatch returns whatever results it collected. The error is non-nil
// only when the batch stopped early: ctx was cancelled, or an auth failure
// hit with AbortOnAuth set.
func (o *Orchestrator) QualifyBatch(ctx context.Context, leads []models.Lead, onProgress ProgressFunc) (map[string]models.Qualification, error) {
	return o.run(ctx, leads, onProgress, nil)
}

func (o *Orchestrator) run(ctx context.Context, leads []models.Lead, onProgress ProgressFunc, onResult func(id string, q models.Qualification)) (map[string]models.Qualification, error) {
	const op = "service.qualify_batch"

	sleep := o.Sleep
	if sleep == nil {
		sleep = ai.Sleep
	}
	cooldown := o.Cooldown
	if cooldown < 0 {
		cooldown = 0
	}

	results := make(map[string]models.Qualification, len(leads))
	total := len(leads)
	for i, lead := range leads {
		if i > 0 && cooldown > 0 {
			if err := sleep(ctx, cooldown); err != nil {
				return results, apperr.Wrap(apperr.KindInternal, "batch cancelled", err).WithOp(op)
			}
		}
		if err := ctx.Err(); err != nil {
			return results, apperr.Wrap(apperr.KindInternal, "batch cancelled", err).WithOp(op)
		}

		q, err := o.Qualifier.Qualify(ctx, lead)
		if err != nil {
			o.Logger.Error().
				Err(err).
				Str("lead_id", lead.ID).
				Str("kind", apperr.GetKind(err).String()).
				Int("position", i+1).
				Int("total", total).
				Msg("lead qualification failed")
			if onProgress != nil {
				onProgress(i+1, total)
			}
			if o.AbortOnAuth && apperr.Is(err, apperr.KindAuth) {
				return results, err
			}
			continue
		}

		results[lead.ID] = q
		if onResult != nil {
			onResult(lead.ID, q)
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return results, nil
}
