// Package store holds the authoritative lead collection and keeps summary
// stats in step with it.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/models"
	"github.com/leadtriage/backend/internal/stats"
	"github.com/leadtriage/backend/internal/utils"
)

// FilterAll disables status filtering in Query.
const FilterAll = "all"

type Store struct {
	mu    sync.RWMutex
	leads []models.Lead
	stats models.LeadStats

	persister   Persister
	seeds       SeedProvider
	phoneRegion string
	logger      zerolog.Logger
	now         func() time.Time
}

type Options struct {
	Persister   Persister
	Seeds       SeedProvider
	PhoneRegion string
	Logger      zerolog.Logger
	Now         func() time.Time
}

func New(opts Options) *Store {
	s := &Store{
		persister:   opts.Persister,
		seeds:       opts.Seeds,
		phoneRegion: opts.PhoneRegion,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	s.stats = stats.Compute(nil)
	return s
}

// Initialize loads the persisted collection, or seeds it when nothing was
// ever saved. With leads already in memory it only refreshes stats.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.leads) > 0 {
		s.stats = stats.Compute(s.leads)
		return nil
	}

	if s.persister != nil {
		leads, found, err := s.persister.Load(ctx)
		if err != nil {
			return err
		}
		if found {
			s.leads = leads
			s.stats = stats.Compute(s.leads)
			s.logger.Info().Int("leads", len(leads)).Msg("lead store loaded")
			return nil
		}
	}

	var seeded []models.Lead
	if s.seeds != nil {
		var err error
		seeded, err = s.seeds.Seed(ctx)
		if err != nil {
			return err
		}
	}
	s.commit(ctx, seeded, true)
	s.logger.Info().Int("leads", len(seeded)).Msg("lead store seeded")
	return nil
}

// Add ingests a new lead. Source and message are required.
func (s *Store) Add(ctx context.Context, source models.Source, raw models.RawData) (models.Lead, error) {
	if !source.Valid() {
		return models.Lead{}, apperr.Validation("unknown lead source").WithOp("store.add").WithDetails(string(source))
	}
	if strings.TrimSpace(raw.Message) == "" {
		return models.Lead{}, apperr.Validation("lead message is required").WithOp("store.add")
	}
	raw.Name = strings.TrimSpace(raw.Name)
	raw.Email = strings.TrimSpace(raw.Email)
	raw.Company = strings.TrimSpace(raw.Company)
	raw.Phone = utils.NormalizePhone(raw.Phone, s.phoneRegion)
	raw.Message = strings.TrimSpace(raw.Message)

	lead := models.Lead{
		ID:        uuid.NewString(),
		Source:    source,
		Timestamp: s.now(),
		RawData:   raw,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(s.snapshot(), lead)
	s.commit(ctx, next, true)
	return lead.Clone(), nil
}

// SetQualification replaces a lead's qualification. Unknown ids are ignored.
func (s *Store) SetQualification(ctx context.Context, id string, q models.Qualification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.update(id, func(l *models.Lead) {
		qc := q.Clone()
		l.Qualification = &qc
	})
	if !ok {
		return
	}
	s.commit(ctx, next, true)
}

// SetOverride records a manual verdict that supersedes any qualification.
// Unknown ids are ignored once the arguments validate.
func (s *Store) SetOverride(ctx context.Context, id string, status models.Status, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperr.Validation("override reason is required").WithOp("store.set_override")
	}
	if !status.Overridable() {
		return apperr.Validation("override status must be qualified or disqualified").WithOp("store.set_override").WithDetails(string(status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.update(id, func(l *models.Lead) {
		l.ManualOverride = &models.ManualOverride{Status: status, Reason: reason, Timestamp: s.now()}
	})
	if !ok {
		return nil
	}
	s.commit(ctx, next, true)
	return nil
}

// SetNotes replaces a lead's notes. Notes never affect stats.
func (s *Store) SetNotes(ctx context.Context, id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.update(id, func(l *models.Lead) {
		l.Notes = text
	})
	if !ok {
		return
	}
	s.commit(ctx, next, false)
}

func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if l.ID != id {
			next = append(next, l)
		}
	}
	if len(next) == len(s.leads) {
		return
	}
	s.commit(ctx, next, true)
}

// Query filters by effective status (or FilterAll) and a case-insensitive
// search over name, email, company and message. Newest first.
func (s *Store) Query(filter, search string) []models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if filter != "" && filter != FilterAll && string(models.EffectiveStatus(l)) != filter {
			continue
		}
		if needle != "" && !matches(l, needle) {
			continue
		}
		out = append(out, l.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func matches(l models.Lead, needle string) bool {
	for _, field := range []string{l.RawData.Name, l.RawData.Email, l.RawData.Company, l.RawData.Message} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (s *Store) Get(id string) (models.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.leads {
		if l.ID == id {
			return l.Clone(), true
		}
	}
	return models.Lead{}, false
}

// Leads returns every lead in stored order.
func (s *Store) Leads() []models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Unqualified returns leads that have never received an automated verdict.
func (s *Store) Unqualified() []models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Lead
	for _, l := range s.leads {
		if l.Qualification == nil {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (s *Store) Stats() models.LeadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// snapshot deep-copies the collection. Callers hold mu.
func (s *Store) snapshot() []models.Lead {
	out := make([]models.Lead, len(s.leads))
	for i, l := range s.leads {
		out[i] = l.Clone()
	}
	return out
}

// update applies fn to a copy of the lead with id. Callers hold mu.
func (s *Store) update(id string, fn func(l *models.Lead)) ([]models.Lead, bool) {
	next := s.snapshot()
	for i := range next {
		if next[i].ID == id {
			fn(&next[i])
			return next, true
		}
	}
	return nil, false
}

// commit is the single write path: swap the collection, recompute stats when
// asked, then persist. A failed save is logged and the in-memory state kept.
// Callers hold mu.
func (s *Store) commit(ctx context.Context, next []models.Lead, recompute bool) {
	if next == nil {
		next = []models.Lead{}
	}
	s.leads = next
	if recompute {
		s.stats = stats.Compute(s.leads)
	}
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(context.WithoutCancel(ctx), s.leads); err != nil {
		s.logger.Error().Err(err).Int("leads", len(s.leads)).Msg("persist leads failed")
	}
}
