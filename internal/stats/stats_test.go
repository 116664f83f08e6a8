package stats

import (
	"testing"
	"time"

	"github.com/leadtriage/backend/internal/models"
)

func qualified(id string, score float64) models.Lead {
	return models.Lead{
		ID:            id,
		Qualification: &models.Qualification{Score: score, Status: models.StatusForScore(score)},
	}
}

func TestComputeCountsByEffectiveStatus(t *testing.T) {
	overridden := qualified("4", 20)
	overridden.ManualOverride = &models.ManualOverride{Status: models.StatusQualified, Reason: "budget confirmed", Timestamp: time.Now()}

	overrideOnly := models.Lead{ID: "5", ManualOverride: &models.ManualOverride{Status: models.StatusDisqualified, Reason: "spam"}}

	leads := []models.Lead{
		{ID: "1"},
		qualified("2", 90),
		qualified("3", 55),
		overridden,
		overrideOnly,
	}

	s := Compute(leads)
	if s.Total != 5 {
		t.Fatalf("expected total 5, got %d", s.Total)
	}
	if s.Pending != 1 || s.Qualified != 2 || s.Reviewing != 1 || s.Disqualified != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.Pending+s.Qualified+s.Disqualified+s.Reviewing != s.Total {
		t.Fatalf("status counts do not partition the collection: %+v", s)
	}
	// 90, 55 and the overridden lead's 20; the override-only lead has no score.
	if s.AvgScore != 55 {
		t.Fatalf("expected avg 55, got %v", s.AvgScore)
	}
}

func TestComputeCountsZeroScoreInAverage(t *testing.T) {
	s := Compute([]models.Lead{qualified("1", 0), qualified("2", 80)})
	if s.AvgScore != 40 {
		t.Fatalf("expected zero score to count toward the denominator, got avg %v", s.AvgScore)
	}
	if !HasScore(qualified("3", 0)) {
		t.Fatalf("expected a zero score to count as present")
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)
	if s != (models.LeadStats{}) {
		t.Fatalf("expected zero stats, got %+v", s)
	}
}
