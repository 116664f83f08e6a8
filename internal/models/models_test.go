package models

import (
	"testing"
	"time"
)

func TestEffectiveStatusPrecedence(t *testing.T) {
	lead := Lead{ID: "1"}
	if got := EffectiveStatus(lead); got != StatusPending {
		t.Fatalf("expected pending, got %s", got)
	}

	lead.Qualification = &Qualification{Score: 20, Status: StatusDisqualified}
	if got := EffectiveStatus(lead); got != StatusDisqualified {
		t.Fatalf("expected disqualified, got %s", got)
	}

	lead.ManualOverride = &ManualOverride{Status: StatusQualified, Reason: "called back", Timestamp: time.Now()}
	if got := EffectiveStatus(lead); got != StatusQualified {
		t.Fatalf("expected override to win, got %s", got)
	}

	lead.Qualification = nil
	if got := EffectiveStatus(lead); got != StatusQualified {
		t.Fatalf("expected override without qualification, got %s", got)
	}
}

func TestStatusForScoreBoundaries(t *testing.T) {
	cases := map[float64]Status{
		0:    StatusDisqualified,
		39.9: StatusDisqualified,
		40:   StatusReviewing,
		69:   StatusReviewing,
		70:   StatusQualified,
		100:  StatusQualified,
	}
	for score, want := range cases {
		if got := StatusForScore(score); got != want {
			t.Fatalf("score %v: expected %s, got %s", score, want, got)
		}
	}
}

func TestStatusOverridable(t *testing.T) {
	if !StatusQualified.Overridable() || !StatusDisqualified.Overridable() {
		t.Fatalf("expected qualified and disqualified to be override targets")
	}
	if StatusReviewing.Overridable() || StatusPending.Overridable() {
		t.Fatalf("reviewing and pending must not be override targets")
	}
}

func TestCloneDoesNotShareQualification(t *testing.T) {
	budget := "$3-5k/month"
	lead := Lead{
		ID: "1",
		Qualification: &Qualification{
			Score:  85,
			Status: StatusQualified,
			ExtractedData: ExtractedData{
				BudgetRange: &budget,
				PainPoints:  []string{"spreadsheets"},
			},
		},
	}

	c := lead.Clone()
	c.Qualification.Score = 10
	c.Qualification.ExtractedData.PainPoints[0] = "changed"
	*c.Qualification.ExtractedData.BudgetRange = "changed"

	if lead.Qualification.Score != 85 {
		t.Fatalf("score leaked through clone")
	}
	if lead.Qualification.ExtractedData.PainPoints[0] != "spreadsheets" {
		t.Fatalf("pain points leaked through clone")
	}
	if *lead.Qualification.ExtractedData.BudgetRange != "$3-5k/month" {
		t.Fatalf("budget range leaked through clone")
	}
}
