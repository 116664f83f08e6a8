// Package stats derives dashboard summary counts from a lead collection.
package stats

import "github.com/leadtriage/backend/internal/models"

// HasScore decides average-score membership. Any lead carrying a
// qualification contributes, including a score of exactly 0 and leads whose
// status was later overridden.
func HasScore(l models.Lead) bool {
	return l.Qualification != nil
}

// Compute is pure: the same collection always yields the same stats.
func Compute(leads []models.Lead) models.LeadStats {
	out := models.LeadStats{Total: len(leads)}

	var (
		scoreSum float64
		scored   int
	)
	for _, l := range leads {
		switch models.EffectiveStatus(l) {
		case models.StatusPending:
			out.Pending++
		case models.StatusQualified:
			out.Qualified++
		case models.StatusDisqualified:
			out.Disqualified++
		case models.StatusReviewing:
			out.Reviewing++
		}
		if HasScore(l) {
			scoreSum += l.Qualification.Score
			scored++
		}
	}

	if scored > 0 {
		out.AvgScore = scoreSum / float64(scored)
	}
	return out
}
