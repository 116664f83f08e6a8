package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/leadtriage/backend/internal/models"
	"github.com/leadtriage/backend/internal/utils"
)

var (
	budgetRe    = regexp.MustCompile(`(?i)(\$\s?\d[\d,.]*\s?[km]?|\bbudget\b|\bfunding\b|\bfunded\b)`)
	timelineRe  = regexp.MustCompile(`(?i)(\basap\b|\burgent\w*|\bdeadline\b|\bby (next )?(week|month|quarter|q[1-4])\b|\bwithin \w+ (days|weeks|months)\b|\bthis (week|month|quarter)\b)`)
	authorityRe = regexp.MustCompile(`(?i)\b(ceo|cto|cfo|coo|founder|co-founder|owner|director|vp|head of|manager)\b`)
	needRe      = regexp.MustCompile(`(?i)\b(need|needs|problem|struggl\w*|pain|looking for|help|issue|replace)\b`)
)

// MockQualifier scores leads offline with keyword heuristics. Results are
// deterministic for a given lead id and message.
type MockQualifier struct{}

func (MockQualifier) Qualify(ctx context.Context, lead models.Lead) (models.Qualification, error) {
	if err := ctx.Err(); err != nil {
		return models.Qualification{}, err
	}

	text := strings.Join([]string{lead.RawData.Name, lead.RawData.Company, lead.RawData.Message}, " ")
	sig := models.Signals{
		HasBudget:    budgetRe.MatchString(text),
		HasTimeline:  timelineRe.MatchString(text),
		HasAuthority: authorityRe.MatchString(text),
		HasNeed:      needRe.MatchString(text),
	}

	met := 0
	for _, ok := range []bool{sig.HasBudget, sig.HasTimeline, sig.HasAuthority, sig.HasNeed} {
		if ok {
			met++
		}
	}
	jitter := float64(utils.StableJitter(5, lead.ID, lead.RawData.Message))
	score := 15 + float64(met)*20 + jitter

	var data models.ExtractedData
	if m := budgetRe.FindString(text); sig.HasBudget && strings.HasPrefix(strings.TrimSpace(m), "$") {
		v := strings.TrimSpace(m)
		data.BudgetRange = &v
	}
	if m := timelineRe.FindString(text); sig.HasTimeline {
		v := strings.ToLower(m)
		data.Timeline = &v
	}
	if m := authorityRe.FindString(text); sig.HasAuthority {
		v := strings.ToUpper(m[:1]) + m[1:]
		data.Role = &v
	}
	data.PainPoints = []string{}
	if sig.HasNeed {
		data.PainPoints = append(data.PainPoints, firstSentence(lead.RawData.Message))
	}

	return models.Qualification{
		Score:         score,
		Status:        models.StatusForScore(score),
		Reasoning:     fmt.Sprintf("Offline heuristic matched %d of 4 BANT criteria.", met),
		Signals:       sig,
		ExtractedData: data,
	}, nil
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?"); i > 0 {
		return s[:i]
	}
	return s
}
