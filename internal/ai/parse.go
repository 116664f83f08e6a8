package ai

import (
	"encoding/json"
	"strings"

	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/models"
)

type qualificationReply struct {
	Score         *float64       `json:"score"`
	Status        *models.Status `json:"status"`
	Reasoning     *string        `json:"reasoning"`
	Signals       models.Signals `json:"signals"`
	ExtractedData struct {
		BudgetRange *string  `json:"budgetRange"`
		Timeline    *string  `json:"timeline"`
		Role        *string  `json:"role"`
		PainPoints  []string `json:"painPoints"`
	} `json:"extractedData"`
}

// ParseQualification decodes and validates a scoring reply. The status is
// re-derived from the score when the two disagree.
func ParseQualification(content string) (models.Qualification, error) {
	const op = "ai.parse"

	var r qualificationReply
	if err := json.Unmarshal([]byte(cleanJSON(content)), &r); err != nil {
		return models.Qualification{}, apperr.Wrap(apperr.KindMalformed, "reply is not valid JSON", err).WithOp(op)
	}
	if r.Score == nil {
		return models.Qualification{}, apperr.New(apperr.KindMalformed, "reply has no numeric score").WithOp(op)
	}
	if *r.Score < 0 || *r.Score > 100 {
		return models.Qualification{}, apperr.New(apperr.KindMalformed, "reply score outside 0-100").WithOp(op).WithDetails(*r.Score)
	}
	if r.Status == nil || *r.Status == "" {
		return models.Qualification{}, apperr.New(apperr.KindMalformed, "reply has no status").WithOp(op)
	}
	if !r.Status.Valid() {
		return models.Qualification{}, apperr.New(apperr.KindMalformed, "reply status is not a known value").WithOp(op).WithDetails(string(*r.Status))
	}
	if r.Reasoning == nil || strings.TrimSpace(*r.Reasoning) == "" {
		return models.Qualification{}, apperr.New(apperr.KindMalformed, "reply has no reasoning").WithOp(op)
	}

	q := models.Qualification{
		Score:     *r.Score,
		Status:    models.StatusForScore(*r.Score),
		Reasoning: strings.TrimSpace(*r.Reasoning),
		Signals:   r.Signals,
		ExtractedData: models.ExtractedData{
			BudgetRange: nullable(r.ExtractedData.BudgetRange),
			Timeline:    nullable(r.ExtractedData.Timeline),
			Role:        nullable(r.ExtractedData.Role),
			PainPoints:  r.ExtractedData.PainPoints,
		},
	}
	if q.ExtractedData.PainPoints == nil {
		q.ExtractedData.PainPoints = []string{}
	}
	return q, nil
}

// nullable folds the rubric's "null" placeholder and blanks into nil.
func nullable(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

// cleanJSON strips markdown code fences some models wrap around JSON.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
