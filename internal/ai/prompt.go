package ai

import (
	"strings"

	"github.com/leadtriage/backend/internal/models"
)

const notProvided = "Not provided"

const qualificationPrompt = `You are a sales lead qualification expert. Analyze the following lead and determine if they're worth pursuing.

LEAD INFORMATION:
Source: {source}
Name: {name}
Company: {company}
Email: {email}
Message: {message}

QUALIFICATION CRITERIA (BANT Framework):
1. Budget - Do they mention or imply budget/financial capacity?
2. Authority - Are they a decision-maker (titles like CEO, CTO, Director, Manager)?
3. Need - Do they describe a clear problem or pain point?
4. Timeline - Do they mention urgency or a deadline?

SCORING GUIDE:
- 80-100: Strong lead (3-4 BANT criteria met, clear intent)
- 60-79: Moderate lead (2 BANT criteria met, some potential)
- 40-59: Weak lead (1 BANT criterion met, vague interest)
- 0-39: Poor lead (no clear criteria, tire-kicker)

Return ONLY a valid JSON object with this exact structure:
{
  "score": <number 0-100>,
  "status": "<qualified|disqualified|reviewing>",
  "reasoning": "<1 concise sentence explaining the score>",
  "signals": {
    "hasBudget": <boolean>,
    "hasTimeline": <boolean>,
    "hasAuthority": <boolean>,
    "hasNeed": <boolean>
  },
  "extractedData": {
    "budgetRange": "<extracted budget or null>",
    "timeline": "<extracted timeline or null>",
    "role": "<inferred role/title or null>",
    "painPoints": ["<pain point 1>", "<pain point 2>"]
  }
}

STATUS RULES:
- "qualified": score >= 70
- "disqualified": score < 40
- "reviewing": score 40-69`

// BuildPrompt renders the rubric for one lead. Substitution is a single pass,
// so placeholder text inside a lead's message is left untouched.
func BuildPrompt(lead models.Lead) string {
	r := strings.NewReplacer(
		"{source}", string(lead.Source),
		"{name}", orNotProvided(lead.RawData.Name),
		"{company}", orNotProvided(lead.RawData.Company),
		"{email}", orNotProvided(lead.RawData.Email),
		"{message}", lead.RawData.Message,
	)
	return r.Replace(qualificationPrompt)
}

func orNotProvided(v string) string {
	if strings.TrimSpace(v) == "" {
		return notProvided
	}
	return v
}
