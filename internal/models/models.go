package models

import "time"

type Source string

const (
	SourceEmail      Source = "email"
	SourceForm       Source = "form"
	SourceChatWidget Source = "chat-widget"
	SourceSocial     Source = "social"
)

func (s Source) Valid() bool {
	switch s {
	case SourceEmail, SourceForm, SourceChatWidget, SourceSocial:
		return true
	}
	return false
}

type Status string

const (
	StatusPending      Status = "pending"
	StatusQualified    Status = "qualified"
	StatusDisqualified Status = "disqualified"
	StatusReviewing    Status = "reviewing"
)

// Valid reports whether s is a status a scoring reply may carry.
func (s Status) Valid() bool {
	switch s {
	case StatusQualified, StatusDisqualified, StatusReviewing:
		return true
	}
	return false
}

// Overridable reports whether s is an accepted manual override target.
func (s Status) Overridable() bool {
	return s == StatusQualified || s == StatusDisqualified
}

const (
	QualifiedThreshold    = 70
	DisqualifiedThreshold = 40
)

// StatusForScore applies the rubric's status rule: >=70 qualified, <40 disqualified.
func StatusForScore(score float64) Status {
	switch {
	case score >= QualifiedThreshold:
		return StatusQualified
	case score < DisqualifiedThreshold:
		return StatusDisqualified
	default:
		return StatusReviewing
	}
}

type RawData struct {
	Name    string `json:"name,omitempty" yaml:"name"`
	Email   string `json:"email,omitempty" yaml:"email"`
	Company string `json:"company,omitempty" yaml:"company"`
	Phone   string `json:"phone,omitempty" yaml:"phone"`
	Message string `json:"message" yaml:"message"`
}

type Signals struct {
	HasBudget    bool `json:"hasBudget"`
	HasTimeline  bool `json:"hasTimeline"`
	HasAuthority bool `json:"hasAuthority"`
	HasNeed      bool `json:"hasNeed"`
}

type ExtractedData struct {
	BudgetRange *string  `json:"budgetRange,omitempty"`
	Timeline    *string  `json:"timeline,omitempty"`
	Role        *string  `json:"role,omitempty"`
	PainPoints  []string `json:"painPoints"`
}

type Qualification struct {
	Score         float64       `json:"score"`
	Status        Status        `json:"status"`
	Reasoning     string        `json:"reasoning"`
	Signals       Signals       `json:"signals"`
	ExtractedData ExtractedData `json:"extractedData"`
}

type ManualOverride struct {
	Status    Status    `json:"status"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type Lead struct {
	ID             string          `json:"id" yaml:"id"`
	Source         Source          `json:"source" yaml:"source"`
	Timestamp      time.Time       `json:"timestamp" yaml:"timestamp"`
	RawData        RawData         `json:"rawData" yaml:"rawData"`
	Qualification  *Qualification  `json:"qualification,omitempty" yaml:"-"`
	ManualOverride *ManualOverride `json:"manualOverride,omitempty" yaml:"-"`
	Notes          string          `json:"notes,omitempty" yaml:"notes"`
}

// EffectiveStatus is the only place a lead's status is derived: override,
// then automated qualification, then pending.
func EffectiveStatus(l Lead) Status {
	if l.ManualOverride != nil {
		return l.ManualOverride.Status
	}
	if l.Qualification != nil {
		return l.Qualification.Status
	}
	return StatusPending
}

// Clone returns a deep copy so callers never share qualification or override
// state with the store.
func (l Lead) Clone() Lead {
	out := l
	if l.Qualification != nil {
		q := l.Qualification.Clone()
		out.Qualification = &q
	}
	if l.ManualOverride != nil {
		o := *l.ManualOverride
		out.ManualOverride = &o
	}
	return out
}

func (q Qualification) Clone() Qualification {
	out := q
	out.ExtractedData.BudgetRange = cloneString(q.ExtractedData.BudgetRange)
	out.ExtractedData.Timeline = cloneString(q.ExtractedData.Timeline)
	out.ExtractedData.Role = cloneString(q.ExtractedData.Role)
	out.ExtractedData.PainPoints = append([]string{}, q.ExtractedData.PainPoints...)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type LeadStats struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Qualified    int     `json:"qualified"`
	Disqualified int     `json:"disqualified"`
	Reviewing    int     `json:"reviewing"`
	AvgScore     float64 `json:"avgScore"`
}
