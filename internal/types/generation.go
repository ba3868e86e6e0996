package types

import "time"

// Job detail defaults used when extraction fails or a field is absent
const (
	DefaultJobTitle   = "Software Engineer"
	DefaultJobCompany = "Company"
)

// JobDetails is the minimal job metadata extracted from a job description
type JobDetails struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// DefaultJobDetails returns the fallback job details.
func DefaultJobDetails() JobDetails {
	return JobDetails{Title: DefaultJobTitle, Company: DefaultJobCompany}
}

// Tailoring stage names
const (
	StageSummary     = "summary"
	StageSkills      = "skills"
	StageExperience  = "experience"
	StageCoverLetter = "cover_letter"
)

// StageOutcome records whether a tailoring stage produced content or fell back.
type StageOutcome struct {
	Stage    string `json:"stage"`
	Tailored bool   `json:"tailored"`
	Reason   string `json:"reason,omitempty"`
}

// TailoredProfile is a CandidateProfile whose summary, title, skills and experience were
// rewritten for one job description. Fields of failed stages equal the source profile.
type TailoredProfile struct {
	CandidateProfile
	StageOutcomes []StageOutcome `json:"stageOutcomes"`
}

// Outcome returns the recorded outcome for a stage.
func (t *TailoredProfile) Outcome(stage string) (StageOutcome, bool) {
	for _, o := range t.StageOutcomes {
		if o.Stage == stage {
			return o, true
		}
	}
	return StageOutcome{}, false
}

// CoverLetter holds the generated cover letter body
type CoverLetter struct {
	Greeting   string   `json:"greeting"`
	Paragraphs []string `json:"paragraphs"`
	Closing    string   `json:"closing"`
	Tailored   bool     `json:"tailored"`
}

// GenerationKind distinguishes first generation from regeneration; both share a quota.
type GenerationKind string

// Generation kinds
const (
	GenerationInitial      GenerationKind = "initial"
	GenerationRegeneration GenerationKind = "regeneration"
)

// DocumentKind is the type of document being produced
type DocumentKind string

// Document kinds
const (
	DocumentResume      DocumentKind = "resume"
	DocumentCoverLetter DocumentKind = "cover-letter"
)

// Valid reports whether k is a known document kind.
func (k DocumentKind) Valid() bool {
	return k == DocumentResume || k == DocumentCoverLetter
}

// Tier names
const (
	TierFree      = "free"
	TierStarter   = "starter"
	TierUnlimited = "unlimited"
)

// UnlimitedQuota is the MonthlyLimit reported for tiers without a cap
const UnlimitedQuota = -1

// UsageDecision is the result of a usage gate check or a status read
type UsageDecision struct {
	CanProceed     bool      `json:"canProceed"`
	MonthlyCount   int       `json:"monthlyCount"`
	MonthlyLimit   int       `json:"monthlyLimit"`
	Tier           string    `json:"tier"`
	NeedsUpgrade   bool      `json:"needsUpgrade"`
	SuggestedTier  string    `json:"suggestedTier,omitempty"`
	SuggestedPrice float64   `json:"suggestedPrice,omitempty"`
	Period         string    `json:"period"`
	ResetsAt       time.Time `json:"resetsAt"`
}

// UsageEvent records one approved generation attempt.
type UsageEvent struct {
	ID           string         `json:"id"`
	AccountID    string         `json:"accountId"`
	Period       string         `json:"period"`
	Kind         GenerationKind `json:"kind"`
	DocumentKind DocumentKind   `json:"documentKind"`
	Count        int            `json:"count"`
	CreatedAt    time.Time      `json:"createdAt"`
}
