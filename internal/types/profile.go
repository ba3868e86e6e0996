// Package types provides type definitions for structured data used throughout the jobfit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CandidateProfile is the structured resume data for one account.
type CandidateProfile struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary"`
	Skills       SkillMap     `json:"skills"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Activities   []Activity   `json:"activities"`
}

// PersonalInfo holds the candidate's name, headline title and contact fields
type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Experience represents one role held by the candidate
type Experience struct {
	Role         string   `json:"role"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Achievements []string `json:"achievements"`
}

// Education represents a degree or program
type Education struct {
	Institution string   `json:"institution"`
	Degree      string   `json:"degree"`
	Field       string   `json:"field,omitempty"`
	Location    string   `json:"location,omitempty"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	Details     []string `json:"details,omitempty"`
}

// Activity represents volunteering, projects or other extracurricular entries
type Activity struct {
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

// Clone returns a deep copy of the profile.
func (p *CandidateProfile) Clone() *CandidateProfile {
	if p == nil {
		return nil
	}
	out := &CandidateProfile{
		PersonalInfo: p.PersonalInfo,
		Summary:      p.Summary,
		Skills:       p.Skills.Clone(),
		Experience:   CloneExperience(p.Experience),
	}
	if p.Education != nil {
		out.Education = make([]Education, len(p.Education))
		for i, e := range p.Education {
			e.Details = cloneStrings(e.Details)
			out.Education[i] = e
		}
	}
	if p.Activities != nil {
		out.Activities = append([]Activity(nil), p.Activities...)
	}
	return out
}

// CloneExperience deep-copies an experience list, preserving nil.
func CloneExperience(in []Experience) []Experience {
	if in == nil {
		return nil
	}
	out := make([]Experience, len(in))
	for i, e := range in {
		e.Achievements = cloneStrings(e.Achievements)
		out[i] = e
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
