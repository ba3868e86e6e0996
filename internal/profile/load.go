package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/jobfit/internal/types"
)

// LoadFile loads and normalizes a profile from a JSON file
func LoadFile(path string) (*types.CandidateProfile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}
	return Decode(content)
}

// Decode parses and normalizes a profile document.
func Decode(content []byte) (*types.CandidateProfile, error) {
	var p types.CandidateProfile
	if err := json.Unmarshal(content, &p); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}
	if err := Normalize(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Normalize trims text fields, drops blank achievements and nameless skills,
// and removes case-insensitive duplicate skills within a category, keeping the
// first occurrence. Category order is preserved.
func Normalize(p *types.CandidateProfile) error {
	p.PersonalInfo.Name = strings.TrimSpace(p.PersonalInfo.Name)
	p.PersonalInfo.Title = strings.TrimSpace(p.PersonalInfo.Title)
	p.Summary = strings.TrimSpace(p.Summary)

	for i, c := range p.Skills.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return &NormalizationError{Message: fmt.Sprintf("skill category %d has no name", i)}
		}
		seen := make(map[string]bool, len(c.Skills))
		kept := c.Skills[:0]
		for _, s := range c.Skills {
			s.Name = strings.TrimSpace(s.Name)
			key := strings.ToLower(s.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, s)
		}
		p.Skills.Categories[i].Skills = kept
	}

	for i := range p.Experience {
		e := &p.Experience[i]
		e.Role = strings.TrimSpace(e.Role)
		e.Company = strings.TrimSpace(e.Company)
		if e.Role == "" && e.Company == "" {
			return &NormalizationError{Message: fmt.Sprintf("experience entry %d has neither role nor company", i)}
		}
		achievements := e.Achievements[:0]
		for _, a := range e.Achievements {
			if a = strings.TrimSpace(a); a != "" {
				achievements = append(achievements, a)
			}
		}
		e.Achievements = achievements
	}
	return nil
}
