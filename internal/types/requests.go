package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// GenerateRequest asks for tailored documents for one job description.
type GenerateRequest struct {
	JobDescription string         `json:"jobDescription" validate:"required,min=20,max=50000"`
	DocumentKinds  []DocumentKind `json:"documentKinds" validate:"omitempty,max=2,dive,oneof=resume cover-letter"`
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	return validate.Struct(r)
}

// Kinds returns the requested document kinds, defaulting to a resume.
func (r *GenerateRequest) Kinds() []DocumentKind {
	if len(r.DocumentKinds) == 0 {
		return []DocumentKind{DocumentResume}
	}
	seen := make(map[DocumentKind]bool, len(r.DocumentKinds))
	kinds := make([]DocumentKind, 0, len(r.DocumentKinds))
	for _, k := range r.DocumentKinds {
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// RegenerateRequest regenerates a single document type for a job description.
type RegenerateRequest struct {
	JobDescription string       `json:"jobDescription" validate:"required,min=20,max=50000"`
	DocumentKind   DocumentKind `json:"documentKind" validate:"required,oneof=resume cover-letter"`
}

// Validate validates the RegenerateRequest using the validator.
func (r *RegenerateRequest) Validate() error {
	return validate.Struct(r)
}

// AddSkillRequest adds one skill label to the caller's profile.
type AddSkillRequest struct {
	Skill string `json:"skill" validate:"required,min=1,max=100"`
}

// Validate validates the AddSkillRequest using the validator.
func (r *AddSkillRequest) Validate() error {
	return validate.Struct(r)
}
