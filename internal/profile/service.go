package profile

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/jobfit/internal/observability"
	"github.com/jonathan/jobfit/internal/types"
	"github.com/sirupsen/logrus"
)

const maxSkillLabelLength = 100

// SkillClassifier picks a category for a new skill given the profile's
// existing category names.
type SkillClassifier interface {
	ClassifyWithCategories(ctx context.Context, label string, known []string) string
}

// AddSkillResult reports where a skill landed
type AddSkillResult struct {
	Category      string           `json:"category"`
	Skill         types.SkillEntry `json:"skill"`
	AlreadyExists bool             `json:"alreadyExists"`
}

// Service is the profile read path and the add-skill write path
type Service struct {
	store      Store
	classifier SkillClassifier
	logger     logrus.FieldLogger
}

// NewService creates a Service.
func NewService(store Store, classifier SkillClassifier, logger logrus.FieldLogger) *Service {
	return &Service{store: store, classifier: classifier, logger: observability.OrDiscard(logger)}
}

// Load returns the account's profile.
func (s *Service) Load(ctx context.Context, accountID string) (*types.CandidateProfile, error) {
	return s.store.Load(ctx, accountID)
}

// AddSkill adds label to the profile unless a skill with the same name exists
// in any category (compared case-insensitively), in which case nothing is
// written. New skills are classified and get DefaultSkillYears.
func (s *Service) AddSkill(ctx context.Context, accountID, label string) (*AddSkillResult, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, &ValidationError{Field: "skill", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(label) > maxSkillLabelLength {
		return nil, &ValidationError{Field: "skill", Message: "must be at most 100 characters"}
	}

	current, err := s.store.Load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if category, entry, ok := current.Skills.Find(label); ok {
		return &AddSkillResult{Category: category, Skill: entry, AlreadyExists: true}, nil
	}

	// classify outside the write so the LLM call never holds the profile lock
	category := s.classifier.ClassifyWithCategories(ctx, label, current.Skills.Names())
	result := &AddSkillResult{
		Category: category,
		Skill:    types.SkillEntry{Name: label, YearsOfExperience: types.YearsInt(types.DefaultSkillYears)},
	}

	err = s.store.UpdateSkills(ctx, accountID, func(skills *types.SkillMap) (bool, error) {
		// a concurrent request may have added it meanwhile
		if existing, entry, ok := skills.Find(label); ok {
			result.Category, result.Skill, result.AlreadyExists = existing, entry, true
			return false, nil
		}
		return skills.Add(category, result.Skill), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"account_id":     accountID,
		"skill":          label,
		"category":       result.Category,
		"already_exists": result.AlreadyExists,
	}).Info("skill added")
	return result, nil
}
