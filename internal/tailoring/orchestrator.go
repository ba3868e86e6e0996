// Package tailoring rewrites a candidate profile for a specific job description
// using the generative-text service, falling back to the source content stage by
// stage whenever the service fails or returns unusable output.
package tailoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/jobfit/internal/llm"
	"github.com/jonathan/jobfit/internal/observability"
	"github.com/jonathan/jobfit/internal/prompts"
	"github.com/jonathan/jobfit/internal/schemas"
	"github.com/jonathan/jobfit/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultStageTimeout bounds each stage's service call when none is configured.
const DefaultStageTimeout = 45 * time.Second

// Output token budgets per stage
const (
	summaryMaxTokens    = 1024
	skillsMaxTokens     = 4096
	experienceMaxTokens = 8192
)

// ErrNilProfile is returned by Tailor when no profile is given.
var ErrNilProfile = errors.New("tailoring: profile is nil")

// Orchestrator runs the summary, skills and experience stages concurrently.
type Orchestrator struct {
	client       llm.Client
	stageTimeout time.Duration
	logger       logrus.FieldLogger
}

// NewOrchestrator creates an Orchestrator. A zero stageTimeout selects DefaultStageTimeout.
func NewOrchestrator(client llm.Client, stageTimeout time.Duration, logger logrus.FieldLogger) *Orchestrator {
	if stageTimeout <= 0 {
		stageTimeout = DefaultStageTimeout
	}
	return &Orchestrator{client: client, stageTimeout: stageTimeout, logger: observability.OrDiscard(logger)}
}

type summaryResult struct {
	summary string
	title   string
	err     *StageError
}

type skillsResult struct {
	skills types.SkillMap
	err    *StageError
}

type experienceResult struct {
	experience []types.Experience
	err        *StageError
}

// Tailor returns profile rewritten for jobDescription. Content problems never
// produce an error: each failed stage leaves its fields equal to the source
// profile. An error is returned only for a nil profile or when ctx itself was
// cancelled.
func (o *Orchestrator) Tailor(ctx context.Context, profile *types.CandidateProfile, jobDescription string) (*types.TailoredProfile, error) {
	if profile == nil {
		return nil, ErrNilProfile
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tailoring cancelled: %w", err)
	}

	var (
		sum summaryResult
		sk  skillsResult
		exp experienceResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum = o.tailorSummary(gctx, profile, jobDescription)
		return nil
	})
	g.Go(func() error {
		sk = o.tailorSkills(gctx, profile, jobDescription)
		return nil
	})
	g.Go(func() error {
		exp = o.tailorExperience(gctx, profile, jobDescription)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tailoring cancelled: %w", err)
	}

	tailored := &types.TailoredProfile{CandidateProfile: *profile.Clone()}
	tailored.Summary = sum.summary
	tailored.PersonalInfo.Title = sum.title
	tailored.Skills = sk.skills
	tailored.Experience = exp.experience
	tailored.StageOutcomes = []types.StageOutcome{
		o.outcome(types.StageSummary, sum.err),
		o.outcome(types.StageSkills, sk.err),
		o.outcome(types.StageExperience, exp.err),
	}

	return tailored, nil
}

func (o *Orchestrator) outcome(stage string, err *StageError) types.StageOutcome {
	log := o.logger.WithField("stage", stage)
	if err == nil {
		log.Debug("stage tailored")
		return types.StageOutcome{Stage: stage, Tailored: true}
	}
	log.WithError(err).WithField("fallback", true).Warn("stage fell back to source content")
	return types.StageOutcome{Stage: stage, Tailored: false, Reason: err.reason()}
}

// call runs one service request under the stage timeout.
func (o *Orchestrator) call(ctx context.Context, stage, promptKey string, data map[string]string, maxTokens int) (string, *StageError) {
	if o.client == nil {
		return "", &StageError{Stage: stage, Message: "no generative-text client configured"}
	}

	prompt, err := prompts.Render(prompts.TailoringFile, promptKey, data)
	if err != nil {
		return "", &StageError{Stage: stage, Message: "prompt unavailable", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	response, err := o.client.GenerateJSON(ctx, prompt, llm.TierStandard, maxTokens)
	if err != nil {
		msg := "service call failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "service call timed out"
		}
		return "", &StageError{Stage: stage, Message: msg, Cause: err}
	}
	return response, nil
}

func (o *Orchestrator) tailorSummary(ctx context.Context, profile *types.CandidateProfile, jobDescription string) summaryResult {
	result := summaryResult{summary: profile.Summary, title: profile.PersonalInfo.Title}

	response, stageErr := o.call(ctx, types.StageSummary, "tailor-summary", map[string]string{
		"JobDescription": jobDescription,
		"Title":          profile.PersonalInfo.Title,
		"Summary":        profile.Summary,
	}, summaryMaxTokens)
	if stageErr != nil {
		result.err = stageErr
		return result
	}

	summary, title, stageErr := ParseSummary(response)
	if stageErr != nil {
		result.err = stageErr
		return result
	}
	if summary != "" {
		result.summary = summary
	}
	if title != "" {
		result.title = title
	}
	return result
}

func (o *Orchestrator) tailorSkills(ctx context.Context, profile *types.CandidateProfile, jobDescription string) skillsResult {
	result := skillsResult{skills: profile.Skills.Clone()}
	if profile.Skills.Len() == 0 {
		result.err = &StageError{Stage: types.StageSkills, Message: "profile has no skills"}
		return result
	}

	skillsJSON, err := json.MarshalIndent(profile.Skills, "", "  ")
	if err != nil {
		result.err = &StageError{Stage: types.StageSkills, Message: "encode skills", Cause: err}
		return result
	}

	response, stageErr := o.call(ctx, types.StageSkills, "filter-skills", map[string]string{
		"JobDescription": jobDescription,
		"Skills":         string(skillsJSON),
	}, skillsMaxTokens)
	if stageErr != nil {
		result.err = stageErr
		return result
	}

	skills, stageErr := ParseSkills(response)
	if stageErr != nil {
		result.err = stageErr
		return result
	}
	result.skills = skills
	return result
}

func (o *Orchestrator) tailorExperience(ctx context.Context, profile *types.CandidateProfile, jobDescription string) experienceResult {
	result := experienceResult{experience: types.CloneExperience(profile.Experience)}
	if len(profile.Experience) == 0 {
		result.err = &StageError{Stage: types.StageExperience, Message: "profile has no experience"}
		return result
	}

	experienceJSON, err := json.MarshalIndent(profile.Experience, "", "  ")
	if err != nil {
		result.err = &StageError{Stage: types.StageExperience, Message: "encode experience", Cause: err}
		return result
	}

	response, stageErr := o.call(ctx, types.StageExperience, "reorder-experience", map[string]string{
		"JobDescription": jobDescription,
		"Experience":     string(experienceJSON),
	}, experienceMaxTokens)
	if stageErr != nil {
		result.err = stageErr
		return result
	}

	experience, stageErr := ParseExperience(response)
	if stageErr != nil {
		result.err = stageErr
		return result
	}
	result.experience = experience
	return result
}

// ParseSummary decodes a {"summary","title"} response. A key that is missing,
// empty or not a string is reported as "" and the caller keeps the source
// value for it.
func ParseSummary(response string) (summary, title string, stageErr *StageError) {
	doc := llm.ExtractJSONObject(response)
	if err := schemas.Validate(schemas.Summary, []byte(doc)); err != nil {
		return "", "", &StageError{Stage: types.StageSummary, Message: "invalid JSON", Cause: err}
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return "", "", &StageError{Stage: types.StageSummary, Message: "invalid JSON", Cause: err}
	}

	summary = strings.TrimSpace(stringField(parsed, "summary"))
	title = strings.Join(strings.Fields(stringField(parsed, "title")), " ")
	if summary == "" && title == "" {
		return "", "", &StageError{Stage: types.StageSummary, Message: "response has neither summary nor title"}
	}
	return summary, title, nil
}

// stringField returns the string value of key, or "" when it is absent or
// holds any other JSON type.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// ParseSkills decodes a skills map response. Duplicate names within a category
// are dropped so the result keeps the case-insensitive uniqueness of the source.
func ParseSkills(response string) (types.SkillMap, *StageError) {
	doc := llm.ExtractJSONObject(response)
	if err := schemas.Validate(schemas.SkillMap, []byte(doc)); err != nil {
		return types.SkillMap{}, &StageError{Stage: types.StageSkills, Message: "invalid skills map", Cause: err}
	}

	var parsed types.SkillMap
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return types.SkillMap{}, &StageError{Stage: types.StageSkills, Message: "invalid skills map", Cause: err}
	}

	out := types.SkillMap{Categories: make([]types.SkillCategory, 0, parsed.Len())}
	for _, c := range parsed.Categories {
		for _, s := range c.Skills {
			s.Name = strings.TrimSpace(s.Name)
			if s.Name == "" {
				continue
			}
			out.Add(c.Name, s)
		}
	}
	if out.Len() == 0 {
		return types.SkillMap{}, &StageError{Stage: types.StageSkills, Message: "response has no skills"}
	}
	return out, nil
}

// ParseExperience locates the first JSON array in response and decodes it.
func ParseExperience(response string) ([]types.Experience, *StageError) {
	doc, ok := llm.ExtractJSONArray(response)
	if !ok {
		return nil, &StageError{Stage: types.StageExperience, Message: "no JSON array in response"}
	}
	if err := schemas.Validate(schemas.Experience, []byte(doc)); err != nil {
		return nil, &StageError{Stage: types.StageExperience, Message: "invalid experience list", Cause: err}
	}

	var experience []types.Experience
	if err := json.Unmarshal([]byte(doc), &experience); err != nil {
		return nil, &StageError{Stage: types.StageExperience, Message: "invalid experience list", Cause: err}
	}
	for i := range experience {
		if experience[i].Achievements == nil {
			experience[i].Achievements = []string{}
		}
	}
	return experience, nil
}
