package tailoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/jobfit/internal/llm"
	"github.com/jonathan/jobfit/internal/observability"
	"github.com/jonathan/jobfit/internal/prompts"
	"github.com/jonathan/jobfit/internal/schemas"
	"github.com/jonathan/jobfit/internal/types"
	"github.com/sirupsen/logrus"
)

const (
	coverLetterMaxTokens = 2048
	maxHighlights        = 3
	defaultGreeting      = "Dear Hiring Manager,"
	defaultClosing       = "Sincerely,"
)

// CoverLetterWriter drafts a cover letter from a tailored profile.
type CoverLetterWriter struct {
	client  llm.Client
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewCoverLetterWriter creates a CoverLetterWriter. A zero timeout selects DefaultStageTimeout.
func NewCoverLetterWriter(client llm.Client, timeout time.Duration, logger logrus.FieldLogger) *CoverLetterWriter {
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &CoverLetterWriter{client: client, timeout: timeout, logger: observability.OrDiscard(logger)}
}

// Write returns a cover letter for job. It follows the same policy as the
// tailoring stages: on any failure a template letter built from the tailored
// profile is returned with Tailored=false.
func (w *CoverLetterWriter) Write(ctx context.Context, tailored *types.TailoredProfile, job types.JobDetails, jobDescription string) types.CoverLetter {
	if tailored == nil {
		return TemplateCoverLetter(nil, job)
	}

	letter, stageErr := w.generate(ctx, tailored, job, jobDescription)
	if stageErr != nil {
		w.logger.WithField("stage", types.StageCoverLetter).WithField("fallback", true).
			WithError(stageErr).Warn("using template cover letter")
		return TemplateCoverLetter(tailored, job)
	}
	return letter
}

func (w *CoverLetterWriter) generate(ctx context.Context, tailored *types.TailoredProfile, job types.JobDetails, jobDescription string) (types.CoverLetter, *StageError) {
	stage := types.StageCoverLetter
	if w.client == nil {
		return types.CoverLetter{}, &StageError{Stage: stage, Message: "no generative-text client configured"}
	}

	highlights := highlights(tailored.Experience, maxHighlights)
	prompt, err := prompts.Render(prompts.TailoringFile, "write-cover-letter", map[string]string{
		"Name":           tailored.PersonalInfo.Name,
		"JobTitle":       job.Title,
		"Company":        job.Company,
		"JobDescription": jobDescription,
		"Summary":        tailored.Summary,
		"Highlights":     "- " + strings.Join(highlights, "\n- "),
	})
	if err != nil {
		return types.CoverLetter{}, &StageError{Stage: stage, Message: "prompt unavailable", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	response, err := w.client.GenerateJSON(ctx, prompt, llm.TierStandard, coverLetterMaxTokens)
	if err != nil {
		return types.CoverLetter{}, &StageError{Stage: stage, Message: "service call failed", Cause: err}
	}

	return ParseCoverLetter(response)
}

// ParseCoverLetter decodes a {"greeting","paragraphs","closing"} response.
func ParseCoverLetter(response string) (types.CoverLetter, *StageError) {
	doc := llm.ExtractJSONObject(response)
	if err := schemas.Validate(schemas.CoverLetter, []byte(doc)); err != nil {
		return types.CoverLetter{}, &StageError{Stage: types.StageCoverLetter, Message: "invalid cover letter", Cause: err}
	}

	var letter types.CoverLetter
	if err := json.Unmarshal([]byte(doc), &letter); err != nil {
		return types.CoverLetter{}, &StageError{Stage: types.StageCoverLetter, Message: "invalid cover letter", Cause: err}
	}

	paragraphs := make([]string, 0, len(letter.Paragraphs))
	for _, p := range letter.Paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return types.CoverLetter{}, &StageError{Stage: types.StageCoverLetter, Message: "cover letter is empty"}
	}

	letter.Paragraphs = paragraphs
	letter.Greeting = strings.TrimSpace(letter.Greeting)
	if letter.Greeting == "" {
		letter.Greeting = defaultGreeting
	}
	letter.Closing = strings.TrimSpace(letter.Closing)
	if letter.Closing == "" {
		letter.Closing = defaultClosing
	}
	letter.Tailored = true
	return letter, nil
}

// TemplateCoverLetter builds a deterministic letter from the profile without
// calling the service.
func TemplateCoverLetter(tailored *types.TailoredProfile, job types.JobDetails) types.CoverLetter {
	paragraphs := []string{
		fmt.Sprintf("I am excited to apply for the %s position at %s.", job.Title, job.Company),
	}

	if tailored != nil {
		if s := strings.TrimSpace(tailored.Summary); s != "" {
			paragraphs = append(paragraphs, s)
		}
		if h := highlights(tailored.Experience, maxHighlights); len(h) > 0 {
			paragraphs = append(paragraphs, "Highlights of my recent work include: "+strings.Join(trimPeriods(h), "; ")+".")
		}
	}

	paragraphs = append(paragraphs, fmt.Sprintf(
		"Thank you for considering my application. I would welcome the opportunity to discuss how I can contribute to %s.",
		job.Company))

	return types.CoverLetter{
		Greeting:   defaultGreeting,
		Paragraphs: paragraphs,
		Closing:    defaultClosing,
	}
}

// highlights takes the leading achievement of each role, in role order.
func highlights(experience []types.Experience, limit int) []string {
	var out []string
	for _, exp := range experience {
		if len(out) >= limit {
			break
		}
		for _, a := range exp.Achievements {
			if a = strings.TrimSpace(a); a != "" {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func trimPeriods(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.TrimRight(s, ". ")
	}
	return out
}
