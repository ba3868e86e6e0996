// Package pipeline runs one document generation: usage gate, job detail
// extraction and tailoring, then rendering of each requested document.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit/internal/observability"
	"github.com/jonathan/jobfit/internal/parsing"
	"github.com/jonathan/jobfit/internal/rendering"
	"github.com/jonathan/jobfit/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// UsageGate consumes quota before any generation work
type UsageGate interface {
	CheckAndIncrement(ctx context.Context, accountID string, kind types.GenerationKind, documentKind types.DocumentKind) (types.UsageDecision, error)
}

// ProfileLoader returns an account's candidate profile
type ProfileLoader interface {
	Load(ctx context.Context, accountID string) (*types.CandidateProfile, error)
}

// JobDetailExtractor extracts title and company; it never fails
type JobDetailExtractor interface {
	Extract(ctx context.Context, jobDescription string) types.JobDetails
}

// Tailorer rewrites a profile for a job description
type Tailorer interface {
	Tailor(ctx context.Context, profile *types.CandidateProfile, jobDescription string) (*types.TailoredProfile, error)
}

// CoverLetterWriter writes a cover letter; it never fails
type CoverLetterWriter interface {
	Write(ctx context.Context, tailored *types.TailoredProfile, job types.JobDetails, jobDescription string) types.CoverLetter
}

// DocumentRenderer renders one document
type DocumentRenderer interface {
	Render(ctx context.Context, in rendering.Input) (*rendering.Result, error)
}

// ProgressEvent represents a progress update during generation
type ProgressEvent struct {
	GenerationID string `json:"generationId"`
	Stage        string `json:"stage"`
	Message      string `json:"message"`
	Content      any    `json:"content,omitempty"`
}

// ProgressCallback is called as each stage completes
type ProgressCallback func(event ProgressEvent)

// Deps are the collaborators of a Generator. All but OnProgress and Logger are required.
type Deps struct {
	Usage       UsageGate
	Profiles    ProfileLoader
	Extractor   JobDetailExtractor
	Tailor      Tailorer
	CoverLetter CoverLetterWriter
	Renderer    DocumentRenderer
	OnProgress  ProgressCallback
	Logger      logrus.FieldLogger
}

// Generator runs generations
type Generator struct {
	deps   Deps
	logger logrus.FieldLogger
}

// NewGenerator creates a Generator.
func NewGenerator(deps Deps) *Generator {
	return &Generator{deps: deps, logger: observability.OrDiscard(deps.Logger)}
}

// WithProgress returns a Generator sharing g's collaborators that reports
// progress to cb instead.
func (g *Generator) WithProgress(cb ProgressCallback) *Generator {
	deps := g.deps
	deps.OnProgress = cb
	return &Generator{deps: deps, logger: g.logger}
}

// Document is one rendered output
type Document struct {
	Kind      types.DocumentKind `json:"kind"`
	Markup    string             `json:"markup"`
	Filename  string             `json:"filename"`
	PageCount int                `json:"pageCount"`
	Content   []byte             `json:"content"`
}

// Result is the outcome of a generation. When QuotaExceeded is set only
// GenerationID and Usage are populated.
type Result struct {
	GenerationID  string                 `json:"generationId"`
	Usage         types.UsageDecision    `json:"usage"`
	QuotaExceeded bool                   `json:"quotaExceeded"`
	Job           types.JobDetails       `json:"job"`
	Tailored      *types.TailoredProfile `json:"tailored,omitempty"`
	CoverLetter   *types.CoverLetter     `json:"coverLetter,omitempty"`
	Documents     []Document             `json:"documents,omitempty"`
	Duration      time.Duration          `json:"duration"`
}

// Generate produces every requested document for a job description.
func (g *Generator) Generate(ctx context.Context, accountID string, req types.GenerateRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	return g.run(ctx, accountID, types.GenerationInitial, req.JobDescription, req.Kinds())
}

// Regenerate produces a single document again. It consumes quota like Generate.
func (g *Generator) Regenerate(ctx context.Context, accountID string, req types.RegenerateRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	return g.run(ctx, accountID, types.GenerationRegeneration, req.JobDescription, []types.DocumentKind{req.DocumentKind})
}

func (g *Generator) run(ctx context.Context, accountID string, kind types.GenerationKind, rawJob string, docKinds []types.DocumentKind) (*Result, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, &ValidationError{Field: "accountId", Message: "is required"}
	}

	start := time.Now()
	result := &Result{GenerationID: uuid.NewString()}
	log := g.logger.WithFields(logrus.Fields{
		"account_id":    accountID,
		"generation_id": result.GenerationID,
		"kind":          kind,
	})
	fail := func(stage string, err error) (*Result, error) {
		log.WithError(err).WithField("stage", stage).Error("generation failed")
		return nil, &GenerationError{Stage: stage, GenerationID: result.GenerationID, Cause: err}
	}

	// the gate must happen before any generation work
	decision, err := g.deps.Usage.CheckAndIncrement(ctx, accountID, kind, docKinds[0])
	if err != nil {
		return fail(StageUsage, err)
	}
	result.Usage = decision
	g.progress(result.GenerationID, StageUsage, "usage checked", decision)
	if !decision.CanProceed {
		log.WithField("monthly_count", decision.MonthlyCount).Info("quota exceeded")
		result.QuotaExceeded = true
		return result, nil
	}

	profile, err := g.deps.Profiles.Load(ctx, accountID)
	if err != nil {
		return fail(StageProfile, err)
	}

	jobDescription := parsing.CleanJobText(rawJob)

	var (
		job      types.JobDetails
		tailored *types.TailoredProfile
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		job = g.deps.Extractor.Extract(egCtx, jobDescription)
		return nil
	})
	eg.Go(func() error {
		var err error
		tailored, err = g.deps.Tailor.Tailor(egCtx, profile, jobDescription)
		return err
	})
	if err := eg.Wait(); err != nil {
		return fail(StageTailoring, err)
	}
	result.Job = job
	result.Tailored = tailored
	g.progress(result.GenerationID, StageJobDetails, "job details extracted", job)
	g.progress(result.GenerationID, StageTailoring, "profile tailored", tailored.StageOutcomes)

	for _, docKind := range docKinds {
		if docKind == types.DocumentCoverLetter && result.CoverLetter == nil {
			letter := g.deps.CoverLetter.Write(ctx, tailored, job, jobDescription)
			result.CoverLetter = &letter
			g.progress(result.GenerationID, types.StageCoverLetter, "cover letter written", letter.Tailored)
		}

		rendered, err := g.deps.Renderer.Render(ctx, rendering.Input{
			Kind:        docKind,
			Profile:     tailored,
			Job:         job,
			CoverLetter: result.CoverLetter,
		})
		if err != nil {
			return fail(StageRender, err)
		}
		result.Documents = append(result.Documents, Document{
			Kind:      docKind,
			Markup:    rendered.Markup,
			Filename:  rendered.Filename,
			PageCount: rendered.PageCount,
			Content:   rendered.Document,
		})
		g.progress(result.GenerationID, StageRender, "rendered "+rendered.Filename, nil)
	}

	result.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"documents":   len(result.Documents),
		"duration_ms": result.Duration.Milliseconds(),
		"title":       job.Title,
		"company":     job.Company,
	}).Info("generation complete")
	return result, nil
}

func (g *Generator) progress(generationID, stage, message string, content any) {
	if g.deps.OnProgress != nil {
		g.deps.OnProgress(ProgressEvent{
			GenerationID: generationID,
			Stage:        stage,
			Message:      message,
			Content:      content,
		})
	}
}
