// Package parsing turns raw job descriptions into cleaned text and structured
// job details.
package parsing

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jonathan/jobfit/internal/llm"
	"github.com/jonathan/jobfit/internal/observability"
	"github.com/jonathan/jobfit/internal/types"
	"github.com/sirupsen/logrus"
)

// DefaultExtractTimeout bounds the extraction call when none is configured.
const DefaultExtractTimeout = 30 * time.Second

// maxDetailsTokens is enough for a title and a company name.
const maxDetailsTokens = 256

// maxFieldLength rejects values that are clearly not a title or company name.
const maxFieldLength = 200

// Extractor pulls the job title and hiring company out of a job description.
type Extractor struct {
	client  llm.Client
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewExtractor creates an Extractor. A zero timeout selects DefaultExtractTimeout.
func NewExtractor(client llm.Client, timeout time.Duration, logger logrus.FieldLogger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	return &Extractor{client: client, timeout: timeout, logger: observability.OrDiscard(logger)}
}

// Extract returns the job's title and company. It never fails: service errors,
// unparseable responses and missing fields each fall back to the defaults, field
// by field.
func (e *Extractor) Extract(ctx context.Context, jobDescription string) types.JobDetails {
	log := e.logger.WithField("stage", "job_details")

	if e.client == nil || strings.TrimSpace(jobDescription) == "" {
		return types.DefaultJobDetails()
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := llm.BuildExtractionPrompt(llm.JobDetailsSchema(), jobDescription)
	response, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite, maxDetailsTokens)
	if err != nil {
		log.WithError(&APICallError{Message: "job details", Cause: err}).Warn("using default job details")
		return types.DefaultJobDetails()
	}

	details, err := ParseJobDetails(response)
	if err != nil {
		log.WithError(err).Warn("job details fell back to defaults")
	}
	return details
}

// ParseJobDetails decodes a model response into JobDetails. The returned value
// is always complete; err reports what had to be defaulted.
func ParseJobDetails(response string) (types.JobDetails, error) {
	details := types.DefaultJobDetails()

	var raw map[string]any
	if err := json.Unmarshal([]byte(llm.ExtractJSONObject(response)), &raw); err != nil {
		return details, &ParseError{Message: "response is not a JSON object", Cause: err}
	}

	var missing []string
	if title, ok := stringField(raw, "title"); ok {
		details.Title = title
	} else {
		missing = append(missing, "title")
	}
	if company, ok := stringField(raw, "company"); ok {
		details.Company = company
	} else {
		missing = append(missing, "company")
	}

	if len(missing) > 0 {
		return details, &ParseError{Message: "defaulted " + strings.Join(missing, ", ")}
	}
	return details, nil
}

func stringField(raw map[string]any, key string) (string, bool) {
	s, ok := raw[key].(string)
	if !ok {
		return "", false
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || len(s) > maxFieldLength {
		return "", false
	}
	return s, true
}
