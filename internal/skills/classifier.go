package skills

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/jonathan/jobfit/internal/llm"
	"github.com/jonathan/jobfit/internal/observability"
	"github.com/jonathan/jobfit/internal/prompts"
	"github.com/jonathan/jobfit/internal/types"
	"github.com/sirupsen/logrus"
)

// DefaultClassifyTimeout bounds the LLM call of the extended path.
const DefaultClassifyTimeout = 10 * time.Second

// maxCategoryLength rejects proposals that are clearly prose rather than a name.
const maxCategoryLength = 40

// Classifier classifies skills against a profile's existing categories with
// help from the generative-text service. It never returns an error: any
// failure falls back to Classify.
type Classifier struct {
	client  llm.Client
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewClassifier creates a Classifier. client may be nil, in which case only the
// keyword path is used. A zero timeout selects DefaultClassifyTimeout.
func NewClassifier(client llm.Client, timeout time.Duration, logger logrus.FieldLogger) *Classifier {
	if timeout <= 0 {
		timeout = DefaultClassifyTimeout
	}
	return &Classifier{client: client, timeout: timeout, logger: observability.OrDiscard(logger)}
}

// ClassifyWithCategories picks one of known for label, or a newly proposed
// category name. With no known categories or no client it is Classify.
func (c *Classifier) ClassifyWithCategories(ctx context.Context, label string, known []string) string {
	if c == nil || c.client == nil || len(known) == 0 {
		return Classify(label)
	}

	log := c.logger.WithField("skill", label)

	prompt, err := prompts.Render(prompts.SkillsFile, "classify-skill", map[string]string{
		"Skill":      label,
		"Categories": strings.Join(known, ", "),
	})
	if err != nil {
		log.WithError(err).Warn("classify prompt unavailable, using keyword classification")
		return Classify(label)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.client.GenerateContent(ctx, prompt, llm.TierLite, 32)
	if err != nil {
		log.WithError(err).Warn("skill classification call failed, using keyword classification")
		return Classify(label)
	}

	category, ok := MatchCategory(response, known)
	if !ok {
		log.WithField("response", response).Warn("unusable category proposal, using keyword classification")
		return Classify(label)
	}
	return category
}

// MatchCategory resolves a raw model response to a category name. A response
// matching one of known ignoring case and punctuation resolves to that entry;
// otherwise the response is taken as a new category name in camelCase. ok is
// false when the response cannot be a category name.
func MatchCategory(response string, known []string) (string, bool) {
	response = firstLine(response)
	key := Normalize(response)
	if key == "" || len(key) > maxCategoryLength {
		return "", false
	}

	for _, k := range known {
		if Normalize(k) == key {
			return k, true
		}
	}
	for _, k := range types.WellKnownCategories() {
		if Normalize(k) == key {
			return k, true
		}
	}
	return camelCase(response), true
}

// Normalize lowercases s and drops everything that is not a letter or digit.
func Normalize(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// camelCase turns "Data Engineering" or "data-engineering" into "dataEngineering"
// and leaves an already camelCased single word as is.
func camelCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var sb strings.Builder
	for i, w := range words {
		runes := []rune(w)
		if i == 0 {
			runes[0] = unicode.ToLower(runes[0])
		} else {
			runes[0] = unicode.ToUpper(runes[0])
		}
		sb.WriteString(string(runes))
	}
	return sb.String()
}
