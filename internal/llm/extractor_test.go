package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt_JobDetails(t *testing.T) {
	prompt := BuildExtractionPrompt(JobDetailsSchema(), "Senior Go Engineer at Acme Corp")

	assert.Contains(t, prompt, "job posting parser")
	assert.Contains(t, prompt, `"title": "string" (required)`)
	assert.Contains(t, prompt, `"company"`)
	assert.Contains(t, prompt, "Senior Go Engineer at Acme Corp")
	assert.True(t, strings.HasSuffix(prompt, "\"\"\"\n"))
}

func TestBuildExtractionPrompt_DefaultsTypeHint(t *testing.T) {
	schema := ExtractionSchema{
		Description: "Extract things.",
		Fields:      []SchemaField{{Name: "a"}, {Name: "b", Type: "[]string"}},
	}
	prompt := BuildExtractionPrompt(schema, "x")

	assert.Contains(t, prompt, "  \"a\": string,\n")
	assert.Contains(t, prompt, "  \"b\": []string\n")
}
