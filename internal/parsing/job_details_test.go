package parsing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/jobfit/internal/llm"
	"github.com/jonathan/jobfit/internal/llm/llmtest"
	"github.com/jonathan/jobfit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonResponder(resp string) *llmtest.MockLLMClient {
	return &llmtest.MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return resp, nil
		},
	}
}

func TestExtract_Success(t *testing.T) {
	mock := jsonResponder(`{"title": "Senior Backend Engineer", "company": "Acme Corp"}`)
	e := NewExtractor(mock, time.Second, nil)

	details := e.Extract(context.Background(), "Acme Corp is hiring a Senior Backend Engineer to build Go services.")

	assert.Equal(t, types.JobDetails{Title: "Senior Backend Engineer", Company: "Acme Corp"}, details)
	require.Len(t, mock.Prompts(), 1)
	assert.Contains(t, mock.Prompts()[0], "Acme Corp is hiring")
}

func TestExtract_NoCompanyMentioned(t *testing.T) {
	mock := jsonResponder(`{"title": "Data Engineer", "company": ""}`)
	e := NewExtractor(mock, time.Second, nil)

	details := e.Extract(context.Background(), "We need a data engineer with Spark and Airflow experience.")

	assert.Equal(t, "Data Engineer", details.Title)
	assert.Equal(t, types.DefaultJobCompany, details.Company)
}

func TestExtract_ServiceErrorUsesDefaults(t *testing.T) {
	mock := &llmtest.MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", errors.New("503 from provider")
		},
	}
	e := NewExtractor(mock, time.Second, nil)

	assert.Equal(t, types.DefaultJobDetails(), e.Extract(context.Background(), "Some job description text"))
}

func TestExtract_TimeoutUsesDefaults(t *testing.T) {
	mock := &llmtest.MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	e := NewExtractor(mock, 10*time.Millisecond, nil)

	assert.Equal(t, types.DefaultJobDetails(), e.Extract(context.Background(), "Some job description text"))
}

func TestExtract_WithoutClientOrText(t *testing.T) {
	assert.Equal(t, types.DefaultJobDetails(), NewExtractor(nil, 0, nil).Extract(context.Background(), "text"))

	mock := jsonResponder(`{"title": "x", "company": "y"}`)
	assert.Equal(t, types.DefaultJobDetails(), NewExtractor(mock, 0, nil).Extract(context.Background(), "   "))
	assert.Empty(t, mock.Prompts())
}

func TestParseJobDetails(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected types.JobDetails
		wantErr  bool
	}{
		{
			name:     "both fields",
			response: `{"title": "SRE", "company": "Globex"}`,
			expected: types.JobDetails{Title: "SRE", Company: "Globex"},
		},
		{
			name:     "wrapped in prose and fences",
			response: "Sure! Here you go:\n```json\n{\"title\": \"SRE\", \"company\": \"Globex\"}\n```",
			expected: types.JobDetails{Title: "SRE", Company: "Globex"},
		},
		{
			name:     "missing company keeps title",
			response: `{"title": "Frontend Developer"}`,
			expected: types.JobDetails{Title: "Frontend Developer", Company: types.DefaultJobCompany},
			wantErr:  true,
		},
		{
			name:     "non-string title keeps company",
			response: `{"title": 42, "company": "Initech"}`,
			expected: types.JobDetails{Title: types.DefaultJobTitle, Company: "Initech"},
			wantErr:  true,
		},
		{
			name:     "null fields",
			response: `{"title": null, "company": null}`,
			expected: types.DefaultJobDetails(),
			wantErr:  true,
		},
		{
			name:     "whitespace collapsed",
			response: `{"title": "  Staff \n Engineer ", "company": "Umbrella"}`,
			expected: types.JobDetails{Title: "Staff Engineer", Company: "Umbrella"},
		},
		{
			name:     "not JSON",
			response: "I could not find a job title.",
			expected: types.DefaultJobDetails(),
			wantErr:  true,
		},
		{
			name:     "truncated JSON",
			response: `{"title": "SRE", "comp`,
			expected: types.DefaultJobDetails(),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := ParseJobDetails(tt.response)
			assert.Equal(t, tt.expected, details)
			if tt.wantErr {
				var parseErr *ParseError
				assert.ErrorAs(t, err, &parseErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
