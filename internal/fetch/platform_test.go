package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://job-boards.greenhouse.io/doordashusa/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/company/jobs/123", PlatformGreenhouse},
		{"https://greenhouse.io/jobs/456", PlatformGreenhouse},
		{"https://jobs.lever.co/company/job-id", PlatformLever},
		{"https://LEVER.CO/jobs/123", PlatformLever},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers/job/123", PlatformWorkday},
		{"https://jobs.ashbyhq.com/acme/123", PlatformAshby},
		{"https://example.com/careers/123", PlatformUnknown},
		{"https://notgreenhouse.io/jobs/1", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestSelectorsFor_KnownPlatform(t *testing.T) {
	content, noise := SelectorsFor("https://boards.greenhouse.io/acme/jobs/1")

	assert.Equal(t, ".job__description.body", content[0])
	assert.Subset(t, content, JobPostingSelectors())
	assert.Contains(t, noise, "form")
	assert.Contains(t, noise, ".application--wrapper")
}

func TestSelectorsFor_Unknown(t *testing.T) {
	content, noise := SelectorsFor("https://example.com/jobs/1")

	assert.Equal(t, JobPostingSelectors(), content)
	assert.Equal(t, commonNoise, noise)
}

func TestSelectorsFor_DoesNotShareBacking(t *testing.T) {
	_, noise := SelectorsFor("https://jobs.lever.co/acme/1")
	noise[0] = "changed"

	assert.Equal(t, "form", commonNoise[0])
}
