package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(TailoringFile, "tailor-summary")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.JobDescription}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(SkillsFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}! {{.Other}}"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp! {{.Other}}", result)
}

func TestFormat_ValueContainingPlaceholderIsNotExpanded(t *testing.T) {
	result := Format("{{.A}} {{.B}}", map[string]string{"A": "{{.B}}", "B": "b"})
	assert.Equal(t, "{{.B}} b", result)
}

func TestRender_RequiresAllPlaceholders(t *testing.T) {
	_, err := Render(SkillsFile, "classify-skill", map[string]string{"Skill": "Go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{.Categories}}")

	out, err := Render(SkillsFile, "classify-skill", map[string]string{"Skill": "Go", "Categories": "languages, tools"})
	require.NoError(t, err)
	assert.Contains(t, out, `"Go"`)
	assert.Contains(t, out, "languages, tools")
}

func TestAllPipelinePromptsPresent(t *testing.T) {
	keys, err := List(TailoringFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"filter-skills", "reorder-experience", "tailor-summary", "write-cover-letter"}, keys)

	keys, err = List(SkillsFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"classify-skill"}, keys)
}
