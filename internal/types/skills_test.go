package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillMap_PreservesKeyOrder(t *testing.T) {
	input := `{"tools":[{"name":"Git","yearsOfExperience":6}],"languages":[{"name":"Go","yearsOfExperience":"5+"}],"custom":[]}`

	var m SkillMap
	require.NoError(t, json.Unmarshal([]byte(input), &m))

	assert.Equal(t, []string{"tools", "languages", "custom"}, m.Names())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
	assert.Equal(t, input, string(out))
}

func TestSkillMap_RejectsNonObject(t *testing.T) {
	var m SkillMap
	assert.Error(t, json.Unmarshal([]byte(`["languages"]`), &m))
	assert.Error(t, json.Unmarshal([]byte(`{"languages":"Go"}`), &m))
}

func TestSkillMap_Null(t *testing.T) {
	m := NewSkillMap(SkillCategory{Name: "languages"})
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, 0, m.Len())
}

func TestSkillMap_FindIsCaseInsensitive(t *testing.T) {
	m := NewSkillMap(
		SkillCategory{Name: CategoryLanguages, Skills: []SkillEntry{{Name: "JavaScript", YearsOfExperience: YearsInt(5)}}},
	)

	category, entry, ok := m.Find("  javascript ")
	require.True(t, ok)
	assert.Equal(t, CategoryLanguages, category)
	assert.Equal(t, "JavaScript", entry.Name)

	_, _, ok = m.Find("Docker")
	assert.False(t, ok)
}

func TestSkillMap_Add(t *testing.T) {
	m := NewSkillMap(SkillCategory{Name: CategoryLanguages, Skills: []SkillEntry{{Name: "Go", YearsOfExperience: YearsInt(3)}}})

	assert.False(t, m.Add(CategoryLanguages, SkillEntry{Name: "GO"}))
	assert.True(t, m.Add(CategoryLanguages, SkillEntry{Name: "Rust", YearsOfExperience: YearsInt(1)}))
	assert.True(t, m.Add(CategoryCloudDevops, SkillEntry{Name: "Docker", YearsOfExperience: YearsInt(DefaultSkillYears)}))

	assert.Equal(t, []string{CategoryLanguages, CategoryCloudDevops}, m.Names())
	skills, ok := m.Get(CategoryCloudDevops)
	require.True(t, ok)
	assert.Equal(t, []SkillEntry{{Name: "Docker", YearsOfExperience: YearsInt(2)}}, skills)
}

func TestSkillMap_CloneIsIndependent(t *testing.T) {
	m := NewSkillMap(SkillCategory{Name: CategoryTools, Skills: []SkillEntry{{Name: "Git"}}})
	c := m.Clone()
	c.Add(CategoryTools, SkillEntry{Name: "Make"})
	c.Categories[0].Skills[0].Name = "Mercurial"

	skills, _ := m.Get(CategoryTools)
	assert.Equal(t, []SkillEntry{{Name: "Git"}}, skills)
}

func TestYears_JSONForms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Years
		encoded  string
	}{
		{name: "integer", input: `4`, expected: YearsInt(4), encoded: `4`},
		{name: "numeric string", input: `"7"`, expected: YearsInt(7), encoded: `7`},
		{name: "text", input: `"5+"`, expected: YearsText("5+"), encoded: `"5+"`},
		{name: "fraction", input: `2.5`, expected: YearsText("2.5"), encoded: `"2.5"`},
		{name: "null", input: `null`, expected: Years{}, encoded: `0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var y Years
			require.NoError(t, json.Unmarshal([]byte(tt.input), &y))
			assert.Equal(t, tt.expected, y)

			out, err := json.Marshal(y)
			require.NoError(t, err)
			assert.Equal(t, tt.encoded, string(out))
		})
	}
}

func TestSkillEntry_AcceptsShortYearsKey(t *testing.T) {
	var e SkillEntry
	require.NoError(t, json.Unmarshal([]byte(`{"name":"React","years":3}`), &e))
	assert.Equal(t, SkillEntry{Name: "React", YearsOfExperience: YearsInt(3)}, e)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"React","yearsOfExperience":3}`, string(out))
}

func TestCandidateProfile_CloneIsDeep(t *testing.T) {
	p := &CandidateProfile{
		PersonalInfo: PersonalInfo{Name: "Ada"},
		Experience:   []Experience{{Role: "Engineer", Achievements: []string{"Shipped"}}},
		Education:    []Education{{Institution: "MIT", Details: []string{"Honors"}}},
	}
	c := p.Clone()
	c.Experience[0].Achievements[0] = "Changed"
	c.Education[0].Details[0] = "Changed"

	assert.Equal(t, "Shipped", p.Experience[0].Achievements[0])
	assert.Equal(t, "Honors", p.Education[0].Details[0])
	assert.Equal(t, p.PersonalInfo, c.PersonalInfo)
}
