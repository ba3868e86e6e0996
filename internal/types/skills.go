package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Well-known skill categories. Callers may create additional categories.
const (
	CategoryLanguages   = "languages"
	CategoryFrontend    = "frontend"
	CategoryBackend     = "backend"
	CategoryTesting     = "testing"
	CategoryDatabases   = "databases"
	CategoryCloudDevops = "cloudDevops"
	CategoryAWSServices = "awsServices"
	CategoryAIML        = "aiMl"
	CategoryTools       = "tools"
)

// WellKnownCategories lists the reserved category keys in display order.
func WellKnownCategories() []string {
	return []string{
		CategoryLanguages,
		CategoryFrontend,
		CategoryBackend,
		CategoryTesting,
		CategoryDatabases,
		CategoryCloudDevops,
		CategoryAWSServices,
		CategoryAIML,
		CategoryTools,
	}
}

// DefaultSkillYears is the experience assigned to newly added skills
const DefaultSkillYears = 2

// Years holds a skill's years of experience, which stored profiles carry either as
// an integer or as free text ("5+", "3-4"). Text is set only for the text form.
type Years struct {
	Count int
	Text  string
}

// YearsInt returns the integer form.
func YearsInt(n int) Years { return Years{Count: n} }

// YearsText returns the text form.
func YearsText(s string) Years { return Years{Text: s} }

// IsText reports whether the value was supplied as text.
func (y Years) IsText() bool { return y.Text != "" }

func (y Years) String() string {
	if y.IsText() {
		return y.Text
	}
	return strconv.Itoa(y.Count)
}

// MarshalJSON emits a number or a string depending on the original form.
func (y Years) MarshalJSON() ([]byte, error) {
	if y.IsText() {
		return json.Marshal(y.Text)
	}
	return []byte(strconv.Itoa(y.Count)), nil
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (y *Years) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = Years{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*y = YearsInt(n)
			return nil
		}
		*y = YearsText(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("years of experience must be a number or text: %w", err)
	}
	if f == math.Trunc(f) {
		*y = YearsInt(int(f))
		return nil
	}
	*y = YearsText(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// SkillEntry is a single skill with its experience
type SkillEntry struct {
	Name              string `json:"name"`
	YearsOfExperience Years  `json:"yearsOfExperience"`
}

// UnmarshalJSON accepts both "yearsOfExperience" and the shorter "years" key used in
// generated skill maps.
func (e *SkillEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name              string `json:"name"`
		YearsOfExperience *Years `json:"yearsOfExperience"`
		Years             *Years `json:"years"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Name = raw.Name
	e.YearsOfExperience = Years{}
	switch {
	case raw.YearsOfExperience != nil:
		e.YearsOfExperience = *raw.YearsOfExperience
	case raw.Years != nil:
		e.YearsOfExperience = *raw.Years
	}
	return nil
}

// SkillCategory is one named bucket of skills
type SkillCategory struct {
	Name   string
	Skills []SkillEntry
}

// SkillMap is an ordered mapping of category name to skills. It encodes as a JSON
// object whose key order is preserved in both directions.
type SkillMap struct {
	Categories []SkillCategory
}

// NewSkillMap builds a map from categories in the given order.
func NewSkillMap(categories ...SkillCategory) SkillMap {
	return SkillMap{Categories: categories}
}

// Len returns the number of categories.
func (m SkillMap) Len() int { return len(m.Categories) }

// Names returns category names in order.
func (m SkillMap) Names() []string {
	names := make([]string, 0, len(m.Categories))
	for _, c := range m.Categories {
		names = append(names, c.Name)
	}
	return names
}

// Get returns the skills of a category.
func (m SkillMap) Get(category string) ([]SkillEntry, bool) {
	for _, c := range m.Categories {
		if c.Name == category {
			return c.Skills, true
		}
	}
	return nil, false
}

// Find looks up a skill by name across all categories, case-insensitively.
func (m SkillMap) Find(name string) (string, SkillEntry, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, c := range m.Categories {
		for _, s := range c.Skills {
			if strings.ToLower(strings.TrimSpace(s.Name)) == needle {
				return c.Name, s, true
			}
		}
	}
	return "", SkillEntry{}, false
}

// Add appends a skill to a category, creating the category at the end if absent.
// Returns false without modifying the map when the category already holds the
// name (case-insensitive).
func (m *SkillMap) Add(category string, entry SkillEntry) bool {
	needle := strings.ToLower(strings.TrimSpace(entry.Name))
	for i := range m.Categories {
		if m.Categories[i].Name != category {
			continue
		}
		for _, s := range m.Categories[i].Skills {
			if strings.ToLower(strings.TrimSpace(s.Name)) == needle {
				return false
			}
		}
		m.Categories[i].Skills = append(m.Categories[i].Skills, entry)
		return true
	}
	m.Categories = append(m.Categories, SkillCategory{Name: category, Skills: []SkillEntry{entry}})
	return true
}

// Clone returns a deep copy preserving nil-ness of each skill slice.
func (m SkillMap) Clone() SkillMap {
	if m.Categories == nil {
		return SkillMap{}
	}
	out := SkillMap{Categories: make([]SkillCategory, len(m.Categories))}
	for i, c := range m.Categories {
		var skills []SkillEntry
		if c.Skills != nil {
			skills = append([]SkillEntry(nil), c.Skills...)
		}
		out.Categories[i] = SkillCategory{Name: c.Name, Skills: skills}
	}
	return out
}

// MarshalJSON encodes the map as an object in category order.
func (m SkillMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range m.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		skills := c.Skills
		if skills == nil {
			skills = []SkillEntry{}
		}
		val, err := json.Marshal(skills)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the key order of the document. A repeated
// key replaces the earlier value in place.
func (m *SkillMap) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*m = SkillMap{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("skills must be a JSON object")
	}

	result := SkillMap{Categories: []SkillCategory{}}
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("skills: unexpected key token %v", keyTok)
		}
		var skills []SkillEntry
		if err := dec.Decode(&skills); err != nil {
			return fmt.Errorf("skills category %q: %w", key, err)
		}
		if i, seen := index[key]; seen {
			result.Categories[i].Skills = skills
			continue
		}
		index[key] = len(result.Categories)
		result.Categories = append(result.Categories, SkillCategory{Name: key, Skills: skills})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = result
	return nil
}
