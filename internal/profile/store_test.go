package profile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/jonathan/jobfit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileJSON = `{
  "personalInfo": {"name": "  Jane Doe ", "title": "Engineer"},
  "summary": "Backend engineer.",
  "skills": {
    "languages": [
      {"name": "Go", "yearsOfExperience": 5},
      {"name": "go", "yearsOfExperience": 1},
      {"name": " ", "yearsOfExperience": 1}
    ],
    "databases": [{"name": "PostgreSQL", "years": "4+"}]
  },
  "experience": [
    {"role": "Engineer", "company": "Acme", "achievements": ["Shipped things", "  "]}
  ]
}`

func TestDecode_Normalizes(t *testing.T) {
	p, err := Decode([]byte(profileJSON))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", p.PersonalInfo.Name)
	assert.Equal(t, []string{"languages", "databases"}, p.Skills.Names())
	langs, _ := p.Skills.Get("languages")
	require.Len(t, langs, 1)
	assert.Equal(t, 5, langs[0].YearsOfExperience.Count)
	dbs, _ := p.Skills.Get("databases")
	assert.Equal(t, "4+", dbs[0].YearsOfExperience.Text)
	assert.Equal(t, []string{"Shipped things"}, p.Experience[0].Achievements)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{"skills": [}`))
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)

	_, err = Decode([]byte(`{"experience": [{"role": " ", "company": ""}]}`))
	var normErr *NormalizationError
	assert.ErrorAs(t, err, &normErr)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acct-1.json"), []byte(profileJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acct-2.json"), []byte(`{"personalInfo": {"name": "Ada"}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	store, err := LoadDir(dir)
	require.NoError(t, err)

	ids := store.Accounts()
	sort.Strings(ids)
	assert.Equal(t, []string{"acct-1", "acct-2"}, ids)

	p, err := store.Load(context.Background(), "acct-2")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.PersonalInfo.Name)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	p, err := store.Load(ctx, "acct")
	require.NoError(t, err)
	p.Skills.Add(types.CategoryTools, types.SkillEntry{Name: "Vim"})
	p.PersonalInfo.Name = "changed"

	again, err := store.Load(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", again.PersonalInfo.Name)
	assert.Equal(t, []string{types.CategoryLanguages}, again.Skills.Names())
}

func TestMemoryStore_UpdateSkillsErrorLeavesProfile(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	err := store.UpdateSkills(ctx, "acct", func(skills *types.SkillMap) (bool, error) {
		skills.Add(types.CategoryTools, types.SkillEntry{Name: "Vim"})
		return true, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	p, err := store.Load(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, []string{types.CategoryLanguages}, p.Skills.Names())

	err = store.UpdateSkills(ctx, "nobody", func(*types.SkillMap) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

// Run with -race: Accounts must not read entries that Save is writing.
func TestMemoryStore_AccountsConcurrentWithSave(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	p := &types.CandidateProfile{Summary: "Backend engineer."}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Save(ctx, "acct-"+strconv.Itoa(i), p))
		}(i)
		go func() {
			defer wg.Done()
			_ = store.Accounts()
		}()
	}
	wg.Wait()

	assert.Len(t, store.Accounts(), 20)
}
