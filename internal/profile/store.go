package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonathan/jobfit/internal/db"
	"github.com/jonathan/jobfit/internal/types"
)

// SkillsUpdate mutates a skill map in place and reports whether it changed.
type SkillsUpdate func(skills *types.SkillMap) (bool, error)

// Store persists candidate profiles
type Store interface {
	// Load returns a copy of the account's profile, or ErrNotFound.
	Load(ctx context.Context, accountID string) (*types.CandidateProfile, error)
	// Save creates or replaces the account's profile.
	Save(ctx context.Context, accountID string, profile *types.CandidateProfile) error
	// UpdateSkills applies fn to the stored skills as one read-modify-write,
	// serialized per account. Nothing is written when fn reports no change.
	UpdateSkills(ctx context.Context, accountID string, fn SkillsUpdate) error
}

// MemoryStore keeps profiles in process
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]*memoryEntry
}

type memoryEntry struct {
	mu      sync.Mutex
	profile *types.CandidateProfile
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*memoryEntry)}
}

// LoadDir seeds a store from a directory of <account-id>.json profile files.
func LoadDir(dir string) (*MemoryStore, error) {
	store := NewMemoryStore()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Message: "failed to read profiles directory " + dir, Cause: err}
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		p, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		store.put(strings.TrimSuffix(entry.Name(), ".json"), p)
	}
	return store, nil
}

func (s *MemoryStore) entry(accountID string, create bool) *memoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.profiles[accountID]
	if !ok && create {
		e = &memoryEntry{}
		s.profiles[accountID] = e
	}
	return e
}

func (s *MemoryStore) put(accountID string, p *types.CandidateProfile) {
	e := s.entry(accountID, true)
	e.mu.Lock()
	e.profile = p.Clone()
	e.mu.Unlock()
}

// Accounts returns the IDs of stored profiles.
func (s *MemoryStore) Accounts() []string {
	s.mu.Lock()
	entries := make(map[string]*memoryEntry, len(s.profiles))
	for id, e := range s.profiles {
		entries[id] = e
	}
	s.mu.Unlock()

	// entry locks are taken after s.mu is released, as everywhere else
	ids := make([]string, 0, len(entries))
	for id, e := range entries {
		e.mu.Lock()
		stored := e.profile != nil
		e.mu.Unlock()
		if stored {
			ids = append(ids, id)
		}
	}
	return ids
}

// Load implements Store
func (s *MemoryStore) Load(ctx context.Context, accountID string) (*types.CandidateProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.entry(accountID, false)
	if e == nil {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return nil, ErrNotFound
	}
	return e.profile.Clone(), nil
}

// Save implements Store
func (s *MemoryStore) Save(ctx context.Context, accountID string, profile *types.CandidateProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.put(accountID, profile)
	return nil
}

// UpdateSkills implements Store
func (s *MemoryStore) UpdateSkills(ctx context.Context, accountID string, fn SkillsUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := s.entry(accountID, false)
	if e == nil {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return ErrNotFound
	}

	skills := e.profile.Skills.Clone()
	changed, err := fn(&skills)
	if err != nil || !changed {
		return err
	}
	e.profile.Skills = skills
	return nil
}

// PostgresStore keeps profiles in the candidate_profiles table
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore wraps a connected database.
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

// Load implements Store
func (s *PostgresStore) Load(ctx context.Context, accountID string) (*types.CandidateProfile, error) {
	p, err := s.db.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Save implements Store
func (s *PostgresStore) Save(ctx context.Context, accountID string, profile *types.CandidateProfile) error {
	return s.db.UpsertProfile(ctx, accountID, profile)
}

// UpdateSkills implements Store
func (s *PostgresStore) UpdateSkills(ctx context.Context, accountID string, fn SkillsUpdate) error {
	err := s.db.UpdateProfileSkills(ctx, accountID, fn)
	if errors.Is(err, db.ErrProfileNotFound) {
		return ErrNotFound
	}
	return err
}
