package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is a process-lifetime in-memory Store, the default backend when
// no data directory is configured.
type MemStore struct {
	mu          sync.RWMutex
	projects    map[string]Project
	serpResults map[string]SerpResult
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		projects:    make(map[string]Project),
		serpResults: make(map[string]SerpResult),
	}
}

func (s *MemStore) CreateProject(p Project) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p.ID = uuid.New().String()
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	s.projects[p.ID] = p
	return p, nil
}

func (s *MemStore) GetProject(id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) UpdateProject(id string, u ProjectUpdate) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}

	applyUpdate(&p, u)
	p.UpdatedAt = time.Now().UTC()
	s.projects[id] = p
	return p, nil
}

// ListProjects returns all projects, most recently updated first.
func (s *MemStore) ListProjects() ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemStore) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *MemStore) CreateSerpResult(r SerpResult) (SerpResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.New().String()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.serpResults[r.ID] = r
	return r, nil
}

func (s *MemStore) LatestSerpResult(keyword string) (SerpResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best SerpResult
	found := false
	for _, r := range s.serpResults {
		if !strings.EqualFold(r.Keyword, keyword) {
			continue
		}
		if !found || r.CreatedAt.After(best.CreatedAt) {
			best = r
			found = true
		}
	}
	if !found {
		return SerpResult{}, ErrNotFound
	}
	return best, nil
}

func (s *MemStore) Close() error {
	return nil
}
