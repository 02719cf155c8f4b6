package store

import (
	"context"
	"sync"

	"github.com/agenthands/healthrisk/internal/core/model"
)

// MemoryStore keeps profiles in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]model.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: map[string]model.Profile{}}
}

func (s *MemoryStore) Save(_ context.Context, key string, p model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[key] = clone(p)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[key]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(p)
	return &c, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[key]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, key)
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

// clone detaches the conditions slice from the caller's copy.
func clone(p model.Profile) model.Profile {
	if p.Lifestyle.Conditions != nil {
		p.Lifestyle.Conditions = append([]string(nil), p.Lifestyle.Conditions...)
	}
	return p
}
