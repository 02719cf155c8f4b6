package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/agenthands/healthrisk/internal/driver"
)

// GraphStore keeps each profile as a :UserProfile node.
type GraphStore struct {
	Driver driver.GraphDriver
	Now    func() time.Time
}

func NewGraphStore(d driver.GraphDriver) *GraphStore {
	return &GraphStore{Driver: d, Now: time.Now}
}

func (s *GraphStore) Save(ctx context.Context, key string, p model.Profile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	conditions := p.Lifestyle.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	params := map[string]any{
		"key":        key,
		"name":       p.Core.Name,
		"dob":        p.Core.DOB,
		"district":   p.Core.District,
		"occupation": p.Lifestyle.Occupation,
		"conditions": conditions,
		"document":   string(doc),
		"updated_at": s.Now().UTC().Format(time.RFC3339),
	}
	if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveProfileQuery, params); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *GraphStore) Get(ctx context.Context, key string) (*model.Profile, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.GetProfileQuery, map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if len(res.Records) == 0 {
		return nil, ErrNotFound
	}

	raw, _ := res.Records[0].Get("document")
	doc, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("profile %q has no document", key)
	}
	var p model.Profile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %q: %w", key, err)
	}
	return &p, nil
}

func (s *GraphStore) Delete(ctx context.Context, key string) error {
	res, err := s.Driver.ExecuteQuery(ctx, driver.DeleteProfileQuery, map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if len(res.Records) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GraphStore) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}
