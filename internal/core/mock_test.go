package core

import (
	"context"
	"sync"
	"time"

	"github.com/agenthands/healthrisk/internal/core/model"
)

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error
	Prompts       []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

type MockEnvironment struct {
	Conds           model.EnvironmentalConditions
	Err             error
	Location        model.Location
	ProfileDistrict string
}

func (m *MockEnvironment) Conditions(ctx context.Context, at model.Location, profileDistrict string) (model.EnvironmentalConditions, error) {
	m.Location = at
	m.ProfileDistrict = profileDistrict
	if m.Err != nil {
		return model.EnvironmentalConditions{}, m.Err
	}
	c := m.Conds
	if at.District != "" {
		c.District = at.District
	} else if profileDistrict != "" {
		c.District = profileDistrict
	}
	return c, nil
}

type MockMetrics struct {
	mu     sync.Mutex
	Levels map[string]string
}

func (m *MockMetrics) ObserveRequestLatency(string, time.Duration) {}

func (m *MockMetrics) ObserveEnrichmentFallback(string) {}

func (m *MockMetrics) ObserveRiskLevel(disease, level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Levels == nil {
		m.Levels = map[string]string{}
	}
	m.Levels[disease] = level
}
