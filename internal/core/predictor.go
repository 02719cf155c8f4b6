// Package core wires the prediction pipeline: collect input, enrich with the
// environment, score every disease and optionally narrate the result.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/agenthands/healthrisk/internal/core/narrative"
	"github.com/agenthands/healthrisk/internal/core/risk"
	"github.com/agenthands/healthrisk/internal/core/symptoms"
	"github.com/agenthands/healthrisk/internal/monitoring"
	"github.com/agenthands/healthrisk/internal/store"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// ErrInvalidInput marks errors caused by the request rather than the service.
var ErrInvalidInput = errors.New("invalid input")

// Environment supplies the conditions for a request.
type Environment interface {
	Conditions(ctx context.Context, at model.Location, profileDistrict string) (model.EnvironmentalConditions, error)
}

// Request is the per-prediction input besides the profile.
type Request struct {
	Symptoms model.Symptoms
	Location model.Location
}

type Predictor struct {
	Store       store.ProfileStore
	Environment Environment
	Calculators []risk.Calculator
	Extractor   symptoms.Extractor
	// Explainer is optional. Without it predictions carry no narrative.
	Explainer *narrative.Explainer
	Metrics   monitoring.MetricsMonitoring

	Clock         func() time.Time
	UUIDGenerator func() string

	logger logr.Logger
}

func NewPredictor(
	st store.ProfileStore,
	env Environment,
	calculators []risk.Calculator,
	extractor symptoms.Extractor,
	explainer *narrative.Explainer,
	metrics monitoring.MetricsMonitoring,
	logger logr.Logger,
) *Predictor {
	if extractor == nil {
		extractor = symptoms.KeywordExtractor{}
	}
	if metrics == nil {
		metrics = monitoring.NoopMonitor{}
	}
	return &Predictor{
		Store:         st,
		Environment:   env,
		Calculators:   calculators,
		Extractor:     extractor,
		Explainer:     explainer,
		Metrics:       metrics,
		Clock:         time.Now,
		UUIDGenerator: uuid.NewString,
		logger:        logger.WithName("predictor"),
	}
}

// SaveProfile validates and stores p, overwriting any profile with the same key.
func (p *Predictor) SaveProfile(ctx context.Context, profile model.Profile) (string, error) {
	profile.Core.Name = strings.TrimSpace(profile.Core.Name)
	if err := profile.Validate(p.Clock()); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	key := profile.Key()
	if err := p.Store.Save(ctx, key, profile); err != nil {
		return "", fmt.Errorf("failed to save profile %s: %w", key, err)
	}
	p.logger.V(1).Info("Saved profile", "key", key)
	return key, nil
}

func (p *Predictor) GetProfile(ctx context.Context, name string) (*model.Profile, error) {
	key, err := profileKey(name)
	if err != nil {
		return nil, err
	}
	return p.Store.Get(ctx, key)
}

func (p *Predictor) DeleteProfile(ctx context.Context, name string) error {
	key, err := profileKey(name)
	if err != nil {
		return err
	}
	return p.Store.Delete(ctx, key)
}

// Predict runs the pipeline for a stored profile.
func (p *Predictor) Predict(ctx context.Context, name string, req Request) (*model.Prediction, error) {
	profile, err := p.GetProfile(ctx, name)
	if err != nil {
		return nil, err
	}
	return p.Assess(ctx, *profile, req)
}

// Assess runs the pipeline for a profile that is not stored. The profile may be anonymous.
func (p *Predictor) Assess(ctx context.Context, profile model.Profile, req Request) (*model.Prediction, error) {
	now := p.Clock()
	if err := profile.ValidateDOB(now); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validateLocation(req.Location); err != nil {
		return nil, err
	}

	selected, err := symptoms.Normalize(req.Symptoms.Selected)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var extracted []string
	if strings.TrimSpace(req.Symptoms.FreeText) != "" {
		extracted, err = p.Extractor.Extract(ctx, req.Symptoms.FreeText)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Error(err, "Failed to extract symptoms from free text")
		}
	}
	reported := symptoms.Merge(selected, extracted)

	env, err := p.Environment.Conditions(ctx, req.Location, profile.Core.District)
	if err != nil {
		return nil, fmt.Errorf("failed to get environmental conditions: %w", err)
	}

	in, err := risk.NewInput(profile, env, reported, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	assessments := make([]model.RiskAssessment, 0, len(p.Calculators))
	for _, c := range p.Calculators {
		a := c.Assess(in)
		p.Metrics.ObserveRiskLevel(a.Disease, string(a.Level))
		assessments = append(assessments, a)
	}

	pred := &model.Prediction{
		ID:                      p.UUIDGenerator(),
		GeneratedAt:             now.UTC(),
		ProfileName:             profile.Core.Name,
		Symptoms:                reported,
		EnvironmentalConditions: env,
		RiskAssessments:         assessments,
	}

	if p.Explainer != nil {
		text, err := p.Explainer.Explain(ctx, env, assessments, reported)
		if err != nil {
			p.logger.Error(err, "Failed to generate narrative", "prediction", pred.ID)
		} else {
			pred.Narrative = text
		}
	}

	p.logger.V(1).Info("Prediction done", "prediction", pred.ID, "district", env.District, "source", env.Source)
	return pred, nil
}

func profileKey(name string) (string, error) {
	key := model.Key(name)
	if key == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return key, nil
}

func validateLocation(loc model.Location) error {
	c := loc.Coordinates
	if c == nil {
		return nil
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: coordinates %.4f,%.4f out of range", ErrInvalidInput, c.Lat, c.Lon)
	}
	return nil
}
