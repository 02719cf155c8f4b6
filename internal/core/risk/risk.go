// Package risk scores a profile against the environment for each supported disease.
//
// Every calculator is a scorecard: each parameter contributes weight × points
// and the total is bucketed into a level by disease-specific thresholds.
package risk

import (
	"sort"
	"strings"
	"time"

	"github.com/agenthands/healthrisk/internal/core/model"
)

const defaultAge = 30

// Input is everything a calculator may look at.
type Input struct {
	Profile  model.Profile
	Env      model.EnvironmentalConditions
	Symptoms []string
	AgeGroup string
}

// NewInput derives the age group from the profile as of now.
func NewInput(p model.Profile, env model.EnvironmentalConditions, symptoms []string, now time.Time) (Input, error) {
	age, err := Age(p, now)
	if err != nil {
		return Input{}, err
	}
	return Input{
		Profile:  p,
		Env:      env,
		Symptoms: symptoms,
		AgeGroup: AgeGroup(age),
	}, nil
}

// Calculator produces one disease's assessment.
type Calculator interface {
	Disease() string
	Assess(in Input) model.RiskAssessment
}

// Age is the difference between the current year and the birth year.
// Profiles without a date of birth are treated as 30.
func Age(p model.Profile, now time.Time) (int, error) {
	dob, ok, err := p.BirthDate()
	if err != nil {
		return 0, err
	}
	if !ok {
		return defaultAge, nil
	}
	return now.Year() - dob.Year(), nil
}

func AgeGroup(age int) string {
	switch {
	case age <= 5:
		return "0-5"
	case age <= 15:
		return "6-15"
	case age <= 40:
		return "16-40"
	case age <= 60:
		return "41-60"
	default:
		return ">60"
	}
}

// thresholds are the exclusive lower bounds of MODERATE, HIGH and VERY HIGH.
type thresholds struct {
	moderate, high, veryHigh float64
}

func (t thresholds) level(score float64) model.Level {
	switch {
	case score > t.veryHigh:
		return model.LevelVeryHigh
	case score > t.high:
		return model.LevelHigh
	case score > t.moderate:
		return model.LevelModerate
	default:
		return model.LevelLow
	}
}

func finish(disease string, card []model.ScoreItem, t thresholds) model.RiskAssessment {
	var total float64
	for _, item := range card {
		total += item.Score
	}
	return model.RiskAssessment{
		Disease: disease,
		Score:   total,
		Level:   t.level(total),
		Details: card,
	}
}

// symptomItem scores the reported symptoms that matter for one disease.
// ok is false when none of them do.
func symptomItem(reported []string, points map[string]float64) (model.ScoreItem, bool) {
	var matched []string
	var score float64
	for _, s := range reported {
		if p, ok := points[s]; ok {
			matched = append(matched, s)
			score += p
		}
	}
	if len(matched) == 0 {
		return model.ScoreItem{}, false
	}
	sort.Strings(matched)
	return model.ScoreItem{Param: "Symptoms", Value: strings.Join(matched, ", "), Score: score}, true
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// Default returns the calculators in the order their assessments are reported.
func Default(urbanDistricts []string) []Calculator {
	return []Calculator{
		&Dengue{UrbanDistricts: urbanDistricts},
		&Respiratory{},
	}
}
