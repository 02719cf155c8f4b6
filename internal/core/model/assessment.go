package model

import "time"

type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelVeryHigh Level = "VERY HIGH"
)

type ScoreItem struct {
	Param string  `json:"param"`
	Value string  `json:"value"`
	Score float64 `json:"score"`
}

type RiskAssessment struct {
	Disease string      `json:"disease"`
	Score   float64     `json:"score"`
	Level   Level       `json:"level"`
	Details []ScoreItem `json:"details"`
}

type Prediction struct {
	ID                      string                  `json:"prediction_id"`
	GeneratedAt             time.Time               `json:"generated_at"`
	ProfileName             string                  `json:"profile_name"`
	Symptoms                []string                `json:"symptoms,omitempty"`
	EnvironmentalConditions EnvironmentalConditions `json:"environmental_conditions"`
	RiskAssessments         []RiskAssessment        `json:"risk_assessments"`
	Narrative               string                  `json:"narrative,omitempty"`
}

// Symptoms is the symptom part of a prediction request.
type Symptoms struct {
	Selected []string `json:"symptoms,omitempty"`
	FreeText string   `json:"free_text,omitempty"`
}

// NarrativeResult is the JSON object the narrative prompt asks for.
type NarrativeResult struct {
	Narrative string `json:"narrative"`
}

// ExtractedSymptoms is the JSON object the symptom prompt asks for.
type ExtractedSymptoms struct {
	Symptoms []string `json:"symptoms"`
}
