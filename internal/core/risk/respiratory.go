package risk

import (
	"strconv"

	"github.com/agenthands/healthrisk/internal/core/model"
)

const DiseaseRespiratory = "Respiratory Illness"

var (
	respiratoryAgeWeights = map[string]float64{">60": 5, "0-5": 4}
	respiratoryAgePoints  = map[string]float64{">60": 9, "0-5": 8}

	highExposureOccupations = []string{"Construction Worker", "Factory Worker", "Miner"}

	respiratorySymptomPoints = map[string]float64{
		"shortness of breath": 25,
		"wheezing":            15,
		"chest tightness":     15,
		"cough":               10,
		"sore throat":         5,
		"runny nose":          5,
		"fever":               5,
	}

	respiratoryThresholds = thresholds{moderate: 75, high: 150, veryHigh: 250}
)

// Respiratory scores air-quality driven respiratory illness.
type Respiratory struct{}

func (r *Respiratory) Disease() string { return DiseaseRespiratory }

func (r *Respiratory) Assess(in Input) model.RiskAssessment {
	var card []model.ScoreItem

	aqi := in.Env.AQI
	var points float64
	switch {
	case aqi > 300:
		points = 10
	case aqi > 200:
		points = 8
	case aqi > 100:
		points = 6
	default:
		points = 3
	}
	card = append(card, model.ScoreItem{Param: "AQI", Value: strconv.Itoa(aqi), Score: 5 * points})

	weight, points := lookup(respiratoryAgeWeights, in.AgeGroup, 2), lookup(respiratoryAgePoints, in.AgeGroup, 4)
	card = append(card, model.ScoreItem{Param: "Age Group", Value: in.AgeGroup, Score: weight * points})

	if in.Profile.HasCondition("Asthma/COPD") {
		card = append(card, model.ScoreItem{Param: "Co-morbidity", Value: "Asthma/COPD", Score: 80})
	}

	if occ := in.Profile.Lifestyle.Occupation; containsFold(highExposureOccupations, occ) {
		card = append(card, model.ScoreItem{Param: "Occupation", Value: occ, Score: 30})
	}

	if item, ok := symptomItem(in.Symptoms, respiratorySymptomPoints); ok {
		card = append(card, item)
	}

	return finish(DiseaseRespiratory, card, respiratoryThresholds)
}
