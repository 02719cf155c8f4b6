package risk

import (
	"fmt"
	"strconv"

	"github.com/agenthands/healthrisk/internal/core/model"
)

const DiseaseDengue = "Dengue Fever"

var (
	dengueAgeWeights = map[string]float64{"6-15": 3, "16-40": 2, ">60": 4}
	dengueAgePoints  = map[string]float64{"6-15": 7, "16-40": 5, ">60": 6}

	dengueSymptomPoints = map[string]float64{
		"fever":       20,
		"bleeding":    30,
		"joint pain":  10,
		"muscle pain": 10,
		"eye pain":    10,
		"rash":        10,
		"headache":    5,
		"nausea":      5,
	}

	dengueThresholds = thresholds{moderate: 100, high: 200, veryHigh: 300}
)

// Dengue scores Aedes-borne dengue exposure.
type Dengue struct {
	UrbanDistricts []string
}

func (d *Dengue) Disease() string { return DiseaseDengue }

func (d *Dengue) Assess(in Input) model.RiskAssessment {
	var card []model.ScoreItem
	env := in.Env

	weight, points := lookup(dengueAgeWeights, in.AgeGroup, 1), lookup(dengueAgePoints, in.AgeGroup, 3)
	card = append(card, model.ScoreItem{Param: "Age Group", Value: in.AgeGroup, Score: weight * points})

	district := env.District
	if district == "" {
		district = in.Profile.Core.District
	}
	urban := containsFold(d.UrbanDistricts, district)
	setting, points := "Rural", 4.0
	if urban {
		setting, points = "Urban", 8
	}
	card = append(card, model.ScoreItem{Param: "Location", Value: setting, Score: 5 * points})

	// Breeding peaks a few weeks after the monsoon and after rain leaves standing water.
	card = append(card, model.ScoreItem{
		Param: "Weeks Since Monsoon Peak",
		Value: strconv.Itoa(env.WeeksSinceMonsoonPeak),
		Score: 5 * capped(2*float64(env.WeeksSinceMonsoonPeak), 10),
	})
	card = append(card, model.ScoreItem{
		Param: "Days Since Rain",
		Value: strconv.Itoa(env.DaysSinceLastRain),
		Score: 5 * capped(2*float64(env.DaysSinceLastRain), 10),
	})

	// Aedes bites in daylight, mostly around dawn and dusk.
	hour := env.HourOfDay
	points = 3
	if (hour >= 5 && hour <= 9) || (hour >= 16 && hour <= 19) {
		points = 8
	}
	card = append(card, model.ScoreItem{Param: "Time of Day", Value: fmt.Sprintf("%d:00", hour), Score: 3 * points})

	card = append(card, model.ScoreItem{
		Param: "Vector Index",
		Value: fmt.Sprintf("%d%%", env.LocalVectorIndex),
		Score: 5 * (float64(env.LocalVectorIndex) / 4),
	})

	if in.Profile.HasCondition("Diabetes") {
		card = append(card, model.ScoreItem{Param: "Co-morbidity", Value: "Diabetes", Score: 40})
	}

	if item, ok := symptomItem(in.Symptoms, dengueSymptomPoints); ok {
		card = append(card, item)
	}

	return finish(DiseaseDengue, card, dengueThresholds)
}

func lookup(m map[string]float64, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

func capped(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
