package risk

import (
	"testing"
	"time"

	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var urban = []string{
	"Lucknow", "Kanpur Nagar", "Ghaziabad", "Gautam Buddh Nagar",
	"Varanasi", "Prayagraj", "Meerut", "Agra",
}

// lucknowSeptember mirrors a mid-September afternoon in Lucknow.
func lucknowSeptember() model.EnvironmentalConditions {
	return model.EnvironmentalConditions{
		Timestamp:             time.Date(2025, 9, 13, 17, 18, 0, 0, time.UTC),
		District:              "Lucknow",
		Season:                "Post-Monsoon",
		WeeksSinceMonsoonPeak: 4,
		DaysSinceLastRain:     4,
		HourOfDay:             17,
		AQI:                   110,
		TemperatureC:          29,
		LocalVectorIndex:      28,
		LocalOutbreakAlert:    "Dengue",
		Source:                model.SourceBaseline,
	}
}

var now = time.Date(2025, 9, 13, 17, 18, 0, 0, time.UTC)

func TestAgeGroup(t *testing.T) {
	tcs := []struct {
		age  int
		want string
	}{
		{0, "0-5"}, {5, "0-5"}, {6, "6-15"}, {15, "6-15"}, {16, "16-40"},
		{40, "16-40"}, {41, "41-60"}, {60, "41-60"}, {61, ">60"}, {95, ">60"},
	}
	for _, tc := range tcs {
		assert.Equal(t, tc.want, AgeGroup(tc.age), "age %d", tc.age)
	}
}

func TestAge(t *testing.T) {
	age, err := Age(model.Profile{Core: model.CoreProfile{DOB: "1990-12-31"}}, now)
	require.NoError(t, err)
	// year difference only
	assert.Equal(t, 35, age)

	age, err = Age(model.Profile{}, now)
	require.NoError(t, err)
	assert.Equal(t, 30, age)

	_, err = Age(model.Profile{Core: model.CoreProfile{DOB: "yesterday"}}, now)
	assert.Error(t, err)
}

func TestDengue_Baseline(t *testing.T) {
	p := model.Profile{Core: model.CoreProfile{Name: "Asha", DOB: "1990-05-01", District: "Lucknow"}}
	in, err := NewInput(p, lucknowSeptember(), nil, now)
	require.NoError(t, err)

	got := (&Dengue{UrbanDistricts: urban}).Assess(in)

	want := model.RiskAssessment{
		Disease: DiseaseDengue,
		Score:   189,
		Level:   model.LevelModerate,
		Details: []model.ScoreItem{
			{Param: "Age Group", Value: "16-40", Score: 10},
			{Param: "Location", Value: "Urban", Score: 40},
			{Param: "Weeks Since Monsoon Peak", Value: "4", Score: 40},
			{Param: "Days Since Rain", Value: "4", Score: 40},
			{Param: "Time of Day", Value: "17:00", Score: 24},
			{Param: "Vector Index", Value: "28%", Score: 35},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected assessment (-want +got):\n%s", diff)
	}
}

func TestDengue_ComorbidityAndSymptoms(t *testing.T) {
	p := model.Profile{
		Core:      model.CoreProfile{Name: "Asha", DOB: "1990-05-01"},
		Lifestyle: model.Lifestyle{Conditions: []string{"Diabetes"}},
	}
	in, err := NewInput(p, lucknowSeptember(), []string{"rash", "fever", "cough"}, now)
	require.NoError(t, err)

	got := (&Dengue{UrbanDistricts: urban}).Assess(in)

	// 189 baseline + 40 diabetes + 30 symptoms
	assert.Equal(t, 259.0, got.Score)
	assert.Equal(t, model.LevelHigh, got.Level)
	last := got.Details[len(got.Details)-1]
	assert.Equal(t, model.ScoreItem{Param: "Symptoms", Value: "fever, rash", Score: 30}, last)
}

func TestDengue_RuralNightChild(t *testing.T) {
	env := lucknowSeptember()
	env.District = "Lalitpur"
	env.HourOfDay = 23
	env.WeeksSinceMonsoonPeak = 30
	env.DaysSinceLastRain = 0
	env.LocalVectorIndex = 0

	p := model.Profile{Core: model.CoreProfile{Name: "Kid", DOB: "2015-01-01"}}
	in, err := NewInput(p, env, nil, now)
	require.NoError(t, err)

	got := (&Dengue{UrbanDistricts: urban}).Assess(in)

	// 21 age + 20 rural + 50 capped weeks + 0 rain + 9 night + 0 vector
	assert.Equal(t, 100.0, got.Score)
	assert.Equal(t, model.LevelLow, got.Level)
	assert.Equal(t, "Rural", got.Details[1].Value)
}

func TestRespiratory(t *testing.T) {
	tcs := []struct {
		name      string
		profile   model.Profile
		aqi       int
		symptoms  []string
		wantScore float64
		wantLevel model.Level
	}{
		{
			name:      "adult moderate air",
			profile:   model.Profile{Core: model.CoreProfile{DOB: "1990-05-01"}},
			aqi:       110,
			wantScore: 38,
			wantLevel: model.LevelLow,
		},
		{
			name:      "elderly boundary",
			profile:   model.Profile{Core: model.CoreProfile{DOB: "1950-05-01"}},
			aqi:       150,
			wantScore: 75,
			wantLevel: model.LevelLow,
		},
		{
			name: "asthmatic construction worker",
			profile: model.Profile{
				Core:      model.CoreProfile{DOB: "1990-05-01"},
				Lifestyle: model.Lifestyle{Conditions: []string{"Asthma/COPD"}, Occupation: "Construction Worker"},
			},
			aqi:       110,
			wantScore: 148,
			wantLevel: model.LevelModerate,
		},
		{
			name: "toddler in severe smog with symptoms",
			profile: model.Profile{
				Core: model.CoreProfile{DOB: "2023-02-01"},
			},
			aqi:       320,
			symptoms:  []string{"shortness of breath", "wheezing", "cough"},
			wantScore: 50 + 32 + 50,
			wantLevel: model.LevelModerate,
		},
		{
			name: "elderly miner with asthma",
			profile: model.Profile{
				Core:      model.CoreProfile{DOB: "1940-05-01"},
				Lifestyle: model.Lifestyle{Conditions: []string{"asthma/copd"}, Occupation: "Miner"},
			},
			aqi:       250,
			symptoms:  []string{"shortness of breath", "chest tightness"},
			wantScore: 40 + 45 + 80 + 30 + 40,
			wantLevel: model.LevelHigh,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			env := lucknowSeptember()
			env.AQI = tc.aqi
			in, err := NewInput(tc.profile, env, tc.symptoms, now)
			require.NoError(t, err)

			got := (&Respiratory{}).Assess(in)
			assert.Equal(t, DiseaseRespiratory, got.Disease)
			assert.Equal(t, tc.wantScore, got.Score)
			assert.Equal(t, tc.wantLevel, got.Level)

			var sum float64
			for _, d := range got.Details {
				sum += d.Score
			}
			assert.Equal(t, got.Score, sum)
		})
	}
}

func TestThresholds(t *testing.T) {
	assert.Equal(t, model.LevelLow, dengueThresholds.level(100))
	assert.Equal(t, model.LevelModerate, dengueThresholds.level(100.5))
	assert.Equal(t, model.LevelHigh, dengueThresholds.level(300))
	assert.Equal(t, model.LevelVeryHigh, dengueThresholds.level(301))
	assert.Equal(t, model.LevelVeryHigh, respiratoryThresholds.level(251))
}

func TestDefaultOrder(t *testing.T) {
	calcs := Default(urban)
	require.Len(t, calcs, 2)
	assert.Equal(t, DiseaseDengue, calcs[0].Disease())
	assert.Equal(t, DiseaseRespiratory, calcs[1].Disease())
}
