package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prediction() *model.Prediction {
	return &model.Prediction{
		ID:          "uuid-1",
		GeneratedAt: time.Date(2025, 9, 13, 11, 48, 0, 0, time.UTC),
		ProfileName: "Asha Verma",
		Symptoms:    []string{"fever", "rash"},
		EnvironmentalConditions: model.EnvironmentalConditions{
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
		},
		RiskAssessments: []model.RiskAssessment{
			{
				Disease: "Dengue Fever",
				Score:   219,
				Level:   model.LevelHigh,
				Details: []model.ScoreItem{
					{Param: "Vector Index", Value: "28%", Score: 35},
					{Param: "Symptoms", Value: "fever, rash", Score: 30},
				},
			},
			{
				Disease: "Respiratory Illness",
				Score:   38.5,
				Level:   model.LevelLow,
				Details: []model.ScoreItem{{Param: "AQI", Value: "110", Score: 30}},
			},
		},
		Narrative: "Dengue risk is high this week.",
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(prediction())

	for _, want := range []string{
		"# Health risk report for Asha Verma\n",
		"prediction `uuid-1`",
		"| District | Lucknow |\n",
		"| Hour of day | 17:00 |\n",
		"| Vector index | 28% |\n",
		"| Outbreak alert | Dengue |\n",
		"**Reported symptoms:** fever, rash",
		"## Dengue Fever: HIGH (score 219)\n",
		"| Symptoms | fever, rash | 30 |\n",
		"## Respiratory Illness: LOW (score 38.5)\n",
		"## Summary\n\nDengue risk is high this week.\n",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "Humidity")
	assert.Less(t, strings.Index(md, "Dengue Fever"), strings.Index(md, "Respiratory Illness"))
}

func TestMarkdown_EscapesPipes(t *testing.T) {
	p := prediction()
	p.EnvironmentalConditions.District = "A|B"
	assert.Contains(t, Markdown(p), `| District | A\|B |`)
}

func TestMarkdown_FlattensLineBreaks(t *testing.T) {
	p := prediction()
	p.ProfileName = "Asha\n# Verma"
	p.EnvironmentalConditions.District = "Lucknow\r\n| x | y |"
	p.RiskAssessments[0].Details[0].Value = "28%\nhigh"

	md := Markdown(p)
	assert.Contains(t, md, "# Health risk report for Asha # Verma\n")
	assert.Contains(t, md, `| District | Lucknow \| x \| y \| |`)
	assert.Contains(t, md, "| Vector Index | 28% high | 35 |")
	assert.NotContains(t, md, "\n# Verma")
}

func TestMarkdown_NoName(t *testing.T) {
	p := prediction()
	p.ProfileName = ""
	assert.True(t, strings.HasPrefix(Markdown(p), "# Health risk report\n\n"))
}

func TestRender_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "# Title\n", false))
	assert.Equal(t, "# Title\n", buf.String())
}

func TestRender_Styled(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "notty")
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "# Title\n\nbody text\n", true))
	assert.Contains(t, buf.String(), "Title")
	assert.Contains(t, buf.String(), "body text")
}

func TestIsTTY(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.md"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTTY(f))
	assert.False(t, IsTTY(&bytes.Buffer{}))
}
