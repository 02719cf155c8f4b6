package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/healthrisk/internal/core/common"
	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/agenthands/healthrisk/internal/llm"
)

// Explainer turns scorecards into a short plain-language explanation.
type Explainer struct {
	LLM    llm.LLMClient
	Prompt string
}

func NewExplainer(llmClient llm.LLMClient, prompt string) *Explainer {
	return &Explainer{
		LLM:    llmClient,
		Prompt: prompt,
	}
}

func (e *Explainer) Explain(ctx context.Context, env model.EnvironmentalConditions, assessments []model.RiskAssessment, symptoms []string) (string, error) {
	prompt := fmt.Sprintf(e.Prompt, describe(env, assessments, symptoms))

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate narrative: %w", err)
	}

	result, err := common.ParseJSON[model.NarrativeResult](response)
	if err == nil {
		return strings.TrimSpace(result.Narrative), nil
	}
	// Some models ignore the JSON instruction for prose tasks.
	return strings.TrimSpace(response), nil
}

func describe(env model.EnvironmentalConditions, assessments []model.RiskAssessment, symptoms []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "District: %s (%s), AQI %d, %.0f°C, %d days since rain, local outbreak alert: %s\n",
		env.District, env.Season, env.AQI, env.TemperatureC, env.DaysSinceLastRain, orNone(env.LocalOutbreakAlert))
	if len(symptoms) > 0 {
		fmt.Fprintf(&b, "Reported symptoms: %s\n", strings.Join(symptoms, ", "))
	}
	for _, a := range assessments {
		fmt.Fprintf(&b, "\n%s: %s (score %.0f)\n", a.Disease, a.Level, a.Score)
		for _, d := range a.Details {
			fmt.Fprintf(&b, "- %s = %s: %.0f\n", d.Param, d.Value, d.Score)
		}
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
