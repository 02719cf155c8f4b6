package symptoms

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/agenthands/healthrisk/internal/core/common"
	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/agenthands/healthrisk/internal/llm"
	"github.com/go-logr/logr"
)

// Extractor finds canonical symptoms in free text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// synonyms maps phrases people actually write to canonical symptoms.
var synonyms = map[string][]string{
	"fever":               {"fever", "feverish", "high temperature", "temperature", "chills", "bukhar"},
	"headache":            {"headache", "head ache", "head pain", "migraine"},
	"joint pain":          {"joint pain", "joint ache", "aching joints", "painful joints"},
	"muscle pain":         {"muscle pain", "body ache", "body pain", "aching muscles", "myalgia"},
	"rash":                {"rash", "red spots", "skin spots"},
	"eye pain":            {"eye pain", "pain behind the eyes", "pain behind my eyes", "sore eyes"},
	"nausea":              {"nausea", "nauseous", "vomiting", "vomit", "throwing up"},
	"bleeding":            {"bleeding", "bleeding gums", "nosebleed", "blood in"},
	"cough":               {"cough", "coughing"},
	"shortness of breath": {"shortness of breath", "short of breath", "breathless", "breathlessness", "difficulty breathing", "hard to breathe"},
	"wheezing":            {"wheezing", "wheeze"},
	"sore throat":         {"sore throat", "throat pain", "scratchy throat"},
	"chest tightness":     {"chest tightness", "tight chest", "chest feels tight"},
	"runny nose":          {"runny nose", "running nose", "blocked nose", "stuffy nose"},
}

var patterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(synonyms))
	for symptom, phrases := range synonyms {
		quoted := make([]string, len(phrases))
		for i, p := range phrases {
			quoted[i] = regexp.QuoteMeta(p)
		}
		m[symptom] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return m
}()

// KeywordExtractor matches known phrasings on word boundaries.
type KeywordExtractor struct{}

func (KeywordExtractor) Extract(_ context.Context, text string) ([]string, error) {
	text = strings.ToLower(text)
	found := map[string]bool{}
	for symptom, re := range patterns {
		if re.MatchString(text) {
			found[symptom] = true
		}
	}
	return ordered(found), nil
}

// LLMExtractor asks the model first and falls back to keywords when it cannot.
type LLMExtractor struct {
	LLM      llm.LLMClient
	Prompt   string
	Fallback Extractor
	logger   logr.Logger
}

func NewLLMExtractor(llmClient llm.LLMClient, prompt string, logger logr.Logger) *LLMExtractor {
	return &LLMExtractor{
		LLM:      llmClient,
		Prompt:   prompt,
		Fallback: KeywordExtractor{},
		logger:   logger.WithName("symptoms"),
	}
}

func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	found, err := e.extract(ctx, text)
	if err != nil {
		e.logger.Error(err, "Model extraction failed, using keyword matching")
		return e.Fallback.Extract(ctx, text)
	}
	return found, nil
}

func (e *LLMExtractor) extract(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(e.Prompt, strings.Join(Vocabulary, "\n"), text)

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate symptoms: %w", err)
	}

	result, err := common.ParseJSON[model.ExtractedSymptoms](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse symptoms: %w", err)
	}

	lowered := make([]string, len(result.Symptoms))
	for i, s := range result.Symptoms {
		lowered[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return Merge(lowered), nil
}
