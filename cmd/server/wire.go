package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/agenthands/healthrisk/internal/config"
	"github.com/agenthands/healthrisk/internal/core"
	"github.com/agenthands/healthrisk/internal/core/narrative"
	"github.com/agenthands/healthrisk/internal/core/risk"
	"github.com/agenthands/healthrisk/internal/core/symptoms"
	"github.com/agenthands/healthrisk/internal/enrich"
	"github.com/agenthands/healthrisk/internal/llm"
	"github.com/agenthands/healthrisk/internal/monitoring"
	"github.com/agenthands/healthrisk/internal/store"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "config/config.toml"

func newLogger(lv int) logr.Logger {
	stdr.SetVerbosity(lv)
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags))
}

// loadConfig reads .env, the TOML file and the environment, in that order of precedence.
func loadConfig(path string, logger logr.Logger) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.V(1).Info("No .env file found, using the process environment")
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Info("Loaded configuration", "path", path, "llm", cfg.LLM.Provider, "liveWeather", cfg.Weather.APIKey != "")
	return cfg, nil
}

// newPredictor builds the pipeline. The returned closer releases the LLM client.
func newPredictor(
	ctx context.Context,
	cfg *config.Config,
	st store.ProfileStore,
	metrics monitoring.MetricsMonitoring,
	logger logr.Logger,
) (*core.Predictor, func() error, error) {
	var (
		weather  enrich.WeatherProvider
		geocoder enrich.Geocoder
	)
	if cfg.Weather.APIKey != "" {
		ow := enrich.NewOpenWeatherClient(cfg.Weather)
		weather, geocoder = ow, ow
	} else {
		logger.Info("OPENWEATHER_API_KEY is not set; using baseline environmental conditions")
	}
	enricher, err := enrich.NewEnricher(cfg.Environment, weather, geocoder, cfg.Weather.CacheTTL.Duration, metrics, logger)
	if err != nil {
		return nil, nil, err
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	var (
		extractor symptoms.Extractor = symptoms.KeywordExtractor{}
		explainer *narrative.Explainer
		closer    = func() error { return nil }
	)
	if llmClient != nil {
		extractor = symptoms.NewLLMExtractor(llmClient, cfg.Prompts.Symptoms, logger)
		explainer = narrative.NewExplainer(llmClient, cfg.Prompts.Narrative)
		if c, ok := llmClient.(io.Closer); ok {
			closer = c.Close
		}
	}

	p := core.NewPredictor(
		st,
		enricher,
		risk.Default(cfg.Environment.UrbanDistricts),
		extractor,
		explainer,
		metrics,
		logger,
	)
	return p, closer, nil
}
