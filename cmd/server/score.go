package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agenthands/healthrisk/internal/core"
	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/agenthands/healthrisk/internal/monitoring"
	"github.com/agenthands/healthrisk/internal/report"
	"github.com/agenthands/healthrisk/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type scoreFlags struct {
	config   string
	profile  string
	symptoms []string
	text     string
	district string
	lat      float64
	lon      float64
	asJSON   bool
	logLevel int
}

func scoreCmd() *cobra.Command {
	var f scoreFlags
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Print a risk report for a profile file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger(f.logLevel)
			c, err := loadConfig(f.config, logger.WithName("boot"))
			if err != nil {
				return err
			}

			profile, err := readProfile(f.profile)
			if err != nil {
				return err
			}
			req := core.Request{
				Symptoms: model.Symptoms{Selected: f.symptoms, FreeText: f.text},
				Location: model.Location{District: f.district},
			}
			latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if latSet != lonSet {
				return fmt.Errorf("--lat and --lon must be given together")
			}
			if latSet {
				req.Location.Coordinates = &model.Coordinates{Lat: f.lat, Lon: f.lon}
			}

			predictor, closeLLM, err := newPredictor(ctx, c, store.NewMemoryStore(), monitoring.NoopMonitor{}, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeLLM() }()

			pred, err := predictor.Assess(ctx, *profile, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(pred)
			}
			return report.Render(out, report.Markdown(pred), report.IsTTY(out))
		},
	}

	fl := cmd.Flags()
	fl.SortFlags = false
	fl.StringVar(&f.profile, "profile", "", "Profile `file.yaml` or file.json")
	fl.StringSliceVar(&f.symptoms, "symptoms", nil, "Selected symptoms, comma separated")
	fl.StringVar(&f.text, "text", "", "Free-text symptom description")
	fl.StringVar(&f.district, "district", "", "District override")
	fl.Float64Var(&f.lat, "lat", 0, "Latitude")
	fl.Float64Var(&f.lon, "lon", 0, "Longitude")
	fl.BoolVar(&f.asJSON, "json", false, "Print the prediction as JSON")
	fl.StringVar(&f.config, "config", "", "Path to the config file")
	fl.IntVar(&f.logLevel, "v", 0, "Log level")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagFilename("profile", "yaml", "yml", "json")
	return cmd
}

// readProfile decodes a YAML or JSON profile file.
func readProfile(path string) (*model.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var p model.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &p, nil
}
