// Package enrich attaches environmental context to a prediction request.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agenthands/healthrisk/internal/config"
	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

const (
	StageReverseGeocode = "reverse_geocode"
	StageDirectGeocode  = "direct_geocode"
	StageWeather        = "weather"
	StageAirQuality     = "air_quality"
)

type WeatherProvider interface {
	Current(ctx context.Context, at model.Coordinates) (*Observation, error)
	AirQuality(ctx context.Context, at model.Coordinates) (float64, error)
}

type Geocoder interface {
	Direct(ctx context.Context, district string) (*Place, error)
	Reverse(ctx context.Context, at model.Coordinates) (*Place, error)
}

// FallbackRecorder counts upstream failures that were absorbed.
type FallbackRecorder interface {
	ObserveEnrichmentFallback(stage string)
}

type reading struct {
	obs  *Observation
	pm25 *float64
}

// Enricher builds EnvironmentalConditions from a season calendar, the
// per-district surveillance table and, when configured, live weather.
type Enricher struct {
	cfg       config.EnvironmentConfig
	weather   WeatherProvider
	geocoder  Geocoder
	loc       *time.Location
	peakMonth time.Month
	peakDay   int

	Clock func() time.Time

	cache *ttlCache[reading]

	mu       sync.Mutex
	lastRain map[string]time.Time

	metrics FallbackRecorder
	logger  logr.Logger
}

// NewEnricher returns an Enricher. weather and geocoder may be nil, in which
// case conditions come from the baseline only.
func NewEnricher(
	cfg config.EnvironmentConfig,
	weather WeatherProvider,
	geocoder Geocoder,
	cacheTTL time.Duration,
	metrics FallbackRecorder,
	logger logr.Logger,
) (*Enricher, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	month, day, err := cfg.MonsoonPeakDate()
	if err != nil {
		return nil, err
	}

	e := &Enricher{
		cfg:       cfg,
		weather:   weather,
		geocoder:  geocoder,
		loc:       loc,
		peakMonth: month,
		peakDay:   day,
		Clock:     time.Now,
		lastRain:  map[string]time.Time{},
		metrics:   metrics,
		logger:    logger.WithName("enrich"),
	}
	e.cache = newTTLCache[reading](cacheTTL, func() time.Time { return e.Clock() })
	return e, nil
}

// Conditions resolves the district for the request and returns its conditions.
// Upstream failures fall back to the baseline; only a cancelled context is an error.
func (e *Enricher) Conditions(ctx context.Context, at model.Location, profileDistrict string) (model.EnvironmentalConditions, error) {
	now := e.Clock().In(e.loc)
	coords := at.Coordinates

	district := strings.TrimSpace(at.District)
	if district == "" && coords != nil && e.geocoder != nil {
		place, err := e.geocoder.Reverse(ctx, *coords)
		if err != nil {
			if ctx.Err() != nil {
				return model.EnvironmentalConditions{}, ctx.Err()
			}
			e.fallback(StageReverseGeocode, err)
		} else {
			district = place.Name
		}
	}
	if district == "" {
		district = strings.TrimSpace(profileDistrict)
	}
	if district == "" {
		district = e.cfg.DefaultDistrict
	}

	cond := e.baseline(district, now)

	if e.weather != nil {
		if coords == nil && e.geocoder != nil {
			place, err := e.geocoder.Direct(ctx, district)
			if err != nil {
				if ctx.Err() != nil {
					return model.EnvironmentalConditions{}, ctx.Err()
				}
				e.fallback(StageDirectGeocode, err)
			} else {
				coords = &place.Coordinates
			}
		}
		if coords != nil {
			r := e.live(ctx, *coords)
			if ctx.Err() != nil {
				return model.EnvironmentalConditions{}, ctx.Err()
			}
			e.apply(&cond, r, now)
		}
	}

	cond.DaysSinceLastRain = e.daysSinceRain(district, now)
	return cond, nil
}

func (e *Enricher) baseline(district string, now time.Time) model.EnvironmentalConditions {
	cond := model.EnvironmentalConditions{
		Timestamp:             now,
		District:              district,
		Season:                Season(now.Month()),
		WeeksSinceMonsoonPeak: e.weeksSincePeak(now),
		HourOfDay:             now.Hour(),
		AQI:                   e.cfg.DefaultAQI,
		TemperatureC:          e.cfg.DefaultTemperatureC,
		LocalVectorIndex:      e.cfg.DefaultVectorIndex,
		LocalOutbreakAlert:    e.cfg.DefaultOutbreakAlert,
		Source:                model.SourceBaseline,
	}
	if d, ok := e.cfg.District(district); ok {
		if d.AQI > 0 {
			cond.AQI = d.AQI
		}
		if d.VectorIndex > 0 {
			cond.LocalVectorIndex = d.VectorIndex
		}
		if d.OutbreakAlert != "" {
			cond.LocalOutbreakAlert = d.OutbreakAlert
		}
	}
	return cond
}

// live fetches weather and air quality concurrently. Either may be missing.
func (e *Enricher) live(ctx context.Context, at model.Coordinates) reading {
	key := fmt.Sprintf("%.2f,%.2f", at.Lat, at.Lon)
	if r, ok := e.cache.get(key); ok {
		return r
	}

	var (
		r      reading
		obsErr error
		pmErr  error
		g      errgroup.Group
	)
	g.Go(func() error {
		r.obs, obsErr = e.weather.Current(ctx, at)
		return nil
	})
	g.Go(func() error {
		pm, err := e.weather.AirQuality(ctx, at)
		if err != nil {
			pmErr = err
			return nil
		}
		r.pm25 = &pm
		return nil
	})
	_ = g.Wait()

	if obsErr != nil {
		e.fallback(StageWeather, obsErr)
	}
	if pmErr != nil {
		e.fallback(StageAirQuality, pmErr)
	}
	if r.obs != nil || r.pm25 != nil {
		e.cache.set(key, r)
	}
	return r
}

func (e *Enricher) apply(cond *model.EnvironmentalConditions, r reading, now time.Time) {
	if r.obs != nil {
		cond.TemperatureC = r.obs.TemperatureC
		cond.HumidityPct = r.obs.HumidityPct
		cond.Source = model.SourceLive
		if r.obs.Raining {
			e.recordRain(cond.District, now)
		}
	}
	if r.pm25 != nil {
		cond.AQI = AQIFromPM25(*r.pm25)
		cond.Source = model.SourceLive
	}
}

func (e *Enricher) recordRain(district string, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastRain[strings.ToLower(district)] = now
}

func (e *Enricher) daysSinceRain(district string, now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.lastRain[strings.ToLower(district)]
	if !ok {
		return e.cfg.DefaultDaysSinceRain
	}
	return int(now.Sub(t).Hours() / 24)
}

// weeksSincePeak counts whole weeks since the most recent monsoon peak.
func (e *Enricher) weeksSincePeak(now time.Time) int {
	peak := time.Date(now.Year(), e.peakMonth, e.peakDay, 0, 0, 0, 0, e.loc)
	if now.Before(peak) {
		peak = peak.AddDate(-1, 0, 0)
	}
	return int(now.Sub(peak).Hours() / (24 * 7))
}

func (e *Enricher) fallback(stage string, err error) {
	e.logger.Error(err, "Upstream lookup failed, using baseline", "stage", stage)
	if e.metrics != nil {
		e.metrics.ObserveEnrichmentFallback(stage)
	}
}

// Season maps a month to the north Indian seasonal calendar.
func Season(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Summer"
	case time.June, time.July, time.August:
		return "Monsoon"
	default:
		return "Post-Monsoon"
	}
}
