package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agenthands/healthrisk/internal/config"
	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenWeatherServer(t *testing.T) *OpenWeatherClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		if r.URL.Query().Get("lat") != "26.8467" {
			// a passing shower reported only in the rain volume
			_, _ = w.Write([]byte(`{"weather":[{"main":"Clouds"}],"main":{"temp":27,"humidity":88},"rain":{"1h":0.4}}`))
			return
		}
		_, _ = w.Write([]byte(`{"weather":[{"main":"Drizzle"}],"main":{"temp":31.2,"humidity":74}}`))
	})
	mux.HandleFunc("/data/2.5/air_pollution", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list":[{"main":{"aqi":3},"components":{"pm2_5":52.4}}]}`))
	})
	mux.HandleFunc("/geo/1.0/direct", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Lucknow,IN" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"name":"Lucknow","lat":26.8467,"lon":80.9462,"country":"IN","state":"Uttar Pradesh"}]`))
	})
	mux.HandleFunc("/geo/1.0/reverse", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "26.8467" && r.URL.Query().Get("lon") == "80.9462" {
			_, _ = w.Write([]byte(`[{"name":"Lucknow","lat":26.8467,"lon":80.9462,"country":"IN","state":"Uttar Pradesh"}]`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.Default().Weather
	cfg.BaseURL = srv.URL + "/"
	cfg.APIKey = "test-key"
	return NewOpenWeatherClient(cfg)
}

func TestOpenWeather_Current(t *testing.T) {
	c := newOpenWeatherServer(t)

	obs, err := c.Current(context.Background(), lucknow)
	require.NoError(t, err)
	assert.Equal(t, &Observation{TemperatureC: 31.2, HumidityPct: 74, Raining: true}, obs)

	obs, err = c.Current(context.Background(), model.Coordinates{Lat: 25.3176, Lon: 82.9739})
	require.NoError(t, err)
	assert.Equal(t, &Observation{TemperatureC: 27, HumidityPct: 88, Raining: true}, obs)
}

func TestOpenWeather_AirQuality(t *testing.T) {
	c := newOpenWeatherServer(t)

	pm, err := c.AirQuality(context.Background(), lucknow)
	require.NoError(t, err)
	assert.InDelta(t, 52.4, pm, 1e-9)
}

func TestOpenWeather_Direct(t *testing.T) {
	c := newOpenWeatherServer(t)

	p, err := c.Direct(context.Background(), "Lucknow")
	require.NoError(t, err)
	assert.Equal(t, "Uttar Pradesh", p.State)
	assert.Equal(t, lucknow, p.Coordinates)

	_, err = c.Direct(context.Background(), "Atlantis")
	assert.True(t, errors.Is(err, ErrNoPlace))
}

func TestOpenWeather_Reverse(t *testing.T) {
	c := newOpenWeatherServer(t)

	p, err := c.Reverse(context.Background(), lucknow)
	require.NoError(t, err)
	assert.Equal(t, &Place{
		Name:        "Lucknow",
		State:       "Uttar Pradesh",
		Country:     "IN",
		Coordinates: lucknow,
	}, p)
}

func TestOpenWeather_ErrorStatus(t *testing.T) {
	c := newOpenWeatherServer(t)

	_, err := c.Reverse(context.Background(), model.Coordinates{Lat: 1, Lon: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 401")
	assert.Contains(t, err.Error(), "Invalid API key")
}
