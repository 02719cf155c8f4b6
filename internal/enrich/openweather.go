package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/agenthands/healthrisk/internal/config"
	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/tidwall/gjson"
)

// ErrNoPlace is returned when geocoding finds nothing.
var ErrNoPlace = errors.New("no matching place")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observation is the part of a current weather report the risk model uses.
type Observation struct {
	TemperatureC float64
	HumidityPct  float64
	Raining      bool
}

type Place struct {
	Name        string
	State       string
	Country     string
	Coordinates model.Coordinates
}

// OpenWeatherClient covers the weather, air pollution and geocoding APIs of OpenWeatherMap.
type OpenWeatherClient struct {
	Client      HTTPClient
	BaseURL     string
	APIKey      string
	CountryCode string
}

func NewOpenWeatherClient(cfg config.WeatherConfig) *OpenWeatherClient {
	return &OpenWeatherClient{
		Client:      &http.Client{Timeout: cfg.Timeout.Duration},
		BaseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:      cfg.APIKey,
		CountryCode: cfg.CountryCode,
	}
}

func (c *OpenWeatherClient) Current(ctx context.Context, at model.Coordinates) (*Observation, error) {
	q := coordQuery(at)
	q.Set("units", "metric")
	body, err := c.get(ctx, "/data/2.5/weather", q)
	if err != nil {
		return nil, err
	}

	temp := gjson.GetBytes(body, "main.temp")
	if !temp.Exists() {
		return nil, fmt.Errorf("weather response has no main.temp")
	}
	obs := &Observation{
		TemperatureC: temp.Float(),
		HumidityPct:  gjson.GetBytes(body, "main.humidity").Float(),
		Raining:      gjson.GetBytes(body, "rain.1h").Float() > 0,
	}
	switch gjson.GetBytes(body, "weather.0.main").String() {
	case "Rain", "Drizzle", "Thunderstorm":
		obs.Raining = true
	}
	return obs, nil
}

// AirQuality returns the current PM2.5 concentration in µg/m³.
func (c *OpenWeatherClient) AirQuality(ctx context.Context, at model.Coordinates) (float64, error) {
	body, err := c.get(ctx, "/data/2.5/air_pollution", coordQuery(at))
	if err != nil {
		return 0, err
	}
	pm := gjson.GetBytes(body, "list.0.components.pm2_5")
	if !pm.Exists() {
		return 0, fmt.Errorf("air pollution response has no pm2_5")
	}
	return pm.Float(), nil
}

// Direct looks up a district by name.
func (c *OpenWeatherClient) Direct(ctx context.Context, district string) (*Place, error) {
	name := district
	if c.CountryCode != "" {
		name = district + "," + c.CountryCode
	}
	q := url.Values{}
	q.Set("q", name)
	q.Set("limit", "1")
	body, err := c.get(ctx, "/geo/1.0/direct", q)
	if err != nil {
		return nil, err
	}
	return firstPlace(body, district)
}

// Reverse finds the place name for coordinates.
func (c *OpenWeatherClient) Reverse(ctx context.Context, at model.Coordinates) (*Place, error) {
	q := coordQuery(at)
	q.Set("limit", "1")
	body, err := c.get(ctx, "/geo/1.0/reverse", q)
	if err != nil {
		return nil, err
	}
	return firstPlace(body, fmt.Sprintf("%.4f,%.4f", at.Lat, at.Lon))
}

func firstPlace(body []byte, query string) (*Place, error) {
	places := gjson.ParseBytes(body).Array()
	if len(places) == 0 || places[0].Get("name").String() == "" {
		return nil, fmt.Errorf("%w for %s", ErrNoPlace, query)
	}
	p := places[0]
	return &Place{
		Name:    p.Get("name").String(),
		State:   p.Get("state").String(),
		Country: p.Get("country").String(),
		Coordinates: model.Coordinates{
			Lat: p.Get("lat").Float(),
			Lon: p.Get("lon").Float(),
		},
	}, nil
}

func coordQuery(at model.Coordinates) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(at.Lon, 'f', 4, 64))
	return q
}

func (c *OpenWeatherClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	q.Set("appid", c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("openweather %s response not OK, status code: %d, body: %s", path, resp.StatusCode, string(respBody))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", path, err)
	}
	return body, nil
}
