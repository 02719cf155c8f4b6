package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Duration decodes TOML strings such as "10m" or "1h30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ServerConfig struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// TrustedProxies are IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `toml:"trusted_proxies"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
}

type DatabaseConfig struct {
	// URL selects the profile store backend by scheme: memory://, bolt://, neo4j://, redis://.
	URL string `toml:"url"`
}

type WeatherConfig struct {
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	CountryCode string   `toml:"country_code"`
	Timeout     Duration `toml:"timeout"`
	CacheTTL    Duration `toml:"cache_ttl"`
}

// DistrictConfig overrides the environment baseline for one district.
// Zero values leave the default in place.
type DistrictConfig struct {
	Name          string `toml:"name"`
	AQI           int    `toml:"aqi"`
	VectorIndex   int    `toml:"vector_index"`
	OutbreakAlert string `toml:"outbreak_alert"`
}

type EnvironmentConfig struct {
	Timezone             string           `toml:"timezone"`
	DefaultDistrict      string           `toml:"default_district"`
	MonsoonPeak          string           `toml:"monsoon_peak"`
	DefaultDaysSinceRain int              `toml:"default_days_since_rain"`
	DefaultAQI           int              `toml:"default_aqi"`
	DefaultTemperatureC  float64          `toml:"default_temperature_c"`
	DefaultVectorIndex   int              `toml:"default_vector_index"`
	DefaultOutbreakAlert string           `toml:"default_outbreak_alert"`
	UrbanDistricts       []string         `toml:"urban_districts"`
	Districts            []DistrictConfig `toml:"districts"`
}

// MonsoonPeakDate returns the configured month and day of the monsoon peak.
func (c EnvironmentConfig) MonsoonPeakDate() (time.Month, int, error) {
	t, err := time.Parse("01-02", c.MonsoonPeak)
	if err != nil {
		return 0, 0, fmt.Errorf("monsoon_peak must be MM-DD: %w", err)
	}
	return t.Month(), t.Day(), nil
}

// District returns the override entry for name, matched case-insensitively.
func (c EnvironmentConfig) District(name string) (DistrictConfig, bool) {
	for _, d := range c.Districts {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return DistrictConfig{}, false
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

// Enabled reports whether an LLM provider is configured.
func (c LLMConfig) Enabled() bool {
	return c.Provider != ""
}

type Prompts struct {
	Symptoms  string `toml:"symptoms"`
	Narrative string `toml:"narrative"`
}

type RedisConfig struct {
	Address  string `toml:"address"`
	Username string `toml:"username"`
	Password string `toml:"-"`
	Database int    `toml:"database"`
}

type RateLimitConfig struct {
	Enable    bool        `toml:"enable"`
	StoreType string      `toml:"store_type"`
	Redis     RedisConfig `toml:"redis"`
	// Rate is allowed requests for the period.
	Rate   int      `toml:"rate"`
	Period Duration `toml:"period"`
	Burst  int      `toml:"burst"`
}

// IntervalSec returns the token emission interval in seconds.
func (c RateLimitConfig) IntervalSec() float64 {
	return c.Period.Seconds() / float64(c.Rate)
}

// BurstOffset returns max allowed burst time.
func (c RateLimitConfig) BurstOffset() float64 {
	return float64(c.Burst) * c.IntervalSec()
}

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Weather     WeatherConfig     `toml:"weather"`
	Environment EnvironmentConfig `toml:"environment"`
	LLM         LLMConfig         `toml:"llm"`
	Prompts     Prompts           `toml:"prompts"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			ReadTimeout:    Duration{time.Minute},
			WriteTimeout:   Duration{time.Minute},
		},
		Database: DatabaseConfig{URL: "memory://"},
		Weather: WeatherConfig{
			BaseURL:     "https://api.openweathermap.org",
			CountryCode: "IN",
			Timeout:     Duration{10 * time.Second},
			CacheTTL:    Duration{10 * time.Minute},
		},
		Environment: EnvironmentConfig{
			Timezone:             "Asia/Kolkata",
			DefaultDistrict:      "Lucknow",
			MonsoonPeak:          "08-16",
			DefaultDaysSinceRain: 4,
			DefaultAQI:           110,
			DefaultTemperatureC:  29,
			DefaultVectorIndex:   28,
			DefaultOutbreakAlert: "Dengue",
			UrbanDistricts: []string{
				"Lucknow", "Kanpur Nagar", "Ghaziabad", "Gautam Buddh Nagar",
				"Varanasi", "Prayagraj", "Meerut", "Agra",
			},
			Districts: defaultDistricts(),
		},
		Prompts: Prompts{
			Symptoms:  defaultSymptomsPrompt,
			Narrative: defaultNarrativePrompt,
		},
		RateLimit: RateLimitConfig{
			StoreType: RateLimitStoreMemory,
			Rate:      60,
			Period:    Duration{time.Minute},
			Burst:     10,
		},
	}
}

func defaultDistricts() []DistrictConfig {
	return []DistrictConfig{
		{Name: "Ghaziabad", AQI: 150},
		{Name: "Noida", AQI: 150},
		{Name: "Kanpur Nagar", AQI: 150},
		{Name: "Gorakhpur", OutbreakAlert: "AES"},
	}
}

// Load reads the TOML file at path on top of Default. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	// Array tables in the file replace the district defaults rather than extend them.
	cfg.Environment.Districts = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if cfg.Environment.Districts == nil {
		cfg.Environment.Districts = defaultDistricts()
	}

	return cfg, nil
}

type envOverrides struct {
	Port              string `envconfig:"PORT"`
	DatabaseURL       string `envconfig:"DATABASE_URL"`
	OpenWeatherAPIKey string `envconfig:"OPENWEATHER_API_KEY"`
	OpenWeatherURL    string `envconfig:"OPENWEATHER_BASE_URL"`
	LLMProvider       string `envconfig:"LLM_PROVIDER"`
	LLMModel          string `envconfig:"LLM_MODEL"`
	LLMAPIKey         string `envconfig:"LLM_API_KEY"`
	LLMBaseURL        string `envconfig:"LLM_BASE_URL"`
	RedisPassword     string `envconfig:"REDIS_PASSWORD"`
}

// ApplyEnv overrides file values with the process environment.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&c.Server.Port, env.Port)
	override(&c.Database.URL, env.DatabaseURL)
	override(&c.Weather.APIKey, env.OpenWeatherAPIKey)
	override(&c.Weather.BaseURL, env.OpenWeatherURL)
	override(&c.LLM.Provider, env.LLMProvider)
	override(&c.LLM.Model, env.LLMModel)
	override(&c.LLM.APIKey, env.LLMAPIKey)
	override(&c.LLM.BaseURL, env.LLMBaseURL)
	override(&c.RateLimit.Redis.Password, env.RedisPassword)
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must be set")
	}
	for _, p := range c.Server.TrustedProxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return fmt.Errorf("server.trusted_proxies: %q is neither an IP nor a CIDR", p)
		}
	}
	if c.Weather.BaseURL == "" {
		return fmt.Errorf("weather.base_url must be set")
	}
	if c.Weather.CacheTTL.Duration < 0 {
		return fmt.Errorf("weather.cache_ttl must not be negative")
	}
	if _, err := time.LoadLocation(c.Environment.Timezone); err != nil {
		return fmt.Errorf("environment.timezone: %w", err)
	}
	if _, _, err := c.Environment.MonsoonPeakDate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if c.Environment.DefaultDistrict == "" {
		return fmt.Errorf("environment.default_district must be set")
	}
	if c.LLM.Enabled() {
		if c.LLM.Model == "" {
			return fmt.Errorf("llm.model must be set when llm.provider is %q", c.LLM.Provider)
		}
		// vocabulary, then the patient's text
		if n := strings.Count(c.Prompts.Symptoms, "%s"); n != 2 {
			return fmt.Errorf("prompts.symptoms must contain exactly two %%s placeholders, found %d", n)
		}
		if !strings.Contains(c.Prompts.Narrative, "%s") {
			return fmt.Errorf("prompts.narrative must contain a %%s placeholder")
		}
	}
	return c.RateLimit.validate()
}

func (c *RateLimitConfig) validate() error {
	if !c.Enable {
		return nil
	}

	switch c.StoreType {
	case RateLimitStoreRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("rate_limit.redis.address is required")
		}
	case RateLimitStoreMemory:
	default:
		return fmt.Errorf("unknown rate limit store type: %s", c.StoreType)
	}

	if c.Rate <= 0 {
		return fmt.Errorf("rate must be greater than 0")
	}
	if c.Period.Duration <= 0 {
		return fmt.Errorf("period must be greater than 0")
	}
	if c.Burst <= 0 {
		return fmt.Errorf("burst must be greater than 0")
	}
	return nil
}
