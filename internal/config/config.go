package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MockKey is substituted for missing provider keys when mock mode is on.
const MockKey = "mock"

// PlaceholderMicroBiltKey is the sample key shipped in example env files. It
// leaves the background check unconfigured.
const PlaceholderMicroBiltKey = "microbilt_api"

// Config holds the full application configuration.
type Config struct {
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Mock      MockConfig      `yaml:"mock" mapstructure:"mock"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ProvidersConfig holds the verification provider settings.
type ProvidersConfig struct {
	UseMock     bool           `yaml:"use_mock" mapstructure:"use_mock"`
	MockURL     string         `yaml:"mock_url" mapstructure:"mock_url"`
	TimeoutSecs int            `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CountryCode string         `yaml:"country_code" mapstructure:"country_code"`
	Numverify   ProviderConfig `yaml:"numverify" mapstructure:"numverify"`
	NeverBounce ProviderConfig `yaml:"neverbounce" mapstructure:"neverbounce"`
	MicroBilt   ProviderConfig `yaml:"microbilt" mapstructure:"microbilt"`
}

// ProviderConfig holds credentials and endpoint for a single provider.
type ProviderConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentLeads int    `yaml:"max_concurrent_leads" mapstructure:"max_concurrent_leads"`
	Policy             string `yaml:"policy" mapstructure:"policy"`
}

// ScoringConfig configures the optional numeric risk score.
type ScoringConfig struct {
	Enabled bool           `yaml:"enabled" mapstructure:"enabled"`
	Weights ScoringWeights `yaml:"weights" mapstructure:"weights"`
}

// ScoringWeights holds the contribution of each risk signal to the score.
type ScoringWeights struct {
	InvalidPhone     float64 `yaml:"invalid_phone" mapstructure:"invalid_phone"`
	InvalidEmail     float64 `yaml:"invalid_email" mapstructure:"invalid_email"`
	CriminalRecords  float64 `yaml:"criminal_records" mapstructure:"criminal_records"`
	Bankruptcies     float64 `yaml:"bankruptcies" mapstructure:"bankruptcies"`
	BackgroundFailed float64 `yaml:"background_failed" mapstructure:"background_failed"`
	ProviderFactor   float64 `yaml:"provider_factor" mapstructure:"provider_factor"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MockConfig configures the mock provider server.
type MockConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Endpoints is the resolved set of provider base URLs and keys.
type Endpoints struct {
	Numverify   ProviderConfig
	NeverBounce ProviderConfig
	MicroBilt   ProviderConfig
}

// ProviderEndpoints resolves the provider endpoints, routing every provider
// to the mock server when mock mode is enabled.
func (c *Config) ProviderEndpoints() Endpoints {
	p := c.Providers
	placeholder := p.MicroBilt.Key == PlaceholderMicroBiltKey
	if placeholder {
		p.MicroBilt.Key = ""
	}
	if !p.UseMock {
		return Endpoints{Numverify: p.Numverify, NeverBounce: p.NeverBounce, MicroBilt: p.MicroBilt}
	}

	base := strings.TrimRight(p.MockURL, "/")
	ep := Endpoints{
		Numverify:   ProviderConfig{Key: orMock(p.Numverify.Key), BaseURL: base + "/numverify"},
		NeverBounce: ProviderConfig{Key: orMock(p.NeverBounce.Key), BaseURL: base + "/neverbounce"},
		MicroBilt:   ProviderConfig{Key: orMock(p.MicroBilt.Key), BaseURL: base + "/microbilt"},
	}
	if placeholder {
		ep.MicroBilt.Key = ""
	}
	return ep
}

func orMock(key string) string {
	if key == "" {
		return MockKey
	}
	return key
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Batch.Policy {
	case "abort", "skip":
	default:
		return eris.Errorf("config: invalid batch policy %q (want abort or skip)", c.Batch.Policy)
	}
	if c.Batch.MaxConcurrentLeads < 1 {
		return eris.Errorf("config: batch.max_concurrent_leads must be positive, got %d", c.Batch.MaxConcurrentLeads)
	}
	if c.Providers.TimeoutSecs < 1 {
		return eris.Errorf("config: providers.timeout_secs must be positive, got %d", c.Providers.TimeoutSecs)
	}
	return nil
}

// Redacted returns a copy with secrets masked, suitable for printing.
func (c *Config) Redacted() Config {
	out := *c
	out.Providers.Numverify.Key = mask(out.Providers.Numverify.Key)
	out.Providers.NeverBounce.Key = mask(out.Providers.NeverBounce.Key)
	out.Providers.MicroBilt.Key = mask(out.Providers.MicroBilt.Key)
	out.Notion.Token = mask(out.Notion.Token)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADVERIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy variable names used by existing deployments.
	for key, legacy := range map[string]string{
		"providers.numverify.key":   "NUMVERIFY_API_KEY",
		"providers.neverbounce.key": "NEVERBOUNCE_API_KEY",
		"providers.microbilt.key":   "MICROBILT_API_KEY",
		"providers.use_mock":        "USE_MOCK_API",
	} {
		envKey := "LEADVERIFY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("providers.use_mock", false)
	v.SetDefault("providers.mock_url", "http://localhost:5000")
	v.SetDefault("providers.timeout_secs", 30)
	v.SetDefault("providers.country_code", "US")
	v.SetDefault("providers.numverify.key", "")
	v.SetDefault("providers.numverify.base_url", "http://apilayer.net")
	v.SetDefault("providers.neverbounce.key", "")
	v.SetDefault("providers.neverbounce.base_url", "https://api.neverbounce.com")
	v.SetDefault("providers.microbilt.key", "")
	v.SetDefault("providers.microbilt.base_url", "https://api.microbilt.com")
	v.SetDefault("batch.max_concurrent_leads", 5)
	v.SetDefault("batch.policy", "abort")
	v.SetDefault("scoring.enabled", false)
	v.SetDefault("scoring.weights.invalid_phone", 0.30)
	v.SetDefault("scoring.weights.invalid_email", 0.25)
	v.SetDefault("scoring.weights.criminal_records", 0.30)
	v.SetDefault("scoring.weights.bankruptcies", 0.15)
	v.SetDefault("scoring.weights.background_failed", 0.10)
	v.SetDefault("scoring.weights.provider_factor", 0.05)
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.lead_db", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("mock.port", 5000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
