package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultModel        = "gemini-2.0-flash"
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultProvider     = "gemini"
	defaultHost         = "0.0.0.0"
	defaultPort         = "8000"
	defaultEnv          = "dev"
	defaultModelTimeout = 60 * time.Second
	defaultMaxBodyBytes = 20 << 20
	defaultMaxPixels    = 40_000_000
)

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// Config is built once at startup and handed to the components that need it.
type Config struct {
	Host string
	Port string
	Env  string

	// ModelProvider selects the remote model: "gemini" or "openai".
	ModelProvider string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	ModelTimeout  time.Duration

	// StrictParse makes an unparsable model response an error instead of an empty result.
	StrictParse  bool
	StartupCheck bool

	AllowedOrigins []string
	MaxBodyBytes   int64
	MaxImagePixels int
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// Model returns the model name of the selected provider.
func (c *Config) Model() string {
	if c.ModelProvider == "openai" {
		return c.OpenAIModel
	}
	return c.GeminiModel
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load reads .env (if present) and the process environment. Real environment
// variables win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Host:          getEnv("SERVER_URL", defaultHost),
		Port:          getEnv("PORT", defaultPort),
		Env:           getEnv("ENV", defaultEnv),
		ModelProvider: strings.ToLower(getEnv("MODEL_PROVIDER", defaultProvider)),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", defaultModel),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", defaultOpenAIModel),
	}
	switch cfg.ModelProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			errs = append(errs, errors.New("missing required env GEMINI_API_KEY"))
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("missing required env OPENAI_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("bad MODEL_PROVIDER %q; use 'gemini' or 'openai'", cfg.ModelProvider))
	}
	if p, err := strconv.Atoi(cfg.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("bad PORT %q", cfg.Port))
	}

	timeout, err := time.ParseDuration(getEnv("MODEL_TIMEOUT", defaultModelTimeout.String()))
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("bad MODEL_TIMEOUT: %w", err))
	case timeout <= 0:
		errs = append(errs, errors.New("MODEL_TIMEOUT must be positive"))
	}
	cfg.ModelTimeout = timeout

	if cfg.StrictParse, err = parseBool("STRICT_PARSE", true); err != nil {
		errs = append(errs, err)
	}
	if cfg.StartupCheck, err = parseBool("STARTUP_CHECK", true); err != nil {
		errs = append(errs, err)
	}

	cfg.AllowedOrigins = defaultOrigins
	if raw := getEnv("ALLOWED_ORIGINS", ""); raw != "" {
		cfg.AllowedOrigins = splitList(raw)
	}

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", strconv.Itoa(defaultMaxBodyBytes)), 10, 64)
	if err != nil || maxBody <= 0 {
		errs = append(errs, fmt.Errorf("bad MAX_BODY_BYTES %q", os.Getenv("MAX_BODY_BYTES")))
	}
	cfg.MaxBodyBytes = maxBody

	maxPixels, err := strconv.Atoi(getEnv("MAX_IMAGE_PIXELS", strconv.Itoa(defaultMaxPixels)))
	if err != nil || maxPixels <= 0 {
		errs = append(errs, fmt.Errorf("bad MAX_IMAGE_PIXELS %q", os.Getenv("MAX_IMAGE_PIXELS")))
	}
	cfg.MaxImagePixels = maxPixels

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBool(k string, def bool) (bool, error) {
	raw := getEnv(k, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("bad %s %q", k, raw)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
