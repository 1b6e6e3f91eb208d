package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read once at process start.
type Config struct {
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAITokenParam string        `env:"OPENAI_TOKEN_PARAM"`
	OpenAIModel      string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAITimeout    time.Duration `env:"OPENAI_TIMEOUT"`

	GenerationLogTable string `env:"GENERATION_LOG_TABLE"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DevServerAddr    string   `env:"DEVSERVER_ADDR" envDefault:":8080"`
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
}

// Load reads .env files when present, then the process environment.
func Load(dotenvFiles ...string) (Config, error) {
	loadDotenv(dotenvFiles...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" && strings.TrimSpace(c.OpenAITokenParam) == "" {
		return errors.New("config: OPENAI_API_KEY or OPENAI_TOKEN_PARAM is required")
	}
	if c.OpenAITimeout < 0 {
		return errors.New("config: OPENAI_TIMEOUT must not be negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// UsesParamStore reports whether the API key must be resolved from SSM.
func (c Config) UsesParamStore() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) == ""
}

// NewLogger returns a JSON slog logger at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

// loadDotenv ignores missing files; existing environment variables win.
func loadDotenv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("failed to load dotenv file", "file", f, "err", err)
		}
	}
}
