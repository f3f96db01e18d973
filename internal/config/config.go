package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Docs    DocsConfig    `yaml:"docs" mapstructure:"docs"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LLMConfig holds extraction backend credentials and tuning. The backend is
// chosen by which key is present: OpenAI first, then Anthropic.
type LLMConfig struct {
	OpenAIKey      string  `yaml:"openai_api_key" mapstructure:"openai_api_key"`
	OpenAIModel    string  `yaml:"openai_model" mapstructure:"openai_model"`
	OpenAIBaseURL  string  `yaml:"openai_base_url" mapstructure:"openai_base_url"`
	AnthropicKey   string  `yaml:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	AnthropicModel string  `yaml:"anthropic_model" mapstructure:"anthropic_model"`
	MaxDocChars    int     `yaml:"max_doc_chars" mapstructure:"max_doc_chars"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	PerField       bool    `yaml:"per_field" mapstructure:"per_field"`
}

// DocsConfig configures document reading.
type DocsConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// ScoringConfig points at the optional scoring weights file and carries the
// similarity thresholds.
type ScoringConfig struct {
	WeightsFile       string  `yaml:"weights_file" mapstructure:"weights_file"`
	DefaultWeight     float64 `yaml:"default_weight" mapstructure:"default_weight"`
	DatePartialCredit float64 `yaml:"date_partial_credit" mapstructure:"date_partial_credit"`
	TextFloor         float64 `yaml:"text_floor" mapstructure:"text_floor"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the configuration for the given command mode. Modes keep
// their requirements separate so a scoring run does not demand a database.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkScoring := func() {
		if c.Scoring.DatePartialCredit < 0 || c.Scoring.DatePartialCredit > 1 {
			problems = append(problems, "scoring.date_partial_credit must be between 0 and 1")
		}
		if c.Scoring.TextFloor < 0 || c.Scoring.TextFloor > 1 {
			problems = append(problems, "scoring.text_floor must be between 0 and 1")
		}
		if c.Scoring.DefaultWeight <= 0 {
			problems = append(problems, "scoring.default_weight must be > 0")
		}
	}

	switch mode {
	case "process", "eval", "score":
		checkScoring()
	case "serve", "documents":
		checkScoring()
		if c.Server.Port <= 0 && mode == "serve" {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SHIPDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "shipdocs.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("llm.openai_model", "gpt-3.5-turbo")
	v.SetDefault("llm.anthropic_model", "claude-3-haiku-20240307")
	v.SetDefault("llm.max_doc_chars", 12000)
	v.SetDefault("llm.requests_per_sec", 2)
	v.SetDefault("docs.pdftotext_path", "pdftotext")
	v.SetDefault("scoring.default_weight", 0.5)
	v.SetDefault("scoring.date_partial_credit", 0.7)
	v.SetDefault("scoring.text_floor", 0.3)

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
