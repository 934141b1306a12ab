package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "config/config.json"

// Config is the full runtime configuration. Every key has a default, so an
// empty environment with no file still yields a usable local setup.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Search   SearchConfig   `mapstructure:"search"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Research ResearchConfig `mapstructure:"research"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Server   ServerConfig   `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SearchConfig struct {
	Provider   string        `mapstructure:"provider"`
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxChars  int           `mapstructure:"max_chars"`
	Transport string        `mapstructure:"transport"`
	Extractor string        `mapstructure:"extractor"`
}

type ResearchConfig struct {
	TopK         int `mapstructure:"top_k"`
	SnippetChars int `mapstructure:"snippet_chars"`
}

// LLMConfig holds one backend per tier.
type LLMConfig struct {
	Fast  ModelConfig `mapstructure:"fast"`
	Local ModelConfig `mapstructure:"local"`
	Final ModelConfig `mapstructure:"final"`
}

type ModelConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`

	// RunTimeout bounds one API-triggered run; zero means no deadline.
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout", 15*time.Second)

	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.max_chars", 5000)
	v.SetDefault("fetch.transport", "http")
	v.SetDefault("fetch.extractor", "strip")

	v.SetDefault("research.top_k", 3)
	v.SetDefault("research.snippet_chars", 800)

	v.SetDefault("llm.fast.provider", "ollama")
	v.SetDefault("llm.fast.model", "phi3:mini")
	v.SetDefault("llm.fast.api_key", "ollama")
	v.SetDefault("llm.fast.base_url", "http://localhost:11434/v1/")
	v.SetDefault("llm.fast.temperature", 0.2)
	v.SetDefault("llm.fast.timeout", 2*time.Minute)

	v.SetDefault("llm.local.provider", "ollama")
	v.SetDefault("llm.local.model", "llama3.2")
	v.SetDefault("llm.local.api_key", "ollama")
	v.SetDefault("llm.local.base_url", "http://localhost:11434/v1/")
	v.SetDefault("llm.local.temperature", 0.4)
	v.SetDefault("llm.local.timeout", 5*time.Minute)

	v.SetDefault("llm.final.provider", "openai")
	v.SetDefault("llm.final.model", "gpt-4o")
	v.SetDefault("llm.final.api_key", "")
	v.SetDefault("llm.final.base_url", "")
	v.SetDefault("llm.final.temperature", 0.0)
	v.SetDefault("llm.final.timeout", 2*time.Minute)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.run_timeout", time.Duration(0))
}

// Load reads path (JSON) when given, otherwise looks for config.json under
// ./config and the working directory and tolerates its absence. Environment
// variables prefixed GHOSTWRITER_ override file values, e.g.
// GHOSTWRITER_FETCH_MAX_CHARS=3000.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("json")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GHOSTWRITER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.final.api_key", "GHOSTWRITER_LLM_FINAL_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = providerKeyFromEnv(cfg.Search.Provider)
	}
	return &cfg, nil
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case "tavily":
		return os.Getenv("TAVILY_API_KEY")
	case "serper":
		return os.Getenv("SERPER_API_KEY")
	}
	return ""
}

// Validate rejects unknown backends and non-positive limits. Missing API keys
// are reported by the constructors that need them.
func (c *Config) Validate() error {
	switch c.Search.Provider {
	case "tavily", "serper":
	default:
		return fmt.Errorf("search.provider %q is not supported", c.Search.Provider)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be > 0")
	}
	switch c.Fetch.Transport {
	case "http", "chromedp":
	default:
		return fmt.Errorf("fetch.transport %q is not supported", c.Fetch.Transport)
	}
	switch c.Fetch.Extractor {
	case "strip", "readability":
	default:
		return fmt.Errorf("fetch.extractor %q is not supported", c.Fetch.Extractor)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if c.Fetch.MaxChars <= 0 {
		return fmt.Errorf("fetch.max_chars must be > 0")
	}
	if c.Research.TopK <= 0 {
		return fmt.Errorf("research.top_k must be > 0")
	}
	if c.Research.SnippetChars <= 0 {
		return fmt.Errorf("research.snippet_chars must be > 0")
	}
	if c.Server.RunTimeout < 0 {
		return fmt.Errorf("server.run_timeout must be >= 0")
	}
	tiers := []struct {
		name string
		cfg  ModelConfig
	}{
		{"fast", c.LLM.Fast},
		{"local", c.LLM.Local},
		{"final", c.LLM.Final},
	}
	for _, tier := range tiers {
		if strings.TrimSpace(tier.cfg.Model) == "" {
			return fmt.Errorf("llm.%s.model is required", tier.name)
		}
	}
	return nil
}
