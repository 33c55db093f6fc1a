package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		TTL          string `yaml:"ttl"`
		MaxQuestions int    `yaml:"max_questions"`
	} `yaml:"quiz"`
	Leaderboard struct {
		TTL string `yaml:"ttl"`
	} `yaml:"leaderboard"`
	LLM      LLM      `yaml:"llm"`
	Search   Search   `yaml:"search"`
	Delivery Delivery `yaml:"delivery"`
	Reports  struct {
		Dir string `yaml:"dir"`
	} `yaml:"reports"`
}

// LLM configures the text-generation collaborator.
type LLM struct {
	Provider    string  `yaml:"provider"` // openai, anthropic, gemini, agent, mock
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"`
	Retry       struct {
		MaxAttempts int     `yaml:"max_attempts"`
		InitialWait string  `yaml:"initial_wait"`
		MaxWait     string  `yaml:"max_wait"`
		Multiplier  float64 `yaml:"multiplier"`
	} `yaml:"retry"`
}

// Search configures the study-material collaborator.
type Search struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Engine  string `yaml:"engine"`
	Timeout string `yaml:"timeout"`
}

// Delivery configures the outbound-message collaborator.
type Delivery struct {
	Provider  string `yaml:"provider"` // sendgrid or log
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
	Subject   string `yaml:"subject"`
}

// Load reads YAML config from path and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, "QUIZ_LLM_PROVIDER")
	set(&c.LLM.APIKey, "QUIZ_LLM_API_KEY")
	set(&c.LLM.Model, "QUIZ_LLM_MODEL")
	set(&c.Search.APIKey, "SERPAPI_API_KEY")
	set(&c.Delivery.APIKey, "SENDGRID_API_KEY")
	set(&c.Delivery.FromEmail, "SENDGRID_FROM_EMAIL")
	set(&c.Postgres.URL, "POSTGRES_URL")
	set(&c.Redis.Addr, "REDIS_ADDR")
}

func (c *Config) applyDefaults() {
	if c.Quiz.MaxQuestions <= 0 {
		c.Quiz.MaxQuestions = 20
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "mock"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.LLM.Retry.MaxAttempts <= 0 {
		c.LLM.Retry.MaxAttempts = 3
	}
	if c.LLM.Retry.Multiplier <= 0 {
		c.LLM.Retry.Multiplier = 2
	}
	if c.Search.Engine == "" {
		c.Search.Engine = "google_scholar"
	}
	if c.Delivery.Provider == "" {
		c.Delivery.Provider = "log"
	}
	if c.Delivery.Subject == "" {
		c.Delivery.Subject = "Your quiz results"
	}
	if c.Reports.Dir == "" {
		c.Reports.Dir = "reports"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
