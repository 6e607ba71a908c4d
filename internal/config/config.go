package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const FileName = "ideavault.yml"

// Config models ideavault.yml.
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url" json:"base_url"`
		Timeout time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"api" json:"api"`
	Server struct {
		Addr       string `yaml:"addr" json:"addr"`
		CORSOrigin string `yaml:"cors_origin" json:"cors_origin"`
		JWTSecret  string `yaml:"jwt_secret" json:"-"`
	} `yaml:"server" json:"server"`
	Planner struct {
		URL      string        `yaml:"url" json:"url"`
		Model    string        `yaml:"model" json:"model"`
		TokenEnv string        `yaml:"token_env" json:"token_env"`
		Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"planner" json:"planner"`
	Assist struct {
		KeyFocusAreas  string `yaml:"key_focus_areas" json:"key_focus_areas"`
		TargetAudience string `yaml:"target_audience" json:"target_audience"`
	} `yaml:"assist" json:"assist"`
	Auth struct {
		Email    string `yaml:"email" json:"email"`
		Password string `yaml:"password" json:"-"`
	} `yaml:"auth" json:"auth"`
	Log struct {
		Level  string `yaml:"level" json:"level"`
		Format string `yaml:"format" json:"format"`
	} `yaml:"log" json:"log"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with ideavault config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("config.api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config.api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("config.api.timeout must not be negative")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if c.Planner.URL != "" {
		if _, err := url.Parse(c.Planner.URL); err != nil {
			return fmt.Errorf("config.planner.url: %w", err)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config.log.level %q is not a known level", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("config.log.format must be json or console")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, FileName)
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Missing keys keep
// their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// PlannerToken resolves the planner API token from the configured env var.
func (c *Config) PlannerToken() string {
	if c.Planner.TokenEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.Planner.TokenEnv))
}

const defaultTemplate = `api:
  base_url: http://localhost:8080
  timeout: 10s

server:
  addr: 127.0.0.1:8080
  cors_origin: http://localhost:8081
  jwt_secret: ""

planner:
  url: https://api.groq.com/openai/v1/chat/completions
  model: llama-3.3-70b-specdec
  token_env: IDEAVAULT_PLANNER_TOKEN
  timeout: 60s

assist:
  key_focus_areas: Cost-efficiency and high engagement
  target_audience: Young adults aged 18-30

auth:
  email: test@example.com
  password: password123

log:
  level: info
  format: console
`
