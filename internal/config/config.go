// Package config loads cinegraph.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/cinegraph/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the project directory.
const DefaultFile = "cinegraph.yaml"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the full CLI configuration.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Store   StoreConfig   `yaml:"store"`
	Session SessionConfig `yaml:"session"`
	Policy  PolicyConfig  `yaml:"policy"`
	Search  SearchConfig  `yaml:"search"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// ModelConfig selects the Gemini model.
type ModelConfig struct {
	Name        string  `yaml:"name"`
	Temperature float32 `yaml:"temperature"`
	APIKey      string  `yaml:"api_key,omitempty"`
}

// StoreConfig selects the checkpoint backend.
type StoreConfig struct {
	Kind          string `yaml:"kind"` // memory, file, redis, sqlite
	Path          string `yaml:"path,omitempty"`
	RedisURL      string `yaml:"redis_url,omitempty"`
	Prefix        string `yaml:"prefix,omitempty"`
	TTL           string `yaml:"ttl,omitempty"`
	EncryptionKey string `yaml:"encryption_key,omitempty"`
	SaveAttempts  int    `yaml:"save_attempts"`
	RetryDelay    string `yaml:"retry_delay"`
}

// SessionConfig holds the default namespace and checkpoint id.
type SessionConfig struct {
	Namespace    string `yaml:"namespace"`
	CheckpointID string `yaml:"checkpoint_id"`
}

// PolicyConfig tunes the orchestration loop.
type PolicyConfig struct {
	EnforceResearchOrder bool `yaml:"enforce_research_order"`
	MaxSteps             int  `yaml:"max_steps"`
	FollowUp             bool `yaml:"follow_up"`
}

// SearchConfig configures web_search and scrape_website.
type SearchConfig struct {
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
	Timeout    string `yaml:"timeout"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Port string `yaml:"port"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:        "gemini-2.5-flash",
			Temperature: 0.2,
		},
		Store: StoreConfig{
			Kind:         StoreFile,
			SaveAttempts: 3,
			RetryDelay:   "200ms",
		},
		Session: SessionConfig{
			Namespace:    domain.DefaultNamespace,
			CheckpointID: domain.DefaultCheckpointID,
		},
		Policy: PolicyConfig{
			MaxSteps: 25,
			FollowUp: true,
		},
		Search: SearchConfig{
			BaseURL:    "https://html.duckduckgo.com/html/?q=",
			MaxResults: 5,
			Timeout:    "30s",
		},
		HTTP: HTTPConfig{
			Port: "8080",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDir loads DefaultFile from dir.
func LoadDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, DefaultFile))
}

// Save writes the configuration as YAML. The API key is never written.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *c
	out.Model.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	// GEMINI_API_KEY wins over GOOGLE_API_KEY, as in the genai SDK.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
	if kind := os.Getenv("CINEGRAPH_STORE"); kind != "" {
		c.Store.Kind = kind
	}
	if url := os.Getenv("CINEGRAPH_REDIS_URL"); url != "" {
		c.Store.RedisURL = url
		if os.Getenv("CINEGRAPH_STORE") == "" {
			c.Store.Kind = StoreRedis
		}
	}
	if key := os.Getenv("CINEGRAPH_ENCRYPTION_KEY"); key != "" {
		c.Store.EncryptionKey = key
	}
}

// Validate checks the values that cannot be defaulted later.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreSQLite:
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return errors.New("config: store.redis_url is required for the redis store")
		}
	default:
		return fmt.Errorf("config: unknown store.kind %q", c.Store.Kind)
	}
	if c.Policy.MaxSteps <= 0 {
		return fmt.Errorf("config: policy.max_steps must be positive, got %d", c.Policy.MaxSteps)
	}
	if c.Store.SaveAttempts <= 0 {
		return fmt.Errorf("config: store.save_attempts must be positive, got %d", c.Store.SaveAttempts)
	}
	if _, err := c.SaveRetryDelay(); err != nil {
		return err
	}
	if _, err := c.StoreTTL(); err != nil {
		return err
	}
	if _, err := c.SearchTimeout(); err != nil {
		return err
	}
	return nil
}

// StoreTTL parses store.ttl. Zero means no expiry.
func (c *Config) StoreTTL() (time.Duration, error) {
	return parseDuration("store.ttl", c.Store.TTL)
}

// SaveRetryDelay parses store.retry_delay.
func (c *Config) SaveRetryDelay() (time.Duration, error) {
	return parseDuration("store.retry_delay", c.Store.RetryDelay)
}

// SearchTimeout parses search.timeout.
func (c *Config) SearchTimeout() (time.Duration, error) {
	return parseDuration("search.timeout", c.Search.Timeout)
}

// SessionFor returns a session config for threadID with the configured defaults.
// An empty threadID gets a fresh random id.
func (c *Config) SessionFor(threadID string) domain.SessionConfig {
	cfg := domain.NewSessionConfig()
	if threadID != "" {
		cfg.ThreadID = threadID
	}
	if c.Session.Namespace != "" {
		cfg.Namespace = c.Session.Namespace
	}
	if c.Session.CheckpointID != "" {
		cfg.CheckpointID = c.Session.CheckpointID
	}
	return cfg
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", field, s, err)
	}
	return d, nil
}
