// Package config provides configuration loading and management for solverpad.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/solverpad/solverpad/problem"
)

// Config represents the complete solverpad configuration.
type Config struct {
	Judge     JudgeConfig     `yaml:"judge"`
	AI        AIConfig        `yaml:"ai"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Fetch     FetchConfig     `yaml:"fetch"`
}

// JudgeConfig configures the remote judge account.
type JudgeConfig struct {
	// Platform is the judge to target: codeforces, atcoder or cses.
	Platform string `yaml:"platform"`
	// Handle is the account whose activity is synced.
	Handle string `yaml:"handle"`
	// SolvedTTL is how long the cached solved set stays fresh.
	SolvedTTL time.Duration `yaml:"solved_ttl"`
}

// AIConfig configures the chat backend.
type AIConfig struct {
	// Provider selects the wire shape: openai, anthropic or custom.
	Provider string `yaml:"provider"`
	// Model is the model identifier sent to the provider.
	Model string `yaml:"model"`
	// BaseURL overrides the provider's default endpoint.
	BaseURL string `yaml:"base_url"`
	// Temperature controls randomness (0.0-1.0). Unset = provider default;
	// an explicit 0 is deterministic and distinct from unset.
	Temperature *float64 `yaml:"temperature,omitempty"`
	// MaxTokens limits response length. 0 = provider default.
	MaxTokens int `yaml:"max_tokens"`
}

// WorkspaceConfig configures where problem directories live.
type WorkspaceConfig struct {
	// Root is the directory holding {contestId}/{index}/ problem dirs.
	// Empty = current directory.
	Root string `yaml:"root"`
}

// FetchConfig configures the acquisition pipeline.
type FetchConfig struct {
	// CLITool is the external parser command (empty disables the strategy).
	CLITool string `yaml:"cli_tool"`
	// Timeout bounds each strategy attempt.
	Timeout time.Duration `yaml:"timeout"`
}

// Secrets are never written to YAML; they come from the environment
// (optionally via a .env file the loader reads).
const (
	EnvJudgeKey    = "CF_API_KEY"
	EnvJudgeSecret = "CF_API_SECRET"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Judge: JudgeConfig{
			Platform:  string(problem.PlatformCodeforces),
			SolvedTTL: time.Hour,
		},
		AI: AIConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Fetch: FetchConfig{
			CLITool: "cf",
			Timeout: 10 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Judge.Platform {
	case "codeforces", "atcoder", "cses":
	default:
		return fmt.Errorf("judge.platform must be codeforces, atcoder or cses, got %q", c.Judge.Platform)
	}
	if c.AI.Provider == "" {
		return fmt.Errorf("ai.provider is required")
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}
	if c.AI.Temperature != nil && (*c.AI.Temperature < 0 || *c.AI.Temperature > 1) {
		return fmt.Errorf("ai.temperature must be between 0 and 1")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	return nil
}

// Platform returns the configured judge platform.
func (c *Config) Platform() problem.Platform {
	return problem.ParsePlatform(c.Judge.Platform)
}

// JudgeCredentials reads the optional API key pair from the environment.
func (c *Config) JudgeCredentials() (key, secret string) {
	return os.Getenv(EnvJudgeKey), os.Getenv(EnvJudgeSecret)
}

// TemperaturePtr returns the configured temperature, nil when unset.
func (c *Config) TemperaturePtr() *float64 {
	return c.AI.Temperature
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Judge.Platform != "" {
		c.Judge.Platform = other.Judge.Platform
	}
	if other.Judge.Handle != "" {
		c.Judge.Handle = other.Judge.Handle
	}
	if other.Judge.SolvedTTL != 0 {
		c.Judge.SolvedTTL = other.Judge.SolvedTTL
	}

	if other.AI.Provider != "" {
		c.AI.Provider = other.AI.Provider
	}
	if other.AI.Model != "" {
		c.AI.Model = other.AI.Model
	}
	if other.AI.BaseURL != "" {
		c.AI.BaseURL = other.AI.BaseURL
	}
	if other.AI.Temperature != nil {
		c.AI.Temperature = other.AI.Temperature
	}
	if other.AI.MaxTokens != 0 {
		c.AI.MaxTokens = other.AI.MaxTokens
	}

	if other.Workspace.Root != "" {
		c.Workspace.Root = other.Workspace.Root
	}

	if other.Fetch.CLITool != "" {
		c.Fetch.CLITool = other.Fetch.CLITool
	}
	if other.Fetch.Timeout != 0 {
		c.Fetch.Timeout = other.Fetch.Timeout
	}
}
