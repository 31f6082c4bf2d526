// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Draft kinds accepted by the draft command
var draftKinds = map[string]bool{
	"resume":          true,
	"cover_letter":    true,
	"question_answer": true,
}

// Config represents the draft command configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Job target
	Kind        string `json:"kind,omitempty"`         // resume, cover_letter or question_answer
	RoleType    string `json:"role_type,omitempty"`    // e.g. software_engineer
	Company     string `json:"company,omitempty"`      // Company name
	Title       string `json:"title,omitempty"`        // Job title
	Job         string `json:"job,omitempty"`          // Path to job posting text file
	JobURL      string `json:"job_url,omitempty"`      // URL to fetch job posting from
	Question    string `json:"question,omitempty"`     // Application question (question_answer only)
	Additional  string `json:"additional,omitempty"`   // Extra instructions appended to the prompt
	Output      string `json:"output,omitempty"`       // Write the draft here instead of stdout
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Behavior
	Provider    string  `json:"provider,omitempty"`    // gemini or anthropic
	APIKey      string  `json:"api_key,omitempty"`     // Provider API key
	Model       string  `json:"model,omitempty"`       // Model override
	MaxTokens   int     `json:"max_tokens,omitempty"`  // Completion token cap
	Temperature float64 `json:"temperature,omitempty"` // Sampling temperature
	UseBrowser  bool    `json:"use_browser,omitempty"` // Use headless browser for SPA job sites
	Verbose     bool    `json:"verbose,omitempty"`     // Print draft details and debug logs
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the CLI after flags are merged.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	if c.Kind != "" && !draftKinds[c.Kind] {
		return fmt.Errorf("config error: unknown kind %q", c.Kind)
	}
	if c.Kind == "question_answer" && c.Question == "" {
		return fmt.Errorf("config error: 'question' is required for question_answer drafts")
	}

	if c.MaxTokens < 0 {
		return fmt.Errorf("config error: 'max_tokens' must be non-negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}

	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Kind == "" {
		result.Kind = defaults.Kind
	}
	if result.RoleType == "" {
		result.RoleType = defaults.RoleType
	}
	if result.Company == "" {
		result.Company = defaults.Company
	}
	if result.Title == "" {
		result.Title = defaults.Title
	}
	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.Question == "" {
		result.Question = defaults.Question
	}
	if result.Additional == "" {
		result.Additional = defaults.Additional
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}

	if result.MaxTokens == 0 {
		result.MaxTokens = defaults.MaxTokens
	}
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
