package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Scale   ScaleConfig   `json:"scale"`
	Mask    MaskConfig    `json:"mask"`
	Session SessionConfig `json:"session"`
	Model   ModelConfig   `json:"model"`
	Source  SourceConfig  `json:"source"`
}

// ScaleConfig holds the fixed target dimensions the scale profile derives
// from
type ScaleConfig struct {
	UploadTargetDim  int `json:"upload_target_dim"`
	PreviewTargetDim int `json:"preview_target_dim"`
	PreviewMaxDim    int `json:"preview_max_dim"`
}

// MaskConfig holds configuration for contour extraction and path building
type MaskConfig struct {
	// Threshold splits mask values into foreground and background. It must
	// match the model collaborator's output convention; the default 0.0
	// assumes raw logits.
	Threshold         float64 `json:"threshold"`
	SimplifyTolerance float64 `json:"simplify_tolerance"`
	FillRule          string  `json:"fill_rule"`
}

// SessionConfig holds configuration for refinement sessions
type SessionConfig struct {
	HistorySize int `json:"history_size"`
}

// ModelConfig holds configuration for the segmentation server client
type ModelConfig struct {
	ServerURL    string `json:"server_url"`
	ImageFormat  string `json:"image_format"`
	ImageQuality int    `json:"image_quality"`
}

// SourceConfig holds configuration for image file access
type SourceConfig struct {
	DefaultQuality   int      `json:"default_quality"`
	SupportedFormats []string `json:"supported_formats"`
	MinImageSize     int      `json:"min_image_size"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Scale: ScaleConfig{
			UploadTargetDim:  1024,
			PreviewTargetDim: 800,
			PreviewMaxDim:    1333,
		},
		Mask: MaskConfig{
			Threshold:         0.0,
			SimplifyTolerance: 0,
			FillRule:          "nonzero",
		},
		Session: SessionConfig{
			HistorySize: 64,
		},
		Model: ModelConfig{
			ServerURL:    "http://localhost:8080",
			ImageFormat:  "jpg",
			ImageQuality: 90,
		},
		Source: SourceConfig{
			DefaultQuality:   85,
			SupportedFormats: []string{"jpg", "jpeg", "png", "webp"},
			MinImageSize:     16,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Scale.UploadTargetDim < 1 {
		return fmt.Errorf("scale.upload_target_dim must be positive")
	}

	if c.Scale.PreviewTargetDim < 1 {
		return fmt.Errorf("scale.preview_target_dim must be positive")
	}

	if c.Scale.PreviewMaxDim < c.Scale.PreviewTargetDim {
		return fmt.Errorf("scale.preview_max_dim must be at least scale.preview_target_dim")
	}

	if c.Mask.SimplifyTolerance < 0 {
		return fmt.Errorf("mask.simplify_tolerance must not be negative")
	}

	if c.Mask.FillRule != "nonzero" && c.Mask.FillRule != "evenodd" {
		return fmt.Errorf("mask.fill_rule must be nonzero or evenodd")
	}

	if c.Session.HistorySize < 1 {
		return fmt.Errorf("session.history_size must be positive")
	}

	if c.Model.ImageQuality < 1 || c.Model.ImageQuality > 100 {
		return fmt.Errorf("model.image_quality must be between 1 and 100")
	}

	if c.Source.DefaultQuality < 1 || c.Source.DefaultQuality > 100 {
		return fmt.Errorf("source.default_quality must be between 1 and 100")
	}

	if c.Source.MinImageSize < 1 {
		return fmt.Errorf("source.min_image_size must be positive")
	}

	if len(c.Source.SupportedFormats) == 0 {
		return fmt.Errorf("source.supported_formats cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "maskvec", "config.json")
}
