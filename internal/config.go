package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/holtvik/ansuz/internal/curator"
	"github.com/holtvik/ansuz/internal/mapgen"
	"github.com/holtvik/ansuz/internal/sources"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Project ProjectConfig     `yaml:"project"`
	Curator CuratorConfig     `yaml:"curator"`
	Maps    MapsConfig        `yaml:"maps"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Project.Validate(); err != nil {
		return err
	}
	if err := c.Curator.Validate(); err != nil {
		return err
	}
	if err := c.Maps.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ProjectConfig locates the project root and its source registry.
type ProjectConfig struct {
	Root        string `yaml:"root"`
	SourcesFile string `yaml:"sources_file"`
	// IncludeIgnored also loads sources marked ignore: true; test fixtures
	// opt in to otherwise-excluded sources this way.
	IncludeIgnored bool `yaml:"include_ignored"`
}

// Validate validates the project configuration.
func (c *ProjectConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.SourcesFile, validation.Required),
	)
}

// CuratorConfig bounds how many entities a curated selection may carry.
type CuratorConfig struct {
	MaxSkills  int `yaml:"max_skills"`
	MaxTools   int `yaml:"max_tools"`
	MaxRecords int `yaml:"max_records"`
}

// Validate validates the curator configuration.
func (c *CuratorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSkills, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.MaxTools, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.MaxRecords, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// Limits converts the configuration to curator limits.
func (c *CuratorConfig) Limits() curator.Limits {
	return curator.Limits{
		MaxSkills:  c.MaxSkills,
		MaxTools:   c.MaxTools,
		MaxRecords: c.MaxRecords,
	}
}

// MapsConfig controls map generation.
type MapsConfig struct {
	IncludeFallbackSummaries bool   `yaml:"include_fallback_summaries"`
	OutputRefSource          string `yaml:"output_ref_source"`
	Incremental              bool   `yaml:"incremental"`
}

// Validate validates the maps configuration.
func (c *MapsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutputRefSource, validation.Required),
	)
}

// Options converts the configuration to map builder options.
func (c *MapsConfig) Options() mapgen.Options {
	return mapgen.Options{
		IncludeFallbackSummaries: c.IncludeFallbackSummaries,
		OutputRefSource:          c.OutputRefSource,
		Incremental:              c.Incremental,
	}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Project: ProjectConfig{
			Root:        ".",
			SourcesFile: "sources.yaml",
		},
		Curator: CuratorConfig{
			MaxSkills:  3,
			MaxTools:   3,
			MaxRecords: 8,
		},
		Maps: MapsConfig{
			IncludeFallbackSummaries: true,
			OutputRefSource:          sources.OutputsSource,
			Incremental:              false,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
