package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/strataframe/strata/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "strata.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"
)

// Config represents the complete strata.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Site is the canonical site URL (e.g., "https://example.com").
	Site string `json:"site,omitempty"`

	// Base is the path prefix the site is served under (default: "/").
	Base string `json:"base,omitempty"`

	// TrailingSlash is "always", "never", or "ignore" (default: "ignore").
	TrailingSlash string `json:"trailingSlash,omitempty"`

	// Manifest is the path to the deployed route manifest.
	Manifest string `json:"manifest,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Server contains live server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Build contains static generation configuration.
	Build BuildConfig `json:"build,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/").
	Prefix string `json:"prefix,omitempty"`
}

// ServerConfig contains live server settings.
type ServerConfig struct {
	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Streaming enables chunked HTML output (default: true).
	Streaming bool `json:"streaming"`
}

// BuildConfig contains static generation settings.
type BuildConfig struct {
	// Output is the output directory for built files.
	Output string `json:"output,omitempty"`

	// Format is "directory" or "file" (default: "directory").
	Format string `json:"format,omitempty"`

	// Redirects controls whether redirect routes emit meta-refresh HTML
	// files (default: true).
	Redirects bool `json:"redirects"`

	// Concurrency bounds parallel page generation (default: NumCPU).
	Concurrency int `json:"concurrency,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Base:          "/",
		TrailingSlash: "ignore",
		Manifest:      "manifest.json",
		Static: StaticConfig{
			Dir:    "public",
			Prefix: "/",
		},
		Server: ServerConfig{
			Port:      DefaultPort,
			Host:      DefaultHost,
			Streaming: true,
		},
		Build: BuildConfig{
			Output:    DefaultOutput,
			Format:    "directory",
			Redirects: true,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// strata.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Defaults are
// applied first, so absent fields keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("S204").WithDetail("no %s found in %s", ConfigFileName, filepath.Dir(path))
		}
		return nil, errors.New("S205").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("S205").WithDetail("parsing %s", path).Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("S205").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("S205").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Base == "" {
		c.Base = "/"
	}
	if !strings.HasPrefix(c.Base, "/") {
		c.Base = "/" + c.Base
	}
	if c.TrailingSlash == "" {
		c.TrailingSlash = "ignore"
	}
	if c.Manifest == "" {
		c.Manifest = "manifest.json"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}
	if c.Build.Format == "" {
		c.Build.Format = "directory"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.TrailingSlash {
	case "always", "never", "ignore":
	default:
		return errors.New("S205").WithDetail("trailingSlash must be always, never, or ignore, got %q", c.TrailingSlash)
	}
	switch c.Build.Format {
	case "directory", "file":
	default:
		return errors.New("S205").WithDetail("build.format must be directory or file, got %q", c.Build.Format)
	}
	if c.Build.Concurrency < 0 {
		return errors.New("S205").WithDetail("build.concurrency must not be negative")
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// OutputPath returns the absolute build output directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Build.Output) {
		return c.Build.Output
	}
	return filepath.Join(c.Dir(), c.Build.Output)
}

// ManifestPath returns the absolute route manifest path.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Manifest) {
		return c.Manifest
	}
	return filepath.Join(c.Dir(), c.Manifest)
}

// StaticPath returns the absolute static directory, "" when unset.
func (c *Config) StaticPath() string {
	if c.Static.Dir == "" {
		return ""
	}
	if filepath.IsAbs(c.Static.Dir) {
		return c.Static.Dir
	}
	return filepath.Join(c.Dir(), c.Static.Dir)
}

// Exists reports whether a strata.json exists in the directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
