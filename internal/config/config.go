package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/depot/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "depot.json"

	// DefaultPort is the default devtools inspector port.
	DefaultPort = 7070

	// DefaultHost is the default devtools inspector host.
	DefaultHost = "localhost"

	// DefaultDefinitions is the default store definition file.
	DefaultDefinitions = "stores.yaml"

	// DefaultSnapshotKey is the default key snapshots are saved under.
	DefaultSnapshotKey = "depot"

	// DefaultTimeout is the default persistence call timeout.
	DefaultTimeout = "5s"
)

// Persistence backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

// Config represents the complete depot.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Definitions is the path to the YAML store definition file.
	Definitions string `json:"definitions,omitempty"`

	// Persist contains snapshot persistence configuration.
	Persist PersistConfig `json:"persist,omitempty"`

	// Devtools contains inspector server configuration.
	Devtools DevtoolsConfig `json:"devtools,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PersistConfig selects and configures the snapshot backend.
type PersistConfig struct {
	// Backend is one of none, memory, file, sqlite or s3.
	Backend string `json:"backend,omitempty"`

	// Key is the key the container snapshot is saved under.
	Key string `json:"key,omitempty"`

	// Timeout bounds every backend call (e.g., "5s").
	Timeout string `json:"timeout,omitempty"`

	// Dir is the snapshot directory of the file backend.
	Dir string `json:"dir,omitempty"`

	SQLite SQLiteConfig `json:"sqlite,omitempty"`
	S3     S3Config     `json:"s3,omitempty"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file.
	Path string `json:"path,omitempty"`

	// Table is the snapshot table (default: "depot_snapshots").
	Table string `json:"table,omitempty"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`

	// PathStyle forces path-style addressing, as S3-compatible servers
	// usually need.
	PathStyle bool `json:"pathStyle,omitempty"`

	// Credentials are only read from the environment.
	AccessKeyID     string `json:"-"`
	SecretAccessKey string `json:"-"`
}

// DevtoolsConfig configures the inspector server.
type DevtoolsConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
}

// MetricsConfig configures the Prometheus plugin.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`

	// Path is the route metrics are served on by the inspector server.
	Path string `json:"path,omitempty"`
}

// TracingConfig configures the OpenTelemetry plugin.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig configures the slog handler of the CLI.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for depot.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("D040").
				WithDetail("No depot.json found in " + filepath.Dir(path)).
				WithSuggestion("Create depot.json or pass the settings as DEPOT_* environment variables")
		}
		return nil, errors.New("D040").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("D040").
			WithDetail("Failed to parse depot.json: " + err.Error()).
			WithSuggestion("Check that depot.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("D040").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("D040").Wrap(err)
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
	if c.Definitions == "" {
		c.Definitions = DefaultDefinitions
	}

	// Persist
	if c.Persist.Backend == "" {
		c.Persist.Backend = BackendNone
	}
	if c.Persist.Key == "" {
		c.Persist.Key = DefaultSnapshotKey
	}
	if c.Persist.Timeout == "" {
		c.Persist.Timeout = DefaultTimeout
	}
	if c.Persist.Dir == "" {
		c.Persist.Dir = ".depot"
	}
	if c.Persist.SQLite.Path == "" {
		c.Persist.SQLite.Path = "depot.db"
	}

	// Devtools
	if c.Devtools.Host == "" {
		c.Devtools.Host = DefaultHost
	}
	if c.Devtools.Port == 0 {
		c.Devtools.Port = DefaultPort
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "depot"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "depot"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Devtools.Port < 0 || c.Devtools.Port > 65535 {
		return errors.New("D040").
			WithDetail("devtools.port must be between 0 and 65535")
	}

	switch c.Persist.Backend {
	case BackendNone, BackendMemory, BackendFile, BackendSQLite:
	case BackendS3:
		if c.Persist.S3.Bucket == "" {
			return errors.New("D040").
				WithDetail("persist.s3.bucket is required for the s3 backend")
		}
	default:
		return errors.New("D040").
			WithDetailf("unknown persist.backend %q", c.Persist.Backend).
			WithSuggestion("Use one of none, memory, file, sqlite or s3")
	}

	if d, err := time.ParseDuration(c.Persist.Timeout); err != nil || d < 0 {
		return errors.New("D040").
			WithDetailf("persist.timeout %q is not a valid duration", c.Persist.Timeout)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("D040").WithDetailf("unknown log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("D040").WithDetailf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

// PersistTimeout returns the parsed persistence timeout.
func (c *Config) PersistTimeout() time.Duration {
	d, err := time.ParseDuration(c.Persist.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// DevtoolsAddress returns the listen address of the inspector server.
func (c *Config) DevtoolsAddress() string {
	return net.JoinHostPort(c.Devtools.Host, strconv.Itoa(c.Devtools.Port))
}

// DefinitionsPath returns the absolute path to the definition file.
func (c *Config) DefinitionsPath() string {
	return c.resolve(c.Definitions)
}

// SnapshotDir returns the absolute path to the file backend directory.
func (c *Config) SnapshotDir() string {
	return c.resolve(c.Persist.Dir)
}

// SQLitePath returns the absolute path to the SQLite database.
func (c *Config) SQLitePath() string {
	return c.resolve(c.Persist.SQLite.Path)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing depot.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("D040").
				WithDetail("No depot.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest parent holding depot.json. Without one, it returns the
// defaults rooted at the working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		cfg := New()
		cfg.configPath = filepath.Join(wd, ConfigFileName)
		return cfg, nil
	}

	return Load(root)
}
