package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/depot/internal/errors"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "DEPOT_"

// envOverlay lists the settings that environment variables can override.
type envOverlay struct {
	Definitions string `env:"DEFINITIONS"`

	Backend   string `env:"PERSIST_BACKEND"`
	Key       string `env:"PERSIST_KEY"`
	Timeout   string `env:"PERSIST_TIMEOUT"`
	Dir       string `env:"PERSIST_DIR"`
	SQLite    string `env:"PERSIST_SQLITE_PATH"`
	Table     string `env:"PERSIST_SQLITE_TABLE"`
	Bucket    string `env:"PERSIST_S3_BUCKET"`
	Prefix    string `env:"PERSIST_S3_PREFIX"`
	Region    string `env:"PERSIST_S3_REGION"`
	Endpoint  string `env:"PERSIST_S3_ENDPOINT"`
	PathStyle bool   `env:"PERSIST_S3_PATH_STYLE"`
	AccessKey string `env:"PERSIST_S3_ACCESS_KEY_ID"`
	SecretKey string `env:"PERSIST_S3_SECRET_ACCESS_KEY"`

	DevtoolsEnabled bool   `env:"DEVTOOLS_ENABLED"`
	DevtoolsHost    string `env:"DEVTOOLS_HOST"`
	DevtoolsPort    int    `env:"DEVTOOLS_PORT"`

	MetricsEnabled bool `env:"METRICS_ENABLED"`
	TracingEnabled bool `env:"TRACING_ENABLED"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`
}

// ApplyEnv overrides settings with the DEPOT_* environment variables that
// are set.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(env.Options{Prefix: EnvPrefix})
}

func (c *Config) applyEnv(opts env.Options) error {
	o := envOverlay{
		Definitions:     c.Definitions,
		Backend:         c.Persist.Backend,
		Key:             c.Persist.Key,
		Timeout:         c.Persist.Timeout,
		Dir:             c.Persist.Dir,
		SQLite:          c.Persist.SQLite.Path,
		Table:           c.Persist.SQLite.Table,
		Bucket:          c.Persist.S3.Bucket,
		Prefix:          c.Persist.S3.Prefix,
		Region:          c.Persist.S3.Region,
		Endpoint:        c.Persist.S3.Endpoint,
		PathStyle:       c.Persist.S3.PathStyle,
		AccessKey:       c.Persist.S3.AccessKeyID,
		SecretKey:       c.Persist.S3.SecretAccessKey,
		DevtoolsEnabled: c.Devtools.Enabled,
		DevtoolsHost:    c.Devtools.Host,
		DevtoolsPort:    c.Devtools.Port,
		MetricsEnabled:  c.Metrics.Enabled,
		TracingEnabled:  c.Tracing.Enabled,
		LogLevel:        c.Log.Level,
		LogFormat:       c.Log.Format,
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return errors.New("D040").WithDetail("parse env").Wrap(err)
	}

	c.Definitions = o.Definitions
	c.Persist.Backend = o.Backend
	c.Persist.Key = o.Key
	c.Persist.Timeout = o.Timeout
	c.Persist.Dir = o.Dir
	c.Persist.SQLite.Path = o.SQLite
	c.Persist.SQLite.Table = o.Table
	c.Persist.S3.Bucket = o.Bucket
	c.Persist.S3.Prefix = o.Prefix
	c.Persist.S3.Region = o.Region
	c.Persist.S3.Endpoint = o.Endpoint
	c.Persist.S3.PathStyle = o.PathStyle
	c.Persist.S3.AccessKeyID = o.AccessKey
	c.Persist.S3.SecretAccessKey = o.SecretKey
	c.Devtools.Enabled = o.DevtoolsEnabled
	c.Devtools.Host = o.DevtoolsHost
	c.Devtools.Port = o.DevtoolsPort
	c.Metrics.Enabled = o.MetricsEnabled
	c.Tracing.Enabled = o.TracingEnabled
	c.Log.Level = o.LogLevel
	c.Log.Format = o.LogFormat

	c.applyDefaults()
	return nil
}
