// Package config provides configuration loading and management for the registry indexer.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/typings-registry/internal/telemetry"
)

// EnvPrefix is the prefix for environment variables read by the indexer
const EnvPrefix = "TYPINGS_REGISTRY"

const (
	// FormatDefinitelyTyped is a repository of `.d.ts` files laid out as <package>/<file>.d.ts
	FormatDefinitelyTyped = "definitelytyped"

	// FormatTypings is a registry repository of <source>/<name>.json records
	FormatTypings = "typings"
)

const (
	// StartFromBeginning walks the complete history when no cursor exists
	StartFromBeginning = "beginning"

	// StartFromHead records the current HEAD as cursor when no cursor exists
	StartFromHead = "head"
)

const (
	defaultPollTimeout  = 5 * time.Minute
	defaultSyncInterval = 10 * time.Minute
	defaultWorkers      = 4
	defaultPollInterval = time.Second
	defaultMaxAttempts  = 5
	defaultLease        = 5 * time.Minute

	// DefaultDefinitelyTypedPattern matches every type definition file
	DefaultDefinitelyTypedPattern = "**.d.ts"

	// DefaultTypingsPattern matches registry records under the known source directories
	DefaultTypingsPattern = "{npm,github,bower,common,shared,lib,env,global}/**.json"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Repositories []RepositoryConfig `yaml:"repositories"`
	Database     *DatabaseConfig    `yaml:"database,omitempty"`
	Queue        *QueueConfig       `yaml:"queue,omitempty"`
	Telemetry    *telemetry.Config  `yaml:"telemetry,omitempty"`
}

// RepositoryConfig defines a tracked git repository
type RepositoryConfig struct {
	// Name is the repository tag carried by every work unit
	Name string `yaml:"name"`

	// Format selects the indexer (definitelytyped or typings)
	Format string `yaml:"format"`

	// URL is the remote the local mirror is fetched from
	URL string `yaml:"url"`

	// Path is the location of the local bare mirror
	Path string `yaml:"path"`

	// PollTimeout is the maximum mirror age before a fetch is issued (e.g. "5m")
	PollTimeout string `yaml:"pollTimeout,omitempty"`

	// SyncInterval is how often the coordinator enqueues a commit walk (e.g. "10m")
	SyncInterval string `yaml:"syncInterval,omitempty"`

	// StartFrom controls the first walk when no cursor is stored (beginning or head)
	StartFrom string `yaml:"startFrom,omitempty"`

	// Pattern overrides the relevance glob for changed files
	Pattern string `yaml:"pattern,omitempty"`
}

// QueueConfig defines the job queue and worker pool settings
type QueueConfig struct {
	Workers      int    `yaml:"workers,omitempty"`
	PollInterval string `yaml:"pollInterval,omitempty"`
	MaxAttempts  int    `yaml:"maxAttempts,omitempty"`
	Lease        string `yaml:"lease,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the minimum number of idle connections kept in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from TYPINGS_REGISTRY_DATABASE_PASSWORD environment variable
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(EnvPrefix + "_DATABASE_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable", EnvPrefix,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration document
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetRepository returns the repository with the given name
func (c *Config) GetRepository(name string) (*RepositoryConfig, bool) {
	for i := range c.Repositories {
		if c.Repositories[i].Name == name {
			return &c.Repositories[i], true
		}
	}
	return nil, false
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if len(c.Repositories) == 0 {
		return fmt.Errorf("at least one repository must be configured")
	}

	names := make(map[string]bool)
	for i, repo := range c.Repositories {
		if repo.Name == "" {
			return fmt.Errorf("repository[%d]: name is required", i)
		}

		if names[repo.Name] {
			return fmt.Errorf("repository[%d]: duplicate repository name '%s'", i, repo.Name)
		}
		names[repo.Name] = true

		if err := validateRepositoryConfig(&repo, i); err != nil {
			return err
		}
	}

	if err := c.Queue.validate(); err != nil {
		return fmt.Errorf("queue: %w", err)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

// validateRepositoryConfig validates a single repository configuration
func validateRepositoryConfig(repo *RepositoryConfig, index int) error {
	prefix := fmt.Sprintf("repository[%d] (%s)", index, repo.Name)

	switch repo.Format {
	case FormatDefinitelyTyped, FormatTypings:
	case "":
		return fmt.Errorf("%s: format is required", prefix)
	default:
		return fmt.Errorf("%s: unknown format %q, must be %s or %s",
			prefix, repo.Format, FormatDefinitelyTyped, FormatTypings)
	}

	if repo.URL == "" {
		return fmt.Errorf("%s: url is required", prefix)
	}
	if repo.Path == "" {
		return fmt.Errorf("%s: path is required", prefix)
	}

	for field, value := range map[string]string{
		"pollTimeout":  repo.PollTimeout,
		"syncInterval": repo.SyncInterval,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %s must be a valid duration (e.g., '30m', '1h'): %w", prefix, field, err)
		}
	}

	switch repo.StartFrom {
	case "", StartFromBeginning, StartFromHead:
	default:
		return fmt.Errorf("%s: startFrom must be %s or %s, got %s",
			prefix, StartFromBeginning, StartFromHead, repo.StartFrom)
	}

	return nil
}

// GetPollTimeout returns the maximum mirror age before a fetch
func (r *RepositoryConfig) GetPollTimeout() time.Duration {
	return parseDurationOr(r.PollTimeout, defaultPollTimeout)
}

// GetSyncInterval returns how often a commit walk is scheduled
func (r *RepositoryConfig) GetSyncInterval() time.Duration {
	return parseDurationOr(r.SyncInterval, defaultSyncInterval)
}

// GetStartFrom returns the first-walk policy, defaulting to head
func (r *RepositoryConfig) GetStartFrom() string {
	if r.StartFrom == "" {
		return StartFromHead
	}
	return r.StartFrom
}

// GetPattern returns the relevance glob for the repository format
func (r *RepositoryConfig) GetPattern() string {
	if r.Pattern != "" {
		return r.Pattern
	}
	if r.Format == FormatTypings {
		return DefaultTypingsPattern
	}
	return DefaultDefinitelyTypedPattern
}

func (q *QueueConfig) validate() error {
	if q == nil {
		return nil
	}
	if q.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", q.Workers)
	}
	if q.MaxAttempts < 0 {
		return fmt.Errorf("maxAttempts must not be negative, got %d", q.MaxAttempts)
	}
	for field, value := range map[string]string{"pollInterval": q.PollInterval, "lease": q.Lease} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", field, err)
		}
	}
	return nil
}

// GetWorkers returns the number of concurrent workers
func (q *QueueConfig) GetWorkers() int {
	if q == nil || q.Workers == 0 {
		return defaultWorkers
	}
	return q.Workers
}

// GetPollInterval returns how long an idle worker waits before polling again
func (q *QueueConfig) GetPollInterval() time.Duration {
	if q == nil {
		return defaultPollInterval
	}
	return parseDurationOr(q.PollInterval, defaultPollInterval)
}

// GetMaxAttempts returns how many times a job is delivered before it is dropped
func (q *QueueConfig) GetMaxAttempts() int {
	if q == nil || q.MaxAttempts == 0 {
		return defaultMaxAttempts
	}
	return q.MaxAttempts
}

// GetLease returns how long a claimed job stays invisible to other workers
func (q *QueueConfig) GetLease() time.Duration {
	if q == nil {
		return defaultLease
	}
	return parseDurationOr(q.Lease, defaultLease)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
