package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantmind-br/archivepuller/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Origin   OriginConfig   `mapstructure:"origin" yaml:"origin"`
	Staging  StagingConfig  `mapstructure:"staging" yaml:"staging"`
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Commit   CommitConfig   `mapstructure:"commit" yaml:"commit"`
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
	Lock     LockConfig     `mapstructure:"lock" yaml:"lock"`
	Batch    BatchConfig    `mapstructure:"batch" yaml:"batch"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// OriginConfig locates the local origin repositories
type OriginConfig struct {
	ParentDir    string `mapstructure:"parent_dir" yaml:"parent_dir"`
	CacheDirName string `mapstructure:"cache_dir_name" yaml:"cache_dir_name"`
}

// StagingConfig contains working copy settings
type StagingConfig struct {
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`
	Prune   bool   `mapstructure:"prune" yaml:"prune"`
}

// DownloadConfig contains HTTP download settings
type DownloadConfig struct {
	Timeout             time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent           string        `mapstructure:"user_agent" yaml:"user_agent"`
	GoogleDriveEndpoint string        `mapstructure:"googledrive_endpoint" yaml:"googledrive_endpoint"`
}

// CommitConfig is the identity used for import commits
type CommitConfig struct {
	UserName  string `mapstructure:"user_name" yaml:"user_name"`
	UserEmail string `mapstructure:"user_email" yaml:"user_email"`
	Message   string `mapstructure:"message" yaml:"message"`
}

// RegistryConfig contains origin registry settings
type RegistryConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// LockConfig contains per-origin locking settings
type LockConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
}

// BatchConfig contains manifest processing settings
type BatchConfig struct {
	Workers         int  `mapstructure:"workers" yaml:"workers"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Origin.ParentDir) == "" {
		c.Origin.ParentDir = DefaultParentDir
	}
	if c.Origin.CacheDirName == "" {
		c.Origin.CacheDirName = DefaultCacheDirName
	}
	if strings.ContainsRune(c.Origin.CacheDirName, filepath.Separator) || c.Origin.CacheDirName == ".." {
		return fmt.Errorf("invalid origin.cache_dir_name %q: must be a single path segment", c.Origin.CacheDirName)
	}
	c.Origin.ParentDir = utils.ExpandPath(c.Origin.ParentDir)
	c.Staging.TempDir = utils.ExpandPath(c.Staging.TempDir)
	c.Registry.Directory = utils.ExpandPath(c.Registry.Directory)

	if c.Download.Timeout < 0 {
		c.Download.Timeout = DefaultDownloadTimeout
	}
	if c.Download.GoogleDriveEndpoint == "" {
		c.Download.GoogleDriveEndpoint = DefaultGoogleDriveEndpoint
	}

	if c.Commit.UserName == "" {
		c.Commit.UserName = DefaultCommitUserName
	}
	if c.Commit.UserEmail == "" {
		c.Commit.UserEmail = DefaultCommitUserEmail
	}
	if c.Commit.Message == "" {
		c.Commit.Message = DefaultCommitMessage
	}

	if c.Lock.InitialDelay < time.Millisecond {
		c.Lock.InitialDelay = DefaultLockInitialDelay
	}
	if c.Lock.MaxDelay < c.Lock.InitialDelay {
		c.Lock.MaxDelay = max(DefaultLockMaxDelay, c.Lock.InitialDelay)
	}

	if c.Batch.Workers < 1 {
		c.Batch.Workers = DefaultBatchWorkers
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format != utils.FormatPretty && c.Logging.Format != utils.FormatJSON {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}

// CacheRoot returns the directory holding every origin
func (c *Config) CacheRoot() string {
	return filepath.Join(utils.ExpandPath(c.Origin.ParentDir), c.Origin.CacheDirName)
}
