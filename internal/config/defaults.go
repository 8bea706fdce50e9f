package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/archivepuller/internal/utils"
)

// Default values
const (
	// Origin defaults
	DefaultParentDir    = "~"
	DefaultCacheDirName = ".archivepuller"

	// Download defaults; a zero timeout never expires
	DefaultDownloadTimeout     = time.Duration(0)
	DefaultGoogleDriveEndpoint = "https://docs.google.com/uc"

	// Commit defaults
	DefaultCommitUserName  = "archivepuller"
	DefaultCommitUserEmail = "archivepuller@archivepuller.local"
	DefaultCommitMessage   = "archivepuller: import archive"

	// Registry defaults
	DefaultRegistryEnabled = true

	// Lock defaults
	DefaultLockEnabled      = true
	DefaultLockInitialDelay = 200 * time.Millisecond
	DefaultLockMaxDelay     = 5 * time.Second

	// Batch defaults
	DefaultBatchWorkers = 2

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultCacheDirName
	}
	return filepath.Join(home, DefaultCacheDirName)
}

// RegistryDir returns the default registry directory path
func RegistryDir() string {
	return filepath.Join(ConfigDir(), "registry")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Origin: OriginConfig{
			ParentDir:    utils.ExpandPath(DefaultParentDir),
			CacheDirName: DefaultCacheDirName,
		},
		Staging: StagingConfig{
			TempDir: "",
			Prune:   false,
		},
		Download: DownloadConfig{
			Timeout:             DefaultDownloadTimeout,
			UserAgent:           "",
			GoogleDriveEndpoint: DefaultGoogleDriveEndpoint,
		},
		Commit: CommitConfig{
			UserName:  DefaultCommitUserName,
			UserEmail: DefaultCommitUserEmail,
			Message:   DefaultCommitMessage,
		},
		Registry: RegistryConfig{
			Enabled:   DefaultRegistryEnabled,
			Directory: RegistryDir(),
		},
		Lock: LockConfig{
			Enabled:      DefaultLockEnabled,
			InitialDelay: DefaultLockInitialDelay,
			MaxDelay:     DefaultLockMaxDelay,
		},
		Batch: BatchConfig{
			Workers:         DefaultBatchWorkers,
			ContinueOnError: false,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
