package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (ARCHIVEPULLER_LOCK_ENABLED)
const EnvPrefix = "ARCHIVEPULLER"

// LoadViper loads configuration through v, which may carry CLI flag
// bindings. path selects an explicit config file; empty searches the
// config directory and the working directory.
func LoadViper(v *viper.Viper, path string) (*Config, error) {
	return load(v, path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate and apply defaults for invalid values
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("origin.parent_dir", DefaultParentDir)
	v.SetDefault("origin.cache_dir_name", DefaultCacheDirName)

	v.SetDefault("staging.temp_dir", "")
	v.SetDefault("staging.prune", false)

	v.SetDefault("download.timeout", DefaultDownloadTimeout)
	v.SetDefault("download.user_agent", "")
	v.SetDefault("download.googledrive_endpoint", DefaultGoogleDriveEndpoint)

	v.SetDefault("commit.user_name", DefaultCommitUserName)
	v.SetDefault("commit.user_email", DefaultCommitUserEmail)
	v.SetDefault("commit.message", DefaultCommitMessage)

	v.SetDefault("registry.enabled", DefaultRegistryEnabled)
	v.SetDefault("registry.directory", RegistryDir())

	v.SetDefault("lock.enabled", DefaultLockEnabled)
	v.SetDefault("lock.initial_delay", DefaultLockInitialDelay)
	v.SetDefault("lock.max_delay", DefaultLockMaxDelay)

	v.SetDefault("batch.workers", DefaultBatchWorkers)
	v.SetDefault("batch.continue_on_error", false)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
