package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/archivepuller/internal/utils"
)

// chdirTemp moves the test into an empty working directory with an
// isolated home, so no real config file is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Chdir(dir)
	return dir
}

// TestConfig_Validate tests configuration validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		check   func(*testing.T, *Config)
		wantErr bool
	}{
		{
			name:   "default config is valid",
			modify: func(c *Config) {},
		},
		{
			name: "empty parent dir defaults to home",
			modify: func(c *Config) {
				c.Origin.ParentDir = "  "
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, utils.ExpandPath("~"), c.Origin.ParentDir)
			},
		},
		{
			name: "cache dir name with separator is rejected",
			modify: func(c *Config) {
				c.Origin.CacheDirName = "a/b"
			},
			wantErr: true,
		},
		{
			name: "negative timeout defaults to none",
			modify: func(c *Config) {
				c.Download.Timeout = -time.Second
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, time.Duration(0), c.Download.Timeout)
			},
		},
		{
			name: "empty commit identity is filled",
			modify: func(c *Config) {
				c.Commit = CommitConfig{}
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultCommitUserName, c.Commit.UserName)
				assert.Equal(t, DefaultCommitUserEmail, c.Commit.UserEmail)
				assert.Equal(t, DefaultCommitMessage, c.Commit.Message)
			},
		},
		{
			name: "lock delays are clamped",
			modify: func(c *Config) {
				c.Lock.InitialDelay = 0
				c.Lock.MaxDelay = time.Millisecond
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultLockInitialDelay, c.Lock.InitialDelay)
				assert.Equal(t, DefaultLockMaxDelay, c.Lock.MaxDelay)
			},
		},
		{
			name: "large initial delay raises max delay",
			modify: func(c *Config) {
				c.Lock.InitialDelay = 10 * time.Second
				c.Lock.MaxDelay = time.Second
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 10*time.Second, c.Lock.MaxDelay)
			},
		},
		{
			name: "workers below minimum defaults to 2",
			modify: func(c *Config) {
				c.Batch.Workers = 0
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultBatchWorkers, c.Batch.Workers)
			},
		},
		{
			name: "unknown log format defaults to pretty",
			modify: func(c *Config) {
				c.Logging.Format = "xml"
				c.Logging.Level = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultLogFormat, c.Logging.Format)
				assert.Equal(t, DefaultLogLevel, c.Logging.Level)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// TestDefault tests default configuration
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, utils.ExpandPath("~"), cfg.Origin.ParentDir)
	assert.Equal(t, DefaultCacheDirName, cfg.Origin.CacheDirName)
	assert.Empty(t, cfg.Staging.TempDir)
	assert.False(t, cfg.Staging.Prune)
	assert.Zero(t, cfg.Download.Timeout)
	assert.Equal(t, DefaultGoogleDriveEndpoint, cfg.Download.GoogleDriveEndpoint)
	assert.True(t, cfg.Registry.Enabled)
	assert.Equal(t, RegistryDir(), cfg.Registry.Directory)
	assert.True(t, cfg.Lock.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.Lock.InitialDelay)
	assert.Equal(t, 5*time.Second, cfg.Lock.MaxDelay)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.False(t, cfg.Batch.ContinueOnError)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
}

func TestCacheRoot(t *testing.T) {
	cfg := &Config{Origin: OriginConfig{ParentDir: "/srv", CacheDirName: ".cache-x"}}
	assert.Equal(t, "/srv/.cache-x", cfg.CacheRoot())
}

func TestPaths(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester/.archivepuller", ConfigDir())
	assert.Equal(t, "/home/tester/.archivepuller/registry", RegistryDir())
	assert.Equal(t, "/home/tester/.archivepuller/config.yaml", ConfigFilePath())
}

// TestLoad_LoadWithMissingConfig tests loading with no config file
func TestLoad_LoadWithMissingConfig(t *testing.T) {
	chdirTemp(t)

	v := viper.New()
	cfg, err := LoadViper(v, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, v.GetString("logging.level"))
	assert.Equal(t, DefaultBatchWorkers, cfg.Batch.Workers)
	assert.Equal(t, DefaultCacheDirName, cfg.Origin.CacheDirName)
	assert.True(t, filepath.IsAbs(cfg.Origin.ParentDir), "~ is expanded")
}

// TestLoad_WithInvalidConfigFile tests loading with invalid config file
func TestLoad_WithInvalidConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("invalid: yaml: content: ["), 0644))

	cfg, err := LoadViper(viper.New(), "")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// TestLoad_WithValidConfigFile tests loading with valid config file
func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	content := `
origin:
  parent_dir: /srv/origins
staging:
  prune: true
download:
  timeout: 90s
  user_agent: puller/1.0
lock:
  max_delay: 2s
batch:
  workers: 6
  continue_on_error: true
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := LoadViper(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/srv/origins", cfg.Origin.ParentDir)
	assert.True(t, cfg.Staging.Prune)
	assert.Equal(t, 90*time.Second, cfg.Download.Timeout)
	assert.Equal(t, "puller/1.0", cfg.Download.UserAgent)
	assert.Equal(t, 2*time.Second, cfg.Lock.MaxDelay)
	assert.Equal(t, DefaultLockInitialDelay, cfg.Lock.InitialDelay)
	assert.Equal(t, 6, cfg.Batch.Workers)
	assert.True(t, cfg.Batch.ContinueOnError)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

// TestLoadWithEnvironmentVariable tests loading with environment variable
func TestLoadWithEnvironmentVariable(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ARCHIVEPULLER_ORIGIN_CACHE_DIR_NAME", ".env-origins")
	t.Setenv("ARCHIVEPULLER_LOCK_ENABLED", "false")

	cfg, err := LoadViper(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ".env-origins", cfg.Origin.CacheDirName)
	assert.False(t, cfg.Lock.Enabled)
}

func TestLoadFile(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commit:\n  message: nightly import\n"), 0644))

	cfg, err := LoadViper(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "nightly import", cfg.Commit.Message)
	assert.Equal(t, DefaultCommitUserName, cfg.Commit.UserName)
}

func TestLoadFile_Missing(t *testing.T) {
	chdirTemp(t)

	_, err := LoadViper(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err, "an explicit file must exist")
}
