// Package app wires configuration into a ready pipeline and adds the host
// concerns around it: per-origin locking, the origin registry and batches.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quantmind-br/archivepuller/internal/cache"
	"github.com/quantmind-br/archivepuller/internal/config"
	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/extractor"
	"github.com/quantmind-br/archivepuller/internal/fetcher"
	"github.com/quantmind-br/archivepuller/internal/lock"
	"github.com/quantmind-br/archivepuller/internal/origin"
	"github.com/quantmind-br/archivepuller/internal/pipeline"
	"github.com/quantmind-br/archivepuller/internal/process"
	"github.com/quantmind-br/archivepuller/internal/provider"
	"github.com/quantmind-br/archivepuller/internal/utils"
	"github.com/quantmind-br/archivepuller/pkg/version"
)

// ErrRegistryDisabled is returned by registry queries when registry.enabled is false
var ErrRegistryDisabled = errors.New("origin registry is disabled")

// App is the configured archive importer
type App struct {
	config       *config.Config
	logger       *utils.Logger
	layout       origin.Layout
	providers    *provider.Table
	orchestrator *pipeline.Orchestrator
	locker       *lock.Locker
	registry     *cache.Registry
}

// Options contains options for creating an App
type Options struct {
	Config  *config.Config
	Verbose bool
	// Logger replaces the logger built from Config.Logging
	Logger *utils.Logger
	// Executor replaces the os/exec process runner
	Executor process.Executor
	// HTTPClient replaces the client built from Config.Download
	HTTPClient *http.Client
	// InMemoryRegistry keeps the registry out of the filesystem
	InMemoryRegistry bool
}

// New creates a new App with the given configuration
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
		})
	}

	exec := opts.Executor
	if exec == nil {
		exec = process.NewRunner(process.RunnerOptions{Logger: logger})
	}

	userAgent := cfg.Download.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}

	client := opts.HTTPClient
	if client == nil {
		client = fetcher.NewHTTPClient(fetcher.ClientOptions{Timeout: cfg.Download.Timeout})
	}

	layout := origin.Layout{ParentDir: cfg.Origin.ParentDir, CacheDirName: cfg.Origin.CacheDirName}
	providers := provider.NewTable(fetcher.NewGoogleDrive(fetcher.GoogleDriveOptions{
		Client:    client,
		Endpoint:  cfg.Download.GoogleDriveEndpoint,
		UserAgent: userAgent,
		Logger:    logger,
	}))

	a := &App{
		config:    cfg,
		logger:    logger.WithComponent("app"),
		layout:    layout,
		providers: providers,
	}

	var recorder domain.OriginRecorder
	if cfg.Registry.Enabled {
		registry, err := cache.NewRegistry(cache.Options{
			Directory: cfg.Registry.Directory,
			InMemory:  opts.InMemoryRegistry,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open origin registry: %w", err)
		}
		a.registry = registry
		recorder = registry
	}

	if cfg.Lock.Enabled {
		a.locker = lock.New(lock.Options{
			Dir:          layout.LocksDir(),
			InitialDelay: cfg.Lock.InitialDelay,
			MaxDelay:     cfg.Lock.MaxDelay,
			Logger:       logger,
		})
	}

	a.orchestrator = pipeline.NewOrchestrator(pipeline.Options{
		Layout:     layout,
		Repository: origin.NewRepository(origin.RepositoryOptions{Executor: exec, Logger: logger}),
		Publisher: origin.NewPublisher(origin.PublisherOptions{
			Executor: exec,
			Identity: origin.Identity{
				Name:    cfg.Commit.UserName,
				Email:   cfg.Commit.UserEmail,
				Message: cfg.Commit.Message,
			},
			Logger: logger,
		}),
		Extractor: extractor.New(extractor.Options{Executor: exec, Logger: logger}),
		Providers: providers,
		DefaultStrategy: fetcher.NewHTTPStream(fetcher.HTTPStreamOptions{
			Client:    client,
			UserAgent: userAgent,
			Logger:    logger,
		}),
		Recorder: recorder,
		TempDir:  cfg.Staging.TempDir,
		Prune:    cfg.Staging.Prune,
		Logger:   logger,
	})

	return a, nil
}

// Config returns the validated configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Layout returns the origin layout
func (a *App) Layout() origin.Layout {
	return a.layout
}

// Pull imports one source. Runs for the same origin identity are
// serialized when locking is enabled.
func (a *App) Pull(ctx context.Context, desc domain.SourceDescriptor, progress domain.ProgressFunc) (*domain.PipelineResult, error) {
	start := time.Now()
	identity := a.Identity(desc)

	if a.locker != nil {
		l, err := a.locker.Acquire(ctx, identity)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := l.Release(); err != nil {
				a.logger.Warn().Err(err).Str("lock", l.Path()).Msg("Failed to release origin lock")
			}
		}()
		a.logger.Debug().Str("identity", identity).Dur("waited", time.Since(start)).Msg("Origin lock acquired")
	}

	return a.orchestrator.Run(ctx, desc, progress)
}

// Stream imports one source on a goroutine, see pipeline.Stream
func (a *App) Stream(ctx context.Context, desc domain.SourceDescriptor) *pipeline.Stream {
	return pipeline.Start(ctx, runnerFunc(a.Pull), desc)
}

type runnerFunc func(context.Context, domain.SourceDescriptor, domain.ProgressFunc) (*domain.PipelineResult, error)

func (f runnerFunc) Run(ctx context.Context, desc domain.SourceDescriptor, progress domain.ProgressFunc) (*domain.PipelineResult, error) {
	return f(ctx, desc, progress)
}

// Origins lists the recorded origins
func (a *App) Origins(ctx context.Context) ([]domain.OriginRecord, error) {
	if a.registry == nil {
		return nil, ErrRegistryDisabled
	}
	return a.registry.List(ctx)
}

// Forget removes an origin from the registry. The repository on disk is kept.
func (a *App) Forget(ctx context.Context, desc domain.SourceDescriptor) error {
	if a.registry == nil {
		return ErrRegistryDisabled
	}
	d := a.resolve(desc)
	if _, err := a.registry.Get(ctx, d.Provider, d.URL); err != nil {
		return err
	}
	return a.registry.Delete(ctx, d.Provider, d.URL)
}

// Close releases all resources held by the app
func (a *App) Close() error {
	if a.registry != nil {
		return a.registry.Close()
	}
	return nil
}
