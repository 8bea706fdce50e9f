// Package pipeline turns a downloadable archive into a new commit on a
// local origin repository.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/extractor"
	"github.com/quantmind-br/archivepuller/internal/fetcher"
	"github.com/quantmind-br/archivepuller/internal/origin"
	"github.com/quantmind-br/archivepuller/internal/provider"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

// Repository manages local origins
type Repository interface {
	EnsureInitialized(ctx context.Context, path string, emit domain.LineFunc) error
	CloneInto(ctx context.Context, path, stagingDir string, emit domain.LineFunc) error
}

// Publisher pushes a staging clone back to its origin
type Publisher interface {
	Publish(ctx context.Context, stagingDir string, emit domain.LineFunc) error
}

// Extractor unpacks a downloaded archive
type Extractor interface {
	Unarchive(ctx context.Context, format, archive, dest string, emit domain.LineFunc) error
}

// Providers looks up providers by name
type Providers interface {
	Get(name string) (domain.Provider, error)
}

// InspectFunc reads the head of an origin
type InspectFunc func(path string) (*origin.Snapshot, error)

// Orchestrator runs the archive-to-origin pipeline
type Orchestrator struct {
	layout          origin.Layout
	repo            Repository
	publisher       Publisher
	extractor       Extractor
	providers       Providers
	defaultStrategy domain.FetchStrategy
	inspect         InspectFunc
	recorder        domain.OriginRecorder
	onTransition    TransitionFunc
	tempDir         string
	prune           bool
	logger          *utils.Logger
}

// Options contains options for creating an Orchestrator. Nil collaborators
// get their standard implementation.
type Options struct {
	Layout          origin.Layout
	Repository      Repository
	Publisher       Publisher
	Extractor       Extractor
	Providers       Providers
	DefaultStrategy domain.FetchStrategy
	Inspect         InspectFunc
	Recorder        domain.OriginRecorder
	OnTransition    TransitionFunc
	// TempDir is where staging sessions are created; empty means os.TempDir
	TempDir string
	// Prune clears the staging clone before extraction so removed files
	// disappear from the origin
	Prune  bool
	Logger *utils.Logger
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	o := &Orchestrator{
		layout:          opts.Layout,
		repo:            opts.Repository,
		publisher:       opts.Publisher,
		extractor:       opts.Extractor,
		providers:       opts.Providers,
		defaultStrategy: opts.DefaultStrategy,
		inspect:         opts.Inspect,
		recorder:        opts.Recorder,
		onTransition:    opts.OnTransition,
		tempDir:         opts.TempDir,
		prune:           opts.Prune,
		logger:          logger.WithComponent("pipeline"),
	}

	if o.repo == nil {
		o.repo = origin.NewRepository(origin.RepositoryOptions{Logger: logger})
	}
	if o.publisher == nil {
		o.publisher = origin.NewPublisher(origin.PublisherOptions{Logger: logger})
	}
	if o.extractor == nil {
		o.extractor = extractor.New(extractor.Options{Logger: logger})
	}
	if o.providers == nil {
		o.providers = provider.NewTable(fetcher.NewGoogleDrive(fetcher.GoogleDriveOptions{Logger: logger}))
	}
	if o.defaultStrategy == nil {
		o.defaultStrategy = fetcher.NewHTTPStream(fetcher.HTTPStreamOptions{Logger: logger})
	}
	if o.inspect == nil {
		o.inspect = origin.Inspect
	}
	return o
}

// run is the state of one pipeline execution
type run struct {
	o        *Orchestrator
	progress domain.ProgressFunc
	state    State
	stage    string
	source   string
	logger   *utils.Logger
}

func (r *run) emit(stage string) domain.LineFunc {
	return func(line string) {
		r.progress(domain.ProgressEvent{Stage: stage, Message: line})
	}
}

func (r *run) advance(to State) {
	r.logger.Debug().Str("from", r.state.String()).Str("to", to.String()).Msg("Pipeline transition")
	if r.o.onTransition != nil {
		r.o.onTransition(r.state, to)
	}
	r.state = to
}

// fail records the failure and classifies err
func (r *run) fail(err error) error {
	last := r.state
	if last != StateIdle {
		r.advance(StateFailed)
	}
	r.logger.Error().Err(err).Str("stage", r.stage).Str("last_state", last.String()).Msg("Pipeline failed")
	if domain.IsClassified(err) {
		return err
	}
	return domain.NewPipelineError(r.stage, r.source, err)
}

// enter starts a stage, failing fast when ctx is already done
func (r *run) enter(ctx context.Context, stage string) error {
	r.stage = stage
	return ctx.Err()
}

// Run executes the pipeline for desc. Progress lines are delivered to
// progress in order; the staging directory is removed before Run returns.
func (o *Orchestrator) Run(ctx context.Context, desc domain.SourceDescriptor, progress domain.ProgressFunc) (*domain.PipelineResult, error) {
	if progress == nil {
		progress = func(domain.ProgressEvent) {}
	}
	r := &run{o: o, progress: progress, state: StateIdle, source: desc.URL, logger: o.logger}
	start := time.Now()

	r.stage = StageValidate
	desc, p, err := o.resolve(desc)
	if err != nil {
		return nil, r.fail(err)
	}
	r.source = desc.URL
	r.logger = o.logger.WithSource(desc.Provider, desc.URL)
	r.logger.Info().Msg("Starting archive import")

	result, err := r.execute(ctx, desc, p)
	if err != nil {
		return nil, r.fail(err)
	}

	r.logger.Info().
		Str("directory", result.ExtractedDirectoryName).
		Str("head", result.HeadCommit).
		Dur("duration", time.Since(start)).
		Msg("Archive import complete")

	if o.recorder != nil {
		if err := o.recorder.Record(ctx, result, desc); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to record origin")
		}
	}
	return result, nil
}

// resolve validates desc, fills in the provider and applies its rewrite
func (o *Orchestrator) resolve(desc domain.SourceDescriptor) (domain.SourceDescriptor, domain.Provider, error) {
	desc = desc.Clone()
	desc.URL = strings.TrimSpace(desc.URL)
	if desc.URL == "" {
		return desc, nil, domain.NewValidationError("url", "source URL is required", domain.ErrInvalidURL)
	}
	if desc.Overrides.FetchStrategy == nil && !utils.IsHTTPURL(desc.URL) {
		return desc, nil, domain.NewValidationError("url", "not an http(s) URL: "+desc.URL, domain.ErrInvalidURL)
	}

	if desc.Provider == "" {
		desc.Provider = provider.Detect(desc.URL)
	}
	p, err := o.providers.Get(desc.Provider)
	if err != nil {
		return desc, nil, domain.NewValidationError("provider", err.Error(), err)
	}

	desc = p.Rewrite(desc)
	desc.Provider = p.Name()
	return desc, p, nil
}

// strategyFor picks the override, then the provider's strategy, then the default
func (o *Orchestrator) strategyFor(desc domain.SourceDescriptor, p domain.Provider) domain.FetchStrategy {
	if s := desc.Overrides.FetchStrategy; s != nil {
		return s
	}
	if s := p.FetchStrategy(); s != nil {
		return s
	}
	return o.defaultStrategy
}

func (r *run) execute(ctx context.Context, desc domain.SourceDescriptor, p domain.Provider) (*domain.PipelineResult, error) {
	o := r.o
	originPath := o.layout.Path(desc.Provider, desc.URL)
	r.logger = r.logger.WithOrigin(originPath)

	if err := r.enter(ctx, StageEnsure); err != nil {
		return nil, err
	}
	if err := o.repo.EnsureInitialized(ctx, originPath, r.emit(StageEnsure)); err != nil {
		return nil, err
	}
	r.advance(StateRepoEnsured)

	if err := r.enter(ctx, StageClone); err != nil {
		return nil, err
	}
	if o.tempDir != "" {
		if err := os.MkdirAll(o.tempDir, 0755); err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
	}
	staging, err := os.MkdirTemp(o.tempDir, "archivepuller-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	if abs, absErr := filepath.Abs(staging); absErr == nil {
		staging = abs
	}
	defer func() {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			r.logger.Warn().Err(rmErr).Str("staging", staging).Msg("Failed to remove staging dir")
			return
		}
		r.logger.Debug().Str("staging", staging).Msg("Staging dir removed")
	}()

	if err := o.repo.CloneInto(ctx, originPath, staging, r.emit(StageClone)); err != nil {
		return nil, err
	}
	r.advance(StateCloned)

	if o.prune {
		r.stage = StagePrune
		n, err := pruneWorkingTree(staging)
		if err != nil {
			return nil, err
		}
		r.logger.Debug().Int("removed", n).Msg("Pruned staging clone")
	}

	if err := r.enter(ctx, StageDownload); err != nil {
		return nil, err
	}
	archive := filepath.Join(staging, "download")
	if ext := extractor.KnownFormat(desc); ext != "" {
		archive += "." + ext
	}
	strategy := o.strategyFor(desc, p)
	r.logger.Debug().Str("strategy", strategy.Name()).Msg("Using fetch strategy")

	fetched, err := strategy.Fetch(ctx, domain.FetchRequest{
		URL:         desc.URL,
		Destination: archive,
		Params:      desc.Overrides.FetchParams,
	}, r.emit(StageDownload))
	if err != nil {
		return nil, err
	}
	if fetched == nil {
		fetched = &domain.FetchResult{Path: archive}
	}
	if fetched.Path != "" {
		archive = fetched.Path
	}
	r.advance(StateDownloaded)

	if err := r.enter(ctx, StageExtract); err != nil {
		return nil, err
	}
	emit := r.emit(StageExtract)
	emit("Determining type of archive...")
	format, err := extractor.DetectFormat(desc, fetched.Header)
	if err != nil {
		return nil, err
	}
	emit("Archive is: " + format)
	if err := o.extractor.Unarchive(ctx, format, archive, staging, emit); err != nil {
		return nil, err
	}
	if err := os.Remove(archive); err != nil {
		return nil, fmt.Errorf("remove archive: %w", err)
	}
	r.advance(StateExtracted)

	if err := r.enter(ctx, StagePublish); err != nil {
		return nil, err
	}
	if err := o.publisher.Publish(ctx, staging, r.emit(StagePublish)); err != nil {
		return nil, err
	}
	r.advance(StatePublished)

	r.stage = StageResolve
	dir, err := ResolveDirectory(staging)
	if err != nil {
		return nil, err
	}
	r.advance(StateDirectoryResolved)

	r.stage = StageComplete
	result := &domain.PipelineResult{ExtractedDirectoryName: dir, LocalOriginPath: originPath}
	commits := 0
	if snap, err := o.inspect(originPath); err != nil {
		r.logger.Warn().Err(err).Msg("Could not read origin head")
	} else if !snap.Empty() {
		result.HeadCommit = snap.Head
		commits = snap.Commits
	}

	done := r.emit(StageComplete)
	done("")
	done("Process Complete: Archive is finished importing")
	done("The directory of your download is: " + dir)
	if result.HeadCommit != "" {
		done(fmt.Sprintf("Origin head: %s (%s)", result.HeadCommit, english.Plural(commits, "commit", "")))
	}
	r.advance(StateDone)
	return result, nil
}
