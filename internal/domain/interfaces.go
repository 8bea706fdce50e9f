package domain

import "context"

// ProgressFunc receives progress events in pipeline order
type ProgressFunc func(ProgressEvent)

// LineFunc receives single lines of subprocess or download output
type LineFunc func(line string)

// FetchStrategy downloads an archive to a local file
type FetchStrategy interface {
	// Name returns the strategy name
	Name() string
	// Fetch streams the archive at req.URL into req.Destination
	Fetch(ctx context.Context, req FetchRequest, emit LineFunc) (*FetchResult, error)
}

// Provider is the per-source-kind strategy record
type Provider interface {
	// Name returns the provider name used in origin paths
	Name() string
	// Rewrite adjusts a descriptor before the pipeline uses it
	Rewrite(desc SourceDescriptor) SourceDescriptor
	// FetchStrategy returns a custom download strategy, or nil for the default
	FetchStrategy() FetchStrategy
}

// OriginRecorder persists metadata about local origins
type OriginRecorder interface {
	Record(ctx context.Context, result *PipelineResult, desc SourceDescriptor) error
}
