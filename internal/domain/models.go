package domain

import (
	"maps"
	"net/http"
	"time"
)

// Overrides contains optional per-source settings that replace provider defaults
type Overrides struct {
	// Extension forces the compression format (e.g. "zip", "tgz")
	Extension string
	// FetchStrategy replaces the provider's download strategy
	FetchStrategy FetchStrategy
	// FetchParams are passed through to the fetch strategy
	FetchParams map[string]any
}

// SourceDescriptor identifies one archive to import
type SourceDescriptor struct {
	URL       string
	Provider  string
	Overrides Overrides
}

// Clone returns a copy that shares no mutable state with d
func (d SourceDescriptor) Clone() SourceDescriptor {
	c := d
	if d.Overrides.FetchParams != nil {
		c.Overrides.FetchParams = maps.Clone(d.Overrides.FetchParams)
	}
	return c
}

// Identity returns the (provider, url) key that selects a local origin
func (d SourceDescriptor) Identity() string {
	return d.Provider + "|" + d.URL
}

// PipelineResult is returned by a successful pipeline run
type PipelineResult struct {
	ExtractedDirectoryName string `json:"source_dir_name"`
	LocalOriginPath        string `json:"local_origin_repo_path"`
	HeadCommit             string `json:"head_commit,omitempty"`
}

// ProgressEvent is one human-readable progress line
type ProgressEvent struct {
	Stage   string
	Message string
}

// FetchRequest describes one download into the staging directory
type FetchRequest struct {
	URL         string
	Destination string
	Params      map[string]any
}

// FetchResult describes a finished download
type FetchResult struct {
	Path   string
	Header http.Header
	Bytes  int64
}

// OriginRecord is the persisted metadata of a local origin repository
type OriginRecord struct {
	Provider     string    `json:"provider"`
	URL          string    `json:"url"`
	Path         string    `json:"path"`
	Directory    string    `json:"directory"`
	HeadCommit   string    `json:"head_commit"`
	Runs         int       `json:"runs"`
	LastPulledAt time.Time `json:"last_pulled_at"`
}
