package manifest

import (
	"fmt"
	"strings"

	"github.com/quantmind-br/archivepuller/internal/domain"
)

// Config represents the complete manifest configuration
type Config struct {
	Sources []Source `yaml:"sources" json:"sources" toml:"sources"`
	Options Options  `yaml:"options" json:"options" toml:"options"`
}

// Source is one archive to import
type Source struct {
	URL       string            `yaml:"url" json:"url" toml:"url"`
	Provider  string            `yaml:"provider,omitempty" json:"provider,omitempty" toml:"provider,omitempty"`
	Extension string            `yaml:"extension,omitempty" json:"extension,omitempty" toml:"extension,omitempty"`
	Params    map[string]string `yaml:"params,omitempty" json:"params,omitempty" toml:"params,omitempty"`
}

// Descriptor converts the source into a pipeline descriptor
func (s Source) Descriptor() domain.SourceDescriptor {
	desc := domain.SourceDescriptor{
		URL:      strings.TrimSpace(s.URL),
		Provider: strings.ToLower(strings.TrimSpace(s.Provider)),
		Overrides: domain.Overrides{
			Extension: strings.TrimSpace(s.Extension),
		},
	}
	if len(s.Params) > 0 {
		desc.Overrides.FetchParams = make(map[string]any, len(s.Params))
		for k, v := range s.Params {
			desc.Overrides.FetchParams[k] = v
		}
	}
	return desc
}

// Options represents global manifest options
type Options struct {
	ContinueOnError bool `yaml:"continue_on_error" json:"continue_on_error" toml:"continue_on_error"`
	// Workers of 0 defers to the configured batch.workers
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty" toml:"workers,omitempty"`
}

// Validate validates the manifest configuration. Sources naming the same
// provider and url would contend for one origin and are rejected.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	seen := make(map[string]int, len(c.Sources))
	for i, src := range c.Sources {
		desc := src.Descriptor()
		if desc.URL == "" {
			return fmt.Errorf("source %d: %w", i, ErrEmptyURL)
		}
		if desc.Provider == "" {
			continue
		}
		id := desc.Identity()
		if j, ok := seen[id]; ok {
			return fmt.Errorf("source %d: %w of source %d", i, ErrDuplicateSource, j)
		}
		seen[id] = i
	}
	return nil
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() Options {
	return Options{
		ContinueOnError: false,
		Workers:         0,
	}
}
