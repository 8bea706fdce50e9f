package cache

import (
	"github.com/quantmind-br/archivepuller/internal/domain"
)

// Ensure Registry implements domain.OriginRecorder
var _ domain.OriginRecorder = (*Registry)(nil)

// Options contains registry configuration options
type Options struct {
	Directory string
	InMemory  bool
	Logger    bool
}

// DefaultOptions returns default registry options
func DefaultOptions() Options {
	return Options{
		Directory: "",
		InMemory:  false,
		Logger:    false,
	}
}
