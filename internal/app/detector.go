package app

import (
	"strings"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/provider"
)

// resolve applies the same provider detection and rewrite the pipeline
// does, so host-side keys match the origin a run will publish to. Unknown
// providers are left as given; the pipeline rejects them.
func (a *App) resolve(desc domain.SourceDescriptor) domain.SourceDescriptor {
	d := desc.Clone()
	d.URL = strings.TrimSpace(d.URL)
	if d.Provider == "" {
		d.Provider = provider.Detect(d.URL)
	}
	p, err := a.providers.Get(d.Provider)
	if err != nil {
		return d
	}
	d = p.Rewrite(d)
	d.Provider = p.Name()
	return d
}

// Identity returns the (provider, url) key desc resolves to
func (a *App) Identity(desc domain.SourceDescriptor) string {
	return a.resolve(desc).Identity()
}

// OriginPath returns the local origin desc publishes to
func (a *App) OriginPath(desc domain.SourceDescriptor) string {
	d := a.resolve(desc)
	return a.layout.Path(d.Provider, d.URL)
}
