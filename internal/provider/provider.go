// Package provider holds the closed table of source providers.
package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

// Provider names
const (
	Web         = "web"
	Dropbox     = "dropbox"
	GoogleDrive = "googledrive"
)

type webProvider struct{}

func (webProvider) Name() string { return Web }
func (webProvider) Rewrite(d domain.SourceDescriptor) domain.SourceDescriptor { return d }
func (webProvider) FetchStrategy() domain.FetchStrategy { return nil }

type dropboxProvider struct{}

func (dropboxProvider) Name() string { return Dropbox }

// Rewrite turns a Dropbox preview link into a direct download
func (dropboxProvider) Rewrite(d domain.SourceDescriptor) domain.SourceDescriptor {
	d = d.Clone()
	d.URL = strings.ReplaceAll(d.URL, "dl=0", "dl=1")
	return d
}

func (dropboxProvider) FetchStrategy() domain.FetchStrategy { return nil }

type googleDriveProvider struct {
	strategy domain.FetchStrategy
}

func (googleDriveProvider) Name() string { return GoogleDrive }
func (googleDriveProvider) Rewrite(d domain.SourceDescriptor) domain.SourceDescriptor { return d }
func (p googleDriveProvider) FetchStrategy() domain.FetchStrategy { return p.strategy }

// Table maps provider names to providers
type Table struct {
	providers map[string]domain.Provider
}

// NewTable creates the provider table. drive is the strategy used for
// Google Drive sources.
func NewTable(drive domain.FetchStrategy) *Table {
	return &Table{providers: map[string]domain.Provider{
		Web:         webProvider{},
		Dropbox:     dropboxProvider{},
		GoogleDrive: googleDriveProvider{strategy: drive},
	}}
}

// Get returns the provider registered under name
func (t *Table) Get(name string) (domain.Provider, error) {
	p, ok := t.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", domain.ErrUnknownProvider, name, strings.Join(t.Names(), ", "))
	}
	return p, nil
}

// Names returns the registered provider names, sorted
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.providers))
	for n := range t.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Detect picks a provider name from the URL host
func Detect(rawURL string) string {
	switch {
	case utils.HostMatches(rawURL, "dropbox.com"):
		return Dropbox
	case utils.HostMatches(rawURL, "drive.google.com"), utils.HostMatches(rawURL, "docs.google.com"):
		return GoogleDrive
	default:
		return Web
	}
}
