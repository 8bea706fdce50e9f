// Package origin manages the local bare repositories that stand in for a
// remote, and the staging clones that are published back into them.
package origin

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/quantmind-br/archivepuller/internal/utils"
)

// DefaultCacheDirName is the directory under ParentDir holding all origins
const DefaultCacheDirName = ".archivepuller"

// hashSuffixLen is the number of hex digits of the identity hash kept in a segment
const hashSuffixLen = 12

// Layout maps a source identity to its origin path
type Layout struct {
	ParentDir    string
	CacheDirName string
}

// Root returns the absolute cache root, <ParentDir>/<CacheDirName>
func (l Layout) Root() string {
	name := l.CacheDirName
	if name == "" {
		name = DefaultCacheDirName
	}
	parent := utils.ExpandPath(l.ParentDir)
	if abs, err := filepath.Abs(parent); err == nil {
		parent = abs
	}
	return filepath.Join(parent, name)
}

// Path returns <root>/targets/<provider>/<segment> for a source. The path
// is a pure function of (provider, url).
func (l Layout) Path(provider, url string) string {
	return filepath.Join(l.Root(), "targets", utils.SanitizeSegment(provider), Segment(provider, url))
}

// LocksDir returns the directory holding per-identity lock files
func (l Layout) LocksDir() string {
	return filepath.Join(l.Root(), "locks")
}

// Segment is the url with punctuation stripped, followed by a short hash of
// the identity so that urls differing only in punctuation stay apart.
func Segment(provider, url string) string {
	sum := sha256.Sum256([]byte(provider + "|" + url))
	suffix := "-" + hex.EncodeToString(sum[:])[:hashSuffixLen]

	base := utils.Truncate(utils.SanitizeSegment(url), utils.MaxSegmentLength-len(suffix))
	return base + suffix
}
