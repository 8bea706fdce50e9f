package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/quantmind-br/archivepuller/internal/domain"
)

// junkEntries are top-level names never reported as the extracted directory
var junkEntries = map[string]bool{
	".git":      true,
	"__MACOSX":  true,
	".DS_Store": true,
}

// IsJunk reports whether a top-level staging entry is bookkeeping rather
// than archive content
func IsJunk(name string) bool {
	return junkEntries[name]
}

// ResolveDirectory returns the name of the extracted content in dir.
// Directories are preferred over files, ties break by name.
func ResolveDirectory(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list staging dir: %w", err)
	}

	var kept []os.DirEntry
	var skipped []string
	for _, e := range entries {
		if IsJunk(e.Name()) {
			skipped = append(skipped, e.Name())
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return "", &domain.EmptyArchiveError{Dir: dir, Skipped: skipped}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].IsDir() != kept[j].IsDir() {
			return kept[i].IsDir()
		}
		return kept[i].Name() < kept[j].Name()
	})
	return kept[0].Name(), nil
}

// pruneWorkingTree removes every top-level entry of dir except .git
func pruneWorkingTree(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("list staging dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("prune %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
