package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// MaxSegmentLength is the maximum length for a single path segment
const MaxSegmentLength = 200

// asciiPunctuation mirrors the ASCII punctuation class
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// StripPunctuation removes every ASCII punctuation character from s.
//
// Example:
//
//	StripPunctuation("https://example.com/a.zip") // "httpsexamplecomazip"
func StripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeSegment turns an arbitrary string into one filesystem-safe path
// segment: punctuation and whitespace are stripped and the result is cut to
// MaxSegmentLength bytes without splitting a UTF-8 sequence.
func SanitizeSegment(s string) string {
	s = StripPunctuation(s)
	s = Truncate(strings.Join(strings.Fields(s), ""), MaxSegmentLength)
	if s == "" {
		s = "untitled"
	}
	return s
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// EnsureDir ensures the parent directory of path exists
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// Exists reports whether path exists
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}
