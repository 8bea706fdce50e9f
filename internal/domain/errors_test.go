package domain

import (
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSentinelErrors verifies sentinel errors are defined
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check string
	}{
		{"ErrInvalidURL", ErrInvalidURL, "invalid URL"},
		{"ErrUnknownProvider", ErrUnknownProvider, "unknown provider"},
		{"ErrEmptyArchive", ErrEmptyArchive, "no entries"},
		{"ErrNotDirectory", ErrNotDirectory, "not a directory"},
		{"ErrLocked", ErrLocked, "locked"},
		{"ErrOriginNotFound", ErrOriginNotFound, "not recorded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.Contains(t, tt.err.Error(), tt.check)
		})
	}
}

func TestProcessExecutionError(t *testing.T) {
	t.Run("with exit code", func(t *testing.T) {
		err := NewProcessExecutionError([]string{"git", "push", "origin", "main"}, 128, errors.New("exit status 128"))
		assert.Equal(t, `command "git push origin main" exited with status 128`, err.Error())
		assert.Equal(t, 128, ExitCode(err))
	})

	t.Run("without exit code", func(t *testing.T) {
		err := NewProcessExecutionError([]string{"unzip"}, 0, exec.ErrNotFound)
		assert.Contains(t, err.Error(), "failed")
		assert.ErrorIs(t, err, exec.ErrNotFound)
	})

	t.Run("copies args", func(t *testing.T) {
		args := []string{"tar", "xzf"}
		err := NewProcessExecutionError(args, 2, nil)
		args[0] = "changed"
		assert.Equal(t, "tar", err.Args[0])
	})
}

func TestGitOperationError_UnwrapsToProcessError(t *testing.T) {
	procErr := NewProcessExecutionError([]string{"git", "clone"}, 1, nil)
	err := fmt.Errorf("cloning: %w", NewGitOperationError("clone", procErr))

	var gitErr *GitOperationError
	require.True(t, errors.As(err, &gitErr))
	assert.Equal(t, "clone", gitErr.Op)

	var asProc *ProcessExecutionError
	require.True(t, errors.As(err, &asProc))
	assert.Equal(t, 1, asProc.ExitCode)
	assert.Equal(t, 1, ExitCode(err))
}

func TestDownloadError(t *testing.T) {
	tests := []struct {
		name     string
		err      *DownloadError
		contains string
	}{
		{
			name:     "with status",
			err:      NewDownloadError("https://example.com/a.zip", 404, errors.New("HTTP 404")),
			contains: "status 404",
		},
		{
			name:     "without status",
			err:      NewDownloadError("https://example.com/a.zip", 0, errors.New("connection refused")),
			contains: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.contains)
			assert.Contains(t, tt.err.Error(), "https://example.com/a.zip")
		})
	}
}

func TestEmptyArchiveError_Is(t *testing.T) {
	err := fmt.Errorf("resolving: %w", &EmptyArchiveError{Dir: "/tmp/x", Skipped: []string{".git", "__MACOSX"}})
	assert.ErrorIs(t, err, ErrEmptyArchive)
	assert.Contains(t, err.Error(), "__MACOSX")
}

func TestFormatDetectionError(t *testing.T) {
	err := &FormatDetectionError{URL: "https://example.com/download"}
	assert.Equal(t, "could not determine compression type of https://example.com/download", err.Error())

	err.ContentDisposition = "attachment"
	assert.Contains(t, err.Error(), "content-disposition: attachment")
}

func TestIsClassified(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"process", NewProcessExecutionError([]string{"tar"}, 2, nil), true},
		{"git", NewGitOperationError("push", nil), true},
		{"download", NewDownloadError("u", 0, nil), true},
		{"format", &FormatDetectionError{URL: "u"}, true},
		{"extraction", &ExtractionError{Format: "zip"}, true},
		{"empty", &EmptyArchiveError{}, true},
		{"validation", NewValidationError("url", "required", ErrInvalidURL), true},
		{"pipeline", NewPipelineError("cloned", "u", errors.New("x")), true},
		{"wrapped download", fmt.Errorf("ctx: %w", NewDownloadError("u", 0, nil)), true},
		{"plain", errors.New("disk full"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClassified(tt.err))
		})
	}
}

func TestPipelineError(t *testing.T) {
	cause := errors.New("no space left on device")
	err := NewPipelineError("Extracted", "https://example.com/a.zip", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Extracted")
}
