package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrInvalidURL indicates an invalid or empty source URL was provided
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnknownProvider indicates no provider is registered under a name
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrEmptyArchive indicates the extracted archive produced no usable entries
	ErrEmptyArchive = errors.New("archive contains no entries")

	// ErrNotDirectory indicates an origin path exists but is not a directory
	ErrNotDirectory = errors.New("path exists and is not a directory")

	// ErrLocked indicates an origin identity is locked by another run
	ErrLocked = errors.New("origin is locked by another run")

	// ErrOriginNotFound indicates the registry has no record for an identity
	ErrOriginNotFound = errors.New("origin not recorded")
)

// ProcessExecutionError represents a non-zero exit from an external command
type ProcessExecutionError struct {
	Args     []string
	ExitCode int
	Err      error
}

func (e *ProcessExecutionError) Error() string {
	cmd := strings.Join(e.Args, " ")
	if e.ExitCode != 0 {
		return fmt.Sprintf("command %q exited with status %d", cmd, e.ExitCode)
	}
	return fmt.Sprintf("command %q failed: %v", cmd, e.Err)
}

func (e *ProcessExecutionError) Unwrap() error {
	return e.Err
}

// NewProcessExecutionError creates a new ProcessExecutionError
func NewProcessExecutionError(args []string, exitCode int, err error) *ProcessExecutionError {
	return &ProcessExecutionError{
		Args:     append([]string(nil), args...),
		ExitCode: exitCode,
		Err:      err,
	}
}

// GitOperationError is a process failure raised by a repository operation.
// It unwraps to the underlying ProcessExecutionError.
type GitOperationError struct {
	Op  string
	Err error
}

func (e *GitOperationError) Error() string {
	return fmt.Sprintf("git %s failed: %v", e.Op, e.Err)
}

func (e *GitOperationError) Unwrap() error {
	return e.Err
}

// NewGitOperationError creates a new GitOperationError
func NewGitOperationError(op string, err error) *GitOperationError {
	return &GitOperationError{Op: op, Err: err}
}

// DownloadError represents a transport or I/O failure while fetching an archive
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("download error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("download error for %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// NewDownloadError creates a new DownloadError
func NewDownloadError(url string, statusCode int, err error) *DownloadError {
	return &DownloadError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// FormatDetectionError indicates no compression format could be determined
type FormatDetectionError struct {
	URL                string
	ContentDisposition string
}

func (e *FormatDetectionError) Error() string {
	if e.ContentDisposition != "" {
		return fmt.Sprintf("could not determine compression type of %s (content-disposition: %s)", e.URL, e.ContentDisposition)
	}
	return fmt.Sprintf("could not determine compression type of %s", e.URL)
}

// ExtractionError represents a failure of the unpack tool
type ExtractionError struct {
	Format  string
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s archive %s: %v", e.Format, e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EmptyArchiveError indicates that nothing but filtered junk was extracted
type EmptyArchiveError struct {
	Dir     string
	Skipped []string
}

func (e *EmptyArchiveError) Error() string {
	if len(e.Skipped) > 0 {
		return fmt.Sprintf("%v in %s (ignored: %s)", ErrEmptyArchive, e.Dir, strings.Join(e.Skipped, ", "))
	}
	return fmt.Sprintf("%v in %s", ErrEmptyArchive, e.Dir)
}

func (e *EmptyArchiveError) Is(target error) bool {
	return target == ErrEmptyArchive
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// PipelineError wraps an uncategorized failure with the stage it happened in
type PipelineError struct {
	Stage  string
	Source string
	Err    error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s for %s: %v", e.Stage, e.Source, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a new PipelineError
func NewPipelineError(stage, source string, err error) *PipelineError {
	return &PipelineError{
		Stage:  stage,
		Source: source,
		Err:    err,
	}
}

// IsClassified reports whether err belongs to one of the named error kinds
// and can be propagated without further wrapping.
func IsClassified(err error) bool {
	var (
		procErr     *ProcessExecutionError
		gitErr      *GitOperationError
		downloadErr *DownloadError
		formatErr   *FormatDetectionError
		extractErr  *ExtractionError
		emptyErr    *EmptyArchiveError
		validErr    *ValidationError
		pipeErr     *PipelineError
	)
	return errors.As(err, &gitErr) ||
		errors.As(err, &procErr) ||
		errors.As(err, &downloadErr) ||
		errors.As(err, &formatErr) ||
		errors.As(err, &extractErr) ||
		errors.As(err, &emptyErr) ||
		errors.As(err, &validErr) ||
		errors.As(err, &pipeErr)
}

// ExitCode returns the exit status carried by a process failure, or -1
func ExitCode(err error) int {
	var procErr *ProcessExecutionError
	if errors.As(err, &procErr) {
		return procErr.ExitCode
	}
	return -1
}
