package extractor

import (
	"context"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/process"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

// Extractor unpacks downloaded archives
type Extractor struct {
	exec   process.Executor
	logger *utils.Logger
}

// Options contains options for creating an Extractor
type Options struct {
	Executor process.Executor
	Logger   *utils.Logger
}

// New creates a new Extractor
func New(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	exec := opts.Executor
	if exec == nil {
		exec = process.NewRunner(process.RunnerOptions{Logger: logger})
	}
	return &Extractor{exec: exec, logger: logger.WithComponent("extractor")}
}

// Command returns the unpack command for format. zip goes through unzip,
// every other format through tar xzf.
func Command(format, archive, dest string) process.Command {
	if NormalizeExtension(format) == FormatZip {
		return process.Command{Args: []string{"unzip", "-qo", archive, "-d", dest}, Dir: dest}
	}
	return process.Command{Args: []string{"tar", "xzf", archive, "-C", dest}, Dir: dest}
}

// Unarchive unpacks archive into dest
func (e *Extractor) Unarchive(ctx context.Context, format, archive, dest string, emit domain.LineFunc) error {
	if emit == nil {
		emit = func(string) {}
	}
	cmd := Command(format, archive, dest)
	e.logger.Debug().Str("format", format).Str("archive", archive).Msg("Unpacking archive")

	if err := e.exec.Run(ctx, cmd, emit); err != nil {
		return &domain.ExtractionError{Format: format, Archive: archive, Err: err}
	}
	return nil
}
