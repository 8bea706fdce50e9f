// Package process runs external commands and streams their merged output
// line by line.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

// maxLineSize bounds a single output line. Longer lines are emitted in
// maxLineSize pieces.
const maxLineSize = 1024 * 1024

// Command describes one process invocation
type Command struct {
	Args []string
	Dir  string
	// Env entries are appended to the parent environment
	Env []string
}

// String returns the command line as echoed to progress output
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Executor runs commands and streams their output
type Executor interface {
	Run(ctx context.Context, cmd Command, emit domain.LineFunc) error
}

// Runner is the os/exec backed Executor
type Runner struct {
	logger *utils.Logger
}

// RunnerOptions contains options for creating a Runner
type RunnerOptions struct {
	Logger *utils.Logger
}

// NewRunner creates a new Runner
func NewRunner(opts RunnerOptions) *Runner {
	return &Runner{logger: opts.Logger}
}

var _ Executor = (*Runner)(nil)

// Run starts cmd with stdout and stderr merged, emits "$ <cmd>" followed by
// every output line as it arrives, and waits for the process. A non-zero
// exit returns a *domain.ProcessExecutionError.
func (r *Runner) Run(ctx context.Context, cmd Command, emit domain.LineFunc) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("empty command")
	}
	if emit == nil {
		emit = func(string) {}
	}

	emit("$ " + cmd.String())
	if r.logger != nil {
		r.logger.Debug().Strs("args", cmd.Args).Str("dir", cmd.Dir).Msg("Running command")
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	pr, pw := io.Pipe()
	c.Stdout = pw
	c.Stderr = pw

	if err := c.Start(); err != nil {
		pw.Close()
		pr.Close()
		return domain.NewProcessExecutionError(cmd.Args, 0, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := c.Wait()
		pw.Close()
		waitErr <- err
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	scanner.Split(boundedSplit(maxLineSize))
	for scanner.Scan() {
		emit(decodeLine(scanner.Bytes()))
	}
	if err := scanner.Err(); err != nil && r.logger != nil {
		r.logger.Warn().Err(err).Str("cmd", cmd.String()).Msg("Output stream interrupted")
	}
	// Keep draining so the process never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, pr)

	if err := <-waitErr; err != nil {
		code := 0
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return domain.NewProcessExecutionError(cmd.Args, code, err)
	}
	return nil
}
