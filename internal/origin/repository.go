package origin

import (
	"context"
	"fmt"
	"os"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/process"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

// DefaultBranch is the branch every origin is created with and pushed to
const DefaultBranch = "main"

// cloneEnv pins the default branch of a clone taken from an empty origin
var cloneEnv = []string{
	"GIT_CONFIG_COUNT=1",
	"GIT_CONFIG_KEY_0=init.defaultBranch",
	"GIT_CONFIG_VALUE_0=" + DefaultBranch,
}

// Repository creates origins and clones them into staging directories
type Repository struct {
	exec   process.Executor
	logger *utils.Logger
}

// RepositoryOptions contains options for creating a Repository
type RepositoryOptions struct {
	Executor process.Executor
	Logger   *utils.Logger
}

// NewRepository creates a new Repository
func NewRepository(opts RepositoryOptions) *Repository {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	exec := opts.Executor
	if exec == nil {
		exec = process.NewRunner(process.RunnerOptions{Logger: logger})
	}
	return &Repository{
		exec:   exec,
		logger: logger.WithComponent("origin"),
	}
}

// EnsureInitialized creates a bare repository at path unless something is
// already there. An existing non-directory is an error.
func (r *Repository) EnsureInitialized(ctx context.Context, path string, emit domain.LineFunc) error {
	emit = orNop(emit)

	created := false
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("%s: %w", path, domain.ErrNotDirectory)
		}
		entries, rerr := os.ReadDir(path)
		if rerr != nil {
			return fmt.Errorf("read origin dir: %w", rerr)
		}
		if len(entries) > 0 {
			r.logger.Debug().Str("path", path).Msg("Origin already exists")
			return nil
		}
	case os.IsNotExist(err):
		created = true
	default:
		return fmt.Errorf("stat origin: %w", err)
	}

	emit("Initializing repo ...")
	r.logger.Info().Str("path", path).Msg("Creating local origin")
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("create origin dir: %w", err)
	}

	cmd := process.Command{
		Args: []string{"git", "init", "--bare", "--initial-branch=" + DefaultBranch},
		Dir:  path,
	}
	if err := r.exec.Run(ctx, cmd, emit); err != nil {
		// A half-made origin would pass the existence check on the next run.
		if created {
			if rerr := os.RemoveAll(path); rerr != nil {
				r.logger.Warn().Err(rerr).Str("path", path).Msg("Failed to remove origin after init failure")
			}
		}
		return domain.NewGitOperationError("init", err)
	}
	return nil
}

// CloneInto replaces stagingDir with a fresh clone of the origin at path
func (r *Repository) CloneInto(ctx context.Context, path, stagingDir string, emit domain.LineFunc) error {
	emit = orNop(emit)

	emit("Cloning repo ...")
	if err := os.RemoveAll(stagingDir); err != nil {
		return fmt.Errorf("clear staging dir: %w", err)
	}
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	r.logger.Debug().Str("origin", path).Str("staging", stagingDir).Msg("Cloning origin")

	cmd := process.Command{
		Args: []string{"git", "clone", "file://" + path, stagingDir},
		Dir:  stagingDir,
		Env:  cloneEnv,
	}
	if err := r.exec.Run(ctx, cmd, emit); err != nil {
		return domain.NewGitOperationError("clone", err)
	}
	return nil
}

func orNop(emit domain.LineFunc) domain.LineFunc {
	if emit == nil {
		return func(string) {}
	}
	return emit
}
