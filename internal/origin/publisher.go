package origin

import (
	"context"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/process"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

// Default commit identity
const (
	DefaultUserName  = "archivepuller"
	DefaultUserEmail = "archivepuller@archivepuller.local"
	DefaultMessage   = "archivepuller: import archive"
)

// Identity is the bot identity recorded on published commits
type Identity struct {
	Name    string
	Email   string
	Message string
}

// DefaultIdentity returns the built-in commit identity
func DefaultIdentity() Identity {
	return Identity{Name: DefaultUserName, Email: DefaultUserEmail, Message: DefaultMessage}
}

// Publisher commits a staging clone and pushes it back to its origin
type Publisher struct {
	exec     process.Executor
	identity Identity
	logger   *utils.Logger
}

// PublisherOptions contains options for creating a Publisher
type PublisherOptions struct {
	Executor process.Executor
	Identity Identity
	Logger   *utils.Logger
}

// NewPublisher creates a new Publisher. Empty identity fields fall back to
// the defaults.
func NewPublisher(opts PublisherOptions) *Publisher {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	exec := opts.Executor
	if exec == nil {
		exec = process.NewRunner(process.RunnerOptions{Logger: logger})
	}

	id := opts.Identity
	def := DefaultIdentity()
	if id.Name == "" {
		id.Name = def.Name
	}
	if id.Email == "" {
		id.Email = def.Email
	}
	if id.Message == "" {
		id.Message = def.Message
	}

	return &Publisher{
		exec:     exec,
		identity: id,
		logger:   logger.WithComponent("publisher"),
	}
}

// Identity returns the identity commits are made with
func (p *Publisher) Identity() Identity {
	return p.identity
}

// Publish stages everything in stagingDir, commits (empty commits allowed)
// and pushes to the origin's main branch. The first failing step aborts.
func (p *Publisher) Publish(ctx context.Context, stagingDir string, emit domain.LineFunc) error {
	emit = orNop(emit)

	steps := []struct {
		op   string
		args []string
	}{
		{"add", []string{"git", "add", "."}},
		{"commit", []string{
			"git",
			"-c", "user.email=" + p.identity.Email,
			"-c", "user.name=" + p.identity.Name,
			"commit", "-q", "-m", p.identity.Message, "--allow-empty",
		}},
		{"push", []string{"git", "push", "origin", DefaultBranch}},
	}

	for _, step := range steps {
		cmd := process.Command{Args: step.args, Dir: stagingDir}
		if err := p.exec.Run(ctx, cmd, emit); err != nil {
			p.logger.Debug().Err(err).Str("op", step.op).Msg("Publish step failed")
			return domain.NewGitOperationError(step.op, err)
		}
	}
	return nil
}
