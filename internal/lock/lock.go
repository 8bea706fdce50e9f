// Package lock serializes pipeline runs per source identity with file locks.
package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

var errBusy = errors.New("lock held")

// Locker hands out per-identity locks from a directory of lock files
type Locker struct {
	dir          string
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	logger       *utils.Logger
}

// Options contains options for creating a Locker
type Options struct {
	Dir          string
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Logger       *utils.Logger
}

// DefaultOptions returns default locker options for dir
func DefaultOptions(dir string) Options {
	return Options{
		Dir:          dir,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// New creates a new Locker
func New(opts Options) *Locker {
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 200 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 5 * time.Second
	}
	if opts.MaxDelay < opts.InitialDelay {
		opts.MaxDelay = opts.InitialDelay
	}
	if opts.Multiplier <= 1 {
		opts.Multiplier = 2.0
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Locker{
		dir:          opts.Dir,
		initialDelay: opts.InitialDelay,
		maxDelay:     opts.MaxDelay,
		multiplier:   opts.Multiplier,
		logger:       logger.WithComponent("lock"),
	}
}

// Lock is a held identity lock
type Lock struct {
	fl       *flock.Flock
	identity string
}

// Path returns the lock file path
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release unlocks. The lock file is left in place.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

// PathFor returns the lock file used for identity
func (k *Locker) PathFor(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return filepath.Join(k.dir, hex.EncodeToString(sum[:8])+".lock")
}

// newBackoff creates the polling schedule; it never gives up on its own
func (k *Locker) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = k.initialDelay
	b.MaxInterval = k.maxDelay
	b.Multiplier = k.multiplier
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(b, ctx)
}

// Acquire blocks until the lock for identity is held or ctx is done. A
// cancelled wait returns an error matching both domain.ErrLocked and the
// context error.
func (k *Locker) Acquire(ctx context.Context, identity string) (*Lock, error) {
	path := k.PathFor(identity)
	if err := utils.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	fl := flock.New(path)

	operation := func() error {
		ok, err := fl.TryLock()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errBusy
		}
		return nil
	}
	notify := func(_ error, wait time.Duration) {
		k.logger.Debug().Str("identity", identity).Dur("retry_in", wait).Msg("Waiting for origin lock")
	}

	if err := backoff.RetryNotify(operation, k.newBackoff(ctx), notify); err != nil {
		if errors.Is(err, errBusy) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w (%s): %w", domain.ErrLocked, identity, err)
		}
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}

	k.logger.Debug().Str("identity", identity).Str("path", fl.Path()).Msg("Lock acquired")
	return &Lock{fl: fl, identity: identity}, nil
}
