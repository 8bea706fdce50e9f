package pipeline

import (
	"context"

	"github.com/quantmind-br/archivepuller/internal/domain"
)

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context, desc domain.SourceDescriptor, progress domain.ProgressFunc) (*domain.PipelineResult, error)
}

var _ Runner = (*Orchestrator)(nil)

// Stream is a pipeline run consumed as an ordered event channel followed
// by a single terminal outcome.
type Stream struct {
	events chan domain.ProgressEvent
	done   chan struct{}
	cancel context.CancelFunc

	result *domain.PipelineResult
	err    error
}

// Start runs the pipeline in a goroutine. The run stops producing events
// while the consumer is not receiving.
func Start(ctx context.Context, r Runner, desc domain.SourceDescriptor) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		events: make(chan domain.ProgressEvent),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer cancel()
		send := func(ev domain.ProgressEvent) {
			select {
			case s.events <- ev:
			case <-ctx.Done():
			}
		}
		res, err := r.Run(ctx, desc, send)
		close(s.events)
		s.result, s.err = res, err
		close(s.done)
	}()

	return s
}

// Events returns the progress channel. It is closed before Wait returns.
func (s *Stream) Events() <-chan domain.ProgressEvent {
	return s.events
}

// Wait discards events not yet received and returns the terminal outcome.
// Every call returns the same outcome.
func (s *Stream) Wait() (*domain.PipelineResult, error) {
	for range s.events {
	}
	<-s.done
	return s.result, s.err
}

// Cancel abandons the run. Staging cleanup still happens; Wait reports the
// cancellation.
func (s *Stream) Cancel() {
	s.cancel()
}
