package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/manifest"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

// BatchHooks observe a running batch. Calls to both hooks are serialized.
type BatchHooks struct {
	// Progress receives the progress of every source, tagged with its index
	Progress func(index int, ev domain.ProgressEvent)
	// Done is called once per source that ran, as it finishes
	Done func(index int, res BatchResult)
}

// BatchResult represents the result of processing one manifest source
type BatchResult struct {
	Source   manifest.Source
	Result   *domain.PipelineResult
	Error    error
	Duration time.Duration
}

// BatchReport summarizes a finished batch in manifest order
type BatchReport struct {
	Results  []BatchResult
	Duration time.Duration
}

// Failed returns the number of sources that did not import
func (r *BatchReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Error != nil {
			n++
		}
	}
	return n
}

// Err collects the failure of every source that ran into one error, or
// returns nil. Sources cut short by the batch's own cancellation are left
// out; they are counted by Failed.
func (r *BatchReport) Err() error {
	var result *multierror.Error
	for _, res := range r.Results {
		if res.Error == nil || errors.Is(res.Error, context.Canceled) {
			continue
		}
		result = multierror.Append(result, fmt.Errorf("source %s: %w", res.Source.URL, res.Error))
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = joinErrors
	return result
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Batch imports every source of the manifest with a bounded worker pool.
// Without continue_on_error the first failure cancels the sources not yet
// finished. Sources sharing an origin contend for its lock and run one at
// a time.
func (a *App) Batch(ctx context.Context, m *manifest.Config, hooks BatchHooks) (*BatchReport, error) {
	startTime := time.Now()
	total := len(m.Sources)
	continueOnError := m.Options.ContinueOnError || a.config.Batch.ContinueOnError

	workers := m.Options.Workers
	if workers <= 0 {
		workers = a.config.Batch.Workers
	}

	a.logger.Info().
		Int("sources", total).
		Int("workers", workers).
		Bool("continue_on_error", continueOnError).
		Msg("Starting batch")

	report := &BatchReport{Results: make([]BatchResult, total)}
	if total == 0 {
		return report, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var hookMu sync.Mutex

	type indexed struct {
		source manifest.Source
		index  int
	}
	items := make([]indexed, total)
	for i, src := range m.Sources {
		items[i] = indexed{source: src, index: i}
	}

	errs := utils.ParallelForEach(runCtx, items, workers, func(ctx context.Context, item indexed) error {
		sourceStart := time.Now()
		idx := item.index

		a.logger.Info().
			Int("source_idx", idx).
			Str("source_url", item.source.URL).
			Int("total", total).
			Msg("Processing source")

		var emit domain.ProgressFunc
		if hooks.Progress != nil {
			emit = func(ev domain.ProgressEvent) {
				hookMu.Lock()
				defer hookMu.Unlock()
				hooks.Progress(idx, ev)
			}
		}

		res, err := a.Pull(ctx, item.source.Descriptor(), emit)
		result := BatchResult{
			Source:   item.source,
			Result:   res,
			Error:    err,
			Duration: time.Since(sourceStart),
		}
		report.Results[idx] = result
		if hooks.Done != nil {
			hookMu.Lock()
			hooks.Done(idx, result)
			hookMu.Unlock()
		}

		if err != nil {
			a.logger.Error().
				Err(err).
				Int("source_idx", idx).
				Str("source_url", item.source.URL).
				Msg("Source import failed")

			if !continueOnError {
				cancel()
			}
			return err
		}
		return nil
	})

	// Sources cancelled before they started never reached Pull
	for i, err := range errs {
		if err != nil && report.Results[i].Error == nil {
			report.Results[i] = BatchResult{Source: m.Sources[i], Error: err}
		}
	}
	report.Duration = time.Since(startTime)

	failed := report.Failed()
	a.logger.Info().
		Dur("total_duration", report.Duration).
		Int("total", total).
		Int("success", total-failed).
		Int("failed", failed).
		Msg("Batch completed")

	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	if err := report.Err(); err != nil {
		return report, fmt.Errorf("batch completed with %d/%d failures: %w", failed, total, err)
	}
	return report, nil
}
