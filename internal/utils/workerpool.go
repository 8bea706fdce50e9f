package utils

import (
	"context"
	"sync"
)

// ParallelForEach executes fn for each item with at most workers goroutines.
// The returned slice is index-aligned with items. Items that never ran
// because ctx was cancelled carry ctx.Err().
func ParallelForEach[T any](ctx context.Context, items []T, workers int, fn func(context.Context, T) error) []error {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	errs := make([]error, len(items))
	ran := make([]bool, len(items))
	taskChan := make(chan int, len(items))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-taskChan:
					if !ok {
						return
					}
					err := fn(ctx, items[idx])
					mu.Lock()
					errs[idx] = err
					ran[idx] = true
					mu.Unlock()
				}
			}
		}()
	}

submit:
	for i := range items {
		select {
		case <-ctx.Done():
			break submit
		case taskChan <- i:
		}
	}

	close(taskChan)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for i := range items {
			if !ran[i] {
				errs[i] = err
			}
		}
	}

	return errs
}
