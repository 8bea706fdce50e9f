// Package cache persists metadata about local origins in BadgerDB.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/quantmind-br/archivepuller/internal/domain"
)

// Registry records every origin a pipeline run has published to
type Registry struct {
	db        *badger.DB
	stop      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewRegistry opens (or creates) the registry
func NewRegistry(opts Options) (*Registry, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			opts.Directory = filepath.Join(homeDir, ".archivepuller", "registry")
		}

		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, err
		}

		badgerOpts = badger.DefaultOptions(opts.Directory)
	}

	// Disable logging unless explicitly enabled
	if !opts.Logger {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	r := &Registry{db: db, stop: make(chan struct{}), now: time.Now}

	// Background value log garbage collection
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				_ = db.RunValueLogGC(0.5)
			}
		}
	}()

	return r, nil
}

// Record upserts the origin of a successful run, counting runs
func (r *Registry) Record(ctx context.Context, result *domain.PipelineResult, desc domain.SourceDescriptor) error {
	if result == nil {
		return errors.New("nil pipeline result")
	}
	key := []byte(OriginKey(desc.Provider, desc.URL))

	return r.db.Update(func(txn *badger.Txn) error {
		rec := domain.OriginRecord{}
		item, err := txn.Get(key)
		switch {
		case err == nil:
			if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &rec) }); err != nil {
				return fmt.Errorf("decode origin record: %w", err)
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		rec.Provider = desc.Provider
		rec.URL = desc.URL
		rec.Path = result.LocalOriginPath
		rec.Directory = result.ExtractedDirectoryName
		rec.HeadCommit = result.HeadCommit
		rec.Runs++
		rec.LastPulledAt = r.now().UTC()

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Get returns the record of one origin
func (r *Registry) Get(ctx context.Context, provider, url string) (*domain.OriginRecord, error) {
	var rec domain.OriginRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(OriginKey(provider, url)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrOriginNotFound
			}
			return err
		}
		return item.Value(func(v []byte) error { return json.Unmarshal(v, &rec) })
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns every record, ordered by provider then url
func (r *Registry) List(ctx context.Context) ([]domain.OriginRecord, error) {
	var records []domain.OriginRecord
	prefix := []byte(PrefixOrigin + ":")

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec domain.OriginRecord
			if err := it.Item().Value(func(v []byte) error { return json.Unmarshal(v, &rec) }); err != nil {
				return fmt.Errorf("decode origin record: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Provider != records[j].Provider {
			return records[i].Provider < records[j].Provider
		}
		return records[i].URL < records[j].URL
	})
	return records, nil
}

// Delete forgets an origin. The repository on disk is untouched.
func (r *Registry) Delete(ctx context.Context, provider, url string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(OriginKey(provider, url)))
	})
}

// Close releases registry resources
func (r *Registry) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stop)
		err = r.db.Close()
	})
	return err
}
