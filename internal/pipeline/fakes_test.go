package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/origin"
)

var errInjected = errors.New("injected failure")

func processFailure(args ...string) error {
	return domain.NewProcessExecutionError(args, 1, errInjected)
}

type fakeRepo struct {
	mu         sync.Mutex
	failEnsure bool
	failClone  bool
	ensured    []string
	staging    string
}

func (f *fakeRepo) EnsureInitialized(_ context.Context, path string, emit domain.LineFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEnsure {
		return domain.NewGitOperationError("init", processFailure("git", "init"))
	}
	f.ensured = append(f.ensured, path)
	emit("Initializing repo ...")
	return os.MkdirAll(path, 0755)
}

func (f *fakeRepo) CloneInto(_ context.Context, _ string, staging string, emit domain.LineFunc) error {
	f.mu.Lock()
	f.staging = staging
	f.mu.Unlock()
	emit("Cloning repo ...")
	if f.failClone {
		return domain.NewGitOperationError("clone", processFailure("git", "clone"))
	}
	return os.MkdirAll(filepath.Join(staging, ".git"), 0755)
}

type fakePublisher struct {
	fail    bool
	entries []string
}

func (f *fakePublisher) Publish(_ context.Context, staging string, emit domain.LineFunc) error {
	emit("$ git add .")
	if f.fail {
		return domain.NewGitOperationError("push", processFailure("git", "push", "origin", "main"))
	}
	des, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, d := range des {
		f.entries = append(f.entries, d.Name())
	}
	return nil
}

// fakeExtractor materializes entries instead of unpacking
type fakeExtractor struct {
	fail    bool
	entries []string
	format  string
}

func (f *fakeExtractor) Unarchive(_ context.Context, format, archive, dest string, emit domain.LineFunc) error {
	f.format = format
	emit("$ unpack " + archive)
	if f.fail {
		return &domain.ExtractionError{Format: format, Archive: archive, Err: processFailure("unzip")}
	}
	for _, e := range f.entries {
		if err := os.MkdirAll(filepath.Join(dest, e), 0755); err != nil {
			return err
		}
	}
	return nil
}

type mockStrategy struct {
	mock.Mock
}

func (m *mockStrategy) Name() string { return "mock" }

func (m *mockStrategy) Fetch(ctx context.Context, req domain.FetchRequest, emit domain.LineFunc) (*domain.FetchResult, error) {
	args := m.Called(ctx, req, emit)
	res, _ := args.Get(0).(*domain.FetchResult)
	return res, args.Error(1)
}

// writesArchive makes a mocked Fetch create the destination file
func writesArchive() func(mock.Arguments) {
	return func(args mock.Arguments) {
		req := args.Get(1).(domain.FetchRequest)
		_ = os.WriteFile(req.Destination, []byte("archive"), 0644)
		args.Get(2).(domain.LineFunc)("Archive Downloaded....")
	}
}

type recordingRecorder struct {
	results []*domain.PipelineResult
	err     error
}

func (r *recordingRecorder) Record(_ context.Context, res *domain.PipelineResult, _ domain.SourceDescriptor) error {
	r.results = append(r.results, res)
	return r.err
}

func fixedInspect(head string) InspectFunc {
	return func(string) (*origin.Snapshot, error) {
		return &origin.Snapshot{Head: head, Commits: 1}, nil
	}
}
