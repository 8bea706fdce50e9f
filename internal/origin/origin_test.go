package origin

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/process"
)

// recordingExecutor records commands and optionally fails one of them.
// A successful init leaves a HEAD file behind like git does.
type recordingExecutor struct {
	mu     sync.Mutex
	calls  []process.Command
	failOn string
}

func (e *recordingExecutor) Run(_ context.Context, cmd process.Command, emit domain.LineFunc) error {
	e.mu.Lock()
	e.calls = append(e.calls, cmd)
	e.mu.Unlock()
	emit("$ " + cmd.String())
	if e.failOn != "" && strings.Contains(cmd.String(), e.failOn) {
		return domain.NewProcessExecutionError(cmd.Args, 1, errors.New("exit status 1"))
	}
	if len(cmd.Args) > 1 && cmd.Args[1] == "init" && cmd.Dir != "" {
		return os.WriteFile(filepath.Join(cmd.Dir, "HEAD"), []byte("ref: refs/heads/main\n"), 0644)
	}
	return nil
}

func (e *recordingExecutor) argv() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.calls))
	for i, c := range e.calls {
		out[i] = c.Args
	}
	return out
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func collect() (*[]string, domain.LineFunc) {
	var lines []string
	return &lines, func(l string) { lines = append(lines, l) }
}

func TestLayout_Path(t *testing.T) {
	t.Parallel()

	l := Layout{ParentDir: "/home/user", CacheDirName: ".archivepuller"}

	t.Run("deterministic", func(t *testing.T) {
		a := l.Path("web", "https://example.com/course.zip")
		b := l.Path("web", "https://example.com/course.zip")
		assert.Equal(t, a, b)
		assert.True(t, strings.HasPrefix(a, "/home/user/.archivepuller/targets/web/httpsexamplecomcoursezip-"))
	})

	t.Run("distinct identities never share a path", func(t *testing.T) {
		paths := map[string]bool{}
		for _, id := range [][2]string{
			{"web", "https://example.com/a.b"},
			{"web", "https://example.com/ab"},
			{"dropbox", "https://example.com/ab"},
			{"web", "https://example.com/a_b"},
		} {
			p := l.Path(id[0], id[1])
			assert.False(t, paths[p], "collision for %v", id)
			paths[p] = true
		}
	})

	t.Run("long urls stay within segment limit", func(t *testing.T) {
		p := l.Path("web", "https://example.com/"+strings.Repeat("x", 1000)+".zip")
		assert.LessOrEqual(t, len(filepath.Base(p)), 200)
	})

	t.Run("default cache dir name", func(t *testing.T) {
		assert.Equal(t, filepath.Join("/srv", DefaultCacheDirName), Layout{ParentDir: "/srv"}.Root())
		assert.Equal(t, "/srv/.archivepuller/locks", Layout{ParentDir: "/srv"}.LocksDir())
	})
}

func TestRepository_EnsureInitialized_Argv(t *testing.T) {
	t.Parallel()

	rec := &recordingExecutor{}
	repo := NewRepository(RepositoryOptions{Executor: rec})
	path := filepath.Join(t.TempDir(), "origin")

	lines, emit := collect()
	require.NoError(t, repo.EnsureInitialized(context.Background(), path, emit))

	assert.DirExists(t, path)
	assert.Equal(t, [][]string{{"git", "init", "--bare", "--initial-branch=main"}}, rec.argv())
	assert.Equal(t, path, rec.calls[0].Dir)
	assert.Equal(t, "Initializing repo ...", (*lines)[0])

	// second call is a no-op
	require.NoError(t, repo.EnsureInitialized(context.Background(), path, nil))
	assert.Len(t, rec.argv(), 1)
}

func TestRepository_EnsureInitialized_NotDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	repo := NewRepository(RepositoryOptions{Executor: &recordingExecutor{}})
	err := repo.EnsureInitialized(context.Background(), path, nil)
	assert.ErrorIs(t, err, domain.ErrNotDirectory)
}

func TestRepository_EnsureInitialized_Failure(t *testing.T) {
	t.Parallel()

	repo := NewRepository(RepositoryOptions{Executor: &recordingExecutor{failOn: "init"}})
	err := repo.EnsureInitialized(context.Background(), filepath.Join(t.TempDir(), "o"), nil)

	var gitErr *domain.GitOperationError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, "init", gitErr.Op)
	assert.Equal(t, 1, domain.ExitCode(err))
}

func TestRepository_EnsureInitialized_RetriesAfterFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "o")
	rec := &recordingExecutor{failOn: "init"}
	repo := NewRepository(RepositoryOptions{Executor: rec})

	require.Error(t, repo.EnsureInitialized(context.Background(), path, nil))
	assert.NoDirExists(t, path)

	rec.failOn = ""
	require.NoError(t, repo.EnsureInitialized(context.Background(), path, nil))

	argv := rec.argv()
	require.Len(t, argv, 2)
	assert.Equal(t, argv[0], argv[1])
	assert.DirExists(t, path)
}

func TestRepository_EnsureInitialized_EmptyDir(t *testing.T) {
	t.Parallel()

	path := t.TempDir()
	rec := &recordingExecutor{}
	repo := NewRepository(RepositoryOptions{Executor: rec})

	require.NoError(t, repo.EnsureInitialized(context.Background(), path, nil))
	require.Len(t, rec.argv(), 1)
	assert.Equal(t, "init", rec.argv()[0][1])
	assert.FileExists(t, filepath.Join(path, "HEAD"))
}

func TestRepository_EnsureInitialized_KeepsExistingDirOnFailure(t *testing.T) {
	t.Parallel()

	path := t.TempDir()
	repo := NewRepository(RepositoryOptions{Executor: &recordingExecutor{failOn: "init"}})

	require.Error(t, repo.EnsureInitialized(context.Background(), path, nil))
	assert.DirExists(t, path)
}

func TestRepository_EnsureInitialized_ExistingRepoSkipsInit(t *testing.T) {
	t.Parallel()

	path := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(path, "HEAD"), []byte("ref: refs/heads/main\n"), 0644))
	rec := &recordingExecutor{}
	repo := NewRepository(RepositoryOptions{Executor: rec})

	require.NoError(t, repo.EnsureInitialized(context.Background(), path, nil))
	assert.Empty(t, rec.argv())
}

func TestRepository_CloneInto_Argv(t *testing.T) {
	t.Parallel()

	staging := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.MkdirAll(staging, 0755))
	stale := filepath.Join(staging, "stale.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	rec := &recordingExecutor{}
	repo := NewRepository(RepositoryOptions{Executor: rec})
	require.NoError(t, repo.CloneInto(context.Background(), "/cache/origin", staging, nil))

	assert.NoFileExists(t, stale)
	assert.DirExists(t, staging)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"git", "clone", "file:///cache/origin", staging}, rec.calls[0].Args)
	assert.Equal(t, staging, rec.calls[0].Dir)
	assert.Contains(t, rec.calls[0].Env, "GIT_CONFIG_VALUE_0=main")
}

func TestPublisher_Publish_Argv(t *testing.T) {
	t.Parallel()

	rec := &recordingExecutor{}
	pub := NewPublisher(PublisherOptions{Executor: rec})
	require.NoError(t, pub.Publish(context.Background(), "/tmp/stage", nil))

	assert.Equal(t, [][]string{
		{"git", "add", "."},
		{"git", "-c", "user.email=archivepuller@archivepuller.local", "-c", "user.name=archivepuller",
			"commit", "-q", "-m", "archivepuller: import archive", "--allow-empty"},
		{"git", "push", "origin", "main"},
	}, rec.argv())
	for _, c := range rec.calls {
		assert.Equal(t, "/tmp/stage", c.Dir)
	}
}

func TestPublisher_Publish_AbortsOnFailure(t *testing.T) {
	t.Parallel()

	rec := &recordingExecutor{failOn: "commit"}
	pub := NewPublisher(PublisherOptions{
		Executor: rec,
		Identity: Identity{Name: "bot"},
	})

	err := pub.Publish(context.Background(), "/tmp/stage", nil)
	var gitErr *domain.GitOperationError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, "commit", gitErr.Op)
	assert.Len(t, rec.calls, 2, "push must not run after a failed commit")

	assert.Equal(t, "bot", pub.Identity().Name)
	assert.Equal(t, DefaultUserEmail, pub.Identity().Email)
}

func TestOrigin_RealGit(t *testing.T) {
	requireGit(t)
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	originPath := filepath.Join(dir, "origin")
	staging := filepath.Join(dir, "staging")

	repo := NewRepository(RepositoryOptions{})
	pub := NewPublisher(PublisherOptions{})

	require.NoError(t, repo.EnsureInitialized(ctx, originPath, nil))
	snap, err := Inspect(originPath)
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	for i := 1; i <= 2; i++ {
		require.NoError(t, repo.CloneInto(ctx, originPath, staging, nil))
		require.NoError(t, os.WriteFile(filepath.Join(staging, "readme.md"), []byte("v"+string(rune('0'+i))), 0644))
		require.NoError(t, pub.Publish(ctx, staging, nil))

		snap, err = Inspect(originPath)
		require.NoError(t, err)
		assert.Equal(t, i, snap.Commits)
		assert.Len(t, snap.Head, 40)
	}

	// identical content still yields a visible commit
	require.NoError(t, repo.CloneInto(ctx, originPath, staging, nil))
	require.NoError(t, pub.Publish(ctx, staging, nil))
	snap, err = Inspect(originPath)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Commits)
}

func TestInspect_MissingRepository(t *testing.T) {
	t.Parallel()

	_, err := Inspect(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
