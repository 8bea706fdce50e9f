package extractor

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/testutil"
)

func header(cd string) http.Header {
	h := http.Header{}
	if cd != "" {
		h.Set("Content-Disposition", cd)
	}
	return h
}

func TestDetectFormat_Precedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		desc     domain.SourceDescriptor
		cd       string
		expected string
	}{
		{
			name:     "override wins over everything",
			desc:     domain.SourceDescriptor{URL: "https://example.com/a.zip", Overrides: domain.Overrides{Extension: ".TGZ"}},
			cd:       `attachment; filename="a.zip"`,
			expected: "tgz",
		},
		{
			name:     "content disposition wins over url",
			desc:     domain.SourceDescriptor{URL: "https://example.com/a.zip"},
			cd:       `attachment; filename="materials.tgz"`,
			expected: "tgz",
		},
		{
			name:     "url suffix as last resort",
			desc:     domain.SourceDescriptor{URL: "https://example.com/path/course.ZIP?dl=1"},
			expected: "zip",
		},
		{
			name:     "rfc5987 filename",
			desc:     domain.SourceDescriptor{URL: "https://docs.google.com/uc"},
			cd:       `attachment; filename*=UTF-8''caf%C3%A9.zip`,
			expected: "zip",
		},
		{
			name:     "unquoted filename followed by params",
			desc:     domain.SourceDescriptor{URL: "https://docs.google.com/uc"},
			cd:       `attachment; filename=data.tar.gz; size=10`,
			expected: "gz",
		},
		{
			name:     "disposition without extension falls through to url",
			desc:     domain.SourceDescriptor{URL: "https://example.com/a.tar"},
			cd:       `attachment; filename="README"`,
			expected: "tar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.desc, header(tt.cd))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDetectFormat_Failure(t *testing.T) {
	t.Parallel()

	desc := domain.SourceDescriptor{URL: "https://docs.google.com/uc"}
	_, err := DetectFormat(desc, header(`inline`))

	var fErr *domain.FormatDetectionError
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, "https://docs.google.com/uc", fErr.URL)
	assert.Equal(t, "inline", fErr.ContentDisposition)

	_, err = DetectFormat(domain.SourceDescriptor{URL: "https://example.com/"}, nil)
	assert.ErrorAs(t, err, &fErr)
}

func TestKnownFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "zip", KnownFormat(domain.SourceDescriptor{URL: "https://example.com/a.zip"}))
	assert.Equal(t, "tgz", KnownFormat(domain.SourceDescriptor{URL: "https://x/a", Overrides: domain.Overrides{Extension: "tgz"}}))
	assert.Equal(t, "", KnownFormat(domain.SourceDescriptor{URL: "https://drive.google.com/file/d/1/view"}))
}

func TestDispositionFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b.zip", DispositionFilename(`attachment; filename="a b.zip"`))
	assert.Equal(t, "x.tgz", DispositionFilename(`attachment;filename= x.tgz `))
	assert.Equal(t, "", DispositionFilename(""))
	assert.Equal(t, "", DispositionFilename("inline"))
}

func TestCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"unzip", "-qo", "/s/download.zip", "-d", "/s"}, Command("zip", "/s/download.zip", "/s").Args)
	assert.Equal(t, []string{"unzip", "-qo", "/s/download.zip", "-d", "/s"}, Command("ZIP", "/s/download.zip", "/s").Args)
	for _, f := range []string{"tgz", "gz", "tar", "bz2", "anything"} {
		assert.Equal(t, []string{"tar", "xzf", "/s/download", "-C", "/s"}, Command(f, "/s/download", "/s").Args, f)
	}
	assert.Equal(t, "/s", Command("zip", "a", "/s").Dir)
}

func TestUnarchive_Zip(t *testing.T) {
	testutil.RequireTools(t, "unzip")
	t.Parallel()

	dir := t.TempDir()
	archive := filepath.Join(dir, "download.zip")
	require.NoError(t, os.WriteFile(archive, testutil.ZipArchive(t,
		testutil.Entry{Name: "course/"},
		testutil.Entry{Name: "course/readme.md", Body: "# hi"},
	), 0644))

	e := New(Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, e.Unarchive(context.Background(), "zip", archive, dir, nil))

	data, err := os.ReadFile(filepath.Join(dir, "course", "readme.md"))
	require.NoError(t, err)
	assert.Equal(t, "# hi", string(data))
}

func TestUnarchive_TarGz(t *testing.T) {
	testutil.RequireTools(t, "tar")
	t.Parallel()

	dir := t.TempDir()
	archive := filepath.Join(dir, "download.tgz")
	require.NoError(t, os.WriteFile(archive, testutil.TarGzArchive(t,
		testutil.Entry{Name: "materials/"},
		testutil.Entry{Name: "materials/lesson.txt", Body: "one"},
	), 0644))

	e := New(Options{})
	require.NoError(t, e.Unarchive(context.Background(), "tgz", archive, dir, nil))
	assert.FileExists(t, filepath.Join(dir, "materials", "lesson.txt"))
}

func TestUnarchive_Corrupt(t *testing.T) {
	testutil.RequireTools(t, "tar")
	t.Parallel()

	dir := t.TempDir()
	archive := filepath.Join(dir, "download.tgz")
	require.NoError(t, os.WriteFile(archive, []byte("not an archive"), 0644))

	var lines []string
	e := New(Options{})
	err := e.Unarchive(context.Background(), "tgz", archive, dir, func(l string) { lines = append(lines, l) })

	var exErr *domain.ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "tgz", exErr.Format)
	assert.NotEqual(t, 0, domain.ExitCode(err))
	require.NotEmpty(t, lines)
	assert.Equal(t, "$ tar xzf "+archive+" -C "+dir, lines[0])
}
