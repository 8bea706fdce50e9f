package testutil

import (
	"io"
	"os/exec"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quantmind-br/archivepuller/internal/utils"
)

// RequireTools skips the test unless every named binary is on PATH
func RequireTools(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not installed", name)
		}
	}
}

// NewTestLogger creates a discarding logger tagged with the test name
func NewTestLogger(t *testing.T) *utils.Logger {
	t.Helper()

	zlogger := zerolog.New(io.Discard).With().
		Timestamp().
		Str("test", t.Name()).
		Logger()

	return &utils.Logger{Logger: zlogger}
}
