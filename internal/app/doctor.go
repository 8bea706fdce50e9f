package app

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/quantmind-br/archivepuller/internal/config"
	"github.com/quantmind-br/archivepuller/internal/origin"
)

// RequiredTools are the external programs a pull runs
var RequiredTools = []string{"git", "unzip", "tar"}

// Check is the outcome of one environment check
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// LookPathFunc resolves a program on PATH
type LookPathFunc func(file string) (string, error)

// Doctor checks that the required tools are installed and that the cache
// root can be written. A nil lookPath uses exec.LookPath.
func Doctor(cfg *config.Config, lookPath LookPathFunc) []Check {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	checks := make([]Check, 0, len(RequiredTools)+1)
	for _, tool := range RequiredTools {
		path, err := lookPath(tool)
		if err != nil {
			checks = append(checks, Check{Name: tool, Detail: "not found on PATH"})
			continue
		}
		checks = append(checks, Check{Name: tool, OK: true, Detail: path})
	}

	root := origin.Layout{ParentDir: cfg.Origin.ParentDir, CacheDirName: cfg.Origin.CacheDirName}.Root()
	checks = append(checks, writable("cache root", root))
	return checks
}

// Healthy reports whether every check passed
func Healthy(checks []Check) bool {
	for _, c := range checks {
		if !c.OK {
			return false
		}
	}
	return true
}

func writable(name, dir string) Check {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Check{Name: name, Detail: fmt.Sprintf("%s: %v", dir, err)}
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return Check{Name: name, Detail: fmt.Sprintf("%s: %v", dir, err)}
	}
	f.Close()
	os.Remove(f.Name())
	return Check{Name: name, OK: true, Detail: dir}
}
