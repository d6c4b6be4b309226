// Package preflight provides readiness checks run before the patch pass
// mutates an acquisition directory.
//
// The pass renames and deletes files in place with no undo, so an unreadable
// or read-only directory should stop the run before the first mutation rather
// than partway through.
package preflight

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Result is the outcome of one readiness check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckAcquisitionDir verifies the acquisition directory exists, is a
// directory, and is fully accessible for the in-place rewrite.
func CheckAcquisitionDir(path string) Result {
	const name = "acquisition directory"

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDicomFiles verifies the series descriptor's source files are readable.
// An empty series passes: the MT flip angle lookup simply resolves to no
// value.
func CheckDicomFiles(paths []string) Result {
	const name = "dicom series files"

	if len(paths) == 0 {
		return Result{Name: name, Passed: true, Detail: "no source files supplied"}
	}
	for _, path := range paths {
		if err := unix.Access(path, unix.R_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d files readable", len(paths))}
}

// Run evaluates all checks for one invocation.
func Run(acquisitionDir string, dicomFiles []string) []Result {
	return []Result{
		CheckAcquisitionDir(acquisitionDir),
		CheckDicomFiles(dicomFiles),
	}
}

// FirstFailure converts failed results into a single error, or nil when all
// checks passed.
func FirstFailure(results []Result) error {
	var failures []string
	for _, result := range results {
		if !result.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.New(strings.Join(failures, "; "))
}
