package preflight

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckAcquisitionDirOK(t *testing.T) {
	result := CheckAcquisitionDir(t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass: %+v", result)
	}
}

func TestCheckAcquisitionDirMissing(t *testing.T) {
	result := CheckAcquisitionDir(filepath.Join(t.TempDir(), "absent"))
	if result.Passed {
		t.Fatal("expected failure for missing directory")
	}
}

func TestCheckAcquisitionDirFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckAcquisitionDir(path)
	if result.Passed {
		t.Fatal("expected failure for regular file")
	}
}

func TestCheckDicomFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.dcm")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if result := CheckDicomFiles(nil); !result.Passed {
		t.Fatalf("empty series should pass: %+v", result)
	}
	if result := CheckDicomFiles([]string{path}); !result.Passed {
		t.Fatalf("readable file should pass: %+v", result)
	}
	if result := CheckDicomFiles([]string{filepath.Join(dir, "ghost.dcm")}); result.Passed {
		t.Fatal("missing file should fail")
	}
}

func TestFirstFailure(t *testing.T) {
	dir := t.TempDir()
	if err := FirstFailure(Run(dir, nil)); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}
	if err := FirstFailure(Run(filepath.Join(dir, "absent"), nil)); err == nil {
		t.Fatal("expected aggregated failure")
	}
}
