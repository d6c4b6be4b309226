package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRenameInPlace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "old.txt")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	target, err := RenameInPlace(src, "new.txt")
	if err != nil {
		t.Fatalf("RenameInPlace: %v", err)
	}
	if target != filepath.Join(dir, "new.txt") {
		t.Fatalf("target: got %q", target)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source still exists")
	}
	got, err := os.ReadFile(target)
	if err != nil || string(got) != "data" {
		t.Fatalf("content: %q err=%v", got, err)
	}
}

func TestRenameInPlaceRefusesCollision(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	existing := filepath.Join(dir, "b.txt")
	for _, p := range []string{src, existing} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := RenameInPlace(src, "b.txt"); err == nil {
		t.Fatal("expected collision error")
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatal("source should be untouched after refused rename")
	}
}

func TestRenameInPlaceMissingSource(t *testing.T) {
	if _, err := RenameInPlace(filepath.Join(t.TempDir(), "ghost.txt"), "x.txt"); err == nil {
		t.Fatal("expected error for missing source")
	}
}
