package journal

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "1.2.3", "/data/acq", false)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run id missing")
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if fetched.Finished() {
		t.Fatal("run should be unfinished")
	}
	if fetched.SeriesID != "1.2.3" || fetched.AcquisitionDir != "/data/acq" {
		t.Fatalf("run fields: %+v", fetched)
	}

	if err := store.FinishRun(ctx, run.ID); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	fetched, err = store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun after finish: %v", err)
	}
	if !fetched.Finished() {
		t.Fatal("run should be finished")
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	if err := store.FinishRun(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestRecordAndListActions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "series", "/acq", true)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	if err := store.RecordAction(ctx, run.ID, KindDelete, "sub-01_ROI1.nii.gz", "", ""); err != nil {
		t.Fatalf("RecordAction delete: %v", err)
	}
	if err := store.RecordAction(ctx, run.ID, KindRename, "sub-01_e2_bold.nii.gz", "sub-01_echo-2_bold.nii.gz", ""); err != nil {
		t.Fatalf("RecordAction rename: %v", err)
	}
	if err := store.RecordAction(ctx, run.ID, KindSidecar, "sub-01_mt-off_MTR.json", "", "MTState=false"); err != nil {
		t.Fatalf("RecordAction sidecar: %v", err)
	}

	actions, err := store.RunActions(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunActions: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("actions: got %d", len(actions))
	}
	if actions[0].Kind != KindDelete || actions[1].Kind != KindRename || actions[2].Kind != KindSidecar {
		t.Fatalf("order wrong: %+v", actions)
	}
	if actions[1].Target != "sub-01_echo-2_bold.nii.gz" {
		t.Fatalf("rename target: %q", actions[1].Target)
	}
	if actions[0].Target != "" {
		t.Fatalf("delete target should be empty, got %q", actions[0].Target)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.BeginRun(ctx, "s1", "/a", false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.BeginRun(ctx, "s2", "/b", false)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs: got %d", len(runs))
	}
	// Same-timestamp ties are possible; accept either strict order but demand
	// both runs present.
	ids := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Fatalf("missing runs: %+v", runs)
	}

	limited, err := store.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored: got %d", len(limited))
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	store, err := OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	run, err := store.BeginRun(context.Background(), "s", "/a", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetRun(context.Background(), run.ID); err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
}
