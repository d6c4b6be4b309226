package journal

import "time"

// Action kinds recorded by the patch pass.
const (
	KindRename  = "rename"
	KindDelete  = "delete"
	KindSidecar = "sidecar"
)

// Run is one invocation of the patch pass over an acquisition directory.
type Run struct {
	ID             string
	SeriesID       string
	AcquisitionDir string
	DryRun         bool
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Finished reports whether the run was closed cleanly.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// Action is a single filesystem or sidecar mutation within a run.
type Action struct {
	ID        int64
	RunID     string
	Kind      string
	Source    string
	Target    string
	Detail    string
	CreatedAt time.Time
}
