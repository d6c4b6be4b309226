package patcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bidspatch/internal/bidsname"
	"bidspatch/internal/config"
	"bidspatch/internal/dicomseries"
	"bidspatch/internal/fileutil"
	"bidspatch/internal/journal"
	"bidspatch/internal/logging"
	"bidspatch/internal/preflight"
	"bidspatch/internal/rules"
	"bidspatch/internal/runlock"
	"bidspatch/internal/services"
	"bidspatch/internal/sidecar"
)

// Patcher applies the filename rules and sidecar patches to acquisition
// directories.
type Patcher struct {
	cfg     *config.Config
	logger  *slog.Logger
	journal *journal.Store
	resolve func(dicomseries.Series) dicomseries.Resolver
}

// Summary reports what one pass did (or would do, under dry run).
type Summary struct {
	RunID    string
	DryRun   bool
	Renamed  int
	Deleted  int
	Sidecars int
}

// New constructs a patcher. The journal store may be nil, in which case
// actions are only logged.
func New(cfg *config.Config, store *journal.Store, logger *slog.Logger) *Patcher {
	return &Patcher{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "patcher"),
		journal: store,
		resolve: func(series dicomseries.Series) dicomseries.Resolver {
			return dicomseries.FlipAngleResolver(series, logger)
		},
	}
}

// WithResolverFactory overrides how the MT flip-angle resolver is built.
// Used in tests to avoid real DICOM files.
func (p *Patcher) WithResolverFactory(factory func(dicomseries.Series) dicomseries.Resolver) *Patcher {
	p.resolve = factory
	return p
}

// PatchAcquisition runs the full pass over dir for the given series.
func (p *Patcher) PatchAcquisition(ctx context.Context, dir string, series dicomseries.Series) (*Summary, error) {
	ctx = services.WithSeriesID(ctx, series.ID)
	dryRun := p.cfg.Patching.DryRun

	if err := preflight.FirstFailure(preflight.Run(dir, series.FilePaths)); err != nil {
		return nil, services.Wrap(services.ErrValidation, "patching", "preflight", err.Error(), nil)
	}

	lock, err := runlock.Acquire(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "patching", "lock directory", "", err)
	}
	defer func() { _ = lock.Release() }()

	summary := &Summary{DryRun: dryRun}
	if p.journal != nil {
		run, err := p.journal.BeginRun(ctx, series.ID, dir, dryRun)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "patching", "open journal run", "", err)
		}
		summary.RunID = run.ID
		ctx = services.WithRunID(ctx, run.ID)
	}

	logger := logging.WithContext(ctx, p.logger)
	logger.Info(
		"starting patch pass",
		logging.String("dir", dir),
		logging.Bool("dry_run", dryRun),
		logging.Int("dicom_files", len(series.FilePaths)),
	)

	if err := p.patchFileNames(ctx, dir, summary); err != nil {
		return nil, err
	}
	if err := p.patchSidecars(ctx, dir, series, summary); err != nil {
		return nil, err
	}

	if p.journal != nil {
		if err := p.journal.FinishRun(ctx, summary.RunID); err != nil {
			logger.Warn("failed to close journal run", logging.Error(err))
		}
	}

	logger.Info(
		"patch pass completed",
		logging.Int("renamed", summary.Renamed),
		logging.Int("deleted", summary.Deleted),
		logging.Int("sidecars", summary.Sidecars),
	)
	return summary, nil
}

// patchFileNames applies the rule pipeline to a snapshot of the directory
// listing. The snapshot is taken before any mutation so files renamed or
// deleted mid-pass cannot perturb the iteration.
func (p *Patcher) patchFileNames(ctx context.Context, dir string, summary *Summary) error {
	ctx = services.WithStage(ctx, "rename")
	logger := logging.WithContext(ctx, p.logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "patching", "list directory", "", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		name := bidsname.Parse(entry.Name())
		action, err := rules.Run(name)
		if err != nil {
			return services.Wrap(services.ErrValidation, "patching", "apply rules", entry.Name(), err)
		}

		path := filepath.Join(dir, entry.Name())
		switch {
		case action == rules.ActionDelete:
			logger.Info("removing file", logging.String(logging.FieldFile, entry.Name()))
			if !summary.DryRun {
				if err := os.Remove(path); err != nil {
					return services.Wrap(services.ErrFilesystem, "patching", "delete file", entry.Name(), err)
				}
			}
			p.record(ctx, journal.KindDelete, entry.Name(), "", "")
			summary.Deleted++

		case name.String() != entry.Name():
			newName := name.String()
			logger.Info(
				"renaming file",
				logging.String(logging.FieldFile, entry.Name()),
				logging.String("new_name", newName),
			)
			if !summary.DryRun {
				if _, err := fileutil.RenameInPlace(path, newName); err != nil {
					return services.Wrap(services.ErrFilesystem, "patching", "rename file", entry.Name(), err)
				}
			}
			p.record(ctx, journal.KindRename, entry.Name(), newName, "")
			summary.Renamed++
		}
	}
	return nil
}

func (p *Patcher) patchSidecars(ctx context.Context, dir string, series dicomseries.Series, summary *Summary) error {
	ctx = services.WithStage(ctx, "sidecar")

	results, err := sidecar.PatchDirectory(dir, p.resolve(series), logging.WithContext(ctx, p.logger), summary.DryRun)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "patching", "patch sidecars", "", err)
	}
	for _, result := range results {
		p.record(ctx, journal.KindSidecar, filepath.Base(result.Path), "", fieldsDetail(result.Fields))
	}
	summary.Sidecars = len(results)
	return nil
}

// record journals one action. Journal write failures are logged, not fatal;
// the filesystem mutation already happened and must stay reported.
func (p *Patcher) record(ctx context.Context, kind, source, target, detail string) {
	if p.journal == nil {
		return
	}
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		return
	}
	if err := p.journal.RecordAction(ctx, runID, kind, source, target, detail); err != nil {
		logging.WithContext(ctx, p.logger).Warn("failed to journal action", logging.Error(err))
	}
}

func fieldsDetail(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, fields[key]))
	}
	return strings.Join(parts, " ")
}
