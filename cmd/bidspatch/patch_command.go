package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bidspatch/internal/dicomseries"
	"bidspatch/internal/journal"
	"bidspatch/internal/patcher"
)

func newPatchCommand(ctx *commandContext) *cobra.Command {
	var seriesID string
	var dicomDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "patch <acquisition-dir>",
		Short: "Apply filename and sidecar patches to one acquisition directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			dir, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve acquisition directory: %w", err)
			}

			series := dicomseries.Series{ID: strings.TrimSpace(seriesID)}
			if series.ID == "" {
				series.ID = filepath.Base(dir)
			}
			if dicomDir != "" {
				files, err := dicomseries.CollectFiles(dicomDir)
				if err != nil {
					return err
				}
				series.FilePaths = files
			}

			if cmd.Flags().Changed("dry-run") {
				cfg.Patching.DryRun = dryRun
			}

			return ctx.withJournal(func(store *journal.Store) error {
				summary, err := patcher.New(cfg, store, logger).PatchAcquisition(cmd.Context(), dir, series)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if summary.DryRun {
					fmt.Fprintln(out, "Dry run: no files were modified")
				}
				fmt.Fprintf(out, "Renamed:  %d\n", summary.Renamed)
				fmt.Fprintf(out, "Deleted:  %d\n", summary.Deleted)
				fmt.Fprintf(out, "Sidecars: %d\n", summary.Sidecars)
				if summary.RunID != "" {
					fmt.Fprintf(out, "Run:      %s\n", summary.RunID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&seriesID, "series-id", "", "Series identifier recorded in the journal (defaults to the directory name)")
	cmd.Flags().StringVar(&dicomDir, "dicom-dir", "", "Directory of source DICOM files for MT flip-angle extraction")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log and journal decisions without touching the filesystem")
	return cmd
}
