package sidecar

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bidspatch/internal/dicomseries"
	"bidspatch/internal/logging"
)

// Result records one applied (or planned, under dry run) sidecar patch.
type Result struct {
	Path   string
	Fields map[string]any
}

// PatchDirectory walks the acquisition subtree and merges the fixed metadata
// corrections into matching sidecars. The resolver supplies the MT flip angle
// and is consulted at most once, only when a neuromelanin sidecar is present.
// Under dry run the merged documents are not written back.
func PatchDirectory(dir string, resolve dicomseries.Resolver, logger *slog.Logger, dryRun bool) ([]Result, error) {
	logger = logging.NewComponentLogger(logger, "sidecar")

	var results []Result
	apply := func(pattern string, fields map[string]any) error {
		paths, err := findSidecars(dir, pattern)
		if err != nil {
			return err
		}
		for _, path := range paths {
			if !dryRun {
				if err := updateJSON(path, fields); err != nil {
					return fmt.Errorf("update sidecar %s: %w", path, err)
				}
			}
			logger.Info(
				"patched sidecar",
				logging.String(logging.FieldFile, filepath.Base(path)),
				logging.Any("fields", fields),
			)
			results = append(results, Result{Path: path, Fields: fields})
		}
		return nil
	}

	if err := apply("part-phase", map[string]any{"Units": "rad"}); err != nil {
		return nil, err
	}
	if err := apply("mt-off", map[string]any{"MTState": false}); err != nil {
		return nil, err
	}
	if err := apply("mt-on", map[string]any{"MTState": true}); err != nil {
		return nil, err
	}

	neuromelanin, err := findSidecars(dir, "neuromelaninMTw")
	if err != nil {
		return nil, err
	}
	if len(neuromelanin) > 0 && resolve != nil {
		flipAngle, ok, err := resolve()
		if err != nil {
			return nil, err
		}
		if ok {
			fields := map[string]any{"MTFlipAngle": flipAngle}
			for _, path := range neuromelanin {
				if !dryRun {
					if err := updateJSON(path, fields); err != nil {
						return nil, fmt.Errorf("update sidecar %s: %w", path, err)
					}
				}
				logger.Info(
					"patched sidecar",
					logging.String(logging.FieldFile, filepath.Base(path)),
					logging.Float64("MTFlipAngle", flipAngle),
				)
				results = append(results, Result{Path: path, Fields: fields})
			}
		}
	}

	return results, nil
}

// findSidecars returns every .json file under root whose base name contains
// the pattern substring, in walk order.
func findSidecars(root, pattern string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.EqualFold(filepath.Ext(name), ".json") && strings.Contains(name, pattern) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sidecars: %w", err)
	}
	return paths, nil
}

// updateJSON merges fields into the document at path, overwriting only the
// given keys. The document must be a JSON object.
func updateJSON(path string, fields map[string]any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	document := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &document); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	}
	for key, value := range fields {
		document[key] = value
	}

	encoded, err := json.MarshalIndent(document, "", "\t")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	encoded = append(encoded, '\n')

	return os.WriteFile(path, encoded, 0o644)
}
