package dicomseries

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Series identifies one DICOM acquisition: a series identifier plus the
// ordered paths of its source files.
type Series struct {
	ID        string
	FilePaths []string
}

// dicomExtensions are the file suffixes CollectFiles accepts. Files without an
// extension are also accepted, since many archives store DICOMs bare.
var dicomExtensions = map[string]struct{}{
	".dcm": {},
	".ima": {},
}

// CollectFiles builds the ordered file list for a series from a directory of
// DICOM files. Ordering is lexicographic, which matches the instance numbering
// scheme the scanner exporter uses.
func CollectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dicom directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != "" {
			if _, ok := dicomExtensions[ext]; !ok {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
