package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanPath discovers ledger files. path may be a single file (any extension)
// or a directory, in which case every *.csv below it is returned sorted by
// path. Returned paths are absolute.
func ScanPath(path string) ([]DiscoveredFile, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []DiscoveredFile{newDiscovered(path)}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".csv") {
			return nil
		}
		files = append(files, newDiscovered(p))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func newDiscovered(path string) DiscoveredFile {
	base := filepath.Base(path)
	return DiscoveredFile{
		Path: path,
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}
