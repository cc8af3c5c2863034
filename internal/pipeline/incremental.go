package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/source"
	"github.com/theirongolddev/fburn/internal/store"
)

// LoadWithCache discovers, diffs against cache, parses only changed files,
// and returns the combined ledger. Cache write failures are ignored; the
// CSV files stay authoritative.
func LoadWithCache(path string, cols model.Columns, cache *store.Cache, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanPath(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	parsed := make([]fileRows, len(files))
	infos := make([]os.FileInfo, len(files))
	var toReparse []int

	for i, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.Path, err)
		}
		infos[i] = info

		fi, ok := tracked[f.Path]
		if !ok || !fi.Matches(info) {
			toReparse = append(toReparse, i)
			continue
		}

		txs, header, err := cache.LoadFile(f.Path)
		if err != nil || !source.HeaderSatisfies(header, cols) {
			toReparse = append(toReparse, i)
			continue
		}
		parsed[i] = fileRows{path: f.Path, header: header, txs: txs}
		result.CacheHits++
	}

	result.Reparsed = len(toReparse)
	if progressFn != nil && result.CacheHits > 0 {
		progressFn(result.CacheHits, result.TotalFiles)
	}

	if len(toReparse) > 0 {
		changed := make([]source.DiscoveredFile, len(toReparse))
		for j, i := range toReparse {
			changed[j] = files[i]
		}

		results := parseAll(changed, cols, func(n int) {
			if progressFn != nil {
				progressFn(n+result.CacheHits, result.TotalFiles)
			}
		})

		for j, pr := range results {
			i := toReparse[j]
			if pr.Err != nil {
				_ = cache.DeleteFile(files[i].Path)
				return nil, pr.Err
			}
			parsed[i] = fileRows{path: files[i].Path, header: pr.Columns, txs: pr.Transactions}

			fi := store.FileInfo{MtimeNs: infos[i].ModTime().UnixNano(), SizeBytes: infos[i].Size()}
			_ = cache.SaveFile(files[i].Path, fi, pr.Columns, pr.Transactions)
		}
	}

	result.ParsedFiles = len(files)
	pruneMissing(cache, path, tracked, files)

	result.Ledger = assemble(parsed, cols)
	return result, nil
}

// pruneMissing drops tracked files under a scanned directory that no longer exist.
func pruneMissing(cache *store.Cache, root string, tracked map[string]store.FileInfo, files []source.DiscoveredFile) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return
	}
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f.Path] = struct{}{}
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	prefix := filepath.Clean(root) + string(filepath.Separator)
	for p := range tracked {
		if _, ok := present[p]; ok || !strings.HasPrefix(p, prefix) {
			continue
		}
		_ = cache.DeleteFile(p)
	}
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "fburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "fburn")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "ledger.db")
}
