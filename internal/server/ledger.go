package server

import (
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/source"
	"github.com/theirongolddev/fburn/internal/store"
)

const ledgerKey = "ledger"

// fileStamp identifies one version of a ledger file on disk.
type fileStamp struct {
	Path    string
	MtimeNs int64
	Size    int64
}

type ledgerEntry struct {
	ledger   model.Ledger
	stamps   []fileStamp
	loadedAt time.Time
}

// stampFiles fingerprints every ledger file under path.
func stampFiles(path string) ([]fileStamp, error) {
	files, err := source.ScanPath(path)
	if err != nil {
		return nil, err
	}
	stamps := make([]fileStamp, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.Path, err)
		}
		stamps = append(stamps, fileStamp{Path: f.Path, MtimeNs: info.ModTime().UnixNano(), Size: info.Size()})
	}
	return stamps, nil
}

func sameStamps(a, b []fileStamp) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ledger returns the parsed ledger, reloading when any file changed on disk
// or the memo expired. Concurrent reloads are collapsed into one.
func (s *Service) ledger() (ledgerEntry, error) {
	stamps, err := stampFiles(s.cfg.DataPath)
	if err != nil {
		return ledgerEntry{}, err
	}

	if v, ok := s.memo.Get(ledgerKey); ok {
		entry := v.(ledgerEntry)
		if sameStamps(entry.stamps, stamps) {
			return entry, nil
		}
	}

	v, err, _ := s.reloads.Do(ledgerKey, func() (any, error) {
		res, err := s.load()
		if err != nil {
			s.metrics.LedgerReloads.WithLabelValues("error").Inc()
			s.memo.Delete(ledgerKey)
			return nil, err
		}
		entry := ledgerEntry{ledger: res.Ledger, stamps: stamps, loadedAt: time.Now()}
		s.memo.Set(ledgerKey, entry, cache.DefaultExpiration)
		s.metrics.LedgerReloads.WithLabelValues("ok").Inc()
		s.metrics.Transactions.Set(float64(len(res.Ledger.Transactions)))
		s.log.Debug().
			Int("transactions", len(res.Ledger.Transactions)).
			Int("cache_hits", res.CacheHits).
			Int("reparsed", res.Reparsed).
			Msg("ledger reloaded")
		return entry, nil
	})
	if err != nil {
		return ledgerEntry{}, err
	}
	return v.(ledgerEntry), nil
}

func (s *Service) load() (*pipeline.LoadResult, error) {
	if s.cfg.UseCache {
		c, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = c.Close() }()
			res, loadErr := pipeline.LoadWithCache(s.cfg.DataPath, s.cfg.Columns, c, nil)
			if loadErr == nil {
				return res, nil
			}
			s.log.Warn().Err(loadErr).Msg("cached load failed, parsing directly")
		} else {
			s.log.Warn().Err(err).Msg("opening parse cache")
		}
	}
	return pipeline.Load(s.cfg.DataPath, s.cfg.Columns, nil)
}
