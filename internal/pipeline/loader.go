package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Ledger      model.Ledger
	TotalFiles  int
	ParsedFiles int
	CacheHits   int
	Reparsed    int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every ledger file under path.
// It uses a bounded worker pool for parallel parsing. The first malformed
// file aborts the load.
func Load(path string, cols model.Columns, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanPath(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, cols, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})

	parsed := make([]fileRows, len(files))
	for i, pr := range results {
		if pr.Err != nil {
			return nil, pr.Err
		}
		parsed[i] = fileRows{path: files[i].Path, header: pr.Columns, txs: pr.Transactions}
		result.ParsedFiles++
	}
	result.Reparsed = result.ParsedFiles

	result.Ledger = assemble(parsed, cols)
	return result, nil
}

// parseAll parses files in parallel, preserving input order in the output.
func parseAll(files []source.DiscoveredFile, cols model.Columns, done func(n int)) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx], cols)
				done(int(processed.Add(1)))
			}
		}()
	}

	wg.Wait()
	return results
}

type fileRows struct {
	path   string
	header model.Columns
	txs    []model.Transaction
}

// assemble concatenates per-file rows in path order and sorts by date,
// keeping file order for ties.
func assemble(files []fileRows, cols model.Columns) model.Ledger {
	ledger := model.Ledger{Columns: cols}

	var n int
	for _, f := range files {
		n += len(f.txs)
	}
	ledger.Transactions = make([]model.Transaction, 0, n)

	for i, f := range files {
		if i == 0 && f.header != (model.Columns{}) {
			ledger.Columns = f.header
		}
		ledger.Files = append(ledger.Files, f.path)
		ledger.Transactions = append(ledger.Transactions, f.txs...)
	}

	sort.SliceStable(ledger.Transactions, func(i, j int) bool {
		return ledger.Transactions[i].Date.Before(ledger.Transactions[j].Date)
	})
	return ledger
}
