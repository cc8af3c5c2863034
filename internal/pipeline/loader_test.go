package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/source"
	"github.com/theirongolddev/fburn/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_DirectoryMergesAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "date,Category,Transaction Amount\n2024-01-05,Rent,-1200\n2024-01-01,Salary,3000\n")
	writeFile(t, dir, "b.csv", "date,Category,Transaction Amount\n2024-01-03,Food,-50\n2024-01-01,Gift,20\n")

	var calls atomic.Int32
	res, err := Load(dir, model.DefaultColumns(), func(current, total int) {
		calls.Add(1)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalFiles)
	assert.Equal(t, 2, res.ParsedFiles)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, res.Ledger.Transactions, 4)

	var cats []string
	for _, tx := range res.Ledger.Transactions {
		cats = append(cats, tx.Category)
	}
	// Ties on 2024-01-01 keep file order.
	assert.Equal(t, []string{"Salary", "Gift", "Food", "Rent"}, cats)
	assert.Len(t, res.Ledger.Files, 2)
}

func TestLoad_MalformedAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "date,Category,Transaction Amount\n2024-01-01,Salary,3000\n")
	writeFile(t, dir, "b.csv", "date,Category,Transaction Amount\nnot-a-date,Food,-50\n")

	_, err := Load(dir, model.DefaultColumns(), nil)
	var mErr *source.MalformedInputError
	require.True(t, errors.As(err, &mErr), "err = %v", err)
	assert.Equal(t, 2, mErr.Line)
	assert.Equal(t, "b.csv", filepath.Base(mErr.File))
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), model.DefaultColumns(), nil)
	assert.Error(t, err)
}

func TestLoadWithCache(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "date,Category,Transaction Amount\n2024-01-01,Salary,3000\n")
	writeFile(t, dir, "b.csv", "date,Category,Transaction Amount\n2024-01-02,Food,-50.10\n")

	cache, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	cols := model.DefaultColumns()

	first, err := LoadWithCache(dir, cols, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)
	assert.Equal(t, 2, first.Reparsed)

	second, err := LoadWithCache(dir, cols, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
	assert.Equal(t, 0, second.Reparsed)
	assertSameTransactions(t, first.Ledger.Transactions, second.Ledger.Transactions)

	// Rewrite a.csv with a different size and mtime.
	require.NoError(t, os.WriteFile(a, []byte("date,Category,Transaction Amount\n2024-01-01,Salary,3100\n2024-01-03,Bonus,10\n"), 0o600))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(a, future, future))

	third, err := LoadWithCache(dir, cols, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.CacheHits)
	assert.Equal(t, 1, third.Reparsed)
	assert.Len(t, third.Ledger.Transactions, 3)
	assert.Equal(t, "3100", third.Ledger.Transactions[0].Amount.String())
}

func TestLoadWithCache_PrunesDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "date,Category,Transaction Amount\n2024-01-01,Salary,3000\n")
	b := writeFile(t, dir, "b.csv", "date,Category,Transaction Amount\n2024-01-02,Food,-50\n")

	cache, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	_, err = LoadWithCache(dir, model.DefaultColumns(), cache, nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(b))

	_, err = LoadWithCache(dir, model.DefaultColumns(), cache, nil)
	require.NoError(t, err)

	n, err := cache.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	cols := model.Columns{Date: "Date", Category: "Cat", Amount: "Amt"}
	require.NoError(t, WriteCSV(&buf, sampleLedger()[:2], cols))

	want := "Date,Cat,Amt\n2024-01-03,Salary,3000\n2024-01-05,Rent,-1200\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	txs := sampleLedger()
	require.NoError(t, WriteCSV(&buf, txs, model.DefaultColumns()))

	got, _, err := source.Parse(&buf, "export.csv", model.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, got, len(txs))
	for i := range txs {
		assert.True(t, got[i].Amount.Equal(txs[i].Amount))
		assert.True(t, got[i].Date.Equal(txs[i].Date))
	}
}

func assertSameTransactions(t *testing.T, want, got []model.Transaction) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, got[i].Date.Equal(want[i].Date), "[%d] date", i)
		assert.True(t, got[i].Amount.Equal(want[i].Amount), "[%d] amount %s != %s", i, got[i].Amount, want[i].Amount)
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.Equal(t, want[i].File, got[i].File)
		assert.Equal(t, want[i].Line, got[i].Line)
	}
}
