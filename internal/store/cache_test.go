package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveLoadFile(t *testing.T) {
	c := openTestCache(t)

	header := model.Columns{Date: "Date", Category: "category", Amount: "amount"}
	txs := []model.Transaction{
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Category: "Salary", Amount: decimal.RequireFromString("3000.10"), Line: 2},
		{Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Category: "Food", Amount: decimal.RequireFromString("-0.015"), Line: 3},
	}
	fi := FileInfo{MtimeNs: 123, SizeBytes: 456}

	if err := c.SaveFile("/tmp/a.csv", fi, header, txs); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	got, gotHeader, err := c.LoadFile("/tmp/a.csv")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if gotHeader != header {
		t.Errorf("header = %+v, want %+v", gotHeader, header)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for i := range txs {
		if !got[i].Amount.Equal(txs[i].Amount) {
			t.Errorf("[%d] Amount = %s, want %s", i, got[i].Amount, txs[i].Amount)
		}
		if !got[i].Date.Equal(txs[i].Date) {
			t.Errorf("[%d] Date = %v, want %v", i, got[i].Date, txs[i].Date)
		}
		if got[i].Line != txs[i].Line || got[i].Category != txs[i].Category {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], txs[i])
		}
		if got[i].File != "/tmp/a.csv" {
			t.Errorf("[%d] File = %q", i, got[i].File)
		}
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	if tracked["/tmp/a.csv"] != fi {
		t.Errorf("tracked = %+v, want %+v", tracked["/tmp/a.csv"], fi)
	}
}

func TestSaveFile_Replaces(t *testing.T) {
	c := openTestCache(t)
	row := func(line int) model.Transaction {
		return model.Transaction{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Category: "x", Amount: decimal.NewFromInt(1), Line: line}
	}

	if err := c.SaveFile("f.csv", FileInfo{1, 1}, model.DefaultColumns(), []model.Transaction{row(2), row(3), row(4)}); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveFile("f.csv", FileInfo{2, 2}, model.DefaultColumns(), []model.Transaction{row(2)}); err != nil {
		t.Fatal(err)
	}

	n, err := c.TransactionCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("TransactionCount = %d, want 1", n)
	}
}

func TestDeleteFile(t *testing.T) {
	c := openTestCache(t)
	if err := c.SaveFile("f.csv", FileInfo{1, 1}, model.DefaultColumns(), nil); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteFile("f.csv"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.LoadFile("f.csv"); !errors.Is(err, ErrNotCached) {
		t.Errorf("LoadFile err = %v, want ErrNotCached", err)
	}
}

func TestFileInfoMatches(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.csv")
	if err := os.WriteFile(p, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}

	fi := FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
	if !fi.Matches(info) {
		t.Error("expected match")
	}
	fi.SizeBytes++
	if fi.Matches(info) {
		t.Error("expected mismatch after size change")
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SaveFile("f.csv", FileInfo{1, 1}, model.DefaultColumns(), nil); err != nil {
		t.Fatal(err)
	}
	_ = c.Close()

	c, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = c.Close() }()

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tracked["f.csv"]; !ok {
		t.Error("tracked file lost across reopen")
	}
}
