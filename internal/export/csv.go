// Package export writes transaction listings to CSV files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fintrack/internal/core"
)

// Header is the first row of every export.
var Header = []string{"ID", "Type", "Amount", "Category", "Date"}

const timestampLayout = "20060102_150405"

// maxSuffix bounds the search for a free file name within one second.
const maxSuffix = 1000

// Exporter writes CSV files into a directory.
type Exporter struct {
	dir string
	now func() time.Time
}

func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = "."
	}
	return &Exporter{dir: dir, now: time.Now}
}

// Result describes a finished export.
type Result struct {
	Path string
	Rows int
}

// Export writes txs, in the given order, to a new transactions_<timestamp>.csv
// file. Existing files are never overwritten.
func (e *Exporter) Export(txs []core.Transaction) (Result, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return Result{}, fmt.Errorf("create export directory: %w", err)
	}

	f, path, err := e.createUnique()
	if err != nil {
		return Result{}, err
	}

	if err := Write(f, txs); err != nil {
		f.Close()
		os.Remove(path)
		return Result{}, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return Result{}, fmt.Errorf("close export file: %w", err)
	}

	return Result{Path: path, Rows: len(txs)}, nil
}

func (e *Exporter) createUnique() (*os.File, string, error) {
	base := "transactions_" + e.now().Format(timestampLayout)
	for i := 0; i < maxSuffix; i++ {
		name := base
		if i > 0 {
			name += "_" + strconv.Itoa(i)
		}
		path := filepath.Join(e.dir, name+".csv")
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("create export file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("create export file: no free name for %s", base)
}

// Write emits the header and one row per transaction.
func Write(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txs {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			string(t.Kind),
			core.FormatAmount(t.Amount),
			t.Category,
			t.Date.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
