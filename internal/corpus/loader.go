// Package corpus loads the vessel corpus from tabular sources (CSV or
// parquet) and normalizes rows into typed records. Loading happens once
// at startup; everything downstream treats the corpus as immutable.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fleetscope/shipdex/internal/domain"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
)

// Options configures corpus loading.
type Options struct {
	// GroupColumn names the source column carrying the logical entity key.
	// Empty means the source has no group column and aggregation falls
	// back to the class|country|type tuple.
	GroupColumn string
}

// requiredColumns must be present in the source header.
var requiredColumns = []string{vessel.FieldCountry, vessel.FieldShipType}

// Load reads and normalizes a corpus file. The format is chosen by
// extension: .csv or .parquet.
func Load(path string, opts Options) (*vessel.Corpus, error) {
	var (
		rows []map[string]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".parquet":
		rows, err = readParquet(path)
	default:
		return nil, domain.NewDataSourceError(path, fmt.Errorf("unsupported format %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, domain.NewDataSourceError(path, err)
	}
	if len(rows) == 0 {
		return nil, domain.NewDataSourceError(path, fmt.Errorf("no records"))
	}
	if err := checkRequired(rows[0]); err != nil {
		return nil, domain.NewDataSourceError(path, err)
	}

	records := make([]vessel.Record, len(rows))
	group := canonicalColumn(opts.GroupColumn)
	for i, row := range rows {
		records[i] = normalizeRow(row, i, group)
	}
	return vessel.NewCorpus(records), nil
}

// canonicalColumn folds a source column name onto the schema spelling.
// Dataset exports have carried headers like "CIWS_count" for the
// lower-case schema field, so matching is case-insensitive.
func canonicalColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func checkRequired(row map[string]string) error {
	for _, col := range requiredColumns {
		if _, ok := row[col]; !ok {
			return fmt.Errorf("missing required column %q", col)
		}
	}
	return nil
}

// readCSV reads all rows keyed by the header line.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are padded with defaults

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = canonicalColumn(header[i])
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
