package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// readParquet streams every row group of a parquet file into header-keyed
// string rows. Column positions are resolved by leaf name so the file may
// carry columns in any order, with extras ignored.
func readParquet(path string) ([]map[string]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	// Leaf column index -> canonical column name.
	names := make(map[int]string)
	for i, colPath := range pf.Schema().Columns() {
		if len(colPath) > 0 {
			names[i] = canonicalColumn(colPath[0])
		}
	}

	var rows []map[string]string
	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		rr := parquet.NewRowGroupReader(rg)
		for {
			n, readErr := rr.ReadRows(buf)
			for i := 0; i < n; i++ {
				row := make(map[string]string, len(names))
				for _, v := range buf[i] {
					name, ok := names[v.Column()]
					if !ok || v.IsNull() {
						continue
					}
					row[name] = cellString(v)
				}
				rows = append(rows, row)
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return nil, fmt.Errorf("read rows: %w", readErr)
			}
		}
	}
	return rows, nil
}

// cellString renders a parquet value as the string form the normalizer
// expects, matching what the same cell would look like in CSV.
func cellString(v parquet.Value) string {
	switch v.Kind() {
	case parquet.Boolean:
		if v.Boolean() {
			return "y"
		}
		return "n"
	case parquet.Int32, parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float, parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	default:
		return v.String()
	}
}
