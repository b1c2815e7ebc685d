package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Record is one raw extract row keyed by canonical column name.
type Record map[string]string

// RawTable is a loaded extract: canonical column set plus rows. The zero
// value is a valid empty table.
type RawTable struct {
	File    string
	Columns []string
	Rows    []Record
}

// HasColumn reports whether the table carries the given canonical column.
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of required canonical columns the table
// lacks, in sorted order.
func (t *RawTable) MissingColumns(required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	return missing
}

// MissingColumnError reports required raw columns absent from a source file.
// This is the one unrecoverable ingestion failure: no heuristic can invent a
// missing source field.
type MissingColumnError struct {
	File    string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("extract %s is missing required columns: %s", e.File, strings.Join(e.Columns, ", "))
}

// ReadExtract loads a raw Famus CSV extract, normalizing headers onto the
// canonical vocabulary. Rows shorter than the header are padded with blanks;
// ragged extras are dropped.
func ReadExtract(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open extract %s: %w", path, err)
	}
	defer f.Close()
	return ReadExtractFrom(f, path)
}

// ReadExtractFrom is ReadExtract over an arbitrary reader; name is used only
// in error messages.
func ReadExtractFrom(r io.Reader, name string) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return &RawTable{File: name, Columns: []string{}, Rows: []Record{}}, nil
		}
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = CanonicalColumn(h)
	}

	rows := make([]Record, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		row := make(Record, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return &RawTable{File: name, Columns: columns, Rows: rows}, nil
}
