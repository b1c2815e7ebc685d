package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// cellString formats one cell for CSV. Numbers stay plain (no currency
// symbols or separators); nil renders as an empty field.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes one table, header first.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header for %s: %w", t.Name, err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range t.Columns {
			record[i] = ""
			if i < len(row) {
				record[i] = cellString(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row for %s: %w", t.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeasonCSVs writes every table to <dir>/<season>/<table>.csv.
func WriteSeasonCSVs(dir, season string, tables []Table) error {
	seasonDir := filepath.Join(dir, season)
	if err := os.MkdirAll(seasonDir, 0o755); err != nil {
		return fmt.Errorf("create season dir: %w", err)
	}
	for _, t := range tables {
		path := filepath.Join(seasonDir, t.Name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := WriteCSV(f, t); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		log.Debug().Str("season", season).Str("table", t.Name).Int("rows", len(t.Rows)).Msg("wrote csv")
	}
	return nil
}
