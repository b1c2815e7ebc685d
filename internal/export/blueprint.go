package export

import (
	"fmt"
	"io"
	"time"
)

// WriteBlueprint renders a Markdown document describing every generated
// table: the report consumers' map of what each file contains.
func WriteBlueprint(w io.Writer, seasons []string, tables []Table, now time.Time) error {
	if _, err := fmt.Fprintf(w, "# Famus Report Analysis — Data Blueprint\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Generated: %s\n\nSeasons covered:\n\n", now.Format("2006-01-02")); err != nil {
		return err
	}
	for _, s := range seasons {
		if _, err := fmt.Fprintf(w, "* %s\n", s); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\nEach season directory contains one CSV per table below, plus an Excel workbook\ncombining all of them and a quality-control report.\n"); err != nil {
		return err
	}
	for _, t := range tables {
		if _, err := fmt.Fprintf(w, "\n## %s\n\n%s\n\nColumns:\n\n", t.Name, t.Description); err != nil {
			return err
		}
		for _, c := range t.Columns {
			if _, err := fmt.Fprintf(w, "* `%s`\n", c); err != nil {
				return err
			}
		}
	}
	return nil
}
