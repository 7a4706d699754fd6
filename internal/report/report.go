// Package report renders diff results and listings for the terminal.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"pathit/internal/snapshot"
)

// Lines writes one "<symbol> <path>" line per change, in the order given.
func Lines(w io.Writer, changes snapshot.Changes) error {
	bw := bufio.NewWriter(w)
	for _, c := range changes {
		if _, err := fmt.Fprintf(bw, "%s %s\n", c.Kind.Symbol(), c.Path); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Document is the JSON form of a diff.
type Document struct {
	Mode    string           `json:"mode"`
	Counts  snapshot.Counts  `json:"counts"`
	Changes snapshot.Changes `json:"changes"`
}

// JSON writes changes as an indented Document.
func JSON(w io.Writer, mode snapshot.Mode, changes snapshot.Changes) error {
	doc := Document{
		Mode:    mode.String(),
		Counts:  changes.Counts(),
		Changes: changes,
	}
	if doc.Changes == nil {
		doc.Changes = snapshot.Changes{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Summary writes a single human line with per-kind totals.
func Summary(w io.Writer, changes snapshot.Changes) error {
	c := changes.Counts()
	if c.Total() == 0 {
		_, err := fmt.Fprintln(w, "no differences")
		return err
	}
	_, err := fmt.Fprintf(w, "%d new, %d absent, %d changed (%d total)\n",
		c.New, c.Absent, c.Changed, c.Total())
	return err
}
