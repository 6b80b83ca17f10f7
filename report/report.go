package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/devcybiko/junk-email/aggregate"
)

// Report is the finalized outcome of a scan: every address with its count in
// deterministic order, plus the addresses first sighted in this run.
type Report struct {
	Entries      []aggregate.Entry
	NewAddresses []string
}

// Build snapshots the aggregator into a report.
func Build(agg *aggregate.Aggregator) Report {
	return Report{
		Entries:      agg.Report(),
		NewAddresses: agg.NewAddresses(),
	}
}

// Render writes the plain-text report: a total-unique-address line followed
// by one row per address, ordered by count descending then address ascending.
// A positive top limits the rows shown; the total line always reflects the
// full count.
func (r Report) Render(w io.Writer, top int) error {
	if _, err := fmt.Fprintf(w, "Found %d unique email addresses\n\n", len(r.Entries)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-50s %s\n", "Email Address", "Count"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "------------------------------------------------------------"); err != nil {
		return err
	}

	for i, entry := range r.Entries {
		if top > 0 && i >= top {
			if _, err := fmt.Fprintf(w, "... and %d more\n", len(r.Entries)-top); err != nil {
				return err
			}
			break
		}
		if _, err := fmt.Fprintf(w, "%-50s %d\n", entry.Address, entry.Count); err != nil {
			return err
		}
	}

	return nil
}

// Print renders the report to the console with pterm headings.
func (r Report) Print(top int) {
	pterm.DefaultSection.Println("Address Frequency")
	_ = r.Render(os.Stdout, top)

	if len(r.NewAddresses) > 0 {
		pterm.DefaultSection.Printf("%d New This Run\n", len(r.NewAddresses))
		for _, addr := range r.NewAddresses {
			pterm.Info.Printf("  %s\n", addr)
		}
	}
}

// Save writes the full report to path as plain text, one address and its
// count per line, tab separated, in the same order as the console report.
func (r Report) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, entry := range r.Entries {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", entry.Address, entry.Count); err != nil {
			file.Close()
			return fmt.Errorf("write report file: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush report file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}

	return nil
}
