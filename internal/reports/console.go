package reports

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Table prints one row per address with failures.
type Table struct {
	w io.Writer
}

// NewTable creates a console table reporter.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

// Report writes the table. Alerted rows are highlighted when colour is enabled.
func (t *Table) Report(_ context.Context, a *types.Analysis) error {
	if len(a.Results) == 0 {
		_, err := fmt.Fprintln(t.w, "No failed login attempts found.")
		return err
	}

	// Align first, colour afterwards: escape codes would skew tabwriter widths.
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "IP ADDRESS\tFAILURES\tLONGEST STREAK\tALERT")
	for _, r := range a.Results {
		alert := "no"
		if r.AlertTriggered {
			alert = "YES"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", r.IP, r.TotalFailures, r.LongestStreak, alert)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	header := color.New(color.Bold)
	alerted := color.New(color.FgRed, color.Bold)

	sc := bufio.NewScanner(&buf)
	for row := -1; sc.Scan(); row++ {
		line := sc.Text()
		var err error
		switch {
		case row < 0:
			_, err = header.Fprintln(t.w, line)
		case a.Results[row].AlertTriggered:
			_, err = alerted.Fprintln(t.w, line)
		default:
			_, err = fmt.Fprintln(t.w, line)
		}
		if err != nil {
			return err
		}
	}
	return sc.Err()
}

// Summary prints run totals followed by one line per alert.
type Summary struct {
	w io.Writer
	p *message.Printer
}

// NewSummary creates a console summary reporter.
func NewSummary(w io.Writer) *Summary {
	return &Summary{w: w, p: message.NewPrinter(language.English)}
}

// Report writes the summary.
func (s *Summary) Report(_ context.Context, a *types.Analysis) error {
	var buf bytes.Buffer
	p := s.p

	if a.Source != "" {
		p.Fprintf(&buf, "Source: %s\n", a.Source)
	}
	p.Fprintf(&buf, "Lines read: %d (matched %d, skipped %d)\n", a.Stats.Lines, a.Stats.Matched, a.Stats.Skipped)
	p.Fprintf(&buf, "Addresses with failures: %d\n", len(a.Results))
	p.Fprintf(&buf, "Total failed attempts: %d\n", a.TotalFailures())
	p.Fprintf(&buf, "Alerted addresses: %d\n", len(a.Alerted()))

	if len(a.Alerts) == 0 {
		p.Fprintf(&buf, "No IPs found with %d consecutive failures.\n", a.Threshold)
		_, err := buf.WriteTo(s.w)
		return err
	}

	if _, err := buf.WriteTo(s.w); err != nil {
		return err
	}

	warn := color.New(color.FgRed)
	for _, al := range a.Alerts {
		if _, err := warn.Fprintf(s.w, "ALERT: IP %s has failed %d consecutive times\n", al.IP, al.Streak); err != nil {
			return err
		}
	}
	return nil
}
