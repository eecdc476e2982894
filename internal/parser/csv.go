package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
	"golang.org/x/text/unicode/norm"
)

// CSV columns in the order they are written.
var csvHeader = []string{"date", "status", "user", "ip"}

// WriteCSV writes entries with a header row. Dates keep their original syslog form.
func WriteCSV(w io.Writer, entries []types.LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, e := range entries {
		raw := e.RawTimestamp
		if raw == "" {
			raw = e.Timestamp.Format("Jan _2 15:04:05")
		}
		if err := cw.Write([]string{raw, string(e.Status), e.Username, e.SourceIP}); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV reads entries previously written by WriteCSV. Columns are located by
// header name; "user" is optional. Rows with an unknown status, an invalid date
// or an invalid address are skipped.
func (p *Parser) ReadCSV(r io.Reader) ([]types.LogEntry, types.ParseStats, error) {
	var stats types.ParseStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "status", "ip"} {
		if _, ok := cols[required]; !ok {
			return nil, stats, fmt.Errorf("missing column %q", required)
		}
	}
	userCol, hasUser := cols["user"]

	var entries []types.LogEntry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read record: %w", err)
		}
		stats.Lines++

		entry, ok := p.recordToEntry(record, cols, userCol, hasUser)
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Matched++
		entries = append(entries, entry)
	}

	return entries, stats, nil
}

func (p *Parser) recordToEntry(record []string, cols map[string]int, userCol int, hasUser bool) (types.LogEntry, bool) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	status, ok := types.ParseStatus(field(cols["status"]))
	if !ok {
		return types.LogEntry{}, false
	}

	ip := field(cols["ip"])
	if net.ParseIP(ip) == nil {
		return types.LogEntry{}, false
	}

	raw := field(cols["date"])
	ts, err := p.parseTimestamp(raw)
	if err != nil {
		return types.LogEntry{}, false
	}

	entry := types.LogEntry{
		Timestamp:    ts,
		RawTimestamp: raw,
		Status:       status,
		SourceIP:     ip,
	}
	if hasUser {
		entry.Username = norm.NFC.String(field(userCol))
	}
	return entry, true
}
