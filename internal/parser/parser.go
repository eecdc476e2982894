package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
	"golang.org/x/text/unicode/norm"
)

const (
	// syslog timestamps carry no year; one is prepended before parsing
	timestampLayout = "2006 Jan 2 15:04:05"
	maxLineSize     = 1 << 20
)

// authPattern matches sshd password authentication lines, e.g.
//
//	Aug  6 10:15:30 host sshd[1234]: Failed password for invalid user admin from 203.0.113.7 port 22 ssh2
var authPattern = regexp.MustCompile(
	`(?P<date>\w{3} +\d{1,2} \d{2}:\d{2}:\d{2}) .*sshd.*: (?P<status>Failed|Accepted) password for (?:invalid user )?(?P<user>\S+) from (?P<ip>\d{1,3}(?:\.\d{1,3}){3})`)

var (
	dateIdx   = authPattern.SubexpIndex("date")
	statusIdx = authPattern.SubexpIndex("status")
	userIdx   = authPattern.SubexpIndex("user")
	ipIdx     = authPattern.SubexpIndex("ip")
)

// Parser turns sshd log lines into log entries.
type Parser struct {
	year     int
	location *time.Location
}

// New creates a Parser that stamps entries with the given year.
// A year of zero means the current year.
func New(year int) *Parser {
	if year == 0 {
		year = time.Now().Year()
	}
	return &Parser{year: year, location: time.UTC}
}

// Year returns the year assigned to parsed timestamps.
func (p *Parser) Year() int {
	return p.year
}

// ParseLine parses a single line. Lines that do not match the pattern, or whose
// timestamp is not a valid date, are reported with ok=false.
func (p *Parser) ParseLine(line string) (entry types.LogEntry, ok bool) {
	m := authPattern.FindStringSubmatch(line)
	if m == nil {
		return types.LogEntry{}, false
	}

	ts, err := p.parseTimestamp(m[dateIdx])
	if err != nil {
		return types.LogEntry{}, false
	}

	return types.LogEntry{
		Timestamp:    ts,
		RawTimestamp: m[dateIdx],
		Status:       types.Status(m[statusIdx]),
		SourceIP:     m[ipIdx],
		Username:     norm.NFC.String(m[userIdx]),
	}, true
}

// Parse reads all lines from r. Non-matching lines are counted and skipped;
// only read failures are returned as errors.
func (p *Parser) Parse(r io.Reader) ([]types.LogEntry, types.ParseStats, error) {
	var (
		entries []types.LogEntry
		stats   types.ParseStats
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for sc.Scan() {
		stats.Lines++
		entry, ok := p.ParseLine(sc.Text())
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Matched++
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("read lines: %w", err)
	}

	return entries, stats, nil
}

func (p *Parser) parseTimestamp(raw string) (time.Time, error) {
	// collapse the double space syslog uses before single-digit days
	s := strings.Join(strings.Fields(raw), " ")
	ts, err := time.ParseInLocation(timestampLayout, strconv.Itoa(p.year)+" "+s, p.location)
	if err != nil && strings.HasPrefix(s, "Feb 29 ") {
		// Feb 29 cannot belong to a non-leap year; the log predates it
		return time.ParseInLocation(timestampLayout, strconv.Itoa(previousLeapYear(p.year))+" "+s, p.location)
	}
	return ts, err
}

func previousLeapYear(year int) int {
	for y := year - 1; ; y-- {
		if y%4 == 0 && (y%100 != 0 || y%400 == 0) {
			return y
		}
	}
}
