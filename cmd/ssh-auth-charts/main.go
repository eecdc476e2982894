// Command ssh-auth-charts parses an SSH auth log, dumps the parsed entries to CSV
// and renders the login attempt charts.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/fatih/color"
	"github.com/jdwit/ssh-auth-analyzer/internal/artifact"
	"github.com/jdwit/ssh-auth-analyzer/internal/charts"
	"github.com/jdwit/ssh-auth-analyzer/internal/config"
	"github.com/jdwit/ssh-auth-analyzer/internal/detector"
	"github.com/jdwit/ssh-auth-analyzer/internal/logging"
	"github.com/jdwit/ssh-auth-analyzer/internal/parser"
	"github.com/jdwit/ssh-auth-analyzer/internal/source"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

const previewRows = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config failed", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	input := cfg.InputPath
	if len(os.Args) > 1 {
		input = os.Args[1]
	}
	if input == "" {
		slog.Error("usage: ssh-auth-charts <auth.log | s3-url> (or set INPUT_PATH)")
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, input, os.Stdout); err != nil {
		slog.Error("visualization failed", "error", err)
		os.Exit(types.ExitCode(err))
	}
}

func run(ctx context.Context, cfg config.Config, input string, stdout io.Writer) error {
	formats, err := charts.ParseFormats(cfg.ChartFormats)
	if err != nil {
		return err
	}

	var sess *session.Session
	if types.IsS3URL(input) {
		if sess, err = newSession(); err != nil {
			return fmt.Errorf("session: %w", err)
		}
	}

	rc, err := source.New(sess).Open(ctx, input)
	if err != nil {
		return err
	}
	defer rc.Close()

	entries, stats, err := parser.New(cfg.LogYear).Parse(rc)
	if err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%s: %w", input, types.ErrNoMatches)
	}
	detector.SortChronological(entries)
	slog.Info("parsed", "source", input, "lines", stats.Lines, "entries", stats.Matched)

	err = artifact.WriteFile(cfg.CSVReport, func(f *os.File) error {
		return parser.WriteCSV(f, entries)
	})
	if err != nil {
		return err
	}

	if _, err := charts.Render(entries, cfg.OutputDir, formats); err != nil {
		return err
	}

	preview(stdout, entries)
	fmt.Fprintf(stdout, "\nParsed entries saved to: %s\n", cfg.CSVReport)
	fmt.Fprintf(stdout, "Charts saved in: %s\n", cfg.OutputDir)
	return nil
}

// preview prints the first parsed entries as a table.
func preview(w io.Writer, entries []types.LogEntry) {
	n := min(previewRows, len(entries))

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSTATUS\tUSER\tIP")
	for _, e := range entries[:n] {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.RawTimestamp, e.Status, e.Username, e.SourceIP)
	}
	tw.Flush()

	bold := color.New(color.Bold)
	for i, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		if i == 0 {
			bold.Fprintln(w, line)
			continue
		}
		fmt.Fprintln(w, line)
	}
}

func newSession() (*session.Session, error) {
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		return session.NewSession(&aws.Config{
			Endpoint:         aws.String(endpoint),
			DisableSSL:       aws.Bool(true),
			S3ForcePathStyle: aws.Bool(true),
		})
	}
	return session.NewSession()
}
