// Package analyzer runs one analysis pass: read, parse, detect, report, notify and forward alerts.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/jdwit/ssh-auth-analyzer/internal/charts"
	"github.com/jdwit/ssh-auth-analyzer/internal/config"
	"github.com/jdwit/ssh-auth-analyzer/internal/detector"
	"github.com/jdwit/ssh-auth-analyzer/internal/notify"
	"github.com/jdwit/ssh-auth-analyzer/internal/outputs"
	"github.com/jdwit/ssh-auth-analyzer/internal/parser"
	"github.com/jdwit/ssh-auth-analyzer/internal/reports"
	"github.com/jdwit/ssh-auth-analyzer/internal/source"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
	"github.com/jdwit/ssh-auth-analyzer/internal/upload"
	"golang.org/x/sync/errgroup"
)

const (
	maxConcurrency    = 10
	defaultBufferSize = 100
)

// Opener opens an input location for reading.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Uploader copies a directory of artifacts to an S3 prefix.
type Uploader interface {
	Dir(ctx context.Context, dir, url string) ([]string, error)
}

// Analyzer analyzes SSH auth logs and dispatches the results.
type Analyzer struct {
	opener     Opener
	parser     *parser.Parser
	threshold  int
	reports    string
	reportOpts reports.Options
	notifier   notify.Notifier
	outputs    []outputs.Output
	uploader   Uploader
	uploadURL  string
	outputDir  string
	bufferSize int
	now        func() time.Time
}

// New creates an Analyzer from configuration.
func New(cfg config.Config, sess *session.Session) (*Analyzer, error) {
	formats, err := charts.ParseFormats(cfg.ChartFormats)
	if err != nil {
		return nil, fmt.Errorf("invalid chart formats config: %w", err)
	}

	opts := reports.Options{
		HTMLPath:     cfg.HTMLReport,
		CSVPath:      cfg.CSVReport,
		ChartDir:     cfg.OutputDir,
		ChartFormats: formats,
	}
	// Fail early on a selector that yields no reporters.
	if _, err := reports.New(cfg.Reports, opts); err != nil {
		return nil, fmt.Errorf("invalid reports config: %w", err)
	}

	n, err := notify.New(cfg.Notifier, cfg.Notify, sess)
	if err != nil {
		return nil, fmt.Errorf("invalid notifier config: %w", err)
	}

	var outs []outputs.Output
	if cfg.Outputs != "" {
		outs, err = outputs.New(cfg.Outputs, sess)
		if err != nil {
			return nil, fmt.Errorf("invalid outputs config: %w", err)
		}
	}

	a := &Analyzer{
		opener:     source.New(sess),
		parser:     parser.New(cfg.LogYear),
		threshold:  cfg.Threshold,
		reports:    cfg.Reports,
		reportOpts: opts,
		notifier:   n,
		outputs:    outs,
		uploadURL:  cfg.UploadS3URL,
		outputDir:  cfg.OutputDir,
		bufferSize: defaultBufferSize,
		now:        time.Now,
	}

	if cfg.UploadS3URL != "" {
		if _, err := types.ParseS3URL(cfg.UploadS3URL); err != nil {
			return nil, fmt.Errorf("invalid UPLOAD_S3_URL: %w", err)
		}
		if sess == nil {
			return nil, fmt.Errorf("UPLOAD_S3_URL requires an AWS session")
		}
		a.uploader = upload.New(sess)
	}

	return a, nil
}

// NewWithDeps creates an Analyzer with explicit dependencies (for testing).
func NewWithDeps(opener Opener, reportConfig string, opts reports.Options, n notify.Notifier, outs []outputs.Output) *Analyzer {
	if n == nil {
		n = notify.Nop{}
	}
	return &Analyzer{
		opener:     opener,
		parser:     parser.New(0),
		threshold:  detector.DefaultThreshold,
		reports:    reportConfig,
		reportOpts: opts,
		notifier:   n,
		outputs:    outs,
		outputDir:  filepath.Dir(opts.HTMLPath),
		bufferSize: defaultBufferSize,
		now:        time.Now,
	}
}

// Run analyzes a single input location (local path or s3:// URL).
func (a *Analyzer) Run(ctx context.Context, location string) (*types.Analysis, error) {
	rs, err := reports.New(a.reports, a.reportOpts)
	if err != nil {
		return nil, err
	}
	return a.run(ctx, location, rs, a.outputDir, a.uploadURL)
}

// HandleLambdaEvent analyzes every object named in an S3 event. Each object
// gets its own subdirectory of the output directory.
func (a *Analyzer) HandleLambdaEvent(ctx context.Context, event events.S3Event) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for _, r := range event.Records {
		obj := types.S3ObjectInfo{
			Bucket: r.S3.Bucket.Name,
			Key:    r.S3.Object.Key,
		}
		g.Go(func() error {
			return a.processObject(ctx, obj)
		})
	}

	return g.Wait()
}

func (a *Analyzer) processObject(ctx context.Context, obj types.S3ObjectInfo) error {
	sub := objectDir(obj.Key)
	dir := filepath.Join(a.outputDir, sub)

	rs, err := reports.New(a.reports, a.reportOptsFor(dir))
	if err != nil {
		return err
	}

	var url string
	if a.uploadURL != "" {
		url = strings.TrimSuffix(a.uploadURL, "/") + "/" + filepath.ToSlash(sub)
	}

	if _, err := a.run(ctx, obj.String(), rs, dir, url); err != nil {
		err = fmt.Errorf("%s: %w", obj, err)
		slog.Error("analysis failed", "error", err)
		return err
	}
	return nil
}

// reportOptsFor relocates the file reporters into dir, keeping their file names.
func (a *Analyzer) reportOptsFor(dir string) reports.Options {
	opts := a.reportOpts
	if opts.HTMLPath != "" {
		opts.HTMLPath = filepath.Join(dir, filepath.Base(opts.HTMLPath))
	}
	if opts.CSVPath != "" {
		opts.CSVPath = filepath.Join(dir, filepath.Base(opts.CSVPath))
	}
	opts.ChartDir = dir
	return opts
}

func (a *Analyzer) run(ctx context.Context, location string, rs []reports.Reporter, dir, uploadURL string) (*types.Analysis, error) {
	slog.Info("analyzing", "source", location)

	entries, stats, err := a.read(ctx, location)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", location, types.ErrNoMatches)
	}

	detector.SortChronological(entries)
	res := detector.Detect(entries, a.threshold)

	analysis := &types.Analysis{
		Source:      location,
		Entries:     entries,
		Results:     res.Results,
		Alerts:      res.Alerts,
		Stats:       stats,
		Threshold:   a.threshold,
		GeneratedAt: a.now(),
	}

	var errs []error
	for _, r := range rs {
		if err := r.Report(ctx, analysis); err != nil {
			errs = append(errs, fmt.Errorf("report: %w", err))
		}
	}

	// Notifications and sinks do not depend on the report files.
	a.notify(ctx, analysis)
	a.sendAlerts(ctx, analysis.Alerts)

	if err := errors.Join(errs...); err != nil {
		return analysis, err
	}

	if a.uploader != nil && uploadURL != "" {
		if _, err := a.uploader.Dir(ctx, dir, uploadURL); err != nil {
			return analysis, fmt.Errorf("upload artifacts: %w", err)
		}
	}

	slog.Info("completed", "source", location,
		"entries", len(entries), "addresses", len(analysis.Results), "alerts", len(analysis.Alerts))
	return analysis, nil
}

func (a *Analyzer) read(ctx context.Context, location string) ([]types.LogEntry, types.ParseStats, error) {
	rc, err := a.opener.Open(ctx, location)
	if err != nil {
		return nil, types.ParseStats{}, err
	}
	defer rc.Close()

	name := strings.TrimSuffix(strings.ToLower(location), ".gz")
	if strings.HasSuffix(name, ".csv") {
		return a.parser.ReadCSV(rc)
	}

	entries, stats, err := a.parser.Parse(rc)
	if err != nil {
		return nil, stats, fmt.Errorf("parse %s: %w", location, err)
	}
	if stats.Skipped > 0 {
		slog.Debug("lines skipped", "source", location, "skipped", stats.Skipped)
	}
	return entries, stats, nil
}

func (a *Analyzer) notify(ctx context.Context, analysis *types.Analysis) {
	for _, r := range analysis.Alerted() {
		if err := a.notifier.Notify(ctx, r); err != nil {
			slog.Warn("notification failed", "ip", r.IP, "error", err)
		}
	}
}

func (a *Analyzer) sendAlerts(ctx context.Context, alerts []types.Alert) {
	if len(a.outputs) == 0 || len(alerts) == 0 {
		return
	}

	// One channel per output; each output receives every alert.
	channels := make([]chan types.Alert, len(a.outputs))
	var wg sync.WaitGroup
	for i, o := range a.outputs {
		ch := make(chan types.Alert, a.bufferSize)
		channels[i] = ch
		wg.Add(1)
		go func(o outputs.Output, ch <-chan types.Alert) {
			defer wg.Done()
			o.SendAlerts(ctx, ch)
		}(o, ch)
	}

send:
	for _, alert := range alerts {
		for _, ch := range channels {
			select {
			case ch <- alert:
			case <-ctx.Done():
				slog.Warn("alert delivery cancelled", "error", ctx.Err())
				break send
			}
		}
	}

	for _, ch := range channels {
		close(ch)
	}
	wg.Wait()
}

// objectDir maps an object key to a relative directory that cannot escape the output directory.
func objectDir(key string) string {
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" {
		clean = "object"
	}
	return filepath.FromSlash(clean)
}
