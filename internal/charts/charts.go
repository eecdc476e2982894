// Package charts renders login attempt charts as PNG, PDF and SVG files.
package charts

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdwit/ssh-auth-analyzer/internal/artifact"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// TopN is the number of categories shown in the address and username charts.
const TopN = 10

// DefaultFormats are written when no formats are configured.
var DefaultFormats = []string{"png", "pdf", "svg"}

var supportedFormats = map[string]bool{"png": true, "pdf": true, "svg": true}

// crest palette, light to dark
var palette = []color.Color{
	color.RGBA{0xa5, 0xcd, 0x90, 0xff},
	color.RGBA{0x84, 0xbe, 0x8e, 0xff},
	color.RGBA{0x65, 0xaf, 0x8d, 0xff},
	color.RGBA{0x4b, 0x9e, 0x8c, 0xff},
	color.RGBA{0x36, 0x8e, 0x8b, 0xff},
	color.RGBA{0x27, 0x7d, 0x8a, 0xff},
	color.RGBA{0x21, 0x6c, 0x88, 0xff},
	color.RGBA{0x23, 0x5a, 0x85, 0xff},
	color.RGBA{0x2a, 0x47, 0x7e, 0xff},
	color.RGBA{0x2c, 0x31, 0x72, 0xff},
}

// Set2: Accepted, Failed
var statusPalette = []color.Color{
	color.RGBA{0x66, 0xc2, 0xa5, 0xff},
	color.RGBA{0xfc, 0x8d, 0x62, 0xff},
}

type chart struct {
	name          string
	title, xLabel string
	width, height vg.Length
	rotateLabels  bool
	colors        []color.Color
	counts        func([]types.LogEntry) []Count
}

var chartSet = []chart{
	{
		name: "top_ips", title: "Top 10 IPs by Login Attempts", xLabel: "IP Address",
		width: 12 * vg.Inch, height: 6 * vg.Inch, rotateLabels: true, colors: palette,
		counts: func(e []types.LogEntry) []Count { return TopAddresses(e, TopN) },
	},
	{
		name: "login_attempts_by_hour", title: "Login Attempts by Hour of Day", xLabel: "Hour (24h format)",
		width: 10 * vg.Inch, height: 5 * vg.Inch, colors: palette,
		counts: AttemptsByHour,
	},
	{
		name: "targeted_usernames", title: "Top 10 Targeted Usernames", xLabel: "Username",
		width: 12 * vg.Inch, height: 6 * vg.Inch, rotateLabels: true, colors: palette,
		counts: func(e []types.LogEntry) []Count { return TopUsernames(e, TopN) },
	},
	{
		name: "auth_status_distribution", title: "Authentication Status Distribution", xLabel: "Authentication Result",
		width: 8 * vg.Inch, height: 5 * vg.Inch, colors: statusPalette,
		counts: StatusDistribution,
	},
}

// ParseFormats turns a comma-separated list into validated format names.
// An empty list yields DefaultFormats.
func ParseFormats(config string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(config, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !supportedFormats[f] {
			return nil, fmt.Errorf("unsupported chart format %q", f)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return DefaultFormats, nil
	}
	return out, nil
}

// Render writes every chart in every format to dir and returns the written paths.
func Render(entries []types.LogEntry, dir string, formats []string) ([]string, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	if err := artifact.EnsureDir(dir); err != nil {
		return nil, err
	}

	var written []string
	for _, c := range chartSet {
		p, err := c.plot(entries)
		if err != nil {
			return written, fmt.Errorf("%s: %w", c.name, err)
		}

		for _, format := range formats {
			path := filepath.Join(dir, c.name+"."+format)
			wt, err := p.WriterTo(c.width, c.height, format)
			if err != nil {
				return written, fmt.Errorf("%s: %w", c.name, err)
			}
			err = artifact.WriteFile(path, func(f *os.File) error {
				_, err := wt.WriteTo(f)
				return err
			})
			if err != nil {
				return written, err
			}
			written = append(written, path)
		}
		slog.Debug("chart rendered", "chart", c.name, "formats", formats)
	}

	return written, nil
}

func (c chart) plot(entries []types.LogEntry) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.title
	p.X.Label.Text = c.xLabel
	p.Y.Label.Text = "Number of Attempts"
	p.Y.Min = 0

	counts := c.counts(entries)
	names := make([]string, len(counts))
	for i, cnt := range counts {
		names[i] = cnt.Key

		// one single-bar chart per category so each bar gets its own colour
		bar, err := plotter.NewBarChart(plotter.Values{float64(cnt.Count)}, vg.Points(30))
		if err != nil {
			return nil, err
		}
		bar.XMin = float64(i)
		bar.Color = c.colors[i%len(c.colors)]
		bar.LineStyle.Width = vg.Length(0)
		p.Add(bar)
	}

	if len(names) > 0 {
		p.NominalX(names...)
	}
	if c.rotateLabels {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	return p, nil
}
