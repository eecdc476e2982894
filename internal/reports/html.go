package reports

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"time"

	"github.com/jdwit/ssh-auth-analyzer/internal/artifact"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"ts": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("Jan _2 15:04:05")
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SSH Authentication Report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #2c5d73; color: #fff; }
tr.alert td { background: #f8d7da; font-weight: bold; }
</style>
</head>
<body>
<h1>SSH Authentication Report</h1>
<p>Source: {{.Source}}<br>Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>
<h2>Summary</h2>
<ul>
<li>Lines read: {{.Stats.Lines}} (matched {{.Stats.Matched}}, skipped {{.Stats.Skipped}})</li>
<li>Addresses with failures: {{len .Results}}</li>
<li>Total failed attempts: {{.TotalFailures}}</li>
<li>Alert threshold: {{.Threshold}} consecutive failures</li>
</ul>
<h2>Failed attempts by address</h2>
{{if .Results -}}
<table>
<tr><th>IP address</th><th>Failures</th><th>Longest streak</th><th>First failure</th><th>Last failure</th><th>Alert</th></tr>
{{range .Results -}}
<tr{{if .AlertTriggered}} class="alert"{{end}}><td>{{.IP}}</td><td>{{.TotalFailures}}</td><td>{{.LongestStreak}}</td><td>{{ts .FirstFailure}}</td><td>{{ts .LastFailure}}</td><td>{{if .AlertTriggered}}YES{{else}}no{{end}}</td></tr>
{{end -}}
</table>
{{- else -}}
<p>No failed login attempts found.</p>
{{- end}}
<h2>Alerts</h2>
{{if .Alerts -}}
<table>
<tr><th>Time</th><th>IP address</th><th>Username</th><th>Consecutive failures</th></tr>
{{range .Alerts -}}
<tr class="alert"><td>{{ts .Timestamp}}</td><td>{{.IP}}</td><td>{{.Username}}</td><td>{{.Streak}}</td></tr>
{{end -}}
</table>
{{- else -}}
<p>No IPs found with {{.Threshold}} consecutive failures.</p>
{{- end}}
</body>
</html>
`))

// HTML writes a standalone HTML report file.
type HTML struct {
	path string
}

// NewHTML creates an HTML reporter writing to path.
func NewHTML(path string) (*HTML, error) {
	if path == "" {
		return nil, fmt.Errorf("HTML report path required")
	}
	return &HTML{path: path}, nil
}

// Report renders the analysis to the report file.
func (h *HTML) Report(_ context.Context, a *types.Analysis) error {
	err := artifact.WriteFile(h.path, func(f *os.File) error {
		return reportTemplate.Execute(f, a)
	})
	if err != nil {
		return err
	}
	slog.Info("html report written", "path", h.path)
	return nil
}
