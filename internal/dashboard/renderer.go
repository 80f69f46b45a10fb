// Package dashboard is the read-only presentation layer: it polls the
// monitor and renders the tracked events as HTML and JSON. There are no push
// notifications; the page refreshes itself on an interval.
package dashboard

import (
	"fmt"
	"html/template"
	"io"
)

// BuildView is one triggered entry as shown on the dashboard.
type BuildView struct {
	Project  string `json:"project"`
	RunID    string `json:"run_id,omitempty"`
	Status   string `json:"status"`
	Color    string `json:"color"`
	Finished bool   `json:"finished"`
}

// EventView is one tracked event as shown on the dashboard.
type EventView struct {
	Change             string      `json:"change"`
	Project            string      `json:"project"`
	Branch             string      `json:"branch"`
	Revision           string      `json:"revision"`
	BallColor          string      `json:"ball_color"`
	TriggerScanStarted bool        `json:"trigger_scan_started"`
	TriggerScanDone    bool        `json:"trigger_scan_done"`
	AllBuildsCompleted bool        `json:"all_builds_completed"`
	UnTriggered        bool        `json:"untriggered"`
	Builds             []BuildView `json:"builds"`
}

// Page is the data handed to the HTML template.
type Page struct {
	Events         []EventView
	RefreshSeconds int
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<title>gerritmon</title>
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
th { background: #f4f4f4; }
.ball { display: inline-block; width: 0.9em; height: 0.9em; border-radius: 50%; margin-right: 0.4em; vertical-align: middle; }
.ball.blue { background: #2e7df2; }
.ball.yellow { background: #e0b332; }
.ball.red { background: #d43f3a; }
.ball.grey { background: #9e9e9e; }
.ball.disabled { background: #d0d0d0; border: 1px dashed #888; }
.ball.aborted { background: #6d6d6d; }
.ball.notbuilt { background: #eeeeee; border: 1px solid #bbb; }
.anime { animation: pulse 1.2s infinite; }
@keyframes pulse { 50% { opacity: 0.3; } }
.muted { color: #888; }
</style>
</head>
<body>
<h1>Tracked review events</h1>
{{if not .Events}}<p class="muted">No events tracked yet.</p>{{end}}
{{range .Events}}
<h2><span class="ball {{ballClass .BallColor}}"></span>{{.Project}} change {{.Change}} patchset rev {{.Revision}} ({{.Branch}})</h2>
<p>
scan started: {{.TriggerScanStarted}} |
scan done: {{.TriggerScanDone}} |
all builds completed: {{.AllBuildsCompleted}}
{{if .UnTriggered}} | <span class="muted">no triggers matched</span>{{end}}
</p>
{{if .Builds}}
<table>
<tr><th></th><th>Build target</th><th>Run</th><th>Status</th></tr>
{{range .Builds}}
<tr>
<td><span class="ball {{ballClass .Color}}"></span></td>
<td>{{.Project}}</td>
<td>{{if .RunID}}{{.RunID}}{{else}}<span class="muted">not started</span>{{end}}</td>
<td>{{.Status}}</td>
</tr>
{{end}}
</table>
{{end}}
{{end}}
</body>
</html>
`

// Renderer renders the dashboard page.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the page template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"ballClass": ballClass,
	}).Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the HTML page for the given view data.
func (r *Renderer) Render(w io.Writer, page Page) error {
	return r.tmpl.Execute(w, page)
}

// ballClass converts a ball-color token into CSS classes; animated variants
// get the pulsing class.
func ballClass(color string) string {
	const suffix = "_anime"
	if len(color) > len(suffix) && color[len(color)-len(suffix):] == suffix {
		return color[:len(color)-len(suffix)] + " anime"
	}
	return color
}
