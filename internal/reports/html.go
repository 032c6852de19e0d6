package reports

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/inventory"
	"github.com/google/uuid"
)

var htmlReportTmpl = template.Must(template.New("expiration").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Beach Market - Expiration Report</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
th { background: #f0f0f0; }
.critical { color: #c0392b; font-weight: bold; }
.warning { color: #d68910; }
.normal { color: #1e8449; }
</style>
</head>
<body>
<h1>Expiration Report</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04"}} &mdash; {{len .Items}} products</p>
<table>
<tr><th>Barcode</th><th>Description</th><th>Expires</th><th>Days</th><th>Urgency</th></tr>
{{range .Items}}
<tr>
<td>{{.Barcode}}</td>
<td>{{.Description}}</td>
<td>{{.ExpirationDate.Format "2006-01-02"}}</td>
<td>{{.DaysRemaining}}</td>
<td class="{{.Urgency}}">{{.Urgency}}</td>
</tr>
{{end}}
</table>
{{if not .Items}}<p>No products close to expiration.</p>{{end}}
</body>
</html>
`))

type htmlReportData struct {
	GeneratedAt time.Time
	Items       []inventory.ItemView
}

// ExpirationHTML renders the expiration report as a standalone HTML file
func (g *FileGenerator) ExpirationHTML(items []inventory.ItemView, generatedAt time.Time) (*Descriptor, error) {
	filename := fmt.Sprintf("expiration-%s-%s.html", generatedAt.Format("20060102"), uuid.NewString()[:8])
	path := filepath.Join(g.cfg.OutputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := htmlReportTmpl.Execute(f, htmlReportData{GeneratedAt: generatedAt, Items: items}); err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}

	return g.descriptor(filename, len(items)), nil
}
