package report

import (
	"context"
	"html/template"
	"io"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 24px; }
section + section { page-break-before: always; break-before: page; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
th { background: #e6e6e6; }
td.amount { text-align: right; }
@page { size: A4; }
</style>
</head>
<body>
{{- range $i, $s := .Sections}}
<section>
{{- if and (eq $i 0) $.Title}}
<h1>{{$.Title}}</h1>
{{- end}}
<h2>{{$s.Heading}}</h2>
<table>
<thead><tr>{{range $.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range $s.Rows}}
<tr><td>{{.Title}}</td><td class="amount">{{.Amount}}</td><td>{{.Date}}</td></tr>
{{- end}}
</tbody>
</table>
<p class="total"><strong>{{$s.TotalLine}}</strong></p>
</section>
{{- end}}
</body>
</html>
`))

// HTMLRenderer produces a standalone HTML page with one section per page
// when printed.
type HTMLRenderer struct{}

func NewHTMLRenderer() *HTMLRenderer { return &HTMLRenderer{} }

func (r *HTMLRenderer) Extension() string   { return "html" }
func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r *HTMLRenderer) Render(ctx context.Context, doc Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return htmlTemplate.Execute(w, struct {
		Document
		Columns [3]string
	}{doc, Columns})
}
