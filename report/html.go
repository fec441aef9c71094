// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders an HTML index of the charts and derived
// series of one result folder.
package report

import (
	"io"
	"path/filepath"
	"strconv"

	"github.com/google/safehtml/template"

	"github.com/rforest/perfgraphs/threadseries"
)

// A Page is the content of one report.
type Page struct {
	Title    string
	Charts   []Chart
	Datasets []Dataset
}

// A Chart is one image on the page.
type Chart struct {
	Caption string
	Src     string // relative to the page
}

// A Dataset is the table of derived values for one dataset.
type Dataset struct {
	Name     string
	Baseline string
	Rows     []Row
}

// A Row holds formatted values at one thread count. Absent values are
// empty strings.
type Row struct {
	Threads    int
	Mean       string
	StdDev     string
	Trials     string
	Speedup    string
	Efficiency string
}

// NewPage builds a page showing the chart files in charts and the
// values of ds. Chart sources are the base names of the chart files,
// so the page must be written to the same directory.
func NewPage(title string, charts map[threadseries.Metric]string, ds []*threadseries.Derived) *Page {
	p := &Page{Title: title}
	for _, m := range threadseries.Metrics {
		if path, ok := charts[m]; ok {
			p.Charts = append(p.Charts, Chart{Caption: m.Title(), Src: filepath.Base(path)})
		}
	}
	for _, d := range ds {
		s := d.Series
		dp := Dataset{Name: s.Dataset}
		if d.HasBaseline() {
			dp.Baseline = strconv.Itoa(d.BaselineThreads) + " threads"
		}
		for i, th := range s.Threads {
			r := Row{Threads: th}
			if sum := s.Samples[i]; sum != nil {
				r.Mean = format(sum.Mean)
				r.StdDev = format(sum.StdDev)
				r.Trials = strconv.Itoa(sum.Trials)
			}
			if v := d.Speedup[i]; v.Present {
				r.Speedup = format(v.V)
			}
			if v := d.Efficiency[i]; v.Present {
				r.Efficiency = format(v.V)
			}
			dp.Rows = append(dp.Rows, r)
		}
		p.Datasets = append(p.Datasets, dp)
	}
	return p
}

func format(x float64) string {
	return strconv.FormatFloat(x, 'f', 4, 64)
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; }
img { max-width: 100%; }
table.series { border-collapse: collapse; margin-bottom: 2em; }
table.series th, table.series td { padding: 0.2em 0.8em; text-align: right; }
table.series td.absent { color: #999; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Charts -}}
<figure>
<img src="{{.Src}}" alt="{{.Caption}}">
<figcaption>{{.Caption}}</figcaption>
</figure>
{{end -}}
{{range .Datasets -}}
<h2>{{.Name}}</h2>
{{if .Baseline}}<p>Baseline: {{.Baseline}}</p>{{else}}<p>No measurements.</p>{{end}}
<table class="series">
<tr><th>threads<th>mean (s)<th>stddev<th>trials<th>speedup<th>efficiency
{{range .Rows -}}
{{if .Mean -}}
<tr><td>{{.Threads}}<td>{{.Mean}}<td>{{.StdDev}}<td>{{.Trials}}<td>{{.Speedup}}<td>{{.Efficiency}}
{{else -}}
<tr><td>{{.Threads}}<td class="absent" colspan="5">not measured
{{end -}}
{{end -}}
</table>
{{end -}}
</body>
</html>
`))

// Write renders p as HTML to w.
func Write(w io.Writer, p *Page) error {
	return pageTemplate.Execute(w, p)
}
