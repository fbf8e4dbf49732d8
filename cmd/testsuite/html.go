package main

import (
	"fmt"
	"html/template"
	"io"
	"maps"
	"slices"
)

// reportRow holds the status of one test in each environment, in the order of reportMatrix.Envs.
// A test that did not run in an environment has an empty status.
type reportRow struct {
	Test     string
	Statuses []string
}

type reportMatrix struct {
	Envs []string
	Rows []reportRow
}

// newReportMatrix pivots per-environment results into one row per test. Environments and tests are sorted
// by name so reports of the same run are identical.
func newReportMatrix(results map[string]map[string]testResult) reportMatrix {
	m := reportMatrix{Envs: slices.Sorted(maps.Keys(results))}

	tests := make(map[string]struct{})
	for _, envResults := range results {
		for test := range envResults {
			tests[test] = struct{}{}
		}
	}

	for _, test := range slices.Sorted(maps.Keys(tests)) {
		row := reportRow{Test: test, Statuses: make([]string, len(m.Envs))}
		for i, env := range m.Envs {
			row.Statuses[i] = results[env][test].Status
		}
		m.Rows = append(m.Rows, row)
	}

	return m
}

var reportTpl = template.Must(template.New("report").Parse(`<html>
<head>
<title>perfmon test report</title>
<style>
td.PASS { background-color: #50CC50; }
td.FAIL { background-color: #FF3333; }
td.SKIP { background-color: #FFC107; }
</style>
</head>
<body>
<table>
<tr><th>Test</th>{{range .Envs}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr><td>{{.Test}}</td>{{range .Statuses}}<td class="{{.}}">{{or . "-"}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

func renderHTMLReport(results map[string]map[string]testResult, out io.Writer) error {
	if err := reportTpl.Execute(out, newReportMatrix(results)); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}
