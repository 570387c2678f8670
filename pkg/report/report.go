// Package report renders measurement results as tables on an output stream.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/freqbench/freqbench/pkg/runner"
	"github.com/freqbench/freqbench/pkg/tsc"
	"github.com/freqbench/freqbench/pkg/workloads"
)

// Reporter formats result groups. One table is rendered per group, so specs
// with the same thread count share a header.
type Reporter struct {
	out       io.Writer
	clock     *tsc.Clock
	withAperf bool
}

// NewReporter returns a reporter writing to out. With withAperf set the
// frequency-ratio columns are included; they only carry data when the run
// sampled the APERF/MPERF pair.
func NewReporter(out io.Writer, clock *tsc.Clock, withAperf bool) *Reporter {
	return &Reporter{out: out, clock: clock, withAperf: withAperf}
}

// Report renders one group of spec results as a table. Per-thread values are
// comma-joined within their cell, in thread order.
func (r *Reporter) Report(group []runner.SpecResult) {
	table := tablewriter.NewWriter(r.out)

	headers := []string{"Cores", "ID", "Description", "Overlap", "Mops"}
	if r.withAperf {
		headers = append(headers, "A/M-ratio", "A/M-MHz", "M/tsc-ratio")
	}
	table.SetHeader(headers)

	for _, res := range group {
		row := []string{
			fmt.Sprintf("%d", res.Spec.Count()),
			res.Spec.Name,
			res.Spec.Description,
			fmt.Sprintf("%.3f", res.NestedOverlap()),
			joinPerThread(res.Threads, func(t runner.ThreadResult) string {
				return fmt.Sprintf("%.0f", t.Mops)
			}),
		}
		if r.withAperf {
			row = append(row,
				joinPerThread(res.Threads, func(t runner.ThreadResult) string {
					return fmt.Sprintf("%.2f", t.AMRatio)
				}),
				joinPerThread(res.Threads, func(t runner.ThreadResult) string {
					return fmt.Sprintf("%.0f", t.AMRatio*r.clock.FrequencyMHz())
				}),
				joinPerThread(res.Threads, func(t runner.ThreadResult) string {
					return fmt.Sprintf("%.2f", t.MTRatio)
				}),
			)
		}
		table.Append(row)
	}

	table.Render()
}

// ListWorkloads renders the catalog with availability on this machine.
func ListWorkloads(out io.Writer, catalog []workloads.Workload, supported func(w workloads.Workload) bool) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Description", "Available"})
	for _, w := range catalog {
		available := "yes"
		if !supported(w) {
			available = "no"
		}
		table.Append([]string{w.ID, w.Description, available})
	}
	table.Render()
}

func joinPerThread(threads []runner.ThreadResult, format func(runner.ThreadResult) string) string {
	cells := make([]string, 0, len(threads))
	for _, t := range threads {
		cells = append(cells, format(t))
	}
	return strings.Join(cells, ", ")
}
