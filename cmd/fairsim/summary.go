package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/viant/fairsim"
	"github.com/viant/fairsim/internal/idgen"
	"github.com/viant/fairsim/model/process"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

// renderSummary prints the per-process, per-group and run counter tables.
func renderSummary(w io.Writer, report *fairsim.Report) {
	_, _ = bold.Fprintf(w, "Run %s: %d ticks\n", idgen.Short(report.RunID), report.Ticks)
	if report.Interrupted {
		_, _ = yellow.Fprintln(w, "interrupted before every process terminated")
	}
	for _, loadErr := range report.LoadErrors {
		_, _ = red.Fprintln(w, loadErr)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Process", "Group", "Utilization", "Status", "Tick", "Reason")
	for _, r := range report.Records {
		status := green.Sprint(r.Status)
		if r.Status == process.StatusFailed {
			status = red.Sprint(r.Status)
		}
		_ = table.Append(strconv.Itoa(r.ID), strconv.Itoa(r.GroupID), strconv.Itoa(r.Utilization), status, strconv.Itoa(r.Tick), r.Reason)
	}
	_ = table.Render()

	table = tablewriter.NewWriter(w)
	table.Header("Group", "Ledger", "Share")
	for _, g := range report.Groups {
		_ = table.Append(strconv.Itoa(g.GroupID), strconv.Itoa(g.Utilization), fmt.Sprintf("%.2f%%", 100*report.Share(g.GroupID)))
	}
	_ = table.Render()

	s := report.Stats
	table = tablewriter.NewWriter(w)
	table.Header("Counter", "Value")
	for _, row := range [][2]string{
		{"loaded", strconv.Itoa(s.Loaded)},
		{"load failed", strconv.Itoa(s.LoadFailed)},
		{"executed", strconv.Itoa(s.Executed)},
		{"idle", strconv.Itoa(s.Idle)},
		{"blocked", strconv.Itoa(s.Blocked)},
		{"block cycles", strconv.Itoa(s.BlockCycles)},
		{"exited", strconv.Itoa(s.Exited)},
		{"failed", strconv.Itoa(s.Failed)},
		{"timer interrupts", strconv.Itoa(s.Interrupts)},
		{"dispatches", strconv.Itoa(s.Dispatches)},
	} {
		_ = table.Append(row[0], row[1])
	}
	_ = table.Render()
}
