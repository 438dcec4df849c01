package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/lakehouse-ops/dbxtag/internal/tagger"
)

// separatorWidth is the width of the line printed between identifiers.
const separatorWidth = 70

// printJSON writes the report as indented JSON.
func printJSON(w io.Writer, report *tagger.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// printText writes a per-identifier table followed by the run summary and,
// when something failed, the diagnostics.
func printText(w io.Writer, report *tagger.Report) {
	bold := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	skip := color.New(color.FgCyan)
	bad := color.New(color.FgRed, color.Bold)

	bold.Fprintf(w, "%s\n", report.Summary())
	for _, o := range report.Outcomes {
		label := fmt.Sprintf("%-10s", o.Status)
		switch o.Status {
		case tagger.StatusTagged:
			ok.Fprint(w, "  ", label)
		case tagger.StatusUnchanged, tagger.StatusDryRun:
			skip.Fprint(w, "  ", label)
		default:
			bad.Fprint(w, "  ", label)
		}
		fmt.Fprintf(w, " %s\n", describe(o))
	}

	if diag := tagger.DiagnosticSummary(report.Errors()); diag != "" {
		fmt.Fprintln(w)
		bad.Fprint(w, diag)
	}
}

// describe renders the identifier and, when it resolved to something
// different, the resolved name and ID.
func describe(o tagger.Outcome) string {
	switch {
	case o.ID == "":
		return o.Identifier
	case o.Identifier == o.ID && o.Name != "":
		return fmt.Sprintf("%s (%s)", o.Name, o.ID)
	default:
		return fmt.Sprintf("%s (%s)", o.Identifier, o.ID)
	}
}

// separator returns the line printed between identifiers.
func separator() string {
	return strings.Repeat("-", separatorWidth)
}
