package profile

import (
	"fmt"
	"io"

	"metroflow/internal/dataset"
)

// Report writes the textual profiling narrative for one pipeline run: load
// failures, the table partition, per-column summaries, and the indicator
// column categories. Output goes to w (stdout in the CLI); nothing is
// persisted by the profiler itself.
func Report(w io.Writer, flows []*dataset.RawTable, indicator *dataset.RawTable, failures []dataset.LoadFailure) {
	fmt.Fprintf(w, "==== Input profile ====\n")

	if len(failures) > 0 {
		fmt.Fprintf(w, "Skipped %d unparseable file(s):\n", len(failures))
		for _, f := range failures {
			fmt.Fprintf(w, "  - %s: %s\n", f.File, f.Reason)
		}
	}

	fmt.Fprintf(w, "Flow-matrix tables: %d\n", len(flows))
	for _, t := range flows {
		writeTableProfile(w, ProfileTable(t))
	}

	if indicator == nil {
		fmt.Fprintf(w, "Indicator table: none found (indicator reporting skipped)\n")
		return
	}

	fmt.Fprintf(w, "Indicator table: %s\n", indicator.Name)
	writeTableProfile(w, ProfileTable(indicator))

	fmt.Fprintf(w, "Indicator column categories:\n")
	for _, cat := range Classify(indicator.Columns) {
		if len(cat.MatchedColumns) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-24s %v\n", cat.Name, cat.MatchedColumns)
	}
}

func writeTableProfile(w io.Writer, tp TableProfile) {
	fmt.Fprintf(w, "  %s (%d rows)\n", tp.Name, tp.Rows)
	for _, cp := range tp.Columns {
		line := fmt.Sprintf("    %-28s %-7s missing=%.2f%%", cp.Name, cp.Kind, cp.MissingPct)
		if cp.Kind == dataset.KindNumber {
			line += fmt.Sprintf("  min=%.2f max=%.2f mean=%.2f", cp.Min, cp.Max, cp.Mean)
		}
		fmt.Fprintln(w, line)
	}
}
