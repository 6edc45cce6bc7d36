package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"swell/internal/diag"
	"swell/internal/driver"
	"swell/internal/observ"
	"swell/internal/source"
)

// globalOpts carries the persistent flags every command reads.
type globalOpts struct {
	maxDiagnostics int
	quiet          bool
	timings        bool
	useColor       bool
}

func readGlobalOpts(cmd *cobra.Command) (globalOpts, error) {
	flags := cmd.Root().PersistentFlags()

	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return globalOpts{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return globalOpts{}, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return globalOpts{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return globalOpts{}, fmt.Errorf("failed to get color flag: %w", err)
	}

	return globalOpts{
		maxDiagnostics: maxDiagnostics,
		quiet:          quiet,
		timings:        timings,
		useColor:       colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout)),
	}, nil
}

// printDiagnostics renders the bag, dropping info entries when quiet.
func printDiagnostics(out io.Writer, files *source.FileTable, bag *diag.Bag, quiet bool) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	items := bag.Items()
	if quiet {
		kept := make([]diag.Diagnostic, 0, len(items))
		for _, d := range items {
			if d.Severity > diag.SevInfo {
				kept = append(kept, d)
			}
		}
		items = kept
	}
	if rendered := diag.FormatDiagnostics(items, files, !quiet); rendered != "" {
		fmt.Fprintln(out, rendered)
	}
}

func printTimingReport(out io.Writer, path string, rep *observ.Report) {
	if rep == nil {
		return
	}
	fmt.Fprintf(out, "timings %s:\n", path)
	for _, p := range rep.Phases {
		fmt.Fprintf(out, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(out, "  // %s", p.Note)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  %-20s %7.2f ms\n", "total", rep.TotalMS)
}

// silentFailure flags the command as failed after its findings were
// already printed, keeping cobra from adding usage noise on top.
func silentFailure(cmd *cobra.Command) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return fmt.Errorf("")
}

// collectSnapshotArgs expands positional arguments into a snapshot
// list: directories contribute every *.swm file under them.
func collectSnapshotArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			// Let the driver classify unreadable paths per file.
			files = append(files, arg)
			continue
		}
		if !st.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := driver.ListSnapshots(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no %s files under %s", driver.SnapshotExt, arg)
		}
		files = append(files, found...)
	}
	return files, nil
}
