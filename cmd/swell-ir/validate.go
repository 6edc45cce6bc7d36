package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swell/internal/driver"
	"swell/internal/pipeline"
	"swell/internal/source"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.swm|directory>...",
	Short: "Check the structural invariants of snapshots",
	Long: `Load each snapshot and verify its declaration graph: supertype links,
override targets, parameter layout and stored call shapes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	validateCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	g, err := readGlobalOpts(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer profCleanup()
	traceCleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer traceCleanup()

	files, err := collectSnapshotArgs(args)
	if err != nil {
		return err
	}
	files = pipeline.NormalizeFiles(files, "")

	opts := driver.ValidateOptions{
		MaxDiagnostics: g.maxDiagnostics,
		EnableTimings:  g.timings,
		Jobs:           jobs,
	}

	var results []driver.ValidateResult
	if shouldUseTUI(mode) && !g.quiet {
		results, err = runValidateWithUI(cmd.Context(), "validating snapshots", files, opts)
	} else {
		results, err = driver.ValidateFiles(cmd.Context(), files, opts)
	}
	if err != nil {
		return fmt.Errorf("validation aborted: %w", err)
	}

	out := os.Stdout
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
		var ft *source.FileTable
		if res.Module != nil {
			ft = res.Module.Files
		}
		printDiagnostics(out, ft, res.Bag, g.quiet)
		if g.timings {
			printTimingReport(out, res.Path, res.Timing)
		}
	}

	summary := fmt.Sprintf("validated %d snapshots: %d ok, %d failed", len(results), len(results)-failed, failed)
	if g.timings {
		var work time.Duration
		for _, res := range results {
			work += res.Stages.Sum(pipeline.StageLoad, pipeline.StageValidate)
		}
		summary = fmt.Sprintf("%s, %.2f ms in stages", summary, float64(work)/float64(time.Millisecond))
	}
	attr := color.FgGreen
	if failed > 0 {
		attr = color.FgRed
	}
	if !g.quiet || failed > 0 {
		fmt.Fprintln(out, paintStatus(summary, attr, g.useColor))
	}

	if failed > 0 {
		return silentFailure(cmd)
	}
	return nil
}
