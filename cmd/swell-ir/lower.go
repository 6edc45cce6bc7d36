package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swell/internal/driver"
	"swell/internal/lower"
	"swell/internal/pipeline"
	"swell/internal/project"
	"swell/internal/source"
)

var lowerCmd = &cobra.Command{
	Use:   "lower <file.swm|directory>...",
	Short: "Run the lowering passes and write snapshots back",
	Long: `Devirtualize calls through inherited stubs and rewrite dispatch calls
on final methods against static counterparts, then save the result.
Pass selection defaults come from swell.toml when one is in scope`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().StringP("out", "o", "", "directory for lowered snapshots (default: rewrite in place)")
	lowerCmd.Flags().Bool("devirt", true, "run the devirtualization pass")
	lowerCmd.Flags().Bool("static-calls", true, "run the static-call pass")
	lowerCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	lowerCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func runLower(cmd *cobra.Command, args []string) error {
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

	manifest, _, err := project.LoadFrom(".")
	if err != nil {
		return err
	}

	passes := manifest.Lower
	if cmd.Flags().Changed("devirt") {
		passes.Devirtualize, err = cmd.Flags().GetBool("devirt")
		if err != nil {
			return fmt.Errorf("failed to get devirt flag: %w", err)
		}
	}
	if cmd.Flags().Changed("static-calls") {
		passes.StaticCalls, err = cmd.Flags().GetBool("static-calls")
		if err != nil {
			return fmt.Errorf("failed to get static-calls flag: %w", err)
		}
	}

	outDir := manifest.Snapshot.OutDir
	if cmd.Flags().Changed("out") {
		outDir, err = cmd.Flags().GetString("out")
		if err != nil {
			return fmt.Errorf("failed to get out flag: %w", err)
		}
	}

	maxDiagnostics := manifest.Snapshot.MaxDiagnostics
	if cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		maxDiagnostics = g.maxDiagnostics
	}

	files, err := collectSnapshotArgs(args)
	if err != nil {
		return err
	}
	files = pipeline.NormalizeFiles(files, "")

	opts := driver.LowerOptions{
		Passes:         passes,
		OutDir:         outDir,
		MaxDiagnostics: maxDiagnostics,
		EnableTimings:  g.timings,
		Jobs:           jobs,
	}

	var results []driver.LowerResult
	if shouldUseTUI(mode) && !g.quiet {
		results, err = runLowerWithUI(cmd.Context(), "lowering snapshots", files, opts)
	} else {
		results, err = driver.LowerFiles(cmd.Context(), files, opts)
	}
	if err != nil {
		return fmt.Errorf("lowering aborted: %w", err)
	}

	out := os.Stdout
	failed := 0
	var total lower.Stats
	for _, res := range results {
		if !res.OK() {
			failed++
		}
		total.Add(res.Stats)
		var ft *source.FileTable
		if res.Module != nil {
			ft = res.Module.Files
		}
		printDiagnostics(out, ft, res.Bag, g.quiet)
		if res.Err != nil {
			fmt.Fprintf(out, "error: %v\n", res.Err)
		}
		if g.timings {
			printTimingReport(out, res.Path, res.Timing)
		}
	}

	summary := fmt.Sprintf("lowered %d snapshots: %d written, %d failed (%d calls rewritten, %d counterparts synthesized)",
		len(results), len(results)-failed, failed, total.CallsRewritten, total.Synthesized)
	if g.timings {
		var work time.Duration
		for _, res := range results {
			work += res.Stages.Sum(pipeline.StageLoad, pipeline.StageValidate, pipeline.StageLower, pipeline.StageSave)
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
