package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swell/internal/driver"
	"swell/internal/ir"
	"swell/internal/project"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file.swm>",
	Short: "Print the textual IR of a snapshot",
	Long:  `Print every declaration and body of a module snapshot in a readable text form`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	g, err := readGlobalOpts(cmd)
	if err != nil {
		return err
	}
	path := args[0]

	m, err := driver.LoadModule(path)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	if !g.quiet {
		header := fmt.Sprintf("snapshot %s", path)
		if digest, err := project.DigestFile(path); err == nil {
			header = fmt.Sprintf("%s (%s)", header, digest.Short())
		}
		headerColor := color.New(color.FgCyan, color.Bold)
		if g.useColor {
			headerColor.EnableColor()
		} else {
			headerColor.DisableColor()
		}
		fmt.Fprintln(os.Stdout, headerColor.Sprint(header))
	}

	return ir.Dump(os.Stdout, m)
}
