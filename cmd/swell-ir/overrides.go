package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swell/internal/driver"
	"swell/internal/ir"
)

var overridesCmd = &cobra.Command{
	Use:   "overrides <file.swm>",
	Short: "Resolve every inherited stub in a snapshot",
	Long: `Report where each inherited member stub lands: the unique concrete
implementation it resolves to, or why none could be picked`,
	Args: cobra.ExactArgs(1),
	RunE: runOverrides,
}

func init() {
	overridesCmd.Flags().Bool("all", false, "also list the explicit override edges of real members")
}

type overrideCounts struct {
	resolved  int
	ambiguous int
	missing   int
}

func runOverrides(cmd *cobra.Command, args []string) error {
	g, err := readGlobalOpts(cmd)
	if err != nil {
		return err
	}
	showAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}

	m, err := driver.LoadModule(args[0])
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	out := os.Stdout
	var counts overrideCounts

	for i := uint32(1); i <= m.Funcs.Len(); i++ {
		id := ir.FuncID(i)
		fn := m.Func(id)
		if fn.IsFakeOverride() {
			if err := reportFuncStub(m, id, &counts, g.useColor); err != nil {
				return fmt.Errorf("override graph of %s is malformed: %w", funcLabel(m, id), err)
			}
			continue
		}
		if showAll && len(fn.Overridden) > 0 {
			targets := make([]string, 0, len(fn.Overridden))
			for _, over := range fn.Overridden {
				targets = append(targets, funcLabel(m, over))
			}
			fmt.Fprintf(out, "  %s overrides %s\n", funcLabel(m, id), strings.Join(targets, ", "))
		}
	}

	for i := uint32(1); i <= m.Fields.Len(); i++ {
		id := ir.FieldID(i)
		fld := m.Field(id)
		if !fld.IsReal() {
			if err := reportFieldStub(m, id, &counts, g.useColor); err != nil {
				return fmt.Errorf("override graph of %s is malformed: %w", fieldLabel(m, id), err)
			}
		}
	}

	total := counts.resolved + counts.ambiguous + counts.missing
	if total == 0 {
		if !g.quiet {
			fmt.Fprintln(out, "no inherited stubs in this snapshot")
		}
		return nil
	}
	fmt.Fprintf(out, "resolved %d, ambiguous %d, missing %d\n",
		counts.resolved, counts.ambiguous, counts.missing)
	return nil
}

func reportFuncStub(m *ir.Module, id ir.FuncID, counts *overrideCounts, useColor bool) error {
	reals, err := ir.CollectRealOverrides(m, id)
	if err != nil {
		return err
	}
	concrete := make([]ir.FuncID, 0, len(reals))
	for _, cand := range reals {
		if !m.Func(cand).IsAbstract() {
			concrete = append(concrete, cand)
		}
	}

	out := os.Stdout
	switch len(concrete) {
	case 0:
		counts.missing++
		fmt.Fprintf(out, "  %s -> %s\n", funcLabel(m, id), paintStatus("missing (no concrete implementation)", color.FgRed, useColor))
	case 1:
		counts.resolved++
		fmt.Fprintf(out, "  %s -> %s\n", funcLabel(m, id), funcLabel(m, concrete[0]))
	default:
		counts.ambiguous++
		names := make([]string, 0, len(concrete))
		for _, cand := range concrete {
			names = append(names, funcLabel(m, cand))
		}
		status := fmt.Sprintf("ambiguous (%s)", strings.Join(names, ", "))
		fmt.Fprintf(out, "  %s -> %s\n", funcLabel(m, id), paintStatus(status, color.FgYellow, useColor))
	}
	return nil
}

func reportFieldStub(m *ir.Module, id ir.FieldID, counts *overrideCounts, useColor bool) error {
	reals, err := ir.CollectRealFieldOverrides(m, id)
	if err != nil {
		return err
	}

	out := os.Stdout
	switch len(reals) {
	case 0:
		counts.missing++
		fmt.Fprintf(out, "  %s -> %s\n", fieldLabel(m, id), paintStatus("missing (no concrete implementation)", color.FgRed, useColor))
	case 1:
		counts.resolved++
		fmt.Fprintf(out, "  %s -> %s\n", fieldLabel(m, id), fieldLabel(m, reals[0]))
	default:
		counts.ambiguous++
		names := make([]string, 0, len(reals))
		for _, cand := range reals {
			names = append(names, fieldLabel(m, cand))
		}
		status := fmt.Sprintf("ambiguous (%s)", strings.Join(names, ", "))
		fmt.Fprintf(out, "  %s -> %s\n", fieldLabel(m, id), paintStatus(status, color.FgYellow, useColor))
	}
	return nil
}

func funcLabel(m *ir.Module, id ir.FuncID) string {
	fn := m.Func(id)
	if fn == nil {
		return fmt.Sprintf("func#%d", id)
	}
	if fn.Owner.IsValid() {
		return m.ClassName(fn.Owner) + "." + m.NameOf(fn.Name)
	}
	return m.NameOf(fn.Name)
}

func fieldLabel(m *ir.Module, id ir.FieldID) string {
	fld := m.Field(id)
	if fld == nil {
		return fmt.Sprintf("field#%d", id)
	}
	if fld.Owner.IsValid() {
		return m.ClassName(fld.Owner) + "." + m.NameOf(fld.Name)
	}
	return m.NameOf(fld.Name)
}

func paintStatus(status string, attr color.Attribute, useColor bool) string {
	c := color.New(attr)
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(status)
}
