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

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy <file.swm> --class <name>",
	Short: "Report the place of a class in the module hierarchy",
	Long: `Report the supertypes and subclasses of a class, or answer a single
ancestry query with --ancestor`,
	Args: cobra.ExactArgs(1),
	RunE: runHierarchy,
}

func init() {
	hierarchyCmd.Flags().String("class", "", "class to report on (required)")
	hierarchyCmd.Flags().String("ancestor", "", "answer whether --class descends from this class")
	_ = hierarchyCmd.MarkFlagRequired("class")
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	g, err := readGlobalOpts(cmd)
	if err != nil {
		return err
	}
	className, err := cmd.Flags().GetString("class")
	if err != nil {
		return fmt.Errorf("failed to get class flag: %w", err)
	}
	ancestorName, err := cmd.Flags().GetString("ancestor")
	if err != nil {
		return fmt.Errorf("failed to get ancestor flag: %w", err)
	}

	m, err := driver.LoadModule(args[0])
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	class := m.FindClass(className)
	if !class.IsValid() {
		return fmt.Errorf("class %q not found in %s", className, args[0])
	}

	if ancestorName != "" {
		ancestor := m.FindClass(ancestorName)
		if !ancestor.IsValid() {
			return fmt.Errorf("class %q not found in %s", ancestorName, args[0])
		}
		if ir.IsSubclassOf(m, class, ancestor) {
			fmt.Fprintf(os.Stdout, "%s is a subclass of %s\n", className, ancestorName)
		} else if class == ancestor {
			fmt.Fprintf(os.Stdout, "%s is %s itself, not a subclass\n", className, ancestorName)
		} else {
			fmt.Fprintf(os.Stdout, "%s is not a subclass of %s\n", className, ancestorName)
		}
		return nil
	}

	printClassReport(m, class, g.useColor)
	return nil
}

func printClassReport(m *ir.Module, class ir.ClassID, useColor bool) {
	cls := m.Class(class)
	header := fmt.Sprintf("%s%s %s", cls.Flags, cls.Kind, m.ClassName(class))
	headerColor := color.New(color.FgCyan, color.Bold)
	if useColor {
		headerColor.EnableColor()
	} else {
		headerColor.DisableColor()
	}
	fmt.Fprintln(os.Stdout, headerColor.Sprint(header))

	fmt.Fprintf(os.Stdout, "  direct supertypes:  %s\n", classList(m, ir.SuperclassIDs(m, class)))
	fmt.Fprintf(os.Stdout, "  all superclasses:   %s\n", classList(m, ir.Superclasses(m, class)))

	var subs []ir.ClassID
	for i := uint32(1); i <= m.Classes.Len(); i++ {
		id := ir.ClassID(i)
		if ir.IsImmediateSubclassOf(m, id, class) {
			subs = append(subs, id)
		}
	}
	fmt.Fprintf(os.Stdout, "  direct subclasses:  %s\n", classList(m, subs))
}

func classList(m *ir.Module, ids []ir.ClassID) string {
	if len(ids) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, m.ClassName(id))
	}
	return strings.Join(names, ", ")
}
