package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"swell/internal/driver"
	"swell/internal/ir"
	"swell/internal/project"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file.swm>",
	Short: "Summarize the declarations inside a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type snapshotStats struct {
	Path            string `json:"path"`
	Digest          string `json:"digest"`
	Module          string `json:"module"`
	Classes         int    `json:"classes"`
	Interfaces      int    `json:"interfaces"`
	Funcs           int    `json:"funcs"`
	AbstractFuncs   int    `json:"abstract_funcs"`
	FuncStubs       int    `json:"func_stubs"`
	SyntheticFuncs  int    `json:"synthetic_funcs"`
	Fields          int    `json:"fields"`
	FieldStubs      int    `json:"field_stubs"`
	Params          int    `json:"params"`
	TypeParams      int    `json:"type_params"`
	Exprs           int    `json:"exprs"`
	Calls           int    `json:"calls"`
	StaticizedCalls int    `json:"staticized_calls"`
}

func runStats(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
		// supported
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	m, err := driver.LoadModule(path)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	st := collectSnapshotStats(path, m)

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	renderStatsPretty(cmd.OutOrStdout(), st)
	return nil
}

func collectSnapshotStats(path string, m *ir.Module) snapshotStats {
	st := snapshotStats{
		Path:       path,
		Module:     m.NameOf(m.Name),
		Classes:    int(m.Classes.Len()),
		Funcs:      int(m.Funcs.Len()),
		Fields:     int(m.Fields.Len()),
		Params:     int(m.Params.Len()),
		TypeParams: int(m.TypeParams.Len()),
	}
	if digest, err := project.DigestFile(path); err == nil {
		st.Digest = digest.Short()
	}

	for _, cls := range m.Classes.Slice() {
		if cls.IsInterface() {
			st.Interfaces++
		}
	}

	count := func(e *ir.Expr) {
		st.Exprs++
		if call, ok := e.AsCall(); ok {
			st.Calls++
			if fn := m.Func(call.Target); fn != nil && fn.Origin == ir.OriginSynthetic {
				st.StaticizedCalls++
			}
		}
	}

	funcs := m.Funcs.Slice()
	for i := range funcs {
		fn := &funcs[i]
		if fn.IsAbstract() {
			st.AbstractFuncs++
		}
		if fn.IsFakeOverride() {
			st.FuncStubs++
		}
		if fn.Origin == ir.OriginSynthetic {
			st.SyntheticFuncs++
		}
		ir.VisitBody(fn, func(slot **ir.Expr) { count(*slot) })
	}

	fields := m.Fields.Slice()
	for i := range fields {
		if fields[i].IsFakeOverride() {
			st.FieldStubs++
		}
		ir.WalkExprs(fields[i].Init, count)
	}

	params := m.Params.Slice()
	for i := range params {
		ir.WalkExprs(params[i].Default, count)
	}

	return st
}

func renderStatsPretty(out io.Writer, st snapshotStats) {
	header := fmt.Sprintf("snapshot %s", st.Path)
	if st.Digest != "" {
		header += fmt.Sprintf(" (digest %s)", st.Digest)
	}
	fmt.Fprintln(out, header)
	fmt.Fprintf(out, "module %s\n", st.Module)
	fmt.Fprintf(out, "  %-12s %d (%d interfaces)\n", "classes", st.Classes, st.Interfaces)
	fmt.Fprintf(out, "  %-12s %d (%d abstract, %d inherited stubs, %d synthetic)\n", "funcs", st.Funcs, st.AbstractFuncs, st.FuncStubs, st.SyntheticFuncs)
	fmt.Fprintf(out, "  %-12s %d (%d inherited stubs)\n", "fields", st.Fields, st.FieldStubs)
	fmt.Fprintf(out, "  %-12s %d\n", "params", st.Params)
	fmt.Fprintf(out, "  %-12s %d\n", "type params", st.TypeParams)
	fmt.Fprintf(out, "  %-12s %d (%d calls, %d staticized)\n", "exprs", st.Exprs, st.Calls, st.StaticizedCalls)
}
