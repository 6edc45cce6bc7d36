//nolint:errcheck // dump output goes to best-effort streams, write errors are ignored
package ir

import (
	"fmt"
	"io"

	"swell/internal/types"
)

// Printer dumps a module to a readable text format for debugging and
// golden tests.
type Printer struct {
	w      io.Writer
	m      *Module
	indent int
}

// NewPrinter creates a printer bound to the writer and module.
func NewPrinter(w io.Writer, m *Module) *Printer {
	return &Printer{w: w, m: m}
}

// Dump writes a formatted module to the provided writer.
func Dump(w io.Writer, m *Module) error {
	return NewPrinter(w, m).PrintModule()
}

// PrintModule prints the whole module: files, classes with their
// members, then top-level functions.
func (p *Printer) PrintModule() error {
	m := p.m
	p.printf("module %s\n", m.NameOf(m.Name))
	for _, path := range m.Files.Snapshot() {
		p.printf("  file %s\n", path)
	}
	p.printf("\n")

	for i := uint32(1); i <= m.Classes.Len(); i++ {
		p.PrintClass(ClassID(i))
		p.printf("\n")
	}
	for i := uint32(1); i <= m.Funcs.Len(); i++ {
		if fn := m.Func(FuncID(i)); fn.Owner == NoClassID {
			p.PrintFunc(FuncID(i))
			p.printf("\n")
		}
	}
	return nil
}

// PrintClass prints one class declaration with members.
func (p *Printer) PrintClass(id ClassID) {
	m := p.m
	cls := m.Class(id)
	if cls == nil {
		p.printf("class <missing #%d>\n", id)
		return
	}
	p.printf("%s%s %s", cls.Flags, cls.Kind, m.NameOf(cls.Name))
	p.printTypeParams(cls.TypeParams)
	for i, super := range cls.Supertypes {
		if i == 0 {
			p.printf(" : ")
		} else {
			p.printf(", ")
		}
		p.printf("%s", p.typeStr(super))
	}
	p.printf(" (id=%d, type=%d)\n", id, cls.Type)

	p.indent++
	for _, fld := range cls.Fields {
		p.PrintField(fld)
	}
	for _, fn := range cls.Funcs {
		p.PrintFunc(fn)
	}
	p.indent--
}

// PrintField prints one field declaration.
func (p *Printer) PrintField(id FieldID) {
	m := p.m
	fld := m.Field(id)
	if fld == nil {
		p.printIndent()
		p.printf("field <missing #%d>\n", id)
		return
	}
	p.printIndent()
	p.printf("%sfield %s: %s (id=%d)", fld.Flags, m.NameOf(fld.Name), p.typeStr(fld.Type), id)
	p.printOrigin(fld.Origin)
	if len(fld.Overridden) > 0 {
		p.printf(" override of ")
		for i, ov := range fld.Overridden {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("%s", describeField(m, ov))
		}
	}
	if fld.Init != nil {
		p.printf(" = ")
		p.printExpr(fld.Init)
	}
	p.printf("\n")
}

// PrintFunc prints one function declaration with its body expressions.
func (p *Printer) PrintFunc(id FuncID) {
	m := p.m
	fn := m.Func(id)
	if fn == nil {
		p.printIndent()
		p.printf("fn <missing #%d>\n", id)
		return
	}
	p.printIndent()
	p.printf("%sfn %s", fn.Flags, m.NameOf(fn.Name))
	p.printTypeParams(fn.TypeParams)

	p.printf("(")
	for i, pid := range fn.Params {
		if i > 0 {
			p.printf(", ")
		}
		p.printParam(pid)
	}
	p.printf(")")

	if fn.Result != types.NoTypeID {
		p.printf(" -> %s", p.typeStr(fn.Result))
	}
	p.printf(" (id=%d)", id)
	p.printOrigin(fn.Origin)
	if len(fn.Overridden) > 0 {
		p.printf(" override of ")
		for i, ov := range fn.Overridden {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("%s", describeFunc(m, ov))
		}
	}

	if fn.Body != nil {
		p.printf(" {\n")
		p.indent++
		for _, e := range fn.Body.Exprs {
			p.printIndent()
			p.printExpr(e)
			p.printf("\n")
		}
		p.indent--
		p.printIndent()
		p.printf("}")
	}
	p.printf("\n")
}

func (p *Printer) printParam(id ParamID) {
	m := p.m
	prm := m.Param(id)
	if prm == nil {
		p.printf("<missing #%d>", id)
		return
	}
	if prm.Kind != ParamValue {
		p.printf("[%s] ", prm.Kind)
	}
	p.printf("%s: %s", m.NameOf(prm.Name), p.typeStr(prm.Type))
	if prm.IsVararg {
		p.printf("...")
	}
	if prm.HasDefault {
		p.printf(" = ?")
	}
}

func (p *Printer) printTypeParams(tps []TypeParamID) {
	if len(tps) == 0 {
		return
	}
	p.printf("<")
	for i, tp := range tps {
		if i > 0 {
			p.printf(", ")
		}
		if t := p.m.TypeParam(tp); t != nil {
			p.printf("%s", p.m.NameOf(t.Name))
		} else {
			p.printf("?")
		}
	}
	p.printf(">")
}

func (p *Printer) printOrigin(o Origin) {
	if o != OriginSource {
		p.printf(" <%s>", o)
	}
}

func (p *Printer) printExpr(e *Expr) {
	if e == nil {
		p.printf("_")
		return
	}
	switch d := e.Data.(type) {
	case ConstData:
		p.printConst(d)
	case GetValueData:
		prm := p.m.Param(d.Param)
		if prm == nil {
			p.printf("value <missing #%d>", d.Param)
			return
		}
		p.printf("%s", p.m.NameOf(prm.Name))
	case GetFieldData:
		if d.Receiver != nil {
			p.printExpr(d.Receiver)
			p.printf(".")
		}
		p.printf("%s", p.m.FieldName(d.Field))
	case ArrayLitData:
		p.printf("[")
		for i, el := range d.Elems {
			if i > 0 {
				p.printf(", ")
			}
			p.printExpr(el)
		}
		p.printf("]")
	case *CallData:
		p.printCall(d)
	default:
		p.printf("<%s>", e.Kind)
	}
}

func (p *Printer) printConst(d ConstData) {
	switch d.Kind {
	case ConstInt:
		p.printf("%d", d.IntValue)
	case ConstFloat:
		p.printf("%g", d.FloatValue)
	case ConstBool:
		p.printf("%t", d.BoolValue)
	case ConstString:
		s, _ := p.m.Strings.Lookup(d.StringValue)
		p.printf("%q", s)
	case ConstUnit:
		p.printf("()")
	default:
		p.printf("<const>")
	}
}

func (p *Printer) printCall(d *CallData) {
	p.printf("call %s", describeFunc(p.m, d.Target))
	if len(d.TypeArgs) > 0 {
		p.printf("<")
		for i, ta := range d.TypeArgs {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("%s", p.typeStr(ta))
		}
		p.printf(">")
	}
	p.printf("(")
	first := true
	if d.Dispatch != nil {
		p.printf("[dispatch] ")
		p.printExpr(d.Dispatch)
		first = false
	}
	if d.Extension != nil {
		if !first {
			p.printf(", ")
		}
		p.printf("[extension] ")
		p.printExpr(d.Extension)
		first = false
	}
	for _, arg := range d.Args {
		if !first {
			p.printf(", ")
		}
		p.printExpr(arg)
		first = false
	}
	p.printf(")")
}

func (p *Printer) printIndent() {
	for i := 0; i < p.indent; i++ {
		p.printf("  ")
	}
}

func (p *Printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) typeStr(id types.TypeID) string {
	if p.m == nil || p.m.Types == nil {
		return fmt.Sprintf("type#%d", id)
	}
	return types.Label(p.m.Types, id)
}
