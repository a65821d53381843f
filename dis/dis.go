// Package dis renders method bodies and translated graphs as tables.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/op"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	branchColor = color.New(color.FgYellow)
	exitColor   = color.New(color.FgRed)
	regionColor = color.New(color.FgCyan)
)

// Instruction is one row of a method listing.
type Instruction struct {
	Offset  int
	Opcode  op.Code
	Operand string
	Regions []string
}

// Disassemble lists the instructions of a body along with the exception
// regions that start at each of them.
func Disassemble(body *bytecode.MethodBody) []Instruction {
	marks := regionMarks(body)
	out := make([]Instruction, 0, body.InstructionCount())
	for i := 0; i < body.InstructionCount(); i++ {
		instr := body.InstructionAt(i)
		out = append(out, Instruction{
			Offset:  instr.Offset,
			Opcode:  instr.Opcode,
			Operand: operandString(instr),
			Regions: marks[instr.Offset],
		})
	}
	return out
}

func operandString(instr bytecode.Instruction) string {
	if len(instr.Targets) > 0 {
		labels := make([]string, len(instr.Targets))
		for i, t := range instr.Targets {
			labels[i] = bytecode.Label(t)
		}
		return strings.Join(labels, ", ")
	}
	if instr.Operand != nil {
		return fmt.Sprintf("%v", instr.Operand)
	}
	return ""
}

func regionMarks(body *bytecode.MethodBody) map[int][]string {
	marks := map[int][]string{}
	add := func(offset int, mark string) {
		for _, m := range marks[offset] {
			if m == mark {
				return
			}
		}
		marks[offset] = append(marks[offset], mark)
	}
	for i := 0; i < body.HandlerCount(); i++ {
		h := body.HandlerAt(i)
		add(h.TryStart, "try")
		if h.Kind == bytecode.HandlerFilter {
			add(h.FilterStart, "filter")
		}
		mark := h.Kind.String()
		if h.CatchType != "" {
			mark += " " + h.CatchType
		}
		add(h.HandlerStart, mark)
	}
	return marks
}

func opcodeColor(code op.Code) *color.Color {
	info, ok := op.GetInfo(code)
	if !ok {
		return nil
	}
	switch info.Flow {
	case op.FlowBranch, op.FlowCondBranch:
		return branchColor
	case op.FlowReturn, op.FlowThrow:
		return exitColor
	}
	return nil
}

func paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

// Print writes a method listing as a table.
func Print(instructions []Instruction, writer io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(writer)
	t.AppendHeader(table.Row{"Offset", "Opcode", "Operand", "Regions"})
	for _, instr := range instructions {
		t.AppendRow(table.Row{
			bytecode.Label(instr.Offset),
			paint(opcodeColor(instr.Opcode), instr.Opcode.String()),
			instr.Operand,
			paint(regionColor, strings.Join(instr.Regions, ", ")),
		})
	}
	t.Render()
}

// PrintGraph writes the nodes of a graph and their successors as a table.
func PrintGraph(g *cfg.Graph, writer io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(writer)
	t.SetTitle(g.Method())
	t.AppendHeader(table.Row{"Node", "Start", "Size", "Handler", "Successors"})
	for _, n := range g.Nodes() {
		handler := ""
		if n.Handler != nil {
			handler = paint(regionColor, n.Handler.String())
		}
		var succs []string
		for _, e := range g.Successors(n.ID) {
			succs = append(succs, fmt.Sprintf("%s (%s)", nodeName(g.Node(e.To)), e.Kind))
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("n%d", n.ID),
			nodeName(n),
			fmt.Sprintf("%d", len(n.Offsets)),
			handler,
			strings.Join(succs, ", "),
		})
	}
	t.Render()
}

func nodeName(n *cfg.Node) string {
	if n.Kind == cfg.NodeExit {
		return "exit"
	}
	return bytecode.Label(n.Offset)
}
