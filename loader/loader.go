// Package loader reads decoded method bodies from YAML or JSON documents.
//
// A document names an assembly and lists its methods:
//
//	name: Sample.dll
//	methods:
//	  - name: Sample.Program::Main
//	    instructions:
//	      - {offset: 0, op: ldarg.0}
//	      - {offset: 1, op: brtrue.s, target: 4}
//	      - {offset: 3, op: ret}
//	      - {offset: 4, op: ret}
//	    handlers:
//	      - {kind: finally, try_start: 0, try_end: 3, handler_start: 3, handler_end: 4}
//
// Instruction offsets may be omitted, in which case they are computed from
// the encoded size of the preceding instruction. JSON documents use the same
// field names.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/errz"
	"github.com/deepnoodle-ai/cilsil/op"
	"gopkg.in/yaml.v3"
)

// Document is the serialized form of an assembly.
type Document struct {
	Name    string           `yaml:"name" json:"name"`
	Methods []MethodDocument `yaml:"methods" json:"methods"`
}

// MethodDocument is the serialized form of one method body.
type MethodDocument struct {
	Name         string                `yaml:"name" json:"name"`
	Instructions []InstructionDocument `yaml:"instructions" json:"instructions"`
	Handlers     []HandlerDocument     `yaml:"handlers,omitempty" json:"handlers,omitempty"`
}

// InstructionDocument is the serialized form of one instruction. Target is
// shorthand for a single-element Targets.
type InstructionDocument struct {
	Offset  *int   `yaml:"offset,omitempty" json:"offset,omitempty"`
	Op      string `yaml:"op" json:"op"`
	Target  *int   `yaml:"target,omitempty" json:"target,omitempty"`
	Targets []int  `yaml:"targets,omitempty" json:"targets,omitempty"`
	Operand any    `yaml:"operand,omitempty" json:"operand,omitempty"`
}

// HandlerDocument is the serialized form of one exception handler.
type HandlerDocument struct {
	Kind         string `yaml:"kind" json:"kind"`
	TryStart     int    `yaml:"try_start" json:"try_start"`
	TryEnd       int    `yaml:"try_end" json:"try_end"`
	HandlerStart int    `yaml:"handler_start" json:"handler_start"`
	HandlerEnd   int    `yaml:"handler_end" json:"handler_end"`
	FilterStart  *int   `yaml:"filter_start,omitempty" json:"filter_start,omitempty"`
	CatchType    string `yaml:"catch_type,omitempty" json:"catch_type,omitempty"`
}

// LoadFile reads an assembly document from a file.
func LoadFile(path string) (*bytecode.Assembly, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load reads an assembly document from r.
func Load(r io.Reader) (*bytecode.Assembly, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes an assembly document. YAML is a superset of JSON, so both
// encodings are accepted.
func Parse(data []byte) (*bytecode.Assembly, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &bytecode.Assembly{}, nil
		}
		return nil, errz.New(errz.ErrMalformed, errz.NoOffset, "invalid document").WithCause(err)
	}
	return doc.Assembly(), nil
}

// Assembly converts the document into method bodies. A method that cannot be
// converted is recorded in the assembly's Rejected list and does not affect
// the others.
func (d Document) Assembly() *bytecode.Assembly {
	asm := &bytecode.Assembly{Name: d.Name}
	for i, m := range d.Methods {
		if m.Name == "" {
			m.Name = fmt.Sprintf("method#%d", i)
		}
		body, err := m.Body()
		if err != nil {
			asm.Rejected = append(asm.Rejected, bytecode.RejectedMethod{
				Index: i,
				Name:  m.Name,
				Err:   err,
			})
			continue
		}
		asm.Methods = append(asm.Methods, body)
	}
	return asm
}

// Body converts the document into a method body.
func (m MethodDocument) Body() (*bytecode.MethodBody, error) {
	instructions := make([]bytecode.Instruction, 0, len(m.Instructions))
	next := 0
	for i, doc := range m.Instructions {
		code, ok := op.Lookup(doc.Op)
		if !ok {
			return nil, errz.Newf(errz.ErrMalformed, errz.NoOffset,
				"instruction %d: unknown opcode %q%s", i, doc.Op, didYouMean(doc.Op)).WithMethod(m.Name)
		}
		instr := bytecode.Instruction{
			Offset:  next,
			Opcode:  code,
			Targets: doc.Targets,
			Operand: doc.Operand,
		}
		if doc.Offset != nil {
			instr.Offset = *doc.Offset
		}
		if doc.Target != nil {
			if len(doc.Targets) > 0 {
				return nil, errz.Newf(errz.ErrMalformed, instr.Offset,
					"both target and targets are set").WithMethod(m.Name)
			}
			instr.Targets = []int{*doc.Target}
		}
		if err := checkTargets(instr); err != nil {
			return nil, err.WithMethod(m.Name)
		}
		instructions = append(instructions, instr)
		next = instr.Offset + instr.Size()
	}

	handlers := make([]bytecode.ExceptionHandler, 0, len(m.Handlers))
	for i, doc := range m.Handlers {
		h, err := doc.handler()
		if err != nil {
			return nil, errz.Newf(errz.ErrMalformed, errz.NoOffset,
				"handler %d: %s", i, err).WithMethod(m.Name)
		}
		handlers = append(handlers, h)
	}

	body, err := bytecode.NewMethodBody(bytecode.MethodParams{
		Name:         m.Name,
		Instructions: instructions,
		Handlers:     handlers,
	})
	if err != nil {
		return nil, errz.New(errz.ErrMalformed, errz.NoOffset, err.Error()).
			WithCause(err).WithMethod(m.Name)
	}
	return body, nil
}

func didYouMean(name string) string {
	suggestions := op.Suggest(name)
	if len(suggestions) == 0 {
		return ""
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = strconv.Quote(s)
	}
	return "; did you mean " + strings.Join(quoted, " or ") + "?"
}

func checkTargets(instr bytecode.Instruction) *errz.TranslationError {
	info := instr.Info()
	switch {
	case instr.Opcode == op.Switch:
		return nil
	case info.Operand.IsBranchTarget() && len(instr.Targets) != 1:
		return errz.Newf(errz.ErrMalformed, instr.Offset,
			"%s takes exactly one target, got %d", instr.Opcode, len(instr.Targets))
	case !info.Operand.IsBranchTarget() && len(instr.Targets) > 0:
		return errz.Newf(errz.ErrMalformed, instr.Offset,
			"%s does not take a branch target", instr.Opcode)
	}
	return nil
}

func (d HandlerDocument) handler() (bytecode.ExceptionHandler, error) {
	kind, ok := bytecode.ParseHandlerKind(d.Kind)
	if !ok {
		return bytecode.ExceptionHandler{}, fmt.Errorf("unknown handler kind %q", d.Kind)
	}
	h := bytecode.ExceptionHandler{
		Kind:         kind,
		TryStart:     d.TryStart,
		TryEnd:       d.TryEnd,
		HandlerStart: d.HandlerStart,
		HandlerEnd:   d.HandlerEnd,
		CatchType:    d.CatchType,
	}
	switch {
	case kind == bytecode.HandlerFilter && d.FilterStart == nil:
		return h, fmt.Errorf("filter handler has no filter_start")
	case kind != bytecode.HandlerFilter && d.FilterStart != nil:
		return h, fmt.Errorf("%s handler has a filter_start", kind)
	case d.FilterStart != nil:
		h.FilterStart = *d.FilterStart
	}
	return h, nil
}
