package translator

import (
	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/errz"
	"github.com/deepnoodle-ai/cilsil/op"
)

// Parser translates one family of opcodes. Parse returns false, with a nil
// error, for instructions it does not handle.
type Parser interface {
	// Name identifies the parser in diagnostics.
	Name() string

	// Claims reports whether the parser handles the opcode.
	Claims(code op.Code) bool

	// Parse translates the instruction, mutating the state.
	Parse(instr bytecode.Instruction, state *State) (bool, error)
}

// Dispatcher runs instructions through an ordered chain of parsers. The
// first parser that claims an instruction handles it.
type Dispatcher struct {
	parsers []Parser
}

// NewDispatcher returns a dispatcher trying the parsers in the given order.
func NewDispatcher(parsers ...Parser) *Dispatcher {
	d := &Dispatcher{}
	d.parsers = append(d.parsers, parsers...)
	return d
}

// DefaultParsers returns the standard parser chain. Control-flow parsers come
// before the sequential parser, which claims everything that simply falls
// through.
func DefaultParsers(policy LeavePolicy) []Parser {
	return []Parser{
		&LeaveParser{Policy: policy},
		&BranchParser{},
		&CondBranchParser{},
		&SwitchParser{},
		&EndfinallyParser{},
		&EndfilterParser{},
		&ReturnParser{},
		&ThrowParser{},
		&SequentialParser{},
	}
}

// Parsers returns the parsers in dispatch order.
func (d *Dispatcher) Parsers() []Parser {
	out := make([]Parser, len(d.parsers))
	copy(out, d.parsers)
	return out
}

// Dispatch translates one instruction. An instruction no parser claims is
// reported as an ErrUnclaimed error.
func (d *Dispatcher) Dispatch(instr bytecode.Instruction, state *State) error {
	for _, p := range d.parsers {
		ok, err := p.Parse(instr, state)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return errz.Newf(errz.ErrUnclaimed, instr.Offset, "no parser claims opcode %s (0x%x)",
		instr.Opcode, uint16(instr.Opcode))
}

// ClaimedBy returns the first parser that claims the opcode.
func (d *Dispatcher) ClaimedBy(code op.Code) (Parser, bool) {
	for _, p := range d.parsers {
		if p.Claims(code) {
			return p, true
		}
	}
	return nil, false
}

// Unclaimed returns the opcodes in the table that no parser claims.
func (d *Dispatcher) Unclaimed() []op.Code {
	var out []op.Code
	for _, code := range op.All() {
		if _, ok := d.ClaimedBy(code); !ok {
			out = append(out, code)
		}
	}
	return out
}

// endsBlock reports whether control does not simply continue with the next
// instruction after instr.
func endsBlock(instr bytecode.Instruction) bool {
	info, ok := op.GetInfo(instr.Opcode)
	if !ok {
		return false
	}
	return !info.Flow.Sequential() || instr.Opcode == op.Jmp
}
