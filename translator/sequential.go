package translator

import (
	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/errz"
	"github.com/deepnoodle-ai/cilsil/op"
)

// SequentialParser claims every instruction that continues with its
// successor: arithmetic, loads and stores, calls and prefixes. It keeps
// folding instructions into the current node until the successor is a
// leader.
type SequentialParser struct{}

func (p *SequentialParser) Name() string { return "sequential" }

func (p *SequentialParser) Claims(code op.Code) bool {
	info, ok := op.GetInfo(code)
	return ok && info.Flow.Sequential() && code != op.Jmp
}

func (p *SequentialParser) Parse(instr bytecode.Instruction, state *State) (bool, error) {
	if !p.Claims(instr.Opcode) {
		return false, nil
	}
	next, ok := state.Body().Next(instr)
	if !ok {
		return true, errz.Newf(errz.ErrMalformed, instr.Offset,
			"%s falls through past the end of the method", instr.Opcode)
	}
	state.AppendToPreviousNode = !state.IsLeader(next.Offset)
	return true, state.Push(next, cfg.EdgeNormal)
}
