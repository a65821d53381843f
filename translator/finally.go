package translator

import (
	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/op"
)

// EndfinallyParser translates endfinally (also spelled endfault). Once a
// finally block completes, control continues with the code laid out after
// it, which is where the leave that entered the block was headed.
type EndfinallyParser struct{}

func (p *EndfinallyParser) Name() string { return "endfinally" }

func (p *EndfinallyParser) Claims(code op.Code) bool {
	return code == op.Endfinally
}

func (p *EndfinallyParser) Parse(instr bytecode.Instruction, state *State) (bool, error) {
	if !p.Claims(instr.Opcode) {
		return false, nil
	}
	state.AppendToPreviousNode = false
	next, ok := state.Body().Next(instr)
	if !ok {
		state.ConnectExit(cfg.EdgeNormal)
		return true, nil
	}
	return true, state.Push(next, cfg.EdgeNormal)
}

// EndfilterParser translates endfilter. The filter block is laid out
// directly before the handler body it guards.
type EndfilterParser struct{}

func (p *EndfilterParser) Name() string { return "endfilter" }

func (p *EndfilterParser) Claims(code op.Code) bool {
	return code == op.Endfilter
}

func (p *EndfilterParser) Parse(instr bytecode.Instruction, state *State) (bool, error) {
	if !p.Claims(instr.Opcode) {
		return false, nil
	}
	state.AppendToPreviousNode = false
	next, ok := state.Body().Next(instr)
	if !ok {
		state.ConnectExit(cfg.EdgeExceptional)
		return true, nil
	}
	return true, state.Push(next, cfg.EdgeTrue)
}
