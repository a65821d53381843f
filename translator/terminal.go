package translator

import (
	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/op"
)

// ReturnParser translates ret and jmp, both of which leave the method.
type ReturnParser struct{}

func (p *ReturnParser) Name() string { return "return" }

func (p *ReturnParser) Claims(code op.Code) bool {
	return code == op.Ret || code == op.Jmp
}

func (p *ReturnParser) Parse(instr bytecode.Instruction, state *State) (bool, error) {
	if !p.Claims(instr.Opcode) {
		return false, nil
	}
	state.AppendToPreviousNode = false
	state.ConnectExit(cfg.EdgeNormal)
	return true, nil
}

// ThrowParser translates throw and rethrow. Inside a protected block the
// exceptional edges added after traversal describe where control goes;
// outside one the exception escapes the method.
type ThrowParser struct{}

func (p *ThrowParser) Name() string { return "throw" }

func (p *ThrowParser) Claims(code op.Code) bool {
	return code == op.Throw || code == op.Rethrow
}

func (p *ThrowParser) Parse(instr bytecode.Instruction, state *State) (bool, error) {
	if !p.Claims(instr.Opcode) {
		return false, nil
	}
	state.AppendToPreviousNode = false
	if !state.Regions().InTry(instr.Offset) {
		state.ConnectExit(cfg.EdgeExceptional)
	}
	return true, nil
}
