package translator

import (
	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/errz"
	"github.com/deepnoodle-ai/cilsil/op"
)

// BranchParser translates the unconditional branches br and br.s.
type BranchParser struct{}

func (p *BranchParser) Name() string { return "branch" }

func (p *BranchParser) Claims(code op.Code) bool {
	return code == op.Br || code == op.BrS
}

func (p *BranchParser) Parse(instr bytecode.Instruction, state *State) (bool, error) {
	if !p.Claims(instr.Opcode) {
		return false, nil
	}
	target, ok := instr.Target()
	if !ok {
		return true, errz.Newf(errz.ErrMalformed, instr.Offset, "%s has no target", instr.Opcode)
	}
	state.AppendToPreviousNode = false
	return true, state.PushOffset(target, cfg.EdgeNormal)
}

// CondBranchParser translates the two-way conditional branches.
type CondBranchParser struct{}

func (p *CondBranchParser) Name() string { return "cond_branch" }

func (p *CondBranchParser) Claims(code op.Code) bool {
	info, ok := op.GetInfo(code)
	return ok && info.Flow == op.FlowCondBranch && code != op.Switch
}

func (p *CondBranchParser) Parse(instr bytecode.Instruction, state *State) (bool, error) {
	if !p.Claims(instr.Opcode) {
		return false, nil
	}
	targetOffset, ok := instr.Target()
	if !ok {
		return true, errz.Newf(errz.ErrMalformed, instr.Offset, "%s has no target", instr.Opcode)
	}
	target, err := state.Resolve(targetOffset)
	if err != nil {
		return true, err
	}
	next, ok := state.Body().Next(instr)
	if !ok {
		return true, errz.Newf(errz.ErrMalformed, instr.Offset,
			"%s falls through past the end of the method", instr.Opcode)
	}
	state.AppendToPreviousNode = false
	if next.Offset == target.Offset {
		return true, state.Push(target, cfg.EdgeNormal)
	}
	if err := state.Push(next, cfg.EdgeFalse); err != nil {
		return true, err
	}
	return true, state.Push(target, cfg.EdgeTrue)
}

// SwitchParser translates switch jump tables.
type SwitchParser struct{}

func (p *SwitchParser) Name() string { return "switch" }

func (p *SwitchParser) Claims(code op.Code) bool {
	return code == op.Switch
}

func (p *SwitchParser) Parse(instr bytecode.Instruction, state *State) (bool, error) {
	if !p.Claims(instr.Opcode) {
		return false, nil
	}
	next, ok := state.Body().Next(instr)
	if !ok {
		return true, errz.New(errz.ErrMalformed, instr.Offset,
			"switch falls through past the end of the method")
	}
	targets := make([]bytecode.Instruction, 0, len(instr.Targets))
	for _, offset := range instr.Targets {
		target, err := state.Resolve(offset)
		if err != nil {
			return true, err
		}
		targets = append(targets, target)
	}
	state.AppendToPreviousNode = false
	if err := state.Push(next, cfg.EdgeNormal); err != nil {
		return true, err
	}
	for _, target := range targets {
		if err := state.Push(target, cfg.EdgeCase); err != nil {
			return true, err
		}
	}
	return true, nil
}
