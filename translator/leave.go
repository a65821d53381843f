package translator

import (
	"fmt"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/errz"
	"github.com/deepnoodle-ai/cilsil/op"
)

// LeavePolicy selects how leave instructions near exception regions are
// wired.
type LeavePolicy uint8

const (
	// LeaveConcatenatedFinally suppresses the fall-through edge of a leave
	// that only hands control from one finally block to the next, as
	// emitted for multi-resource using statements.
	LeaveConcatenatedFinally LeavePolicy = iota
	// LeaveTargetFilter always follows the fall-through successor unless it
	// was already translated, and drops the jump target when it lands inside
	// an exception region without being a region start or handler entry.
	LeaveTargetFilter
)

// String returns the name of the policy as accepted by ParseLeavePolicy.
func (p LeavePolicy) String() string {
	switch p {
	case LeaveConcatenatedFinally:
		return "concatenated-finally"
	case LeaveTargetFilter:
		return "target-filter"
	default:
		return "unknown"
	}
}

// ParseLeavePolicy resolves a policy from its name.
func ParseLeavePolicy(name string) (LeavePolicy, error) {
	switch name {
	case "concatenated-finally", "":
		return LeaveConcatenatedFinally, nil
	case "target-filter":
		return LeaveTargetFilter, nil
	default:
		return 0, fmt.Errorf("unknown leave policy %q", name)
	}
}

// LeaveParser translates leave and leave.s.
type LeaveParser struct {
	Policy LeavePolicy
}

func (p *LeaveParser) Name() string { return "leave" }

func (p *LeaveParser) Claims(code op.Code) bool {
	return code.IsLeave()
}

func (p *LeaveParser) Parse(instr bytecode.Instruction, state *State) (bool, error) {
	if !p.Claims(instr.Opcode) {
		return false, nil
	}
	targetOffset, ok := instr.Target()
	if !ok {
		return true, errz.New(errz.ErrMalformed, instr.Offset, "leave has no target")
	}
	target, err := state.Resolve(targetOffset)
	if err != nil {
		return true, err
	}
	next, hasNext := state.Body().Next(instr)

	// Control forks here, so whatever comes next starts a fresh node.
	state.AppendToPreviousNode = false

	if p.Policy == LeaveTargetFilter {
		return true, p.parseTargetFilter(state, target, next, hasNext)
	}

	if isConcatenatedFinally(state, instr) {
		return true, state.Push(target, cfg.EdgeLeave)
	}
	if hasNext && next.Offset != target.Offset &&
		(!state.Visited(next.Offset) || previousIs(state, instr, op.Endfinally)) {
		if err := state.Push(next, fallthroughKind(state, next)); err != nil {
			return true, err
		}
	}
	return true, state.Push(target, cfg.EdgeLeave)
}

func (p *LeaveParser) parseTargetFilter(state *State, target, next bytecode.Instruction, hasNext bool) error {
	// A leave to its own fall-through yields a single edge, visited or not.
	if hasNext && next.Offset == target.Offset {
		return state.Push(target, cfg.EdgeLeave)
	}
	if hasNext && !state.Visited(next.Offset) {
		if err := state.Push(next, fallthroughKind(state, next)); err != nil {
			return err
		}
	}
	regions := state.Regions()
	if regions.Inside(target.Offset) && !regions.IsStart(target.Offset) && !regions.IsEntry(target.Offset) {
		return nil
	}
	return state.Push(target, cfg.EdgeLeave)
}

// isConcatenatedFinally reports whether the leave sits between two finally
// blocks: the instruction translated before it was a leave.s, it directly
// follows an endfinally, and it falls through into the start of a region
// that is not a catch or filter entry.
func isConcatenatedFinally(state *State, instr bytecode.Instruction) bool {
	before, ok := state.ParsedBack(1)
	if !ok || before.Opcode != op.LeaveS {
		return false
	}
	if !previousIs(state, instr, op.Endfinally) {
		return false
	}
	next, ok := state.Body().Next(instr)
	if !ok {
		return false
	}
	regions := state.Regions()
	return regions.IsStart(next.Offset) && !regions.IsEntry(next.Offset)
}

func previousIs(state *State, instr bytecode.Instruction, code op.Code) bool {
	prev, ok := state.Body().Prev(instr)
	return ok && prev.Opcode == code
}

func fallthroughKind(state *State, next bytecode.Instruction) cfg.EdgeKind {
	if state.Regions().IsFinallyStart(next.Offset) {
		return cfg.EdgeFinally
	}
	return cfg.EdgeNormal
}
