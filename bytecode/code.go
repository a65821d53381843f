package bytecode

import (
	"fmt"
	"sort"

	"github.com/deepnoodle-ai/cilsil/op"
)

// Instruction is one decoded CIL instruction. It is a value type; the owning
// MethodBody resolves its neighbours.
type Instruction struct {
	// Offset is the byte offset of the instruction within the method body.
	Offset int
	// Opcode identifies the instruction.
	Opcode op.Code
	// Index is the position of the instruction within its body. It is
	// assigned by NewMethodBody.
	Index int
	// Targets holds branch target offsets: one for br/leave and the
	// conditional branches, one per case for switch.
	Targets []int
	// Operand holds any non-branch inline operand, e.g. a local index,
	// a constant or a metadata token rendered as text.
	Operand any
}

// Info returns the opcode table entry for the instruction.
func (i Instruction) Info() op.Info {
	info, _ := op.GetInfo(i.Opcode)
	return info
}

// Target returns the single branch target of the instruction.
func (i Instruction) Target() (int, bool) {
	if len(i.Targets) != 1 {
		return 0, false
	}
	return i.Targets[0], true
}

// Size returns the encoded size of the instruction in bytes.
func (i Instruction) Size() int {
	info, ok := op.GetInfo(i.Opcode)
	if !ok {
		return 1
	}
	return info.Size() + info.Operand.Size(len(i.Targets))
}

// String returns the instruction in assembler form, e.g. "IL_000a: leave.s IL_0012".
func (i Instruction) String() string {
	s := fmt.Sprintf("%s: %s", Label(i.Offset), i.Opcode)
	switch {
	case len(i.Targets) == 1 && i.Opcode != op.Switch:
		s += " " + Label(i.Targets[0])
	case i.Opcode == op.Switch:
		s += " ("
		for n, t := range i.Targets {
			if n > 0 {
				s += ", "
			}
			s += Label(t)
		}
		s += ")"
	case i.Operand != nil:
		s += fmt.Sprintf(" %v", i.Operand)
	}
	return s
}

// Label formats an offset the way CIL disassemblers do.
func Label(offset int) string {
	return fmt.Sprintf("IL_%04x", offset)
}

// MethodBody represents one decoded method body. It is immutable after
// creation and safe for concurrent use.
type MethodBody struct {
	name         string
	instructions []Instruction
	handlers     []ExceptionHandler
	byOffset     map[int]int
}

// MethodParams contains parameters for creating a new MethodBody.
type MethodParams struct {
	Name         string
	Instructions []Instruction
	Handlers     []ExceptionHandler
}

// NewMethodBody creates a new immutable MethodBody from the given parameters.
// Instruction offsets must be unique and strictly increasing. Index fields are
// overwritten with the position of each instruction.
func NewMethodBody(params MethodParams) (*MethodBody, error) {
	instructions := copyInstructions(params.Instructions)
	byOffset := make(map[int]int, len(instructions))
	for idx := range instructions {
		instr := &instructions[idx]
		if _, ok := op.GetInfo(instr.Opcode); !ok && instr.Opcode != op.Invalid {
			return nil, fmt.Errorf("instruction %d: unknown opcode 0x%x", idx, uint16(instr.Opcode))
		}
		if instr.Offset < 0 {
			return nil, fmt.Errorf("instruction %d: negative offset %d", idx, instr.Offset)
		}
		if idx > 0 && instr.Offset <= instructions[idx-1].Offset {
			return nil, fmt.Errorf("instruction %d: offset %d is not greater than previous offset %d",
				idx, instr.Offset, instructions[idx-1].Offset)
		}
		instr.Index = idx
		byOffset[instr.Offset] = idx
	}
	return &MethodBody{
		name:         params.Name,
		instructions: instructions,
		handlers:     copyHandlers(params.Handlers),
		byOffset:     byOffset,
	}, nil
}

// Name returns the method name.
func (b *MethodBody) Name() string {
	return b.name
}

// InstructionCount returns the number of instructions.
func (b *MethodBody) InstructionCount() int {
	return len(b.instructions)
}

// InstructionAt returns the instruction at the given index.
func (b *MethodBody) InstructionAt(index int) Instruction {
	return b.instructions[index]
}

// At returns the instruction that starts at the given offset.
func (b *MethodBody) At(offset int) (Instruction, bool) {
	idx, ok := b.byOffset[offset]
	if !ok {
		return Instruction{}, false
	}
	return b.instructions[idx], true
}

// HasOffset reports whether an instruction starts at the given offset.
func (b *MethodBody) HasOffset(offset int) bool {
	_, ok := b.byOffset[offset]
	return ok
}

// Next returns the instruction following the given one in sequential order.
func (b *MethodBody) Next(instr Instruction) (Instruction, bool) {
	idx := instr.Index + 1
	if idx < 0 || idx >= len(b.instructions) {
		return Instruction{}, false
	}
	return b.instructions[idx], true
}

// Prev returns the instruction preceding the given one in sequential order.
func (b *MethodBody) Prev(instr Instruction) (Instruction, bool) {
	idx := instr.Index - 1
	if idx < 0 || idx >= len(b.instructions) {
		return Instruction{}, false
	}
	return b.instructions[idx], true
}

// EndOffset returns the offset just past the last instruction.
func (b *MethodBody) EndOffset() int {
	if len(b.instructions) == 0 {
		return 0
	}
	last := b.instructions[len(b.instructions)-1]
	return last.Offset + last.Size()
}

// HandlerCount returns the number of exception handlers.
func (b *MethodBody) HandlerCount() int {
	return len(b.handlers)
}

// HandlerAt returns the exception handler at the given index.
func (b *MethodBody) HandlerAt(index int) ExceptionHandler {
	return b.handlers[index]
}

// Offsets returns the offsets of all instructions in ascending order.
func (b *MethodBody) Offsets() []int {
	offsets := make([]int, 0, len(b.byOffset))
	for offset := range b.byOffset {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)
	return offsets
}

// Assembly is an ordered collection of method bodies, typically decoded from
// one module.
type Assembly struct {
	Name    string
	Methods []*MethodBody

	// Rejected lists the methods of the source document that could not be
	// decoded into a body.
	Rejected []RejectedMethod
}

// RejectedMethod is a method that could not be decoded. Index is its position
// among all methods of the source document.
type RejectedMethod struct {
	Index int
	Name  string
	Err   error
}
