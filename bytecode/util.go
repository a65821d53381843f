package bytecode

// copyInstructions returns a deep copy of the given instructions.
func copyInstructions(src []Instruction) []Instruction {
	if src == nil {
		return nil
	}
	dst := make([]Instruction, len(src))
	for i, instr := range src {
		dst[i] = instr
		if instr.Targets != nil {
			dst[i].Targets = make([]int, len(instr.Targets))
			copy(dst[i].Targets, instr.Targets)
		}
	}
	return dst
}

// copyHandlers returns a copy of the given exception handler slice.
func copyHandlers(src []ExceptionHandler) []ExceptionHandler {
	if src == nil {
		return nil
	}
	dst := make([]ExceptionHandler, len(src))
	copy(dst, src)
	return dst
}
