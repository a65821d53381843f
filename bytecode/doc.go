// Package bytecode provides immutable representations of decoded CIL method
// bodies.
//
// This package is the boundary between a raw byte decoder and the translator:
// a decoder (or the loader package) produces [MethodBody] values, and the
// translator only ever reads them. The types are created once and shared
// safely across goroutines.
//
// # Key Types
//
//   - [MethodBody]: An immutable, offset-indexed instruction sequence plus its
//     exception handlers
//   - [Instruction]: One decoded instruction (value type)
//   - [ExceptionHandler]: Describes a try block and its handler (value type)
//   - [Assembly]: An ordered collection of method bodies
//
// # Immutability Guarantees
//
//   - No mutation methods exist on any type
//   - Constructors copy input slices to prevent caller mutation
//   - Sequential links are index lookups into the owning body
//
// Index-based access is used for all collections:
//
//	body.InstructionAt(0)
//	body.HandlerAt(i)
//	next, ok := body.Next(instr)
//
// # Usage
//
//	body, err := bytecode.NewMethodBody(bytecode.MethodParams{
//	    Name: "Program::Main",
//	    Instructions: []bytecode.Instruction{
//	        {Offset: 0, Opcode: op.Ldarg0},
//	        {Offset: 1, Opcode: op.BrtrueS, Targets: []int{4}},
//	        {Offset: 3, Opcode: op.Ret},
//	        {Offset: 4, Opcode: op.Ret},
//	    },
//	})
package bytecode
