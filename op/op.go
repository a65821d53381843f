// Package op defines the CIL opcodes understood by the translator, along with
// their operand layout and control-flow classification.
package op

import "strings"

// Code is a CIL opcode. Single-byte opcodes use their encoded value; two-byte
// opcodes are stored as 0xFE00 | second byte.
type Code uint16

// Invalid is never produced by a well-formed decoder.
const Invalid Code = 0xFFFF

const (
	// Base instructions
	Nop      Code = 0x00
	Break    Code = 0x01
	Ldarg0   Code = 0x02
	Ldarg1   Code = 0x03
	Ldarg2   Code = 0x04
	Ldarg3   Code = 0x05
	Ldloc0   Code = 0x06
	Ldloc1   Code = 0x07
	Ldloc2   Code = 0x08
	Ldloc3   Code = 0x09
	Stloc0   Code = 0x0A
	Stloc1   Code = 0x0B
	Stloc2   Code = 0x0C
	Stloc3   Code = 0x0D
	LdargS   Code = 0x0E
	LdargaS  Code = 0x0F
	StargS   Code = 0x10
	LdlocS   Code = 0x11
	LdlocaS  Code = 0x12
	StlocS   Code = 0x13
	Ldnull   Code = 0x14
	LdcI4M1  Code = 0x15
	LdcI40   Code = 0x16
	LdcI41   Code = 0x17
	LdcI42   Code = 0x18
	LdcI43   Code = 0x19
	LdcI44   Code = 0x1A
	LdcI45   Code = 0x1B
	LdcI46   Code = 0x1C
	LdcI47   Code = 0x1D
	LdcI48   Code = 0x1E
	LdcI4S   Code = 0x1F
	LdcI4    Code = 0x20
	LdcI8    Code = 0x21
	LdcR4    Code = 0x22
	LdcR8    Code = 0x23
	Dup      Code = 0x25
	Pop      Code = 0x26
	Jmp      Code = 0x27
	Call     Code = 0x28
	Calli    Code = 0x29
	Ret      Code = 0x2A
	BrS      Code = 0x2B
	BrfalseS Code = 0x2C
	BrtrueS  Code = 0x2D
	BeqS     Code = 0x2E
	BgeS     Code = 0x2F
	BgtS     Code = 0x30
	BleS     Code = 0x31
	BltS     Code = 0x32
	BneUnS   Code = 0x33
	BgeUnS   Code = 0x34
	BgtUnS   Code = 0x35
	BleUnS   Code = 0x36
	BltUnS   Code = 0x37
	Br       Code = 0x38
	Brfalse  Code = 0x39
	Brtrue   Code = 0x3A
	Beq      Code = 0x3B
	Bge      Code = 0x3C
	Bgt      Code = 0x3D
	Ble      Code = 0x3E
	Blt      Code = 0x3F
	BneUn    Code = 0x40
	BgeUn    Code = 0x41
	BgtUn    Code = 0x42
	BleUn    Code = 0x43
	BltUn    Code = 0x44
	Switch   Code = 0x45

	// Indirect loads and stores
	LdindI1  Code = 0x46
	LdindU1  Code = 0x47
	LdindI2  Code = 0x48
	LdindU2  Code = 0x49
	LdindI4  Code = 0x4A
	LdindU4  Code = 0x4B
	LdindI8  Code = 0x4C
	LdindI   Code = 0x4D
	LdindR4  Code = 0x4E
	LdindR8  Code = 0x4F
	LdindRef Code = 0x50
	StindRef Code = 0x51
	StindI1  Code = 0x52
	StindI2  Code = 0x53
	StindI4  Code = 0x54
	StindI8  Code = 0x55
	StindR4  Code = 0x56
	StindR8  Code = 0x57

	// Arithmetic
	Add   Code = 0x58
	Sub   Code = 0x59
	Mul   Code = 0x5A
	Div   Code = 0x5B
	DivUn Code = 0x5C
	Rem   Code = 0x5D
	RemUn Code = 0x5E
	And   Code = 0x5F
	Or    Code = 0x60
	Xor   Code = 0x61
	Shl   Code = 0x62
	Shr   Code = 0x63
	ShrUn Code = 0x64
	Neg   Code = 0x65
	Not   Code = 0x66

	// Conversions
	ConvI1  Code = 0x67
	ConvI2  Code = 0x68
	ConvI4  Code = 0x69
	ConvI8  Code = 0x6A
	ConvR4  Code = 0x6B
	ConvR8  Code = 0x6C
	ConvU4  Code = 0x6D
	ConvU8  Code = 0x6E
	ConvRUn Code = 0x76
	ConvU2  Code = 0xD1
	ConvU1  Code = 0xD2
	ConvI   Code = 0xD3
	ConvU   Code = 0xE0

	// Object model
	Callvirt  Code = 0x6F
	Cpobj     Code = 0x70
	Ldobj     Code = 0x71
	Ldstr     Code = 0x72
	Newobj    Code = 0x73
	Castclass Code = 0x74
	Isinst    Code = 0x75
	Unbox     Code = 0x79
	Throw     Code = 0x7A
	Ldfld     Code = 0x7B
	Ldflda    Code = 0x7C
	Stfld     Code = 0x7D
	Ldsfld    Code = 0x7E
	Ldsflda   Code = 0x7F
	Stsfld    Code = 0x80
	Stobj     Code = 0x81
	Box       Code = 0x8C
	Newarr    Code = 0x8D
	Ldlen     Code = 0x8E
	Ldelema   Code = 0x8F
	LdelemI1  Code = 0x90
	LdelemU1  Code = 0x91
	LdelemI2  Code = 0x92
	LdelemU2  Code = 0x93
	LdelemI4  Code = 0x94
	LdelemU4  Code = 0x95
	LdelemI8  Code = 0x96
	LdelemI   Code = 0x97
	LdelemR4  Code = 0x98
	LdelemR8  Code = 0x99
	LdelemRef Code = 0x9A
	StelemI   Code = 0x9B
	StelemI1  Code = 0x9C
	StelemI2  Code = 0x9D
	StelemI4  Code = 0x9E
	StelemI8  Code = 0x9F
	StelemR4  Code = 0xA0
	StelemR8  Code = 0xA1
	StelemRef Code = 0xA2
	Ldelem    Code = 0xA3
	Stelem    Code = 0xA4
	UnboxAny  Code = 0xA5
	Ldtoken   Code = 0xD0
	AddOvf    Code = 0xD6
	AddOvfUn  Code = 0xD7
	MulOvf    Code = 0xD8
	MulOvfUn  Code = 0xD9
	SubOvf    Code = 0xDA
	SubOvfUn  Code = 0xDB

	// Exception handling
	Endfinally Code = 0xDC
	Leave      Code = 0xDD
	LeaveS     Code = 0xDE
	StindI     Code = 0xDF

	// Two-byte instructions
	Arglist     Code = 0xFE00
	Ceq         Code = 0xFE01
	Cgt         Code = 0xFE02
	CgtUn       Code = 0xFE03
	Clt         Code = 0xFE04
	CltUn       Code = 0xFE05
	Ldftn       Code = 0xFE06
	Ldvirtftn   Code = 0xFE07
	Ldarg       Code = 0xFE09
	Ldarga      Code = 0xFE0A
	Starg       Code = 0xFE0B
	Ldloc       Code = 0xFE0C
	Ldloca      Code = 0xFE0D
	Stloc       Code = 0xFE0E
	Localloc    Code = 0xFE0F
	Endfilter   Code = 0xFE11
	Unaligned   Code = 0xFE12
	Volatile    Code = 0xFE13
	Tail        Code = 0xFE14
	Initobj     Code = 0xFE15
	Constrained Code = 0xFE16
	Cpblk       Code = 0xFE17
	Initblk     Code = 0xFE18
	No          Code = 0xFE19
	Rethrow     Code = 0xFE1A
	Sizeof      Code = 0xFE1C
	Refanytype  Code = 0xFE1D
	Readonly    Code = 0xFE1E
)

// FlowControl classifies how an instruction affects control flow.
type FlowControl uint8

const (
	// FlowNext continues with the following instruction.
	FlowNext FlowControl = iota
	// FlowBreak is a debugger break; execution continues.
	FlowBreak
	// FlowCall invokes a method and then continues.
	FlowCall
	// FlowMeta is a prefix that modifies the following instruction.
	FlowMeta
	// FlowBranch transfers control unconditionally.
	FlowBranch
	// FlowCondBranch may transfer control or fall through.
	FlowCondBranch
	// FlowReturn leaves the method.
	FlowReturn
	// FlowThrow raises or re-raises an exception.
	FlowThrow
)

// String returns the lowercase name of the flow-control class.
func (f FlowControl) String() string {
	switch f {
	case FlowNext:
		return "next"
	case FlowBreak:
		return "break"
	case FlowCall:
		return "call"
	case FlowMeta:
		return "meta"
	case FlowBranch:
		return "branch"
	case FlowCondBranch:
		return "cond_branch"
	case FlowReturn:
		return "return"
	case FlowThrow:
		return "throw"
	default:
		return "unknown"
	}
}

// Sequential reports whether control always continues with the next
// instruction.
func (f FlowControl) Sequential() bool {
	switch f {
	case FlowNext, FlowBreak, FlowCall, FlowMeta:
		return true
	default:
		return false
	}
}

// OperandKind describes the inline operand that follows an opcode.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandShortBranchTarget
	OperandBranchTarget
	OperandSwitch
	OperandShortInt
	OperandInt
	OperandLong
	OperandShortFloat
	OperandFloat
	OperandShortVar
	OperandVar
	OperandToken
	OperandString
	OperandMethod
	OperandField
	OperandType
	OperandSig
)

var operandNames = [...]string{
	OperandNone:              "none",
	OperandShortBranchTarget: "short-branch",
	OperandBranchTarget:      "branch",
	OperandSwitch:            "switch",
	OperandShortInt:          "int8",
	OperandInt:               "int32",
	OperandLong:              "int64",
	OperandShortFloat:        "float32",
	OperandFloat:             "float64",
	OperandShortVar:          "short-var",
	OperandVar:               "var",
	OperandToken:             "token",
	OperandString:            "string",
	OperandMethod:            "method",
	OperandField:             "field",
	OperandType:              "type",
	OperandSig:               "sig",
}

func (k OperandKind) String() string {
	if int(k) < len(operandNames) {
		return operandNames[k]
	}
	return "unknown"
}

// IsBranchTarget reports whether the operand names one or more instruction
// offsets in the same method body.
func (k OperandKind) IsBranchTarget() bool {
	return k == OperandShortBranchTarget || k == OperandBranchTarget || k == OperandSwitch
}

// Size returns the encoded size in bytes of an operand of this kind. For
// switch operands, caseCount is the number of jump targets.
func (k OperandKind) Size(caseCount int) int {
	switch k {
	case OperandNone:
		return 0
	case OperandShortBranchTarget, OperandShortInt, OperandShortVar:
		return 1
	case OperandVar:
		return 2
	case OperandLong, OperandFloat:
		return 8
	case OperandSwitch:
		return 4 + 4*caseCount
	default:
		return 4
	}
}

// Info contains information about an opcode.
type Info struct {
	Code    Code
	Name    string
	Operand OperandKind
	Flow    FlowControl
}

// Size returns the number of bytes the opcode itself occupies.
func (i Info) Size() int {
	if i.Code >= 0xFE00 && i.Code != Invalid {
		return 2
	}
	return 1
}

var (
	infos  = map[Code]Info{}
	byName = map[string]Code{}
	order  []Code
)

func init() {
	type opInfo struct {
		op      Code
		name    string
		operand OperandKind
		flow    FlowControl
	}
	ops := []opInfo{
		{Nop, "nop", OperandNone, FlowNext},
		{Break, "break", OperandNone, FlowBreak},
		{Ldarg0, "ldarg.0", OperandNone, FlowNext},
		{Ldarg1, "ldarg.1", OperandNone, FlowNext},
		{Ldarg2, "ldarg.2", OperandNone, FlowNext},
		{Ldarg3, "ldarg.3", OperandNone, FlowNext},
		{Ldloc0, "ldloc.0", OperandNone, FlowNext},
		{Ldloc1, "ldloc.1", OperandNone, FlowNext},
		{Ldloc2, "ldloc.2", OperandNone, FlowNext},
		{Ldloc3, "ldloc.3", OperandNone, FlowNext},
		{Stloc0, "stloc.0", OperandNone, FlowNext},
		{Stloc1, "stloc.1", OperandNone, FlowNext},
		{Stloc2, "stloc.2", OperandNone, FlowNext},
		{Stloc3, "stloc.3", OperandNone, FlowNext},
		{LdargS, "ldarg.s", OperandShortVar, FlowNext},
		{LdargaS, "ldarga.s", OperandShortVar, FlowNext},
		{StargS, "starg.s", OperandShortVar, FlowNext},
		{LdlocS, "ldloc.s", OperandShortVar, FlowNext},
		{LdlocaS, "ldloca.s", OperandShortVar, FlowNext},
		{StlocS, "stloc.s", OperandShortVar, FlowNext},
		{Ldnull, "ldnull", OperandNone, FlowNext},
		{LdcI4M1, "ldc.i4.m1", OperandNone, FlowNext},
		{LdcI40, "ldc.i4.0", OperandNone, FlowNext},
		{LdcI41, "ldc.i4.1", OperandNone, FlowNext},
		{LdcI42, "ldc.i4.2", OperandNone, FlowNext},
		{LdcI43, "ldc.i4.3", OperandNone, FlowNext},
		{LdcI44, "ldc.i4.4", OperandNone, FlowNext},
		{LdcI45, "ldc.i4.5", OperandNone, FlowNext},
		{LdcI46, "ldc.i4.6", OperandNone, FlowNext},
		{LdcI47, "ldc.i4.7", OperandNone, FlowNext},
		{LdcI48, "ldc.i4.8", OperandNone, FlowNext},
		{LdcI4S, "ldc.i4.s", OperandShortInt, FlowNext},
		{LdcI4, "ldc.i4", OperandInt, FlowNext},
		{LdcI8, "ldc.i8", OperandLong, FlowNext},
		{LdcR4, "ldc.r4", OperandShortFloat, FlowNext},
		{LdcR8, "ldc.r8", OperandFloat, FlowNext},
		{Dup, "dup", OperandNone, FlowNext},
		{Pop, "pop", OperandNone, FlowNext},
		{Jmp, "jmp", OperandMethod, FlowCall},
		{Call, "call", OperandMethod, FlowCall},
		{Calli, "calli", OperandSig, FlowCall},
		{Ret, "ret", OperandNone, FlowReturn},
		{BrS, "br.s", OperandShortBranchTarget, FlowBranch},
		{BrfalseS, "brfalse.s", OperandShortBranchTarget, FlowCondBranch},
		{BrtrueS, "brtrue.s", OperandShortBranchTarget, FlowCondBranch},
		{BeqS, "beq.s", OperandShortBranchTarget, FlowCondBranch},
		{BgeS, "bge.s", OperandShortBranchTarget, FlowCondBranch},
		{BgtS, "bgt.s", OperandShortBranchTarget, FlowCondBranch},
		{BleS, "ble.s", OperandShortBranchTarget, FlowCondBranch},
		{BltS, "blt.s", OperandShortBranchTarget, FlowCondBranch},
		{BneUnS, "bne.un.s", OperandShortBranchTarget, FlowCondBranch},
		{BgeUnS, "bge.un.s", OperandShortBranchTarget, FlowCondBranch},
		{BgtUnS, "bgt.un.s", OperandShortBranchTarget, FlowCondBranch},
		{BleUnS, "ble.un.s", OperandShortBranchTarget, FlowCondBranch},
		{BltUnS, "blt.un.s", OperandShortBranchTarget, FlowCondBranch},
		{Br, "br", OperandBranchTarget, FlowBranch},
		{Brfalse, "brfalse", OperandBranchTarget, FlowCondBranch},
		{Brtrue, "brtrue", OperandBranchTarget, FlowCondBranch},
		{Beq, "beq", OperandBranchTarget, FlowCondBranch},
		{Bge, "bge", OperandBranchTarget, FlowCondBranch},
		{Bgt, "bgt", OperandBranchTarget, FlowCondBranch},
		{Ble, "ble", OperandBranchTarget, FlowCondBranch},
		{Blt, "blt", OperandBranchTarget, FlowCondBranch},
		{BneUn, "bne.un", OperandBranchTarget, FlowCondBranch},
		{BgeUn, "bge.un", OperandBranchTarget, FlowCondBranch},
		{BgtUn, "bgt.un", OperandBranchTarget, FlowCondBranch},
		{BleUn, "ble.un", OperandBranchTarget, FlowCondBranch},
		{BltUn, "blt.un", OperandBranchTarget, FlowCondBranch},
		{Switch, "switch", OperandSwitch, FlowCondBranch},
		{LdindI1, "ldind.i1", OperandNone, FlowNext},
		{LdindU1, "ldind.u1", OperandNone, FlowNext},
		{LdindI2, "ldind.i2", OperandNone, FlowNext},
		{LdindU2, "ldind.u2", OperandNone, FlowNext},
		{LdindI4, "ldind.i4", OperandNone, FlowNext},
		{LdindU4, "ldind.u4", OperandNone, FlowNext},
		{LdindI8, "ldind.i8", OperandNone, FlowNext},
		{LdindI, "ldind.i", OperandNone, FlowNext},
		{LdindR4, "ldind.r4", OperandNone, FlowNext},
		{LdindR8, "ldind.r8", OperandNone, FlowNext},
		{LdindRef, "ldind.ref", OperandNone, FlowNext},
		{StindRef, "stind.ref", OperandNone, FlowNext},
		{StindI1, "stind.i1", OperandNone, FlowNext},
		{StindI2, "stind.i2", OperandNone, FlowNext},
		{StindI4, "stind.i4", OperandNone, FlowNext},
		{StindI8, "stind.i8", OperandNone, FlowNext},
		{StindR4, "stind.r4", OperandNone, FlowNext},
		{StindR8, "stind.r8", OperandNone, FlowNext},
		{StindI, "stind.i", OperandNone, FlowNext},
		{Add, "add", OperandNone, FlowNext},
		{Sub, "sub", OperandNone, FlowNext},
		{Mul, "mul", OperandNone, FlowNext},
		{Div, "div", OperandNone, FlowNext},
		{DivUn, "div.un", OperandNone, FlowNext},
		{Rem, "rem", OperandNone, FlowNext},
		{RemUn, "rem.un", OperandNone, FlowNext},
		{And, "and", OperandNone, FlowNext},
		{Or, "or", OperandNone, FlowNext},
		{Xor, "xor", OperandNone, FlowNext},
		{Shl, "shl", OperandNone, FlowNext},
		{Shr, "shr", OperandNone, FlowNext},
		{ShrUn, "shr.un", OperandNone, FlowNext},
		{Neg, "neg", OperandNone, FlowNext},
		{Not, "not", OperandNone, FlowNext},
		{ConvI1, "conv.i1", OperandNone, FlowNext},
		{ConvI2, "conv.i2", OperandNone, FlowNext},
		{ConvI4, "conv.i4", OperandNone, FlowNext},
		{ConvI8, "conv.i8", OperandNone, FlowNext},
		{ConvR4, "conv.r4", OperandNone, FlowNext},
		{ConvR8, "conv.r8", OperandNone, FlowNext},
		{ConvU4, "conv.u4", OperandNone, FlowNext},
		{ConvU8, "conv.u8", OperandNone, FlowNext},
		{ConvRUn, "conv.r.un", OperandNone, FlowNext},
		{ConvU2, "conv.u2", OperandNone, FlowNext},
		{ConvU1, "conv.u1", OperandNone, FlowNext},
		{ConvI, "conv.i", OperandNone, FlowNext},
		{ConvU, "conv.u", OperandNone, FlowNext},
		{Callvirt, "callvirt", OperandMethod, FlowCall},
		{Cpobj, "cpobj", OperandType, FlowNext},
		{Ldobj, "ldobj", OperandType, FlowNext},
		{Ldstr, "ldstr", OperandString, FlowNext},
		{Newobj, "newobj", OperandMethod, FlowCall},
		{Castclass, "castclass", OperandType, FlowNext},
		{Isinst, "isinst", OperandType, FlowNext},
		{Unbox, "unbox", OperandType, FlowNext},
		{Throw, "throw", OperandNone, FlowThrow},
		{Ldfld, "ldfld", OperandField, FlowNext},
		{Ldflda, "ldflda", OperandField, FlowNext},
		{Stfld, "stfld", OperandField, FlowNext},
		{Ldsfld, "ldsfld", OperandField, FlowNext},
		{Ldsflda, "ldsflda", OperandField, FlowNext},
		{Stsfld, "stsfld", OperandField, FlowNext},
		{Stobj, "stobj", OperandType, FlowNext},
		{Box, "box", OperandType, FlowNext},
		{Newarr, "newarr", OperandType, FlowNext},
		{Ldlen, "ldlen", OperandNone, FlowNext},
		{Ldelema, "ldelema", OperandType, FlowNext},
		{LdelemI1, "ldelem.i1", OperandNone, FlowNext},
		{LdelemU1, "ldelem.u1", OperandNone, FlowNext},
		{LdelemI2, "ldelem.i2", OperandNone, FlowNext},
		{LdelemU2, "ldelem.u2", OperandNone, FlowNext},
		{LdelemI4, "ldelem.i4", OperandNone, FlowNext},
		{LdelemU4, "ldelem.u4", OperandNone, FlowNext},
		{LdelemI8, "ldelem.i8", OperandNone, FlowNext},
		{LdelemI, "ldelem.i", OperandNone, FlowNext},
		{LdelemR4, "ldelem.r4", OperandNone, FlowNext},
		{LdelemR8, "ldelem.r8", OperandNone, FlowNext},
		{LdelemRef, "ldelem.ref", OperandNone, FlowNext},
		{StelemI, "stelem.i", OperandNone, FlowNext},
		{StelemI1, "stelem.i1", OperandNone, FlowNext},
		{StelemI2, "stelem.i2", OperandNone, FlowNext},
		{StelemI4, "stelem.i4", OperandNone, FlowNext},
		{StelemI8, "stelem.i8", OperandNone, FlowNext},
		{StelemR4, "stelem.r4", OperandNone, FlowNext},
		{StelemR8, "stelem.r8", OperandNone, FlowNext},
		{StelemRef, "stelem.ref", OperandNone, FlowNext},
		{Ldelem, "ldelem.any", OperandType, FlowNext},
		{Stelem, "stelem.any", OperandType, FlowNext},
		{UnboxAny, "unbox.any", OperandType, FlowNext},
		{Ldtoken, "ldtoken", OperandToken, FlowNext},
		{AddOvf, "add.ovf", OperandNone, FlowNext},
		{AddOvfUn, "add.ovf.un", OperandNone, FlowNext},
		{MulOvf, "mul.ovf", OperandNone, FlowNext},
		{MulOvfUn, "mul.ovf.un", OperandNone, FlowNext},
		{SubOvf, "sub.ovf", OperandNone, FlowNext},
		{SubOvfUn, "sub.ovf.un", OperandNone, FlowNext},
		{Endfinally, "endfinally", OperandNone, FlowReturn},
		{Leave, "leave", OperandBranchTarget, FlowBranch},
		{LeaveS, "leave.s", OperandShortBranchTarget, FlowBranch},
		{Arglist, "arglist", OperandNone, FlowNext},
		{Ceq, "ceq", OperandNone, FlowNext},
		{Cgt, "cgt", OperandNone, FlowNext},
		{CgtUn, "cgt.un", OperandNone, FlowNext},
		{Clt, "clt", OperandNone, FlowNext},
		{CltUn, "clt.un", OperandNone, FlowNext},
		{Ldftn, "ldftn", OperandMethod, FlowNext},
		{Ldvirtftn, "ldvirtftn", OperandMethod, FlowNext},
		{Ldarg, "ldarg", OperandVar, FlowNext},
		{Ldarga, "ldarga", OperandVar, FlowNext},
		{Starg, "starg", OperandVar, FlowNext},
		{Ldloc, "ldloc", OperandVar, FlowNext},
		{Ldloca, "ldloca", OperandVar, FlowNext},
		{Stloc, "stloc", OperandVar, FlowNext},
		{Localloc, "localloc", OperandNone, FlowNext},
		{Endfilter, "endfilter", OperandNone, FlowReturn},
		{Unaligned, "unaligned.", OperandShortInt, FlowMeta},
		{Volatile, "volatile.", OperandNone, FlowMeta},
		{Tail, "tail.", OperandNone, FlowMeta},
		{Initobj, "initobj", OperandType, FlowNext},
		{Constrained, "constrained.", OperandType, FlowMeta},
		{Cpblk, "cpblk", OperandNone, FlowNext},
		{Initblk, "initblk", OperandNone, FlowNext},
		{No, "no.", OperandShortInt, FlowMeta},
		{Rethrow, "rethrow", OperandNone, FlowThrow},
		{Sizeof, "sizeof", OperandType, FlowNext},
		{Refanytype, "refanytype", OperandNone, FlowNext},
		{Readonly, "readonly.", OperandNone, FlowMeta},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:    o.op,
			Name:    o.name,
			Operand: o.operand,
			Flow:    o.flow,
		}
		byName[o.name] = o.op
		order = append(order, o.op)
	}
	// endfault shares its encoding with endfinally
	byName["endfault"] = Endfinally
}

// GetInfo returns information about the given opcode. The second return value
// is false when the opcode is not part of the table.
func GetInfo(code Code) (Info, bool) {
	info, ok := infos[code]
	return info, ok
}

// Lookup resolves an opcode by its assembler name, e.g. "leave.s". Names are
// case-insensitive.
func Lookup(name string) (Code, bool) {
	code, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// All returns every opcode in the table in declaration order.
func All() []Code {
	out := make([]Code, len(order))
	copy(out, order)
	return out
}

// String returns the assembler name of the opcode.
func (c Code) String() string {
	if info, ok := infos[c]; ok {
		return info.Name
	}
	return "invalid"
}

// IsLeave reports whether the opcode is leave or leave.s.
func (c Code) IsLeave() bool {
	return c == Leave || c == LeaveS
}
