package domain

// Vendor identifies a supported PLC family.
type Vendor string

const (
	VendorSiemens    Vendor = "siemens"
	VendorMitsubishi Vendor = "mitsubishi"
	VendorRockwell   Vendor = "rockwell"
	VendorLS         Vendor = "ls"
	VendorOmron      Vendor = "omron"
)

// Opcode is a member of the unified UDML instruction set. Every translated
// Program contains only these; vendor mnemonics survive solely in
// Instruction.SourceOp for traceability.
type Opcode string

const (
	// Data movement.
	OpLoad  Opcode = "LOAD"
	OpStore Opcode = "STORE"
	OpMove  Opcode = "MOVE"
	OpSet   Opcode = "SET"
	OpReset Opcode = "RESET"

	// Boolean logic.
	OpAnd Opcode = "AND"
	OpOr  Opcode = "OR"
	OpXor Opcode = "XOR"
	OpNot Opcode = "NOT"

	// Comparison.
	OpEq Opcode = "EQ"
	OpNe Opcode = "NE"
	OpGt Opcode = "GT"
	OpLt Opcode = "LT"
	OpGe Opcode = "GE"
	OpLe Opcode = "LE"

	// Arithmetic.
	OpAdd Opcode = "ADD"
	OpSub Opcode = "SUB"
	OpMul Opcode = "MUL"
	OpDiv Opcode = "DIV"
	OpMod Opcode = "MOD"
	OpNeg Opcode = "NEG"
	OpAbs Opcode = "ABS"
	OpShl Opcode = "SHL"
	OpShr Opcode = "SHR"

	// Timers.
	OpTon Opcode = "TON"
	OpTof Opcode = "TOF"
	OpTp  Opcode = "TP"

	// Counters.
	OpCtu  Opcode = "CTU"
	OpCtd  Opcode = "CTD"
	OpCtud Opcode = "CTUD"

	// Control flow.
	OpCall  Opcode = "CALL"
	OpRet   Opcode = "RET"
	OpJmp   Opcode = "JMP"
	OpJz    Opcode = "JZ"
	OpJnz   Opcode = "JNZ"
	OpLabel Opcode = "LBL"

	// I/O access.
	OpReadIO  Opcode = "RDIO"
	OpWriteIO Opcode = "WRIO"

	OpNop Opcode = "NOP"
)

// opcodeSet is the closed unified set used for validation on deserialize.
var opcodeSet = map[Opcode]struct{}{
	OpLoad: {}, OpStore: {}, OpMove: {}, OpSet: {}, OpReset: {},
	OpAnd: {}, OpOr: {}, OpXor: {}, OpNot: {},
	OpEq: {}, OpNe: {}, OpGt: {}, OpLt: {}, OpGe: {}, OpLe: {},
	OpAdd: {}, OpSub: {}, OpMul: {}, OpDiv: {}, OpMod: {}, OpNeg: {}, OpAbs: {}, OpShl: {}, OpShr: {},
	OpTon: {}, OpTof: {}, OpTp: {},
	OpCtu: {}, OpCtd: {}, OpCtud: {},
	OpCall: {}, OpRet: {}, OpJmp: {}, OpJz: {}, OpJnz: {}, OpLabel: {},
	OpReadIO: {}, OpWriteIO: {},
	OpNop: {},
}

// Valid reports whether op belongs to the unified set.
func (op Opcode) Valid() bool {
	_, ok := opcodeSet[op]
	return ok
}

// IsBranch reports whether op transfers control within or out of a block.
func (op Opcode) IsBranch() bool {
	switch op {
	case OpJmp, OpJz, OpJnz, OpCall, OpRet:
		return true
	}
	return false
}

// IsConditionalBranch reports whether op branches on a condition.
func (op Opcode) IsConditionalBranch() bool {
	return op == OpJz || op == OpJnz
}

// IsStateful reports whether op binds a timer/counter instance whose
// identity must survive optimization untouched.
func (op Opcode) IsStateful() bool {
	switch op {
	case OpTon, OpTof, OpTp, OpCtu, OpCtd, OpCtud:
		return true
	}
	return false
}

// OperandKind classifies an instruction operand.
type OperandKind string

const (
	OperandBit     OperandKind = "bit"     // boolean bit reference, e.g. I0.0
	OperandInt     OperandKind = "int"     // immediate integer
	OperandTimer   OperandKind = "timer"   // timer instance reference
	OperandCounter OperandKind = "counter" // counter instance reference
	OperandAddress OperandKind = "address" // resolved memory address, e.g. MW10
	OperandBlock   OperandKind = "block"   // target block reference for CALL/JMP
)

// Operand is a fully resolved instruction argument. Sym carries the decoded
// symbolic form for reference kinds; Value carries immediates.
type Operand struct {
	Kind  OperandKind `json:"kind"`
	Sym   string      `json:"sym,omitempty"`
	Value int64       `json:"value,omitempty"`
}

// Instruction is one normalized UDML instruction. Immutable once produced.
type Instruction struct {
	Opcode   Opcode    `json:"opcode"`
	Operands []Operand `json:"operands,omitempty"`
	Negated  bool      `json:"negated,omitempty"`
	SourceOp string    `json:"source_op"`
	Line     int       `json:"line"`
}
