package wasm

// SignatureCode classifies the stack effect of an instruction: how many
// operands of which type it pops and what type (if any) it pushes. It
// mirrors the fixed-arity instruction classes the original toolchain's
// Encodings table assigns to every non-control opcode, and is what the
// stack validator (package validator) dispatches on instead of hav
// special-cased type logic per arithmetic/conversion opcode.
//
// SigSpecial marks opcodes whose stack effect depends on more than their
// opcode alone (locals, globals, tables, blocks, branches, calls,
// select, drop, references) - those are still type-checked, just by
// dedicated logic that consults the instruction's immediate and the
// module rather than a fixed signature.
type SignatureCode int

const (
	SigVoid SignatureCode = iota
	SigSpecial

	SigF32
	SigF32F32
	SigF32F32F32
	SigF32F64
	SigF32I32
	SigF32I64

	SigF64
	SigF64F32
	SigF64F64
	SigF64F64F64
	SigF64I32
	SigF64I64

	SigI32
	SigI32F32
	SigI32F32F32
	SigI32F64
	SigI32F64F64
	SigI32I32
	SigI32I32I32
	SigI32I32I32I32
	SigI32I32I32I64
	SigI32I32I64I64
	SigI32I64
	SigI32I64I64

	SigI64
	SigI64F32
	SigI64F64
	SigI64I32
	SigI64I32I64
	SigI64I32I64I64
	SigI64I64
	SigI64I64I64

	SigVoidI32
	SigVoidI32F32
	SigVoidI32F64
	SigVoidI32I32
	SigVoidI32I32I32
	SigVoidI32I64
)

// Effect describes a resolved stack effect: the types popped (in
// declaration order; the last one is popped first, since it is the
// operand pushed last / sitting on top of the stack) and the type
// pushed, if any.
type Effect struct {
	Pops    []ValType
	Push    ValType
	HasPush bool
}

func eff(push ValType, pops ...ValType) Effect {
	return Effect{Pops: pops, Push: push, HasPush: true}
}

func effVoid(pops ...ValType) Effect {
	return Effect{Pops: pops}
}

// StackEffect resolves a SignatureCode into the concrete types it pops
// and pushes. SigVoid and SigSpecial resolve to a no-op effect; callers
// must special-case SigSpecial themselves.
func (s SignatureCode) StackEffect() Effect {
	switch s {
	case SigF32:
		return eff(ValF32)
	case SigF32F32:
		return eff(ValF32, ValF32)
	case SigF32F32F32:
		return eff(ValF32, ValF32, ValF32)
	case SigF32F64:
		return eff(ValF32, ValF64)
	case SigF32I32:
		return eff(ValF32, ValI32)
	case SigF32I64:
		return eff(ValF32, ValI64)

	case SigF64:
		return eff(ValF64)
	case SigF64F32:
		return eff(ValF64, ValF32)
	case SigF64F64:
		return eff(ValF64, ValF64)
	case SigF64F64F64:
		return eff(ValF64, ValF64, ValF64)
	case SigF64I32:
		return eff(ValF64, ValI32)
	case SigF64I64:
		return eff(ValF64, ValI64)

	case SigI32:
		return eff(ValI32)
	case SigI32F32:
		return eff(ValI32, ValF32)
	case SigI32F32F32:
		return eff(ValI32, ValF32, ValF32)
	case SigI32F64:
		return eff(ValI32, ValF64)
	case SigI32F64F64:
		return eff(ValI32, ValF64, ValF64)
	case SigI32I32:
		return eff(ValI32, ValI32)
	case SigI32I32I32:
		return eff(ValI32, ValI32, ValI32)
	case SigI32I32I32I32:
		return eff(ValI32, ValI32, ValI32, ValI32)
	case SigI32I32I32I64:
		return eff(ValI32, ValI32, ValI32, ValI64)
	case SigI32I32I64I64:
		return eff(ValI32, ValI32, ValI64, ValI64)
	case SigI32I64:
		return eff(ValI32, ValI64)
	case SigI32I64I64:
		return eff(ValI32, ValI64, ValI64)

	case SigI64:
		return eff(ValI64)
	case SigI64F32:
		return eff(ValI64, ValF32)
	case SigI64F64:
		return eff(ValI64, ValF64)
	case SigI64I32:
		return eff(ValI64, ValI32)
	case SigI64I32I64:
		return eff(ValI64, ValI32, ValI64)
	case SigI64I32I64I64:
		return eff(ValI64, ValI32, ValI64, ValI64)
	case SigI64I64:
		return eff(ValI64, ValI64)
	case SigI64I64I64:
		return eff(ValI64, ValI64, ValI64)

	case SigVoidI32:
		return effVoid(ValI32)
	case SigVoidI32F32:
		return effVoid(ValI32, ValF32)
	case SigVoidI32F64:
		return effVoid(ValI32, ValF64)
	case SigVoidI32I32:
		return effVoid(ValI32, ValI32)
	case SigVoidI32I32I32:
		return effVoid(ValI32, ValI32, ValI32)
	case SigVoidI32I64:
		return effVoid(ValI32, ValI64)

	default:
		return Effect{}
	}
}

// opcodeSignatures covers every fixed-arity primary opcode in scope:
// numeric, comparison, conversion, sign-extension and memory
// load/store instructions. Opcodes needing module or immediate context
// (locals, globals, tables, control flow, calls, select, references,
// drop) are intentionally absent here and resolve to SigSpecial.
var opcodeSignatures = map[byte]SignatureCode{
	OpNop: SigVoid,

	// i32 comparisons
	OpI32Eqz: SigI32I32, OpI32Eq: SigI32I32I32, OpI32Ne: SigI32I32I32,
	OpI32LtS: SigI32I32I32, OpI32LtU: SigI32I32I32, OpI32GtS: SigI32I32I32, OpI32GtU: SigI32I32I32,
	OpI32LeS: SigI32I32I32, OpI32LeU: SigI32I32I32, OpI32GeS: SigI32I32I32, OpI32GeU: SigI32I32I32,

	// i64 comparisons (pop two i64, push i32)
	OpI64Eqz: SigI32I64, OpI64Eq: SigI32I64I64, OpI64Ne: SigI32I64I64,
	OpI64LtS: SigI32I64I64, OpI64LtU: SigI32I64I64, OpI64GtS: SigI32I64I64, OpI64GtU: SigI32I64I64,
	OpI64LeS: SigI32I64I64, OpI64LeU: SigI32I64I64, OpI64GeS: SigI32I64I64, OpI64GeU: SigI32I64I64,

	// f32/f64 comparisons
	OpF32Eq: SigI32F32F32, OpF32Ne: SigI32F32F32, OpF32Lt: SigI32F32F32,
	OpF32Gt: SigI32F32F32, OpF32Le: SigI32F32F32, OpF32Ge: SigI32F32F32,
	OpF64Eq: SigI32F64F64, OpF64Ne: SigI32F64F64, OpF64Lt: SigI32F64F64,
	OpF64Gt: SigI32F64F64, OpF64Le: SigI32F64F64, OpF64Ge: SigI32F64F64,

	// i32 unary/binary
	OpI32Clz: SigI32I32, OpI32Ctz: SigI32I32, OpI32Popcnt: SigI32I32,
	OpI32Add: SigI32I32I32, OpI32Sub: SigI32I32I32, OpI32Mul: SigI32I32I32,
	OpI32DivS: SigI32I32I32, OpI32DivU: SigI32I32I32, OpI32RemS: SigI32I32I32, OpI32RemU: SigI32I32I32,
	OpI32And: SigI32I32I32, OpI32Or: SigI32I32I32, OpI32Xor: SigI32I32I32,
	OpI32Shl: SigI32I32I32, OpI32ShrS: SigI32I32I32, OpI32ShrU: SigI32I32I32,
	OpI32Rotl: SigI32I32I32, OpI32Rotr: SigI32I32I32,

	// i64 unary/binary
	OpI64Clz: SigI64I64, OpI64Ctz: SigI64I64, OpI64Popcnt: SigI64I64,
	OpI64Add: SigI64I64I64, OpI64Sub: SigI64I64I64, OpI64Mul: SigI64I64I64,
	OpI64DivS: SigI64I64I64, OpI64DivU: SigI64I64I64, OpI64RemS: SigI64I64I64, OpI64RemU: SigI64I64I64,
	OpI64And: SigI64I64I64, OpI64Or: SigI64I64I64, OpI64Xor: SigI64I64I64,
	OpI64Shl: SigI64I64I64, OpI64ShrS: SigI64I64I64, OpI64ShrU: SigI64I64I64,
	OpI64Rotl: SigI64I64I64, OpI64Rotr: SigI64I64I64,

	// f32 unary/binary
	OpF32Abs: SigF32F32, OpF32Neg: SigF32F32, OpF32Ceil: SigF32F32, OpF32Floor: SigF32F32,
	OpF32Trunc: SigF32F32, OpF32Nearest: SigF32F32, OpF32Sqrt: SigF32F32,
	OpF32Add: SigF32F32F32, OpF32Sub: SigF32F32F32, OpF32Mul: SigF32F32F32, OpF32Div: SigF32F32F32,
	OpF32Min: SigF32F32F32, OpF32Max: SigF32F32F32, OpF32Copysign: SigF32F32F32,

	// f64 unary/binary
	OpF64Abs: SigF64F64, OpF64Neg: SigF64F64, OpF64Ceil: SigF64F64, OpF64Floor: SigF64F64,
	OpF64Trunc: SigF64F64, OpF64Nearest: SigF64F64, OpF64Sqrt: SigF64F64,
	OpF64Add: SigF64F64F64, OpF64Sub: SigF64F64F64, OpF64Mul: SigF64F64F64, OpF64Div: SigF64F64F64,
	OpF64Min: SigF64F64F64, OpF64Max: SigF64F64F64, OpF64Copysign: SigF64F64F64,

	// Conversions
	OpI32WrapI64: SigI32I64,
	OpI32TruncF32S: SigI32F32, OpI32TruncF32U: SigI32F32, OpI32TruncF64S: SigI32F64, OpI32TruncF64U: SigI32F64,
	OpI64ExtendI32S: SigI64I32, OpI64ExtendI32U: SigI64I32,
	OpI64TruncF32S: SigI64F32, OpI64TruncF32U: SigI64F32, OpI64TruncF64S: SigI64F64, OpI64TruncF64U: SigI64F64,
	OpF32ConvertI32S: SigF32I32, OpF32ConvertI32U: SigF32I32, OpF32ConvertI64S: SigF32I64, OpF32ConvertI64U: SigF32I64,
	OpF32DemoteF64: SigF32F64,
	OpF64ConvertI32S: SigF64I32, OpF64ConvertI32U: SigF64I32, OpF64ConvertI64S: SigF64I64, OpF64ConvertI64U: SigF64I64,
	OpF64PromoteF32:     SigF64F32,
	OpI32ReinterpretF32: SigI32F32, OpI64ReinterpretF64: SigI64F64,
	OpF32ReinterpretI32: SigF32I32, OpF64ReinterpretI64: SigF64I64,

	// Sign extension
	OpI32Extend8S: SigI32I32, OpI32Extend16S: SigI32I32,
	OpI64Extend8S: SigI64I64, OpI64Extend16S: SigI64I64, OpI64Extend32S: SigI64I64,

	// Memory loads: address (i32) -> value
	OpI32Load: SigI32I32, OpI32Load8S: SigI32I32, OpI32Load8U: SigI32I32,
	OpI32Load16S: SigI32I32, OpI32Load16U: SigI32I32,
	OpI64Load: SigI64I32, OpI64Load8S: SigI64I32, OpI64Load8U: SigI64I32,
	OpI64Load16S: SigI64I32, OpI64Load16U: SigI64I32, OpI64Load32S: SigI64I32, OpI64Load32U: SigI64I32,
	OpF32Load: SigF32I32, OpF64Load: SigF64I32,

	// Memory stores: address (i32), value -> void
	OpI32Store: SigVoidI32I32, OpI32Store8: SigVoidI32I32, OpI32Store16: SigVoidI32I32,
	OpI64Store: SigVoidI32I64, OpI64Store8: SigVoidI32I64, OpI64Store16: SigVoidI32I64, OpI64Store32: SigVoidI32I64,
	OpF32Store: SigVoidI32F32, OpF64Store: SigVoidI32F64,
}

// miscSignatures covers the 0xFC-prefixed bulk memory and saturating
// truncation sub-opcodes with a fixed arity. Table sub-opcodes
// (table.grow/size/fill) depend on the referenced table's element type
// and are handled as SigSpecial by the validator instead.
var miscSignatures = map[uint32]SignatureCode{
	MiscI32TruncSatF32S: SigI32F32, MiscI32TruncSatF32U: SigI32F32,
	MiscI32TruncSatF64S: SigI32F64, MiscI32TruncSatF64U: SigI32F64,
	MiscI64TruncSatF32S: SigI64F32, MiscI64TruncSatF32U: SigI64F32,
	MiscI64TruncSatF64S: SigI64F64, MiscI64TruncSatF64U: SigI64F64,

	MiscMemoryInit: SigVoidI32I32I32,
	MiscDataDrop:   SigVoid,
	MiscMemoryCopy: SigVoidI32I32I32,
	MiscMemoryFill: SigVoidI32I32I32,

	MiscTableInit: SigVoidI32I32I32,
	MiscElemDrop:  SigVoid,
	MiscTableCopy: SigVoidI32I32I32,
}

// SignatureOf resolves a primary opcode's fixed stack signature. ok is
// false for opcodes needing special-cased handling (control flow,
// locals/globals/tables, calls, references, select, drop) or unknown
// to this table (SIMD/threads/GC, out of scope).
func SignatureOf(op byte) (SignatureCode, bool) {
	sig, ok := opcodeSignatures[op]
	return sig, ok
}

// MiscSignatureOf resolves a 0xFC sub-opcode's fixed stack signature.
func MiscSignatureOf(sub uint32) (SignatureCode, bool) {
	sig, ok := miscSignatures[sub]
	return sig, ok
}
