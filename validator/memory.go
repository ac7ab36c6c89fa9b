package validator

import "github.com/libwasm/libwasm-go/wasm"

func (v *Validator) checkLocal(instr wasm.Instruction) {
	imm := instr.Imm.(wasm.LocalImm)
	if int(imm.LocalIdx) >= len(v.locals) {
		v.errorf("local.* references invalid local index %d", imm.LocalIdx)
		if instr.Opcode == wasm.OpLocalGet {
			v.pushOperand(bottomType)
		} else if instr.Opcode == wasm.OpLocalTee {
			v.popOperand()
			v.pushOperand(bottomType)
		} else {
			v.popOperand()
		}
		return
	}
	t := v.locals[imm.LocalIdx]
	switch instr.Opcode {
	case wasm.OpLocalGet:
		v.pushOperand(t)
	case wasm.OpLocalSet:
		v.popExpect(t)
	case wasm.OpLocalTee:
		v.popExpect(t)
		v.pushOperand(t)
	}
}

func (v *Validator) checkGlobal(instr wasm.Instruction) {
	imm := instr.Imm.(wasm.GlobalImm)
	gt := v.mod.GetGlobalType(imm.GlobalIdx)
	if gt == nil {
		v.errorf("global.* references invalid global index %d", imm.GlobalIdx)
		if instr.Opcode == wasm.OpGlobalGet {
			v.pushOperand(bottomType)
		} else {
			v.popOperand()
		}
		return
	}
	switch instr.Opcode {
	case wasm.OpGlobalGet:
		v.pushOperand(gt.ValType)
	case wasm.OpGlobalSet:
		if !gt.Mutable {
			v.errorf("global.set on immutable global %d", imm.GlobalIdx)
		}
		v.popExpect(gt.ValType)
	}
}

func elemRefType(tt *wasm.TableType) wasm.ValType {
	return wasm.ValType(tt.ElemType)
}

func (v *Validator) checkTable(instr wasm.Instruction) {
	imm := instr.Imm.(wasm.TableImm)
	tt := v.mod.GetTableType(imm.TableIdx)
	if tt == nil {
		v.errorf("table.* references invalid table index %d", imm.TableIdx)
		if instr.Opcode == wasm.OpTableGet {
			v.popOperand()
			v.pushOperand(bottomType)
		} else {
			v.popOperand()
			v.popOperand()
		}
		return
	}
	rt := elemRefType(tt)
	switch instr.Opcode {
	case wasm.OpTableGet:
		v.popExpect(wasm.ValI32)
		v.pushOperand(rt)
	case wasm.OpTableSet:
		v.popExpect(rt)
		v.popExpect(wasm.ValI32)
	}
}

// checkMisc handles the 0xFC-prefixed bulk memory and table
// instructions. Fixed-arity ones resolve through wasm.MiscSignatureOf;
// table.grow/size/fill depend on the referenced table's element type
// and are handled here directly.
func (v *Validator) checkMisc(instr wasm.Instruction) {
	imm := instr.Imm.(wasm.MiscImm)

	switch imm.SubOpcode {
	case wasm.MiscTableGrow:
		tableIdx := imm.Operands[0]
		tt := v.mod.GetTableType(tableIdx)
		if tt == nil {
			v.errorf("table.grow references invalid table index %d", tableIdx)
			v.popOperand()
			v.popOperand()
			v.pushOperand(wasm.ValI32)
			return
		}
		v.popExpect(wasm.ValI32)
		v.popExpect(elemRefType(tt))
		v.pushOperand(wasm.ValI32)
		return

	case wasm.MiscTableSize:
		tableIdx := imm.Operands[0]
		if v.mod.GetTableType(tableIdx) == nil {
			v.errorf("table.size references invalid table index %d", tableIdx)
		}
		v.pushOperand(wasm.ValI32)
		return

	case wasm.MiscTableFill:
		tableIdx := imm.Operands[0]
		tt := v.mod.GetTableType(tableIdx)
		if tt == nil {
			v.errorf("table.fill references invalid table index %d", tableIdx)
			v.popOperand()
			v.popOperand()
			v.popOperand()
			return
		}
		v.popExpect(wasm.ValI32)
		v.popExpect(elemRefType(tt))
		v.popExpect(wasm.ValI32)
		return

	case wasm.MiscMemoryDiscard:
		memIdx := imm.Operands[0]
		if v.mod.GetMemoryType(memIdx) == nil {
			v.errorf("memory.discard references invalid memory index %d", memIdx)
		}
		v.popExpect(wasm.ValI32)
		v.popExpect(wasm.ValI32)
		return
	}

	if sig, ok := wasm.MiscSignatureOf(imm.SubOpcode); ok {
		v.applySignature(sig)
		return
	}
	v.errorf("unsupported 0xFC sub-opcode 0x%02x", imm.SubOpcode)
}

func (v *Validator) checkMemSize(instr wasm.Instruction) {
	imm := instr.Imm.(wasm.MemoryIdxImm)
	if v.mod.GetMemoryType(imm.MemIdx) == nil {
		v.errorf("memory.size references invalid memory index %d", imm.MemIdx)
	}
	v.pushOperand(wasm.ValI32)
}

func (v *Validator) checkMemGrow(instr wasm.Instruction) {
	imm := instr.Imm.(wasm.MemoryIdxImm)
	if v.mod.GetMemoryType(imm.MemIdx) == nil {
		v.errorf("memory.grow references invalid memory index %d", imm.MemIdx)
	}
	v.popExpect(wasm.ValI32)
	v.pushOperand(wasm.ValI32)
}

// checkConstExpr validates a constant initializer expression (global
// initializers, and active element/data segment offsets): exactly one
// of *.const, global.get of an immutable global, ref.null or ref.func,
// followed by end.
func (v *Validator) checkConstExpr(raw []byte, expect wasm.ValType, context string) {
	instrs, err := wasm.DecodeInstructions(raw)
	if err != nil {
		v.errorf("%s: %v", context, err)
		return
	}
	if len(instrs) == 0 || instrs[len(instrs)-1].Opcode != wasm.OpEnd {
		v.errorf("%s: constant expression missing end", context)
		return
	}
	body := instrs[:len(instrs)-1]
	if len(body) != 1 {
		v.errorf("%s: constant expression must be exactly one instruction", context)
		return
	}

	instr := body[0]
	var got wasm.ValType
	switch instr.Opcode {
	case wasm.OpI32Const:
		got = wasm.ValI32
	case wasm.OpI64Const:
		got = wasm.ValI64
	case wasm.OpF32Const:
		got = wasm.ValF32
	case wasm.OpF64Const:
		got = wasm.ValF64
	case wasm.OpGlobalGet:
		imm := instr.Imm.(wasm.GlobalImm)
		gt := v.mod.GetGlobalType(imm.GlobalIdx)
		if gt == nil {
			v.errorf("%s: references invalid global index %d", context, imm.GlobalIdx)
			return
		}
		if gt.Mutable {
			v.errorf("%s: global.get of a mutable global is not a constant expression", context)
		}
		got = gt.ValType
	case wasm.OpRefNull:
		imm := instr.Imm.(wasm.RefNullImm)
		got = refTypeFromHeapType(imm.HeapType)
	case wasm.OpRefFunc:
		got = wasm.ValFuncRef
	default:
		v.errorf("%s: opcode 0x%02x is not valid in a constant expression", context, instr.Opcode)
		return
	}

	if expect != bottomType && got != expect {
		v.errorf("%s: type mismatch: expected %s, got %s", context, expect, got)
	}
}

// refTypeFromHeapType maps ref.null's s33-encoded heap type to the
// simple ValType used for stack typing. Indexed (typed-function)
// heap types are treated as funcref, since this validator tracks GC
// type indices only to the extent needed for stack arity, not full
// type-index subtyping.
func refTypeFromHeapType(ht int64) wasm.ValType {
	switch ht {
	case -16:
		return wasm.ValFuncRef
	case -17:
		return wasm.ValExtern
	default:
		return wasm.ValFuncRef
	}
}
