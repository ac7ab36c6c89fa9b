package validator

import (
	"github.com/libwasm/libwasm-go/errs"
	"github.com/libwasm/libwasm-go/wasm"
)

// checkSpecial handles every opcode whose stack effect depends on more
// than the opcode alone: control flow, locals/globals/tables, calls,
// references, select and drop. Anything this validator doesn't know
// about (SIMD, threads, GC, exception handling) is reported as a
// warning rather than failing the pass outright, since a module using
// those proposals is out of this toolchain's scope, not necessarily
// invalid.
func (v *Validator) checkSpecial(instr wasm.Instruction) {
	switch instr.Opcode {
	case wasm.OpBlock, wasm.OpLoop, wasm.OpIf, wasm.OpTry:
		v.checkBlock(instr)
	case wasm.OpElse:
		v.checkElse()
	case wasm.OpEnd:
		v.checkEnd()

	case wasm.OpBr:
		v.checkBr(instr.Imm.(wasm.BranchImm).LabelIdx)
	case wasm.OpBrIf:
		v.checkBrIf(instr.Imm.(wasm.BranchImm).LabelIdx)
	case wasm.OpBrTable:
		imm := instr.Imm.(wasm.BrTableImm)
		v.checkBrTable(imm.Labels, imm.Default)

	case wasm.OpCall:
		v.checkCall(instr.Imm.(wasm.CallImm).FuncIdx)
	case wasm.OpCallIndirect:
		imm := instr.Imm.(wasm.CallIndirectImm)
		v.checkCallIndirect(imm.TypeIdx, imm.TableIdx)
	case wasm.OpReturnCall:
		v.checkReturnCall(instr.Imm.(wasm.CallImm).FuncIdx)
	case wasm.OpReturnCallIndirect:
		imm := instr.Imm.(wasm.CallIndirectImm)
		v.checkReturnCallIndirect(imm.TypeIdx, imm.TableIdx)
	case wasm.OpReturn:
		v.checkReturn()

	case wasm.OpUnreachable:
		v.setUnreachable()
	case wasm.OpNop:
		// handled by the signature table; kept here defensively

	case wasm.OpDrop:
		v.popOperand()

	case wasm.OpSelect:
		v.popExpect(wasm.ValI32)
		t2 := v.popOperand()
		t1 := v.popOperand()
		result := t1
		if result == bottomType {
			result = t2
		}
		if t1 != bottomType && t2 != bottomType && t1 != t2 {
			v.errorf("select: operand types do not match: %s vs %s", t1, t2)
		}
		v.pushOperand(result)

	case wasm.OpSelectType:
		imm := instr.Imm.(wasm.SelectTypeImm)
		v.popExpect(wasm.ValI32)
		v.popOperands(imm.Types)
		v.popOperands(imm.Types)
		v.pushOperands(imm.Types)

	case wasm.OpRefNull:
		imm := instr.Imm.(wasm.RefNullImm)
		v.pushOperand(refTypeFromHeapType(imm.HeapType))
	case wasm.OpRefIsNull:
		v.popOperand()
		v.pushOperand(wasm.ValI32)
	case wasm.OpRefFunc:
		imm := instr.Imm.(wasm.RefFuncImm)
		numFuncs := uint32(v.mod.NumImportedFuncs() + len(v.mod.Funcs))
		if imm.FuncIdx >= numFuncs {
			v.errorf("ref.func references invalid function index %d", imm.FuncIdx)
		}
		v.pushOperand(wasm.ValFuncRef)

	case wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee:
		v.checkLocal(instr)
	case wasm.OpGlobalGet, wasm.OpGlobalSet:
		v.checkGlobal(instr)
	case wasm.OpTableGet, wasm.OpTableSet:
		v.checkTable(instr)

	case wasm.OpMemorySize:
		v.checkMemSize(instr)
	case wasm.OpMemoryGrow:
		v.checkMemGrow(instr)

	default:
		v.handler.Warnf(errs.Advisory, "opcode 0x%02x is not validated by this pass (unsupported proposal)", instr.Opcode)
	}
}
