package validator

import "github.com/libwasm/libwasm-go/wasm"

// checkBlock handles block, loop, if and try: all four share
// BlockImm's block-type encoding, and differ only in which types a
// branch to the frame must supply (a loop branches back to its own
// start, so its label type is its parameter list; anything else
// branches to its end, so its label type is its result list) and, for
// if, in consuming the i32 condition first.
func (v *Validator) checkBlock(instr wasm.Instruction) {
	imm, _ := instr.Imm.(wasm.BlockImm)
	if instr.Opcode == wasm.OpIf {
		v.popExpect(wasm.ValI32)
	}
	params, results := v.resolveBlockType(imm.Type)
	v.popOperands(params)

	label := results
	if instr.Opcode == wasm.OpLoop {
		label = params
	}
	v.pushFrame(instr.Opcode, label, results, params)
	v.pushOperands(params)
}

func (v *Validator) resolveBlockType(bt int32) (params, results []wasm.ValType) {
	switch bt {
	case wasm.BlockTypeVoid:
		return nil, nil
	case wasm.BlockTypeI32:
		return nil, []wasm.ValType{wasm.ValI32}
	case wasm.BlockTypeI64:
		return nil, []wasm.ValType{wasm.ValI64}
	case wasm.BlockTypeF32:
		return nil, []wasm.ValType{wasm.ValF32}
	case wasm.BlockTypeF64:
		return nil, []wasm.ValType{wasm.ValF64}
	case wasm.BlockTypeV128:
		return nil, []wasm.ValType{wasm.ValV128}
	}
	if bt < 0 {
		v.errorf("invalid block type encoding %d", bt)
		return nil, nil
	}
	ft := v.mod.TypeByIndex(uint32(bt))
	if ft == nil {
		v.errorf("block references invalid type index %d", bt)
		return nil, nil
	}
	return ft.Params, ft.Results
}

func (v *Validator) checkElse() {
	if len(v.frames) == 0 {
		v.errorf("else outside any block")
		return
	}
	f := v.curFrame()
	if f.Opcode != wasm.OpIf {
		v.errorf("else without a matching if")
		return
	}
	v.popOperands(f.End)
	if len(v.operands) != f.Height {
		v.errorf("operand stack height mismatch at else: expected %d, got %d", f.Height, len(v.operands))
	}
	v.operands = v.operands[:f.Height]
	f.Unreach = false
	f.SawElse = true
	v.pushOperands(f.Params)
}

func (v *Validator) checkEnd() {
	if len(v.frames) == 0 {
		v.errorf("end without a matching block")
		return
	}
	f := v.curFrame()
	if f.Opcode == wasm.OpIf && !f.SawElse && !valTypesEqual(f.Params, f.End) {
		v.errorf("if without else must have identical parameter and result types")
	}
	popped := v.popFrame()
	if len(v.frames) > 0 {
		v.pushOperands(popped.End)
	}
}

func (v *Validator) checkBr(n uint32) {
	f, ok := v.getFrame(n)
	if !ok {
		v.errorf("branch to out-of-range label %d", n)
		return
	}
	v.popOperands(f.Label)
	v.setUnreachable()
}

func (v *Validator) checkBrIf(n uint32) {
	v.popExpect(wasm.ValI32)
	f, ok := v.getFrame(n)
	if !ok {
		v.errorf("branch to out-of-range label %d", n)
		return
	}
	types := append([]wasm.ValType(nil), f.Label...)
	v.popOperands(types)
	v.pushOperands(types)
}

func (v *Validator) checkBrTable(labels []uint32, def uint32) {
	v.popExpect(wasm.ValI32)
	defFrame, ok := v.getFrame(def)
	if !ok {
		v.errorf("br_table default references out-of-range label %d", def)
		v.setUnreachable()
		return
	}
	for _, l := range labels {
		lf, ok := v.getFrame(l)
		if !ok {
			v.errorf("br_table references out-of-range label %d", l)
			continue
		}
		if !valTypesEqual(lf.Label, defFrame.Label) {
			v.errorf("br_table label %d arity/type does not match default label", l)
		}
	}
	v.popOperands(defFrame.Label)
	v.setUnreachable()
}

func (v *Validator) checkCall(funcIdx uint32) {
	ft := v.mod.GetFuncType(funcIdx)
	if ft == nil {
		v.errorf("call references invalid function index %d", funcIdx)
		return
	}
	v.popOperands(ft.Params)
	v.pushOperands(ft.Results)
}

func (v *Validator) checkCallIndirect(typeIdx, tableIdx uint32) {
	if v.mod.GetTableType(tableIdx) == nil {
		v.errorf("call_indirect references invalid table index %d", tableIdx)
	}
	v.popExpect(wasm.ValI32)
	ft := v.mod.TypeByIndex(typeIdx)
	if ft == nil {
		v.errorf("call_indirect references invalid type index %d", typeIdx)
		return
	}
	v.popOperands(ft.Params)
	v.pushOperands(ft.Results)
}

func (v *Validator) checkReturn() {
	if len(v.frames) == 0 {
		v.errorf("return outside any function")
		return
	}
	v.popOperands(v.results)
	v.setUnreachable()
}

func (v *Validator) checkReturnCall(funcIdx uint32) {
	ft := v.mod.GetFuncType(funcIdx)
	if ft == nil {
		v.errorf("return_call references invalid function index %d", funcIdx)
		v.setUnreachable()
		return
	}
	if !valTypesEqual(ft.Results, v.results) {
		v.errorf("return_call target's result type does not match the enclosing function")
	}
	v.popOperands(ft.Params)
	v.setUnreachable()
}

func (v *Validator) checkReturnCallIndirect(typeIdx, tableIdx uint32) {
	if v.mod.GetTableType(tableIdx) == nil {
		v.errorf("return_call_indirect references invalid table index %d", tableIdx)
	}
	v.popExpect(wasm.ValI32)
	ft := v.mod.TypeByIndex(typeIdx)
	if ft == nil {
		v.errorf("return_call_indirect references invalid type index %d", typeIdx)
		v.setUnreachable()
		return
	}
	if !valTypesEqual(ft.Results, v.results) {
		v.errorf("return_call_indirect target's result type does not match the enclosing function")
	}
	v.popOperands(ft.Params)
	v.setUnreachable()
}
