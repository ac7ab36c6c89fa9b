package validator

import (
	"github.com/libwasm/libwasm-go/errs"
	"github.com/libwasm/libwasm-go/internal/obs"
	"github.com/libwasm/libwasm-go/wasm"
	"go.uber.org/zap"
)

// bottomType is the wildcard value type that popOperand returns once a
// frame's operand stack has gone polymorphic after an unreachable
// instruction: it unifies with any expected type without reporting a
// mismatch. No real ValType encodes to 0.
const bottomType wasm.ValType = 0

// Frame tracks one active block/loop/if/function control scope.
type Frame struct {
	Opcode   byte // the opcode that opened this frame (0 for the function frame)
	Label    []wasm.ValType
	End      []wasm.ValType
	Params   []wasm.ValType
	Height   int
	Unreach  bool
	SawElse  bool
}

// Validator walks every function body in a module, maintaining an
// operand stack and a frame stack the way the binary format's
// validation algorithm does.
type Validator struct {
	mod     *wasm.Module
	handler *errs.Handler

	operands []wasm.ValType
	frames   []Frame
	locals   []wasm.ValType

	funcIdx int
	results []wasm.ValType
}

// Validate runs stack-typed validation over every function body,
// global initializer, and element/data segment offset in mod,
// recording every violation found rather than stopping at the first.
func Validate(mod *wasm.Module) *errs.Handler {
	h := errs.NewHandler()
	v := &Validator{mod: mod, handler: h}
	v.run()
	return h
}

func (v *Validator) run() {
	log := obs.Logger()

	v.handler.SetSection("global")
	for i := range v.mod.Globals {
		v.handler.SetEntry(i)
		v.checkConstExpr(v.mod.Globals[i].Init, v.mod.Globals[i].Type.ValType, "global initializer")
	}

	v.handler.SetSection("elem")
	for i := range v.mod.Elements {
		v.handler.SetEntry(i)
		v.checkElement(&v.mod.Elements[i])
	}

	v.handler.SetSection("data")
	for i := range v.mod.Data {
		v.handler.SetEntry(i)
		seg := &v.mod.Data[i]
		if seg.Flags != 1 {
			v.checkConstExpr(seg.Offset, wasm.ValI32, "data segment offset")
		}
	}

	v.handler.SetSection("code")
	for i := range v.mod.Code {
		funcIdx := v.mod.NumImportedFuncs() + i
		ft := v.mod.GetFuncType(uint32(funcIdx))
		if ft == nil {
			v.handler.Errorf(errs.Semantic, "function %d has no resolvable type", funcIdx)
			continue
		}
		v.handler.SetEntry(i)
		v.checkFunction(funcIdx, ft, &v.mod.Code[i])
	}

	log.Debug("module validated",
		zap.Int("functions", len(v.mod.Code)),
		zap.Int("errors", v.handler.ErrorCount()),
		zap.Int("warnings", v.handler.WarningCount()))
}

func (v *Validator) checkElement(elem *wasm.Element) {
	if elem.Flags&0x01 == 0 { // active segment: offset expression present
		v.checkConstExpr(elem.Offset, wasm.ValI32, "element offset")
	}
	for _, raw := range elem.Exprs {
		v.checkConstExpr(raw, wasm.ValType(0), "element expression")
	}
}

func (v *Validator) errorf(format string, args ...any) {
	v.handler.Errorf(errs.Semantic, format, args...)
}

func (v *Validator) checkFunction(funcIdx int, ft *wasm.FuncType, body *wasm.FuncBody) {
	v.operands = v.operands[:0]
	v.frames = v.frames[:0]
	v.locals = v.locals[:0]
	v.locals = append(v.locals, ft.Params...)
	for _, le := range body.Locals {
		for i := uint32(0); i < le.Count; i++ {
			v.locals = append(v.locals, le.ValType)
		}
	}
	v.funcIdx = funcIdx
	v.results = ft.Results

	v.pushFrame(0, ft.Results, ft.Results, nil)

	instrs, err := wasm.DecodeInstructions(body.Code)
	if err != nil {
		v.errorf("function %d: decoding instructions: %v", funcIdx, err)
		return
	}

	for _, instr := range instrs {
		if len(v.frames) == 0 {
			v.errorf("function %d: instruction after implicit function end", funcIdx)
			break
		}
		v.checkInstr(instr)
	}

	if len(v.frames) != 0 {
		v.errorf("function %d: missing end for %d open block(s)", funcIdx, len(v.frames))
	}
}

// checkInstr dispatches on the opcode's fixed signature when one
// exists; everything else (control flow, locals/globals/tables,
// calls, references, select, drop) is handled by checkSpecial.
func (v *Validator) checkInstr(instr wasm.Instruction) {
	if instr.Opcode == wasm.OpPrefixMisc {
		v.checkMisc(instr)
		return
	}
	if sig, ok := wasm.SignatureOf(instr.Opcode); ok {
		v.applySignature(sig)
		return
	}
	v.checkSpecial(instr)
}

func (v *Validator) applySignature(sig wasm.SignatureCode) {
	eff := sig.StackEffect()
	v.popOperands(eff.Pops)
	if eff.HasPush {
		v.pushOperand(eff.Push)
	}
}

// --- operand stack ---

func (v *Validator) curFrame() *Frame {
	return &v.frames[len(v.frames)-1]
}

func (v *Validator) pushOperand(t wasm.ValType) {
	v.operands = append(v.operands, t)
}

func (v *Validator) pushOperands(types []wasm.ValType) {
	for _, t := range types {
		v.pushOperand(t)
	}
}

func (v *Validator) popOperand() wasm.ValType {
	f := v.curFrame()
	if len(v.operands) == f.Height {
		if f.Unreach {
			return bottomType
		}
		v.errorf("operand stack underflow")
		return bottomType
	}
	t := v.operands[len(v.operands)-1]
	v.operands = v.operands[:len(v.operands)-1]
	return t
}

// popExpect pops one operand and checks it against expect. A zero
// expect (bottomType) skips the type check, so only arity is enforced.
// drop and ref.is_null call popOperand directly instead.
func (v *Validator) popExpect(expect wasm.ValType) wasm.ValType {
	got := v.popOperand()
	if got == bottomType {
		return expect
	}
	if expect != bottomType && got != expect {
		v.errorf("type mismatch: expected %s, got %s", expect, got)
	}
	return got
}

// popOperands pops types in reverse order: the last type in the slice
// is the operand pushed most recently and so sits on top of the stack.
func (v *Validator) popOperands(types []wasm.ValType) {
	for i := len(types) - 1; i >= 0; i-- {
		v.popExpect(types[i])
	}
}

func (v *Validator) peekOperand() wasm.ValType {
	f := v.curFrame()
	if len(v.operands) == f.Height {
		if f.Unreach {
			return bottomType
		}
		v.errorf("operand stack underflow")
		return bottomType
	}
	return v.operands[len(v.operands)-1]
}

func (v *Validator) setUnreachable() {
	f := v.curFrame()
	v.operands = v.operands[:f.Height]
	f.Unreach = true
}

// --- frame stack ---

func (v *Validator) pushFrame(opcode byte, label, end, params []wasm.ValType) {
	v.frames = append(v.frames, Frame{
		Opcode: opcode,
		Label:  label,
		End:    end,
		Params: params,
		Height: len(v.operands),
	})
}

func (v *Validator) popFrame() Frame {
	f := v.curFrame()
	v.popOperands(f.End)
	if len(v.operands) != f.Height {
		v.errorf("operand stack height mismatch at block end: expected %d, got %d", f.Height, len(v.operands))
	}
	v.operands = v.operands[:f.Height]
	popped := *f
	v.frames = v.frames[:len(v.frames)-1]
	return popped
}

func (v *Validator) getFrame(n uint32) (*Frame, bool) {
	idx := len(v.frames) - 1 - int(n)
	if idx < 0 {
		return nil, false
	}
	return &v.frames[idx], true
}

func valTypesEqual(a, b []wasm.ValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
