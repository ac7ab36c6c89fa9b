package text

import (
	"github.com/libwasm/libwasm-go/text/internal/ast"
	"github.com/libwasm/libwasm-go/text/internal/encoder"
	"github.com/libwasm/libwasm-go/wasm"
)

// toWasmModule lowers the parser's internal ast.Module into the shared
// wasm.Module data model so that text-parsed and binary-decoded modules
// are indistinguishable to every downstream consumer (the validator
// and wasm.Module.Encode).
func toWasmModule(m *ast.Module) *wasm.Module {
	out := &wasm.Module{
		Start: m.Start,
	}

	for _, ft := range m.Types {
		out.Types = append(out.Types, wasm.FuncType{
			Params:  convertValTypes(ft.Params),
			Results: convertValTypes(ft.Results),
		})
	}

	for _, imp := range m.Imports {
		out.Imports = append(out.Imports, convertImport(imp))
	}

	for _, f := range m.Funcs {
		out.Funcs = append(out.Funcs, f.TypeIdx)
	}

	for _, t := range m.Tables {
		out.Tables = append(out.Tables, wasm.TableType{
			ElemType: t.ElemType,
			Limits:   convertLimits(t.Limits),
		})
	}

	for _, mem := range m.Memories {
		out.Memories = append(out.Memories, wasm.MemoryType{Limits: convertLimits(mem.Limits)})
	}

	for _, g := range m.Globals {
		out.Globals = append(out.Globals, wasm.Global{
			Type: wasm.GlobalType{ValType: wasm.ValType(g.Type.ValType), Mutable: g.Type.Mutable},
			Init: encodeExprBytes(g.Init),
		})
	}

	for _, e := range m.Exports {
		out.Exports = append(out.Exports, wasm.Export{Name: e.Name, Kind: e.Kind, Idx: e.Idx})
	}

	for _, e := range m.Elems {
		out.Elements = append(out.Elements, convertElem(e))
	}

	for _, c := range m.Code {
		out.Code = append(out.Code, wasm.FuncBody{
			Locals: convertLocals(c.Locals),
			Code:   encodeExprBytes(c.Code),
		})
	}

	for _, d := range m.Data {
		out.Data = append(out.Data, convertData(d))
	}

	if len(m.Data) > 0 {
		n := uint32(len(m.Data))
		out.DataCount = &n
	}

	return out
}

func convertValTypes(vs []ast.ValType) []wasm.ValType {
	if len(vs) == 0 {
		return nil
	}
	out := make([]wasm.ValType, len(vs))
	for i, v := range vs {
		out[i] = wasm.ValType(v)
	}
	return out
}

func convertLimits(l ast.Limits) wasm.Limits {
	out := wasm.Limits{Min: uint64(l.Min)}
	if l.Max != nil {
		max := uint64(*l.Max)
		out.Max = &max
	}
	return out
}

func convertLocals(vs []ast.ValType) []wasm.LocalEntry {
	var out []wasm.LocalEntry
	for _, v := range vs {
		if n := len(out); n > 0 && out[n-1].ValType == wasm.ValType(v) {
			out[n-1].Count++
			continue
		}
		out = append(out, wasm.LocalEntry{Count: 1, ValType: wasm.ValType(v)})
	}
	return out
}

func convertImport(imp ast.Import) wasm.Import {
	out := wasm.Import{Module: imp.Module, Name: imp.Name, Desc: wasm.ImportDesc{Kind: imp.Desc.Kind}}
	switch imp.Desc.Kind {
	case ast.KindFunc:
		out.Desc.TypeIdx = imp.Desc.TypeIdx
	case ast.KindTable:
		tt := imp.Desc.TableTyp
		out.Desc.Table = &wasm.TableType{ElemType: tt.ElemType, Limits: convertLimits(tt.Limits)}
	case ast.KindMemory:
		out.Desc.Memory = &wasm.MemoryType{Limits: convertLimits(*imp.Desc.MemLimits)}
	case ast.KindGlobal:
		gt := imp.Desc.GlobalTyp
		out.Desc.Global = &wasm.GlobalType{ValType: wasm.ValType(gt.ValType), Mutable: gt.Mutable}
	}
	return out
}

// elemRefType maps the text front end's simple funcref/externref byte into
// the shared model's nullable-ref-type-with-heap-type representation used
// by the binary codec and validator alike.
func elemRefType(b byte) *wasm.RefType {
	heap := wasm.HeapTypeFunc
	if b == ast.RefTypeExternref {
		heap = wasm.HeapTypeExtern
	}
	return &wasm.RefType{Nullable: true, HeapType: heap}
}

func convertElem(e ast.Elem) wasm.Element {
	out := wasm.Element{TableIdx: e.TableIdx}
	hasExprs := len(e.Exprs) > 0
	refByte := e.RefType
	if refByte == 0 {
		refByte = ast.RefTypeFuncref
	}

	switch e.Mode {
	case ast.ElemModeActive:
		out.Offset = encodeExprBytes(e.Offset)
		if hasExprs {
			out.Flags = uint32(ast.ElemFlagActiveExpr)
			out.RefType = elemRefType(refByte)
		} else {
			out.Flags = uint32(ast.ElemFlagActiveFunc)
		}
	case ast.ElemModePassive:
		if hasExprs {
			out.Flags = uint32(ast.ElemFlagPassiveExpr)
			out.RefType = elemRefType(refByte)
		} else {
			out.Flags = uint32(ast.ElemFlagPassiveFunc)
		}
	case ast.ElemModeActiveTable:
		out.Offset = encodeExprBytes(e.Offset)
		if hasExprs {
			out.Flags = uint32(ast.ElemFlagActiveTableExpr)
			out.RefType = elemRefType(refByte)
		} else {
			out.Flags = uint32(ast.ElemFlagActiveTableFunc)
		}
	case ast.ElemModeDeclarative:
		if hasExprs {
			out.Flags = uint32(ast.ElemFlagDeclarativeExpr)
			out.RefType = elemRefType(refByte)
		} else {
			out.Flags = uint32(ast.ElemFlagDeclarativeFunc)
		}
	}

	if hasExprs {
		for _, expr := range e.Exprs {
			out.Exprs = append(out.Exprs, encodeExprBytes(expr))
		}
	} else {
		out.FuncIdxs = append(out.FuncIdxs, e.Init...)
	}
	return out
}

func convertData(d ast.DataSegment) wasm.DataSegment {
	out := wasm.DataSegment{Init: d.Init}
	switch {
	case d.Passive:
		out.Flags = uint32(ast.DataFlagPassive)
	case d.MemIdx != 0:
		out.Flags = uint32(ast.DataFlagActiveMemIdx)
		out.MemIdx = d.MemIdx
		out.Offset = encodeExprBytes(d.Offset)
	default:
		out.Flags = uint32(ast.DataFlagActive)
		out.Offset = encodeExprBytes(d.Offset)
	}
	return out
}

// encodeExprBytes renders a parsed instruction sequence (already
// terminated with an explicit end opcode by the parser) into the raw
// bytes the shared module stores for init expressions and function
// bodies, using the text front end's own instruction encoder (package
// encoder), not the wasm package's instruction encoder.
func encodeExprBytes(instrs []ast.Instr) []byte {
	buf := &encoder.Buffer{}
	for _, ins := range instrs {
		encoder.EncodeInstr(buf, ins)
	}
	return buf.Bytes
}
