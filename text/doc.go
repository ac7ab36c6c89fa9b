// Package text provides the WebAssembly text format (WAT) front end: a
// lexer and two-pass parser that produce the shared module data model
// (package wasm). The package has no printer: it does not render a module
// back to text.
//
// Parsing lowers into wasm.Module, so a module parsed from text is encoded
// as binary by the same wasm.Module.Encode path a decoded binary module
// goes through, with no format-specific shortcut.
//
// Basic usage:
//
//	mod, err := text.ParseModule(`(module
//		(func (export "add") (param i32 i32) (result i32)
//			(i32.add (local.get 0) (local.get 1)))
//	)`)
//	bin := mod.Encode()
//
// Compile is a shorthand for ParseModule followed by Encode:
//
//	wasm, err := text.Compile(`(module ...)`)
//
// Supported WASM 2.0 features:
//   - Functions with params, results, locals (named and indexed)
//   - Multi-value returns and block parameters
//   - Memory, global, table declarations with imports/exports
//   - Control flow: if/then/else, loop, block, br, br_if, br_table, return
//   - call, call_indirect with type references
//   - Integer ops: i32/i64 arithmetic, comparisons, bitwise, shifts, rotations
//   - Float ops: f32/f64 arithmetic, comparisons, math functions
//   - Memory: load/store for all types with offset/align
//   - Bulk memory: memory.copy, memory.fill, memory.init, data.drop
//   - Table ops: table.get/set/grow/size/fill/copy/init, elem.drop
//   - Reference types: funcref, externref, ref.null, ref.func, ref.is_null
//   - Saturating truncations: i32/i64.trunc_sat_f32/f64_s/u
//   - Sign extension: i32.extend8_s, i32.extend16_s, i64.extend*_s
//   - Select with type annotation
//   - Data and elem sections (active, passive, declarative)
//   - Comments: line (;;) and block (; ;)
//
// Not supported: SIMD (v128), threads/atomics, exception handling, GC types.
package text
