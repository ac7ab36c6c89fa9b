// Package validator implements stack-typed validation of a decoded
// wasm.Module: the pass that a binary decoder's structural checks
// (wasm.Module.Validate) deliberately leave undone — tracking an
// operand stack and a stack of control frames through every function
// body and confirming each instruction's actual operands match its
// declared signature, that branches target frames with compatible
// arity, and that constant expressions (global initializers, element
// and data segment offsets) only use the instructions the spec allows
// in that position.
//
// Validation never stops at the first problem: every diagnostic is
// recorded on an *errs.Handler handed back to the caller, who decides
// whether the error count makes the module usable.
package validator
