package text

import (
	"github.com/libwasm/libwasm-go/text/internal/parser"
	"github.com/libwasm/libwasm-go/text/internal/token"
	"github.com/libwasm/libwasm-go/wasm"
)

// ParseModule parses WebAssembly text format source into the shared
// module data model. The result is the same *wasm.Module a binary decode
// of the equivalent module would produce, so it can be validated
// or re-encoded without caring which front end
// produced it.
func ParseModule(source string) (*wasm.Module, error) {
	tokens := token.Tokenize(source)
	p := parser.New(tokens)
	mod, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return toWasmModule(mod), nil
}

// Compile parses source and encodes the result as binary WASM. It is a
// convenience wrapper around ParseModule and wasm.Module.Encode.
func Compile(source string) ([]byte, error) {
	mod, err := ParseModule(source)
	if err != nil {
		return nil, err
	}
	return mod.Encode(), nil
}
