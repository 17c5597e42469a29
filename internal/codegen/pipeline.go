package codegen

import (
	"github.com/basicc-lang/basicc/internal/ast"
	"github.com/basicc-lang/basicc/internal/lexer"
	"github.com/basicc-lang/basicc/internal/parser"
)

// Result carries the artifacts of every stage of a successful compilation.
type Result struct {
	Tokens  []lexer.Token
	Program *ast.Program
	Output  string
}

type options struct {
	filename string
	tracer   parser.Tracer
}

// Option configures Compile
type Option func(*options)

// WithFilename sets the file name recorded in token positions.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithTracer forwards parser tracing to t.
func WithTracer(t parser.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// Compile runs scanner, parser and emitter over src in sequence. The first
// error of any stage is returned as-is so callers can match it with
// errors.As.
func Compile(src string, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := lexer.TokenizeFile(src, o.filename)
	if err != nil {
		return nil, err
	}

	var popts []parser.Option
	if o.tracer != nil {
		popts = append(popts, parser.WithTracer(o.tracer))
	}
	prog, err := parser.Parse(tokens, popts...)
	if err != nil {
		return nil, err
	}

	out, err := Emit(prog)
	if err != nil {
		return nil, err
	}

	return &Result{Tokens: tokens, Program: prog, Output: out}, nil
}
