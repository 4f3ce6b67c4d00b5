// Package eval executes the expressions carried by derived-value records
// against named bindings of already-resolved low-level values. Three
// interchangeable engines are provided: expr-lang (the default), CEL, and a
// JavaScript engine available behind the js_eval build tag.
package eval

import (
	"fmt"
	"time"
)

// Engine names accepted by New.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// Context carries the inputs an expression evaluates against. Values binds
// resolved low-level values by the alias a record declared for them.
type Context struct {
	Values map[string]any
	Now    *time.Time
}

func (ctx Context) withDefaults() Context {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Values == nil {
		ctx.Values = map[string]any{}
	}
	return ctx
}

func (ctx Context) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
}

// Evaluator executes expressions against a context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (Program, error)
}

// Program is a reusable compiled expression.
type Program interface {
	Evaluate(ctx Context) (any, error)
}

// Option configures an evaluator instance.
type Option func(*config)

type config struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// WithProgramCache wires a compiled-program cache into the evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry wires a function registry into the evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// New constructs an evaluator for the named engine. The JS engine is only
// available when built with the js_eval tag.
func New(engine string, opts ...Option) (Evaluator, error) {
	switch engine {
	case EngineExpr:
		return NewExprEvaluator(opts...), nil
	case EngineCEL:
		return NewCELEvaluator(opts...), nil
	case EngineJS:
		evaluator := NewJSEvaluator(opts...)
		if evaluator == nil {
			return nil, fmt.Errorf("eval: js engine requires the js_eval build tag")
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("eval: unknown engine %q", engine)
	}
}
