package eval

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

// celEvaluator executes expressions using github.com/google/cel-go.
type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...Option) Evaluator {
	cfg := applyOptions(opts)
	return &celEvaluator{cache: cfg.cache, registry: cfg.registry}
}

func (e *celEvaluator) Evaluate(ctx Context, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluationError(EngineCEL, expression, fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression, ctx.Values)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, err)
	}
	out, _, err := program.program.Eval(e.activation(ctx))
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) Compile(expression string) (Program, error) {
	if expression == "" {
		return nil, wrapEvaluationError(EngineCEL, expression, fmt.Errorf("expression must not be empty"))
	}
	return &celCompiled{evaluator: e, expression: expression}, nil
}

// loadOrCompile compiles against the binding names present in values; the
// binding set is part of the program environment, so programs are reusable
// only across contexts with the same aliases.
func (e *celEvaluator) loadOrCompile(expression string, values map[string]any) (*celProgram, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(values)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{env: env, program: prg}
	if e.cache != nil {
		e.cache.Set(expression, bundle)
	}
	return bundle, nil
}

// callMaxArgs bounds how many arguments the "call" dispatch accepts; CEL
// overloads are fixed-arity, so one overload is declared per arity.
const callMaxArgs = 4

func (e *celEvaluator) buildEnv(values map[string]any) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
	}
	if e.registry != nil {
		bind := celgo.FunctionBinding(e.callBinding())
		overloads := make([]celgo.FunctionOpt, 0, callMaxArgs+1)
		params := []*celgo.Type{celgo.StringType}
		for arity := 0; arity <= callMaxArgs; arity++ {
			overloads = append(overloads, celgo.Overload(
				fmt.Sprintf("call_dyn_%d", arity),
				append([]*celgo.Type(nil), params...),
				celgo.DynType,
				bind,
			))
			params = append(params, celgo.DynType)
		}
		opts = append(opts, celgo.Function("call", overloads...))
	}
	for key := range values {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx Context) map[string]any {
	activation := map[string]any{
		"now": ctx.timestamp(),
	}
	for key, value := range ctx.Values {
		activation[key] = value
	}
	return activation
}

type celCompiled struct {
	evaluator  *celEvaluator
	expression string
}

func (c *celCompiled) Evaluate(ctx Context) (any, error) {
	ctx = ctx.withDefaults()
	program, err := c.evaluator.loadOrCompile(c.expression, ctx.Values)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, c.expression, err)
	}
	out, _, err := program.program.Eval(c.evaluator.activation(ctx))
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, c.expression, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("eval: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("eval: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("eval: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.WrapErr(err)
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
