// Package handlers registers the built-in record variants: the time
// primitives, derived expression values, and the boundary-condition family.
// Registration happens through one explicit routine invoked at startup;
// nothing registers itself as a load-time side effect.
//
// Concrete domain objects (balances, flows, storages) are deliberately not
// covered here: callers register their own handlers for those against the
// same registry.
package handlers

import (
	"fmt"

	"github.com/vassdrag/lpbuild"
	"github.com/vassdrag/lpbuild/boundary"
	"github.com/vassdrag/lpbuild/eval"
	"github.com/vassdrag/lpbuild/internal/fields"
	"github.com/vassdrag/lpbuild/problem"
	"github.com/vassdrag/lpbuild/timegrid"
)

// Built-in category and variant names.
const (
	CategoryTimeIndex      = "TimeIndex"
	CategoryScenarioWindow = "ScenarioWindow"
	CategoryDerived        = "Derived"

	VariantPoints  = "Points"
	VariantRegular = "Regular"
	VariantYearly  = "Yearly"

	VariantStartEqualStop = "StartEqualStop"
	VariantBridge         = "Bridge"
	VariantSingleCut      = "SingleCut"
	VariantExempt         = "Exempt"
)

// Option configures the built-in handlers.
type Option func(*config)

type config struct {
	cache     eval.ProgramCache
	functions *eval.FunctionRegistry
}

// WithProgramCache wires a compiled-program cache into the derived-value
// handlers.
func WithProgramCache(cache eval.ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctions wires a function registry into the derived-value handlers.
func WithFunctions(registry *eval.FunctionRegistry) Option {
	return func(cfg *config) {
		cfg.functions = registry
	}
}

// Register installs every built-in handler into reg. It is the only
// registration entry point for this package and must run before resolution.
func Register(reg *lpbuild.Registry, opts ...Option) error {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	entries := []struct {
		key     lpbuild.VariantKey
		handler lpbuild.Handler
	}{
		{lpbuild.NewVariantKey(CategoryTimeIndex, VariantPoints), resolvePoints},
		{lpbuild.NewVariantKey(CategoryTimeIndex, VariantRegular), resolveRegular},
		{lpbuild.NewVariantKey(CategoryScenarioWindow, VariantYearly), resolveWindow},
		{lpbuild.NewVariantKey(CategoryDerived, "Expr"), derivedHandler(eval.EngineExpr, cfg)},
		{lpbuild.NewVariantKey(CategoryDerived, "CEL"), derivedHandler(eval.EngineCEL, cfg)},
		{lpbuild.NewVariantKey(CategoryDerived, "JS"), derivedHandler(eval.EngineJS, cfg)},
		{lpbuild.NewVariantKey(boundary.Category, VariantStartEqualStop), resolveStartEqualStop},
		{lpbuild.NewVariantKey(boundary.Category, VariantBridge), resolveBridge},
		{lpbuild.NewVariantKey(boundary.Category, VariantSingleCut), resolveSingleCut},
		{lpbuild.NewVariantKey(boundary.Category, VariantExempt), resolveExempt},
	}
	for _, entry := range entries {
		if err := reg.Register(entry.key, entry.handler); err != nil {
			return err
		}
	}
	return nil
}

func resolvePoints(_, low *lpbuild.Store, id lpbuild.Id, raw map[string]any) (bool, []lpbuild.Id, error) {
	if low.Has(id) {
		return false, nil, fmt.Errorf("duplicate identity %s", id)
	}
	times, err := fields.Times(raw, "times")
	if err != nil {
		return false, nil, err
	}
	points, err := timegrid.NewPoints(times)
	if err != nil {
		return false, nil, err
	}
	return true, nil, low.Put(id, points)
}

// resolveRegular builds an evenly spaced index. The extent is declared as
// exactly one of "count" (number of points) or "stop" (the instant one step
// past the final point, which must be a whole number of steps after start).
func resolveRegular(_, low *lpbuild.Store, id lpbuild.Id, raw map[string]any) (bool, []lpbuild.Id, error) {
	if low.Has(id) {
		return false, nil, fmt.Errorf("duplicate identity %s", id)
	}
	start, err := fields.Time(raw, "start")
	if err != nil {
		return false, nil, err
	}
	step, err := fields.Duration(raw, "step")
	if err != nil {
		return false, nil, err
	}
	extent, err := fields.OneOf(raw, "count", "stop")
	if err != nil {
		return false, nil, err
	}
	var count int
	switch extent {
	case "count":
		count, err = fields.Int(raw, "count")
		if err != nil {
			return false, nil, err
		}
	case "stop":
		stop, err := fields.Time(raw, "stop")
		if err != nil {
			return false, nil, err
		}
		if step <= 0 {
			return false, nil, fmt.Errorf("%w: got %s", timegrid.ErrBadStep, step)
		}
		span := stop.Sub(start)
		if span <= 0 || span%step != 0 {
			return false, nil, fmt.Errorf("stop %s is not a whole number of steps after start %s", stop, start)
		}
		count = int(span / step)
	}
	regular, err := timegrid.NewRegular(start, step, count)
	if err != nil {
		return false, nil, err
	}
	return true, nil, low.Put(id, regular)
}

func resolveWindow(_, low *lpbuild.Store, id lpbuild.Id, raw map[string]any) (bool, []lpbuild.Id, error) {
	if low.Has(id) {
		return false, nil, fmt.Errorf("duplicate identity %s", id)
	}
	start, err := fields.Time(raw, "start")
	if err != nil {
		return false, nil, err
	}
	stop, err := fields.Time(raw, "stop")
	if err != nil {
		return false, nil, err
	}
	window, err := timegrid.NewWindow(id.Name, start, stop)
	if err != nil {
		return false, nil, err
	}
	return true, nil, low.Put(id, window)
}

// derivedHandler resolves an expression-valued record once every input
// binding is present in the low-level store. The result, a scalar or an
// elementwise series, is installed as a new low-level value.
func derivedHandler(engine string, cfg config) lpbuild.Handler {
	var evalOpts []eval.Option
	if cfg.cache != nil {
		evalOpts = append(evalOpts, eval.WithProgramCache(cfg.cache))
	}
	if cfg.functions != nil {
		evalOpts = append(evalOpts, eval.WithFunctionRegistry(cfg.functions))
	}

	return func(_, low *lpbuild.Store, id lpbuild.Id, raw map[string]any) (bool, []lpbuild.Id, error) {
		if low.Has(id) {
			return false, nil, fmt.Errorf("duplicate identity %s", id)
		}
		expression, err := fields.String(raw, "expression")
		if err != nil {
			return false, nil, err
		}
		inputs := map[string]lpbuild.Id{}
		if _, declared := raw["inputs"]; declared {
			inputs, err = fields.RefMap(raw, "inputs")
			if err != nil {
				return false, nil, err
			}
		}

		deps := make([]lpbuild.Id, 0, len(inputs))
		values := make(map[string]any, len(inputs))
		var missing []lpbuild.Id
		for alias, ref := range inputs {
			deps = append(deps, ref)
			value, ok := low.Get(ref)
			if !ok {
				missing = append(missing, ref)
				continue
			}
			values[alias] = value
		}
		if len(missing) > 0 {
			return false, missing, nil
		}

		evaluator, err := eval.New(engine, evalOpts...)
		if err != nil {
			return false, nil, err
		}
		result, err := evaluator.Evaluate(eval.Context{Values: values}, expression)
		if err != nil {
			return false, nil, err
		}
		normalized, err := normalizeDerived(result)
		if err != nil {
			return false, nil, err
		}
		return true, deps, low.Put(id, normalized)
	}
}

// normalizeDerived narrows an engine result to a float64 scalar or series.
func normalizeDerived(result any) (any, error) {
	switch v := result.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case []float64:
		return v, nil
	case []any:
		out := make([]float64, len(v))
		for i, item := range v {
			switch n := item.(type) {
			case float64:
				out[i] = n
			case int:
				out[i] = float64(n)
			case int64:
				out[i] = float64(n)
			default:
				return nil, fmt.Errorf("derived element %d is %T, want number", i, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("derived value is %T, want number or series", result)
	}
}

func resolveStartEqualStop(top, _ *lpbuild.Store, id lpbuild.Id, raw map[string]any) (bool, []lpbuild.Id, error) {
	if top.Has(id) {
		return false, nil, fmt.Errorf("duplicate identity %s", id)
	}
	ownerId, err := fields.Ref(raw, "owner")
	if err != nil {
		return false, nil, err
	}
	if missing := top.Missing(ownerId); len(missing) > 0 {
		return false, missing, nil
	}
	owner, err := statefulAt(top, ownerId)
	if err != nil {
		return false, nil, err
	}
	if owner.StateVariableCount() < 1 {
		return false, nil, fmt.Errorf("%s owns no state variables", ownerId)
	}
	return true, []lpbuild.Id{ownerId}, top.Put(id, boundary.NewStartEqualStop(id, owner))
}

func resolveBridge(top, _ *lpbuild.Store, id lpbuild.Id, raw map[string]any) (bool, []lpbuild.Id, error) {
	if top.Has(id) {
		return false, nil, fmt.Errorf("duplicate identity %s", id)
	}
	fromId, err := fields.Ref(raw, "from")
	if err != nil {
		return false, nil, err
	}
	toId, err := fields.Ref(raw, "to")
	if err != nil {
		return false, nil, err
	}
	if missing := top.Missing(fromId, toId); len(missing) > 0 {
		return false, missing, nil
	}
	from, err := statefulAt(top, fromId)
	if err != nil {
		return false, nil, err
	}
	to, err := statefulAt(top, toId)
	if err != nil {
		return false, nil, err
	}
	bridge, err := boundary.NewBridge(id, from, to)
	if err != nil {
		return false, nil, err
	}
	return true, []lpbuild.Id{fromId, toId}, top.Put(id, bridge)
}

func resolveSingleCut(top, _ *lpbuild.Store, id lpbuild.Id, raw map[string]any) (bool, []lpbuild.Id, error) {
	if top.Has(id) {
		return false, nil, fmt.Errorf("duplicate identity %s", id)
	}
	objectIds, err := fields.Refs(raw, "objects")
	if err != nil {
		return false, nil, err
	}
	probabilities, err := fields.Floats(raw, "probabilities")
	if err != nil {
		return false, nil, err
	}
	maxCuts, err := fields.Int(raw, "maxcuts")
	if err != nil {
		return false, nil, err
	}
	lowerBound, err := fields.Float(raw, "lowerbound")
	if err != nil {
		return false, nil, err
	}
	if missing := top.Missing(objectIds...); len(missing) > 0 {
		return false, missing, nil
	}
	objects := make([]problem.Stateful, len(objectIds))
	for i, objectId := range objectIds {
		object, err := statefulAt(top, objectId)
		if err != nil {
			return false, nil, err
		}
		objects[i] = object
	}
	cut, err := boundary.NewSingleCut(id, objects, probabilities, maxCuts, lowerBound)
	if err != nil {
		return false, nil, err
	}
	return true, objectIds, top.Put(id, cut)
}

func resolveExempt(top, _ *lpbuild.Store, id lpbuild.Id, raw map[string]any) (bool, []lpbuild.Id, error) {
	if top.Has(id) {
		return false, nil, fmt.Errorf("duplicate identity %s", id)
	}
	ownerId, err := fields.Ref(raw, "owner")
	if err != nil {
		return false, nil, err
	}
	ends, err := fields.String(raw, "ends")
	if err != nil {
		return false, nil, err
	}
	if missing := top.Missing(ownerId); len(missing) > 0 {
		return false, missing, nil
	}
	owner, err := statefulAt(top, ownerId)
	if err != nil {
		return false, nil, err
	}
	var condition *boundary.Exempt
	switch ends {
	case "initial":
		condition = boundary.NewExemptInitial(id, owner)
	case "terminal":
		condition = boundary.NewExemptTerminal(id, owner)
	case "both":
		condition = boundary.NewExempt(id, owner)
	default:
		return false, nil, fmt.Errorf("ends is %q, want initial, terminal, or both", ends)
	}
	return true, []lpbuild.Id{ownerId}, top.Put(id, condition)
}

func statefulAt(top *lpbuild.Store, id lpbuild.Id) (problem.Stateful, error) {
	value, _ := top.Get(id)
	object, ok := value.(problem.Stateful)
	if !ok {
		return nil, fmt.Errorf("%s is %T, want a state-bearing object", id, value)
	}
	return object, nil
}
