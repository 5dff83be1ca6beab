package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// Registry manages the CEL environment and a cache of compiled programs.
type Registry struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewRegistry initializes the CEL environment with the combat variables.
// rollFunc backs the roll(tag) function and may be nil.
func NewRegistry(rollFunc func(tag string) float64) (*Registry, error) {
	if rollFunc == nil {
		rollFunc = func(string) float64 { return 0 }
	}
	env, err := cel.NewEnv(
		cel.Variable("enemy", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("player", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("ability", cel.MapType(cel.StringType, cel.DynType)),

		cel.Function("roll",
			cel.Overload("roll_string",
				[]*cel.Type{cel.StringType},
				cel.DoubleType,
				cel.UnaryBinding(func(arg ref.Val) ref.Val {
					s, ok := arg.Value().(string)
					if !ok {
						return types.NewErr("roll expects a tag")
					}
					return types.Double(rollFunc("rules." + s))
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Registry{env: env, programs: map[string]cel.Program{}}, nil
}

// Compile checks expression and caches its program.
func (r *Registry) Compile(expression string) (cel.Program, error) {
	r.mu.RLock()
	prog, ok := r.programs[expression]
	r.mu.RUnlock()
	if ok {
		return prog, nil
	}

	ast, iss := r.env.Compile(expression)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, iss.Err())
	}
	prog, err := r.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expression, err)
	}

	r.mu.Lock()
	r.programs[expression] = prog
	r.mu.Unlock()
	return prog, nil
}

// Eval executes a CEL expression against the provided context.
func (r *Registry) Eval(expression string, context map[string]any) (any, error) {
	prog, err := r.Compile(expression)
	if err != nil {
		return nil, err
	}
	out, _, err := prog.Eval(context)
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
