package router

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rickgao/botrelay/internal/model"
)

// filterEnv is the environment route filters are evaluated against.
type filterEnv struct {
	Kind   string   `expr:"kind"`
	Text   string   `expr:"text"`
	Sender string   `expr:"sender"`
	Origin string   `expr:"origin"`
	Hops   []string `expr:"hops"`
}

func newFilterEnv(ev model.Event) filterEnv {
	env := filterEnv{
		Kind: string(ev.Kind),
		Text: ev.Text,
		Hops: make([]string, 0, ev.Len()),
	}
	if ev.Character.Valid() {
		env.Sender = ev.Character.Name
	}
	if origin, ok := ev.Origin(); ok {
		env.Origin = origin.Identity()
	}
	for _, hop := range ev.Path() {
		env.Hops = append(env.Hops, hop.Identity())
	}
	return env
}

// CompileFilter compiles a route filter. An empty source compiles to nil.
func CompileFilter(source string) (*vm.Program, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return program, nil
}

// evalFilter runs a compiled filter. Runtime errors count as a rejection.
func evalFilter(program *vm.Program, env filterEnv) (bool, error) {
	out, err := vm.Run(program, env)
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}
