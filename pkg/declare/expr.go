package declare

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"
)

// Expr is an expression as written in a definition file.
type Expr struct {
	Source string
	Line   int
	Column int

	program *vm.Program
}

// UnmarshalYAML implements yaml.Unmarshaler. It keeps the position of the
// expression for error reports.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expression must be a scalar", node.Line)
	}
	e.Source = node.Value
	e.Line = node.Line
	e.Column = node.Column
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e Expr) MarshalYAML() (any, error) {
	return e.Source, nil
}

func (e *Expr) compile() error {
	if e.Source == "" {
		return fmt.Errorf("expression must not be empty")
	}
	program, err := expr.Compile(e.Source,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return err
	}
	e.program = program
	return nil
}

func (e *Expr) eval(env map[string]any) (any, error) {
	if e.program == nil {
		if err := e.compile(); err != nil {
			return nil, err
		}
	}
	return expr.Run(e.program, env)
}

// environment builds the evaluation environment from a state snapshot.
func environment(state map[string]any, args []any) map[string]any {
	env := make(map[string]any, len(state)+2)
	for k, v := range state {
		env[k] = v
	}
	env["state"] = state
	if args != nil {
		env["args"] = args
	} else {
		env["args"] = []any{}
	}
	return env
}
