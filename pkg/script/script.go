package script

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/espalier/pkg/variables"
)

// Env carries everything a script touches at evaluation time: the variable
// store, the object and speaker the script runs for, the user method
// provider and a logger.
type Env struct {
	Store   *variables.Store
	Object  string
	Speaker string
	Methods MethodProvider
	Logger  *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Condition is a compiled boolean expression.
type Condition struct {
	src  string
	expr expr
}

// CompileCondition parses a condition script. An empty script compiles to a
// condition that is always true.
func CompileCondition(src string) (*Condition, error) {
	c := &Condition{src: src}
	if src == "" {
		return c, nil
	}
	node, err := parseExpression(src)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", src, err)
	}
	c.expr = node
	return c, nil
}

// Source returns the original script text.
func (c *Condition) Source() string { return c.src }

// Evaluate runs the condition against the environment. The result must be
// boolean; anything else is an error.
func (c *Condition) Evaluate(ctx context.Context, env *Env) (bool, error) {
	if c == nil || c.expr == nil {
		return true, nil
	}
	v, err := eval(ctx, c.expr, env)
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", c.src, err)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q evaluated to %T, want bool", c.src, v)
	}
	return b, nil
}

// Instruction is a compiled statement list.
type Instruction struct {
	src   string
	stmts []statement
}

// CompileInstruction parses an instruction script. An empty script compiles
// to a no-op.
func CompileInstruction(src string) (*Instruction, error) {
	in := &Instruction{src: src}
	if src == "" {
		return in, nil
	}
	stmts, err := parseStatements(src)
	if err != nil {
		return nil, fmt.Errorf("instruction %q: %w", src, err)
	}
	in.stmts = stmts
	return in, nil
}

// Source returns the original script text.
func (in *Instruction) Source() string { return in.src }

// Execute runs the instruction's statements in order against the store.
func (in *Instruction) Execute(ctx context.Context, env *Env) error {
	if in == nil {
		return nil
	}
	for _, st := range in.stmts {
		if err := execStatement(ctx, st, env); err != nil {
			return fmt.Errorf("instruction %q: %w", in.src, err)
		}
	}
	return nil
}

func execStatement(ctx context.Context, st statement, env *Env) error {
	value, err := eval(ctx, st.value, env)
	if err != nil {
		return err
	}
	if st.target == "" {
		// Bare call, evaluated for its side effect only.
		return nil
	}
	if st.op != "=" {
		current, ok := env.Store.GetByFullName(st.target)
		if !ok {
			return fmt.Errorf("unknown variable %q", st.target)
		}
		op := "+"
		if st.op == "-=" {
			op = "-"
		}
		value, err = applyBinary(op, current, value)
		if err != nil {
			return err
		}
	}
	return env.Store.SetByFullName(st.target, value)
}

// -----------------------------------------------------------------------
// Evaluation
// -----------------------------------------------------------------------

func eval(ctx context.Context, node expr, env *Env) (any, error) {
	switch e := node.(type) {
	case *literalExpr:
		return e.value, nil
	case *varExpr:
		return evalVar(e, env)
	case *callExpr:
		return evalCall(ctx, e, env)
	case *unaryExpr:
		return evalUnary(ctx, e, env)
	case *binaryExpr:
		return evalBinary(ctx, e, env)
	default:
		return nil, fmt.Errorf("unknown expression type %T", node)
	}
}

func evalVar(e *varExpr, env *Env) (any, error) {
	switch e.name {
	case "self":
		return env.Object, nil
	case "speaker":
		return env.Speaker, nil
	}
	v, ok := env.Store.GetByFullName(e.name)
	if !ok {
		return nil, fmt.Errorf("unknown identifier %q", e.name)
	}
	return v, nil
}

func evalCall(ctx context.Context, e *callExpr, env *Env) (any, error) {
	switch e.name {
	case "seen":
		if len(e.args) != 0 {
			return nil, fmt.Errorf("seen() takes no arguments")
		}
		return env.Store.SeenCounter(env.Object) > 0, nil
	case "unseen":
		if len(e.args) != 0 {
			return nil, fmt.Errorf("unseen() takes no arguments")
		}
		return env.Store.SeenCounter(env.Object) == 0, nil
	case "seenCount":
		if len(e.args) != 0 {
			return nil, fmt.Errorf("seenCount() takes no arguments")
		}
		return env.Store.SeenCounter(env.Object), nil
	}

	if env.Methods == nil {
		return nil, fmt.Errorf("no method provider for call %q", e.name)
	}
	args := make([]any, len(e.args))
	for i, a := range e.args {
		v, err := eval(ctx, a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	result, err := env.Methods.Call(ctx, e.name, args)
	if err != nil {
		return nil, fmt.Errorf("method %q: %w", e.name, err)
	}
	return result, nil
}

func evalUnary(ctx context.Context, e *unaryExpr, env *Env) (any, error) {
	v, err := eval(ctx, e.operand, env)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case "!":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("operator ! needs bool, got %T", v)
		}
		return !b, nil
	case "-":
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("operator - needs int, got %T", v)
		}
		return -n, nil
	}
	return nil, fmt.Errorf("unknown unary operator %q", e.op)
}

func evalBinary(ctx context.Context, e *binaryExpr, env *Env) (any, error) {
	// Logical operators short-circuit.
	if e.op == "&&" || e.op == "||" {
		left, err := eval(ctx, e.left, env)
		if err != nil {
			return nil, err
		}
		lb, ok := left.(bool)
		if !ok {
			return nil, fmt.Errorf("operator %s needs bool, got %T", e.op, left)
		}
		if e.op == "&&" && !lb {
			return false, nil
		}
		if e.op == "||" && lb {
			return true, nil
		}
		right, err := eval(ctx, e.right, env)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(bool)
		if !ok {
			return nil, fmt.Errorf("operator %s needs bool, got %T", e.op, right)
		}
		return rb, nil
	}

	left, err := eval(ctx, e.left, env)
	if err != nil {
		return nil, err
	}
	right, err := eval(ctx, e.right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(e.op, left, right)
}

func applyBinary(op string, left, right any) (any, error) {
	switch op {
	case "==":
		return left == right, nil
	case "!=":
		return left != right, nil
	}

	if ls, ok := left.(string); ok {
		rs, ok := right.(string)
		if !ok {
			return nil, fmt.Errorf("operator %s: mismatched types %T and %T", op, left, right)
		}
		switch op {
		case "+":
			return ls + rs, nil
		case "<":
			return ls < rs, nil
		case "<=":
			return ls <= rs, nil
		case ">":
			return ls > rs, nil
		case ">=":
			return ls >= rs, nil
		}
		return nil, fmt.Errorf("operator %s not defined for strings", op)
	}

	ln, lok := left.(int)
	rn, rok := right.(int)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %s: mismatched types %T and %T", op, left, right)
	}
	switch op {
	case "+":
		return ln + rn, nil
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		if rn == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return ln / rn, nil
	case "%":
		if rn == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return ln % rn, nil
	case "<":
		return ln < rn, nil
	case "<=":
		return ln <= rn, nil
	case ">":
		return ln > rn, nil
	case ">=":
		return ln >= rn, nil
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}
