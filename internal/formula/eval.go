// Package formula evaluates user-supplied column expressions such as
// "2*A - 0.5*B" against a worksheet's columns. It delegates parsing and
// execution to the expr host evaluator, restricted to a fixed allow-list of
// elementwise math functions and two constants.
//
// The double-underscore denylist plus the allow-listed environment is a
// pragmatic guard for a trusted single-user tool, not a security boundary
// for adversarial input.
package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
)

// InvalidExpressionError reports a formula that was disallowed, failed to
// compile, or failed during evaluation.
type InvalidExpressionError struct {
	Expr string
	Err  error
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid expression %q: %v", e.Expr, e.Err)
}

func (e *InvalidExpressionError) Unwrap() error { return e.Err }

// Eval compiles src against the given column vectors (base name -> values,
// all the same length) and evaluates it once per row, returning the result
// vector. Column identifiers stand for the corresponding row value. Domain
// errors that yield NaN (log of a negative, say) are values, not failures.
func Eval(src string, cols map[string][]float64) ([]float64, error) {
	if strings.Contains(src, "__") {
		return nil, &InvalidExpressionError{Expr: src, Err: errors.New("double underscore is not allowed")}
	}
	if len(cols) == 0 {
		return nil, &InvalidExpressionError{Expr: src, Err: errors.New("no columns to evaluate against")}
	}
	rows := -1
	for name, v := range cols {
		if rows == -1 {
			rows = len(v)
			continue
		}
		if len(v) != rows {
			return nil, &InvalidExpressionError{
				Expr: src,
				Err:  fmt.Errorf("column %s has %d values, want %d", name, len(v), rows),
			}
		}
	}

	env := allowList()
	for name := range cols {
		env[name] = float64(0)
	}
	program, err := expr.Compile(src, expr.Env(env), expr.DisableAllBuiltins())
	if err != nil {
		return nil, &InvalidExpressionError{Expr: src, Err: err}
	}

	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		for name, v := range cols {
			env[name] = v[i]
		}
		res, err := expr.Run(program, env)
		if err != nil {
			return nil, &InvalidExpressionError{Expr: src, Err: err}
		}
		f, ok := asFloat(res)
		if !ok {
			return nil, &InvalidExpressionError{Expr: src, Err: fmt.Errorf("result is %T, not numeric", res)}
		}
		out[i] = f
	}
	return out, nil
}

// allowList is the fixed evaluation environment: elementwise math functions
// and numeric constants. Nothing else is reachable from an expression.
func allowList() map[string]any {
	return map[string]any{
		"sin":    math.Sin,
		"cos":    math.Cos,
		"tan":    math.Tan,
		"arctan": math.Atan,
		"sinh":   math.Sinh,
		"cosh":   math.Cosh,
		"tanh":   math.Tanh,
		"exp":    math.Exp,
		"log":    math.Log,
		"log10":  math.Log10,
		"sqrt":   math.Sqrt,
		"abs":    math.Abs,
		"min":    math.Min,
		"max":    math.Max,
		"where": func(cond bool, a, b float64) float64 {
			if cond {
				return a
			}
			return b
		},
		"pi": math.Pi,
		"e":  math.E,
	}
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
