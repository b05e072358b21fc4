package formula_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/plotloom/plotloom-cli/internal/formula"
)

func TestEvalLinearCombination(t *testing.T) {
	cols := map[string][]float64{
		"A": {1, 2, 3},
		"B": {4, 4, 4},
	}
	got, err := formula.Eval("2*A - 0.5*B", cols)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 2, 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("result = %v, want %v", got, want)
	}
}

func TestEvalMathFunctions(t *testing.T) {
	cols := map[string][]float64{"A": {0, 1, 4}}
	got, err := formula.Eval("sqrt(A) + sin(0.0)", cols)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("result = %v, want %v", got, want)
	}
}

func TestEvalWhereAndConstants(t *testing.T) {
	cols := map[string][]float64{"A": {-2, 3}}
	got, err := formula.Eval("where(A > 0.0, A, 0.0) + (pi - pi)", cols)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0 || got[1] != 3 {
		t.Fatalf("result = %v, want [0 3]", got)
	}
}

func TestEvalDomainErrorIsNaNNotError(t *testing.T) {
	cols := map[string][]float64{"A": {-1}}
	got, err := formula.Eval("log(A)", cols)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got[0]) {
		t.Fatalf("log(-1) = %v, want NaN", got[0])
	}
}

func TestEvalRejectsDoubleUnderscore(t *testing.T) {
	cols := map[string][]float64{"A": {1}}
	for _, src := range []string{"__", "A__B", "2*A + __x", "a__"} {
		_, err := formula.Eval(src, cols)
		var ierr *formula.InvalidExpressionError
		if !errors.As(err, &ierr) {
			t.Errorf("Eval(%q): expected InvalidExpressionError, got %v", src, err)
		}
	}
}

func TestEvalUndefinedName(t *testing.T) {
	cols := map[string][]float64{"A": {1}}
	_, err := formula.Eval("A + Q", cols)
	var ierr *formula.InvalidExpressionError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected InvalidExpressionError, got %v", err)
	}
}

func TestEvalShapeMismatch(t *testing.T) {
	cols := map[string][]float64{
		"A": {1, 2},
		"B": {1},
	}
	_, err := formula.Eval("A + B", cols)
	var ierr *formula.InvalidExpressionError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected InvalidExpressionError, got %v", err)
	}
}
