package fit

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Model is a parametric curve y = F(x; p) with named parameters and an
// optional data-driven initial guess. Without a Guess, the solver starts
// from all ones.
type Model struct {
	Name   string
	Params []string
	F      func(x float64, p []float64) float64
	Guess  func(x, y []float64) []float64
}

var catalog = map[string]Model{
	"linear": {
		Name:   "linear",
		Params: []string{"m", "c"},
		F:      func(x float64, p []float64) float64 { return p[0]*x + p[1] },
	},
	"exponential": {
		Name:   "exponential",
		Params: []string{"A", "k", "c"},
		F: func(x float64, p []float64) float64 {
			return p[0]*math.Exp(p[1]*x) + p[2]
		},
		Guess: func(x, y []float64) []float64 {
			return []float64{span(y), 0.1, floats.Min(y)}
		},
	},
	"gaussian": {
		Name:   "gaussian",
		Params: []string{"A", "x0", "sigma", "c"},
		F: func(x float64, p []float64) float64 {
			d := (x - p[1]) / p[2]
			return p[0]*math.Exp(-0.5*d*d) + p[3]
		},
		Guess: func(x, y []float64) []float64 {
			return []float64{span(y), x[argmax(y)], span(x) / 10, floats.Min(y)}
		},
	},
	"lorentzian": {
		Name:   "lorentzian",
		Params: []string{"A", "x0", "gamma", "c"},
		F: func(x float64, p []float64) float64 {
			g2 := p[2] * p[2]
			d := x - p[1]
			return p[0]*g2/(d*d+g2) + p[3]
		},
		Guess: func(x, y []float64) []float64 {
			return []float64{span(y), x[argmax(y)], span(x) / 20, floats.Min(y)}
		},
	},
	"voigt": {
		Name:   "voigt",
		Params: []string{"A", "x0", "sigma", "gamma", "c"},
		F: func(x float64, p []float64) float64 {
			sigma := math.Abs(p[2])
			gamma := math.Abs(p[3])
			if sigma == 0 {
				sigma = 1e-300
			}
			z := complex(x-p[1], gamma) / complex(sigma*math.Sqrt2, 0)
			return p[0]*real(faddeeva(z))/(sigma*math.Sqrt(2*math.Pi)) + p[4]
		},
		Guess: func(x, y []float64) []float64 {
			w := span(x) / 20
			return []float64{span(y), x[argmax(y)], w, w, floats.Min(y)}
		},
	},
}

// Lookup returns the named model from the catalog.
func Lookup(name string) (Model, error) {
	m, ok := catalog[name]
	if !ok {
		return Model{}, fmt.Errorf("unknown model %q (have %v)", name, ModelNames())
	}
	return m, nil
}

// ModelNames lists the catalog in stable order.
func ModelNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func span(v []float64) float64 {
	return floats.Max(v) - floats.Min(v)
}

func argmax(v []float64) int {
	best := 0
	for i, f := range v {
		if f > v[best] {
			best = i
		}
	}
	return best
}

// faddeeva evaluates the scaled complex error function
// w(z) = exp(-z^2) erfc(-iz) for Im(z) >= 0 using Humlicek's four-region
// rational approximations (JQSRT 27, 1982).
func faddeeva(z complex128) complex128 {
	x, y := real(z), imag(z)
	t := complex(y, -x)
	s := math.Abs(x) + y

	switch {
	case s >= 15:
		return t * 0.5641896 / (0.5 + t*t)
	case s >= 5.5:
		u := t * t
		return t * (1.410474 + u*0.5641896) / (0.75 + u*(3.0+u))
	case y >= 0.195*math.Abs(x)-0.176:
		return (16.4955 + t*(20.20933+t*(11.96482+t*(3.778987+t*0.5642236)))) /
			(16.4955 + t*(38.82363+t*(39.27121+t*(21.69274+t*(6.699398+t)))))
	default:
		u := t * t
		num := t * (36183.31 - u*(3321.9905-u*(1540.787-u*(219.0313-u*(35.76683-u*(1.320522-u*0.56419))))))
		den := 32066.6 - u*(24322.84-u*(9022.228-u*(2186.181-u*(364.2191-u*(61.57037-u*(1.841439-u))))))
		return cmplx.Exp(u) - num/den
	}
}
