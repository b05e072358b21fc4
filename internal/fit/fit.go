// Package fit wraps a nonlinear least-squares solver behind a small facade:
// callers hand in paired X/Y data and a model, and get back fitted
// parameters, a covariance estimate, and a densely resampled prediction
// curve for overlay plotting.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DidNotConvergeError wraps any solver failure: bad initial guess, singular
// system, or the iteration cap being exceeded. It is recoverable; callers
// report it and let the user adjust guesses.
type DidNotConvergeError struct {
	Model string
	Err   error
}

func (e *DidNotConvergeError) Error() string {
	return fmt.Sprintf("fit %s did not converge: %v", e.Model, e.Err)
}

func (e *DidNotConvergeError) Unwrap() error { return e.Err }

// Result holds the solver output.
type Result struct {
	Params []float64
	// Covariance of the fitted parameters, nil when the Jacobian was too
	// ill-conditioned to estimate it.
	Covariance *mat.SymDense
	// XFit/YFit sample the fitted model over [min(x), max(x)] for a smooth
	// overlay curve.
	XFit, YFit []float64
}

// StdErrs returns the per-parameter standard errors, or nil without a
// covariance estimate.
func (r *Result) StdErrs() []float64 {
	if r.Covariance == nil {
		return nil
	}
	out := make([]float64, len(r.Params))
	for i := range out {
		out[i] = math.Sqrt(r.Covariance.At(i, i))
	}
	return out
}

const (
	defaultSamples = 1000
	defaultMaxIter = 10000
)

type options struct {
	guess   []float64
	lo, hi  []float64
	samples int
	maxIter int
}

// Option adjusts solver behavior.
type Option func(*options)

// WithGuess overrides the model's initial parameter guess.
func WithGuess(p0 []float64) Option {
	return func(o *options) { o.guess = append([]float64(nil), p0...) }
}

// WithBounds constrains each parameter to [lo[i], hi[i]].
func WithBounds(lo, hi []float64) Option {
	return func(o *options) {
		o.lo = append([]float64(nil), lo...)
		o.hi = append([]float64(nil), hi...)
	}
}

// WithSamples sets the prediction-curve sample count.
func WithSamples(n int) Option {
	return func(o *options) {
		if n > 1 {
			o.samples = n
		}
	}
}

// WithMaxIter sets the iteration cap.
func WithMaxIter(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIter = n
		}
	}
}

// FilterFinite returns the pairs where both x and y are finite. Callers
// pre-filter NaN cells before fitting.
func FilterFinite(x, y []float64) (fx, fy []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		if isFinite(x[i]) && isFinite(y[i]) {
			fx = append(fx, x[i])
			fy = append(fy, y[i])
		}
	}
	return fx, fy
}

// Curve fits model m to the paired data by Levenberg-Marquardt least squares
// and resamples the fitted curve. Any solver failure is surfaced as a
// DidNotConvergeError.
func Curve(x, y []float64, m Model, opts ...Option) (*Result, error) {
	opt := options{samples: defaultSamples, maxIter: defaultMaxIter}
	for _, fn := range opts {
		fn(&opt)
	}
	if len(x) != len(y) {
		return nil, &DidNotConvergeError{Model: m.Name, Err: fmt.Errorf("x has %d points, y has %d", len(x), len(y))}
	}
	nparams := len(m.Params)
	if len(x) < nparams {
		return nil, &DidNotConvergeError{Model: m.Name, Err: fmt.Errorf("%d points for %d parameters", len(x), nparams)}
	}
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			return nil, &DidNotConvergeError{Model: m.Name, Err: fmt.Errorf("non-finite value at point %d; filter NaNs first", i)}
		}
	}

	p0 := opt.guess
	if p0 == nil {
		if m.Guess != nil {
			p0 = m.Guess(x, y)
		} else {
			p0 = ones(nparams)
		}
	}
	if len(p0) != nparams {
		return nil, &DidNotConvergeError{Model: m.Name, Err: fmt.Errorf("guess has %d values, model takes %d", len(p0), nparams)}
	}
	if (opt.lo != nil && len(opt.lo) != nparams) || (opt.hi != nil && len(opt.hi) != nparams) {
		return nil, &DidNotConvergeError{Model: m.Name, Err: fmt.Errorf("bounds length does not match %d parameters", nparams)}
	}

	residual := func(p []float64) []float64 {
		r := make([]float64, len(x))
		for i := range x {
			r[i] = m.F(x[i], p) - y[i]
		}
		return r
	}

	params, jac, sse, err := levenbergMarquardt(residual, p0, opt.lo, opt.hi, opt.maxIter)
	if err != nil {
		return nil, &DidNotConvergeError{Model: m.Name, Err: err}
	}

	res := &Result{
		Params:     params,
		Covariance: covariance(jac, sse, len(x), nparams),
	}
	res.XFit = make([]float64, opt.samples)
	floats.Span(res.XFit, floats.Min(x), floats.Max(x))
	res.YFit = make([]float64, opt.samples)
	for i, xv := range res.XFit {
		res.YFit[i] = m.F(xv, params)
	}
	return res, nil
}

// levenbergMarquardt minimizes the sum of squared residuals, returning the
// fitted parameters, the Jacobian at the solution, and the final SSE.
func levenbergMarquardt(residual func([]float64) []float64, p0, lo, hi []float64, maxIter int) ([]float64, *mat.Dense, float64, error) {
	p := clampAll(append([]float64(nil), p0...), lo, hi)
	r := residual(p)
	sse := floats.Dot(r, r)
	if !isFinite(sse) {
		return nil, nil, 0, fmt.Errorf("residuals are not finite at the initial guess")
	}

	n := len(r)
	m := len(p)
	lambda := 1e-3

	for iter := 0; iter < maxIter; iter++ {
		jac := jacobian(residual, p, r)
		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		grad := mat.NewVecDense(m, nil)
		grad.MulVec(jac.T(), mat.NewVecDense(n, r))

		// Coordinates pinned to an active bound are dropped from the step:
		// their gradient points out of the box and must not contaminate the
		// update of the free parameters.
		free := freeIndices(p, grad, lo, hi)
		if projGradNorm(grad, free) < 1e-12 || len(free) == 0 {
			return p, jac, sse, nil
		}
		mf := len(free)
		jtjFree := mat.NewDense(mf, mf, nil)
		for a, i := range free {
			for b, j := range free {
				jtjFree.Set(a, b, jtj.At(i, j))
			}
		}
		gradFree := mat.NewVecDense(mf, nil)
		for a, i := range free {
			gradFree.SetVec(a, grad.AtVec(i))
		}

		accepted := false
		for trial := 0; trial < 64; trial++ {
			damped := mat.NewDense(mf, mf, nil)
			damped.CloneFrom(jtjFree)
			for i := 0; i < mf; i++ {
				d := jtjFree.At(i, i)
				if d == 0 {
					d = 1
				}
				damped.Set(i, i, d*(1+lambda))
			}
			delta := mat.NewVecDense(mf, nil)
			if err := delta.SolveVec(damped, gradFree); err != nil {
				lambda *= 10
				continue
			}

			cand := append([]float64(nil), p...)
			for a, i := range free {
				cand[i] = p[i] - delta.AtVec(a)
			}
			cand = clampAll(cand, lo, hi)

			rc := residual(cand)
			ssec := floats.Dot(rc, rc)
			if isFinite(ssec) && ssec <= sse {
				rel := (sse - ssec) / math.Max(sse, 1e-300)
				step := mat.Norm(delta, 2)
				p, r, sse = cand, rc, ssec
				lambda = math.Max(lambda/10, 1e-12)
				accepted = true
				if rel < 1e-12 || step < 1e-14 {
					return p, jacobian(residual, p, r), sse, nil
				}
				break
			}
			lambda *= 10
			if lambda > 1e15 {
				// The damping has collapsed the step to nothing; no
				// direction improves, so this is a (local) minimum.
				return p, jacobian(residual, p, r), sse, nil
			}
		}
		if !accepted {
			return p, jacobian(residual, p, r), sse, nil
		}
	}
	return nil, nil, 0, fmt.Errorf("iteration cap (%d) exceeded", maxIter)
}

// freeIndices returns the parameters not pinned to an active bound. A
// coordinate is pinned when it sits on a bound and the descent direction
// (-grad) points outside the box.
func freeIndices(p []float64, grad *mat.VecDense, lo, hi []float64) []int {
	free := make([]int, 0, len(p))
	for i := range p {
		if lo != nil && p[i] <= lo[i] && grad.AtVec(i) > 0 {
			continue
		}
		if hi != nil && p[i] >= hi[i] && grad.AtVec(i) < 0 {
			continue
		}
		free = append(free, i)
	}
	return free
}

// projGradNorm is the infinity norm of the gradient restricted to the free
// coordinates, the stationarity measure for a box-constrained minimum.
func projGradNorm(grad *mat.VecDense, free []int) float64 {
	norm := 0.0
	for _, i := range free {
		if g := math.Abs(grad.AtVec(i)); g > norm {
			norm = g
		}
	}
	return norm
}

// jacobian estimates the n x m residual Jacobian by forward differences.
func jacobian(residual func([]float64) []float64, p, r0 []float64) *mat.Dense {
	n, m := len(r0), len(p)
	jac := mat.NewDense(n, m, nil)
	pj := append([]float64(nil), p...)
	for j := 0; j < m; j++ {
		h := 1e-7 * math.Max(math.Abs(p[j]), 1)
		pj[j] = p[j] + h
		rj := residual(pj)
		pj[j] = p[j]
		for i := 0; i < n; i++ {
			jac.Set(i, j, (rj[i]-r0[i])/h)
		}
	}
	return jac
}

// covariance estimates cov = sse/(n-m) * (JᵀJ)⁻¹, or nil when the system is
// singular or there are no degrees of freedom.
func covariance(jac *mat.Dense, sse float64, n, m int) *mat.SymDense {
	if jac == nil || n <= m {
		return nil
	}
	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)
	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		return nil
	}
	sigma2 := sse / float64(n-m)
	cov := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			cov.SetSym(i, j, sigma2*0.5*(inv.At(i, j)+inv.At(j, i)))
		}
	}
	return cov
}

func clampAll(p, lo, hi []float64) []float64 {
	for i := range p {
		if lo != nil && p[i] < lo[i] {
			p[i] = lo[i]
		}
		if hi != nil && p[i] > hi[i] {
			p[i] = hi[i]
		}
	}
	return p
}

func ones(n int) []float64 {
	p := make([]float64, n)
	for i := range p {
		p[i] = 1
	}
	return p
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
