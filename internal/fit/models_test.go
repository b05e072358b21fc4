package fit_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/plotloom/plotloom-cli/internal/fit"
)

func TestModelNames(t *testing.T) {
	want := []string{"exponential", "gaussian", "linear", "lorentzian", "voigt"}
	if got := fit.ModelNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	if _, err := fit.Lookup("parabola"); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestGaussianGuessTracksData(t *testing.T) {
	m, _ := fit.Lookup("gaussian")
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 1, 5, 1, 1}
	p0 := m.Guess(x, y)
	if p0[0] != 4 { // amplitude = data span
		t.Fatalf("amplitude guess = %v, want 4", p0[0])
	}
	if p0[1] != 2 { // center = x at argmax
		t.Fatalf("center guess = %v, want 2", p0[1])
	}
	if p0[3] != 1 { // offset = min y
		t.Fatalf("offset guess = %v, want 1", p0[3])
	}
}

func TestLorentzianPeakValue(t *testing.T) {
	m, _ := fit.Lookup("lorentzian")
	// At the center the profile contributes exactly A.
	if got := m.F(1.5, []float64{3, 1.5, 0.2, 1}); math.Abs(got-4) > 1e-12 {
		t.Fatalf("peak value = %v, want 4", got)
	}
}

func TestVoigtLimits(t *testing.T) {
	m, _ := fit.Lookup("voigt")

	// With a vanishing Lorentzian width the Voigt profile collapses to a
	// normalized Gaussian: peak height A/(sigma*sqrt(2*pi)).
	sigma := 0.7
	got := m.F(0, []float64{1, 0, sigma, 1e-12, 0})
	want := 1 / (sigma * math.Sqrt(2*math.Pi))
	if math.Abs(got-want) > 1e-4*want {
		t.Fatalf("voigt gaussian limit = %v, want %v", got, want)
	}

	// Symmetric about the center.
	p := []float64{2, 1, 0.5, 0.3, 0}
	if l, r := m.F(0.25, p), m.F(1.75, p); math.Abs(l-r) > 1e-12 {
		t.Fatalf("voigt not symmetric: %v vs %v", l, r)
	}

	// Far tails decay toward the offset.
	if tail := m.F(1e4, p); math.Abs(tail) > 1e-3 {
		t.Fatalf("voigt tail = %v, want ~0", tail)
	}
}
