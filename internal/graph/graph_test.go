package graph_test

import (
	"testing"

	"github.com/plotloom/plotloom-cli/internal/graph"
	"github.com/plotloom/plotloom-cli/internal/sheet"
)

func twoColumnSheet(t *testing.T) *sheet.Sheet {
	t.Helper()
	s := sheet.New(3, 2)
	for r, pair := range [][2]string{{"0", "1"}, {"1", "2"}, {"2", "4"}} {
		if err := s.SetCell(r, 0, pair[0]); err != nil {
			t.Fatal(err)
		}
		if err := s.SetCell(r, 1, pair[1]); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestGraphDefaultsToFirstTwoColumns(t *testing.T) {
	s := twoColumnSheet(t)
	g := graph.New(s)
	series := g.Series()
	if len(series) != 1 {
		t.Fatalf("series = %d, want 1", len(series))
	}
	if series[0].Label != "B" {
		t.Fatalf("label = %q, want B", series[0].Label)
	}
	if series[0].X[2] != 2 || series[0].Y[2] != 4 {
		t.Fatalf("series data = %v / %v", series[0].X, series[0].Y)
	}
}

func TestGraphFollowsSheetEdits(t *testing.T) {
	s := twoColumnSheet(t)
	g := graph.New(s)

	if err := s.SetCell(2, 1, "9"); err != nil {
		t.Fatal(err)
	}
	if got := g.Series()[0].Y[2]; got != 9 {
		t.Fatalf("series saw %v after edit, want 9", got)
	}

	// Renaming the Y column updates the legend label on the next change.
	if err := s.RenameColumn(1, "signal"); err != nil {
		t.Fatal(err)
	}
	if got := g.Series()[0].Label; got != "signal" {
		t.Fatalf("label = %q after rename, want signal", got)
	}
}

func TestGraphUsesRoles(t *testing.T) {
	s := sheet.New(2, 3)
	for c := 0; c < 3; c++ {
		if err := s.SetCell(0, c, "1"); err != nil {
			t.Fatal(err)
		}
		if err := s.SetCell(1, c, "2"); err != nil {
			t.Fatal(err)
		}
	}
	g := graph.New(s)
	if err := s.SetRoleX(2); err != nil {
		t.Fatal(err)
	}
	if err := s.AddRoleY(0, 1); err != nil {
		t.Fatal(err)
	}
	series := g.Series()
	if len(series) != 2 {
		t.Fatalf("series = %d, want 2", len(series))
	}
	if series[0].Label != "A" || series[1].Label != "B" {
		t.Fatalf("labels = %q, %q", series[0].Label, series[1].Label)
	}
}

func TestOverlaysSurviveRefresh(t *testing.T) {
	s := twoColumnSheet(t)
	g := graph.New(s)
	g.AddOverlay("gaussian fit", []float64{0, 1}, []float64{0, 1})
	if err := s.SetCell(0, 0, "5"); err != nil {
		t.Fatal(err)
	}
	if len(g.Overlays()) != 1 {
		t.Fatal("overlay lost after sheet change")
	}
	g.ClearOverlays()
	if len(g.Overlays()) != 0 {
		t.Fatal("overlays not cleared")
	}
}
