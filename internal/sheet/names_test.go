package sheet_test

import (
	"testing"

	"github.com/plotloom/plotloom-cli/internal/sheet"
)

func TestBaseNameSequence(t *testing.T) {
	cases := map[int]string{
		0:   "A",
		1:   "B",
		25:  "Z",
		26:  "AA",
		27:  "AB",
		51:  "AZ",
		52:  "BA",
		701: "ZZ",
		702: "AAA",
	}
	for n, want := range cases {
		if got := sheet.BaseName(n); got != want {
			t.Errorf("BaseName(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestColumnIndexRoundTrip(t *testing.T) {
	for n := 0; n < 1000; n++ {
		name := sheet.BaseName(n)
		got, err := sheet.ColumnIndex(name)
		if err != nil {
			t.Fatalf("ColumnIndex(%q): %v", name, err)
		}
		if got != n {
			t.Fatalf("ColumnIndex(%q) = %d, want %d", name, got, n)
		}
	}
}

func TestColumnIndexLowercaseAndInvalid(t *testing.T) {
	if got, err := sheet.ColumnIndex("aa"); err != nil || got != 26 {
		t.Fatalf("ColumnIndex(aa) = %d, %v; want 26, nil", got, err)
	}
	for _, bad := range []string{"", "A1", "-", "A B"} {
		if _, err := sheet.ColumnIndex(bad); err == nil {
			t.Errorf("ColumnIndex(%q): expected error", bad)
		}
	}
}
