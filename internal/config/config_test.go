package config_test

import (
	"path/filepath"
	"testing"

	"github.com/plotloom/plotloom-cli/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	// Point at a file that does not exist so only defaults apply.
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	c, err := config.Load(cfgFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DefaultRows != 1000 || c.DefaultCols != 2 {
		t.Errorf("sheet defaults = %dx%d, want 1000x2", c.DefaultRows, c.DefaultCols)
	}
	if c.CSVRowPolicy != "nan" {
		t.Errorf("csv_row_policy = %q, want nan", c.CSVRowPolicy)
	}
	if c.FitSamples != 1000 || c.FitMaxIter != 10000 {
		t.Errorf("fit defaults = %d/%d, want 1000/10000", c.FitSamples, c.FitMaxIter)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	want := &config.Global{
		DefaultRows:  50,
		DefaultCols:  4,
		CSVDelimiter: ";",
		CSVRowPolicy: "drop",
		FitSamples:   200,
		FitMaxIter:   500,
	}
	if err := config.Save(want, cfgFile); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := config.Load(cfgFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}
