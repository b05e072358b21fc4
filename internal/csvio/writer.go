package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Write renders a header row followed by the numeric matrix as CSV. NaN
// cells are written as empty fields so a round-trip restores them.
func Write(w io.Writer, header []string, data [][]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(header))
	for i, row := range data {
		for j := range record {
			record[j] = ""
			if j < len(row) && !math.IsNaN(row[j]) {
				record[j] = strconv.FormatFloat(row[j], 'g', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
