// Package csvio reads and writes the plain-CSV representation of a
// worksheet. Import is heuristic: the delimiter is sniffed from a content
// prefix, the first row is kept or dropped based on how numeric it looks,
// and malformed cells are handled by a caller-chosen policy.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrEmptyInput means the source had no data rows at all.
var ErrEmptyInput = errors.New("no rows found in input")

// ErrNoNumericData means rows existed but every one was dropped as
// unparsable.
var ErrNoNumericData = errors.New("no numeric rows survived parsing")

// sniffLen bounds how much of the input the delimiter sniffer inspects.
const sniffLen = 4096

// RowPolicy selects how a malformed cell is handled during ingest.
type RowPolicy int

const (
	// RowPolicyNaN substitutes NaN for each cell that fails to parse.
	RowPolicyNaN RowPolicy = iota
	// RowPolicyDrop rejects an entire row when any of its cells fails to
	// parse, blanks included.
	RowPolicyDrop
)

// ParseRowPolicy maps the config/flag spelling to a RowPolicy.
func ParseRowPolicy(s string) (RowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan":
		return RowPolicyNaN, nil
	case "drop":
		return RowPolicyDrop, nil
	default:
		return 0, fmt.Errorf("unknown row policy %q (want nan or drop)", s)
	}
}

// Options controls ingest behavior.
type Options struct {
	// Delimiter forces a field separator. Zero means sniff among ',', '\t',
	// ';' with comma as the fallback.
	Delimiter rune
	// RowPolicy selects the malformed-cell handling. Default RowPolicyNaN.
	RowPolicy RowPolicy
}

// Table is the parsed result: a rectangular numeric matrix and the original
// header text, if a header row was detected. Header text is informational
// only; column naming is positional.
type Table struct {
	Header []string
	Data   [][]float64
}

// Rows returns the number of data rows.
func (t *Table) Rows() int { return len(t.Data) }

// Cols returns the column count, zero for an empty table.
func (t *Table) Cols() int {
	if len(t.Data) == 0 {
		return 0
	}
	return len(t.Data[0])
}

// Read ingests delimiter-separated numeric text. The first row is treated as
// data when at least 60% of its cells parse as numbers, and as a header
// (dropped, but reported in Table.Header) otherwise. Ragged rows are trimmed
// to the minimum width observed and rows that end up entirely blank are
// dropped.
func Read(r io.Reader, opt Options) (*Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	delim := opt.Delimiter
	if delim == 0 {
		prefix := content
		if len(prefix) > sniffLen {
			prefix = prefix[:sniffLen]
		}
		delim = SniffDelimiter(prefix)
	}

	cr := csv.NewReader(bytes.NewReader(content))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	tbl := &Table{}
	dataRows := records
	if numericFraction(records[0]) < 0.6 {
		tbl.Header = records[0]
		dataRows = records[1:]
	}
	if len(dataRows) == 0 {
		return nil, ErrEmptyInput
	}

	// Ragged input is trimmed, not padded.
	width := len(dataRows[0])
	for _, rec := range dataRows {
		if len(rec) < width {
			width = len(rec)
		}
	}
	if width == 0 {
		return nil, ErrNoNumericData
	}

	for _, rec := range dataRows {
		row := make([]float64, width)
		keep := true
		blank := true
		for j := 0; j < width; j++ {
			f, ok := parseCell(rec[j])
			if !ok && opt.RowPolicy == RowPolicyDrop {
				keep = false
				break
			}
			if !math.IsNaN(f) {
				blank = false
			}
			row[j] = f
		}
		if keep && !blank {
			tbl.Data = append(tbl.Data, row)
		}
	}
	if len(tbl.Data) == 0 {
		return nil, ErrNoNumericData
	}
	return tbl, nil
}

// ReadPayload parses a project-archive sheet entry: the first row is always
// the header (saved display names), every malformed or blank cell becomes
// NaN, and no rows are dropped so the stored grid shape survives.
func ReadPayload(r io.Reader) (header []string, data [][]float64, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse sheet payload: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	header = records[0]
	rows := records[1:]
	if len(rows) == 0 {
		return header, nil, nil
	}
	width := len(rows[0])
	for _, rec := range rows {
		if len(rec) < width {
			width = len(rec)
		}
	}
	for _, rec := range rows {
		row := make([]float64, width)
		for j := 0; j < width; j++ {
			f, _ := parseCell(rec[j])
			row[j] = f
		}
		data = append(data, row)
	}
	return header, data, nil
}

// SniffDelimiter picks the candidate separator that appears most
// consistently across the prefix's complete lines, falling back to comma.
func SniffDelimiter(prefix []byte) rune {
	lines := nonEmptyLines(string(prefix), 10)
	best := ','
	bestScore := 0
	for _, cand := range []rune{',', '\t', ';'} {
		score := -1
		for _, line := range lines {
			n := strings.Count(line, string(cand))
			if score == -1 || n < score {
				score = n
			}
		}
		if score > bestScore {
			best = cand
			bestScore = score
		}
	}
	return best
}

func nonEmptyLines(s string, limit int) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

func numericFraction(rec []string) float64 {
	if len(rec) == 0 {
		return 0
	}
	n := 0
	for _, cell := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			n++
		}
	}
	return float64(n) / float64(len(rec))
}

// parseCell reports the cell's numeric value. Blank or unparsable cells
// yield NaN with ok=false.
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return f, true
}
