// Package sheet implements the column store backing a worksheet: a numeric
// matrix with per-column identifiers, optional user labels, and X/Y/Z role
// tags, plus a change-notification hook for live views.
package sheet

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const noRole = -1

// Sheet is a rows×cols matrix of float64 values where NaN marks a blank
// cell. Every column carries a synthetic base name (A, B, ..., AA, ...) and
// an optional long name; an empty long name falls back to the base name for
// display. Columns may be tagged with plotting roles: at most one X, any
// number of Y, at most one Z.
//
// A Sheet is owned by a single worksheet and is not safe for concurrent use.
// Every successful mutation notifies subscribers exactly once; failed
// operations leave the sheet untouched and stay silent.
type Sheet struct {
	data      [][]float64
	baseNames []string
	longNames []string

	xCol  int
	yCols map[int]struct{}
	zCol  int

	subs []func()
}

// New allocates an all-NaN sheet with the given shape. Counts below one are
// raised to one, so New never fails.
func New(rows, cols int) *Sheet {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	s := &Sheet{
		data:      nanMatrix(rows, cols),
		baseNames: make([]string, cols),
		longNames: make([]string, cols),
		xCol:      noRole,
		yCols:     make(map[int]struct{}),
		zCol:      noRole,
	}
	for j := 0; j < cols; j++ {
		s.baseNames[j] = BaseName(j)
	}
	return s
}

// FromRows builds a sheet from a rectangular matrix. Ragged input is trimmed
// to the shortest row. An empty matrix yields a 1x1 blank sheet.
func FromRows(rows [][]float64) *Sheet {
	if len(rows) == 0 {
		return New(1, 1)
	}
	w := len(rows[0])
	for _, r := range rows {
		if len(r) < w {
			w = len(r)
		}
	}
	if w == 0 {
		return New(len(rows), 1)
	}
	s := New(len(rows), w)
	for i, r := range rows {
		copy(s.data[i], r[:w])
	}
	return s
}

// Subscribe registers a callback invoked synchronously after every
// successful mutation, in registration order. The callback receives no
// payload; consumers re-read current state.
func (s *Sheet) Subscribe(fn func()) {
	s.subs = append(s.subs, fn)
}

// commit is the single notification funnel: every mutation path ends here so
// the emitted-once contract holds as entry points are added.
func (s *Sheet) commit() {
	for _, fn := range s.subs {
		fn()
	}
}

// Rows returns the row count.
func (s *Sheet) Rows() int { return len(s.data) }

// Cols returns the column count.
func (s *Sheet) Cols() int { return len(s.baseNames) }

// Cell returns the value at (r, c), or NaN if the coordinates are out of
// range.
func (s *Sheet) Cell(r, c int) float64 {
	if r < 0 || r >= s.Rows() || c < 0 || c >= s.Cols() {
		return math.NaN()
	}
	return s.data[r][c]
}

// Column returns a copy of column j.
func (s *Sheet) Column(j int) ([]float64, error) {
	if err := s.checkCol(j); err != nil {
		return nil, err
	}
	out := make([]float64, s.Rows())
	for i := range s.data {
		out[i] = s.data[i][j]
	}
	return out, nil
}

// BaseNames returns a copy of the synthetic column identifiers in order.
func (s *Sheet) BaseNames() []string {
	return append([]string(nil), s.baseNames...)
}

// LongNames returns a copy of the user labels in column order; an empty
// string means unset.
func (s *Sheet) LongNames() []string {
	return append([]string(nil), s.longNames...)
}

// DisplayName returns column j's long name, falling back to its base name.
func (s *Sheet) DisplayName(j int) string {
	if j < 0 || j >= s.Cols() {
		return ""
	}
	if s.longNames[j] != "" {
		return s.longNames[j]
	}
	return s.baseNames[j]
}

// HeaderLabel renders column j's base name with its role tags appended,
// e.g. "B [Y]" or "A [X Z]".
func (s *Sheet) HeaderLabel(j int) string {
	if j < 0 || j >= s.Cols() {
		return ""
	}
	var tags []string
	if s.xCol == j {
		tags = append(tags, "X")
	}
	if _, ok := s.yCols[j]; ok {
		tags = append(tags, "Y")
	}
	if s.zCol == j {
		tags = append(tags, "Z")
	}
	if len(tags) == 0 {
		return s.baseNames[j]
	}
	return fmt.Sprintf("%s [%s]", s.baseNames[j], strings.Join(tags, " "))
}

// DisplayNames returns every column's display name in order.
func (s *Sheet) DisplayNames() []string {
	out := make([]string, s.Cols())
	for j := range out {
		out[j] = s.DisplayName(j)
	}
	return out
}

// Matrix returns a copy of the full value matrix.
func (s *Sheet) Matrix() [][]float64 {
	out := make([][]float64, s.Rows())
	for i, row := range s.data {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Locals maps each column's base name to a copy of its values, the symbol
// table handed to the expression evaluator.
func (s *Sheet) Locals() map[string][]float64 {
	out := make(map[string][]float64, s.Cols())
	for j := 0; j < s.Cols(); j++ {
		col, _ := s.Column(j)
		out[s.baseNames[j]] = col
	}
	return out
}

// EnsureSize grows the sheet to at least rows×cols, preserving existing
// values in the top-left block and filling new cells with NaN. It never
// shrinks and stays silent when the requested shape already fits.
func (s *Sheet) EnsureSize(rows, cols int) {
	if rows <= s.Rows() && cols <= s.Cols() {
		return
	}
	s.grow(rows, cols)
	s.commit()
}

func (s *Sheet) grow(rows, cols int) {
	newR := max(rows, s.Rows())
	newC := max(cols, s.Cols())
	if newR == s.Rows() && newC == s.Cols() {
		return
	}
	next := nanMatrix(newR, newC)
	for i := range s.data {
		copy(next[i], s.data[i])
	}
	s.data = next
	for j := s.Cols(); j < newC; j++ {
		s.baseNames = append(s.baseNames, BaseName(j))
		s.longNames = append(s.longNames, "")
	}
}

// SetCell parses text and writes the result at (r, c). Blank text maps to
// NaN. Non-numeric text is rejected with a ValidationError and the cell
// keeps its prior value. Overwriting a blank cell with another blank is a
// no-op and does not notify.
func (s *Sheet) SetCell(r, c int, text string) error {
	if r < 0 || r >= s.Rows() || c < 0 || c >= s.Cols() {
		return fmt.Errorf("cell (%d,%d) out of range for %dx%d sheet", r, c, s.Rows(), s.Cols())
	}
	text = strings.TrimSpace(text)
	val := math.NaN()
	if text != "" {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return &ValidationError{Row: r, Col: c, Text: text}
		}
		val = f
	}
	if math.IsNaN(s.data[r][c]) && math.IsNaN(val) {
		return nil
	}
	s.data[r][c] = val
	s.commit()
	return nil
}

// AddColumn appends values as a new column and returns its index. The vector
// length must equal the current row count. A non-blank name becomes the
// column's long name; the base name is always auto-generated.
func (s *Sheet) AddColumn(values []float64, name string) (int, error) {
	if len(values) != s.Rows() {
		return 0, &LengthMismatchError{Want: s.Rows(), Got: len(values)}
	}
	j := s.Cols()
	s.grow(s.Rows(), j+1)
	for i := range s.data {
		s.data[i][j] = values[i]
	}
	if name = strings.TrimSpace(name); name != "" {
		s.longNames[j] = name
	}
	s.commit()
	return j, nil
}

// DeleteColumns removes the given column indices, reindexing role tags to
// the surviving columns and clearing roles that pointed at a deleted one.
// Out-of-range indices are ignored. Removing every column is refused with
// ErrLastColumn.
func (s *Sheet) DeleteColumns(indices []int) error {
	doomed := make(map[int]struct{})
	for _, j := range indices {
		if j >= 0 && j < s.Cols() {
			doomed[j] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		return nil
	}
	if len(doomed) == s.Cols() {
		return ErrLastColumn
	}

	keep := make([]int, 0, s.Cols()-len(doomed))
	remap := make(map[int]int, s.Cols())
	for j := 0; j < s.Cols(); j++ {
		if _, gone := doomed[j]; gone {
			continue
		}
		remap[j] = len(keep)
		keep = append(keep, j)
	}

	for i, row := range s.data {
		next := make([]float64, len(keep))
		for nj, oj := range keep {
			next[nj] = row[oj]
		}
		s.data[i] = next
	}
	baseNames := make([]string, len(keep))
	longNames := make([]string, len(keep))
	for nj, oj := range keep {
		baseNames[nj] = s.baseNames[oj]
		longNames[nj] = s.longNames[oj]
	}
	s.baseNames = baseNames
	s.longNames = longNames

	s.xCol = remapRole(s.xCol, remap)
	s.zCol = remapRole(s.zCol, remap)
	ys := make(map[int]struct{}, len(s.yCols))
	for j := range s.yCols {
		if nj, ok := remap[j]; ok {
			ys[nj] = struct{}{}
		}
	}
	s.yCols = ys

	s.commit()
	return nil
}

func remapRole(j int, remap map[int]int) int {
	if j == noRole {
		return noRole
	}
	if nj, ok := remap[j]; ok {
		return nj
	}
	return noRole
}

// RenameColumn sets column j's long name; blank clears it back to base-name
// display.
func (s *Sheet) RenameColumn(j int, label string) error {
	if err := s.checkCol(j); err != nil {
		return err
	}
	s.longNames[j] = strings.TrimSpace(label)
	s.commit()
	return nil
}

// SetLongNames replaces all long names at once (project load). Extra entries
// are dropped, missing ones default to unset.
func (s *Sheet) SetLongNames(names []string) {
	next := make([]string, s.Cols())
	for j := range next {
		if j < len(names) {
			next[j] = strings.TrimSpace(names[j])
		}
	}
	s.longNames = next
	s.commit()
}

// PasteBlock writes a parsed block with its top-left corner at (r0, c0),
// growing the sheet first when the target exceeds the current shape.
func (s *Sheet) PasteBlock(r0, c0 int, block [][]float64) error {
	if r0 < 0 || c0 < 0 {
		return fmt.Errorf("paste origin (%d,%d) out of range", r0, c0)
	}
	if len(block) == 0 {
		return nil
	}
	maxW := 0
	for _, row := range block {
		if len(row) > maxW {
			maxW = len(row)
		}
	}
	if maxW == 0 {
		return nil
	}
	s.grow(r0+len(block), c0+maxW)
	for i, row := range block {
		for j, v := range row {
			s.data[r0+i][c0+j] = v
		}
	}
	s.commit()
	return nil
}

// CopyBlock renders the inclusive rectangle (r0,c0)-(r1,c1) as tab-separated
// text, one line per row, NaN as the empty string.
func (s *Sheet) CopyBlock(r0, c0, r1, c1 int) (string, error) {
	if r0 < 0 || c0 < 0 || r1 >= s.Rows() || c1 >= s.Cols() || r0 > r1 || c0 > c1 {
		return "", fmt.Errorf("block (%d,%d)-(%d,%d) out of range", r0, c0, r1, c1)
	}
	var b strings.Builder
	for r := r0; r <= r1; r++ {
		if r > r0 {
			b.WriteByte('\n')
		}
		for c := c0; c <= c1; c++ {
			if c > c0 {
				b.WriteByte('\t')
			}
			if v := s.data[r][c]; !math.IsNaN(v) {
				b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
	}
	return b.String(), nil
}

// CutBlock blanks the inclusive rectangle (r0,c0)-(r1,c1) to NaN.
func (s *Sheet) CutBlock(r0, c0, r1, c1 int) error {
	if r0 < 0 || c0 < 0 || r1 >= s.Rows() || c1 >= s.Cols() || r0 > r1 || c0 > c1 {
		return fmt.Errorf("block (%d,%d)-(%d,%d) out of range", r0, c0, r1, c1)
	}
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			s.data[r][c] = math.NaN()
		}
	}
	s.commit()
	return nil
}

// ParseBlock parses clipboard-style text into a block of values: lines split
// on tabs when present, otherwise on semicolons or commas. Blank or
// unparsable cells become NaN.
func ParseBlock(text string) [][]float64 {
	var block [][]float64
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line == "" {
			continue
		}
		var parts []string
		if strings.Contains(line, "\t") {
			parts = strings.Split(line, "\t")
		} else {
			parts = strings.FieldsFunc(line, func(r rune) bool { return r == ';' || r == ',' })
		}
		row := make([]float64, len(parts))
		for j, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				f = math.NaN()
			}
			row[j] = f
		}
		block = append(block, row)
	}
	return block
}

// SetRoleX tags column j as the X column.
func (s *Sheet) SetRoleX(j int) error {
	if err := s.checkCol(j); err != nil {
		return err
	}
	s.xCol = j
	s.commit()
	return nil
}

// AddRoleY tags the given columns as Y columns. Already-tagged columns are
// left alone; if nothing changes, no notification is emitted.
func (s *Sheet) AddRoleY(cols ...int) error {
	for _, j := range cols {
		if err := s.checkCol(j); err != nil {
			return err
		}
	}
	changed := false
	for _, j := range cols {
		if _, ok := s.yCols[j]; !ok {
			s.yCols[j] = struct{}{}
			changed = true
		}
	}
	if changed {
		s.commit()
	}
	return nil
}

// SetRoleZ tags column j as the Z column.
func (s *Sheet) SetRoleZ(j int) error {
	if err := s.checkCol(j); err != nil {
		return err
	}
	s.zCol = j
	s.commit()
	return nil
}

// ClearRoles removes all role tags. Silent when no roles were set.
func (s *Sheet) ClearRoles() {
	if s.xCol == noRole && s.zCol == noRole && len(s.yCols) == 0 {
		return
	}
	s.xCol = noRole
	s.zCol = noRole
	s.yCols = make(map[int]struct{})
	s.commit()
}

// RoleX reports the X column index, if one is set.
func (s *Sheet) RoleX() (int, bool) { return s.xCol, s.xCol != noRole }

// RoleYs returns the Y column indices in ascending order.
func (s *Sheet) RoleYs() []int {
	out := make([]int, 0, len(s.yCols))
	for j := range s.yCols {
		out = append(out, j)
	}
	sort.Ints(out)
	return out
}

// RoleZ reports the Z column index, if one is set.
func (s *Sheet) RoleZ() (int, bool) { return s.zCol, s.zCol != noRole }

func (s *Sheet) checkCol(j int) error {
	if j < 0 || j >= s.Cols() {
		return fmt.Errorf("column %d out of range (%d columns)", j, s.Cols())
	}
	return nil
}

func nanMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		row := make([]float64, cols)
		for j := range row {
			row[j] = math.NaN()
		}
		m[i] = row
	}
	return m
}
