package sheet

import (
	"errors"
	"fmt"
)

// ErrLastColumn is returned when a delete would remove every column.
var ErrLastColumn = errors.New("cannot delete all columns: at least one must remain")

// ValidationError reports a cell edit whose text is not numeric. The edit is
// rejected and the cell keeps its prior value.
type ValidationError struct {
	Row, Col int
	Text     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cell (%d,%d): %q is not a number", e.Row, e.Col, e.Text)
}

// LengthMismatchError reports a vector whose length disagrees with the
// sheet's row count.
type LengthMismatchError struct {
	Want, Got int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("column length %d does not match row count %d", e.Got, e.Want)
}
