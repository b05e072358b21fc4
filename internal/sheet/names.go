package sheet

import (
	"fmt"
	"strings"
)

// BaseName returns the spreadsheet-style column identifier for a zero-based
// index: 0 -> "A", 25 -> "Z", 26 -> "AA", 701 -> "ZZ", 702 -> "AAA".
// This is bijective base-26 with no zero digit, so names never collide and
// every index has exactly one name.
func BaseName(n int) string {
	if n < 0 {
		return ""
	}
	var b []byte
	for {
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
		if n == 0 {
			return string(b)
		}
		n--
	}
}

// ColumnIndex parses a base name back to its zero-based index. Lowercase
// input is accepted. The empty string or any non-letter rune is an error.
func ColumnIndex(name string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if s == "" {
		return 0, fmt.Errorf("empty column name")
	}
	n := 0
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column name %q", name)
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1, nil
}
