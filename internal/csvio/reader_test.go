package csvio_test

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/plotloom/plotloom-cli/internal/csvio"
)

func TestReadNumericFirstRowIsData(t *testing.T) {
	tbl, err := csvio.Read(strings.NewReader("1,2\n3,4\n"), csvio.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Header != nil {
		t.Fatalf("header = %v, want none", tbl.Header)
	}
	want := [][]float64{{1, 2}, {3, 4}}
	if !reflect.DeepEqual(tbl.Data, want) {
		t.Fatalf("data = %v, want %v", tbl.Data, want)
	}
}

func TestReadTextFirstRowIsHeader(t *testing.T) {
	tbl, err := csvio.Read(strings.NewReader("time,volts\n1,2\n3,4\n"), csvio.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl.Header, []string{"time", "volts"}) {
		t.Fatalf("header = %v", tbl.Header)
	}
	if tbl.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Rows())
	}
}

func TestReadHeaderHeuristicBoundary(t *testing.T) {
	// 3 of 5 numeric (60%) is exactly at the threshold: treated as data.
	tbl, err := csvio.Read(strings.NewReader("1,2,3,x,y\n4,5,6,7,8\n"), csvio.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Header != nil || tbl.Rows() != 2 {
		t.Fatalf("3/5 numeric row 0 should be data; header=%v rows=%d", tbl.Header, tbl.Rows())
	}

	// 2 of 5 numeric falls below: treated as header and dropped.
	tbl, err = csvio.Read(strings.NewReader("1,2,a,x,y\n4,5,6,7,8\n"), csvio.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Header == nil || tbl.Rows() != 1 {
		t.Fatalf("2/5 numeric row 0 should be header; header=%v rows=%d", tbl.Header, tbl.Rows())
	}
}

func TestReadDelimiterSniffing(t *testing.T) {
	tbl, err := csvio.Read(strings.NewReader("1\t2\n3\t4\n"), csvio.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Cols() != 2 {
		t.Fatalf("cols = %d, want 2 (tab not sniffed)", tbl.Cols())
	}
	tbl, err = csvio.Read(strings.NewReader("1;2;3\n4;5;6\n"), csvio.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Cols() != 3 {
		t.Fatalf("cols = %d, want 3 (semicolon not sniffed)", tbl.Cols())
	}
}

func TestReadRowPolicies(t *testing.T) {
	src := "1,2\n3,oops\n5,6\n"
	tbl, err := csvio.Read(strings.NewReader(src), csvio.Options{RowPolicy: csvio.RowPolicyNaN})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Rows() != 3 {
		t.Fatalf("nan policy rows = %d, want 3", tbl.Rows())
	}
	if !math.IsNaN(tbl.Data[1][1]) {
		t.Fatalf("bad cell = %v, want NaN", tbl.Data[1][1])
	}

	tbl, err = csvio.Read(strings.NewReader(src), csvio.Options{RowPolicy: csvio.RowPolicyDrop})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Rows() != 2 {
		t.Fatalf("drop policy rows = %d, want 2", tbl.Rows())
	}
}

func TestReadRaggedRowsTrimmed(t *testing.T) {
	tbl, err := csvio.Read(strings.NewReader("1,2,3\n4,5\n6,7,8\n"), csvio.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Cols() != 2 {
		t.Fatalf("cols = %d, want 2", tbl.Cols())
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := csvio.Read(strings.NewReader(""), csvio.Options{}); !errors.Is(err, csvio.ErrEmptyInput) {
		t.Fatalf("empty input err = %v", err)
	}
	if _, err := csvio.Read(strings.NewReader("time,volts\n"), csvio.Options{}); !errors.Is(err, csvio.ErrEmptyInput) {
		t.Fatalf("header-only err = %v", err)
	}
	if _, err := csvio.Read(strings.NewReader("a,b\nc,d\n"), csvio.Options{}); !errors.Is(err, csvio.ErrNoNumericData) {
		t.Fatalf("no numeric err = %v", err)
	}
}

func TestWriteRoundTripsNaNAsBlank(t *testing.T) {
	var b strings.Builder
	data := [][]float64{{1.5, math.NaN()}, {math.NaN(), -2}}
	if err := csvio.Write(&b, []string{"A", "volts"}, data); err != nil {
		t.Fatal(err)
	}
	want := "A,volts\n1.5,\n,-2\n"
	if b.String() != want {
		t.Fatalf("output = %q, want %q", b.String(), want)
	}

	header, back, err := csvio.ReadPayload(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(header, []string{"A", "volts"}) {
		t.Fatalf("header = %v", header)
	}
	if back[0][0] != 1.5 || !math.IsNaN(back[0][1]) || !math.IsNaN(back[1][0]) || back[1][1] != -2 {
		t.Fatalf("round trip = %v", back)
	}
}

func TestReadPayloadKeepsBlankRows(t *testing.T) {
	_, data, err := csvio.ReadPayload(strings.NewReader("A,B\n,\n1,2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 2 {
		t.Fatalf("rows = %d, want 2 (blank row must survive)", len(data))
	}
	if !math.IsNaN(data[0][0]) {
		t.Fatal("blank cell should be NaN")
	}
}
