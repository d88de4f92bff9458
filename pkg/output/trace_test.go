package output

import (
	"bufio"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestTraceWriterRoundTrip(t *testing.T) {
	var sb strings.Builder
	tw := NewTraceWriter(&sb)

	if err := tw.Header([]string{"1", "2", "jV1"}); err != nil {
		t.Fatal(err)
	}
	rows := [][]float64{
		{1.0 / 3.0, -2.5e-13, 7},
		{math.Pi, 0, -1e-300},
	}
	times := []float64{0, 1e-6}
	for i, row := range rows {
		if err := tw.Row(times[i], row); err != nil {
			t.Fatal(err)
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(sb.String()))
	if !scanner.Scan() || scanner.Text() != "t 1 2 jV1" {
		t.Fatalf("bad header: %q", scanner.Text())
	}
	for i := 0; scanner.Scan(); i++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 {
			t.Fatalf("row %d has %d fields", i, len(fields))
		}
		tm, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || tm != times[i] {
			t.Errorf("row %d time %q did not round-trip", i, fields[0])
		}
		for j, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				t.Fatalf("row %d col %d: %v", i, j, err)
			}
			if v != rows[i][j] {
				t.Errorf("row %d col %d: %g != %g", i, j, v, rows[i][j])
			}
		}
	}
}

func TestMemoryTraceColumns(t *testing.T) {
	mt := &MemoryTrace{}
	mt.Header([]string{"a", "b"})
	mt.Row(0, []float64{1, 2})
	mt.Row(1, []float64{3, 4})

	if col := mt.Column("b"); len(col) != 2 || col[0] != 2 || col[1] != 4 {
		t.Errorf("Column(b) = %v", col)
	}
	if mt.Column("missing") != nil {
		t.Error("missing column should be nil")
	}
}

func TestTeeFansOut(t *testing.T) {
	a, b := &MemoryTrace{}, &MemoryTrace{}
	tee := Tee{a, b}
	tee.Header([]string{"x"})
	tee.Row(1, []float64{5})

	if len(a.Rows) != 1 || len(b.Rows) != 1 {
		t.Error("tee did not reach both sinks")
	}
}

func TestPlotWritesFile(t *testing.T) {
	mt := &MemoryTrace{}
	mt.Header([]string{"1", "2"})
	for i := 0; i < 10; i++ {
		x := float64(i) * 0.1
		mt.Row(x, []float64{math.Sin(x), math.Cos(x)})
	}

	path := filepath.Join(t.TempDir(), "trace.png")
	if err := Plot(mt, 2, path); err != nil {
		t.Fatalf("Plot: %v", err)
	}
}
