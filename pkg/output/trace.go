package output

import (
	"bufio"
	"io"
	"strconv"
)

// TraceWriter streams the tabular trace: a header row of column names,
// then one row per output time. Numbers are written with shortest
// round-trip precision so the file reloads to the exact doubles. Every
// row is flushed, so an abandoned run keeps everything emitted so far.
type TraceWriter struct {
	w *bufio.Writer
}

func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: bufio.NewWriter(w)}
}

func (tw *TraceWriter) Header(names []string) error {
	if _, err := tw.w.WriteString("t"); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := tw.w.WriteString(" " + name); err != nil {
			return err
		}
	}
	if err := tw.w.WriteByte('\n'); err != nil {
		return err
	}
	return tw.w.Flush()
}

func (tw *TraceWriter) Row(t float64, values []float64) error {
	if _, err := tw.w.WriteString(strconv.FormatFloat(t, 'g', -1, 64)); err != nil {
		return err
	}
	for _, v := range values {
		if err := tw.w.WriteByte(' '); err != nil {
			return err
		}
		if _, err := tw.w.WriteString(strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return err
		}
	}
	if err := tw.w.WriteByte('\n'); err != nil {
		return err
	}
	return tw.w.Flush()
}

// MemoryTrace retains the trace in memory, for plotting and for tests.
type MemoryTrace struct {
	Names []string
	Times []float64
	Rows  [][]float64
}

func (mt *MemoryTrace) Header(names []string) error {
	mt.Names = names
	return nil
}

func (mt *MemoryTrace) Row(t float64, values []float64) error {
	mt.Times = append(mt.Times, t)
	row := make([]float64, len(values))
	copy(row, values)
	mt.Rows = append(mt.Rows, row)
	return nil
}

// Column returns the series of the named variable.
func (mt *MemoryTrace) Column(name string) []float64 {
	for i, n := range mt.Names {
		if n == name {
			col := make([]float64, len(mt.Rows))
			for j, row := range mt.Rows {
				col[j] = row[i]
			}
			return col
		}
	}
	return nil
}

// Tee fans a trace out to several sinks.
type Tee []interface {
	Header(names []string) error
	Row(t float64, values []float64) error
}

func (t Tee) Header(names []string) error {
	for _, s := range t {
		if err := s.Header(names); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Row(ts float64, values []float64) error {
	for _, s := range t {
		if err := s.Row(ts, values); err != nil {
			return err
		}
	}
	return nil
}
