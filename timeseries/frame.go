package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrColumnLength is returned when frame columns have different lengths.
	ErrColumnLength = errors.New("frame columns must have the same length")
	// ErrMisaligned is returned when a series and a frame do not share an index.
	ErrMisaligned = errors.New("series and frame are not aligned")
)

// Frame is a table of named regressor columns sharing one row index.
type Frame struct {
	Timestamps []time.Time
	names      []string
	columns    [][]float64
}

// NewFrame creates a frame from column names and column-major data.
func NewFrame(names []string, columns [][]float64) (*Frame, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("got %d names for %d columns", len(names), len(columns))
	}
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column name: %s", name)
		}
		seen[name] = true
		if len(columns[i]) != len(columns[0]) {
			return nil, fmt.Errorf("%w: %s has %d rows, %s has %d",
				ErrColumnLength, name, len(columns[i]), names[0], len(columns[0]))
		}
	}
	return &Frame{names: names, columns: columns}, nil
}

// NewFrameWithTimestamps creates a frame with an explicit time index.
func NewFrameWithTimestamps(timestamps []time.Time, names []string, columns [][]float64) (*Frame, error) {
	f, err := NewFrame(names, columns)
	if err != nil {
		return nil, err
	}
	if f.Cols() > 0 && len(timestamps) != f.Rows() {
		return nil, errors.New("timestamps and rows must have the same length")
	}
	f.Timestamps = timestamps
	return f, nil
}

// Rows returns the number of rows.
func (f *Frame) Rows() int {
	if f == nil || len(f.columns) == 0 {
		return 0
	}
	return len(f.columns[0])
}

// Cols returns the number of columns.
func (f *Frame) Cols() int {
	if f == nil {
		return 0
	}
	return len(f.columns)
}

// Names returns a copy of the column names.
func (f *Frame) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Column returns the values of the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	for i, n := range f.names {
		if n == name {
			return f.columns[i], true
		}
	}
	return nil, false
}

// Col returns the values of column j.
func (f *Frame) Col(j int) []float64 {
	return f.columns[j]
}

// Row returns a copy of row i.
func (f *Frame) Row(i int) []float64 {
	row := make([]float64, len(f.columns))
	for j, col := range f.columns {
		row[j] = col[i]
	}
	return row
}

// Indexed reports whether every row has a timestamp.
func (f *Frame) Indexed() bool {
	return f != nil && f.Rows() > 0 && len(f.Timestamps) == f.Rows()
}

// HasInvalid reports whether any cell is NaN or infinite.
func (f *Frame) HasInvalid() bool {
	if f == nil {
		return false
	}
	for _, col := range f.columns {
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}

// Dense returns the frame as a rows x cols gonum matrix.
func (f *Frame) Dense() *mat.Dense {
	r, c := f.Rows(), f.Cols()
	if r == 0 || c == 0 {
		return nil
	}
	m := mat.NewDense(r, c, nil)
	for j, col := range f.columns {
		m.SetCol(j, col)
	}
	return m
}

// Difference applies d first differences followed by sd seasonal differences of period m
// to every column, matching Series.Difference.
func (f *Frame) Difference(d, sd, m int) *Frame {
	if f == nil {
		return nil
	}
	cols := make([][]float64, len(f.columns))
	var timestamps []time.Time
	for j, col := range f.columns {
		s := &Series{Values: col}
		if f.Indexed() {
			s.Timestamps = f.Timestamps
		}
		diffed := s.Difference(d, sd, m)
		cols[j] = diffed.Values
		timestamps = diffed.Timestamps
	}
	names := make([]string, len(f.names))
	copy(names, f.names)
	return &Frame{Timestamps: timestamps, names: names, columns: cols}
}

// Append returns a new frame with the rows of other appended. Column names must match.
func (f *Frame) Append(other *Frame) (*Frame, error) {
	if other == nil || other.Rows() == 0 {
		return f.Slice(0, f.Rows()), nil
	}
	if len(f.names) != len(other.names) {
		return nil, fmt.Errorf("cannot append %d columns to %d", len(other.names), len(f.names))
	}
	cols := make([][]float64, len(f.columns))
	for j, name := range f.names {
		src, ok := other.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %s missing from appended frame", name)
		}
		col := make([]float64, 0, f.Rows()+other.Rows())
		col = append(col, f.columns[j]...)
		cols[j] = append(col, src...)
	}
	var timestamps []time.Time
	if f.Indexed() && other.Indexed() {
		timestamps = append(append(timestamps, f.Timestamps...), other.Timestamps...)
	}
	names := make([]string, len(f.names))
	copy(names, f.names)
	return &Frame{Timestamps: timestamps, names: names, columns: cols}, nil
}

// Slice returns rows start to end (exclusive).
func (f *Frame) Slice(start, end int) *Frame {
	if start < 0 {
		start = 0
	}
	if end > f.Rows() {
		end = f.Rows()
	}
	if start > end {
		start = end
	}
	cols := make([][]float64, len(f.columns))
	for j, col := range f.columns {
		cols[j] = make([]float64, end-start)
		copy(cols[j], col[start:end])
	}
	var timestamps []time.Time
	if f.Indexed() {
		timestamps = make([]time.Time, end-start)
		copy(timestamps, f.Timestamps[start:end])
	}
	names := make([]string, len(f.names))
	copy(names, f.names)
	return &Frame{Timestamps: timestamps, names: names, columns: cols}
}

// Select returns a frame holding only the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([][]float64, len(names))
	for j, name := range names {
		col, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown column: %s", name)
		}
		cols[j] = col
	}
	out, err := NewFrame(names, cols)
	if err != nil {
		return nil, err
	}
	out.Timestamps = f.Timestamps
	return out, nil
}

// CheckAligned verifies that frame rows line up with the series. A nil frame is aligned
// with any series. Timestamps are compared only when both sides carry a full index.
func CheckAligned(series *Series, frame *Frame) error {
	if frame == nil || frame.Cols() == 0 {
		return nil
	}
	if frame.Rows() != series.Len() {
		return fmt.Errorf("%w: series has %d rows, frame has %d", ErrMisaligned, series.Len(), frame.Rows())
	}
	if series.Indexed() && frame.Indexed() {
		for i, ts := range series.Timestamps {
			if !ts.Equal(frame.Timestamps[i]) {
				return fmt.Errorf("%w: row %d is %s in series and %s in frame",
					ErrMisaligned, i, ts.Format(time.RFC3339), frame.Timestamps[i].Format(time.RFC3339))
			}
		}
	}
	return nil
}
