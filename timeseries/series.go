package timeseries

import (
	"errors"
	"math"
	"time"
)

// Series represents a time series with optional timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a new time series from values. The series carries no time index.
func New(values []float64) *Series {
	return &Series{Values: values}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Indexed reports whether every value has a timestamp.
func (s *Series) Indexed() bool {
	return len(s.Values) > 0 && len(s.Timestamps) == len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.Values)-1)
}

// HasInvalid reports whether the series contains NaN or infinite values.
func (s *Series) HasInvalid() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// Diff calculates the first difference of the series.
func (s *Series) Diff() *Series {
	return s.lagDiff(1, "_diff")
}

// SeasonalDiff calculates the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	return s.lagDiff(m, "_seasonal_diff")
}

// Difference applies d first differences followed by sd seasonal differences of period m.
func (s *Series) Difference(d, sd, m int) *Series {
	out := s
	for i := 0; i < d; i++ {
		out = out.Diff()
	}
	for i := 0; i < sd; i++ {
		out = out.SeasonalDiff(m)
	}
	return out
}

func (s *Series) lagDiff(lag int, suffix string) *Series {
	if lag <= 0 || len(s.Values) <= lag {
		return &Series{Values: []float64{}, Name: s.Name + suffix}
	}

	result := make([]float64, len(s.Values)-lag)
	for i := lag; i < len(s.Values); i++ {
		result[i-lag] = s.Values[i] - s.Values[i-lag]
	}

	var timestamps []time.Time
	if s.Indexed() {
		timestamps = make([]time.Time, len(result))
		copy(timestamps, s.Timestamps[lag:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + suffix,
	}
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	var timestamps []time.Time
	if s.Indexed() {
		timestamps = make([]time.Time, len(values))
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	var timestamps []time.Time
	if s.Timestamps != nil {
		timestamps = make([]time.Time, len(s.Timestamps))
		copy(timestamps, s.Timestamps)
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}
