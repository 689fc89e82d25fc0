package timeseries

import (
	"math"
	"testing"
	"time"
)

func assertValues(t *testing.T, got, expected []float64) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), len(got))
	}
	for i, v := range got {
		if math.Abs(v-expected[i]) > 1e-10 {
			t.Errorf("Expected %f at index %d, got %f", expected[i], i, v)
		}
	}
}

func monthly(n int) []time.Time {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = start.AddDate(0, i, 0)
	}
	return ts
}

func TestNew(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	s := New(values)

	if s.Len() != 5 {
		t.Errorf("Expected length 5, got %d", s.Len())
	}
	if s.Indexed() {
		t.Error("Series built from values should carry no time index")
	}
	assertValues(t, s.Values, values)
}

func TestNewWithTimestamps(t *testing.T) {
	s, err := NewWithTimestamps(monthly(3), []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !s.Indexed() {
		t.Error("Expected an indexed series")
	}

	if _, err := NewWithTimestamps(monthly(2), []float64{1, 2, 3}); err == nil {
		t.Error("Expected error for mismatched lengths")
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"single", []float64{5}, 5.0},
		{"negative", []float64{-1, -2, -3}, -2.0},
		{"mixed", []float64{-1, 0, 1}, 0.0},
		{"empty", []float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(tt.values).Mean()
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("Expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestVariance(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	// Sample variance with n-1 denominator
	expected := 32.0 / 7.0
	if v := s.Variance(); math.Abs(v-expected) > 1e-10 {
		t.Errorf("Expected variance %f, got %f", expected, v)
	}
	if v := New([]float64{1}).Variance(); v != 0 {
		t.Errorf("Expected 0 for a single value, got %f", v)
	}
}

func TestHasInvalid(t *testing.T) {
	if New([]float64{1, 2, 3}).HasInvalid() {
		t.Error("Finite series reported as invalid")
	}
	if !New([]float64{1, math.NaN()}).HasInvalid() {
		t.Error("NaN not detected")
	}
	if !New([]float64{math.Inf(-1)}).HasInvalid() {
		t.Error("Inf not detected")
	}
}

func TestDiff(t *testing.T) {
	s := New([]float64{1, 3, 6, 10, 15})
	assertValues(t, s.Diff().Values, []float64{2, 3, 4, 5})
}

func TestSeasonalDiff(t *testing.T) {
	// Monthly data with yearly seasonality
	values := []float64{10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30, 32, 11, 13, 15, 17}
	s := New(values)

	// Expected: values[12] - values[0], values[13] - values[1], etc.
	assertValues(t, s.SeasonalDiff(12).Values, []float64{1, 1, 1, 1})
}

func TestDifference(t *testing.T) {
	s := New([]float64{1, 3, 6, 10, 15, 21})

	assertValues(t, s.Difference(0, 0, 0).Values, s.Values)
	assertValues(t, s.Difference(2, 0, 0).Values, []float64{1, 1, 1, 1})

	// (1-B)(1-B^2) removes 3 observations
	combined := s.Difference(1, 1, 2)
	assertValues(t, combined.Values, []float64{2, 2, 2})

	if short := New([]float64{1, 2}).Difference(0, 1, 4); short.Len() != 0 {
		t.Errorf("Expected empty series when the period exceeds the length, got %d", short.Len())
	}
}

func TestDifferenceKeepsIndex(t *testing.T) {
	ts := monthly(5)
	s, _ := NewWithTimestamps(ts, []float64{1, 2, 4, 8, 16})

	diff := s.Difference(1, 0, 0)
	if !diff.Indexed() {
		t.Fatal("Expected the differenced series to stay indexed")
	}
	if !diff.Timestamps[0].Equal(ts[1]) {
		t.Errorf("Expected first timestamp %v, got %v", ts[1], diff.Timestamps[0])
	}
}

func TestSlice(t *testing.T) {
	s, _ := NewWithTimestamps(monthly(5), []float64{1, 2, 3, 4, 5})

	sliced := s.Slice(1, 4)
	assertValues(t, sliced.Values, []float64{2, 3, 4})
	if !sliced.Indexed() || !sliced.Timestamps[0].Equal(s.Timestamps[1]) {
		t.Error("Slice should carry the matching timestamps")
	}

	if empty := s.Slice(4, 2); empty.Len() != 0 {
		t.Errorf("Expected empty slice, got %d values", empty.Len())
	}
	if clipped := s.Slice(-3, 99); clipped.Len() != 5 {
		t.Errorf("Expected bounds to be clipped, got %d values", clipped.Len())
	}
}

func TestCopy(t *testing.T) {
	s, _ := NewWithTimestamps(monthly(3), []float64{1, 2, 3})
	s.Name = "y"
	c := s.Copy()

	c.Values[0] = 100
	if s.Values[0] == 100 {
		t.Error("Copy should not share values with its source")
	}
	if c.Name != "y" || len(c.Timestamps) != 3 {
		t.Error("Copy should keep name and timestamps")
	}
}
