package gridsearch

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/gosarimax/sarimax"
	"github.com/sartorproj/gosarimax/timeseries"
)

// fakeFitter scores candidates with a fixed function and records every call.
type fakeFitter struct {
	score        func(c Candidate) (float64, error)
	calls        []Candidate
	conditioning []int
}

func (f *fakeFitter) Fit(_ *timeseries.Series, _ *timeseries.Frame, order sarimax.Order, seasonal sarimax.SeasonalOrder, conditioning int) (*sarimax.Model, error) {
	c := Candidate{Order: order, SeasonalOrder: seasonal, Seasonal: !seasonal.IsZero() || seasonal.S != 0}
	f.calls = append(f.calls, c)
	f.conditioning = append(f.conditioning, conditioning)
	aic, err := f.score(c)
	if err != nil {
		return nil, err
	}
	return &sarimax.Model{
		Order:         order,
		SeasonalOrder: seasonal,
		AIC:           aic,
		AICc:          aic + 1,
		BIC:           aic + float64(order.P+order.Q)*10,
	}, nil
}

// bowl has its minimum at p=2, q=1 and grows away from it.
func bowl(c Candidate) (float64, error) {
	dp := float64(c.Order.P - 2)
	dq := float64(c.Order.Q - 1)
	return 100 + dp*dp + dq*dq + float64(c.Order.D) + float64(c.SeasonalOrder.P+c.SeasonalOrder.Q), nil
}

func quietConfig(f Fitter) *Config {
	cfg := DefaultConfig()
	cfg.Verbose = false
	cfg.Output = &bytes.Buffer{}
	cfg.Fitter = f
	return cfg
}

func TestCandidatesOrder(t *testing.T) {
	cfg := &Config{P: []int{0, 1}, D: []int{0}, Q: []int{0, 1}}

	got := Candidates(cfg)
	want := []sarimax.Order{{P: 0, D: 0, Q: 0}, {P: 0, D: 0, Q: 1}, {P: 1, D: 0, Q: 0}, {P: 1, D: 0, Q: 1}}
	require.Len(t, got, len(want))
	for i, c := range got {
		assert.Equal(t, want[i], c.Order)
		assert.False(t, c.Seasonal)
	}
}

func TestCandidatesSeasonal(t *testing.T) {
	cfg := &Config{
		P: []int{0, 1}, D: []int{1}, Q: []int{0},
		SeasonalSearch: true,
		SP:             []int{0, 1}, SD: []int{1}, SQ: []int{0, 1}, S: []int{12},
	}

	got := Candidates(cfg)
	require.Len(t, got, 2*4)
	assert.Equal(t, sarimax.SeasonalOrder{P: 0, D: 1, Q: 0, S: 12}, got[0].SeasonalOrder)
	assert.Equal(t, sarimax.SeasonalOrder{P: 0, D: 1, Q: 1, S: 12}, got[1].SeasonalOrder)
	assert.Equal(t, sarimax.SeasonalOrder{P: 1, D: 1, Q: 0, S: 12}, got[2].SeasonalOrder)
	assert.Equal(t, sarimax.Order{P: 1, D: 1}, got[4].Order)
	assert.Equal(t, "Order=(0, 1, 0), Seasonal_Order=(0, 1, 0, 12)", got[0].String())
}

func TestCandidatesFixedSeasonalOrder(t *testing.T) {
	so := sarimax.SeasonalOrder{P: 1, D: 1, Q: 1, S: 4}
	cfg := &Config{P: []int{0, 1}, D: []int{0}, Q: []int{1}, SeasonalOrder: &so}

	for _, c := range Candidates(cfg) {
		assert.True(t, c.Seasonal)
		assert.Equal(t, so, c.SeasonalOrder)
	}
}

func TestSearchEvaluatesEveryCandidate(t *testing.T) {
	f := &fakeFitter{score: bowl}
	cfg := quietConfig(f)

	result, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)

	assert.Equal(t, 3*2*3, result.Evaluated)
	assert.Len(t, result.Scores, 18)
	// One extra call for the re-fit of the winner.
	assert.Len(t, f.calls, 19)
	assert.Equal(t, sarimax.Order{P: 2, D: 0, Q: 1}, result.Order)
	assert.Nil(t, result.SeasonalOrder)
	assert.Equal(t, result.Order, f.calls[len(f.calls)-1].Order)
}

func TestSearchSeasonalCount(t *testing.T) {
	f := &fakeFitter{score: bowl}
	cfg := quietConfig(f)
	cfg.P, cfg.D, cfg.Q = []int{0, 1}, []int{1}, []int{0, 1}
	cfg.SeasonalSearch = true
	cfg.SP, cfg.SD, cfg.SQ, cfg.S = []int{0, 1}, []int{0, 1}, []int{1}, []int{12}

	result, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)

	assert.Equal(t, 4*4, result.Evaluated)
	require.NotNil(t, result.SeasonalOrder)
	assert.Equal(t, sarimax.SeasonalOrder{P: 0, D: 0, Q: 1, S: 12}, *result.SeasonalOrder)
	assert.Equal(t, sarimax.Order{P: 1, D: 1, Q: 1}, result.Order)
}

func TestSearchBestAndStats(t *testing.T) {
	f := &fakeFitter{score: bowl}
	result, err := Search(timeseries.New(nil), nil, quietConfig(f))
	require.NoError(t, err)

	for _, s := range result.Scores {
		assert.LessOrEqual(t, result.AIC, s.AIC)
	}
	assert.Equal(t, result.AIC, result.Stats.Min)
	assert.LessOrEqual(t, result.Stats.Min, result.Stats.Mean)
	assert.LessOrEqual(t, result.Stats.Mean, result.Stats.Max)
	assert.Equal(t, 18, result.Stats.Count)
}

func TestSearchSingleCandidate(t *testing.T) {
	f := &fakeFitter{score: func(Candidate) (float64, error) { return 42, nil }}
	cfg := quietConfig(f)
	cfg.P, cfg.D, cfg.Q = []int{1}, []int{0}, []int{1}

	result, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Evaluated)
	assert.Equal(t, 42.0, result.Stats.Mean)
	assert.Equal(t, 42.0, result.Stats.Min)
	assert.Equal(t, 42.0, result.Stats.Max)
}

func TestSearchSkipsFailures(t *testing.T) {
	f := &fakeFitter{score: func(c Candidate) (float64, error) {
		switch c.Order.P {
		case 0:
			return 0, fmt.Errorf("%w: need more data", sarimax.ErrInsufficientData)
		case 2:
			return 0, errors.New("boom")
		}
		return 50 + float64(c.Order.Q), nil
	}}

	result, err := Search(timeseries.New(nil), nil, quietConfig(f))
	require.NoError(t, err)

	assert.Equal(t, 18, result.Evaluated)
	assert.Len(t, result.Scores, 6)
	require.Len(t, result.Failures, 12)
	assert.Equal(t, sarimax.KindInsufficientData, result.Failures[0].Kind)
	assert.Equal(t, sarimax.KindOther, result.Failures[len(result.Failures)-1].Kind)
	assert.Equal(t, 6, result.Stats.Count)
	assert.Equal(t, 50.0, result.Stats.Min)
	assert.Equal(t, 52.0, result.Stats.Max)
	assert.Equal(t, 1, result.Order.P)
}

func TestSearchNonFiniteCriterionIsFailure(t *testing.T) {
	f := &fakeFitter{score: func(c Candidate) (float64, error) {
		if c.Order.Q == 0 {
			return math.NaN(), nil
		}
		return 10, nil
	}}

	result, err := Search(timeseries.New(nil), nil, quietConfig(f))
	require.NoError(t, err)

	assert.Len(t, result.Failures, 6)
	for _, fl := range result.Failures {
		assert.Equal(t, sarimax.KindConvergence, fl.Kind)
		assert.ErrorIs(t, fl.Err, sarimax.ErrConvergence)
	}
	assert.False(t, math.IsNaN(result.Stats.Mean))
}

func TestSearchTieKeepsFirst(t *testing.T) {
	f := &fakeFitter{score: func(Candidate) (float64, error) { return 7, nil }}

	result, err := Search(timeseries.New(nil), nil, quietConfig(f))
	require.NoError(t, err)
	assert.Equal(t, sarimax.Order{}, result.Order)
}

func TestSearchInvalidCandidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty p", func(c *Config) { c.P = nil }},
		{"negative d", func(c *Config) { c.D = []int{0, -1} }},
		{"empty seasonal q", func(c *Config) {
			c.SeasonalSearch = true
			c.SP, c.SD, c.S = []int{0}, []int{1}, []int{12}
		}},
		{"period one", func(c *Config) {
			c.SeasonalSearch = true
			c.SP, c.SD, c.SQ, c.S = []int{1}, []int{0}, []int{0}, []int{1}
		}},
		{"bad fixed seasonal", func(c *Config) { c.SeasonalOrder = &sarimax.SeasonalOrder{P: 1} }},
		{"fixed seasonal with seasonal search", func(c *Config) {
			c.SeasonalSearch = true
			c.SP, c.SD, c.SQ, c.S = []int{0, 1}, []int{0}, []int{0}, []int{12}
			c.SeasonalOrder = &sarimax.SeasonalOrder{P: 1, S: 12}
		}},
		{"unknown criterion", func(c *Config) { c.Criterion = "hqic" }},
		{"unknown strategy", func(c *Config) { c.Strategy = "random" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFitter{score: bowl}
			cfg := quietConfig(f)
			tt.mutate(cfg)

			_, err := Search(timeseries.New(nil), nil, cfg)
			require.ErrorIs(t, err, ErrInvalidCandidates)
			assert.Empty(t, f.calls)
		})
	}
}

func TestSearchNoCandidateFitted(t *testing.T) {
	f := &fakeFitter{score: func(Candidate) (float64, error) {
		return 0, fmt.Errorf("%w: singular", sarimax.ErrConvergence)
	}}

	_, err := Search(timeseries.New(nil), nil, quietConfig(f))
	require.ErrorIs(t, err, ErrNoCandidateFitted)
	assert.Len(t, f.calls, 18)
}

// nilFitter returns no model and no error.
type nilFitter struct{}

func (nilFitter) Fit(*timeseries.Series, *timeseries.Frame, sarimax.Order, sarimax.SeasonalOrder, int) (*sarimax.Model, error) {
	return nil, nil
}

func TestSearchNilModelIsFailure(t *testing.T) {
	cfg := quietConfig(nilFitter{})
	cfg.P, cfg.D, cfg.Q = []int{0, 1}, []int{0}, []int{0}

	_, err := Search(timeseries.New(nil), nil, cfg)
	require.ErrorIs(t, err, ErrNoCandidateFitted)
}

func TestSearchNilModelSkipped(t *testing.T) {
	f := &fakeFitter{score: bowl}
	cfg := quietConfig(f)
	cfg.P, cfg.D, cfg.Q = []int{0, 1, 2}, []int{0}, []int{1}
	cfg.Fitter = fitterFunc(func(endog *timeseries.Series, exog *timeseries.Frame, o sarimax.Order, so sarimax.SeasonalOrder, n int) (*sarimax.Model, error) {
		if o.P == 1 {
			return nil, nil
		}
		return f.Fit(endog, exog, o, so, n)
	})

	result, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, sarimax.Order{P: 2, Q: 1}, result.Order)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, sarimax.KindOther, result.Failures[0].Kind)
	assert.Equal(t, sarimax.Order{P: 1, Q: 1}, result.Failures[0].Order)
}

type fitterFunc func(*timeseries.Series, *timeseries.Frame, sarimax.Order, sarimax.SeasonalOrder, int) (*sarimax.Model, error)

func (f fitterFunc) Fit(endog *timeseries.Series, exog *timeseries.Frame, o sarimax.Order, so sarimax.SeasonalOrder, n int) (*sarimax.Model, error) {
	return f(endog, exog, o, so, n)
}

func TestSearchSharesConditioning(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   int
	}{
		{"non-seasonal", func(c *Config) {
			c.P, c.D, c.Q = []int{0, 3, 1}, []int{0, 1}, []int{0, 2}
		}, 4},
		{"seasonal search", func(c *Config) {
			c.P, c.D, c.Q = []int{0, 2}, []int{1}, []int{0}
			c.SeasonalSearch = true
			c.SP, c.SD, c.SQ, c.S = []int{0, 1}, []int{0, 1}, []int{0, 1}, []int{4, 12}
		}, 2 + 1 + 12 + 12},
		{"fixed seasonal", func(c *Config) {
			c.P, c.D, c.Q = []int{1}, []int{0}, []int{0, 1}
			c.SeasonalOrder = &sarimax.SeasonalOrder{P: 2, D: 1, S: 4}
		}, 1 + 8 + 4},
		{"stepwise", func(c *Config) {
			c.P, c.D, c.Q = []int{0, 1, 2, 3}, []int{0}, []int{0, 1}
			c.Strategy = StrategyStepwise
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFitter{score: bowl}
			cfg := quietConfig(f)
			tt.mutate(cfg)

			_, err := Search(timeseries.New(nil), nil, cfg)
			require.NoError(t, err)
			require.NotEmpty(t, f.conditioning)
			for _, n := range f.conditioning {
				assert.Equal(t, tt.want, n)
			}
		})
	}
}

func TestSearchRefitFailure(t *testing.T) {
	calls := 0
	f := &fakeFitter{score: func(Candidate) (float64, error) {
		calls++
		if calls > 2 {
			return 0, errors.New("refit broke")
		}
		return float64(calls), nil
	}}
	cfg := quietConfig(f)
	cfg.P, cfg.D, cfg.Q = []int{0, 1}, []int{0}, []int{0}

	_, err := Search(timeseries.New(nil), nil, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "re-fit best candidate Order=(0, 0, 0)")
}

func TestSearchCriterion(t *testing.T) {
	// BIC adds 10 per ARMA term in the fake, so the smallest model wins.
	f := &fakeFitter{score: bowl}
	cfg := quietConfig(f)
	cfg.Criterion = CriterionBIC

	result, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, sarimax.Order{}, result.Order)
	assert.Equal(t, CriterionBIC, result.Criterion)
	assert.Equal(t, 105.0, result.Score)
}

func TestSearchOutput(t *testing.T) {
	f := &fakeFitter{score: func(c Candidate) (float64, error) { return 10 + 10*float64(c.Order.Q), nil }}
	var out bytes.Buffer
	cfg := &Config{P: []int{0}, D: []int{0}, Q: []int{0, 1}, Verbose: true, Output: &out, Fitter: f}

	_, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Order=(0, 0, 0) AIC=10", lines[0])
	assert.Equal(t, "Order=(0, 0, 1) AIC=20", lines[1])
	assert.Equal(t, "Best Model:Order=(0, 0, 0) AIC=10; Avg AIC=15, Min AIC=10, Max AIC=20", lines[2])
}

func TestSearchOutputSeasonal(t *testing.T) {
	f := &fakeFitter{score: func(Candidate) (float64, error) { return 3, nil }}
	var out bytes.Buffer
	so := sarimax.SeasonalOrder{P: 1, D: 1, Q: 0, S: 12}
	cfg := &Config{P: []int{1}, D: []int{1}, Q: []int{0}, SeasonalOrder: &so, Output: &out, Fitter: f}

	_, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)
	assert.Equal(t,
		"Best Model:Order=(1, 1, 0), Seasonal Order=(1, 1, 0, 12) AIC=3; Avg AIC=3, Min AIC=3, Max AIC=3\n",
		out.String())
}

func TestSearchLogsFailures(t *testing.T) {
	f := &fakeFitter{score: func(c Candidate) (float64, error) {
		if c.Order.P == 1 {
			return 0, fmt.Errorf("%w: p=1", sarimax.ErrInvalidOrder)
		}
		return 1, nil
	}}
	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.WarnLevel)
	cfg := quietConfig(f)
	cfg.Logger = &logger

	_, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), `"kind":"invalid_order"`)
	assert.Contains(t, logs.String(), `"candidate":"Order=(1, 0, 0)"`)
	assert.Contains(t, logs.String(), `"component":"gridsearch"`)
}

func TestStepwiseVisitsEachPointOnce(t *testing.T) {
	f := &fakeFitter{score: bowl}
	cfg := quietConfig(f)
	cfg.Strategy = StrategyStepwise
	cfg.P = []int{3, 0, 1, 2, 1}
	cfg.Q = []int{0, 1, 2, 3}

	result, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)

	assert.Equal(t, sarimax.Order{P: 2, D: 0, Q: 1}, result.Order)
	assert.Less(t, result.Evaluated, 4*2*4)

	seen := make(map[string]bool)
	for _, c := range f.calls[:len(f.calls)-1] {
		key := c.String()
		assert.False(t, seen[key], "candidate %s fitted twice", key)
		seen[key] = true
	}
}

func TestStepwiseSeasonal(t *testing.T) {
	f := &fakeFitter{score: bowl}
	cfg := quietConfig(f)
	cfg.Strategy = StrategyStepwise
	cfg.SeasonalSearch = true
	cfg.SP, cfg.SD, cfg.SQ, cfg.S = []int{0, 1}, []int{0}, []int{0, 1}, []int{4}

	result, err := Search(timeseries.New(nil), nil, cfg)
	require.NoError(t, err)

	require.NotNil(t, result.SeasonalOrder)
	assert.Equal(t, sarimax.SeasonalOrder{S: 4}, *result.SeasonalOrder)
	assert.Equal(t, sarimax.Order{P: 2, Q: 1}, result.Order)
}

func TestSearchWithSARIMAX(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 300)
	prev := 0.0
	for i := range values {
		prev = 0.7*prev + rng.NormFloat64()
		values[i] = 10 + prev
	}
	series := timeseries.New(values)

	cfg := DefaultConfig()
	cfg.Verbose = false
	cfg.P, cfg.D, cfg.Q = []int{0, 1}, []int{0}, []int{0, 1}

	result, err := Search(series, nil, cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Evaluated)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 1, result.Order.P)
	require.True(t, result.Model.Fitted())
	assert.InDelta(t, result.AIC, result.Model.AIC, 1e-9)

	forecasts, err := result.Predict(5, nil)
	require.NoError(t, err)
	assert.Len(t, forecasts, 5)
}

// whiteNoise returns deterministic N(0, 1) draws (xorshift64 with Box-Muller).
func whiteNoise(n int, seed uint64) []float64 {
	state := seed
	next := func() float64 {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return (float64(state>>11) + 0.5) / (1 << 53)
	}
	values := make([]float64, n)
	for i := range values {
		u1, u2 := next(), next()
		values[i] = math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	}
	return values
}

func TestSearchWithSARIMAXWhiteNoise(t *testing.T) {
	series := timeseries.New(whiteNoise(200, 26))

	cfg := DefaultConfig()
	cfg.Verbose = false
	cfg.P, cfg.D, cfg.Q = []int{0, 1, 2, 3}, []int{0}, []int{0}
	cfg.SeasonalSearch = true
	cfg.SP, cfg.SD, cfg.SQ, cfg.S = []int{0, 1}, []int{0}, []int{0}, []int{12}

	result, err := Search(series, nil, cfg)
	require.NoError(t, err)

	for _, sc := range result.Scores {
		t.Logf("%s AIC=%f", sc.Candidate, sc.AIC)
	}
	assert.Equal(t, 8, result.Evaluated)
	assert.Equal(t, sarimax.Order{}, result.Order)
	require.NotNil(t, result.SeasonalOrder)
	assert.Equal(t, 0, result.SeasonalOrder.P)
	assert.Equal(t, 200-15, result.Model.NEff)
}
