package gridsearch

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/sartorproj/gosarimax/sarimax"
	"github.com/sartorproj/gosarimax/timeseries"
)

// Information criteria accepted by Config.Criterion.
const (
	CriterionAIC  = "aic"
	CriterionAICc = "aicc"
	CriterionBIC  = "bic"
)

// Search strategies accepted by Config.Strategy.
const (
	StrategyGrid     = "grid"
	StrategyStepwise = "stepwise"
)

// ErrInvalidCandidates is returned when the candidate lists fail validation. No model is
// fitted in that case.
var ErrInvalidCandidates = errors.New("invalid candidate lists")

// Fitter fits one candidate. sarimax.Fitter is the default implementation.
//
// conditioning is the number of leading observations of endog the likelihood must be
// conditioned on. Search passes the same value for every candidate so the criteria
// compare fits over the same observations.
type Fitter interface {
	Fit(endog *timeseries.Series, exog *timeseries.Frame, order sarimax.Order, seasonal sarimax.SeasonalOrder, conditioning int) (*sarimax.Model, error)
}

// Config holds the candidate lists and options for a search.
type Config struct {
	P []int // AR orders to search
	D []int // Differencing orders to search
	Q []int // MA orders to search

	// SeasonalSearch enables searching SP, SD, SQ and S.
	SeasonalSearch bool
	SP             []int // Seasonal AR orders
	SD             []int // Seasonal differencing orders
	SQ             []int // Seasonal MA orders
	S              []int // Seasonal periods

	// SeasonalOrder is applied to every candidate when SeasonalSearch is false.
	// Nil fits non-seasonal models. Setting it together with SeasonalSearch is invalid.
	SeasonalOrder *sarimax.SeasonalOrder

	Verbose   bool      // Print one line per fitted candidate
	Output    io.Writer // Progress and summary output (default: os.Stdout)
	Criterion string    // "aic" (default), "aicc" or "bic"
	Strategy  string    // "grid" (default) or "stepwise"

	Fitter Fitter          // Default: sarimax.Fitter{}
	Logger *zerolog.Logger // Default: disabled
}

// DefaultConfig returns a non-seasonal search over p, q in 0..2 with d in 0..1.
func DefaultConfig() *Config {
	return &Config{
		P:         []int{0, 1, 2},
		D:         []int{0, 1},
		Q:         []int{0, 1, 2},
		Verbose:   true,
		Criterion: CriterionAIC,
		Strategy:  StrategyGrid,
	}
}

// Validate checks the candidate lists and options. Every failure wraps
// ErrInvalidCandidates.
func (c *Config) Validate() error {
	lists := []struct {
		name   string
		values []int
	}{
		{"p", c.P}, {"d", c.D}, {"q", c.Q},
	}
	if c.SeasonalSearch {
		lists = append(lists, []struct {
			name   string
			values []int
		}{
			{"seasonal p", c.SP}, {"seasonal d", c.SD}, {"seasonal q", c.SQ}, {"seasonal period", c.S},
		}...)
	}

	for _, l := range lists {
		if len(l.values) == 0 {
			return fmt.Errorf("%w: %s values must not be empty", ErrInvalidCandidates, l.name)
		}
		for _, v := range l.values {
			if v < 0 {
				return fmt.Errorf("%w: %s values must be non-negative integers, got %d", ErrInvalidCandidates, l.name, v)
			}
		}
	}

	if c.SeasonalSearch && c.SeasonalOrder != nil {
		return fmt.Errorf("%w: fixed seasonal order cannot be combined with a seasonal search", ErrInvalidCandidates)
	}

	if c.SeasonalSearch {
		seasonalTerms := anyPositive(c.SP) || anyPositive(c.SD) || anyPositive(c.SQ)
		for _, s := range c.S {
			if s == 1 || (s == 0 && seasonalTerms) {
				return fmt.Errorf("%w: seasonal period %d must be at least 2", ErrInvalidCandidates, s)
			}
		}
	} else if c.SeasonalOrder != nil {
		if err := c.SeasonalOrder.Validate(); err != nil {
			return fmt.Errorf("%w: fixed seasonal order: %w", ErrInvalidCandidates, err)
		}
	}

	switch c.Criterion {
	case "", CriterionAIC, CriterionAICc, CriterionBIC:
	default:
		return fmt.Errorf("%w: unknown criterion %q", ErrInvalidCandidates, c.Criterion)
	}

	switch c.Strategy {
	case "", StrategyGrid, StrategyStepwise:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidCandidates, c.Strategy)
	}

	return nil
}

// withDefaults returns a copy of c with unset options filled in.
func (c *Config) withDefaults() *Config {
	out := *c
	if out.Output == nil {
		out.Output = os.Stdout
	}
	if out.Criterion == "" {
		out.Criterion = CriterionAIC
	}
	if out.Strategy == "" {
		out.Strategy = StrategyGrid
	}
	if out.Fitter == nil {
		out.Fitter = sarimax.Fitter{}
	}
	if out.Logger == nil {
		nop := zerolog.Nop()
		out.Logger = &nop
	}
	return &out
}

// criterionValue returns the configured criterion of a fitted model.
func (c *Config) criterionValue(m *sarimax.Model) float64 {
	switch c.Criterion {
	case CriterionAICc:
		return m.AICc
	case CriterionBIC:
		return m.BIC
	default:
		return m.AIC
	}
}

func anyPositive(values []int) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}
