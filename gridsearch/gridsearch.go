package gridsearch

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/gosarimax/sarimax"
	"github.com/sartorproj/gosarimax/timeseries"
)

// ErrNoCandidateFitted is returned when every candidate failed to fit.
var ErrNoCandidateFitted = errors.New("no candidate could be fitted")

// Score is the outcome of one successful fit.
type Score struct {
	Candidate
	AIC       float64
	Criterion float64 // Value of the configured criterion
}

// Failure records a candidate whose fit returned an error.
type Failure struct {
	Candidate
	Kind string // One of the sarimax.Kind constants
	Err  error
}

// Stats summarizes the AIC values of all successful fits.
type Stats struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// Result represents the outcome of a search.
type Result struct {
	// Model is the best candidate re-fitted on the data.
	Model *sarimax.Model

	Order sarimax.Order
	// SeasonalOrder is nil when the search did not involve a seasonal order.
	SeasonalOrder *sarimax.SeasonalOrder
	AIC           float64

	Criterion string  // Criterion used for selection
	Score     float64 // Best value of Criterion

	Stats     Stats
	Scores    []Score   // Successful fits in evaluation order
	Failures  []Failure // Failed fits in evaluation order
	Evaluated int       // Fit attempts, successful or not
}

// Predict generates forecasts using the selected model.
func (r *Result) Predict(steps int, futureExog *timeseries.Frame) ([]float64, error) {
	if r.Model == nil {
		return nil, sarimax.ErrNotFitted
	}
	return r.Model.Predict(steps, futureExog)
}

// search holds the state of one Search call.
type search struct {
	cfg   *Config
	endog *timeseries.Series
	exog  *timeseries.Frame
	log   zerolog.Logger

	// conditioning is shared by every fit of the search.
	conditioning int

	scores    []Score
	failures  []Failure
	evaluated int
	best      int
}

// Search fits every candidate described by cfg against endog and exog (nil for no
// regressors) and returns the candidate with the lowest criterion, re-fitted.
//
// Invalid candidate lists return ErrInvalidCandidates before any fit. Failed fits are
// recorded in Result.Failures and skipped. When no candidate fits, Search returns
// ErrNoCandidateFitted.
func Search(endog *timeseries.Series, exog *timeseries.Frame, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	start := time.Now()

	candidates := Candidates(cfg)
	s := &search{
		cfg:          cfg,
		endog:        endog,
		exog:         exog,
		log:          cfg.Logger.With().Str("component", "gridsearch").Logger(),
		conditioning: conditioning(candidates),
		best:         -1,
	}

	switch cfg.Strategy {
	case StrategyStepwise:
		s.stepwise()
	default:
		s.log.Debug().
			Int("candidates", len(candidates)).
			Int("conditioning", s.conditioning).
			Msg("starting grid search")
		for _, c := range candidates {
			s.evaluate(c)
		}
	}

	if len(s.scores) == 0 {
		s.log.Error().Int("evaluated", s.evaluated).Msg("no candidate could be fitted")
		return nil, fmt.Errorf("%w: all %d candidates failed", ErrNoCandidateFitted, s.evaluated)
	}

	summary := s.stats()
	best := s.scores[s.best]
	s.printSummary(best, summary)

	model, err := s.fit(best.Candidate)
	if err != nil {
		return nil, fmt.Errorf("re-fit best candidate %s: %w", best.Candidate, err)
	}

	result := &Result{
		Model:     model,
		Order:     best.Order,
		AIC:       best.AIC,
		Criterion: cfg.Criterion,
		Score:     best.Criterion,
		Stats:     summary,
		Scores:    s.scores,
		Failures:  s.failures,
		Evaluated: s.evaluated,
	}
	if best.Seasonal {
		so := best.SeasonalOrder
		result.SeasonalOrder = &so
	}

	s.log.Info().
		Str("order", best.Order.String()).
		Float64("aic", best.AIC).
		Int("evaluated", s.evaluated).
		Int("failed", len(s.failures)).
		Dur("duration", time.Since(start)).
		Msg("search complete")

	return result, nil
}

// evaluate fits one candidate and records the outcome. It returns the criterion value,
// or +Inf when the fit failed.
func (s *search) evaluate(c Candidate) float64 {
	s.evaluated++

	model, err := s.fit(c)
	var crit float64
	if err == nil {
		crit = s.cfg.criterionValue(model)
		if !isFinite(model.AIC) || !isFinite(crit) {
			err = fmt.Errorf("%w: non-finite information criterion", sarimax.ErrConvergence)
		}
	}

	if err != nil {
		kind := sarimax.ErrorKind(err)
		s.failures = append(s.failures, Failure{Candidate: c, Kind: kind, Err: err})
		s.log.Warn().
			Err(err).
			Str("candidate", c.String()).
			Str("kind", kind).
			Msg("candidate failed to fit")
		return math.Inf(1)
	}

	s.scores = append(s.scores, Score{Candidate: c, AIC: model.AIC, Criterion: crit})
	if s.cfg.Verbose {
		fmt.Fprintf(s.cfg.Output, "%s AIC=%v\n", c, model.AIC)
	}
	if !model.Converged() {
		s.log.Debug().Str("candidate", c.String()).Msg("optimizer stopped on its evaluation limit")
	}

	if s.best < 0 || crit < s.scores[s.best].Criterion {
		s.best = len(s.scores) - 1
	}
	return crit
}

// fit runs the fit routine for c. A nil model without an error is reported as a failure.
func (s *search) fit(c Candidate) (*sarimax.Model, error) {
	model, err := s.cfg.Fitter.Fit(s.endog, s.exog, c.Order, c.SeasonalOrder, s.conditioning)
	if err == nil && model == nil {
		err = errors.New("fit routine returned no model")
	}
	return model, err
}

// stats computes mean, min and max over the recorded AIC values.
func (s *search) stats() Stats {
	aics := make([]float64, len(s.scores))
	for i, sc := range s.scores {
		aics[i] = sc.AIC
	}
	return Stats{
		Count: len(aics),
		Mean:  stat.Mean(aics, nil),
		Min:   floats.Min(aics),
		Max:   floats.Max(aics),
	}
}

func (s *search) printSummary(best Score, st Stats) {
	order := "Order=" + best.Order.String()
	if best.Seasonal {
		order += ", Seasonal Order=" + best.SeasonalOrder.String()
	}
	fmt.Fprintf(s.cfg.Output, "Best Model:%s AIC=%v; Avg AIC=%v, Min AIC=%v, Max AIC=%v\n",
		order, best.AIC, st.Mean, st.Min, st.Max)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
