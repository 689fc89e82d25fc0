// Package gosarimax selects SARIMAX models for a time series by searching candidate
// orders and keeping the one with the lowest information criterion.
//
// # Features
//
//   - Regression with seasonal ARIMA errors, estimated by conditional sum of squares
//   - Exhaustive grid search and greedy stepwise search over (p, d, q) and (P, D, Q, s)
//   - AIC, AICc and BIC selection with per-candidate failure reporting
//   - Point forecasts and prediction intervals, with future regressor values
//   - CSV and gzipped CSV loading of a target column and its regressors
//   - A command line tool driven by a YAML run configuration
//
// # Quick Start
//
// Search non-seasonal orders for a series:
//
//	series := timeseries.New(values)
//	cfg := gridsearch.DefaultConfig()
//	result, err := gridsearch.Search(series, nil, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	forecasts, _ := result.Predict(12, nil)
//
// Fit a single model with regressors:
//
//	model := sarimax.New(sarimax.Order{P: 1, D: 1, Q: 1}, sarimax.SeasonalOrder{P: 0, D: 1, Q: 1, S: 12})
//	if err := model.Fit(series, exog); err != nil {
//	    log.Fatal(err)
//	}
//	forecasts, lower, upper, _ := model.PredictWithInterval(12, futureExog, 0.95)
//
// # Packages
//
//   - gridsearch: candidate enumeration, search strategies and result statistics
//   - sarimax: the SARIMAX model, its estimator and forecasts
//   - timeseries: Series and Frame types and CSV loading
//   - stats: autocorrelation, residual diagnostics and information criteria
//   - config: YAML run configuration for cmd/sarimaxsearch
//   - logging: zerolog logger construction
package gosarimax
