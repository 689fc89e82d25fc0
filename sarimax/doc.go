// Package sarimax implements SARIMAX models: linear regression on exogenous regressors
// with Seasonal ARIMA errors.
//
// A SARIMAX(p,d,q)(P,D,Q)[s] model differences the target and the regressors by
// (1-B)^d (1-B^s)^D, regresses the result on the regressors and models the regression
// errors as a seasonal ARMA process.
//
// # Basic Usage
//
//	model := sarimax.New(sarimax.Order{P: 1, D: 0, Q: 1}, sarimax.SeasonalOrder{})
//	if err := model.Fit(series, exog); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("AIC: %.2f, AICc: %.2f, BIC: %.2f\n", model.AIC, model.AICc, model.BIC)
//
// # Estimation
//
// Parameters are estimated by conditional sum of squares. Regression coefficients start
// from ordinary least squares, AR coefficients from the Yule-Walker equations, and all
// parameters are then refined jointly with gonum's Nelder-Mead optimizer. Each AR and MA
// coefficient is kept inside (-1, 1) through a tanh mapping.
//
// The sum of squares runs over the observations after Model.Conditioning leading values
// of the target (at least the differencing and AR lags). Criteria of models fitted with
// the same Conditioning on the same data are comparable:
//
//	m := sarimax.New(order, seasonal)
//	m.Conditioning = 14 // largest ConditioningLags among the compared orders
//
// # Errors
//
// Fit returns errors wrapping one of ErrInvalidOrder, ErrDataShape, ErrInsufficientData
// or ErrConvergence; ErrorKind maps an error to a short label for logs.
//
// # Forecasting
//
// Forecasts need one row of future regressors per step:
//
//	forecasts, lower, upper, err := model.PredictWithInterval(12, futureExog, 0.95)
package sarimax
