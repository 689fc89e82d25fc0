package sarimax

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/gosarimax/timeseries"
)

var errSteps = errors.New("steps must be at least 1")

// Predict generates forecasts for the specified number of steps ahead. futureExog must
// hold one row per step for every regressor the model was fitted with, and may be nil
// for a model without regressors.
func (m *Model) Predict(steps int, futureExog *timeseries.Frame) ([]float64, error) {
	forecasts, _, _, err := m.PredictWithInterval(steps, futureExog, 0.95)
	return forecasts, err
}

// PredictWithInterval generates forecasts with prediction intervals at the given
// confidence level. Invalid confidence levels fall back to 0.95.
func (m *Model) PredictWithInterval(steps int, futureExog *timeseries.Frame, confidence float64) (forecasts, lower, upper []float64, err error) {
	if !m.fitted {
		return nil, nil, nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, nil, nil, errSteps
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}

	futureZ, err := m.futureDesign(steps, futureExog)
	if err != nil {
		return nil, nil, nil, err
	}

	o, so := m.Order, m.SeasonalOrder
	ar := arPolynomial(m.ARCoeffs, m.SARCoeffs, so.S)
	ma := maPolynomial(m.MACoeffs, m.SMACoeffs, so.S)

	// Regression errors and innovations, extended with zero future innovations.
	n := len(m.regResid)
	u := make([]float64, n+steps)
	copy(u, m.regResid)
	e := make([]float64, n+steps)
	copy(e, m.residuals)

	beta := m.beta()
	diffForecast := make([]float64, steps)
	for h := 0; h < steps; h++ {
		t := n + h
		pred := 0.0
		for i, a := range ar {
			if t-i-1 >= 0 {
				pred += a * u[t-i-1]
			}
		}
		for j, b := range ma {
			if t-j-1 >= 0 {
				pred += b * e[t-j-1]
			}
		}
		u[t] = pred

		reg := 0.0
		for j, b := range beta {
			reg += futureZ[h][j] * b
		}
		diffForecast[h] = reg + pred
	}

	forecasts = m.integrate(diffForecast)

	// Forecast variance from the MA(inf) weights of the integrated model.
	delta := diffPolynomial(o.D, so.D, so.S)
	full := make([]float64, len(ar)+1)
	full[0] = 1
	for i, a := range ar {
		full[i+1] = -a
	}
	full = polyMul(full, delta)
	fullAR := make([]float64, len(full)-1)
	for i := range fullAR {
		fullAR[i] = -full[i+1]
	}
	psi := psiWeights(fullAR, ma, steps)

	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	lower = make([]float64, steps)
	upper = make([]float64, steps)
	cum := 0.0
	for h := 0; h < steps; h++ {
		cum += psi[h] * psi[h]
		se := math.Sqrt(m.Variance * cum)
		lower[h] = forecasts[h] - z*se
		upper[h] = forecasts[h] + z*se
	}

	return forecasts, lower, upper, nil
}

// futureDesign returns the regression rows for the forecast horizon on the differenced
// scale. Differencing the regressors needs their history, so the future rows are
// appended to the fitted regressors before differencing.
func (m *Model) futureDesign(steps int, futureExog *timeseries.Frame) ([][]float64, error) {
	rows := make([][]float64, steps)
	width := len(m.ExogNames)
	if m.HasIntercept {
		width++
	}
	for h := range rows {
		rows[h] = make([]float64, width)
		if m.HasIntercept {
			rows[h][0] = 1
		}
	}
	if len(m.ExogNames) == 0 {
		return rows, nil
	}

	if futureExog == nil || futureExog.Rows() != steps {
		return nil, fmt.Errorf("%w: need %d future rows for regressors %v", ErrDataShape, steps, m.ExogNames)
	}
	future, err := futureExog.Select(m.ExogNames...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataShape, err)
	}
	if future.HasInvalid() {
		return nil, fmt.Errorf("%w: future regressors contain NaN or Inf", ErrDataShape)
	}

	history, err := m.exog.Select(m.ExogNames...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataShape, err)
	}
	history.Timestamps = nil
	future.Timestamps = nil
	all, err := history.Append(future)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataShape, err)
	}

	o, so := m.Order, m.SeasonalOrder
	diffed := all.Difference(o.D, so.D, so.S)
	offset := diffed.Rows() - steps
	col := 0
	if m.HasIntercept {
		col = 1
	}
	for h := range rows {
		for j := range m.ExogNames {
			rows[h][col+j] = diffed.Col(j)[offset+h]
		}
	}
	return rows, nil
}

// integrate undoes (1-B)^d (1-B^s)^D using the observed history:
// y_t = w_t - sum_{i>=1} delta_i y_{t-i}.
func (m *Model) integrate(diffForecast []float64) []float64 {
	o, so := m.Order, m.SeasonalOrder
	delta := diffPolynomial(o.D, so.D, so.S)
	if len(delta) == 1 {
		out := make([]float64, len(diffForecast))
		copy(out, diffForecast)
		return out
	}

	history := m.endog.Values
	n := len(history)
	y := make([]float64, n+len(diffForecast))
	copy(y, history)
	for h, w := range diffForecast {
		t := n + h
		v := w
		for i := 1; i < len(delta); i++ {
			v -= delta[i] * y[t-i]
		}
		y[t] = v
	}
	return y[n:]
}
