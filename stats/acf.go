package stats

import (
	"github.com/sartorproj/gosarimax/timeseries"
)

// ACF calculates the Autocorrelation Function for the given series.
// Returns ACF values for lags 0 to maxLag, or nil for a constant series.
func ACF(series *timeseries.Series, maxLag int) []float64 {
	return ACFValues(series.Values, maxLag)
}

// ACFValues is ACF over a raw slice.
func ACFValues(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}

	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		acf[k] = sum / variance
	}

	return acf
}

// YuleWalker estimates AR coefficients from autocorrelations with the
// Levinson-Durbin recursion. acf must hold lags 0..order.
func YuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		if v <= 0 {
			break
		}
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
	}

	return phi
}

// PACF calculates the Partial Autocorrelation Function for lags 0 to maxLag. The
// value at lag k is the last coefficient of the AR(k) Yule-Walker fit.
func PACF(series *timeseries.Series, maxLag int) []float64 {
	acf := ACF(series, maxLag)
	if len(acf) < 2 {
		return nil
	}
	maxLag = len(acf) - 1

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1
	for k := 1; k <= maxLag; k++ {
		phi := YuleWalker(acf, k)
		pacf[k] = phi[k-1]
	}
	return pacf
}
