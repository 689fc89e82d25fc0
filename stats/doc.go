// Package stats provides the autocorrelation and diagnostic functions used when fitting
// and reporting SARIMAX models.
//
// # Autocorrelation
//
//	acf := stats.ACF(series, 20)
//	phi := stats.YuleWalker(acf, 2) // AR(2) start values
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(residuals, 10, p+q)
//	if lb.PValue > 0.05 {
//	    // Residuals are white noise (good)
//	}
//	dw := stats.DurbinWatson(residuals)
//
// # Information Criteria
//
//	ic := stats.CalculateIC(logLik, nObs, nParams)
//	fmt.Println(ic.AIC, ic.AICc, ic.BIC)
package stats
