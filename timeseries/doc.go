// Package timeseries provides the series and regressor table types used by the search.
//
// A Series holds the target values and an optional time index. A Frame holds named
// regressor columns that share the row index of the series they belong to.
//
// # Creating a Series
//
//	series := timeseries.New([]float64{100, 102, 105, 103, 108, 110})
//
// # Loading a Table
//
// Load the target and its regressors from one CSV file. Rows with a missing value in any
// requested column are dropped, so both outputs stay aligned. Files ending in .gz are
// decompressed on the fly.
//
//	series, exog, err := timeseries.LoadTableCSV("sales.csv.gz", &timeseries.TableOptions{
//	    DateColumn:   "month",
//	    TargetColumn: "sales",
//	    ExogColumns:  []string{"price", "promo"},
//	})
//
// A single series can still be loaded with LoadCSV and CSVOptions.
//
// # Differencing
//
//	diff := series.Difference(1, 1, 12) // (1-B)(1-B^12) y
//	xdiff := exog.Difference(1, 1, 12)  // Same transform on every regressor
//
// # Alignment
//
//	if err := timeseries.CheckAligned(series, exog); err != nil {
//	    // errors.Is(err, timeseries.ErrMisaligned)
//	}
package timeseries
