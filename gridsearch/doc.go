// Package gridsearch selects SARIMAX model orders by searching candidate lists.
//
// Every combination of the configured (p, d, q) values, optionally paired with every
// seasonal (P, D, Q, s) tuple, is fitted and scored by an information criterion. The
// candidate with the lowest score is re-fitted and returned.
//
// # Basic Usage
//
//	cfg := gridsearch.DefaultConfig()
//	cfg.P = []int{0, 1, 2}
//	cfg.D = []int{1}
//	cfg.Q = []int{0, 1}
//
//	result, err := gridsearch.Search(series, nil, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Order, result.AIC, result.Stats.Mean)
//
// With Verbose set, one line per fitted candidate is written to Config.Output:
//
//	Order=(1, 1, 0) AIC=512.33
//
// followed by a summary line once the search completes:
//
//	Best Model:Order=(1, 1, 0) AIC=512.33; Avg AIC=530.1, Min AIC=512.33, Max AIC=561.9
//
// # Seasonal Search
//
//	cfg.SeasonalSearch = true
//	cfg.SP = []int{0, 1}
//	cfg.SD = []int{1}
//	cfg.SQ = []int{0, 1}
//	cfg.S = []int{12}
//
// A fixed seasonal order can instead be applied to every candidate through
// Config.SeasonalOrder.
//
// # Failures
//
// Candidates that fail to fit are skipped and recorded in Result.Failures together with
// a failure kind. Search fails with ErrInvalidCandidates before fitting anything when a
// list is empty or holds a negative value, and with ErrNoCandidateFitted when no
// candidate could be fitted.
//
// # Strategies
//
//   - "grid" (default): every candidate is fitted in enumeration order
//   - "stepwise": greedy neighbour search over the sorted lists, fitting each point once
package gridsearch
