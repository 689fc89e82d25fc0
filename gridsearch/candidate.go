package gridsearch

import (
	"github.com/sartorproj/gosarimax/sarimax"
)

// Candidate is one point of the search grid.
type Candidate struct {
	Order         sarimax.Order
	SeasonalOrder sarimax.SeasonalOrder
	// Seasonal reports whether SeasonalOrder is part of the candidate.
	Seasonal bool
}

// String renders the candidate the way progress lines do.
func (c Candidate) String() string {
	if !c.Seasonal {
		return "Order=" + c.Order.String()
	}
	return "Order=" + c.Order.String() + ", Seasonal_Order=" + c.SeasonalOrder.String()
}

// Candidates enumerates the Cartesian product described by cfg. Non-seasonal orders
// vary p slowest and q fastest. With a seasonal search every (p, d, q) is paired with
// every seasonal tuple from the product of SP, SD, SQ and S.
func Candidates(cfg *Config) []Candidate {
	orders := make([]sarimax.Order, 0, len(cfg.P)*len(cfg.D)*len(cfg.Q))
	for _, p := range cfg.P {
		for _, d := range cfg.D {
			for _, q := range cfg.Q {
				orders = append(orders, sarimax.Order{P: p, D: d, Q: q})
			}
		}
	}

	if !cfg.SeasonalSearch {
		out := make([]Candidate, len(orders))
		for i, o := range orders {
			out[i] = Candidate{Order: o}
			if cfg.SeasonalOrder != nil {
				out[i].SeasonalOrder = *cfg.SeasonalOrder
				out[i].Seasonal = true
			}
		}
		return out
	}

	seasonal := make([]sarimax.SeasonalOrder, 0, len(cfg.SP)*len(cfg.SD)*len(cfg.SQ)*len(cfg.S))
	for _, sp := range cfg.SP {
		for _, sd := range cfg.SD {
			for _, sq := range cfg.SQ {
				for _, s := range cfg.S {
					seasonal = append(seasonal, sarimax.SeasonalOrder{P: sp, D: sd, Q: sq, S: s})
				}
			}
		}
	}

	out := make([]Candidate, 0, len(orders)*len(seasonal))
	for _, o := range orders {
		for _, so := range seasonal {
			out = append(out, Candidate{Order: o, SeasonalOrder: so, Seasonal: true})
		}
	}
	return out
}

// conditioning returns the largest number of leading observations any candidate conditions
// on. Fitting every candidate with it keeps their criteria comparable.
func conditioning(candidates []Candidate) int {
	n := 0
	for _, c := range candidates {
		n = max(n, sarimax.ConditioningLags(c.Order, c.SeasonalOrder))
	}
	return n
}
