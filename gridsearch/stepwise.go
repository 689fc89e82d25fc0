package gridsearch

import (
	"fmt"
	"math"
	"slices"

	"github.com/sartorproj/gosarimax/sarimax"
)

// stepwise walks the grid from its smallest corner, moving to the best improving
// neighbour (one index step along one axis) until no neighbour improves. Every grid
// point is fitted at most once.
func (s *search) stepwise() {
	axes := s.axes()
	visited := make(map[string]float64)

	visit := func(point []int) float64 {
		key := fmt.Sprint(point)
		if v, ok := visited[key]; ok {
			return v
		}
		v := s.evaluate(s.candidateAt(axes, point))
		visited[key] = v
		return v
	}

	current := make([]int, len(axes))
	currentVal := visit(current)

	for {
		var next []int
		nextVal := currentVal

		for axis := range axes {
			for _, step := range []int{-1, 1} {
				idx := current[axis] + step
				if idx < 0 || idx >= len(axes[axis]) {
					continue
				}
				neighbour := slices.Clone(current)
				neighbour[axis] = idx
				if v := visit(neighbour); v < nextVal {
					next, nextVal = neighbour, v
				}
			}
		}

		if next == nil {
			break
		}
		s.log.Debug().
			Str("from", s.candidateAt(axes, current).String()).
			Str("to", s.candidateAt(axes, next).String()).
			Msg("stepwise move")
		current, currentVal = next, nextVal
	}

	if math.IsInf(currentVal, 1) {
		s.log.Warn().Msg("stepwise search ended without a fitted candidate")
	}
}

// axes returns the sorted, de-duplicated candidate lists in the order p, d, q and, for
// a seasonal search, seasonal p, d, q and period.
func (s *search) axes() [][]int {
	lists := [][]int{s.cfg.P, s.cfg.D, s.cfg.Q}
	if s.cfg.SeasonalSearch {
		lists = append(lists, s.cfg.SP, s.cfg.SD, s.cfg.SQ, s.cfg.S)
	}
	axes := make([][]int, len(lists))
	for i, l := range lists {
		axis := slices.Clone(l)
		slices.Sort(axis)
		axes[i] = slices.Compact(axis)
	}
	return axes
}

func (s *search) candidateAt(axes [][]int, point []int) Candidate {
	c := Candidate{Order: sarimax.Order{
		P: axes[0][point[0]],
		D: axes[1][point[1]],
		Q: axes[2][point[2]],
	}}
	switch {
	case s.cfg.SeasonalSearch:
		c.SeasonalOrder = sarimax.SeasonalOrder{
			P: axes[3][point[3]],
			D: axes[4][point[4]],
			Q: axes[5][point[5]],
			S: axes[6][point[6]],
		}
		c.Seasonal = true
	case s.cfg.SeasonalOrder != nil:
		c.SeasonalOrder = *s.cfg.SeasonalOrder
		c.Seasonal = true
	}
	return c
}
