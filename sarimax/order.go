package sarimax

import (
	"fmt"
)

// Order represents the non-seasonal model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

// Validate reports an ErrInvalidOrder when a component is negative.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 {
		return fmt.Errorf("%w: order %s has a negative component", ErrInvalidOrder, o)
	}
	return nil
}

// String renders the order as a tuple, e.g. "(1, 0, 1)".
func (o Order) String() string {
	return fmt.Sprintf("(%d, %d, %d)", o.P, o.D, o.Q)
}

// SeasonalOrder represents the seasonal model order (P, D, Q, s).
type SeasonalOrder struct {
	P int // Seasonal AR order
	D int // Seasonal differencing order
	Q int // Seasonal MA order
	S int // Seasonal period (e.g., 12 for monthly data with yearly seasonality)
}

// IsZero reports whether the order has no seasonal terms. The period is ignored.
func (o SeasonalOrder) IsZero() bool {
	return o.P == 0 && o.D == 0 && o.Q == 0
}

// Validate reports an ErrInvalidOrder for negative components, or for seasonal terms
// without a period of at least 2.
func (o SeasonalOrder) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.S < 0 {
		return fmt.Errorf("%w: seasonal order %s has a negative component", ErrInvalidOrder, o)
	}
	if !o.IsZero() && o.S < 2 {
		return fmt.Errorf("%w: seasonal order %s needs a period of at least 2", ErrInvalidOrder, o)
	}
	return nil
}

// String renders the order as a tuple, e.g. "(1, 1, 0, 12)".
func (o SeasonalOrder) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", o.P, o.D, o.Q, o.S)
}

// arLags returns the highest AR lag of the expanded polynomial.
func arLags(o Order, so SeasonalOrder) int {
	return o.P + so.P*so.S
}

// ConditioningLags returns how many leading observations of the undifferenced series a
// fit of these orders conditions on: the differencing lags plus the expanded AR lags.
func ConditioningLags(o Order, so SeasonalOrder) int {
	return diffLags(o, so) + arLags(o, so)
}

// diffLags returns how many observations differencing consumes.
func diffLags(o Order, so SeasonalOrder) int {
	return o.D + so.D*so.S
}
