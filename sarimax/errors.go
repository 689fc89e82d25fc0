package sarimax

import (
	"errors"
)

var (
	// ErrInvalidOrder is returned for negative orders or seasonal terms without a period.
	ErrInvalidOrder = errors.New("invalid model order")
	// ErrDataShape is returned when the series and regressors do not line up, or hold NaN/Inf.
	ErrDataShape = errors.New("data shape mismatch")
	// ErrInsufficientData is returned when too few observations remain for the order.
	ErrInsufficientData = errors.New("insufficient data points for the specified order")
	// ErrConvergence is returned when the optimizer fails to produce a finite estimate.
	ErrConvergence = errors.New("estimation did not converge")
	// ErrNotFitted is returned by methods that need a fitted model.
	ErrNotFitted = errors.New("model must be fitted before prediction")
)

// Error kinds reported by ErrorKind.
const (
	KindInvalidOrder     = "invalid_order"
	KindDataShape        = "data_shape"
	KindInsufficientData = "insufficient_data"
	KindConvergence      = "convergence"
	KindOther            = "other"
)

// ErrorKind maps a fit error to one of the Kind constants.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidOrder):
		return KindInvalidOrder
	case errors.Is(err, ErrDataShape):
		return KindDataShape
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrConvergence):
		return KindConvergence
	default:
		return KindOther
	}
}
