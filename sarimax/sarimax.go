package sarimax

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/sartorproj/gosarimax/stats"
	"github.com/sartorproj/gosarimax/timeseries"
)

const (
	// minResidualDOF is the number of observations required beyond the parameter count.
	minResidualDOF = 5
	// coeffBound keeps ARMA start values inside the open interval (-1, 1).
	coeffBound = 0.95
	// penalty replaces non-finite objective values during optimization.
	penalty = 1e100
)

// Model represents a SARIMAX model:
//
//	(1-B)^d (1-B^s)^D y_t = c + x_t'beta + u_t
//	phi(B) Phi(B^s) u_t = theta(B) Theta(B^s) e_t
//
// The regressors are differenced the same way as the target. The constant c is only
// estimated when the model is not differenced.
type Model struct {
	Order         Order
	SeasonalOrder SeasonalOrder

	ExogNames    []string
	ExogCoeffs   []float64 // beta
	Intercept    float64
	HasIntercept bool

	ARCoeffs  []float64 // Non-seasonal AR coefficients (phi)
	MACoeffs  []float64 // Non-seasonal MA coefficients (theta)
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients

	Variance float64 // Innovation variance
	AIC      float64
	AICc     float64 // Corrected AIC for small sample sizes
	BIC      float64
	LogLik   float64
	NParams  int // Estimated parameters including the variance
	NEff     int // Observations entering the likelihood

	// Conditioning is the number of leading observations of the target the likelihood
	// conditions on. Values below ConditioningLags of the orders are raised to it. Models
	// fitted with the same Conditioning on the same data have comparable criteria.
	Conditioning int

	fitted      bool
	converged   bool
	evaluations int
	endog       *timeseries.Series
	exog        *timeseries.Frame
	diffY       []float64
	design      *mat.Dense
	start       int // First differenced observation in the likelihood
	residuals   []float64
	fittedVals  []float64
	regResid    []float64
}

// New creates a new SARIMAX model with the specified orders.
func New(order Order, seasonal SeasonalOrder) *Model {
	return &Model{
		Order:         order,
		SeasonalOrder: seasonal,
	}
}

// Fit estimates the model on endog with optional regressors exog (nil for none).
// Errors wrap ErrInvalidOrder, ErrDataShape, ErrInsufficientData or ErrConvergence.
func (m *Model) Fit(endog *timeseries.Series, exog *timeseries.Frame) error {
	if err := m.Order.Validate(); err != nil {
		return err
	}
	if err := m.SeasonalOrder.Validate(); err != nil {
		return err
	}
	if endog == nil || endog.Len() == 0 {
		return fmt.Errorf("%w: empty target series", ErrDataShape)
	}
	if exog != nil && exog.Cols() == 0 {
		exog = nil
	}
	if endog.HasInvalid() {
		return fmt.Errorf("%w: target series contains NaN or Inf", ErrDataShape)
	}
	if exog.HasInvalid() {
		return fmt.Errorf("%w: regressors contain NaN or Inf", ErrDataShape)
	}
	if err := timeseries.CheckAligned(endog, exog); err != nil {
		return fmt.Errorf("%w: %w", ErrDataShape, err)
	}

	o, so := m.Order, m.SeasonalOrder
	if endog.Len() <= diffLags(o, so) {
		return fmt.Errorf("%w: %d observations cannot be differenced by %s x %s",
			ErrInsufficientData, endog.Len(), o, so)
	}

	m.endog = endog
	m.exog = exog
	m.diffY = endog.Difference(o.D, so.D, so.S).Values
	m.HasIntercept = o.D == 0 && so.D == 0
	m.ExogNames = exog.Names()

	var diffX *timeseries.Frame
	if exog != nil {
		diffX = exog.Difference(o.D, so.D, so.S)
	}
	m.design = designMatrix(len(m.diffY), diffX, m.HasIntercept)

	nReg := 0
	if m.design != nil {
		_, nReg = m.design.Dims()
	}
	nARMA := o.P + o.Q + so.P + so.Q
	m.start = max(arLags(o, so), m.Conditioning-diffLags(o, so))
	nEff := len(m.diffY) - m.start
	if nEff < nReg+nARMA+1+minResidualDOF {
		return fmt.Errorf("%w: %d usable observations for %d parameters",
			ErrInsufficientData, max(nEff, 0), nReg+nARMA+1)
	}

	x0, err := m.startValues()
	if err != nil {
		return err
	}

	x := x0
	m.converged = true
	if len(x0) > 0 {
		x, err = m.minimize(x0)
		if err != nil {
			return err
		}
	}

	m.unpack(x)
	sse := m.computeResiduals()
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return fmt.Errorf("%w: non-finite sum of squares", ErrConvergence)
	}

	m.NEff = nEff
	m.NParams = nReg + nARMA + 1
	m.Variance = sse / float64(nEff)
	m.LogLik = stats.GaussianLogLik(sse, nEff)

	ic := stats.CalculateIC(m.LogLik, nEff, m.NParams)
	m.AIC = ic.AIC
	m.AICc = ic.AICc
	m.BIC = ic.BIC
	if math.IsInf(m.AIC, 0) || math.IsNaN(m.AIC) {
		return fmt.Errorf("%w: non-finite AIC", ErrConvergence)
	}

	m.fitted = true
	return nil
}

// designMatrix builds the n x k regression matrix [1, X], or nil without regressors.
func designMatrix(n int, x *timeseries.Frame, intercept bool) *mat.Dense {
	k := x.Cols()
	if intercept {
		k++
	}
	if k == 0 {
		return nil
	}
	d := mat.NewDense(n, k, nil)
	col := 0
	if intercept {
		for i := 0; i < n; i++ {
			d.Set(i, 0, 1)
		}
		col++
	}
	for j := 0; j < x.Cols(); j++ {
		d.SetCol(col+j, x.Col(j))
	}
	return d
}

// startValues returns the unconstrained start vector: OLS regression coefficients,
// then atanh-mapped AR, MA, SAR and SMA start values.
func (m *Model) startValues() ([]float64, error) {
	o, so := m.Order, m.SeasonalOrder
	n := len(m.diffY)

	var beta []float64
	u := make([]float64, n)
	copy(u, m.diffY)

	if m.design != nil {
		_, k := m.design.Dims()
		var b mat.VecDense
		if err := b.SolveVec(m.design, mat.NewVecDense(n, m.diffY)); err != nil {
			return nil, fmt.Errorf("%w: regressors are collinear: %w", ErrDataShape, err)
		}
		beta = make([]float64, k)
		for i := range beta {
			beta[i] = b.AtVec(i)
		}
		var fitted mat.VecDense
		fitted.MulVec(m.design, &b)
		for i := range u {
			u[i] -= fitted.AtVec(i)
		}
	}

	ar := make([]float64, o.P)
	if o.P > 0 {
		if acf := stats.ACFValues(u, o.P); acf != nil {
			if phi := stats.YuleWalker(acf, o.P); phi != nil {
				copy(ar, phi)
			}
		}
	}

	sar := make([]float64, so.P)
	if so.P > 0 {
		if acf := stats.ACFValues(u, so.P*so.S); acf != nil {
			for i := range sar {
				if idx := (i + 1) * so.S; idx < len(acf) {
					sar[i] = acf[idx] * 0.5
				}
			}
		}
	}

	ma := make([]float64, o.Q)
	for i := range ma {
		ma[i] = 0.1
	}
	sma := make([]float64, so.Q)
	for i := range sma {
		sma[i] = 0.1
	}

	x := make([]float64, 0, len(beta)+o.P+o.Q+so.P+so.Q)
	x = append(x, beta...)
	for _, group := range [][]float64{ar, ma, sar, sma} {
		for _, c := range group {
			x = append(x, math.Atanh(clamp(c, -coeffBound, coeffBound)))
		}
	}
	return x, nil
}

// unpack decodes an unconstrained parameter vector into the model coefficients.
func (m *Model) unpack(x []float64) {
	o, so := m.Order, m.SeasonalOrder
	idx := 0

	m.Intercept = 0
	m.ExogCoeffs = make([]float64, len(m.ExogNames))
	if m.HasIntercept {
		m.Intercept = x[idx]
		idx++
	}
	for i := range m.ExogCoeffs {
		m.ExogCoeffs[i] = x[idx]
		idx++
	}

	take := func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Tanh(x[idx])
			idx++
		}
		return out
	}
	m.ARCoeffs = take(o.P)
	m.MACoeffs = take(o.Q)
	m.SARCoeffs = take(so.P)
	m.SMACoeffs = take(so.Q)
}

// beta returns the regression coefficients in design-matrix column order.
func (m *Model) beta() []float64 {
	var b []float64
	if m.HasIntercept {
		b = append(b, m.Intercept)
	}
	return append(b, m.ExogCoeffs...)
}

// computeResiduals fills the regression errors, innovations and fitted values for the
// current coefficients and returns the conditional sum of squares.
func (m *Model) computeResiduals() float64 {
	n := len(m.diffY)
	m.regResid = regressionErrors(m.diffY, m.design, m.beta())

	ar := arPolynomial(m.ARCoeffs, m.SARCoeffs, m.SeasonalOrder.S)
	ma := maPolynomial(m.MACoeffs, m.SMACoeffs, m.SeasonalOrder.S)
	e, sse := cssInnovations(m.regResid, ar, ma, m.start)

	m.residuals = e
	m.fittedVals = make([]float64, n)
	for t := range m.fittedVals {
		m.fittedVals[t] = m.diffY[t] - e[t]
	}
	return sse
}

// regressionErrors returns y - Z*beta.
func regressionErrors(y []float64, z *mat.Dense, beta []float64) []float64 {
	u := make([]float64, len(y))
	copy(u, y)
	if z == nil {
		return u
	}
	for t := range u {
		for j, b := range beta {
			u[t] -= z.At(t, j) * b
		}
	}
	return u
}

// cssInnovations runs the ARMA filter conditionally on the first start observations,
// whose innovations are taken as zero, and returns the innovations with their sum of squares.
// start must be at least len(ar).
func cssInnovations(u, ar, ma []float64, start int) ([]float64, float64) {
	n := len(u)
	e := make([]float64, n)
	sse := 0.0
	for t := start; t < n; t++ {
		pred := 0.0
		for i, a := range ar {
			pred += a * u[t-i-1]
		}
		for j, b := range ma {
			if t-j-1 < start {
				break
			}
			pred += b * e[t-j-1]
		}
		e[t] = u[t] - pred
		sse += e[t] * e[t]
	}
	return e, sse
}

// minimize runs Nelder-Mead on the concentrated CSS objective.
func (m *Model) minimize(x0 []float64) ([]float64, error) {
	nReg := 0
	if m.design != nil {
		_, nReg = m.design.Dims()
	}
	o, so := m.Order, m.SeasonalOrder
	nEff := float64(len(m.diffY) - m.start)
	period := so.S

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			beta := x[:nReg]
			rest := x[nReg:]
			coeffs := make([]float64, len(rest))
			for i, v := range rest {
				coeffs[i] = math.Tanh(v)
			}
			ar := coeffs[:o.P]
			ma := coeffs[o.P : o.P+o.Q]
			sar := coeffs[o.P+o.Q : o.P+o.Q+so.P]
			sma := coeffs[o.P+o.Q+so.P:]

			u := regressionErrors(m.diffY, m.design, beta)
			_, sse := cssInnovations(u,
				arPolynomial(ar, sar, period),
				maPolynomial(ma, sma, period), m.start)
			if math.IsNaN(sse) || math.IsInf(sse, 0) {
				return penalty
			}
			return 0.5 * nEff * math.Log(math.Max(sse, math.SmallestNonzeroFloat64)/nEff)
		},
	}

	dim := len(x0)
	settings := &optimize.Settings{
		FuncEvaluations: 1000 + 400*dim,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Relative:   1e-9,
			Iterations: 100,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil && (result == nil || !isLimit(result.Status)) {
		return nil, fmt.Errorf("%w: %w", ErrConvergence, err)
	}
	if result == nil || math.IsNaN(result.F) || result.F >= penalty {
		return nil, fmt.Errorf("%w: objective is not finite", ErrConvergence)
	}

	m.evaluations = result.Stats.FuncEvaluations
	m.converged = !isLimit(result.Status)
	return result.X, nil
}

func isLimit(s optimize.Status) bool {
	return s == optimize.FunctionEvaluationLimit || s == optimize.IterationLimit || s == optimize.RuntimeLimit
}

// Converged reports whether the optimizer stopped on a convergence criterion rather
// than an evaluation limit.
func (m *Model) Converged() bool {
	return m.fitted && m.converged
}

// Fitted reports whether Fit succeeded.
func (m *Model) Fitted() bool {
	return m.fitted
}

// Residuals returns the innovations over the observations entering the likelihood.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.residuals)-m.start)
	copy(result, m.residuals[m.start:])
	return result
}

// FittedValues returns one-step fitted values on the differenced scale, aligned with Residuals.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.fittedVals)-m.start)
	copy(result, m.fittedVals[m.start:])
	return result
}

// Summary represents a model summary.
type Summary struct {
	Order         Order
	SeasonalOrder SeasonalOrder
	ExogNames     []string
	ExogCoeffs    []float64
	Intercept     float64
	HasIntercept  bool
	ARCoeffs      []float64
	MACoeffs      []float64
	SARCoeffs     []float64
	SMACoeffs     []float64
	Variance      float64
	AIC           float64
	AICc          float64 // Corrected AIC
	BIC           float64
	LogLik        float64
	NObs          int
	NEff          int
	Converged     bool
	Evaluations   int
	LjungBox      *stats.LjungBoxResult
	DurbinWatson  *stats.DurbinWatsonResult
}

// Summary returns a summary of the fitted model, or nil before Fit.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	resid := m.Residuals()
	o, so := m.Order, m.SeasonalOrder

	return &Summary{
		Order:         o,
		SeasonalOrder: so,
		ExogNames:     m.ExogNames,
		ExogCoeffs:    m.ExogCoeffs,
		Intercept:     m.Intercept,
		HasIntercept:  m.HasIntercept,
		ARCoeffs:      m.ARCoeffs,
		MACoeffs:      m.MACoeffs,
		SARCoeffs:     m.SARCoeffs,
		SMACoeffs:     m.SMACoeffs,
		Variance:      m.Variance,
		AIC:           m.AIC,
		AICc:          m.AICc,
		BIC:           m.BIC,
		LogLik:        m.LogLik,
		NObs:          m.endog.Len(),
		NEff:          m.NEff,
		Converged:     m.converged,
		Evaluations:   m.evaluations,
		LjungBox:      stats.LjungBox(resid, 10, o.P+o.Q+so.P+so.Q),
		DurbinWatson:  stats.DurbinWatson(resid),
	}
}

// Fitter fits a fresh Model per call. The zero value is ready to use.
type Fitter struct{}

// Fit creates a model with the given orders and fits it, conditioning the likelihood on
// the first conditioning observations of endog.
func (Fitter) Fit(endog *timeseries.Series, exog *timeseries.Frame, order Order, seasonal SeasonalOrder, conditioning int) (*Model, error) {
	m := New(order, seasonal)
	m.Conditioning = conditioning
	if err := m.Fit(endog, exog); err != nil {
		return nil, err
	}
	return m, nil
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
