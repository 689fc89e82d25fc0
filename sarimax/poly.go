package sarimax

// polyMul multiplies two lag polynomials given by their coefficients, lowest lag first.
func polyMul(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// lagPoly builds 1 + sign*(c_1 B^step + c_2 B^2step + ...).
func lagPoly(coeffs []float64, step int, sign float64) []float64 {
	out := make([]float64, len(coeffs)*step+1)
	out[0] = 1
	for i, c := range coeffs {
		out[(i+1)*step] = sign * c
	}
	return out
}

// arPolynomial returns a_1..a_L such that phi(B)Phi(B^s) = 1 - sum a_i B^i.
func arPolynomial(ar, sar []float64, period int) []float64 {
	prod := polyMul(lagPoly(ar, 1, -1), lagPoly(sar, max(period, 1), -1))
	out := make([]float64, len(prod)-1)
	for i := range out {
		out[i] = -prod[i+1]
	}
	return out
}

// maPolynomial returns b_1..b_L such that theta(B)Theta(B^s) = 1 + sum b_j B^j.
func maPolynomial(ma, sma []float64, period int) []float64 {
	prod := polyMul(lagPoly(ma, 1, 1), lagPoly(sma, max(period, 1), 1))
	return prod[1:]
}

// diffPolynomial returns the coefficients of (1-B)^d (1-B^s)^D, lowest lag first.
func diffPolynomial(d, sd, period int) []float64 {
	out := []float64{1}
	for i := 0; i < d; i++ {
		out = polyMul(out, []float64{1, -1})
	}
	if sd > 0 && period > 0 {
		seasonal := make([]float64, period+1)
		seasonal[0] = 1
		seasonal[period] = -1
		for i := 0; i < sd; i++ {
			out = polyMul(out, seasonal)
		}
	}
	return out
}

// psiWeights returns the first n MA(inf) weights of the model with AR coefficients ar
// (1 - sum ar_i B^i) and MA coefficients ma (1 + sum ma_j B^j).
func psiWeights(ar, ma []float64, n int) []float64 {
	psi := make([]float64, n)
	if n == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < n; j++ {
		v := 0.0
		if j <= len(ma) {
			v = ma[j-1]
		}
		for i := 1; i <= len(ar) && i <= j; i++ {
			v += ar[i-1] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}
