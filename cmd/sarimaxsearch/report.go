package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sartorproj/gosarimax/config"
	"github.com/sartorproj/gosarimax/gridsearch"
	"github.com/sartorproj/gosarimax/stats"
	"github.com/sartorproj/gosarimax/timeseries"
)

// acfLags is the number of autocorrelation lags exported with the input data.
const acfLags = 24

// Report holds the search outcome for JSON export
type Report struct {
	Data       DataReport        `json:"data"`
	Best       ModelReport       `json:"best"`
	Stats      StatsReport       `json:"stats"`
	Evaluated  int               `json:"evaluated"`
	Candidates []CandidateReport `json:"candidates"`
	Failures   []FailureReport   `json:"failures"`
	Forecast   *ForecastReport   `json:"forecast,omitempty"`
}

// DataReport describes the input table.
type DataReport struct {
	Path        string    `json:"path"`
	Target      string    `json:"target"`
	Exog        []string  `json:"exog,omitempty"`
	NObs        int       `json:"n_obs"`
	Fingerprint string    `json:"fingerprint"` // xxhash64 of the loaded values
	ACF         []float64 `json:"acf,omitempty"`
	PACF        []float64 `json:"pacf,omitempty"`
}

// ModelReport describes the selected model.
type ModelReport struct {
	Order         string             `json:"order"`
	SeasonalOrder string             `json:"seasonal_order,omitempty"`
	Criterion     string             `json:"criterion"`
	Score         float64            `json:"score"`
	AIC           float64            `json:"aic"`
	AICc          float64            `json:"aicc"`
	BIC           float64            `json:"bic"`
	LogLik        float64            `json:"loglik"`
	Variance      float64            `json:"variance"`
	Intercept     *float64           `json:"intercept,omitempty"`
	ExogCoeffs    map[string]float64 `json:"exog_coeffs,omitempty"`
	AR            []float64          `json:"ar,omitempty"`
	MA            []float64          `json:"ma,omitempty"`
	SAR           []float64          `json:"sar,omitempty"`
	SMA           []float64          `json:"sma,omitempty"`
	Converged     bool               `json:"converged"`
	LjungBoxP     *float64           `json:"ljung_box_p,omitempty"`
	DurbinWatson  *float64           `json:"durbin_watson,omitempty"`
}

// StatsReport summarizes the AIC values of all fitted candidates.
type StatsReport struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// CandidateReport is one successfully fitted candidate.
type CandidateReport struct {
	Order         string  `json:"order"`
	SeasonalOrder string  `json:"seasonal_order,omitempty"`
	AIC           float64 `json:"aic"`
	Score         float64 `json:"score"`
}

// FailureReport is one candidate that failed to fit.
type FailureReport struct {
	Order         string `json:"order"`
	SeasonalOrder string `json:"seasonal_order,omitempty"`
	Kind          string `json:"kind"`
	Error         string `json:"error"`
}

// ForecastReport holds the forecast of the selected model.
type ForecastReport struct {
	Horizon    int       `json:"horizon"`
	Confidence float64   `json:"confidence"`
	Values     []float64 `json:"values"`
	Lower      []float64 `json:"lower"`
	Upper      []float64 `json:"upper"`
	Actual     []float64 `json:"actual,omitempty"`
	RMSE       *float64  `json:"rmse,omitempty"`
	MAE        *float64  `json:"mae,omitempty"`
	MAPE       *float64  `json:"mape,omitempty"`
}

func newReport(cfg *config.Config, series *timeseries.Series, fingerprint uint64, result *gridsearch.Result) *Report {
	r := &Report{
		Data: DataReport{
			Path:        cfg.Data.Path,
			Target:      cfg.Data.TargetColumn,
			Exog:        cfg.Data.ExogColumns,
			NObs:        series.Len(),
			Fingerprint: fmt.Sprintf("%016x", fingerprint),
			ACF:         stats.ACF(series, acfLags),
			PACF:        stats.PACF(series, acfLags),
		},
		Stats: StatsReport{
			Count: result.Stats.Count,
			Mean:  result.Stats.Mean,
			Min:   result.Stats.Min,
			Max:   result.Stats.Max,
		},
		Evaluated:  result.Evaluated,
		Candidates: make([]CandidateReport, 0, len(result.Scores)),
		Failures:   make([]FailureReport, 0, len(result.Failures)),
	}

	m := result.Model
	r.Best = ModelReport{
		Order:     result.Order.String(),
		Criterion: result.Criterion,
		Score:     result.Score,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		Variance:  m.Variance,
		AR:        m.ARCoeffs,
		MA:        m.MACoeffs,
		SAR:       m.SARCoeffs,
		SMA:       m.SMACoeffs,
		Converged: m.Converged(),
	}
	if result.SeasonalOrder != nil {
		r.Best.SeasonalOrder = result.SeasonalOrder.String()
	}
	if m.HasIntercept {
		r.Best.Intercept = finite(m.Intercept)
	}
	if len(m.ExogNames) > 0 {
		r.Best.ExogCoeffs = make(map[string]float64, len(m.ExogNames))
		for j, name := range m.ExogNames {
			r.Best.ExogCoeffs[name] = m.ExogCoeffs[j]
		}
	}
	if s := m.Summary(); s != nil {
		if s.LjungBox != nil {
			r.Best.LjungBoxP = finite(s.LjungBox.PValue)
		}
		if s.DurbinWatson != nil {
			r.Best.DurbinWatson = finite(s.DurbinWatson.Statistic)
		}
	}

	for _, sc := range result.Scores {
		c := CandidateReport{Order: sc.Order.String(), AIC: sc.AIC, Score: sc.Criterion}
		if sc.Seasonal {
			c.SeasonalOrder = sc.SeasonalOrder.String()
		}
		r.Candidates = append(r.Candidates, c)
	}
	for _, f := range result.Failures {
		fr := FailureReport{Order: f.Order.String(), Kind: f.Kind, Error: f.Err.Error()}
		if f.Seasonal {
			fr.SeasonalOrder = f.SeasonalOrder.String()
		}
		r.Failures = append(r.Failures, fr)
	}

	return r
}

// forecast predicts horizon steps with the selected model and, when actual values were
// held out, scores the forecast against them.
func forecast(result *gridsearch.Result, horizon int, futureExog *timeseries.Frame, confidence float64, actual *timeseries.Series) (*ForecastReport, error) {
	values, lower, upper, err := result.Model.PredictWithInterval(horizon, futureExog, confidence)
	if err != nil {
		return nil, err
	}
	fc := &ForecastReport{
		Horizon:    horizon,
		Confidence: confidence,
		Values:     values,
		Lower:      lower,
		Upper:      upper,
	}
	if actual != nil {
		fc.Actual = actual.Values
		rmse, mae, mape := metrics(actual.Values, values)
		fc.RMSE, fc.MAE, fc.MAPE = finite(rmse), finite(mae), finite(mape)
	}
	return fc, nil
}

func printForecast(w io.Writer, fc *ForecastReport) {
	for h, v := range fc.Values {
		fmt.Fprintf(w, "Forecast h=%d: %.4f [%.4f, %.4f]\n", h+1, v, fc.Lower[h], fc.Upper[h])
	}
	if fc.RMSE != nil {
		fmt.Fprintf(w, "Holdout: RMSE=%.4f MAE=%.4f MAPE=%.2f%%\n", *fc.RMSE, *fc.MAE, *fc.MAPE)
	}
}

// metrics calculates forecast accuracy metrics
func metrics(actual, predicted []float64) (rmse, mae, mape float64) {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		d := actual[i] - predicted[i]
		rmse += d * d
		mae += math.Abs(d)
		if actual[i] != 0 {
			mape += math.Abs(d) / math.Abs(actual[i]) * 100
		}
	}
	return math.Sqrt(rmse / float64(n)), mae / float64(n), mape / float64(n)
}

// finite returns nil for NaN and Inf, which JSON cannot encode.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func writeReport(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
