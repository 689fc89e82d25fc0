// Command sarimaxsearch loads a table from CSV, searches SARIMAX orders for its target
// column and optionally forecasts with the selected model.
//
//	sarimaxsearch -config run.yaml [-log-level debug] [-report out.json]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sartorproj/gosarimax/config"
	"github.com/sartorproj/gosarimax/gridsearch"
	"github.com/sartorproj/gosarimax/logging"
	"github.com/sartorproj/gosarimax/timeseries"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "sarimaxsearch: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sarimaxsearch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML run configuration")
	logLevel := fs.String("log-level", "", "override log_level (debug, info, warn, error)")
	reportPath := fs.String("report", "", "override the JSON report path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return errors.New("-config is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *reportPath != "" {
		cfg.Report = *reportPath
	}

	logger := logging.New(cfg.LogLevel, stderr, cfg.LogFormat)
	log := logger.With().Str("component", "sarimaxsearch").Logger()

	series, exog, err := timeseries.LoadTableCSV(cfg.Data.Path, cfg.TableOptions())
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Data.Path, err)
	}
	fingerprint := timeseries.Fingerprint(series, exog)
	log.Info().
		Str("path", cfg.Data.Path).
		Int("rows", series.Len()).
		Strs("exog", cfg.Data.ExogColumns).
		Str("fingerprint", fmt.Sprintf("%016x", fingerprint)).
		Msg("data loaded")

	train, trainExog := series, exog
	var (
		actual     *timeseries.Series
		futureExog *timeseries.Frame
	)
	horizon := cfg.Forecast.Horizon
	if horizon > 0 && cfg.Forecast.Holdout {
		n := series.Len()
		if horizon >= n {
			return fmt.Errorf("forecast horizon %d leaves no rows to fit (%d rows)", horizon, n)
		}
		train, actual = series.Slice(0, n-horizon), series.Slice(n-horizon, n)
		if exog != nil {
			trainExog, futureExog = exog.Slice(0, n-horizon), exog.Slice(n-horizon, n)
		}
		log.Debug().Int("train", train.Len()).Int("holdout", horizon).Msg("holding out forecast rows")
	}

	gc := cfg.GridConfig()
	gc.Output = stdout
	gc.Logger = &logger

	result, err := gridsearch.Search(train, trainExog, gc)
	if err != nil {
		return err
	}

	report := newReport(cfg, series, fingerprint, result)

	if horizon > 0 {
		fc, err := forecast(result, horizon, futureExog, cfg.Forecast.Confidence, actual)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		printForecast(stdout, fc)
		report.Forecast = fc

		if out := cfg.Forecast.Output; out != "" {
			points := &timeseries.Series{Values: fc.Values, Name: cfg.Data.TargetColumn}
			if actual != nil && actual.Indexed() {
				points.Timestamps = actual.Timestamps
			}
			if err := timeseries.SaveCSV(points, out, true); err != nil {
				return fmt.Errorf("write forecast: %w", err)
			}
			log.Info().Str("path", out).Msg("forecast written")
		}
	}

	if cfg.Report != "" {
		if err := writeReport(cfg.Report, report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info().Str("path", cfg.Report).Msg("report written")
	}

	return nil
}
