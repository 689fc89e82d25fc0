package timeseries

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (optional)
	ValueColumn string // Column name for values (default: "y")
	DateFormat  string // Date format (default: "2006-01-02")
	HasHeader   bool   // Whether CSV has header row (default: true)
	Delimiter   rune   // Field delimiter (default: ',')
	SkipRows    int    // Number of rows to skip at start
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "y",
		DateFormat:  "2006-01-02",
		HasHeader:   true,
		Delimiter:   ',',
	}
}

// TableOptions selects the target and regressor columns of a CSV table.
type TableOptions struct {
	DateColumn   string   // Column name for dates (optional)
	TargetColumn string   // Column holding the endogenous series
	ExogColumns  []string // Regressor columns, in model order
	DateFormat   string   // Date format (default: "2006-01-02")
	Delimiter    rune     // Field delimiter (default: ',')
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"2006-01",
	"2006",
}

// openCSV opens filename, transparently decompressing .gz files.
func openCSV(filename string) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(filename, ".gz") {
		return file, nil
	}
	zr, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("open gzip %s: %w", filename, err)
	}
	return &gzipFile{Reader: zr, file: file}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	ferr := g.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// LoadCSV loads a time series from a CSV file. Files ending in .gz are gunzipped.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	rc, err := openCSV(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return LoadCSVFromReader(rc, opts)
}

// LoadCSVFromReader loads a time series from an io.Reader.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	valueIdx, dateIdx := -1, -1

	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, err
		}

		for i, h := range header {
			h = cleanField(h)
			switch {
			case h == opts.ValueColumn || (opts.ValueColumn == "" && (h == "y" || h == "value" || h == "Value")):
				valueIdx = i
			case opts.DateColumn != "" && h == opts.DateColumn:
				dateIdx = i
			case h == "ds" || h == "date" || h == "Date" || h == "Month" || h == "Year":
				if dateIdx == -1 {
					dateIdx = i
				}
			}
		}

		// Default to last column if not specified
		if valueIdx == -1 {
			valueIdx = len(header) - 1
		}
	} else {
		valueIdx = 1
		dateIdx = 0
	}

	var values []float64
	var timestamps []time.Time

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if valueIdx >= len(record) {
			continue
		}
		val, ok := parseValue(record[valueIdx])
		if !ok {
			continue
		}
		values = append(values, val)

		if dateIdx >= 0 && dateIdx < len(record) {
			if ts, err := parseDate(record[dateIdx], opts.DateFormat); err == nil {
				timestamps = append(timestamps, ts)
			}
		}
	}

	if len(values) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	if len(timestamps) == len(values) {
		return &Series{
			Timestamps: timestamps,
			Values:     values,
			Name:       opts.ValueColumn,
		}, nil
	}

	s := New(values)
	s.Name = opts.ValueColumn
	return s, nil
}

// LoadTableCSV loads the target series and its regressors from one CSV file with a header.
// Rows where the target or any regressor is missing are dropped from both outputs so
// that the series and frame stay aligned. Files ending in .gz are gunzipped.
func LoadTableCSV(filename string, opts *TableOptions) (*Series, *Frame, error) {
	rc, err := openCSV(filename)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	return LoadTableCSVFromReader(rc, opts)
}

// LoadTableCSVFromReader is LoadTableCSV over an io.Reader.
func LoadTableCSVFromReader(r io.Reader, opts *TableOptions) (*Series, *Frame, error) {
	if opts == nil || opts.TargetColumn == "" {
		return nil, nil, errors.New("target column is required")
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[cleanField(h)] = i
	}

	lookup := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return -1, fmt.Errorf("column %q not found in header", name)
		}
		return i, nil
	}

	targetIdx, err := lookup(opts.TargetColumn)
	if err != nil {
		return nil, nil, err
	}
	dateIdx := -1
	if opts.DateColumn != "" {
		if dateIdx, err = lookup(opts.DateColumn); err != nil {
			return nil, nil, err
		}
	}
	exogIdx := make([]int, len(opts.ExogColumns))
	for j, name := range opts.ExogColumns {
		if exogIdx[j], err = lookup(name); err != nil {
			return nil, nil, err
		}
	}

	var (
		values     []float64
		timestamps []time.Time
		exog       = make([][]float64, len(exogIdx))
		row        = make([]float64, len(exogIdx))
		line       = 1
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line++

		y, ok := parseValue(record[targetIdx])
		if !ok {
			continue
		}
		complete := true
		for j, idx := range exogIdx {
			if row[j], ok = parseValue(record[idx]); !ok {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}

		if dateIdx >= 0 {
			ts, err := parseDate(record[dateIdx], opts.DateFormat)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			timestamps = append(timestamps, ts)
		}
		values = append(values, y)
		for j := range exog {
			exog[j] = append(exog[j], row[j])
		}
	}

	if len(values) == 0 {
		return nil, nil, errors.New("no valid data found in CSV")
	}

	series := &Series{Timestamps: timestamps, Values: values, Name: opts.TargetColumn}
	if len(exogIdx) == 0 {
		return series, nil, nil
	}

	names := make([]string, len(opts.ExogColumns))
	copy(names, opts.ExogColumns)
	frame, err := NewFrame(names, exog)
	if err != nil {
		return nil, nil, err
	}
	frame.Timestamps = timestamps
	return series, frame, nil
}

// SaveCSV saves a time series to a CSV file.
func SaveCSV(series *Series, filename string, includeIndex bool) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	switch {
	case includeIndex && series.Indexed():
		writer.WriteString("ds,y\n")
	case includeIndex:
		writer.WriteString("index,y\n")
	default:
		writer.WriteString("y\n")
	}

	for i, v := range series.Values {
		if includeIndex {
			if series.Indexed() {
				writer.WriteString(series.Timestamps[i].Format("2006-01-02"))
			} else {
				writer.WriteString(strconv.Itoa(i + 1))
			}
			writer.WriteString(",")
		}
		writer.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		writer.WriteString("\n")
	}

	return writer.Flush()
}

func cleanField(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\""))
}

func parseValue(field string) (float64, bool) {
	s := cleanField(field)
	if s == "" || s == "NA" || s == "NaN" || s == "null" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseDate(field, preferred string) (time.Time, error) {
	s := cleanField(field)
	if preferred != "" {
		if ts, err := time.Parse(preferred, s); err == nil {
			return ts, nil
		}
	}
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
