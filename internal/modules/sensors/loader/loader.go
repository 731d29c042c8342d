// Package loader reads per-sensor CSV files into datasets.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/types"
)

const DefaultExtension = ".csv"

const (
	columnTemperature = "temperature"
	columnTimestamp   = "timestamp"
	columnHumidity    = "humidity"
)

// headerAliases maps accepted header names (lower-cased) to their column.
var headerAliases = map[string]string{
	"temperature":      columnTemperature,
	"temperatur":       columnTemperature,
	"timestamp":        columnTimestamp,
	"zeitstempel":      columnTimestamp,
	"humidity":         columnHumidity,
	"luftfeuchtigkeit": columnHumidity,
}

var requiredColumns = []string{columnTimestamp, columnTemperature, columnHumidity}

type Options struct {
	// Extension selects candidate files by suffix. Empty means DefaultExtension.
	Extension string
	// Location interprets timestamps. Nil means UTC.
	Location *time.Location
	// SkipInvalid turns per-file failures into warnings instead of aborting.
	SkipInvalid bool
	Logger      *slog.Logger
}

type Result struct {
	Datasets []types.Dataset
	// Skipped holds per-file errors when Options.SkipInvalid is set.
	Skipped []error
}

// ListCandidateFiles returns the names of entries in dir ending in ext,
// sorted lexicographically.
func ListCandidateFiles(dir, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DirectoryNotFoundError{Dir: dir, Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Load parses every candidate file in dir in filename order.
func Load(dir string, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	names, err := ListCandidateFiles(dir, opts.Extension)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("candidate files listed", "dir", dir, "count", len(names))

	res := Result{Datasets: make([]types.Dataset, 0, len(names))}
	for _, name := range names {
		ds, err := ParseFile(filepath.Join(dir, name), opts.Location)
		if err != nil {
			if !opts.SkipInvalid {
				return Result{}, err
			}
			logger.Warn("skipping invalid sensor file", "file", name, "error", err)
			res.Skipped = append(res.Skipped, err)
			continue
		}
		logger.Debug("sensor file loaded", "file", name, "readings", len(ds.Readings))
		res.Datasets = append(res.Datasets, ds)
	}
	return res, nil
}

// ParseFile reads one comma-delimited file with a header row.
func ParseFile(path string, loc *time.Location) (types.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close sensor file", "file", path, "error", err)
		}
	}()

	base := filepath.Base(path)
	readings, err := parseReadings(f, base, loc)
	if err != nil {
		return types.Dataset{}, err
	}
	return types.Dataset{
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		Source:   path,
		Readings: readings,
	}, nil
}

func parseReadings(r io.Reader, file string, loc *time.Location) ([]types.Reading, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnError{File: file, Column: "Timestamp"}
	}
	if err != nil {
		return nil, &ParseError{File: file, Line: 1, Err: err}
	}
	idx, err := columnIndexes(header, file)
	if err != nil {
		return nil, err
	}
	width := len(header)

	readings := []types.Reading{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return nil, &ParseError{File: file, Line: line, Err: err}
		}
		line, _ := cr.FieldPos(0)
		rec, err = alignRecord(rec, width, idx[columnTemperature])
		if err != nil {
			return nil, &ParseError{File: file, Line: line, Err: err}
		}

		raw := rec[idx[columnTemperature]]
		temp, err := ParseDecimalComma(raw)
		if err != nil {
			return nil, &ParseError{File: file, Line: line, Column: header[idx[columnTemperature]], Value: raw, Err: err}
		}
		raw = rec[idx[columnTimestamp]]
		ts, err := ParseTimestamp(raw, loc)
		if err != nil {
			return nil, &ParseError{File: file, Line: line, Column: header[idx[columnTimestamp]], Value: raw, Err: err}
		}
		raw = rec[idx[columnHumidity]]
		hum, err := ParseNumber(raw)
		if err != nil {
			return nil, &ParseError{File: file, Line: line, Column: header[idx[columnHumidity]], Value: raw, Err: err}
		}
		readings = append(readings, types.Reading{Time: ts, Temperature: temp, Humidity: hum})
	}
	return readings, nil
}

func columnIndexes(header []string, file string) (map[string]int, error) {
	idx := make(map[string]int, len(requiredColumns))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		col, ok := headerAliases[name]
		if !ok {
			continue
		}
		if _, seen := idx[col]; !seen {
			idx[col] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &MissingColumnError{File: file, Column: displayName(col)}
		}
	}
	return idx, nil
}

// alignRecord rejoins a temperature value whose unquoted decimal comma split
// it into two fields. Only a single surplus field is repaired, and only when
// the rejoined value is a decimal-comma number.
func alignRecord(rec []string, width, tempIdx int) ([]string, error) {
	switch len(rec) {
	case width:
		return rec, nil
	case width + 1:
		joined := rec[tempIdx] + "," + rec[tempIdx+1]
		if !decimalCommaRe.MatchString(strings.TrimSpace(joined)) {
			return nil, fmt.Errorf("%w: got %d, want %d: surplus field is not part of the temperature (%q); quote decimal commas in other columns",
				ErrFieldCount, len(rec), width, strings.Join(rec, ","))
		}
		out := make([]string, 0, width)
		out = append(out, rec[:tempIdx]...)
		out = append(out, joined)
		out = append(out, rec[tempIdx+2:]...)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(rec), width)
	}
}

func displayName(col string) string {
	switch col {
	case columnTemperature:
		return "Temperature"
	case columnTimestamp:
		return "Timestamp"
	default:
		return "Humidity"
	}
}
