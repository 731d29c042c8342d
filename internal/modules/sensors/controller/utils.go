package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/types"
)

const (
	defaultReadingsLimit = 100
	maxReadingsLimit     = 1000
)

func parseSensorID(r *http.Request) (int, error) {
	s := r.PathValue("id")
	if s == "" {
		return 0, errors.New("missing sensor id")
	}
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, errors.New("invalid sensor id (expected non-negative integer)")
	}
	return id, nil
}

func parseReadingsQuery(r *http.Request) (from time.Time, to time.Time, limit int, err error) {
	q := r.URL.Query()

	if s := q.Get("from"); s != "" {
		from, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, 0, errors.New("invalid 'from' (expected RFC3339)")
		}
	}
	if s := q.Get("to"); s != "" {
		to, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, 0, errors.New("invalid 'to' (expected RFC3339)")
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, 0, errors.New("'from' must be <= 'to'")
	}

	limit = defaultReadingsLimit
	if s := q.Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return time.Time{}, time.Time{}, 0, errors.New("invalid 'limit' (expected integer)")
		}
		if n <= 0 {
			return time.Time{}, time.Time{}, 0, errors.New("'limit' must be > 0")
		}
		if n > maxReadingsLimit {
			return time.Time{}, time.Time{}, 0, errors.New("'limit' must be <= 1000")
		}
		limit = n
	}

	return from, to, limit, nil
}

// filterReadings keeps readings inside [from, to] in file order, up to limit.
// Zero bounds are open.
func filterReadings(readings []types.Reading, from, to time.Time, limit int) []types.Reading {
	out := make([]types.Reading, 0, min(limit, len(readings)))
	for _, r := range readings {
		if len(out) == limit {
			break
		}
		if !from.IsZero() && r.Time.Before(from) {
			continue
		}
		if !to.IsZero() && r.Time.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func zeroAsNullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
