package charts

import (
	"errors"
	"fmt"
	"html"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a spec has nothing to plot.
var ErrNoData = errors.New("chart has no data points")

const timeAxisFormat = "02.01. 15:04"

// RenderSVG draws spec as SVG into w.
func RenderSVG(w io.Writer, spec Spec) error {
	if spec.Points() == 0 {
		return ErrNoData
	}

	var series []chart.Series
	var left, right []float64
	var times []time.Time
	for _, s := range spec.Series {
		if len(s.Times) != len(s.Values) {
			return fmt.Errorf("series %q: %d times for %d values", s.Name, len(s.Times), len(s.Values))
		}
		if len(s.Values) == 0 {
			continue
		}
		ts := chart.TimeSeries{
			Name:    svgText(s.Name),
			XValues: s.Times,
			YValues: s.Values,
			Style:   seriesStyle(s.Color),
			YAxis:   yAxisType(s.Axis),
		}
		series = append(series, ts)
		times = append(times, s.Times...)
		if s.Axis == SideRight {
			right = append(right, s.Values...)
		} else {
			left = append(left, s.Values...)
		}
	}

	width, height := spec.Width, spec.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	ch := chart.Chart{
		Title:  svgText(spec.Title),
		Width:  width,
		Height: height,
		Background: chart.Style{Padding: chart.Box{
			Top:    spec.Margins.Top,
			Left:   spec.Margins.Left,
			Right:  spec.Margins.Right,
			Bottom: spec.Margins.Bottom,
		}},
		XAxis: chart.XAxis{
			Name:           svgText(spec.XAxis.Title),
			ValueFormatter: chart.TimeValueFormatterWithFormat(timeAxisFormat),
			Range:          timeRange(times),
		},
		Series: series,
	}
	// go-chart draws its primary y axis on the right and the secondary on the left.
	// The primary range must never be empty, even with left-only series.
	if len(right) == 0 {
		ch.YAxis = chart.YAxis{Range: valueRange(left)}
	}
	if len(right) > 0 {
		ch.YAxis = chart.YAxis{Name: svgText(spec.RightAxis.Title), Range: valueRange(right)}
	}
	if len(left) > 0 {
		ch.YAxisSecondary = chart.YAxis{Name: svgText(spec.LeftAxis.Title), Range: valueRange(left)}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render chart %q: %w", spec.Title, err)
	}
	return nil
}

// svgText escapes s for an SVG text node. go-chart writes text bodies verbatim.
func svgText(s string) string {
	return html.EscapeString(s)
}

func yAxisType(side Side) chart.YAxisType {
	if side == SideRight {
		return chart.YAxisPrimary
	}
	return chart.YAxisSecondary
}

func seriesStyle(hex string) chart.Style {
	if hex == "" {
		return chart.Style{StrokeWidth: 2}
	}
	return chart.Style{StrokeColor: drawing.ColorFromHex(hex), StrokeWidth: 2}
}

// timeRange spans all timestamps, widened by an hour on each side when they
// collapse to a single instant.
func timeRange(times []time.Time) *chart.ContinuousRange {
	lo, hi := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	if lo.Equal(hi) {
		lo, hi = lo.Add(-time.Hour), hi.Add(time.Hour)
	}
	return &chart.ContinuousRange{Min: float64(lo.UnixNano()), Max: float64(hi.UnixNano())}
}

// valueRange pads the value extent by 5%, or by 1 for a constant series.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
