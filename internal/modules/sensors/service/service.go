// Package service builds the immutable dashboard snapshot served over HTTP.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/charts"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/types"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/views"
)

var ErrSensorNotFound = errors.New("sensor not found")

// Dashboard is read by the HTTP handlers. It never changes after construction.
type Dashboard interface {
	Page() []byte
	Sensors() []types.SensorSummary
	Readings(id int) ([]types.Reading, error)
	Chart(id int) (charts.Spec, []byte, error)
	Ping() error
}

type dashboardImpl struct {
	datasets []types.Dataset
	specs    []charts.Spec
	svgs     [][]byte
	page     []byte
}

// NewDashboard renders every chart and the page once. views.LoadTemplates
// must have been called.
func NewDashboard(datasets []types.Dataset, logger *slog.Logger) (Dashboard, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &dashboardImpl{
		datasets: make([]types.Dataset, len(datasets)),
		specs:    make([]charts.Spec, len(datasets)),
		svgs:     make([][]byte, len(datasets)),
	}
	copy(d.datasets, datasets)

	sections := make([]views.Section, 0, len(datasets))
	for i, ds := range d.datasets {
		spec := charts.Build(ds)
		var buf bytes.Buffer
		err := charts.RenderSVG(&buf, spec)
		switch {
		case errors.Is(err, charts.ErrNoData):
			logger.Warn("sensor has no readings", "sensor", ds.Name, "source", ds.Source)
		case err != nil:
			return nil, fmt.Errorf("sensor %q: %w", ds.Name, err)
		}
		d.specs[i] = spec
		d.svgs[i] = buf.Bytes()
		sections = append(sections, views.Section{
			ID:       i,
			Name:     ds.Name,
			Readings: len(ds.Readings),
			// text nodes are escaped by charts.RenderSVG
			Chart: template.HTML(buf.String()),
		})
	}

	var page bytes.Buffer
	if err := views.RenderPage(&page, views.BuildPage(sections)); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	d.page = page.Bytes()
	logger.Info("dashboard built", "sensors", len(d.datasets), "page_bytes", len(d.page))
	return d, nil
}

func (d *dashboardImpl) Page() []byte {
	return d.page
}

func (d *dashboardImpl) Sensors() []types.SensorSummary {
	out := make([]types.SensorSummary, 0, len(d.datasets))
	for i, ds := range d.datasets {
		out = append(out, types.Summarize(i, ds))
	}
	return out
}

func (d *dashboardImpl) Readings(id int) ([]types.Reading, error) {
	if id < 0 || id >= len(d.datasets) {
		return nil, fmt.Errorf("%w: %d", ErrSensorNotFound, id)
	}
	return d.datasets[id].Readings, nil
}

// Chart returns the spec and rendered SVG of sensor id. The SVG is empty for
// a sensor without readings.
func (d *dashboardImpl) Chart(id int) (charts.Spec, []byte, error) {
	if id < 0 || id >= len(d.datasets) {
		return charts.Spec{}, nil, fmt.Errorf("%w: %d", ErrSensorNotFound, id)
	}
	return d.specs[id], d.svgs[id], nil
}

func (d *dashboardImpl) Ping() error {
	if len(d.page) == 0 {
		return errors.New("dashboard page not rendered")
	}
	return nil
}
