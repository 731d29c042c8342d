// Package charts describes and renders the per-sensor dual-axis chart.
package charts

import (
	"time"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/types"
)

const (
	TitleSuffix          = " – Temperature & Humidity"
	XAxisTitle           = "Time"
	TemperatureAxisTitle = "Temperature (°C)"
	HumidityAxisTitle    = "Humidity (%)"

	DefaultWidth  = 1024
	DefaultHeight = 400
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

type Axis struct {
	Title string `json:"title"`
	Side  Side   `json:"side"`
}

// Series is one line plotted against the shared time axis.
type Series struct {
	Name   string      `json:"name"`
	Axis   Side        `json:"axis"`
	Color  string      `json:"color"`
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}

type Margins struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Spec is a renderer-independent chart description.
type Spec struct {
	Title     string   `json:"title"`
	XAxis     Axis     `json:"xAxis"`
	LeftAxis  Axis     `json:"leftAxis"`
	RightAxis Axis     `json:"rightAxis"`
	Series    []Series `json:"series"`
	Margins   Margins  `json:"margins"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
}

// DefaultMargins are the fixed layout margins of every sensor chart.
var DefaultMargins = Margins{Left: 60, Right: 60, Top: 50, Bottom: 50}

// Build returns the dual-axis chart for ds: temperature on the left axis,
// humidity on the right, both over the same time axis.
func Build(ds types.Dataset) Spec {
	n := len(ds.Readings)
	times := make([]time.Time, 0, n)
	temps := make([]float64, 0, n)
	hums := make([]float64, 0, n)
	for _, r := range ds.Readings {
		times = append(times, r.Time)
		temps = append(temps, r.Temperature)
		hums = append(hums, r.Humidity)
	}

	return Spec{
		Title:     ds.Name + TitleSuffix,
		XAxis:     Axis{Title: XAxisTitle},
		LeftAxis:  Axis{Title: TemperatureAxisTitle, Side: SideLeft},
		RightAxis: Axis{Title: HumidityAxisTitle, Side: SideRight},
		Series: []Series{
			{Name: TemperatureAxisTitle, Axis: SideLeft, Color: "d62728", Times: times, Values: temps},
			// the humidity series shares the x values slice with temperature
			{Name: HumidityAxisTitle, Axis: SideRight, Color: "1f77b4", Times: times, Values: hums},
		},
		Margins: DefaultMargins,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
	}
}

// Points returns the number of plotted points across all series.
func (s Spec) Points() int {
	n := 0
	for _, ser := range s.Series {
		n += len(ser.Values)
	}
	return n
}
