package controller

import (
	"net/http"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/service"
)

type SensorController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type sensorControllerImpl struct {
	dashboard service.Dashboard
	// debug adds internal error text to 5xx bodies.
	debug bool
}

func NewSensorController(dashboard service.Dashboard, debug bool) SensorController {
	return &sensorControllerImpl{dashboard: dashboard, debug: debug}
}

func (c *sensorControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /api/v1/sensors", c.handleSensors)
	mux.HandleFunc("GET /api/v1/sensors/{id}/readings", c.handleReadings)
	mux.HandleFunc("GET /api/v1/sensors/{id}/chart", c.handleChartSpec)
	mux.HandleFunc("GET /api/v1/sensors/{id}/chart.svg", c.handleChartSVG)
}
