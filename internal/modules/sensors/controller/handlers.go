package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/service"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/utils"
)

const svgContentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'"

func (c *sensorControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page := c.dashboard.Page()
	if len(page) == 0 {
		err := c.dashboard.Ping()
		slog.Error("dashboard page unavailable", "error", err)
		utils.WriteServerError(w, c.debug, "failed to render page", err)
		return
	}
	utils.WriteBody(w, http.StatusOK, "text/html; charset=utf-8", page)
}

func (c *sensorControllerImpl) handleSensors(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.dashboard.Sensors())
}

func (c *sensorControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
	id, err := parseSensorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	from, to, limit, err := parseReadingsQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := c.dashboard.Readings(id)
	if errors.Is(err, service.ErrSensorNotFound) {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("readings: lookup failed", "sensor_id", id, "error", err)
		utils.WriteServerError(w, c.debug, "failed to load readings", err)
		return
	}

	items := filterReadings(readings, from, to, limit)
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"sensorId": id,
		"from":     zeroAsNullTime(from),
		"to":       zeroAsNullTime(to),
		"limit":    limit,
		"items":    items,
	})
}

func (c *sensorControllerImpl) handleChartSpec(w http.ResponseWriter, r *http.Request) {
	id, err := parseSensorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	spec, _, err := c.dashboard.Chart(id)
	if errors.Is(err, service.ErrSensorNotFound) {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("chart spec: lookup failed", "sensor_id", id, "error", err)
		utils.WriteServerError(w, c.debug, "failed to load chart", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, spec)
}

func (c *sensorControllerImpl) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	id, err := parseSensorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, svg, err := c.dashboard.Chart(id)
	if errors.Is(err, service.ErrSensorNotFound) {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("chart svg: lookup failed", "sensor_id", id, "error", err)
		utils.WriteServerError(w, c.debug, "failed to load chart", err)
		return
	}
	if len(svg) == 0 {
		utils.WriteError(w, http.StatusNotFound, "sensor has no readings")
		return
	}
	w.Header().Set("Content-Security-Policy", svgContentSecurityPolicy)
	utils.WriteBody(w, http.StatusOK, "image/svg+xml", svg)
}
