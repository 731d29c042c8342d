package controller

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/repository"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/types"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/utils"
)

type archiveControllerImpl struct {
	repo  repository.ArchiveRepository
	debug bool
}

// NewArchiveController serves the archived snapshot read back from the database.
func NewArchiveController(repo repository.ArchiveRepository, debug bool) SensorController {
	return &archiveControllerImpl{repo: repo, debug: debug}
}

func (c *archiveControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/archive/sensors", c.handleSensors)
	mux.HandleFunc("GET /api/v1/archive/sensors/{id}/readings", c.handleReadings)
}

func (c *archiveControllerImpl) handleSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := c.repo.GetSensors(r.Context())
	if err != nil {
		slog.Error("archive sensors: query failed", "error", err)
		utils.WriteServerError(w, c.debug, "failed to read archive", err)
		return
	}
	if sensors == nil {
		sensors = []types.ArchivedSensor{}
	}
	utils.WriteJSON(w, http.StatusOK, sensors)
}

func (c *archiveControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
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

	readings, err := c.repo.GetReadings(r.Context(), id)
	if err != nil {
		slog.Error("archive readings: query failed", "sensor_id", id, "error", err)
		utils.WriteServerError(w, c.debug, "failed to read archive", err)
		return
	}
	if len(readings) == 0 {
		// an archived sensor may have no readings; an unknown position is a 404
		sensors, err := c.repo.GetSensors(r.Context())
		if err != nil {
			slog.Error("archive readings: sensor lookup failed", "sensor_id", id, "error", err)
			utils.WriteServerError(w, c.debug, "failed to read archive", err)
			return
		}
		if !slices.ContainsFunc(sensors, func(s types.ArchivedSensor) bool { return s.Position == id }) {
			utils.WriteError(w, http.StatusNotFound, "sensor not archived")
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"sensorId": id,
		"from":     zeroAsNullTime(from),
		"to":       zeroAsNullTime(to),
		"limit":    limit,
		"items":    filterReadings(readings, from, to, limit),
	})
}
