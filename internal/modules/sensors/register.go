package sensors

import (
	"net/http"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/controller"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/repository"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/service"
)

func RegisterFeature(mux *http.ServeMux, dashboard service.Dashboard, debug bool) {
	sensorController := controller.NewSensorController(dashboard, debug)
	sensorController.RegisterRoutes(mux)
}

// RegisterArchive exposes the snapshot archive read API.
func RegisterArchive(mux *http.ServeMux, repo repository.ArchiveRepository, debug bool) {
	archiveController := controller.NewArchiveController(repo, debug)
	archiveController.RegisterRoutes(mux)
}
