package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/config"
	db "github.com/Henry-Berlin/dash-sensor-anzeige/internal/db"
	httpapi "github.com/Henry-Berlin/dash-sensor-anzeige/internal/httpapi"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/migrate"
	sensors "github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/loader"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/repository"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/service"
	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/types"
	sensorviews "github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/views"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dataDir", cfg.DataDir,
		"dataExt", cfg.DataExt,
		"timezone", cfg.Location.String(),
		"skipInvalidFiles", cfg.SkipInvalidFiles,
		"archive", cfg.ArchiveEnabled(),
		"archivePath", cfg.ArchivePath,
		"dbDriver", cfg.Driver,
	)

	mux, cleanup, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ln, err := httpapi.Listen(cfg.HTTPAddr)
	if err != nil {
		return err
	}
	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// Build loads the snapshot, archives it when enabled and returns the mux
// serving the dashboard. cleanup releases the archive connection.
func Build(ctx context.Context, cfg config.Config) (mux *http.ServeMux, cleanup func(), err error) {
	cleanup = func() {}

	res, err := loader.Load(cfg.DataDir, loader.Options{
		Extension:   cfg.DataExt,
		Location:    cfg.Location,
		SkipInvalid: cfg.SkipInvalidFiles,
		Logger:      slog.Default(),
	})
	if err != nil {
		return nil, cleanup, fmt.Errorf("load datasets: %w", err)
	}
	slog.Info("datasets loaded", "count", len(res.Datasets), "skipped", len(res.Skipped))

	var probes []httpapi.Probe
	var archive repository.ArchiveRepository
	if cfg.ArchiveEnabled() {
		repo, closeArchive, err := openArchive(ctx, cfg, res.Datasets)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = closeArchive
		archive = repo
		probes = append(probes, repo)
	}

	if err := sensorviews.LoadTemplates(); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("load templates: %w", err)
	}
	dashboard, err := service.NewDashboard(res.Datasets, slog.Default())
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("build dashboard: %w", err)
	}
	probes = append(probes, dashboard)

	mux = httpapi.NewMux(probes...)
	sensors.RegisterFeature(mux, dashboard, cfg.Debug())
	if archive != nil {
		sensors.RegisterArchive(mux, archive, cfg.Debug())
	}
	return mux, cleanup, nil
}

func openArchive(ctx context.Context, cfg config.Config, datasets []types.Dataset) (repository.ArchiveRepository, func(), error) {
	dbConn, err := db.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: %w", err)
	}
	closeDB := func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}

	if _, err := migrate.Run(dbConn); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("archive migrate: %w", err)
	}

	repo := repository.NewRepository(dbConn)
	if err := repo.SaveSnapshot(ctx, datasets, time.Now()); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("archive snapshot: %w", err)
	}
	archived, err := repo.GetSensors(ctx)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("archive read back: %w", err)
	}
	slog.Info("snapshot archived", "sensors", len(archived))
	return repo, closeDB, nil
}
