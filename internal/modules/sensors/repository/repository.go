package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/modules/sensors/types"
)

//go:embed sql/clear-snapshot.sql
var clearSnapshotSQL string

//go:embed sql/insert-sensor.sql
var insertSensorSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-sensors.sql
var getSensorsSQL string

//go:embed sql/get-readings.sql
var getReadingsSQL string

// ArchiveRepository stores the loaded snapshot for downstream consumers.
type ArchiveRepository interface {
	// SaveSnapshot replaces the archive contents with datasets in one transaction.
	SaveSnapshot(ctx context.Context, datasets []types.Dataset, loadedAt time.Time) error
	GetSensors(ctx context.Context) ([]types.ArchivedSensor, error)
	GetReadings(ctx context.Context, position int) ([]types.Reading, error)
	Ping() error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ArchiveRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) SaveSnapshot(ctx context.Context, datasets []types.Dataset, loadedAt time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback snapshot", "error", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, clearSnapshotSQL); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	readingStmt, err := tx.PrepareContext(ctx, insertReadingSQL)
	if err != nil {
		return fmt.Errorf("prepare insert reading: %w", err)
	}
	defer func() {
		if closeErr := readingStmt.Close(); closeErr != nil {
			slog.Error("close insert reading stmt", "error", closeErr)
		}
	}()

	loadedAtStr := loadedAt.UTC().Format(time.RFC3339Nano)
	for pos, d := range datasets {
		res, execErr := tx.ExecContext(ctx, insertSensorSQL, pos, d.Name, d.Source, loadedAtStr)
		if execErr != nil {
			err = fmt.Errorf("insert sensor %q: %w", d.Name, execErr)
			return err
		}
		sensorID, idErr := res.LastInsertId()
		if idErr != nil {
			err = fmt.Errorf("sensor id %q: %w", d.Name, idErr)
			return err
		}
		for row, rd := range d.Readings {
			ts := rd.Time.UTC().Format(time.RFC3339Nano)
			if _, execErr := readingStmt.ExecContext(ctx, sensorID, row, ts, rd.Temperature, rd.Humidity); execErr != nil {
				err = fmt.Errorf("insert reading %s row %d: %w", d.Name, row, execErr)
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetSensors(ctx context.Context) ([]types.ArchivedSensor, error) {
	rows, err := r.db.QueryContext(ctx, getSensorsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close sensors rows", "error", err)
		}
	}()
	var out []types.ArchivedSensor
	for rows.Next() {
		var s types.ArchivedSensor
		var loadedAt string
		if err := rows.Scan(&s.Position, &s.Name, &s.Source, &loadedAt, &s.Readings); err != nil {
			return nil, err
		}
		s.LoadedAt, err = parseTimestamp(loadedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetReadings(ctx context.Context, position int) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getReadingsSQL, position)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()
	var out []types.Reading
	for rows.Next() {
		var rec types.Reading
		var ts string
		if err := rows.Scan(&ts, &rec.Temperature, &rec.Humidity); err != nil {
			return nil, err
		}
		rec.Time, err = parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) Ping() error {
	var ok int
	if err := r.db.QueryRow(`SELECT 1`).Scan(&ok); err != nil {
		return fmt.Errorf("archive ping: %w", err)
	}
	return nil
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	return t, nil
}
