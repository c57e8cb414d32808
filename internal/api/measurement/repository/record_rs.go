package measurementRepository

import (
	"OptiSense/internal/api/measurement"
	"OptiSense/internal/entity"
	contextPkg "OptiSense/pkg/context"
	"context"
	"database/sql"
	"errors"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"time"
)

type MeasurementRecordDB struct {
	ID                 sql.NullString  `db:"id"`
	DeviceID           sql.NullString  `db:"device_id"`
	PatientLabel       sql.NullString  `db:"patient_label"`
	FrameHeightMm      sql.NullFloat64 `db:"frame_height_mm"`
	PixelPerMm         sql.NullFloat64 `db:"pixel_per_mm"`
	LeftPupilHeightMm  sql.NullFloat64 `db:"left_pupil_height_mm"`
	RightPupilHeightMm sql.NullFloat64 `db:"right_pupil_height_mm"`
	PupilDistanceMm    sql.NullFloat64 `db:"pupil_distance_mm"`
	ImageLink          sql.NullString  `db:"image_link"`
	CreatedAt          time.Time       `db:"created_at"`
}

func (r *recordRepository) CreateRecord(c context.Context, record entity.MeasurementRecord) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":                    record.ID,
		"device_id":             record.DeviceID,
		"patient_label":         record.PatientLabel,
		"frame_height_mm":       record.FrameHeightMm,
		"pixel_per_mm":          record.PixelPerMm,
		"left_pupil_height_mm":  record.LeftPupilHeightMm,
		"right_pupil_height_mm": record.RightPupilHeightMm,
		"pupil_distance_mm":     record.PupilDistanceMm,
		"image_link":            record.ImageLink,
		"created_at":            time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateRecord")
		return err
	}
	query = r.q.Rebind(query)

	if _, err = r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating measurement record")
		return err
	}

	return nil
}

func (r *recordRepository) GetRecordByID(c context.Context, id string) (entity.MeasurementRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var record MeasurementRecordDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetRecordByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordByID named query preparation err")
		return entity.MeasurementRecord{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetRecordByID no rows found")
			return entity.MeasurementRecord{}, measurement.ErrRecordNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordByID execution err")
		return entity.MeasurementRecord{}, err
	}

	return r.makeMeasurementRecord(record), nil
}

func (r *recordRepository) GetRecordsByDeviceID(c context.Context, deviceID string) ([]entity.MeasurementRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var records []MeasurementRecordDB

	argsKV := map[string]interface{}{
		"device_id": deviceID,
	}

	query, args, err := sqlx.Named(queryGetRecordsByDeviceID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordsByDeviceID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &records, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordsByDeviceID execution err")
		return nil, err
	}

	result := make([]entity.MeasurementRecord, 0, len(records))
	for _, record := range records {
		result = append(result, r.makeMeasurementRecord(record))
	}

	return result, nil
}

func (r *recordRepository) DeleteRecord(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteRecord named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteRecord execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteRecord rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("DeleteRecord no rows affected")
		return measurement.ErrRecordNotFound
	}

	return nil
}

func (r *recordRepository) makeMeasurementRecord(record MeasurementRecordDB) entity.MeasurementRecord {
	return entity.MeasurementRecord{
		ID:                 record.ID.String,
		DeviceID:           record.DeviceID.String,
		PatientLabel:       record.PatientLabel.String,
		FrameHeightMm:      record.FrameHeightMm.Float64,
		PixelPerMm:         record.PixelPerMm.Float64,
		LeftPupilHeightMm:  record.LeftPupilHeightMm.Float64,
		RightPupilHeightMm: record.RightPupilHeightMm.Float64,
		PupilDistanceMm:    record.PupilDistanceMm.Float64,
		ImageLink:          record.ImageLink.String,
		CreatedAt:          record.CreatedAt,
	}
}
