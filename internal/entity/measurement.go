package entity

import (
	"OptiSense/internal/api/measurement"
	"OptiSense/pkg/optics"
	"time"
)

// MeasurementRecord is one archived measurement: the millimeter results plus
// the calibration length they were derived from. Marker positions are not
// persisted; only derived results survive an image change.
type MeasurementRecord struct {
	ID                 string    `json:"id"`
	DeviceID           string    `json:"device_id"`
	PatientLabel       string    `json:"patient_label"`
	FrameHeightMm      float64   `json:"frame_height_mm"`
	PixelPerMm         float64   `json:"pixel_per_mm"`
	LeftPupilHeightMm  float64   `json:"left_pupil_height_mm"`
	RightPupilHeightMm float64   `json:"right_pupil_height_mm"`
	PupilDistanceMm    float64   `json:"pupil_distance_mm"`
	ImageLink          string    `json:"image_link"`
	CreatedAt          time.Time `json:"created_at"`
}

func (r *MeasurementRecord) Validate() error {
	if r.PatientLabel == "" {
		return measurement.ErrMissingPatientLabel
	}
	if r.FrameHeightMm <= 0 {
		return measurement.ErrInvalidFrameHeight
	}
	return nil
}

// NewRecordFromResult snapshots a computation for the history store.
func NewRecordFromResult(id, deviceID, patientLabel string, frameHeightMm float64, result optics.CalculationResult) MeasurementRecord {
	return MeasurementRecord{
		ID:                 id,
		DeviceID:           deviceID,
		PatientLabel:       patientLabel,
		FrameHeightMm:      frameHeightMm,
		PixelPerMm:         result.PixelPerMm,
		LeftPupilHeightMm:  result.LeftPupilHeightMm,
		RightPupilHeightMm: result.RightPupilHeightMm,
		PupilDistanceMm:    result.PupilDistanceMm,
		CreatedAt:          time.Now(),
	}
}
