package measurementRepository

const (
	queryCreateRecord = `
		INSERT INTO measurement_records (
			id,
			device_id,
			patient_label,
			frame_height_mm,
			pixel_per_mm,
			left_pupil_height_mm,
			right_pupil_height_mm,
			pupil_distance_mm,
			image_link,
			created_at
		) VALUES (
			:id,
			:device_id,
			:patient_label,
			:frame_height_mm,
			:pixel_per_mm,
			:left_pupil_height_mm,
			:right_pupil_height_mm,
			:pupil_distance_mm,
			:image_link,
			:created_at
		)
	`

	queryGetRecordByID = `
		SELECT
			id,
			device_id,
			patient_label,
			frame_height_mm,
			pixel_per_mm,
			left_pupil_height_mm,
			right_pupil_height_mm,
			pupil_distance_mm,
			image_link,
			created_at
		FROM measurement_records
		WHERE id = :id
	`

	queryGetRecordsByDeviceID = `
		SELECT
			id,
			device_id,
			patient_label,
			frame_height_mm,
			pixel_per_mm,
			left_pupil_height_mm,
			right_pupil_height_mm,
			pupil_distance_mm,
			image_link,
			created_at
		FROM measurement_records
		WHERE device_id = :device_id
		ORDER BY created_at DESC
	`

	queryDeleteRecord = `
		DELETE FROM measurement_records
		WHERE id = :id
	`
)
