package measurementService

import (
	"OptiSense/internal/api/measurement"
	"OptiSense/internal/entity"
	contextPkg "OptiSense/pkg/context"
	"OptiSense/pkg/optics"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"mime/multipart"
	"time"
)

func (s *measurementService) Compute(ctx context.Context, req measurement.ComputeRequest) (*optics.CalculationResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	dims := optics.NewImageDimensions(req.ImageWidth, req.ImageHeight)
	result := optics.Compute(req.Markers.Measurements(), req.FrameHeightMm, dims)
	if result == nil {
		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"frame_height_mm": req.FrameHeightMm,
			"image_height":    req.ImageHeight,
		}).Warn("Computation preconditions not met")
		return nil, measurement.ErrNoResult
	}

	return result, nil
}

func (s *measurementService) SaveRecord(ctx context.Context, deviceID string, req measurement.SaveRecordRequest, photo *multipart.FileHeader) (entity.MeasurementRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.measurementRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.MeasurementRecord{}, err
	}

	// The millimeter values are always recomputed here; a client-supplied
	// result is never trusted into the archive.
	dims := optics.NewImageDimensions(req.ImageWidth, req.ImageHeight)
	result := optics.Compute(req.Markers.Measurements(), req.FrameHeightMm, dims)
	if result == nil {
		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"frame_height_mm": req.FrameHeightMm,
		}).Warn("Refusing to archive: computation preconditions not met")
		return entity.MeasurementRecord{}, measurement.ErrNoResult
	}

	var imageLink string
	if photo != nil {
		if err := s.utils.ValidateImageFile(photo); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"filename":   photo.Filename,
			}).Warn("Invalid photo upload")
			return entity.MeasurementRecord{}, err
		}

		uploadedFileURL, err := s.s3.UploadFile(photo)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to upload photo")
			return entity.MeasurementRecord{}, err
		}
		imageLink = uploadedFileURL
	}

	ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return entity.MeasurementRecord{}, err
	}

	record := entity.NewRecordFromResult(ULID, deviceID, req.PatientLabel, req.FrameHeightMm, *result)
	record.ImageLink = imageLink

	if err := record.Validate(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid measurement record")
		return entity.MeasurementRecord{}, err
	}

	if err := repo.Record.CreateRecord(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create measurement record")

		if imageLink != "" {
			if deleteErr := s.s3.DeleteFile(imageLink); deleteErr != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      deleteErr.Error(),
				}).Error("Failed to delete photo after record creation failure")
			}
		}

		return entity.MeasurementRecord{}, measurement.ErrCreateRecord
	}

	return record, nil
}

// getOwnedRecord fetches a record and enforces device ownership. The image
// link stays the raw stored URL; delete needs it untouched for the S3 key.
func (s *measurementService) getOwnedRecord(ctx context.Context, deviceID string, id string) (entity.MeasurementRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.measurementRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.MeasurementRecord{}, err
	}

	record, err := repo.Record.GetRecordByID(ctx, id)
	if err != nil {
		return entity.MeasurementRecord{}, err
	}

	if record.DeviceID != deviceID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  id,
		}).Warn("Record requested by foreign device")
		return entity.MeasurementRecord{}, measurement.ErrRecordNotOwned
	}

	return record, nil
}

// presignImageLink swaps the stored photo URL for a short-lived presigned one.
// The bucket is private, so the raw URL is useless to clients.
func (s *measurementService) presignImageLink(ctx context.Context, record entity.MeasurementRecord) entity.MeasurementRecord {
	if record.ImageLink == "" {
		return record
	}

	presigned, err := s.s3.PresignUrl(record.ImageLink)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"record_id":  record.ID,
			"error":      err.Error(),
		}).Warn("Failed to presign photo link")
		return record
	}

	record.ImageLink = presigned
	return record
}

func (s *measurementService) GetRecordByID(ctx context.Context, deviceID string, id string) (entity.MeasurementRecord, error) {
	record, err := s.getOwnedRecord(ctx, deviceID, id)
	if err != nil {
		return entity.MeasurementRecord{}, err
	}

	return s.presignImageLink(ctx, record), nil
}

func (s *measurementService) GetRecordsByDeviceID(ctx context.Context, deviceID string) ([]entity.MeasurementRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.measurementRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	records, err := repo.Record.GetRecordsByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	for i, record := range records {
		records[i] = s.presignImageLink(ctx, record)
	}

	return records, nil
}

func (s *measurementService) DeleteRecord(ctx context.Context, deviceID string, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	record, err := s.getOwnedRecord(ctx, deviceID, id)
	if err != nil {
		return err
	}

	repo, err := s.measurementRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	if err := repo.Record.DeleteRecord(ctx, id); err != nil {
		return err
	}

	if record.ImageLink != "" {
		if err := s.s3.DeleteFile(record.ImageLink); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"record_id":  id,
				"error":      err.Error(),
			}).Error("Failed to delete archived photo")
		}
	}

	return nil
}

func (s *measurementService) ShareRecord(ctx context.Context, deviceID string, id string, email string) error {
	requestID := contextPkg.GetRequestID(ctx)

	record, err := s.GetRecordByID(ctx, deviceID, id)
	if err != nil {
		return err
	}

	if err := s.mailer.SendMeasurementReport(email, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"record_id":  id,
			"error":      err.Error(),
		}).Error("Failed to send measurement report")
		return measurement.ErrShareRecord
	}

	return nil
}
