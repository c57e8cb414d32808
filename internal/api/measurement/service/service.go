package measurementService

import (
	"OptiSense/internal/api/measurement"
	measurementRepository "OptiSense/internal/api/measurement/repository"
	"OptiSense/internal/entity"
	"OptiSense/pkg/mailer"
	"OptiSense/pkg/optics"
	"OptiSense/pkg/s3"
	"OptiSense/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"mime/multipart"
)

type IMeasurementService interface {
	Compute(ctx context.Context, req measurement.ComputeRequest) (*optics.CalculationResult, error)
	SaveRecord(ctx context.Context, deviceID string, req measurement.SaveRecordRequest, photo *multipart.FileHeader) (entity.MeasurementRecord, error)
	GetRecordByID(ctx context.Context, deviceID string, id string) (entity.MeasurementRecord, error)
	GetRecordsByDeviceID(ctx context.Context, deviceID string) ([]entity.MeasurementRecord, error)
	DeleteRecord(ctx context.Context, deviceID string, id string) error
	ShareRecord(ctx context.Context, deviceID string, id string, email string) error
}

type measurementService struct {
	log                   *logrus.Logger
	measurementRepository measurementRepository.Repository
	s3                    s3.ItfS3
	mailer                mailer.ItfMailer
	utils                 utils.IUtils
}

func NewMeasurementService(
	log *logrus.Logger,
	mr measurementRepository.Repository,
	s3 s3.ItfS3,
	mailer mailer.ItfMailer,
	utils utils.IUtils,
) IMeasurementService {
	return &measurementService{
		log:                   log,
		measurementRepository: mr,
		s3:                    s3,
		mailer:                mailer,
		utils:                 utils,
	}
}
