package measurementService

import (
	"OptiSense/internal/api/measurement"
	measurementRepository "OptiSense/internal/api/measurement/repository"
	"OptiSense/internal/entity"
	"OptiSense/pkg/optics"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type fakeRecordStore struct {
	records   map[string]entity.MeasurementRecord
	createErr error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string]entity.MeasurementRecord)}
}

func (f *fakeRecordStore) CreateRecord(c context.Context, record entity.MeasurementRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeRecordStore) GetRecordByID(c context.Context, id string) (entity.MeasurementRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return entity.MeasurementRecord{}, measurement.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeRecordStore) GetRecordsByDeviceID(c context.Context, deviceID string) ([]entity.MeasurementRecord, error) {
	var out []entity.MeasurementRecord
	for _, record := range f.records {
		if record.DeviceID == deviceID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) DeleteRecord(c context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return measurement.ErrRecordNotFound
	}
	delete(f.records, id)
	return nil
}

type fakeRepository struct {
	store *fakeRecordStore
}

func (f *fakeRepository) NewClient(tx bool) (measurementRepository.Client, error) {
	return measurementRepository.Client{
		Record:   f.store,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeS3 struct {
	uploads   int
	deleted   []string
	uploadErr error
}

func (f *fakeS3) UploadFile(file *multipart.FileHeader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	return "https://bucket.s3.amazonaws.com/photos/test.jpg", nil
}

func (f *fakeS3) PresignUrl(fileName string) (string, error) {
	return fileName + "?sig=test", nil
}

func (f *fakeS3) DeleteFile(fileName string) error {
	f.deleted = append(f.deleted, fileName)
	return nil
}

type fakeMailer struct {
	sent    []string
	sendErr error
}

func (f *fakeMailer) SendMeasurementReport(recipient string, record entity.MeasurementRecord) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, recipient)
	return nil
}

type fakeUtils struct{}

func (fakeUtils) NewULIDFromTimestamp(t time.Time) (string, error) {
	return "01TESTULID0000000000000000", nil
}

func (fakeUtils) ValidateImageFile(file *multipart.FileHeader) error { return nil }

func (fakeUtils) ConvertFileToBase64(file multipart.File) (string, error) { return "", nil }

func (fakeUtils) DecodeImageDimensions(r io.Reader) (optics.ImageDimensions, error) {
	return optics.NewImageDimensions(1000, 800), nil
}

type serviceFixture struct {
	svc    IMeasurementService
	store  *fakeRecordStore
	s3     *fakeS3
	mailer *fakeMailer
}

func newFixture() *serviceFixture {
	store := newFakeRecordStore()
	s3Client := &fakeS3{}
	reportMailer := &fakeMailer{}
	svc := NewMeasurementService(
		logrus.New(),
		&fakeRepository{store: store},
		s3Client,
		reportMailer,
		fakeUtils{},
	)

	return &serviceFixture{svc: svc, store: store, s3: s3Client, mailer: reportMailer}
}

func validMarkers() measurement.MarkersRequest {
	return measurement.MarkersRequest{
		FrameTopY:    0.3,
		FrameBottomY: 0.5,
		LeftPupil:    measurement.PointRequest{X: 0.6, Y: 0.4},
		RightPupil:   measurement.PointRequest{X: 0.4, Y: 0.4},
		Rotation:     0,
	}
}

func TestComputeReturnsResult(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Compute(context.Background(), measurement.ComputeRequest{
		Markers:       validMarkers(),
		FrameHeightMm: 40,
		ImageWidth:    1000,
		ImageHeight:   1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(result.LeftPupilHeightMm-20) > 1e-9 {
		t.Errorf("LeftPupilHeightMm = %v, want 20", result.LeftPupilHeightMm)
	}
	if math.Abs(result.PixelPerMm-5) > 1e-9 {
		t.Errorf("PixelPerMm = %v, want 5", result.PixelPerMm)
	}
}

func TestComputeNoResult(t *testing.T) {
	f := newFixture()

	markers := validMarkers()
	markers.FrameBottomY = markers.FrameTopY

	_, err := f.svc.Compute(context.Background(), measurement.ComputeRequest{
		Markers:       markers,
		FrameHeightMm: 40,
		ImageWidth:    1000,
		ImageHeight:   1000,
	})
	if !errors.Is(err, measurement.ErrNoResult) {
		t.Errorf("err = %v, want ErrNoResult", err)
	}
}

func TestSaveRecordRecomputesAndStores(t *testing.T) {
	f := newFixture()

	record, err := f.svc.SaveRecord(context.Background(), "device-1", measurement.SaveRecordRequest{
		Markers:       validMarkers(),
		FrameHeightMm: 40,
		ImageWidth:    1000,
		ImageHeight:   1000,
		PatientLabel:  "J. Smith",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.DeviceID != "device-1" {
		t.Errorf("DeviceID = %q, want device-1", record.DeviceID)
	}
	if math.Abs(record.LeftPupilHeightMm-20) > 1e-9 {
		t.Errorf("LeftPupilHeightMm = %v, want 20", record.LeftPupilHeightMm)
	}
	if _, ok := f.store.records[record.ID]; !ok {
		t.Error("record was not persisted")
	}
	if f.s3.uploads != 0 {
		t.Errorf("uploads = %d, want 0 without a photo", f.s3.uploads)
	}
}

func TestSaveRecordRejectsMissingLabel(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SaveRecord(context.Background(), "device-1", measurement.SaveRecordRequest{
		Markers:       validMarkers(),
		FrameHeightMm: 40,
		ImageWidth:    1000,
		ImageHeight:   1000,
	}, nil)
	if !errors.Is(err, measurement.ErrMissingPatientLabel) {
		t.Errorf("err = %v, want ErrMissingPatientLabel", err)
	}
}

func TestSaveRecordRejectsUncomputableMarkers(t *testing.T) {
	f := newFixture()

	markers := validMarkers()
	markers.FrameTopY = 0.5
	markers.FrameBottomY = 0.5

	_, err := f.svc.SaveRecord(context.Background(), "device-1", measurement.SaveRecordRequest{
		Markers:       markers,
		FrameHeightMm: 40,
		ImageWidth:    1000,
		ImageHeight:   1000,
		PatientLabel:  "J. Smith",
	}, nil)
	if !errors.Is(err, measurement.ErrNoResult) {
		t.Errorf("err = %v, want ErrNoResult", err)
	}
	if len(f.store.records) != 0 {
		t.Error("uncomputable request must not be archived")
	}
}

func TestSaveRecordWrapsInsertFailure(t *testing.T) {
	f := newFixture()
	f.store.createErr = errors.New("db down")

	_, err := f.svc.SaveRecord(context.Background(), "device-1", measurement.SaveRecordRequest{
		Markers:       validMarkers(),
		FrameHeightMm: 40,
		ImageWidth:    1000,
		ImageHeight:   1000,
		PatientLabel:  "J. Smith",
	}, nil)
	if !errors.Is(err, measurement.ErrCreateRecord) {
		t.Errorf("err = %v, want ErrCreateRecord", err)
	}
}

func TestGetRecordByIDOwnership(t *testing.T) {
	f := newFixture()
	f.store.records["rec-1"] = entity.MeasurementRecord{ID: "rec-1", DeviceID: "device-1"}

	if _, err := f.svc.GetRecordByID(context.Background(), "device-1", "rec-1"); err != nil {
		t.Errorf("owner read failed: %v", err)
	}

	_, err := f.svc.GetRecordByID(context.Background(), "device-2", "rec-1")
	if !errors.Is(err, measurement.ErrRecordNotOwned) {
		t.Errorf("err = %v, want ErrRecordNotOwned", err)
	}

	_, err = f.svc.GetRecordByID(context.Background(), "device-1", "missing")
	if !errors.Is(err, measurement.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteRecordRemovesArchivedPhoto(t *testing.T) {
	f := newFixture()
	f.store.records["rec-1"] = entity.MeasurementRecord{
		ID:        "rec-1",
		DeviceID:  "device-1",
		ImageLink: "https://bucket.s3.amazonaws.com/photos/rec-1.jpg",
	}

	if err := f.svc.DeleteRecord(context.Background(), "device-1", "rec-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := f.store.records["rec-1"]; ok {
		t.Error("record still present after delete")
	}
	if len(f.s3.deleted) != 1 {
		t.Fatalf("deleted %d objects, want 1", len(f.s3.deleted))
	}
	if f.s3.deleted[0] != "https://bucket.s3.amazonaws.com/photos/rec-1.jpg" {
		t.Errorf("deleted %q, want the raw stored link, not a presigned one", f.s3.deleted[0])
	}
}

func TestGetRecordPresignsPhotoLink(t *testing.T) {
	f := newFixture()
	f.store.records["rec-1"] = entity.MeasurementRecord{
		ID:        "rec-1",
		DeviceID:  "device-1",
		ImageLink: "https://bucket.s3.amazonaws.com/photos/rec-1.jpg",
	}
	f.store.records["rec-2"] = entity.MeasurementRecord{ID: "rec-2", DeviceID: "device-1"}

	record, err := f.svc.GetRecordByID(context.Background(), "device-1", "rec-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ImageLink != "https://bucket.s3.amazonaws.com/photos/rec-1.jpg?sig=test" {
		t.Errorf("ImageLink = %q, want the presigned link", record.ImageLink)
	}

	records, err := f.svc.GetRecordsByDeviceID(context.Background(), "device-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range records {
		if r.ID == "rec-1" && r.ImageLink != "https://bucket.s3.amazonaws.com/photos/rec-1.jpg?sig=test" {
			t.Errorf("listed ImageLink = %q, want the presigned link", r.ImageLink)
		}
		if r.ID == "rec-2" && r.ImageLink != "" {
			t.Errorf("record without a photo gained a link: %q", r.ImageLink)
		}
	}
}

func TestDeleteRecordForeignDevice(t *testing.T) {
	f := newFixture()
	f.store.records["rec-1"] = entity.MeasurementRecord{ID: "rec-1", DeviceID: "device-1"}

	err := f.svc.DeleteRecord(context.Background(), "device-2", "rec-1")
	if !errors.Is(err, measurement.ErrRecordNotOwned) {
		t.Errorf("err = %v, want ErrRecordNotOwned", err)
	}
	if _, ok := f.store.records["rec-1"]; !ok {
		t.Error("foreign delete must not remove the record")
	}
}

func TestShareRecord(t *testing.T) {
	f := newFixture()
	f.store.records["rec-1"] = entity.MeasurementRecord{ID: "rec-1", DeviceID: "device-1", PatientLabel: "J. Smith"}

	if err := f.svc.ShareRecord(context.Background(), "device-1", "rec-1", "optician@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0] != "optician@example.com" {
		t.Errorf("sent = %v, want one mail to optician@example.com", f.mailer.sent)
	}
}

func TestShareRecordMailFailure(t *testing.T) {
	f := newFixture()
	f.store.records["rec-1"] = entity.MeasurementRecord{ID: "rec-1", DeviceID: "device-1", PatientLabel: "J. Smith"}
	f.mailer.sendErr = errors.New("smtp refused")

	err := f.svc.ShareRecord(context.Background(), "device-1", "rec-1", "optician@example.com")
	if !errors.Is(err, measurement.ErrShareRecord) {
		t.Errorf("err = %v, want ErrShareRecord", err)
	}
}
