package measurementHandler

import (
	"OptiSense/internal/api/measurement"
	"OptiSense/internal/entity"
	contextPkg "OptiSense/pkg/context"
	"OptiSense/pkg/handlerUtil"
	jwtPkg "OptiSense/pkg/jwt"
	"OptiSense/pkg/log"
	"OptiSense/pkg/optics"
	"encoding/json"
	"errors"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"time"
)

func (h *MeasurementHandler) Compute(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing compute request")

	var req measurement.ComputeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.measurementService.Compute(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "compute")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, measurement.ComputeResponse{
			Result: *result,
		})
	}
}

// ProbeImage reports the native pixel sizes and aspect ratio of an uploaded
// photo. The client calls it once per loaded image and resets its markers to
// the defaults afterwards.
func (h *MeasurementHandler) ProbeImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing image probe request")

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("image file is required"), ctx.Path())
	}

	if err := h.utils.ValidateImageFile(file); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "validate_image_file")
	}

	fileContent, err := file.Open()
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_file")
	}
	defer fileContent.Close()

	dims, err := h.utils.DecodeImageDimensions(fileContent)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "decode_image_dimensions")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, measurement.ProbeImageResponse{
		Dimensions: dims,
		Defaults:   optics.DefaultMeasurements(),
	})
}

func (h *MeasurementHandler) SaveRecord(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing save record request")

	device, err := jwtPkg.GetDeviceSession(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req measurement.SaveRecordRequest

	// Multipart uploads carry the marker payload as a JSON form field next to
	// the photo; plain JSON bodies have no photo.
	photo, photoErr := ctx.FormFile("photo")
	if photoErr == nil {
		if err := json.Unmarshal([]byte(ctx.FormValue("payload")), &req); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_payload_field")
		}
	} else {
		photo = nil
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	record, err := h.measurementService.SaveRecord(c, device.ID, req, photo)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "save_record")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, makeRecordResponse(record))
	}
}

func (h *MeasurementHandler) GetRecords(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing get records request")

	device, err := jwtPkg.GetDeviceSession(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	records, err := h.measurementService.GetRecordsByDeviceID(c, device.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_records")
	}

	responses := make([]measurement.RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, makeRecordResponse(record))
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, measurement.RecordListResponse{
			Records: responses,
			Total:   len(responses),
		})
	}
}

func (h *MeasurementHandler) GetRecordByID(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing get record by ID request")

	device, err := jwtPkg.GetDeviceSession(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("record ID is required"), ctx.Path())
	}

	record, err := h.measurementService.GetRecordByID(c, device.ID, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_record")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, makeRecordResponse(record))
	}
}

func (h *MeasurementHandler) DeleteRecord(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing delete record request")

	device, err := jwtPkg.GetDeviceSession(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("record ID is required"), ctx.Path())
	}

	if err := h.measurementService.DeleteRecord(c, device.ID, id); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_record")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Record deleted successfully",
		})
	}
}

func (h *MeasurementHandler) ShareRecord(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing share record request")

	device, err := jwtPkg.GetDeviceSession(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("record ID is required"), ctx.Path())
	}

	var req measurement.ShareRecordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.measurementService.ShareRecord(c, device.ID, id, req.Email); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "share_record")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Report sent successfully",
		})
	}
}

func makeRecordResponse(record entity.MeasurementRecord) measurement.RecordResponse {
	return measurement.RecordResponse{
		ID:                 record.ID,
		PatientLabel:       record.PatientLabel,
		FrameHeightMm:      record.FrameHeightMm,
		PixelPerMm:         record.PixelPerMm,
		LeftPupilHeightMm:  record.LeftPupilHeightMm,
		RightPupilHeightMm: record.RightPupilHeightMm,
		PupilDistanceMm:    record.PupilDistanceMm,
		ImageLink:          record.ImageLink,
		CreatedAt:          record.CreatedAt.Format(time.RFC3339),
	}
}
