package handlerUtil

import (
	"OptiSense/internal/api/detection"
	"OptiSense/internal/api/device"
	"OptiSense/internal/api/measurement"
	"OptiSense/pkg/log"
	"OptiSense/pkg/response"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	// Measurement domain errors
	if errors.Is(err, measurement.ErrNoResult) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Measurement could not be computed")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Measurement could not be computed from the given markers",
			"code":    "NO_RESULT",
		})
	}

	if errors.Is(err, measurement.ErrRecordNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Measurement record not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Measurement record not found",
			"code":    "RECORD_NOT_FOUND",
		})
	}

	if errors.Is(err, measurement.ErrRecordNotOwned) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Measurement record does not belong to device")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Measurement record does not belong to this device",
			"code":    "RECORD_NOT_OWNED",
		})
	}

	if errors.Is(err, measurement.ErrMissingPatientLabel) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Patient label missing")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Patient label is required",
			"code":    "MISSING_PATIENT_LABEL",
		})
	}

	if errors.Is(err, measurement.ErrInvalidFrameHeight) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Invalid frame height")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Frame height must be a positive number of millimetres",
			"code":    "INVALID_FRAME_HEIGHT",
		})
	}

	if errors.Is(err, measurement.ErrCreateRecord) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Failed to save measurement record")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save measurement record",
		})
	}

	if errors.Is(err, measurement.ErrShareRecord) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Failed to share measurement record")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to share measurement record",
		})
	}

	// Detection domain errors
	if errors.Is(err, detection.ErrNoDetection) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No landmarks detected")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No face or frame detected in the image",
			"code":    "NO_DETECTION",
		})
	}

	if errors.Is(err, detection.ErrDetectionFailed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Landmark detection service failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Landmark detection service failed",
		})
	}

	if errors.Is(err, detection.ErrInternalServerError) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Internal server error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	// Device domain errors
	if errors.Is(err, device.ErrRegisterDevice) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Failed to register device")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register device",
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
