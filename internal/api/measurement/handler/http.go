package measurementHandler

import (
	measurementService "OptiSense/internal/api/measurement/service"
	"OptiSense/internal/middleware"
	"OptiSense/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MeasurementHandler struct {
	log                *logrus.Logger
	validator          *validator.Validate
	middleware         middleware.Middleware
	measurementService measurementService.IMeasurementService
	utils              utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	measurementService measurementService.IMeasurementService,
	utils utils.IUtils,
) *MeasurementHandler {
	return &MeasurementHandler{
		log:                log,
		validator:          validate,
		middleware:         middleware,
		measurementService: measurementService,
		utils:              utils,
	}
}

func (h *MeasurementHandler) Start(srv fiber.Router) {
	measurements := srv.Group("/measurements")

	measurements.Post("/compute", h.Compute)
	measurements.Post("/image/probe", h.ProbeImage)
	measurements.Post("/records", h.middleware.NewTokenMiddleware, h.SaveRecord)
	measurements.Get("/records", h.middleware.NewTokenMiddleware, h.GetRecords)
	measurements.Get("/records/:id", h.middleware.NewTokenMiddleware, h.GetRecordByID)
	measurements.Delete("/records/:id", h.middleware.NewTokenMiddleware, h.DeleteRecord)
	measurements.Post("/records/:id/share", h.middleware.NewTokenMiddleware, h.ShareRecord)
}
