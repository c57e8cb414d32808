package deviceHandler

import (
	deviceService "OptiSense/internal/api/device/service"
	"OptiSense/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type DeviceHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	deviceService deviceService.IDeviceService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	deviceService deviceService.IDeviceService,
) *DeviceHandler {
	return &DeviceHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		deviceService: deviceService,
	}
}

func (h *DeviceHandler) Start(srv fiber.Router) {
	devices := srv.Group("/devices")

	devices.Post("/register", h.middleware.NewRateLimiter, h.Register)
}
