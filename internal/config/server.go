package config

import (
	"OptiSense/database/postgres"
	detectionHandler "OptiSense/internal/api/detection/handler"
	detectionService "OptiSense/internal/api/detection/service"
	deviceHandler "OptiSense/internal/api/device/handler"
	deviceService "OptiSense/internal/api/device/service"
	measurementHandler "OptiSense/internal/api/measurement/handler"
	measurementRepository "OptiSense/internal/api/measurement/repository"
	measurementService "OptiSense/internal/api/measurement/service"
	"OptiSense/internal/middleware"
	"OptiSense/pkg/gemini"
	"OptiSense/pkg/mailer"
	"OptiSense/pkg/redis"
	"OptiSense/pkg/s3"
	"OptiSense/pkg/utils"
	websocketPkg "OptiSense/pkg/websocket"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"os"
)

type ServerOption func(*Server) error

type Server struct {
	engine            *fiber.App
	db                *sqlx.DB
	log               *logrus.Logger
	middleware        middleware.Middleware
	validator         *validator.Validate
	utils             utils.IUtils
	handlers          []handler
	redisServer       redis.IRedis
	reportMailer      mailer.ItfMailer
	landmarkWebsocket websocketPkg.IWebsocket
	geminiClient      gemini.IGemini
	s3Client          s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMailer(reportMailer mailer.ItfMailer) ServerOption {
	return func(s *Server) error {
		s.reportMailer = reportMailer
		return nil
	}
}

func WithWebSocket(webSocket websocketPkg.IWebsocket) ServerOption {
	return func(s *Server) error {
		s.landmarkWebsocket = webSocket
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Measurement Domain
	measurementRepo := measurementRepository.New(s.db, s.log)
	measurementServices := measurementService.NewMeasurementService(s.log, measurementRepo, s.s3Client, s.reportMailer, s.utils)
	measurementHandlers := measurementHandler.New(s.log, s.validator, s.middleware, measurementServices, s.utils)

	// Detection
	detectionServices := detectionService.NewDetectionService(s.log, s.geminiClient, s.redisServer, s.landmarkWebsocket)
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, detectionServices, s.utils)

	// Device Registry
	deviceServices := deviceService.NewDeviceService(s.log, s.redisServer, s.utils)
	deviceHandlers := deviceHandler.New(s.log, s.validator, s.middleware, deviceServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, measurementHandlers, detectionHandlers, deviceHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		if s.landmarkWebsocket != nil {
			s.landmarkWebsocket.CloseConnection()
		}
		return err
	}

	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
