package deviceService

import (
	"OptiSense/internal/api/device"
	"OptiSense/internal/entity"
	contextPkg "OptiSense/pkg/context"
	jwtPkg "OptiSense/pkg/jwt"
	"encoding/json"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"time"
)

const tokenLifetime = 30 * 24 * time.Hour

func (s *deviceService) Register(ctx context.Context, req device.RegisterRequest) (device.RegisterResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	deviceID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate device ID")
		return device.RegisterResponse{}, device.ErrRegisterDevice
	}

	session := entity.DeviceSession{
		ID:         deviceID,
		Platform:   req.Platform,
		AppVersion: req.AppVersion,
		CreatedAt:  time.Now(),
	}

	accessToken, expiresAt, err := jwtPkg.Sign(map[string]interface{}{
		"device_id":   session.ID,
		"platform":    session.Platform,
		"app_version": session.AppVersion,
	}, tokenLifetime)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign device token")
		return device.RegisterResponse{}, device.ErrRegisterDevice
	}

	encoded, err := json.Marshal(session)
	if err != nil {
		return device.RegisterResponse{}, device.ErrRegisterDevice
	}

	if err := s.redis.SetDeviceSession(ctx, "device:session:"+session.ID, string(encoded), tokenLifetime); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"device_id":  session.ID,
			"error":      err.Error(),
		}).Error("Failed to store device session")
		return device.RegisterResponse{}, device.ErrRegisterDevice
	}

	return device.RegisterResponse{
		DeviceID:    session.ID,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}
