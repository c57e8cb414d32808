package deviceService

import (
	"OptiSense/internal/api/device"
	"OptiSense/pkg/redis"
	"OptiSense/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IDeviceService interface {
	Register(ctx context.Context, req device.RegisterRequest) (device.RegisterResponse, error)
}

type deviceService struct {
	log   *logrus.Logger
	redis redis.IRedis
	utils utils.IUtils
}

func NewDeviceService(log *logrus.Logger, redis redis.IRedis, utils utils.IUtils) IDeviceService {
	return &deviceService{
		log:   log,
		redis: redis,
		utils: utils,
	}
}
