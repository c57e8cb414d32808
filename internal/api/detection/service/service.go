package detectionService

import (
	"OptiSense/internal/entity"
	"OptiSense/pkg/gemini"
	"OptiSense/pkg/redis"
	websocketPkg "OptiSense/pkg/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IDetectionService interface {
	DetectLandmarks(ctx context.Context, base64Image string) (*entity.LandmarkDetection, bool, error)
	ProcessFrame(frame []byte) (*entity.LandmarkDetection, error)
}

type detectionService struct {
	log          *logrus.Logger
	gemini       gemini.IGemini
	redis        redis.IRedis
	websocketPkg websocketPkg.IWebsocket
}

func NewDetectionService(
	log *logrus.Logger,
	gemini gemini.IGemini,
	redis redis.IRedis,
	websocket websocketPkg.IWebsocket,
) IDetectionService {
	return &detectionService{
		log:          log,
		gemini:       gemini,
		redis:        redis,
		websocketPkg: websocket,
	}
}
