package detectionService

import (
	"OptiSense/internal/api/detection"
	"OptiSense/internal/entity"
	contextPkg "OptiSense/pkg/context"
	"OptiSense/pkg/optics"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"strings"
	"time"
)

const detectionCacheTTL = 24 * time.Hour

const landmarkPrompt = `
	Analyze this photo of a person wearing eyeglasses and locate four reference
	markers. All coordinates are normalized to [0,1] relative to the image:
	x grows rightward, y grows downward.

	1. frame_top_y: the y of the upper edge of the eyeglass lens/frame.
	2. frame_bottom_y: the y of the lower edge of the eyeglass lens/frame.
	3. left_pupil: the center of the pupil on the LEFT side of the image.
	4. right_pupil: the center of the pupil on the RIGHT side of the image.

	Desired output format:
	{
		"detected": true,
		"confidence": 0.95,
		"frame_top_y": 0.31,
		"frame_bottom_y": 0.52,
		"left_pupil": {"x": 0.61, "y": 0.41},
		"right_pupil": {"x": 0.39, "y": 0.41}
	}

	If no face wearing glasses is visible, respond with:
	{
		"detected": false
	}

	Respond with ONLY the JSON, no additional text.
	`

type landmarkModelOutput struct {
	Detected     bool         `json:"detected"`
	Confidence   float64      `json:"confidence"`
	FrameTopY    float64      `json:"frame_top_y"`
	FrameBottomY float64      `json:"frame_bottom_y"`
	LeftPupil    optics.Point `json:"left_pupil"`
	RightPupil   optics.Point `json:"right_pupil"`
}

// DetectLandmarks asks the vision model for the four marker fields. The model
// call is memoised in Redis by content hash; the second return value reports a
// cache hit. Rotation in the returned detection is always zero.
func (s *detectionService) DetectLandmarks(ctx context.Context, base64Image string) (*entity.LandmarkDetection, bool, error) {
	requestID := contextPkg.GetRequestID(ctx)

	imgData, err := base64.StdEncoding.DecodeString(base64Image)
	if err != nil {
		return nil, false, detection.ErrBadRequest
	}

	sum := sha256.Sum256(imgData)
	cacheKey := "detection:landmarks:" + hex.EncodeToString(sum[:])

	if cached, err := s.redis.GetDetection(ctx, cacheKey); err == nil && cached != "" {
		var result entity.LandmarkDetection
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"cache_key":  cacheKey,
			}).Debug("Landmark detection served from cache")
			return &result, true, nil
		}
	}

	raw, err := s.gemini.AnalyzeImage(ctx, base64Image, landmarkPrompt)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Vision model call failed")
		return nil, false, detection.ErrDetectionFailed
	}

	result, err := parseLandmarkResponse(raw)
	if err != nil {
		return nil, false, err
	}

	if encoded, err := json.Marshal(result); err == nil {
		if err := s.redis.SetDetection(ctx, cacheKey, string(encoded), detectionCacheTTL); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to cache landmark detection")
		}
	}

	return result, false, nil
}

// parseLandmarkResponse extracts the first JSON object from the model's text
// and normalizes it into a detection. A well-formed "detected: false" answer
// maps to ErrNoDetection, not to a transport failure.
func parseLandmarkResponse(response string) (*entity.LandmarkDetection, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in response")
	}

	jsonStr := response[jsonStart : jsonEnd+1]

	var output landmarkModelOutput
	if err := json.Unmarshal([]byte(jsonStr), &output); err != nil {
		return nil, err
	}

	if !output.Detected {
		return nil, detection.ErrNoDetection
	}

	if output.FrameTopY == 0 && output.FrameBottomY == 0 {
		return nil, errors.New("failed to extract frame reference lines")
	}

	result := entity.LandmarkDetection{
		FrameTopY:    optics.Clamp01(output.FrameTopY),
		FrameBottomY: optics.Clamp01(output.FrameBottomY),
		LeftPupil:    optics.ClampPoint(output.LeftPupil),
		RightPupil:   optics.ClampPoint(output.RightPupil),
		Rotation:     0,
		Confidence:   output.Confidence,
	}

	return &result, nil
}

// ProcessFrame relays one binary frame to the realtime landmark service.
func (s *detectionService) ProcessFrame(frame []byte) (*entity.LandmarkDetection, error) {
	result, err := s.websocketPkg.ProcessLandmarkFrame(frame)
	if err != nil {
		return nil, err
	}
	return result, nil
}
