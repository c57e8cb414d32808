package detectionService

import (
	"OptiSense/internal/api/detection"
	"OptiSense/internal/entity"
	"OptiSense/pkg/optics"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type fakeGemini struct {
	response string
	err      error
	calls    int
}

func (f *fakeGemini) AnalyzeImage(ctx context.Context, base64Image string, prompt string) (string, error) {
	f.calls++
	return f.response, f.err
}

type fakeRedis struct {
	store map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{store: make(map[string]string)}
}

func (f *fakeRedis) SetDeviceSession(ctx context.Context, key string, session string, expiration time.Duration) error {
	f.store[key] = session
	return nil
}

func (f *fakeRedis) GetDeviceSession(ctx context.Context, key string) (string, error) {
	return f.store[key], nil
}

func (f *fakeRedis) SetDetection(ctx context.Context, key string, detection string, expiration time.Duration) error {
	f.store[key] = detection
	return nil
}

func (f *fakeRedis) GetDetection(ctx context.Context, key string) (string, error) {
	return f.store[key], nil
}

func newTestService(gemini *fakeGemini, redis *fakeRedis) IDetectionService {
	logger := logrus.New()
	return NewDetectionService(logger, gemini, redis, nil)
}

func TestParseLandmarkResponse(t *testing.T) {
	raw := `Here are the markers:
	{
		"detected": true,
		"confidence": 0.9,
		"frame_top_y": 0.3,
		"frame_bottom_y": 0.5,
		"left_pupil": {"x": 0.6, "y": 0.4},
		"right_pupil": {"x": 0.4, "y": 0.4}
	}
	Done.`

	result, err := parseLandmarkResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FrameTopY != 0.3 || result.FrameBottomY != 0.5 {
		t.Errorf("frame lines = (%v, %v), want (0.3, 0.5)", result.FrameTopY, result.FrameBottomY)
	}
	if result.LeftPupil.X != 0.6 || result.RightPupil.X != 0.4 {
		t.Errorf("pupils = (%v, %v)", result.LeftPupil, result.RightPupil)
	}
	if result.Rotation != 0 {
		t.Errorf("rotation = %v, want 0", result.Rotation)
	}
	if result.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", result.Confidence)
	}
}

func TestParseLandmarkResponseNotDetected(t *testing.T) {
	_, err := parseLandmarkResponse(`{"detected": false}`)
	if !errors.Is(err, detection.ErrNoDetection) {
		t.Errorf("err = %v, want ErrNoDetection", err)
	}
}

func TestParseLandmarkResponseGarbage(t *testing.T) {
	cases := []string{
		"no json here at all",
		"",
		"{not valid json}",
	}

	for _, raw := range cases {
		if _, err := parseLandmarkResponse(raw); err == nil {
			t.Errorf("parseLandmarkResponse(%q) expected error", raw)
		}
	}
}

func TestParseLandmarkResponseClampsCoordinates(t *testing.T) {
	raw := `{
		"detected": true,
		"frame_top_y": -0.2,
		"frame_bottom_y": 1.4,
		"left_pupil": {"x": 1.5, "y": 0.4},
		"right_pupil": {"x": -0.5, "y": 0.4}
	}`

	result, err := parseLandmarkResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FrameTopY != 0 {
		t.Errorf("FrameTopY = %v, want 0", result.FrameTopY)
	}
	if result.FrameBottomY != 1 {
		t.Errorf("FrameBottomY = %v, want 1", result.FrameBottomY)
	}
	if result.LeftPupil.X != 1 {
		t.Errorf("LeftPupil.X = %v, want 1", result.LeftPupil.X)
	}
	if result.RightPupil.X != 0 {
		t.Errorf("RightPupil.X = %v, want 0", result.RightPupil.X)
	}
}

func TestParseLandmarkResponseMissingFrameLines(t *testing.T) {
	raw := `{"detected": true, "left_pupil": {"x": 0.6, "y": 0.4}, "right_pupil": {"x": 0.4, "y": 0.4}}`
	if _, err := parseLandmarkResponse(raw); err == nil {
		t.Error("expected error when frame lines are absent")
	}
}

func TestDetectLandmarksBadBase64(t *testing.T) {
	svc := newTestService(&fakeGemini{}, newFakeRedis())

	_, _, err := svc.DetectLandmarks(context.Background(), "not valid base64!!!")
	if !errors.Is(err, detection.ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestDetectLandmarksModelFailure(t *testing.T) {
	gemini := &fakeGemini{err: errors.New("upstream down")}
	svc := newTestService(gemini, newFakeRedis())
	img := base64.StdEncoding.EncodeToString([]byte("image-bytes"))

	_, _, err := svc.DetectLandmarks(context.Background(), img)
	if !errors.Is(err, detection.ErrDetectionFailed) {
		t.Errorf("err = %v, want ErrDetectionFailed", err)
	}
}

func TestDetectLandmarksCachesByContent(t *testing.T) {
	gemini := &fakeGemini{response: `{
		"detected": true,
		"confidence": 0.8,
		"frame_top_y": 0.3,
		"frame_bottom_y": 0.5,
		"left_pupil": {"x": 0.6, "y": 0.4},
		"right_pupil": {"x": 0.4, "y": 0.4}
	}`}
	redis := newFakeRedis()
	svc := newTestService(gemini, redis)
	img := base64.StdEncoding.EncodeToString([]byte("same-image"))

	first, cached, err := svc.DetectLandmarks(context.Background(), img)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if cached {
		t.Error("first call reported a cache hit")
	}

	second, cached, err := svc.DetectLandmarks(context.Background(), img)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !cached {
		t.Error("second call did not report a cache hit")
	}
	if gemini.calls != 1 {
		t.Errorf("model called %d times, want 1", gemini.calls)
	}
	if *first != *second {
		t.Errorf("cached detection differs: %+v vs %+v", first, second)
	}
}

func TestDetectLandmarksCachedPayloadRoundTrips(t *testing.T) {
	redis := newFakeRedis()
	gemini := &fakeGemini{response: `{
		"detected": true,
		"frame_top_y": 0.25,
		"frame_bottom_y": 0.55,
		"left_pupil": {"x": 0.62, "y": 0.41},
		"right_pupil": {"x": 0.38, "y": 0.42}
	}`}
	svc := newTestService(gemini, redis)
	img := base64.StdEncoding.EncodeToString([]byte("payload"))

	result, _, err := svc.DetectLandmarks(context.Background(), img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(redis.store) != 1 {
		t.Fatalf("expected one cache entry, got %d", len(redis.store))
	}

	for _, stored := range redis.store {
		var decoded entity.LandmarkDetection
		if err := json.Unmarshal([]byte(stored), &decoded); err != nil {
			t.Fatalf("stored payload is not valid JSON: %v", err)
		}
		if decoded != *result {
			t.Errorf("stored detection %+v differs from returned %+v", decoded, *result)
		}
	}
}

type fakeWebsocket struct {
	result *entity.LandmarkDetection
	err    error
	frames [][]byte
}

func (f *fakeWebsocket) ProcessLandmarkFrame(frame []byte) (*entity.LandmarkDetection, error) {
	f.frames = append(f.frames, frame)
	return f.result, f.err
}

func (f *fakeWebsocket) IsConnected() bool { return true }

func (f *fakeWebsocket) Reconnect() error { return nil }

func (f *fakeWebsocket) CloseConnection() {}

func TestProcessFrameRelaysDetection(t *testing.T) {
	ws := &fakeWebsocket{result: &entity.LandmarkDetection{
		FrameTopY:    0.3,
		FrameBottomY: 0.6,
		LeftPupil:    optics.Point{X: 0.6, Y: 0.42},
		RightPupil:   optics.Point{X: 0.4, Y: 0.43},
		Rotation:     0,
		Confidence:   0.9,
	}}
	svc := NewDetectionService(logrus.New(), &fakeGemini{}, newFakeRedis(), ws)

	frame := []byte{0xFF, 0xD8, 0x01}
	result, err := svc.ProcessFrame(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ws.frames) != 1 || string(ws.frames[0]) != string(frame) {
		t.Fatalf("frame was not relayed untouched: %v", ws.frames)
	}
	if result != ws.result {
		t.Errorf("result %+v differs from relayed detection %+v", result, ws.result)
	}
	if result.Rotation != 0 {
		t.Errorf("Rotation = %v, want 0: the realtime path never judges ruler tilt", result.Rotation)
	}
}

func TestProcessFramePropagatesError(t *testing.T) {
	wantErr := errors.New("landmark service unavailable")
	ws := &fakeWebsocket{err: wantErr}
	svc := NewDetectionService(logrus.New(), &fakeGemini{}, newFakeRedis(), ws)

	result, err := svc.ProcessFrame([]byte{0x01})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if result != nil {
		t.Errorf("expected nil detection on relay failure, got %+v", result)
	}
}
