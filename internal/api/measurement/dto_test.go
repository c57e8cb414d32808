package measurement

import "testing"

func TestMarkersRequestMeasurementsClamps(t *testing.T) {
	req := MarkersRequest{
		FrameTopY:    -0.2,
		FrameBottomY: 1.4,
		LeftPupil:    PointRequest{X: 2, Y: 0.42},
		RightPupil:   PointRequest{X: 0.66, Y: -3},
		Rotation:     360,
	}

	got := req.Measurements()

	if got.FrameTopY != 0 {
		t.Errorf("FrameTopY = %v, want 0", got.FrameTopY)
	}
	if got.FrameBottomY != 1 {
		t.Errorf("FrameBottomY = %v, want 1", got.FrameBottomY)
	}
	if got.LeftPupil.X != 1 || got.LeftPupil.Y != 0.42 {
		t.Errorf("LeftPupil = %+v, want {1 0.42}", got.LeftPupil)
	}
	if got.RightPupil.X != 0.66 || got.RightPupil.Y != 0 {
		t.Errorf("RightPupil = %+v, want {0.66 0}", got.RightPupil)
	}
	if got.RotationDeg != 45 {
		t.Errorf("RotationDeg = %v, want 45", got.RotationDeg)
	}
}

func TestMarkersRequestMeasurementsKeepsInRangeValues(t *testing.T) {
	req := MarkersRequest{
		FrameTopY:    0.3,
		FrameBottomY: 0.7,
		LeftPupil:    PointRequest{X: 0.35, Y: 0.45},
		RightPupil:   PointRequest{X: 0.65, Y: 0.46},
		Rotation:     -12.5,
	}

	got := req.Measurements()

	if got.FrameTopY != 0.3 || got.FrameBottomY != 0.7 {
		t.Errorf("frame lines = %v/%v, want 0.3/0.7", got.FrameTopY, got.FrameBottomY)
	}
	if got.LeftPupil.X != 0.35 || got.RightPupil.Y != 0.46 {
		t.Errorf("pupils changed: left=%+v right=%+v", got.LeftPupil, got.RightPupil)
	}
	if got.RotationDeg != -12.5 {
		t.Errorf("RotationDeg = %v, want -12.5", got.RotationDeg)
	}
}
