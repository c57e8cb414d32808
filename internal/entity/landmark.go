package entity

import "OptiSense/pkg/optics"

// LandmarkDetection is the vision model's answer: the same marker fields a
// user would place by hand. Rotation is always reset to zero because the
// model cannot judge the ruler tilt; the user re-aligns manually.
type LandmarkDetection struct {
	FrameTopY    float64      `json:"frame_top_y"`
	FrameBottomY float64      `json:"frame_bottom_y"`
	LeftPupil    optics.Point `json:"left_pupil"`
	RightPupil   optics.Point `json:"right_pupil"`
	Rotation     float64      `json:"rotation"`
	Confidence   float64      `json:"confidence"`
}

// Measurements converts the detection into a clamped marker state, the single
// atomic replacement the measurement engine consumes.
func (d LandmarkDetection) Measurements() optics.Measurements {
	m := optics.Measurements{
		FrameTopY:    d.FrameTopY,
		FrameBottomY: d.FrameBottomY,
		LeftPupil:    d.LeftPupil,
		RightPupil:   d.RightPupil,
		RotationDeg:  0,
	}
	return m.Normalized()
}
