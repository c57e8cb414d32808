package measurement

import "OptiSense/pkg/optics"

type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarkersRequest carries the full marker state. Out-of-range coordinates and
// rotation are accepted and clamped rather than rejected, matching the drag
// behavior.
type MarkersRequest struct {
	FrameTopY    float64      `json:"frame_top_y"`
	FrameBottomY float64      `json:"frame_bottom_y"`
	LeftPupil    PointRequest `json:"left_pupil"`
	RightPupil   PointRequest `json:"right_pupil"`
	Rotation     float64      `json:"rotation"`
}

func (m MarkersRequest) Measurements() optics.Measurements {
	raw := optics.Measurements{
		FrameTopY:    m.FrameTopY,
		FrameBottomY: m.FrameBottomY,
		LeftPupil:    optics.Point{X: m.LeftPupil.X, Y: m.LeftPupil.Y},
		RightPupil:   optics.Point{X: m.RightPupil.X, Y: m.RightPupil.Y},
		RotationDeg:  m.Rotation,
	}
	return raw.Normalized()
}

type ComputeRequest struct {
	Markers       MarkersRequest `json:"markers"`
	FrameHeightMm float64        `json:"frame_height_mm" validate:"required,gt=0"`
	ImageWidth    int            `json:"image_width" validate:"required,gt=0"`
	ImageHeight   int            `json:"image_height" validate:"required,gt=0"`
}

type ComputeResponse struct {
	Result optics.CalculationResult `json:"result"`
}

type ProbeImageResponse struct {
	Dimensions optics.ImageDimensions `json:"dimensions"`
	Defaults   optics.Measurements    `json:"defaults"`
}

type SaveRecordRequest struct {
	Markers       MarkersRequest `json:"markers"`
	FrameHeightMm float64        `json:"frame_height_mm" validate:"required,gt=0"`
	ImageWidth    int            `json:"image_width" validate:"required,gt=0"`
	ImageHeight   int            `json:"image_height" validate:"required,gt=0"`
	PatientLabel  string         `json:"patient_label" validate:"required,max=120"`
}

type RecordResponse struct {
	ID                 string  `json:"id"`
	PatientLabel       string  `json:"patient_label"`
	FrameHeightMm      float64 `json:"frame_height_mm"`
	PixelPerMm         float64 `json:"pixel_per_mm"`
	LeftPupilHeightMm  float64 `json:"left_pupil_height_mm"`
	RightPupilHeightMm float64 `json:"right_pupil_height_mm"`
	PupilDistanceMm    float64 `json:"pupil_distance_mm"`
	ImageLink          string  `json:"image_link,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
}

type ShareRecordRequest struct {
	Email string `json:"email" validate:"required,email"`
}
