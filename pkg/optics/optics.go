package optics

import "math"

const (
	// Ruler rotation is limited so the frame lines always stay usable on screen.
	MinRotationDeg = -45.0
	MaxRotationDeg = 45.0
)

// Point is a 2D position normalized to [0,1] against the displayed image
// width/height. The type does not enforce the range; producers clamp before
// storing (see ClampPoint).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Measurements holds the four reference markers plus the ruler rotation.
// Frame line Ys live in ruler space, pupil points live in image space.
type Measurements struct {
	FrameTopY    float64 `json:"frame_top_y"`
	FrameBottomY float64 `json:"frame_bottom_y"`
	LeftPupil    Point   `json:"left_pupil"`
	RightPupil   Point   `json:"right_pupil"`
	RotationDeg  float64 `json:"rotation"`
}

// ImageDimensions describes the loaded photo in native pixels.
type ImageDimensions struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// CalculationResult carries every derived quantity of one computation. Either
// all fields are produced together or Compute returns nil.
type CalculationResult struct {
	PixelPerMm         float64 `json:"pixel_per_mm"`
	LeftPupilHeightMm  float64 `json:"left_pupil_height_mm"`
	RightPupilHeightMm float64 `json:"right_pupil_height_mm"`
	PupilDistanceMm    float64 `json:"pupil_distance_mm"`
}

// DefaultMeasurements returns the marker state used whenever a new image is
// loaded, discarding any prior markers.
func DefaultMeasurements() Measurements {
	return Measurements{
		FrameTopY:    0.3,
		FrameBottomY: 0.5,
		LeftPupil:    Point{X: 0.6, Y: 0.4},
		RightPupil:   Point{X: 0.4, Y: 0.4},
		RotationDeg:  0,
	}
}

// Clamp01 limits a normalized coordinate to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampPoint limits both coordinates to [0,1].
func ClampPoint(p Point) Point {
	return Point{X: Clamp01(p.X), Y: Clamp01(p.Y)}
}

// ClampRotation limits the ruler angle to [-45,45] degrees.
func ClampRotation(deg float64) float64 {
	if deg < MinRotationDeg {
		return MinRotationDeg
	}
	if deg > MaxRotationDeg {
		return MaxRotationDeg
	}
	return deg
}

// Normalized applies the input clamping contract to every field, regardless of
// which producer built the value. FrameTopY < FrameBottomY is deliberately not
// enforced; Compute handles either ordering.
func (m Measurements) Normalized() Measurements {
	return Measurements{
		FrameTopY:    Clamp01(m.FrameTopY),
		FrameBottomY: Clamp01(m.FrameBottomY),
		LeftPupil:    ClampPoint(m.LeftPupil),
		RightPupil:   ClampPoint(m.RightPupil),
		RotationDeg:  ClampRotation(m.RotationDeg),
	}
}

// NewImageDimensions derives the aspect ratio from native pixel sizes.
func NewImageDimensions(width, height int) ImageDimensions {
	dims := ImageDimensions{Width: width, Height: height}
	if height > 0 {
		dims.AspectRatio = float64(width) / float64(height)
	}
	return dims
}

// rulerSpaceY maps an image-space point into the ruler's frame of reference.
// The ruler is drawn rotated by rotationDeg about the image center, so the
// point is counter-rotated (negated angle) to read its position along the
// ruler axis. The X offset is stretched by the aspect ratio first: rotation
// happens in the square pixel grid, not in the non-square normalized system.
func rulerSpaceY(p Point, rotationDeg float64, aspectRatio float64) float64 {
	angle := -rotationDeg * math.Pi / 180.0
	dx := (p.X - 0.5) * aspectRatio
	dy := p.Y - 0.5
	rotatedY := dx*math.Sin(angle) + dy*math.Cos(angle)
	return rotatedY + 0.5
}

// Compute converts marker positions plus the physical frame height into
// millimeter measurements. It returns nil when no result can exist: missing
// calibration length, no loaded image, or coincident frame lines (the scale
// would be infinite). Pupil heights below the bottom line come out negative
// on purpose; the caller shows them so the user can spot a misplaced marker.
func Compute(m Measurements, frameHeightMm float64, dims ImageDimensions) *CalculationResult {
	if frameHeightMm <= 0 {
		return nil
	}
	if dims.Height == 0 {
		return nil
	}
	if m.FrameBottomY == m.FrameTopY {
		return nil
	}

	relativeFrameHeight := math.Abs(m.FrameBottomY - m.FrameTopY)
	unitsPerMm := relativeFrameHeight / frameHeightMm

	leftY := rulerSpaceY(m.LeftPupil, m.RotationDeg, dims.AspectRatio)
	rightY := rulerSpaceY(m.RightPupil, m.RotationDeg, dims.AspectRatio)

	// Y grows downward, so bottom minus pupil is the height from the bottom
	// frame edge up to the pupil.
	leftHeightMm := (m.FrameBottomY - leftY) / unitsPerMm
	rightHeightMm := (m.FrameBottomY - rightY) / unitsPerMm

	pixelPerMm := (relativeFrameHeight * float64(dims.Height)) / frameHeightMm

	// Pupil distance uses the aspect-corrected Euclidean distance. Rotating
	// both points by the same angle preserves it, so no rotation needed here.
	pdx := (m.LeftPupil.X - m.RightPupil.X) * dims.AspectRatio
	pdy := m.LeftPupil.Y - m.RightPupil.Y
	pupilDistanceMm := math.Hypot(pdx, pdy) / unitsPerMm

	return &CalculationResult{
		PixelPerMm:         pixelPerMm,
		LeftPupilHeightMm:  leftHeightMm,
		RightPupilHeightMm: rightHeightMm,
		PupilDistanceMm:    pupilDistanceMm,
	}
}
