package navigation

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/walkabout-go/common"
)

// ViewMode selects how input deltas map onto the viewpoint and whether
// collision resolution runs.
type ViewMode int

const (
	// ModeFirstPerson is an eye-level observer. Drags rotate, the dolly
	// channel walks the horizontal plane, and collision resolution applies.
	ModeFirstPerson ViewMode = iota

	// ModeFloorPlan is a top-down observer. Drags pan the horizontal plane,
	// the dolly channel adjusts viewing height, and collisions are ignored.
	ModeFloorPlan
)

// String returns the mode name for logging and debug display.
func (m ViewMode) String() string {
	switch m {
	case ModeFirstPerson:
		return "first-person"
	case ModeFloorPlan:
		return "floor-plan"
	default:
		return "unknown"
	}
}

// Viewpoint is an observer pose: a world-space position plus pitch/yaw
// orientation. There is no roll. Pitch is bounded to [-pi/2, pi/2] at every
// mutation site; yaw is unbounded.
type Viewpoint struct {
	Position mgl32.Vec3
	Pitch    float32
	Yaw      float32
}

// Forward returns the unit view direction derived from pitch and yaw.
// Yaw 0 faces -Z; positive pitch looks up.
//
// Returns:
//   - mgl32.Vec3: unit forward vector
func (v Viewpoint) Forward() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(v.Yaw))
	sp, cp := math.Sincos(float64(v.Pitch))
	return mgl32.Vec3{
		float32(-sy * cp),
		float32(sp),
		float32(-cy * cp),
	}
}

// HorizontalForward returns the view direction projected onto the horizontal
// plane and re-normalized. Looking straight up or down still yields the
// yaw-derived walking direction.
//
// Returns:
//   - mgl32.Vec3: unit horizontal forward vector
func (v Viewpoint) HorizontalForward() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(v.Yaw))
	return mgl32.Vec3{float32(-sy), 0, float32(-cy)}
}

// Right returns the unit right vector on the horizontal plane.
//
// Returns:
//   - mgl32.Vec3: unit right vector
func (v Viewpoint) Right() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(v.Yaw))
	return mgl32.Vec3{float32(cy), 0, float32(-sy)}
}

// ViewMatrix builds the column-major world-to-view matrix for this pose,
// suitable for handing to an external renderer each frame.
//
// Returns:
//   - [16]float32: the view matrix
func (v Viewpoint) ViewMatrix() [16]float32 {
	var out [16]float32
	center := v.Position.Add(v.Forward())
	common.LookAt(out[:],
		v.Position.X(), v.Position.Y(), v.Position.Z(),
		center.X(), center.Y(), center.Z(),
		0, 1, 0,
	)
	return out
}

// lerpViewpoint advances a fraction of the way from a toward b.
// Position, pitch, and yaw interpolate independently; angles are lerped
// without wraparound handling, consistent with the clamped pitch range and
// unbounded yaw.
func lerpViewpoint(a, b Viewpoint, t float32) Viewpoint {
	return Viewpoint{
		Position: mgl32.Vec3{
			common.Lerp(a.Position.X(), b.Position.X(), t),
			common.Lerp(a.Position.Y(), b.Position.Y(), t),
			common.Lerp(a.Position.Z(), b.Position.Z(), t),
		},
		Pitch: common.Lerp(a.Pitch, b.Pitch, t),
		Yaw:   common.Lerp(a.Yaw, b.Yaw, t),
	}
}

// PresetLocation is a named, immutable viewpoint with its associated mode.
// Selecting a preset adopts both the pose and the mode.
type PresetLocation struct {
	Name     string
	Position mgl32.Vec3
	Pitch    float32
	Yaw      float32
	Mode     ViewMode
}

// viewpoint returns the preset's pose as a Viewpoint.
func (p PresetLocation) viewpoint() Viewpoint {
	return Viewpoint{Position: p.Position, Pitch: p.Pitch, Yaw: p.Yaw}
}
