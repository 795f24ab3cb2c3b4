package navigation

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// pitchLimit bounds pitch to straight-up/straight-down.
const pitchLimit = math.Pi / 2

// modeMapper translates normalized input deltas into target mutations.
// One implementation exists per ViewMode; every input source funnels through
// these four channels instead of branching on the mode at each call site.
// Callers must hold the navigator lock.
type modeMapper interface {
	// drag applies a 2D pointer/touch drag delta in pixels.
	drag(n *navigator, dx, dy float32)

	// dolly applies the forward/back channel (wheel, pinch, W/S keys).
	dolly(n *navigator, delta float32)

	// strafe applies the sideways channel (A/D keys).
	strafe(n *navigator, delta float32)

	// elevate applies the vertical channel (Q/E keys).
	elevate(n *navigator, delta float32)
}

// firstPersonMapper rotates on drag and walks the horizontal plane on dolly.
type firstPersonMapper struct{}

// floorPlanMapper pans on drag and adjusts viewing height on dolly/elevate.
// Drag axes are swapped and inverted to match the fixed top-down rotation of
// the floor-plan viewpoint.
type floorPlanMapper struct{}

var modeMappers = map[ViewMode]modeMapper{
	ModeFirstPerson: firstPersonMapper{},
	ModeFloorPlan:   floorPlanMapper{},
}

func (firstPersonMapper) drag(n *navigator, dx, dy float32) {
	n.target.Yaw -= dx * n.tuning.RotateSpeed
	n.target.Pitch = mgl32.Clamp(n.target.Pitch-dy*n.tuning.RotateSpeed, -pitchLimit, pitchLimit)
}

func (firstPersonMapper) dolly(n *navigator, delta float32) {
	step := n.target.HorizontalForward().Mul(delta * n.tuning.DollySpeed)
	n.target.Position = n.target.Position.Add(step)
}

func (firstPersonMapper) strafe(n *navigator, delta float32) {
	step := n.target.Right().Mul(delta * n.tuning.DollySpeed)
	n.target.Position = n.target.Position.Add(step)
}

func (firstPersonMapper) elevate(n *navigator, delta float32) {
	n.target.Position = n.target.Position.Add(mgl32.Vec3{0, delta * n.tuning.DollySpeed, 0})
}

// panScale derives the per-pixel pan distance from the current viewing
// height: closer to the ground means finer panning.
func (floorPlanMapper) panScale(n *navigator) float32 {
	return n.tuning.PanSpeed * n.target.Position.Y()
}

func (m floorPlanMapper) drag(n *navigator, dx, dy float32) {
	scale := m.panScale(n)
	n.target.Position = n.target.Position.Add(mgl32.Vec3{-dy * scale, 0, dx * scale})
}

func (m floorPlanMapper) dolly(n *navigator, delta float32) {
	m.zoom(n, delta)
}

func (m floorPlanMapper) strafe(n *navigator, delta float32) {
	scale := m.panScale(n)
	n.target.Position = n.target.Position.Add(mgl32.Vec3{0, 0, delta * scale})
}

func (m floorPlanMapper) elevate(n *navigator, delta float32) {
	m.zoom(n, delta)
}

// zoom adjusts the viewing height, clamped to the configured bounds.
// Positive delta zooms in (lower height), matching wheel-up semantics.
func (floorPlanMapper) zoom(n *navigator, delta float32) {
	y := mgl32.Clamp(n.target.Position.Y()-delta*n.tuning.ZoomSpeed, n.tuning.MinPlanHeight, n.tuning.MaxPlanHeight)
	n.target.Position = mgl32.Vec3{n.target.Position.X(), y, n.target.Position.Z()}
}
