package navigation

// negligibleStep is the squared step length below which a frame produces no
// meaningful motion and collision resolution is skipped.
const negligibleStep = 1e-10

// degenerateSlide is the squared length below which a projected slide vector
// is treated as zero: movement straight into a wall halts at the wall rather
// than dividing by a vanishing length.
const degenerateSlide = 1e-12

// resolveCollisionLocked adjusts the target position when this frame's motion
// is obstructed. Runs only in first-person mode and only when geometry is
// available; otherwise movement proceeds unobstructed. On obstruction the
// entire remaining displacement (target - current) is projected onto the hit
// surface plane and rescaled back to its original magnitude, so sliding along
// a wall carries no speed penalty. The adjusted target redirects every
// subsequent frame's interpolation along the wall until the obstruction
// clears or a new target is set.
//
// The resolver also runs during preset transitions: a scripted target behind
// a wall must slide along it, not pull the camera through.
// Caller must hold the mutex.
func (n *navigator) resolveCollisionLocked() {
	if n.mode != ModeFirstPerson || n.provider == nil {
		return
	}
	geom, ok := n.provider.TryGetCollisionGeometry()
	if !ok {
		return
	}

	rate := n.tuning.LiveRate
	if n.transitioning {
		rate = n.tuning.TransitionRate
	}

	desired := n.target.Position.Sub(n.current.Position)
	step := desired.Mul(rate)
	if step.LenSqr() < negligibleStep {
		return
	}
	stepLen := step.Len()
	dir := step.Mul(1 / stepLen)

	hit, ok := geom.Raycast(n.current.Position, dir)
	if !ok || hit.Distance >= stepLen+n.tuning.CollisionOffset {
		return
	}

	// Obstructed: remove the into-wall component from the full desired
	// displacement, then restore the original magnitude.
	slide := desired.Sub(hit.Normal.Mul(desired.Dot(hit.Normal)))
	if slide.LenSqr() < degenerateSlide {
		n.target.Position = n.current.Position
		return
	}
	slide = slide.Mul(desired.Len() / slide.Len())
	n.target.Position = n.current.Position.Add(slide)
}
