package navigation

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/walkabout-go/engine/geometry"
)

// navigator is the single implementation of Navigator.
// It owns the session's navigation state: the rendered (current) viewpoint,
// the desired (target) viewpoint, the active view mode, and the guided tour
// state. All input sources, the collision resolver, and the tour sequencer
// mutate this one struct under its mutex.
type navigator struct {
	mu sync.Mutex

	current Viewpoint
	target  Viewpoint
	mode    ViewMode

	// transitioning is true while moving toward a preset target; dragging is
	// true during a live pointer drag. Both may be false (idle); they are
	// never true at the same time because live input cancels transitions.
	transitioning bool
	dragging      bool

	presets []PresetLocation
	tuning  Tuning

	provider geometry.Provider
	tour     tourState
	observer func(name string)

	logger *zap.Logger
}

// Compile-time interface compliance check
var _ Navigator = &navigator{}

// Navigator merges heterogeneous input intents into a single target
// viewpoint, interpolates the live viewpoint toward it every tick, and - in
// first-person mode - slides along obstructing geometry instead of stopping
// or clipping through it.
//
// All methods are safe for concurrent use: input callbacks, the tick loop,
// and the tour's dwell timer may call in from different goroutines.
type Navigator interface {
	// Tick advances the world by one frame: collision resolution first, then
	// one interpolation step of the current viewpoint toward the target.
	// Call once per display refresh from the engine tick loop.
	Tick()

	// Viewpoint returns the current (rendered) viewpoint.
	// The renderer should pull this once per tick, after Tick.
	//
	// Returns:
	//   - Viewpoint: the current pose
	Viewpoint() Viewpoint

	// DebugViewpoint returns the current viewpoint for on-screen debug
	// display (position plus pitch/yaw).
	//
	// Returns:
	//   - Viewpoint: the current pose
	DebugViewpoint() Viewpoint

	// Mode returns the active view mode.
	//
	// Returns:
	//   - ViewMode: the active mode
	Mode() ViewMode

	// Transitioning reports whether the navigator is moving toward a preset
	// target (as opposed to following live input).
	//
	// Returns:
	//   - bool: true while a preset transition is in progress
	Transitioning() bool

	// SetTarget copies the location's pose into the target viewpoint, adopts
	// its mode, and begins a slow transition toward it. Stops any active tour
	// first.
	//
	// Parameters:
	//   - loc: the location to transition to
	SetTarget(loc PresetLocation)

	// SelectPreset looks up a preset by name and transitions to it.
	//
	// Parameters:
	//   - name: the preset name
	//
	// Returns:
	//   - error: error if no preset has that name
	SelectPreset(name string) error

	// Presets returns a copy of the configured preset locations in tour order.
	//
	// Returns:
	//   - []PresetLocation: the preset list
	Presets() []PresetLocation

	// BeginDrag marks the start of a live pointer/touch drag. Cancels any
	// transition and any active tour.
	BeginDrag()

	// DragBy applies a live 2D drag delta according to the active mode:
	// rotation in first-person, height-scaled panning in floor-plan.
	//
	// Parameters:
	//   - dx, dy: pointer movement in pixels since the last call
	DragBy(dx, dy float32)

	// EndDrag marks the end of a live drag.
	EndDrag()

	// Dolly applies the forward/back channel (wheel, pinch, forward/back
	// keys): walking in first-person, height zoom in floor-plan.
	//
	// Parameters:
	//   - delta: signed channel magnitude (positive = forward/zoom in)
	Dolly(delta float32)

	// Strafe applies the sideways channel (strafe keys).
	//
	// Parameters:
	//   - delta: signed channel magnitude (positive = right)
	Strafe(delta float32)

	// Elevate applies the vertical channel (up/down keys): vertical movement
	// in first-person, height zoom in floor-plan.
	//
	// Parameters:
	//   - delta: signed channel magnitude (positive = up/zoom in)
	Elevate(delta float32)

	// ToggleTour starts the guided tour, or stops it if it is already
	// running. Starting picks the nearest preset to the current position, or
	// the next one in sequence when already standing on the nearest.
	ToggleTour()

	// TourActive reports whether the guided tour is running.
	//
	// Returns:
	//   - bool: true while the tour is active
	TourActive() bool

	// HighlightedTourLocation returns the name of the preset the tour is
	// currently heading to or dwelling at.
	//
	// Returns:
	//   - string: the location name (empty when no tour is active)
	//   - bool: true if a location is highlighted
	HighlightedTourLocation() (string, bool)

	// SetTourObserver registers a callback notified when the tour highlights
	// a new location, with an empty name when the highlight clears. The
	// callback runs synchronously with navigator state locked and must not
	// call back into the Navigator.
	//
	// Parameters:
	//   - observer: the callback (nil to remove)
	SetTourObserver(observer func(name string))

	// SetGeometryProvider attaches the collision geometry source. Until the
	// provider reports geometry, first-person movement is unobstructed.
	//
	// Parameters:
	//   - provider: the geometry provider (nil to detach)
	SetGeometryProvider(provider geometry.Provider)
}

// NewNavigator creates a navigator with the default presets and tuning,
// then applies the provided options. The initial viewpoint is the first
// preset's pose and mode.
//
// Parameters:
//   - options: functional options to configure the navigator
//
// Returns:
//   - Navigator: the newly created navigator
func NewNavigator(options ...NavigatorOption) Navigator {
	n := &navigator{
		presets: DefaultPresets(),
		tuning:  DefaultTuning(),
		logger:  zap.NewNop(),
	}

	for _, option := range options {
		option(n)
	}

	if len(n.presets) > 0 {
		first := n.presets[0]
		n.current = first.viewpoint()
		n.target = n.current
		n.mode = first.Mode
	}

	return n
}

// Tick advances the world by one frame. Collision resolution always completes
// before the interpolation step reads the target; input mutations between
// ticks are fully visible here because both paths hold the same lock.
func (n *navigator) Tick() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.resolveCollisionLocked()

	rate := n.tuning.LiveRate
	if n.transitioning {
		rate = n.tuning.TransitionRate
	}
	n.current = lerpViewpoint(n.current, n.target, rate)

	if n.transitioning && n.target.Position.Sub(n.current.Position).Len() < n.tuning.ArrivalEpsilon {
		n.transitioning = false
		n.logger.Debug("transition arrived",
			zap.String("mode", n.mode.String()),
			zap.Bool("tour", n.tour.active),
		)
		if n.tour.active {
			n.scheduleTourAdvanceLocked()
		}
	}
}

func (n *navigator) Viewpoint() Viewpoint {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *navigator) DebugViewpoint() Viewpoint {
	return n.Viewpoint()
}

func (n *navigator) Mode() ViewMode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mode
}

func (n *navigator) Transitioning() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.transitioning
}

func (n *navigator) SetTarget(loc PresetLocation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopTourLocked()
	n.setTargetLocked(loc)
}

func (n *navigator) SelectPreset(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, p := range n.presets {
		if p.Name == name {
			n.stopTourLocked()
			n.setTargetLocked(p)
			return nil
		}
	}
	return fmt.Errorf("no preset named %q", name)
}

func (n *navigator) Presets() []PresetLocation {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]PresetLocation, len(n.presets))
	copy(out, n.presets)
	return out
}

func (n *navigator) BeginDrag() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.liveInputLocked()
	n.dragging = true
}

func (n *navigator) DragBy(dx, dy float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.liveInputLocked()
	modeMappers[n.mode].drag(n, dx, dy)
}

func (n *navigator) EndDrag() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dragging = false
}

func (n *navigator) Dolly(delta float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.liveInputLocked()
	modeMappers[n.mode].dolly(n, delta)
}

func (n *navigator) Strafe(delta float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.liveInputLocked()
	modeMappers[n.mode].strafe(n, delta)
}

func (n *navigator) Elevate(delta float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.liveInputLocked()
	modeMappers[n.mode].elevate(n, delta)
}

func (n *navigator) SetTourObserver(observer func(name string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observer = observer
}

func (n *navigator) SetGeometryProvider(provider geometry.Provider) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.provider = provider
}

// --- internal helpers ---

// setTargetLocked copies the location's pose into the target viewpoint,
// adopts its mode, and marks the transition. The mode changes only here;
// live deltas never touch it. Caller must hold the mutex.
func (n *navigator) setTargetLocked(loc PresetLocation) {
	n.target = loc.viewpoint()
	n.mode = loc.Mode
	n.transitioning = true
	n.dragging = false
}

// liveInputLocked is the precondition shared by every live-delta mutator:
// direct input always supersedes a scripted transition and cancels any
// active tour. Caller must hold the mutex.
func (n *navigator) liveInputLocked() {
	n.stopTourLocked()
	n.transitioning = false
}

// notifyObserverLocked reports the highlighted tour location to the observer,
// if one is registered. Caller must hold the mutex.
func (n *navigator) notifyObserverLocked(name string) {
	if n.observer != nil {
		n.observer(name)
	}
}
