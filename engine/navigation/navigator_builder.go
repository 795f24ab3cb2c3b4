package navigation

import (
	"time"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/walkabout-go/engine/geometry"
)

// Tuning gathers every constant the navigator depends on: input speeds,
// clamps, interpolation rates, the collision clearance margin, and the tour
// dwell delay. Zero values in a partially filled Tuning are replaced by the
// defaults when applied through WithTuning.
type Tuning struct {
	// RotateSpeed scales drag pixels to radians in first-person mode.
	RotateSpeed float32

	// PanSpeed scales drag pixels to horizontal distance per unit of viewing
	// height in floor-plan mode.
	PanSpeed float32

	// DollySpeed scales the dolly/strafe/elevate channels to distance in
	// first-person mode.
	DollySpeed float32

	// ZoomSpeed scales the zoom channel to height change in floor-plan mode.
	ZoomSpeed float32

	// CollisionOffset is the clearance margin kept from obstructing surfaces.
	CollisionOffset float32

	// ArrivalEpsilon is the distance below which a transition counts as
	// arrived. Also used as the "already standing here" threshold when the
	// tour picks its first stop.
	ArrivalEpsilon float32

	// TransitionRate is the per-tick interpolation fraction while moving
	// toward a preset (intentionally slower than direct control).
	TransitionRate float32

	// LiveRate is the per-tick interpolation fraction under direct control.
	LiveRate float32

	// TourDwell is the pause at each tour stop before advancing.
	TourDwell time.Duration

	// MinPlanHeight and MaxPlanHeight bound the floor-plan viewing height.
	MinPlanHeight float32
	MaxPlanHeight float32
}

// DefaultTuning returns the stock tuning values.
//
// Returns:
//   - Tuning: the default tuning
func DefaultTuning() Tuning {
	return Tuning{
		RotateSpeed:     0.005,
		PanSpeed:        0.002,
		DollySpeed:      0.15,
		ZoomSpeed:       0.5,
		CollisionOffset: 0.3,
		ArrivalEpsilon:  0.05,
		TransitionRate:  0.05,
		LiveRate:        0.2,
		TourDwell:       3 * time.Second,
		MinPlanHeight:   2,
		MaxPlanHeight:   20,
	}
}

// NavigatorOption is a functional option for configuring a Navigator.
type NavigatorOption func(*navigator)

// WithPresets replaces the preset location list. Order matters: the guided
// tour cycles through the list in order, and the first preset provides the
// initial viewpoint.
//
// Parameters:
//   - presets: the ordered preset locations
//
// Returns:
//   - NavigatorOption: functional option to set the presets
func WithPresets(presets ...PresetLocation) NavigatorOption {
	return func(n *navigator) {
		n.presets = presets
	}
}

// WithTuning replaces the navigator's tuning. Zero fields keep their
// defaults, so callers may fill only the values they care about.
//
// Parameters:
//   - t: the tuning overrides
//
// Returns:
//   - NavigatorOption: functional option to set the tuning
func WithTuning(t Tuning) NavigatorOption {
	return func(n *navigator) {
		d := DefaultTuning()
		if t.RotateSpeed != 0 {
			d.RotateSpeed = t.RotateSpeed
		}
		if t.PanSpeed != 0 {
			d.PanSpeed = t.PanSpeed
		}
		if t.DollySpeed != 0 {
			d.DollySpeed = t.DollySpeed
		}
		if t.ZoomSpeed != 0 {
			d.ZoomSpeed = t.ZoomSpeed
		}
		if t.CollisionOffset != 0 {
			d.CollisionOffset = t.CollisionOffset
		}
		if t.ArrivalEpsilon != 0 {
			d.ArrivalEpsilon = t.ArrivalEpsilon
		}
		if t.TransitionRate != 0 {
			d.TransitionRate = t.TransitionRate
		}
		if t.LiveRate != 0 {
			d.LiveRate = t.LiveRate
		}
		if t.TourDwell != 0 {
			d.TourDwell = t.TourDwell
		}
		if t.MinPlanHeight != 0 {
			d.MinPlanHeight = t.MinPlanHeight
		}
		if t.MaxPlanHeight != 0 {
			d.MaxPlanHeight = t.MaxPlanHeight
		}
		n.tuning = d
	}
}

// WithGeometryProvider attaches the collision geometry source at
// construction time.
//
// Parameters:
//   - provider: the geometry provider
//
// Returns:
//   - NavigatorOption: functional option to set the provider
func WithGeometryProvider(provider geometry.Provider) NavigatorOption {
	return func(n *navigator) {
		n.provider = provider
	}
}

// WithLogger sets the navigator's logger. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the zap logger to use
//
// Returns:
//   - NavigatorOption: functional option to set the logger
func WithLogger(logger *zap.Logger) NavigatorOption {
	return func(n *navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithTourObserver registers the tour highlight observer at construction
// time. See Navigator.SetTourObserver for the callback contract.
//
// Parameters:
//   - observer: the callback
//
// Returns:
//   - NavigatorOption: functional option to set the observer
func WithTourObserver(observer func(name string)) NavigatorOption {
	return func(n *navigator) {
		n.observer = observer
	}
}

// msToDuration converts whole milliseconds to a time.Duration, mapping zero
// to zero so Coalesce-style defaulting keeps working.
func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
