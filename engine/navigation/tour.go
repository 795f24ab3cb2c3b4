package navigation

import (
	"time"

	"go.uber.org/zap"
)

// tourState is the guided tour sequencer's state: Idle <-> Active, an index
// into the ordered preset list, and the cancellable dwell timer handle. The
// sequencer writes into the navigator's target state but owns nothing else.
type tourState struct {
	active  bool
	index   int
	pending *time.Timer
}

func (n *navigator) ToggleTour() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tour.active {
		n.stopTourLocked()
		return
	}
	n.startTourLocked()
}

func (n *navigator) TourActive() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tour.active
}

func (n *navigator) HighlightedTourLocation() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.tour.active {
		return "", false
	}
	// index has already advanced past the location currently targeted.
	cur := (n.tour.index + len(n.presets) - 1) % len(n.presets)
	return n.presets[cur].Name, true
}

// startTourLocked begins the tour at the preset nearest the current position,
// or at the following one when the camera is already standing on the nearest
// (avoids a zero-length first transition). Caller must hold the mutex.
func (n *navigator) startTourLocked() {
	if len(n.presets) == 0 {
		return
	}

	nearest := 0
	nearestDist := float32(0)
	for i, p := range n.presets {
		d := p.Position.Sub(n.current.Position).Len()
		if i == 0 || d < nearestDist {
			nearest = i
			nearestDist = d
		}
	}
	if nearestDist < n.tuning.ArrivalEpsilon {
		nearest = (nearest + 1) % len(n.presets)
	}

	n.tour.active = true
	n.tour.index = nearest
	n.logger.Info("guided tour started", zap.String("first", n.presets[nearest].Name))
	n.advanceTourLocked()
}

// advanceTourLocked targets the current tour location, bumps the index for
// next time, and notifies the highlight observer. No-op when the tour is not
// active (a stale dwell timer that lost the race with stop). Caller must hold
// the mutex.
func (n *navigator) advanceTourLocked() {
	if !n.tour.active {
		return
	}
	loc := n.presets[n.tour.index]
	n.tour.index = (n.tour.index + 1) % len(n.presets)
	n.setTargetLocked(loc)
	n.notifyObserverLocked(loc.Name)
	n.logger.Debug("tour advancing", zap.String("location", loc.Name))
}

// scheduleTourAdvanceLocked arms the dwell timer that fires the next advance.
// Any previously pending timer is cancelled first so at most one advance is
// ever outstanding. Caller must hold the mutex.
func (n *navigator) scheduleTourAdvanceLocked() {
	n.cancelPendingAdvanceLocked()
	n.tour.pending = time.AfterFunc(n.tuning.TourDwell, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// Re-check liveness: the tour may have been stopped between the
		// timer firing and the lock being acquired.
		n.advanceTourLocked()
	})
}

// stopTourLocked returns the tour to Idle, cancels any pending advance, and
// clears the highlight. Idempotent; called before every target-setting
// operation that is not the tour's own. Caller must hold the mutex.
func (n *navigator) stopTourLocked() {
	n.cancelPendingAdvanceLocked()
	if !n.tour.active {
		return
	}
	n.tour.active = false
	n.notifyObserverLocked("")
	n.logger.Info("guided tour stopped")
}

// cancelPendingAdvanceLocked disarms the dwell timer if one is outstanding.
// Caller must hold the mutex.
func (n *navigator) cancelPendingAdvanceLocked() {
	if n.tour.pending != nil {
		n.tour.pending.Stop()
		n.tour.pending = nil
	}
}
