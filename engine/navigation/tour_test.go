package navigation

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTourStartsAtNearestPreset(t *testing.T) {
	n := newTestNavigator()
	n.mu.Lock()
	n.current.Position = mgl32.Vec3{4.5, 1.6, 0.5} // closest to "b"
	n.mu.Unlock()

	n.ToggleTour()
	require.True(t, n.TourActive())

	name, ok := n.HighlightedTourLocation()
	require.True(t, ok)
	assert.Equal(t, "b", name)
	assert.Equal(t, mgl32.Vec3{5, 1.6, 0}, n.target.Position)
}

func TestTourSkipsPresetAlreadyStoodOn(t *testing.T) {
	n := newTestNavigator()
	// The navigator starts exactly on preset "a"; the tour must head to "b"
	// rather than issuing a zero-length transition.
	n.ToggleTour()

	name, ok := n.HighlightedTourLocation()
	require.True(t, ok)
	assert.Equal(t, "b", name)
}

func TestTourCycleWrapsAround(t *testing.T) {
	n := newTestNavigator()
	var visited []string
	n.SetTourObserver(func(name string) {
		if name != "" {
			visited = append(visited, name)
		}
	})

	n.ToggleTour()
	for i := 0; i < 7; i++ {
		n.mu.Lock()
		n.advanceTourLocked()
		n.mu.Unlock()
	}

	assert.Equal(t, []string{"b", "c", "plan", "a", "b", "c", "plan", "a"}, visited)
}

func TestToggleStopsActiveTour(t *testing.T) {
	n := newTestNavigator()
	var lastNotified string
	notified := false
	n.SetTourObserver(func(name string) {
		lastNotified = name
		notified = true
	})

	n.ToggleTour()
	require.True(t, n.TourActive())

	n.ToggleTour()
	assert.False(t, n.TourActive())
	assert.True(t, notified)
	assert.Empty(t, lastNotified, "stopping must clear the highlight")

	_, ok := n.HighlightedTourLocation()
	assert.False(t, ok)
}

func TestLiveInputStopsTour(t *testing.T) {
	n := newTestNavigator()
	n.ToggleTour()
	require.True(t, n.TourActive())

	n.DragBy(1, 0)
	assert.False(t, n.TourActive())
	assert.Nil(t, n.tour.pending, "no dwell timer may outlive the tour")
	assert.False(t, n.Transitioning())
}

func TestStaleDwellTimerDoesNotAdvance(t *testing.T) {
	n := newTestNavigator()
	n.ToggleTour()

	// Arm the dwell timer, then stop the tour before it fires.
	n.mu.Lock()
	n.tuning.TourDwell = 5 * time.Millisecond
	n.scheduleTourAdvanceLocked()
	pending := n.tour.pending
	n.mu.Unlock()
	require.NotNil(t, pending)

	n.ToggleTour()
	target := n.target.Position

	time.Sleep(30 * time.Millisecond)
	assert.False(t, n.TourActive())
	assert.Equal(t, target, n.target.Position, "a cancelled tour must not retarget")
}

func TestArrivalSchedulesNextLeg(t *testing.T) {
	n := newTestNavigator(WithTuning(Tuning{
		TransitionRate: 0.9,
		TourDwell:      5 * time.Millisecond,
	}))

	n.ToggleTour()
	first, ok := n.HighlightedTourLocation()
	require.True(t, ok)

	for i := 0; i < 50; i++ {
		n.Tick()
	}

	assert.Eventually(t, func() bool {
		name, ok := n.HighlightedTourLocation()
		return ok && name != first
	}, time.Second, time.Millisecond, "dwell timer must advance to the next location")
}

func TestSetTargetStopsTour(t *testing.T) {
	n := newTestNavigator()
	n.ToggleTour()
	require.True(t, n.TourActive())

	n.SetTarget(testPresets()[2])
	assert.False(t, n.TourActive())
	assert.True(t, n.Transitioning())
}

func TestTourWithNoPresets(t *testing.T) {
	n := NewNavigator(WithPresets()).(*navigator)
	n.presets = nil
	n.ToggleTour()
	assert.False(t, n.TourActive())
}
