package navigation

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestForwardConventions(t *testing.T) {
	tt := []struct {
		name string
		vp   Viewpoint
		want mgl32.Vec3
	}{
		{"yaw zero faces -Z", Viewpoint{}, mgl32.Vec3{0, 0, -1}},
		{"quarter turn left faces -X", Viewpoint{Yaw: math.Pi / 2}, mgl32.Vec3{-1, 0, 0}},
		{"half turn faces +Z", Viewpoint{Yaw: math.Pi}, mgl32.Vec3{0, 0, 1}},
		{"straight up", Viewpoint{Pitch: math.Pi / 2}, mgl32.Vec3{0, 1, 0}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.vp.Forward()
			for i := 0; i < 3; i++ {
				assert.InDelta(t, float64(tc.want[i]), float64(got[i]), 1e-6)
			}
		})
	}
}

func TestForwardIsUnitLength(t *testing.T) {
	for _, vp := range []Viewpoint{
		{Yaw: 0.3, Pitch: 0.7},
		{Yaw: -2.1, Pitch: -1.2},
		{Yaw: 5.9, Pitch: 0},
	} {
		assert.InDelta(t, 1, float64(vp.Forward().Len()), 1e-6)
		assert.InDelta(t, 1, float64(vp.Right().Len()), 1e-6)
		assert.InDelta(t, 1, float64(vp.HorizontalForward().Len()), 1e-6)
	}
}

func TestRightIsPerpendicularToForward(t *testing.T) {
	vp := Viewpoint{Yaw: 1.1, Pitch: 0.4}
	assert.InDelta(t, 0, float64(vp.Forward().Dot(vp.Right())), 1e-6)
	assert.Zero(t, vp.Right().Y(), "right stays on the horizontal plane")
}

func TestHorizontalForwardIgnoresPitch(t *testing.T) {
	level := Viewpoint{Yaw: 0.8}
	steep := Viewpoint{Yaw: 0.8, Pitch: 1.5}
	assert.Equal(t, level.HorizontalForward(), steep.HorizontalForward())
}

func TestLerpViewpointEndpoints(t *testing.T) {
	a := Viewpoint{Position: mgl32.Vec3{1, 2, 3}, Pitch: 0.1, Yaw: 0.2}
	b := Viewpoint{Position: mgl32.Vec3{5, 6, 7}, Pitch: 0.5, Yaw: 1.2}

	assert.Equal(t, a, lerpViewpoint(a, b, 0))
	assert.Equal(t, b, lerpViewpoint(a, b, 1))

	mid := lerpViewpoint(a, b, 0.5)
	assert.Equal(t, mgl32.Vec3{3, 4, 5}, mid.Position)
	assert.InDelta(t, 0.3, float64(mid.Pitch), 1e-6)
	assert.InDelta(t, 0.7, float64(mid.Yaw), 1e-6)
}

func TestViewModeString(t *testing.T) {
	assert.Equal(t, "first-person", ModeFirstPerson.String())
	assert.Equal(t, "floor-plan", ModeFloorPlan.String())
	assert.Equal(t, "unknown", ViewMode(42).String())
}
