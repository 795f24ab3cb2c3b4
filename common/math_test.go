package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLerp(t *testing.T) {
	assert.Equal(t, float32(1), Lerp(1, 5, 0))
	assert.Equal(t, float32(5), Lerp(1, 5, 1))
	assert.Equal(t, float32(3), Lerp(1, 5, 0.5))
	assert.Equal(t, float32(-2), Lerp(0, -10, 0.2))
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}
	Identity(m)
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		assert.Equal(t, want, m[i])
	}
}

func TestMul4Identity(t *testing.T) {
	id := make([]float32, 16)
	Identity(id)

	a := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	out := make([]float32, 16)
	Mul4(out, a, id)
	assert.Equal(t, a, out)
	Mul4(out, id, a)
	assert.Equal(t, a, out)
}

func TestMul4InPlace(t *testing.T) {
	a := make([]float32, 16)
	Identity(a)
	a[12] = 3 // translation

	// Writing the result over an operand must still be correct.
	Mul4(a, a, a)
	assert.Equal(t, float32(6), a[12])
}

func TestLookAtViewSpace(t *testing.T) {
	view := make([]float32, 16)
	LookAt(view, 0, 0, 5, 0, 0, 0, 0, 1, 0)

	// The eye maps to the view-space origin.
	x, y, z := transformPoint(view, 0, 0, 5)
	assert.InDelta(t, 0, float64(x), 1e-5)
	assert.InDelta(t, 0, float64(y), 1e-5)
	assert.InDelta(t, 0, float64(z), 1e-5)

	// The look target lies on the -Z view axis.
	x, y, z = transformPoint(view, 0, 0, 0)
	assert.InDelta(t, 0, float64(x), 1e-5)
	assert.InDelta(t, 0, float64(y), 1e-5)
	assert.InDelta(t, -5, float64(z), 1e-5)
}

func TestPerspectiveShape(t *testing.T) {
	proj := make([]float32, 16)
	Perspective(proj, math.Pi/2, 16.0/9.0, 0.1, 100)

	assert.InDelta(t, 9.0/16.0, float64(proj[0]), 1e-5)
	assert.InDelta(t, 1, float64(proj[5]), 1e-5)
	assert.Equal(t, float32(-1), proj[11])
	assert.Zero(t, proj[15])
}

func transformPoint(m []float32, x, y, z float32) (float32, float32, float32) {
	return m[0]*x + m[4]*y + m[8]*z + m[12],
		m[1]*x + m[5]*y + m[9]*z + m[13],
		m[2]*x + m[6]*y + m[10]*z + m[14]
}
