package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is a static, ray-intersectable 3D shape. Implementations must be
// safe for concurrent readers; the navigation core queries geometry from the
// tick loop while loaders may still be publishing other meshes.
type Geometry interface {
	// Raycast intersects a ray with the geometry and reports the nearest hit.
	// The direction must be a unit vector. The returned normal always faces the
	// ray origin so callers can project displacements against it directly.
	//
	// Parameters:
	//   - origin: ray start point in world space
	//   - direction: unit ray direction
	//
	// Returns:
	//   - Hit: nearest intersection data (valid only when the bool is true)
	//   - bool: true if the ray intersects the geometry
	Raycast(origin, direction mgl32.Vec3) (Hit, bool)
}

// Hit describes a single ray-geometry intersection. Values are ephemeral;
// produced and consumed within one frame.
type Hit struct {
	// Distance from the ray origin to the intersection point.
	Distance float32

	// Point is the intersection point in world space.
	Point mgl32.Vec3

	// Normal is the unit surface normal at the intersection, oriented toward
	// the ray origin.
	Normal mgl32.Vec3
}

// Provider yields collision geometry once loading has completed.
// Before that the geometry is simply absent - an expected transient state,
// never an error.
type Provider interface {
	// TryGetCollisionGeometry returns the loaded geometry, or false while the
	// geometry is still unavailable.
	//
	// Returns:
	//   - Geometry: the loaded geometry (nil when the bool is false)
	//   - bool: true if geometry is available
	TryGetCollisionGeometry() (Geometry, bool)
}
