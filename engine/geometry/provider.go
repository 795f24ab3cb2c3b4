package geometry

import (
	"sync"

	"go.uber.org/zap"
)

// staticProvider wraps geometry that is available from construction.
type staticProvider struct {
	geom Geometry
}

var _ Provider = &staticProvider{}

// NewStaticProvider creates a Provider whose geometry is available immediately.
// Useful for tests and for embedders that load meshes before starting the engine.
//
// Parameters:
//   - geom: the geometry to expose (may be nil, in which case the provider
//     reports the geometry as absent)
//
// Returns:
//   - Provider: the static provider
func NewStaticProvider(geom Geometry) Provider {
	return &staticProvider{geom: geom}
}

func (p *staticProvider) TryGetCollisionGeometry() (Geometry, bool) {
	if p.geom == nil {
		return nil, false
	}
	return p.geom, true
}

// asyncProvider publishes geometry produced by a background load.
// TryGetCollisionGeometry reports absence until the load completes; a failed
// load leaves the geometry absent forever, which degrades navigation to
// unobstructed movement rather than failing.
type asyncProvider struct {
	mu     sync.Mutex
	geom   Geometry
	logger *zap.Logger
}

var _ Provider = &asyncProvider{}

// NewAsyncProvider starts load in its own goroutine and exposes its result
// once it returns. Errors are logged and swallowed; collision resolution is
// skipped while (or if) no geometry is available.
//
// Parameters:
//   - load: function producing the geometry (run once, in a new goroutine)
//   - logger: destination for load failures (nil defaults to a no-op logger)
//
// Returns:
//   - Provider: the async provider (immediately usable, geometry absent until load completes)
func NewAsyncProvider(load func() (Geometry, error), logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &asyncProvider{logger: logger}
	go func() {
		geom, err := load()
		if err != nil {
			p.logger.Warn("collision geometry load failed, navigation will be unobstructed", zap.Error(err))
			return
		}
		p.mu.Lock()
		p.geom = geom
		p.mu.Unlock()
		p.logger.Info("collision geometry loaded")
	}()
	return p
}

func (p *asyncProvider) TryGetCollisionGeometry() (Geometry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.geom == nil {
		return nil, false
	}
	return p.geom, true
}
