// Package engine binds DSP processors to opaque int32 handles for FFI
// boundaries and provides the compact binary preset codec shared with
// host applications.
package engine

import (
	"github.com/bennyp/audiofx/dsp/eq"
	"github.com/bennyp/audiofx/dsp/spatial"
)

// Registry maps opaque handles to processor instances. Handles are
// allocated sequentially starting at 1 and never reused within a registry
// lifetime, so a stale handle can not alias a newer instance. Handle 0 is
// never valid.
//
// The registry is not synchronized; hosts serialize access the same way
// they serialize control and audio calls on the processors themselves.
type Registry struct {
	next         int32
	equalizers   map[int32]*eq.Equalizer
	spatializers map[int32]*spatial.Spatializer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		equalizers:   make(map[int32]*eq.Equalizer),
		spatializers: make(map[int32]*spatial.Spatializer),
	}
}

// CreateEqualizer constructs an equalizer and returns its handle, or 0
// and the construction error.
func (r *Registry) CreateEqualizer(sampleRate float64, opts ...eq.Option) (int32, error) {
	e, err := eq.New(sampleRate, opts...)
	if err != nil {
		return 0, err
	}

	r.next++
	r.equalizers[r.next] = e

	return r.next, nil
}

// CreateSpatializer constructs a spatializer and returns its handle, or 0
// and the construction error.
func (r *Registry) CreateSpatializer(sampleRate float64, opts ...spatial.Option) (int32, error) {
	s, err := spatial.New(sampleRate, opts...)
	if err != nil {
		return 0, err
	}

	r.next++
	r.spatializers[r.next] = s

	return r.next, nil
}

// Equalizer resolves a handle. Unknown handles yield (nil, false).
func (r *Registry) Equalizer(handle int32) (*eq.Equalizer, bool) {
	e, ok := r.equalizers[handle]
	return e, ok
}

// Spatializer resolves a handle. Unknown handles yield (nil, false).
func (r *Registry) Spatializer(handle int32) (*spatial.Spatializer, bool) {
	s, ok := r.spatializers[handle]
	return s, ok
}

// Destroy releases the instance behind a handle. It reports whether the
// handle was live; destroying an unknown handle is a no-op.
func (r *Registry) Destroy(handle int32) bool {
	if _, ok := r.equalizers[handle]; ok {
		delete(r.equalizers, handle)
		return true
	}

	if _, ok := r.spatializers[handle]; ok {
		delete(r.spatializers, handle)
		return true
	}

	return false
}

// Len returns the number of live instances of both kinds.
func (r *Registry) Len() int {
	return len(r.equalizers) + len(r.spatializers)
}
