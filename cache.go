package parse

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// ProbeCache provides thread-safe caching of Capabilities per target type.
// It is insertion-only: a probe is built on first use and never evicted or
// rebuilt, since type capabilities cannot change at runtime.
type ProbeCache struct {
	cache sync.Map // map[reflect.Type]*probeEntry
}

// probeEntry holds the probe for a single type. The sync.Once serializes
// the first build: the goroutine that stores the entry runs the build and
// every concurrent loser waits on the same Once instead of rebuilding.
type probeEntry struct {
	once sync.Once
	caps atomic.Pointer[Capabilities]
}

func (e *probeEntry) build(factory func() *Capabilities) *Capabilities {
	e.once.Do(func() { e.caps.Store(factory()) })
	return e.caps.Load()
}

// NewProbeCache creates an empty thread-safe probe cache.
func NewProbeCache() *ProbeCache {
	return &ProbeCache{}
}

// GetOrBuild returns the cached Capabilities for typ, building them with
// the factory on first use. The factory runs at most once per type, even
// under concurrent first access from many goroutines; steady-state reads
// take no lock beyond sync.Map's own.
func (pc *ProbeCache) GetOrBuild(typ reflect.Type, factory func() *Capabilities) *Capabilities {
	if v, ok := pc.cache.Load(typ); ok {
		return v.(*probeEntry).build(factory)
	}

	actual, _ := pc.cache.LoadOrStore(typ, &probeEntry{})
	return actual.(*probeEntry).build(factory)
}

// Get retrieves the Capabilities for typ if they have been built.
func (pc *ProbeCache) Get(typ reflect.Type) (*Capabilities, bool) {
	v, ok := pc.cache.Load(typ)
	if !ok {
		return nil, false
	}
	caps := v.(*probeEntry).caps.Load()
	if caps == nil {
		return nil, false
	}
	return caps, true
}

// Size reports how many types have an entry in the cache.
func (pc *ProbeCache) Size() int {
	n := 0
	pc.cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
