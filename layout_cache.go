package parg

import (
	"reflect"
	"sync"
)

// fieldLayout is an unbound definition for one tagged struct field.
type fieldLayout struct {
	index []int
	def   Definition
}

// layoutCache keeps the field layout of every struct type seen by
// FromStruct. It is safe for concurrent use; each layout is computed once.
type layoutCache struct {
	cache sync.Map // map[reflect.Type]*layoutEntry
}

type layoutEntry struct {
	once   sync.Once
	fields []fieldLayout
	err    error
}

var layouts = &layoutCache{}

// getOrCreate returns the layout of t, calling factory only the first time
// t is seen, even under concurrent access.
func (lc *layoutCache) getOrCreate(t reflect.Type, factory func(reflect.Type) ([]fieldLayout, error)) ([]fieldLayout, error) {
	v, ok := lc.cache.Load(t)
	if !ok {
		v, _ = lc.cache.LoadOrStore(t, &layoutEntry{})
	}
	entry := v.(*layoutEntry)

	entry.once.Do(func() {
		entry.fields, entry.err = factory(t)
	})
	return entry.fields, entry.err
}

func (lc *layoutCache) size() int {
	n := 0
	lc.cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (lc *layoutCache) reset() {
	lc.cache.Clear()
}
