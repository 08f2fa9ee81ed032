package eventbus

import (
	"github.com/saylorsolutions/superbus/assert"
	"iter"
	"reflect"
	"slices"
)

type cacheBucket struct {
	handlers []*registeredHandler // handlers already confirmed to match the entry's type, in registration order.
	cursor   int                  // cursor counts how many handlers of the matching registry bucket were scanned.
}

// cacheEntry holds the known handlers for one concrete event type.
type cacheEntry struct {
	priorities []int
	buckets    map[int]*cacheBucket
}

type typeCache map[reflect.Type]*cacheEntry

func (c typeCache) lookupOrCreate(typ reflect.Type, reg *registry) *cacheEntry {
	if entry, ok := c[typ]; ok {
		return entry
	}
	entry := &cacheEntry{
		priorities: slices.Clone(reg.priorities),
		buckets:    make(map[int]*cacheBucket, len(reg.priorities)),
	}
	for _, priority := range reg.priorities {
		entry.buckets[priority] = new(cacheBucket)
	}
	c[typ] = entry
	return entry
}

// refresh scans only the handlers registered since the last refresh of this entry.
// It returns the number of handlers that were checked.
func (e *cacheEntry) refresh(reg *registry, event any) int {
	var scanned int
	for _, priority := range reg.priorities {
		local, ok := e.buckets[priority]
		if !ok {
			local = new(cacheBucket)
			e.buckets[priority] = local
			e.priorities = insertDescending(e.priorities, priority)
		}
		global := reg.buckets[priority]
		assert.True("cache cursor within registry bucket", local.cursor <= len(global))
		for ; local.cursor < len(global); local.cursor++ {
			scanned++
			handler := global[local.cursor]
			if handler.descriptor.Matches(event) {
				local.handlers = append(local.handlers, handler)
			}
		}
	}
	return scanned
}

// all yields every known handler, highest priority first.
func (e *cacheEntry) all() iter.Seq[*registeredHandler] {
	return func(yield func(*registeredHandler) bool) {
		for _, priority := range e.priorities {
			for _, handler := range e.buckets[priority].handlers {
				if !yield(handler) {
					return
				}
			}
		}
	}
}

func (e *cacheEntry) purge() {
	for _, bucket := range e.buckets {
		bucket.handlers = slices.DeleteFunc(bucket.handlers, func(handler *registeredHandler) bool {
			return !handler.live
		})
	}
}
