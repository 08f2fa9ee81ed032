package eventbus

import (
	"cmp"
	"slices"
)

// registeredHandler pairs an owner with one of its descriptors.
// Handlers are never removed from the registry, because cache cursors index into its buckets.
// Unregistering tombstones them instead.
type registeredHandler struct {
	owner      any
	descriptor Descriptor
	live       bool
}

func (h *registeredHandler) tombstone() {
	h.owner = nil
	h.descriptor = nullDescriptor{}
	h.live = false
}

// registry is an append-only arena of handlers partitioned by priority.
type registry struct {
	priorities []int // priorities holds every bucket key, highest first.
	buckets    map[int][]*registeredHandler
}

func newRegistry() registry {
	return registry{buckets: map[int][]*registeredHandler{}}
}

func (r *registry) add(owner any, descriptor Descriptor) {
	priority := descriptor.Priority()
	bucket, ok := r.buckets[priority]
	if !ok {
		r.priorities = insertDescending(r.priorities, priority)
	}
	r.buckets[priority] = append(bucket, &registeredHandler{
		owner:      owner,
		descriptor: descriptor,
		live:       true,
	})
}

// tombstoneOwner tombstones every live handler of owner, reporting whether any were found.
// Owner comparison is by interface identity, so registered owner types must be comparable.
func (r *registry) tombstoneOwner(owner any) bool {
	var found bool
	for _, priority := range r.priorities {
		for _, handler := range r.buckets[priority] {
			if handler.live && handler.owner == owner {
				handler.tombstone()
				found = true
			}
		}
	}
	return found
}

func (r *registry) liveHandlers() int {
	var count int
	for _, bucket := range r.buckets {
		for _, handler := range bucket {
			if handler.live {
				count++
			}
		}
	}
	return count
}

func insertDescending(priorities []int, priority int) []int {
	idx, found := slices.BinarySearchFunc(priorities, priority, func(elem, target int) int {
		return cmp.Compare(target, elem)
	})
	if found {
		return priorities
	}
	return slices.Insert(priorities, idx, priority)
}
