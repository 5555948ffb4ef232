// Package skiplist implements the conical list: a probabilistic,
// order-preserving, multi-level linked structure over a circular per-level
// topology with a dynamically-growing head vector.
//
// Nodes and the head vector are both realized as internal/hblock header
// blocks sharing one element type (a prev/next link pair) so that the same
// circular-list machinery links head-to-node and node-to-node edges
// uniformly -- the head vector's header slot is repurposed to carry the
// current level count L instead of being given a distinct Go generic
// instantiation.
package skiplist

import (
	"github.com/niceyeti/conical/internal/hblock"
	"github.com/niceyeti/conical/internal/lcg"
)

// initialHeadCapacity is the head vector's starting capacity.
const initialHeadCapacity = 8

// nodeHeader is the header half of every header block in this package,
// whether it belongs to a value-bearing node or to the head vector. For
// the head vector, Value is never read and Height is repurposed to carry
// the current level count L.
type nodeHeader[V any] struct {
	Value  V
	Height int
}

// link is the trivial (prev, next) element stored at every level a node
// participates in.
type link[V any] struct {
	prev, next Handle[V]
}

// Handle is the stable identity of a live node, returned by Insert and
// consumed by Delete. Its zero value is never a valid handle.
type Handle[V any] = *hblock.Block[nodeHeader[V], link[V]]

// SkipList is an ordered multiset with circular per-level doubly-linked
// topology.
type SkipList[V any] struct {
	less  func(a, b V) bool
	head  Handle[V]
	rng   *lcg.Generator
	count int
}

// New creates an empty skip list ordered by less, using the skip list's
// bit-exact default seed.
func New[V any](less func(a, b V) bool) *SkipList[V] {
	return newSkipList(less, lcg.New(lcg.DefaultSeed))
}

// NewSeeded creates an empty skip list backed by a generator seeded with
// seed, for deterministic reproduction of a specific height sequence.
func NewSeeded[V any](less func(a, b V) bool, seed uint64) *SkipList[V] {
	return newSkipList(less, lcg.New(seed))
}

func newSkipList[V any](less func(a, b V) bool, rng *lcg.Generator) *SkipList[V] {
	return &SkipList[V]{
		less: less,
		head: hblock.Allocate[nodeHeader[V], link[V]](initialHeadCapacity),
		rng:  rng,
	}
}

// Len returns the number of live nodes.
func (sl *SkipList[V]) Len() int {
	return sl.count
}

// Insert samples a random height, splices a height-tall node into levels
// [0, height) in sorted position, and returns a stable handle to it.
func (sl *SkipList[V]) Insert(v V) Handle[V] {
	newHeight := sl.rng.Height()
	oldLevels := height(sl.head)

	n := hblock.Allocate[nodeHeader[V], link[V]](newHeight)
	n.InitHeader(nodeHeader[V]{Value: v, Height: newHeight})

	if newHeight > oldLevels {
		sl.growLevels(newHeight, n)
		if oldLevels == 0 {
			sl.count++
			return n
		}
	}

	// Descent always starts at the new node's own top level: levels above
	// oldLevels were just self-looped onto n by growLevels and the splice
	// below is a harmless no-op there, so the loop naturally falls through
	// to the levels that hold pre-existing nodes.
	current := sl.head
	for level := newHeight - 1; level >= 0; level-- {
		for {
			nxt := next(current, level)
			wrapped := current != sl.head && nxt == next(sl.head, level)
			if wrapped || !sl.less(nxt.Header().Value, v) {
				break
			}
			current = nxt
		}

		if current == sl.head {
			spliceAsSmallest(sl.head, n, level)
		} else {
			spliceAfter(current, n, level)
		}
	}

	sl.count++
	return n
}

// Delete unlinks h from every level it participates in, shrinking the
// level count if h was the sole occupant of its top levels, and
// deallocates h. h must refer to a currently-live node.
func (sl *SkipList[V]) Delete(h Handle[V]) {
	nodeHeight := h.Header().Height
	newLevels := -1

	for level := nodeHeight - 1; level >= 0; level-- {
		nxt := next(h, level)
		if nxt == h {
			newLevels = level
			continue
		}

		prv := prev(h, level)
		setNext(prv, level, nxt)
		setPrev(nxt, level, prv)

		if h == next(sl.head, level) {
			// head.prev is set to the new smallest rather than the
			// unchanged largest, which looks wrong but is harmless:
			// nothing in this package reads head.prev. Insertion's
			// "current == head" branch finds the largest as
			// head.next.prev instead.
			setNext(sl.head, level, nxt)
			setPrev(sl.head, level, nxt)
		}
	}

	if newLevels >= 0 {
		setHeight(sl.head, newLevels)
	}

	h.DeinitHeader()
	h.DeinitElements(nodeHeight)
	h.Deallocate()
	sl.count--
}

// Deinitialize walks the level-0 ring, deinitializing and deallocating
// every live node, then frees the head vector.
func (sl *SkipList[V]) Deinitialize() {
	if height(sl.head) > 0 {
		start := next(sl.head, 0)
		current := start
		for {
			advance := next(current, 0)
			h := current.Header().Height
			current.DeinitHeader()
			current.DeinitElements(h)
			current.Deallocate()
			if advance == start {
				break
			}
			current = advance
		}
	}

	sl.head.DeinitHeader()
	sl.head.DeinitElements(sl.head.Cap())
	sl.head.Deallocate()
	sl.count = 0
}

// Values returns every live value in level-0 (fully ordered) sequence.
func (sl *SkipList[V]) Values() []V {
	out := make([]V, 0, sl.count)
	if height(sl.head) == 0 {
		return out
	}

	start := next(sl.head, 0)
	current := start
	for {
		out = append(out, current.Header().Value)
		current = next(current, 0)
		if current == start {
			break
		}
	}
	return out
}

// growLevels grows the head vector's backing capacity if necessary, then
// initializes each new level in [oldLevels, newHeight) with a self-loop
// linking n to itself, and finally raises the level count to newHeight.
func (sl *SkipList[V]) growLevels(newHeight int, n Handle[V]) {
	sl.ensureCapacity(newHeight)

	oldLevels := height(sl.head)
	for level := oldLevels; level < newHeight; level++ {
		setLink(n, level, link[V]{prev: n, next: n})
		setLink(sl.head, level, link[V]{prev: n, next: n})
	}
	setHeight(sl.head, newHeight)
}

// ensureCapacity grows the head vector's backing block in 1.5x+8 steps
// until it can hold at least required levels, move-initializing the live
// prefix into the new block.
func (sl *SkipList[V]) ensureCapacity(required int) {
	for sl.head.Cap() < required {
		oldCap := sl.head.Cap()
		newCap := oldCap + oldCap/2 + 8

		fresh := hblock.Allocate[nodeHeader[V], link[V]](newCap)
		fresh.MoveInitHeader(sl.head)
		fresh.MoveInitElements(sl.head, height(sl.head))
		sl.head.Deallocate()
		sl.head = fresh
	}
}

// spliceAsSmallest inserts n as the new smallest element at level, given
// the ring at that level already has at least one element.
func spliceAsSmallest[V any](head, n Handle[V], level int) {
	oldSmallest := next(head, level)
	oldLargest := prev(oldSmallest, level)

	setLink(n, level, link[V]{prev: oldLargest, next: oldSmallest})
	setPrev(oldSmallest, level, n)
	setNext(oldLargest, level, n)
	setNext(head, level, n)
	setPrev(head, level, n)
}

// spliceAfter inserts n immediately after current at level.
func spliceAfter[V any](current, n Handle[V], level int) {
	nxt := next(current, level)

	setLink(n, level, link[V]{prev: current, next: nxt})
	setPrev(nxt, level, n)
	setNext(current, level, n)
}

func height[V any](h Handle[V]) int {
	return h.Header().Height
}

func setHeight[V any](h Handle[V], v int) {
	hdr := h.Header()
	hdr.Height = v
	h.SetHeader(hdr)
}

func next[V any](h Handle[V], level int) Handle[V] {
	return h.At(level).next
}

func prev[V any](h Handle[V], level int) Handle[V] {
	return h.At(level).prev
}

func setLink[V any](h Handle[V], level int, l link[V]) {
	h.Set(level, l)
}

func setNext[V any](h Handle[V], level int, n Handle[V]) {
	l := h.At(level)
	l.next = n
	h.Set(level, l)
}

func setPrev[V any](h Handle[V], level int, p Handle[V]) {
	l := h.At(level)
	l.prev = p
	h.Set(level, l)
}
