package rbtree

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func intLess(a, b int) bool { return a < b }

func TestNew(t *testing.T) {
	Convey("A freshly created tree is empty", t, func() {
		tr := New[int](intLess)
		So(tr.Len(), ShouldEqual, 0)
		So(tr.Values(), ShouldBeEmpty)
		So(tr.Verify(), ShouldBeTrue)
		_, ok := tr.First()
		So(ok, ShouldBeFalse)
		_, ok = tr.Last()
		So(ok, ShouldBeFalse)
	})
}

func TestInsortSequential(t *testing.T) {
	Convey("Given insort of 0..11 in sequence", t, func() {
		tr := New[int](intLess)
		for v := 0; v <= 11; v++ {
			tr.Insort(v)
			So(tr.Verify(), ShouldBeTrue)
		}

		Convey("in-order traversal yields the sorted sequence", func() {
			want := make([]int, 12)
			for i := range want {
				want[i] = i
			}
			So(tr.Values(), ShouldResemble, want)
		})

		Convey("deleting every value in insertion order empties the tree", func() {
			for v := 0; v <= 11; v++ {
				h, ok := tr.BinarySearch(v)
				So(ok, ShouldBeTrue)
				tr.Delete(h)
				So(tr.Verify(), ShouldBeTrue)
			}
			So(tr.Len(), ShouldEqual, 0)
			So(tr.Values(), ShouldBeEmpty)
		})
	})
}

func TestInsortPermutationInvariance(t *testing.T) {
	Convey("Inserting a permutation of a set yields identical in-order traversal", t, func() {
		a := New[int](intLess)
		for _, v := range []int{5, 1, 9, 3, 7, 0, 8, 2, 6, 4} {
			a.Insort(v)
		}
		b := New[int](intLess)
		for _, v := range []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9} {
			b.Insort(v)
		}
		So(a.Values(), ShouldResemble, b.Values())
	})
}

func TestAppendVsInsort(t *testing.T) {
	Convey("Append(k) for k = 0..N-1 matches insort(k) for k = 0..N-1", t, func() {
		const n = 50
		appended := New[int](intLess)
		for k := 0; k < n; k++ {
			appended.Append(k)
			So(appended.Verify(), ShouldBeTrue)
		}

		insorted := New[int](intLess)
		for k := 0; k < n; k++ {
			insorted.Insort(k)
		}

		So(appended.Values(), ShouldResemble, insorted.Values())
		So(appended.Verify(), ShouldBeTrue)
		So(insorted.Verify(), ShouldBeTrue)
	})
}

func TestInsertAfter(t *testing.T) {
	Convey("Given a tree with a single node", t, func() {
		tr := New[int](intLess)
		root := tr.Insort(10)

		Convey("InsertAfter places a value with no right child as the immediate right child", func() {
			h := tr.InsertAfter(root, 99)
			So(tr.Verify(), ShouldBeTrue)
			succ, ok := tr.Successor(root)
			So(ok, ShouldBeTrue)
			So(succ, ShouldEqual, h)
		})

		Convey("InsertAfter does not require the new value to compare greater", func() {
			h := tr.InsertAfter(root, -5)
			So(tr.Verify(), ShouldBeTrue)
			succ, ok := tr.Successor(root)
			So(ok, ShouldBeTrue)
			So(succ, ShouldEqual, h)
			So(h.Value(), ShouldEqual, -5)
		})
	})
}

func TestFirstLastSuccessorPredecessor(t *testing.T) {
	Convey("Given a tree built from 0..9", t, func() {
		tr := New[int](intLess)
		handles := make([]Handle[int], 10)
		for v := 0; v < 10; v++ {
			handles[v] = tr.Insort(v)
		}

		Convey("first/last are the extremes", func() {
			first, ok := tr.First()
			So(ok, ShouldBeTrue)
			So(first.Value(), ShouldEqual, 0)

			last, ok := tr.Last()
			So(ok, ShouldBeTrue)
			So(last.Value(), ShouldEqual, 9)
		})

		Convey("walking successor from first visits every node exactly once", func() {
			var got []int
			n, ok := tr.First()
			So(ok, ShouldBeTrue)
			for {
				got = append(got, n.Value())
				next, more := tr.Successor(n)
				if !more {
					break
				}
				n = next
			}
			So(got, ShouldResemble, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
		})

		Convey("successor of the rightmost node is absent", func() {
			_, ok := tr.Successor(handles[9])
			So(ok, ShouldBeFalse)
		})

		Convey("predecessor of the leftmost node is absent", func() {
			_, ok := tr.Predecessor(handles[0])
			So(ok, ShouldBeFalse)
		})
	})
}

func TestBinarySearch(t *testing.T) {
	Convey("Given a tree built from a shuffled set", t, func() {
		tr := New[int](intLess)
		for _, v := range []int{40, 10, 70, 20, 60, 80, 30, 50} {
			tr.Insort(v)
		}

		Convey("binary_search finds every inserted value", func() {
			for _, v := range []int{10, 20, 30, 40, 50, 60, 70, 80} {
				h, ok := tr.BinarySearch(v)
				So(ok, ShouldBeTrue)
				So(h.Value(), ShouldEqual, v)
			}
		})

		Convey("binary_search reports absence for a value not present", func() {
			_, ok := tr.BinarySearch(999)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestDeleteRoot(t *testing.T) {
	Convey("Deleting the root works across 0, 1, and 2 children", t, func() {
		tr := New[int](intLess)
		root := tr.Insort(10)
		tr.Delete(root)
		So(tr.Len(), ShouldEqual, 0)
		So(tr.Verify(), ShouldBeTrue)

		tr2 := New[int](intLess)
		root2 := tr2.Insort(10)
		tr2.Insort(5)
		tr2.Delete(root2)
		So(tr2.Verify(), ShouldBeTrue)
		So(tr2.Len(), ShouldEqual, 1)

		tr3 := New[int](intLess)
		root3 := tr3.Insort(10)
		tr3.Insort(5)
		tr3.Insort(15)
		tr3.Delete(root3)
		So(tr3.Verify(), ShouldBeTrue)
		So(tr3.Len(), ShouldEqual, 2)
		So(tr3.Values(), ShouldResemble, []int{5, 15})
	})
}

func TestHandleStability(t *testing.T) {
	Convey("Given a handle returned by insort", t, func() {
		tr := New[int](intLess)
		h := tr.Insort(10)

		Convey("inserting other values leaves the handle's value unchanged", func() {
			tr.Insort(1)
			tr.Insort(100)
			tr.Insort(50)
			So(h.Value(), ShouldEqual, 10)
			So(tr.Values(), ShouldResemble, []int{1, 10, 50, 100})
		})

		Convey("deleting an unrelated node leaves the handle reachable", func() {
			other := tr.Insort(20)
			tr.Delete(other)
			So(h.Value(), ShouldEqual, 10)
			found := false
			for _, v := range tr.Values() {
				if v == 10 {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestStressInsertDeleteViaLCGSequence(t *testing.T) {
	Convey("Given values drawn from the deterministic LCG sequence with seed 13", t, func() {
		const multiplier uint64 = 2862933555777941757
		const addend uint64 = 3037000493

		// Scale capped at 2000 (rather than up to 100000) to keep this test
		// fast; the invariants checked below don't depend on n.
		for _, n := range []int{1000, 2000} {
			tr := New[uint64](func(a, b uint64) bool { return a < b })
			state := uint64(13)
			keys := make([]uint64, 0, n)
			for i := 0; i < n; i++ {
				state = state*multiplier + addend
				key := state >> 32
				keys = append(keys, key)
				tr.Insort(key)
			}
			So(tr.Verify(), ShouldBeTrue)

			for _, k := range keys {
				h, ok := tr.BinarySearch(k)
				So(ok, ShouldBeTrue)
				tr.Delete(h)
			}
			So(tr.Verify(), ShouldBeTrue)
			So(tr.Len(), ShouldEqual, 0)
		}
	})
}

func TestDeallocate(t *testing.T) {
	Convey("Deallocate leaves the tree empty", t, func() {
		tr := New[int](intLess)
		for _, v := range []int{3, 1, 2} {
			tr.Insort(v)
		}
		tr.Deallocate()
		So(tr.Len(), ShouldEqual, 0)
		So(tr.Values(), ShouldBeEmpty)
	})
}
