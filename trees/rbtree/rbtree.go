// Package rbtree implements an intrusive red-black tree with parent-linked
// nodes, CLRS-style insertion and deletion fixup, and in-order
// successor/predecessor stepping.
//
// Unlike the skip list, a tree node's fan-out never varies, so nodes here
// are plain heap-allocated records rather than internal/hblock header
// blocks -- the header-block primitive exists to solve variable fan-out
// in one allocation, which this container does not need.
package rbtree

import "errors"

var (
	// ErrEmpty names the empty-tree condition. First and Last report an
	// empty tree through their boolean result and do not return it.
	ErrEmpty = errors.New("rbtree: empty tree")
)

type color bool

const (
	black color = false
	red   color = true
)

// Node is a single tree record: value, color, and parent/left/right
// pointers. Its zero value is never a valid handle.
type Node[V any] struct {
	parent, left, right *Node[V]
	value                V
	color                color
}

// Value returns n's stored element.
func (n *Node[V]) Value() V {
	return n.value
}

// Handle is the stable identity of a live node, returned by Insort/Append/
// InsertAfter and consumed by Delete.
type Handle[V any] = *Node[V]

// Tree is an ordered, parent-linked red-black tree.
type Tree[V any] struct {
	root  *Node[V]
	less  func(a, b V) bool
	count int
}

// New creates an empty tree ordered by less.
func New[V any](less func(a, b V) bool) *Tree[V] {
	return &Tree[V]{less: less}
}

// Len returns the number of live nodes.
func (t *Tree[V]) Len() int {
	return t.count
}

func isRed[V any](n *Node[V]) bool {
	return n != nil && n.color == red
}

func isBlack[V any](n *Node[V]) bool {
	return !isRed(n)
}

// Insort performs a standard BST descent (left if v < current, right
// otherwise) to a null slot, links a red leaf there, and runs
// insertion-fixup. The first insertion into an empty tree makes a black
// root.
func (t *Tree[V]) Insort(v V) Handle[V] {
	if t.root == nil {
		return t.insertRoot(v)
	}

	cur := t.root
	for {
		if t.less(v, cur.value) {
			if cur.left == nil {
				n := &Node[V]{value: v, color: red, parent: cur}
				cur.left = n
				t.insertFixup(n)
				t.count++
				return n
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				n := &Node[V]{value: v, color: red, parent: cur}
				cur.right = n
				t.insertFixup(n)
				t.count++
				return n
			}
			cur = cur.right
		}
	}
}

// Append inserts v as the immediate in-order successor of the current
// last node (or as root if empty); it does not require v to compare
// greater than anything already present.
func (t *Tree[V]) Append(v V) Handle[V] {
	last, ok := t.Last()
	if !ok {
		return t.insertRoot(v)
	}
	return t.InsertAfter(last, v)
}

// InsertAfter places v as p's right child if p has no right child, else
// as the leftmost descendant of p.right, then runs insertion-fixup.
func (t *Tree[V]) InsertAfter(p Handle[V], v V) Handle[V] {
	n := &Node[V]{value: v, color: red}
	if p.right == nil {
		p.right = n
		n.parent = p
	} else {
		leaf := p.right
		for leaf.left != nil {
			leaf = leaf.left
		}
		leaf.left = n
		n.parent = leaf
	}
	t.insertFixup(n)
	t.count++
	return n
}

func (t *Tree[V]) insertRoot(v V) Handle[V] {
	n := &Node[V]{value: v, color: black}
	t.root = n
	t.count++
	return n
}

// insertFixup restores the red-black properties after linking red leaf z,
// via the standard five-case analysis. Case 2 (black parent) is the loop
// condition. Root is always recolored black at the end, which handles
// case 1 as a single unconditional statement: if the loop exits because
// case 3 moved z up to the root and colored it red, that root still
// needs blackening.
func (t *Tree[V]) insertFixup(z *Node[V]) {
	for z.parent != nil && z.parent.color == red {
		p := z.parent
		g := p.parent // p is red, so p cannot be root; g is never nil here.

		if p == g.left {
			u := g.right
			if isRed(u) {
				// Case 3: uncle red.
				p.color = black
				u.color = black
				g.color = red
				z = g
				continue
			}
			if z == p.right {
				// Case 4: inner child, rotate to convert to case 5.
				z = p
				t.rotateLeft(z)
				p = z.parent
			}
			// Case 5: outer child.
			p.color = black
			g.color = red
			t.rotateRight(g)
			break
		}

		u := g.left
		if isRed(u) {
			p.color = black
			u.color = black
			g.color = red
			z = g
			continue
		}
		if z == p.left {
			z = p
			t.rotateRight(z)
			p = z.parent
		}
		p.color = black
		g.color = red
		t.rotateLeft(g)
		break
	}
	t.root.color = black
}

// rotateLeft(p): let r = p.right; splice r into p's former parent slot,
// p becomes r's left child, r's former left subtree becomes p's right
// subtree.
func (t *Tree[V]) rotateLeft(p *Node[V]) {
	r := p.right
	p.right = r.left
	if r.left != nil {
		r.left.parent = p
	}
	t.transplant(p, r)
	r.left = p
	p.parent = r
}

// rotateRight is the mirror of rotateLeft.
func (t *Tree[V]) rotateRight(p *Node[V]) {
	l := p.left
	p.left = l.right
	if l.right != nil {
		l.right.parent = p
	}
	t.transplant(p, l)
	l.right = p
	p.parent = l
}

// transplant splices v into u's parent's child slot (or makes v the root
// if u had none), without touching u's own children.
func (t *Tree[V]) transplant(u, v *Node[V]) {
	switch {
	case u.parent == nil:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

// First returns the leftmost node, or false if the tree is empty.
func (t *Tree[V]) First() (Handle[V], bool) {
	if t.root == nil {
		return nil, false
	}
	n := t.root
	for n.left != nil {
		n = n.left
	}
	return n, true
}

// Last returns the rightmost node, or false if the tree is empty.
func (t *Tree[V]) Last() (Handle[V], bool) {
	if t.root == nil {
		return nil, false
	}
	n := t.root
	for n.right != nil {
		n = n.right
	}
	return n, true
}

// Successor returns n's in-order successor, or false if n is the
// rightmost node.
func (t *Tree[V]) Successor(n Handle[V]) (Handle[V], bool) {
	if n.right != nil {
		m := n.right
		for m.left != nil {
			m = m.left
		}
		return m, true
	}
	child, p := n, n.parent
	for p != nil && child == p.right {
		child, p = p, p.parent
	}
	if p == nil {
		return nil, false
	}
	return p, true
}

// Predecessor returns n's in-order predecessor, or false if n is the
// leftmost node.
func (t *Tree[V]) Predecessor(n Handle[V]) (Handle[V], bool) {
	if n.left != nil {
		m := n.left
		for m.right != nil {
			m = m.right
		}
		return m, true
	}
	child, p := n, n.parent
	for p != nil && child == p.left {
		child, p = p, p.parent
	}
	if p == nil {
		return nil, false
	}
	return p, true
}

// BinarySearch performs a BST lookup by value.
func (t *Tree[V]) BinarySearch(v V) (Handle[V], bool) {
	n := t.root
	for n != nil {
		switch {
		case t.less(v, n.value):
			n = n.left
		case t.less(n.value, v):
			n = n.right
		default:
			return n, true
		}
	}
	return nil, false
}

// Delete removes h from the tree, replacing a two-child node by its
// in-order successor and running deletion-fixup if the removed color was
// black.
func (t *Tree[V]) Delete(h Handle[V]) {
	target := h
	if target.left != nil && target.right != nil {
		succ := target.right
		for succ.left != nil {
			succ = succ.left
		}
		t.swapStructure(target, succ)
	}

	// target now has at most one child.
	child := target.left
	if child == nil {
		child = target.right
	}

	removedColor := target.color
	xParent := target.parent
	t.transplant(target, child)

	if removedColor == black {
		t.deleteFixup(child, xParent)
	}

	target.parent, target.left, target.right = nil, nil, nil
	t.count--
}

// swapStructure exchanges d and s's structural fields (parent, left,
// right, color) so that s takes over d's former position in the tree and
// d takes s's former position, leaving both nodes' values untouched. s is
// always either d's immediate right child or a left-descendant of it
// (the in-order successor located by Delete).
//
// A naive simultaneous four-field swap leaves a self-referential cycle
// when s is d's immediate right child: s's old parent field (d) would
// land in d's new parent field, and d's old right field (s) would land
// in s's new right field. This captures every old field before any
// assignment so that cycle never transiently exists, then wires the
// surrounding slots directly from the captured values.
func (t *Tree[V]) swapStructure(d, s *Node[V]) {
	dp, dl, dr, dc := d.parent, d.left, d.right, d.color
	sp, sl, sr, sc := s.parent, s.left, s.right, s.color

	if sp == d {
		s.parent, s.left, s.color = dp, dl, dc
		s.right = d
		d.parent, d.left, d.right, d.color = s, sl, sr, sc
	} else {
		s.parent, s.left, s.right, s.color = dp, dl, dr, dc
		d.parent, d.left, d.right, d.color = sp, sl, sr, sc
		sp.left = d
	}

	if dp == nil {
		t.root = s
	} else if dp.left == d {
		dp.left = s
	} else {
		dp.right = s
	}

	if s.left != nil {
		s.left.parent = s
	}
	if s.right != nil {
		s.right.parent = s
	}
	if d.right != nil {
		d.right.parent = d
	}
}

// deleteFixup restores the red-black properties after removing a black
// node whose sole child x (possibly nil) has taken its place at parent.
// Six cases, CLRS presentation; cases 3 and 4 share one branch here
// because the loop condition and the final unconditional blackening of x
// below naturally distinguish them: if parent was red, the loop exits
// immediately (parent is not black) and the final blackening performs
// case 4's color swap; if parent was black, the loop continues and
// recurses, which is case 3.
func (t *Tree[V]) deleteFixup(x, parent *Node[V]) {
	for x != t.root && isBlack(x) && parent != nil {
		if x == parent.left {
			sib := parent.right
			if isRed(sib) {
				// Case 2: sibling red.
				sib.color = black
				parent.color = red
				t.rotateLeft(parent)
				sib = parent.right
			}
			if isBlack(sib.left) && isBlack(sib.right) {
				// Cases 3/4: both of sibling's children black.
				sib.color = red
				x, parent = parent, parent.parent
				continue
			}
			if isBlack(sib.right) {
				// Case 5: near child red, far child black.
				if sib.left != nil {
					sib.left.color = black
				}
				sib.color = red
				t.rotateRight(sib)
				sib = parent.right
			}
			// Case 6: far child red.
			sib.color = parent.color
			parent.color = black
			if sib.right != nil {
				sib.right.color = black
			}
			t.rotateLeft(parent)
			x, parent = t.root, nil
		} else {
			sib := parent.left
			if isRed(sib) {
				sib.color = black
				parent.color = red
				t.rotateRight(parent)
				sib = parent.left
			}
			if isBlack(sib.left) && isBlack(sib.right) {
				sib.color = red
				x, parent = parent, parent.parent
				continue
			}
			if isBlack(sib.left) {
				if sib.right != nil {
					sib.right.color = black
				}
				sib.color = red
				t.rotateLeft(sib)
				sib = parent.left
			}
			sib.color = parent.color
			parent.color = black
			if sib.left != nil {
				sib.left.color = black
			}
			t.rotateRight(parent)
			x, parent = t.root, nil
		}
	}
	if x != nil {
		x.color = black
	}
}

// Values returns every live value in in-order sequence.
func (t *Tree[V]) Values() []V {
	out := make([]V, 0, t.count)
	var visit func(*Node[V])
	visit = func(n *Node[V]) {
		if n == nil {
			return
		}
		visit(n.left)
		out = append(out, n.value)
		visit(n.right)
	}
	visit(t.root)
	return out
}

// Verify returns whether the tree currently satisfies the red-black
// structural properties: the root is black, every red node has black
// children, all root-to-leaf paths have equal black height, and parent
// links are consistent with child links. Value order is not checked,
// since Append and InsertAfter place values by position rather than by
// less.
func (t *Tree[V]) Verify() bool {
	if t.root != nil && t.root.color != black {
		return false
	}
	_, ok := t.verifyNode(t.root, nil)
	return ok
}

func (t *Tree[V]) verifyNode(n, parent *Node[V]) (blackHeight int, ok bool) {
	if n == nil {
		return 0, true
	}
	if n.parent != parent {
		return 0, false
	}
	if isRed(n) && (isRed(n.left) || isRed(n.right)) {
		return 0, false
	}

	lh, ok := t.verifyNode(n.left, n)
	if !ok {
		return 0, false
	}
	rh, ok := t.verifyNode(n.right, n)
	if !ok {
		return 0, false
	}
	if lh != rh {
		return 0, false
	}

	bh := lh
	if isBlack(n) {
		bh++
	}
	return bh, true
}

// Deallocate recursively clears every node's pointers, allowing garbage
// collection of the whole tree, then resets the tree to empty.
func (t *Tree[V]) Deallocate() {
	deallocateNode(t.root)
	t.root = nil
	t.count = 0
}

func deallocateNode[V any](n *Node[V]) {
	if n == nil {
		return
	}
	deallocateNode(n.left)
	deallocateNode(n.right)
	n.left, n.right, n.parent = nil, nil, nil
}
