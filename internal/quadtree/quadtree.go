// Package quadtree is the broad-phase index used for neighbour queries.
//
// The tree is an arena of nodes addressed by index. It is rebuilt from
// scratch every tick: Reset rewinds the arena without freeing it, so a
// steady population reaches a steady allocation after the first few
// ticks. There is no removal.
package quadtree

const (
	DefaultCapacity = 8
	DefaultMaxDepth = 6

	noChild int32 = -1
)

// Rect is an axis-aligned region, origin at the top-left.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) intersects(minX, minY, maxX, maxY float64) bool {
	return maxX >= r.X && minX <= r.X+r.W && maxY >= r.Y && minY <= r.Y+r.H
}

func (r Rect) contains(minX, minY, maxX, maxY float64) bool {
	return minX >= r.X && maxX <= r.X+r.W && minY >= r.Y && maxY <= r.Y+r.H
}

type item struct {
	id                     int32
	minX, minY, maxX, maxY float64
}

type node struct {
	bounds   Rect
	depth    int
	items    []item
	children [4]int32
}

// quadrant returns the child slot that fully holds the box, or -1 when
// the box straddles a midline or leaves the node.
func (n *node) quadrant(it item) int {
	if !n.bounds.contains(it.minX, it.minY, it.maxX, it.maxY) {
		return -1
	}
	midX := n.bounds.X + n.bounds.W/2
	midY := n.bounds.Y + n.bounds.H/2

	top := it.maxY < midY
	bottom := it.minY > midY
	left := it.maxX < midX
	right := it.minX > midX

	switch {
	case top && left:
		return 0
	case top && right:
		return 1
	case bottom && left:
		return 2
	case bottom && right:
		return 3
	}
	return -1
}

// Tree is a region quadtree over disc bounding boxes.
type Tree struct {
	nodes    []node
	used     int
	capacity int
	maxDepth int
	pad      float64

	count int
}

// New creates a tree that splits a node once it holds more than capacity
// items, down to maxDepth. pad widens every query box; pass the
// collision margin.
func New(capacity, maxDepth int, pad float64) *Tree {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Tree{
		capacity: capacity,
		maxDepth: maxDepth,
		pad:      pad,
	}
}

// Reset empties the tree and sets the root region.
func (t *Tree) Reset(bounds Rect) {
	t.used = 0
	t.count = 0
	t.alloc(bounds, 0)
}

func (t *Tree) alloc(bounds Rect, depth int) int32 {
	if t.used < len(t.nodes) {
		n := &t.nodes[t.used]
		n.bounds = bounds
		n.depth = depth
		n.items = n.items[:0]
		n.children = [4]int32{noChild, noChild, noChild, noChild}
	} else {
		t.nodes = append(t.nodes, node{
			bounds:   bounds,
			depth:    depth,
			items:    make([]item, 0, t.capacity+1),
			children: [4]int32{noChild, noChild, noChild, noChild},
		})
	}
	t.used++
	return int32(t.used - 1)
}

// Insert adds the disc id at (x, y) with radius r.
func (t *Tree) Insert(id int32, x, y, r float64) {
	if t.used == 0 {
		t.Reset(Rect{})
	}
	t.count++
	t.insert(0, item{id: id, minX: x - r, minY: y - r, maxX: x + r, maxY: y + r})
}

func (t *Tree) insert(ni int32, it item) {
	for {
		n := &t.nodes[ni]
		if n.children[0] != noChild {
			if q := n.quadrant(it); q >= 0 {
				ni = n.children[q]
				continue
			}
		}

		n.items = append(n.items, it)
		if len(n.items) > t.capacity && n.depth < t.maxDepth && n.children[0] == noChild {
			t.split(ni)
		}
		return
	}
}

func (t *Tree) split(ni int32) {
	b := t.nodes[ni].bounds
	depth := t.nodes[ni].depth + 1
	hw, hh := b.W/2, b.H/2

	var children [4]int32
	children[0] = t.alloc(Rect{b.X, b.Y, hw, hh}, depth)
	children[1] = t.alloc(Rect{b.X + hw, b.Y, hw, hh}, depth)
	children[2] = t.alloc(Rect{b.X, b.Y + hh, hw, hh}, depth)
	children[3] = t.alloc(Rect{b.X + hw, b.Y + hh, hw, hh}, depth)

	// alloc may have grown the arena
	n := &t.nodes[ni]
	n.children = children

	items := n.items
	kept := items[:0]
	for _, it := range items {
		if q := n.quadrant(it); q >= 0 {
			t.insert(children[q], it)
			n = &t.nodes[ni]
		} else {
			kept = append(kept, it)
		}
	}
	n.items = kept
}

// Query appends to dst every id whose box may overlap a disc of radius r
// at (x, y), including the querying id itself. Stored boxes already
// carry their own radius, so widening the query by pad is enough for any
// disc within r + r_other + pad of the centre to be returned.
//
// Queries do not mutate the tree and may run concurrently.
func (t *Tree) Query(x, y, r float64, dst []int32) []int32 {
	if t.used == 0 {
		return dst
	}
	reach := r + t.pad
	minX, minY, maxX, maxY := x-reach, y-reach, x+reach, y+reach

	var buf [64]int32
	stack := append(buf[:0], 0)
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[ni]

		for _, it := range n.items {
			if it.maxX >= minX && it.minX <= maxX && it.maxY >= minY && it.minY <= maxY {
				dst = append(dst, it.id)
			}
		}
		if n.children[0] == noChild {
			continue
		}
		for _, c := range n.children {
			if t.nodes[c].bounds.intersects(minX, minY, maxX, maxY) {
				stack = append(stack, c)
			}
		}
	}
	return dst
}

// Len returns the number of inserted items since the last Reset.
func (t *Tree) Len() int { return t.count }

// Nodes returns the number of live nodes in the arena.
func (t *Tree) Nodes() int { return t.used }

// Depth returns the deepest live node level.
func (t *Tree) Depth() int {
	d := 0
	for i := 0; i < t.used; i++ {
		if t.nodes[i].depth > d {
			d = t.nodes[i].depth
		}
	}
	return d
}
