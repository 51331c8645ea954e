package grid

// Junction1D carries the width and directional flags of one axis of a cell
// junction. The from flag on the cell at edge.From marks the edge active in
// that direction; the matching to flag lives on the cell at edge.To.
type Junction1D struct {
	Width float32
	From  bool
	To    bool
}

// Junction describes the road or river passing through a cell, one 1D
// junction per axis.
type Junction struct {
	Horizontal Junction1D
	Vertical   Junction1D
}

// Width is the extent along the x axis, drawn from the vertical junction.
func (j Junction) Width() float32 { return j.Vertical.Width }

// Height is the extent along the y axis, drawn from the horizontal junction.
func (j Junction) Height() float32 { return j.Horizontal.Width }

func (j Junction) LongestSide() float32 {
	if j.Width() > j.Height() {
		return j.Width()
	}
	return j.Height()
}

// Here reports whether any part of the junction is present at the cell.
func (j Junction) Here() bool { return j.Width() > 0 || j.Height() > 0 }

// Corner reports whether the junction turns at the cell.
func (j Junction) Corner() bool { return j.Width() > 0 && j.Height() > 0 }

// Axis selects the 1D junction matching an edge orientation.
func (j *Junction) Axis(horizontal bool) *Junction1D {
	if horizontal {
		return &j.Horizontal
	}
	return &j.Vertical
}

// EdgesFrom returns the unit edges leaving position p that this junction
// marks active in the from direction.
func (j Junction) EdgesFrom(p Position) []Edge {
	var edges []Edge
	if j.Horizontal.From {
		edges = append(edges, NewEdge(p, p.Add(1, 0)))
	}
	if j.Vertical.From {
		edges = append(edges, NewEdge(p, p.Add(0, 1)))
	}
	return edges
}

// PlannedAt is an optional build time on a planned road junction.
type PlannedAt struct {
	When uint64
	OK   bool
}

// PlannedJunction1D mirrors Junction1D for planned roads, holding the
// scheduled build time per directional flag.
type PlannedJunction1D struct {
	From PlannedAt
	To   PlannedAt
}

type PlannedJunction struct {
	Horizontal PlannedJunction1D
	Vertical   PlannedJunction1D
}

func (j *PlannedJunction) Axis(horizontal bool) *PlannedJunction1D {
	if horizontal {
		return &j.Horizontal
	}
	return &j.Vertical
}

func (j PlannedJunction) Here() bool {
	return j.Horizontal.From.OK || j.Horizontal.To.OK || j.Vertical.From.OK || j.Vertical.To.OK
}
