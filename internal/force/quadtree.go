package force

import "math"

const maxQuadDepth = 32

type quad struct {
	x0, y0 float64
	size   float64
	kids   *[4]*quad
	points []int
	charge float64
	cx, cy float64
}

// quadtree aggregates charges for the Barnes-Hut approximation. It is
// read-only once built, so workers can share it.
type quadtree struct {
	root    *quad
	xs, ys  []float64
	charges []float64
	theta2  float64
}

func newQuadtree(xs, ys, charges []float64, theta float64) *quadtree {
	t := &quadtree{xs: xs, ys: ys, charges: charges, theta2: theta * theta}

	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		x0 = math.Min(x0, xs[i])
		y0 = math.Min(y0, ys[i])
		x1 = math.Max(x1, xs[i])
		y1 = math.Max(y1, ys[i])
	}
	if math.IsInf(x0, 1) {
		return t
	}

	size := math.Max(x1-x0, y1-y0)
	if size == 0 {
		size = 1
	}
	// Points on the far edge must still fall inside the root square.
	size *= 1 + 1e-9

	t.root = &quad{x0: x0, y0: y0, size: size}
	for i := range xs {
		t.insert(t.root, i, 0)
	}
	t.accumulate(t.root)
	return t
}

func (t *quadtree) insert(q *quad, i, depth int) {
	if q.kids == nil {
		if len(q.points) == 0 || depth >= maxQuadDepth || t.coincident(q.points[0], i) {
			q.points = append(q.points, i)
			return
		}
		existing := q.points
		q.points = nil
		q.kids = &[4]*quad{}
		for _, j := range existing {
			t.insertChild(q, j, depth)
		}
	}
	t.insertChild(q, i, depth)
}

func (t *quadtree) insertChild(q *quad, i, depth int) {
	half := q.size / 2
	idx := 0
	x0, y0 := q.x0, q.y0
	if t.xs[i] >= q.x0+half {
		idx |= 1
		x0 += half
	}
	if t.ys[i] >= q.y0+half {
		idx |= 2
		y0 += half
	}
	if q.kids[idx] == nil {
		q.kids[idx] = &quad{x0: x0, y0: y0, size: half}
	}
	t.insert(q.kids[idx], i, depth+1)
}

func (q *quad) contains(x, y float64) bool {
	return x >= q.x0 && x < q.x0+q.size && y >= q.y0 && y < q.y0+q.size
}

func (t *quadtree) coincident(i, j int) bool {
	return t.xs[i] == t.xs[j] && t.ys[i] == t.ys[j]
}

// accumulate computes each quad's total charge and charge-weighted centroid.
func (t *quadtree) accumulate(q *quad) {
	var charge, cx, cy float64
	for _, i := range q.points {
		c := t.charges[i]
		charge += c
		cx += c * t.xs[i]
		cy += c * t.ys[i]
	}
	if q.kids != nil {
		for _, k := range q.kids {
			if k == nil {
				continue
			}
			t.accumulate(k)
			charge += k.charge
			cx += k.charge * k.cx
			cy += k.charge * k.cy
		}
	}
	q.charge = charge
	if charge != 0 {
		q.cx = cx / charge
		q.cy = cy / charge
	}
}

// impulse returns the change to node i's previous position produced by
// every other indexed charge.
func (t *quadtree) impulse(i int) (dpx, dpy float64) {
	if t.root == nil {
		return 0, 0
	}
	t.visit(t.root, i, &dpx, &dpy)
	return dpx, dpy
}

func (t *quadtree) visit(q *quad, i int, dpx, dpy *float64) {
	if q.charge == 0 {
		return
	}
	x, y := t.xs[i], t.ys[i]

	if q.kids != nil {
		dx, dy := q.cx-x, q.cy-y
		dn := dx*dx + dy*dy
		if !q.contains(x, y) && q.size*q.size/t.theta2 < dn {
			k := q.charge / dn
			*dpx -= dx * k
			*dpy -= dy * k
			return
		}
		for _, k := range q.kids {
			if k != nil {
				t.visit(k, i, dpx, dpy)
			}
		}
	}

	for _, j := range q.points {
		if j == i {
			continue
		}
		dx, dy := t.xs[j]-x, t.ys[j]-y
		dn := dx*dx + dy*dy
		if dn == 0 {
			continue
		}
		k := t.charges[j] / dn
		*dpx -= dx * k
		*dpy -= dy * k
	}
}

// exactImpulse is the O(n²) reference pass used when theta is zero.
func exactImpulse(xs, ys, charges []float64, i int) (dpx, dpy float64) {
	x, y := xs[i], ys[i]
	for j := range xs {
		if j == i || charges[j] == 0 {
			continue
		}
		dx, dy := xs[j]-x, ys[j]-y
		dn := dx*dx + dy*dy
		if dn == 0 {
			continue
		}
		k := charges[j] / dn
		dpx -= dx * k
		dpy -= dy * k
	}
	return dpx, dpy
}
