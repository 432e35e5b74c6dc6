package motion

import gomath "math"

// DefaultSampleCount is the lookup table resolution used when none is configured.
const DefaultSampleCount = 64

const (
	quadMax       = 127
	solveEpsilon  = 1e-4
	slopeEpsilon  = 1e-9
	maxIterations = 64
)

// ControlQuad holds the two Bezier control points of an easing curve,
// each coordinate in [0,127]. (0,0) and (127,127) are implicit endpoints.
type ControlQuad struct {
	X1, X2 uint8
	Y1, Y2 uint8
}

// DefaultControlQuad is the curve used when nothing was authored.
var DefaultControlQuad = ControlQuad{X1: 20, X2: 20, Y1: 107, Y2: 107}

// LinearControlQuad is the identity curve.
var LinearControlQuad = ControlQuad{X1: 20, X2: 107, Y1: 20, Y2: 107}

// IsLinear reports whether the curve degenerates to a straight line.
func (q ControlQuad) IsLinear() bool {
	return q.X1 == q.Y1 && q.X2 == q.Y2
}

// QuadWord packs the quad into one word, X1 in the low byte.
func (q ControlQuad) QuadWord() uint32 {
	return uint32(q.X1) | uint32(q.X2)<<8 | uint32(q.Y1)<<16 | uint32(q.Y2)<<24
}

// ControlQuadFromWord unpacks a word produced by QuadWord.
func ControlQuadFromWord(w uint32) ControlQuad {
	return ControlQuad{
		X1: uint8(w),
		X2: uint8(w >> 8),
		Y1: uint8(w >> 16),
		Y2: uint8(w >> 24),
	}.clamped()
}

// ControlQuadFromBytes builds a quad from (X1, X2, Y1, Y2) order.
func ControlQuadFromBytes(b [4]uint8) ControlQuad {
	return ControlQuad{X1: b[0], X2: b[1], Y1: b[2], Y2: b[3]}.clamped()
}

// Bytes returns the quad in (X1, X2, Y1, Y2) order.
func (q ControlQuad) Bytes() [4]uint8 {
	return [4]uint8{q.X1, q.X2, q.Y1, q.Y2}
}

func (q ControlQuad) clamped() ControlQuad {
	clamp := func(v uint8) uint8 {
		if v > quadMax {
			return quadMax
		}
		return v
	}
	return ControlQuad{X1: clamp(q.X1), X2: clamp(q.X2), Y1: clamp(q.Y1), Y2: clamp(q.Y2)}
}

// InterpolationTable is a precomputed sampling of one easing curve.
// The zero value samples linearly.
type InterpolationTable struct {
	quad   ControlQuad
	n      int
	table  []float64
	linear bool
}

// NewInterpolationTable builds a table for quad with n samples.
func NewInterpolationTable(quad ControlQuad, n int) InterpolationTable {
	var t InterpolationTable
	t.Build(quad, n)
	return t
}

// Build (re)computes the table. Rebuilding with the same inputs yields the
// same values. n below 1 selects DefaultSampleCount.
func (t *InterpolationTable) Build(quad ControlQuad, n int) {
	if n < 1 {
		n = DefaultSampleCount
	}
	t.quad = quad.clamped()
	t.n = n
	t.linear = t.quad.IsLinear()
	if t.linear {
		t.table = nil
		return
	}

	x1 := float64(t.quad.X1) / quadMax
	x2 := float64(t.quad.X2) / quadMax
	y1 := float64(t.quad.Y1) / quadMax
	y2 := float64(t.quad.Y2) / quadMax

	table := make([]float64, n+1)
	for i := 0; i < n; i++ {
		table[i] = solveCurve(x1, x2, y1, y2, float64(i)/float64(n))
	}
	table[n] = 1
	t.table = table
}

// Quad returns the control quad the table was built from.
func (t *InterpolationTable) Quad() ControlQuad {
	if t.n == 0 {
		return LinearControlQuad
	}
	return t.quad
}

// SampleCount returns N, the number of segments in the table.
func (t *InterpolationTable) SampleCount() int { return t.n }

// IsLinear reports whether sampling is the identity.
func (t *InterpolationTable) IsLinear() bool {
	return t.linear || len(t.table) == 0
}

// Values returns a copy of the table, nil when linear.
func (t *InterpolationTable) Values() []float64 {
	if t.IsLinear() {
		return nil
	}
	out := make([]float64, len(t.table))
	copy(out, t.table)
	return out
}

// Sample maps a linear coefficient in [0,1] onto the curve.
// Inputs outside the range are clamped.
func (t *InterpolationTable) Sample(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	if t.IsLinear() {
		return x
	}
	pos := x * float64(t.n)
	i := int(pos)
	if i >= t.n {
		return t.table[t.n]
	}
	frac := pos - float64(i)
	return t.table[i] + (t.table[i+1]-t.table[i])*frac
}

// solveCurve finds t with x(t) == in by Newton-Raphson and returns y(t).
func solveCurve(x1, x2, y1, y2, in float64) float64 {
	t := in
	for i := 0; i < maxIterations; i++ {
		diff := bezier(x1, x2, t) - in
		if gomath.Abs(diff) < solveEpsilon {
			break
		}
		slope := bezierSlope(x1, x2, t)
		if gomath.Abs(slope) < slopeEpsilon {
			break
		}
		t -= diff / slope
	}
	return bezier(y1, y2, t)
}

func bezier(p1, p2, t float64) float64 {
	a := 1 + 3*p1 - 3*p2
	b := 3*p2 - 6*p1
	c := 3 * p1
	return ((a*t+b)*t + c) * t
}

func bezierSlope(p1, p2, t float64) float64 {
	a := 1 + 3*p1 - 3*p2
	b := 3*p2 - 6*p1
	c := 3 * p1
	return (3*a*t+2*b)*t + c
}
