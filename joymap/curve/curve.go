// Package curve provides the deadzone and response curve transforms applied
// to axis values before they are remapped.
package curve

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidCurve = errors.New("curve: invalid definition")

// Deadzone maps a raw axis reading onto [-1, 1], collapsing the band between
// CenterLow and CenterHigh to zero and saturating outside Low and High.
type Deadzone struct {
	Low        float64
	CenterLow  float64
	CenterHigh float64
	High       float64
}

// NoDeadzone passes values through unchanged
var NoDeadzone = Deadzone{Low: -1, CenterLow: 0, CenterHigh: 0, High: 1}

func (d Deadzone) Validate() error {
	if !(d.Low < d.CenterLow && d.CenterLow <= d.CenterHigh && d.CenterHigh < d.High) {
		return fmt.Errorf("%w: deadzone %v must be strictly increasing around the centre", ErrInvalidCurve, d)
	}
	return nil
}

func (d Deadzone) Apply(v float64) float64 {
	switch {
	case v <= d.Low:
		return -1
	case v >= d.High:
		return 1
	case v < d.CenterLow:
		return -(d.CenterLow - v) / (d.CenterLow - d.Low)
	case v > d.CenterHigh:
		return (v - d.CenterHigh) / (d.High - d.CenterHigh)
	}
	return 0
}

// Point is a control point of a piecewise linear curve
type Point struct {
	X, Y float64
}

// Piecewise interpolates linearly between control points spanning [-1, 1]
type Piecewise struct {
	points []Point
}

// NewPiecewise sorts the points by X and checks that they cover [-1, 1]
func NewPiecewise(points []Point) (*Piecewise, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least two control points", ErrInvalidCurve)
	}

	sorted := append([]Point(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].X == sorted[i-1].X {
			return nil, fmt.Errorf("%w: duplicate control point at x=%v", ErrInvalidCurve, sorted[i].X)
		}
	}
	if sorted[0].X != -1 || sorted[len(sorted)-1].X != 1 {
		return nil, fmt.Errorf("%w: control points must start at x=-1 and end at x=1", ErrInvalidCurve)
	}

	return &Piecewise{points: sorted}, nil
}

// Linear is the identity curve
func Linear() *Piecewise {
	return &Piecewise{points: []Point{{-1, -1}, {1, 1}}}
}

func (p *Piecewise) Apply(v float64) float64 {
	if v <= p.points[0].X {
		return p.points[0].Y
	}
	last := p.points[len(p.points)-1]
	if v >= last.X {
		return last.Y
	}

	i := sort.Search(len(p.points), func(i int) bool { return p.points[i].X >= v })
	a, b := p.points[i-1], p.points[i]
	t := (v - a.X) / (b.X - a.X)
	return a.Y + t*(b.Y-a.Y)
}
