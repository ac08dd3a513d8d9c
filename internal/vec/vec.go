package vec

import "math"

// V3 is a three-component Euclidean vector. Planar systems keep Z = 0.
type V3 struct {
	X, Y, Z float64
}

func (v V3) Add(o V3) V3 {
	return V3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v V3) Sub(o V3) V3 {
	return V3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v V3) Scale(s float64) V3 {
	return V3{v.X * s, v.Y * s, v.Z * s}
}

func (v V3) Dot(o V3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v V3) Cross(o V3) V3 {
	return V3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v V3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v V3) Norm2() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v V3) Dist(o V3) float64 {
	return v.Sub(o).Norm()
}

func (v V3) Dist2(o V3) float64 {
	return v.Sub(o).Norm2()
}

// Normalize returns the unit vector. The zero vector normalizes to itself.
func (v V3) Normalize() V3 {
	n := v.Norm()
	if n == 0 {
		return V3{}
	}
	return v.Scale(1 / n)
}

func (v V3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
