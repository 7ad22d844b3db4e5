// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : geometry.go
package selection

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cx-luo/chemfiles/chem"
)

func vec(v chem.Vector3D) []float64 { return []float64{v.X, v.Y, v.Z} }

// separation returns the minimum-image displacement from - to, wrapped
// through the cell so that a pair split across a periodic boundary
// reports the short way around rather than the raw straight-line
// difference. Wrap is the identity on an infinite cell.
func separation(cell chem.UnitCell, from, to chem.Vector3D) []float64 {
	d := cell.Wrap(chem.Vector3D{X: to.X - from.X, Y: to.Y - from.Y, Z: to.Z - from.Z})
	return vec(d)
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm(a []float64) float64 { return floats.Norm(a, 2) }

func dot(a, b []float64) float64 { return floats.Dot(a, b) }

// distance is the minimum-image Euclidean distance between two atoms,
// per spec.md §4.5.2's distance(a,b) geometry function.
func distance(cell chem.UnitCell, a, b chem.Vector3D) float64 {
	return norm(separation(cell, b, a))
}

// angleBetween is the angle (radians) at vertex b in the a-b-c triple,
// with both bond vectors taken as minimum images.
func angleBetween(cell chem.UnitCell, a, b, c chem.Vector3D) float64 {
	u := separation(cell, b, a)
	v := separation(cell, b, c)
	cosTheta := dot(u, v) / (norm(u) * norm(v))
	if cosTheta > 1 {
		cosTheta = 1
	} else if cosTheta < -1 {
		cosTheta = -1
	}
	return math.Acos(cosTheta)
}

// dihedralBetween is the torsion angle (radians) of the a-b-c-d chain,
// with each bond vector taken as a minimum image.
func dihedralBetween(cell chem.UnitCell, a, b, c, d chem.Vector3D) float64 {
	b1 := separation(cell, a, b)
	b2 := separation(cell, b, c)
	b3 := separation(cell, c, d)

	n1 := cross(b1, b2)
	n2 := cross(b2, b3)
	m1 := cross(n1, normalize(b2))

	x := dot(n1, n2)
	y := dot(m1, n2)
	return math.Atan2(y, x)
}

func scale(a []float64, s float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * s
	}
	return out
}

func normalize(a []float64) []float64 {
	n := norm(a)
	if n == 0 {
		return a
	}
	return scale(a, 1/n)
}

// outOfPlane measures how far atom d sits from the plane defined by
// a, b, c, as the projection of (d-b) onto the normal of (a-b, c-b),
// normalized to a unit direction. All three bond vectors are taken as
// minimum images.
func outOfPlane(cell chem.UnitCell, a, b, c, d chem.Vector3D) float64 {
	u := separation(cell, b, a)
	v := separation(cell, b, c)
	n := normalize(cross(u, v))
	w := separation(cell, b, d)
	return dot(w, n)
}
