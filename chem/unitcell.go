// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : unitcell.go
package chem

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CellShape tags the kind of periodic box a UnitCell represents.
type CellShape int

const (
	CellInfinite CellShape = iota
	CellOrthorhombic
	CellTriclinic
)

func (s CellShape) String() string {
	switch s {
	case CellOrthorhombic:
		return "orthorhombic"
	case CellTriclinic:
		return "triclinic"
	default:
		return "infinite"
	}
}

// UnitCell is the periodic simulation box: a shape tag plus the six
// scalars (a,b,c,alpha,beta,gamma) with angles in degrees. The 3x3
// matrix representation is a pure function of those six scalars, built
// with a canonical lower-triangular orientation (matching the
// convention most text trajectory formats use), via gonum/mat.
type UnitCell struct {
	shape              CellShape
	a, b, c            float64
	alpha, beta, gamma float64
}

// NewInfiniteCell returns the cell with no periodicity.
func NewInfiniteCell() UnitCell {
	return UnitCell{shape: CellInfinite, alpha: 90, beta: 90, gamma: 90}
}

// NewOrthorhombicCell returns an orthorhombic cell with the given edge
// lengths.
func NewOrthorhombicCell(a, b, c float64) UnitCell {
	return UnitCell{shape: CellOrthorhombic, a: a, b: b, c: c, alpha: 90, beta: 90, gamma: 90}
}

// NewTriclinicCell returns a fully general cell.
func NewTriclinicCell(a, b, c, alpha, beta, gamma float64) UnitCell {
	return UnitCell{shape: CellTriclinic, a: a, b: b, c: c, alpha: alpha, beta: beta, gamma: gamma}
}

// Shape returns the cell's shape tag.
func (c UnitCell) Shape() CellShape { return c.shape }

// Lengths returns (a, b, c).
func (c UnitCell) Lengths() (float64, float64, float64) { return c.a, c.b, c.c }

// Angles returns (alpha, beta, gamma) in degrees.
func (c UnitCell) Angles() (float64, float64, float64) { return c.alpha, c.beta, c.gamma }

// SetLength sets one of the three edge lengths (0=a, 1=b, 2=c). Setting
// a length on an infinite cell is rejected, per spec.md §3.
func (c *UnitCell) SetLength(axis int, value float64) error {
	if c.shape == CellInfinite {
		return NewError(ErrGeneric, "cannot set a length on an infinite cell")
	}
	switch axis {
	case 0:
		c.a = value
	case 1:
		c.b = value
	case 2:
		c.c = value
	default:
		return NewError(ErrOutOfBounds, "invalid cell axis %d", axis)
	}
	return nil
}

// SetAngle sets one of the three angles in degrees (0=alpha, 1=beta,
// 2=gamma). Setting an angle away from 90 degrees promotes an
// orthorhombic cell to triclinic, per spec.md §3.
func (c *UnitCell) SetAngle(axis int, degrees float64) error {
	if c.shape == CellInfinite {
		return NewError(ErrGeneric, "cannot set an angle on an infinite cell")
	}
	switch axis {
	case 0:
		c.alpha = degrees
	case 1:
		c.beta = degrees
	case 2:
		c.gamma = degrees
	default:
		return NewError(ErrOutOfBounds, "invalid cell axis %d", axis)
	}
	if math.Abs(degrees-90) > 1e-9 {
		c.shape = CellTriclinic
	}
	return nil
}

// Matrix returns the 3x3 matrix representation of the cell: rows are
// the lattice vectors, in a canonical lower-triangular orientation
// derived purely from (a,b,c,alpha,beta,gamma). For an infinite cell
// this is the zero matrix.
func (c UnitCell) Matrix() *mat.Dense {
	m := mat.NewDense(3, 3, nil)
	if c.shape == CellInfinite {
		return m
	}

	alpha := c.alpha * math.Pi / 180
	beta := c.beta * math.Pi / 180
	gamma := c.gamma * math.Pi / 180

	cosAlpha, cosBeta, cosGamma := math.Cos(alpha), math.Cos(beta), math.Cos(gamma)
	sinGamma := math.Sin(gamma)

	// Row-vector lattice, a along x, b in the xy-plane, c completes the
	// triple: the standard lower-triangular convention.
	m.Set(0, 0, c.a)
	m.Set(1, 0, c.b*cosGamma)
	m.Set(1, 1, c.b*sinGamma)

	if sinGamma == 0 {
		sinGamma = 1e-12
	}
	cx := c.c * cosBeta
	cy := c.c * (cosAlpha - cosBeta*cosGamma) / sinGamma
	cz2 := c.c*c.c - cx*cx - cy*cy
	cz := 0.0
	if cz2 > 0 {
		cz = math.Sqrt(cz2)
	}
	m.Set(2, 0, cx)
	m.Set(2, 1, cy)
	m.Set(2, 2, cz)
	return m
}

// Volume returns the cell volume (0 for an infinite cell).
func (c UnitCell) Volume() float64 {
	if c.shape == CellInfinite {
		return 0
	}
	return mat.Det(c.Matrix())
}

// Wrap applies the minimum-image convention to a vector expressed in
// cartesian coordinates, returning the equivalent vector inside the
// cell. Wrapping is the identity on an infinite cell.
func (c UnitCell) Wrap(v Vector3D) Vector3D {
	if c.shape == CellInfinite {
		return v
	}
	m := c.Matrix()
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return v
	}
	frac := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var fracCoords mat.VecDense
	// Matrix() stores lattice vectors as rows, so cartesian = fracᵀ·M,
	// i.e. cart = Mᵀ·frac (see the inverse step below). The forward
	// conversion is therefore frac = (Mᵀ)⁻¹·cart = invᵀ·cart, not bare
	// inv·cart.
	fracCoords.MulVec(inv.T(), frac)
	fx := fracCoords.AtVec(0) - math.Round(fracCoords.AtVec(0))
	fy := fracCoords.AtVec(1) - math.Round(fracCoords.AtVec(1))
	fz := fracCoords.AtVec(2) - math.Round(fracCoords.AtVec(2))
	wrapped := mat.NewVecDense(3, []float64{fx, fy, fz})
	var cart mat.VecDense
	cart.MulVec(m.T(), wrapped)
	return Vector3D{X: cart.AtVec(0), Y: cart.AtVec(1), Z: cart.AtVec(2)}
}
