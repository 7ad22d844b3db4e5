// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : bondorder.go
package chem

// BondOrder enumerates the bond orders a Topology can record. It
// mirrors the teacher's BOND_* integer constants (src/molecule.go) but
// is a dedicated type so the compiler catches mixing it up with plain
// ints, and adds the orders spec.md §3 requires beyond single/double/
// triple/aromatic (amide, up/down directionality, dative, multiple and
// unknown).
type BondOrder int

const (
	BondUnknown BondOrder = iota
	BondSingle
	BondDouble
	BondTriple
	BondQuadruple
	BondQuintuple
	BondAmide
	BondAromatic
	BondUp
	BondDown
	BondDativeLeft
	BondDativeRight
	BondQuadrupleAndAHalf
)

// String names the bond order for diagnostics and pretty-printing.
func (o BondOrder) String() string {
	switch o {
	case BondSingle:
		return "single"
	case BondDouble:
		return "double"
	case BondTriple:
		return "triple"
	case BondQuadruple:
		return "quadruple"
	case BondQuintuple:
		return "quintuple"
	case BondAmide:
		return "amide"
	case BondAromatic:
		return "aromatic"
	case BondUp:
		return "up"
	case BondDown:
		return "down"
	case BondDativeLeft:
		return "dative-left"
	case BondDativeRight:
		return "dative-right"
	case BondQuadrupleAndAHalf:
		return "quadruple-and-a-half"
	default:
		return "unknown"
	}
}

// Bond is a canonicalized bond: Begin < End always holds within a
// Topology once added through Topology.AddBond.
type Bond struct {
	Begin, End int
	Order      BondOrder
}
