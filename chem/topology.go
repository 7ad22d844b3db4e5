// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : topology.go
package chem

import "sort"

// Angle is a derived (a, b, c) triple where bonds {a,b} and {b,c} both
// exist; b is the central atom.
type Angle struct{ I, J, K int }

// Dihedral is a derived (a, b, c, d) quadruple along a bonded chain
// a-b-c-d.
type Dihedral struct{ I, J, K, L int }

// Improper is a derived (center, p, q, r) quadruple where the center
// atom is bonded to all three peripheral atoms; canonicalized so the
// peripheral atoms are sorted p < q < r.
type Improper struct{ Center, P, Q, R int }

// Topology is the connectivity graph over an ordered sequence of atoms:
// explicit bonds, derived angles/dihedrals/impropers, and an ordered
// set of residues. All derived connectivity is recomputed whenever
// bonds or atom count change; callers never set it directly.
type Topology struct {
	atoms     []Atom
	bonds     []Bond // kept sorted by (Begin, End)
	angles    []Angle
	dihedrals []Dihedral
	impropers []Improper
	residues  []Residue
	// residueOf maps atom index -> residue index + 1 (0 = none), kept in
	// step with residues so ResidueForAtom is O(1) instead of linear,
	// per the §9 design note on avoiding atom<->residue back-pointers.
	residueOf []int
}

// NewTopology returns an empty topology.
func NewTopology() *Topology {
	return &Topology{}
}

// Size returns the number of atoms.
func (t *Topology) Size() int { return len(t.atoms) }

// Atom returns a pointer to the atom at index i for in-place edits.
func (t *Topology) Atom(i int) *Atom { return &t.atoms[i] }

// Atoms returns the full atom slice (shares backing storage).
func (t *Topology) Atoms() []Atom { return t.atoms }

// AddAtom appends a new atom and returns its index. Any residue
// book-keeping for the new slot starts empty.
func (t *Topology) AddAtom(a Atom) int {
	t.atoms = append(t.atoms, a)
	t.residueOf = append(t.residueOf, 0)
	return len(t.atoms) - 1
}

// Resize grows or shrinks the atom count to n. Growing appends default
// atoms; shrinking is rejected with an Error if it would break a bond
// that references a removed index (spec.md §3).
func (t *Topology) Resize(n int) error {
	if n < 0 {
		return NewError(ErrOutOfBounds, "negative topology size %d", n)
	}
	if n >= len(t.atoms) {
		for len(t.atoms) < n {
			t.AddAtom(NewAtom("", ""))
		}
		return nil
	}
	for _, b := range t.bonds {
		if b.Begin >= n || b.End >= n {
			return NewError(ErrGeneric, "cannot resize topology to %d atoms: bond (%d,%d) would be broken", n, b.Begin, b.End)
		}
	}
	t.atoms = t.atoms[:n]
	t.residueOf = t.residueOf[:n]
	return nil
}

// RemoveAtom deletes atom i, rewriting all connectivity indices (bonds,
// residues) by shifting indices above i down by one, and dropping any
// bond that referenced i. Derived connectivity is recomputed.
func (t *Topology) RemoveAtom(i int) error {
	if i < 0 || i >= len(t.atoms) {
		return NewError(ErrOutOfBounds, "atom index %d out of range [0,%d)", i, len(t.atoms))
	}
	t.atoms = append(t.atoms[:i], t.atoms[i+1:]...)
	t.residueOf = append(t.residueOf[:i], t.residueOf[i+1:]...)

	shift := func(idx int) int {
		if idx > i {
			return idx - 1
		}
		return idx
	}

	newBonds := t.bonds[:0]
	for _, b := range t.bonds {
		if b.Begin == i || b.End == i {
			continue
		}
		b.Begin, b.End = shift(b.Begin), shift(b.End)
		newBonds = append(newBonds, b)
	}
	t.bonds = newBonds

	for ri := range t.residues {
		t.residues[ri].shiftDown(i)
	}
	t.rebuildResidueIndex()
	t.recompute()
	return nil
}

// AddBond records a bond between atoms a and b with the given order.
// Endpoints must be distinct and in range; the bond is stored in
// canonical (low, high) form. Adding a bond that already exists is not
// an error: it only replaces the stored order.
func (t *Topology) AddBond(a, b int, order BondOrder) error {
	if a == b {
		return NewError(ErrGeneric, "bond endpoints must be distinct, got %d twice", a)
	}
	if a < 0 || a >= len(t.atoms) || b < 0 || b >= len(t.atoms) {
		return NewError(ErrOutOfBounds, "bond endpoints (%d,%d) out of range [0,%d)", a, b, len(t.atoms))
	}
	if a > b {
		a, b = b, a
	}
	idx := sort.Search(len(t.bonds), func(k int) bool {
		bk := t.bonds[k]
		return bk.Begin > a || (bk.Begin == a && bk.End >= b)
	})
	if idx < len(t.bonds) && t.bonds[idx].Begin == a && t.bonds[idx].End == b {
		t.bonds[idx].Order = order
		return nil
	}
	t.bonds = append(t.bonds, Bond{})
	copy(t.bonds[idx+1:], t.bonds[idx:])
	t.bonds[idx] = Bond{Begin: a, End: b, Order: order}
	t.recompute()
	return nil
}

// RemoveBond removes the bond between a and b, if any.
func (t *Topology) RemoveBond(a, b int) {
	if a > b {
		a, b = b, a
	}
	for i, bond := range t.bonds {
		if bond.Begin == a && bond.End == b {
			t.bonds = append(t.bonds[:i], t.bonds[i+1:]...)
			t.recompute()
			return
		}
	}
}

// Bonds returns the sorted set of bonds.
func (t *Topology) Bonds() []Bond { return t.bonds }

// HasBond reports whether a bond exists between a and b, in either
// order.
func (t *Topology) HasBond(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	idx := sort.Search(len(t.bonds), func(k int) bool {
		bk := t.bonds[k]
		return bk.Begin > a || (bk.Begin == a && bk.End >= b)
	})
	return idx < len(t.bonds) && t.bonds[idx].Begin == a && t.bonds[idx].End == b
}

// BondOrderOf returns the order of the bond between a and b, and
// whether such a bond exists.
func (t *Topology) BondOrderOf(a, b int) (BondOrder, bool) {
	if a > b {
		a, b = b, a
	}
	for _, bond := range t.bonds {
		if bond.Begin == a && bond.End == b {
			return bond.Order, true
		}
	}
	return BondUnknown, false
}

// Angles returns the derived angle set.
func (t *Topology) Angles() []Angle { return t.angles }

// Dihedrals returns the derived dihedral set.
func (t *Topology) Dihedrals() []Dihedral { return t.dihedrals }

// Impropers returns the derived improper set.
func (t *Topology) Impropers() []Improper { return t.impropers }

// neighbors returns, for each atom, the sorted list of bonded neighbors.
func (t *Topology) neighbors() [][]int {
	adj := make([][]int, len(t.atoms))
	for _, b := range t.bonds {
		adj[b.Begin] = append(adj[b.Begin], b.End)
		adj[b.End] = append(adj[b.End], b.Begin)
	}
	return adj
}

// recompute rebuilds angles, dihedrals and impropers from the current
// bond set, per spec.md §3: these are never set directly.
func (t *Topology) recompute() {
	adj := t.neighbors()

	t.angles = t.angles[:0]
	for b := 0; b < len(t.atoms); b++ {
		ns := adj[b]
		for i := 0; i < len(ns); i++ {
			for j := 0; j < len(ns); j++ {
				if i == j {
					continue
				}
				a, c := ns[i], ns[j]
				if a < c {
					t.angles = append(t.angles, Angle{I: a, J: b, K: c})
				}
			}
		}
	}

	t.dihedrals = t.dihedrals[:0]
	for _, bond := range t.bonds {
		b, c := bond.Begin, bond.End
		for _, a := range adj[b] {
			if a == c {
				continue
			}
			for _, d := range adj[c] {
				if d == b || d == a {
					continue
				}
				t.dihedrals = append(t.dihedrals, Dihedral{I: a, J: b, K: c, L: d})
			}
		}
	}

	t.impropers = t.impropers[:0]
	for center := 0; center < len(t.atoms); center++ {
		ns := adj[center]
		if len(ns) < 3 {
			continue
		}
		for i := 0; i < len(ns); i++ {
			for j := i + 1; j < len(ns); j++ {
				for k := j + 1; k < len(ns); k++ {
					p, q, r := ns[i], ns[j], ns[k]
					peripherals := []int{p, q, r}
					sort.Ints(peripherals)
					t.impropers = append(t.impropers, Improper{Center: center, P: peripherals[0], Q: peripherals[1], R: peripherals[2]})
				}
			}
		}
	}
}

// AddResidue appends a residue and returns its index, updating the
// atom->residue index for every atom it contains.
func (t *Topology) AddResidue(r Residue) int {
	idx := len(t.residues)
	t.residues = append(t.residues, r)
	for _, a := range r.atoms {
		t.setResidueOf(a, idx)
	}
	return idx
}

// Residues returns the ordered residue set.
func (t *Topology) Residues() []Residue { return t.residues }

// Residue returns a pointer to residue i for in-place edits.
func (t *Topology) Residue(i int) *Residue { return &t.residues[i] }

func (t *Topology) setResidueOf(atomIdx, residueIdx int) {
	for len(t.residueOf) <= atomIdx {
		t.residueOf = append(t.residueOf, 0)
	}
	t.residueOf[atomIdx] = residueIdx + 1
}

func (t *Topology) rebuildResidueIndex() {
	for i := range t.residueOf {
		t.residueOf[i] = 0
	}
	for ri, r := range t.residues {
		for _, a := range r.atoms {
			t.setResidueOf(a, ri)
		}
	}
}

// ResidueForAtom returns the index of the residue containing atom i, if
// any, using the index maintained alongside t.residues rather than a
// linear scan.
func (t *Topology) ResidueForAtom(i int) (int, bool) {
	if i < 0 || i >= len(t.residueOf) {
		return 0, false
	}
	if t.residueOf[i] == 0 {
		return 0, false
	}
	return t.residueOf[i] - 1, true
}

// Clone returns a deep copy of the topology.
func (t *Topology) Clone() *Topology {
	out := &Topology{
		atoms:     make([]Atom, len(t.atoms)),
		bonds:     make([]Bond, len(t.bonds)),
		residues:  make([]Residue, len(t.residues)),
		residueOf: make([]int, len(t.residueOf)),
	}
	for i, a := range t.atoms {
		out.atoms[i] = a.Clone()
	}
	copy(out.bonds, t.bonds)
	for i, r := range t.residues {
		out.residues[i] = r.Clone()
	}
	copy(out.residueOf, t.residueOf)
	out.recompute()
	return out
}
