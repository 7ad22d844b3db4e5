package chem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildWaterChain(t *testing.T) *Topology {
	t.Helper()
	top := NewTopology()
	h0 := top.AddAtom(NewAtom("H1", "H"))
	o1 := top.AddAtom(NewAtom("O1", "O"))
	o2 := top.AddAtom(NewAtom("O2", "O"))
	h3 := top.AddAtom(NewAtom("H2", "H"))
	require.NoError(t, top.AddBond(h0, o1, BondSingle))
	require.NoError(t, top.AddBond(o1, o2, BondSingle))
	require.NoError(t, top.AddBond(o2, h3, BondSingle))
	return top
}

func TestTopologyBondCanonicalForm(t *testing.T) {
	top := NewTopology()
	a := top.AddAtom(NewAtom("A", "C"))
	b := top.AddAtom(NewAtom("B", "C"))
	require.NoError(t, top.AddBond(b, a, BondDouble))
	bonds := top.Bonds()
	require.Len(t, bonds, 1)
	require.Less(t, bonds[0].Begin, bonds[0].End)
	require.Equal(t, BondDouble, bonds[0].Order)
}

func TestTopologyRejectsSelfBond(t *testing.T) {
	top := NewTopology()
	a := top.AddAtom(NewAtom("A", "C"))
	require.Error(t, top.AddBond(a, a, BondSingle))
}

func TestTopologyDerivedAngles(t *testing.T) {
	top := buildWaterChain(t)
	angles := top.Angles()
	require.Len(t, angles, 2)
	for _, ang := range angles {
		require.True(t, top.HasBond(ang.I, ang.J))
		require.True(t, top.HasBond(ang.J, ang.K))
	}
}

func TestTopologyDerivedDihedrals(t *testing.T) {
	top := buildWaterChain(t)
	dihedrals := top.Dihedrals()
	require.Len(t, dihedrals, 1) // single canonical quadruple over the chain
	for _, d := range dihedrals {
		require.True(t, top.HasBond(d.I, d.J))
		require.True(t, top.HasBond(d.J, d.K))
		require.True(t, top.HasBond(d.K, d.L))
	}
}

func TestTopologyImpropersCanonicalized(t *testing.T) {
	top := NewTopology()
	center := top.AddAtom(NewAtom("N", "N"))
	p1 := top.AddAtom(NewAtom("P1", "C"))
	p2 := top.AddAtom(NewAtom("P2", "C"))
	p3 := top.AddAtom(NewAtom("P3", "C"))
	require.NoError(t, top.AddBond(center, p3, BondSingle))
	require.NoError(t, top.AddBond(center, p1, BondSingle))
	require.NoError(t, top.AddBond(center, p2, BondSingle))

	impropers := top.Impropers()
	require.Len(t, impropers, 1)
	imp := impropers[0]
	require.Equal(t, center, imp.Center)
	require.True(t, imp.P < imp.Q && imp.Q < imp.R)
	require.True(t, top.HasBond(center, imp.P))
	require.True(t, top.HasBond(center, imp.Q))
	require.True(t, top.HasBond(center, imp.R))
}

func TestTopologyRemoveAtomRewritesConnectivity(t *testing.T) {
	top := buildWaterChain(t)
	require.NoError(t, top.RemoveAtom(0)) // remove the first H
	require.Equal(t, 3, top.Size())
	for _, b := range top.Bonds() {
		require.Less(t, b.Begin, b.End)
		require.Less(t, b.End, top.Size())
	}
	// the bond that referenced the removed atom must be gone
	require.Len(t, top.Bonds(), 2)
}

func TestTopologyResizeDownRejectsBreakingBond(t *testing.T) {
	top := buildWaterChain(t)
	err := top.Resize(2)
	require.Error(t, err)
}

func TestTopologyResizeUpAppendsDefaultAtoms(t *testing.T) {
	top := NewTopology()
	top.AddAtom(NewAtom("A", "C"))
	require.NoError(t, top.Resize(3))
	require.Equal(t, 3, top.Size())
}

func TestResidueForAtom(t *testing.T) {
	top := buildWaterChain(t)
	res := NewResidue("HOH")
	res.AddAtom(0)
	res.AddAtom(1)
	top.AddResidue(res)

	idx, ok := top.ResidueForAtom(1)
	require.True(t, ok)
	require.Equal(t, 0, idx)

	_, ok = top.ResidueForAtom(2)
	require.False(t, ok)
}

func TestResidueAddAtomIsSetSemantics(t *testing.T) {
	res := NewResidue("LIG")
	res.AddAtom(5)
	res.AddAtom(5)
	require.Equal(t, 1, res.Size())
}
