package chem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAtomDefaultsNameFromType(t *testing.T) {
	a := NewAtom("", "C")
	require.Equal(t, "C", a.Name())
	require.Equal(t, "C", a.Type())
}

func TestAtomMassFallsBackToPeriodicTable(t *testing.T) {
	a := NewAtom("CA", "C")
	require.InDelta(t, 12.011, a.Mass(), 0.01)
}

func TestAtomMassOverrideWins(t *testing.T) {
	a := NewAtom("CA", "C")
	a.SetMass(13.5)
	require.Equal(t, 13.5, a.Mass())
}

func TestAtomUnknownTypeYieldsZeroValues(t *testing.T) {
	a := NewAtom("X1", "Xx")
	require.Equal(t, 0.0, a.Mass())
	require.Equal(t, "", a.FullName())
	require.Equal(t, 0.0, a.VdwRadius())
	require.Equal(t, 0.0, a.CovalentRadius())
	require.Equal(t, 0, a.AtomicNumber())
}

func TestAtomChargeDefaultsToZero(t *testing.T) {
	a := NewAtom("O1", "O")
	require.Equal(t, 0.0, a.Charge())
	a.SetCharge(-0.8)
	require.Equal(t, -0.8, a.Charge())
}

func TestAtomCloneIsIndependent(t *testing.T) {
	a := NewAtom("N1", "N")
	a.Properties().Set("is_backbone", NewBoolProperty(true))

	clone := a.Clone()
	clone.Properties().Set("is_backbone", NewBoolProperty(false))

	orig, _ := a.Properties().Get("is_backbone")
	copied, _ := clone.Properties().Get("is_backbone")
	require.NotEqual(t, orig, copied)
}
