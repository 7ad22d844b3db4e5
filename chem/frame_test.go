package chem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFrameIsEmptyAndInfinite(t *testing.T) {
	f := NewFrame()
	require.Equal(t, 0, f.Size())
	require.False(t, f.HasVelocities())
	require.Equal(t, CellInfinite, f.Cell().Shape())
	require.NoError(t, f.CheckInvariants())
}

func TestFrameAddAtomKeepsPositionsAndTopologyInStep(t *testing.T) {
	f := NewFrame()
	idx := f.AddAtom(NewAtom("C1", "C"), Vector3D{X: 1, Y: 2, Z: 3})
	require.Equal(t, 0, idx)
	require.Equal(t, 1, f.Size())
	require.Equal(t, 1, f.Topology().Size())
	require.NoError(t, f.CheckInvariants())
}

func TestFrameAddVelocitiesBackfillsZeroes(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("C1", "C"), Vector3D{X: 1, Y: 2, Z: 3})
	f.AddAtom(NewAtom("C2", "C"), Vector3D{X: 4, Y: 5, Z: 6})
	f.AddVelocities()
	require.True(t, f.HasVelocities())
	require.Len(t, f.Velocities(), 2)
	require.Equal(t, Vector3D{}, f.Velocities()[0])
	require.NoError(t, f.CheckInvariants())
}

func TestFrameAddAtomWithVelocityEnablesVelocities(t *testing.T) {
	f := NewFrame()
	f.AddAtomWithVelocity(NewAtom("C1", "C"), Vector3D{X: 1}, Vector3D{X: 0.1})
	require.True(t, f.HasVelocities())
	require.Equal(t, Vector3D{X: 0.1}, f.Velocities()[0])
}

func TestFrameAddAtomWithVelocityAfterPlainAddAtomBackfillsZero(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("C1", "C"), Vector3D{X: 1})
	f.AddAtomWithVelocity(NewAtom("C2", "C"), Vector3D{X: 2}, Vector3D{X: 0.2})
	require.Len(t, f.Velocities(), 2)
	require.Equal(t, Vector3D{}, f.Velocities()[0])
	require.Equal(t, Vector3D{X: 0.2}, f.Velocities()[1])
	require.NoError(t, f.CheckInvariants())
}

func TestFrameRemoveAtomKeepsArraysConsistent(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("H1", "H"), Vector3D{X: 0})
	f.AddAtom(NewAtom("O1", "O"), Vector3D{X: 1})
	f.AddAtom(NewAtom("H2", "H"), Vector3D{X: 2})
	require.NoError(t, f.Topology().AddBond(0, 1, BondSingle))
	require.NoError(t, f.Topology().AddBond(1, 2, BondSingle))

	require.NoError(t, f.RemoveAtom(0))
	require.Equal(t, 2, f.Size())
	require.Equal(t, 2, f.Topology().Size())
	require.NoError(t, f.CheckInvariants())
}

func TestFrameRemoveAtomOutOfRange(t *testing.T) {
	f := NewFrame()
	require.Error(t, f.RemoveAtom(0))
}

func TestFrameCheckInvariantsCatchesPositionTopologyMismatch(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("C1", "C"), Vector3D{X: 1})
	f.Topology().AddAtom(NewAtom("C2", "C")) // bypasses Frame.AddAtom on purpose
	require.Error(t, f.CheckInvariants())
}

func TestFrameCloneIsIndependent(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("C1", "C"), Vector3D{X: 1, Y: 2, Z: 3})
	f.SetCell(NewOrthorhombicCell(10, 10, 10))
	f.Properties().Set("title", NewStringProperty("original"))

	clone := f.Clone()
	clone.Properties().Set("title", NewStringProperty("modified"))
	clone.AddAtom(NewAtom("C2", "C"), Vector3D{X: 4, Y: 5, Z: 6})

	require.Equal(t, 1, f.Size())
	require.Equal(t, 2, clone.Size())
	origTitle, _ := f.Properties().Get("title")
	cloneTitle, _ := clone.Properties().Get("title")
	require.NotEqual(t, origTitle, cloneTitle)
}

func TestFrameSetStepAndTopology(t *testing.T) {
	f := NewFrame()
	f.SetStep(42)
	require.Equal(t, 42, f.Step())

	top := NewTopology()
	top.AddAtom(NewAtom("C1", "C"))
	f.SetTopology(top)
	require.Same(t, top, f.Topology())
}
