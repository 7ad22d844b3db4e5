package dcd

import (
	"path/filepath"
	"testing"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
	"github.com/stretchr/testify/require"
)

func testInfo() format.Info {
	return format.Info{Name: "DCD", Extension: ".dcd"}
}

func TestDCDWriteThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traj.dcd")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)

	frame1 := chem.NewFrame()
	frame1.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: 0, Y: 0, Z: 0})
	frame1.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: 1.5, Y: 0, Z: 0})
	frame1.SetCell(chem.NewOrthorhombicCell(20, 20, 20))
	require.NoError(t, w.Write(frame1))

	frame2 := chem.NewFrame()
	frame2.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: 0.1, Y: 0, Z: 0})
	frame2.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: 1.6, Y: 0, Z: 0})
	frame2.SetCell(chem.NewOrthorhombicCell(20, 20, 20))
	require.NoError(t, w.Write(frame2))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer r.Close()

	n, err := r.NSteps()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 2, readBack.Size())
	require.InDelta(t, 1.5, readBack.Positions()[1].X, 1e-4)
	a, b, c := readBack.Cell().Lengths()
	require.InDelta(t, 20.0, a, 1e-3)
	require.InDelta(t, 20.0, b, 1e-3)
	require.InDelta(t, 20.0, c, 1e-3)

	require.NoError(t, r.Read(&readBack))
	require.InDelta(t, 1.6, readBack.Positions()[1].X, 1e-4)

	err = r.Read(&readBack)
	require.Error(t, err)
}

func TestDCDRejectsAtomCountChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.dcd")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame1 := chem.NewFrame()
	frame1.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: 0, Y: 0, Z: 0})
	require.NoError(t, w.Write(frame1))

	frame2 := chem.NewFrame()
	frame2.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: 0, Y: 0, Z: 0})
	frame2.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: 1, Y: 0, Z: 0})
	require.Error(t, w.Write(frame2))
	require.NoError(t, w.Close())
}
