package lammpsdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
	"github.com/stretchr/testify/require"
)

func testInfo() format.Info {
	return format.Info{Name: "LAMMPS Data", Extension: ".data"}
}

const sampleData = `LAMMPS data file via chemfiles
2 atoms
1 bonds

1 atom types
1 bond types

0.0 10.0 xlo xhi
0.0 10.0 ylo yhi
0.0 10.0 zlo zhi

Masses

1 12.011

Atoms

1 1 1 0.0 0.0 0.0 0.0
2 1 1 0.0 1.5 0.0 0.0

Velocities

1 0.1 0.0 0.0
2 0.0 0.1 0.0

Bonds

1 1 1 2
`

func TestLammpsDataParsesAtomsCellBondsAndVelocities(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.data")
	require.NoError(t, os.WriteFile(path, []byte(sampleData), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 2, frame.Size())
	require.True(t, frame.Topology().HasBond(0, 1))
	require.True(t, frame.HasVelocities())

	a, b, c := frame.Cell().Lengths()
	require.InDelta(t, 10.0, a, 1e-6)
	require.InDelta(t, 10.0, b, 1e-6)
	require.InDelta(t, 10.0, c, 1e-6)

	require.InDelta(t, 12.011, frame.Topology().Atom(0).Mass(), 1e-3)
}

func TestLammpsDataRejectsSecondWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.data")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("type1", "type1"), chem.Vector3D{X: 0, Y: 0, Z: 0})
	require.NoError(t, w.Write(frame))
	require.Error(t, w.Write(frame))
	require.NoError(t, w.Close())
}

func TestLammpsDataWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.data")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("type1", "type1"), chem.Vector3D{X: 0, Y: 0, Z: 0})
	frame.AddAtom(chem.NewAtom("type1", "type1"), chem.Vector3D{X: 1, Y: 0, Z: 0})
	require.NoError(t, frame.Topology().AddBond(0, 1, chem.BondUnknown))
	frame.SetCell(chem.NewOrthorhombicCell(10, 10, 10))
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer r.Close()
	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 2, readBack.Size())
	require.True(t, readBack.Topology().HasBond(0, 1))
}
