package gro

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
	return format.Info{Name: "GRO", Extension: ".gro"}
}

const sampleGro = `two waters
6
    1SOL     OW    1   0.000   0.000   0.000
    1SOL    HW1    2   0.100   0.000   0.000
    1SOL    HW2    3   0.000   0.100   0.000
    2SOL     OW    4   1.000   1.000   1.000
    2SOL    HW1    5   1.100   1.000   1.000
    2SOL    HW2    6   1.000   1.100   1.000
   2.00000   2.00000   2.00000
`

func TestGroParsesAtomsAndResidues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.gro")
	require.NoError(t, os.WriteFile(path, []byte(sampleGro), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 6, frame.Size())
	require.Len(t, frame.Topology().Residues(), 2)

	a, b, c := frame.Cell().Lengths()
	require.InDelta(t, 20.0, a, 1e-6)
	require.InDelta(t, 20.0, b, 1e-6)
	require.InDelta(t, 20.0, c, 1e-6)

	ri, ok := frame.Topology().ResidueForAtom(0)
	require.True(t, ok)
	require.Equal(t, "SOL", frame.Topology().Residue(ri).Name())
}

func TestGroHandlesVelocities(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "velo.gro")
	content := "velocities\n" +
		"1\n" +
		"    1SOL     OW    1   0.000   0.000   0.000  0.1000  0.2000  0.3000\n" +
		"   1.00000   1.00000   1.00000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.True(t, frame.HasVelocities())
}

func TestGroWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.gro")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("OW", "O"), chem.Vector3D{X: 0, Y: 0, Z: 0})
	frame.AddAtom(chem.NewAtom("HW1", "H"), chem.Vector3D{X: 1, Y: 0, Z: 0})
	frame.SetCell(chem.NewOrthorhombicCell(10, 10, 10))
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer r.Close()
	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 2, readBack.Size())
	a, b, c := readBack.Cell().Lengths()
	require.InDelta(t, 10.0, a, 1e-3)
	require.InDelta(t, 10.0, b, 1e-3)
	require.InDelta(t, 10.0, c, 1e-3)
}
