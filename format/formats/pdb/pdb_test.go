package pdb

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
	return format.Info{Name: "PDB", Extension: ".pdb"}
}

const samplePDB = `CRYST1   10.000   10.000   10.000  90.00  90.00  90.00 P 1           1
ATOM      1  O   HOH A   1      10.000  20.000  30.000  1.00  0.00           O
ATOM      2  H1  HOH A   1      10.500  20.500  30.000  1.00  0.00           H
CONECT    1    2
END
`

func TestPDBReadsAtomsResiduesAndCell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.pdb")
	require.NoError(t, os.WriteFile(path, []byte(samplePDB), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 2, frame.Size())
	require.Equal(t, chem.CellOrthorhombic, frame.Cell().Shape())
	require.True(t, frame.Topology().HasBond(0, 1))

	ri, ok := frame.Topology().ResidueForAtom(0)
	require.True(t, ok)
	res := frame.Topology().Residue(ri)
	require.Equal(t, "HOH", res.Name())
}

func TestPDBHandlesShortLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.pdb")
	// missing occupancy/tempfactor/element columns
	require.NoError(t, os.WriteFile(path, []byte("ATOM      1  C   LIG A   1      1.000   2.000   3.000\nEND\n"), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 1, frame.Size())
	require.Equal(t, chem.Vector3D{X: 1, Y: 2, Z: 3}, frame.Positions()[0])
}

func TestPDBMultiModelProducesMultipleSteps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.pdb")
	content := "MODEL        1\n" +
		"ATOM      1  C   LIG A   1       0.000   0.000   0.000\n" +
		"ENDMDL\n" +
		"MODEL        2\n" +
		"ATOM      1  C   LIG A   1       1.000   0.000   0.000\n" +
		"ENDMDL\n" +
		"END\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	n, err := f.NSteps()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	var second chem.Frame
	require.NoError(t, f.ReadStep(1, &second))
	require.InDelta(t, 1.0, second.Positions()[0].X, 1e-6)
}

func TestPDBWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdb")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("CA", "C"), chem.Vector3D{X: 1, Y: 2, Z: 3})
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer r.Close()
	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 1, readBack.Size())
	require.InDelta(t, 1.0, readBack.Positions()[0].X, 1e-3)
}
