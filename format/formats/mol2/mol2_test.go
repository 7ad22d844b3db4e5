package mol2

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
	return format.Info{Name: "MOL2", Extension: ".mol2"}
}

const sampleMol2 = `@<TRIPOS>MOLECULE
ethanol
3 2 0 0 0
SMALL
NO_CHARGES

@<TRIPOS>ATOM
      1 C1          0.0000    0.0000    0.0000 C.3     1 LIG1        0.0000
      2 C2          1.5000    0.0000    0.0000 C.3     1 LIG1        0.0000
      3 O1          2.0000    1.0000    0.0000 O.3     1 LIG1        0.0000
@<TRIPOS>BOND
     1     1     2    1
     2     2     3    1
`

func TestMol2ParsesAtomsAndBonds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mol.mol2")
	require.NoError(t, os.WriteFile(path, []byte(sampleMol2), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 3, frame.Size())
	require.Equal(t, "C", frame.Topology().Atom(0).Type())
	require.True(t, frame.Topology().HasBond(0, 1))
	require.True(t, frame.Topology().HasBond(1, 2))
}

func TestMol2WriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mol2")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("N1", "N"), chem.Vector3D{X: 0, Y: 0, Z: 0})
	frame.AddAtom(chem.NewAtom("C1", "C"), chem.Vector3D{X: 1, Y: 0, Z: 0})
	require.NoError(t, frame.Topology().AddBond(0, 1, chem.BondSingle))
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
