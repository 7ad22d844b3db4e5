package tinkerxyz

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
	return format.Info{Name: "Tinker", Extension: ".arc"}
}

const sampleArc = `3  methanol
     1  O     0.000000    0.000000    0.000000     1     2
     2  C     1.430000    0.000000    0.000000     2     1     3
     3  H     1.800000    1.000000    0.000000     5     2
`

func TestTinkerXYZParsesAtomsAndBonds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.arc")
	require.NoError(t, os.WriteFile(path, []byte(sampleArc), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 3, frame.Size())
	require.True(t, frame.Topology().HasBond(0, 1))
	require.True(t, frame.Topology().HasBond(1, 2))
	require.False(t, frame.Topology().HasBond(0, 2))
}

func TestTinkerXYZWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.arc")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("O", "O"), chem.Vector3D{X: 0, Y: 0, Z: 0})
	frame.AddAtom(chem.NewAtom("H", "H"), chem.Vector3D{X: 1, Y: 0, Z: 0})
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
