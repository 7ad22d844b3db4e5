package cml

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
	return format.Info{Name: "CML", Extension: ".cml"}
}

const sampleCML = `<molecule>
  <atomArray>
    <atom id="a1" elementType="C" x3="0.0" y3="0.0" z3="0.0"/>
    <atom id="a2" elementType="O" x3="1.2" y3="0.0" z3="0.0"/>
  </atomArray>
  <bondArray>
    <bond atomRefs2="a1 a2" order="2"/>
  </bondArray>
</molecule>
`

func TestCMLParsesAtomsAndBonds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mol.cml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCML), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 2, frame.Size())
	order, ok := frame.Topology().BondOrderOf(0, 1)
	require.True(t, ok)
	require.Equal(t, chem.BondDouble, order)
}

func TestCMLWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.cml")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("", "N"), chem.Vector3D{X: 0, Y: 0, Z: 0})
	frame.AddAtom(chem.NewAtom("", "N"), chem.Vector3D{X: 1.1, Y: 0, Z: 0})
	require.NoError(t, frame.Topology().AddBond(0, 1, chem.BondTriple))
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer r.Close()
	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 2, readBack.Size())
	order, ok := readBack.Topology().BondOrderOf(0, 1)
	require.True(t, ok)
	require.Equal(t, chem.BondTriple, order)
}
