package smiles

import (
	"path/filepath"
	"testing"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
	"github.com/stretchr/testify/require"
)

func testInfo() format.Info {
	return format.Info{Name: "SMILES", Extension: ".smi"}
}

func TestSMILESParsesLinearChain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ethanol.smi")
	text, err := iostack.OpenText(path, iostack.Write)
	require.NoError(t, err)
	require.NoError(t, text.WriteLine("CCO ethanol"))
	require.NoError(t, text.Close())

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	n, err := f.NSteps()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 3, frame.Size())
	require.True(t, frame.Topology().HasBond(0, 1))
	require.True(t, frame.Topology().HasBond(1, 2))
	title, ok := frame.Properties().Get("title")
	require.True(t, ok)
	s, err := title.AsString()
	require.NoError(t, err)
	require.Equal(t, "ethanol", s)
}

func TestSMILESParsesAromaticRing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "benzene.smi")
	text, err := iostack.OpenText(path, iostack.Write)
	require.NoError(t, err)
	require.NoError(t, text.WriteLine("c1ccccc1"))
	require.NoError(t, text.Close())

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 6, frame.Size())
	require.Equal(t, 6, len(frame.Topology().Bonds()))
	for _, b := range frame.Topology().Bonds() {
		require.Equal(t, chem.BondAromatic, b.Order)
	}
}

func TestSMILESParsesBracketAtomWithChargeAndHCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ammonium.smi")
	text, err := iostack.OpenText(path, iostack.Write)
	require.NoError(t, err)
	require.NoError(t, text.WriteLine("[NH4+]"))
	require.NoError(t, text.Close())

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 1, frame.Size())
	atom := frame.Topology().Atom(0)
	require.Equal(t, "N", atom.Type())
	require.InDelta(t, 1.0, atom.Charge(), 1e-9)
	hcount, ok := atom.Properties().Get("implicit_h")
	require.True(t, ok)
	v, err := hcount.AsDouble()
	require.NoError(t, err)
	require.InDelta(t, 4.0, v, 1e-9)
}

func TestSMILESWriteEmitsOneLinePerFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.smi")
	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)

	frame := chem.NewFrame()
	a := frame.AddAtom(chem.NewAtom("C", "C"), chem.Vector3D{})
	b := frame.AddAtom(chem.NewAtom("C", "C"), chem.Vector3D{})
	require.NoError(t, frame.Topology().AddBond(a, b, chem.BondSingle))
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	text, err := iostack.OpenText(path, iostack.Read)
	require.NoError(t, err)
	defer text.Close()
	line, err := text.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "CC", line)
}
