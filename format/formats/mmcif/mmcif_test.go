package mmcif

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
	return format.Info{Name: "mmCIF", Extension: ".cif"}
}

const sampleCIF = `data_test
_cell.length_a    10.000
_cell.length_b    10.000
_cell.length_c    10.000
_cell.angle_alpha 90.000
_cell.angle_beta  90.000
_cell.angle_gamma 90.000
loop_
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_comp_id
_atom_site.label_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
1 O OW HOH 1 0.417 8.303 11.737
2 H HW1 HOH 1 0.417 9.303 11.737
`

func TestMMCIFParsesAtomsResiduesAndCell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.cif")
	require.NoError(t, os.WriteFile(path, []byte(sampleCIF), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 2, frame.Size())
	require.Equal(t, "O", frame.Topology().Atom(0).Type())
	require.Len(t, frame.Topology().Residues(), 1)

	a, b, c := frame.Cell().Lengths()
	require.InDelta(t, 10.0, a, 1e-6)
	require.InDelta(t, 10.0, b, 1e-6)
	require.InDelta(t, 10.0, c, 1e-6)
}

func TestMMCIFWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.cif")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("N1", "N"), chem.Vector3D{X: 0, Y: 0, Z: 0})
	frame.AddAtom(chem.NewAtom("C1", "C"), chem.Vector3D{X: 1, Y: 0, Z: 0})
	frame.SetCell(chem.NewOrthorhombicCell(10, 10, 10))
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer r.Close()
	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 2, readBack.Size())
}
