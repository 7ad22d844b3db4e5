package mmtf

import (
	"path/filepath"
	"testing"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
	"github.com/stretchr/testify/require"
)

func testInfo() format.Info {
	return format.Info{Name: "MMTF", Extension: ".mmtf"}
}

func TestMMTFWriteThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "structure.mmtf")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)

	frame := chem.NewFrame()
	a := frame.AddAtom(chem.NewAtom("O", "O"), chem.Vector3D{X: 0, Y: 0, Z: 0})
	b := frame.AddAtom(chem.NewAtom("H1", "H"), chem.Vector3D{X: 0.96, Y: 0, Z: 0})
	require.NoError(t, frame.Topology().AddBond(a, b, chem.BondSingle))
	frame.SetCell(chem.NewOrthorhombicCell(20, 20, 20))
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer r.Close()

	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 2, readBack.Size())
	require.InDelta(t, 0.96, readBack.Positions()[1].X, 1e-2)
	require.True(t, readBack.Topology().HasBond(0, 1))

	cellA, cellB, cellC := readBack.Cell().Lengths()
	require.InDelta(t, 20.0, cellA, 1e-2)
	require.InDelta(t, 20.0, cellB, 1e-2)
	require.InDelta(t, 20.0, cellC, 1e-2)
}

func TestMMTFRunLengthDeltaCodecRoundTrips(t *testing.T) {
	values := []int32{1000, 1000, 1250, 1500, 1500, 1500}
	encoded := encodeDeltaRunLength(values, 1000)
	decoded, param, err := decodeInt32Array(encoded)
	require.NoError(t, err)
	require.Equal(t, int32(1000), param)
	require.Equal(t, values, decoded)
}
