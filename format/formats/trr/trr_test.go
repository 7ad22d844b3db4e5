package trr

import (
	"path/filepath"
	"testing"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
	"github.com/stretchr/testify/require"
)

func testInfo() format.Info {
	return format.Info{Name: "TRR", Extension: ".trr"}
}

func buildTRRFile(t *testing.T, path string, natoms int32, step int32, positions []chem.Vector3D, withVelocities bool) {
	t.Helper()
	bin, err := iostack.OpenBinary(path, iostack.Write)
	require.NoError(t, err)

	require.NoError(t, bin.WriteU32BE(uint32(trrMagic)))
	require.NoError(t, bin.WriteU32BE(0)) // version string length 0

	sizes := []int32{0, 0, 72, 0, 0, 0, 0, natoms * 24, 0, 0}
	if withVelocities {
		sizes[8] = natoms * 24
	}
	for _, s := range sizes {
		require.NoError(t, bin.WriteU32BE(uint32(s)))
	}
	require.NoError(t, bin.WriteU32BE(uint32(natoms)))
	require.NoError(t, bin.WriteU32BE(uint32(step)))
	require.NoError(t, bin.WriteU32BE(0)) // nre

	require.NoError(t, bin.WriteF64BE(0.001)) // tstep
	require.NoError(t, bin.WriteF64BE(0.0))    // lambda

	box := [9]float64{2.0, 0, 0, 0, 2.0, 0, 0, 0, 2.0}
	for _, v := range box {
		require.NoError(t, bin.WriteF64BE(v))
	}

	for _, p := range positions {
		require.NoError(t, bin.WriteF64BE(p.X/10))
		require.NoError(t, bin.WriteF64BE(p.Y/10))
		require.NoError(t, bin.WriteF64BE(p.Z/10))
	}
	if withVelocities {
		for range positions {
			require.NoError(t, bin.WriteF64BE(0.1))
			require.NoError(t, bin.WriteF64BE(0.0))
			require.NoError(t, bin.WriteF64BE(0.0))
		}
	}
	require.NoError(t, bin.Close())
}

func TestTRRReadsPositionsCellAndVelocities(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.trr")
	positions := []chem.Vector3D{{X: 0, Y: 0, Z: 0}, {X: 1.5, Y: 0, Z: 0}}
	buildTRRFile(t, path, 2, 0, positions, true)

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 2, frame.Size())
	require.True(t, frame.HasVelocities())
	require.InDelta(t, 1.5, frame.Positions()[1].X, 1e-6)

	a, b, c := frame.Cell().Lengths()
	require.InDelta(t, 20.0, a, 1e-6)
	require.InDelta(t, 20.0, b, 1e-6)
	require.InDelta(t, 20.0, c, 1e-6)
}

func TestTRRRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.trr")
	bin, err := iostack.OpenBinary(path, iostack.Write)
	require.NoError(t, err)
	require.NoError(t, bin.WriteU32BE(42))
	require.NoError(t, bin.Close())

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()
	var frame chem.Frame
	require.Error(t, f.Read(&frame))
}
