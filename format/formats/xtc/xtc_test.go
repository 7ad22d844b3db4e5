package xtc

import (
	"path/filepath"
	"testing"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
	"github.com/stretchr/testify/require"
)

func testInfo() format.Info {
	return format.Info{Name: "XTC", Extension: ".xtc"}
}

func TestXTCWriteThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traj.xtc")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)

	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: 0, Y: 0, Z: 0})
	frame.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: 1.5, Y: 0, Z: 0})
	frame.SetCell(chem.NewOrthorhombicCell(20, 20, 20))
	frame.SetStep(5)
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer r.Close()

	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 2, readBack.Size())
	require.InDelta(t, 1.5, readBack.Positions()[1].X, 1e-3)
	require.Equal(t, 5, readBack.Step())

	a, b, c := readBack.Cell().Lengths()
	require.InDelta(t, 20.0, a, 1e-3)
	require.InDelta(t, 20.0, b, 1e-3)
	require.InDelta(t, 20.0, c, 1e-3)

	err = r.Read(&readBack)
	require.Error(t, err)
}

func TestXTCRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xtc")
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
