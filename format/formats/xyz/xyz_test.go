package xyz

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
	return format.Info{Name: "XYZ", Extension: ".xyz"}
}

func TestXYZReadTwoFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.xyz")
	content := "3\nframe one\nO 0.0 0.0 0.0\nH 0.5 0.5 0.0\nH -0.5 0.5 0.0\n" +
		"3\nframe two\nO 0.1 0.0 0.0\nH 0.6 0.5 0.0\nH -0.4 0.5 0.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	n, err := f.NSteps()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	frame := chem.NewFrame()
	require.NoError(t, f.Read(frame))
	require.Equal(t, 3, frame.Size())
	comment, _ := frame.Properties().Get("comment")
	s, _ := comment.AsString()
	require.Equal(t, "frame one", s)

	var second chem.Frame
	require.NoError(t, f.Read(&second))
	require.Equal(t, 3, second.Size())

	err = f.Read(&second)
	require.Error(t, err)
}

func TestXYZReadStepRandomAccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.xyz")
	content := "1\nA\nC 1.0 2.0 3.0\n1\nB\nC 4.0 5.0 6.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.ReadStep(1, &frame))
	require.Equal(t, chem.Vector3D{X: 4, Y: 5, Z: 6}, frame.Positions()[0])
}

func TestXYZWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xyz")

	w, err := Open(path, iostack.Write, iostack.Auto, testInfo())
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("", "N"), chem.Vector3D{X: 1, Y: 2, Z: 3})
	frame.Properties().Set("comment", chem.NewStringProperty("written"))
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer r.Close()
	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 1, readBack.Size())
	require.InDelta(t, 1.0, readBack.Positions()[0].X, 1e-6)
}

func TestXYZRejectsMalformedCoordinates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xyz")
	require.NoError(t, os.WriteFile(path, []byte("1\ncomment\nC not-a-number 0 0\n"), 0644))

	_, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.Error(t, err)
}
