package chemfiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/iostack"
)

func TestTrajectoryReadSequentialAndDone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.xyz")
	content := "3\nframe one\nO 0.0 0.0 0.0\nH 0.5 0.5 0.0\nH -0.5 0.5 0.0\n" +
		"3\nframe two\nO 0.1 0.0 0.0\nH 0.6 0.5 0.0\nH -0.4 0.5 0.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	traj, err := Open(path, iostack.Read, "")
	require.NoError(t, err)
	defer traj.Close()

	n, err := traj.NSteps()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	var frame chem.Frame
	require.NoError(t, traj.Read(&frame))
	require.Equal(t, 3, frame.Size())

	done, err := traj.Done()
	require.NoError(t, err)
	require.False(t, done)

	require.NoError(t, traj.Read(&frame))
	done, err = traj.Done()
	require.NoError(t, err)
	require.True(t, done)

	err = traj.Read(&frame)
	require.Error(t, err)
}

func TestTrajectoryReadStepResumesAtIPlusOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.xyz")
	content := "1\nstep0\nO 0.0 0.0 0.0\n" +
		"1\nstep1\nO 1.0 0.0 0.0\n" +
		"1\nstep2\nO 2.0 0.0 0.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	traj, err := Open(path, iostack.Read, "")
	require.NoError(t, err)
	defer traj.Close()

	var frame chem.Frame
	require.NoError(t, traj.ReadStep(1, &frame))
	require.InDelta(t, 1.0, frame.Positions()[0].X, 1e-9)

	require.NoError(t, traj.Read(&frame))
	require.InDelta(t, 2.0, frame.Positions()[0].X, 1e-9)
}

func TestTrajectoryCloseIsIdempotentAndBlocksFurtherUse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xyz")

	traj, err := Open(path, iostack.Write, "")
	require.NoError(t, err)

	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("O", "O"), chem.Vector3D{})
	require.NoError(t, traj.Write(frame))

	require.NoError(t, traj.Close())
	require.NoError(t, traj.Close())

	err = traj.Write(frame)
	require.Error(t, err)
	require.Equal(t, chem.ErrFile, chem.KindOf(err))
}

func TestTrajectorySetTopologyOverrideRequiresMatchingAtomCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.xyz")
	content := "2\nframe\nO 0.0 0.0 0.0\nH 0.5 0.5 0.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	traj, err := Open(path, iostack.Read, "")
	require.NoError(t, err)
	defer traj.Close()

	mismatched := chem.NewTopology()
	mismatched.AddAtom(chem.NewAtom("O", "O"))
	traj.SetTopology(mismatched)

	var frame chem.Frame
	err = traj.Read(&frame)
	require.Error(t, err)
}

func TestTrajectorySetCellOverrideAppliesToEveryFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.xyz")
	content := "1\nframe\nO 0.0 0.0 0.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	traj, err := Open(path, iostack.Read, "")
	require.NoError(t, err)
	defer traj.Close()

	traj.SetCell(chem.NewOrthorhombicCell(10, 10, 10))

	var frame chem.Frame
	require.NoError(t, traj.Read(&frame))
	a, b, c := frame.Cell().Lengths()
	require.InDelta(t, 10.0, a, 1e-9)
	require.InDelta(t, 10.0, b, 1e-9)
	require.InDelta(t, 10.0, c, 1e-9)
}

func TestOpenMemoryWriteThenMemoryBuffer(t *testing.T) {
	traj, err := OpenMemory("XYZ")
	require.NoError(t, err)

	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("O", "O"), chem.Vector3D{X: 1, Y: 2, Z: 3})
	require.NoError(t, traj.Write(frame))
	require.NoError(t, traj.Close())

	data, err := traj.MemoryBuffer()
	require.NoError(t, err)
	require.Contains(t, string(data), "1.00000000")
}

func TestOpenHonorsExplicitCompressionTagOverridingPathSuffix(t *testing.T) {
	dir := t.TempDir()
	// The path carries no .gz suffix for DetectCompression to find, so
	// only the explicit "XYZ/GZ" format string can tell Open the file
	// is gzip-compressed underneath.
	path := filepath.Join(dir, "water.xyz.dat")

	w, err := Open(path, iostack.Write, "XYZ/GZ")
	require.NoError(t, err)
	frame := chem.NewFrame()
	frame.AddAtom(chem.NewAtom("O", "O"), chem.Vector3D{X: 1, Y: 2, Z: 3})
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Close())

	r, err := Open(path, iostack.Read, "XYZ/GZ")
	require.NoError(t, err)
	defer r.Close()

	var readBack chem.Frame
	require.NoError(t, r.Read(&readBack))
	require.Equal(t, 1, readBack.Size())
	require.InDelta(t, 1.0, readBack.Positions()[0].X, 1e-6)
}

func TestMemoryBufferBeforeCloseErrors(t *testing.T) {
	traj, err := OpenMemory("XYZ")
	require.NoError(t, err)
	defer traj.Close()

	_, err = traj.MemoryBuffer()
	require.Error(t, err)
}
