package chemfiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/iostack"
)

func TestAddConfigurationRenamesAtomTypesOnRead(t *testing.T) {
	ResetConfiguration()
	defer ResetConfiguration()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rename.ini")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[types]\nHW = H\nOW = O\n"), 0644))
	require.NoError(t, AddConfiguration(cfgPath))

	trajPath := filepath.Join(dir, "water.xyz")
	content := "3\nframe\nOW 0.0 0.0 0.0\nHW 0.5 0.5 0.0\nHW -0.5 0.5 0.0\n"
	require.NoError(t, os.WriteFile(trajPath, []byte(content), 0644))

	traj, err := Open(trajPath, iostack.Read, "")
	require.NoError(t, err)
	defer traj.Close()

	var frame chem.Frame
	require.NoError(t, traj.Read(&frame))
	require.Equal(t, "O", frame.Topology().Atom(0).Type())
	require.Equal(t, "H", frame.Topology().Atom(1).Type())
}

func TestAddConfigurationWithoutTypesSectionIsNotAnError(t *testing.T) {
	ResetConfiguration()
	defer ResetConfiguration()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "empty.ini")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[other]\nkey = value\n"), 0644))
	require.NoError(t, AddConfiguration(cfgPath))
	require.False(t, hasConfiguration())
}

func TestAddConfigurationMissingFileErrors(t *testing.T) {
	err := AddConfiguration("/no/such/path.ini")
	require.Error(t, err)
	require.Equal(t, chem.ErrConfiguration, chem.KindOf(err))
}
