package extxyz

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
	return format.Info{Name: "EXTXYZ", Extension: ".extxyz"}
}

func TestTokenizeCommentHandlesQuotedLattice(t *testing.T) {
	tokens := tokenizeComment(`Lattice="1.0 0.0 0.0 0.0 1.0 0.0 0.0 0.0 1.0" Properties=species:S:1:pos:R:3`)
	require.Equal(t, "1.0 0.0 0.0 0.0 1.0 0.0 0.0 0.0 1.0", tokens["Lattice"])
	require.Equal(t, "species:S:1:pos:R:3", tokens["Properties"])
}

func TestParseLatticeOrthorhombic(t *testing.T) {
	cell, err := parseLattice("10 0 0 0 20 0 0 0 30")
	require.NoError(t, err)
	require.Equal(t, chem.CellOrthorhombic, cell.Shape())
	a, b, c := cell.Lengths()
	require.InDelta(t, 10, a, 1e-6)
	require.InDelta(t, 20, b, 1e-6)
	require.InDelta(t, 30, c, 1e-6)
}

func TestExtXYZReadWithExtraColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.extxyz")
	content := "2\nLattice=\"10 0 0 0 10 0 0 0 10\" Properties=species:S:1:pos:R:3:charge:R:1\n" +
		"O 0.0 0.0 0.0 -0.8\nH 1.0 0.0 0.0 0.4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 2, frame.Size())
	require.Equal(t, chem.CellOrthorhombic, frame.Cell().Shape())

	atom := frame.Topology().Atom(0)
	charge, ok := atom.Properties().Get("charge")
	require.True(t, ok)
	v, err := charge.AsDouble()
	require.NoError(t, err)
	require.InDelta(t, -0.8, v, 1e-9)
}

func TestExtXYZBadPropertiesFallsBackToPositionsOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.extxyz")
	content := "1\nProperties=species:S:1:pos:R:3:bad:R:\nC 1.0 2.0 3.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	var warned string
	chem.SetWarningCallback(func(m string) { warned = m })
	defer chem.SetWarningCallback(nil)

	f, err := Open(path, iostack.Read, iostack.Auto, testInfo())
	require.NoError(t, err)
	defer f.Close()
	require.NotEmpty(t, warned)

	var frame chem.Frame
	require.NoError(t, f.Read(&frame))
	require.Equal(t, 1, frame.Size())
	require.Equal(t, chem.Vector3D{X: 1, Y: 2, Z: 3}, frame.Positions()[0])

	atom := frame.Topology().Atom(0)
	_, ok := atom.Properties().Get("bad")
	require.False(t, ok)
}

func TestParseBoolAcceptsAllSpellings(t *testing.T) {
	for _, s := range []string{"T", "true", "TRUE"} {
		v, err := parseBool(s)
		require.NoError(t, err)
		require.True(t, v)
	}
	for _, s := range []string{"F", "false", "FALSE"} {
		v, err := parseBool(s)
		require.NoError(t, err)
		require.False(t, v)
	}
	_, err := parseBool("maybe")
	require.Error(t, err)
}
