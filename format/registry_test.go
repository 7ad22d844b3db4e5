package format

import (
	"testing"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/iostack"
	"github.com/stretchr/testify/require"
)

type stubFormat struct{ info Info }

func (s *stubFormat) Info() Info                            { return s.info }
func (s *stubFormat) NSteps() (int, error)                   { return 0, nil }
func (s *stubFormat) ReadStep(step int, f *chem.Frame) error { return nil }
func (s *stubFormat) Read(f *chem.Frame) error               { return nil }
func (s *stubFormat) Write(f *chem.Frame) error              { return nil }
func (s *stubFormat) Close() error                           { return nil }

func stubBuilder(info Info) Builder {
	return func(path string, mode iostack.Mode, compression iostack.Compression) (Format, error) {
		return &stubFormat{info: info}, nil
	}
}

// recordingBuilder returns a Builder that stashes the compression it
// was called with into got, so a test can assert Open threaded an
// explicit override through instead of discarding it.
func recordingBuilder(info Info, got *iostack.Compression) Builder {
	return func(path string, mode iostack.Mode, compression iostack.Compression) (Format, error) {
		*got = compression
		return &stubFormat{info: info}, nil
	}
}

func TestRegistryRegisterAndLookupByNameAndExtension(t *testing.T) {
	r := NewRegistry()
	info := Info{Name: "XYZ", Extension: ".xyz"}
	require.NoError(t, r.Register(info, stubBuilder(info)))

	_, ok := r.ByName("xyz")
	require.True(t, ok)
	_, ok = r.ByExtension("xyz")
	require.True(t, ok)
	_, ok = r.ByExtension(".xyz")
	require.True(t, ok)
}

func TestRegistryRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	info := Info{Name: "XYZ", Extension: ".xyz"}
	require.NoError(t, r.Register(info, stubBuilder(info)))
	err := r.Register(Info{Name: "xyz", Extension: ".other"}, stubBuilder(info))
	require.Error(t, err)
	require.Equal(t, chem.ErrConfiguration, chem.KindOf(err))
}

func TestRegistryRejectsDuplicateExtension(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Info{Name: "XYZ", Extension: ".xyz"}, stubBuilder(Info{})))
	err := r.Register(Info{Name: "EXTXYZ", Extension: ".xyz"}, stubBuilder(Info{}))
	require.Error(t, err)
}

func TestOpenDispatchesByExtensionWhenNameEmpty(t *testing.T) {
	r := NewRegistry()
	info := Info{Name: "PDB", Extension: ".pdb"}
	require.NoError(t, r.Register(info, stubBuilder(info)))

	f, err := Open(r, "structure.pdb", iostack.Read, "")
	require.NoError(t, err)
	require.Equal(t, "PDB", f.Info().Name)
}

func TestOpenDispatchesByNameOverridingExtension(t *testing.T) {
	r := NewRegistry()
	info := Info{Name: "XYZ", Extension: ".xyz"}
	require.NoError(t, r.Register(info, stubBuilder(info)))

	f, err := Open(r, "structure.unknownext", iostack.Read, "XYZ")
	require.NoError(t, err)
	require.Equal(t, "XYZ", f.Info().Name)
}

func TestOpenStripsCompressionSuffixBeforeExtensionLookup(t *testing.T) {
	r := NewRegistry()
	info := Info{Name: "XYZ", Extension: ".xyz"}
	require.NoError(t, r.Register(info, stubBuilder(info)))

	_, err := Open(r, "traj.xyz.gz", iostack.Read, "")
	require.NoError(t, err)
}

func TestOpenUnknownExtensionFails(t *testing.T) {
	r := NewRegistry()
	_, err := Open(r, "mystery.qqq", iostack.Read, "")
	require.Error(t, err)
	require.Equal(t, chem.ErrFormat, chem.KindOf(err))
}

func TestOpenUnknownNameFails(t *testing.T) {
	r := NewRegistry()
	_, err := Open(r, "traj.xyz", iostack.Read, "BOGUS")
	require.Error(t, err)
}

func TestOpenThreadsExplicitCompressionTagToBuilder(t *testing.T) {
	r := NewRegistry()
	info := Info{Name: "XYZ", Extension: ".xyz"}
	var got iostack.Compression
	require.NoError(t, r.Register(info, recordingBuilder(info, &got)))

	// The file's own name carries no compression suffix, but the format
	// string names one explicitly: the explicit tag must win.
	_, err := Open(r, "traj.xyz", iostack.Read, "XYZ/GZ")
	require.NoError(t, err)
	require.Equal(t, iostack.Gzip, got)
}

func TestOpenDefaultsToAutoCompressionWithNoTag(t *testing.T) {
	r := NewRegistry()
	info := Info{Name: "XYZ", Extension: ".xyz"}
	var got iostack.Compression
	require.NoError(t, r.Register(info, recordingBuilder(info, &got)))

	_, err := Open(r, "traj.xyz", iostack.Read, "XYZ")
	require.NoError(t, err)
	require.Equal(t, iostack.Auto, got)
}

func TestOpenRejectsUnknownCompressionTag(t *testing.T) {
	r := NewRegistry()
	info := Info{Name: "XYZ", Extension: ".xyz"}
	require.NoError(t, r.Register(info, stubBuilder(info)))

	_, err := Open(r, "traj.xyz", iostack.Read, "XYZ/ZSTD")
	require.Error(t, err)
}

func TestSplitFormatString(t *testing.T) {
	name, compression := splitFormatString("XYZ/GZ")
	require.Equal(t, "XYZ", name)
	require.Equal(t, "GZ", compression)

	name, compression = splitFormatString("XYZ")
	require.Equal(t, "XYZ", name)
	require.Equal(t, "", compression)
}
