// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : open_test.go
package iostack

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenTextCompressedOverrideIgnoresPathSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traj.xyz") // no .gz suffix on disk

	w, err := OpenTextCompressed(path, Write, Gzip)
	require.NoError(t, err)
	require.NoError(t, w.WriteLine("hello"))
	require.NoError(t, w.Close())

	// Auto detection on this path would see NoCompression and read
	// garbage text; the override must force the gzip codec both ways.
	r, err := OpenTextCompressed(path, Read, Gzip)
	require.NoError(t, err)
	line, err := r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "hello", line)
}

func TestOpenTextCompressedAutoMatchesOpenText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traj.xyz")

	w, err := OpenTextCompressed(path, Write, Auto)
	require.NoError(t, err)
	require.NoError(t, w.WriteLine("plain"))
	require.NoError(t, w.Close())

	r, err := OpenText(path, Read)
	require.NoError(t, err)
	line, err := r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "plain", line)
}

func TestOpenBinaryCompressedOverrideIgnoresPathSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traj.dat")

	w, err := OpenBinaryCompressed(path, Write, Gzip)
	require.NoError(t, err)
	require.NoError(t, w.WriteU32BE(42))
	require.NoError(t, w.Close())

	r, err := OpenBinaryCompressed(path, Read, Gzip)
	require.NoError(t, err)
	v, err := r.ReadU32BE()
	require.NoError(t, err)
	require.Equal(t, uint32(42), v)
}
