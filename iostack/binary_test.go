package iostack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinaryFileU32RoundTripLittleEndian(t *testing.T) {
	buf := NewMemoryBuffer()
	w := OpenBinaryMemory(buf, Write)
	require.NoError(t, w.WriteU32LE(0xdeadbeef))

	r := OpenBinaryMemory(NewMemoryBufferFromBytes(buf.Bytes()), Read)
	v, err := r.ReadU32LE()
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), v)
}

func TestBinaryFileU32RoundTripBigEndian(t *testing.T) {
	buf := NewMemoryBuffer()
	w := OpenBinaryMemory(buf, Write)
	require.NoError(t, w.WriteU32BE(0x01020304))

	r := OpenBinaryMemory(NewMemoryBufferFromBytes(buf.Bytes()), Read)
	v, err := r.ReadU32BE()
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), v)
}

func TestBinaryFileF32RoundTrip(t *testing.T) {
	buf := NewMemoryBuffer()
	w := OpenBinaryMemory(buf, Write)
	require.NoError(t, w.WriteF32LE(3.5))

	r := OpenBinaryMemory(NewMemoryBufferFromBytes(buf.Bytes()), Read)
	v, err := r.ReadF32LE()
	require.NoError(t, err)
	require.Equal(t, float32(3.5), v)
}

func TestBinaryFileF64RoundTrip(t *testing.T) {
	buf := NewMemoryBuffer()
	w := OpenBinaryMemory(buf, Write)
	require.NoError(t, w.WriteF64BE(2.71828))

	r := OpenBinaryMemory(NewMemoryBufferFromBytes(buf.Bytes()), Read)
	v, err := r.ReadF64BE()
	require.NoError(t, err)
	require.Equal(t, 2.71828, v)
}

func TestBinaryFileSeek(t *testing.T) {
	buf := NewMemoryBuffer()
	w := OpenBinaryMemory(buf, Write)
	require.NoError(t, w.WriteU32LE(1))
	require.NoError(t, w.WriteU32LE(2))

	r := OpenBinaryMemory(NewMemoryBufferFromBytes(buf.Bytes()), Read)
	require.NoError(t, r.Seek(4))
	v, err := r.ReadU32LE()
	require.NoError(t, err)
	require.Equal(t, uint32(2), v)
}
