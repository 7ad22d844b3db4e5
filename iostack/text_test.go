package iostack

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextFileReadLineHandlesAllLineEndings(t *testing.T) {
	buf := NewMemoryBufferFromBytes([]byte("alpha\nbeta\r\ngamma\rdelta"))
	tf := OpenTextMemory(buf, Read)

	lines, err := tf.ReadLines(10)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, lines)
}

func TestTextFileReadLineReportsEOF(t *testing.T) {
	buf := NewMemoryBufferFromBytes([]byte("only\n"))
	tf := OpenTextMemory(buf, Read)

	_, err := tf.ReadLine()
	require.NoError(t, err)

	_, err = tf.ReadLine()
	require.ErrorIs(t, err, io.EOF)
	require.True(t, tf.EOF())
}

func TestTextFileWriteLineRoundTrips(t *testing.T) {
	buf := NewMemoryBuffer()
	w := OpenTextMemory(buf, Write)
	require.NoError(t, w.WriteLine("first"))
	require.NoError(t, w.WriteLine("second"))
	require.NoError(t, w.Close())

	r := OpenTextMemory(NewMemoryBufferFromBytes(buf.Bytes()), Read)
	lines, err := r.ReadLines(10)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, lines)
}

func TestTextFileSeekAndRewind(t *testing.T) {
	buf := NewMemoryBufferFromBytes([]byte("one\ntwo\nthree\n"))
	tf := OpenTextMemory(buf, Read)

	first, err := tf.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "one", first)

	require.NoError(t, tf.Rewind())
	again, err := tf.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "one", again)
}

func TestTextFileWriteModeRejectsReadLine(t *testing.T) {
	buf := NewMemoryBuffer()
	w := OpenTextMemory(buf, Write)
	_, err := w.ReadLine()
	require.Error(t, err)
}
