// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : memory.go
package iostack

import (
	"io"

	"github.com/cx-luo/chemfiles/chem"
)

// MemoryBuffer is the in-memory transport used by OpenMemory-backed
// trajectories: a growable byte buffer with seek support, so writers can
// rewrite the step count in a header after the fact the way several
// binary formats require.
type MemoryBuffer struct {
	data []byte
	pos  int64
}

// NewMemoryBuffer returns an empty, write-from-start buffer.
func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

// NewMemoryBufferFromBytes wraps existing bytes for reading.
func NewMemoryBufferFromBytes(data []byte) *MemoryBuffer {
	return &MemoryBuffer{data: data}
}

func (m *MemoryBuffer) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemoryBuffer) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	n := copy(m.data[m.pos:end], p)
	m.pos = end
	return n, nil
}

func (m *MemoryBuffer) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = int64(len(m.data)) + offset
	default:
		return 0, chem.NewError(chem.ErrFile, "invalid seek whence %d", whence)
	}
	if target < 0 {
		return 0, chem.NewError(chem.ErrFile, "negative seek position %d", target)
	}
	m.pos = target
	return m.pos, nil
}

// Close is a no-op: a MemoryBuffer's contents outlive the handle so
// Trajectory.MemoryBuffer() can retrieve them after Close.
func (m *MemoryBuffer) Close() error { return nil }

// Bytes returns the buffer's current contents.
func (m *MemoryBuffer) Bytes() []byte { return m.data }
