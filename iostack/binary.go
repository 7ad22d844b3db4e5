// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : binary.go
package iostack

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cx-luo/chemfiles/chem"
)

// BinaryFile is a byte-oriented handle with endian- and width-aware
// helpers, needed by DCD/TRR/XTC/MMTF (spec.md §4.1).
type BinaryFile interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Tell() (int64, error)
	Seek(offset int64) error
	Close() error

	ReadU32LE() (uint32, error)
	ReadU32BE() (uint32, error)
	ReadI32LE() (int32, error)
	ReadI32BE() (int32, error)
	ReadF32LE() (float32, error)
	ReadF32BE() (float32, error)
	ReadF64LE() (float64, error)
	ReadF64BE() (float64, error)

	WriteU32LE(v uint32) error
	WriteU32BE(v uint32) error
	WriteF32LE(v float32) error
	WriteF32BE(v float32) error
	WriteF64LE(v float64) error
	WriteF64BE(v float64) error
}

type binaryFile struct {
	raw     io.ReadWriteCloser
	seeker  io.Seeker
	canSeek bool
}

func newBinaryFile(raw io.ReadWriteCloser, seekable bool) *binaryFile {
	b := &binaryFile{raw: raw}
	if s, ok := raw.(io.Seeker); ok && seekable {
		b.seeker = s
		b.canSeek = true
	}
	return b
}

func (b *binaryFile) Read(p []byte) (int, error)  { return b.raw.Read(p) }
func (b *binaryFile) Write(p []byte) (int, error) { return b.raw.Write(p) }
func (b *binaryFile) Close() error                { return b.raw.Close() }

func (b *binaryFile) Tell() (int64, error) {
	if !b.canSeek {
		return 0, chem.NewError(chem.ErrFile, "stream does not support tell (compressed or non-seekable transport)")
	}
	return b.seeker.Seek(0, io.SeekCurrent)
}

func (b *binaryFile) Seek(offset int64) error {
	if !b.canSeek {
		return chem.NewError(chem.ErrFile, "stream does not support seek (compressed or non-seekable transport)")
	}
	_, err := b.seeker.Seek(offset, io.SeekStart)
	if err != nil {
		return chem.WrapError(chem.ErrFile, err, "failed to seek")
	}
	return nil
}

func (b *binaryFile) readFull(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.raw, buf); err != nil {
		return nil, chem.WrapError(chem.ErrFile, err, "failed to read %d bytes", n)
	}
	return buf, nil
}

func (b *binaryFile) ReadU32LE() (uint32, error) {
	buf, err := b.readFull(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (b *binaryFile) ReadU32BE() (uint32, error) {
	buf, err := b.readFull(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

func (b *binaryFile) ReadI32LE() (int32, error) {
	v, err := b.ReadU32LE()
	return int32(v), err
}

func (b *binaryFile) ReadI32BE() (int32, error) {
	v, err := b.ReadU32BE()
	return int32(v), err
}

func (b *binaryFile) ReadF32LE() (float32, error) {
	v, err := b.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (b *binaryFile) ReadF32BE() (float32, error) {
	v, err := b.ReadU32BE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (b *binaryFile) ReadF64LE() (float64, error) {
	buf, err := b.readFull(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

func (b *binaryFile) ReadF64BE() (float64, error) {
	buf, err := b.readFull(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
}

func (b *binaryFile) WriteU32LE(v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	_, err := b.raw.Write(buf)
	if err != nil {
		return chem.WrapError(chem.ErrFile, err, "failed to write u32le")
	}
	return nil
}

func (b *binaryFile) WriteU32BE(v uint32) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	_, err := b.raw.Write(buf)
	if err != nil {
		return chem.WrapError(chem.ErrFile, err, "failed to write u32be")
	}
	return nil
}

func (b *binaryFile) WriteF32LE(v float32) error {
	return b.WriteU32LE(math.Float32bits(v))
}

func (b *binaryFile) WriteF32BE(v float32) error {
	return b.WriteU32BE(math.Float32bits(v))
}

func (b *binaryFile) WriteF64LE(v float64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	_, err := b.raw.Write(buf)
	if err != nil {
		return chem.WrapError(chem.ErrFile, err, "failed to write f64le")
	}
	return nil
}

func (b *binaryFile) WriteF64BE(v float64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(v))
	_, err := b.raw.Write(buf)
	if err != nil {
		return chem.WrapError(chem.ErrFile, err, "failed to write f64be")
	}
	return nil
}
