// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : dcd.go

// Package dcd implements the CHARMM/NAMD DCD binary trajectory
// format: fortran-style record markers (a little-endian uint32 byte
// count before and after every record), a "CORD" header record
// carrying the frame count, a title record, a natoms record, then per
// frame a unit-cell record followed by X, Y, Z coordinate records. This plug-in always writes and reads 32-bit
// little-endian record markers; the 64-bit and big-endian marker
// variants spec.md documents as historically seen in the wild are not
// produced by this writer (documented simplification, DESIGN.md).
package dcd

import (
	"math"
	"strings"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
)

func init() {
	info := format.Info{
		Name:        "DCD",
		Extension:   ".dcd",
		Description: "CHARMM/NAMD DCD binary trajectory",
		Capabilities: format.Capabilities{
			Read: true, Write: true,
			Position: true, Atoms: true, Cell: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

// Format is the DCD plug-in.
type Format struct {
	info    format.Info
	bin     iostack.BinaryFile
	mode    iostack.Mode
	natoms  int
	nframes int
	cursor  int
	headerW bool
}

// Open opens path in mode and returns a ready DCD Format.
func Open(path string, mode iostack.Mode, compression iostack.Compression, info format.Info) (*Format, error) {
	bin, err := iostack.OpenBinaryCompressed(path, mode, compression)
	if err != nil {
		return nil, err
	}
	f := &Format{info: info, bin: bin, mode: mode}
	if mode == iostack.Read {
		if err := f.readHeader(); err != nil {
			bin.Close()
			return nil, err
		}
	}
	return f, nil
}

func (f *Format) readRecord() ([]byte, error) {
	n, err := f.bin.ReadU32LE()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := f.readByte()
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	if _, err := f.bin.ReadU32LE(); err != nil { // trailing marker
		return nil, err
	}
	return buf, nil
}

func (f *Format) readByte() (byte, error) {
	var p [1]byte
	if _, err := f.bin.Read(p[:]); err != nil {
		return 0, chem.WrapError(chem.ErrFile, err, "truncated DCD record")
	}
	return p[0], nil
}

func le32(buf []byte, offset int) int32 {
	return int32(uint32(buf[offset]) | uint32(buf[offset+1])<<8 | uint32(buf[offset+2])<<16 | uint32(buf[offset+3])<<24)
}

func putLE32(buf []byte, offset int, v int32) {
	u := uint32(v)
	buf[offset] = byte(u)
	buf[offset+1] = byte(u >> 8)
	buf[offset+2] = byte(u >> 16)
	buf[offset+3] = byte(u >> 24)
}

func le64(buf []byte, offset int) float64 {
	bits := uint64(0)
	for i := 0; i < 8; i++ {
		bits |= uint64(buf[offset+i]) << (8 * uint(i))
	}
	return math.Float64frombits(bits)
}

func putLE64(buf []byte, offset int, v float64) {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		buf[offset+i] = byte(bits >> (8 * uint(i)))
	}
}

func (f *Format) readHeader() error {
	header, err := f.readRecord()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated DCD header record")
	}
	if len(header) < 84 || string(header[0:4]) != "CORD" {
		return chem.NewError(chem.ErrFormat, "DCD file does not start with a CORD header record")
	}
	f.nframes = int(le32(header, 4))

	titleRecord, err := f.readRecord()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated DCD title record")
	}
	_ = titleRecord

	natomsRecord, err := f.readRecord()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated DCD natoms record")
	}
	if len(natomsRecord) < 4 {
		return chem.NewError(chem.ErrFormat, "malformed DCD natoms record")
	}
	f.natoms = int(le32(natomsRecord, 0))
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps returns the declared frame count from the DCD header.
func (f *Format) NSteps() (int, error) { return f.nframes, nil }

// ReadStep seeks are not supported: DCD frames are fixed-size but this
// plug-in reads sequentially only.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	return chem.NewError(chem.ErrFormat, "DCD format only supports sequential reads")
}

// Read reads the next frame: a cell record (6 doubles, in the CHARMM
// A, GAMMA, B, BETA, ALPHA, C order; a record shorter than 48 bytes
// gives an infinite cell) followed by X, Y, Z coordinate records.
func (f *Format) Read(frame *chem.Frame) error {
	if f.cursor >= f.nframes {
		return chem.NewError(chem.ErrFormat, "no more steps to read")
	}

	cellRecord, err := f.readRecord()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated DCD cell record")
	}
	var cell chem.UnitCell
	if len(cellRecord) >= 48 {
		a := le64(cellRecord, 0)
		gamma := le64(cellRecord, 8)
		b := le64(cellRecord, 16)
		beta := le64(cellRecord, 24)
		alpha := le64(cellRecord, 32)
		c := le64(cellRecord, 40)
		cell = chem.NewOrthorhombicCell(a, b, c)
		_ = cell.SetAngle(0, alpha)
		_ = cell.SetAngle(1, beta)
		_ = cell.SetAngle(2, gamma)
	} else {
		cell = chem.NewInfiniteCell()
	}

	xRecord, err := f.readRecord()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated DCD X record")
	}
	yRecord, err := f.readRecord()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated DCD Y record")
	}
	zRecord, err := f.readRecord()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated DCD Z record")
	}

	out := chem.NewFrame()
	for i := 0; i < f.natoms; i++ {
		x := math.Float32frombits(uint32(le32(xRecord, i*4)))
		y := math.Float32frombits(uint32(le32(yRecord, i*4)))
		z := math.Float32frombits(uint32(le32(zRecord, i*4)))
		out.AddAtom(chem.NewAtom("", ""), chem.Vector3D{X: float64(x), Y: float64(y), Z: float64(z)})
	}
	out.SetCell(cell)
	out.SetStep(f.cursor)
	*frame = *out
	f.cursor++
	return nil
}

func (f *Format) writeRecord(data []byte) error {
	if err := f.bin.WriteU32LE(uint32(len(data))); err != nil {
		return err
	}
	for _, b := range data {
		if _, err := f.bin.Write([]byte{b}); err != nil {
			return chem.WrapError(chem.ErrFile, err, "failed writing DCD record body")
		}
	}
	return f.bin.WriteU32LE(uint32(len(data)))
}

func (f *Format) writeHeader(natoms int) error {
	header := make([]byte, 84)
	copy(header[0:4], "CORD")
	putLE32(header, 4, int32(f.nframes))
	if err := f.writeRecord(header); err != nil {
		return err
	}
	title := make([]byte, 84)
	copy(title, strings.Repeat(" ", 84))
	copy(title, "* WRITTEN BY CHEMFILES")
	if err := f.writeRecord(title); err != nil {
		return err
	}
	natomsRecord := make([]byte, 4)
	putLE32(natomsRecord, 0, int32(natoms))
	if err := f.writeRecord(natomsRecord); err != nil {
		return err
	}
	f.natoms = natoms
	f.headerW = true
	return nil
}

// Write appends frame to the DCD trajectory, writing the header
// lazily on the first call once the atom count is known.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "DCD format does not support write in read mode")
	}
	n := frame.Size()
	if !f.headerW {
		if err := f.writeHeader(n); err != nil {
			return err
		}
	} else if n != f.natoms {
		return chem.NewError(chem.ErrFormat, "DCD trajectory atom count changed between frames (%d -> %d)", f.natoms, n)
	}

	cell := frame.Cell()
	a, b, c := cell.Lengths()
	alpha, beta, gamma := cell.Angles()
	cellRecord := make([]byte, 48)
	putLE64(cellRecord, 0, a)
	putLE64(cellRecord, 8, gamma)
	putLE64(cellRecord, 16, b)
	putLE64(cellRecord, 24, beta)
	putLE64(cellRecord, 32, alpha)
	putLE64(cellRecord, 40, c)
	if err := f.writeRecord(cellRecord); err != nil {
		return err
	}

	positions := frame.Positions()
	xRecord := make([]byte, 4*n)
	yRecord := make([]byte, 4*n)
	zRecord := make([]byte, 4*n)
	for i, p := range positions {
		putLE32(xRecord, i*4, int32(math.Float32bits(float32(p.X))))
		putLE32(yRecord, i*4, int32(math.Float32bits(float32(p.Y))))
		putLE32(zRecord, i*4, int32(math.Float32bits(float32(p.Z))))
	}
	if err := f.writeRecord(xRecord); err != nil {
		return err
	}
	if err := f.writeRecord(yRecord); err != nil {
		return err
	}
	if err := f.writeRecord(zRecord); err != nil {
		return err
	}
	f.nframes++
	return nil
}

// Close closes the underlying binary stream. In Write mode on a seekable
// (uncompressed) stream it first patches the header's frame count with
// the number of frames written; a compressed stream keeps a count of 0.
func (f *Format) Close() error {
	if f.mode == iostack.Write && f.headerW {
		if err := f.bin.Seek(8); err == nil { // record marker (4) + "CORD" (4)
			if err := f.bin.WriteU32LE(uint32(f.nframes)); err != nil {
				f.bin.Close()
				return err
			}
		}
	}
	return f.bin.Close()
}
