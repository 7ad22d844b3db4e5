// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : lammpsdump.go

// Package lammpsdump implements the LAMMPS custom dump format: a
// repeating block of ITEM: TIMESTEP / NUMBER OF ATOMS / BOX BOUNDS /
// ATOMS sections, with the dump's column order discovered from the
// "ITEM: ATOMS ..." header line rather than assumed fixed, matching
// this module's extended-XYZ Properties= column-discovery idiom.
package lammpsdump

import (
	"strconv"
	"strings"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
)

func init() {
	info := format.Info{
		Name:        "LAMMPS Dump",
		Extension:   ".lammpstrj",
		Description: "LAMMPS custom dump trajectory",
		Capabilities: format.Capabilities{
			Read: true, Memory: true,
			Position: true, Atoms: true, Cell: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

type step struct {
	timestep  int
	atomTypes []string
	positions []chem.Vector3D
	cell      chem.UnitCell
}

// Format is the LAMMPS dump plug-in. Read-only: this module's dump
// reader does not support writing, matching extended-XYZ's read-only
// design for a format chiefly produced by external simulation tools.
type Format struct {
	info   format.Info
	text   iostack.TextFile
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready LAMMPS dump Format.
func Open(path string, mode iostack.Mode, compression iostack.Compression, info format.Info) (*Format, error) {
	if mode != iostack.Read {
		return nil, chem.NewError(chem.ErrFormat, "LAMMPS Dump format only supports reading")
	}
	text, err := iostack.OpenTextCompressed(path, mode, compression)
	if err != nil {
		return nil, err
	}
	f := &Format{info: info, text: text}
	if err := f.indexAll(); err != nil {
		text.Close()
		return nil, err
	}
	return f, nil
}

// columnIndices picks out the offsets of the positional columns to
// use, preferring unwrapped cartesian (xu/yu/zu), then wrapped
// cartesian (x/y/z), then scaled/fractional (xs/ys/zs), per spec.
func columnIndices(names []string) (xi, yi, zi int, scaled bool, ok bool) {
	find := func(want string) int {
		for i, n := range names {
			if n == want {
				return i
			}
		}
		return -1
	}
	if xi, yi, zi = find("xu"), find("yu"), find("zu"); xi >= 0 && yi >= 0 && zi >= 0 {
		return xi, yi, zi, false, true
	}
	if xi, yi, zi = find("x"), find("y"), find("z"); xi >= 0 && yi >= 0 && zi >= 0 {
		return xi, yi, zi, false, true
	}
	if xi, yi, zi = find("xs"), find("ys"), find("zs"); xi >= 0 && yi >= 0 && zi >= 0 {
		return xi, yi, zi, true, true
	}
	return 0, 0, 0, false, false
}

func (f *Format) indexAll() error {
	for {
		tag, err := f.text.ReadLine()
		if err != nil {
			break
		}
		if strings.TrimSpace(tag) != "ITEM: TIMESTEP" {
			continue
		}
		tsLine, err := f.text.ReadLine()
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated LAMMPS dump: missing TIMESTEP value")
		}
		ts, _ := strconv.Atoi(strings.TrimSpace(tsLine))
		st := step{timestep: ts}

		if _, err := f.text.ReadLine(); err != nil { // "ITEM: NUMBER OF ATOMS"
			return chem.WrapError(chem.ErrFormat, err, "truncated LAMMPS dump after TIMESTEP")
		}
		nLine, err := f.text.ReadLine()
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated LAMMPS dump: missing atom count")
		}
		n, _ := strconv.Atoi(strings.TrimSpace(nLine))

		boxHeader, err := f.text.ReadLine() // "ITEM: BOX BOUNDS ..."
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated LAMMPS dump: missing BOX BOUNDS header")
		}
		triclinic := strings.Contains(boxHeader, "xy xz yz")
		var lengths [3]float64
		for axis := 0; axis < 3; axis++ {
			boxLine, err := f.text.ReadLine()
			if err != nil {
				return chem.WrapError(chem.ErrFormat, err, "truncated LAMMPS dump BOX BOUNDS")
			}
			fields := strings.Fields(boxLine)
			if len(fields) < 2 {
				continue
			}
			lo, _ := strconv.ParseFloat(fields[0], 64)
			hi, _ := strconv.ParseFloat(fields[1], 64)
			lengths[axis] = hi - lo
		}
		if triclinic {
			chem.Warn("LAMMPS dump triclinic tilt factors are not reconstructed into the cell angles")
		}
		st.cell = chem.NewOrthorhombicCell(lengths[0], lengths[1], lengths[2])

		atomsHeader, err := f.text.ReadLine() // "ITEM: ATOMS id type x y z ..."
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated LAMMPS dump: missing ATOMS header")
		}
		columns := strings.Fields(strings.TrimPrefix(atomsHeader, "ITEM: ATOMS"))
		xi, yi, zi, scaled, ok := columnIndices(columns)
		if !ok {
			return chem.NewError(chem.ErrFormat, "LAMMPS dump ATOMS header %q has no recognizable position columns", atomsHeader)
		}
		typeIdx := -1
		for i, c := range columns {
			if c == "type" || c == "element" {
				typeIdx = i
				break
			}
		}

		for i := 0; i < n; i++ {
			line, err := f.text.ReadLine()
			if err != nil {
				return chem.WrapError(chem.ErrFormat, err, "truncated LAMMPS dump: expected %d atom lines", n)
			}
			fields := strings.Fields(line)
			x, _ := strconv.ParseFloat(fields[xi], 64)
			y, _ := strconv.ParseFloat(fields[yi], 64)
			z, _ := strconv.ParseFloat(fields[zi], 64)
			if scaled {
				x *= lengths[0]
				y *= lengths[1]
				z *= lengths[2]
			}
			atype := "1"
			if typeIdx >= 0 && typeIdx < len(fields) {
				atype = fields[typeIdx]
			}
			st.atomTypes = append(st.atomTypes, atype)
			st.positions = append(st.positions, chem.Vector3D{X: x, Y: y, Z: z})
		}
		f.steps = append(f.steps, st)
	}
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps returns the number of dump blocks found.
func (f *Format) NSteps() (int, error) { return len(f.steps), nil }

func populateFrame(frame *chem.Frame, st step) {
	out := chem.NewFrame()
	for i, t := range st.atomTypes {
		out.AddAtom(chem.NewAtom(t, t), st.positions[i])
	}
	out.SetCell(st.cell)
	out.SetStep(st.timestep)
	*frame = *out
}

// ReadStep populates frame with the given dump block, random access.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, "LAMMPS dump step %d out of range [0,%d)", stepIdx, len(f.steps))
	}
	populateFrame(frame, f.steps[stepIdx])
	return nil
}

// Read populates frame with the next dump block and advances the cursor.
func (f *Format) Read(frame *chem.Frame) error {
	if f.cursor >= len(f.steps) {
		return chem.NewError(chem.ErrFormat, "no more steps to read")
	}
	if err := f.ReadStep(f.cursor, frame); err != nil {
		return err
	}
	f.cursor++
	return nil
}

// Write is unsupported: LAMMPS dump files are read-only in this plug-in.
func (f *Format) Write(frame *chem.Frame) error {
	return chem.NewError(chem.ErrFormat, "LAMMPS Dump format does not support write")
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
