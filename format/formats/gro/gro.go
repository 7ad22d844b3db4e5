// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : gro.go

// Package gro implements the GROMACS .gro fixed-column coordinate
// format: a title line, an atom-count line, fixed-width atom records
// (optionally carrying velocities), and a trailing box-vector line.
// Column layout grounded on the retrieval pack's GROMACS-trajectory
// reader (kpotier/molsolvent pkg/gr), adapted from its bufio.Reader
// fixed-column idiom to this module's line-oriented TextFile.
package gro

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
)

func init() {
	info := format.Info{
		Name:        "GRO",
		Extension:   ".gro",
		Description: "GROMACS fixed-column coordinate format",
		Capabilities: format.Capabilities{
			Read: true, Write: true, Memory: true,
			Position: true, Velocity: true, Atoms: true, Residues: true, Cell: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

type step struct {
	title      string
	atomNames  []string
	resNames   []string
	resIDs     []int
	positions  []chem.Vector3D
	velocities []chem.Vector3D
	hasVelo    bool
	cell       chem.UnitCell
}

// Format is the .gro plug-in.
type Format struct {
	info   format.Info
	text   iostack.TextFile
	mode   iostack.Mode
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready .gro Format.
func Open(path string, mode iostack.Mode, compression iostack.Compression, info format.Info) (*Format, error) {
	text, err := iostack.OpenTextCompressed(path, mode, compression)
	if err != nil {
		return nil, err
	}
	f := &Format{info: info, text: text, mode: mode}
	if mode == iostack.Read {
		if err := f.indexAll(); err != nil {
			text.Close()
			return nil, err
		}
	}
	return f, nil
}

func field(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if start > len(s) {
		return ""
	}
	if end > len(s) {
		end = len(s)
	}
	return strings.TrimSpace(s[start:end])
}

func (f *Format) indexAll() error {
	for {
		title, err := f.text.ReadLine()
		if err != nil {
			break
		}
		countLine, err := f.text.ReadLine()
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated .gro file: missing atom count")
		}
		n, err := strconv.Atoi(strings.TrimSpace(countLine))
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "invalid .gro atom count %q", countLine)
		}
		st := step{title: title}
		for i := 0; i < n; i++ {
			line, err := f.text.ReadLine()
			if err != nil {
				return chem.WrapError(chem.ErrFormat, err, "truncated .gro file: expected %d atom lines", n)
			}
			resID, _ := strconv.Atoi(field(line, 0, 5))
			resName := field(line, 5, 10)
			atomName := field(line, 10, 15)
			x, _ := strconv.ParseFloat(field(line, 20, 28), 64)
			y, _ := strconv.ParseFloat(field(line, 28, 36), 64)
			z, _ := strconv.ParseFloat(field(line, 36, 44), 64)
			st.resIDs = append(st.resIDs, resID)
			st.resNames = append(st.resNames, resName)
			st.atomNames = append(st.atomNames, atomName)
			st.positions = append(st.positions, chem.Vector3D{X: x * 10, Y: y * 10, Z: z * 10}) // nm -> angstrom
			if vx := field(line, 44, 52); vx != "" {
				vy := field(line, 52, 60)
				vz := field(line, 60, 68)
				fvx, e1 := strconv.ParseFloat(vx, 64)
				fvy, e2 := strconv.ParseFloat(vy, 64)
				fvz, e3 := strconv.ParseFloat(vz, 64)
				if e1 == nil && e2 == nil && e3 == nil {
					st.velocities = append(st.velocities, chem.Vector3D{X: fvx, Y: fvy, Z: fvz})
					st.hasVelo = true
				}
			}
		}
		boxLine, err := f.text.ReadLine()
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated .gro file: missing box vector line")
		}
		fields := strings.Fields(boxLine)
		st.cell = chem.NewInfiniteCell()
		if len(fields) >= 3 {
			a, _ := strconv.ParseFloat(fields[0], 64)
			b, _ := strconv.ParseFloat(fields[1], 64)
			c, _ := strconv.ParseFloat(fields[2], 64)
			st.cell = chem.NewOrthorhombicCell(a*10, b*10, c*10) // nm -> angstrom
		}
		f.steps = append(f.steps, st)
	}
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps returns the number of frames found.
func (f *Format) NSteps() (int, error) { return len(f.steps), nil }

func populateFrame(frame *chem.Frame, st step) {
	out := chem.NewFrame()
	residueIdx := make(map[string]int)
	if st.hasVelo {
		out.AddVelocities()
	}
	for i, name := range st.atomNames {
		atom := chem.NewAtom(name, strings.TrimSpace(name))
		var idx int
		if st.hasVelo && i < len(st.velocities) {
			idx = out.AddAtomWithVelocity(atom, st.positions[i], st.velocities[i])
		} else {
			idx = out.AddAtom(atom, st.positions[i])
		}
		key := fmt.Sprintf("%d:%s", st.resIDs[i], st.resNames[i])
		ri, ok := residueIdx[key]
		if !ok {
			res := chem.NewResidue(st.resNames[i])
			res.SetID(st.resIDs[i])
			ri = out.Topology().AddResidue(res)
			residueIdx[key] = ri
		}
		out.Topology().Residue(ri).AddAtom(idx)
	}
	out.SetCell(st.cell)
	out.Properties().Set("title", chem.NewStringProperty(st.title))
	*frame = *out
}

// ReadStep populates frame with the given step, random access.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, ".gro step %d out of range [0,%d)", stepIdx, len(f.steps))
	}
	populateFrame(frame, f.steps[stepIdx])
	frame.SetStep(stepIdx)
	return nil
}

// Read populates frame with the next step and advances the cursor.
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

// Write appends frame as a .gro step.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, ".gro format does not support write in read mode")
	}
	title := "generated"
	if p, ok := frame.Properties().Get("title"); ok {
		title, _ = p.AsString()
	}
	if err := f.text.WriteLine(title); err != nil {
		return err
	}
	n := frame.Size()
	if err := f.text.WriteLine(strconv.Itoa(n)); err != nil {
		return err
	}
	positions := frame.Positions()
	for i := 0; i < n; i++ {
		a := frame.Topology().Atom(i)
		p := positions[i]
		resName, resID := "RES", 1
		if ri, ok := frame.Topology().ResidueForAtom(i); ok {
			res := frame.Topology().Residue(ri)
			resName = res.Name()
			if id, ok := res.ID(); ok {
				resID = id
			}
		}
		line := fmt.Sprintf("%5d%-5s%5s%5d%8.3f%8.3f%8.3f", resID, resName, a.Name(), i+1, p.X/10, p.Y/10, p.Z/10)
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	a, b, c := frame.Cell().Lengths()
	if err := f.text.WriteLine(fmt.Sprintf("%10.5f%10.5f%10.5f", a/10, b/10, c/10)); err != nil {
		return err
	}
	return nil
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
