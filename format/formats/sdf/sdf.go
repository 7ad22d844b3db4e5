// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : sdf.go

// Package sdf implements the MDL SDF/molfile (V2000) format: one
// molecule per record, records separated by a "$$$$" delimiter line.
package sdf

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
		Name:        "SDF",
		Extension:   ".sdf",
		Description: "MDL structure-data file (V2000 molfile records)",
		Capabilities: format.Capabilities{
			Read: true, Write: true, Memory: true,
			Position: true, Atoms: true, Bonds: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

type step struct {
	name      string
	atomTypes []string
	positions []chem.Vector3D
	bonds     [][3]int // begin, end, order (MDL numeric)
	data      map[string]string
}

// Format is the SDF plug-in.
type Format struct {
	info   format.Info
	text   iostack.TextFile
	mode   iostack.Mode
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready SDF Format.
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

func mdlBondOrder(code int) chem.BondOrder {
	switch code {
	case 1:
		return chem.BondSingle
	case 2:
		return chem.BondDouble
	case 3:
		return chem.BondTriple
	case 4:
		return chem.BondAromatic
	default:
		return chem.BondUnknown
	}
}

func (f *Format) indexAll() error {
	for {
		name, err := f.text.ReadLine()
		if err != nil {
			break // clean EOF between records
		}
		if _, err := f.text.ReadLine(); err != nil { // program/metadata line
			return chem.WrapError(chem.ErrFormat, err, "truncated SDF record: missing metadata line")
		}
		if _, err := f.text.ReadLine(); err != nil { // comment line
			return chem.WrapError(chem.ErrFormat, err, "truncated SDF record: missing comment line")
		}
		countsLine, err := f.text.ReadLine()
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated SDF record: missing counts line")
		}
		if len(countsLine) < 6 {
			return chem.NewError(chem.ErrFormat, "malformed SDF counts line %q", countsLine)
		}
		nAtoms, _ := strconv.Atoi(strings.TrimSpace(countsLine[0:3]))
		nBonds, _ := strconv.Atoi(strings.TrimSpace(countsLine[3:6]))

		st := step{name: strings.TrimSpace(name), data: make(map[string]string)}
		for i := 0; i < nAtoms; i++ {
			line, err := f.text.ReadLine()
			if err != nil {
				return chem.WrapError(chem.ErrFormat, err, "truncated SDF record: expected %d atom lines", nAtoms)
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return chem.NewError(chem.ErrFormat, "malformed SDF atom line %q", line)
			}
			x, _ := strconv.ParseFloat(fields[0], 64)
			y, _ := strconv.ParseFloat(fields[1], 64)
			z, _ := strconv.ParseFloat(fields[2], 64)
			st.atomTypes = append(st.atomTypes, fields[3])
			st.positions = append(st.positions, chem.Vector3D{X: x, Y: y, Z: z})
		}
		for i := 0; i < nBonds; i++ {
			line, err := f.text.ReadLine()
			if err != nil {
				return chem.WrapError(chem.ErrFormat, err, "truncated SDF record: expected %d bond lines", nBonds)
			}
			if len(line) < 9 {
				continue
			}
			a, _ := strconv.Atoi(strings.TrimSpace(line[0:3]))
			b, _ := strconv.Atoi(strings.TrimSpace(line[3:6]))
			t, _ := strconv.Atoi(strings.TrimSpace(line[6:9]))
			st.bonds = append(st.bonds, [3]int{a - 1, b - 1, t})
		}
		// skip to end of the properties block, then read any data items
		// until the $$$$ record delimiter.
		for {
			line, err := f.text.ReadLine()
			if err != nil {
				return chem.WrapError(chem.ErrFormat, err, "truncated SDF record: missing $$$$ delimiter")
			}
			if line == "$$$$" {
				break
			}
			if strings.HasPrefix(line, "> ") || strings.HasPrefix(line, ">") {
				field := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(line), "> <"), ">")
				value, _ := f.text.ReadLine()
				st.data[field] = value
				// consume the blank separator line between data items
				f.text.ReadLine()
			}
		}
		f.steps = append(f.steps, st)
	}
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps returns the number of molecule records.
func (f *Format) NSteps() (int, error) { return len(f.steps), nil }

func populateFrame(frame *chem.Frame, st step) {
	out := chem.NewFrame()
	for i, t := range st.atomTypes {
		out.AddAtom(chem.NewAtom("", t), st.positions[i])
	}
	for _, b := range st.bonds {
		if b[0] >= 0 && b[0] < len(st.atomTypes) && b[1] >= 0 && b[1] < len(st.atomTypes) {
			_ = out.Topology().AddBond(b[0], b[1], mdlBondOrder(b[2]))
		}
	}
	out.Properties().Set("name", chem.NewStringProperty(st.name))
	for k, v := range st.data {
		out.Properties().Set(k, chem.NewStringProperty(v))
	}
	*frame = *out
}

// ReadStep populates frame with the given molecule record, random access.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, "SDF step %d out of range [0,%d)", stepIdx, len(f.steps))
	}
	populateFrame(frame, f.steps[stepIdx])
	frame.SetStep(stepIdx)
	return nil
}

// Read populates frame with the next molecule record and advances the cursor.
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

func bondOrderCode(order chem.BondOrder) int {
	switch order {
	case chem.BondSingle:
		return 1
	case chem.BondDouble:
		return 2
	case chem.BondTriple:
		return 3
	case chem.BondAromatic:
		return 4
	default:
		return 1
	}
}

// Write appends frame as an SDF record.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "SDF format does not support write in read mode")
	}
	name := ""
	if p, ok := frame.Properties().Get("name"); ok {
		name, _ = p.AsString()
	}
	for _, line := range []string{name, "", ""} {
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	bonds := frame.Topology().Bonds()
	if err := f.text.WriteLine(fmt.Sprintf("%3d%3d  0  0  0  0  0  0  0  0999 V2000", frame.Size(), len(bonds))); err != nil {
		return err
	}
	positions := frame.Positions()
	for i := 0; i < frame.Size(); i++ {
		a := frame.Topology().Atom(i)
		p := positions[i]
		line := fmt.Sprintf("%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0", p.X, p.Y, p.Z, a.Type())
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	for _, b := range bonds {
		line := fmt.Sprintf("%3d%3d%3d  0  0  0  0", b.Begin+1, b.End+1, bondOrderCode(b.Order))
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	if err := f.text.WriteLine("M  END"); err != nil {
		return err
	}
	return f.text.WriteLine("$$$$")
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
