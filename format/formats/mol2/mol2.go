// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : mol2.go

// Package mol2 implements the Tripos MOL2 format: @<TRIPOS> sections
// per molecule record, concatenated for multi-frame files.
package mol2

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
		Name:        "MOL2",
		Extension:   ".mol2",
		Description: "Tripos MOL2 format",
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
	atomNames []string
	positions []chem.Vector3D
	bonds     [][3]int // begin, end, chem.BondOrder decoded from the MOL2 bond type
}

func bondOrderFromMol2(t string) chem.BondOrder {
	switch t {
	case "1":
		return chem.BondSingle
	case "2":
		return chem.BondDouble
	case "3":
		return chem.BondTriple
	case "am":
		return chem.BondAmide
	case "ar":
		return chem.BondAromatic
	default:
		return chem.BondUnknown
	}
}

func mol2BondCode(order chem.BondOrder) string {
	switch order {
	case chem.BondSingle:
		return "1"
	case chem.BondDouble:
		return "2"
	case chem.BondTriple:
		return "3"
	case chem.BondAmide:
		return "am"
	case chem.BondAromatic:
		return "ar"
	default:
		return "un"
	}
}

// Format is the MOL2 plug-in.
type Format struct {
	info   format.Info
	text   iostack.TextFile
	mode   iostack.Mode
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready MOL2 Format.
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

func (f *Format) indexAll() error {
	var cur *step
	var section string
	for {
		line, err := f.text.ReadLine()
		if err != nil {
			break
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@<TRIPOS>") {
			section = strings.TrimPrefix(trimmed, "@<TRIPOS>")
			if section == "MOLECULE" {
				f.steps = append(f.steps, step{})
				cur = &f.steps[len(f.steps)-1]
				name, err := f.text.ReadLine()
				if err != nil {
					return chem.WrapError(chem.ErrFormat, err, "truncated MOL2 MOLECULE record")
				}
				cur.name = strings.TrimSpace(name)
				section = "" // remaining MOLECULE lines (counts etc.) are skipped
			}
			continue
		}
		if cur == nil || trimmed == "" {
			continue
		}
		switch section {
		case "ATOM":
			fields := strings.Fields(trimmed)
			if len(fields) < 6 {
				return chem.NewError(chem.ErrFormat, "malformed MOL2 ATOM line %q", line)
			}
			x, _ := strconv.ParseFloat(fields[2], 64)
			y, _ := strconv.ParseFloat(fields[3], 64)
			z, _ := strconv.ParseFloat(fields[4], 64)
			atomType := fields[5]
			if idx := strings.IndexByte(atomType, '.'); idx >= 0 {
				atomType = atomType[:idx]
			}
			cur.atomNames = append(cur.atomNames, fields[1])
			cur.atomTypes = append(cur.atomTypes, atomType)
			cur.positions = append(cur.positions, chem.Vector3D{X: x, Y: y, Z: z})
		case "BOND":
			fields := strings.Fields(trimmed)
			if len(fields) < 4 {
				return chem.NewError(chem.ErrFormat, "malformed MOL2 BOND line %q", line)
			}
			a, _ := strconv.Atoi(fields[1])
			b, _ := strconv.Atoi(fields[2])
			order := bondOrderFromMol2(fields[3])
			cur.bonds = append(cur.bonds, [3]int{a - 1, b - 1, int(order)})
		}
	}
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps returns the number of MOLECULE records.
func (f *Format) NSteps() (int, error) { return len(f.steps), nil }

func populateFrame(frame *chem.Frame, st step) {
	out := chem.NewFrame()
	for i, t := range st.atomTypes {
		out.AddAtom(chem.NewAtom(st.atomNames[i], t), st.positions[i])
	}
	for _, b := range st.bonds {
		if b[0] >= 0 && b[0] < len(st.atomTypes) && b[1] >= 0 && b[1] < len(st.atomTypes) {
			_ = out.Topology().AddBond(b[0], b[1], chem.BondOrder(b[2]))
		}
	}
	out.Properties().Set("name", chem.NewStringProperty(st.name))
	*frame = *out
}

// ReadStep populates frame with the given molecule record, random access.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, "MOL2 step %d out of range [0,%d)", stepIdx, len(f.steps))
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

// Write appends frame as a MOL2 MOLECULE record.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "MOL2 format does not support write in read mode")
	}
	name := "MOLECULE"
	if p, ok := frame.Properties().Get("name"); ok {
		if s, err := p.AsString(); err == nil && s != "" {
			name = s
		}
	}
	bonds := frame.Topology().Bonds()
	lines := []string{
		"@<TRIPOS>MOLECULE",
		name,
		fmt.Sprintf("%d %d 0 0 0", frame.Size(), len(bonds)),
		"SMALL",
		"NO_CHARGES",
		"@<TRIPOS>ATOM",
	}
	positions := frame.Positions()
	for i := 0; i < frame.Size(); i++ {
		a := frame.Topology().Atom(i)
		p := positions[i]
		lines = append(lines, fmt.Sprintf("%7d %-8s %10.4f %10.4f %10.4f %-5s", i+1, a.Name(), p.X, p.Y, p.Z, a.Type()))
	}
	lines = append(lines, "@<TRIPOS>BOND")
	for i, b := range bonds {
		lines = append(lines, fmt.Sprintf("%6d %5d %5d %2s", i+1, b.Begin+1, b.End+1, mol2BondCode(b.Order)))
	}
	for _, line := range lines {
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
