// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : pdb.go

// Package pdb implements the Protein Data Bank fixed-column text
// format: ATOM/HETATM/CONECT/CRYST1/MODEL/ENDMDL/TER records.
package pdb

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
		Name:        "PDB",
		Extension:   ".pdb",
		Description: "Protein Data Bank format",
		Capabilities: format.Capabilities{
			Read: true, Write: true, Memory: true,
			Position: true, Atoms: true, Bonds: true, Residues: true, Cell: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

type residueKey struct {
	chain string
	seq   int
	name  string
}

type step struct {
	atomTypes  []string
	atomNames  []string
	positions  []chem.Vector3D
	isHetatm   []bool
	residueOf  []residueKey
	hasResidue []bool
	bonds      [][2]int // serial-number based, resolved after all ATOMs seen
	cell       chem.UnitCell
}

// Format is the PDB plug-in.
type Format struct {
	info   format.Info
	text   iostack.TextFile
	mode   iostack.Mode
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready PDB Format.
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

// column extracts s[start:end] (1-indexed, inclusive), trimmed, or ""
// if the line is shorter than start — PDB readers must tolerate short
// lines with missing trailing columns (spec.md §4.3).
func column(line string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if start > len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start-1 : end])
}

func parseFloatColumn(line string, start, end int) float64 {
	v, _ := strconv.ParseFloat(column(line, start, end), 64)
	return v
}

func parseIntColumn(line string, start, end int) int {
	v, _ := strconv.Atoi(column(line, start, end))
	return v
}

func (f *Format) indexAll() error {
	var cur *step
	serialToIndex := make(map[int]int)
	newStep := func() {
		s := step{cell: chem.NewInfiniteCell()}
		f.steps = append(f.steps, s)
		cur = &f.steps[len(f.steps)-1]
		serialToIndex = make(map[int]int)
	}
	newStep()

	for {
		line, err := f.text.ReadLine()
		if err != nil {
			break
		}
		if len(line) < 6 {
			continue
		}
		record := strings.TrimRight(line[:6], " ")
		switch record {
		case "ATOM", "HETATM":
			serial := parseIntColumn(line, 7, 11)
			name := column(line, 13, 16)
			resName := column(line, 18, 20)
			chainID := column(line, 22, 22)
			resSeq := parseIntColumn(line, 23, 26)
			x := parseFloatColumn(line, 31, 38)
			y := parseFloatColumn(line, 39, 46)
			z := parseFloatColumn(line, 47, 54)
			element := column(line, 77, 78)
			if element == "" {
				element = strings.TrimSpace(name)
			}
			idx := len(cur.atomTypes)
			cur.atomTypes = append(cur.atomTypes, element)
			cur.atomNames = append(cur.atomNames, name)
			cur.positions = append(cur.positions, chem.Vector3D{X: x, Y: y, Z: z})
			cur.isHetatm = append(cur.isHetatm, record == "HETATM")
			cur.residueOf = append(cur.residueOf, residueKey{chain: chainID, seq: resSeq, name: resName})
			cur.hasResidue = append(cur.hasResidue, true)
			serialToIndex[serial] = idx
		case "CONECT":
			serial := parseIntColumn(line, 7, 11)
			for _, rng := range [][2]int{{12, 16}, {17, 21}, {22, 26}, {27, 31}} {
				partner := column(line, rng[0], rng[1])
				if partner == "" {
					continue
				}
				ps, err := strconv.Atoi(partner)
				if err != nil {
					continue
				}
				if a, ok := serialToIndex[serial]; ok {
					if b, ok2 := serialToIndex[ps]; ok2 && a != b {
						cur.bonds = append(cur.bonds, [2]int{a, b})
					}
				}
			}
		case "CRYST1":
			a := parseFloatColumn(line, 7, 15)
			b := parseFloatColumn(line, 16, 24)
			c := parseFloatColumn(line, 25, 33)
			alpha := parseFloatColumn(line, 34, 40)
			beta := parseFloatColumn(line, 41, 47)
			gamma := parseFloatColumn(line, 48, 54)
			if alpha == 90 && beta == 90 && gamma == 90 {
				cur.cell = chem.NewOrthorhombicCell(a, b, c)
			} else {
				cur.cell = chem.NewTriclinicCell(a, b, c, alpha, beta, gamma)
			}
		case "MODEL":
			if len(cur.atomTypes) > 0 {
				newStep()
			}
		case "ENDMDL":
			newStep()
		case "END":
			// terminal record; nothing to do
		}
	}
	// drop a trailing empty step produced by a final ENDMDL/no-op newStep
	if len(f.steps) > 1 && len(cur.atomTypes) == 0 && len(cur.bonds) == 0 {
		f.steps = f.steps[:len(f.steps)-1]
	}
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps returns the number of MODEL blocks (or 1 for a single-model file).
func (f *Format) NSteps() (int, error) { return len(f.steps), nil }

func populateFrame(frame *chem.Frame, st step) {
	out := chem.NewFrame()
	residueIdx := make(map[residueKey]int)
	for i, t := range st.atomTypes {
		a := chem.NewAtom(st.atomNames[i], t)
		a.Properties().Set("is_hetatm", chem.NewBoolProperty(st.isHetatm[i]))
		idx := out.AddAtom(a, st.positions[i])
		if st.hasResidue[i] {
			key := st.residueOf[i]
			ri, ok := residueIdx[key]
			if !ok {
				res := chem.NewResidue(key.name)
				res.SetID(key.seq)
				res.Properties().Set("chain", chem.NewStringProperty(key.chain))
				ri = out.Topology().AddResidue(res)
				residueIdx[key] = ri
			}
			out.Topology().Residue(ri).AddAtom(idx)
		}
	}
	for _, b := range st.bonds {
		_ = out.Topology().AddBond(b[0], b[1], chem.BondUnknown)
	}
	out.SetCell(st.cell)
	*frame = *out
}

// ReadStep populates frame with the given MODEL step, random access.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, "PDB step %d out of range [0,%d)", stepIdx, len(f.steps))
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

// Write appends frame as a MODEL block (or a bare set of ATOM records
// for a single-frame file, elided here for simplicity — every write
// emits a MODEL/ENDMDL pair, which all PDB readers tolerate).
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "PDB format does not support write in read mode")
	}
	n := frame.Size()
	if err := f.text.WriteLine(fmt.Sprintf("MODEL     %4d", frame.Step()+1)); err != nil {
		return err
	}
	positions := frame.Positions()
	for i := 0; i < n; i++ {
		a := frame.Topology().Atom(i)
		p := positions[i]
		record := "ATOM  "
		if hetatm, ok := a.Properties().Get("is_hetatm"); ok {
			if b, _ := hetatm.AsBool(); b {
				record = "HETATM"
			}
		}
		resName, chain, resSeq := "", "", 0
		if ri, ok := frame.Topology().ResidueForAtom(i); ok {
			res := frame.Topology().Residue(ri)
			resName = res.Name()
			if id, ok := res.ID(); ok {
				resSeq = id
			}
			if chainProp, ok := res.Properties().Get("chain"); ok {
				chain, _ = chainProp.AsString()
			}
		}
		line := fmt.Sprintf("%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s",
			record, i+1, a.Name(), resName, chain, resSeq, p.X, p.Y, p.Z, 1.0, 0.0, a.Type())
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	for _, b := range frame.Topology().Bonds() {
		line := fmt.Sprintf("CONECT%5d%5d", b.Begin+1, b.End+1)
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	return f.text.WriteLine("ENDMDL")
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
