// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : mmcif.go

// Package mmcif implements the macromolecular CIF format's
// `_atom_site` loop and `_cell` key/value tags. Column order inside
// the loop is discovered from its own `_atom_site.*` tag lines, the
// same discovery idiom this module's LAMMPS dump plug-in uses for its
// ITEM: ATOMS header.
package mmcif

import (
	"strconv"
	"strings"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
)

func init() {
	info := format.Info{
		Name:        "mmCIF",
		Extension:   ".cif",
		Description: "macromolecular Crystallographic Information File",
		Capabilities: format.Capabilities{
			Read: true, Write: true, Memory: true,
			Position: true, Atoms: true, Residues: true, Cell: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

type step struct {
	atomTypes []string
	atomNames []string
	resNames  []string
	resIDs    []int
	positions []chem.Vector3D
	cell      chem.UnitCell
}

// Format is the mmCIF plug-in.
type Format struct {
	info   format.Info
	text   iostack.TextFile
	mode   iostack.Mode
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready mmCIF Format.
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
	st := step{cell: chem.NewInfiniteCell()}
	var a, b, c, alpha, beta, gamma float64
	alpha, beta, gamma = 90, 90, 90
	inLoop := false
	var loopTags []string

	for {
		raw, err := f.text.ReadLine()
		if err != nil {
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "_cell.length_a"):
			a, _ = strconv.ParseFloat(lastField(line), 64)
			continue
		case strings.HasPrefix(line, "_cell.length_b"):
			b, _ = strconv.ParseFloat(lastField(line), 64)
			continue
		case strings.HasPrefix(line, "_cell.length_c"):
			c, _ = strconv.ParseFloat(lastField(line), 64)
			continue
		case strings.HasPrefix(line, "_cell.angle_alpha"):
			alpha, _ = strconv.ParseFloat(lastField(line), 64)
			continue
		case strings.HasPrefix(line, "_cell.angle_beta"):
			beta, _ = strconv.ParseFloat(lastField(line), 64)
			continue
		case strings.HasPrefix(line, "_cell.angle_gamma"):
			gamma, _ = strconv.ParseFloat(lastField(line), 64)
			continue
		}

		if line == "loop_" {
			inLoop = true
			loopTags = nil
			continue
		}
		if inLoop && strings.HasPrefix(line, "_atom_site.") {
			loopTags = append(loopTags, strings.TrimPrefix(line, "_atom_site."))
			continue
		}
		if inLoop && strings.HasPrefix(line, "_") {
			// a different loop_ category: stop treating lines as atom_site rows
			inLoop = false
			continue
		}
		if inLoop && len(loopTags) > 0 {
			if err := appendAtomRow(&st, loopTags, line); err != nil {
				return err
			}
			continue
		}
	}

	if a > 0 || b > 0 || c > 0 {
		st.cell = chem.NewOrthorhombicCell(a, b, c)
		_ = st.cell.SetAngle(0, alpha)
		_ = st.cell.SetAngle(1, beta)
		_ = st.cell.SetAngle(2, gamma)
	}
	f.steps = append(f.steps, st)
	return nil
}

func lastField(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func columnIndex(tags []string, names ...string) int {
	for _, want := range names {
		for i, t := range tags {
			if t == want {
				return i
			}
		}
	}
	return -1
}

func appendAtomRow(st *step, tags []string, line string) error {
	fields := strings.Fields(line)
	if len(fields) < len(tags) {
		return chem.NewError(chem.ErrFormat, "mmCIF _atom_site row has fewer fields than declared tags: %q", line)
	}
	xi := columnIndex(tags, "Cartn_x")
	yi := columnIndex(tags, "Cartn_y")
	zi := columnIndex(tags, "Cartn_z")
	if xi < 0 || yi < 0 || zi < 0 {
		return chem.NewError(chem.ErrFormat, "mmCIF _atom_site loop has no Cartn_x/y/z columns")
	}
	typeI := columnIndex(tags, "type_symbol")
	nameI := columnIndex(tags, "label_atom_id")
	resNameI := columnIndex(tags, "label_comp_id")
	resIDI := columnIndex(tags, "label_seq_id", "auth_seq_id")

	x, _ := strconv.ParseFloat(fields[xi], 64)
	y, _ := strconv.ParseFloat(fields[yi], 64)
	z, _ := strconv.ParseFloat(fields[zi], 64)
	st.positions = append(st.positions, chem.Vector3D{X: x, Y: y, Z: z})

	atomType := "X"
	if typeI >= 0 {
		atomType = fields[typeI]
	}
	st.atomTypes = append(st.atomTypes, atomType)

	atomName := atomType
	if nameI >= 0 {
		atomName = fields[nameI]
	}
	st.atomNames = append(st.atomNames, atomName)

	resName := ""
	if resNameI >= 0 {
		resName = fields[resNameI]
	}
	st.resNames = append(st.resNames, resName)

	resID := 0
	if resIDI >= 0 {
		resID, _ = strconv.Atoi(fields[resIDI])
	}
	st.resIDs = append(st.resIDs, resID)
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps returns the number of models found (always 1: this plug-in
// reads the first/only `_atom_site` loop in the file).
func (f *Format) NSteps() (int, error) { return len(f.steps), nil }

func populateFrame(frame *chem.Frame, st step) {
	out := chem.NewFrame()
	residueIdx := make(map[string]int)
	for i, t := range st.atomTypes {
		idx := out.AddAtom(chem.NewAtom(st.atomNames[i], t), st.positions[i])
		if st.resNames[i] == "" {
			continue
		}
		key := st.resNames[i] + ":" + strconv.Itoa(st.resIDs[i])
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
	*frame = *out
}

// ReadStep populates frame with the parsed structure.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, "mmCIF step %d out of range [0,%d)", stepIdx, len(f.steps))
	}
	populateFrame(frame, f.steps[stepIdx])
	frame.SetStep(stepIdx)
	return nil
}

// Read populates frame with the next (and usually only) structure.
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

// Write emits frame as an mmCIF `_atom_site` loop.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "mmCIF format does not support write in read mode")
	}
	a, b, c := frame.Cell().Lengths()
	alpha, beta, gamma := frame.Cell().Angles()
	lines := []string{
		"data_chemfiles",
		fmt64("_cell.length_a", a),
		fmt64("_cell.length_b", b),
		fmt64("_cell.length_c", c),
		fmt64("_cell.angle_alpha", alpha),
		fmt64("_cell.angle_beta", beta),
		fmt64("_cell.angle_gamma", gamma),
		"loop_",
		"_atom_site.id",
		"_atom_site.type_symbol",
		"_atom_site.label_atom_id",
		"_atom_site.label_comp_id",
		"_atom_site.label_seq_id",
		"_atom_site.Cartn_x",
		"_atom_site.Cartn_y",
		"_atom_site.Cartn_z",
	}
	for _, l := range lines {
		if err := f.text.WriteLine(l); err != nil {
			return err
		}
	}
	positions := frame.Positions()
	for i := 0; i < frame.Size(); i++ {
		at := frame.Topology().Atom(i)
		p := positions[i]
		resName, resID := ".", 0
		if ri, ok := frame.Topology().ResidueForAtom(i); ok {
			res := frame.Topology().Residue(ri)
			resName = res.Name()
			if id, ok := res.ID(); ok {
				resID = id
			}
		}
		line := formatAtomRow(i+1, at.Type(), at.Name(), resName, resID, p)
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

func fmt64(tag string, value float64) string {
	return tag + " " + strconv.FormatFloat(value, 'f', 3, 64)
}

func formatAtomRow(id int, atomType, atomName, resName string, resID int, p chem.Vector3D) string {
	return strings.Join([]string{
		strconv.Itoa(id),
		atomType,
		atomName,
		resName,
		strconv.Itoa(resID),
		strconv.FormatFloat(p.X, 'f', 3, 64),
		strconv.FormatFloat(p.Y, 'f', 3, 64),
		strconv.FormatFloat(p.Z, 'f', 3, 64),
	}, " ")
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
