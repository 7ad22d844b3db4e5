// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : lammpsdata.go

// Package lammpsdata implements the LAMMPS Data file format: a
// free-form header of counts and box bounds, followed by named
// sections (Masses, Atoms, Velocities, Bonds, Angles, Dihedrals,
// Impropers) each introduced by its own title line and a blank line.
// LAMMPS Data files hold exactly one configuration, like this
// module's CSSR plug-in.
package lammpsdata

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
		Name:        "LAMMPS Data",
		Extension:   ".data",
		Description: "LAMMPS data file",
		Capabilities: format.Capabilities{
			Read: true, Write: true, Memory: true,
			Position: true, Velocity: true, Atoms: true, Bonds: true, Cell: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

// Format is the LAMMPS Data plug-in. Only a single configuration is
// held, matching the format's one-snapshot convention.
type Format struct {
	info    format.Info
	text    iostack.TextFile
	mode    iostack.Mode
	written bool

	title      string
	natoms     int
	masses     map[int]float64
	atomType   []int
	molID      []int
	charge     []float64
	positions  []chem.Vector3D
	velocities []chem.Vector3D
	hasVelo    bool
	bonds      [][2]int
	cell       chem.UnitCell
}

// Open opens path in mode and returns a ready LAMMPS Data Format.
func Open(path string, mode iostack.Mode, compression iostack.Compression, info format.Info) (*Format, error) {
	text, err := iostack.OpenTextCompressed(path, mode, compression)
	if err != nil {
		return nil, err
	}
	f := &Format{info: info, text: text, mode: mode, masses: make(map[int]float64)}
	if mode == iostack.Read {
		if err := f.parse(); err != nil {
			text.Close()
			return nil, err
		}
	}
	return f, nil
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

func (f *Format) parse() error {
	title, err := f.text.ReadLine()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "empty LAMMPS data file")
	}
	f.title = strings.TrimSpace(title)

	var xlo, xhi, ylo, yhi, zlo, zhi float64
	var xy, xz, yz float64
	var section string
	f.cell = chem.NewInfiniteCell()

	for {
		raw, err := f.text.ReadLine()
		if err != nil {
			break
		}
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch {
		case strings.HasSuffix(line, "atoms"):
			f.natoms, _ = strconv.Atoi(fields[0])
			continue
		case strings.HasSuffix(line, "bonds"):
			continue
		case strings.HasSuffix(line, "xlo xhi"):
			xlo, _ = strconv.ParseFloat(fields[0], 64)
			xhi, _ = strconv.ParseFloat(fields[1], 64)
			continue
		case strings.HasSuffix(line, "ylo yhi"):
			ylo, _ = strconv.ParseFloat(fields[0], 64)
			yhi, _ = strconv.ParseFloat(fields[1], 64)
			continue
		case strings.HasSuffix(line, "zlo zhi"):
			zlo, _ = strconv.ParseFloat(fields[0], 64)
			zhi, _ = strconv.ParseFloat(fields[1], 64)
			continue
		case strings.HasSuffix(line, "xy xz yz"):
			xy, _ = strconv.ParseFloat(fields[0], 64)
			xz, _ = strconv.ParseFloat(fields[1], 64)
			yz, _ = strconv.ParseFloat(fields[2], 64)
			continue
		}

		if isSectionHeader(fields) {
			section = strings.Join(fields, " ")
			if section == "Masses" || section == "Atoms" || section == "Velocities" ||
				section == "Bonds" || section == "Angles" || section == "Dihedrals" || section == "Impropers" {
				// swallow the blank separator line
				if _, err := f.text.ReadLine(); err != nil {
					return chem.WrapError(chem.ErrFormat, err, "truncated LAMMPS data file after %q section header", section)
				}
			}
			continue
		}

		switch section {
		case "Masses":
			id, _ := strconv.Atoi(fields[0])
			mass, _ := strconv.ParseFloat(fields[1], 64)
			f.masses[id] = mass
		case "Atoms":
			if err := f.parseAtomLine(fields); err != nil {
				return err
			}
		case "Velocities":
			idx, _ := strconv.Atoi(fields[0])
			if idx-1 < 0 || idx-1 >= len(f.velocities) {
				continue
			}
			vx, _ := strconv.ParseFloat(fields[1], 64)
			vy, _ := strconv.ParseFloat(fields[2], 64)
			vz, _ := strconv.ParseFloat(fields[3], 64)
			f.velocities[idx-1] = chem.Vector3D{X: vx, Y: vy, Z: vz}
			f.hasVelo = true
		case "Bonds":
			if len(fields) < 4 {
				continue
			}
			a, _ := strconv.Atoi(fields[2])
			b, _ := strconv.Atoi(fields[3])
			f.bonds = append(f.bonds, [2]int{a - 1, b - 1})
		}
	}

	lx, ly, lz := xhi-xlo, yhi-ylo, zhi-zlo
	if lx > 0 || ly > 0 || lz > 0 {
		if xy == 0 && xz == 0 && yz == 0 {
			f.cell = chem.NewOrthorhombicCell(lx, ly, lz)
		} else {
			f.cell = chem.NewOrthorhombicCell(lx, ly, lz)
			chem.Warn("LAMMPS Data triclinic tilt factors (xy=%.6f xz=%.6f yz=%.6f) are not reconstructed into the cell angles", xy, xz, yz)
		}
	}
	if f.velocities == nil {
		f.velocities = make([]chem.Vector3D, f.natoms)
	}
	return nil
}

func isSectionHeader(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "Masses", "Atoms", "Velocities", "Bonds", "Angles", "Dihedrals", "Impropers",
		"Pair", "PairIJ", "Bond", "Angle", "Dihedral", "Improper":
		return true
	}
	return false
}

// parseAtomLine handles three atom_style layouts: "full" (id mol-id
// type q x y z), "charge" (id type q x y z) and "atomic" (id type x y
// z). The style is inferred from the field count, so a six-column line
// is always read as "charge".
func (f *Format) parseAtomLine(fields []string) error {
	if len(fields) < 5 {
		return chem.NewError(chem.ErrFormat, "malformed LAMMPS Atoms line %v", fields)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "invalid LAMMPS atom id %q", fields[0])
	}
	if f.positions == nil {
		f.positions = make([]chem.Vector3D, f.natoms)
		f.velocities = make([]chem.Vector3D, f.natoms)
		f.atomType = make([]int, f.natoms)
		f.molID = make([]int, f.natoms)
		f.charge = make([]float64, f.natoms)
	}
	idx := id - 1
	if idx < 0 || idx >= f.natoms {
		return chem.NewError(chem.ErrOutOfBounds, "LAMMPS atom id %d out of declared range", id)
	}

	var atype int
	var molID int
	var charge float64
	var x, y, z float64

	switch len(fields) {
	case 5: // atomic: id type x y z
		atype, _ = strconv.Atoi(fields[1])
		x, _ = strconv.ParseFloat(fields[2], 64)
		y, _ = strconv.ParseFloat(fields[3], 64)
		z, _ = strconv.ParseFloat(fields[4], 64)
	case 6: // charge: id type q x y z
		atype, _ = strconv.Atoi(fields[1])
		charge, _ = strconv.ParseFloat(fields[2], 64)
		x, _ = strconv.ParseFloat(fields[3], 64)
		y, _ = strconv.ParseFloat(fields[4], 64)
		z, _ = strconv.ParseFloat(fields[5], 64)
	default: // full (and similar charge-carrying styles): id mol type q x y z [...]
		molID, _ = strconv.Atoi(fields[1])
		atype, _ = strconv.Atoi(fields[2])
		charge, _ = strconv.ParseFloat(fields[3], 64)
		x, _ = strconv.ParseFloat(fields[4], 64)
		y, _ = strconv.ParseFloat(fields[5], 64)
		z, _ = strconv.ParseFloat(fields[6], 64)
	}
	f.atomType[idx] = atype
	f.molID[idx] = molID
	f.charge[idx] = charge
	f.positions[idx] = chem.Vector3D{X: x, Y: y, Z: z}
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps reports that LAMMPS Data always holds exactly one frame.
func (f *Format) NSteps() (int, error) { return 1, nil }

func typeSymbol(atype int) string {
	return fmt.Sprintf("type%d", atype)
}

func (f *Format) populate(frame *chem.Frame) {
	out := chem.NewFrame()
	if f.hasVelo {
		out.AddVelocities()
	}
	for i := 0; i < f.natoms; i++ {
		mass := f.masses[f.atomType[i]]
		name := typeSymbol(f.atomType[i])
		atom := chem.NewAtom(name, name)
		if mass > 0 {
			atom.SetMass(mass)
		}
		atom.SetCharge(f.charge[i])
		atom.Properties().Set("lammps_mol_id", chem.NewDoubleProperty(float64(f.molID[i])))
		var idx int
		if f.hasVelo {
			idx = out.AddAtomWithVelocity(atom, f.positions[i], f.velocities[i])
		} else {
			idx = out.AddAtom(atom, f.positions[i])
		}
		_ = idx
	}
	for _, b := range f.bonds {
		if b[0] >= 0 && b[0] < f.natoms && b[1] >= 0 && b[1] < f.natoms {
			_ = out.Topology().AddBond(b[0], b[1], chem.BondUnknown)
		}
	}
	out.SetCell(f.cell)
	out.Properties().Set("title", chem.NewStringProperty(f.title))
	*frame = *out
}

// ReadStep populates frame with the single configuration.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx != 0 {
		return chem.NewError(chem.ErrOutOfBounds, "LAMMPS Data format only holds a single frame")
	}
	f.populate(frame)
	frame.SetStep(0)
	return nil
}

// Read populates frame with the single configuration.
func (f *Format) Read(frame *chem.Frame) error {
	return f.ReadStep(0, frame)
}

// Write emits frame as a LAMMPS data file. Only a single frame may
// ever be written.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "LAMMPS Data format does not support write in read mode")
	}
	if f.written {
		return chem.NewError(chem.ErrFormat, "LAMMPS Data format only supports writing one frame")
	}
	title := "generated by chemfiles"
	if p, ok := frame.Properties().Get("title"); ok {
		if s, err := p.AsString(); err == nil && s != "" {
			title = s
		}
	}
	lines := []string{title, ""}
	n := frame.Size()
	bonds := frame.Topology().Bonds()
	lines = append(lines, fmt.Sprintf("%d atoms", n))
	lines = append(lines, fmt.Sprintf("%d bonds", len(bonds)))
	lines = append(lines, "")

	ntypes := 1
	lines = append(lines, fmt.Sprintf("%d atom types", ntypes))
	lines = append(lines, "")

	a, b, c := frame.Cell().Lengths()
	if a == 0 {
		a, b, c = 1, 1, 1
	}
	lines = append(lines, fmt.Sprintf("%.6f %.6f xlo xhi", 0.0, a))
	lines = append(lines, fmt.Sprintf("%.6f %.6f ylo yhi", 0.0, b))
	lines = append(lines, fmt.Sprintf("%.6f %.6f zlo zhi", 0.0, c))
	lines = append(lines, "")

	lines = append(lines, "Atoms", "")
	positions := frame.Positions()
	for i := 0; i < n; i++ {
		at := frame.Topology().Atom(i)
		p := positions[i]
		molID := 1
		if prop, ok := at.Properties().Get("lammps_mol_id"); ok {
			if v, err := prop.AsDouble(); err == nil {
				molID = int(v)
			}
		}
		lines = append(lines, fmt.Sprintf("%d %d 1 %.6f %.6f %.6f %.6f", i+1, molID, at.Charge(), p.X, p.Y, p.Z))
	}
	lines = append(lines, "")

	if frame.HasVelocities() {
		lines = append(lines, "Velocities", "")
		velocities := frame.Velocities()
		for i := 0; i < n; i++ {
			v := velocities[i]
			lines = append(lines, fmt.Sprintf("%d %.6f %.6f %.6f", i+1, v.X, v.Y, v.Z))
		}
		lines = append(lines, "")
	}

	if len(bonds) > 0 {
		lines = append(lines, "Bonds", "")
		for i, bnd := range bonds {
			lines = append(lines, fmt.Sprintf("%d 1 %d %d", i+1, bnd.Begin+1, bnd.End+1))
		}
		lines = append(lines, "")
	}

	for _, line := range lines {
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	f.written = true
	return nil
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
