// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : cssr.go

// Package cssr implements the CSSR crystal structure format: a fixed
// cell/title header followed by one fractional-coordinate record per
// atom, each carrying up to eight bonded-neighbor serial numbers and a
// partial charge. CSSR is single-frame only, matching the write-once
// restriction of this module's SDF and LAMMPS Data plug-ins.
package cssr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
	"gonum.org/v1/gonum/mat"
)

func init() {
	info := format.Info{
		Name:        "CSSR",
		Extension:   ".cssr",
		Description: "Cambridge Structure Search and Retrieval format",
		Capabilities: format.Capabilities{
			Read: true, Write: true, Memory: true,
			Position: true, Atoms: true, Bonds: true, Cell: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

const maxNeighbors = 8

// Format is the CSSR plug-in. The format holds at most one frame.
type Format struct {
	info    format.Info
	text    iostack.TextFile
	mode    iostack.Mode
	written bool

	title     string
	cell      chem.UnitCell
	names     []string
	positions []chem.Vector3D
	charges   []float64
	bonds     [][2]int
}

// Open opens path in mode and returns a ready CSSR Format.
func Open(path string, mode iostack.Mode, compression iostack.Compression, info format.Info) (*Format, error) {
	text, err := iostack.OpenTextCompressed(path, mode, compression)
	if err != nil {
		return nil, err
	}
	f := &Format{info: info, text: text, mode: mode}
	if mode == iostack.Read {
		if err := f.parse(); err != nil {
			text.Close()
			return nil, err
		}
	}
	return f, nil
}

func fracToCartesian(cell chem.UnitCell, frac chem.Vector3D) chem.Vector3D {
	m := cell.Matrix()
	v := mat.NewVecDense(3, []float64{frac.X, frac.Y, frac.Z})
	var cart mat.VecDense
	cart.MulVec(m.T(), v)
	return chem.Vector3D{X: cart.AtVec(0), Y: cart.AtVec(1), Z: cart.AtVec(2)}
}

func cartesianToFrac(cell chem.UnitCell, cart chem.Vector3D) chem.Vector3D {
	m := cell.Matrix()
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return chem.Vector3D{}
	}
	v := mat.NewVecDense(3, []float64{cart.X, cart.Y, cart.Z})
	var frac mat.VecDense
	frac.MulVec(inv.T(), v)
	return chem.Vector3D{X: frac.AtVec(0), Y: frac.AtVec(1), Z: frac.AtVec(2)}
}

func (f *Format) parse() error {
	line1, err := f.text.ReadLine()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated CSSR file: missing cell-lengths header")
	}
	fields1 := strings.Fields(line1)
	var a, b, c float64
	for i, tok := range fields1 {
		if tok == "=" && i > 0 && fields1[i-1] == "A,B,C" && i+3 < len(fields1) {
			a, _ = strconv.ParseFloat(fields1[i+1], 64)
			b, _ = strconv.ParseFloat(fields1[i+2], 64)
			c, _ = strconv.ParseFloat(fields1[i+3], 64)
			break
		}
	}

	line2, err := f.text.ReadLine()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated CSSR file: missing cell-angles header")
	}
	fields2 := strings.Fields(line2)
	alpha, beta, gamma := 90.0, 90.0, 90.0
	for i, tok := range fields2 {
		if tok == "=" && i+3 < len(fields2) {
			alpha, _ = strconv.ParseFloat(fields2[i+1], 64)
			beta, _ = strconv.ParseFloat(fields2[i+2], 64)
			gamma, _ = strconv.ParseFloat(fields2[i+3], 64)
			break
		}
	}
	if alpha == 90 && beta == 90 && gamma == 90 {
		f.cell = chem.NewOrthorhombicCell(a, b, c)
	} else {
		f.cell = chem.NewOrthorhombicCell(a, b, c)
		_ = f.cell.SetAngle(0, alpha)
		_ = f.cell.SetAngle(1, beta)
		_ = f.cell.SetAngle(2, gamma)
	}

	countLine, err := f.text.ReadLine()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated CSSR file: missing atom count")
	}
	countFields := strings.Fields(countLine)
	if len(countFields) == 0 {
		return chem.NewError(chem.ErrFormat, "malformed CSSR atom-count line %q", countLine)
	}
	n, err := strconv.Atoi(countFields[0])
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "invalid CSSR atom count %q", countLine)
	}

	title, err := f.text.ReadLine()
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "truncated CSSR file: missing title line")
	}
	f.title = strings.TrimSpace(title)

	seen := make(map[[2]int]bool)
	for i := 0; i < n; i++ {
		line, err := f.text.ReadLine()
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated CSSR file: expected %d atom records", n)
		}
		fields := strings.Fields(line)
		if len(fields) < 2+3+maxNeighbors+1 {
			return chem.NewError(chem.ErrFormat, "malformed CSSR atom record %q", line)
		}
		name := fields[1]
		fx, _ := strconv.ParseFloat(fields[2], 64)
		fy, _ := strconv.ParseFloat(fields[3], 64)
		fz, _ := strconv.ParseFloat(fields[4], 64)
		cart := fracToCartesian(f.cell, chem.Vector3D{X: fx, Y: fy, Z: fz})
		f.names = append(f.names, name)
		f.positions = append(f.positions, cart)

		for k := 0; k < maxNeighbors; k++ {
			neighbor, err := strconv.Atoi(fields[5+k])
			if err != nil || neighbor == 0 {
				continue
			}
			j := neighbor - 1
			if j < 0 || j == i {
				continue
			}
			key := [2]int{i, j}
			if j < i {
				key = [2]int{j, i}
			}
			if !seen[key] {
				seen[key] = true
				f.bonds = append(f.bonds, key)
			}
		}
		charge, _ := strconv.ParseFloat(fields[5+maxNeighbors], 64)
		f.charges = append(f.charges, charge)
	}
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps reports that CSSR always holds exactly one frame.
func (f *Format) NSteps() (int, error) { return 1, nil }

func elementGuess(name string) string {
	trimmed := strings.TrimRight(name, "0123456789")
	if trimmed == "" {
		return name
	}
	return trimmed
}

func (f *Format) populate(frame *chem.Frame) {
	out := chem.NewFrame()
	for i, name := range f.names {
		atom := chem.NewAtom(name, elementGuess(name))
		if i < len(f.charges) {
			atom.SetCharge(f.charges[i])
		}
		out.AddAtom(atom, f.positions[i])
	}
	for _, b := range f.bonds {
		_ = out.Topology().AddBond(b[0], b[1], chem.BondUnknown)
	}
	out.SetCell(f.cell)
	out.Properties().Set("title", chem.NewStringProperty(f.title))
	*frame = *out
}

// ReadStep populates frame with the single CSSR frame.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx != 0 {
		return chem.NewError(chem.ErrOutOfBounds, "CSSR format only holds a single frame")
	}
	f.populate(frame)
	frame.SetStep(0)
	return nil
}

// Read populates frame with the single CSSR frame.
func (f *Format) Read(frame *chem.Frame) error {
	return f.ReadStep(0, frame)
}

// Write emits frame as a CSSR file. CSSR supports only a single frame:
// a second call fails.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "CSSR format does not support write in read mode")
	}
	if f.written {
		return chem.NewError(chem.ErrFormat, "CSSR format only supports writing one frame")
	}
	cell := frame.Cell()
	a, b, c := cell.Lengths()
	alpha, beta, gamma := cell.Angles()

	if err := f.text.WriteLine(fmt.Sprintf(" REFERENCE STRUCTURE = 00000   A,B,C =  %7.3f  %7.3f  %7.3f", a, b, c)); err != nil {
		return err
	}
	if err := f.text.WriteLine(fmt.Sprintf("   ALPHA,BETA,GAMMA =  %7.3f  %7.3f  %7.3f    SPGR =  1 P1", alpha, beta, gamma)); err != nil {
		return err
	}
	n := frame.Size()
	if err := f.text.WriteLine(fmt.Sprintf("%4d   0", n)); err != nil {
		return err
	}
	title := "file created with chemfiles"
	if p, ok := frame.Properties().Get("title"); ok {
		if s, err := p.AsString(); err == nil && s != "" {
			title = s
		}
	}
	if err := f.text.WriteLine(" " + title); err != nil {
		return err
	}

	positions := frame.Positions()
	neighbors := make([][]int, n)
	for _, bond := range frame.Topology().Bonds() {
		neighbors[bond.Begin] = append(neighbors[bond.Begin], bond.End+1)
		neighbors[bond.End] = append(neighbors[bond.End], bond.Begin+1)
	}
	for i := 0; i < n; i++ {
		a := frame.Topology().Atom(i)
		frac := cartesianToFrac(cell, positions[i])
		line := fmt.Sprintf("%-4d%-8s%-10.5f%-10.5f%-10.5f", i+1, a.Name(), frac.X, frac.Y, frac.Z)
		for k := 0; k < maxNeighbors; k++ {
			v := 0
			if k < len(neighbors[i]) {
				v = neighbors[i][k]
			}
			line += fmt.Sprintf("%-4d", v)
		}
		line += fmt.Sprintf("%8.3f", a.Charge())
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	f.written = true
	return nil
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
