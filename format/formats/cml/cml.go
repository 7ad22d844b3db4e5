// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : cml.go

// Package cml implements the Chemical Markup Language format: XML
// <molecule> elements with nested <atomArray>/<bondArray>. No
// third-party XML parser appears anywhere in the retrieval pack, so
// this plug-in is grounded on the standard library's encoding/xml
// (documented as a justified stdlib exception in DESIGN.md).
package cml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
)

func init() {
	info := format.Info{
		Name:        "CML",
		Extension:   ".cml",
		Description: "Chemical Markup Language",
		Capabilities: format.Capabilities{
			Read: true, Write: true, Memory: true,
			Position: true, Atoms: true, Bonds: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

type cmlAtom struct {
	ID      string  `xml:"id,attr"`
	Element string  `xml:"elementType,attr"`
	X3      float64 `xml:"x3,attr"`
	Y3      float64 `xml:"y3,attr"`
	Z3      float64 `xml:"z3,attr"`
}

type cmlBond struct {
	AtomRefs2 string `xml:"atomRefs2,attr"`
	Order     string `xml:"order,attr"`
}

type cmlMolecule struct {
	XMLName xml.Name `xml:"molecule"`
	Atoms   []cmlAtom `xml:"atomArray>atom"`
	Bonds   []cmlBond `xml:"bondArray>bond"`
}

type step struct {
	atomTypes []string
	positions []chem.Vector3D
	bonds     [][2]int
	orders    []chem.BondOrder
}

// Format is the CML plug-in.
type Format struct {
	info   format.Info
	text   iostack.TextFile
	mode   iostack.Mode
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready CML Format.
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

func cmlBondOrder(s string) chem.BondOrder {
	switch strings.ToLower(s) {
	case "1", "s", "single":
		return chem.BondSingle
	case "2", "d", "double":
		return chem.BondDouble
	case "3", "t", "triple":
		return chem.BondTriple
	case "a", "aromatic":
		return chem.BondAromatic
	default:
		return chem.BondUnknown
	}
}

func (f *Format) indexAll() error {
	var all []string
	for {
		line, err := f.text.ReadLine()
		if err != nil {
			break
		}
		all = append(all, line)
	}
	content := strings.Join(all, "\n")

	decoder := xml.NewDecoder(strings.NewReader(content))
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "molecule" {
			continue
		}
		var mol cmlMolecule
		if err := decoder.DecodeElement(&mol, &start); err != nil {
			return chem.WrapError(chem.ErrFormat, err, "malformed CML <molecule> element")
		}
		idIndex := make(map[string]int, len(mol.Atoms))
		st := step{}
		for _, a := range mol.Atoms {
			idIndex[a.ID] = len(st.atomTypes)
			st.atomTypes = append(st.atomTypes, a.Element)
			st.positions = append(st.positions, chem.Vector3D{X: a.X3, Y: a.Y3, Z: a.Z3})
		}
		for _, b := range mol.Bonds {
			refs := strings.Fields(b.AtomRefs2)
			if len(refs) != 2 {
				chem.Warn("malformed CML bond atomRefs2 %q", b.AtomRefs2)
				continue
			}
			a1, ok1 := idIndex[refs[0]]
			a2, ok2 := idIndex[refs[1]]
			if !ok1 || !ok2 {
				chem.Warn("CML bond references unknown atom id in %q", b.AtomRefs2)
				continue
			}
			st.bonds = append(st.bonds, [2]int{a1, a2})
			st.orders = append(st.orders, cmlBondOrder(b.Order))
		}
		f.steps = append(f.steps, st)
	}
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps returns the number of <molecule> elements found.
func (f *Format) NSteps() (int, error) { return len(f.steps), nil }

func populateFrame(frame *chem.Frame, st step) {
	out := chem.NewFrame()
	for i, t := range st.atomTypes {
		out.AddAtom(chem.NewAtom("", t), st.positions[i])
	}
	for i, b := range st.bonds {
		_ = out.Topology().AddBond(b[0], b[1], st.orders[i])
	}
	*frame = *out
}

// ReadStep populates frame with the given molecule, random access.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, "CML step %d out of range [0,%d)", stepIdx, len(f.steps))
	}
	populateFrame(frame, f.steps[stepIdx])
	frame.SetStep(stepIdx)
	return nil
}

// Read populates frame with the next molecule and advances the cursor.
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

// Write appends frame as a <molecule> element.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "CML format does not support write in read mode")
	}
	if err := f.text.WriteLine("<molecule>"); err != nil {
		return err
	}
	if err := f.text.WriteLine("  <atomArray>"); err != nil {
		return err
	}
	positions := frame.Positions()
	for i := 0; i < frame.Size(); i++ {
		a := frame.Topology().Atom(i)
		p := positions[i]
		line := fmt.Sprintf(`    <atom id="a%d" elementType="%s" x3="%.6f" y3="%.6f" z3="%.6f"/>`, i+1, a.Type(), p.X, p.Y, p.Z)
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	if err := f.text.WriteLine("  </atomArray>"); err != nil {
		return err
	}
	if err := f.text.WriteLine("  <bondArray>"); err != nil {
		return err
	}
	for _, b := range frame.Topology().Bonds() {
		line := fmt.Sprintf(`    <bond atomRefs2="a%d a%d" order="%d"/>`, b.Begin+1, b.End+1, bondOrderCode(b.Order))
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	if err := f.text.WriteLine("  </bondArray>"); err != nil {
		return err
	}
	return f.text.WriteLine("</molecule>")
}

func bondOrderCode(order chem.BondOrder) int {
	switch order {
	case chem.BondSingle:
		return 1
	case chem.BondDouble:
		return 2
	case chem.BondTriple:
		return 3
	default:
		return 1
	}
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
