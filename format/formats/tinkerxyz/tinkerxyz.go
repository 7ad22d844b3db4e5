// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : tinkerxyz.go

// Package tinkerxyz implements the Tinker XYZ/ARC format: a count (and
// optional title) line, followed by one line per atom holding its
// serial number, name, x/y/z, a force-field atom-class number, and the
// serial numbers of its bonded neighbors. Multiple steps concatenate
// directly (the .arc trajectory convention), mirroring this module's
// plain xyz plug-in but carrying bonds instead of a free comment line.
package tinkerxyz

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
		Name:        "Tinker",
		Extension:   ".arc",
		Description: "Tinker XYZ / ARC format",
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
	title     string
	names     []string
	classes   []int
	positions []chem.Vector3D
	neighbors [][]int // 1-based serials, as parsed
}

// Format is the Tinker XYZ/ARC plug-in.
type Format struct {
	info   format.Info
	text   iostack.TextFile
	mode   iostack.Mode
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready Tinker XYZ Format.
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
	for {
		header, err := f.text.ReadLine()
		if err != nil {
			break
		}
		fields := strings.Fields(header)
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "invalid Tinker XYZ atom count %q", header)
		}
		st := step{}
		if len(fields) > 1 {
			st.title = strings.TrimSpace(strings.Join(fields[1:], " "))
		}
		for i := 0; i < n; i++ {
			line, err := f.text.ReadLine()
			if err != nil {
				return chem.WrapError(chem.ErrFormat, err, "truncated Tinker XYZ file: expected %d atom lines", n)
			}
			parts := strings.Fields(line)
			if len(parts) < 5 {
				return chem.NewError(chem.ErrFormat, "malformed Tinker XYZ atom line %q", line)
			}
			x, err1 := strconv.ParseFloat(parts[2], 64)
			y, err2 := strconv.ParseFloat(parts[3], 64)
			z, err3 := strconv.ParseFloat(parts[4], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return chem.NewError(chem.ErrFormat, "malformed Tinker XYZ coordinates in %q", line)
			}
			class := 0
			if len(parts) > 5 {
				class, _ = strconv.Atoi(parts[5])
			}
			var neighbors []int
			for _, n := range parts[6:] {
				if idx, err := strconv.Atoi(n); err == nil {
					neighbors = append(neighbors, idx)
				}
			}
			st.names = append(st.names, parts[1])
			st.classes = append(st.classes, class)
			st.positions = append(st.positions, chem.Vector3D{X: x, Y: y, Z: z})
			st.neighbors = append(st.neighbors, neighbors)
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
	for i, name := range st.names {
		atom := chem.NewAtom(name, name)
		atom.Properties().Set("tinker_class", chem.NewDoubleProperty(float64(st.classes[i])))
		out.AddAtom(atom, st.positions[i])
	}
	seen := make(map[[2]int]bool)
	for i, neighbors := range st.neighbors {
		for _, serial := range neighbors {
			j := serial - 1
			if j < 0 || j >= len(st.names) || j == i {
				continue
			}
			key := [2]int{i, j}
			if j < i {
				key = [2]int{j, i}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			_ = out.Topology().AddBond(key[0], key[1], chem.BondUnknown)
		}
	}
	out.Properties().Set("title", chem.NewStringProperty(st.title))
	*frame = *out
}

// ReadStep populates frame with the given step, random access.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, "Tinker XYZ step %d out of range [0,%d)", stepIdx, len(f.steps))
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

// Write appends frame as a Tinker XYZ step.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "Tinker XYZ format does not support write in read mode")
	}
	n := frame.Size()
	title := ""
	if p, ok := frame.Properties().Get("title"); ok {
		title, _ = p.AsString()
	}
	header := strconv.Itoa(n)
	if title != "" {
		header += " " + title
	}
	if err := f.text.WriteLine(header); err != nil {
		return err
	}
	positions := frame.Positions()
	neighbors := make([][]int, n)
	for _, b := range frame.Topology().Bonds() {
		neighbors[b.Begin] = append(neighbors[b.Begin], b.End+1)
		neighbors[b.End] = append(neighbors[b.End], b.Begin+1)
	}
	for i := 0; i < n; i++ {
		a := frame.Topology().Atom(i)
		p := positions[i]
		class := 0
		if prop, ok := a.Properties().Get("tinker_class"); ok {
			if v, err := prop.AsDouble(); err == nil {
				class = int(v)
			}
		}
		line := fmt.Sprintf("%6d  %-3s%12.6f%12.6f%12.6f%6d", i+1, a.Name(), p.X, p.Y, p.Z, class)
		for _, nb := range neighbors[i] {
			line += fmt.Sprintf("%6d", nb)
		}
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
