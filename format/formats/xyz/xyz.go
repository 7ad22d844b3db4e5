// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : xyz.go

// Package xyz implements the plain XYZ format: a two-line header (atom
// count, free-form comment) followed by one "type x y z" line per atom,
// repeated once per frame.
package xyz

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
		Name:        "XYZ",
		Extension:   ".xyz",
		Description: "XYZ plain coordinate format",
		Capabilities: format.Capabilities{
			Read: true, Write: true, Memory: true,
			Position: true, Atoms: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

type step struct {
	comment   string
	atomTypes []string
	positions []chem.Vector3D
}

// Format is the XYZ plug-in: it materializes every step on open because
// the format carries no seekable step index of its own (spec.md §4.3's
// "compressed files fall back to a one-pass index built on open").
type Format struct {
	info   format.Info
	text   iostack.TextFile
	mode   iostack.Mode
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready XYZ Format.
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
		countLine, err := f.text.ReadLine()
		if err != nil {
			break
		}
		countLine = strings.TrimSpace(countLine)
		if countLine == "" {
			continue
		}
		n, err := strconv.Atoi(countLine)
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "invalid XYZ atom count %q", countLine)
		}
		comment, err := f.text.ReadLine()
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated XYZ file: missing comment line")
		}
		st := step{comment: comment, atomTypes: make([]string, 0, n), positions: make([]chem.Vector3D, 0, n)}
		for i := 0; i < n; i++ {
			line, err := f.text.ReadLine()
			if err != nil {
				return chem.WrapError(chem.ErrFormat, err, "truncated XYZ file: expected %d atom lines, got %d", n, i)
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return chem.NewError(chem.ErrFormat, "malformed XYZ atom line: %q", line)
			}
			x, errx := strconv.ParseFloat(fields[1], 64)
			y, erry := strconv.ParseFloat(fields[2], 64)
			z, errz := strconv.ParseFloat(fields[3], 64)
			if errx != nil || erry != nil || errz != nil {
				return chem.NewError(chem.ErrFormat, "malformed XYZ coordinates: %q", line)
			}
			st.atomTypes = append(st.atomTypes, fields[0])
			st.positions = append(st.positions, chem.Vector3D{X: x, Y: y, Z: z})
		}
		f.steps = append(f.steps, st)
	}
	return nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps returns the number of frames found in the file.
func (f *Format) NSteps() (int, error) { return len(f.steps), nil }

func populateFrame(frame *chem.Frame, st step) {
	out := chem.NewFrame()
	for i, t := range st.atomTypes {
		out.AddAtom(chem.NewAtom("", t), st.positions[i])
	}
	out.Properties().Set("comment", chem.NewStringProperty(st.comment))
	*frame = *out
}

// ReadStep populates frame with the given step, random access.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, "XYZ step %d out of range [0,%d)", stepIdx, len(f.steps))
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

// Write appends frame as a new XYZ step.
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "XYZ format does not support write in read mode")
	}
	n := frame.Size()
	if err := f.text.WriteLine(strconv.Itoa(n)); err != nil {
		return err
	}
	comment := ""
	if p, ok := frame.Properties().Get("comment"); ok {
		comment, _ = p.AsString()
	}
	if err := f.text.WriteLine(comment); err != nil {
		return err
	}
	positions := frame.Positions()
	for i := 0; i < n; i++ {
		a := frame.Topology().Atom(i)
		p := positions[i]
		line := fmt.Sprintf("%-3s %.8f %.8f %.8f", a.Type(), p.X, p.Y, p.Z)
		if err := f.text.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
