// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : extxyz.go

// Package extxyz implements the Extended XYZ format: a plain XYZ frame
// whose comment line carries key=value metadata, including an optional
// Lattice= matrix and a Properties= schema describing extra per-atom
// columns.
package extxyz

import (
	"math"
	"strconv"
	"strings"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
)

func init() {
	info := format.Info{
		Name:        "EXTXYZ",
		Extension:   ".extxyz",
		Description: "Extended XYZ format with Properties/Lattice metadata",
		Capabilities: format.Capabilities{
			Read: true, Memory: true,
			Position: true, Atoms: true, Cell: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

type column struct {
	name  string
	kind  byte // S, R, L, I
	count int
}

type step struct {
	tokens     map[string]string
	columns    []column
	atomTypes  []string
	positions  []chem.Vector3D
	properties []chem.PropertyMap
	cell       chem.UnitCell
}

// Format is the extended-XYZ plug-in, materializing every step on open
// like its plain-XYZ sibling.
type Format struct {
	info   format.Info
	text   iostack.TextFile
	mode   iostack.Mode
	steps  []step
	cursor int
}

// Open opens path in mode and returns a ready extended-XYZ Format.
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

// tokenizeComment splits a comment line into key=value tokens, honoring
// double-quoted values that may contain spaces.
func tokenizeComment(line string) map[string]string {
	tokens := make(map[string]string)
	var key, value strings.Builder
	inQuotes := false
	inValue := false
	flush := func() {
		if key.Len() > 0 {
			tokens[key.String()] = value.String()
		}
		key.Reset()
		value.Reset()
		inValue = false
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == '=' && !inValue && !inQuotes:
			inValue = true
		case c == ' ' && !inQuotes:
			flush()
		default:
			if inValue {
				value.WriteByte(c)
			} else {
				key.WriteByte(c)
			}
		}
	}
	flush()
	return tokens
}

func parseLattice(s string) (chem.UnitCell, error) {
	fields := strings.Fields(s)
	if len(fields) != 9 {
		return chem.UnitCell{}, chem.NewError(chem.ErrFormat, "Lattice must have 9 components, got %d", len(fields))
	}
	m := make([]float64, 9)
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return chem.UnitCell{}, chem.WrapError(chem.ErrFormat, err, "invalid Lattice component %q", field)
		}
		m[i] = v
	}
	row := func(i int) (float64, float64, float64) { return m[3*i], m[3*i+1], m[3*i+2] }
	norm := func(x, y, z float64) float64 { return math.Sqrt(x*x + y*y + z*z) }
	dot := func(x1, y1, z1, x2, y2, z2 float64) float64 { return x1*x2 + y1*y2 + z1*z2 }
	angle := func(l1, l2 [3]float64) float64 {
		cos := dot(l1[0], l1[1], l1[2], l2[0], l2[1], l2[2]) / (norm(l1[0], l1[1], l1[2]) * norm(l2[0], l2[1], l2[2]))
		cos = math.Max(-1, math.Min(1, cos))
		return math.Acos(cos) * 180 / math.Pi
	}
	ax, ay, az := row(0)
	bx, by, bz := row(1)
	cx, cy, cz := row(2)
	a := norm(ax, ay, az)
	b := norm(bx, by, bz)
	c := norm(cx, cy, cz)
	alpha := angle([3]float64{bx, by, bz}, [3]float64{cx, cy, cz})
	beta := angle([3]float64{ax, ay, az}, [3]float64{cx, cy, cz})
	gamma := angle([3]float64{ax, ay, az}, [3]float64{bx, by, bz})
	if math.Abs(alpha-90) < 1e-6 && math.Abs(beta-90) < 1e-6 && math.Abs(gamma-90) < 1e-6 {
		return chem.NewOrthorhombicCell(a, b, c), nil
	}
	return chem.NewTriclinicCell(a, b, c, alpha, beta, gamma), nil
}

// parseProperties parses the Properties= schema into a column list. On
// error it logs a warning and returns nil, per spec.md §4.3's "invalid
// Properties strings are logged via the warning callback and the frame
// still parses (positions only)".
func parseProperties(s string) []column {
	parts := strings.Split(s, ":")
	if len(parts)%3 != 0 {
		chem.Warn("invalid Properties schema %q: field count not a multiple of 3", s)
		return nil
	}
	cols := make([]column, 0, len(parts)/3)
	for i := 0; i+2 < len(parts); i += 3 {
		name := parts[i]
		kind := parts[i+1]
		if len(kind) != 1 || !strings.ContainsRune("SRLI", rune(kind[0])) {
			chem.Warn("invalid Properties column kind %q for field %q", kind, name)
			return nil
		}
		n, err := strconv.Atoi(parts[i+2])
		if err != nil || n < 1 {
			chem.Warn("invalid Properties column count %q for field %q", parts[i+2], name)
			return nil
		}
		cols = append(cols, column{name: name, kind: kind[0], count: n})
	}
	return cols
}

func parseBool(s string) (bool, error) {
	switch s {
	case "T", "true", "TRUE":
		return true, nil
	case "F", "false", "FALSE":
		return false, nil
	default:
		return false, chem.NewError(chem.ErrFormat, "invalid extended-XYZ boolean %q", s)
	}
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
			return chem.WrapError(chem.ErrFormat, err, "invalid extended-XYZ atom count %q", countLine)
		}
		commentLine, err := f.text.ReadLine()
		if err != nil {
			return chem.WrapError(chem.ErrFormat, err, "truncated extended-XYZ file: missing comment line")
		}
		tokens := tokenizeComment(commentLine)

		cell := chem.NewInfiniteCell()
		if latt, ok := tokens["Lattice"]; ok {
			if parsed, err := parseLattice(latt); err != nil {
				chem.Warn("invalid Lattice: %s", err)
			} else {
				cell = parsed
			}
		}

		var cols []column
		if props, ok := tokens["Properties"]; ok {
			cols = parseProperties(props)
		}
		if cols == nil {
			cols = []column{{name: "species", kind: 'S', count: 1}, {name: "pos", kind: 'R', count: 3}}
		}

		st := step{tokens: tokens, columns: cols, cell: cell}
		for i := 0; i < n; i++ {
			line, err := f.text.ReadLine()
			if err != nil {
				return chem.WrapError(chem.ErrFormat, err, "truncated extended-XYZ file: expected %d atom lines, got %d", n, i)
			}
			fields := strings.Fields(line)
			atomType := ""
			pos := chem.Vector3D{}
			props := chem.NewPropertyMap()
			fi := 0
			for _, col := range cols {
				if fi+col.count > len(fields) {
					chem.Warn("extended-XYZ line %q shorter than its Properties schema", line)
					break
				}
				switch col.name {
				case "species":
					atomType = fields[fi]
				case "pos":
					x, _ := strconv.ParseFloat(fields[fi], 64)
					y, _ := strconv.ParseFloat(fields[fi+1], 64)
					z, _ := strconv.ParseFloat(fields[fi+2], 64)
					pos = chem.Vector3D{X: x, Y: y, Z: z}
				default:
					switch col.kind {
					case 'S':
						props.Set(col.name, chem.NewStringProperty(fields[fi]))
					case 'R':
						v, _ := strconv.ParseFloat(fields[fi], 64)
						props.Set(col.name, chem.NewDoubleProperty(v))
					case 'I':
						v, _ := strconv.ParseFloat(fields[fi], 64)
						props.Set(col.name, chem.NewDoubleProperty(v))
					case 'L':
						v, err := parseBool(fields[fi])
						if err == nil {
							props.Set(col.name, chem.NewBoolProperty(v))
						}
					}
				}
				fi += col.count
			}
			st.atomTypes = append(st.atomTypes, atomType)
			st.positions = append(st.positions, pos)
			st.properties = append(st.properties, props)
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
		a := chem.NewAtom("", t)
		*a.Properties() = st.properties[i]
		out.AddAtom(a, st.positions[i])
	}
	out.SetCell(st.cell)
	*frame = *out
}

// ReadStep populates frame with the given step, random access.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx < 0 || stepIdx >= len(f.steps) {
		return chem.NewError(chem.ErrOutOfBounds, "extended-XYZ step %d out of range [0,%d)", stepIdx, len(f.steps))
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

// Write is not implemented for extended XYZ: this plug-in is currently
// read-only, matching its Capabilities.
func (f *Format) Write(frame *chem.Frame) error {
	return chem.NewError(chem.ErrFormat, "extended-XYZ format does not support write")
}

// Close closes the underlying text stream.
func (f *Format) Close() error { return f.text.Close() }
