// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : mmtf.go

// Package mmtf implements the MMTF (Macromolecular Transmission
// Format) binary format: a single MessagePack-encoded map whose
// coordinate, B-factor and bond arrays are themselves packed with
// MMTF's own binary codecs (delta + run-length encoding of
// fixed-point integers for coordinates, plain run-length encoding for
// group/chain indirection tables). Encoding/decoding of the outer
// container uses github.com/vmihailenco/msgpack/v5; the inner codecs
// are implemented by hand since no Go MMTF codec library appears in
// the retrieval pack.
package mmtf

import (
	"encoding/binary"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	info := format.Info{
		Name:        "MMTF",
		Extension:   ".mmtf",
		Description: "Macromolecular Transmission Format (binary)",
		Capabilities: format.Capabilities{
			Read: true, Write: true, Memory: true,
			Position: true, Atoms: true, Bonds: true, Residues: true, Cell: true,
		},
	}
	_ = format.Default().Register(info, func(path string, mode iostack.Mode, compression iostack.Compression) (format.Format, error) {
		return Open(path, mode, compression, info)
	})
}

// groupType describes one entry of the MMTF groupList: a residue
// template shared by every group (residue) instance of that type.
type groupType struct {
	GroupName      string   `msgpack:"groupName"`
	AtomNameList   []string `msgpack:"atomNameList"`
	ElementList    []string `msgpack:"elementList"`
	BondAtomList   []int32  `msgpack:"bondAtomList"`
	BondOrderList  []int8   `msgpack:"bondOrderList"`
	SingleLetter   string   `msgpack:"singleLetterCode"`
	ChemCompType   string   `msgpack:"chemCompType"`
}

// wireContainer mirrors the subset of top-level MMTF fields this
// plug-in reads and writes. Coordinate/index arrays that MMTF encodes
// with its binary codecs are carried as raw msgpack bin blobs here and
// decoded/encoded explicitly by decodeInt32Array/encodeDeltaRunLength.
type wireContainer struct {
	MmtfVersion    string      `msgpack:"mmtfVersion"`
	MmtfProducer   string      `msgpack:"mmtfProducer"`
	UnitCell       []float64   `msgpack:"unitCell,omitempty"`
	NumBonds       int32       `msgpack:"numBonds"`
	NumAtoms       int32       `msgpack:"numAtoms"`
	NumGroups      int32       `msgpack:"numGroups"`
	NumChains      int32       `msgpack:"numChains"`
	NumModels      int32       `msgpack:"numModels"`
	GroupList      []groupType `msgpack:"groupList"`
	GroupTypeList  []byte      `msgpack:"groupTypeList"`
	GroupIdList    []byte      `msgpack:"groupIdList"`
	XCoordList     []byte      `msgpack:"xCoordList"`
	YCoordList     []byte      `msgpack:"yCoordList"`
	ZCoordList     []byte      `msgpack:"zCoordList"`
	BondAtomList   []byte      `msgpack:"bondAtomList,omitempty"`
	BondOrderList  []byte      `msgpack:"bondOrderList,omitempty"`
	ChainNameList  []byte      `msgpack:"chainNameList,omitempty"`
	GroupsPerChain []int32     `msgpack:"groupsPerChain,omitempty"`
}

// Format is the MMTF plug-in.
type Format struct {
	info    format.Info
	bin     iostack.BinaryFile
	mode    iostack.Mode
	read    bool
	nframes int
	raw     []byte // whole payload, kept after the first Read
}

// Open opens path in mode and returns a ready MMTF Format.
func Open(path string, mode iostack.Mode, compression iostack.Compression, info format.Info) (*Format, error) {
	bin, err := iostack.OpenBinaryCompressed(path, mode, compression)
	if err != nil {
		return nil, err
	}
	return &Format{info: info, bin: bin, mode: mode, nframes: 1}, nil
}

// Info returns the format's registered metadata.
func (f *Format) Info() format.Info { return f.info }

// NSteps reports one frame: MMTF describes a single structure, not a
// trajectory, like the single-configuration CSSR and LAMMPS Data formats.
func (f *Format) NSteps() (int, error) { return f.nframes, nil }

// ReadStep returns the (only) frame regardless of stepIdx, since MMTF
// carries exactly one structure.
func (f *Format) ReadStep(stepIdx int, frame *chem.Frame) error {
	if stepIdx != 0 {
		return chem.NewError(chem.ErrOutOfBounds, "MMTF format only has a single frame")
	}
	return f.Read(frame)
}

func readAll(bin iostack.BinaryFile) ([]byte, error) {
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := bin.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			return out, nil
		}
	}
}

// decodeInt32Array interprets an MMTF binary-encoded array header
// (4-byte codec id, 4-byte length, 4-byte parameter, all big-endian)
// followed by a payload, and returns the decoded int32 values. It
// supports codec 4 (plain 32-bit big-endian ints, no compression),
// codec 8 (delta + run-length encoded 32-bit ints, used for
// coordinates after fixed-point scaling), and codec 10 (delta +
// recursive-index encoded 16-bit ints, MMTF's usual coordinate codec).
func decodeInt32Array(raw []byte) ([]int32, int32, error) {
	if len(raw) < 12 {
		return nil, 0, chem.NewError(chem.ErrFormat, "truncated MMTF binary array header")
	}
	codec := int32(binary.BigEndian.Uint32(raw[0:4]))
	length := int32(binary.BigEndian.Uint32(raw[4:8]))
	param := int32(binary.BigEndian.Uint32(raw[8:12]))
	payload := raw[12:]

	switch codec {
	case 4: // plain int32 array
		out := make([]int32, length)
		for i := int32(0); i < length; i++ {
			out[i] = int32(binary.BigEndian.Uint32(payload[i*4:]))
		}
		return out, param, nil
	case 8: // delta + run-length encoded int32
		pairs := make([]int32, len(payload)/4)
		for i := range pairs {
			pairs[i] = int32(binary.BigEndian.Uint32(payload[i*4:]))
		}
		return runLengthThenDelta(pairs, length), param, nil
	case 10: // delta + recursive-index encoded int16
		out := make([]int32, 0, length)
		acc := int32(0)
		for i := 0; i+1 < len(payload); i += 2 {
			v := int32(int16(binary.BigEndian.Uint16(payload[i:])))
			acc += v
			if v != 32767 && v != -32768 {
				out = append(out, acc)
				acc = 0
			}
		}
		running := int32(0)
		for i := range out {
			running += out[i]
			out[i] = running
		}
		return out, param, nil
	case 7: // plain run-length encoded int32 (no delta)
		out := make([]int32, 0, length)
		for i := 0; i+1 < len(payload)/4*2; i += 2 {
			value := int32(binary.BigEndian.Uint32(payload[i*4:]))
			count := int32(binary.BigEndian.Uint32(payload[(i+1)*4:]))
			for c := int32(0); c < count; c++ {
				out = append(out, value)
			}
		}
		return out, param, nil
	default:
		return nil, param, chem.NewError(chem.ErrFormat, "unsupported MMTF array codec %d", codec)
	}
}

// runLengthThenDelta expands (value, count) pairs into a run-length
// stream and then undoes the running delta to recover absolute values.
func runLengthThenDelta(pairs []int32, total int32) []int32 {
	out := make([]int32, 0, total)
	for i := 0; i+1 < len(pairs); i += 2 {
		delta := pairs[i]
		count := pairs[i+1]
		for c := int32(0); c < count; c++ {
			out = append(out, delta)
		}
	}
	running := int32(0)
	for i := range out {
		running += out[i]
		out[i] = running
	}
	return out
}

// encodeDeltaRunLength is the inverse of decodeInt32Array's codec-8
// path: it takes absolute fixed-point integers, differences them, and
// run-length-encodes the deltas before writing the MMTF binary header.
func encodeDeltaRunLength(values []int32, param int32) []byte {
	deltas := make([]int32, len(values))
	prev := int32(0)
	for i, v := range values {
		deltas[i] = v - prev
		prev = v
	}
	var pairs []int32
	i := 0
	for i < len(deltas) {
		j := i + 1
		for j < len(deltas) && deltas[j] == deltas[i] {
			j++
		}
		pairs = append(pairs, deltas[i], int32(j-i))
		i = j
	}

	out := make([]byte, 12+4*len(pairs))
	binary.BigEndian.PutUint32(out[0:4], uint32(8))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(values)))
	binary.BigEndian.PutUint32(out[8:12], uint32(param))
	for i, p := range pairs {
		binary.BigEndian.PutUint32(out[12+i*4:], uint32(p))
	}
	return out
}

// Read decodes the entire MMTF structure into frame. Since MMTF holds
// a single structure, every call returns the same content.
func (f *Format) Read(frame *chem.Frame) error {
	if f.raw == nil {
		raw, err := readAll(f.bin)
		if err != nil {
			return chem.WrapError(chem.ErrFile, err, "failed reading MMTF payload")
		}
		f.raw = raw
	}
	var wire wireContainer
	if err := msgpack.Unmarshal(f.raw, &wire); err != nil {
		return chem.WrapError(chem.ErrFormat, err, "malformed MMTF MessagePack payload")
	}

	xs, xParam, err := decodeInt32Array(wire.XCoordList)
	if err != nil {
		return err
	}
	ys, _, err := decodeInt32Array(wire.YCoordList)
	if err != nil {
		return err
	}
	zs, _, err := decodeInt32Array(wire.ZCoordList)
	if err != nil {
		return err
	}
	scale := float64(xParam)
	if scale == 0 {
		scale = 1000.0
	}

	groupTypes, _, err := decodeInt32Array(wire.GroupTypeList)
	if err != nil {
		return err
	}
	groupIds, _, err := decodeInt32Array(wire.GroupIdList)
	if err != nil {
		groupIds = nil
	}

	out := chem.NewFrame()
	atomToResidue := make([]int, 0, len(xs))
	residueIndex := make([]int, len(groupTypes))

	for gi, gt := range groupTypes {
		if int(gt) < 0 || int(gt) >= len(wire.GroupList) {
			return chem.NewError(chem.ErrFormat, "MMTF groupTypeList references unknown group %d", gt)
		}
		tmpl := wire.GroupList[gt]
		res := chem.NewResidue(tmpl.GroupName)
		if gi < len(groupIds) {
			res.SetID(int(groupIds[gi]))
		}
		residueIdx := out.Topology().AddResidue(res)
		residueIndex[gi] = residueIdx
		for range tmpl.AtomNameList {
			atomToResidue = append(atomToResidue, residueIdx)
		}
	}

	atomNameAt := func(i int) (string, string) {
		count := 0
		for gi, gt := range groupTypes {
			tmpl := wire.GroupList[gt]
			if i-count < len(tmpl.AtomNameList) {
				return tmpl.AtomNameList[i-count], tmpl.ElementList[i-count]
			}
			count += len(tmpl.AtomNameList)
			_ = gi
		}
		return "", ""
	}

	for i := range xs {
		name, element := atomNameAt(i)
		atom := chem.NewAtom(name, element)
		pos := chem.Vector3D{X: float64(xs[i]) / scale, Y: float64(ys[i]) / scale, Z: float64(zs[i]) / scale}
		atomIdx := out.AddAtom(atom, pos)
		if atomIdx < len(atomToResidue) {
			res := out.Topology().Residue(atomToResidue[atomIdx])
			if res != nil {
				res.AddAtom(atomIdx)
			}
		}
	}

	if len(wire.BondAtomList) > 0 {
		bonds, _, err := decodeInt32Array(wire.BondAtomList)
		if err == nil {
			for i := 0; i+1 < len(bonds); i += 2 {
				a, b := int(bonds[i]), int(bonds[i+1])
				if a == b || a < 0 || b < 0 || a >= out.Size() || b >= out.Size() {
					continue
				}
				if a > b {
					a, b = b, a
				}
				_ = out.Topology().AddBond(a, b, chem.BondSingle)
			}
		} else {
			chem.Warn("mmtf: failed to decode bondAtomList, skipping inter-group bonds")
		}
	}

	if len(wire.UnitCell) == 6 {
		cell := chem.NewOrthorhombicCell(wire.UnitCell[0], wire.UnitCell[1], wire.UnitCell[2])
		_ = cell.SetAngle(0, wire.UnitCell[3])
		_ = cell.SetAngle(1, wire.UnitCell[4])
		_ = cell.SetAngle(2, wire.UnitCell[5])
		out.SetCell(cell)
	}

	out.Properties().Set("mmtf_producer", chem.NewStringProperty(wire.MmtfProducer))
	out.SetStep(0)
	*frame = *out
	return nil
}

// Write encodes frame as a single-model MMTF structure: every atom
// becomes its own one-atom group, so per-residue chemical-component
// metadata from an original MMTF source is not reconstructed
// (documented simplification, DESIGN.md).
func (f *Format) Write(frame *chem.Frame) error {
	if f.mode == iostack.Read {
		return chem.NewError(chem.ErrFormat, "MMTF format does not support write in read mode")
	}
	n := frame.Size()
	positions := frame.Positions()
	xs := make([]int32, n)
	ys := make([]int32, n)
	zs := make([]int32, n)
	const scale = 1000
	for i, p := range positions {
		xs[i] = int32(p.X * scale)
		ys[i] = int32(p.Y * scale)
		zs[i] = int32(p.Z * scale)
	}

	groupList := make([]groupType, n)
	groupTypes := make([]int32, n)
	for i := 0; i < n; i++ {
		atom := frame.Topology().Atom(i)
		name := ""
		elem := ""
		if atom != nil {
			name = atom.Name()
			elem = atom.Type()
		}
		groupList[i] = groupType{
			GroupName:    "UNK",
			AtomNameList: []string{name},
			ElementList:  []string{elem},
			ChemCompType: "non-polymer",
		}
		groupTypes[i] = int32(i)
	}

	var bondPairs []int32
	for _, b := range frame.Topology().Bonds() {
		bondPairs = append(bondPairs, int32(b.Begin), int32(b.End))
	}

	wire := wireContainer{
		MmtfVersion:   "1.0",
		MmtfProducer:  "chemfiles",
		NumAtoms:      int32(n),
		NumGroups:     int32(n),
		NumChains:     1,
		NumModels:     1,
		GroupList:     groupList,
		GroupTypeList: encodeDeltaRunLength(groupTypes, 0),
		XCoordList:    encodeDeltaRunLength(xs, scale),
		YCoordList:    encodeDeltaRunLength(ys, scale),
		ZCoordList:    encodeDeltaRunLength(zs, scale),
	}
	if len(bondPairs) > 0 {
		wire.BondAtomList = encodeDeltaRunLength(bondPairs, 0)
		wire.NumBonds = int32(len(bondPairs) / 2)
	}
	cell := frame.Cell()
	a, b, c := cell.Lengths()
	alpha, beta, gamma := cell.Angles()
	if a > 0 && b > 0 && c > 0 {
		wire.UnitCell = []float64{a, b, c, alpha, beta, gamma}
	}

	out, err := msgpack.Marshal(&wire)
	if err != nil {
		return chem.WrapError(chem.ErrFormat, err, "failed to encode MMTF MessagePack payload")
	}
	if _, err := f.bin.Write(out); err != nil {
		return chem.WrapError(chem.ErrFile, err, "failed writing MMTF payload")
	}
	return nil
}

// Close closes the underlying binary stream.
func (f *Format) Close() error { return f.bin.Close() }
