// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : format.go
package format

import (
	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/iostack"
)

// Capabilities flags what a format supports, per spec.md §4.2's
// "capability flags (read, write, in-memory)".
type Capabilities struct {
	Read     bool
	Write    bool
	Memory   bool
	Position bool
	Velocity bool
	Cell     bool
	Atoms    bool
	Bonds    bool
	Residues bool
}

// Info is the metadata a format plug-in registers: name, canonical
// extension, human-readable description, capability flags, and an
// optional reference URL (spec.md §4.2).
type Info struct {
	Name        string
	Extension   string
	Description string
	Reference   string
	Capabilities
}

// Format is the per-plug-in contract (spec.md §4.3). Every method may
// return a "format does not support …" Error for an operation the
// underlying container cannot perform; a format must never partially
// mutate the Frame it was given on error.
type Format interface {
	Info() Info
	NSteps() (int, error)
	ReadStep(step int, frame *chem.Frame) error
	Read(frame *chem.Frame) error
	Write(frame *chem.Frame) error
	Close() error
}

// Builder constructs a Format instance bound to an already-opened
// iostack transport, for a given mode. compression is iostack.Auto
// unless the caller's format string named an explicit codec (spec.md
// §4.2's "NAME/COMPRESSION" syntax), in which case the builder must
// honor it instead of sniffing path's own suffix.
type Builder func(path string, mode iostack.Mode, compression iostack.Compression) (Format, error)
