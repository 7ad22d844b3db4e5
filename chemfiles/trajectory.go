// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : trajectory.go

// Package chemfiles is the public entry point: it ties the registry of
// format plug-ins (package format) to a stateful Trajectory handle, the
// way src/molecule.go's loader/saver pair ties a concrete parser to a
// single in-memory Molecule in the teacher repo. Every format plug-in
// under format/formats is imported here for its registration side
// effect only; see formats_register.go.
package chemfiles

import (
	"os"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/format"
	"github.com/cx-luo/chemfiles/iostack"
)

// Trajectory is a stateful handle over one format plug-in instance, per
// spec.md §4.4: it tracks the open mode, the underlying plug-in, the
// sequential read cursor, a cached step count, and optional user
// overrides for topology and unit cell that get stamped onto every
// frame subsequently read or written.
type Trajectory struct {
	path   string
	mode   iostack.Mode
	plugin format.Format

	current int
	nsteps  int
	nstepsValid bool
	// seeked is set once ReadStep has moved current away from the
	// plug-in's own sequential cursor, so Read must address steps by
	// index from then on.
	seeked bool

	topologyOverride *chem.Topology
	cellOverride     *chem.UnitCell

	closed bool

	memBuf    *iostack.MemoryBuffer
	tempPath  string
	isMemory  bool
}

// Open resolves formatHint (an empty string triggers extension-based
// dispatch, per format.Open / spec.md §4.2) against the process-wide
// registry and returns a ready Trajectory over path.
func Open(path string, mode iostack.Mode, formatHint string) (*Trajectory, error) {
	currentLogger().Debugw("opening trajectory", "path", path, "mode", mode, "formatHint", formatHint)
	plugin, err := format.Open(format.Default(), path, mode, formatHint)
	if err != nil {
		currentLogger().Debugw("trajectory open failed", "path", path, "error", err)
		return nil, err
	}
	return &Trajectory{path: path, mode: mode, plugin: plugin}, nil
}

// OpenMemory opens a memory-backed trajectory for writing. Format
// plug-ins are path-addressed (every Builder takes a path string, not
// an iostack.MemoryBuffer), so this composes a real temporary file as
// the transport and copies its bytes into an in-memory buffer on
// Close; MemoryBuffer is only valid after Close returns. This is a
// documented simplification (see DESIGN.md) rather than threading a
// memory transport through all eighteen format Builders.
func OpenMemory(formatHint string) (*Trajectory, error) {
	tmp, err := os.CreateTemp("", "chemfiles-memory-*")
	if err != nil {
		return nil, chem.WrapError(chem.ErrMemory, err, "failed to allocate memory-backed transport")
	}
	tempPath := tmp.Name()
	tmp.Close()

	plugin, err := format.Open(format.Default(), tempPath, iostack.Write, formatHint)
	if err != nil {
		os.Remove(tempPath)
		return nil, err
	}
	return &Trajectory{
		path:     tempPath,
		mode:     iostack.Write,
		plugin:   plugin,
		isMemory: true,
		tempPath: tempPath,
	}, nil
}

func (t *Trajectory) ensureOpen() error {
	if t.closed {
		return chem.NewError(chem.ErrFile, "operation on a closed trajectory")
	}
	return nil
}

func (t *Trajectory) nstepsOrFetch() (int, error) {
	if t.nstepsValid {
		return t.nsteps, nil
	}
	n, err := t.plugin.NSteps()
	if err != nil {
		return 0, err
	}
	t.nsteps = n
	t.nstepsValid = true
	return n, nil
}

func (t *Trajectory) applyOverrides(frame *chem.Frame) error {
	if t.topologyOverride != nil {
		if t.topologyOverride.Size() != frame.Size() {
			return chem.NewError(chem.ErrGeneric,
				"topology override has %d atoms, frame has %d", t.topologyOverride.Size(), frame.Size())
		}
		frame.SetTopology(t.topologyOverride)
	}
	if t.cellOverride != nil {
		frame.SetCell(*t.cellOverride)
	}
	return nil
}

// Read advances the sequential cursor and decodes the next frame. It
// fails once the cursor reaches the step count (spec.md §4.4: "at-EOF
// fails").
func (t *Trajectory) Read(frame *chem.Frame) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	n, err := t.nstepsOrFetch()
	if err != nil {
		return err
	}
	if t.current >= n {
		return chem.NewError(chem.ErrFile, "attempt to read past the last step (%d/%d)", t.current, n)
	}
	if t.seeked {
		err = t.plugin.ReadStep(t.current, frame)
	} else {
		err = t.plugin.Read(frame)
	}
	if err != nil {
		return err
	}
	t.current++
	applyConfiguration(frame)
	if err := t.applyOverrides(frame); err != nil {
		return err
	}
	return nil
}

// ReadStep performs random access to step i. It does not otherwise
// disturb the sequential cursor's bookkeeping: per spec.md §4.4 and the
// Open Question pinned in DESIGN.md, a subsequent call to Read resumes
// from step i+1.
func (t *Trajectory) ReadStep(i int, frame *chem.Frame) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	n, err := t.nstepsOrFetch()
	if err != nil {
		return err
	}
	if i < 0 || i >= n {
		return chem.NewError(chem.ErrOutOfBounds, "step %d out of range [0, %d)", i, n)
	}
	if err := t.plugin.ReadStep(i, frame); err != nil {
		return err
	}
	t.current = i + 1
	t.seeked = true
	applyConfiguration(frame)
	if err := t.applyOverrides(frame); err != nil {
		return err
	}
	return nil
}

// Write encodes frame after applying any topology/cell override.
func (t *Trajectory) Write(frame *chem.Frame) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if err := t.applyOverrides(frame); err != nil {
		return err
	}
	if err := t.plugin.Write(frame); err != nil {
		return err
	}
	t.current++
	t.nstepsValid = false
	return nil
}

// SetTopology installs a topology override applied to every frame
// subsequently read or written. The override's atom count must match
// every frame it is applied to; a mismatch surfaces as an error from
// Read/ReadStep/Write rather than from SetTopology itself, since the
// override can be installed before any frame has been seen.
func (t *Trajectory) SetTopology(topology *chem.Topology) {
	t.topologyOverride = topology
}

// SetTopologyFromFile loads a topology from path (dispatched through
// the same format registry as Open) and installs it as the override,
// per spec.md §4.4's second SetTopology overload.
func (t *Trajectory) SetTopologyFromFile(path, formatHint string) error {
	plugin, err := format.Open(format.Default(), path, iostack.Read, formatHint)
	if err != nil {
		return err
	}
	defer plugin.Close()

	var frame chem.Frame
	if err := plugin.Read(&frame); err != nil {
		return chem.WrapError(chem.ErrFormat, err, "failed to read topology from %q", path)
	}
	t.topologyOverride = frame.Topology()
	return nil
}

// SetCell installs a unit-cell override applied to every frame
// subsequently read or written.
func (t *Trajectory) SetCell(cell chem.UnitCell) {
	t.cellOverride = &cell
}

// Done reports whether the sequential cursor has reached the step
// count; it never advances or fetches data.
func (t *Trajectory) Done() (bool, error) {
	if err := t.ensureOpen(); err != nil {
		return false, err
	}
	n, err := t.nstepsOrFetch()
	if err != nil {
		return false, err
	}
	return t.current >= n, nil
}

// NSteps returns the (cached) step count.
func (t *Trajectory) NSteps() (int, error) {
	if err := t.ensureOpen(); err != nil {
		return 0, err
	}
	return t.nstepsOrFetch()
}

// Close is idempotent: a second call is a no-op, and every operation
// after the first Close fails with a FileError (spec.md §4.4).
func (t *Trajectory) Close() error {
	if t.closed {
		return nil
	}
	currentLogger().Debugw("closing trajectory", "path", t.path)
	t.closed = true
	err := t.plugin.Close()
	if t.isMemory {
		data, readErr := os.ReadFile(t.tempPath)
		os.Remove(t.tempPath)
		if err == nil {
			err = readErr
		}
		t.memBuf = iostack.NewMemoryBufferFromBytes(data)
	}
	return err
}

// MemoryBuffer returns the accumulated bytes of a memory-backed writer
// trajectory. It is only valid after Close has returned successfully on
// a Trajectory created with OpenMemory.
func (t *Trajectory) MemoryBuffer() ([]byte, error) {
	if !t.isMemory {
		return nil, chem.NewError(chem.ErrMemory, "MemoryBuffer called on a non-memory-backed trajectory")
	}
	if !t.closed {
		return nil, chem.NewError(chem.ErrMemory, "MemoryBuffer called before Close")
	}
	return t.memBuf.Bytes(), nil
}
