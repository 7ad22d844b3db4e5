// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : frame.go
package chem

// Frame is a single snapshot along a trajectory: a step index, a
// position array, an optional velocity array of the same length, a
// topology, a unit cell, and a property map. Invariants (spec.md §3):
// positions.size == topology.size, and velocities.size == positions.size
// whenever velocities are present.
type Frame struct {
	step       int
	positions  []Vector3D
	velocities []Vector3D
	hasVelo    bool
	topology   *Topology
	cell       UnitCell
	properties PropertyMap
}

// NewFrame returns an empty frame at step 0 with an infinite cell.
func NewFrame() *Frame {
	return &Frame{
		topology:   NewTopology(),
		cell:       NewInfiniteCell(),
		properties: NewPropertyMap(),
	}
}

// Step returns the frame's step index.
func (f *Frame) Step() int { return f.step }

// SetStep sets the frame's step index. Steps are independently
// settable; the trajectory engine, not Frame, enforces monotonicity
// across reads.
func (f *Frame) SetStep(step int) { f.step = step }

// Size returns the number of atoms (== len(Positions())).
func (f *Frame) Size() int { return len(f.positions) }

// Positions returns the frame's position array.
func (f *Frame) Positions() []Vector3D { return f.positions }

// HasVelocities reports whether a velocity array is present.
func (f *Frame) HasVelocities() bool { return f.hasVelo }

// Velocities returns the frame's velocity array, or nil if absent.
func (f *Frame) Velocities() []Vector3D {
	if !f.hasVelo {
		return nil
	}
	return f.velocities
}

// AddVelocities allocates a zeroed velocity array matching the current
// position count, enabling HasVelocities.
func (f *Frame) AddVelocities() {
	if f.hasVelo {
		return
	}
	f.velocities = make([]Vector3D, len(f.positions))
	f.hasVelo = true
}

// Topology returns the frame's topology.
func (f *Frame) Topology() *Topology { return f.topology }

// SetTopology replaces the frame's topology outright. Callers are
// responsible for keeping Size() == topology.Size(); AddAtom/Remove
// keep it consistent incrementally.
func (f *Frame) SetTopology(t *Topology) { f.topology = t }

// Cell returns the frame's unit cell.
func (f *Frame) Cell() UnitCell { return f.cell }

// SetCell replaces the frame's unit cell.
func (f *Frame) SetCell(c UnitCell) { f.cell = c }

// Properties returns the frame's property map for read/write access.
func (f *Frame) Properties() *PropertyMap { return &f.properties }

// AddAtom appends a position (and a zero velocity, if velocities are
// present) together with a topology atom, keeping the three arrays in
// lock-step as spec.md §3 requires.
func (f *Frame) AddAtom(a Atom, position Vector3D) int {
	f.positions = append(f.positions, position)
	if f.hasVelo {
		f.velocities = append(f.velocities, Vector3D{})
	}
	return f.topology.AddAtom(a)
}

// AddAtomWithVelocity is AddAtom plus an explicit velocity; it also
// enables HasVelocities() if it was not already on.
func (f *Frame) AddAtomWithVelocity(a Atom, position, velocity Vector3D) int {
	if !f.hasVelo {
		f.AddVelocities()
	}
	idx := f.AddAtom(a, position)
	f.velocities[idx] = velocity
	return idx
}

// RemoveAtom removes atom i from positions, velocities, and topology
// consistently.
func (f *Frame) RemoveAtom(i int) error {
	if i < 0 || i >= len(f.positions) {
		return NewError(ErrOutOfBounds, "atom index %d out of range [0,%d)", i, len(f.positions))
	}
	f.positions = append(f.positions[:i], f.positions[i+1:]...)
	if f.hasVelo {
		f.velocities = append(f.velocities[:i], f.velocities[i+1:]...)
	}
	return f.topology.RemoveAtom(i)
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		step:       f.step,
		positions:  append([]Vector3D(nil), f.positions...),
		hasVelo:    f.hasVelo,
		topology:   f.topology.Clone(),
		cell:       f.cell,
		properties: f.properties.Clone(),
	}
	if f.hasVelo {
		out.velocities = append([]Vector3D(nil), f.velocities...)
	}
	return out
}

// CheckInvariants validates the structural invariants of spec.md §3 and
// §8, returning an Error describing the first violation found.
func (f *Frame) CheckInvariants() error {
	if len(f.positions) != f.topology.Size() {
		return NewError(ErrGeneric, "frame invariant violated: %d positions but %d topology atoms", len(f.positions), f.topology.Size())
	}
	if f.hasVelo && len(f.velocities) != len(f.positions) {
		return NewError(ErrGeneric, "frame invariant violated: %d velocities but %d positions", len(f.velocities), len(f.positions))
	}
	for _, b := range f.topology.Bonds() {
		if !(b.Begin < b.End && b.End < f.topology.Size()) {
			return NewError(ErrGeneric, "frame invariant violated: bond (%d,%d) not canonical for %d atoms", b.Begin, b.End, f.topology.Size())
		}
	}
	return nil
}
