// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : atom.go
package chem

// Atom holds a free-form name, an element-like type symbol, and
// optional overrides for the values the periodic table would otherwise
// provide. Atoms do not store their position: positions live in the
// owning Frame so that per-frame coordinate arrays stay contiguous.
type Atom struct {
	name       string
	atomType   string
	mass       float64
	massSet    bool
	charge     float64
	properties PropertyMap
}

// NewAtom creates an atom with the given name and type. The type is
// also used as the name when name is empty, matching the convention
// most formats follow (name defaults from the element symbol).
func NewAtom(name, atomType string) Atom {
	if name == "" {
		name = atomType
	}
	return Atom{name: name, atomType: atomType, properties: NewPropertyMap()}
}

// Name returns the atom's free-form name.
func (a *Atom) Name() string { return a.name }

// SetName sets the atom's free-form name.
func (a *Atom) SetName(name string) { a.name = name }

// Type returns the atom's element-like type symbol.
func (a *Atom) Type() string { return a.atomType }

// SetType sets the atom's type symbol.
func (a *Atom) SetType(t string) { a.atomType = t }

// Charge returns the atom's formal charge (default 0).
func (a *Atom) Charge() float64 { return a.charge }

// SetCharge sets the atom's formal charge.
func (a *Atom) SetCharge(c float64) { a.charge = c }

// Mass returns the atom's mass: an explicit override if SetMass was
// called, otherwise the periodic-table value for Type(), otherwise 0.
func (a *Atom) Mass() float64 {
	if a.massSet {
		return a.mass
	}
	if data, ok := LookupElement(a.atomType); ok {
		return data.Mass
	}
	return 0
}

// SetMass overrides the periodic-table mass for this atom.
func (a *Atom) SetMass(mass float64) {
	a.mass = mass
	a.massSet = true
}

// FullName returns the periodic-table full element name for Type(), or
// empty if the type is not a recognized element.
func (a *Atom) FullName() string {
	if data, ok := LookupElement(a.atomType); ok {
		return data.FullName
	}
	return ""
}

// VdwRadius returns the periodic-table Van der Waals radius for Type(),
// or 0 if unknown.
func (a *Atom) VdwRadius() float64 {
	if data, ok := LookupElement(a.atomType); ok {
		return data.VdwRadius
	}
	return 0
}

// CovalentRadius returns the periodic-table covalent radius for Type(),
// or 0 if unknown.
func (a *Atom) CovalentRadius() float64 {
	if data, ok := LookupElement(a.atomType); ok {
		return data.CovalentRadius
	}
	return 0
}

// AtomicNumber returns the periodic-table atomic number for Type(), or
// 0 if unknown.
func (a *Atom) AtomicNumber() int {
	if data, ok := LookupElement(a.atomType); ok {
		return data.AtomicNumber
	}
	return 0
}

// Properties returns the atom's property map for read/write access.
func (a *Atom) Properties() *PropertyMap { return &a.properties }

// Clone returns a deep copy of the atom.
func (a Atom) Clone() Atom {
	a.properties = a.properties.Clone()
	return a
}
