// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : property.go
package chem

import "fmt"

// PropertyKind tags the variant held by a Property.
type PropertyKind int

const (
	PropertyBool PropertyKind = iota
	PropertyDouble
	PropertyString
	PropertyVector3D
)

// Vector3D is a plain 3-component vector, used for positions, velocities
// and vector-valued properties.
type Vector3D struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of v and o.
func (v Vector3D) Add(o Vector3D) Vector3D {
	return Vector3D{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the component-wise difference v - o.
func (v Vector3D) Sub(o Vector3D) Vector3D {
	return Vector3D{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{v.X * s, v.Y * s, v.Z * s}
}

// Property is a tagged value: bool, double, string, or 3-vector.
// Equality is per-variant: two properties of different kinds are never
// equal, even if their zero values coincide.
type Property struct {
	kind PropertyKind
	b    bool
	d    float64
	s    string
	v    Vector3D
}

// NewBoolProperty builds a bool-valued Property.
func NewBoolProperty(v bool) Property { return Property{kind: PropertyBool, b: v} }

// NewDoubleProperty builds a double-valued Property.
func NewDoubleProperty(v float64) Property { return Property{kind: PropertyDouble, d: v} }

// NewStringProperty builds a string-valued Property.
func NewStringProperty(v string) Property { return Property{kind: PropertyString, s: v} }

// NewVector3DProperty builds a 3-vector-valued Property.
func NewVector3DProperty(v Vector3D) Property { return Property{kind: PropertyVector3D, v: v} }

// Kind returns which variant this Property holds.
func (p Property) Kind() PropertyKind { return p.kind }

// AsBool returns the bool value, or a PropertyError if p is not bool-typed.
func (p Property) AsBool() (bool, error) {
	if p.kind != PropertyBool {
		return false, NewError(ErrProperty, "property is not a bool, got %v", p.kind)
	}
	return p.b, nil
}

// AsDouble returns the double value, or a PropertyError if p is not
// double-typed.
func (p Property) AsDouble() (float64, error) {
	if p.kind != PropertyDouble {
		return 0, NewError(ErrProperty, "property is not a double, got %v", p.kind)
	}
	return p.d, nil
}

// AsString returns the string value, or a PropertyError if p is not
// string-typed.
func (p Property) AsString() (string, error) {
	if p.kind != PropertyString {
		return "", NewError(ErrProperty, "property is not a string, got %v", p.kind)
	}
	return p.s, nil
}

// AsVector3D returns the vector value, or a PropertyError if p is not
// vector-typed.
func (p Property) AsVector3D() (Vector3D, error) {
	if p.kind != PropertyVector3D {
		return Vector3D{}, NewError(ErrProperty, "property is not a vector3d, got %v", p.kind)
	}
	return p.v, nil
}

// Equal reports whether p and o hold the same variant and value.
func (p Property) Equal(o Property) bool {
	if p.kind != o.kind {
		return false
	}
	switch p.kind {
	case PropertyBool:
		return p.b == o.b
	case PropertyDouble:
		return p.d == o.d
	case PropertyString:
		return p.s == o.s
	case PropertyVector3D:
		return p.v == o.v
	default:
		return false
	}
}

func (p Property) String() string {
	switch p.kind {
	case PropertyBool:
		return fmt.Sprintf("%t", p.b)
	case PropertyDouble:
		return fmt.Sprintf("%g", p.d)
	case PropertyString:
		return p.s
	case PropertyVector3D:
		return fmt.Sprintf("(%g, %g, %g)", p.v.X, p.v.Y, p.v.Z)
	default:
		return "<invalid property>"
	}
}

// PropertyMap is a name -> Property mapping used on Atom, Residue and
// Frame.
type PropertyMap struct {
	values map[string]Property
}

// NewPropertyMap returns an empty PropertyMap.
func NewPropertyMap() PropertyMap {
	return PropertyMap{values: make(map[string]Property)}
}

// Set stores a property under name, overwriting any previous value.
func (m *PropertyMap) Set(name string, p Property) {
	if m.values == nil {
		m.values = make(map[string]Property)
	}
	m.values[name] = p
}

// Get looks up name, returning (value, true) if present.
func (m PropertyMap) Get(name string) (Property, bool) {
	p, ok := m.values[name]
	return p, ok
}

// Delete removes name from the map, if present.
func (m *PropertyMap) Delete(name string) {
	delete(m.values, name)
}

// Len returns the number of stored properties.
func (m PropertyMap) Len() int { return len(m.values) }

// Names returns the stored property names in unspecified order.
func (m PropertyMap) Names() []string {
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	return names
}

// Clone returns a deep copy of the map.
func (m PropertyMap) Clone() PropertyMap {
	out := NewPropertyMap()
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}
