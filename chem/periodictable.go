// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : periodictable.go
package chem

import "strings"

// ElementData holds the static periodic-table facts looked up from an
// Atom's type string. Values follow the same element ordering as the
// teacher's ELEM_* constant block (molecule/elements.go), but are keyed
// by canonical symbol instead of an integer enum, since chemfiles atom
// types are free-form strings.
type ElementData struct {
	Symbol         string
	FullName       string
	AtomicNumber   int
	Mass           float64 // atomic mass, g/mol
	VdwRadius      float64 // Angstrom
	CovalentRadius float64 // Angstrom
}

// periodicTable is the static element lookup, keyed by canonical symbol
// (first letter upper, remaining letters lower).
var periodicTable = map[string]ElementData{
	"H":  {"H", "Hydrogen", 1, 1.008, 1.20, 0.31},
	"He": {"He", "Helium", 2, 4.0026, 1.40, 0.28},
	"Li": {"Li", "Lithium", 3, 6.94, 1.82, 1.28},
	"Be": {"Be", "Beryllium", 4, 9.0122, 1.53, 0.96},
	"B":  {"B", "Boron", 5, 10.81, 1.92, 0.84},
	"C":  {"C", "Carbon", 6, 12.011, 1.70, 0.76},
	"N":  {"N", "Nitrogen", 7, 14.007, 1.55, 0.71},
	"O":  {"O", "Oxygen", 8, 15.999, 1.52, 0.66},
	"F":  {"F", "Fluorine", 9, 18.998, 1.47, 0.57},
	"Ne": {"Ne", "Neon", 10, 20.180, 1.54, 0.58},
	"Na": {"Na", "Sodium", 11, 22.990, 2.27, 1.66},
	"Mg": {"Mg", "Magnesium", 12, 24.305, 1.73, 1.41},
	"Al": {"Al", "Aluminium", 13, 26.982, 1.84, 1.21},
	"Si": {"Si", "Silicon", 14, 28.085, 2.10, 1.11},
	"P":  {"P", "Phosphorus", 15, 30.974, 1.80, 1.07},
	"S":  {"S", "Sulfur", 16, 32.06, 1.80, 1.05},
	"Cl": {"Cl", "Chlorine", 17, 35.45, 1.75, 1.02},
	"Ar": {"Ar", "Argon", 18, 39.948, 1.88, 1.06},
	"K":  {"K", "Potassium", 19, 39.098, 2.75, 2.03},
	"Ca": {"Ca", "Calcium", 20, 40.078, 2.31, 1.76},
	"Sc": {"Sc", "Scandium", 21, 44.956, 2.11, 1.70},
	"Ti": {"Ti", "Titanium", 22, 47.867, 0, 1.60},
	"V":  {"V", "Vanadium", 23, 50.942, 0, 1.53},
	"Cr": {"Cr", "Chromium", 24, 51.996, 0, 1.39},
	"Mn": {"Mn", "Manganese", 25, 54.938, 0, 1.39},
	"Fe": {"Fe", "Iron", 26, 55.845, 0, 1.32},
	"Co": {"Co", "Cobalt", 27, 58.933, 0, 1.26},
	"Ni": {"Ni", "Nickel", 28, 58.693, 1.63, 1.24},
	"Cu": {"Cu", "Copper", 29, 63.546, 1.40, 1.32},
	"Zn": {"Zn", "Zinc", 30, 65.38, 1.39, 1.22},
	"Ga": {"Ga", "Gallium", 31, 69.723, 1.87, 1.22},
	"Ge": {"Ge", "Germanium", 32, 72.63, 2.11, 1.20},
	"As": {"As", "Arsenic", 33, 74.922, 1.85, 1.19},
	"Se": {"Se", "Selenium", 34, 78.971, 1.90, 1.20},
	"Br": {"Br", "Bromine", 35, 79.904, 1.85, 1.20},
	"Kr": {"Kr", "Krypton", 36, 83.798, 2.02, 1.16},
	"Rb": {"Rb", "Rubidium", 37, 85.468, 3.03, 2.20},
	"Sr": {"Sr", "Strontium", 38, 87.62, 2.49, 1.95},
	"Y":  {"Y", "Yttrium", 39, 88.906, 0, 1.90},
	"Zr": {"Zr", "Zirconium", 40, 91.224, 0, 1.75},
	"Nb": {"Nb", "Niobium", 41, 92.906, 0, 1.64},
	"Mo": {"Mo", "Molybdenum", 42, 95.95, 0, 1.54},
	"Tc": {"Tc", "Technetium", 43, 98.0, 0, 1.47},
	"Ru": {"Ru", "Ruthenium", 44, 101.07, 0, 1.46},
	"Rh": {"Rh", "Rhodium", 45, 102.91, 0, 1.42},
	"Pd": {"Pd", "Palladium", 46, 106.42, 1.63, 1.39},
	"Ag": {"Ag", "Silver", 47, 107.87, 1.72, 1.45},
	"Cd": {"Cd", "Cadmium", 48, 112.41, 1.58, 1.44},
	"In": {"In", "Indium", 49, 114.82, 1.93, 1.42},
	"Sn": {"Sn", "Tin", 50, 118.71, 2.17, 1.39},
	"Sb": {"Sb", "Antimony", 51, 121.76, 2.06, 1.39},
	"Te": {"Te", "Tellurium", 52, 127.60, 2.06, 1.38},
	"I":  {"I", "Iodine", 53, 126.90, 1.98, 1.39},
	"Xe": {"Xe", "Xenon", 54, 131.29, 2.16, 1.40},
	"Cs": {"Cs", "Caesium", 55, 132.91, 3.43, 2.44},
	"Ba": {"Ba", "Barium", 56, 137.33, 2.68, 2.15},
}

// normalizeSymbol applies the canonical casing: first letter uppercase,
// remaining letters lowercase, matching chemical element symbols.
func normalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return symbol
	}
	if len(symbol) == 1 {
		return strings.ToUpper(symbol)
	}
	return strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
}

// LookupElement returns the static periodic-table entry for a type
// string after normalizing it to canonical casing; there is no fallback
// from a two-letter symbol to its first letter. ok is false for unknown
// or non-elemental types (pseudo-atoms, wildcards).
func LookupElement(atomType string) (ElementData, bool) {
	data, ok := periodicTable[normalizeSymbol(atomType)]
	return data, ok
}
