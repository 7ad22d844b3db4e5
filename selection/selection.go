// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : selection.go
package selection

import (
	"fmt"
	"strings"

	"github.com/cx-luo/chemfiles/chem"
)

// Context tags which generator and arity a Selection evaluates with,
// per spec.md §4.5.3.
type Context int

const (
	ContextAtoms Context = iota
	ContextPairs
	ContextThree
	ContextFour
	ContextBonds
	ContextAngles
	ContextDihedrals
)

var contextNames = map[string]Context{
	"atoms": ContextAtoms, "one": ContextAtoms,
	"pairs": ContextPairs, "two": ContextPairs,
	"three": ContextThree,
	"four":  ContextFour,
	"bonds": ContextBonds, "angles": ContextAngles, "dihedrals": ContextDihedrals,
}

var contextArity = map[Context]int{
	ContextAtoms: 1, ContextPairs: 2, ContextThree: 3, ContextFour: 4,
	ContextBonds: 2, ContextAngles: 3, ContextDihedrals: 4,
}

// contextCanonical names each Context for Print, one name per context
// even though contextNames accepts aliases ("one"/"atoms") on parse.
var contextCanonical = map[Context]string{
	ContextAtoms: "atoms", ContextPairs: "pairs", ContextThree: "three",
	ContextFour: "four", ContextBonds: "bonds", ContextAngles: "angles",
	ContextDihedrals: "dihedrals",
}

// Selection is a parsed, ready-to-evaluate selection string: a context
// (determining arity and the candidate-tuple generator) plus a root
// boolean AST.
type Selection struct {
	context Context
	arity   int
	root    BoolNode
	raw     string
}

// Parse lexes and parses query, per spec.md §4.5: an optional
// "<context>:" prefix followed by a boolean expression. Parsing
// validates every #N reference against the context's arity.
func Parse(query string) (*Selection, error) {
	context := ContextAtoms
	rest := query
	if idx := strings.IndexByte(query, ':'); idx >= 0 {
		candidate := strings.TrimSpace(query[:idx])
		if c, ok := contextNames[candidate]; ok {
			context = c
			rest = query[idx+1:]
		}
	}

	arity := contextArity[context]
	tokens, err := NewLexer(rest).Tokenize()
	if err != nil {
		return nil, err
	}
	parser := NewParser(tokens, arity)
	root, err := parser.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !parser.at(TokEOF) {
		return nil, chem.NewError(chem.ErrSelection, "unexpected trailing input at offset %d: %q", parser.peek().Offset, parser.peek().Text)
	}
	return &Selection{context: context, arity: arity, root: root.Optimize(), raw: query}, nil
}

// String returns the original selection text.
func (s *Selection) String() string { return s.raw }

// Print renders the parsed AST back to flat, reparseable
// selection-language text, per spec.md §4.5's round-trip requirement:
// Parse(s.Print()).Print() == s.Print(). Unlike String, which echoes
// the original query verbatim, Print always reflects the tree that was
// actually built (e.g. after Optimize folds constant subexpressions).
func (s *Selection) Print() string {
	if s.context == ContextAtoms {
		return s.root.Print(0)
	}
	return fmt.Sprintf("%s: %s", contextCanonical[s.context], s.root.Print(0))
}

// Evaluate runs the selection against frame, returning every matching
// tuple per spec.md §4.5.7's per-context generator and ordering rules.
// The root AST's Clear() is invoked first so sub-selection caches from
// a previous frame are dropped.
func (s *Selection) Evaluate(frame *chem.Frame) ([]chem.Match, error) {
	s.root.Clear()

	switch s.context {
	case ContextBonds, ContextAngles, ContextDihedrals:
		return s.evaluateOrderedPairs(frame)
	default:
		var out []chem.Match
		for _, candidate := range s.candidates(frame) {
			ok, err := s.root.IsMatch(evalContext{frame: frame, match: candidate})
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, candidate)
			}
		}
		return out, nil
	}
}

// evaluateOrderedPairs implements spec.md §4.5.7's "try forward, then
// reverse only if forward did not match, at most one match per stored
// item" rule for the bonds/angles/dihedrals contexts.
func (s *Selection) evaluateOrderedPairs(frame *chem.Frame) ([]chem.Match, error) {
	topology := frame.Topology()
	var forwardReverse [][2]chem.Match
	switch s.context {
	case ContextBonds:
		for _, b := range topology.Bonds() {
			forwardReverse = append(forwardReverse, [2]chem.Match{
				chem.NewMatch(b.Begin, b.End), chem.NewMatch(b.End, b.Begin),
			})
		}
	case ContextAngles:
		for _, a := range topology.Angles() {
			forwardReverse = append(forwardReverse, [2]chem.Match{
				chem.NewMatch(a.I, a.J, a.K), chem.NewMatch(a.K, a.J, a.I),
			})
		}
	case ContextDihedrals:
		for _, d := range topology.Dihedrals() {
			forwardReverse = append(forwardReverse, [2]chem.Match{
				chem.NewMatch(d.I, d.J, d.K, d.L), chem.NewMatch(d.L, d.K, d.J, d.I),
			})
		}
	}

	var out []chem.Match
	for _, pair := range forwardReverse {
		ok, err := s.root.IsMatch(evalContext{frame: frame, match: pair[0]})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, pair[0])
			continue
		}
		ok, err = s.root.IsMatch(evalContext{frame: frame, match: pair[1]})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, pair[1])
		}
	}
	return out, nil
}

// List is the single-arity convenience returning the first (only)
// index of each match. It is rejected for arity > 1.
func (s *Selection) List(frame *chem.Frame) ([]int, error) {
	if s.arity != 1 {
		return nil, chem.NewError(chem.ErrSelection, "list() requires arity 1, this selection has arity %d", s.arity)
	}
	matches, err := s.Evaluate(frame)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.At(0)
	}
	return out, nil
}

// candidates builds every candidate tuple for s.context, per spec.md
// §4.5.7. Selections run once per frame in this single-threaded
// cooperative model (spec.md §5), so materializing the slice up front
// is simpler and no less correct than a lazy generator, and avoids the
// goroutine-leak risk a channel-based generator would carry if
// Evaluate returned early on an evaluation error.
func (s *Selection) candidates(frame *chem.Frame) []chem.Match {
	n := frame.Topology().Size()
	var out []chem.Match
	switch s.context {
	case ContextAtoms:
		for i := 0; i < n; i++ {
			out = append(out, chem.NewMatch(i))
		}
	case ContextPairs:
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j {
					out = append(out, chem.NewMatch(i, j))
				}
			}
		}
	case ContextThree:
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				for k := 0; k < n; k++ {
					if k == i || k == j {
						continue
					}
					out = append(out, chem.NewMatch(i, j, k))
				}
			}
		}
	case ContextFour:
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				for k := 0; k < n; k++ {
					if k == i || k == j {
						continue
					}
					for l := 0; l < n; l++ {
						if l == i || l == j || l == k {
							continue
						}
						out = append(out, chem.NewMatch(i, j, k, l))
					}
				}
			}
		}
	}
	return out
}
