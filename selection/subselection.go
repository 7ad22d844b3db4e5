// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : subselection.go
package selection

import (
	"fmt"

	"github.com/cx-luo/chemfiles/chem"
)

// SubSelection is either a bare variable (#N, referring to the
// enclosing context's own match) or a full nested selection evaluated
// in the atoms context. Per spec.md §4.5.5, a sub-selection's result —
// the set of first-variable atom matches — is computed lazily and
// cached for the current frame; clearCache() (invoked by the root's
// Clear() before each new frame) drops that cache.
type SubSelection struct {
	variable int // > 0 when this is a bare #N reference
	root     BoolNode

	cached    bool
	cacheSet  []int
	cacheFrame *chem.Frame
}

// NewVariableSubSelection builds a sub-selection that is just a bare
// variable reference.
func NewVariableSubSelection(v int) *SubSelection {
	return &SubSelection{variable: v}
}

// NewExpressionSubSelection builds a sub-selection from a full nested
// boolean AST, evaluated over the atoms context.
func NewExpressionSubSelection(root BoolNode) *SubSelection {
	return &SubSelection{root: root}
}

// Resolve returns the atom indices this sub-selection matches, given
// the enclosing context (whose match supplies #N for a bare variable
// reference). Results are cached per frame.
func (s *SubSelection) Resolve(ctx evalContext) ([]int, error) {
	if s.variable > 0 {
		idx, err := ctx.atomIndex(s.variable)
		if err != nil {
			return nil, err
		}
		return []int{idx}, nil
	}
	frame := ctx.frame
	if s.cached && s.cacheFrame == frame {
		return s.cacheSet, nil
	}
	n := frame.Topology().Size()
	var out []int
	for i := 0; i < n; i++ {
		match := chem.NewMatch(i)
		ok, err := s.root.IsMatch(evalContext{frame: frame, match: match})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, i)
		}
	}
	s.cached = true
	s.cacheFrame = frame
	s.cacheSet = out
	return out, nil
}

// Print renders the sub-selection back to selection-language syntax: a
// bare #N for a variable reference, or a parenthesized nested
// expression otherwise.
func (s *SubSelection) Print() string {
	if s.variable > 0 {
		return fmt.Sprintf("#%d", s.variable)
	}
	return fmt.Sprintf("(%s)", s.root.Print(0))
}

// clearCache invalidates the cached match set; called transitively by
// the root AST's Clear() before each new frame is evaluated.
func (s *SubSelection) clearCache() {
	s.cached = false
	s.cacheSet = nil
	s.cacheFrame = nil
	if s.root != nil {
		s.root.Clear()
	}
}
