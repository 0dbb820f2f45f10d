// Package scaffold groups molecules by their scaffold key.  The grouping is
// the unit of allocation for the partition package: a group is never split
// across train and test.
package scaffold

import (
	"fmt"
	"strings"

	"github.com/turtacn/scaffold-split/pkg/errors"
)

// Key is the canonical scaffold representation of a molecule.  The empty Key
// is legal: every acyclic molecule maps to it and they form one ordinary group.
type Key string

func (k Key) String() string { return string(k) }

// IdentityMode selects how a molecule is identified inside a group.
type IdentityMode string

const (
	// ModeValue identifies molecules by their SMILES text.  Duplicate inputs
	// collapse into a single member.
	ModeValue IdentityMode = "value"

	// ModeIndex identifies molecules by their zero-based input position.
	ModeIndex IdentityMode = "index"
)

// ParseIdentityMode converts user input into an IdentityMode.  An empty string
// selects ModeIndex.
func ParseIdentityMode(s string) (IdentityMode, error) {
	switch IdentityMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeIndex:
		return ModeIndex, nil
	case ModeValue:
		return ModeValue, nil
	default:
		return "", errors.New(errors.ErrCodeIdentityModeInvalid, "invalid identity mode").
			WithDetailf("mode=%q; expected index|value", s)
	}
}

// Group is the set of molecules sharing one scaffold key.  Members are kept in
// first-seen order and a Group is never empty.
type Group[T comparable] struct {
	Key     Key
	Members []T
}

// Size returns the number of members.
func (g *Group[T]) Size() int { return len(g.Members) }

// Index is the ordered scaffold → group mapping produced by the Indexer.
// Groups appear in the order their key was first seen in the input, which
// makes every downstream tie-break reproducible.
type Index[T comparable] struct {
	groups []*Group[T]
	byKey  map[Key]int
	seen   map[T]struct{}
	unique bool
	total  int
}

func newIndex[T comparable](unique bool) *Index[T] {
	ix := &Index[T]{byKey: make(map[Key]int), unique: unique}
	if unique {
		ix.seen = make(map[T]struct{})
	}
	return ix
}

// add appends member to the group of key.  For unique indexes a member that
// has already been added anywhere is ignored.
func (ix *Index[T]) add(key Key, member T) {
	if ix.unique {
		if _, dup := ix.seen[member]; dup {
			return
		}
		ix.seen[member] = struct{}{}
	}
	pos, ok := ix.byKey[key]
	if !ok {
		pos = len(ix.groups)
		ix.byKey[key] = pos
		ix.groups = append(ix.groups, &Group[T]{Key: key})
	}
	g := ix.groups[pos]
	g.Members = append(g.Members, member)
	ix.total++
}

// Groups returns the groups in first-seen order.  The slice is shared; callers
// must not modify it.
func (ix *Index[T]) Groups() []*Group[T] { return ix.groups }

// Lookup returns the group for key.
func (ix *Index[T]) Lookup(key Key) (*Group[T], bool) {
	pos, ok := ix.byKey[key]
	if !ok {
		return nil, false
	}
	return ix.groups[pos], true
}

// Len returns the number of distinct scaffolds.
func (ix *Index[T]) Len() int { return len(ix.groups) }

// Total returns the number of members across all groups.
func (ix *Index[T]) Total() int { return ix.total }

// Summary describes one group without its members.
type Summary struct {
	Key  Key `json:"scaffold" yaml:"scaffold"`
	Size int `json:"size" yaml:"size"`
}

// Summaries returns one Summary per group in index order.
func (ix *Index[T]) Summaries() []Summary {
	out := make([]Summary, len(ix.groups))
	for i, g := range ix.groups {
		out[i] = Summary{Key: g.Key, Size: g.Size()}
	}
	return out
}

// ExtractionError records the molecule on which scaffold extraction failed.
type ExtractionError struct {
	Position int
	Molecule string
	Cause    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("scaffold extraction failed at position %d (%q): %v", e.Position, e.Molecule, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

//Personal.AI order the ending
