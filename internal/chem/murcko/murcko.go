// Package murcko computes Bemis-Murcko scaffolds: the ring systems of a
// molecule together with the linker chains joining them, side chains removed.
package murcko

import (
	"context"
	"strings"

	"github.com/turtacn/scaffold-split/internal/chem/smiles"
	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
)

// Scaffold returns the Murcko framework of m as a new molecule.
//
// Side chains are removed by repeatedly deleting non-ring atoms with at most
// one remaining neighbour, which leaves the rings and the linkers between
// them.  Atoms joined to that core by a double bond (carbonyl oxygens,
// exocyclic methylenes) are then restored.  An acyclic molecule has an empty
// scaffold.
//
// Hydrogen counts follow the removed substituents: implicit counts are
// recomputed, bracket atoms gain one hydrogen per unit of lost bond order, and
// an aromatic nitrogen or phosphorus that loses its substituent is written
// with an explicit hydrogen (Cn1cccc1 → c1cc[nH]c1).
func Scaffold(m *smiles.Molecule) *smiles.Molecule {
	n := m.NumAtoms()
	inRing := m.RingAtoms()

	keep := make([]bool, n)
	degree := make([]int, n)
	var queue []int
	for i := 0; i < n; i++ {
		keep[i] = true
		degree[i] = m.Degree(i)
		if !inRing[i] && degree[i] <= 1 {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		atom := queue[0]
		queue = queue[1:]
		if !keep[atom] {
			continue
		}
		keep[atom] = false
		for _, bi := range m.BondsOf(atom) {
			nb := m.Bonds[bi].Other(atom)
			if !keep[nb] {
				continue
			}
			degree[nb]--
			if !inRing[nb] && degree[nb] <= 1 {
				queue = append(queue, nb)
			}
		}
	}

	core := make([]bool, n)
	copy(core, keep)
	for _, b := range m.Bonds {
		if b.Order != smiles.BondDouble {
			continue
		}
		switch {
		case core[b.Begin] && !core[b.End]:
			keep[b.End] = true
		case core[b.End] && !core[b.Begin]:
			keep[b.Begin] = true
		}
	}

	out := m.Subgraph(keep)
	restoreHydrogens(m, out, keep)
	return out
}

// restoreHydrogens adjusts the atoms of out, the kept part of m, for the
// bonds they lost.
func restoreHydrogens(m, out *smiles.Molecule, keep []bool) {
	j := 0
	for i := range m.Atoms {
		if !keep[i] {
			continue
		}
		lost := 0
		for _, bi := range m.BondsOf(i) {
			b := m.Bonds[bi]
			if keep[b.Other(i)] {
				continue
			}
			if b.Order == smiles.BondAromatic {
				lost++
			} else {
				lost += int(b.Order)
			}
		}
		if lost > 0 {
			a := &out.Atoms[j]
			switch {
			case a.Bracket:
				a.HCount += lost
			case a.Aromatic && (a.Symbol == "N" || a.Symbol == "P"):
				a.Bracket = true
				a.HCount = out.DefaultHydrogens(j) + lost
			}
		}
		j++
	}
}

// Extractor implements scaffold.Extractor with the Murcko framework written
// as canonical SMILES.  It is stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor returns a Murcko scaffold extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Scaffold parses mol and returns the canonical SMILES of its scaffold.
// Acyclic and empty molecules yield the empty key.
func (e *Extractor) Scaffold(ctx context.Context, mol string) (scaffold.Key, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s := strings.TrimSpace(mol)
	if s == "" {
		return "", nil
	}
	m, err := smiles.Parse(s)
	if err != nil {
		return "", err
	}
	return scaffold.Key(smiles.Canonical(Scaffold(m))), nil
}

//Personal.AI order the ending
