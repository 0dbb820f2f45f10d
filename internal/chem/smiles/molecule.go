// Package smiles parses SMILES strings into a molecular graph and writes the
// graph back as a canonical SMILES string.  Stereochemistry is read but not
// kept; aromaticity is taken from the input as written.
package smiles

// BondOrder is the multiplicity of a bond.
type BondOrder int

const (
	BondSingle    BondOrder = 1
	BondDouble    BondOrder = 2
	BondTriple    BondOrder = 3
	BondQuadruple BondOrder = 4
	BondAromatic  BondOrder = 5
)

// valence is the contribution of the bond to an atom's bond order sum.
// Aromatic bonds count one; the aromatic atom itself accounts for the rest.
func (o BondOrder) valence() int {
	if o == BondAromatic {
		return 1
	}
	return int(o)
}

// Atom is one node of a Molecule.
type Atom struct {
	// Symbol is the element symbol with a capital first letter ("C", "Cl",
	// "Se") or "*" for the wildcard atom.
	Symbol   string
	Number   int
	Aromatic bool

	// Bracket marks atoms written in square brackets.  Only bracket atoms
	// carry an explicit hydrogen count; the others get implicit hydrogens.
	Bracket bool
	Isotope int
	Charge  int
	HCount  int
	Class   int
}

// Bond joins two atoms by index.
type Bond struct {
	Begin int
	End   int
	Order BondOrder
}

// Other returns the atom at the far end of the bond from atom.
func (b Bond) Other(atom int) int {
	if b.Begin == atom {
		return b.End
	}
	return b.Begin
}

// Molecule is an undirected multigraph-free molecular graph.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond
	adj   [][]int
}

// NumAtoms returns the number of atoms.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// AddAtom appends a and returns its index.
func (m *Molecule) AddAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

// AddBond joins atoms a and b and returns the bond index.  The caller makes
// sure the pair is not already bonded.
func (m *Molecule) AddBond(a, b int, order BondOrder) int {
	m.Bonds = append(m.Bonds, Bond{Begin: a, End: b, Order: order})
	idx := len(m.Bonds) - 1
	m.adj[a] = append(m.adj[a], idx)
	m.adj[b] = append(m.adj[b], idx)
	return idx
}

// BondBetween returns the index of the bond joining a and b, or -1.
func (m *Molecule) BondBetween(a, b int) int {
	for _, bi := range m.adj[a] {
		if m.Bonds[bi].Other(a) == b {
			return bi
		}
	}
	return -1
}

// BondsOf returns the indices of the bonds incident to atom.  The slice is
// shared and must not be modified.
func (m *Molecule) BondsOf(atom int) []int { return m.adj[atom] }

// Degree returns the number of explicit neighbours of atom.
func (m *Molecule) Degree(atom int) int { return len(m.adj[atom]) }

// bondOrderSum totals the valence contribution of every bond of atom.
func (m *Molecule) bondOrderSum(atom int) int {
	sum := 0
	for _, bi := range m.adj[atom] {
		sum += m.Bonds[bi].Order.valence()
	}
	return sum
}

// DefaultHydrogens returns the hydrogen count atom would carry if it were
// written without brackets.  Atoms outside the organic subset get none.
func (m *Molecule) DefaultHydrogens(atom int) int {
	a := m.Atoms[atom]
	vals, ok := organicValences[a.Symbol]
	if !ok || (a.Aromatic && !aromaticOrganic[a.Symbol]) {
		return 0
	}
	sum := m.bondOrderSum(atom)
	for _, v := range vals {
		if v < sum {
			continue
		}
		h := v - sum
		if a.Aromatic {
			h--
		}
		if h < 0 {
			h = 0
		}
		return h
	}
	return 0
}

// TotalHydrogens returns the explicit count for bracket atoms and the implicit
// count otherwise.
func (m *Molecule) TotalHydrogens(atom int) int {
	if m.Atoms[atom].Bracket {
		return m.Atoms[atom].HCount
	}
	return m.DefaultHydrogens(atom)
}

// RingBonds reports for every bond whether it lies on a ring.  A bond is a
// ring bond exactly when removing it keeps its atoms connected, i.e. when it
// is not a bridge of the graph.
func (m *Molecule) RingBonds() []bool {
	n := len(m.Atoms)
	ring := make([]bool, len(m.Bonds))
	for i := range ring {
		ring[i] = true
	}
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}

	clock := 0
	var visit func(u, via int)
	visit = func(u, via int) {
		disc[u], low[u] = clock, clock
		clock++
		for _, bi := range m.adj[u] {
			if bi == via {
				continue
			}
			v := m.Bonds[bi].Other(u)
			if disc[v] == -1 {
				visit(v, bi)
				if low[v] < low[u] {
					low[u] = low[v]
				}
				if low[v] > disc[u] {
					ring[bi] = false
				}
			} else if disc[v] < low[u] {
				low[u] = disc[v]
			}
		}
	}
	for i := range disc {
		if disc[i] == -1 {
			visit(i, -1)
		}
	}
	return ring
}

// RingAtoms reports for every atom whether it has at least one ring bond.
func (m *Molecule) RingAtoms() []bool {
	return m.ringAtomsFrom(m.RingBonds())
}

func (m *Molecule) ringAtomsFrom(ringBonds []bool) []bool {
	out := make([]bool, len(m.Atoms))
	for bi, in := range ringBonds {
		if in {
			out[m.Bonds[bi].Begin] = true
			out[m.Bonds[bi].End] = true
		}
	}
	return out
}

// Subgraph returns a new Molecule made of the atoms flagged in keep and the
// bonds between them, with atoms renumbered in their original order.
func (m *Molecule) Subgraph(keep []bool) *Molecule {
	out := &Molecule{}
	remap := make([]int, len(m.Atoms))
	for i, a := range m.Atoms {
		remap[i] = -1
		if keep[i] {
			remap[i] = out.AddAtom(a)
		}
	}
	for _, b := range m.Bonds {
		if keep[b.Begin] && keep[b.End] {
			out.AddBond(remap[b.Begin], remap[b.End], b.Order)
		}
	}
	return out
}

//Personal.AI order the ending
