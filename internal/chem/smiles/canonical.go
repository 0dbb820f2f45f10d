package smiles

import (
	"sort"
	"strconv"
	"strings"
)

// Canonical writes m as a canonical SMILES string: two molecules with the
// same graph, elements, charges, isotopes, hydrogen counts and bond orders
// produce the same text regardless of input atom order.  Stereo marks and
// atom classes are not written.  Disconnected fragments are written in
// lexicographic order joined by '.'.
func Canonical(m *Molecule) string {
	if m == nil || len(m.Atoms) == 0 {
		return ""
	}
	w := newWriter(m, CanonicalRanks(m))
	frags := w.fragments()
	sort.Strings(frags)
	return strings.Join(frags, ".")
}

// CanonicalString parses s and writes it back in canonical form.
func CanonicalString(s string) (string, error) {
	m, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Canonical(m), nil
}

// CanonicalRanks returns a permutation rank for every atom.  Atoms are first
// classed by local invariants, the classes are refined by neighbour ranks
// until stable, and remaining ties are broken at the lowest tied class.
func CanonicalRanks(m *Molecule) []int {
	n := len(m.Atoms)
	ringAtom := m.RingAtoms()

	inv := make([][]int, n)
	for i, a := range m.Atoms {
		inv[i] = []int{
			a.Number,
			boolInt(a.Aromatic),
			m.Degree(i),
			m.TotalHydrogens(i),
			a.Charge,
			a.Isotope,
			boolInt(ringAtom[i]),
		}
	}
	ranks := refineRanks(m, denseRanks(inv))

	for countDistinct(ranks) < n {
		tied := lowestTiedRank(ranks)
		chosen := -1
		keys := make([][]int, n)
		for i, r := range ranks {
			k := 2 * r
			if r == tied {
				if chosen < 0 {
					chosen = i
				} else {
					k++
				}
			}
			keys[i] = []int{k}
		}
		ranks = refineRanks(m, denseRanks(keys))
	}
	return ranks
}

// refineRanks splits rank classes by the sorted (rank, bond order) pairs of
// each atom's neighbours until the number of classes stops growing.
func refineRanks(m *Molecule, ranks []int) []int {
	count := countDistinct(ranks)
	for {
		sig := make([][]int, len(ranks))
		for i := range m.Atoms {
			nb := make([][2]int, 0, len(m.adj[i]))
			for _, bi := range m.adj[i] {
				b := m.Bonds[bi]
				nb = append(nb, [2]int{ranks[b.Other(i)], int(b.Order)})
			}
			sort.Slice(nb, func(x, y int) bool {
				if nb[x][0] != nb[y][0] {
					return nb[x][0] < nb[y][0]
				}
				return nb[x][1] < nb[y][1]
			})
			s := make([]int, 0, 1+2*len(nb))
			s = append(s, ranks[i])
			for _, pair := range nb {
				s = append(s, pair[0], pair[1])
			}
			sig[i] = s
		}
		next := denseRanks(sig)
		c := countDistinct(next)
		ranks = next
		if c == count {
			return ranks
		}
		count = c
	}
}

// denseRanks ranks keys lexicographically; equal keys share a rank and ranks
// are consecutive from zero.
func denseRanks(keys [][]int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return compareInts(keys[idx[a]], keys[idx[b]]) < 0
	})
	ranks := make([]int, len(keys))
	r := 0
	for i, at := range idx {
		if i > 0 && compareInts(keys[idx[i-1]], keys[at]) != 0 {
			r++
		}
		ranks[at] = r
	}
	return ranks
}

func compareInts(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func countDistinct(ranks []int) int {
	seen := make(map[int]struct{}, len(ranks))
	for _, r := range ranks {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func lowestTiedRank(ranks []int) int {
	count := make(map[int]int, len(ranks))
	for _, r := range ranks {
		count[r]++
	}
	best := -1
	for r, c := range count {
		if c > 1 && (best < 0 || r < best) {
			best = r
		}
	}
	return best
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Writer
// ─────────────────────────────────────────────────────────────────────────────

// writer emits SMILES following a depth-first walk that always visits the
// lowest-ranked unvisited neighbour first.  A first pass fixes the spanning
// tree and the ring-closure bonds, a second pass writes the text.
type writer struct {
	m     *Molecule
	ranks []int

	visited  []bool
	tree     []bool
	closure  []bool
	children [][]int // tree bonds leaving each atom, in visit order
	rings    [][]int // closure bonds touching each atom, in discovery order

	digit map[int]int // closure bond → ring number while open
	inUse map[int]bool
}

func newWriter(m *Molecule, ranks []int) *writer {
	return &writer{
		m:        m,
		ranks:    ranks,
		visited:  make([]bool, len(m.Atoms)),
		tree:     make([]bool, len(m.Bonds)),
		closure:  make([]bool, len(m.Bonds)),
		children: make([][]int, len(m.Atoms)),
		rings:    make([][]int, len(m.Atoms)),
		digit:    make(map[int]int),
		inUse:    make(map[int]bool),
	}
}

// fragments writes every connected component, each rooted at its
// lowest-ranked atom.
func (w *writer) fragments() []string {
	order := make([]int, len(w.m.Atoms))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return w.ranks[order[a]] < w.ranks[order[b]] })

	var out []string
	for _, root := range order {
		if w.visited[root] {
			continue
		}
		w.walk(root, -1)
		var sb strings.Builder
		w.write(&sb, root)
		out = append(out, sb.String())
	}
	return out
}

func (w *writer) sortedBonds(atom int) []int {
	bonds := append([]int(nil), w.m.adj[atom]...)
	sort.Slice(bonds, func(a, b int) bool {
		return w.ranks[w.m.Bonds[bonds[a]].Other(atom)] < w.ranks[w.m.Bonds[bonds[b]].Other(atom)]
	})
	return bonds
}

func (w *writer) walk(atom, via int) {
	w.visited[atom] = true
	for _, bi := range w.sortedBonds(atom) {
		if bi == via {
			continue
		}
		next := w.m.Bonds[bi].Other(atom)
		if w.visited[next] {
			if !w.tree[bi] && !w.closure[bi] {
				w.closure[bi] = true
				w.rings[next] = append(w.rings[next], bi)
				w.rings[atom] = append(w.rings[atom], bi)
			}
			continue
		}
		w.tree[bi] = true
		w.children[atom] = append(w.children[atom], bi)
		w.walk(next, bi)
	}
}

func (w *writer) write(sb *strings.Builder, atom int) {
	sb.WriteString(w.atomLabel(atom))

	var closed []int
	for _, bi := range w.rings[atom] {
		if d, open := w.digit[bi]; open {
			sb.WriteString(ringNumber(d))
			delete(w.digit, bi)
			closed = append(closed, d)
			continue
		}
		d := 1
		for w.inUse[d] {
			d++
		}
		w.inUse[d] = true
		w.digit[bi] = d
		sb.WriteString(w.bondSymbol(bi))
		sb.WriteString(ringNumber(d))
	}
	for _, d := range closed {
		delete(w.inUse, d)
	}

	kids := w.children[atom]
	for i, bi := range kids {
		next := w.m.Bonds[bi].Other(atom)
		if i < len(kids)-1 {
			sb.WriteByte('(')
			sb.WriteString(w.bondSymbol(bi))
			w.write(sb, next)
			sb.WriteByte(')')
			continue
		}
		sb.WriteString(w.bondSymbol(bi))
		w.write(sb, next)
	}
}

func ringNumber(d int) string {
	if d < 10 {
		return strconv.Itoa(d)
	}
	return "%" + strconv.Itoa(d)
}

func (w *writer) bondSymbol(bi int) string {
	b := w.m.Bonds[bi]
	bothAromatic := w.m.Atoms[b.Begin].Aromatic && w.m.Atoms[b.End].Aromatic
	switch b.Order {
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	case BondAromatic:
		if bothAromatic {
			return ""
		}
		return ":"
	default:
		if bothAromatic {
			return "-"
		}
		return ""
	}
}

// atomLabel writes organic-subset atoms bare when their hydrogen count is the
// implied one and uses brackets otherwise.
func (w *writer) atomLabel(atom int) string {
	a := w.m.Atoms[atom]
	sym := a.Symbol
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}
	if w.bare(atom) {
		return sym
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(sym)
	if h := w.m.TotalHydrogens(atom); h > 0 {
		sb.WriteByte('H')
		if h > 1 {
			sb.WriteString(strconv.Itoa(h))
		}
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		sb.WriteString(strconv.Itoa(a.Charge))
	}
	sb.WriteByte(']')
	return sb.String()
}

func (w *writer) bare(atom int) bool {
	a := w.m.Atoms[atom]
	if a.Charge != 0 || a.Isotope != 0 {
		return false
	}
	if a.Symbol == "*" {
		return w.m.TotalHydrogens(atom) == 0
	}
	if _, organic := organicValences[a.Symbol]; !organic {
		return false
	}
	if a.Aromatic && !aromaticOrganic[a.Symbol] {
		return false
	}
	return !a.Bracket || a.HCount == w.m.DefaultHydrogens(atom)
}

//Personal.AI order the ending
