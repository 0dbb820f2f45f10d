package smiles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/scaffold-split/pkg/errors"
)

// ParseError locates a syntax error in a SMILES string.  Pos is a zero-based
// byte offset.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("smiles: %s at position %d", e.Msg, e.Pos)
}

// Parse reads one SMILES string.  Parsing stops at the first whitespace
// character; anything after it is treated as a title and ignored.  An empty
// string yields a molecule without atoms.
//
// Errors wrap a *ParseError in an AppError with code
// ErrCodeMoleculeInvalidSMILES.
func Parse(s string) (*Molecule, error) {
	p := &parser{src: s, prev: -1, rings: make(map[int]ringOpen)}
	m, perr := p.parse()
	if perr != nil {
		return nil, errors.Wrap(perr, errors.ErrCodeMoleculeInvalidSMILES, "invalid SMILES").
			WithDetailf("smiles=%q", s)
	}
	return m, nil
}

type ringOpen struct {
	atom     int
	order    BondOrder
	explicit bool
	pos      int
}

type parser struct {
	src string
	pos int
	mol Molecule

	prev     int
	bond     BondOrder
	bondSet  bool
	bondPos  int
	branches []int
	rings    map[int]ringOpen
}

func (p *parser) fail(pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parse() (*Molecule, *ParseError) {
scan:
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			break scan

		case c == '(':
			if p.prev < 0 {
				return nil, p.fail(p.pos, "branch without a preceding atom")
			}
			if p.bondSet {
				return nil, p.fail(p.bondPos, "bond symbol before branch")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++

		case c == ')':
			if len(p.branches) == 0 {
				return nil, p.fail(p.pos, "unmatched ')'")
			}
			if p.bondSet {
				return nil, p.fail(p.bondPos, "bond without a following atom")
			}
			if p.src[p.pos-1] == '(' {
				return nil, p.fail(p.pos, "empty branch")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++

		case strings.IndexByte(`-=#$:/\`, c) >= 0:
			if p.prev < 0 {
				return nil, p.fail(p.pos, "bond without a preceding atom")
			}
			if p.bondSet {
				return nil, p.fail(p.pos, "consecutive bond symbols")
			}
			p.bond, p.bondSet, p.bondPos = bondFor(c), true, p.pos
			p.pos++

		case c == '.':
			if p.prev < 0 {
				return nil, p.fail(p.pos, "empty fragment")
			}
			if p.bondSet {
				return nil, p.fail(p.bondPos, "bond without a following atom")
			}
			p.prev = -1
			p.pos++

		case c == '%' || (c >= '0' && c <= '9'):
			if err := p.ringClosure(); err != nil {
				return nil, err
			}

		case c == '[':
			a, err := p.bracketAtom()
			if err != nil {
				return nil, err
			}
			p.attach(a)

		default:
			a, ok := p.organicAtom()
			if !ok {
				return nil, p.fail(p.pos, "unexpected character %q", c)
			}
			p.attach(a)
		}
	}

	if p.bondSet {
		return nil, p.fail(p.bondPos, "bond without a following atom")
	}
	if len(p.branches) > 0 {
		return nil, p.fail(p.pos, "unclosed branch")
	}
	if len(p.rings) > 0 {
		open := make([]int, 0, len(p.rings))
		for num := range p.rings {
			open = append(open, num)
		}
		sort.Ints(open)
		return nil, p.fail(p.rings[open[0]].pos, "unclosed ring bond %d", open[0])
	}
	return &p.mol, nil
}

func bondFor(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		// '-', and the directional '/' and '\', which only carry stereo.
		return BondSingle
	}
}

func (p *parser) defaultOrder(a, b int) BondOrder {
	if p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

// attach adds a to the molecule and bonds it to the previous atom.
func (p *parser) attach(a Atom) {
	idx := p.mol.AddAtom(a)
	if p.prev >= 0 {
		order := p.bond
		if !p.bondSet {
			order = p.defaultOrder(p.prev, idx)
		}
		p.mol.AddBond(p.prev, idx, order)
	}
	p.prev = idx
	p.bondSet = false
}

func (p *parser) ringClosure() *ParseError {
	start := p.pos
	var num int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.fail(start, "ring bond number after '%%' needs two digits")
		}
		num = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		num = int(p.src[p.pos] - '0')
		p.pos++
	}
	if p.prev < 0 {
		return p.fail(start, "ring bond without a preceding atom")
	}

	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringOpen{atom: p.prev, order: p.bond, explicit: p.bondSet, pos: start}
		p.bondSet = false
		return nil
	}

	delete(p.rings, num)
	if open.atom == p.prev {
		return p.fail(start, "ring bond %d closes on its own atom", num)
	}
	if p.mol.BondBetween(open.atom, p.prev) >= 0 {
		return p.fail(start, "ring bond %d duplicates an existing bond", num)
	}

	var order BondOrder
	switch {
	case open.explicit && p.bondSet && open.order != p.bond:
		return p.fail(start, "conflicting bond orders for ring bond %d", num)
	case p.bondSet:
		order = p.bond
	case open.explicit:
		order = open.order
	default:
		order = p.defaultOrder(open.atom, p.prev)
	}
	p.mol.AddBond(open.atom, p.prev, order)
	p.bondSet = false
	return nil
}

func (p *parser) organicAtom() (Atom, bool) {
	c := p.src[p.pos]
	next := byte(0)
	if p.pos+1 < len(p.src) {
		next = p.src[p.pos+1]
	}

	var a Atom
	switch {
	case c == 'C' && next == 'l':
		a.Symbol = "Cl"
	case c == 'B' && next == 'r':
		a.Symbol = "Br"
	case strings.IndexByte("BCNOPSFI", c) >= 0:
		a.Symbol = string(c)
	case strings.IndexByte("bcnops", c) >= 0:
		a.Symbol = strings.ToUpper(string(c))
		a.Aromatic = true
	case c == '*':
		a.Symbol = "*"
	default:
		return Atom{}, false
	}
	a.Number = AtomicNumber(a.Symbol)
	p.pos += len(a.Symbol)
	return a, true
}

func (p *parser) bracketAtom() (Atom, *ParseError) {
	start := p.pos
	p.pos++
	a := Atom{Bracket: true}

	if n, ok := p.number(); ok {
		a.Isotope = n
	}

	if p.pos >= len(p.src) {
		return Atom{}, p.fail(start, "unterminated bracket atom")
	}
	if err := p.bracketSymbol(&a); err != nil {
		return Atom{}, err
	}
	a.Number = AtomicNumber(a.Symbol)

	// Chirality is accepted and dropped.
	if p.peek('@') {
		p.pos++
		switch {
		case p.peek('@'):
			p.pos++
		case p.pos+1 < len(p.src) && isChiralClass(p.src[p.pos:p.pos+2]):
			p.pos += 2
			p.number()
		}
	}

	if p.peek('H') {
		p.pos++
		a.HCount = 1
		if n, ok := p.number(); ok {
			a.HCount = n
		}
	}

	if p.peek('+') || p.peek('-') {
		sign := p.src[p.pos]
		p.pos++
		charge := 1
		if n, ok := p.number(); ok {
			charge = n
		} else {
			for p.peek(sign) {
				charge++
				p.pos++
			}
		}
		if sign == '-' {
			charge = -charge
		}
		a.Charge = charge
	}

	if p.peek(':') {
		p.pos++
		n, ok := p.number()
		if !ok {
			return Atom{}, p.fail(p.pos, "atom class needs a number")
		}
		a.Class = n
	}

	if p.pos >= len(p.src) {
		return Atom{}, p.fail(start, "unterminated bracket atom")
	}
	if p.src[p.pos] != ']' {
		return Atom{}, p.fail(p.pos, "unexpected character %q in bracket atom", p.src[p.pos])
	}
	p.pos++
	return a, nil
}

func (p *parser) bracketSymbol(a *Atom) *ParseError {
	c := p.src[p.pos]
	var next byte
	if p.pos+1 < len(p.src) {
		next = p.src[p.pos+1]
	}

	switch {
	case c == '*':
		a.Symbol = "*"
		p.pos++
	case isUpper(c):
		if isLower(next) && AtomicNumber(string([]byte{c, next})) >= 0 {
			a.Symbol = string([]byte{c, next})
			p.pos += 2
		} else if AtomicNumber(string(c)) >= 0 {
			a.Symbol = string(c)
			p.pos++
		} else {
			return p.fail(p.pos, "unknown element %q", string(c))
		}
	case isLower(c):
		two := strings.ToUpper(string(c)) + string(next)
		one := strings.ToUpper(string(c))
		switch {
		case isLower(next) && aromaticBracket[two]:
			a.Symbol = two
			p.pos += 2
		case aromaticBracket[one]:
			a.Symbol = one
			p.pos++
		default:
			return p.fail(p.pos, "unknown aromatic element %q", string(c))
		}
		a.Aromatic = true
	default:
		return p.fail(p.pos, "expected element symbol in bracket atom")
	}
	return nil
}

// number reads a run of decimal digits.
func (p *parser) number() (int, bool) {
	start := p.pos
	n := 0
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) && p.pos-start < 6 {
		n = n*10 + int(p.src[p.pos]-'0')
		p.pos++
	}
	return n, p.pos > start
}

func (p *parser) peek(c byte) bool {
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func isChiralClass(s string) bool {
	switch s {
	case "TH", "AL", "SP", "TB", "OH":
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

//Personal.AI order the ending
