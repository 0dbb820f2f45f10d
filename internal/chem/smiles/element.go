package smiles

// elementSymbols lists the periodic table; the index is the atomic number.
var elementSymbols = [...]string{
	"*",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba",
	"La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra",
	"Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm", "Md", "No", "Lr",
	"Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds", "Rg", "Cn",
	"Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for z, s := range elementSymbols {
		m[s] = z
	}
	return m
}()

// organicValences holds the allowed valences of the organic subset, lowest
// first.  Implicit hydrogens fill an atom up to the first valence that is not
// below its bond order sum.
var organicValences = map[string][]int{
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"F":  {1},
	"Cl": {1},
	"Br": {1},
	"I":  {1},
}

// aromaticOrganic is the aromatic part of the organic subset.
var aromaticOrganic = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
}

// aromaticBracket lists the element symbols that may be written in lower case
// inside brackets.
var aromaticBracket = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"Se": true, "As": true, "Te": true,
}

// AtomicNumber returns the atomic number of symbol, or -1 when it is not an
// element symbol.  The wildcard "*" has atomic number 0.
func AtomicNumber(symbol string) int {
	if z, ok := atomicNumbers[symbol]; ok {
		return z
	}
	return -1
}

//Personal.AI order the ending
