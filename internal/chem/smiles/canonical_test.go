package smiles

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical_KnownForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"c1ccccc1", "c1ccccc1"},
		{"C1CCCCC1", "C1CCCCC1"},
		{"Cc1ccccc1", "Cc1ccccc1"},
		{"c1ccccc1C", "Cc1ccccc1"},
		{"O=C1CCCCC1", "C1CCC(CC1)=O"},
		{"C1CCC(=O)CC1", "C1CCC(CC1)=O"},
		{"CC(=O)c1ccccc1", "CC(c1ccccc1)=O"},
		{"OCC1CC1", "C(C1CC1)O"},
		{"c1ccc2[nH]ccc2c1", "c1ccc2c(c1)cc[nH]2"},
		{"c1ccc(cc1)-c1ccccc1", "c1ccc(cc1)-c1ccccc1"},
		{"C1=CC=CC=C1", "C=1C=CC=CC1"},
		{"[NH4+].[Cl-]", "[Cl-].[NH4+]"},
		{"CCO.c1ccccc1", "CCO.c1ccccc1"},
		{"c1ccccc1.CCO", "CCO.c1ccccc1"},
		{"C[C@H](N)C(=O)O", "CC(C(=O)O)N"},
		{"[CH3][CH2][OH]", "CCO"},
		{"[13CH4]", "[13CH4]"},
	}
	for _, tc := range cases {
		got, err := CanonicalString(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestCanonical_Empty(t *testing.T) {
	assert.Equal(t, "", Canonical(nil))
	assert.Equal(t, "", Canonical(&Molecule{}))
}

func TestCanonical_EquivalentInputsAgree(t *testing.T) {
	groups := [][]string{
		{"CC(C)Cc1ccc(cc1)C(C)C(O)=O", "OC(=O)C(C)c1ccc(CC(C)C)cc1", "CC(C(=O)O)c1ccc(cc1)CC(C)C"},
		{"c1ccc2ccccc2c1", "c1cccc2c1cccc2", "c12ccccc1cccc2"},
		{"C1CC2CCC1C2", "C1CC2CC1CC2", "C2CC1CCC2C1"},
		{"O=C(Nc1ccccc1)c1ccccn1", "c1ccc(cc1)NC(=O)c1ncccc1"},
		{"c1ccc2[nH]ccc2c1", "[nH]1ccc2ccccc12"},
	}
	for _, g := range groups {
		ref, err := CanonicalString(g[0])
		require.NoError(t, err)
		for _, s := range g[1:] {
			got, err := CanonicalString(s)
			require.NoError(t, err)
			assert.Equal(t, ref, got, "%s vs %s", g[0], s)
		}
	}
}

// shuffled returns a copy of m with atoms and bonds renumbered at random.
func shuffled(m *Molecule, rng *rand.Rand) *Molecule {
	perm := rng.Perm(len(m.Atoms))
	newIndex := make([]int, len(m.Atoms))
	out := &Molecule{}
	for newPos, old := range perm {
		out.AddAtom(m.Atoms[old])
		newIndex[old] = newPos
	}
	for _, bi := range rng.Perm(len(m.Bonds)) {
		b := m.Bonds[bi]
		a, c := newIndex[b.Begin], newIndex[b.End]
		if rng.Intn(2) == 0 {
			a, c = c, a
		}
		out.AddBond(a, c, b.Order)
	}
	return out
}

func TestCanonical_AtomOrderInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	inputs := []string{
		"c1ccc2ccccc2c1",
		"CC(C)Cc1ccc(cc1)C(C)C(O)=O",
		"C12C3C4C1C5C2C3C45",
		"C1CCC2(CC1)CCCC2",
		"c1ccc2c(c1)ccc1ccccc12",
		"CN1CCN(CC1)c1ccc(cc1)C(=O)N",
		"C1CCCCCCCCCCC1",
	}
	for _, in := range inputs {
		m, err := Parse(in)
		require.NoError(t, err)
		ref := Canonical(m)
		for i := 0; i < 50; i++ {
			require.Equal(t, ref, Canonical(shuffled(m, rng)), in)
		}
	}
}

func TestCanonical_RoundTrip(t *testing.T) {
	for _, in := range []string{"C12C3C4C1C5C2C3C45", "CC(C)Cc1ccc(cc1)C(C)C(O)=O", "[Fe+2].[O-]C=O"} {
		first, err := CanonicalString(in)
		require.NoError(t, err)
		second, err := CanonicalString(first)
		require.NoError(t, err)
		assert.Equal(t, first, second, in)
	}
}

func TestCanonicalRanks_Distinct(t *testing.T) {
	m, err := Parse("C12C3C4C1C5C2C3C45")
	require.NoError(t, err)
	ranks := CanonicalRanks(m)
	assert.Equal(t, len(m.Atoms), countDistinct(ranks))
}

//Personal.AI order the ending
