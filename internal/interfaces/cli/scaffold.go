package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/scaffold-split/internal/chem/murcko"
	"github.com/turtacn/scaffold-split/internal/chem/smiles"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// NewScaffoldCmd creates the scaffold command.
func NewScaffoldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scaffold <smiles>...",
		Short: "Print the canonical Murcko scaffold of each SMILES",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScaffold,
	}
}

type scaffoldRow struct {
	SMILES    string `json:"smiles"`
	Canonical string `json:"canonical"`
	Scaffold  string `json:"scaffold"`
}

type scaffoldRows []scaffoldRow

func runScaffold(cmd *cobra.Command, args []string) error {
	extractor := murcko.NewExtractor()
	rows := make(scaffoldRows, 0, len(args))
	for i, s := range args {
		key, err := extractor.Scaffold(cmd.Context(), s)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeScaffoldExtractionFailed, "scaffold extraction failed").
				WithDetailf("position=%d smiles=%q", i, s)
		}
		canonical, err := smiles.CanonicalString(s)
		if err != nil {
			return errors.Wrap(err, errors.CodeMoleculeInvalidSMILES, "cannot canonicalize SMILES").
				WithDetailf("position=%d smiles=%q", i, s)
		}
		rows = append(rows, scaffoldRow{SMILES: s, Canonical: canonical, Scaffold: string(key)})
	}
	return PrintResult(cmd, rows)
}

func (r scaffoldRows) String() string {
	var sb strings.Builder
	for _, row := range r {
		fmt.Fprintf(&sb, "%s\t%s\n", row.SMILES, row.Scaffold)
	}
	return sb.String()
}

func (r scaffoldRows) TableHeaders() []string {
	return []string{"SMILES", "CANONICAL", "SCAFFOLD"}
}

func (r scaffoldRows) TableRows() [][]string {
	rows := make([][]string, len(r))
	for i, row := range r {
		rows[i] = []string{row.SMILES, row.Canonical, displayKey(row.Scaffold)}
	}
	return rows
}

//Personal.AI order the ending
