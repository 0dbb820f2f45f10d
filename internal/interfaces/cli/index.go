package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/scaffold-split/internal/application/split"
	"github.com/turtacn/scaffold-split/internal/dataset"
	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
)

type indexOptions struct {
	Identity string
	columnOptions
}

// NewIndexCmd creates the index command.
func NewIndexCmd() *cobra.Command {
	opts := &indexOptions{}

	cmd := &cobra.Command{
		Use:   "index <dataset>",
		Short: "Group the molecules of a dataset by scaffold",
		Long: "Print every scaffold of the dataset with the molecules that share it.\n" +
			"With --identity index members are input positions; with --identity value\n" +
			"they are SMILES strings and duplicates are listed once.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Identity, "identity", "index", "member identity: index|value")
	opts.columnOptions.register(cmd)
	return cmd
}

func runIndex(cmd *cobra.Command, path string, opts *indexOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	mode, err := scaffold.ParseIdentityMode(opts.Identity)
	if err != nil {
		return err
	}

	ds, err := dataset.Open(path, opts.columnOptions.resolve(cliCtx.Config))
	if err != nil {
		return err
	}

	infra, err := newInfrastructure(cliCtx.Config, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	groups, err := infra.Service.Index(cmd.Context(), ds.SMILES(), mode)
	if err != nil {
		return err
	}
	return PrintResult(cmd, groupList(groups))
}

type groupList []split.GroupView

func (g groupList) members(v split.GroupView) []string {
	if v.Molecules != nil {
		return v.Molecules
	}
	out := make([]string, len(v.Positions))
	for i, p := range v.Positions {
		out[i] = strconv.Itoa(p)
	}
	return out
}

func (g groupList) String() string {
	var sb strings.Builder
	for _, v := range g {
		fmt.Fprintf(&sb, "%s\t%d\t%s\n", displayKey(v.Scaffold), v.Size, strings.Join(g.members(v), ","))
	}
	return sb.String()
}

func (g groupList) TableHeaders() []string {
	return []string{"SCAFFOLD", "SIZE", "MEMBERS"}
}

func (g groupList) TableRows() [][]string {
	rows := make([][]string, 0, len(g))
	for _, v := range g {
		rows = append(rows, []string{displayKey(v.Scaffold), strconv.Itoa(v.Size), truncate(strings.Join(g.members(v), ","), 60)})
	}
	return rows
}

// displayKey shows the empty scaffold of acyclic molecules explicitly.
func displayKey(k string) string {
	if k == "" {
		return "<acyclic>"
	}
	return k
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

//Personal.AI order the ending
