package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/scaffold-split/internal/application/split"
	"github.com/turtacn/scaffold-split/internal/config"
	"github.com/turtacn/scaffold-split/internal/dataset"
	"github.com/turtacn/scaffold-split/internal/domain/partition"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
)

type splitOptions struct {
	TrainSize float64
	TestSize  float64
	Balanced  bool
	Seed      int64
	OutDir    string
	Workers   int
	columnOptions
}

// columnOptions names the CSV columns of an input table.
type columnOptions struct {
	SmilesCol string
	IDCol     string
	LabelCol  string
}

func (c *columnOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.SmilesCol, "smiles-col", "", "CSV column holding SMILES (default from config)")
	cmd.Flags().StringVar(&c.IDCol, "id-col", "", "CSV column holding molecule ids (default from config)")
	cmd.Flags().StringVar(&c.LabelCol, "label-col", "", "CSV column holding labels (default from config)")
}

func (c *columnOptions) resolve(cfg *config.Config) dataset.Columns {
	cols := dataset.Columns{
		SMILES: cfg.Dataset.SmilesColumn,
		ID:     cfg.Dataset.IDColumn,
		Label:  cfg.Dataset.LabelColumn,
	}
	if c.SmilesCol != "" {
		cols.SMILES = c.SmilesCol
	}
	if c.IDCol != "" {
		cols.ID = c.IDCol
	}
	if c.LabelCol != "" {
		cols.Label = c.LabelCol
	}
	return cols
}

// NewSplitCmd creates the split command.
func NewSplitCmd() *cobra.Command {
	opts := &splitOptions{}

	cmd := &cobra.Command{
		Use:   "split <dataset>",
		Short: "Split a dataset into train and test partitions by scaffold",
		Long: "Read a .can (smiles<TAB>id<TAB>label) or .csv dataset, group its molecules\n" +
			"by Murcko scaffold and write train.can, test.can, train.idx, test.idx and\n" +
			"manifest.yaml to the output directory.\n\n" +
			"Aromaticity is not perceived: the aromatic (c1ccccc1) and Kekule\n" +
			"(C1=CC=CC=C1) spellings of one ring give different scaffolds.  Normalize\n" +
			"datasets that mix both notations before splitting.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.TrainSize, "train-size", config.DefaultTrainSize, "fraction of molecules targeted for train")
	f.Float64Var(&opts.TestSize, "test-size", config.DefaultTestSize, "fraction of molecules targeted for test")
	f.BoolVar(&opts.Balanced, "balanced", false, "shuffle scaffold groups (big groups first) instead of largest-first")
	f.Int64Var(&opts.Seed, "seed", 0, "random seed for the balanced policy")
	f.StringVar(&opts.OutDir, "out", "", "output directory (default from config)")
	f.IntVar(&opts.Workers, "workers", 0, "parallel scaffold extraction workers (default from config)")
	opts.columnOptions.register(cmd)
	return cmd
}

func runSplit(cmd *cobra.Command, path string, opts *splitOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := *cliCtx.Config
	logger := cliCtx.Logger

	flags := cmd.Flags()
	sizes := partition.SizeSpec{Train: cfg.Split.TrainSize, Test: cfg.Split.TestSize}
	if flags.Changed("train-size") || flags.Changed("test-size") {
		sizes = partition.SizeSpec{Train: opts.TrainSize, Test: opts.TestSize}
	}
	balanced := cfg.Split.Balanced
	if flags.Changed("balanced") {
		balanced = opts.Balanced
	}
	seed := cfg.Split.Seed
	if flags.Changed("seed") {
		seed = opts.Seed
	}
	if opts.OutDir != "" {
		cfg.Dataset.OutputDir = opts.OutDir
	}
	if opts.Workers > 0 {
		cfg.Extractor.Workers = opts.Workers
	}

	// Fail on bad sizes before the dataset is read.
	if err := sizes.Validate(); err != nil {
		return err
	}

	ds, err := dataset.Open(path, opts.columnOptions.resolve(&cfg))
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		logging.String("path", path),
		logging.Int("molecules", ds.Len()))

	infra, err := newInfrastructure(&cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	res, err := infra.Service.Run(cmd.Context(), split.Request{
		Dataset:        ds,
		Options:        partition.Options{Sizes: sizes, Balanced: balanced, Seed: seed},
		WriteArtifacts: true,
	})
	if err != nil {
		return err
	}
	return PrintResult(cmd, newSplitSummary(res))
}

type sideView struct {
	Molecules int     `json:"molecules"`
	Scaffolds int     `json:"scaffolds"`
	Fraction  float64 `json:"fraction"`
}

// splitSummary is the printed form of a split result.
type splitSummary struct {
	RunID     string    `json:"run_id"`
	Input     string    `json:"input"`
	Policy    string    `json:"policy"`
	Seed      int64     `json:"seed"`
	Molecules int       `json:"molecules"`
	Scaffolds int       `json:"scaffolds"`
	Train     sideView  `json:"train"`
	Test      sideView  `json:"test"`
	Artifacts []string  `json:"artifacts"`
	CreatedAt time.Time `json:"created_at"`
}

func newSplitSummary(res *split.Result) *splitSummary {
	r := res.Run
	return &splitSummary{
		RunID:     r.ID.String(),
		Input:     r.Input,
		Policy:    r.Policy,
		Seed:      r.Seed,
		Molecules: r.Molecules,
		Scaffolds: r.Scaffolds,
		Train:     sideView{Molecules: r.TrainMolecules, Scaffolds: r.TrainScaffolds, Fraction: r.TrainFraction},
		Test:      sideView{Molecules: r.TestMolecules, Scaffolds: r.TestScaffolds, Fraction: r.TestFraction},
		Artifacts: res.Artifacts,
		CreatedAt: r.CreatedAt,
	}
}

func (s *splitSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s (%s, seed %d)\n", s.RunID, s.Policy, s.Seed)
	fmt.Fprintf(&sb, "input:  %s, %d molecules, %d scaffolds\n", s.Input, s.Molecules, s.Scaffolds)
	fmt.Fprintf(&sb, "train:  %d molecules, %d scaffolds (%.4f)\n", s.Train.Molecules, s.Train.Scaffolds, s.Train.Fraction)
	fmt.Fprintf(&sb, "test:   %d molecules, %d scaffolds (%.4f)\n", s.Test.Molecules, s.Test.Scaffolds, s.Test.Fraction)
	for _, a := range s.Artifacts {
		fmt.Fprintf(&sb, "wrote:  %s\n", a)
	}
	return sb.String()
}

func (s *splitSummary) TableHeaders() []string {
	return []string{"PARTITION", "MOLECULES", "SCAFFOLDS", "FRACTION"}
}

func (s *splitSummary) TableRows() [][]string {
	row := func(name string, v sideView) []string {
		return []string{name, strconv.Itoa(v.Molecules), strconv.Itoa(v.Scaffolds), strconv.FormatFloat(v.Fraction, 'f', 4, 64)}
	}
	return [][]string{row("train", s.Train), row("test", s.Test)}
}

//Personal.AI order the ending
