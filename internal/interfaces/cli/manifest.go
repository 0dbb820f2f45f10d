package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtacn/scaffold-split/internal/application/split"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// NewManifestCmd creates the manifest command.
func NewManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <dir|manifest.yaml>",
		Short: "Print the summary of a split written earlier",
		Long: "Read the manifest.yaml written by split, either given directly or found\n" +
			"in the named output directory, and print it like split does.",
		Args: cobra.ExactArgs(1),
		RunE: runManifest,
	}
}

func runManifest(cmd *cobra.Command, args []string) error {
	path := args[0]
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, split.ManifestFile)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeNotFound, "cannot open manifest").
			WithDetailf("path=%s", path)
	}
	defer f.Close()

	m, err := split.ReadManifest(f)
	if err != nil {
		return err
	}
	return PrintResult(cmd, newManifestSummary(m))
}

func newManifestSummary(m *split.Manifest) *splitSummary {
	return &splitSummary{
		RunID:     m.RunID,
		Input:     m.Input,
		Policy:    m.Policy,
		Seed:      m.Seed,
		Molecules: m.Molecules,
		Scaffolds: m.Scaffolds,
		Train:     sideView(m.Train),
		Test:      sideView(m.Test),
		Artifacts: m.Artifacts,
		CreatedAt: m.CreatedAt,
	}
}

//Personal.AI order the ending
