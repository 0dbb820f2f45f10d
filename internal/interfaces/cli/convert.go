package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/scaffold-split/internal/dataset"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	opts := &columnOptions{}

	cmd := &cobra.Command{
		Use:   "convert <input> <output.can>",
		Short: "Convert a CSV dataset with named columns into a .can table",
		Long: "Read the SMILES, id and label columns of a CSV file and write them as a\n" +
			"tab-separated .can table.  Use - as output to write to stdout.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], args[1], opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func runConvert(cmd *cobra.Command, in, out string, opts *columnOptions) (err error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	ds, err := dataset.Open(in, opts.resolve(cliCtx.Config))
	if err != nil {
		return err
	}

	if out == "-" {
		return dataset.WriteCan(cmd.OutOrStdout(), ds)
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetWriteFailed, "failed to create output file").
			WithDetailf("path=%s", out)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrCodeDatasetWriteFailed, "failed to close output file").
				WithDetailf("path=%s", out)
		}
	}()

	w := bufio.NewWriter(f)
	if err := dataset.WriteCan(w, ds); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetWriteFailed, "failed to write output file").
			WithDetailf("path=%s", out)
	}

	cliCtx.Logger.Info("dataset converted",
		logging.String("input", in),
		logging.String("output", out),
		logging.Int("molecules", ds.Len()))
	return PrintResult(cmd, fmt.Sprintf("wrote %d molecules to %s", ds.Len(), out))
}

//Personal.AI order the ending
