package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command group.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Redis scaffold cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached scaffold key",
		Long: "Delete every key under redis.key_prefix.  Run it after changing the\n" +
			"scaffold extractor so stale keys are not served.",
		Args: cobra.NoArgs,
		RunE: runCachePurge,
	})
	return cmd
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	infra, err := newInfrastructure(cliCtx.Config, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	n, err := infra.PurgeScaffoldCache(cmd.Context())
	if err != nil {
		return err
	}
	return PrintResult(cmd, fmt.Sprintf("purged %d cached scaffolds", n))
}

//Personal.AI order the ending
