package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chainreport/indexerd/internal/config"
)

// NewRootCmd creates the indexerd root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "indexerd",
		Short: "Admin daemon for a contract indexing process",
		Long: `indexerd registers contracts with an external indexing process:
it maps caller identities to stable indexer ids, keeps the indexer's
manifest and ABI artifacts consistent, and restarts the indexer when
the configuration changes.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().String("project-root", "", "Directory holding the indexer manifest (defaults to cwd)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewContractsCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// setupViper builds the viper instance and binds global flags into it.
func setupViper(cmd *cobra.Command) *viper.Viper {
	v := config.SetupViper()
	if f := cmd.Flags().Lookup("debug"); f != nil {
		_ = v.BindPFlag("debug", f)
	}
	if f := cmd.Flags().Lookup("project-root"); f != nil {
		_ = v.BindPFlag("project_root", f)
	}
	return v
}
