package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/chainreport/indexerd/internal/adapters/manifest"
	"github.com/chainreport/indexerd/internal/config"
	"github.com/chainreport/indexerd/internal/usecase"
)

// NewContractsCmd renders the registered contracts as a table. It reads
// the manifest directly and needs no database.
func NewContractsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "List contracts registered in the indexer manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := setupViper(cmd)

			// Listing only needs the manifest, not the full runtime
			// config (which insists on ALLOWED_ORIGINS and a database).
			projectRoot := v.GetString("project_root")
			if projectRoot == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				projectRoot = wd
			}
			store, err := manifest.NewStore(&config.RuntimeConfig{
				ProjectRoot:  projectRoot,
				ManifestPath: filepath.Join(projectRoot, config.ManifestFile),
			})
			if err != nil {
				return err
			}

			result, err := usecase.NewListContracts(store).Execute(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Project: %s\n\n", result.Project)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Indexer ID", "Network", "Address", "Start Block", "ABI"})
			for _, c := range result.Contracts {
				for _, d := range c.Details {
					t.AppendRow(table.Row{c.Name, d.Network, d.Address, d.StartBlock, c.Abi})
				}
			}
			t.SetStyle(table.StyleLight)
			t.Render()

			return nil
		},
	}
}
