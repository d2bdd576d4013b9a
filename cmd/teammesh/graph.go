package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/teammesh/topology"
)

var graphMermaid bool

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the team graph",
	Long: `Print the run graph of the configured topology, including every nested
team. The default output is an indented tree; --mermaid emits a Mermaid
flowchart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		team, err := topology.Load(cfg.Topology)
		if err != nil {
			return err
		}

		mesh, err := newMesh(cfg, team, nil, nil)
		if err != nil {
			return err
		}

		g := mesh.Graph()
		if graphMermaid {
			fmt.Fprint(cmd.OutOrStdout(), g.Mermaid())
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), g.String())
		return nil
	},
}

func init() {
	graphCmd.Flags().BoolVar(&graphMermaid, "mermaid", false, "Emit a Mermaid flowchart")
}
