package main

import (
	"github.com/spf13/cobra"

	"example.com/timeline/internal/render"
)

func newConnectionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "connections",
		Short: "List the connections whose timelines can be aggregated.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.upstream(cmd.Context())
			if err != nil {
				return err
			}
			profiles, err := client.Connections(cmd.Context())
			if err != nil {
				return err
			}
			return render.WriteConnections(cmd.OutOrStdout(), profiles)
		},
	}
}
