package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/quiverdb/quiver"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Start an empty engine and print its layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			g := quiver.New(cfg)
			defer g.Close()

			cmd.Printf("graph:  %s\n", g.Name())
			cmd.Printf("shards: %d\n", g.ShardCount())
			nodeTypes, err := g.TypesList(ctx, quiver.KindNode)
			if err != nil {
				return err
			}
			relTypes, err := g.TypesList(ctx, quiver.KindRelationship)
			if err != nil {
				return err
			}
			cmd.Printf("node types: %d, relationship types: %d\n", len(nodeTypes), len(relTypes))
			return nil
		},
	}
}
