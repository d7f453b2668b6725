package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/quiverdb/quiver"
)

func newDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Seed a small social graph and run sample queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if cfg.Metrics {
				shutdown, err := setupMetrics(ctx)
				if err != nil {
					return err
				}
				defer shutdown()
			}

			g := quiver.New(cfg)
			defer g.Close()
			return runDemo(ctx, cmd, g)
		},
	}
}

func runDemo(ctx context.Context, cmd *cobra.Command, g *quiver.Graph) error {
	if _, err := g.PropertyAdd(ctx, quiver.KindNode, "User", "age", "integer"); err != nil {
		return err
	}
	if _, err := g.PropertyAdd(ctx, quiver.KindNode, "User", "city", "string"); err != nil {
		return err
	}

	users := []struct {
		key        string
		properties string
	}{
		{"helene", `{"age": 34, "city": "Paris"}`},
		{"max", `{"age": 28, "city": "Berlin"}`},
		{"rosa", `{"age": 41, "city": "Lisbon"}`},
		{"dmitri", `{"age": 23, "city": "Berlin"}`},
	}
	idsByKey := make(map[string]uint64, len(users))
	for _, u := range users {
		id, err := g.NodeAdd(ctx, "User", u.key, []byte(u.properties))
		if err != nil {
			return fmt.Errorf("seed %s: %w", u.key, err)
		}
		idsByKey[u.key] = id
	}
	follows := [][2]string{
		{"helene", "max"}, {"max", "helene"}, {"rosa", "helene"}, {"dmitri", "rosa"},
	}
	for _, f := range follows {
		if _, err := g.RelationshipAdd(ctx, "FOLLOWS", idsByKey[f[0]], idsByKey[f[1]], nil); err != nil {
			return fmt.Errorf("follow %s -> %s: %w", f[0], f[1], err)
		}
	}

	over25, err := g.FindNodes(ctx, "User", "age", quiver.GT, 25, 0, 0)
	if err != nil {
		return err
	}
	cmd.Println("users over 25:")
	for _, n := range over25 {
		body, _ := json.Marshal(n)
		cmd.Printf("  %s\n", body)
	}

	degree, err := g.NodeDegreeByKey(ctx, "User", "helene", quiver.In, "FOLLOWS")
	if err != nil {
		return err
	}
	cmd.Printf("helene followers: %d\n", degree)

	neighbors, err := g.NodeNeighborsByKey(ctx, "User", "helene", quiver.Both)
	if err != nil {
		return err
	}
	cmd.Println("helene neighborhood:")
	for _, n := range neighbors {
		cmd.Printf("  %s\n", n.Key)
	}
	return nil
}
