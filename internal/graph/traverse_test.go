package graph

import (
	"context"
	"testing"

	"github.com/quiverdb/quiver/internal/types"
)

// buildTriangle wires likes/knows edges around three users and returns
// their ids as (a, b, c).
func buildTriangle(t *testing.T, g *Graph) (uint64, uint64, uint64) {
	t.Helper()
	ctx := context.Background()
	a, err := g.NodeAdd(ctx, "User", "a", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.NodeAdd(ctx, "User", "b", nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := g.NodeAdd(ctx, "User", "c", nil)
	if err != nil {
		t.Fatal(err)
	}
	edges := []struct {
		relType  string
		from, to uint64
	}{
		{"KNOWS", a, b},
		{"KNOWS", b, c},
		{"LIKES", a, b},
		{"LIKES", c, a},
	}
	for _, e := range edges {
		if _, err := g.RelationshipAdd(ctx, e.relType, e.from, e.to, nil); err != nil {
			t.Fatalf("edge %s: %v", e.relType, err)
		}
	}
	return a, b, c
}

func TestDegreeDirections(t *testing.T) {
	g := newGraph(t, 2)
	ctx := context.Background()
	a, b, c := buildTriangle(t, g)

	tests := []struct {
		name      string
		node      uint64
		direction types.Direction
		relTypes  []string
		want      uint64
	}{
		{"a out all", a, types.DirectionOut, nil, 2},
		{"a in all", a, types.DirectionIn, nil, 1},
		{"a both all", a, types.DirectionBoth, nil, 3},
		{"a out knows", a, types.DirectionOut, []string{"KNOWS"}, 1},
		{"a both likes", a, types.DirectionBoth, []string{"LIKES"}, 2},
		{"b in all", b, types.DirectionIn, nil, 2},
		{"b both set", b, types.DirectionBoth, []string{"KNOWS", "LIKES"}, 3},
		{"c both unknown type", c, types.DirectionBoth, []string{"GHOST"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.NodeDegree(ctx, tt.node, tt.direction, tt.relTypes...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("degree = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNeighborsDirectionAndTypes(t *testing.T) {
	g := newGraph(t, 2)
	ctx := context.Background()
	a, b, _ := buildTriangle(t, g)

	out, err := g.NodeNeighbors(ctx, a, types.DirectionOut)
	if err != nil {
		t.Fatal(err)
	}
	// a -> b twice (KNOWS and LIKES): one neighbor per link.
	if len(out) != 2 || out[0].ID != b || out[1].ID != b {
		t.Fatalf("out neighbors = %+v", out)
	}
	likes, err := g.NodeNeighbors(ctx, a, types.DirectionBoth, "LIKES")
	if err != nil {
		t.Fatal(err)
	}
	if len(likes) != 2 {
		t.Fatalf("likes neighborhood = %+v", likes)
	}
}

func TestRelationshipsByKeyAndTypeSet(t *testing.T) {
	g := newGraph(t, 2)
	ctx := context.Background()
	buildTriangle(t, g)

	rels, err := g.NodeRelationshipsByKey(ctx, "User", "a", types.DirectionBoth, "KNOWS", "LIKES")
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 3 {
		t.Fatalf("rels = %d", len(rels))
	}
	knows, err := g.NodeRelationshipsByKey(ctx, "User", "a", types.DirectionOut, "KNOWS")
	if err != nil || len(knows) != 1 || knows[0].Type != "KNOWS" {
		t.Fatalf("knows = %+v %v", knows, err)
	}
	degree, err := g.NodeDegreeByKey(ctx, "User", "b", types.DirectionIn)
	if err != nil || degree != 2 {
		t.Fatalf("by-key degree = %d %v", degree, err)
	}
	// Missing key yields zero results, not an error.
	none, err := g.NodeRelationshipsByKey(ctx, "User", "ghost", types.DirectionBoth)
	if err != nil || none != nil {
		t.Fatalf("ghost rels = %v %v", none, err)
	}
}

func TestConnectedTypeFilter(t *testing.T) {
	g := newGraph(t, 2)
	ctx := context.Background()
	a, b, _ := buildTriangle(t, g)

	all, err := g.NodeConnected(ctx, a, b, types.DirectionOut)
	if err != nil || len(all) != 2 {
		t.Fatalf("connected all = %d %v", len(all), err)
	}
	likes, err := g.NodeConnected(ctx, a, b, types.DirectionOut, "LIKES")
	if err != nil || len(likes) != 1 || likes[0].Type != "LIKES" {
		t.Fatalf("connected likes = %+v %v", likes, err)
	}
	byKeys, err := g.NodeConnectedByKeys(ctx, "User", "a", "User", "b", types.DirectionOut)
	if err != nil || len(byKeys) != 2 {
		t.Fatalf("connected by keys = %d %v", len(byKeys), err)
	}
	none, err := g.NodeConnected(ctx, a, b, types.DirectionIn)
	if err != nil || len(none) != 0 {
		t.Fatalf("connected wrong direction = %d %v", len(none), err)
	}
}

func TestTraversalOnDeadNode(t *testing.T) {
	g := newGraph(t, 2)
	ctx := context.Background()
	a, _, _ := buildTriangle(t, g)
	if ok, err := g.NodeRemove(ctx, a); err != nil || !ok {
		t.Fatalf("remove: %v %v", ok, err)
	}
	degree, err := g.NodeDegree(ctx, a, types.DirectionBoth)
	if err != nil || degree != 0 {
		t.Fatalf("dead degree = %d %v", degree, err)
	}
	neighbors, err := g.NodeNeighbors(ctx, a, types.DirectionBoth)
	if err != nil || len(neighbors) != 0 {
		t.Fatalf("dead neighbors = %v %v", neighbors, err)
	}
}
