package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/quiverdb/quiver/internal/types"
)

// seedUsers spreads users with ages and cities over the shards.
func seedUsers(t *testing.T, g *Graph, count int) []uint64 {
	t.Helper()
	ctx := context.Background()
	if _, err := g.PropertyAdd(ctx, types.KindNode, "User", "age", "integer"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.PropertyAdd(ctx, types.KindNode, "User", "city", "string"); err != nil {
		t.Fatal(err)
	}
	cities := []string{"Paris", "Berlin", "Lisbon"}
	idList := make([]uint64, 0, count)
	for i := 0; i < count; i++ {
		body := fmt.Sprintf(`{"age": %d, "city": %q}`, 20+i, cities[i%len(cities)])
		id, err := g.NodeAdd(ctx, "User", fmt.Sprintf("u%d", i), []byte(body))
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		idList = append(idList, id)
	}
	return idList
}

func TestFindAcrossShards(t *testing.T) {
	g := newGraph(t, 3)
	ctx := context.Background()
	seedUsers(t, g, 12) // ages 20..31

	count, err := g.FindNodeCount(ctx, "User", "age", types.GTE, 26)
	if err != nil || count != 6 {
		t.Fatalf("count = %d %v", count, err)
	}
	idList, err := g.FindNodeIDs(ctx, "User", "age", types.GTE, 26, 0, 0)
	if err != nil || len(idList) != 6 {
		t.Fatalf("ids = %d %v", len(idList), err)
	}
	nodes, err := g.FindNodes(ctx, "User", "age", types.GTE, 26, 0, 0)
	if err != nil || len(nodes) != 6 {
		t.Fatalf("nodes = %d %v", len(nodes), err)
	}
	for _, n := range nodes {
		if n.Properties["age"].(int64) < 26 {
			t.Fatalf("bad hit %+v", n)
		}
	}
}

func TestFindPaginationAcrossShards(t *testing.T) {
	// Pages concatenate to the unpaged result regardless of partition.
	g := newGraph(t, 3)
	ctx := context.Background()
	seedUsers(t, g, 17)
	full, err := g.FindNodeIDs(ctx, "User", "age", types.GT, 0, 0, 0)
	if err != nil || len(full) != 17 {
		t.Fatalf("full = %d %v", len(full), err)
	}
	for _, pageSize := range []uint64{1, 3, 5, 16} {
		var paged []uint64
		for skip := uint64(0); ; skip += pageSize {
			page, err := g.FindNodeIDs(ctx, "User", "age", types.GT, 0, skip, pageSize)
			if err != nil {
				t.Fatal(err)
			}
			if len(page) == 0 {
				break
			}
			paged = append(paged, page...)
		}
		if len(paged) != len(full) {
			t.Fatalf("page size %d: %d items", pageSize, len(paged))
		}
		for i := range full {
			if paged[i] != full[i] {
				t.Fatalf("page size %d: order differs at %d", pageSize, i)
			}
		}
	}
}

func TestFindUnknownType(t *testing.T) {
	g := newGraph(t, 2)
	ctx := context.Background()
	count, err := g.FindNodeCount(ctx, "Ghost", "age", types.EQ, 1)
	if err != nil || count != 0 {
		t.Fatalf("count = %d %v", count, err)
	}
	idList, err := g.FindNodeIDs(ctx, "Ghost", "age", types.EQ, 1, 0, 0)
	if err != nil || idList != nil {
		t.Fatalf("ids = %v %v", idList, err)
	}
}

func TestFilterAcrossShards(t *testing.T) {
	g := newGraph(t, 3)
	ctx := context.Background()
	idList := seedUsers(t, g, 10) // ages 20..29
	// Filter half the population.
	input := idList[:6] // ages 20..25
	count, err := g.FilterNodeCount(ctx, input, "User", "age", types.GTE, 23)
	if err != nil || count != 3 {
		t.Fatalf("count = %d %v", count, err)
	}
	got, err := g.FilterNodeIDs(ctx, input, "User", "age", types.GTE, 23, 0, 0, types.SortNone)
	if err != nil || len(got) != 3 {
		t.Fatalf("filter = %v %v", got, err)
	}
	nodes, err := g.FilterNodes(ctx, input, "User", "age", types.GTE, 23, 0, 2, types.SortNone)
	if err != nil || len(nodes) != 2 {
		t.Fatalf("nodes = %d %v", len(nodes), err)
	}
}

func TestFilterSortedAcrossShards(t *testing.T) {
	g := newGraph(t, 3)
	ctx := context.Background()
	idList := seedUsers(t, g, 9) // ages 20..28
	asc, err := g.FilterNodeIDs(ctx, idList, "User", "age", types.GT, 0, 0, 4, types.SortAscending)
	if err != nil || len(asc) != 4 {
		t.Fatalf("asc = %v %v", asc, err)
	}
	// Ascending by age means insertion order here.
	for i, id := range asc {
		if id != idList[i] {
			t.Fatalf("asc[%d] = %d, want %d", i, id, idList[i])
		}
	}
	desc, err := g.FilterNodeIDs(ctx, idList, "User", "age", types.GT, 0, 0, 3, types.SortDescending)
	if err != nil || len(desc) != 3 {
		t.Fatalf("desc = %v %v", desc, err)
	}
	for i, id := range desc {
		if id != idList[len(idList)-1-i] {
			t.Fatalf("desc[%d] = %d", i, id)
		}
	}
	// Skip after sort.
	page, err := g.FilterNodeIDs(ctx, idList, "User", "age", types.GT, 0, 2, 2, types.SortAscending)
	if err != nil || len(page) != 2 || page[0] != idList[2] || page[1] != idList[3] {
		t.Fatalf("page = %v %v", page, err)
	}
}

func TestFilterRelationshipsSorted(t *testing.T) {
	g := newGraph(t, 2)
	ctx := context.Background()
	if _, err := g.PropertyAdd(ctx, types.KindRelationship, "RATED", "stars", "integer"); err != nil {
		t.Fatal(err)
	}
	a, _ := g.NodeAdd(ctx, "User", "rater", nil)
	var relIDs []uint64
	stars := []int64{3, 5, 1, 4, 2}
	for i, s := range stars {
		film, err := g.NodeAdd(ctx, "Film", fmt.Sprintf("f%d", i), nil)
		if err != nil {
			t.Fatal(err)
		}
		rel, err := g.RelationshipAdd(ctx, "RATED", a, film, []byte(fmt.Sprintf(`{"stars": %d}`, s)))
		if err != nil {
			t.Fatal(err)
		}
		relIDs = append(relIDs, rel)
	}
	top, err := g.FilterRelationshipIDs(ctx, relIDs, "RATED", "stars", types.GT, 0, 0, 2, types.SortDescending)
	if err != nil || len(top) != 2 {
		t.Fatalf("top = %v %v", top, err)
	}
	if top[0] != relIDs[1] || top[1] != relIDs[3] {
		t.Fatalf("top = %v, want [%d %d]", top, relIDs[1], relIDs[3])
	}
	rels, err := g.FilterRelationships(ctx, relIDs, "RATED", "stars", types.GT, 0, 0, 2, types.SortDescending)
	if err != nil || len(rels) != 2 || rels[0].Properties["stars"] != int64(5) {
		t.Fatalf("rels = %+v %v", rels, err)
	}
}

func TestFindRelationships(t *testing.T) {
	g := newGraph(t, 2)
	ctx := context.Background()
	if _, err := g.PropertyAdd(ctx, types.KindRelationship, "RATED", "stars", "integer"); err != nil {
		t.Fatal(err)
	}
	a, _ := g.NodeAdd(ctx, "User", "r", nil)
	for i, s := range []int64{1, 5, 3} {
		film, _ := g.NodeAdd(ctx, "Film", fmt.Sprintf("f%d", i), nil)
		if _, err := g.RelationshipAdd(ctx, "RATED", a, film, []byte(fmt.Sprintf(`{"stars": %d}`, s))); err != nil {
			t.Fatal(err)
		}
	}
	count, err := g.FindRelationshipCount(ctx, "RATED", "stars", types.GTE, 3)
	if err != nil || count != 2 {
		t.Fatalf("count = %d %v", count, err)
	}
	rels, err := g.FindRelationships(ctx, "RATED", "stars", types.GTE, 3, 0, 0)
	if err != nil || len(rels) != 2 {
		t.Fatalf("rels = %d %v", len(rels), err)
	}
}

func TestFindNodeIDsAllLeapfrog(t *testing.T) {
	g := newGraph(t, 3)
	ctx := context.Background()
	seedUsers(t, g, 12) // ages 20..31, cities rotating
	got, err := g.FindNodeIDsAll(ctx, "User", []Predicate{
		{Property: "age", Operation: types.GTE, Value: 24},
		{Property: "city", Operation: types.EQ, Value: "Paris"},
	}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Paris users are i % 3 == 0: ages 20, 23, 26, 29 -> two at ages >= 24.
	if len(got) != 2 {
		t.Fatalf("intersection = %v", got)
	}
	for _, id := range got {
		n, _ := g.NodeGet(ctx, id)
		if n.Properties["city"] != "Paris" || n.Properties["age"].(int64) < 24 {
			t.Fatalf("bad hit %+v", n)
		}
	}
	// Empty predicate list yields nothing.
	if got, err := g.FindNodeIDsAll(ctx, "User", nil, 0, 0); err != nil || got != nil {
		t.Fatalf("empty predicates = %v %v", got, err)
	}
}

func TestQueryIsNullAcrossShards(t *testing.T) {
	g := newGraph(t, 3)
	ctx := context.Background()
	idList := seedUsers(t, g, 8)
	// Tombstone two ages, remove one node outright.
	if ok, _ := g.NodePropertyDelete(ctx, idList[0], "age"); !ok {
		t.Fatal("delete property failed")
	}
	if ok, _ := g.NodePropertyDelete(ctx, idList[3], "age"); !ok {
		t.Fatal("delete property failed")
	}
	if ok, _ := g.NodeRemove(ctx, idList[7]); !ok {
		t.Fatal("remove failed")
	}
	nulls, err := g.FindNodeCount(ctx, "User", "age", types.IsNull, nil)
	if err != nil || nulls != 2 {
		t.Fatalf("nulls = %d %v", nulls, err)
	}
	notNulls, err := g.FindNodeCount(ctx, "User", "age", types.NotIsNull, nil)
	if err != nil || notNulls != 5 {
		t.Fatalf("not nulls = %d %v", notNulls, err)
	}
}
