// Package quiver provides the public API of the quiver graph engine: an
// in-memory, sharded property graph of typed nodes and directed
// relationships with a columnar property layer, typed find/filter queries,
// and graph traversal primitives.
//
// This package exports only the types and the constructor that embedders
// need; the implementation lives under internal/. Transport adapters (HTTP,
// scripting) sit on top of *Graph and stay out of this module.
package quiver

import (
	"github.com/quiverdb/quiver/internal/config"
	"github.com/quiverdb/quiver/internal/debug"
	"github.com/quiverdb/quiver/internal/graph"
	"github.com/quiverdb/quiver/internal/types"
)

// Core entity and query types.
type (
	Node         = types.Node
	Relationship = types.Relationship
	Link         = types.Link
	Group        = types.Group
	Operation    = types.Operation
	Direction    = types.Direction
	Sort         = types.Sort
	Kind         = types.Kind
	DataType     = types.DataType
	Predicate    = graph.Predicate
	Config       = config.Config
)

// Graph is the engine handle. All methods are safe for concurrent use;
// every operation routes to the single-threaded shard that owns its data.
type Graph = graph.Graph

// Comparison operations.
const (
	EQ            = types.EQ
	NEQ           = types.NEQ
	GT            = types.GT
	GTE           = types.GTE
	LT            = types.LT
	LTE           = types.LTE
	IsNull        = types.IsNull
	NotIsNull     = types.NotIsNull
	StartsWith    = types.StartsWith
	Contains      = types.Contains
	EndsWith      = types.EndsWith
	NotStartsWith = types.NotStartsWith
	NotContains   = types.NotContains
	NotEndsWith   = types.NotEndsWith
	UnknownOp     = types.UnknownOperation
)

// Traversal directions.
const (
	Both = types.DirectionBoth
	In   = types.DirectionIn
	Out  = types.DirectionOut
)

// Sort orders for filter queries.
const (
	SortNone       = types.SortNone
	SortAscending  = types.SortAscending
	SortDescending = types.SortDescending
)

// Entity kinds for schema operations.
const (
	KindNode         = types.KindNode
	KindRelationship = types.KindRelationship
)

// Sentinel errors; match with errors.Is.
var (
	ErrNotFound         = types.ErrNotFound
	ErrAlreadyExists    = types.ErrAlreadyExists
	ErrInvalidArgument  = types.ErrInvalidArgument
	ErrSchemaMismatch   = types.ErrSchemaMismatch
	ErrPropertyCoercion = types.ErrPropertyCoercion
	ErrCancelled        = types.ErrCancelled
	ErrOverflow         = types.ErrOverflow
)

// ParseOperation maps operator spellings ("eq", ">=", "starts_with") to
// Operations.
func ParseOperation(s string) Operation { return types.ParseOperation(s) }

// ParseDirection maps "in"/"out" to directions; anything else means both.
func ParseDirection(s string) Direction { return types.ParseDirection(s) }

// New starts a graph with the given configuration.
func New(cfg *Config) *Graph {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.Verbose {
		debug.SetVerbose(true)
	}
	return graph.New(cfg.Name, cfg.Shards)
}

// LoadConfig reads settings from the given file (or the default search
// path when empty) with QUIVER_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
