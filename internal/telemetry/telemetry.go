// Package telemetry registers the engine's OpenTelemetry instruments. The
// counters are created against the global meter provider, so they are inert
// no-ops unless the embedding process installs an SDK (the CLI does behind
// --metrics).
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("github.com/quiverdb/quiver")

	nodesCreated     metric.Int64Counter
	nodesRemoved     metric.Int64Counter
	relsCreated      metric.Int64Counter
	relsRemoved      metric.Int64Counter
	queriesServed    metric.Int64Counter
	traversalsServed metric.Int64Counter
)

func init() {
	nodesCreated, _ = meter.Int64Counter("quiver.nodes.created")
	nodesRemoved, _ = meter.Int64Counter("quiver.nodes.removed")
	relsCreated, _ = meter.Int64Counter("quiver.relationships.created")
	relsRemoved, _ = meter.Int64Counter("quiver.relationships.removed")
	queriesServed, _ = meter.Int64Counter("quiver.queries.served")
	traversalsServed, _ = meter.Int64Counter("quiver.traversals.served")
}

func NodeCreated(ctx context.Context)         { nodesCreated.Add(ctx, 1) }
func NodeRemoved(ctx context.Context)         { nodesRemoved.Add(ctx, 1) }
func RelationshipCreated(ctx context.Context) { relsCreated.Add(ctx, 1) }
func RelationshipRemoved(ctx context.Context) { relsRemoved.Add(ctx, 1) }
func QueryServed(ctx context.Context)         { queriesServed.Add(ctx, 1) }
func TraversalServed(ctx context.Context)     { traversalsServed.Add(ctx, 1) }
