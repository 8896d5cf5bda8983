package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/algopath/community-bot"

var (
	metricsOnce    sync.Once
	repoOps        metric.Int64Counter
	botEvents      metric.Int64Counter
	voteEvents     metric.Int64Counter
	inviteRequests metric.Int64Counter
)

func initMetrics() {
	meter := otel.Meter(meterName)
	repoOps, _ = meter.Int64Counter("repository_operations_total",
		metric.WithDescription("Datastore operations by entity, operation and outcome"))
	botEvents, _ = meter.Int64Counter("bot_events_total",
		metric.WithDescription("Handled chat events by kind and outcome"))
	voteEvents, _ = meter.Int64Counter("vote_events_total",
		metric.WithDescription("Vote reconciliation decisions"))
	inviteRequests, _ = meter.Int64Counter("invite_requests_total",
		metric.WithDescription("Invite endpoint requests by outcome"))
}

func RecordRepositoryOperation(ctx context.Context, entity, op, outcome string) {
	metricsOnce.Do(initMetrics)
	repoOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func RecordBotEvent(ctx context.Context, kind, outcome string) {
	metricsOnce.Do(initMetrics)
	botEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func RecordVoteEvent(ctx context.Context, decision string) {
	metricsOnce.Do(initMetrics)
	voteEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", decision),
	))
}

func RecordInviteRequest(ctx context.Context, outcome string) {
	metricsOnce.Do(initMetrics)
	inviteRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
