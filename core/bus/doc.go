// Package bus provides an in-process publish/subscribe event bus with
// priority-ordered handlers, per-handler timeouts, parallel or sequential
// batch execution, cascading events, and running statistics.
//
// # Core Components
//
// Event carries a typed payload plus causal metadata (ID, CorrelationID,
// CausationID). CorrelationID is propagated unchanged through cascades so a
// whole chain of notifications can be traced back to its root cause.
//
// Handler is the capability interface for event consumers: a name, a
// priority, a predicate, an optional timeout, the Handle method, and
// OnSuccess/OnError outcome hooks. BaseHandler supplies no-op defaults, and
// NewHandlerFunc builds handlers from closures with functional options.
//
// Bus routes published events to subscribed handlers. Publish schedules a
// batch and returns immediately; PublishAndWait blocks until every handler
// in the batch has settled and returns their ExecutionResults.
//
// # Failure Semantics
//
// A failing or slow handler degrades only its own success rate. It never
// prevents sibling handlers from running, never aborts the event, and never
// surfaces as an error to the publisher. The only errors Publish and
// PublishAndWait return are scheduling errors for malformed events. Handler
// outcomes are observable through Stats, logs, and the handlers' own hooks.
//
// A handler that exceeds its timeout has cancellation propagated through
// its context, and its result is recorded as a failure immediately. The bus
// does not forcibly stop the goroutine: a handler that ignores its context
// keeps running in the background and its eventual result is discarded.
//
// # Cascades
//
// Handlers may return generated events from Handle. After the parent batch
// completes, the bus normalizes their correlation metadata and publishes
// them through itself, so one domain event can fan out into further
// notifications. Cascade depth is capped by Config.MaxCascadeDepth; chains
// past the cap are dropped and counted as errors.
//
// # Basic Usage
//
//	eventBus := bus.New(
//		bus.WithLogger(logger),
//		bus.WithHandlerTimeout(5*time.Second),
//	)
//
//	unsubscribe := eventBus.Subscribe("lobby.player.joined", bus.NewHandlerFunc(
//		"notify-lobby",
//		func(ctx context.Context, evt bus.Event) ([]bus.Event, error) {
//			joined := evt.Payload.(game.PlayerJoined)
//			return []bus.Event{
//				bus.NewChildEvent(evt, game.LobbyStatusChanged{LobbyID: joined.LobbyID}),
//			}, nil
//		},
//	))
//	defer unsubscribe()
//
//	if err := eventBus.Publish(ctx, bus.NewEvent(game.PlayerJoined{LobbyID: "L1"})); err != nil {
//		// only scheduling errors arrive here
//	}
package bus
