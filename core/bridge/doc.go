// Package bridge connects the event bus to the push transport: it is the
// bus handler that turns broadcastable domain events into wire messages and
// routes them to the channels that should receive them.
//
// Only event types on an explicit allow-list are pushed; everything else
// stays internal. Each allow-listed payload type has a dedicated transform
// case mapping it to a transport message and its target channels, with a
// generic envelope fallback keeping the mapping total for payload types
// added faster than their transforms.
//
// Channel naming follows entity-kind:entity-id for entity-scoped channels
// (LobbyChannel, UserChannel) plus the fixed GlobalLobbiesChannel for
// list-affecting lobby events.
//
// Wiring:
//
//	b := bridge.New(channels, bridge.WithLogger(log))
//	unsubscribe := b.Register(eventBus)
//	defer unsubscribe()
//
// A broadcast that reaches nobody is not an error: the bridge logs delivery
// outcomes and always reports handler success, so a lack of subscribers
// never pollutes bus error statistics.
package bridge
