// Package push tracks long-lived client connections, groups them into
// named broadcast channels, and fans serialized messages out to them.
//
// # Ownership Model
//
// ConnectionRegistry exclusively owns Connection objects and indexes them
// by connection id and by owning user. ChannelRegistry holds only
// connection ids and always consults the connection registry for liveness
// before treating a membership as deliverable.
//
// The transport is self-healing: a failed send evicts the connection from
// the registry and prunes it from the channel that was broadcasting, and a
// channel whose membership becomes empty is deleted immediately. A Janitor
// additionally sweeps both registries on an interval as defense against
// connections that die silently.
//
// # Senders
//
// A Connection wraps a Sender, the abstraction over the actual wire:
//
//   - WSSender writes JSON frames to a gorilla/websocket connection.
//   - SSEStream buffers messages and serves them as Server-Sent Events
//     frames; a full buffer counts as a failed send so slow consumers are
//     pruned instead of stalling broadcasts.
//
// # Typical Wiring
//
//	conns := push.NewConnectionRegistry(push.WithConnectionLogger(log))
//	channels := push.NewChannelRegistry(conns, push.WithChannelLogger(log))
//	janitor := push.NewJanitor(conns, channels, push.WithJanitorInterval(cfg.CleanupInterval))
//
//	// per client connection, e.g. in the WebSocket upgrade handler:
//	conn := push.NewConnection("", userID, push.NewWSSender(ws))
//	if err := conns.Add(conn); err != nil { ... }
//	if err := channels.Subscribe("lobby:"+lobbyID, conn.ID()); err != nil { ... }
//
//	// fanout:
//	channels.Broadcast(ctx, "lobby:"+lobbyID, push.NewMessage("lobby.player.joined", payload))
//
// Broadcast issues all sends for a channel concurrently and guarantees each
// alive member receives the message at most once per call; ordering across
// different connections is not defined.
package push
