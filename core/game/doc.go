// Package game defines the domain event payloads exchanged over the event
// bus by the lobby/game backend.
//
// Each payload struct implements bus.Payload with a fixed event type name,
// forming a tagged union: one struct per name, no dynamic payload shapes.
// Downstream consumers such as the transport bridge can switch exhaustively
// over these types.
//
// The package intentionally contains no game rules. It is the vocabulary
// the application layer uses to announce state changes after persisting
// them; the rules of any specific card game live with that layer.
package game
