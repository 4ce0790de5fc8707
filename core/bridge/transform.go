package bridge

import (
	"github.com/dmitrymomot/gamekit/core/bus"
	"github.com/dmitrymomot/gamekit/core/game"
	"github.com/dmitrymomot/gamekit/core/push"
)

// GlobalLobbiesChannel receives every list-affecting lobby event, feeding
// views that show all active lobbies.
const GlobalLobbiesChannel = "lobbies"

// LobbyChannel returns the channel name scoped to one lobby.
func LobbyChannel(lobbyID string) string { return "lobby:" + lobbyID }

// UserChannel returns the channel name scoped to one user.
func UserChannel(userID string) string { return "user:" + userID }

// LobbyScoped lets payload types outside the game package route themselves
// to a lobby channel through the bridge's envelope fallback.
type LobbyScoped interface {
	TargetLobbyID() string
}

// UserScoped is the user-channel counterpart of LobbyScoped.
type UserScoped interface {
	TargetUserID() string
}

// envelope is the generic wire shape for broadcastable payload types the
// bridge has no dedicated mapping for.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// transform maps a domain event to its wire message and target channels.
// The mapping is a pure function per payload type and is total: payload
// types without a dedicated case fall back to a generic envelope instead
// of failing.
//
// List-affecting lobby events go to the global lobbies channel in addition
// to their entity-scoped channel.
func (b *Bridge) transform(event bus.Event) (push.Message, []string) {
	switch p := event.Payload.(type) {
	case game.LobbyCreated:
		return push.NewMessage(game.EventLobbyCreated, p),
			[]string{LobbyChannel(p.Lobby.ID), GlobalLobbiesChannel}

	case game.LobbyUpdated:
		return push.NewMessage(game.EventLobbyUpdated, p),
			[]string{LobbyChannel(p.Lobby.ID), GlobalLobbiesChannel}

	case game.LobbyDeleted:
		return push.NewMessage(game.EventLobbyDeleted, p),
			[]string{LobbyChannel(p.LobbyID), GlobalLobbiesChannel}

	case game.LobbyStatusChanged:
		return push.NewMessage(game.EventLobbyStatusChanged, p),
			[]string{LobbyChannel(p.LobbyID), GlobalLobbiesChannel}

	case game.PlayerJoined:
		return push.NewMessage(game.EventPlayerJoined, p),
			[]string{LobbyChannel(p.LobbyID)}

	case game.PlayerLeft:
		return push.NewMessage(game.EventPlayerLeft, p),
			[]string{LobbyChannel(p.LobbyID)}

	case game.GameStarted:
		return push.NewMessage(game.EventGameStarted, p),
			[]string{LobbyChannel(p.LobbyID)}

	case game.GameTurnChanged:
		return push.NewMessage(game.EventGameTurnChanged, p),
			[]string{LobbyChannel(p.LobbyID)}

	case game.GameFinished:
		return push.NewMessage(game.EventGameFinished, p),
			[]string{LobbyChannel(p.LobbyID)}

	case game.UserLoggedIn:
		return push.NewMessage(game.EventUserLoggedIn, p),
			[]string{UserChannel(p.User.ID)}

	default:
		msg := push.NewMessage(event.Name, envelope{Event: event.Name, Data: event.Payload})

		var targets []string
		if scoped, ok := event.Payload.(LobbyScoped); ok {
			targets = append(targets, LobbyChannel(scoped.TargetLobbyID()))
		}
		if scoped, ok := event.Payload.(UserScoped); ok {
			targets = append(targets, UserChannel(scoped.TargetUserID()))
		}
		return msg, targets
	}
}
