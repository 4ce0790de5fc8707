package game

import "time"

// Event type names routed through the bus. Handlers subscribe to these
// strings; each name maps to exactly one payload struct below.
const (
	EventLobbyCreated       = "lobby.created"
	EventLobbyUpdated       = "lobby.updated"
	EventLobbyDeleted       = "lobby.deleted"
	EventLobbyStatusChanged = "lobby.status.changed"
	EventPlayerJoined       = "lobby.player.joined"
	EventPlayerLeft         = "lobby.player.left"
	EventGameStarted        = "game.started"
	EventGameTurnChanged    = "game.turn.changed"
	EventGameFinished       = "game.finished"
	EventUserLoggedIn       = "user.logged.in"
)

// LobbyStatus is the lifecycle state of a lobby.
type LobbyStatus string

const (
	LobbyStatusOpen     LobbyStatus = "open"
	LobbyStatusFull     LobbyStatus = "full"
	LobbyStatusPlaying  LobbyStatus = "playing"
	LobbyStatusFinished LobbyStatus = "finished"
)

// Player is a lobby participant.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is an authenticated account, distinct from its per-lobby Player role.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Lobby is the snapshot of a lobby carried inside lobby events.
type Lobby struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	HostID     string      `json:"host_id"`
	Status     LobbyStatus `json:"status"`
	MaxPlayers int         `json:"max_players"`
	Players    []Player    `json:"players"`
}

// LobbyCreated is published after a lobby has been persisted.
type LobbyCreated struct {
	Lobby Lobby `json:"lobby"`
}

func (LobbyCreated) EventType() string { return EventLobbyCreated }

// LobbyUpdated is published after lobby settings change.
type LobbyUpdated struct {
	Lobby Lobby `json:"lobby"`
}

func (LobbyUpdated) EventType() string { return EventLobbyUpdated }

// LobbyDeleted is published after a lobby has been removed.
type LobbyDeleted struct {
	LobbyID string `json:"lobby_id"`
}

func (LobbyDeleted) EventType() string { return EventLobbyDeleted }

// LobbyStatusChanged is published when a lobby transitions between states,
// typically as a cascade of a player or game event.
type LobbyStatusChanged struct {
	LobbyID string      `json:"lobby_id"`
	Status  LobbyStatus `json:"status"`
}

func (LobbyStatusChanged) EventType() string { return EventLobbyStatusChanged }

// PlayerJoined is published after a player enters a lobby.
type PlayerJoined struct {
	LobbyID string `json:"lobby_id"`
	Player  Player `json:"player"`
}

func (PlayerJoined) EventType() string { return EventPlayerJoined }

// PlayerLeft is published after a player leaves or is removed from a lobby.
type PlayerLeft struct {
	LobbyID string `json:"lobby_id"`
	Player  Player `json:"player"`
}

func (PlayerLeft) EventType() string { return EventPlayerLeft }

// GameStarted is published when a lobby's game begins.
type GameStarted struct {
	LobbyID string `json:"lobby_id"`
	GameID  string `json:"game_id"`
}

func (GameStarted) EventType() string { return EventGameStarted }

// GameTurnChanged is published when the active turn passes to another player.
type GameTurnChanged struct {
	LobbyID  string `json:"lobby_id"`
	GameID   string `json:"game_id"`
	Turn     int    `json:"turn"`
	PlayerID string `json:"player_id"`
}

func (GameTurnChanged) EventType() string { return EventGameTurnChanged }

// GameFinished is published when a game concludes.
type GameFinished struct {
	LobbyID    string    `json:"lobby_id"`
	GameID     string    `json:"game_id"`
	WinnerID   string    `json:"winner_id,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

func (GameFinished) EventType() string { return EventGameFinished }

// UserLoggedIn is published after a successful authentication.
type UserLoggedIn struct {
	User User `json:"user"`
}

func (UserLoggedIn) EventType() string { return EventUserLoggedIn }
