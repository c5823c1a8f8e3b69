package chat

import "github.com/vnetserg/mafia/internal/login"

// PlayerID identifies a player to Game; it is the same id as the
// underlying connection and user.
type PlayerID = login.UserID

// Player is what Chat hands to Game: a user plus the sink Game uses to
// change that user's MuteLevel. It is valid for as long as the underlying
// Participant exists.
type Player struct {
	user     login.User
	requests chan<- ChatRequest
}

// NewPlayerForTest constructs a Player around an arbitrary user and request
// sink. It exists so Game's tests can drive player state without a real
// chat.Service loop.
func NewPlayerForTest(user login.User, requests chan<- ChatRequest) Player {
	return Player{user: user, requests: requests}
}

// ID returns the player's id.
func (p Player) ID() PlayerID { return p.user.ID() }

// Login returns the player's account name.
func (p Player) Login() string { return p.user.Login() }

// Send queues a line for delivery to this player.
func (p Player) Send(message string) { p.user.Send(message) }

// Disconnect requests that this player's connection be torn down.
func (p Player) Disconnect() { p.user.Close() }

// Mute replaces this player's MuteLevel. Unknown (already-departed) ids are
// silently ignored by the service that consumes the request.
func (p Player) Mute(level MuteLevel) {
	p.requests <- MuteRequest{ID: p.user.ID(), Level: level}
}

// GameEvent is the vocabulary Chat emits upward to Game (spec.md §4.3/§4.5).
type GameEvent interface{ isGameEvent() }

// Connected announces a newly authenticated, chat-registered player.
type Connected struct{ Player Player }

// Disconnected announces that a previously Connected player is gone.
type Disconnected struct{ ID PlayerID }

// Action is a verbatim "!!text" line forwarded to Game.
type Action struct {
	ID   PlayerID
	Text string
}

// CommandList, CommandObserve, CommandPlay, CommandPause, CommandStart
// mirror the "!list"/"!observe"/"!play"/"!pause"/"!start" commands.
type CommandList struct{ ID PlayerID }
type CommandObserve struct{ ID PlayerID }
type CommandPlay struct{ ID PlayerID }
type CommandPause struct{ ID PlayerID }
type CommandStart struct{ ID PlayerID }

func (Connected) isGameEvent()      {}
func (Disconnected) isGameEvent()   {}
func (Action) isGameEvent()         {}
func (CommandList) isGameEvent()    {}
func (CommandObserve) isGameEvent() {}
func (CommandPlay) isGameEvent()    {}
func (CommandPause) isGameEvent()   {}
func (CommandStart) isGameEvent()   {}

// ChatRequest is the side-channel downward vocabulary Game uses to affect
// Chat's Participant state.
type ChatRequest interface{ isChatRequest() }

// MuteRequest replaces a Participant's MuteLevel wholesale.
type MuteRequest struct {
	ID    PlayerID
	Level MuteLevel
}

func (MuteRequest) isChatRequest() {}
