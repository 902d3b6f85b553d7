package domain

import "time"

// Phase is the room's stage in its fixed forward-only sequence.
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseExpressing Phase = "expressing"
	PhaseArranging  Phase = "arranging"
	PhaseFinished   Phase = "finished"
)

const (
	MinPlayers    = 2
	MaxRoomSize   = 10
	MaxNameLen    = 20
	MaxClueLen    = 100
	RoomCodeLen   = 6
	CardDeckSize  = 100
	DefaultLimit  = 6
	RetentionTime = 24 * time.Hour
)

type Game struct {
	ID           string    `bson:"_id" json:"id"`
	RoomCode     string    `bson:"roomCode" json:"roomCode"`
	HostID       string    `bson:"hostId" json:"hostId"`
	Phase        Phase     `bson:"status" json:"status"`
	Theme        string    `bson:"theme" json:"theme"`
	MaxPlayers   int       `bson:"maxPlayers" json:"maxPlayers"`
	CurrentRound int       `bson:"currentRound" json:"currentRound"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Player is one connected participant of a game. CardNumber and Position
// use zero as "unset"; assigned cards are always in 1..CardDeckSize.
type Player struct {
	ID         string    `bson:"_id" json:"id"`
	GameID     string    `bson:"gameId" json:"gameId"`
	Name       string    `bson:"name" json:"name"`
	SocketID   string    `bson:"socketId" json:"socketId"`
	CardNumber int       `bson:"cardNumber,omitempty" json:"cardNumber,omitempty"`
	Expression string    `bson:"expression,omitempty" json:"expression,omitempty"`
	Position   int       `bson:"position,omitempty" json:"position,omitempty"`
	IsReady    bool      `bson:"isReady" json:"isReady"`
	JoinedAt   time.Time `bson:"joinedAt" json:"joinedAt"`
}

type Theme struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Examples    ThemeExamples `json:"examples"`
	Category    string        `json:"category"`
}

type ThemeExamples struct {
	Low  string `json:"low"`
	High string `json:"high"`
}

// GameState is the full room snapshot sent to clients.
type GameState struct {
	Game    Game     `json:"game"`
	Players []Player `json:"players"`
	Theme   string   `json:"theme"`
	Phase   Phase    `json:"phase"`
}

type PlayerPosition struct {
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
}

type PlayerResult struct {
	Name          string `json:"name"`
	CardNumber    int    `json:"cardNumber"`
	Expression    string `json:"expression"`
	FinalPosition int    `json:"finalPosition"`
}

// GameResult is the round judgement: CorrectOrder is ascending by card
// number, PlayerOrder is ascending by the positions the group arranged.
type GameResult struct {
	Success      bool           `json:"success"`
	CorrectOrder []PlayerResult `json:"correctOrder"`
	PlayerOrder  []PlayerResult `json:"playerOrder"`
}
