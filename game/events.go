package game

import "github.com/sai-kaneko-31/ito/domain"

// Inbound event names (client -> coordinator).
const (
	EventJoinRoom         = "join-room"
	EventPlayerReady      = "player-ready"
	EventSubmitExpression = "submit-expression"
	EventUpdatePositions  = "update-positions"
	EventRevealCards      = "reveal-cards"
)

// Outbound event names (coordinator -> client(s)).
const (
	EventRoomJoined          = "room-joined"
	EventPlayerJoined        = "player-joined"
	EventPlayerLeft          = "player-left"
	EventGameStarted         = "game-started"
	EventExpressionSubmitted = "expression-submitted"
	EventPositionsUpdated    = "positions-updated"
	EventGameFinished        = "game-finished"
	EventError               = "error"
)

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type playerReadyPayload struct {
	PlayerID string `json:"playerId"`
}

type submitExpressionPayload struct {
	PlayerID   string `json:"playerId"`
	Expression string `json:"expression"`
}

type updatePositionsPayload struct {
	Positions []domain.PlayerPosition `json:"positions"`
}

type gameStatePayload struct {
	GameState domain.GameState `json:"gameState"`
}

type playerPayload struct {
	Player domain.Player `json:"player"`
}

// playerIDPayload backs both player-left and expression-submitted.
type playerIDPayload struct {
	PlayerID string `json:"playerId"`
}

type positionsPayload struct {
	Positions []domain.PlayerPosition `json:"positions"`
}

type resultPayload struct {
	Result domain.GameResult `json:"result"`
}

type errorPayload struct {
	Message string `json:"message"`
}
