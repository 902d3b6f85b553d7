package game

import (
	"context"
	"time"

	"github.com/sai-kaneko-31/ito/domain"
)

// GameStore is the game-document side of the persistence collaborator.
type GameStore interface {
	FindGameByCode(ctx context.Context, code string) (domain.Game, error)
	FindGameByID(ctx context.Context, id string) (domain.Game, error)
	InsertGame(ctx context.Context, g domain.Game) error
	UpdateGame(ctx context.Context, g domain.Game) error
	DeleteGame(ctx context.Context, id string) error
	PurgeIdleGames(ctx context.Context, cutoff time.Time) (int64, error)
}

// PlayerStore is the player-document side. ListPlayersByGame returns
// players in join order, which every ordering decision here relies on.
type PlayerStore interface {
	ListPlayersByGame(ctx context.Context, gameID string) ([]domain.Player, error)
	FindPlayerByID(ctx context.Context, id string) (domain.Player, error)
	FindPlayerBySocketID(ctx context.Context, socketID string) (domain.Player, error)
	InsertPlayer(ctx context.Context, p domain.Player) error
	UpdatePlayer(ctx context.Context, p domain.Player) error
	DeletePlayer(ctx context.Context, id string) error
	DeletePlayersByGame(ctx context.Context, gameID string) error
	AssignCards(ctx context.Context, cards map[string]int) error
	SetPositions(ctx context.Context, positions []domain.PlayerPosition) error
}

type Store interface {
	GameStore
	PlayerStore
}
