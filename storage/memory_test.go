package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-kaneko-31/ito/domain"
)

func seedGame(t *testing.T, s *MemoryStore, id, code string) domain.Game {
	t.Helper()
	g := domain.Game{ID: id, RoomCode: code, Phase: domain.PhaseWaiting, MaxPlayers: 4}
	require.NoError(t, s.InsertGame(context.Background(), g))
	got, err := s.FindGameByID(context.Background(), id)
	require.NoError(t, err)
	return got
}

func TestMemoryStore_GameLifecycle(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	g := seedGame(t, s, "g1", "AB12C3")
	assert.False(t, g.CreatedAt.IsZero())
	assert.False(t, g.UpdatedAt.IsZero())

	// Lookup by code is case-insensitive.
	byCode, err := s.FindGameByCode(ctx, "ab12c3")
	require.NoError(t, err)
	assert.Equal(t, "g1", byCode.ID)

	g.Phase = domain.PhaseExpressing
	require.NoError(t, s.UpdateGame(ctx, g))
	got, err := s.FindGameByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseExpressing, got.Phase)
	assert.True(t, got.UpdatedAt.After(g.CreatedAt) || got.UpdatedAt.Equal(g.CreatedAt))

	require.NoError(t, s.DeleteGame(ctx, "g1"))
	_, err = s.FindGameByID(ctx, "g1")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestMemoryStore_UpdateMissingGame(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	err := s.UpdateGame(context.Background(), domain.Game{ID: "ghost"})

	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestMemoryStore_PlayersKeepJoinOrder(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()
	seedGame(t, s, "g1", "AB12C3")

	base := time.Now()
	// Insert out of timestamp order to prove sorting is by JoinedAt.
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p2", GameID: "g1", Name: "B", JoinedAt: base.Add(time.Second)}))
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p1", GameID: "g1", Name: "A", JoinedAt: base}))
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p3", GameID: "g1", Name: "C", JoinedAt: base.Add(2 * time.Second)}))

	players, err := s.ListPlayersByGame(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{players[0].ID, players[1].ID, players[2].ID})
}

func TestMemoryStore_TimestampTiesBreakByInsertionOrder(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()
	seedGame(t, s, "g1", "AB12C3")

	ts := time.Now()
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "pa", GameID: "g1", JoinedAt: ts}))
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "pb", GameID: "g1", JoinedAt: ts}))
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "pc", GameID: "g1", JoinedAt: ts}))

	players, err := s.ListPlayersByGame(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, []string{"pa", "pb", "pc"}, []string{players[0].ID, players[1].ID, players[2].ID})
}

func TestMemoryStore_PlayerLookups(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()
	seedGame(t, s, "g1", "AB12C3")
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p1", GameID: "g1", SocketID: "sock-1", JoinedAt: time.Now()}))

	bySocket, err := s.FindPlayerBySocketID(ctx, "sock-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", bySocket.ID)

	_, err = s.FindPlayerByID(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	_, err = s.FindPlayerBySocketID(ctx, "sock-ghost")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	err = s.UpdatePlayer(ctx, domain.Player{ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestMemoryStore_AssignCardsAndPositions(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()
	seedGame(t, s, "g1", "AB12C3")
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p1", GameID: "g1", JoinedAt: time.Now()}))
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p2", GameID: "g1", JoinedAt: time.Now()}))

	require.NoError(t, s.AssignCards(ctx, map[string]int{"p1": 42, "p2": 7}))
	require.NoError(t, s.SetPositions(ctx, []domain.PlayerPosition{
		{PlayerID: "p1", Position: 2},
		{PlayerID: "p2", Position: 1},
	}))

	p1, err := s.FindPlayerByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 42, p1.CardNumber)
	assert.Equal(t, 2, p1.Position)

	err = s.AssignCards(ctx, map[string]int{"ghost": 1})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	err = s.SetPositions(ctx, []domain.PlayerPosition{{PlayerID: "ghost", Position: 1}})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestMemoryStore_DeletePlayersByGame(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()
	seedGame(t, s, "g1", "AB12C3")
	seedGame(t, s, "g2", "ZZ99ZZ")
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p1", GameID: "g1", JoinedAt: time.Now()}))
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p2", GameID: "g1", JoinedAt: time.Now()}))
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p3", GameID: "g2", JoinedAt: time.Now()}))

	require.NoError(t, s.DeletePlayersByGame(ctx, "g1"))

	left, err := s.ListPlayersByGame(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, left)
	other, err := s.ListPlayersByGame(ctx, "g2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestMemoryStore_PurgeIdleGames(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()
	seedGame(t, s, "stale", "AAAAAA")
	seedGame(t, s, "fresh", "BBBBBB")
	require.NoError(t, s.InsertPlayer(ctx, domain.Player{ID: "p1", GameID: "stale", JoinedAt: time.Now()}))

	// Age the stale room past the cutoff.
	s.mu.Lock()
	g := s.games["stale"]
	g.UpdatedAt = time.Now().Add(-48 * time.Hour)
	s.games["stale"] = g
	s.mu.Unlock()

	purged, err := s.PurgeIdleGames(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	_, err = s.FindGameByID(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
	_, err = s.FindPlayerByID(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	_, err = s.FindGameByID(ctx, "fresh")
	assert.NoError(t, err)
}
