package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sai-kaneko-31/ito/domain"
)

// MemoryStore keeps games and players in process memory. It backs unit
// tests and storeless local runs; the coordinator's per-room locking is
// what serializes access, the store mutex only protects the maps.
type MemoryStore struct {
	mu      sync.RWMutex
	games   map[string]domain.Game
	players map[string]memPlayer
	seq     int
}

type memPlayer struct {
	domain.Player
	seq int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[string]domain.Game),
		players: make(map[string]memPlayer),
	}
}

func (s *MemoryStore) FindGameByCode(_ context.Context, code string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code = strings.ToUpper(code)
	for _, g := range s.games {
		if g.RoomCode == code {
			return g, nil
		}
	}
	return domain.Game{}, domain.ErrGameNotFound
}

func (s *MemoryStore) FindGameByID(_ context.Context, id string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return g, nil
}

func (s *MemoryStore) InsertGame(_ context.Context, g domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	s.games[g.ID] = g
	return nil
}

func (s *MemoryStore) UpdateGame(_ context.Context, g domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; !ok {
		return domain.ErrGameNotFound
	}
	g.UpdatedAt = time.Now()
	s.games[g.ID] = g
	return nil
}

func (s *MemoryStore) DeleteGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *MemoryStore) ListPlayersByGame(_ context.Context, gameID string) ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]memPlayer, 0, 8)
	for _, p := range s.players {
		if p.GameID == gameID {
			recs = append(recs, p)
		}
	}
	// Join order: timestamp first, insertion sequence as tie-break.
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].JoinedAt.Equal(recs[j].JoinedAt) {
			return recs[i].seq < recs[j].seq
		}
		return recs[i].JoinedAt.Before(recs[j].JoinedAt)
	})
	out := make([]domain.Player, len(recs))
	for i, r := range recs {
		out[i] = r.Player
	}
	return out, nil
}

func (s *MemoryStore) FindPlayerByID(_ context.Context, id string) (domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return p.Player, nil
}

func (s *MemoryStore) FindPlayerBySocketID(_ context.Context, socketID string) (domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if p.SocketID == socketID {
			return p.Player, nil
		}
	}
	return domain.Player{}, domain.ErrPlayerNotFound
}

func (s *MemoryStore) InsertPlayer(_ context.Context, p domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.players[p.ID] = memPlayer{Player: p, seq: s.seq}
	return nil
}

func (s *MemoryStore) UpdatePlayer(_ context.Context, p domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.players[p.ID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	rec.Player = p
	s.players[p.ID] = rec
	return nil
}

func (s *MemoryStore) DeletePlayer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *MemoryStore) DeletePlayersByGame(_ context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.players {
		if p.GameID == gameID {
			delete(s.players, id)
		}
	}
	return nil
}

func (s *MemoryStore) AssignCards(_ context.Context, cards map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, card := range cards {
		rec, ok := s.players[id]
		if !ok {
			return domain.ErrPlayerNotFound
		}
		rec.CardNumber = card
		s.players[id] = rec
	}
	return nil
}

func (s *MemoryStore) SetPositions(_ context.Context, positions []domain.PlayerPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pos := range positions {
		rec, ok := s.players[pos.PlayerID]
		if !ok {
			return domain.ErrPlayerNotFound
		}
		rec.Position = pos.Position
		s.players[pos.PlayerID] = rec
	}
	return nil
}

func (s *MemoryStore) PurgeIdleGames(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, g := range s.games {
		if g.UpdatedAt.Before(cutoff) {
			delete(s.games, id)
			for pid, p := range s.players {
				if p.GameID == id {
					delete(s.players, pid)
				}
			}
			purged++
		}
	}
	return purged, nil
}
