// Package game implements the room session coordinator: the phase
// machine, roster operations, round engine, and the event channel glue
// binding them to live websocket sessions.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sai-kaneko-31/ito/domain"
)

const eventTimeout = 5 * time.Second

// Coordinator owns every state mutation of every room. Each inbound
// event runs its whole read-modify-write-broadcast cycle under the
// room's lock, so concurrent events for one room serialize while
// different rooms proceed independently.
type Coordinator struct {
	store Store
	hub   *Hub
	locks *roomLocks
}

func NewCoordinator(store Store, hub *Hub) *Coordinator {
	return &Coordinator{
		store: store,
		hub:   hub,
		locks: newRoomLocks(),
	}
}

// Dispatch routes one decoded frame from a session to its handler.
// Unknown events are logged and ignored.
func (co *Coordinator) Dispatch(sess Session, event string, data json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch event {
	case EventJoinRoom:
		var p joinRoomPayload
		if !co.decode(sess, data, &p) {
			return
		}
		co.JoinRoom(ctx, sess, p.RoomCode, p.PlayerName)
	case EventPlayerReady:
		var p playerReadyPayload
		if !co.decode(sess, data, &p) {
			return
		}
		co.PlayerReady(ctx, sess, p.PlayerID)
	case EventSubmitExpression:
		var p submitExpressionPayload
		if !co.decode(sess, data, &p) {
			return
		}
		co.SubmitExpression(ctx, sess, p.PlayerID, p.Expression)
	case EventUpdatePositions:
		var p updatePositionsPayload
		if !co.decode(sess, data, &p) {
			return
		}
		co.UpdatePositions(ctx, sess, p.Positions)
	case EventRevealCards:
		co.RevealCards(ctx, sess)
	default:
		log.Debug().Str("event", event).Str("session_id", sess.ID()).Msg("unknown event")
	}
}

func (co *Coordinator) decode(sess Session, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		co.hub.Emit(sess, EventError, errorPayload{Message: "invalid payload"})
		return false
	}
	return true
}

var expectedErrs = []error{
	domain.ErrGameNotFound,
	domain.ErrPlayerNotFound,
	domain.ErrGameStarted,
	domain.ErrWrongPhase,
	domain.ErrGameFull,
	domain.ErrNameTaken,
	domain.ErrNotHost,
	domain.ErrEmptyName,
	domain.ErrNameTooLong,
	domain.ErrEmptyExpression,
	domain.ErrExpressionLong,
	domain.ErrEmptyPositions,
	domain.ErrMixedRooms,
}

// fail reports an error to the originating session only. Expected
// conditions carry their own message; anything else is an infrastructure
// failure: logged for operators, reported with the fallback text.
func (co *Coordinator) fail(sess Session, err error, fallback string) {
	msg := fallback
	expected := false
	for _, known := range expectedErrs {
		if errors.Is(err, known) {
			msg = known.Error()
			expected = true
			break
		}
	}
	if !expected {
		log.Error().Err(err).Str("session_id", sess.ID()).Msg(fallback)
	}
	co.hub.Emit(sess, EventError, errorPayload{Message: msg})
}

func snapshot(g domain.Game, players []domain.Player) domain.GameState {
	return domain.GameState{Game: g, Players: players, Theme: g.Theme, Phase: g.Phase}
}

// JoinRoom admits a named player into a waiting room and binds the
// session to the new player record.
func (co *Coordinator) JoinRoom(ctx context.Context, sess Session, roomCode, playerName string) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		co.fail(sess, domain.ErrEmptyName, "failed to join room")
		return
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLen {
		co.fail(sess, domain.ErrNameTooLong, "failed to join room")
		return
	}

	g, err := co.store.FindGameByCode(ctx, roomCode)
	if err != nil {
		co.fail(sess, err, "failed to join room")
		return
	}

	release := co.locks.acquire(g.ID)
	defer release()

	// Re-read under the lock; a racing disconnect may have deleted it.
	g, err = co.store.FindGameByID(ctx, g.ID)
	if err != nil {
		co.fail(sess, err, "failed to join room")
		return
	}
	if g.Phase != domain.PhaseWaiting {
		co.fail(sess, domain.ErrGameStarted, "failed to join room")
		return
	}

	roster, err := co.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		co.fail(sess, err, "failed to join room")
		return
	}
	if len(roster) >= g.MaxPlayers {
		co.fail(sess, domain.ErrGameFull, "failed to join room")
		return
	}
	for _, p := range roster {
		if strings.EqualFold(p.Name, name) {
			co.fail(sess, domain.ErrNameTaken, "failed to join room")
			return
		}
	}

	player := domain.Player{
		ID:       uuid.NewString(),
		GameID:   g.ID,
		Name:     name,
		SocketID: sess.ID(),
		JoinedAt: time.Now(),
	}
	if err := co.store.InsertPlayer(ctx, player); err != nil {
		co.fail(sess, err, "failed to join room")
		return
	}

	// First joiner becomes host. Roll the insert back if the host write
	// fails so the transition has no partial effect.
	if len(roster) == 0 {
		g.HostID = player.ID
		if err := co.store.UpdateGame(ctx, g); err != nil {
			_ = co.store.DeletePlayer(ctx, player.ID)
			co.fail(sess, err, "failed to join room")
			return
		}
	}

	players, err := co.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		co.fail(sess, err, "failed to join room")
		return
	}

	co.hub.JoinRoom(g.RoomCode, sess)
	co.hub.Emit(sess, EventRoomJoined, gameStatePayload{GameState: snapshot(g, players)})
	co.hub.BroadcastExcept(g.RoomCode, sess, EventPlayerJoined, playerPayload{Player: player})

	log.Info().Str("room_code", g.RoomCode).Str("player_id", player.ID).Str("name", name).Msg("player joined")
}

// PlayerReady marks a player ready. Setting it twice is a no-op. When
// the whole roster (>= 2 players) is ready the round starts: cards are
// dealt, the phase flips, and game-started fires exactly once.
func (co *Coordinator) PlayerReady(ctx context.Context, sess Session, playerID string) {
	p, err := co.store.FindPlayerByID(ctx, playerID)
	if err != nil {
		co.fail(sess, err, "failed to set ready status")
		return
	}

	release := co.locks.acquire(p.GameID)
	defer release()

	p, err = co.store.FindPlayerByID(ctx, playerID)
	if err != nil {
		co.fail(sess, err, "failed to set ready status")
		return
	}
	if !p.IsReady {
		p.IsReady = true
		if err := co.store.UpdatePlayer(ctx, p); err != nil {
			co.fail(sess, err, "failed to set ready status")
			return
		}
	}

	g, err := co.store.FindGameByID(ctx, p.GameID)
	if err != nil {
		co.fail(sess, err, "failed to set ready status")
		return
	}
	if g.Phase != domain.PhaseWaiting {
		// Round already started; a late ready changes nothing.
		return
	}

	roster, err := co.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		co.fail(sess, err, "failed to set ready status")
		return
	}
	if len(roster) < domain.MinPlayers {
		return
	}
	for _, rp := range roster {
		if !rp.IsReady {
			return
		}
	}

	next, err := advance(g.Phase, allReady)
	if err != nil {
		return
	}

	// Cards first, status flip last: a store failure in between leaves
	// the room in waiting with nothing broadcast.
	if err := co.store.AssignCards(ctx, dealCards(roster)); err != nil {
		co.fail(sess, err, "failed to start game")
		return
	}
	g.Phase = next
	if err := co.store.UpdateGame(ctx, g); err != nil {
		co.fail(sess, err, "failed to start game")
		return
	}

	players, err := co.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		co.fail(sess, err, "failed to start game")
		return
	}
	co.hub.Broadcast(g.RoomCode, EventGameStarted, gameStatePayload{GameState: snapshot(g, players)})

	log.Info().Str("room_code", g.RoomCode).Int("players", len(players)).Msg("game started")
}

// SubmitExpression stores a player's clue and acknowledges it to the room
// without revealing the text. The last clue moves the room to arranging.
func (co *Coordinator) SubmitExpression(ctx context.Context, sess Session, playerID, expression string) {
	text := strings.TrimSpace(expression)
	if text == "" {
		co.fail(sess, domain.ErrEmptyExpression, "failed to submit expression")
		return
	}
	if utf8.RuneCountInString(text) > domain.MaxClueLen {
		co.fail(sess, domain.ErrExpressionLong, "failed to submit expression")
		return
	}

	p, err := co.store.FindPlayerByID(ctx, playerID)
	if err != nil {
		co.fail(sess, err, "failed to submit expression")
		return
	}

	release := co.locks.acquire(p.GameID)
	defer release()

	p, err = co.store.FindPlayerByID(ctx, playerID)
	if err != nil {
		co.fail(sess, err, "failed to submit expression")
		return
	}
	g, err := co.store.FindGameByID(ctx, p.GameID)
	if err != nil {
		co.fail(sess, err, "failed to submit expression")
		return
	}
	if g.Phase != domain.PhaseExpressing {
		co.fail(sess, domain.ErrWrongPhase, "failed to submit expression")
		return
	}

	p.Expression = text
	if err := co.store.UpdatePlayer(ctx, p); err != nil {
		co.fail(sess, err, "failed to submit expression")
		return
	}
	co.hub.Broadcast(g.RoomCode, EventExpressionSubmitted, playerIDPayload{PlayerID: p.ID})

	roster, err := co.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		co.fail(sess, err, "failed to submit expression")
		return
	}
	for _, rp := range roster {
		if rp.Expression == "" {
			return
		}
	}

	next, err := advance(g.Phase, allSubmitted)
	if err != nil {
		return
	}
	g.Phase = next
	if err := co.store.UpdateGame(ctx, g); err != nil {
		co.fail(sess, err, "failed to submit expression")
		return
	}

	// Same wire event as the round start; clients key on the phase.
	co.hub.Broadcast(g.RoomCode, EventGameStarted, gameStatePayload{GameState: snapshot(g, roster)})

	log.Info().Str("room_code", g.RoomCode).Msg("all expressions in, arranging")
}

// UpdatePositions applies one bulk arrangement step. Every referenced
// player must exist and belong to the same game; the writes land as one
// unit under the room lock, so racing drags resolve to a total order.
func (co *Coordinator) UpdatePositions(ctx context.Context, sess Session, positions []domain.PlayerPosition) {
	if len(positions) == 0 {
		co.fail(sess, domain.ErrEmptyPositions, "failed to update positions")
		return
	}

	first, err := co.store.FindPlayerByID(ctx, positions[0].PlayerID)
	if err != nil {
		co.fail(sess, err, "failed to update positions")
		return
	}

	release := co.locks.acquire(first.GameID)
	defer release()

	for _, pos := range positions {
		p, err := co.store.FindPlayerByID(ctx, pos.PlayerID)
		if err != nil {
			co.fail(sess, err, "failed to update positions")
			return
		}
		if p.GameID != first.GameID {
			co.fail(sess, domain.ErrMixedRooms, "failed to update positions")
			return
		}
	}

	if err := co.store.SetPositions(ctx, positions); err != nil {
		co.fail(sess, err, "failed to update positions")
		return
	}

	g, err := co.store.FindGameByID(ctx, first.GameID)
	if err != nil {
		co.fail(sess, err, "failed to update positions")
		return
	}
	co.hub.Broadcast(g.RoomCode, EventPositionsUpdated, positionsPayload{Positions: positions})
}

// RevealCards ends the round. Only the current host may trigger it, and
// only from arranging.
func (co *Coordinator) RevealCards(ctx context.Context, sess Session) {
	p, err := co.store.FindPlayerBySocketID(ctx, sess.ID())
	if err != nil {
		co.fail(sess, err, "failed to reveal cards")
		return
	}

	release := co.locks.acquire(p.GameID)
	defer release()

	g, err := co.store.FindGameByID(ctx, p.GameID)
	if err != nil {
		co.fail(sess, err, "failed to reveal cards")
		return
	}
	if g.HostID != p.ID {
		co.fail(sess, domain.ErrNotHost, "failed to reveal cards")
		return
	}

	next, err := advance(g.Phase, hostReveal)
	if err != nil {
		co.fail(sess, err, "failed to reveal cards")
		return
	}

	roster, err := co.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		co.fail(sess, err, "failed to reveal cards")
		return
	}

	g.Phase = next
	if err := co.store.UpdateGame(ctx, g); err != nil {
		co.fail(sess, err, "failed to reveal cards")
		return
	}

	result := judge(roster)
	co.hub.Broadcast(g.RoomCode, EventGameFinished, resultPayload{Result: result})

	log.Info().Str("room_code", g.RoomCode).Bool("success", result.Success).Msg("game finished")
}

// HandleDisconnect removes whichever player was bound to the session, if
// any. The removal, the session unbinding, host transfer, and empty-room
// deletion all happen under the same room lock, so a second removal of
// the same player is a no-op and lookups never see a half-removed state.
func (co *Coordinator) HandleDisconnect(sess Session) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	defer co.hub.Leave(sess)

	p, err := co.store.FindPlayerBySocketID(ctx, sess.ID())
	if err != nil {
		if !errors.Is(err, domain.ErrPlayerNotFound) {
			log.Error().Err(err).Str("session_id", sess.ID()).Msg("disconnect lookup failed")
		}
		return
	}

	release := co.locks.acquire(p.GameID)
	defer release()

	p, err = co.store.FindPlayerByID(ctx, p.ID)
	if err != nil {
		return
	}
	if err := co.store.DeletePlayer(ctx, p.ID); err != nil {
		log.Error().Err(err).Str("player_id", p.ID).Msg("failed to remove player")
		return
	}

	g, err := co.store.FindGameByID(ctx, p.GameID)
	if err != nil {
		return
	}

	co.hub.Broadcast(g.RoomCode, EventPlayerLeft, playerIDPayload{PlayerID: p.ID})

	roster, err := co.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		log.Error().Err(err).Str("game_id", g.ID).Msg("failed to load roster after removal")
		return
	}

	if len(roster) == 0 {
		if err := co.store.DeleteGame(ctx, g.ID); err != nil {
			log.Error().Err(err).Str("game_id", g.ID).Msg("failed to delete empty game")
			return
		}
		co.locks.forget(g.ID)
		log.Info().Str("room_code", g.RoomCode).Msg("room empty, deleted")
		return
	}

	// Host transfer: earliest-joined remaining player takes over.
	if g.HostID == p.ID {
		g.HostID = roster[0].ID
		if err := co.store.UpdateGame(ctx, g); err != nil {
			log.Error().Err(err).Str("game_id", g.ID).Msg("failed to transfer host")
			return
		}
		log.Info().Str("room_code", g.RoomCode).Str("host_id", g.HostID).Msg("host transferred")
	}

	log.Info().Str("room_code", g.RoomCode).Str("player_id", p.ID).Msg("player left")
}
