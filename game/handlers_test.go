package game

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-kaneko-31/ito/domain"
)

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	h := NewHandler(store, NewCoordinator(store, hub), nil)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()
	r := newTestRouter(newRig().store)

	w, body := doJSON(t, r, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["status"])
}

func TestCreateGameHandler(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			desc:     "success with explicit theme and limit",
			body:     `{"hostName":"Taro","maxPlayers":4,"themeId":"temperature-hot-cold"}`,
			wantCode: http.StatusOK,
		},
		{
			desc:     "success with defaults",
			body:     `{"hostName":"Taro"}`,
			wantCode: http.StatusOK,
		},
		{
			desc:     "missing host name",
			body:     `{"maxPlayers":4}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "host name is required",
		},
		{
			desc:     "unknown theme",
			body:     `{"hostName":"Taro","themeId":"no-such-theme"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid theme ID",
		},
		{
			desc:     "limit below minimum",
			body:     `{"hostName":"Taro","maxPlayers":1}`,
			wantCode: http.StatusBadRequest,
			wantErr:  domain.ErrBadMaxPlayers.Error(),
		},
		{
			desc:     "limit above maximum",
			body:     `{"hostName":"Taro","maxPlayers":11}`,
			wantCode: http.StatusBadRequest,
			wantErr:  domain.ErrBadMaxPlayers.Error(),
		},
		{
			desc:     "malformed body",
			body:     `{"hostName":`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid request body",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			rig := newRig()
			r := newTestRouter(rig.store)

			w, body := doJSON(t, r, http.MethodPost, "/api/games", tc.body)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantErr != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tc.wantErr, body["error"])
				return
			}

			require.Equal(t, true, body["success"])
			data := body["data"].(map[string]any)
			assert.NotEmpty(t, data["gameId"])
			assert.Regexp(t, codePattern, data["roomCode"])

			g, err := rig.store.FindGameByID(context.Background(), data["gameId"].(string))
			require.NoError(t, err)
			assert.Equal(t, domain.PhaseWaiting, g.Phase)
			assert.Equal(t, 1, g.CurrentRound)
		})
	}
}

func TestCreateGameHandler_DefaultLimit(t *testing.T) {
	t.Parallel()
	rig := newRig()
	r := newTestRouter(rig.store)

	w, body := doJSON(t, r, http.MethodPost, "/api/games", `{"hostName":"Taro"}`)

	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	g, err := rig.store.FindGameByID(context.Background(), data["gameId"].(string))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLimit, g.MaxPlayers)
}

func TestGetGameHandler(t *testing.T) {
	t.Parallel()
	rig := newRig()
	g := rig.seedGame(t, "AB12C3", 4)
	rig.join(t, g.RoomCode, "Taro")
	r := newTestRouter(rig.store)

	w, body := doJSON(t, r, http.MethodGet, "/api/games/AB12C3", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	game := data["game"].(map[string]any)
	assert.Equal(t, "AB12C3", game["roomCode"])
	players := data["players"].([]any)
	assert.Len(t, players, 1)
}

func TestGetGameHandler_NotFound(t *testing.T) {
	t.Parallel()
	r := newTestRouter(newRig().store)

	w, body := doJSON(t, r, http.MethodGet, "/api/games/ZZZZZZ", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domain.ErrGameNotFound.Error(), body["error"])
}

func TestJoinCheckHandler(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		seed     func(t *testing.T, rig *testRig)
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			desc:     "room open",
			seed:     func(t *testing.T, rig *testRig) { rig.seedGame(t, "OPENXX", 4) },
			path:     "/api/games/OPENXX/join",
			body:     `{"playerName":"Taro"}`,
			wantCode: http.StatusOK,
		},
		{
			desc:     "unknown room",
			seed:     func(*testing.T, *testRig) {},
			path:     "/api/games/ZZZZZZ/join",
			body:     `{"playerName":"Taro"}`,
			wantCode: http.StatusNotFound,
			wantErr:  domain.ErrGameNotFound.Error(),
		},
		{
			desc: "name already taken",
			seed: func(t *testing.T, rig *testRig) {
				g := rig.seedGame(t, "TAKENX", 4)
				rig.join(t, g.RoomCode, "Taro")
			},
			path:     "/api/games/TAKENX/join",
			body:     `{"playerName":"taro"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  domain.ErrNameTaken.Error(),
		},
		{
			desc: "room full",
			seed: func(t *testing.T, rig *testRig) {
				g := rig.seedGame(t, "FULLYY", 2)
				rig.join(t, g.RoomCode, "Taro")
				rig.join(t, g.RoomCode, "Hana")
			},
			path:     "/api/games/FULLYY/join",
			body:     `{"playerName":"Jiro"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  domain.ErrGameFull.Error(),
		},
		{
			desc: "game already started",
			seed: func(t *testing.T, rig *testRig) {
				g := rig.seedGame(t, "RUNXXX", 4)
				g.Phase = domain.PhaseExpressing
				require.NoError(t, rig.store.UpdateGame(context.Background(), g))
			},
			path:     "/api/games/RUNXXX/join",
			body:     `{"playerName":"Taro"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  domain.ErrGameStarted.Error(),
		},
		{
			desc:     "blank name",
			seed:     func(t *testing.T, rig *testRig) { rig.seedGame(t, "BLANKX", 4) },
			path:     "/api/games/BLANKX/join",
			body:     `{"playerName":"   "}`,
			wantCode: http.StatusBadRequest,
			wantErr:  domain.ErrEmptyName.Error(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			rig := newRig()
			tc.seed(t, rig)
			r := newTestRouter(rig.store)

			w, body := doJSON(t, r, http.MethodPost, tc.path, tc.body)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, body["error"])
				return
			}
			assert.Equal(t, true, body["success"])
		})
	}
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()
	check := originChecker([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req), "no origin header should pass")

	req.Header.Set("Origin", "HTTP://LOCALHOST:3000")
	assert.True(t, check(req), "matching origin is case-insensitive")

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))

	open := originChecker(nil)
	assert.True(t, open(req), "empty allowlist admits everything")
}

func TestRunSweeper_PurgesIdleRooms(t *testing.T) {
	t.Parallel()
	rig := newRig()
	g := domain.Game{ID: uuid.NewString(), RoomCode: "IDLEXX", Phase: domain.PhaseWaiting}
	require.NoError(t, rig.store.InsertGame(context.Background(), g))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Zero retention: anything written before a tick is idle.
		RunSweeper(ctx, rig.store, 10*time.Millisecond, 0)
	}()

	require.Eventually(t, func() bool {
		_, err := rig.store.FindGameByID(context.Background(), g.ID)
		return err != nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
