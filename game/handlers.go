package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sai-kaneko-31/ito/domain"
	"github.com/sai-kaneko-31/ito/themes"
)

// Handler exposes the HTTP surface: game creation and lookup over REST,
// and the websocket endpoint feeding the coordinator.
type Handler struct {
	store    Store
	coord    *Coordinator
	upgrader websocket.Upgrader
}

func NewHandler(store Store, coord *Coordinator, allowedOrigins []string) *Handler {
	return &Handler{
		store: store,
		coord: coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	games := api.Group("/games")
	games.POST("", h.CreateGameHandler)
	games.GET("/:roomCode", h.GetGameHandler)
	games.POST("/:roomCode/join", h.JoinCheckHandler)

	themes.RegisterRoutes(api.Group("/themes"))

	r.GET("/ws", h.WebsocketHandler)
}

type createGameRequest struct {
	HostName   string `json:"hostName"`
	MaxPlayers int    `json:"maxPlayers"`
	ThemeID    string `json:"themeId"`
}

func (h *Handler) CreateGameHandler(ctx *gin.Context) {
	var req createGameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.HostName) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "host name is required"})
		return
	}

	theme := themes.Random()
	if req.ThemeID != "" {
		var err error
		theme, err = themes.ByID(req.ThemeID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid theme ID"})
			return
		}
	}

	maxPlayers := req.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = domain.DefaultLimit
	}
	if maxPlayers < domain.MinPlayers || maxPlayers > domain.MaxRoomSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": domain.ErrBadMaxPlayers.Error()})
		return
	}

	code, err := NewRoomCode(ctx.Request.Context(), h.store)
	if err != nil {
		log.Error().Err(err).Msg("room code generation failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create game"})
		return
	}

	g := domain.Game{
		ID:           uuid.NewString(),
		RoomCode:     code,
		Phase:        domain.PhaseWaiting,
		Theme:        theme.Name,
		MaxPlayers:   maxPlayers,
		CurrentRound: 1,
	}
	if err := h.store.InsertGame(ctx.Request.Context(), g); err != nil {
		log.Error().Err(err).Str("room_code", code).Msg("insert game failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create game"})
		return
	}

	log.Info().Str("room_code", code).Str("theme", theme.Name).Int("max_players", maxPlayers).Msg("game created")
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"gameId":   g.ID,
			"roomCode": g.RoomCode,
			"theme":    theme,
		},
	})
}

func (h *Handler) GetGameHandler(ctx *gin.Context) {
	g, err := h.store.FindGameByCode(ctx.Request.Context(), ctx.Param("roomCode"))
	if err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": domain.ErrGameNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch game"})
		return
	}

	players, err := h.store.ListPlayersByGame(ctx.Request.Context(), g.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch game"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"game": g, "players": players},
	})
}

type joinCheckRequest struct {
	PlayerName string `json:"playerName"`
}

// JoinCheckHandler validates a join before the client opens its
// websocket; the authoritative admission still happens on join-room.
func (h *Handler) JoinCheckHandler(ctx *gin.Context) {
	var req joinCheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PlayerName) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": domain.ErrEmptyName.Error()})
		return
	}
	name := strings.TrimSpace(req.PlayerName)

	g, err := h.store.FindGameByCode(ctx.Request.Context(), ctx.Param("roomCode"))
	if err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": domain.ErrGameNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to join game"})
		return
	}
	if g.Phase != domain.PhaseWaiting {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": domain.ErrGameStarted.Error()})
		return
	}

	players, err := h.store.ListPlayersByGame(ctx.Request.Context(), g.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to join game"})
		return
	}
	if len(players) >= g.MaxPlayers {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": domain.ErrGameFull.Error()})
		return
	}
	for _, p := range players {
		if strings.EqualFold(p.Name, name) {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": domain.ErrNameTaken.Error()})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"gameId": g.ID, "message": "Ready to join game"},
	})
}

func (h *Handler) WebsocketHandler(ctx *gin.Context) {
	sock, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	conn := NewConn(sock)
	log.Debug().Str("session_id", conn.ID()).Str("ip", ctx.ClientIP()).Msg("session connected")

	go conn.WritePump()
	conn.ReadPump(func(event string, data json.RawMessage) {
		h.coord.Dispatch(conn, event, data)
	})

	h.coord.HandleDisconnect(conn)
	conn.Close()
	log.Debug().Str("session_id", conn.ID()).Msg("session disconnected")
}
