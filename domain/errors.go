package domain

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrThemeNotFound  = errors.New("theme not found")

	ErrGameStarted = errors.New("game has already started")
	ErrWrongPhase  = errors.New("action not allowed in current phase")
	ErrGameFull    = errors.New("game is full")
	ErrNameTaken   = errors.New("player name already taken")
	ErrNotHost     = errors.New("only host can reveal cards")

	ErrEmptyName       = errors.New("player name is required")
	ErrNameTooLong     = errors.New("player name too long")
	ErrEmptyExpression = errors.New("expression is required")
	ErrExpressionLong  = errors.New("expression too long")
	ErrBadMaxPlayers   = errors.New("max players must be between 2 and 10")
	ErrEmptyPositions  = errors.New("positions are required")
	ErrMixedRooms      = errors.New("positions reference players from different games")

	// UnexpectedStoreError wraps transient persistence failures.
	UnexpectedStoreError = errors.New("unexpected store error")
)
