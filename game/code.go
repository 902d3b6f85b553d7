package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/sai-kaneko-31/ito/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const maxCodeAttempts = 100

// NewRoomCode generates a 6-character uppercase alphanumeric code and
// retries until it collides with no active game.
func NewRoomCode(ctx context.Context, games GameStore) (string, error) {
	for range maxCodeAttempts {
		var b strings.Builder
		for range domain.RoomCodeLen {
			b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
		}
		code := b.String()

		_, err := games.FindGameByCode(ctx, code)
		switch {
		case errors.Is(err, domain.ErrGameNotFound):
			return code, nil
		case err != nil:
			return "", err
		}
	}
	return "", domain.UnexpectedStoreError
}
