package game

import (
	"math/rand/v2"
	"sort"

	"github.com/sai-kaneko-31/ito/domain"
)

// dealCards draws one distinct card in 1..CardDeckSize per player from a
// fresh uniform permutation. Each call shuffles independently, so a new
// round never reuses the previous deal.
func dealCards(players []domain.Player) map[string]int {
	deck := rand.Perm(domain.CardDeckSize)
	cards := make(map[string]int, len(players))
	for i, p := range players {
		cards[p.ID] = deck[i] + 1
	}
	return cards
}

// judge compares the arrangement the group produced against the true card
// order. Input must be in join order; ties in card number or position are
// broken by that order, and a missing position counts as zero.
func judge(players []domain.Player) domain.GameResult {
	byCard := make([]domain.Player, len(players))
	copy(byCard, players)
	sort.SliceStable(byCard, func(i, j int) bool {
		return byCard[i].CardNumber < byCard[j].CardNumber
	})

	byPosition := make([]domain.Player, len(players))
	copy(byPosition, players)
	sort.SliceStable(byPosition, func(i, j int) bool {
		return byPosition[i].Position < byPosition[j].Position
	})

	success := true
	for i := range players {
		if byPosition[i].ID != byCard[i].ID {
			success = false
			break
		}
	}

	return domain.GameResult{
		Success:      success,
		CorrectOrder: toResults(byCard),
		PlayerOrder:  toResults(byPosition),
	}
}

func toResults(players []domain.Player) []domain.PlayerResult {
	out := make([]domain.PlayerResult, len(players))
	for i, p := range players {
		out[i] = domain.PlayerResult{
			Name:          p.Name,
			CardNumber:    p.CardNumber,
			Expression:    p.Expression,
			FinalPosition: p.Position,
		}
	}
	return out
}
