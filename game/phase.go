package game

import "github.com/sai-kaneko-31/ito/domain"

// transition is a phase-machine trigger. Phases only move forward:
// waiting -> expressing -> arranging -> finished.
type transition int

const (
	allReady transition = iota
	allSubmitted
	hostReveal
)

// advance returns the phase that follows cur when tr fires, or
// domain.ErrWrongPhase when tr is not legal in cur. It never moves a
// phase backward.
func advance(cur domain.Phase, tr transition) (domain.Phase, error) {
	switch {
	case cur == domain.PhaseWaiting && tr == allReady:
		return domain.PhaseExpressing, nil
	case cur == domain.PhaseExpressing && tr == allSubmitted:
		return domain.PhaseArranging, nil
	case cur == domain.PhaseArranging && tr == hostReveal:
		return domain.PhaseFinished, nil
	default:
		return cur, domain.ErrWrongPhase
	}
}
