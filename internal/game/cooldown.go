package game

import (
	"math"
	"time"
)

// IsBlocked reports whether s is still cooling down at now. An expired
// cooldown is cleared in place: expiry is checked on access, there is no
// timer.
func (r Rules) IsBlocked(s *Session, now time.Time) bool {
	if s.State != StateCooldown {
		return false
	}
	if now.Before(s.CooldownUntil) {
		return true
	}
	r.resetRound(s)
	return false
}

// StartCooldown ends the active round as a defeat.
func (r Rules) StartCooldown(s *Session, now time.Time) {
	s.State = StateCooldown
	s.CooldownUntil = now.Add(r.Cooldown)
	s.CurrentTarget = ""
	s.RoundID = ""
}

// RemainingSeconds is the whole number of seconds left on the cooldown,
// rounded up. Zero when not cooling down.
func RemainingSeconds(s *Session, now time.Time) int {
	if s.State != StateCooldown || !now.Before(s.CooldownUntil) {
		return 0
	}
	return int(math.Ceil(float64(s.CooldownUntil.Sub(now)) / float64(time.Second)))
}

func (r Rules) resetRound(s *Session) {
	s.State = StateNotStarted
	s.CooldownUntil = time.Time{}
	s.AttemptsLeft = r.MaxAttempts
	s.CurrentTarget = ""
	s.HintCount = 0
	s.LastHint = ""
	s.RoundID = ""
	s.RoundStartedAt = time.Time{}
}
