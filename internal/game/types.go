package game

import (
	"net/http"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultCooldown    = 30 * time.Second
)

// StatusDropped marks a turn the transport must not answer at all.
const StatusDropped = http.StatusNoContent

type State string

const (
	StateNotStarted       State = "not_started"
	StateInProgress       State = "in_progress"
	StateCooldown         State = "cooldown"
	StateWaitingForReward State = "waiting_for_reward"
)

// Session is one player's progress. Values are copied in and out of the
// store; mutate only inside SessionStore.Update.
type Session struct {
	Identity      string
	State         State
	CooldownUntil time.Time // only meaningful in StateCooldown
	AttemptsLeft  int

	CurrentTarget  string // empty when no round is active
	HintCount      int
	LastHint       string
	RoundID        string
	RoundStartedAt time.Time
}

func newSession(identity string, maxAttempts int) Session {
	return Session{
		Identity:     identity,
		State:        StateNotStarted,
		AttemptsLeft: maxAttempts,
	}
}

// Profile is what identity resolution knows about a player.
type Profile struct {
	Address     string
	DisplayName string
}

// Turn is one inbound chat message.
type Turn struct {
	Identity    string
	DisplayName string
	Text        string
}

// Reply is what the transport sends back. Status follows HTTP semantics:
// 200 normal, 400 rejected, 429 cooldown, 500 collaborator failure,
// StatusDropped for turns that get no answer.
type Reply struct {
	Status int    `json:"status"`
	Text   string `json:"reply"`
}

type Rules struct {
	MaxAttempts int
	Cooldown    time.Duration
}

func DefaultRules() Rules {
	return Rules{MaxAttempts: DefaultMaxAttempts, Cooldown: DefaultCooldown}
}

// Reward is the fixed prize paid for every victory.
type Reward struct {
	Amount string
	Symbol string
}

type Config struct {
	Rules  Rules
	Reward Reward
}
