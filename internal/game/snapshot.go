package game

import "time"

// sessionRecord is the serialisable form of a Session kept in Redis.
type sessionRecord struct {
	Identity        string `json:"identity"`
	State           State  `json:"state"`
	CooldownUntilMs int64  `json:"cooldownUntilMs"` // unix millis, 0 if none
	AttemptsLeft    int    `json:"attemptsLeft"`

	CurrentTarget    string `json:"currentTarget"`
	HintCount        int    `json:"hintCount"`
	LastHint         string `json:"lastHint"`
	RoundID          string `json:"roundId"`
	RoundStartedAtMs int64  `json:"roundStartedAtMs"`
}

func recordFromSession(s Session) sessionRecord {
	return sessionRecord{
		Identity:        s.Identity,
		State:           s.State,
		CooldownUntilMs: toMs(s.CooldownUntil),
		AttemptsLeft:    s.AttemptsLeft,

		CurrentTarget:    s.CurrentTarget,
		HintCount:        s.HintCount,
		LastHint:         s.LastHint,
		RoundID:          s.RoundID,
		RoundStartedAtMs: toMs(s.RoundStartedAt),
	}
}

func (r sessionRecord) session() Session {
	return Session{
		Identity:      r.Identity,
		State:         r.State,
		CooldownUntil: fromMs(r.CooldownUntilMs),
		AttemptsLeft:  r.AttemptsLeft,

		CurrentTarget:  r.CurrentTarget,
		HintCount:      r.HintCount,
		LastHint:       r.LastHint,
		RoundID:        r.RoundID,
		RoundStartedAt: fromMs(r.RoundStartedAtMs),
	}
}

func toMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMs(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
