package game

import (
	"context"
	"slices"
	"sync"
)

type Achievement struct {
	ID          string
	Name        string
	Description string
}

var (
	AchievementFirstWin     = Achievement{"first_win", "First Victory", "Win your first game"}
	AchievementQuickSolver  = Achievement{"quick_solver", "Quick Solver", "Guess correctly on the first hint"}
	AchievementPersistent   = Achievement{"persistent", "Persistent Player", "Win 5 games in total"}
	AchievementStreakMaster = Achievement{"streak_master", "Streak Master", "Win 3 games in a row"}
)

var achievementsByID = map[string]Achievement{
	AchievementFirstWin.ID:     AchievementFirstWin,
	AchievementQuickSolver.ID:  AchievementQuickSolver,
	AchievementPersistent.ID:   AchievementPersistent,
	AchievementStreakMaster.ID: AchievementStreakMaster,
}

type PlayerStats struct {
	GamesPlayed     int
	GamesWon        int
	GamesLost       int
	CurrentStreak   int
	BestStreak      int
	AverageAttempts float64 // guesses per win
	Achievements    []Achievement
}

func (p PlayerStats) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.GamesWon) / float64(p.GamesPlayed) * 100
}

// StatsStore keeps per-player statistics. Recording is best effort: the
// engine logs a failed write and carries on with the turn.
type StatsStore interface {
	RecordStart(ctx context.Context, identity string) error
	// RecordWin counts a victory that took wrongGuesses failed guesses first.
	RecordWin(ctx context.Context, identity string, wrongGuesses int) error
	RecordLoss(ctx context.Context, identity string) error
	Get(ctx context.Context, identity string) (PlayerStats, error)
}

// statsRecord is the stored form, shared by the memory and Redis stores.
type statsRecord struct {
	Played       int      `json:"played"`
	Won          int      `json:"won"`
	Lost         int      `json:"lost"`
	Streak       int      `json:"streak"`
	BestStreak   int      `json:"bestStreak"`
	AvgAttempts  float64  `json:"avgAttempts"`
	Achievements []string `json:"achievements,omitempty"` // sorted ids
}

func (r *statsRecord) start() { r.Played++ }

func (r *statsRecord) win(wrongGuesses int) {
	r.Won++
	r.Streak++
	if r.Streak > r.BestStreak {
		r.BestStreak = r.Streak
	}
	r.AvgAttempts = (r.AvgAttempts*float64(r.Won-1) + float64(wrongGuesses+1)) / float64(r.Won)

	if r.Won == 1 {
		r.unlock(AchievementFirstWin)
	}
	if wrongGuesses == 0 {
		r.unlock(AchievementQuickSolver)
	}
	if r.Won == 5 {
		r.unlock(AchievementPersistent)
	}
	if r.Streak == 3 {
		r.unlock(AchievementStreakMaster)
	}
}

func (r *statsRecord) loss() {
	r.Lost++
	r.Streak = 0
}

func (r *statsRecord) unlock(a Achievement) {
	if i, found := slices.BinarySearch(r.Achievements, a.ID); !found {
		r.Achievements = slices.Insert(r.Achievements, i, a.ID)
	}
}

func (r statsRecord) stats() PlayerStats {
	ps := PlayerStats{
		GamesPlayed:     r.Played,
		GamesWon:        r.Won,
		GamesLost:       r.Lost,
		CurrentStreak:   r.Streak,
		BestStreak:      r.BestStreak,
		AverageAttempts: r.AvgAttempts,
	}
	for _, id := range r.Achievements {
		if a, ok := achievementsByID[id]; ok {
			ps.Achievements = append(ps.Achievements, a)
		}
	}
	return ps
}

// StatsTracker keeps statistics in process memory.
type StatsTracker struct {
	mu sync.Mutex
	m  map[string]*statsRecord
}

func NewStatsTracker() *StatsTracker {
	return &StatsTracker{m: make(map[string]*statsRecord)}
}

func (t *StatsTracker) RecordStart(_ context.Context, identity string) error {
	t.update(identity, (*statsRecord).start)
	return nil
}

func (t *StatsTracker) RecordWin(_ context.Context, identity string, wrongGuesses int) error {
	t.update(identity, func(r *statsRecord) { r.win(wrongGuesses) })
	return nil
}

func (t *StatsTracker) RecordLoss(_ context.Context, identity string) error {
	t.update(identity, (*statsRecord).loss)
	return nil
}

func (t *StatsTracker) Get(_ context.Context, identity string) (PlayerStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.m[identity]
	if !ok {
		return PlayerStats{}, nil
	}
	return r.stats(), nil
}

func (t *StatsTracker) update(identity string, fn func(r *statsRecord)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.m[identity]
	if !ok {
		r = &statsRecord{}
		t.m[identity] = r
	}
	fn(r)
}
