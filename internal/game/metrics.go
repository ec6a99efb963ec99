package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphinx_turns_total",
			Help: "Chat turns handled, by reply status.",
		},
		[]string{"status"},
	)
	outcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphinx_outcomes_total",
			Help: "Classified generator replies during active rounds.",
		},
		[]string{"outcome", "applied"},
	)
	ambiguousRepliesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sphinx_ambiguous_replies_total",
			Help: "Generator replies carrying more than one outcome marker.",
		},
	)
	roundsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sphinx_rounds_started_total",
			Help: "Rounds started.",
		},
	)
	rewardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphinx_rewards_total",
			Help: "Reward dispatch attempts, by result.",
		},
		[]string{"result"},
	)
)
