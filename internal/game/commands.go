package game

import (
	"fmt"
	"strings"
)

type command int

const (
	cmdNone command = iota
	cmdStart
	cmdHint
	cmdRules
	cmdStats
	cmdSurrender
	cmdUnknown
)

var commandWords = map[string]command{
	"start":     cmdStart,
	"play":      cmdStart,
	"hint":      cmdHint,
	"rules":     cmdRules,
	"help":      cmdRules,
	"stats":     cmdStats,
	"surrender": cmdSurrender,
}

// parseCommand recognises "/start" style commands. Bare "start" and "play"
// also start a round; other bare words are guesses.
func parseCommand(text string) command {
	word := strings.ToLower(strings.TrimSpace(text))
	if f := strings.Fields(word); len(f) > 0 {
		word = f[0]
	}
	if rest, ok := strings.CutPrefix(word, "/"); ok {
		if c, ok := commandWords[rest]; ok {
			return c
		}
		return cmdUnknown
	}
	if word == "start" || word == "play" {
		if len(strings.Fields(text)) == 1 {
			return cmdStart
		}
	}
	return cmdNone
}

var invitations = []string{
	"🔮 The Sphinx is listening... but only to those who dare play. Type /start to begin!",
	"Hey, want to test your meme coin knowledge? Type /start to face my riddles!",
	"Interesting! But a riddle would be far more interesting. Type /start and try to guess my coin.",
	"I hear you, mortal. Now hear my challenge: type /start!",
}

func (e *Engine) rulesText() string {
	return fmt.Sprintf(`🎭 The Ancient Rules of the MemeCoin Sphinx 🎭

1. I think of a meme coin and give you a riddle about it.
2. Name the coin. Each wrong guess earns you another hint.
3. You have %d attempts. Guess right and %s %s is yours.
4. Fail, and you must wait %s before challenging me again.

Commands:
/start - Start a new game
/hint - See the current hint again
/stats - View your statistics
/rules - Show these rules
/surrender - Give up the current game`,
		e.cfg.Rules.MaxAttempts, e.cfg.Reward.Amount, e.cfg.Reward.Symbol, e.cfg.Rules.Cooldown)
}

func formatStats(st PlayerStats) string {
	var b strings.Builder
	b.WriteString("📊 Your Game Statistics 📊\n\n")
	fmt.Fprintf(&b, "Games Played: %d\n", st.GamesPlayed)
	fmt.Fprintf(&b, "Games Won: %d\n", st.GamesWon)
	fmt.Fprintf(&b, "Win Rate: %.1f%%\n", st.WinRate())
	fmt.Fprintf(&b, "Current Streak: %d\n", st.CurrentStreak)
	fmt.Fprintf(&b, "Best Streak: %d\n", st.BestStreak)
	fmt.Fprintf(&b, "Average Attempts: %.1f\n", st.AverageAttempts)

	if len(st.Achievements) > 0 {
		b.WriteString("\n🏆 Achievements Unlocked 🏆\n")
		for _, a := range st.Achievements {
			fmt.Fprintf(&b, "- %s: %s\n", a.Name, a.Description)
		}
	}
	return b.String()
}
