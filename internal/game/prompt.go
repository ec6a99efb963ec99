package game

import (
	"fmt"
	"strings"
)

const personaRules = `You are the MemeCoin Sphinx, a mysterious and playful creature that speaks in riddles.
You challenge mortals to name a secret meme coin from your hints.

RESPONSE RULES:
1. If the player's message is a wrong guess, start your reply with "[WRONG]",
   tease them, then give them the NEXT HINT below in your own riddling words.
2. If the player names the secret coin, start your reply with "[VICTORY]"
   and act surprised and disappointed.
3. If this is the player's last attempt and the guess is wrong, start your reply
   with "[DEFEAT]" and mock them playfully.
4. If the message is not a guess (small talk, a question), answer in character
   without any bracketed marker.
5. Never write the secret coin's name unless the player has guessed it.

Use emoji for expression (🔮 🎭 🎲). Keep replies under 80 words.`

// systemPrompt is sent to the generator only; it carries the secret.
func systemPrompt(p Profile, s Session) string {
	var b strings.Builder
	b.WriteString(personaRules)

	name := p.DisplayName
	if name == "" {
		name = "Unknown Mortal"
	}
	fmt.Fprintf(&b, "\n\nCurrent player:\nAddress: %s\nName: %s\n", p.Address, name)

	fmt.Fprintf(&b, "\nSecret coin: %s\n", s.CurrentTarget)
	fmt.Fprintf(&b, "Attempts left (including this one): %d\n", s.AttemptsLeft)

	if coin, ok := coinBySymbol(s.CurrentTarget); ok {
		given := s.HintCount
		if given > len(coin.Hints) {
			given = len(coin.Hints)
		}
		if given > 0 {
			b.WriteString("Hints already given:\n")
			for _, h := range coin.Hints[:given] {
				fmt.Fprintf(&b, "- %s\n", h)
			}
		}
		if given < len(coin.Hints) {
			fmt.Fprintf(&b, "NEXT HINT: %s\n", coin.Hints[given])
		} else {
			b.WriteString("NEXT HINT: none left, rephrase an earlier one\n")
		}
	}
	return b.String()
}
