package game

import "strings"

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWrong
	OutcomeVictory
	OutcomeDefeat
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWrong:
		return "wrong"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "none"
	}
}

const (
	MarkerWrong   = "[WRONG]"
	MarkerVictory = "[VICTORY]"
	MarkerDefeat  = "[DEFEAT]"
)

// checked in priority order
var markers = []struct {
	text    string
	outcome Outcome
}{
	{MarkerVictory, OutcomeVictory},
	{MarkerDefeat, OutcomeDefeat},
	{MarkerWrong, OutcomeWrong},
}

type Classification struct {
	Outcome Outcome
	Found   []Outcome // every marker present, in priority order
}

// Ambiguous is true when the generator emitted more than one marker.
func (c Classification) Ambiguous() bool { return len(c.Found) > 1 }

// Inspect scans generated text for sentinel markers. Victory beats Defeat
// beats Wrong. Text without a marker is OutcomeNone.
func Inspect(text string) Classification {
	var c Classification
	for _, m := range markers {
		if strings.Contains(text, m.text) {
			c.Found = append(c.Found, m.outcome)
		}
	}
	if len(c.Found) > 0 {
		c.Outcome = c.Found[0]
	}
	return c
}

func Classify(text string) Outcome {
	return Inspect(text).Outcome
}

// StripMarkers removes sentinel markers before text reaches a player.
func StripMarkers(text string) string {
	for _, m := range markers {
		text = strings.ReplaceAll(text, m.text, "")
	}
	return strings.TrimSpace(text)
}
