package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Outcome
	}{
		{name: "wrong", text: "[WRONG] Not even close, mortal.", want: OutcomeWrong},
		{name: "victory", text: "[VICTORY] Impossible!", want: OutcomeVictory},
		{name: "defeat", text: "[DEFEAT] Begone.", want: OutcomeDefeat},
		{name: "no_marker", text: "The sands whisper...", want: OutcomeNone},
		{name: "empty", text: "", want: OutcomeNone},
		{name: "lowercase_is_not_a_marker", text: "[victory] maybe", want: OutcomeNone},
		{name: "marker_mid_text", text: "Hmm... [WRONG] try again", want: OutcomeWrong},
		{name: "victory_beats_wrong", text: "[WRONG] wait, no [VICTORY]", want: OutcomeVictory},
		{name: "victory_beats_defeat", text: "[DEFEAT][VICTORY]", want: OutcomeVictory},
		{name: "defeat_beats_wrong", text: "[WRONG] and [DEFEAT]", want: OutcomeDefeat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text))
		})
	}
}

func TestInspect_Ambiguous(t *testing.T) {
	c := Inspect("[WRONG] ... [DEFEAT] ... [VICTORY]")
	assert.True(t, c.Ambiguous())
	assert.Equal(t, OutcomeVictory, c.Outcome)
	assert.Equal(t, []Outcome{OutcomeVictory, OutcomeDefeat, OutcomeWrong}, c.Found)

	c = Inspect("[WRONG] only one")
	assert.False(t, c.Ambiguous())

	c = Inspect("nothing here")
	assert.False(t, c.Ambiguous())
	assert.Empty(t, c.Found)
}

func TestStripMarkers(t *testing.T) {
	assert.Equal(t, "Not quite.", StripMarkers("[WRONG] Not quite."))
	assert.Equal(t, "You win!", StripMarkers("  [VICTORY]You win![VICTORY] "))
	assert.Equal(t, "", StripMarkers("[DEFEAT]"))
	assert.Equal(t, "plain", StripMarkers("plain"))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "none", OutcomeNone.String())
	assert.Equal(t, "wrong", OutcomeWrong.String())
	assert.Equal(t, "victory", OutcomeVictory.String())
	assert.Equal(t, "defeat", OutcomeDefeat.String())
}
