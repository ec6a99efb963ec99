package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"example.com/meme-sphinx/internal/game"
)

const maxTurnBody = 16 << 10

type TurnHandler interface {
	HandleTurn(ctx context.Context, turn game.Turn, now time.Time) game.Reply
}

type StatsSource interface {
	Stats(ctx context.Context, identity string) (game.PlayerStats, error)
}

type TurnsHandler struct {
	Turns TurnHandler
	Stats StatsSource
	Now   func() time.Time
}

// TurnRequest is one chat message. Identity is only read from gateway
// callers; a player always speaks as the address in their token.
type TurnRequest struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
}

type TurnResponse struct {
	Status int    `json:"status"`
	Reply  string `json:"reply"`
}

type AchievementResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type StatsResponse struct {
	Address         string                `json:"address"`
	GamesPlayed     int                   `json:"gamesPlayed"`
	GamesWon        int                   `json:"gamesWon"`
	GamesLost       int                   `json:"gamesLost"`
	CurrentStreak   int                   `json:"currentStreak"`
	BestStreak      int                   `json:"bestStreak"`
	WinRate         float64               `json:"winRate"`
	AverageAttempts float64               `json:"averageAttempts"`
	Achievements    []AchievementResponse `json:"achievements"`
}

func (h *TurnsHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Submit runs one game turn. The HTTP status mirrors the turn status; a
// dropped turn is 204 with no body.
func (h *TurnsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context")
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTurnBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	turn := game.Turn{
		Identity:    strings.TrimSpace(req.Identity),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Text:        req.Text,
	}
	if !claims.IsGateway() {
		if turn.Identity != "" && !strings.EqualFold(turn.Identity, claims.Address) {
			writeError(w, http.StatusForbidden, "forbidden", "players may only speak for themselves")
			return
		}
		turn.Identity = claims.Address
		if turn.DisplayName == "" {
			turn.DisplayName = claims.DisplayName
		}
	}

	reply := h.Turns.HandleTurn(r.Context(), turn, h.now())
	if reply.Status == game.StatusDropped {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, reply.Status, TurnResponse{Status: reply.Status, Reply: reply.Text})
}

// MyStats returns the calling player's statistics.
func (h *TurnsHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	claims, ok := ClaimsFromContext(r.Context())
	if !ok || claims.Address == "" {
		writeError(w, http.StatusForbidden, "forbidden", "player token required")
		return
	}

	st, err := h.Stats.Stats(r.Context(), claims.Address)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	resp := StatsResponse{
		Address:         claims.Address,
		GamesPlayed:     st.GamesPlayed,
		GamesWon:        st.GamesWon,
		GamesLost:       st.GamesLost,
		CurrentStreak:   st.CurrentStreak,
		BestStreak:      st.BestStreak,
		WinRate:         st.WinRate(),
		AverageAttempts: st.AverageAttempts,
		Achievements:    []AchievementResponse{},
	}
	for _, a := range st.Achievements {
		resp.Achievements = append(resp.Achievements, AchievementResponse{ID: a.ID, Name: a.Name, Description: a.Description})
	}
	writeJSON(w, http.StatusOK, resp)
}
