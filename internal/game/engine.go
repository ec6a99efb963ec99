package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRoundActive   = errors.New("round already active")
	ErrRewardPending = errors.New("reward delivery in progress")
	ErrNoActiveRound = errors.New("no active round")

	errCooldownActive = errors.New("cooldown active")
	errStaleRound     = errors.New("round changed during turn")
	errNoChange       = errors.New("no change")
)

// Generator produces the Sphinx's reply to a player message.
type Generator interface {
	Generate(ctx context.Context, identity, input, systemPrompt string) (string, error)
}

// Resolver looks up a player. A nil profile with a nil error means the
// identity is unknown and the turn is dropped.
type Resolver interface {
	Resolve(ctx context.Context, identity string) (*Profile, error)
}

// Canonicalizer is implemented by resolvers whose identities have several
// spellings. Sessions, stats and rewards are keyed on the canonical form.
type Canonicalizer interface {
	Canonical(identity string) string
}

// Rewarder pays out a victory and returns a receipt id (a tx hash).
type Rewarder interface {
	Transfer(ctx context.Context, identity, amount, symbol string) (string, error)
}

type Deps struct {
	Store     SessionStore
	Stats     StatsStore
	Generator Generator
	Resolver  Resolver
	Rewarder  Rewarder
	Logger    *zap.Logger
}

// Engine runs the game for every player: one HandleTurn call per inbound
// message.
type Engine struct {
	cfg Config

	store    SessionStore
	stats    StatsStore
	gen      Generator
	resolver Resolver
	rewarder Rewarder
	log      *zap.Logger

	pick       func(n int) int
	newRoundID func() string
}

func NewEngine(cfg Config, deps Deps) *Engine {
	if cfg.Rules.MaxAttempts <= 0 {
		cfg.Rules.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Rules.Cooldown <= 0 {
		cfg.Rules.Cooldown = DefaultCooldown
	}
	if deps.Store == nil {
		deps.Store = NewInMemorySessionStore(cfg.Rules.MaxAttempts)
	}
	if deps.Stats == nil {
		deps.Stats = NewStatsTracker()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		store:      deps.Store,
		stats:      deps.Stats,
		gen:        deps.Generator,
		resolver:   deps.Resolver,
		rewarder:   deps.Rewarder,
		log:        deps.Logger.Named("engine"),
		pick:       rand.IntN,
		newRoundID: uuid.NewString,
	}
}

func (e *Engine) Stats(ctx context.Context, identity string) (PlayerStats, error) {
	return e.stats.Get(ctx, e.canonical(identity))
}

func (e *Engine) canonical(identity string) string {
	identity = strings.TrimSpace(identity)
	if c, ok := e.resolver.(Canonicalizer); ok {
		return c.Canonical(identity)
	}
	return identity
}

func (e *Engine) track(log *zap.Logger, err error) {
	if err != nil {
		log.Warn("stats update failed", zap.Error(err))
	}
}

// HandleTurn processes one message from identity at time now.
func (e *Engine) HandleTurn(ctx context.Context, turn Turn, now time.Time) (reply Reply) {
	defer func() {
		turnsTotal.WithLabelValues(strconv.Itoa(reply.Status)).Inc()
	}()

	identity := e.canonical(turn.Identity)
	if identity == "" {
		return Reply{Status: http.StatusBadRequest, Text: "Sender address required"}
	}
	text := strings.TrimSpace(turn.Text)
	if text == "" {
		return Reply{Status: http.StatusBadRequest, Text: "Message text required"}
	}
	log := e.log.With(zap.String("identity", identity))

	// Only an expired cooldown is written back, so turns that are later
	// dropped never create a session.
	var remaining int
	sess, err := e.store.Update(ctx, identity, func(s *Session) error {
		cooling := s.State == StateCooldown
		if e.cfg.Rules.IsBlocked(s, now) {
			remaining = RemainingSeconds(s, now)
			return errCooldownActive
		}
		if !cooling {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		err = nil
	}
	if errors.Is(err, errCooldownActive) {
		log.Debug("turn blocked by cooldown", zap.Int("remainingSec", remaining))
		return Reply{
			Status: http.StatusTooManyRequests,
			Text:   fmt.Sprintf("🕒 Please wait %d seconds before your next attempt...", remaining),
		}
	}
	if err != nil {
		log.Error("session load failed", zap.Error(err))
		return errorReply()
	}

	profile, err := e.resolver.Resolve(ctx, identity)
	if err != nil {
		log.Error("identity resolution failed", zap.Error(err))
		return errorReply()
	}
	if profile == nil {
		log.Info("identity not resolvable, dropping turn")
		return Reply{Status: StatusDropped}
	}
	if profile.DisplayName == "" {
		profile.DisplayName = turn.DisplayName
	}

	switch parseCommand(text) {
	case cmdStart:
		return e.startRound(ctx, log, identity, now)
	case cmdHint:
		return e.repeatHint(sess)
	case cmdRules:
		return Reply{Status: http.StatusOK, Text: e.rulesText()}
	case cmdStats:
		st, err := e.stats.Get(ctx, identity)
		if err != nil {
			log.Error("stats lookup failed", zap.Error(err))
			return errorReply()
		}
		return Reply{Status: http.StatusOK, Text: formatStats(st)}
	case cmdSurrender:
		return e.surrender(ctx, log, identity, now)
	case cmdUnknown:
		return Reply{Status: http.StatusBadRequest, Text: "Unknown command. Type /rules to see available commands."}
	}

	return e.play(ctx, log, *profile, sess, text, now)
}

func (e *Engine) startRound(ctx context.Context, log *zap.Logger, identity string, now time.Time) Reply {
	coin := Coins[e.pick(len(Coins))]
	roundID := e.newRoundID()

	var remaining int
	_, err := e.store.Update(ctx, identity, func(s *Session) error {
		if e.cfg.Rules.IsBlocked(s, now) {
			remaining = RemainingSeconds(s, now)
			return errCooldownActive
		}
		switch s.State {
		case StateInProgress:
			return ErrRoundActive
		case StateWaitingForReward:
			return ErrRewardPending
		}

		s.State = StateInProgress
		s.AttemptsLeft = e.cfg.Rules.MaxAttempts
		s.CooldownUntil = time.Time{}
		s.CurrentTarget = coin.Symbol
		s.HintCount = 1
		s.LastHint = coin.Hints[0]
		s.RoundID = roundID
		s.RoundStartedAt = now
		return nil
	})
	switch {
	case errors.Is(err, ErrRoundActive):
		return Reply{Status: http.StatusBadRequest, Text: "You already have an active game! Type /surrender to give up."}
	case errors.Is(err, ErrRewardPending):
		return Reply{Status: http.StatusBadRequest, Text: "Your reward is still being delivered. Try again in a moment."}
	case errors.Is(err, errCooldownActive):
		return Reply{Status: http.StatusTooManyRequests, Text: fmt.Sprintf("🕒 Please wait %d seconds before your next attempt...", remaining)}
	case err != nil:
		log.Error("start round failed", zap.Error(err))
		return errorReply()
	}

	roundsStartedTotal.Inc()
	e.track(log, e.stats.RecordStart(ctx, identity))
	log.Info("round started", zap.String("roundId", roundID))

	return Reply{
		Status: http.StatusOK,
		Text: fmt.Sprintf(
			"🔮 Welcome, mortal, to the realm of the MemeCoin Sphinx!\n"+
				"Name the meme coin I am thinking of. You have %d attempts.\n\n"+
				"Your first hint:\n%s",
			e.cfg.Rules.MaxAttempts, coin.Hints[0]),
	}
}

func (e *Engine) repeatHint(sess Session) Reply {
	switch sess.State {
	case StateInProgress:
		return Reply{
			Status: http.StatusOK,
			Text:   fmt.Sprintf("Current hint:\n\n%s\n\nYou have %d attempts remaining.", sess.LastHint, sess.AttemptsLeft),
		}
	case StateWaitingForReward:
		return Reply{Status: http.StatusBadRequest, Text: "Your reward is still being delivered. Try again in a moment."}
	default:
		return Reply{Status: http.StatusBadRequest, Text: "No active game. Type /start to begin a new game!"}
	}
}

func (e *Engine) surrender(ctx context.Context, log *zap.Logger, identity string, now time.Time) Reply {
	_, err := e.store.Update(ctx, identity, func(s *Session) error {
		if s.State != StateInProgress {
			return ErrNoActiveRound
		}
		e.cfg.Rules.StartCooldown(s, now)
		return nil
	})
	if errors.Is(err, ErrNoActiveRound) {
		return Reply{Status: http.StatusBadRequest, Text: "No active game to surrender!"}
	}
	if err != nil {
		log.Error("surrender failed", zap.Error(err))
		return errorReply()
	}

	e.track(log, e.stats.RecordLoss(ctx, identity))
	log.Info("round surrendered")
	return Reply{
		Status: http.StatusOK,
		Text:   fmt.Sprintf("😸 You bow before the Sphinx. Return in %s to try again!", e.cfg.Rules.Cooldown),
	}
}

// play forwards a guess or small talk to the generator and applies the
// classified outcome.
func (e *Engine) play(ctx context.Context, log *zap.Logger, p Profile, sess Session, text string, now time.Time) Reply {
	switch sess.State {
	case StateWaitingForReward:
		return Reply{Status: http.StatusBadRequest, Text: "Your reward is still being delivered. Try again in a moment."}
	case StateInProgress:
	default:
		return Reply{Status: http.StatusOK, Text: invitations[e.pick(len(invitations))]}
	}

	raw, err := e.gen.Generate(ctx, sess.Identity, text, systemPrompt(p, sess))
	if err != nil {
		log.Error("text generation failed", zap.Error(err))
		return errorReply()
	}

	cls := Inspect(raw)
	if cls.Ambiguous() {
		ambiguousRepliesTotal.Inc()
		log.Warn("generator reply carries several markers",
			zap.String("chosen", cls.Outcome.String()), zap.Int("markers", len(cls.Found)))
	}
	if cls.Outcome == OutcomeNone {
		log.Debug("generator reply carries no marker")
	}

	var wrongGuesses int
	after, err := e.store.Update(ctx, sess.Identity, func(s *Session) error {
		if s.State != StateInProgress || s.RoundID != sess.RoundID {
			return errStaleRound
		}
		switch cls.Outcome {
		case OutcomeWrong:
			s.AttemptsLeft--
			if s.AttemptsLeft <= 0 {
				s.AttemptsLeft = 0
				e.cfg.Rules.StartCooldown(s, now)
			} else {
				advanceHint(s)
			}
		case OutcomeDefeat:
			e.cfg.Rules.StartCooldown(s, now)
		case OutcomeVictory:
			wrongGuesses = e.cfg.Rules.MaxAttempts - s.AttemptsLeft
			s.State = StateWaitingForReward
		default:
			return errNoChange
		}
		return nil
	})

	reply := StripMarkers(raw)
	if reply == "" {
		reply = "🔮 The Sphinx ponders in silence..."
	}

	switch {
	case errors.Is(err, errNoChange):
		outcomesTotal.WithLabelValues(cls.Outcome.String(), "true").Inc()
		return Reply{Status: http.StatusOK, Text: redact(reply, sess.CurrentTarget)}
	case errors.Is(err, errStaleRound):
		outcomesTotal.WithLabelValues(cls.Outcome.String(), "false").Inc()
		log.Warn("outcome ignored, round changed during generation",
			zap.String("outcome", cls.Outcome.String()), zap.String("roundId", sess.RoundID))
		return Reply{Status: http.StatusOK, Text: redact(reply, sess.CurrentTarget)}
	case err != nil:
		log.Error("apply outcome failed", zap.Error(err))
		return errorReply()
	}
	outcomesTotal.WithLabelValues(cls.Outcome.String(), "true").Inc()

	switch after.State {
	case StateWaitingForReward:
		e.track(log, e.stats.RecordWin(ctx, sess.Identity, wrongGuesses))
		log.Info("victory", zap.String("roundId", sess.RoundID), zap.Int("wrongGuesses", wrongGuesses))
		return Reply{Status: http.StatusOK, Text: reply + "\n\n" + e.dispatchReward(ctx, log, sess.Identity, sess.RoundID)}
	case StateCooldown:
		e.track(log, e.stats.RecordLoss(ctx, sess.Identity))
		log.Info("defeat", zap.String("outcome", cls.Outcome.String()), zap.Time("cooldownUntil", after.CooldownUntil))
		return Reply{
			Status: http.StatusOK,
			Text:   fmt.Sprintf("%s\n\n🕒 Wait %d seconds before you dare challenge me again!", reply, RemainingSeconds(&after, now)),
		}
	}

	return Reply{
		Status: http.StatusOK,
		Text:   fmt.Sprintf("%s\n\nYou have %d attempts remaining.", redact(reply, sess.CurrentTarget), after.AttemptsLeft),
	}
}

// dispatchReward pays the victory of roundID once, then ends the round
// whatever the transfer result.
func (e *Engine) dispatchReward(ctx context.Context, log *zap.Logger, identity, roundID string) string {
	amount, symbol := e.cfg.Reward.Amount, e.cfg.Reward.Symbol
	receipt, transferErr := e.rewarder.Transfer(ctx, identity, amount, symbol)

	// reset even when the turn's context is gone
	_, err := e.store.Update(context.WithoutCancel(ctx), identity, func(s *Session) error {
		if s.State != StateWaitingForReward || s.RoundID != roundID {
			return errStaleRound
		}
		e.cfg.Rules.resetRound(s)
		return nil
	})
	if err != nil {
		log.Error("reset after reward failed", zap.String("roundId", roundID), zap.Error(err))
	}

	if transferErr != nil {
		rewardsTotal.WithLabelValues("failed").Inc()
		log.Error("reward transfer failed",
			zap.String("roundId", roundID), zap.String("symbol", symbol), zap.String("amount", amount), zap.Error(transferErr))
		return "⚠️ The ancient contract could not deliver your reward right now. Your victory stands; the payout was not sent."
	}

	rewardsTotal.WithLabelValues("sent").Inc()
	log.Info("reward sent", zap.String("roundId", roundID), zap.String("receipt", receipt))
	return fmt.Sprintf("✨ The ancient contract has been fulfilled! %s %s sent to %s (tx %s).", amount, symbol, identity, receipt)
}

func advanceHint(s *Session) {
	coin, ok := coinBySymbol(s.CurrentTarget)
	if !ok || s.HintCount >= len(coin.Hints) {
		return
	}
	s.LastHint = coin.Hints[s.HintCount]
	s.HintCount++
}

// redact hides the secret symbol in replies sent while a round is open.
func redact(text, target string) string {
	if target == "" {
		return text
	}
	return symbolPattern(target).ReplaceAllString(text, "???")
}

func errorReply() Reply {
	return Reply{Status: http.StatusInternalServerError, Text: "Error processing request"}
}
