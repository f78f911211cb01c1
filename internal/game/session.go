package game

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidScreen  = errors.New("invalid screen for action")
	ErrNoPlayers      = errors.New("at least two players required")
	ErrPlayerName     = errors.New("player name must not be empty")
	ErrInvalidConfig  = errors.New("invalid game configuration")
	ErrStaleTurn      = errors.New("stale turn token")
	ErrNoActivePlayer = errors.New("no active player")
)

// recentPromptWindow bounds how many prior prompts are fed back to the
// model as "do not repeat" context.
const recentPromptWindow = 25

// Session owns the full state of one play-through: whose turn it is,
// which round we're in, scores, and the sudden-death flag. All mutable
// state lives behind the mutex; callers only ever see copies.
type Session struct {
	mu sync.Mutex

	screen       Screen
	returnScreen Screen // where to go back to from the history screen

	players []Player
	config  Config

	currentRound       int
	currentPlayerIndex int
	suddenDeath        bool

	turnToken   string
	usedPrompts []string
	ttsDisabled bool
}

// TurnOutcome describes what CompleteTurn caused beyond the score delta.
type TurnOutcome struct {
	RoundOver   bool
	SuddenDeath bool
	TiedPlayers []string // names, set when a sudden-death round was injected
	GameOver    bool
	Result      *GameResult
}

func NewSession() *Session {
	return &Session{screen: ScreenWelcome, config: defaultConfig()}
}

func defaultConfig() Config {
	return Config{Category: CategoryKids, Intensity: 1, Rounds: DefaultRounds, TTSEnabled: true}
}

// Begin leaves the welcome screen for player setup.
func (s *Session) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == ScreenWelcome {
		s.screen = ScreenPlayerSetup
	}
}

// SetPlayers registers the roster and moves on to category selection.
// Scores always reset to zero here, even when names carry over from a
// previous game.
func (s *Session) SetPlayers(players []Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenWelcome && s.screen != ScreenPlayerSetup {
		return ErrInvalidScreen
	}
	if len(players) < 2 {
		return ErrNoPlayers
	}
	roster := make([]Player, len(players))
	for i, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w (player %d)", ErrPlayerName, i+1)
		}
		if p.Gender != GenderMale && p.Gender != GenderFemale {
			return fmt.Errorf("invalid gender for player %q", p.Name)
		}
		p.ID = i
		p.Score = 0
		roster[i] = p
	}
	s.players = roster
	s.screen = ScreenCategory
	return nil
}

// Start locks in the configuration and begins round one.
func (s *Session) Start(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenCategory {
		return ErrInvalidScreen
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	for i := range s.players {
		s.players[i].Score = 0
	}
	s.config = cfg
	s.currentRound = 1
	s.currentPlayerIndex = 0
	s.suddenDeath = false
	s.usedPrompts = nil
	s.turnToken = uuid.NewString()
	s.screen = ScreenGame
	return nil
}

func validateConfig(cfg Config) error {
	switch cfg.Category {
	case CategoryKids, CategoryTeens, CategoryAdult:
	default:
		return fmt.Errorf("%w: unknown category %q", ErrInvalidConfig, cfg.Category)
	}
	if cfg.Intensity < 1 || cfg.Intensity > MaxIntensity {
		return fmt.Errorf("%w: intensity %d out of range", ErrInvalidConfig, cfg.Intensity)
	}
	if cfg.Rounds < MinRounds || cfg.Rounds > MaxRounds {
		return fmt.Errorf("%w: rounds %d out of range", ErrInvalidConfig, cfg.Rounds)
	}
	return nil
}

// CompleteTurn applies the score delta for the current player and
// advances the turn pointer. At the end of the final round it either
// injects a sudden-death round for the tied leaders or ends the game.
func (s *Session) CompleteTurn(points int) (TurnOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenGame {
		return TurnOutcome{}, ErrInvalidScreen
	}
	if s.currentPlayerIndex >= len(s.players) {
		return TurnOutcome{}, ErrNoActivePlayer
	}

	s.players[s.currentPlayerIndex].Score += points
	s.turnToken = uuid.NewString()

	if s.currentPlayerIndex+1 < len(s.players) {
		s.currentPlayerIndex++
		return TurnOutcome{}, nil
	}

	// Round is over.
	if s.currentRound < s.config.Rounds {
		s.currentRound++
		s.currentPlayerIndex = 0
		return TurnOutcome{RoundOver: true}, nil
	}

	// Final round just completed: check for a tie at the top.
	ranked := rankedByScore(s.players)
	topScore := ranked[0].Score
	var contenders []Player
	if topScore > 0 {
		for _, p := range ranked {
			if p.Score == topScore {
				contenders = append(contenders, p)
			}
		}
	}

	if len(contenders) > 1 {
		// Sudden death: only the tied leaders play one extra round.
		names := make([]string, len(contenders))
		for i, p := range contenders {
			names[i] = p.Name
		}
		s.players = contenders
		s.config.Rounds++
		s.currentRound++
		s.currentPlayerIndex = 0
		s.suddenDeath = true
		return TurnOutcome{RoundOver: true, SuddenDeath: true, TiedPlayers: names}, nil
	}

	result := s.endGameLocked()
	return TurnOutcome{RoundOver: true, GameOver: true, Result: result}, nil
}

// Skip forfeits the current turn for the fixed penalty.
func (s *Session) Skip() (TurnOutcome, error) {
	return s.CompleteTurn(SkipPenalty)
}

// EndGame finishes the game immediately, regardless of the round.
func (s *Session) EndGame() (*GameResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenGame {
		return nil, ErrInvalidScreen
	}
	return s.endGameLocked(), nil
}

func (s *Session) endGameLocked() *GameResult {
	ranked := rankedByScore(s.players)
	winner := "No one"
	if len(ranked) > 0 && ranked[0].Score > 0 {
		winner = ranked[0].Name
	}
	now := time.Now()
	result := &GameResult{
		ID:         now.UnixMilli(),
		Date:       now.Format("2006-01-02"),
		WinnerName: winner,
	}
	for _, p := range s.players {
		result.Players = append(result.Players, ResultPlayer{Name: p.Name, Score: p.Score, Avatar: p.Avatar})
	}
	s.screen = ScreenLeaderboard
	return result
}

// PlayAgain resets everything to defaults and returns to player setup.
func (s *Session) PlayAgain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = nil
	s.config = defaultConfig()
	s.currentRound = 1
	s.currentPlayerIndex = 0
	s.suddenDeath = false
	s.usedPrompts = nil
	s.turnToken = ""
	s.screen = ScreenPlayerSetup
}

// ShowHistory switches to the history screen, remembering where to
// return to.
func (s *Session) ShowHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == ScreenHistory {
		return
	}
	s.returnScreen = s.screen
	s.screen = ScreenHistory
}

// Back returns from the history screen.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenHistory {
		return
	}
	if s.returnScreen != "" {
		s.screen = s.returnScreen
	} else {
		s.screen = ScreenPlayerSetup
	}
	s.returnScreen = ""
}

func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// CurrentPlayer returns a copy of the player whose turn it is.
func (s *Session) CurrentPlayer() (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenGame || s.currentPlayerIndex >= len(s.players) {
		return Player{}, ErrNoActivePlayer
	}
	return s.players[s.currentPlayerIndex], nil
}

// OtherPlayers returns everyone except the current player.
func (s *Session) OtherPlayers() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Player, 0, len(s.players))
	for i, p := range s.players {
		if i != s.currentPlayerIndex {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) Players() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Player, len(s.players))
	copy(out, s.players)
	return out
}

// Leaderboard returns players ranked by descending score.
func (s *Session) Leaderboard() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rankedByScore(s.players)
}

func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *Session) Round() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRound, s.config.Rounds
}

func (s *Session) SuddenDeath() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suddenDeath
}

// TurnToken identifies the current turn. It changes whenever the turn
// advances, so a response generated for an abandoned turn can be told
// apart from the live one.
func (s *Session) TurnToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnToken
}

// CheckTurn reports whether the given token still names the live turn.
func (s *Session) CheckTurn(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenGame || token == "" || token != s.turnToken {
		return ErrStaleTurn
	}
	return nil
}

// RecordPrompt remembers a served prompt so later generations can be
// steered away from repeats.
func (s *Session) RecordPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usedPrompts = append(s.usedPrompts, text)
}

// RecentPrompts returns the most recent served prompts, capped to the
// repeat-avoidance window.
func (s *Session) RecentPrompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.usedPrompts)
	if n > recentPromptWindow {
		n = recentPromptWindow
	}
	out := make([]string, n)
	copy(out, s.usedPrompts[len(s.usedPrompts)-n:])
	return out
}

// DisableTTS turns speech off for the rest of this session, typically
// after the provider reports quota exhaustion.
func (s *Session) DisableTTS() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttsDisabled = true
}

func (s *Session) TTSActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.TTSEnabled && !s.ttsDisabled
}

func (s *Session) SetTTSEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.TTSEnabled = on
}

// Snapshot captures the resumable state. Only meaningful while a game
// is in progress.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := make([]Player, len(s.players))
	copy(players, s.players)
	used := make([]string, len(s.usedPrompts))
	copy(used, s.usedPrompts)
	return Snapshot{
		Screen:             s.screen,
		Players:            players,
		Config:             s.config,
		CurrentRound:       s.currentRound,
		CurrentPlayerIndex: s.currentPlayerIndex,
		SuddenDeath:        s.suddenDeath,
		TurnToken:          s.turnToken,
		UsedPrompts:        used,
		TTSDisabled:        s.ttsDisabled,
	}
}

// Restore resumes a previously snapshotted game. Snapshots taken
// outside the game screen are ignored.
func (s *Session) Restore(snap Snapshot) error {
	if snap.Screen != ScreenGame {
		return fmt.Errorf("snapshot not resumable from screen %q", snap.Screen)
	}
	if len(snap.Players) == 0 {
		return errors.New("snapshot has no players")
	}
	if snap.CurrentPlayerIndex < 0 || snap.CurrentPlayerIndex >= len(snap.Players) {
		return errors.New("snapshot player index out of range")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = snap.Screen
	s.players = snap.Players
	s.config = snap.Config
	s.currentRound = snap.CurrentRound
	s.currentPlayerIndex = snap.CurrentPlayerIndex
	s.suddenDeath = snap.SuddenDeath
	s.turnToken = snap.TurnToken
	s.usedPrompts = snap.UsedPrompts
	s.ttsDisabled = snap.TTSDisabled
	if s.turnToken == "" {
		s.turnToken = uuid.NewString()
	}
	return nil
}

// InGame reports whether a game is currently running.
func (s *Session) InGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen == ScreenGame
}

func rankedByScore(players []Player) []Player {
	out := make([]Player, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
