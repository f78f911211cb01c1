package game

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Store persists the resumable session snapshot and the game history.
// Implementations are expected to fail open: corrupt or missing data
// reads as absent, and write failures must not block the game.
type Store interface {
	LoadSession() (*Snapshot, bool, error)
	SaveSession(Snapshot) error
	ClearSession() error
	LoadHistory() ([]GameResult, error)
	SaveHistory([]GameResult) error
}

// Manager binds the single active session to durable storage. Every
// state change while a game runs writes a fresh snapshot; finished
// games land in the capped history.
type Manager struct {
	mu      sync.Mutex
	session *Session
	store   Store
	history []GameResult
	resumed bool

	exportFile string
}

func NewManager(store Store) *Manager {
	m := &Manager{session: NewSession(), store: store}

	history, err := store.LoadHistory()
	if err != nil {
		log.Warn().Err(err).Msg("history unreadable, starting empty")
	}
	m.history = history

	snap, ok, err := store.LoadSession()
	if err != nil {
		log.Warn().Err(err).Msg("saved session unreadable, starting fresh")
	}
	if ok && snap != nil {
		if err := m.session.Restore(*snap); err != nil {
			log.Warn().Err(err).Msg("saved session not resumable")
		} else {
			m.resumed = true
			log.Info().Int("players", len(snap.Players)).Int("round", snap.CurrentRound).Msg("game resumed")
		}
	}
	return m
}

// SetExportFile enables appending finished-game results to a text file.
func (m *Manager) SetExportFile(path string) { m.exportFile = path }

func (m *Manager) Session() *Session { return m.session }

// Resumed reports whether the current game was restored from storage.
func (m *Manager) Resumed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumed
}

func (m *Manager) History() []GameResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GameResult, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Manager) Begin() {
	m.session.Begin()
}

func (m *Manager) SetPlayers(players []Player) error {
	m.mu.Lock()
	m.resumed = false
	m.mu.Unlock()
	return m.session.SetPlayers(players)
}

func (m *Manager) Start(cfg Config) error {
	if err := m.session.Start(cfg); err != nil {
		return err
	}
	m.persist()
	return nil
}

// CompleteTurn applies a turn's score delta and handles end-of-game
// bookkeeping when the outcome says the game is over.
func (m *Manager) CompleteTurn(points int) (TurnOutcome, error) {
	outcome, err := m.session.CompleteTurn(points)
	if err != nil {
		return outcome, err
	}
	if outcome.GameOver {
		m.finishGame(outcome.Result)
	} else {
		m.persist()
	}
	return outcome, nil
}

func (m *Manager) Skip() (TurnOutcome, error) {
	return m.CompleteTurn(SkipPenalty)
}

// EndGame aborts the game from the game screen.
func (m *Manager) EndGame() (*GameResult, error) {
	result, err := m.session.EndGame()
	if err != nil {
		return nil, err
	}
	m.finishGame(result)
	return result, nil
}

func (m *Manager) PlayAgain() {
	m.session.PlayAgain()
	m.mu.Lock()
	m.resumed = false
	m.mu.Unlock()
	if err := m.store.ClearSession(); err != nil {
		log.Warn().Err(err).Msg("failed to clear saved session")
	}
}

// RecordPrompt remembers a served prompt and persists the snapshot so
// the repeat-avoidance window survives a reload.
func (m *Manager) RecordPrompt(text string) {
	m.session.RecordPrompt(text)
	m.persist()
}

// DisableTTS turns speech off for the session and persists the flag.
func (m *Manager) DisableTTS() {
	m.session.DisableTTS()
	m.persist()
}

func (m *Manager) SetTTSEnabled(on bool) {
	m.session.SetTTSEnabled(on)
	m.persist()
}

func (m *Manager) finishGame(result *GameResult) {
	if result == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]GameResult{*result}, m.history...)
	if len(m.history) > HistoryLimit {
		m.history = m.history[:HistoryLimit]
	}
	if err := m.store.SaveHistory(m.history); err != nil {
		log.Warn().Err(err).Msg("failed to save game history")
	}
	if err := m.store.ClearSession(); err != nil {
		log.Warn().Err(err).Msg("failed to clear saved session")
	}
	if m.exportFile != "" {
		if err := ExportResult(result, m.exportFile); err != nil {
			log.Warn().Err(err).Str("file", m.exportFile).Msg("failed to export game result")
		}
	}
	log.Info().Str("winner", result.WinnerName).Int("players", len(result.Players)).Msg("game over")
}

func (m *Manager) persist() {
	if !m.session.InGame() {
		return
	}
	if err := m.store.SaveSession(m.session.Snapshot()); err != nil {
		log.Warn().Err(err).Msg("failed to save session snapshot")
	}
}
