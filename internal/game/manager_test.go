package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	session    *Snapshot
	history    []GameResult
	loadErr    error
	saveCalls  int
	clearCalls int
}

func (m *memStore) LoadSession() (*Snapshot, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	if m.session == nil {
		return nil, false, nil
	}
	snap := *m.session
	return &snap, true, nil
}

func (m *memStore) SaveSession(snap Snapshot) error {
	m.saveCalls++
	m.session = &snap
	return nil
}

func (m *memStore) ClearSession() error {
	m.clearCalls++
	m.session = nil
	return nil
}

func (m *memStore) LoadHistory() ([]GameResult, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.history, nil
}

func (m *memStore) SaveHistory(history []GameResult) error {
	m.history = history
	return nil
}

func startManagedGame(t *testing.T, m *Manager, names ...string) {
	t.Helper()
	m.Begin()
	if err := m.SetPlayers(testPlayers(names...)); err != nil {
		t.Fatalf("should be able to set players: %v", err)
	}
	cfg := Config{Category: CategoryKids, Intensity: 1, Rounds: MinRounds, TTSEnabled: true}
	if err := m.Start(cfg); err != nil {
		t.Fatalf("should be able to start game: %v", err)
	}
}

func TestManagerPersistsSnapshotsDuringGame(t *testing.T) {
	st := &memStore{}
	m := NewManager(st)
	startManagedGame(t, m, "Alice", "Bob")

	if st.session == nil {
		t.Fatal("starting a game should write a snapshot")
	}
	saves := st.saveCalls
	if _, err := m.CompleteTurn(5); err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if st.saveCalls <= saves {
		t.Fatal("completing a turn should write a fresh snapshot")
	}
	if st.session.Players[0].Score != 5 {
		t.Fatalf("snapshot should carry the new score, got %d", st.session.Players[0].Score)
	}
}

func TestManagerResumesSavedGame(t *testing.T) {
	st := &memStore{}
	first := NewManager(st)
	startManagedGame(t, first, "Alice", "Bob")
	first.CompleteTurn(10)

	resumed := NewManager(st)
	if !resumed.Resumed() {
		t.Fatal("manager should resume the saved game")
	}
	sess := resumed.Session()
	if sess.Screen() != ScreenGame {
		t.Fatalf("expected game screen after resume, got %s", sess.Screen())
	}
	player, err := sess.CurrentPlayer()
	if err != nil {
		t.Fatalf("resumed session should have a current player: %v", err)
	}
	if player.Name != "Bob" {
		t.Fatalf("expected Bob's turn after resume, got %s", player.Name)
	}
}

func TestManagerStartsFreshOnUnreadableStore(t *testing.T) {
	st := &memStore{loadErr: errors.New("disk exploded")}
	m := NewManager(st)

	if m.Resumed() {
		t.Fatal("unreadable store must not claim a resumed game")
	}
	if m.Session().Screen() != ScreenWelcome {
		t.Fatalf("expected a fresh session, got screen %s", m.Session().Screen())
	}
	if len(m.History()) != 0 {
		t.Fatal("unreadable store must read as empty history")
	}
}

func TestGameOverClearsSessionAndRecordsHistory(t *testing.T) {
	st := &memStore{}
	m := NewManager(st)
	startManagedGame(t, m, "Alice", "Bob")

	// Alice scores every round, Bob never does.
	var outcome TurnOutcome
	for i := 0; i < MinRounds; i++ {
		m.CompleteTurn(DarePoints)
		outcome, _ = m.CompleteTurn(0)
	}
	if !outcome.GameOver {
		t.Fatal("game should be over")
	}
	if st.session != nil {
		t.Fatal("finished games must not leave a resumable snapshot")
	}
	history := m.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].WinnerName != "Alice" {
		t.Fatalf("expected Alice in history, got %s", history[0].WinnerName)
	}
	if len(st.history) != 1 {
		t.Fatal("history should be persisted")
	}
}

func TestHistoryCappedAtTwentyNewestFirst(t *testing.T) {
	st := &memStore{}
	m := NewManager(st)

	for i := 1; i <= HistoryLimit+1; i++ {
		winner := fmt.Sprintf("Winner%d", i)
		startManagedGame(t, m, winner, "Bob")
		m.CompleteTurn(DarePoints) // winner scores, so the name lands in history
		if _, err := m.EndGame(); err != nil {
			t.Fatalf("game %d failed to end: %v", i, err)
		}
		m.PlayAgain()
	}

	history := m.History()
	if len(history) != HistoryLimit {
		t.Fatalf("expected history capped at %d, got %d", HistoryLimit, len(history))
	}
	if history[0].WinnerName != fmt.Sprintf("Winner%d", HistoryLimit+1) {
		t.Fatalf("expected newest game first, got %s", history[0].WinnerName)
	}
	if history[len(history)-1].WinnerName != "Winner2" {
		t.Fatalf("expected oldest surviving game to be Winner2, got %s", history[len(history)-1].WinnerName)
	}
}

func TestPlayAgainClearsStoredSession(t *testing.T) {
	st := &memStore{}
	m := NewManager(st)
	startManagedGame(t, m, "Alice", "Bob")

	m.PlayAgain()
	if st.session != nil {
		t.Fatal("play again should clear the stored session")
	}
	if m.Session().Screen() != ScreenPlayerSetup {
		t.Fatalf("expected player setup, got %s", m.Session().Screen())
	}
}

func TestDisableTTSPersists(t *testing.T) {
	st := &memStore{}
	m := NewManager(st)
	startManagedGame(t, m, "Alice", "Bob")

	m.DisableTTS()
	if st.session == nil || !st.session.TTSDisabled {
		t.Fatal("tts-disabled flag should be persisted")
	}

	resumed := NewManager(st)
	if resumed.Session().TTSActive() {
		t.Fatal("tts should stay off after a resume")
	}
}

func TestExportResultWritesFile(t *testing.T) {
	st := &memStore{}
	m := NewManager(st)
	exportFile := filepath.Join(t.TempDir(), "results.txt")
	m.SetExportFile(exportFile)
	startManagedGame(t, m, "Alice", "Bob")
	m.CompleteTurn(DarePoints)
	if _, err := m.EndGame(); err != nil {
		t.Fatalf("failed to end game: %v", err)
	}

	data, err := os.ReadFile(exportFile)
	if err != nil {
		t.Fatalf("export file should exist: %v", err)
	}
	if !strings.Contains(string(data), "Winner: Alice") {
		t.Fatalf("export should name the winner, got:\n%s", data)
	}
}
