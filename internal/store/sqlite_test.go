package store

import (
	"path/filepath"
	"testing"

	"showdown/internal/game"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "showdown.db"))
	if err != nil {
		t.Fatalf("should be able to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot() game.Snapshot {
	return game.Snapshot{
		Screen: game.ScreenGame,
		Players: []game.Player{
			{ID: 0, Name: "Alice", Gender: game.GenderFemale, Avatar: "star", Score: 15},
			{ID: 1, Name: "Bob", Gender: game.GenderMale, Avatar: "moon", Score: -5},
		},
		Config:             game.Config{Category: game.CategoryAdult, Intensity: 3, Rounds: 7, TTSEnabled: true},
		CurrentRound:       4,
		CurrentPlayerIndex: 1,
		SuddenDeath:        false,
		TurnToken:          "token-1",
		UsedPrompts:        []string{"Tell a joke"},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.LoadSession(); err != nil || ok {
		t.Fatalf("empty store should have no session, ok=%v err=%v", ok, err)
	}

	want := sampleSnapshot()
	if err := s.SaveSession(want); err != nil {
		t.Fatalf("should be able to save session: %v", err)
	}

	got, ok, err := s.LoadSession()
	if err != nil || !ok {
		t.Fatalf("should be able to load session, ok=%v err=%v", ok, err)
	}
	if got.Screen != want.Screen || got.CurrentRound != want.CurrentRound || got.TurnToken != want.TurnToken {
		t.Fatalf("loaded snapshot differs: %+v", got)
	}
	if len(got.Players) != 2 || got.Players[1].Score != -5 {
		t.Fatalf("player state not preserved: %+v", got.Players)
	}
	if got.Config.Category != game.CategoryAdult || got.Config.Intensity != 3 {
		t.Fatalf("config not preserved: %+v", got.Config)
	}
}

func TestSaveSessionOverwrites(t *testing.T) {
	s := openTestStore(t)

	snap := sampleSnapshot()
	if err := s.SaveSession(snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	snap.CurrentRound = 5
	if err := s.SaveSession(snap); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, _, _ := s.LoadSession()
	if got.CurrentRound != 5 {
		t.Fatalf("expected latest snapshot, got round %d", got.CurrentRound)
	}
}

func TestClearSession(t *testing.T) {
	s := openTestStore(t)

	if err := s.ClearSession(); err != nil {
		t.Fatalf("clearing an empty store should not fail: %v", err)
	}
	s.SaveSession(sampleSnapshot())
	if err := s.ClearSession(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok, _ := s.LoadSession(); ok {
		t.Fatal("session should be gone after clear")
	}
}

func TestCorruptSessionFailsOpen(t *testing.T) {
	s := openTestStore(t)

	if err := s.set(sessionKey, "{not json"); err != nil {
		t.Fatalf("failed to plant corrupt blob: %v", err)
	}
	snap, ok, err := s.LoadSession()
	if snap != nil || ok {
		t.Fatal("corrupt session must read as absent")
	}
	if err == nil {
		t.Fatal("corrupt session should still report what went wrong")
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if history, err := s.LoadHistory(); err != nil || history != nil {
		t.Fatalf("empty store should have no history, got %v err=%v", history, err)
	}

	want := []game.GameResult{
		{ID: 2, Date: "2026-09-01", WinnerName: "Alice", Players: []game.ResultPlayer{{Name: "Alice", Score: 20, Avatar: "star"}}},
		{ID: 1, Date: "2026-08-31", WinnerName: "No one"},
	}
	if err := s.SaveHistory(want); err != nil {
		t.Fatalf("should be able to save history: %v", err)
	}

	got, err := s.LoadHistory()
	if err != nil {
		t.Fatalf("should be able to load history: %v", err)
	}
	if len(got) != 2 || got[0].WinnerName != "Alice" || got[1].WinnerName != "No one" {
		t.Fatalf("history differs: %+v", got)
	}
}

func TestCorruptHistoryFailsOpen(t *testing.T) {
	s := openTestStore(t)

	if err := s.set(historyKey, "[[["); err != nil {
		t.Fatalf("failed to plant corrupt blob: %v", err)
	}
	history, err := s.LoadHistory()
	if history != nil {
		t.Fatal("corrupt history must read as empty")
	}
	if err == nil {
		t.Fatal("corrupt history should still report what went wrong")
	}
}
