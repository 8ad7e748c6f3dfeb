package wager

import (
	"testing"
	"time"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newConfirmedMatch(t *testing.T, stake int64) *Match {
	t.Helper()
	m, err := NewMatch("alice", "bob", stake, TimeControlBlitz32, baseTime, DefaultConfirmationWindow)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	if err := m.Confirm(baseTime.Add(2 * time.Second)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	return m
}

func TestNewMatchRejectsSelfPlay(t *testing.T) {
	if _, err := NewMatch("alice", "alice", 1000, TimeControlBlitz32, baseTime, 0); err != ErrSameParticipant {
		t.Errorf("expected ErrSameParticipant, got %v", err)
	}
}

func TestNewMatchRejectsUnknownTimeControl(t *testing.T) {
	if _, err := NewMatch("alice", "bob", 1000, TimeControl(7), baseTime, 0); err != ErrInvalidTimeControl {
		t.Errorf("expected ErrInvalidTimeControl, got %v", err)
	}
}

func TestConfirmOnlyOnce(t *testing.T) {
	m, err := NewMatch("alice", "bob", 1000, TimeControlBullet11, baseTime, DefaultConfirmationWindow)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	if err := m.Confirm(baseTime.Add(time.Second)); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if err := m.Confirm(baseTime.Add(2 * time.Second)); err != ErrAlreadyConfirmed {
		t.Errorf("second confirm: expected ErrAlreadyConfirmed, got %v", err)
	}
}

func TestConfirmAfterWindowFails(t *testing.T) {
	m, err := NewMatch("alice", "bob", 1000, TimeControlBullet11, baseTime, DefaultConfirmationWindow)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	if err := m.Confirm(baseTime.Add(11 * time.Second)); err != ErrConfirmationExpired {
		t.Errorf("expected ErrConfirmationExpired, got %v", err)
	}
	// The match stays permanently unconfirmed.
	if err := m.Confirm(baseTime.Add(12 * time.Second)); err != ErrConfirmationExpired {
		t.Errorf("retry: expected ErrConfirmationExpired, got %v", err)
	}
}

func TestSubmitMoveAlternatesTurns(t *testing.T) {
	m := newConfirmedMatch(t, 1000)
	now := m.ConfirmedAt

	moves := []struct {
		player string
		san    string
	}{
		{"alice", "e4"}, {"bob", "e5"}, {"alice", "Nf3"},
	}
	for i, mv := range moves {
		now = now.Add(time.Second)
		res, err := m.SubmitMove(mv.player, mv.san, now)
		if err != nil {
			t.Fatalf("move %d (%s): %v", i, mv.san, err)
		}
		if res.TimedOut {
			t.Fatalf("move %d unexpectedly timed out", i)
		}
	}
	if len(m.Moves) != 3 {
		t.Errorf("expected 3 recorded moves, got %d", len(m.Moves))
	}
	if m.PlayerOneTurn {
		t.Error("expected player two's turn after 3 moves")
	}
}

func TestSubmitMoveOutOfTurn(t *testing.T) {
	m := newConfirmedMatch(t, 1000)
	if _, err := m.SubmitMove("bob", "e5", m.ConfirmedAt.Add(time.Second)); err != ErrNotYourTurn {
		t.Errorf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := m.SubmitMove("mallory", "e4", m.ConfirmedAt.Add(time.Second)); err != ErrNotYourTurn {
		t.Errorf("outsider: expected ErrNotYourTurn, got %v", err)
	}
}

func TestSubmitMoveBeforeConfirm(t *testing.T) {
	m, err := NewMatch("alice", "bob", 1000, TimeControlBlitz32, baseTime, DefaultConfirmationWindow)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	if _, err := m.SubmitMove("alice", "e4", baseTime.Add(time.Second)); err != ErrNotConfirmed {
		t.Errorf("expected ErrNotConfirmed, got %v", err)
	}
}

func TestSubmitMoveClockDebit(t *testing.T) {
	m := newConfirmedMatch(t, 1000)
	start := m.ClockOneMillis

	if _, err := m.SubmitMove("alice", "e4", m.ConfirmedAt.Add(5*time.Second)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := m.ClockOneMillis; got != start-5000 {
		t.Errorf("expected clock %d, got %d", start-5000, got)
	}
	if m.ClockTwoMillis != start {
		t.Errorf("opponent clock should be untouched, got %d", m.ClockTwoMillis)
	}
}

func TestSubmitMoveNegativeElapsedFails(t *testing.T) {
	m := newConfirmedMatch(t, 1000)
	if _, err := m.SubmitMove("alice", "e4", m.ConfirmedAt.Add(-time.Second)); err != ErrArithmeticOverflow {
		t.Errorf("expected ErrArithmeticOverflow, got %v", err)
	}
}

func TestSubmitMoveTimeoutEndsGame(t *testing.T) {
	m := newConfirmedMatch(t, 1000)

	// Exactly the full clock elapses: the mover's clock reaches zero, the
	// opponent wins, and the move is not recorded.
	res, err := m.SubmitMove("alice", "e4", m.ConfirmedAt.Add(180*time.Second))
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !res.TimedOut {
		t.Fatal("expected timeout")
	}
	if res.Winner != "bob" || m.Winner != "bob" {
		t.Errorf("expected bob to win on timeout, got %q", m.Winner)
	}
	if !m.GameOver {
		t.Error("expected game over")
	}
	if m.ClockOneMillis != 0 {
		t.Errorf("expected zeroed clock, got %d", m.ClockOneMillis)
	}
	if len(m.Moves) != 0 {
		t.Errorf("timed-out move must not be recorded, got %d moves", len(m.Moves))
	}

	// Any later report is rejected: timeout takes precedence.
	if err := m.SubmitOutcome("alice", ResultMate); err != ErrGameAlreadyOver {
		t.Errorf("expected ErrGameAlreadyOver, got %v", err)
	}
	if _, err := m.SubmitMove("bob", "e5", m.ConfirmedAt.Add(181*time.Second)); err != ErrGameAlreadyOver {
		t.Errorf("expected ErrGameAlreadyOver, got %v", err)
	}
}

func TestSubmitOutcomeSelfReport(t *testing.T) {
	m := newConfirmedMatch(t, 1000)
	if err := m.SubmitOutcome("alice", ResultMate); err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if !m.GameOver || m.Winner != "alice" {
		t.Errorf("expected alice declared winner, got gameOver=%v winner=%q", m.GameOver, m.Winner)
	}
	// Only the first report counts.
	if err := m.SubmitOutcome("bob", ResultResign); err != ErrGameAlreadyOver {
		t.Errorf("expected ErrGameAlreadyOver, got %v", err)
	}
}

func TestSubmitOutcomeDraw(t *testing.T) {
	m := newConfirmedMatch(t, 1000)
	if err := m.SubmitOutcome("bob", ResultDraw); err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if !m.GameOver || m.Winner != DrawWinner {
		t.Errorf("expected draw sentinel winner, got %q", m.Winner)
	}
}

func TestSubmitOutcomeNonParticipant(t *testing.T) {
	m := newConfirmedMatch(t, 1000)
	if err := m.SubmitOutcome("mallory", ResultMate); err != ErrNotParticipant {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
}

func TestParseResultAndTimeControl(t *testing.T) {
	if r, err := ParseResult("draw"); err != nil || r != ResultDraw {
		t.Errorf("ParseResult(draw) = %v, %v", r, err)
	}
	if _, err := ParseResult("forfeit"); err != ErrInvalidResult {
		t.Errorf("expected ErrInvalidResult, got %v", err)
	}
	if tc, err := ParseTimeControl("blitz"); err != nil || tc != TimeControlBlitz32 {
		t.Errorf("ParseTimeControl(blitz) = %v, %v", tc, err)
	}
	if _, err := ParseTimeControl("classical"); err != ErrInvalidTimeControl {
		t.Errorf("expected ErrInvalidTimeControl, got %v", err)
	}
}
