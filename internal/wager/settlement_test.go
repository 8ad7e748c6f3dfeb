package wager

import (
	"testing"
	"time"
)

var testPayees = Payees{
	Platform:     "platform",
	WhiteRoyalty: "white-owner",
	BlackRoyalty: "black-owner",
}

func finishedMatch(t *testing.T, stake int64, winner string) *Match {
	t.Helper()
	m := newConfirmedMatch(t, stake)
	m.GameOver = true
	m.Winner = winner
	return m
}

func sumTransfers(s *Settlement) int64 {
	var total int64
	for _, tr := range s.Transfers {
		total += tr.Amount
	}
	return total
}

func TestSettlementDecisiveShares(t *testing.T) {
	m := finishedMatch(t, 1_000_000, "alice")
	s, err := ComputeSettlement(m, testPayees)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	if s.Total != 2_000_000 {
		t.Errorf("total = %d, want 2000000", s.Total)
	}
	if s.WinnerShare != 1_860_000 { // 93%
		t.Errorf("winner share = %d, want 1860000", s.WinnerShare)
	}
	if s.PlatformShare != 80_000 { // 4%
		t.Errorf("platform share = %d, want 80000", s.PlatformShare)
	}
	if s.RoyaltyEach != 30_000 { // 1.5% each
		t.Errorf("royalty each = %d, want 30000", s.RoyaltyEach)
	}
	if got := sumTransfers(s); got != s.Total {
		t.Errorf("transfers sum to %d, want %d (no leakage, no creation)", got, s.Total)
	}
	if s.Transfers[0].To != "alice" || s.Transfers[0].Amount != 1_860_000 {
		t.Errorf("first transfer = %+v, want winner payout", s.Transfers[0])
	}
}

// The partition must be exact for stakes that don't divide evenly into basis
// points.
func TestSettlementSumExactForOddTotals(t *testing.T) {
	for _, stake := range []int64{1, 3, 7, 33, 999, 12_345, 1_000_001, 777_777_777} {
		for _, winner := range []string{"alice", DrawWinner} {
			m := finishedMatch(t, stake, winner)
			s, err := ComputeSettlement(m, testPayees)
			if err != nil {
				t.Fatalf("stake %d winner %q: %v", stake, winner, err)
			}
			if got := sumTransfers(s); got != s.Total {
				t.Errorf("stake %d winner %q: transfers sum %d != total %d", stake, winner, got, s.Total)
			}
		}
	}
}

func TestSettlementDrawSplitsWinnerShare(t *testing.T) {
	decisive := finishedMatch(t, 1_000_001, "alice")
	ds, err := ComputeSettlement(decisive, testPayees)
	if err != nil {
		t.Fatalf("decisive: %v", err)
	}

	draw := finishedMatch(t, 1_000_001, DrawWinner)
	s, err := ComputeSettlement(draw, testPayees)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !s.Draw {
		t.Fatal("expected draw settlement")
	}

	p1 := s.Transfers[0]
	p2 := s.Transfers[1]
	if p1.To != "alice" || p2.To != "bob" {
		t.Fatalf("unexpected draw payees: %+v %+v", p1, p2)
	}
	// The two halves reassemble the undivided winner share exactly; the odd
	// unit goes to player one.
	if p1.Amount+p2.Amount != ds.WinnerShare {
		t.Errorf("draw halves sum %d != decisive winner share %d", p1.Amount+p2.Amount, ds.WinnerShare)
	}
	if p1.Amount < p2.Amount {
		t.Errorf("rounding remainder must go to player one: p1=%d p2=%d", p1.Amount, p2.Amount)
	}
	if diff := p1.Amount - p2.Amount; diff != 0 && diff != 1 {
		t.Errorf("halves differ by %d, want 0 or 1", diff)
	}
}

func TestSettlementPreconditions(t *testing.T) {
	live := newConfirmedMatch(t, 1000)
	if _, err := ComputeSettlement(live, testPayees); err != ErrGameNotOver {
		t.Errorf("live match: expected ErrGameNotOver, got %v", err)
	}

	settled := finishedMatch(t, 1000, "bob")
	settled.Settled = true
	if _, err := ComputeSettlement(settled, testPayees); err != ErrAlreadySettled {
		t.Errorf("settled match: expected ErrAlreadySettled, got %v", err)
	}

	m := finishedMatch(t, 1000, "alice")
	dup := testPayees
	dup.BlackRoyalty = dup.WhiteRoyalty
	if _, err := ComputeSettlement(m, dup); err != ErrIdenticalRoyaltyPayees {
		t.Errorf("duplicate royalty payees: expected ErrIdenticalRoyaltyPayees, got %v", err)
	}

	stranger := finishedMatch(t, 1000, "mallory")
	if _, err := ComputeSettlement(stranger, testPayees); err != ErrInvalidWinner {
		t.Errorf("outside winner: expected ErrInvalidWinner, got %v", err)
	}
}

func TestSettlementOverflowChecked(t *testing.T) {
	m := finishedMatch(t, 1<<62, "alice")
	if _, err := ComputeSettlement(m, testPayees); err != ErrArithmeticOverflow {
		t.Errorf("expected ErrArithmeticOverflow, got %v", err)
	}
}

// End-to-end shape of the blitz scenario: create, confirm, three moves, a
// mate report by player one, then settlement.
func TestFullMatchFlow(t *testing.T) {
	m, err := NewMatch("alice", "bob", 1_000_000, TimeControlBlitz32, baseTime, DefaultConfirmationWindow)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Confirm(baseTime.Add(time.Second)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	now := m.ConfirmedAt
	for i, mv := range []struct{ p, san string }{{"alice", "e4"}, {"bob", "e5"}, {"alice", "Qh5"}} {
		now = now.Add(2 * time.Second)
		if _, err := m.SubmitMove(mv.p, mv.san, now); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
	}
	if err := m.SubmitOutcome("alice", ResultMate); err != nil {
		t.Fatalf("outcome: %v", err)
	}

	s, err := ComputeSettlement(m, testPayees)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	want := map[string]int64{
		"alice":       1_860_000,
		"platform":    80_000,
		"white-owner": 30_000,
		"black-owner": 30_000,
	}
	for _, tr := range s.Transfers {
		if want[tr.To] != tr.Amount {
			t.Errorf("transfer to %s = %d, want %d", tr.To, tr.Amount, want[tr.To])
		}
	}

	// The settled flag guards re-settlement.
	m.Settled = true
	if _, err := ComputeSettlement(m, testPayees); err != ErrAlreadySettled {
		t.Errorf("expected ErrAlreadySettled, got %v", err)
	}
}
