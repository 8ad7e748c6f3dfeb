package game

import (
	"testing"

	"github.com/chessbets/backend/internal/models"
)

func ledgerEntry(matchID int, entryType string, amount int64) models.EscrowLedger {
	return models.EscrowLedger{MatchID: matchID, EntryType: entryType, Amount: amount}
}

func TestEscrowNetSumsStakesMinusPayouts(t *testing.T) {
	entries := []models.EscrowLedger{
		ledgerEntry(1, escrowStakeIn, 500_000),
		ledgerEntry(1, escrowStakeIn, 500_000),
	}
	if got := escrowNet(entries); got != 1_000_000 {
		t.Errorf("escrowNet after both stakes = %d, want 1000000", got)
	}

	entries = append(entries,
		ledgerEntry(1, escrowPayout, 930_000),
		ledgerEntry(1, escrowPayout, 40_000),
		ledgerEntry(1, escrowPayout, 15_000),
		ledgerEntry(1, escrowPayout, 15_000),
	)
	if got := escrowNet(entries); got != 0 {
		t.Errorf("escrowNet after full payout = %d, want 0", got)
	}
}

func TestEscrowNetEmptyLedger(t *testing.T) {
	// A match that never confirmed has no ledger rows and holds nothing, no
	// matter what the shared escrow account carries from other matches.
	if got := escrowNet(nil); got != 0 {
		t.Errorf("escrowNet(nil) = %d, want 0", got)
	}
}

func TestEscrowNetIgnoresUnknownEntryTypes(t *testing.T) {
	entries := []models.EscrowLedger{
		ledgerEntry(1, escrowStakeIn, 1000),
		ledgerEntry(1, "ADJUSTMENT", 999),
	}
	if got := escrowNet(entries); got != 1000 {
		t.Errorf("escrowNet with unknown entry type = %d, want 1000", got)
	}
}
