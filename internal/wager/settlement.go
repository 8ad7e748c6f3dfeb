package wager

// Payout partition in basis points. The winner pot is computed as the
// remainder after the platform and royalty shares so the three buckets always
// sum to exactly the pooled total.
const (
	WinnerShareBps      int64 = 9300
	PlatformShareBps    int64 = 400
	RoyaltyShareBps     int64 = 300
	RoyaltyEachShareBps int64 = 150
	bpsDenominator      int64 = 10_000
)

// Payees names the non-player settlement recipients. The two royalty
// recipients are the owners of the white and black opening lines; when no
// owner exists the caller passes the platform for that slot, but never the
// same identity for both.
type Payees struct {
	Platform     string
	WhiteRoyalty string
	BlackRoyalty string
}

// Transfer is one computed fund movement out of the match escrow.
type Transfer struct {
	To     string
	Amount int64
	Memo   string
}

// Settlement is the full transfer plan for one match. Every transfer is
// computed before any executes; the storage layer runs them inside a single
// transaction and flips the settled flag only after all legs succeed.
type Settlement struct {
	Total         int64
	WinnerShare   int64
	PlatformShare int64
	RoyaltyEach   int64
	Draw          bool
	Transfers     []Transfer
}

// ComputeSettlement partitions the pooled 2*stake into winner, platform and
// two royalty shares with checked arithmetic. For draws the winner share is
// split 50/50 between the participants; the odd unit from an odd pot goes to
// player one.
func ComputeSettlement(m *Match, payees Payees) (*Settlement, error) {
	if !m.GameOver {
		return nil, ErrGameNotOver
	}
	if m.Settled {
		return nil, ErrAlreadySettled
	}
	if payees.WhiteRoyalty == payees.BlackRoyalty {
		return nil, ErrIdenticalRoyaltyPayees
	}
	draw := m.Winner == DrawWinner
	if !draw && !m.IsParticipant(m.Winner) {
		return nil, ErrInvalidWinner
	}

	total, err := checkedMul64(m.Stake, 2)
	if err != nil {
		return nil, err
	}
	royaltyEach, err := bpsShare(total, RoyaltyEachShareBps)
	if err != nil {
		return nil, err
	}
	platform, err := bpsShare(total, PlatformShareBps)
	if err != nil {
		return nil, err
	}
	pot := total - platform - 2*royaltyEach

	s := &Settlement{
		Total:         total,
		WinnerShare:   pot,
		PlatformShare: platform,
		RoyaltyEach:   royaltyEach,
		Draw:          draw,
	}

	if draw {
		half := pot / 2
		s.Transfers = append(s.Transfers,
			Transfer{To: m.PlayerOne, Amount: pot - half, Memo: "Draw refund"},
			Transfer{To: m.PlayerTwo, Amount: half, Memo: "Draw refund"},
		)
	} else {
		s.Transfers = append(s.Transfers,
			Transfer{To: m.Winner, Amount: pot, Memo: "Winner payout"},
		)
	}
	s.Transfers = append(s.Transfers,
		Transfer{To: payees.Platform, Amount: platform, Memo: "Platform rake"},
		Transfer{To: payees.WhiteRoyalty, Amount: royaltyEach, Memo: "White opening royalty"},
		Transfer{To: payees.BlackRoyalty, Amount: royaltyEach, Memo: "Black opening royalty"},
	)
	return s, nil
}
