package wager

import "time"

const (
	// DefaultRating is the starting Elo rating for new players.
	DefaultRating = 1200

	// ProvisionalGameLimit is how many rated games a player remains
	// provisional for.
	ProvisionalGameLimit = 10

	// StakeHistorySize is the fixed size of the per-player stake ring buffer.
	StakeHistorySize = 10
)

// Profile is the persistent per-player rating and risk-history record. One
// exists per identity, created once via InitializeProfile and mutated only by
// the rating engine at settlement time (plus the privileged corrective path).
type Profile struct {
	Player string

	// Rating is unbounded signed integer math; it can in principle go
	// negative and has no ceiling.
	Rating int

	Games int
	Wins  int

	Provisional      bool
	ProvisionalGames int

	// MaxStake is the cached progressive stake cap, recomputed after every
	// rated game.
	MaxStake int64

	TotalStaked    int64
	WeightedWinSum int64

	HighStakeGames int
	HighStakeWins  int
	LowStakeGames  int
	LowStakeWins   int

	CreatedAt time.Time

	// Circular history of the last StakeHistorySize games. Zero stake marks
	// an unused slot; new writes overwrite the oldest entry.
	StakeHistory     [StakeHistorySize]int64
	WinHistory       [StakeHistorySize]bool
	NextHistoryIndex int
}

// NewProfile returns a fresh provisional profile with defaults.
func NewProfile(player string, now time.Time) *Profile {
	return &Profile{
		Player:      player,
		Rating:      DefaultRating,
		Provisional: true,
		MaxStake:    ProvisionalStakeCap,
		CreatedAt:   now,
	}
}

// recordStake writes one (stake, win-or-draw) pair into the ring buffer.
func (p *Profile) recordStake(stake int64, winOrDraw bool) {
	idx := p.NextHistoryIndex % StakeHistorySize
	p.StakeHistory[idx] = stake
	p.WinHistory[idx] = winOrDraw
	p.NextHistoryIndex = (idx + 1) % StakeHistorySize
}
