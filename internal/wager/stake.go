package wager

import "time"

// Stake caps in base currency units. Established players climb through the
// tiers as their rated game count grows.
const (
	ProvisionalStakeCap int64 = 10_000_000
	PlayerStakeCap      int64 = 1_000_000_000

	tier1Games       = 15
	tier1Cap   int64 = 50_000_000
	tier2Games       = 25
	tier2Cap   int64 = 100_000_000
	tier3Games       = 40
	tier3Cap   int64 = 250_000_000
	tier4Games       = 60
	tier4Cap   int64 = 500_000_000
)

const (
	// StakeConsistencyFactor bounds a proposed stake to this multiple of the
	// player's recent average.
	StakeConsistencyFactor int64 = 2

	// minHistoryForConsistency: with fewer valid entries there is not enough
	// data to call a stake inconsistent.
	minHistoryForConsistency = 5

	// minBucketGames: both stake buckets need this many games before the
	// selective-play heuristic activates.
	minBucketGames = 5

	// YoungAccountAge marks accounts whose limit is reduced by 1/5.
	YoungAccountAge = 24 * time.Hour
)

// MaxStake computes the player's current stake limit: a step function over
// total games, halved when the high-stake win rate exceeds 1.3x the
// low-stake win rate (stake-sniping heuristic), and reduced to 4/5 for
// young accounts.
func MaxStake(p *Profile, now time.Time) int64 {
	if p.Provisional {
		return ProvisionalStakeCap
	}

	var limit int64
	switch games := p.Games; {
	case games <= ProvisionalGameLimit:
		limit = ProvisionalStakeCap
	case games <= tier1Games:
		limit = tier1Cap
	case games <= tier2Games:
		limit = tier2Cap
	case games <= tier3Games:
		limit = tier3Cap
	case games <= tier4Games:
		limit = tier4Cap
	default:
		limit = PlayerStakeCap
	}

	if p.HighStakeGames >= minBucketGames && p.LowStakeGames >= minBucketGames {
		// highWins/highGames > 1.3 * lowWins/lowGames, cross-multiplied to
		// stay in integers.
		if int64(p.HighStakeWins)*int64(p.LowStakeGames)*10 > int64(p.LowStakeWins)*int64(p.HighStakeGames)*13 {
			limit /= 2
		}
	}

	if now.Sub(p.CreatedAt) < YoungAccountAge {
		limit = limit * 4 / 5
	}
	return limit
}

// ConsistentStake reports whether the proposed stake fits the player's
// recent betting pattern. With fewer than five valid history entries it
// always passes.
func ConsistentStake(p *Profile, stake int64) bool {
	var sum int64
	valid := int64(0)
	for _, s := range p.StakeHistory {
		if s > 0 {
			sum = saturatingAdd64(sum, s)
			valid++
		}
	}
	if valid < minHistoryForConsistency {
		return true
	}
	avg := sum / valid
	if avg == 0 {
		return true
	}
	limit, err := checkedMul64(avg, StakeConsistencyFactor)
	if err != nil {
		return true
	}
	return stake <= limit
}
