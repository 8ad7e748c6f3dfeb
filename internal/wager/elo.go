package wager

import (
	"math"
	"time"
)

// EstablishedKFactor is the learning rate once a player is no longer
// provisional.
const EstablishedKFactor = 16

// provisionalKFactor is the decreasing K schedule indexed by provisional
// games completed: steep early adjustment, converging to the established
// rate after the provisional threshold.
func provisionalKFactor(gamesCompleted int) int {
	switch {
	case gamesCompleted <= 0:
		return 200
	case gamesCompleted == 1:
		return 150
	case gamesCompleted == 2:
		return 100
	case gamesCompleted <= 4:
		return 80
	case gamesCompleted <= 7:
		return 64
	case gamesCompleted <= 9:
		return 48
	default:
		return EstablishedKFactor
	}
}

// expectedScoreTable samples the logistic expected-score curve at rating
// differences -800..+800 in steps of 25, scores scaled by 100. Values between
// sample points are linearly interpolated; outside the range they clamp.
// Integer-only so rating updates are bit-identical across platforms.
var expectedScoreTable = [65]int{
	99, 99, 99, 98, 98, // -800..-700
	97, 97, 96, 96, 95, // -675..-575
	94, 93, 92, 91, 90, // -550..-450
	89, 88, 86, 85, 83, // -425..-325
	82, 80, 78, 76, 74, // -300..-200
	72, 70, 67, 64, 61, // -175..-75
	57, 54, 50, // -50..0
	46, 43, 39, 36, 33, // 25..125
	30, 28, 26, 24, 22, // 150..250
	20, 18, 17, 15, 14, // 275..375
	12, 11, 10, 9, 8, // 400..500
	7, 6, 5, 4, 4, // 525..625
	3, 3, 2, 2, 1, // 650..750
	1, 1, // 775..800
}

const (
	tableMinDiff = -800
	tableMaxDiff = 800
	tableStep    = 25
)

// ExpectedScore returns the expected score (x100) for a player rated rSelf
// against an opponent rated rOpp, from the lookup table with linear
// interpolation.
func ExpectedScore(rSelf, rOpp int) int {
	diff := rOpp - rSelf
	if diff <= tableMinDiff {
		return expectedScoreTable[0]
	}
	if diff >= tableMaxDiff {
		return expectedScoreTable[len(expectedScoreTable)-1]
	}
	idx := (diff - tableMinDiff) / tableStep
	x1 := tableMinDiff + idx*tableStep
	y1 := expectedScoreTable[idx]
	if diff == x1 {
		return y1
	}
	y2 := expectedScoreTable[idx+1]
	return y1 + (diff-x1)*(y2-y1)/tableStep
}

// ratingDelta computes round-half-away-from-zero(k*(actual-expected)/100)
// using only integer arithmetic, with the explicit +-50 bias before the
// division.
func ratingDelta(k, actualScaled, expectedScaled int) int {
	numerator := k * (actualScaled - expectedScaled)
	if numerator >= 0 {
		return (numerator + 50) / 100
	}
	return (numerator - 50) / 100
}

// RatingChange reports the applied deltas for both players.
type RatingChange struct {
	One int
	Two int
}

// UpdateRatings applies one match outcome to both profiles: Elo deltas with
// the dynamic K schedule, game/win counters, provisional transitions, the
// stake history ring, weighted-win accumulators, high/low stake buckets and
// a recomputed max-stake cap. It is pure and deterministic; replay
// protection comes from the caller's one-shot settlement guard, not from
// here.
//
// winner must be one.Player, two.Player or DrawWinner. The two profiles must
// be distinct entities: passing the same identity twice is rejected rather
// than silently aliasing the counters.
func UpdateRatings(one, two *Profile, winner string, stake int64, now time.Time) (RatingChange, error) {
	if one.Player == two.Player {
		return RatingChange{}, ErrProfileMismatch
	}

	// Actual scores, win=100 draw=50 loss=0.
	var s1, s2 int
	switch winner {
	case one.Player:
		s1, s2 = 100, 0
	case two.Player:
		s1, s2 = 0, 100
	case DrawWinner:
		s1, s2 = 50, 50
	default:
		return RatingChange{}, ErrInvalidWinner
	}

	k1 := EstablishedKFactor
	if one.Provisional {
		k1 = provisionalKFactor(one.ProvisionalGames)
	}
	k2 := EstablishedKFactor
	if two.Provisional {
		k2 = provisionalKFactor(two.ProvisionalGames)
	}

	e1 := ExpectedScore(one.Rating, two.Rating)
	e2 := ExpectedScore(two.Rating, one.Rating)

	d1 := ratingDelta(k1, s1, e1)
	d2 := ratingDelta(k2, s2, e2)

	r1, err := checkedAddInt(one.Rating, d1)
	if err != nil {
		return RatingChange{}, err
	}
	r2, err := checkedAddInt(two.Rating, d2)
	if err != nil {
		return RatingChange{}, err
	}
	one.Rating = r1
	two.Rating = r2

	one.Games++
	two.Games++
	if s1 == 100 {
		one.Wins++
	} else if s2 == 100 {
		two.Wins++
	}

	if one.Provisional {
		one.ProvisionalGames++
		if one.ProvisionalGames >= ProvisionalGameLimit {
			one.Provisional = false
		}
	}
	if two.Provisional {
		two.ProvisionalGames++
		if two.ProvisionalGames >= ProvisionalGameLimit {
			two.Provisional = false
		}
	}

	// History flag records win-or-draw; bucket win counters below only count
	// decisive wins.
	one.recordStake(stake, s1 >= 50)
	two.recordStake(stake, s2 >= 50)

	one.TotalStaked = saturatingAdd64(one.TotalStaked, stake)
	two.TotalStaked = saturatingAdd64(two.TotalStaked, stake)
	switch {
	case s1 == 100:
		one.WeightedWinSum = saturatingAdd64(one.WeightedWinSum, stake)
	case s2 == 100:
		two.WeightedWinSum = saturatingAdd64(two.WeightedWinSum, stake)
	default:
		one.WeightedWinSum = saturatingAdd64(one.WeightedWinSum, stake/2)
		two.WeightedWinSum = saturatingAdd64(two.WeightedWinSum, stake/2)
	}

	updateStakeBuckets(one, stake, s1 == 100, now)
	updateStakeBuckets(two, stake, s2 == 100, now)

	one.MaxStake = MaxStake(one, now)
	two.MaxStake = MaxStake(two, now)

	return RatingChange{One: d1, Two: d2}, nil
}

// updateStakeBuckets classifies the game into the top or bottom quartile of
// the player's own max-stake band.
func updateStakeBuckets(p *Profile, stake int64, won bool, now time.Time) {
	max := MaxStake(p, now)
	if max <= 0 {
		return
	}
	switch {
	case stake >= max*3/4:
		p.HighStakeGames++
		if won {
			p.HighStakeWins++
		}
	case stake <= max/4:
		p.LowStakeGames++
		if won {
			p.LowStakeWins++
		}
	}
}

func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, ErrArithmeticOverflow
	}
	if b < 0 && a < math.MinInt-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}
