package wager

import (
	"testing"
	"time"
)

// Profiles created well in the past so the young-account cap reduction does
// not interfere with rating tests.
func establishedProfile(player string, rating, games int) *Profile {
	p := NewProfile(player, baseTime.Add(-30*24*time.Hour))
	p.Rating = rating
	p.Games = games
	p.Provisional = false
	p.ProvisionalGames = ProvisionalGameLimit
	p.MaxStake = MaxStake(p, baseTime)
	return p
}

func TestExpectedScoreTablePoints(t *testing.T) {
	cases := []struct {
		self, opp, want int
	}{
		{1200, 1200, 50},
		{1200, 1400, 26}, // diff +200
		{1400, 1200, 74}, // diff -200
		{1200, 2400, 1},  // clamped at +800
		{2400, 1200, 99}, // clamped at -800
	}
	for _, c := range cases {
		if got := ExpectedScore(c.self, c.opp); got != c.want {
			t.Errorf("ExpectedScore(%d, %d) = %d, want %d", c.self, c.opp, got, c.want)
		}
	}
}

func TestExpectedScoreInterpolates(t *testing.T) {
	// diff 110 sits between the 100 (36) and 125 (33) sample points:
	// 36 + 10*(33-36)/25 = 36 + (-30)/25 = 36 - 1 = 35 with division
	// truncating toward zero.
	if got := ExpectedScore(1200, 1310); got != 35 {
		t.Errorf("ExpectedScore(1200, 1310) = %d, want 35", got)
	}
}

func TestEqualRatingsSymmetricDeltas(t *testing.T) {
	one := establishedProfile("alice", 1500, 100)
	two := establishedProfile("bob", 1500, 100)

	change, err := UpdateRatings(one, two, "alice", 1000, baseTime)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if change.One <= 0 {
		t.Errorf("winner delta = %d, want positive", change.One)
	}
	if change.Two >= 0 {
		t.Errorf("loser delta = %d, want negative", change.Two)
	}
	if change.One != -change.Two {
		t.Errorf("equal K factors: |%d| != |%d|", change.One, change.Two)
	}
	// K=16, E=50: delta = (16*50+50)/100 = 8.
	if change.One != 8 {
		t.Errorf("winner delta = %d, want 8", change.One)
	}
	if one.Rating != 1508 || two.Rating != 1492 {
		t.Errorf("ratings = %d/%d, want 1508/1492", one.Rating, two.Rating)
	}
	if one.Wins != 1 || two.Wins != 0 {
		t.Errorf("wins = %d/%d, want 1/0", one.Wins, two.Wins)
	}
}

func TestDrawMovesRatingsTowardEachOther(t *testing.T) {
	one := establishedProfile("alice", 1600, 100)
	two := establishedProfile("bob", 1400, 100)

	change, err := UpdateRatings(one, two, DrawWinner, 1000, baseTime)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if change.One >= 0 {
		t.Errorf("higher-rated draw delta = %d, want negative", change.One)
	}
	if change.Two <= 0 {
		t.Errorf("lower-rated draw delta = %d, want positive", change.Two)
	}
	if one.Wins != 0 || two.Wins != 0 {
		t.Errorf("draw must not increment wins: %d/%d", one.Wins, two.Wins)
	}
}

func TestProvisionalKSchedule(t *testing.T) {
	want := []int{200, 150, 100, 80, 80, 64, 64, 64, 48, 48, 16, 16}
	for games, k := range want {
		if got := provisionalKFactor(games); got != k {
			t.Errorf("provisionalKFactor(%d) = %d, want %d", games, got, k)
		}
	}
}

func TestProvisionalFlipAtExactlyTen(t *testing.T) {
	one := NewProfile("alice", baseTime.Add(-48*time.Hour))
	two := establishedProfile("bob", 1200, 100)

	now := baseTime
	for game := 1; game <= ProvisionalGameLimit; game++ {
		wasProvisional := one.Provisional
		if !wasProvisional {
			t.Fatalf("game %d: flipped early (after %d games)", game, game-1)
		}
		if _, err := UpdateRatings(one, two, "bob", 1_000_000, now); err != nil {
			t.Fatalf("game %d: %v", game, err)
		}
		now = now.Add(time.Minute)
	}
	if one.Provisional {
		t.Error("still provisional after 10 games")
	}
	if one.ProvisionalGames != ProvisionalGameLimit {
		t.Errorf("provisional games = %d, want %d", one.ProvisionalGames, ProvisionalGameLimit)
	}
}

func TestProvisionalDeltasLargerThanEstablished(t *testing.T) {
	fresh := NewProfile("alice", baseTime.Add(-48*time.Hour))
	veteran := establishedProfile("bob", 1200, 100)

	change, err := UpdateRatings(fresh, veteran, "alice", 1000, baseTime)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	// First provisional game uses K=200: delta = (200*50+50)/100 = 100.
	if change.One != 100 {
		t.Errorf("provisional delta = %d, want 100", change.One)
	}
	if change.Two != -8 {
		t.Errorf("established delta = %d, want -8", change.Two)
	}
}

func TestUpdateRatingsRejectsAliasedProfiles(t *testing.T) {
	p := establishedProfile("alice", 1200, 100)
	q := establishedProfile("alice", 1200, 100)
	if _, err := UpdateRatings(p, q, "alice", 1000, baseTime); err != ErrProfileMismatch {
		t.Errorf("expected ErrProfileMismatch, got %v", err)
	}
}

func TestUpdateRatingsRejectsUnknownWinner(t *testing.T) {
	one := establishedProfile("alice", 1200, 100)
	two := establishedProfile("bob", 1200, 100)
	if _, err := UpdateRatings(one, two, "mallory", 1000, baseTime); err != ErrInvalidWinner {
		t.Errorf("expected ErrInvalidWinner, got %v", err)
	}
}

func TestUpdateRatingsStakeAccounting(t *testing.T) {
	one := establishedProfile("alice", 1200, 100)
	two := establishedProfile("bob", 1200, 100)

	if _, err := UpdateRatings(one, two, "alice", 1_000_000, baseTime); err != nil {
		t.Fatalf("update: %v", err)
	}
	if one.TotalStaked != 1_000_000 || two.TotalStaked != 1_000_000 {
		t.Errorf("total staked = %d/%d, want 1000000 each", one.TotalStaked, two.TotalStaked)
	}
	// Full stake credited to the winner's weighted sum, nothing to the loser.
	if one.WeightedWinSum != 1_000_000 || two.WeightedWinSum != 0 {
		t.Errorf("weighted win sums = %d/%d", one.WeightedWinSum, two.WeightedWinSum)
	}
	if one.StakeHistory[0] != 1_000_000 || !one.WinHistory[0] {
		t.Errorf("winner history slot = (%d, %v)", one.StakeHistory[0], one.WinHistory[0])
	}
	if two.StakeHistory[0] != 1_000_000 || two.WinHistory[0] {
		t.Errorf("loser history slot = (%d, %v)", two.StakeHistory[0], two.WinHistory[0])
	}

	if _, err := UpdateRatings(one, two, DrawWinner, 100_000, baseTime); err != nil {
		t.Fatalf("draw update: %v", err)
	}
	// Half stake on a draw, and the draw records as a win-flag in history.
	if one.WeightedWinSum != 1_050_000 || two.WeightedWinSum != 50_000 {
		t.Errorf("after draw, weighted win sums = %d/%d", one.WeightedWinSum, two.WeightedWinSum)
	}
	if !two.WinHistory[1] {
		t.Error("draw should set the history win flag")
	}
}

func TestStakeHistoryRingWrapsAtTen(t *testing.T) {
	one := establishedProfile("alice", 1200, 100)
	two := establishedProfile("bob", 1200, 100)

	for i := 0; i < StakeHistorySize+2; i++ {
		stake := int64(1000 + i)
		if _, err := UpdateRatings(one, two, "alice", stake, baseTime); err != nil {
			t.Fatalf("game %d: %v", i, err)
		}
	}
	// Slots 0 and 1 hold the two most recent overwrites.
	if one.StakeHistory[0] != 1010 || one.StakeHistory[1] != 1011 {
		t.Errorf("ring slots 0,1 = %d,%d; want 1010,1011", one.StakeHistory[0], one.StakeHistory[1])
	}
	if one.NextHistoryIndex != 2 {
		t.Errorf("next index = %d, want 2", one.NextHistoryIndex)
	}
}

func TestMaxStakeRecomputedAfterUpdate(t *testing.T) {
	one := establishedProfile("alice", 1200, 10)
	two := establishedProfile("bob", 1200, 100)

	if _, err := UpdateRatings(one, two, "alice", 1000, baseTime); err != nil {
		t.Fatalf("update: %v", err)
	}
	// 11th game moves alice into the first post-provisional tier.
	if one.MaxStake != tier1Cap {
		t.Errorf("max stake = %d, want %d", one.MaxStake, tier1Cap)
	}
}
