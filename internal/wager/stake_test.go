package wager

import (
	"testing"
	"time"
)

func TestMaxStakeProvisionalCap(t *testing.T) {
	p := NewProfile("alice", baseTime.Add(-48*time.Hour))
	if got := MaxStake(p, baseTime); got != ProvisionalStakeCap {
		t.Errorf("provisional cap = %d, want %d", got, ProvisionalStakeCap)
	}
}

func TestMaxStakeTiers(t *testing.T) {
	cases := []struct {
		games int
		want  int64
	}{
		{10, ProvisionalStakeCap},
		{11, tier1Cap},
		{15, tier1Cap},
		{16, tier2Cap},
		{25, tier2Cap},
		{26, tier3Cap},
		{40, tier3Cap},
		{41, tier4Cap},
		{60, tier4Cap},
		{61, PlayerStakeCap},
		{500, PlayerStakeCap},
	}
	for _, c := range cases {
		p := establishedProfile("alice", 1500, c.games)
		if got := MaxStake(p, baseTime); got != c.want {
			t.Errorf("games=%d: cap = %d, want %d", c.games, got, c.want)
		}
	}
}

func TestMaxStakeHalvedForStakeSniping(t *testing.T) {
	p := establishedProfile("alice", 1500, 100)
	p.HighStakeGames = 10
	p.HighStakeWins = 9 // 90% at high stakes
	p.LowStakeGames = 10
	p.LowStakeWins = 5 // 50% at low stakes; 0.9 > 1.3*0.5
	if got := MaxStake(p, baseTime); got != PlayerStakeCap/2 {
		t.Errorf("sniping cap = %d, want %d", got, PlayerStakeCap/2)
	}

	// Below the 5-game minimum per bucket the heuristic stays off.
	p.LowStakeGames = 4
	p.LowStakeWins = 2
	if got := MaxStake(p, baseTime); got != PlayerStakeCap {
		t.Errorf("insufficient bucket data: cap = %d, want %d", got, PlayerStakeCap)
	}
}

func TestMaxStakeNotHalvedForBalancedRates(t *testing.T) {
	p := establishedProfile("alice", 1500, 100)
	p.HighStakeGames = 10
	p.HighStakeWins = 6
	p.LowStakeGames = 10
	p.LowStakeWins = 5 // 0.6 <= 1.3*0.5
	if got := MaxStake(p, baseTime); got != PlayerStakeCap {
		t.Errorf("balanced cap = %d, want %d", got, PlayerStakeCap)
	}
}

func TestMaxStakeYoungAccountReduction(t *testing.T) {
	p := establishedProfile("alice", 1500, 100)
	p.CreatedAt = baseTime.Add(-time.Hour)
	if got := MaxStake(p, baseTime); got != PlayerStakeCap*4/5 {
		t.Errorf("young account cap = %d, want %d", got, PlayerStakeCap*4/5)
	}
}

func TestConsistentStakeInsufficientHistory(t *testing.T) {
	p := establishedProfile("alice", 1500, 100)
	for i := 0; i < 4; i++ {
		p.StakeHistory[i] = 1_000_000
	}
	// Four entries: not enough data, everything passes.
	if !ConsistentStake(p, 1_000_000_000) {
		t.Error("expected pass with fewer than 5 history entries")
	}
}

func TestConsistentStakeBoundary(t *testing.T) {
	p := establishedProfile("alice", 1500, 100)
	for i := 0; i < 5; i++ {
		p.StakeHistory[i] = 1_000_000
	}
	if !ConsistentStake(p, 2_000_000) {
		t.Error("2x average must pass")
	}
	if ConsistentStake(p, 2_000_001) {
		t.Error("2x average + 1 must fail")
	}
}

func TestConsistentStakeIgnoresEmptySlots(t *testing.T) {
	p := establishedProfile("alice", 1500, 100)
	// 6 valid entries scattered through the ring; zeros are unused slots.
	for _, i := range []int{0, 2, 4, 5, 7, 9} {
		p.StakeHistory[i] = 600_000
	}
	if !ConsistentStake(p, 1_200_000) {
		t.Error("2x average of valid entries must pass")
	}
	if ConsistentStake(p, 1_200_001) {
		t.Error("above 2x average of valid entries must fail")
	}
}
