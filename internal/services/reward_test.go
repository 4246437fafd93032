package services

import "testing"

func TestTierPercentSteps(t *testing.T) {
	cases := []struct {
		tier int
		want int64
	}{
		{-1, 1000},
		{0, 1000},
		{1, 2500},
		{2, 4000},
		{3, 5500},
		{4, 7000},
		{5, 8500},
		{9, 8500},
	}
	for _, tc := range cases {
		if got := TierPercent(tc.tier); got != tc.want {
			t.Errorf("TierPercent(%d) = %d, want %d", tc.tier, got, tc.want)
		}
	}
}

func TestTierPercentIsNonDecreasing(t *testing.T) {
	prev := int64(0)
	for tier := 0; tier <= 10; tier++ {
		current := TierPercent(tier)
		if current < prev {
			t.Fatalf("tier %d percent %d dropped below %d", tier, current, prev)
		}
		prev = current
	}
}

func TestDisplayReward(t *testing.T) {
	// a $2.50 offer shows $0.25 to a tier-0 user and $2.13 to tier 5+
	if got := DisplayReward(250, 0); got != 25 {
		t.Fatalf("tier 0 display = %d, want 25", got)
	}
	if got := DisplayReward(250, 5); got != 213 {
		t.Fatalf("tier 5 display = %d, want 213", got)
	}
}
