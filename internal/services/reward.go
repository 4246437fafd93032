package services

import "taskrewards/internal/money"

// Tier percentages in basis points. The step function is non-decreasing:
// tiers 0-4 map to 10/25/40/55/70 percent, everything above to 85.
var tierBasisPoints = []int64{1000, 2500, 4000, 5500, 7000}

const maxTierBasisPoints = 8500

func TierPercent(tier int) int64 {
	if tier < 0 {
		tier = 0
	}
	if tier >= len(tierBasisPoints) {
		return maxTierBasisPoints
	}
	return tierBasisPoints[tier]
}

// DisplayReward derives the user-visible reward from an offer's hidden real
// value. It is display math only: approvals always credit the real value
// captured when the offer was created, so a tier change between viewing and
// submitting never alters a payout.
func DisplayReward(realValueMinor int64, tier int) int64 {
	return money.PercentOf(realValueMinor, TierPercent(tier))
}
