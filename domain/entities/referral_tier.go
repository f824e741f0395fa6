package entities

import "sort"

// ReferralTier is a (minimum-referrals, max-tickets) rule. The highest
// threshold met sets the per-draw ticket cap.
type ReferralTier struct {
	ReferralThreshold int `json:"referralThreshold"`
	MaxTickets        int `json:"maxTickets"`
}

// SortTiers returns the tiers ordered ascending by referral threshold
func SortTiers(tiers []ReferralTier) []ReferralTier {
	sorted := make([]ReferralTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ReferralThreshold < sorted[j].ReferralThreshold
	})
	return sorted
}

// ResolveTicketCap computes the effective per-draw ticket cap for a user with
// the given referral count: the base cap, overridden by every tier whose
// threshold is met, last-qualifying tier winning.
func ResolveTicketCap(baseCap int, tiers []ReferralTier, referralCount int) int {
	cap := baseCap
	for _, tier := range SortTiers(tiers) {
		if referralCount >= tier.ReferralThreshold {
			cap = tier.MaxTickets
		}
	}
	return cap
}

// NextTier returns the lowest tier the user has not yet reached, or nil if
// every tier is already unlocked.
func NextTier(tiers []ReferralTier, referralCount int) *ReferralTier {
	for _, tier := range SortTiers(tiers) {
		if tier.ReferralThreshold > referralCount {
			t := tier
			return &t
		}
	}
	return nil
}
