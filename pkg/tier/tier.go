// Package tier derives the loyalty rank for a point balance. The thresholds
// are business policy and have no configuration surface.
package tier

import "github.com/loyaltyworks/loyalty-backend/pkg/enums"

const (
	GoldThreshold     = 1000
	PlatinumThreshold = 5000
)

// Of returns the tier for the given point balance. Defined for all integers;
// negative balances resolve to standard.
func Of(points int) enums.Tier {
	switch {
	case points >= PlatinumThreshold:
		return enums.TierPlatinum
	case points >= GoldThreshold:
		return enums.TierGold
	default:
		return enums.TierStandard
	}
}
