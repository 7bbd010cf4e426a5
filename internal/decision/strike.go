package decision

import "math"

// Option strike constants: NIFTY-style 50-point strike grid and the premium
// band considered tradeable
const (
	strikeStep     = 50
	premiumFloor   = 80
	premiumCeil    = 300
	premiumMaxGood = 250
)

// optionStrikeSelection computes the recommended strike and rough premium
// estimate for the detected setup. Returns nil when there is no direction or
// the setup is too weak to trade.
//
// Premium is a heuristic (~0.5% of spot for ATM weeklies plus a distance
// adjustment), not live option-chain data. Rounding is round-half-to-even so
// midpoint premiums do not drift upward.
func optionStrikeSelection(spot float64, direction, setupStrength, rangeContext string) *OptionStrike {
	if direction == "NONE" || setupStrength == StrengthWeak {
		return nil
	}

	atm := math.RoundToEven(spot/strikeStep) * strikeStep

	strike := atm
	strikeLabel := "ATM"
	if !(setupStrength == StrengthStrong && (rangeContext == "NORMAL" || rangeContext == "HIGH")) {
		// ITM by one strike step
		if direction == "CE" {
			strike = atm - strikeStep
		} else {
			strike = atm + strikeStep
		}
		strikeLabel = "ITM"
	}

	distance := math.Abs(spot - strike)
	basePremium := spot * 0.005
	distanceAdj := math.Max(0, distance*0.3)
	estPremium := math.RoundToEven(basePremium + distanceAdj)
	estPremium = math.Max(premiumFloor, math.Min(estPremium, premiumCeil))

	slPoints := math.RoundToEven(estPremium * 0.28)
	targetPoints := slPoints * 2

	return &OptionStrike{
		Strike:       int(strike),
		StrikeLabel:  strikeLabel,
		OptionType:   direction,
		EstPremium:   int(estPremium),
		SLPoints:     int(slPoints),
		TargetPoints: int(targetPoints),
		PremiumValid: estPremium >= premiumFloor && estPremium <= premiumMaxGood,
	}
}
