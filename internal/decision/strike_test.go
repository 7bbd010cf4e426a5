package decision

import "testing"

func TestOptionStrikeSelectionATM(t *testing.T) {
	option := optionStrikeSelection(24500, "CE", StrengthStrong, "NORMAL")
	if option == nil {
		t.Fatal("Strong CE setup should produce a strike")
	}
	if option.Strike != 24500 || option.StrikeLabel != "ATM" {
		t.Errorf("Expected 24500 ATM, got %d %s", option.Strike, option.StrikeLabel)
	}
	if option.OptionType != "CE" {
		t.Errorf("Expected CE, got %s", option.OptionType)
	}
	// 0.5% of 24500 is 122.5, rounded half-to-even to 122
	if option.EstPremium != 122 {
		t.Errorf("Expected premium 122, got %d", option.EstPremium)
	}
	if option.SLPoints != 34 || option.TargetPoints != 68 {
		t.Errorf("Expected SL 34 / target 68, got %d / %d", option.SLPoints, option.TargetPoints)
	}
	if !option.PremiumValid {
		t.Error("Premium 122 should be inside the tradeable band")
	}
}

func TestOptionStrikeSelectionITM(t *testing.T) {
	// Low-range strong setups and all normal setups step one strike in the money
	ce := optionStrikeSelection(24500, "CE", StrengthStrong, "LOW")
	if ce == nil || ce.Strike != 24450 || ce.StrikeLabel != "ITM" {
		t.Fatalf("Expected 24450 ITM for CE, got %+v", ce)
	}
	// 122.5 base plus 50-point distance adjustment: round(137.5) = 138
	if ce.EstPremium != 138 {
		t.Errorf("Expected premium 138, got %d", ce.EstPremium)
	}

	pe := optionStrikeSelection(24500, "PE", StrengthNormal, "NORMAL")
	if pe == nil || pe.Strike != 24550 || pe.StrikeLabel != "ITM" {
		t.Fatalf("Expected 24550 ITM for PE, got %+v", pe)
	}
}

func TestOptionStrikeSelectionSkipped(t *testing.T) {
	if option := optionStrikeSelection(24500, "NONE", StrengthStrong, "NORMAL"); option != nil {
		t.Errorf("No direction should produce no strike, got %+v", option)
	}
	if option := optionStrikeSelection(24500, "CE", StrengthWeak, "NORMAL"); option != nil {
		t.Errorf("Weak setup should produce no strike, got %+v", option)
	}
}

func TestOptionStrikeSelectionPremiumBand(t *testing.T) {
	// 0.5% of 52000 is 260: inside the hard clamp but above the tradeable cap
	option := optionStrikeSelection(52000, "CE", StrengthStrong, "NORMAL")
	if option == nil {
		t.Fatal("Expected a strike")
	}
	if option.EstPremium != 260 {
		t.Errorf("Expected premium 260, got %d", option.EstPremium)
	}
	if option.PremiumValid {
		t.Error("Premium 260 should be flagged outside the tradeable band")
	}

	// Tiny spot clamps the premium up to the floor
	small := optionStrikeSelection(5000, "CE", StrengthStrong, "NORMAL")
	if small == nil || small.EstPremium != 80 {
		t.Fatalf("Expected floor premium 80, got %+v", small)
	}
	if !small.PremiumValid {
		t.Error("Floor premium should still be tradeable")
	}
}
