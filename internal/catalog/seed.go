package catalog

import "github.com/lazypower/neurodose/internal/domain"

// Seed returns the built-in compound definitions.
func Seed() []domain.Compound {
	return []domain.Compound{
		{
			ID:                          "caffeine",
			DisplayName:                 "Caffeine",
			Category:                    "stimulant",
			Color:                       "#ff7f0e",
			HalfLifeHours:               5,
			AbsorptionRateConstant:      0.5,
			Bioavailability:             0.99,
			MaxDailyDoseMg:              400,
			MinEffectiveConcentrationMg: 50,
			TypicalDoseMg:               100,
			PeakThresholdMg:             200,
			Warnings:                    "May cause jitters, insomnia, anxiety. Avoid late in the day.",
			Alternatives:                []string{"theobromine", "yerba-mate"},
			Interactions: map[string]domain.Interaction{
				"l-theanine": {Kind: domain.Synergistic, Note: "May reduce jitters"},
				"ginseng":    {Kind: domain.Caution, Note: "May increase stimulant effects"},
				"rhodiola":   {Kind: domain.Synergistic, Note: "Focus and energy"},
				"cordyceps":  {Kind: domain.Neutral, Note: "Complementary for energy and endurance"},
			},
		},
		{
			ID:                          "l-theanine",
			DisplayName:                 "L-Theanine",
			Category:                    "amino-acid",
			Color:                       "#2ca02c",
			HalfLifeHours:               3,
			AbsorptionRateConstant:      0.8,
			Bioavailability:             0.98,
			MaxDailyDoseMg:              400,
			MinEffectiveConcentrationMg: 50,
			TypicalDoseMg:               200,
			PeakThresholdMg:             200,
			Warnings:                    "Generally safe. May lower blood pressure.",
			Alternatives:                []string{"glycine", "taurine"},
			Interactions: map[string]domain.Interaction{
				"caffeine":    {Kind: domain.Synergistic, Note: "May reduce caffeine jitters"},
				"ginseng":     {Kind: domain.Neutral, Note: "Generally safe combination"},
				"ashwagandha": {Kind: domain.Neutral, Note: "Complementary for stress reduction"},
				"magnolia":    {Kind: domain.Synergistic, Note: "Relaxation"},
			},
		},
		{
			ID:                          "ginseng",
			DisplayName:                 "Ginseng",
			Category:                    "adaptogen",
			Color:                       "#d62728",
			HalfLifeHours:               24,
			AbsorptionRateConstant:      2.0,
			Bioavailability:             0.15,
			MaxDailyDoseMg:              400,
			MinEffectiveConcentrationMg: 100,
			TypicalDoseMg:               200,
			PeakThresholdMg:             200,
			Warnings:                    "May interact with blood thinners and diabetes medications.",
			Alternatives:                []string{"eleuthero", "rhodiola"},
			Interactions: map[string]domain.Interaction{
				"caffeine":   {Kind: domain.Caution, Note: "May increase stimulant effects"},
				"l-theanine": {Kind: domain.Neutral, Note: "Generally safe combination"},
				"rhodiola":   {Kind: domain.Neutral, Note: "Complementary adaptogenic effects"},
				"cordyceps":  {Kind: domain.Synergistic, Note: "Energy"},
			},
		},
		{
			ID:                          "magnesium",
			DisplayName:                 "Magnesium",
			Category:                    "mineral",
			Color:                       "#8a2be2",
			HalfLifeHours:               12,
			AbsorptionRateConstant:      1.5,
			Bioavailability:             0.3,
			MaxDailyDoseMg:              400,
			MinEffectiveConcentrationMg: 50,
			TypicalDoseMg:               200,
			PeakThresholdMg:             100,
			Alternatives:                []string{"magnesium-glycinate", "magnesium-citrate"},
			Interactions: map[string]domain.Interaction{
				"caffeine":   {Kind: domain.Neutral, Note: "May reduce caffeine-induced anxiety"},
				"l-theanine": {Kind: domain.Synergistic, Note: "Relaxation"},
			},
		},
		{
			ID:                          "rhodiola",
			DisplayName:                 "Rhodiola",
			Category:                    "adaptogen",
			Color:                       "#1f77b4",
			HalfLifeHours:               4,
			AbsorptionRateConstant:      0.52,
			Bioavailability:             0.52,
			MaxDailyDoseMg:              600,
			MinEffectiveConcentrationMg: 50,
			TypicalDoseMg:               300,
			PeakThresholdMg:             300,
			Warnings:                    "Avoid if bipolar. May cause dizziness or dry mouth.",
			Interactions: map[string]domain.Interaction{
				"caffeine": {Kind: domain.Synergistic, Note: "Focus and energy"},
			},
		},
	}
}

// Default builds a catalog from Seed.
func Default() *Catalog {
	c, err := New(Seed()...)
	if err != nil {
		panic("catalog: invalid seed: " + err.Error())
	}
	return c
}
