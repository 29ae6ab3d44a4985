package ai

import (
	"math"
	"strings"

	"github.com/angelmondragon/urgency-engine/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	SourceAI        = "ai"
	SourceHeuristic = "heuristic"

	heuristicScoreReasoning   = "Scored using heuristic algorithm (AI unavailable)"
	heuristicPricingReasoning = "Calculated using standard markup formula with psychological pricing adjustment"
)

var defaultAdHashtags = []string{"#trending", "#musthave", "#tiktokmademebuyit", "#viral", "#sale"}

// HeuristicScore scores a trend from raw counters: views cap at 50 points,
// engagement at 30 and growth at 20. Urgency is bucketed by growth and shifted
// by how established the trend already is.
func HeuristicScore(in ScoreInput) ScoreResult {
	viewScore := math.Min(50, float64(in.Views)/10_000_000*50)
	engagementScore := math.Min(30, float64(in.Engagement)/1_000_000*30)
	velocityScore := math.Min(20, in.GrowthRate*0.2)

	var urgency float64
	switch {
	case in.GrowthRate > 70:
		urgency = 80
	case in.GrowthRate > 40:
		urgency = 60
	default:
		urgency = 40
	}
	switch {
	case in.VideoCount > 100_000:
		urgency += 10
	case in.VideoCount > 10_000:
		urgency += 5
	default:
		urgency -= 10
	}

	return ScoreResult{
		TrendScore:   types.Round(clampScore(viewScore+engagementScore+velocityScore), 1),
		UrgencyScore: types.Round(clampScore(urgency), 1),
		Reasoning:    heuristicScoreReasoning,
		Source:       SourceHeuristic,
	}
}

// HeuristicPricing marks cost up by margin and snaps to a psychological price
// point: x99 under $10, x499/x999 steps under $50, x999 above.
func HeuristicPricing(costCents int64, margin float64) PricingResult {
	cost := decimal.NewFromInt(costCents)
	base := cost.Mul(decimal.NewFromFloat(1 + margin)).IntPart()

	var suggested int64
	switch {
	case base < 1000:
		suggested = (base/100)*100 + 99
	case base < 5000:
		suggested = (base/500)*500 + 499
	default:
		suggested = (base/1000)*1000 + 999
	}

	return PricingResult{
		SuggestedPriceCents: suggested,
		MinPriceCents:       cost.Mul(decimal.RequireFromString("1.3")).IntPart(),
		MaxPriceCents:       cost.Mul(decimal.RequireFromString("3.5")).IntPart(),
		Confidence:          0.6,
		Reasoning:           heuristicPricingReasoning,
		Source:              SourceHeuristic,
	}
}

// FallbackDescription is the canned description used without a model.
func FallbackDescription(name string, features []string) DescriptionResult {
	var featureText string
	if len(features) > 0 {
		if len(features) > 3 {
			features = features[:3]
		}
		featureText = " Features include: " + strings.Join(features, ", ") + "."
	}
	description := "Introducing the " + name + " - the must-have product everyone's talking about!" +
		featureText + " Get yours before it's gone!"
	return DescriptionResult{
		Success:     true,
		Description: description,
		Variations:  []string{description},
		Source:      SourceHeuristic,
	}
}

// FallbackAdCopy is the canned ad copy used without a model.
func FallbackAdCopy(name string) AdCopyResult {
	return AdCopyResult{
		Headline:   "Get Your " + name + " Today!",
		Body:       "Everyone's obsessed with the " + name + ". Join thousands of happy customers and see what the hype is about!",
		CTA:        "Shop Now",
		Hashtags:   append([]string(nil), defaultAdHashtags...),
		Variations: []AdVariation{},
		Source:     SourceHeuristic,
	}
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
