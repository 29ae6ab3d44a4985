package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/urgency-engine/pkg/types"
	"github.com/shopspring/decimal"
)

// ScoreInput carries raw trend counters.
type ScoreInput struct {
	Hashtag    string  `json:"hashtag"`
	Views      int64   `json:"views"`
	GrowthRate float64 `json:"growth_rate"`
	Engagement int64   `json:"engagement"`
	VideoCount int64   `json:"video_count"`
}

// ScoreResult is a scored trend.
type ScoreResult struct {
	TrendScore           float64 `json:"trend_score"`
	UrgencyScore         float64 `json:"urgency_score"`
	Reasoning            string  `json:"reasoning"`
	SuggestedName        *string `json:"suggested_name,omitempty"`
	SuggestedDescription *string `json:"suggested_description,omitempty"`
	Source               string  `json:"source"`
}

// PricingInput is the pricing request.
type PricingInput struct {
	ProductName       string  `json:"product_name" validate:"required,min=1,max=255"`
	SupplierCostCents int64   `json:"supplier_cost_cents" validate:"gt=0"`
	Category          *string `json:"category"`
	CompetitorPrices  []int64 `json:"competitor_prices" validate:"omitempty,dive,gt=0"`
	TargetMargin      float64 `json:"target_margin" validate:"gte=0,lte=10"`
}

// PricingResult is a price recommendation in cents.
type PricingResult struct {
	SuggestedPriceCents int64   `json:"suggested_price_cents"`
	MinPriceCents       int64   `json:"min_price_cents"`
	MaxPriceCents       int64   `json:"max_price_cents"`
	Confidence          float64 `json:"confidence"`
	Reasoning           string  `json:"reasoning"`
	CompetitorAnalysis  *string `json:"competitor_analysis,omitempty"`
	Source              string  `json:"source"`
}

// DescriptionInput is the description generation request.
type DescriptionInput struct {
	ProductName    string   `json:"product_name" validate:"required,min=1,max=255"`
	Category       *string  `json:"category"`
	Features       []string `json:"features"`
	TargetAudience *string  `json:"target_audience"`
	Tone           string   `json:"tone" validate:"omitempty,oneof=engaging professional fun luxurious urgent"`
	Length         string   `json:"length" validate:"omitempty,oneof=short medium long"`
}

// DescriptionResult is generated product copy.
type DescriptionResult struct {
	Success     bool     `json:"success"`
	Description string   `json:"description"`
	Variations  []string `json:"variations"`
	TokensUsed  int      `json:"tokens_used"`
	Source      string   `json:"source"`
}

// AdCopyInput is the ad copy generation request.
type AdCopyInput struct {
	ProductName        string `json:"product_name" validate:"required,min=1,max=255"`
	ProductDescription string `json:"product_description" validate:"required"`
	Platform           string `json:"platform" validate:"omitempty,oneof=tiktok instagram facebook"`
	Goal               string `json:"goal" validate:"omitempty,oneof=awareness engagement conversions"`
}

// AdVariation is an alternative take on the ad copy.
type AdVariation struct {
	Headline string   `json:"headline"`
	Body     string   `json:"body"`
	CTA      string   `json:"cta"`
	Hashtags []string `json:"hashtags"`
}

// AdCopyResult is generated ad copy.
type AdCopyResult struct {
	Headline   string        `json:"headline"`
	Body       string        `json:"body"`
	CTA        string        `json:"cta"`
	Hashtags   []string      `json:"hashtags"`
	Variations []AdVariation `json:"variations"`
	Source     string        `json:"source"`
}

// BulkInput drives GenerateBulk. The Generate* flags default to true when nil.
type BulkInput struct {
	ProductName         string   `json:"product_name" validate:"required,min=1,max=255"`
	Category            *string  `json:"category"`
	Features            []string `json:"features"`
	SupplierCostCents   *int64   `json:"supplier_cost_cents" validate:"omitempty,gt=0"`
	GenerateDescription *bool    `json:"generate_description"`
	GenerateAdCopy      *bool    `json:"generate_ad_copy"`
	GeneratePricing     *bool    `json:"generate_pricing"`
}

// BulkResult groups the generated pieces.
type BulkResult struct {
	Description *DescriptionResult `json:"description"`
	AdCopy      *AdCopyResult      `json:"ad_copy"`
	Pricing     *PricingResult     `json:"pricing"`
}

// Health reports whether the remote model is in use.
type Health struct {
	Status    string `json:"status"`
	AIEnabled bool   `json:"ai_enabled"`
	Message   string `json:"message"`
}

// Service is the content and scoring facade over the policy.
type Service interface {
	ScoreTrend(ctx context.Context, in ScoreInput) ScoreResult
	RecommendPricing(ctx context.Context, in PricingInput) PricingResult
	GenerateDescription(ctx context.Context, in DescriptionInput) DescriptionResult
	GenerateAdCopy(ctx context.Context, in AdCopyInput) AdCopyResult
	GenerateBulk(ctx context.Context, in BulkInput) BulkResult
	Health() Health
}

type service struct {
	policy *Policy
}

// NewService builds the content service. A nil policy runs heuristics only.
func NewService(policy *Policy) Service {
	if policy == nil {
		policy = NewPolicy(nil, nil)
	}
	return &service{policy: policy}
}

func (s *service) ScoreTrend(ctx context.Context, in ScoreInput) ScoreResult {
	prompt := fmt.Sprintf(`Analyze this TikTok trend for an e-commerce product opportunity.
Hashtag: #%s
Total views: %d
Growth rate: %.1f%%
Engagement: %d
Videos: %d

Return JSON {"trend_score": 0-100, "urgency_score": 0-100, "reasoning": "...", "suggested_name": "..." or null, "suggested_description": "..." or null}.`,
		in.Hashtag, in.Views, in.GrowthRate, in.Engagement, in.VideoCount)

	var reply struct {
		TrendScore           *float64 `json:"trend_score"`
		UrgencyScore         *float64 `json:"urgency_score"`
		Reasoning            string   `json:"reasoning"`
		SuggestedName        *string  `json:"suggested_name"`
		SuggestedDescription *string  `json:"suggested_description"`
	}
	if _, ok := s.policy.CompleteJSON(ctx, "score_trend", prompt, 500, &reply); !ok {
		return HeuristicScore(in)
	}
	return ScoreResult{
		TrendScore:           clampScore(valueOr(reply.TrendScore, 50)),
		UrgencyScore:         clampScore(valueOr(reply.UrgencyScore, 50)),
		Reasoning:            reply.Reasoning,
		SuggestedName:        reply.SuggestedName,
		SuggestedDescription: reply.SuggestedDescription,
		Source:               SourceAI,
	}
}

func (s *service) RecommendPricing(ctx context.Context, in PricingInput) PricingResult {
	margin := in.TargetMargin
	if margin == 0 {
		margin = 0.5
	}

	var competitorText string
	if len(in.CompetitorPrices) > 0 {
		lo, hi, sum := in.CompetitorPrices[0], in.CompetitorPrices[0], int64(0)
		for _, p := range in.CompetitorPrices {
			lo, hi, sum = min(lo, p), max(hi, p), sum+p
		}
		avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(in.CompetitorPrices)))).IntPart()
		competitorText = fmt.Sprintf("\nCompetitor prices: %s - %s (avg %s)", types.Dollars(lo), types.Dollars(hi), types.Dollars(avg))
	}
	prompt := fmt.Sprintf(`Recommend pricing for an e-commerce product.
Product: %s
Category: %s
Supplier cost: %s
Target margin: %.0f%%%s

Return JSON {"suggested_price_cents": int, "min_price_cents": int, "max_price_cents": int, "confidence": 0-1, "reasoning": "...", "competitor_analysis": "..." or null}.`,
		in.ProductName, stringOr(in.Category, "General"), types.Dollars(in.SupplierCostCents), margin*100, competitorText)

	var reply struct {
		SuggestedPriceCents *int64   `json:"suggested_price_cents"`
		MinPriceCents       *int64   `json:"min_price_cents"`
		MaxPriceCents       *int64   `json:"max_price_cents"`
		Confidence          *float64 `json:"confidence"`
		Reasoning           string   `json:"reasoning"`
		CompetitorAnalysis  *string  `json:"competitor_analysis"`
	}
	if _, ok := s.policy.CompleteJSON(ctx, "recommend_pricing", prompt, 500, &reply); !ok {
		return HeuristicPricing(in.SupplierCostCents, margin)
	}
	fallbackPrice := decimal.NewFromInt(in.SupplierCostCents).Mul(decimal.NewFromFloat(1 + margin)).IntPart()
	return PricingResult{
		SuggestedPriceCents: valueOr(reply.SuggestedPriceCents, fallbackPrice),
		MinPriceCents:       valueOr(reply.MinPriceCents, in.SupplierCostCents),
		MaxPriceCents:       valueOr(reply.MaxPriceCents, in.SupplierCostCents*4),
		Confidence:          valueOr(reply.Confidence, 0.7),
		Reasoning:           reply.Reasoning,
		CompetitorAnalysis:  reply.CompetitorAnalysis,
		Source:              SourceAI,
	}
}

var lengthGuide = map[string]string{
	"short":  "2-3 sentences (50-100 words)",
	"medium": "4-6 sentences (100-200 words)",
	"long":   "2-3 paragraphs (200-400 words)",
}

func (s *service) GenerateDescription(ctx context.Context, in DescriptionInput) DescriptionResult {
	tone := in.Tone
	if tone == "" {
		tone = "engaging"
	}
	guide, ok := lengthGuide[in.Length]
	if !ok {
		guide = lengthGuide["medium"]
	}
	features := "None specified"
	if len(in.Features) > 0 {
		features = "- " + strings.Join(in.Features, "\n- ")
	}
	prompt := fmt.Sprintf(`Write an e-commerce product description for TikTok Shop.
Product: %s
Category: %s
Key features:
%s
Target audience: %s
Tone: %s
Length: %s

Return JSON {"description": "...", "variations": ["...", "..."]}.`,
		in.ProductName, stringOr(in.Category, "General"), features, stringOr(in.TargetAudience, "General consumers"), tone, guide)

	var reply struct {
		Description string   `json:"description"`
		Variations  []string `json:"variations"`
	}
	tokens, ok := s.policy.CompleteJSON(ctx, "generate_description", prompt, 1000, &reply)
	if !ok {
		return FallbackDescription(in.ProductName, in.Features)
	}
	if reply.Variations == nil {
		reply.Variations = []string{}
	}
	return DescriptionResult{
		Success:     true,
		Description: reply.Description,
		Variations:  reply.Variations,
		TokensUsed:  tokens,
		Source:      SourceAI,
	}
}

func (s *service) GenerateAdCopy(ctx context.Context, in AdCopyInput) AdCopyResult {
	platform := in.Platform
	if platform == "" {
		platform = "tiktok"
	}
	goal := in.Goal
	if goal == "" {
		goal = "conversions"
	}
	prompt := fmt.Sprintf(`Write social media ad copy.
Product: %s
Description: %s
Platform: %s
Goal: %s

Return JSON {"headline": "...", "body": "...", "cta": "...", "hashtags": ["..."], "variations": [{"headline": "...", "body": "...", "cta": "...", "hashtags": ["..."]}]}.`,
		in.ProductName, in.ProductDescription, platform, goal)

	var reply AdCopyResult
	if _, ok := s.policy.CompleteJSON(ctx, "generate_ad_copy", prompt, 1000, &reply); !ok {
		return FallbackAdCopy(in.ProductName)
	}
	if reply.CTA == "" {
		reply.CTA = "Shop Now"
	}
	if reply.Hashtags == nil {
		reply.Hashtags = []string{}
	}
	if reply.Variations == nil {
		reply.Variations = []AdVariation{}
	}
	reply.Source = SourceAI
	return reply
}

func (s *service) GenerateBulk(ctx context.Context, in BulkInput) BulkResult {
	var out BulkResult
	if enabled(in.GenerateDescription) {
		desc := s.GenerateDescription(ctx, DescriptionInput{
			ProductName: in.ProductName,
			Category:    in.Category,
			Features:    in.Features,
		})
		out.Description = &desc
	}
	if enabled(in.GenerateAdCopy) && out.Description != nil {
		adCopy := s.GenerateAdCopy(ctx, AdCopyInput{
			ProductName:        in.ProductName,
			ProductDescription: out.Description.Description,
		})
		out.AdCopy = &adCopy
	}
	if enabled(in.GeneratePricing) && in.SupplierCostCents != nil && *in.SupplierCostCents > 0 {
		pricing := s.RecommendPricing(ctx, PricingInput{
			ProductName:       in.ProductName,
			SupplierCostCents: *in.SupplierCostCents,
			Category:          in.Category,
		})
		out.Pricing = &pricing
	}
	return out
}

func (s *service) Health() Health {
	if s.policy.Enabled() {
		return Health{Status: "available", AIEnabled: true, Message: "AI service is ready"}
	}
	return Health{Status: "fallback", AIEnabled: false, Message: "Running in fallback mode (no API key)"}
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return *v
}
