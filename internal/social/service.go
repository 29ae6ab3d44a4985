package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/urgency-engine/internal/ai"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"gorm.io/gorm"
)

const (
	defaultStyle      = "lifestyle"
	defaultHook       = "Wait till you see this..."
	defaultPostType   = "product"
	defaultTweetCount = 5
	defaultPinBoard   = "lifestyle"
	featureExcerpt    = 100
	maxReplyTokens    = 1024
)

var postTypeFocus = map[string]string{
	"product":   "direct product benefits",
	"story":     "storytelling",
	"question":  "engagement",
	"promotion": "urgency and value",
}

type productLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

// Service writes platform-specific social posts for products.
type Service interface {
	Instagram(ctx context.Context, input InstagramInput) (*InstagramPost, error)
	TikTok(ctx context.Context, input TikTokInput) (*TikTokCaption, error)
	Facebook(ctx context.Context, input FacebookInput) (*FacebookPost, error)
	Twitter(ctx context.Context, input TwitterInput) (*TwitterThread, error)
	Pinterest(ctx context.Context, input PinterestInput) (*PinterestPin, error)
	GenerateAll(ctx context.Context, input AllInput) (*AllContent, error)
	TrendingHashtags(platform, category string, count int) HashtagsResult
	BestTimes(platform string) PostingTimesResult
}

type service struct {
	products productLookup
	policy   *ai.Policy
}

// NewService builds the social content generator. A nil or disabled policy
// serves template content only.
func NewService(products productLookup, policy *ai.Policy) (Service, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product lookup required")
	}
	return &service{products: products, policy: policy}, nil
}

// subject resolves the product a request is about.
type subject struct {
	name        string
	description string
}

func (s *service) resolve(ctx context.Context, productID *int64, productName *string) (*subject, error) {
	if productID != nil && *productID > 0 {
		product, err := s.loadProduct(ctx, *productID)
		if err != nil {
			return nil, err
		}
		sub := &subject{name: product.Name}
		if product.Description != nil {
			sub.description = *product.Description
		}
		return sub, nil
	}
	if productName == nil || strings.TrimSpace(*productName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product name or product_id required")
	}
	return &subject{name: strings.TrimSpace(*productName)}, nil
}

func (s *service) loadProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

// excerpt stands in for explicit features when only a description is known.
func (sub *subject) excerpt() []string {
	if sub.description == "" {
		return nil
	}
	return []string{truncate(sub.description, featureExcerpt)}
}

func (s *service) ask(ctx context.Context, op, prompt string) (string, bool) {
	return s.policy.CompleteText(ctx, op, ai.CompletionRequest{
		Messages:  []ai.Message{{Role: "user", Content: prompt}},
		MaxTokens: maxReplyTokens,
	})
}

func (s *service) Instagram(ctx context.Context, input InstagramInput) (*InstagramPost, error) {
	sub, err := s.resolve(ctx, input.ProductID, input.ProductName)
	if err != nil {
		return nil, err
	}
	features := input.KeyFeatures
	if len(features) == 0 {
		features = sub.excerpt()
	}
	hashtagCount := DefaultHashtagCount
	if input.HashtagCount != nil {
		hashtagCount = *input.HashtagCount
	}
	post := s.instagram(ctx, sub.name, features, orDefault(input.Style, defaultStyle), hashtagCount)
	return &post, nil
}

func (s *service) instagram(ctx context.Context, name string, features []string, style string, hashtagCount int) InstagramPost {
	prompt := fmt.Sprintf(`Create an engaging Instagram post for this product:

Product: %s
Key Features: %s
Style: %s

Guidelines:
- Start with a hook that stops the scroll
- Use emojis strategically (3-5 total)
- Include a clear call to action
- Write in %s tone
- Keep caption under 2200 characters

Return in this exact format:
CAPTION: [your engaging caption here]
HASHTAGS: [comma-separated list of %d relevant hashtags without # symbol]
IMAGE_STYLE: [brief description of ideal image style]
BEST_TIME: [suggested posting time like "7-9 PM EST"]`,
		name, strings.Join(features, ", "), style, style, hashtagCount)

	reply, ok := s.ask(ctx, "social_instagram", prompt)
	if !ok {
		return fallbackInstagram(name, features, style, hashtagCount)
	}
	return parseInstagram(reply, name)
}

func (s *service) TikTok(ctx context.Context, input TikTokInput) (*TikTokCaption, error) {
	sub, err := s.resolve(ctx, input.ProductID, input.ProductName)
	if err != nil {
		return nil, err
	}
	caption := s.tiktok(ctx, sub.name, orDefault(input.Hook, defaultHook))
	return &caption, nil
}

func (s *service) tiktok(ctx context.Context, name, hook string) TikTokCaption {
	prompt := fmt.Sprintf(`Create a TikTok caption for this product:

Product: %s
Video hook: %s

Guidelines:
- Keep caption short and punchy (under 150 characters)
- Use trending language naturally
- Include 3-5 hashtags max
- Make it feel authentic, not salesy

Return in this exact format:
CAPTION: [your caption here]
HASHTAGS: [comma-separated list of 4-5 hashtags without # symbol]
SOUNDS: [comma-separated list of 3 trending TikTok sound suggestions]
VIDEO_IDEAS: [3 video concept ideas, separated by |]`, name, hook)

	reply, ok := s.ask(ctx, "social_tiktok", prompt)
	if !ok {
		return fallbackTikTok(name, hook)
	}
	return parseTikTok(reply, name, hook)
}

func (s *service) Facebook(ctx context.Context, input FacebookInput) (*FacebookPost, error) {
	sub, err := s.resolve(ctx, input.ProductID, input.ProductName)
	if err != nil {
		return nil, err
	}
	description := sub.description
	if input.Description != nil && *input.Description != "" {
		description = *input.Description
	}
	post := s.facebook(ctx, sub.name, description, orDefault(input.PostType, defaultPostType))
	return &post, nil
}

func (s *service) facebook(ctx context.Context, name, description, postType string) FacebookPost {
	focus, ok := postTypeFocus[postType]
	if !ok {
		focus = postTypeFocus["promotion"]
	}
	prompt := fmt.Sprintf(`Create a Facebook post for this product:

Product: %s
Description: %s
Post Type: %s

Guidelines:
- Write conversationally for Facebook's audience
- For %s posts, focus on %s
- Include a clear call to action
- Keep it under 500 characters for best engagement

Return in this exact format:
TEXT: [your post text here]
CTA: [call to action text like "Shop Now" or "Learn More"]
PREVIEW: [suggested link preview description]`, name, description, postType, postType, focus)

	reply, ok := s.ask(ctx, "social_facebook", prompt)
	if !ok {
		return fallbackFacebook(name, description)
	}
	return parseFacebook(reply, name)
}

func (s *service) Twitter(ctx context.Context, input TwitterInput) (*TwitterThread, error) {
	sub, err := s.resolve(ctx, input.ProductID, input.ProductName)
	if err != nil {
		return nil, err
	}
	points := input.KeyPoints
	if len(points) == 0 {
		points = sub.excerpt()
	}
	tweetCount := input.TweetCount
	if tweetCount <= 0 {
		tweetCount = defaultTweetCount
	}
	thread := s.twitter(ctx, sub.name, points, tweetCount)
	return &thread, nil
}

func (s *service) twitter(ctx context.Context, name string, points []string, tweetCount int) TwitterThread {
	prompt := fmt.Sprintf(`Create a Twitter/X thread for this product:

Product: %s
Key Points: %s
Number of tweets: %d

Guidelines:
- First tweet should be a strong hook
- Each tweet under 280 characters
- Use thread style (1/, 2/, etc.)
- Last tweet should have a clear CTA
- Use 2-3 relevant hashtags total

Return in this exact format:
TWEET1: [first tweet]
TWEET2: [second tweet]
...
HASHTAGS: [comma-separated hashtags without # symbol]`, name, strings.Join(points, ", "), tweetCount)

	reply, ok := s.ask(ctx, "social_twitter", prompt)
	if !ok {
		return fallbackTwitter(name, points)
	}
	return parseTwitter(reply, tweetCount)
}

func (s *service) Pinterest(ctx context.Context, input PinterestInput) (*PinterestPin, error) {
	sub, err := s.resolve(ctx, input.ProductID, input.ProductName)
	if err != nil {
		return nil, err
	}
	pin := s.pinterest(ctx, sub.name, orDefault(input.Category, defaultPinBoard))
	return &pin, nil
}

func (s *service) pinterest(ctx context.Context, name, category string) PinterestPin {
	prompt := fmt.Sprintf(`Create Pinterest pin content for this product:

Product: %s
Category: %s

Guidelines:
- Title should be descriptive and searchable (max 100 chars)
- Description should be keyword-rich and helpful
- Suggest relevant boards
- Include SEO keywords

Return in this exact format:
TITLE: [pin title]
DESCRIPTION: [pin description, 2-3 sentences]
BOARDS: [comma-separated board suggestions]
KEYWORDS: [comma-separated SEO keywords]`, name, category)

	reply, ok := s.ask(ctx, "social_pinterest", prompt)
	if !ok {
		return fallbackPinterest(name, category)
	}
	return parsePinterest(reply, name)
}

func (s *service) GenerateAll(ctx context.Context, input AllInput) (*AllContent, error) {
	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	sub := subject{name: product.Name}
	if product.Description != nil {
		sub.description = *product.Description
	}
	features := sub.excerpt()

	return &AllContent{
		Product:   ProductRef{ID: product.ID, Name: product.Name},
		Instagram: s.instagram(ctx, sub.name, features, orDefault(input.Style, defaultStyle), DefaultHashtagCount),
		TikTok:    s.tiktok(ctx, sub.name, orDefault(input.Hook, defaultHook)),
		Facebook:  s.facebook(ctx, sub.name, sub.description, defaultPostType),
		Twitter:   s.twitter(ctx, sub.name, features, defaultTweetCount),
		Pinterest: s.pinterest(ctx, sub.name, defaultPinBoard),
	}, nil
}

func (s *service) TrendingHashtags(platform, category string, count int) HashtagsResult {
	platform = orDefault(platform, PlatformInstagram)
	category = orDefault(category, defaultCategory)
	return HashtagsResult{
		Platform: platform,
		Category: category,
		Hashtags: TrendingHashtags(platform, category, count),
	}
}

func (s *service) BestTimes(platform string) PostingTimesResult {
	platform = orDefault(platform, PlatformInstagram)
	return PostingTimesResult{Platform: platform, Times: BestPostingTimes(platform)}
}
