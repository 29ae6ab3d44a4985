package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// ErrNotConfigured is returned when no RapidAPI key is set.
var ErrNotConfigured = errors.New("tiktok: rapidapi key not configured")

const (
	defaultTimeout = 30 * time.Second
	// RapidAPI free tiers allow a handful of calls per second.
	requestsPerSecond = 1
)

// Trend is a hashtag with the counters the scorer needs.
type Trend struct {
	Hashtag    string          `json:"hashtag"`
	Views      int64           `json:"views"`
	GrowthRate float64         `json:"growth_rate"`
	Engagement int64           `json:"engagement"`
	VideoCount int64           `json:"video_count"`
	Raw        json.RawMessage `json:"raw_data"`
	FetchedAt  time.Time       `json:"fetched_at"`
}

type hashtagItem struct {
	Hashtag    string `json:"hashtag"`
	Views      int64  `json:"views"`
	Likes      int64  `json:"likes"`
	Comments   int64  `json:"comments"`
	Shares     int64  `json:"shares"`
	VideoCount int64  `json:"videoCount"`
}

// Client calls the RapidAPI TikTok scraper endpoints.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient returns nil when the RapidAPI key is missing.
func NewClient(cfg config.RapidAPIConfig) *Client {
	if strings.TrimSpace(cfg.Key) == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	http := resty.New().
		SetBaseURL("https://"+cfg.TikTokHost).
		SetTimeout(timeout).
		SetHeader("X-RapidAPI-Key", cfg.Key).
		SetHeader("X-RapidAPI-Host", cfg.TikTokHost)
	return newClient(http)
}

func newClient(http *resty.Client) *Client {
	return &Client{
		http:    http,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		now:     time.Now,
	}
}

// TrendingHashtags fetches up to count trending hashtags.
func (c *Client) TrendingHashtags(ctx context.Context, count int) ([]Trend, error) {
	var out struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "/trending/hashtags", map[string]string{"count": strconv.Itoa(count)}, &out); err != nil {
		return nil, err
	}
	trends := make([]Trend, 0, len(out.Data))
	for _, raw := range out.Data {
		var item hashtagItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		trends = append(trends, c.trend(item.Hashtag, item, raw))
	}
	return trends, nil
}

// HashtagInfo fetches the counters for one hashtag; nil when the API has no data.
func (c *Client) HashtagInfo(ctx context.Context, hashtag string) (*Trend, error) {
	var out struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "/hashtag/info", map[string]string{"hashtag": hashtag}, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || string(out.Data) == "null" || string(out.Data) == "{}" {
		return nil, nil
	}
	var item hashtagItem
	if err := json.Unmarshal(out.Data, &item); err != nil {
		return nil, fmt.Errorf("decode hashtag info: %w", err)
	}
	trend := c.trend(hashtag, item, out.Data)
	return &trend, nil
}

// Search returns the raw search hits for a keyword.
func (c *Client) Search(ctx context.Context, keyword string, count int) ([]json.RawMessage, error) {
	var out struct {
		Data []json.RawMessage `json:"data"`
	}
	params := map[string]string{"keyword": keyword, "count": strconv.Itoa(count)}
	if err := c.get(ctx, "/search/general", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, dst any) error {
	if c == nil {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(dst).
		Get(path)
	if err != nil {
		return fmt.Errorf("tiktok %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("tiktok %s: status %d", path, resp.StatusCode())
	}
	return nil
}

func (c *Client) trend(hashtag string, item hashtagItem, raw json.RawMessage) Trend {
	return Trend{
		Hashtag:    hashtag,
		Views:      item.Views,
		GrowthRate: GrowthRate(item.Views, item.VideoCount),
		Engagement: item.Likes + item.Comments + item.Shares,
		VideoCount: item.VideoCount,
		Raw:        raw,
		FetchedAt:  c.now().UTC(),
	}
}

// GrowthRate uses views per video as a velocity proxy, scaled to 0..100 with
// 100k views per video as the ceiling.
func GrowthRate(views, videos int64) float64 {
	if videos <= 0 {
		return 0
	}
	perVideo := float64(views) / float64(videos)
	growth := math.Min(100, perVideo/100000*100)
	return math.Round(growth*100) / 100
}
