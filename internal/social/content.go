package social

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// InstagramPost is a caption with tags and posting hints.
type InstagramPost struct {
	Caption             string   `json:"caption"`
	Hashtags            []string `json:"hashtags"`
	SuggestedImageStyle string   `json:"suggested_image_style"`
	BestPostingTime     string   `json:"best_posting_time"`
}

// TikTokCaption is a short caption with sound and video ideas.
type TikTokCaption struct {
	Caption        string   `json:"caption"`
	Hashtags       []string `json:"hashtags"`
	TrendingSounds []string `json:"trending_sounds"`
	VideoIdeas     []string `json:"video_ideas"`
}

type FacebookPost struct {
	Text                 string `json:"text"`
	CallToAction         string `json:"call_to_action"`
	SuggestedLinkPreview string `json:"suggested_link_preview"`
}

type TwitterThread struct {
	Tweets   []string `json:"tweets"`
	Hashtags []string `json:"hashtags"`
}

type PinterestPin struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	BoardSuggestions []string `json:"board_suggestions"`
	Keywords         []string `json:"keywords"`
}

const defaultBestTime = "6-9 PM EST"

var (
	defaultSounds        = []string{"original sound", "trending audio", "viral sound"}
	defaultTweetHashtags = []string{"trending", "musthave", "shopnow"}
)

// labeled splits a "KEY: value" reply into its labeled lines. Labels are
// matched at line start; repeated labels keep the last value.
func labeled(reply string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" || strings.ToUpper(key) != key {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

func splitList(raw, sep string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitTags(raw string) []string {
	tags := splitList(raw, ",")
	for i, t := range tags {
		tags[i] = strings.ReplaceAll(t, "#", "")
	}
	return tags
}

func parseInstagram(reply, productName string) InstagramPost {
	fields := labeled(reply)
	post := InstagramPost{
		Caption:             fields["CAPTION"],
		Hashtags:            splitTags(fields["HASHTAGS"]),
		SuggestedImageStyle: orDefault(fields["IMAGE_STYLE"], "Product lifestyle shot"),
		BestPostingTime:     orDefault(fields["BEST_TIME"], defaultBestTime),
	}
	if post.Caption == "" {
		post.Caption = fmt.Sprintf("Check out our amazing %s! Link in bio.", productName)
	}
	if len(post.Hashtags) == 0 {
		post.Hashtags = TrendingHashtags(PlatformInstagram, defaultCategory, DefaultHashtagCount)
	}
	return post
}

func parseTikTok(reply, productName, hook string) TikTokCaption {
	fields := labeled(reply)
	out := TikTokCaption{
		Caption:        fields["CAPTION"],
		Hashtags:       splitTags(fields["HASHTAGS"]),
		TrendingSounds: splitList(fields["SOUNDS"], ","),
		VideoIdeas:     splitList(fields["VIDEO_IDEAS"], "|"),
	}
	if out.Caption == "" {
		out.Caption = hook + " Check link in bio!"
	}
	if len(out.Hashtags) == 0 {
		out.Hashtags = TrendingHashtags(PlatformTikTok, defaultCategory, 5)
	}
	if len(out.TrendingSounds) == 0 {
		out.TrendingSounds = append([]string(nil), defaultSounds...)
	}
	if len(out.VideoIdeas) == 0 {
		out.VideoIdeas = []string{
			"POV: You discover " + productName,
			"Things TikTok made me buy - " + productName + " edition",
			"Review: Is " + productName + " worth it?",
		}
	}
	return out
}

func parseFacebook(reply, productName string) FacebookPost {
	fields := labeled(reply)
	return FacebookPost{
		Text:                 orDefault(fields["TEXT"], fmt.Sprintf("Introducing %s - your new must-have! Click to learn more.", productName)),
		CallToAction:         orDefault(fields["CTA"], "Shop Now"),
		SuggestedLinkPreview: orDefault(fields["PREVIEW"], fmt.Sprintf("Shop %s - Limited Time Offer", productName)),
	}
}

// parseTwitter keeps TWEET<n> lines in reply order.
func parseTwitter(reply string, tweetCount int) TwitterThread {
	var thread TwitterThread
	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		switch {
		case strings.HasPrefix(line, "TWEET"):
			if _, tweet, ok := strings.Cut(line, ":"); ok {
				if tweet = strings.TrimSpace(tweet); tweet != "" {
					thread.Tweets = append(thread.Tweets, tweet)
				}
			}
		case strings.HasPrefix(line, "HASHTAGS:"):
			thread.Hashtags = splitTags(strings.TrimPrefix(line, "HASHTAGS:"))
		}
	}
	if len(thread.Tweets) == 0 {
		for i := 1; i <= tweetCount; i++ {
			thread.Tweets = append(thread.Tweets, fmt.Sprintf("%d/ Tweet about the product", i))
		}
	} else if len(thread.Tweets) > tweetCount {
		thread.Tweets = thread.Tweets[:tweetCount]
	}
	if len(thread.Hashtags) == 0 {
		thread.Hashtags = append([]string(nil), defaultTweetHashtags...)
	}
	return thread
}

func parsePinterest(reply, productName string) PinterestPin {
	fields := labeled(reply)
	pin := PinterestPin{
		Title:            orDefault(fields["TITLE"], productName),
		Description:      orDefault(fields["DESCRIPTION"], fmt.Sprintf("Discover %s - perfect for your collection!", productName)),
		BoardSuggestions: splitList(fields["BOARDS"], ","),
		Keywords:         splitList(fields["KEYWORDS"], ","),
	}
	if len(pin.BoardSuggestions) == 0 {
		pin.BoardSuggestions = []string{"Products I Love", "Must Haves", "Shopping List"}
	}
	if len(pin.Keywords) == 0 {
		pin.Keywords = []string{strings.ToLower(productName), "trending", "must have", "shop"}
	}
	return pin
}

func fallbackInstagram(productName string, features []string, style string, hashtagCount int) InstagramPost {
	featureText := "amazing features"
	if len(features) > 0 {
		featureText = strings.Join(features[:min(2, len(features))], " and ")
	}
	return InstagramPost{
		Caption:             fmt.Sprintf("Meet your new favorite: %s! With %s, this is a must-have. Link in bio to shop now!", productName, featureText),
		Hashtags:            TrendingHashtags(PlatformInstagram, defaultCategory, hashtagCount),
		SuggestedImageStyle: capitalize(style) + " product photography",
		BestPostingTime:     defaultBestTime,
	}
}

func fallbackTikTok(productName, hook string) TikTokCaption {
	return TikTokCaption{
		Caption:        hook + " Link in bio!",
		Hashtags:       TrendingHashtags(PlatformTikTok, defaultCategory, 5),
		TrendingSounds: append([]string(nil), defaultSounds...),
		VideoIdeas: []string{
			"POV: You discover " + productName,
			"Things TikTok made me buy",
			"Honest review: " + productName,
		},
	}
}

func fallbackFacebook(productName, description string) FacebookPost {
	return FacebookPost{
		Text:                 fmt.Sprintf("Check out %s! %s... Click to learn more!", productName, truncate(description, 200)),
		CallToAction:         "Shop Now",
		SuggestedLinkPreview: "Shop " + productName,
	}
}

// fallbackTwitter uses at most four key points between the hook and the CTA.
func fallbackTwitter(productName string, keyPoints []string) TwitterThread {
	tweets := []string{fmt.Sprintf("1/ Introducing %s - a thread about why you need this:", productName)}
	for _, point := range keyPoints[:min(4, len(keyPoints))] {
		tweets = append(tweets, fmt.Sprintf("%d/ %s", len(tweets)+1, point))
	}
	tweets = append(tweets, fmt.Sprintf("%d/ Ready to get yours? Check the link below!", len(tweets)+1))
	return TwitterThread{Tweets: tweets, Hashtags: append([]string(nil), defaultTweetHashtags...)}
}

func fallbackPinterest(productName, category string) PinterestPin {
	title := titleCase(category)
	return PinterestPin{
		Title:            fmt.Sprintf("%s - Must Have %s Find", productName, title),
		Description:      fmt.Sprintf("Discover %s - the perfect addition to your %s collection. Click to shop!", productName, category),
		BoardSuggestions: []string{title + " Finds", "Products I Love", "Shopping List"},
		Keywords:         []string{strings.ToLower(productName), strings.ToLower(category), "trending", "must have"},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func truncate(v string, limit int) string {
	if utf8.RuneCountInString(v) <= limit {
		return v
	}
	return string([]rune(v)[:limit])
}

func capitalize(v string) string {
	if v == "" {
		return v
	}
	r, size := utf8.DecodeRuneInString(v)
	return string(unicode.ToUpper(r)) + strings.ToLower(v[size:])
}

func titleCase(v string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range v {
		if unicode.IsLetter(r) {
			if upperNext {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			upperNext = false
			continue
		}
		b.WriteRune(r)
		upperNext = true
	}
	return b.String()
}
