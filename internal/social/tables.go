package social

import "strings"

const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"

	defaultCategory     = "default"
	DefaultHashtagCount = 20
)

// PostingWindow is one day's recommended posting slots.
type PostingWindow struct {
	Day             string   `json:"day"`
	Times           []string `json:"times"`
	EngagementScore float64  `json:"engagement_score"`
}

var hashtagTable = map[string]map[string][]string{
	PlatformInstagram: {
		"fashion": {"ootd", "fashionista", "styleinspo", "outfitoftheday", "fashionblogger", "trendy", "instafashion", "streetstyle", "fashiongram", "lookbook"},
		"beauty":  {"beautytips", "makeuplover", "skincare", "beautycare", "glowup", "beautyhacks", "makeuptutorial", "skincareroutine", "beautycommunity", "glow"},
		"tech":    {"techgadgets", "innovation", "gadgetlover", "techtok", "smarthome", "techlife", "futuretech", "gadgetreview", "techlover", "newtech"},
		"home":    {"homedecor", "homedesign", "interiorinspo", "homegoals", "cozyhome", "homestyle", "interiordesign", "homeinspiration", "homestyling", "decorideas"},
		"default": {"viral", "trending", "musthave", "fyp", "lifestyle", "shopnow", "newdrop", "exclusive", "limited", "dealoftheday"},
	},
	PlatformTikTok: {
		"fashion": {"fashiontok", "ootd", "stylecheck", "getreadywithme", "grwm", "fashionfinds", "trendyfinds", "outfitideas", "fashionhacks"},
		"beauty":  {"beautytok", "makeuptok", "skincaretok", "glow", "beautyhacks", "grwm", "makeuproutine", "skincareroutine", "beautytips"},
		"tech":    {"techtok", "gadgets", "techfinds", "amazonfinds", "cooltech", "techreview", "unboxing", "techgadgets", "musthave"},
		"home":    {"hometok", "amazonhomefinds", "homehacks", "organizingtiktok", "cleaninghacks", "cozyhome", "roomtour", "homedecor"},
		"default": {"fyp", "foryou", "viral", "trending", "tiktokshop", "tiktokmademebuyit", "amazonfinds", "musthave", "lifehack"},
	},
}

var postingTable = map[string][]PostingWindow{
	PlatformInstagram: {
		{Day: "Monday", Times: []string{"11 AM", "2 PM"}, EngagementScore: 0.85},
		{Day: "Tuesday", Times: []string{"10 AM", "1 PM", "7 PM"}, EngagementScore: 0.90},
		{Day: "Wednesday", Times: []string{"11 AM", "3 PM"}, EngagementScore: 0.88},
		{Day: "Thursday", Times: []string{"12 PM", "7 PM"}, EngagementScore: 0.87},
		{Day: "Friday", Times: []string{"10 AM", "2 PM"}, EngagementScore: 0.82},
		{Day: "Saturday", Times: []string{"9 AM", "11 AM"}, EngagementScore: 0.75},
		{Day: "Sunday", Times: []string{"10 AM", "7 PM"}, EngagementScore: 0.80},
	},
	PlatformTikTok: {
		{Day: "Monday", Times: []string{"6 AM", "10 AM", "10 PM"}, EngagementScore: 0.85},
		{Day: "Tuesday", Times: []string{"2 AM", "4 AM", "9 AM"}, EngagementScore: 0.88},
		{Day: "Wednesday", Times: []string{"7 AM", "8 AM", "11 PM"}, EngagementScore: 0.90},
		{Day: "Thursday", Times: []string{"9 AM", "12 PM", "7 PM"}, EngagementScore: 0.92},
		{Day: "Friday", Times: []string{"5 AM", "1 PM", "3 PM"}, EngagementScore: 0.89},
		{Day: "Saturday", Times: []string{"11 AM", "7 PM", "8 PM"}, EngagementScore: 0.86},
		{Day: "Sunday", Times: []string{"7 AM", "8 AM", "4 PM"}, EngagementScore: 0.83},
	},
	PlatformFacebook: {
		{Day: "Monday", Times: []string{"9 AM", "12 PM"}, EngagementScore: 0.78},
		{Day: "Tuesday", Times: []string{"9 AM", "1 PM", "4 PM"}, EngagementScore: 0.82},
		{Day: "Wednesday", Times: []string{"9 AM", "12 PM", "3 PM"}, EngagementScore: 0.85},
		{Day: "Thursday", Times: []string{"8 AM", "12 PM", "5 PM"}, EngagementScore: 0.84},
		{Day: "Friday", Times: []string{"9 AM", "11 AM", "2 PM"}, EngagementScore: 0.80},
		{Day: "Saturday", Times: []string{"12 PM"}, EngagementScore: 0.65},
		{Day: "Sunday", Times: []string{"12 PM", "3 PM"}, EngagementScore: 0.68},
	},
	PlatformTwitter: {
		{Day: "Monday", Times: []string{"8 AM", "10 AM", "12 PM"}, EngagementScore: 0.82},
		{Day: "Tuesday", Times: []string{"9 AM", "12 PM", "3 PM"}, EngagementScore: 0.88},
		{Day: "Wednesday", Times: []string{"9 AM", "12 PM", "5 PM"}, EngagementScore: 0.90},
		{Day: "Thursday", Times: []string{"8 AM", "11 AM", "1 PM"}, EngagementScore: 0.87},
		{Day: "Friday", Times: []string{"9 AM", "10 AM", "11 AM"}, EngagementScore: 0.83},
		{Day: "Saturday", Times: []string{"10 AM"}, EngagementScore: 0.60},
		{Day: "Sunday", Times: []string{"9 AM", "12 PM"}, EngagementScore: 0.65},
	},
}

// TrendingHashtags returns up to count tags for the platform and category.
// Unknown platforms read the Instagram table; unknown categories read its
// default list.
func TrendingHashtags(platform, category string, count int) []string {
	byCategory, ok := hashtagTable[strings.ToLower(platform)]
	if !ok {
		byCategory = hashtagTable[PlatformInstagram]
	}
	tags, ok := byCategory[strings.ToLower(category)]
	if !ok {
		tags = byCategory[defaultCategory]
	}
	if count < 0 {
		count = 0
	}
	if count > len(tags) {
		count = len(tags)
	}
	out := make([]string, count)
	copy(out, tags[:count])
	return out
}

// BestPostingTimes returns the weekly posting windows, Instagram's when the
// platform is unknown.
func BestPostingTimes(platform string) []PostingWindow {
	windows, ok := postingTable[strings.ToLower(platform)]
	if !ok {
		windows = postingTable[PlatformInstagram]
	}
	out := make([]PostingWindow, len(windows))
	copy(out, windows)
	return out
}
