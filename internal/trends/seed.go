package trends

import (
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

type demoProduct struct {
	externalID     string
	title          string
	description    string
	image          string
	source         string
	category       string
	score          float64
	velocity       enums.TrendVelocity
	views          int64
	likes          int64
	supplierURL    string
	supplierCents  int64
	suggestedCents int64
	margin         float64
	recommendation enums.AIRecommendation
	reasoning      string
}

var demoCatalogue = []demoProduct{
	{
		"tiktok_viral_001", "LED Cloud Light - Viral TikTok Room Decor",
		"The cloud light that broke TikTok! DIY thunderstorm ambiance with remote control. 16 colors, 4 lightning modes.",
		"https://images.unsplash.com/photo-1513506003901-1e6a229e2d15?w=400", "tiktok", "home",
		92, enums.TrendVelocityRising, 45_000_000, 8_200_000,
		"https://aliexpress.com/item/cloud-light", 1299, 4999, 74, enums.AIRecommendationImport,
		"Extremely high engagement with 45M views. Room decor trending among Gen Z. High margin potential at suggested price.",
	},
	{
		"tiktok_viral_002", "Sunset Projection Lamp - Aesthetic Room Vibes",
		"360° rotating sunset lamp creating golden hour anytime. USB powered, perfect for content creation and cozy vibes.",
		"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=400", "tiktok", "home",
		88, enums.TrendVelocityRising, 32_000_000, 5_800_000,
		"https://aliexpress.com/item/sunset-lamp", 899, 3499, 74, enums.AIRecommendationImport,
		"Content creator favorite that drives organic UGC. Compact and lightweight so shipping stays cheap.",
	},
	{
		"tiktok_viral_003", "Mini Portable Blender - Protein Shake On-The-Go",
		"Rechargeable USB blender, 6 blades, BPA-free. Makes smoothies in 30 seconds. Gym bag essential!",
		"https://images.unsplash.com/photo-1622597467836-f3285f2131b8?w=400", "tiktok", "electronics",
		85, enums.TrendVelocityStable, 28_000_000, 4_100_000,
		"https://aliexpress.com/item/mini-blender", 1199, 3999, 70, enums.AIRecommendationImport,
		"Fitness trend alignment. Year-round demand with peaks in January and summer.",
	},
	{
		"tiktok_viral_004", "Phone Camera Lens Kit - Pro Photos Anywhere",
		"3-in-1 lens kit: Wide angle, Macro, Fisheye. Universal clip fits all phones. TikTok photography hack!",
		"https://images.unsplash.com/photo-1516035069371-29a1b244cc32?w=400", "tiktok", "electronics",
		76, enums.TrendVelocityStable, 15_000_000, 2_100_000,
		"https://aliexpress.com/item/phone-lens-kit", 599, 2499, 76, enums.AIRecommendationWatch,
		"Good margin but competitive market. Consider unique packaging or bundle deals to differentiate.",
	},
	{
		"tiktok_viral_005", "Magnetic Phone Mount - MagSafe Car Holder",
		"Super strong magnets, 360° rotation. Works with all MagSafe cases. Clean dashboard look.",
		"https://images.unsplash.com/photo-1544244015-0df4b3ffc6b0?w=400", "tiktok", "electronics",
		72, enums.TrendVelocityStable, 12_000_000, 1_800_000,
		"https://aliexpress.com/item/magsafe-mount", 499, 1999, 75, enums.AIRecommendationWatch,
		"Steady demand but saturated market. Might need premium positioning.",
	},
	{
		"tiktok_viral_006", "Wireless Earbuds - AirPod Pro Alternative",
		"Active noise cancellation, 30hr battery, transparent mode. Looks just like the $250 version!",
		"https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=400", "aliexpress", "electronics",
		65, enums.TrendVelocityDeclining, 8_000_000, 1_200_000,
		"https://aliexpress.com/item/wireless-earbuds", 1599, 4999, 68, enums.AIRecommendationSkip,
		"High return rate potential for electronics. Trademark risk with comparison marketing.",
	},
	{
		"tiktok_viral_007", "Ice Roller Face Massager - Skincare Viral",
		"Stainless steel ice roller for morning depuff. Reduces pores, calms skin. Celebrity-approved skincare hack!",
		"https://images.unsplash.com/photo-1596755389378-c31d21fd1273?w=400", "tiktok", "beauty",
		89, enums.TrendVelocityRising, 38_000_000, 6_900_000,
		"https://aliexpress.com/item/ice-roller", 299, 1499, 80, enums.AIRecommendationImport,
		"Skincare is a hot category. Extremely high margin and easy to demonstrate in short videos.",
	},
	{
		"tiktok_viral_008", "Portable Ring Light - Content Creator Essential",
		"10-inch ring light with phone holder. 3 color modes, 10 brightness levels. Tripod included!",
		"https://images.unsplash.com/photo-1598300042247-d088f8ab3a91?w=400", "tiktok", "electronics",
		78, enums.TrendVelocityStable, 22_000_000, 3_100_000,
		"https://aliexpress.com/item/ring-light", 899, 2999, 70, enums.AIRecommendationImport,
		"Evergreen product for the creator economy. Buyers create content showing the product.",
	},
	{
		"tiktok_viral_009", "Acupressure Mat Set - Wellness TikTok Trend",
		"Spike mat and pillow set for back pain relief. 10 minutes a day for better sleep and relaxation.",
		"https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?w=400", "tiktok", "sports",
		81, enums.TrendVelocityRising, 25_000_000, 4_500_000,
		"https://aliexpress.com/item/acupressure-mat", 799, 3499, 77, enums.AIRecommendationImport,
		"Wellness keeps growing. Demonstrable results drive testimonial content.",
	},
	{
		"tiktok_viral_010", "Retro Pixel Art Frame - Digital Photo Display",
		"16x16 LED pixel display. Create custom art or upload photos. Perfect desk decor for gamers!",
		"https://images.unsplash.com/photo-1550745165-9bc0b252726f?w=400", "tiktok", "electronics",
		83, enums.TrendVelocityRising, 19_000_000, 3_800_000,
		"https://aliexpress.com/item/pixel-frame", 1899, 5999, 68, enums.AIRecommendationImport,
		"Unique product with gaming and nostalgia appeal. Customization encourages sharing.",
	},
	{
		"tiktok_viral_011", "Pet GPS Tracker - Never Lose Your Fur Baby",
		"Real-time GPS tracking, waterproof, 7-day battery. Works worldwide with app. Peace of mind for pet parents.",
		"https://images.unsplash.com/photo-1587300003388-59208cc962cb?w=400", "instagram", "pets",
		74, enums.TrendVelocityStable, 11_000_000, 1_900_000,
		"https://aliexpress.com/item/pet-gps", 1499, 4499, 67, enums.AIRecommendationWatch,
		"Pet market is lucrative but needs ongoing app support. Verify supplier reliability first.",
	},
	{
		"tiktok_viral_012", "Foldable Laptop Stand - WFH Essential",
		"Ergonomic aluminum stand, 6 height levels. Folds flat for travel. Compatible with all laptops up to 17\".",
		"https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=400", "tiktok", "electronics",
		69, enums.TrendVelocityStable, 9_000_000, 1_400_000,
		"https://aliexpress.com/item/laptop-stand", 699, 2499, 72, enums.AIRecommendationWatch,
		"Remote work demand is steady. Good for bundling with other desk accessories.",
	},
}

// DemoCatalogue returns fresh rows for the demo trend catalogue.
func DemoCatalogue() []models.TrendProduct {
	out := make([]models.TrendProduct, 0, len(demoCatalogue))
	for _, d := range demoCatalogue {
		d := d
		out = append(out, models.TrendProduct{
			ExternalID:          &d.externalID,
			Title:               d.title,
			Description:         &d.description,
			ImageURL:            &d.image,
			Source:              d.source,
			Category:            &d.category,
			TrendScore:          d.score,
			TrendVelocity:       d.velocity,
			ViewCount:           d.views,
			LikeCount:           d.likes,
			SupplierURL:         &d.supplierURL,
			SupplierPriceCents:  &d.supplierCents,
			SuggestedPriceCents: &d.suggestedCents,
			EstimatedMargin:     &d.margin,
			AIRecommendation:    &d.recommendation,
			AIReasoning:         &d.reasoning,
		})
	}
	return out
}
