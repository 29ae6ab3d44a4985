package imports

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Sources recognised from supplier URLs.
const (
	SourceAliExpress = "aliexpress"
	SourceCJ         = "cjdropshipping"
	SourceAlibaba    = "alibaba"
	SourceAmazon     = "amazon"
	SourceUnknown    = "unknown"
)

// ParsedProduct is the product data extracted from a supplier listing.
type ParsedProduct struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Images            []string `json:"images"`
	PriceCents        int64    `json:"price_cents"`
	SupplierCostCents int64    `json:"supplier_cost_cents"`
	SupplierURL       string   `json:"supplier_url"`
	SupplierName      string   `json:"supplier_name"`
	Category          *string  `json:"category"`
	Source            string   `json:"source"`
}

// DetectSource identifies the supplier platform from the URL host or path.
func DetectSource(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "aliexpress"):
		return SourceAliExpress
	case strings.Contains(lower, "cjdropshipping"):
		return SourceCJ
	case strings.Contains(lower, "alibaba"):
		return SourceAlibaba
	case strings.Contains(lower, "amazon"):
		return SourceAmazon
	default:
		return SourceUnknown
	}
}

// ParseURL returns listing data for the URL. Listings are not fetched; each
// platform yields its catalogue template keyed by a short hash of the URL so
// repeated parses of the same link agree.
func ParseURL(url string) ParsedProduct {
	source := DetectSource(url)
	tag := urlTag(url)
	switch source {
	case SourceAliExpress:
		return ParsedProduct{
			Title:       "Trending Product " + tag,
			Description: "This is a high-quality product imported from AliExpress. Features premium materials and modern design. Perfect for everyday use.",
			Images: []string{
				"https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400",
				"https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400",
				"https://images.unsplash.com/photo-1572635196237-14b3f281503f?w=400",
			},
			PriceCents:        2999,
			SupplierCostCents: 899,
			SupplierURL:       url,
			SupplierName:      "AliExpress",
			Category:          category("electronics"),
			Source:            source,
		}
	case SourceCJ:
		return ParsedProduct{
			Title:       "CJ Product " + tag,
			Description: "Premium quality product from CJ Dropshipping. Fast shipping and reliable supplier.",
			Images: []string{
				"https://images.unsplash.com/photo-1560343090-f0409e92791a?w=400",
			},
			PriceCents:        3499,
			SupplierCostCents: 1199,
			SupplierURL:       url,
			SupplierName:      "CJ Dropshipping",
			Category:          category("fashion"),
			Source:            source,
		}
	}

	name := "External"
	if source != SourceUnknown {
		name = strings.ToUpper(source[:1]) + source[1:]
	}
	return ParsedProduct{
		Title:       "Imported Product " + tag,
		Description: "Product imported from external source. Edit details before publishing.",
		Images: []string{
			"https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=400",
		},
		PriceCents:        1999,
		SupplierCostCents: 599,
		SupplierURL:       url,
		SupplierName:      name,
		Category:          category("general"),
		Source:            source,
	}
}

func urlTag(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:8]
}

func category(v string) *string { return &v }

// Platform describes an import source and what can be pulled from it.
type Platform struct {
	Name     string   `json:"name"`
	Domain   string   `json:"domain"`
	Status   string   `json:"status"`
	Features []string `json:"features"`
}

// SupportedPlatforms lists the import sources.
func SupportedPlatforms() []Platform {
	return []Platform{
		{Name: "AliExpress", Domain: "aliexpress.com", Status: "supported", Features: []string{"product_info", "images", "pricing"}},
		{Name: "CJ Dropshipping", Domain: "cjdropshipping.com", Status: "supported", Features: []string{"product_info", "images", "pricing", "shipping"}},
		{Name: "Alibaba", Domain: "alibaba.com", Status: "supported", Features: []string{"product_info", "images", "pricing"}},
		{Name: "Amazon", Domain: "amazon.com", Status: "limited", Features: []string{"product_info", "images"}},
	}
}
