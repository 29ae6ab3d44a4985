package integrations

import "github.com/angelmondragon/urgency-engine/pkg/enums"

// Platform availability.
const (
	StatusAvailable  = "available"
	StatusComingSoon = "coming_soon"
	StatusPlanned    = "planned"
)

// Credential keys accepted on connect and patch.
const (
	CredAccessToken = "access_token"
	CredAPIKey      = "api_key"
	CredAPISecret   = "api_secret"
)

// SetupField describes one input the connect form needs.
type SetupField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// Platform is a store platform the engine can connect to.
type Platform struct {
	ID          enums.IntegrationPlatform `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Status      string                    `json:"status"`
	Features    []string                  `json:"features"`
	SetupFields []SetupField              `json:"setup_fields"`
}

var catalogue = []Platform{
	{
		ID:          enums.IntegrationPlatformShopify,
		Name:        "Shopify",
		Description: "Sync products and orders with your Shopify store",
		Status:      StatusAvailable,
		Features:    []string{"product_sync", "order_sync", "inventory_sync"},
		SetupFields: []SetupField{
			{Name: "store_url", Label: "Store URL", Type: "text", Placeholder: "your-store.myshopify.com", Required: true},
			{Name: CredAccessToken, Label: "Access Token", Type: "password", Placeholder: "shpat_...", Required: true},
		},
	},
	{
		ID:          enums.IntegrationPlatformWoocommerce,
		Name:        "WooCommerce",
		Description: "Connect your WordPress WooCommerce store",
		Status:      StatusAvailable,
		Features:    []string{"product_sync", "order_sync", "inventory_sync"},
		SetupFields: []SetupField{
			{Name: "store_url", Label: "Store URL", Type: "text", Placeholder: "https://your-store.com", Required: true},
			{Name: CredAPIKey, Label: "Consumer Key", Type: "password", Placeholder: "ck_...", Required: true},
			{Name: CredAPISecret, Label: "Consumer Secret", Type: "password", Placeholder: "cs_...", Required: true},
		},
	},
	{
		ID:          enums.IntegrationPlatformTiktokShop,
		Name:        "TikTok Shop",
		Description: "Sell directly on TikTok",
		Status:      StatusComingSoon,
		Features:    []string{"product_sync", "order_sync", "live_shopping"},
		SetupFields: []SetupField{},
	},
	{
		ID:          enums.IntegrationPlatformAmazon,
		Name:        "Amazon Seller",
		Description: "Expand to Amazon marketplace",
		Status:      StatusPlanned,
		Features:    []string{"product_sync", "order_sync", "fba_integration"},
		SetupFields: []SetupField{},
	},
	{
		ID:          enums.IntegrationPlatformEbay,
		Name:        "eBay",
		Description: "List products on eBay",
		Status:      StatusPlanned,
		Features:    []string{"product_sync", "order_sync"},
		SetupFields: []SetupField{},
	},
}

// Platforms returns the platform catalogue.
func Platforms() []Platform {
	out := make([]Platform, len(catalogue))
	copy(out, catalogue)
	return out
}

func findPlatform(id enums.IntegrationPlatform) (Platform, bool) {
	for _, p := range catalogue {
		if p.ID == id {
			return p, true
		}
	}
	return Platform{}, false
}

// requiredCredentials lists the secret setup fields of a platform.
func requiredCredentials(id enums.IntegrationPlatform) []string {
	p, ok := findPlatform(id)
	if !ok {
		return nil
	}
	var keys []string
	for _, f := range p.SetupFields {
		if f.Required && f.Name != "store_url" {
			keys = append(keys, f.Name)
		}
	}
	return keys
}
