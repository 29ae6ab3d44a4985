package enums

import "fmt"

// IntegrationPlatform identifies an external storefront.
type IntegrationPlatform string

const (
	IntegrationPlatformShopify     IntegrationPlatform = "shopify"
	IntegrationPlatformWoocommerce IntegrationPlatform = "woocommerce"
	IntegrationPlatformTiktokShop  IntegrationPlatform = "tiktok_shop"
	IntegrationPlatformAmazon      IntegrationPlatform = "amazon"
	IntegrationPlatformEbay        IntegrationPlatform = "ebay"
)

var validIntegrationPlatforms = []IntegrationPlatform{
	IntegrationPlatformShopify,
	IntegrationPlatformWoocommerce,
	IntegrationPlatformTiktokShop,
	IntegrationPlatformAmazon,
	IntegrationPlatformEbay,
}

// String implements fmt.Stringer.
func (i IntegrationPlatform) String() string {
	return string(i)
}

// IsValid reports whether the value is a known IntegrationPlatform.
func (i IntegrationPlatform) IsValid() bool {
	for _, candidate := range validIntegrationPlatforms {
		if candidate == i {
			return true
		}
	}
	return false
}

// IntegrationPlatforms lists the accepted values, in declaration order.
func IntegrationPlatforms() []string {
	out := make([]string, 0, len(validIntegrationPlatforms))
	for _, v := range validIntegrationPlatforms {
		out = append(out, string(v))
	}
	return out
}

// ParseIntegrationPlatform converts raw input into a IntegrationPlatform.
func ParseIntegrationPlatform(value string) (IntegrationPlatform, error) {
	for _, candidate := range validIntegrationPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid integration platform %q", value)
}
