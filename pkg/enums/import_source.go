package enums

import "fmt"

// ImportSource records how a product entered the catalogue.
type ImportSource string

const (
	ImportSourceTiktok      ImportSource = "tiktok"
	ImportSourceAliexpress  ImportSource = "aliexpress"
	ImportSourceManual      ImportSource = "manual"
	ImportSourceShopify     ImportSource = "shopify"
	ImportSourceWoocommerce ImportSource = "woocommerce"
)

var validImportSources = []ImportSource{
	ImportSourceTiktok,
	ImportSourceAliexpress,
	ImportSourceManual,
	ImportSourceShopify,
	ImportSourceWoocommerce,
}

// String implements fmt.Stringer.
func (i ImportSource) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ImportSource.
func (i ImportSource) IsValid() bool {
	for _, candidate := range validImportSources {
		if candidate == i {
			return true
		}
	}
	return false
}

// ImportSources lists the accepted values, in declaration order.
func ImportSources() []string {
	out := make([]string, 0, len(validImportSources))
	for _, v := range validImportSources {
		out = append(out, string(v))
	}
	return out
}

// ParseImportSource converts raw input into a ImportSource.
func ParseImportSource(value string) (ImportSource, error) {
	for _, candidate := range validImportSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid import source %q", value)
}
