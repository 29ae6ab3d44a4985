package enums

import "fmt"

// ProductStatus tracks where a listing sits in the test/scale/kill cycle.
type ProductStatus string

const (
	ProductStatusTesting ProductStatus = "testing"
	ProductStatusLive    ProductStatus = "live"
	ProductStatusPaused  ProductStatus = "paused"
	ProductStatusKilled  ProductStatus = "killed"
)

var validProductStatuses = []ProductStatus{
	ProductStatusTesting,
	ProductStatusLive,
	ProductStatusPaused,
	ProductStatusKilled,
}

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductStatus.
func (p ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ProductStatuses lists the accepted values, in declaration order.
func ProductStatuses() []string {
	out := make([]string, 0, len(validProductStatuses))
	for _, v := range validProductStatuses {
		out = append(out, string(v))
	}
	return out
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}
