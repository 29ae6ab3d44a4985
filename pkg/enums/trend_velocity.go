package enums

import "fmt"

// TrendVelocity summarizes the direction of a trend.
type TrendVelocity string

const (
	TrendVelocityRising    TrendVelocity = "rising"
	TrendVelocityStable    TrendVelocity = "stable"
	TrendVelocityDeclining TrendVelocity = "declining"
)

var validTrendVelocities = []TrendVelocity{
	TrendVelocityRising,
	TrendVelocityStable,
	TrendVelocityDeclining,
}

// String implements fmt.Stringer.
func (t TrendVelocity) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TrendVelocity.
func (t TrendVelocity) IsValid() bool {
	for _, candidate := range validTrendVelocities {
		if candidate == t {
			return true
		}
	}
	return false
}

// TrendVelocities lists the accepted values, in declaration order.
func TrendVelocities() []string {
	out := make([]string, 0, len(validTrendVelocities))
	for _, v := range validTrendVelocities {
		out = append(out, string(v))
	}
	return out
}

// ParseTrendVelocity converts raw input into a TrendVelocity.
func ParseTrendVelocity(value string) (TrendVelocity, error) {
	for _, candidate := range validTrendVelocities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trend velocity %q", value)
}
