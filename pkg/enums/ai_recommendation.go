package enums

import "fmt"

// AIRecommendation is the import verdict attached to a trend product.
type AIRecommendation string

const (
	AIRecommendationImport AIRecommendation = "import"
	AIRecommendationWatch  AIRecommendation = "watch"
	AIRecommendationSkip   AIRecommendation = "skip"
)

var validAIRecommendations = []AIRecommendation{
	AIRecommendationImport,
	AIRecommendationWatch,
	AIRecommendationSkip,
}

// String implements fmt.Stringer.
func (a AIRecommendation) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AIRecommendation.
func (a AIRecommendation) IsValid() bool {
	for _, candidate := range validAIRecommendations {
		if candidate == a {
			return true
		}
	}
	return false
}

// AIRecommendations lists the accepted values, in declaration order.
func AIRecommendations() []string {
	out := make([]string, 0, len(validAIRecommendations))
	for _, v := range validAIRecommendations {
		out = append(out, string(v))
	}
	return out
}

// ParseAIRecommendation converts raw input into a AIRecommendation.
func ParseAIRecommendation(value string) (AIRecommendation, error) {
	for _, candidate := range validAIRecommendations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ai recommendation %q", value)
}
