package products

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// MaxGeneratedSlugLen bounds slugs derived from free-form titles.
const MaxGeneratedSlugLen = 50

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// SlugExistsFunc reports whether a slug is already taken.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// Slugify lowercases the title, collapses every non-alphanumeric run into a
// single hyphen and trims the result to maxLen.
func Slugify(title string, maxLen int) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	slug = strings.Trim(slug, "-")
	if maxLen > 0 && len(slug) > maxLen {
		slug = strings.TrimRight(slug[:maxLen], "-")
	}
	return slug
}

// HashtagSlug turns a hashtag into a slug: "#" stripped, spaces become hyphens,
// capped at MaxGeneratedSlugLen. It is empty when the hashtag has no letters or digits.
func HashtagSlug(hashtag string) string {
	return Slugify(strings.ReplaceAll(hashtag, "#", ""), MaxGeneratedSlugLen)
}

// UniqueSlug appends -1, -2, ... to base until exists reports a free slug.
func UniqueSlug(ctx context.Context, base string, exists SlugExistsFunc) (string, error) {
	switch {
	case base == "":
		base = "product"
	case len(base) < 3:
		base = "product-" + base
	}
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
