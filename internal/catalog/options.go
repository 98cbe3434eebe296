package catalog

import (
	"sort"
	"strings"

	"optika/internal/models"
)

// Options feeds the storefront filter dropdowns.
type Options struct {
	Brands     []string          `json:"brands"`
	FrameTypes []string          `json:"frameTypes"`
	Categories []models.Category `json:"categories"`
}

// NewOptions cleans distinct values: blanks dropped, duplicates removed,
// sorted.
func NewOptions(brands, frameTypes []string) Options {
	return Options{
		Brands:     distinct(brands),
		FrameTypes: distinct(frameTypes),
		Categories: models.Categories,
	}
}

func distinct(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))

	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
