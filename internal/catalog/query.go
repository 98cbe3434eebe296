// Package catalog turns storefront filter parameters into store queries.
package catalog

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"optika/internal/models"
)

type SortKey string

const (
	SortFeatured     SortKey = "featured"
	SortPriceLowHigh SortKey = "price-low-high"
	SortPriceHighLow SortKey = "price-high-low"
	SortRating       SortKey = "rating"
	SortNewest       SortKey = "newest"
)

const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 10000

	allBrandsSentinel = "All Brands"
	allTypesSentinel  = "All Types"
	allSentinel       = "All"
)

// Query is a parsed catalog filter. Zero-value string fields do not narrow
// the result.
type Query struct {
	Category  string
	Search    string
	Brand     string
	FrameType string
	Gender    string
	MinPrice  float64
	MaxPrice  float64
	InStock   bool
	Sort      SortKey
}

func ParseQuery(values url.Values) Query {
	return Query{
		Category:  dropSentinel(values.Get("category"), allSentinel),
		Search:    strings.TrimSpace(values.Get("search")),
		Brand:     dropSentinel(values.Get("brand"), allBrandsSentinel),
		FrameType: dropSentinel(values.Get("frameType"), allTypesSentinel),
		Gender:    dropSentinel(values.Get("gender"), allSentinel),
		MinPrice:  parsePrice(values.Get("minPrice"), DefaultMinPrice),
		MaxPrice:  parsePrice(values.Get("maxPrice"), DefaultMaxPrice),
		InStock:   strings.EqualFold(strings.TrimSpace(values.Get("inStock")), "true"),
		Sort:      parseSort(values.Get("sort")),
	}
}

func dropSentinel(value, sentinel string) string {
	value = strings.TrimSpace(value)
	if value == sentinel {
		return ""
	}
	return value
}

func parsePrice(value string, fallback float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseSort(value string) SortKey {
	switch key := SortKey(strings.TrimSpace(value)); key {
	case SortPriceLowHigh, SortPriceHighLow, SortRating, SortNewest:
		return key
	default:
		return SortFeatured
	}
}

// Filter builds the mongo predicate. Every present field is AND-ed; the
// search term matches name, brand or description.
func (q Query) Filter() bson.M {
	filter := bson.M{
		"price": bson.M{"$gte": q.MinPrice, "$lte": q.MaxPrice},
	}

	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Brand != "" {
		filter["brand"] = q.Brand
	}
	if q.FrameType != "" {
		filter["frameType"] = q.FrameType
	}
	if q.Gender != "" {
		filter["gender"] = q.Gender
	}
	if q.InStock {
		filter["inStock"] = true
	}

	if q.Search != "" {
		pattern := regexp.QuoteMeta(q.Search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"brand": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return filter
}

func (q Query) SortSpec() bson.D {
	switch q.Sort {
	case SortPriceLowHigh:
		return bson.D{{Key: "price", Value: 1}}
	case SortPriceHighLow:
		return bson.D{{Key: "price", Value: -1}}
	case SortRating:
		return bson.D{{Key: "rating", Value: -1}}
	case SortNewest:
		return bson.D{{Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "featured", Value: -1}, {Key: "_id", Value: 1}}
	}
}

func (q Query) FindOptions() *options.FindOptions {
	return options.Find().SetSort(q.SortSpec())
}

// Matches evaluates Filter against a decoded product.
func (q Query) Matches(p models.Product) bool {
	if p.Price < q.MinPrice || p.Price > q.MaxPrice {
		return false
	}
	if q.Category != "" && string(p.Category) != q.Category {
		return false
	}
	if q.Brand != "" && p.Brand != q.Brand {
		return false
	}
	if q.FrameType != "" && p.FrameType != q.FrameType {
		return false
	}
	if q.Gender != "" && p.Gender != q.Gender {
		return false
	}
	if q.InStock && !p.InStock {
		return false
	}
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Brand), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			return false
		}
	}
	return true
}
