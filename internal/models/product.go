package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryEyeglasses    Category = "eyeglasses"
	CategorySunglasses    Category = "sunglasses"
	CategoryContactLenses Category = "contact-lenses"
	CategoryAccessories   Category = "accessories"
)

// Categories lists every category the catalog accepts, in display order.
var Categories = []Category{
	CategoryEyeglasses,
	CategorySunglasses,
	CategoryContactLenses,
	CategoryAccessories,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Color struct {
	Name string `bson:"name" json:"name"`
	Code string `bson:"code" json:"code"`
}

type Size struct {
	Size        string `bson:"size" json:"size"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Dimensions  string `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
}

// Product is a catalog entry. Slug is the human readable id ("frame-1") that
// carts and seed data use; ID is the document key.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Slug          string             `bson:"id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Brand         string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Category      Category           `bson:"category" json:"category"`
	Price         float64            `bson:"price" json:"price"`
	SalePrice     *float64           `bson:"salePrice" json:"salePrice"`
	OnSale        bool               `bson:"-" json:"onSale"`
	StockQuantity int                `bson:"stockQuantity" json:"stockQuantity"`
	InStock       bool               `bson:"inStock" json:"inStock"`
	Gender        string             `bson:"gender,omitempty" json:"gender,omitempty"`
	FrameType     string             `bson:"frameType,omitempty" json:"frameType,omitempty"`
	Features      StringList         `bson:"features" json:"features"`
	Colors        []Color            `bson:"colors" json:"colors"`
	Sizes         []Size             `bson:"sizes" json:"sizes"`
	Images        StringList         `bson:"images" json:"images"`
	Rating        float64            `bson:"rating" json:"rating"`
	ReviewCount   int                `bson:"reviewCount" json:"reviewCount"`
	Featured      bool               `bson:"featured" json:"featured"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// IsOnSale reports whether salePrice undercuts price.
func IsOnSale(price float64, salePrice *float64) bool {
	return salePrice != nil && *salePrice > 0 && *salePrice < price
}

// EffectivePrice is the price a shopper pays today.
func (p Product) EffectivePrice() float64 {
	if IsOnSale(p.Price, p.SalePrice) {
		return *p.SalePrice
	}
	return p.Price
}

// Derive fills response-only fields after a product is read.
func (p *Product) Derive() {
	p.OnSale = IsOnSale(p.Price, p.SalePrice)
}
