// Package seed creates the admin account and the sample catalog.
package seed

import (
	"context"
	"errors"
	"log"
	"time"

	"optika/internal/auth"
	"optika/internal/models"
	"optika/internal/store"
)

const (
	AdminUsername = "admin"
	AdminEmail    = "admin@ioptika.com"
)

// Admin creates the admin user unless one already exists.
func Admin(ctx context.Context, users store.Users, password string) (bool, error) {
	_, err := users.FindByUsername(ctx, AdminUsername)
	if err == nil {
		log.Println("[SEED] [INFO] admin user already exists")
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	err = users.Create(ctx, &models.User{
		Username:     AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Email:        AdminEmail,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return false, err
	}
	log.Println("[SEED] [INFO] admin user created")
	return true, nil
}

// Products inserts every sample product whose slug is not taken yet and
// returns how many were added.
func Products(ctx context.Context, products store.Products) (int, error) {
	inserted := 0
	for _, p := range SampleProducts(time.Now()) {
		_, err := products.Get(ctx, p.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return inserted, err
		}

		product := p
		if err := products.Create(ctx, &product); err != nil {
			return inserted, err
		}
		inserted++
	}
	log.Printf("[SEED] [INFO] %d products inserted", inserted)
	return inserted, nil
}

func SampleProducts(now time.Time) []models.Product {
	sale := 119.0
	return []models.Product{
		{
			Slug:          "frame-1",
			Name:          "Ray-Ban Classic Wayfarers",
			Brand:         "Ray-Ban",
			Price:         199,
			Category:      models.CategorySunglasses,
			FrameType:     "full-rim",
			Gender:        "unisex",
			InStock:       true,
			StockQuantity: 24,
			Rating:        4.8,
			ReviewCount:   124,
			Featured:      true,
			Description:   "The iconic Ray-Ban Wayfarer is simply the most recognizable style in sunglasses.",
			Features: models.StringList{
				"UV Protection: 100% UV400 protection against harmful UVA/UVB rays",
				"Frame Material: High-quality acetate for durability and comfort",
				"Lens Technology: Crystal lenses with superior clarity and scratch resistance",
				"Style: Classic, timeless design suitable for all face shapes",
			},
			Colors: []models.Color{
				{Name: "Black", Code: "#111827"},
				{Name: "Tortoise", Code: "#b45309"},
				{Name: "Blue", Code: "#2563eb"},
			},
			Sizes: []models.Size{
				{Size: "50-22", Description: "Small", Dimensions: "Lens: 50mm, Bridge: 22mm, Temple: 150mm"},
				{Size: "52-22", Description: "Medium", Dimensions: "Lens: 52mm, Bridge: 22mm, Temple: 150mm"},
				{Size: "54-22", Description: "Large", Dimensions: "Lens: 54mm, Bridge: 22mm, Temple: 150mm"},
			},
			Images: models.StringList{
				"/placeholder-product-1.jpg",
				"/placeholder-product-1-alt.jpg",
				"/placeholder-product-1-side.jpg",
				"/placeholder-product-1-worn.jpg",
			},
			CreatedAt: now,
		},
		{
			Slug:          "frame-2",
			Name:          "Oakley Round Reader",
			Brand:         "Oakley",
			Price:         149,
			SalePrice:     &sale,
			Category:      models.CategoryEyeglasses,
			FrameType:     "half-rim",
			Gender:        "women",
			InStock:       true,
			StockQuantity: 10,
			Rating:        4.5,
			ReviewCount:   38,
			Description:   "Lightweight round frames with blue light filtering lenses.",
			Features:      models.StringList{"Blue light filter", "Spring hinges"},
			Colors:        []models.Color{{Name: "Gold", Code: "#d4af37"}},
			Sizes:         []models.Size{{Size: "49-20", Description: "Medium"}},
			Images:        models.StringList{"/placeholder-product-2.jpg"},
			CreatedAt:     now.Add(-24 * time.Hour),
		},
		{
			Slug:          "lens-1",
			Name:          "Daily Comfort Contact Lenses",
			Brand:         "Acuvue",
			Price:         35,
			Category:      models.CategoryContactLenses,
			Gender:        "unisex",
			InStock:       true,
			StockQuantity: 100,
			Rating:        4.2,
			ReviewCount:   57,
			Description:   "A 30 pack of daily disposable lenses.",
			Images:        models.StringList{"/placeholder-product-3.jpg"},
			CreatedAt:     now.Add(-48 * time.Hour),
		},
	}
}
