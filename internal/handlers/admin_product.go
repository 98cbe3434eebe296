package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"optika/internal/cache"
	"optika/internal/models"
	"optika/internal/store"
	"optika/internal/upload"
)

/* =======================
   REQUEST MODEL
======================= */

// ProductRequest is shared by create and update. Nil fields are left out of
// an update.
type ProductRequest struct {
	Slug          *string         `json:"id"`
	Name          *string         `json:"name"`
	Brand         *string         `json:"brand"`
	Description   *string         `json:"description"`
	Category      *string         `json:"category"`
	Price         *float64        `json:"price"`
	SalePrice     *float64        `json:"salePrice"`
	StockQuantity *int            `json:"stockQuantity"`
	InStock       *bool           `json:"inStock"`
	Gender        *string         `json:"gender"`
	FrameType     *string         `json:"frameType"`
	Features      *[]string       `json:"features"`
	Colors        *[]models.Color `json:"colors"`
	Sizes         *[]models.Size  `json:"sizes"`
	Images        *[]string       `json:"images"`
	Rating        *float64        `json:"rating"`
	ReviewCount   *int            `json:"reviewCount"`
	Featured      *bool           `json:"featured"`
}

/* =======================
   HELPERS
======================= */

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func categoryList() string {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// validate checks the fields every create and update must carry.
func (r ProductRequest) validate() error {
	if trimmed(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if r.Price == nil || *r.Price <= 0 {
		return fmt.Errorf("price must be greater than 0")
	}
	if !models.Category(trimmed(r.Category)).Valid() {
		return fmt.Errorf("category must be one of %s", categoryList())
	}
	if r.StockQuantity != nil && *r.StockQuantity < 0 {
		return fmt.Errorf("stockQuantity must be zero or greater")
	}
	if r.Rating != nil && (*r.Rating < 0 || *r.Rating > 5) {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	return nil
}

func (r ProductRequest) toProduct(now time.Time) (models.Product, error) {
	salePrice, err := resolveSalePrice(*r.Price, r.SalePrice)
	if err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		Slug:        trimmed(r.Slug),
		Name:        trimmed(r.Name),
		Brand:       trimmed(r.Brand),
		Description: trimmed(r.Description),
		Category:    models.Category(trimmed(r.Category)),
		Price:       *r.Price,
		SalePrice:   salePrice,
		Gender:      trimmed(r.Gender),
		FrameType:   trimmed(r.FrameType),
		CreatedAt:   now,
	}
	if r.StockQuantity != nil {
		p.StockQuantity = *r.StockQuantity
	}
	p.InStock = p.StockQuantity > 0
	if r.InStock != nil {
		p.InStock = *r.InStock
	}
	if r.Features != nil {
		p.Features = models.StringList(*r.Features)
	}
	if r.Colors != nil {
		p.Colors = *r.Colors
	}
	if r.Sizes != nil {
		p.Sizes = *r.Sizes
	}
	if r.Images != nil {
		p.Images = models.StringList(*r.Images)
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	if r.ReviewCount != nil {
		p.ReviewCount = *r.ReviewCount
	}
	if r.Featured != nil {
		p.Featured = *r.Featured
	}
	return p, nil
}

// updateSet builds the $set document for the provided fields and lists the
// fields to remove. An empty slug is removed rather than stored.
func (r ProductRequest) updateSet(now time.Time) (bson.M, []string, error) {
	salePrice, err := resolveSalePrice(*r.Price, r.SalePrice)
	if err != nil {
		return nil, nil, err
	}
	var unset []string

	set := bson.M{
		"name":      trimmed(r.Name),
		"price":     *r.Price,
		"category":  models.Category(trimmed(r.Category)),
		"updatedAt": now,
	}
	if r.SalePrice != nil {
		set["salePrice"] = salePrice
	}
	if r.Slug != nil {
		if slug := trimmed(r.Slug); slug != "" {
			set["id"] = slug
		} else {
			unset = append(unset, "id")
		}
	}
	optionalStrings := map[string]*string{
		"brand":       r.Brand,
		"description": r.Description,
		"gender":      r.Gender,
		"frameType":   r.FrameType,
	}
	for key, value := range optionalStrings {
		if value != nil {
			set[key] = trimmed(value)
		}
	}
	if r.StockQuantity != nil {
		set["stockQuantity"] = *r.StockQuantity
	}
	if r.InStock != nil {
		set["inStock"] = *r.InStock
	}
	if r.Features != nil {
		set["features"] = models.StringList(*r.Features)
	}
	if r.Colors != nil {
		set["colors"] = *r.Colors
	}
	if r.Sizes != nil {
		set["sizes"] = *r.Sizes
	}
	if r.Images != nil {
		set["images"] = models.StringList(*r.Images)
	}
	if r.Rating != nil {
		set["rating"] = *r.Rating
	}
	if r.ReviewCount != nil {
		set["reviewCount"] = *r.ReviewCount
	}
	if r.Featured != nil {
		set["featured"] = *r.Featured
	}
	return set, unset, nil
}

func mapKeys(input bson.M) []string {
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// adminProductID rejects slugs so admin writes always address one document.
func adminProductID(c *gin.Context, route string) (string, bool) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		respondWithError(c, http.StatusBadRequest, route, "invalid id")
		return "", false
	}
	return id, true
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllProducts(backend store.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"), 20)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		products, total, err := backend.ProductStore().Page(c.Request.Context(), c.Query("search"), page, limit)
		if err != nil {
			log.Printf("[%s] page failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products":   products,
			"pagination": paginationBody(total, page, limit),
		})
	}
}

/* =======================
   GET (ADMIN) – ONE
======================= */

func GetProductByID(backend store.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products/:id"
		defer handlePanic(c, route)

		id, ok := adminProductID(c, route)
		if !ok {
			return
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		product, err := backend.ProductStore().Get(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(backend store.Backend, cacheClient *cache.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}
		if err := req.validate(); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		product, err := req.toProduct(time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		if err := backend.ProductStore().Create(c.Request.Context(), &product); err != nil {
			if errors.Is(err, store.ErrDuplicateSlug) {
				respondWithError(c, http.StatusConflict, route, err.Error())
				return
			}
			log.Printf("[%s] insert failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		_ = cacheClient.Delete(c.Request.Context(), cache.ProductOptionsKey)

		log.Printf("[%s] created product %s", route, product.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"message":   "Product created",
			"productId": product.ID.Hex(),
			"product":   product,
		})
	}
}

/* =======================
   UPDATE
======================= */

func UpdateProduct(backend store.Backend, cacheClient *cache.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/:id"
		defer handlePanic(c, route)

		id, ok := adminProductID(c, route)
		if !ok {
			return
		}

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}
		if err := req.validate(); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		set, unset, err := req.updateSet(time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		log.Printf("[%s] updating %s fields=%v unset=%v", route, id, mapKeys(set), unset)
		product, err := backend.ProductStore().Update(c.Request.Context(), id, set, unset...)
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}
		_ = cacheClient.Delete(c.Request.Context(), cache.ProductOptionsKey)

		c.JSON(http.StatusOK, product)
	}
}

/* =======================
   DELETE
======================= */

func DeleteProduct(backend store.Backend, cacheClient *cache.Client, images upload.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/products/:id"
		defer handlePanic(c, route)

		id, ok := adminProductID(c, route)
		if !ok {
			return
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		existing, err := backend.ProductStore().Get(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		if err := backend.ProductStore().Delete(c.Request.Context(), id); err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}
		_ = cacheClient.Delete(c.Request.Context(), cache.ProductOptionsKey)

		if images != nil {
			for _, image := range existing.Images {
				if err := images.Delete(c.Request.Context(), image); err != nil {
					log.Printf("[%s] keeping image %s: %v", route, image, err)
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
