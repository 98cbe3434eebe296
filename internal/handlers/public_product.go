package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"optika/internal/cache"
	"optika/internal/catalog"
	"optika/internal/store"
)

const productOptionsTTL = 10 * time.Minute

/*
GET /api/products
- every filter is optional; "All*" sentinels are ignored
- no pagination, the full filtered list is returned
*/
func GetProducts(backend store.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		q := catalog.ParseQuery(c.Request.URL.Query())
		log.Printf(
			"[%s] hit category=%s search=%s brand=%s sort=%s",
			route,
			q.Category,
			q.Search,
			q.Brand,
			q.Sort,
		)

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		products, err := backend.ProductStore().List(c.Request.Context(), q)
		if err != nil {
			log.Printf("[%s] list failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, products)
	}
}

// GetProduct resolves a document id or a catalog slug.
func GetProduct(backend store.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		product, err := backend.ProductStore().Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func GetProductOptions(backend store.Backend, cacheClient *cache.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/product-options"
		defer handlePanic(c, route)

		var opts catalog.Options
		if cacheClient.GetJSON(c.Request.Context(), cache.ProductOptionsKey, &opts) {
			c.JSON(http.StatusOK, opts)
			return
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		opts, err := backend.ProductStore().Options(c.Request.Context())
		if err != nil {
			log.Printf("[%s] options failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cacheClient.SetJSON(c.Request.Context(), cache.ProductOptionsKey, opts, productOptionsTTL)
		c.JSON(http.StatusOK, opts)
	}
}
