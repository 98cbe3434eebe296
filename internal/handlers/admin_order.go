package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"optika/internal/models"
	"optika/internal/store"
)

type updateOrderRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
}

func GetAllOrders(backend store.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"), 10)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		var status models.OrderStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" && raw != "all" {
			status = models.OrderStatus(raw)
			if !status.Valid() {
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		orders, total, err := backend.OrderStore().Page(c.Request.Context(), status, page, limit)
		if err != nil {
			log.Printf("[%s] page failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders":     orders,
			"pagination": paginationBody(total, page, limit),
		})
	}
}

func GetOrderByID(backend store.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders/:id"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		order, err := backend.OrderStore().Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, route, err, "order not found")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderStatus overwrites status and payment status. Any valid status
// may follow any other.
func UpdateOrderStatus(backend store.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/orders/:id"
		defer handlePanic(c, route)

		var req updateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}
		if req.Status == nil && req.PaymentStatus == nil {
			respondWithError(c, http.StatusBadRequest, route, "status is required")
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.Status != nil {
			status := models.OrderStatus(strings.TrimSpace(*req.Status))
			if !status.Valid() {
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
			set["status"] = status
		}
		if req.PaymentStatus != nil {
			paymentStatus := models.PaymentStatus(strings.TrimSpace(*req.PaymentStatus))
			if !paymentStatus.Valid() {
				respondWithError(c, http.StatusBadRequest, route, "invalid payment status")
				return
			}
			set["payment.status"] = paymentStatus
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		order, err := backend.OrderStore().Update(c.Request.Context(), c.Param("id"), set)
		if err != nil {
			respondStoreError(c, route, err, "order not found")
			return
		}

		log.Printf("[%s] order %s now %s", route, order.ID.Hex(), order.Status)
		c.JSON(http.StatusOK, order)
	}
}

func DeleteOrder(backend store.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/orders/:id"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		if err := backend.OrderStore().Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondStoreError(c, route, err, "order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
