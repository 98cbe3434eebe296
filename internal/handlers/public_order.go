package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"optika/internal/mail"
	"optika/internal/middleware"
	"optika/internal/models"
	"optika/internal/store"
)

const confirmationTimeout = 30 * time.Second

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ID       string  `json:"id" binding:"required"`
	Name     string  `json:"name"`
	Price    float64 `json:"price" binding:"gte=0"`
	Quantity int     `json:"quantity" binding:"required,gt=0"`
	Color    string  `json:"color"`
	Size     string  `json:"size"`
}

type createOrderShippingRequest struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Notes      string `json:"notes"`
}

type createOrderPaymentRequest struct {
	Type string `json:"type"`
}

type createOrderRequest struct {
	Items     []createOrderItemRequest    `json:"items" binding:"required,min=1,dive"`
	Shipping  *createOrderShippingRequest `json:"shipping" binding:"required"`
	Payment   *createOrderPaymentRequest  `json:"payment" binding:"required"`
	Total     float64                     `json:"total" binding:"required,gt=0"`
	SendEmail bool                        `json:"sendEmail"`
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(backend store.Backend, notifier mail.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		order := buildOrderFromRequest(req, time.Now())
		if claims := middleware.ClaimsFrom(c); claims != nil {
			order.UserID = claims.ID
		}

		err := backend.OrderStore().Place(c.Request.Context(), &order)
		if err != nil {
			var stockErr store.OutOfStockError
			if errors.As(err, &stockErr) {
				log.Printf("[%s] out of stock: %v", route, stockErr)
				c.JSON(http.StatusConflict, gin.H{
					"error":     "insufficient stock",
					"productId": stockErr.ProductID,
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr store.UnknownProductError
			if errors.As(err, &notFoundErr) {
				log.Printf("[%s] unknown product: %s", route, notFoundErr.ProductID)
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product not found",
					"productId": notFoundErr.ProductID,
				})
				return
			}
			log.Printf("[%s] place failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.UserID != "" {
			log.Println("[ORDER] [INFO] order created for user:", order.UserID)
		} else {
			log.Println("[ORDER] [INFO] guest order created")
		}

		if req.SendEmail && order.Shipping.Email != "" && notifier != nil {
			go sendConfirmation(notifier, order)
		}

		c.JSON(http.StatusCreated, gin.H{
			"orderId": order.ID.Hex(),
			"message": "order created",
		})
	}
}

// sendConfirmation runs detached from the request; a failure never reaches
// the shopper.
func sendConfirmation(notifier mail.Notifier, order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), confirmationTimeout)
	defer cancel()

	if err := notifier.OrderConfirmation(ctx, order); err != nil {
		log.Printf("[MAIL] [ERROR] confirmation for order %s failed: %v", order.ID.Hex(), err)
	}
}

/* =========================
   GET MY ORDERS
========================= */

func GetMyOrders(backend store.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		claims := middleware.ClaimsFrom(c)
		if claims == nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		orders, err := backend.OrderStore().ListByUser(c.Request.Context(), claims.ID)
		if err != nil {
			log.Printf("[%s] list failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "Orders could not be fetched")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

/* =========================
   BUILD ORDER
========================= */

func buildOrderFromRequest(req createOrderRequest, now time.Time) models.Order {
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: strings.TrimSpace(item.ID),
			Name:      strings.TrimSpace(item.Name),
			Price:     item.Price,
			Quantity:  item.Quantity,
			Color:     strings.TrimSpace(item.Color),
			Size:      strings.TrimSpace(item.Size),
		})
	}

	paymentType := strings.TrimSpace(req.Payment.Type)
	if paymentType == "" {
		paymentType = models.PaymentCashOnDelivery
	}

	s := req.Shipping
	return models.Order{
		Items: items,
		Shipping: models.Shipping{
			FirstName:  strings.TrimSpace(s.FirstName),
			LastName:   strings.TrimSpace(s.LastName),
			Email:      strings.TrimSpace(s.Email),
			Phone:      strings.TrimSpace(s.Phone),
			Address:    strings.TrimSpace(s.Address),
			City:       strings.TrimSpace(s.City),
			PostalCode: strings.TrimSpace(s.PostalCode),
			Country:    strings.TrimSpace(s.Country),
			Notes:      strings.TrimSpace(s.Notes),
		},
		Payment: models.Payment{
			Type:   paymentType,
			Status: models.PaymentPending,
		},
		Status:    models.OrderPending,
		Total:     req.Total,
		CreatedAt: now,
	}
}
