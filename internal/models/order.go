package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderProcessing,
	OrderShipped,
	OrderDelivered,
	OrderCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

const PaymentCashOnDelivery = "cash_on_delivery"

// OrderItem captures a product as it was priced when the order was placed.
// ProductID holds whatever the cart sent: a catalog slug or a document id.
type OrderItem struct {
	ProductID string  `bson:"id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Color     string  `bson:"color,omitempty" json:"color,omitempty"`
	Size      string  `bson:"size,omitempty" json:"size,omitempty"`
}

type Shipping struct {
	FirstName  string `bson:"firstName" json:"firstName"`
	LastName   string `bson:"lastName" json:"lastName"`
	Email      string `bson:"email" json:"email"`
	Phone      string `bson:"phone" json:"phone"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country    string `bson:"country" json:"country"`
	Notes      string `bson:"notes,omitempty" json:"notes,omitempty"`
}

func (s Shipping) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

type Payment struct {
	Type   string        `bson:"type" json:"type"`
	Status PaymentStatus `bson:"status" json:"status"`
}

// Order defines the persisted order document.
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    string             `bson:"userId,omitempty" json:"userId,omitempty"`
	Items     []OrderItem        `bson:"items" json:"items"`
	Shipping  Shipping           `bson:"shipping" json:"shipping"`
	Payment   Payment            `bson:"payment" json:"payment"`
	Status    OrderStatus        `bson:"status" json:"status"`
	Total     float64            `bson:"total" json:"total"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
