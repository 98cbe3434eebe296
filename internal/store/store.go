// Package store declares the persistence contracts shared by the mongo and
// in-memory backends.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"optika/internal/catalog"
	"optika/internal/models"
)

var (
	// ErrNotFound is returned when no document matches the given id.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned when an id is not a valid document key.
	ErrInvalidID = errors.New("invalid id")
	// ErrDuplicateSlug is returned when a catalog slug is already taken.
	ErrDuplicateSlug = errors.New("product id already in use")
)

// OutOfStockError reports a line item whose product has less stock than
// requested.
type OutOfStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e OutOfStockError) Error() string {
	return fmt.Sprintf("product %s out of stock: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// UnknownProductError reports a line item that references no product.
type UnknownProductError struct {
	ProductID string
}

func (e UnknownProductError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

type Products interface {
	List(ctx context.Context, q catalog.Query) ([]models.Product, error)
	Page(ctx context.Context, search string, page, limit int64) ([]models.Product, int64, error)
	Get(ctx context.Context, id string) (models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	// Update applies set and removes the unset fields.
	Update(ctx context.Context, id string, set bson.M, unset ...string) (models.Product, error)
	Delete(ctx context.Context, id string) error
	Options(ctx context.Context) (catalog.Options, error)
}

type Orders interface {
	// Place stores the order and takes its quantities out of stock as one
	// unit: either both happen or neither does.
	Place(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	Page(ctx context.Context, status models.OrderStatus, page, limit int64) ([]models.Order, int64, error)
	Update(ctx context.Context, id string, set bson.M) (models.Order, error)
	Delete(ctx context.Context, id string) error
}

type Users interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// Backend is a complete storage implementation.
type Backend interface {
	Ping(ctx context.Context) error
	ProductStore() Products
	OrderStore() Orders
	UserStore() Users
}
