package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"optika/internal/models"
	"optika/internal/store"
)

type OrderStore struct {
	products *ProductStore

	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Order
}

var _ store.Orders = (*OrderStore)(nil)

// Place checks every line before touching stock, so a rejected order leaves
// the catalog unchanged.
func (s *OrderStore) Place(_ context.Context, order *models.Order) error {
	s.products.mu.Lock()
	defer s.products.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[primitive.ObjectID]int, len(order.Items))
	for _, item := range order.Items {
		p, ok := s.products.lookup(item.ProductID)
		if !ok {
			return store.UnknownProductError{ProductID: item.ProductID}
		}
		wanted[p.ID] += item.Quantity
		if p.StockQuantity < wanted[p.ID] {
			return store.OutOfStockError{
				ProductID: item.ProductID,
				Available: p.StockQuantity - (wanted[p.ID] - item.Quantity),
				Requested: item.Quantity,
			}
		}
	}

	now := time.Now()
	for id, qty := range wanted {
		p := s.products.byID[id]
		p.StockQuantity -= qty
		if p.StockQuantity <= 0 {
			p.InStock = false
		}
		p.UpdatedAt = &now
		s.products.byID[id] = p
	}

	order.ID = primitive.NewObjectID()
	s.byID[order.ID] = *order
	return nil
}

func (s *OrderStore) Get(_ context.Context, id string) (models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Order{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.byID[oid]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return order, nil
}

func (s *OrderStore) sorted(keep func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0, len(s.byID))
	for _, o := range s.byID {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func (s *OrderStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return s.sorted(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *OrderStore) Page(_ context.Context, status models.OrderStatus, page, limit int64) ([]models.Order, int64, error) {
	matched := s.sorted(func(o models.Order) bool { return status == "" || o.Status == status })
	return window(matched, page, limit), int64(len(matched)), nil
}

func (s *OrderStore) Update(_ context.Context, id string, set bson.M) (models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[oid]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}

	var updated models.Order
	if err := applySet(current, set, &updated); err != nil {
		return models.Order{}, err
	}
	s.byID[oid] = updated
	return updated, nil
}

func (s *OrderStore) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[oid]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, oid)
	return nil
}
