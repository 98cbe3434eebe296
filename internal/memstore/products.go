package memstore

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"optika/internal/catalog"
	"optika/internal/models"
	"optika/internal/store"
)

type ProductStore struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Product
}

var _ store.Products = (*ProductStore)(nil)

// lookup resolves a document id or slug. Callers hold mu.
func (s *ProductStore) lookup(id string) (models.Product, bool) {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		if p, ok := s.byID[oid]; ok {
			return p, true
		}
	}
	for _, p := range s.byID {
		if p.Slug != "" && p.Slug == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *ProductStore) snapshot() []models.Product {
	out := make([]models.Product, 0, len(s.byID))
	for _, p := range s.byID {
		p.Derive()
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func (s *ProductStore) List(_ context.Context, q catalog.Query) ([]models.Product, error) {
	s.mu.RLock()
	all := s.snapshot()
	s.mu.RUnlock()

	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	catalog.SortProducts(out, q.Sort)
	return out, nil
}

func (s *ProductStore) Page(_ context.Context, search string, page, limit int64) ([]models.Product, int64, error) {
	s.mu.RLock()
	all := s.snapshot()
	s.mu.RUnlock()

	q := catalog.Query{Search: search, MinPrice: math.Inf(-1), MaxPrice: math.Inf(1)}
	matched := make([]models.Product, 0, len(all))
	for _, p := range all {
		if q.Matches(p) {
			matched = append(matched, p)
		}
	}
	catalog.SortProducts(matched, catalog.SortNewest)

	return window(matched, page, limit), int64(len(matched)), nil
}

func (s *ProductStore) Get(_ context.Context, id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.lookup(id)
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	p.Derive()
	return p, nil
}

func (s *ProductStore) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTaken(p.Slug, p.ID) {
		return store.ErrDuplicateSlug
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.Derive()
	s.byID[p.ID] = *p
	return nil
}

func (s *ProductStore) Update(_ context.Context, id string, set bson.M, unset ...string) (models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[oid]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}

	var updated models.Product
	if err := applySet(current, set, &updated, unset...); err != nil {
		return models.Product{}, err
	}
	if s.slugTaken(updated.Slug, oid) {
		return models.Product{}, store.ErrDuplicateSlug
	}
	s.byID[oid] = updated

	updated.Derive()
	return updated, nil
}

func (s *ProductStore) Delete(_ context.Context, id string) error {
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

func (s *ProductStore) Options(context.Context) (catalog.Options, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	brands := make([]string, 0, len(s.byID))
	frameTypes := make([]string, 0, len(s.byID))
	for _, p := range s.byID {
		brands = append(brands, p.Brand)
		frameTypes = append(frameTypes, p.FrameType)
	}
	return catalog.NewOptions(brands, frameTypes), nil
}

func window[T any](items []T, page, limit int64) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= int64(len(items)) {
		return []T{}
	}
	end := start + limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}

// slugTaken reports whether another product already uses a non-empty slug.
// Callers hold the lock.
func (s *ProductStore) slugTaken(slug string, self primitive.ObjectID) bool {
	if slug == "" {
		return false
	}
	for id, p := range s.byID {
		if id != self && p.Slug == slug {
			return true
		}
	}
	return false
}
