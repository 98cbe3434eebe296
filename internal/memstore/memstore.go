// Package memstore keeps the catalog, orders and users in process memory.
// It backs STORE_DRIVER=memory and the HTTP tests.
package memstore

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"optika/internal/models"
	"optika/internal/store"
)

type Store struct {
	products *ProductStore
	orders   *OrderStore
	users    *UserStore
}

var _ store.Backend = (*Store)(nil)

func New() *Store {
	products := &ProductStore{byID: make(map[primitive.ObjectID]models.Product)}
	return &Store{
		products: products,
		orders:   &OrderStore{products: products, byID: make(map[primitive.ObjectID]models.Order)},
		users:    &UserStore{byName: make(map[string]models.User)},
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ProductStore() store.Products { return s.products }
func (s *Store) OrderStore() store.Orders     { return s.orders }
func (s *Store) UserStore() store.Users       { return s.users }

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrInvalidID
	}
	return oid, nil
}

// applySet runs a mongo style $set against v by round tripping through bson,
// so field names and dotted paths mean the same as they do in the database.
func applySet(v interface{}, set bson.M, out interface{}, unset ...string) error {
	data, err := bson.Marshal(v)
	if err != nil {
		return err
	}
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	for path, value := range set {
		if err := setPath(doc, strings.Split(path, "."), value); err != nil {
			return err
		}
	}
	for _, path := range unset {
		unsetPath(doc, strings.Split(path, "."))
	}

	data, err = bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, out)
}

func setPath(doc bson.M, keys []string, value interface{}) error {
	if len(keys) == 1 {
		doc[keys[0]] = value
		return nil
	}

	var child bson.M
	switch existing := doc[keys[0]].(type) {
	case nil:
		child = bson.M{}
	case bson.M:
		child = existing
	case bson.D:
		child = existing.Map()
	default:
		return fmt.Errorf("cannot set %s inside %T", keys[1], existing)
	}

	if err := setPath(child, keys[1:], value); err != nil {
		return err
	}
	doc[keys[0]] = child
	return nil
}

func unsetPath(doc bson.M, keys []string) {
	if len(keys) == 1 {
		delete(doc, keys[0])
		return
	}
	switch child := doc[keys[0]].(type) {
	case bson.M:
		unsetPath(child, keys[1:])
	case bson.D:
		m := child.Map()
		unsetPath(m, keys[1:])
		doc[keys[0]] = m
	}
}
