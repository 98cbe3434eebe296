package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"optika/internal/models"
	"optika/internal/store"
)

// ErrDuplicateUsername mirrors the unique username index of the mongo store.
var ErrDuplicateUsername = errors.New("username already exists")

type UserStore struct {
	mu     sync.RWMutex
	byName map[string]models.User
}

var _ store.Users = (*UserStore)(nil)

func (s *UserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byName[username]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[u.Username]; ok {
		return ErrDuplicateUsername
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.byName[u.Username] = *u
	return nil
}
