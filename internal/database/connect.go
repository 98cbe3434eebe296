package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"optika/internal/store"
)

const (
	productsCollection = "products"
	ordersCollection   = "orders"
	usersCollection    = "users"

	queryTimeout = 5 * time.Second
)

// Connect dials the cluster once; the returned client pools connections and
// is safe for concurrent use.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Store bundles the repositories over a single database handle.
type Store struct {
	db       *mongo.Database
	products *ProductRepository
	orders   *OrderRepository
	users    *UserRepository
}

var _ store.Backend = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{
		db:       db,
		products: NewProductRepository(db),
		orders:   NewOrderRepository(db),
		users:    NewUserRepository(db),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return s.db.Client().Ping(checkCtx, readpref.Primary())
}

func (s *Store) ProductStore() store.Products { return s.products }
func (s *Store) OrderStore() store.Orders     { return s.orders }
func (s *Store) UserStore() store.Users       { return s.users }

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func skipFor(page, limit int64) int64 {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
