package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"optika/internal/models"
	"optika/internal/store"
)

type OrderRepository struct {
	client   *mongo.Client
	orders   *mongo.Collection
	products *mongo.Collection
}

var _ store.Orders = (*OrderRepository)(nil)

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		client:   db.Client(),
		orders:   db.Collection(ordersCollection),
		products: db.Collection(productsCollection),
	}
}

// Place inserts the order and decrements stock for every line inside one
// transaction. A line that names no product or asks for more than is left
// aborts the whole write.
func (r *OrderRepository) Place(ctx context.Context, order *models.Order) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	id := primitive.NewObjectID()

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		for _, item := range order.Items {
			if err := r.takeStock(sessCtx, item); err != nil {
				return nil, err
			}
		}

		doc := *order
		doc.ID = id
		if _, err := r.orders.InsertOne(sessCtx, doc); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	order.ID = id
	return nil
}

func (r *OrderRepository) takeStock(ctx mongo.SessionContext, item models.OrderItem) error {
	filter := productKey(item.ProductID)
	filter["stockQuantity"] = bson.M{"$gte": item.Quantity}

	res, err := r.products.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"stockQuantity": -item.Quantity},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		var raw bson.M
		err := r.products.FindOne(ctx, productKey(item.ProductID)).Decode(&raw)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return store.UnknownProductError{ProductID: item.ProductID}
		}
		if err != nil {
			return err
		}
		return store.OutOfStockError{
			ProductID: item.ProductID,
			Available: toInt(raw["stockQuantity"]),
			Requested: item.Quantity,
		}
	}

	soldOut := productKey(item.ProductID)
	soldOut["stockQuantity"] = bson.M{"$lte": 0}
	_, err = r.products.UpdateOne(ctx, soldOut, bson.M{"$set": bson.M{"inStock": false}})
	return err
}

func (r *OrderRepository) Get(ctx context.Context, id string) (models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Order{}, store.ErrInvalidID
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var order models.Order
	err = r.orders.FindOne(ctx, bson.M{"_id": oid}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, store.ErrNotFound
	}
	return order, err
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.orders.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) Page(ctx context.Context, status models.OrderStatus, page, limit int64) ([]models.Order, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.orders.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skipFor(page, limit)).
		SetLimit(limit)

	cursor, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepository) Update(ctx context.Context, id string, set bson.M) (models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Order{}, store.ErrInvalidID
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var order models.Order
	err = r.orders.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, store.ErrNotFound
	}
	return order, err
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrInvalidID
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.orders.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
