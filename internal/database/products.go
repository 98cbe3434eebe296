package database

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"optika/internal/catalog"
	"optika/internal/models"
	"optika/internal/store"
)

type ProductRepository struct {
	coll *mongo.Collection
}

var _ store.Products = (*ProductRepository)(nil)

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productsCollection)}
}

// productKey matches a product by document id or by catalog slug.
func productKey(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$or": []bson.M{{"_id": oid}, {"id": id}}}
	}
	return bson.M{"id": id}
}

func (r *ProductRepository) List(ctx context.Context, q catalog.Query) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, q.Filter(), q.FindOptions())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeProducts(ctx, cursor)
}

func (r *ProductRepository) Page(ctx context.Context, search string, page, limit int64) ([]models.Product, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if search = strings.TrimSpace(search); search != "" {
		pattern := regexp.QuoteMeta(search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"brand": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(skipFor(page, limit)).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products, err := decodeProducts(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var raw bson.M
	err := r.coll.FindOne(ctx, productKey(id)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, store.ErrNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return normalizeProductDocument(raw)
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicateSlug
	}
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	p.Derive()
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, set bson.M, unset ...string) (models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Product{}, store.ErrInvalidID
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, field := range unset {
			fields[field] = ""
		}
		update["$unset"] = fields
	}

	var raw bson.M
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return models.Product{}, store.ErrDuplicateSlug
	}
	if err != nil {
		return models.Product{}, err
	}
	return normalizeProductDocument(raw)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrInvalidID
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Options(ctx context.Context) (catalog.Options, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	brands, err := r.distinctStrings(ctx, "brand")
	if err != nil {
		return catalog.Options{}, err
	}
	frameTypes, err := r.distinctStrings(ctx, "frameType")
	if err != nil {
		return catalog.Options{}, err
	}
	return catalog.NewOptions(brands, frameTypes), nil
}

func (r *ProductRepository) distinctStrings(ctx context.Context, field string) ([]string, error) {
	values, err := r.coll.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
