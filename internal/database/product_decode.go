package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"optika/internal/models"
)

// normalizeProductDocument coerces the loosely typed numbers seed scripts
// and the shell leave behind before decoding into models.Product.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	for _, field := range []string{"stockQuantity", "reviewCount"} {
		raw[field] = toInt(raw[field])
	}

	if _, ok := raw["inStock"].(bool); !ok {
		raw["inStock"] = raw["stockQuantity"].(int) > 0
	}

	if val, ok := raw["featured"]; ok {
		switch typed := val.(type) {
		case bool:
		case string:
			raw["featured"] = typed == "true"
		default:
			raw["featured"] = false
		}
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	p.Derive()
	return p, nil
}

func toInt(val interface{}) int {
	switch typed := val.(type) {
	case int32:
		return int(typed)
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case int:
		return typed
	default:
		return 0
	}
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
