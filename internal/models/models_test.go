package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStringListDecodesLegacySingleString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"images": "/placeholder.jpg", "features": []string{"UV400"}})
	require.NoError(t, err)

	var p Product
	require.NoError(t, bson.Unmarshal(raw, &p))

	assert.Equal(t, StringList{"/placeholder.jpg"}, p.Images)
	assert.Equal(t, StringList{"UV400"}, p.Features)
}

func TestStringListRejectsNumbers(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"images": 42})
	require.NoError(t, err)

	var p Product
	assert.Error(t, bson.Unmarshal(raw, &p))
}

func TestStringListNilRendersEmptyArray(t *testing.T) {
	body, err := json.Marshal(Product{Name: "Plain"})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"images":[]`)
	assert.Contains(t, string(body), `"features":[]`)
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, Category("contact-lenses").Valid())
	assert.False(t, Category("hats").Valid())
	assert.False(t, Category("").Valid())
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("returned").Valid())
	assert.True(t, PaymentPaid.Valid())
	assert.False(t, PaymentStatus("refunded").Valid())
}

func TestShippingFullName(t *testing.T) {
	assert.Equal(t, "A B", Shipping{FirstName: "A", LastName: "B"}.FullName())
	assert.Equal(t, "A", Shipping{FirstName: "A"}.FullName())
}

func TestProductSalePricing(t *testing.T) {
	sale := 150.0
	p := Product{Price: 199, SalePrice: &sale}
	p.Derive()
	assert.True(t, p.OnSale)
	assert.Equal(t, 150.0, p.EffectivePrice())

	tooHigh := 250.0
	p = Product{Price: 199, SalePrice: &tooHigh}
	p.Derive()
	assert.False(t, p.OnSale)
	assert.Equal(t, 199.0, p.EffectivePrice())

	p = Product{Price: 199}
	assert.False(t, IsOnSale(p.Price, p.SalePrice))
}
