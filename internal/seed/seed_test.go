package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optika/internal/auth"
	"optika/internal/memstore"
)

func TestSeedIsIdempotent(t *testing.T) {
	backend := memstore.New()
	ctx := context.Background()

	created, err := Admin(ctx, backend.UserStore(), "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = Admin(ctx, backend.UserStore(), "other")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := backend.UserStore().FindByUsername(ctx, AdminUsername)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "admin123"))

	n, err := Products(ctx, backend.ProductStore())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = Products(ctx, backend.ProductStore())
	require.NoError(t, err)
	assert.Zero(t, n)

	frame, err := backend.ProductStore().Get(ctx, "frame-1")
	require.NoError(t, err)
	assert.Equal(t, 24, frame.StockQuantity)
}

func TestSampleProductsAreValid(t *testing.T) {
	for _, p := range SampleProducts(time.Time{}) {
		assert.True(t, p.Category.Valid(), p.Slug)
		assert.NotEmpty(t, p.Slug)
		assert.Positive(t, p.Price)
	}
}
