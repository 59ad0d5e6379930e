package repository

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAddress(customerID, line1 string) *model.Address {
	return &model.Address{
		CustomerID: customerID,
		FirstName:  "Asha",
		LastName:   "Rao",
		Email:      "asha@example.com",
		Phone:      "9999999999",
		Line1:      line1,
		City:       "Pune",
		Country:    "IN",
	}
}

func TestAddressRepository_CreateAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAddressRepository(pool, zerolog.Nop())
	ctx := context.Background()

	first := newTestAddress("cust-1", "12 MG Road")
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.True(t, first.IsDefault)
	assert.False(t, first.CreatedAt.IsZero())

	second := newTestAddress("cust-1", "7 FC Road")
	require.NoError(t, repo.Create(ctx, second))
	assert.False(t, second.IsDefault)

	other := newTestAddress("cust-2", "1 Park Street")
	require.NoError(t, repo.Create(ctx, other))
	assert.True(t, other.IsDefault)

	addresses, err := repo.ListByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, first.ID, addresses[0].ID)
	assert.Equal(t, second.ID, addresses[1].ID)

	empty, err := repo.ListByCustomer(ctx, "cust-none")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestAddressRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAddressRepository(pool, zerolog.Nop())
	ctx := context.Background()

	addr := newTestAddress("cust-1", "12 MG Road")
	require.NoError(t, repo.Create(ctx, addr))

	tests := []struct {
		name       string
		customerID string
		id         uuid.UUID
		found      bool
	}{
		{"owned address", "cust-1", addr.ID, true},
		{"foreign customer", "cust-2", addr.ID, false},
		{"unknown id", "cust-1", uuid.New(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByID(ctx, tt.customerID, tt.id)

			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, "12 MG Road", got.Line1)
			assert.True(t, got.IsDefault)
		})
	}
}

func TestAddressRepository_ErrorPaths(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAddressRepository(pool, zerolog.Nop())
	ctx := context.Background()
	pool.Close()

	_, err := repo.ListByCustomer(ctx, "cust-1")
	assert.Error(t, err)

	err = repo.Create(ctx, newTestAddress("cust-1", "12 MG Road"))
	assert.Error(t, err)

	got, err := repo.GetByID(ctx, "cust-1", uuid.New())
	assert.Error(t, err)
	assert.Nil(t, got)
}
