package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/simbacrm/backend/internal/domain/partner"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

func setupAccountTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&partner.Account{})
	require.NoError(t, err)

	return db
}

func TestGormAccountRepository(t *testing.T) {
	db := setupAccountTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	for i := 0; i < 3; i++ {
		account, err := partner.NewAccount(ownerID, fmt.Sprintf("Account %d", i+1))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, account))
	}

	t.Run("round-trips the billing address", func(t *testing.T) {
		account, err := partner.NewAccount(ownerID, "Savanna Tours Ltd")
		require.NoError(t, err)

		address, err := valueobject.NewAddress("Moi Avenue 12", "Nairobi", "Nairobi County", "00100", "Kenya")
		require.NoError(t, err)
		account.SetBillingAddress(address)
		require.NoError(t, repo.Save(ctx, account))

		found, err := repo.FindByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, found.BillingAddress)
		assert.Equal(t, "Nairobi", found.BillingAddress.City())
		assert.Equal(t, "Kenya", found.BillingAddress.Country())
	})

	t.Run("returns ErrNotFound for missing account", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("paginates accounts", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2

		page, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, int64(4), page.Total)
	})

	t.Run("Count and Delete", func(t *testing.T) {
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)

		page, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.NotEmpty(t, page.Items)

		require.NoError(t, repo.Delete(ctx, page.Items[0].ID))

		count, err = repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
