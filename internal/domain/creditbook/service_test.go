package creditbook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/infrastructure/store/memory"
)

func TestAddManualRecord(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New())

	book := NewBook("Pak Budi", "")
	require.NoError(t, svc.Create(ctx, book))

	got, err := svc.AddManualRecord(ctx, book.ID, "loan", 20000, DirectionCashOut, "cash advance")
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(20000), got.Balance)

	got, err = svc.AddManualRecord(ctx, book.ID, "installment", 5000, DirectionCashIn, "")
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(15000), got.Balance)

	// The persisted copy carries the same ledger.
	loaded, err := svc.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(15000), loaded.Balance)
	assert.Len(t, loaded.Records, 2)
}

func TestAddManualRecord_Rejections(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New())

	book := NewBook("Pak Budi", "")
	require.NoError(t, svc.Create(ctx, book))

	_, err := svc.AddManualRecord(ctx, book.ID, "loan", 0, DirectionCashOut, "")
	assert.Error(t, err)

	_, err = svc.SetCompleted(ctx, book.ID, true)
	require.NoError(t, err)

	_, err = svc.AddManualRecord(ctx, book.ID, "loan", 5000, DirectionCashOut, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBookCompleted))

	// Reopening lifts the block.
	_, err = svc.SetCompleted(ctx, book.ID, false)
	require.NoError(t, err)
	_, err = svc.AddManualRecord(ctx, book.ID, "loan", 5000, DirectionCashOut, "")
	assert.NoError(t, err)
}

func TestDelete_RefusesAttachedOrders(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New())

	book := NewBook("Pak Budi", "")
	book.AttachOrder(id.New(), "#abc", "9_1_2026")
	require.NoError(t, svc.Create(ctx, book))

	err := svc.Delete(ctx, book.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))

	// Detached books delete fine.
	book.AttachedOrders = nil
	require.NoError(t, svc.Save(ctx, book))
	require.NoError(t, svc.Delete(ctx, book.ID))
	_, err = svc.Get(ctx, book.ID)
	assert.True(t, apperror.IsNotFound(err))
}
