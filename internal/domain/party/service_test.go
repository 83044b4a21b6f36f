package party

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
	"tillbook/internal/infrastructure/store/memory"
)

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New())

	customer := NewParty(KindCustomer, "Pak Budi")
	customer.Phone = "+62-812-0000"
	require.NoError(t, svc.Create(ctx, customer))

	got, err := svc.Get(ctx, KindCustomer, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pak Budi", got.Name)
	assert.Equal(t, "+62-812-0000", got.Phone)

	got.Address = "Jl. Melati 3"
	require.NoError(t, svc.Update(ctx, got))
	updated, err := svc.Get(ctx, KindCustomer, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jl. Melati 3", updated.Address)
	assert.Equal(t, 2, updated.Version)

	require.NoError(t, svc.Delete(ctx, KindCustomer, customer.ID))
	_, err = svc.Get(ctx, KindCustomer, customer.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestKindsAreSeparateCollections(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New())

	require.NoError(t, svc.Create(ctx, NewParty(KindCustomer, "Walk-in")))
	require.NoError(t, svc.Create(ctx, NewParty(KindSupplier, "Java Roastery")))

	customers, err := svc.List(ctx, KindCustomer)
	require.NoError(t, err)
	suppliers, err := svc.List(ctx, KindSupplier)
	require.NoError(t, err)

	assert.Len(t, customers, 1)
	assert.Len(t, suppliers, 1)
	assert.Equal(t, "Walk-in", customers[0].Name)
	assert.Equal(t, "Java Roastery", suppliers[0].Name)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New())

	err := svc.Create(ctx, NewParty(KindCustomer, ""))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	bad := NewParty(Kind("vendor"), "Someone")
	err = svc.Create(ctx, bad)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	all, err := svc.List(ctx, KindCustomer)
	require.NoError(t, err)
	assert.Empty(t, all)
}
