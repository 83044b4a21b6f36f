package creditbook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

func TestAddRecord_SignConvention(t *testing.T) {
	b := NewBook("Pak Budi", "")

	// Extending credit raises the balance.
	b.AddRecord("credit", 10000, DirectionCashOut, "", "")
	assert.Equal(t, types.MinorUnits(10000), b.Balance)

	// Payments lower it.
	b.AddRecord("payment", 4000, DirectionCashIn, "", "")
	assert.Equal(t, types.MinorUnits(6000), b.Balance)

	// Overpaying flips the sign: the business owes the customer.
	b.AddRecord("payment", 9000, DirectionCashIn, "", "")
	assert.Equal(t, types.MinorUnits(-3000), b.Balance)

	assert.Equal(t, b.Balance, b.RecordedBalance())
	assert.NoError(t, b.Validate(context.Background()))
}

func TestRemoveRecord_ReversesDelta(t *testing.T) {
	b := NewBook("Pak Budi", "")
	rec := b.AddRecord("credit", 10000, DirectionCashOut, "", "")
	b.AddRecord("payment", 4000, DirectionCashIn, "", "")

	require.True(t, b.RemoveRecord(rec.RecordID))
	assert.Equal(t, types.MinorUnits(-4000), b.Balance)
	assert.Len(t, b.Records, 1)
	assert.NoError(t, b.Validate(context.Background()))

	assert.False(t, b.RemoveRecord(rec.RecordID), "already removed")
}

func TestAttachOrder_Idempotent(t *testing.T) {
	b := NewBook("Pak Budi", "")
	orderID := id.New()

	b.AttachOrder(orderID, "#abc", "9_1_2026")
	b.AttachOrder(orderID, "#abc", "9_1_2026")

	assert.Len(t, b.AttachedOrders, 1)
	assert.True(t, b.IsAttached(orderID))

	require.True(t, b.DetachOrder(orderID))
	assert.False(t, b.IsAttached(orderID))
	assert.False(t, b.DetachOrder(orderID))
}

func TestValidate_BalanceMismatch(t *testing.T) {
	b := NewBook("Pak Budi", "")
	b.AddRecord("credit", 10000, DirectionCashOut, "", "")
	b.Balance = 9999

	assert.Error(t, b.Validate(context.Background()))
}

func TestValidate_RequiresCustomerName(t *testing.T) {
	b := NewBook("", "")
	assert.Error(t, b.Validate(context.Background()))
}
