package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tillbook/internal/core/entity"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/cart"
)

func orderWithLines(lines ...cart.Line) *Order {
	o := &Order{
		BaseDocument: entity.NewBaseDocument(),
		Lines:        lines,
	}
	o.RecalculateTotal()
	o.PayAmount = o.Total
	return o
}

func line(qty int64, unitPrice, cost types.MinorUnits) cart.Line {
	return cart.Line{
		ItemID:        id.New(),
		Quantity:      types.NewQuantityFromInt(qty),
		UnitPrice:     unitPrice,
		PurchasedCost: cost,
		UnitSize:      types.One,
	}
}

func TestRecalculateTotal(t *testing.T) {
	o := orderWithLines(line(2, 10000, 4000), line(1, 5000, 2000))
	o.Tax = 500
	o.Discount = 1000
	o.Meta = []MetaEntry{
		NewCostAdjustment("delivery", 2000),
		NewCostAdjustment("goodwill", -1500),
		NewAnnotation("note", "extra spicy"),
	}

	o.RecalculateTotal()
	// 25000 + 500 − 1000 + 2000 − 1500
	assert.Equal(t, types.MinorUnits(25000), o.BaseAmount)
	assert.Equal(t, types.MinorUnits(25000), o.Total)

	// Idempotent: a second pass changes nothing.
	o.RecalculateTotal()
	assert.Equal(t, types.MinorUnits(25000), o.Total)
}

func TestRecalculateTotal_ManualPriceFlowsThrough(t *testing.T) {
	l := line(3, 10000, 4000)
	manual := types.MinorUnits(25000)
	l.ManualPrice = &manual

	o := orderWithLines(l)
	assert.Equal(t, types.MinorUnits(25000), o.Total)
}

func TestProfitOrLoss(t *testing.T) {
	o := orderWithLines(line(2, 10000, 4000)) // revenue 20000, cost 8000
	o.Discount = 1000
	o.Meta = []MetaEntry{
		NewCostAdjustment("delivery", 2000),   // pass-through, no margin impact
		NewCostAdjustment("breakage", -500),   // borne by the business
	}
	o.RecalculateTotal()

	assert.True(t, o.ProfitOrLoss().Equal(types.NewMoney(10500)))
}

func TestProfitOrLoss_Negative(t *testing.T) {
	o := orderWithLines(line(1, 5000, 7000))
	assert.True(t, o.ProfitOrLoss().Equal(types.NewMoney(-2000)))
}

func TestMergeIncoming_IncrementsExistingLine(t *testing.T) {
	l := line(1, 10000, 4000)
	o := orderWithLines(l)

	extra := l
	extra.Quantity = types.NewQuantityFromInt(2)
	other := line(1, 3000, 1000)

	o.MergeIncoming([]cart.Line{extra, other})

	assert.Len(t, o.Lines, 2)
	assert.Equal(t, types.NewQuantityFromInt(3), o.Lines[0].Quantity)
	assert.Equal(t, types.MinorUnits(33000), o.Total)
}

func TestRemoveOneUnit_DropsLineAtUnit(t *testing.T) {
	l := line(1, 10000, 4000)
	o := orderWithLines(l, line(1, 3000, 1000))

	removed, err := o.RemoveOneUnit(l.ItemID)
	assert.NoError(t, err)
	assert.Equal(t, types.One, removed)
	assert.Len(t, o.Lines, 1)
	assert.Equal(t, types.MinorUnits(3000), o.Total)
}

func TestRemoveOneUnit_FractionalUnit(t *testing.T) {
	l := line(1, 30000, 10000)
	l.Quantity = types.NewQuantityFromFloat64(0.5)
	l.UnitSize = types.NewQuantityFromFloat64(0.1)
	o := orderWithLines(l)

	removed, err := o.RemoveOneUnit(l.ItemID)
	assert.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(0.1), removed)
	assert.Equal(t, types.NewQuantityFromFloat64(0.4), o.Lines[0].Quantity)
}

func TestOutstanding(t *testing.T) {
	o := orderWithLines(line(1, 10000, 4000))
	o.PayAmount = 6000
	assert.Equal(t, types.MinorUnits(4000), o.Outstanding())
	assert.True(t, o.IsCredit())
}

func TestShortLabel(t *testing.T) {
	o := orderWithLines(line(1, 10000, 4000))
	o.CustomerName = "Pak Budi"
	label := o.ShortLabel()
	assert.Contains(t, label, "Pak Budi #")
	assert.Len(t, label, len("Pak Budi #")+8)
}
