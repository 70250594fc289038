package portfolio

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_Empty(t *testing.T) {
	rec := NewRecord()
	assert.Empty(t, rec.Items)
	assert.Empty(t, rec.Prices)
	assert.Nil(t, rec.Meta.LastPriceUpdate)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":{},"prices":{},"meta":{"lastPriceUpdate":null}}`, string(raw))
}

func TestSetQuantity_ClampsToOne(t *testing.T) {
	for _, qty := range []int{0, -1, -100} {
		rec := SetQuantity(NewRecord(), "Clutch Case", qty)
		assert.Equal(t, 1, rec.Items["Clutch Case"].Quantity, "qty %d", qty)
	}
	rec := SetQuantity(NewRecord(), "Clutch Case", 7)
	assert.Equal(t, 7, rec.Items["Clutch Case"].Quantity)
}

func TestSetQuantity_LeavesInputAndPricesUntouched(t *testing.T) {
	in := MergePricesAt(NewRecord(), map[string]int64{"Clutch Case": 150}, time.UnixMilli(1000))
	out := SetQuantity(in, "Clutch Case", 3)

	assert.False(t, in.Holds("Clutch Case"))
	assert.True(t, out.Holds("Clutch Case"))
	assert.Equal(t, in.Prices, out.Prices)
	assert.Equal(t, in.Meta, out.Meta)
}

func TestRemoveItem_AbsentIsNoOp(t *testing.T) {
	in := AddItem(NewRecord(), "Clutch Case", 2, 150)
	out := RemoveItem(in, "Fever Case")
	assert.Equal(t, in, out)
}

func TestRemoveItem_KeepsPrice(t *testing.T) {
	in := AddItem(NewRecord(), "Clutch Case", 2, 150)
	out := RemoveItem(in, "Clutch Case")
	assert.False(t, out.Holds("Clutch Case"))
	assert.True(t, in.Holds("Clutch Case"))
	assert.Equal(t, int64(150), out.Price("Clutch Case"))
}

func TestMergePrices_StampsTimeForUnheldItems(t *testing.T) {
	before := time.Now().UnixMilli()
	rec := MergePrices(NewRecord(), map[string]int64{"Kilowatt Case": 95})

	require.NotNil(t, rec.Meta.LastPriceUpdate)
	assert.GreaterOrEqual(t, *rec.Meta.LastPriceUpdate, before)
	assert.Equal(t, int64(95), rec.Prices["Kilowatt Case"])
	assert.Empty(t, rec.Items)
}

func TestMergePricesAt_OverwritesAndKeepsOthers(t *testing.T) {
	rec := MergePricesAt(NewRecord(), map[string]int64{"A": 1, "B": 2}, time.UnixMilli(10))
	rec = MergePricesAt(rec, map[string]int64{"B": 20}, time.UnixMilli(20))

	assert.Equal(t, map[string]int64{"A": 1, "B": 20}, rec.Prices)
	ts, ok := rec.Meta.LastUpdate()
	require.True(t, ok)
	assert.Equal(t, int64(20), ts.UnixMilli())
}

func TestMergePrices_EmptyMapStillStamps(t *testing.T) {
	rec := MergePrices(NewRecord(), nil)
	assert.NotNil(t, rec.Meta.LastPriceUpdate)
}

func TestClone_Independent(t *testing.T) {
	in := MergePricesAt(AddItem(NewRecord(), "A", 1, 5), nil, time.UnixMilli(5))
	out := in.Clone()
	out.Items["B"] = Holding{Quantity: 2}
	out.Prices["A"] = 99
	*out.Meta.LastPriceUpdate = 42

	assert.False(t, in.Holds("B"))
	assert.Equal(t, int64(5), in.Prices["A"])
	assert.Equal(t, int64(5), *in.Meta.LastPriceUpdate)
}

func TestNormalize(t *testing.T) {
	rec := Normalize(Record{Items: map[string]Holding{"A": {Quantity: 0}, "B": {Quantity: 4}}})
	assert.NotNil(t, rec.Prices)
	assert.Equal(t, 1, rec.Items["A"].Quantity)
	assert.Equal(t, 4, rec.Items["B"].Quantity)

	empty := Normalize(Record{})
	assert.Equal(t, NewRecord(), empty)
}

func TestMeta_LastUpdate_Unset(t *testing.T) {
	_, ok := Meta{}.LastUpdate()
	assert.False(t, ok)
}

//Personal.AI order the ending
