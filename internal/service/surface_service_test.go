package service

import (
	"math"
	"testing"

	"burgerpos/internal/apierror"
	"burgerpos/internal/dto"
	"burgerpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertTotalConsistent(t *testing.T, sf *model.Surface) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range sf.Orders {
		assert.True(t, it.Subtotal.Equal(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))), it.ProductName)
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, sf.Total.Equal(sum), "total %s != Σ subtotals %s", sf.Total, sum)
}

func TestListSurfaces_CounterPlusTables(t *testing.T) {
	env := newTestEnv(t)
	list := env.surfaces.List(env.ctx)
	require.Len(t, list, 16)
	for i, sf := range list {
		assert.Equal(t, i, sf.ID)
		assert.Equal(t, model.SurfaceAvailable, sf.Status)
		assert.True(t, sf.Total.IsZero())
	}
	assert.True(t, list[0].IsCounter())
}

func TestAddItem_RequiresActiveShift(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "caixa1", "caixa123")

	_, err := env.surfaces.AddItem(env.ctx, 3, "001", 1)
	assert.True(t, apierror.IsKind(err, apierror.KindPrecondition))

	// shift check comes before the product check
	_, err = env.surfaces.AddItem(env.ctx, 3, "nope", 1)
	assert.True(t, apierror.IsKind(err, apierror.KindPrecondition))
	assert.Empty(t, env.surface(t, 3).Orders)
}

func TestAddItem_Rejections(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	off := env.addProduct(t, "777", "Especial do Chef", "30.00")
	off.Available = false
	_, err := env.catalog.Update(env.ctx, off.ID, dto.ProductRequest{
		Code: off.Code, Name: off.Name, Price: off.Price, Category: off.Category, Available: &off.Available,
	})
	require.NoError(t, err)

	cases := []struct {
		name    string
		surface int
		ref     string
		qty     int
		kind    apierror.Kind
	}{
		{"unknown product", 1, "999", 1, apierror.KindNotFound},
		{"unavailable product", 1, "777", 1, apierror.KindValidation},
		{"zero quantity", 1, "001", 0, apierror.KindValidation},
		{"negative quantity", 1, "001", -2, apierror.KindValidation},
		{"table out of range", 16, "001", 1, apierror.KindNotFound},
		{"negative table", -1, "001", 1, apierror.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := env.core.Export()
			_, err := env.surfaces.AddItem(env.ctx, tc.surface, tc.ref, tc.qty)
			assert.True(t, apierror.IsKind(err, tc.kind), "got %v", err)
			assert.Equal(t, before, env.core.Export())
		})
	}
}

func TestAddItem_MergesLinesAndOccupies(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	p, err := env.catalog.FindByCodeOrID(env.ctx, "001")
	require.NoError(t, err)

	env.add(t, 5, "001", 1)
	sf := env.add(t, 5, p.ID.String(), 2)

	require.Len(t, sf.Orders, 1)
	assert.Equal(t, 3, sf.Orders[0].Quantity)
	assert.Equal(t, "77.70", sf.Total.StringFixed(2))
	assert.Equal(t, model.SurfaceOccupied, sf.Status)
	assertTotalConsistent(t, sf)
}

func TestAddItem_QuantityCap(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	p, err := env.catalog.FindByCodeOrID(env.ctx, "001")
	require.NoError(t, err)

	_, err = env.surfaces.AddItem(env.ctx, 0, "001", math.MaxInt)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	env.add(t, 0, "001", MaxLineQuantity)
	before := env.core.Export()

	_, err = env.surfaces.AddItem(env.ctx, 0, "001", 1)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	_, err = env.surfaces.SetQuantity(env.ctx, 0, p.ID, MaxLineQuantity+1)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	assert.Equal(t, before, env.core.Export())

	sf, err := env.surfaces.Get(env.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, MaxLineQuantity, sf.Orders[0].Quantity)
	assert.True(t, sf.Total.IsPositive())
	assertTotalConsistent(t, sf)
}

func TestAddItem_SnapshotsPrice(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	p, err := env.catalog.FindByCodeOrID(env.ctx, "004")
	require.NoError(t, err)
	env.add(t, 2, "004", 1)

	_, err = env.catalog.Update(env.ctx, p.ID, dto.ProductRequest{
		Code: p.Code, Name: p.Name, Price: dec("7.50"), Category: p.Category,
	})
	require.NoError(t, err)

	sf := env.surface(t, 2)
	assert.Equal(t, "6.50", sf.Orders[0].Price.StringFixed(2))
	assert.Equal(t, "6.50", sf.Total.StringFixed(2))
}

func TestSurfaceTotal_ConsistentAcrossEdits(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	burger, _ := env.catalog.FindByCodeOrID(env.ctx, "001")
	fries, _ := env.catalog.FindByCodeOrID(env.ctx, "006")

	steps := []func() (*model.Surface, error){
		func() (*model.Surface, error) { return env.surfaces.AddItem(env.ctx, 4, "001", 2) },
		func() (*model.Surface, error) { return env.surfaces.AddItem(env.ctx, 4, "006", 1) },
		func() (*model.Surface, error) { return env.surfaces.SetQuantity(env.ctx, 4, fries.ID, 4) },
		func() (*model.Surface, error) { return env.surfaces.AddItem(env.ctx, 4, "004", 3) },
		func() (*model.Surface, error) { return env.surfaces.RemoveItem(env.ctx, 4, burger.ID) },
		func() (*model.Surface, error) { return env.surfaces.SetQuantity(env.ctx, 4, fries.ID, 1) },
	}
	for i, step := range steps {
		sf, err := step()
		require.NoError(t, err, "step %d", i)
		assertTotalConsistent(t, sf)
	}
	sf := env.surface(t, 4)
	assert.Equal(t, "32.40", sf.Total.StringFixed(2)) // 12.90 + 3×6.50
}

func TestRemoveItem_EmptiedSurfaceBecomesAvailable(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	p, _ := env.catalog.FindByCodeOrID(env.ctx, "003")
	env.add(t, 7, "003", 1)

	sf, err := env.surfaces.RemoveItem(env.ctx, 7, p.ID)
	require.NoError(t, err)
	assert.Empty(t, sf.Orders)
	assert.True(t, sf.Total.IsZero())
	assert.Equal(t, model.SurfaceAvailable, sf.Status)

	_, err = env.surfaces.RemoveItem(env.ctx, 7, p.ID)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	p, _ := env.catalog.FindByCodeOrID(env.ctx, "008")
	env.add(t, 0, "008", 2)
	env.add(t, 0, "004", 1)

	sf, err := env.surfaces.SetQuantity(env.ctx, 0, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, sf.Orders, 1)
	assert.Equal(t, "Coca-Cola 350ml", sf.Orders[0].ProductName)
	assert.Equal(t, model.SurfaceOccupied, sf.Status)

	_, err = env.surfaces.SetQuantity(env.ctx, 0, uuid.New(), 3)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestRequestBill(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)

	_, err := env.surfaces.RequestBill(env.ctx, 9)
	assert.True(t, apierror.IsKind(err, apierror.KindPrecondition), "empty table")

	env.add(t, 9, "002", 1)
	sf, err := env.surfaces.RequestBill(env.ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, model.SurfaceRequestingBill, sf.Status)

	env.sink.reset()
	sf, err = env.surfaces.RequestBill(env.ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, model.SurfaceRequestingBill, sf.Status)
	assert.Empty(t, env.sink.types(), "repeat request is a no-op")
}

func TestRequestingBill_IsSticky(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	p, _ := env.catalog.FindByCodeOrID(env.ctx, "005")
	env.add(t, 11, "005", 1)
	_, err := env.surfaces.RequestBill(env.ctx, 11)
	require.NoError(t, err)

	sf := env.add(t, 11, "006", 1)
	assert.Equal(t, model.SurfaceRequestingBill, sf.Status, "adding keeps the bill requested")

	fries, _ := env.catalog.FindByCodeOrID(env.ctx, "006")
	_, err = env.surfaces.RemoveItem(env.ctx, 11, fries.ID)
	require.NoError(t, err)
	sf, err = env.surfaces.SetQuantity(env.ctx, 11, p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, sf.Orders)
	assert.Equal(t, model.SurfaceRequestingBill, sf.Status)

	sf, err = env.surfaces.Clear(env.ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, model.SurfaceAvailable, sf.Status)
}

func TestClear_ResetsWithoutSale(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	env.add(t, 2, "001", 3)

	sf, err := env.surfaces.Clear(env.ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, sf.Orders)
	assert.True(t, sf.Total.IsZero())
	assert.Equal(t, model.SurfaceAvailable, sf.Status)
	assert.Empty(t, env.sales.List(env.ctx, dto.SaleFilter{}))

	// clearing an empty surface is harmless
	_, err = env.surfaces.Clear(env.ctx, 2)
	require.NoError(t, err)
}

func TestSurfaceEdits_PublishUpdates(t *testing.T) {
	env := newTestEnv(t)
	env.openShift(t)
	env.sink.reset()

	env.add(t, 1, "001", 1)
	_, err := env.surfaces.AddItem(env.ctx, 1, "nope", 1)
	require.Error(t, err)

	assert.Equal(t, []string{model.EventSurfaceUpdated}, env.sink.types())
}
