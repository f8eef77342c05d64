package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database/dbtest"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/reconcile"
	"github.com/xelth-com/tradetrack/internal/services/payments"
	"github.com/xelth-com/tradetrack/internal/services/purchasing"
)

func TestServiceMasterAndSummaries(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	ps := purchasing.NewService(db, nil, nil)
	pay := payments.NewService(db, nil, nil)

	po, err := ps.CreatePO(ctx, dbtest.MagnovaUser, purchasing.CreatePOInput{
		Items: []purchasing.LineInput{
			{Vendor: "Sri Mobiles", Location: "Hyderabad", Brand: "Apple", Model: "iPhone 15", Qty: money.NewFlex(3), Rate: money.NewFlex(100)},
			{Vendor: "Kiran Traders", Location: "Chennai", Brand: "Samsung", Model: "S24", Qty: money.NewFlex(1), Rate: money.NewFlex(50)},
		},
	})
	require.NoError(t, err)

	_, err = pay.CreateInternal(ctx, dbtest.MagnovaUser, payments.InternalInput{
		PONumber: po.PONumber, PayeeName: "Nova", PaymentMode: "NEFT", Amount: money.NewFlex(350),
	})
	require.NoError(t, err)
	_, err = ps.CreateProcurement(ctx, dbtest.NovaUser, purchasing.ProcurementInput{
		PONumber: po.PONumber, LineItemID: &po.Items[1].ID, VendorName: "Kiran Traders",
		StoreLocation: "Chennai", IMEI: "356789012345678", DeviceModel: "Samsung S24",
	})
	require.NoError(t, err)

	svc := reconcile.NewService(db, nil)
	m, err := svc.Master(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, m.Rows, 2)
	assert.Equal(t, []string{po.PONumber}, m.UniquePOs)
	assert.Equal(t, 350.0, m.Summary.TotalPOValue)
	assert.Equal(t, 4, m.Summary.TotalQuantity)
	assert.Equal(t, 350.0, m.Summary.TotalInternalPaid)
	assert.Equal(t, reconcile.MatchExact, m.Rows[1].Match.Procurement)
	assert.Equal(t, reconcile.MatchExact, m.Rows[1].Match.Inventory)
	assert.Equal(t, "356789012345678", m.Rows[1].IMEI)

	filtered, err := svc.Master(ctx, "samsung", "")
	require.NoError(t, err)
	assert.Len(t, filtered.Rows, 1)
	assert.Equal(t, []string{po.PONumber}, filtered.UniquePOs)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.TotalPOs)
	assert.Equal(t, int64(1), d.PendingPOs)
	assert.Equal(t, int64(1), d.TotalProcurement)
	assert.Equal(t, int64(1), d.TotalInventory)
	assert.Equal(t, int64(0), d.AvailableInventory)
	assert.Equal(t, 350.0, d.TotalPaymentAmount)

	sum, err := svc.POSummary(ctx, po.PONumber)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalProcured)
	assert.Len(t, sum.Payments, 1)
	assert.Equal(t, 350.0, sum.TotalPaid)
	assert.Len(t, sum.PO.Items, 2)

	_, err = svc.POSummary(ctx, "PO-MAG-404")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestLoadFailsAsAWhole(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Migrator().DropTable("logistics_shipments"))

	_, err := reconcile.NewService(db, nil).Load(context.Background())
	assert.Error(t, err)
}
