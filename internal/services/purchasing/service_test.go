package purchasing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database/dbtest"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/notify"
	"github.com/xelth-com/tradetrack/internal/services/purchasing"
	"github.com/xelth-com/tradetrack/internal/workflow"
)

func twoLinePO() purchasing.CreatePOInput {
	return purchasing.CreatePOInput{
		Items: []purchasing.LineInput{
			{Vendor: "Sri Mobiles", Location: "Hyderabad", Brand: "Apple", Model: "iPhone 15", Qty: money.NewFlex(3), Rate: money.NewFlex(100)},
			{Vendor: "Kiran Traders", Location: "Chennai", Brand: "Samsung", Model: "S24", Qty: money.NewFlex(1), Rate: money.NewFlex(50)},
		},
	}
}

func TestCreatePOTotals(t *testing.T) {
	db := dbtest.Open(t)
	bus := notify.New(nil, nil)
	svc := purchasing.NewService(db, bus, nil)

	po, err := svc.CreatePO(context.Background(), dbtest.MagnovaUser, twoLinePO())
	require.NoError(t, err)

	assert.Equal(t, "PO-MAG-00001", po.PONumber)
	assert.Equal(t, 4, po.TotalQuantity)
	assert.Equal(t, 350.0, po.TotalValue)
	require.Len(t, po.Items, 2)
	assert.Equal(t, 300.0, po.Items[0].POValue)
	assert.Equal(t, 50.0, po.Items[1].POValue)
	assert.Equal(t, "Magnova Head Office", po.PurchaseOffice)
	assert.Equal(t, models.ApprovalPending, po.ApprovalStatus)
	assert.Equal(t, workflow.StateAwaitingInternalPayment, po.WorkflowState)

	pending := bus.Pending(notify.InternalPaymentPending)
	require.Len(t, pending, 1)
	assert.Equal(t, "PO-MAG-00001", pending[0].PONumber)

	second, err := svc.CreatePO(context.Background(), dbtest.MagnovaUser, twoLinePO())
	require.NoError(t, err)
	assert.Equal(t, "PO-MAG-00002", second.PONumber)
}

func TestCreatePONonNumericInputCountsAsZero(t *testing.T) {
	db := dbtest.Open(t)
	svc := purchasing.NewService(db, nil, nil)

	in := purchasing.CreatePOInput{Items: []purchasing.LineInput{
		{Vendor: "V", Qty: money.Flex{Decimal: money.Parse("abc")}, Rate: money.NewFlex(10)},
	}}
	po, err := svc.CreatePO(context.Background(), dbtest.MagnovaUser, in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, po.TotalValue)
	assert.Equal(t, 0, po.TotalQuantity)
}

func TestCreatePORoundsOnlyTheLineValue(t *testing.T) {
	db := dbtest.Open(t)
	svc := purchasing.NewService(db, nil, nil)

	in := purchasing.CreatePOInput{Items: []purchasing.LineInput{
		{Vendor: "Sri Mobiles", Qty: money.NewFlex(4), Rate: money.Flex{Decimal: money.Parse("0.125")}},
		{Vendor: "Kiran Traders", Qty: money.NewFlex(3), Rate: money.Flex{Decimal: money.Parse("0.3333")}},
	}}
	po, err := svc.CreatePO(context.Background(), dbtest.MagnovaUser, in)
	require.NoError(t, err)
	require.Len(t, po.Items, 2)
	assert.Equal(t, 0.125, po.Items[0].Rate)
	assert.Equal(t, 0.5, po.Items[0].POValue)
	assert.Equal(t, 1.0, po.Items[1].POValue)
	assert.Equal(t, 1.5, po.TotalValue)

	stored, err := svc.GetPO(context.Background(), po.PONumber)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, 0.5, stored.Items[0].POValue)
}

func TestCreatePOOnlyMagnova(t *testing.T) {
	db := dbtest.Open(t)
	svc := purchasing.NewService(db, nil, nil)

	_, err := svc.CreatePO(context.Background(), dbtest.NovaUser, twoLinePO())
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestApproveOnlyFromPending(t *testing.T) {
	db := dbtest.Open(t)
	svc := purchasing.NewService(db, nil, nil)
	ctx := context.Background()

	po, err := svc.CreatePO(ctx, dbtest.MagnovaUser, twoLinePO())
	require.NoError(t, err)

	_, err = svc.Approve(ctx, dbtest.MagnovaUser, po.PONumber, purchasing.ApprovalInput{Action: "approve"})
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	approved, err := svc.Approve(ctx, dbtest.Approver, po.PONumber, purchasing.ApprovalInput{Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.ApprovalStatus)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, dbtest.Approver.UserID, *approved.ApprovedBy)

	reason := "late"
	_, err = svc.Approve(ctx, dbtest.Admin, po.PONumber, purchasing.ApprovalInput{Action: "reject", RejectionReason: &reason})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.Approve(ctx, dbtest.Admin, "PO-MAG-99999", purchasing.ApprovalInput{Action: "approve"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestProcurementCreatesInventoryRow(t *testing.T) {
	db := dbtest.Open(t)
	svc := purchasing.NewService(db, nil, nil)
	ctx := context.Background()

	po, err := svc.CreatePO(ctx, dbtest.MagnovaUser, twoLinePO())
	require.NoError(t, err)

	rec, err := svc.CreateProcurement(ctx, dbtest.NovaUser, purchasing.ProcurementInput{
		PONumber:      po.PONumber,
		LineItemID:    &po.Items[1].ID,
		VendorName:    "Kiran Traders",
		StoreLocation: "Chennai",
		IMEI:          "356789012345671",
		DeviceModel:   "Samsung S24",
		PurchasePrice: money.NewFlex(48),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Quantity)
	require.NotNil(t, rec.LineItemID)
	assert.Equal(t, po.Items[1].ID, *rec.LineItemID)

	var item models.InventoryItem
	require.NoError(t, db.Where("imei = ?", rec.IMEI).First(&item).Error)
	assert.Equal(t, models.InventoryProcured, item.Status)
	assert.Equal(t, models.OrgNova, item.Organization)
	require.NotNil(t, item.Brand)
	assert.Equal(t, "Samsung", *item.Brand)
	require.NotNil(t, item.ProcurementID)
	assert.Equal(t, rec.ID, *item.ProcurementID)

	_, err = svc.CreateProcurement(ctx, dbtest.NovaUser, purchasing.ProcurementInput{
		PONumber: po.PONumber, VendorName: "Kiran Traders", StoreLocation: "Chennai",
		IMEI: "356789012345671", DeviceModel: "Samsung S24",
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestProcurementRejectsForeignLineAndUnknownPO(t *testing.T) {
	db := dbtest.Open(t)
	svc := purchasing.NewService(db, nil, nil)
	ctx := context.Background()

	first, err := svc.CreatePO(ctx, dbtest.MagnovaUser, twoLinePO())
	require.NoError(t, err)
	second, err := svc.CreatePO(ctx, dbtest.MagnovaUser, twoLinePO())
	require.NoError(t, err)

	_, err = svc.CreateProcurement(ctx, dbtest.NovaUser, purchasing.ProcurementInput{
		PONumber: first.PONumber, LineItemID: &second.Items[0].ID,
		VendorName: "Sri Mobiles", StoreLocation: "Hyderabad", IMEI: "111122223333444", DeviceModel: "iPhone 15",
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	_, err = svc.CreateProcurement(ctx, dbtest.NovaUser, purchasing.ProcurementInput{
		PONumber: "PO-MAG-404", VendorName: "Sri Mobiles", StoreLocation: "Hyderabad",
		IMEI: "111122223333444", DeviceModel: "iPhone 15",
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestGuessLine(t *testing.T) {
	imei := "999"
	items := []models.POLineItem{
		{ID: "a", Vendor: "A"},
		{ID: "b", Vendor: "B"},
		{ID: "c", Vendor: "C", IMEI: &imei},
	}
	assert.Equal(t, "c", purchasing.GuessLine(items, "999", "A").ID)
	assert.Equal(t, "b", purchasing.GuessLine(items, "123", "B").ID)
	assert.Equal(t, "a", purchasing.GuessLine(items, "123", "Z").ID)
	assert.Nil(t, purchasing.GuessLine(nil, "123", "Z"))
}

func TestDeletePOCascades(t *testing.T) {
	db := dbtest.Open(t)
	bus := notify.New(nil, nil)
	svc := purchasing.NewService(db, bus, nil)
	ctx := context.Background()

	po, err := svc.CreatePO(ctx, dbtest.MagnovaUser, twoLinePO())
	require.NoError(t, err)
	_, err = svc.CreateProcurement(ctx, dbtest.NovaUser, purchasing.ProcurementInput{
		PONumber: po.PONumber, VendorName: "Sri Mobiles", StoreLocation: "Hyderabad",
		IMEI: "356789012345672", DeviceModel: "Apple iPhone 15",
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Payment{PONumber: po.PONumber, PaymentType: models.PaymentInternal, Amount: 100}).Error)
	require.NoError(t, db.Create(&models.Shipment{PONumber: po.PONumber, Status: models.ShipmentPending}).Error)
	require.NoError(t, db.Create(&models.Invoice{PONumber: po.PONumber, InvoiceNumber: "INV-000001"}).Error)

	rc, err := svc.RelatedCounts(ctx, po.PONumber)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rc.TotalRelated)

	_, err = svc.DeletePO(ctx, dbtest.MagnovaUser, po.PONumber)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	dc, err := svc.DeletePO(ctx, dbtest.Admin, po.PONumber)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dc.Inventory)
	assert.Equal(t, int64(1), dc.Procurement)
	assert.Equal(t, int64(1), dc.Payments)
	assert.Equal(t, int64(1), dc.Logistics)
	assert.Equal(t, int64(1), dc.Invoices)

	var n int64
	db.Model(&models.POLineItem{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.InventoryItem{}).Count(&n)
	assert.Zero(t, n)
	assert.Empty(t, bus.Pending(notify.InternalPaymentPending))

	_, err = svc.GetPO(ctx, po.PONumber)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestWorkflowView(t *testing.T) {
	db := dbtest.Open(t)
	svc := purchasing.NewService(db, nil, nil)
	ctx := context.Background()

	po, err := svc.CreatePO(ctx, dbtest.MagnovaUser, twoLinePO())
	require.NoError(t, err)

	v, err := svc.Workflow(ctx, po.PONumber)
	require.NoError(t, err)
	assert.Equal(t, workflow.StateAwaitingInternalPayment, v.State)
	assert.Equal(t, []workflow.Event{workflow.EventInternalPaid}, v.Allowed)
	assert.Equal(t, 4, v.TotalQuantity)
	assert.Zero(t, v.Procured)
}
