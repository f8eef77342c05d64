package payments_test

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
	"github.com/xelth-com/tradetrack/internal/services/payments"
	"github.com/xelth-com/tradetrack/internal/services/purchasing"
	"github.com/xelth-com/tradetrack/internal/workflow"
)

type fixture struct {
	bus  *notify.Bus
	po   *purchasing.Service
	pay  *payments.Service
	poNo string
}

func setup(t *testing.T, qty float64) fixture {
	t.Helper()
	db := dbtest.Open(t)
	bus := notify.New(nil, nil)
	f := fixture{
		bus: bus,
		po:  purchasing.NewService(db, bus, nil),
		pay: payments.NewService(db, bus, nil),
	}
	po, err := f.po.CreatePO(context.Background(), dbtest.MagnovaUser, purchasing.CreatePOInput{
		Items: []purchasing.LineInput{{Vendor: "Sri Mobiles", Location: "Hyderabad", Brand: "Apple", Model: "iPhone 15", Qty: money.NewFlex(qty), Rate: money.NewFlex(100)}},
	})
	require.NoError(t, err)
	f.poNo = po.PONumber
	return f
}

func internal(po string, amount float64) payments.InternalInput {
	return payments.InternalInput{PONumber: po, PayeeName: "Nova", PaymentMode: "NEFT", Amount: money.NewFlex(amount)}
}

func external(po string, amount float64) payments.ExternalInput {
	return payments.ExternalInput{PONumber: po, PayeeName: "Sri Mobiles", PaymentMode: "RTGS", Amount: money.NewFlex(amount)}
}

func TestExternalCannotExceedInternal(t *testing.T) {
	f := setup(t, 2)
	ctx := context.Background()

	_, err := f.pay.CreateInternal(ctx, dbtest.MagnovaUser, internal(f.poNo, 150))
	require.NoError(t, err)

	_, err = f.pay.CreateExternal(ctx, dbtest.NovaUser, external(f.poNo, 100))
	require.NoError(t, err)

	_, err = f.pay.CreateExternal(ctx, dbtest.NovaUser, external(f.poNo, 60))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	assert.Contains(t, err.Error(), "Remaining: ₹50.00")

	_, err = f.pay.CreateExternal(ctx, dbtest.NovaUser, external(f.poNo, 50))
	require.NoError(t, err)

	sum, err := f.pay.Summary(ctx, f.poNo)
	require.NoError(t, err)
	assert.Equal(t, 150.0, sum.InternalPaid)
	assert.Equal(t, 150.0, sum.ExternalPaid)
	assert.Equal(t, 0.0, sum.ExternalRemaining)
	assert.Equal(t, 200.0, sum.POTotalValue)
}

func TestExternalBeforeInternalIsRejected(t *testing.T) {
	f := setup(t, 1)
	_, err := f.pay.CreateExternal(context.Background(), dbtest.NovaUser, external(f.poNo, 10))
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestPaymentValidation(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()

	_, err := f.pay.CreateInternal(ctx, dbtest.MagnovaUser, internal(f.poNo, 0))
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	_, err = f.pay.CreateInternal(ctx, dbtest.MagnovaUser, internal("PO-MAG-404", 10))
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	_, err = f.pay.Summary(ctx, "PO-MAG-404")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

// PO created → internal paid → external paid → device procured, with the
// notification queues following each step and the PO closing once every unit
// is procured.
func TestNotificationChainAndWorkflow(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()

	assert.Len(t, f.bus.Pending(notify.InternalPaymentPending), 1)

	_, err := f.pay.CreateInternal(ctx, dbtest.MagnovaUser, internal(f.poNo, 100))
	require.NoError(t, err)
	assert.Empty(t, f.bus.Pending(notify.InternalPaymentPending))
	require.Len(t, f.bus.Pending(notify.ExternalPaymentPending), 1)

	view, err := f.po.Workflow(ctx, f.poNo)
	require.NoError(t, err)
	assert.Equal(t, workflow.StateAwaitingExternalPayment, view.State)

	_, err = f.pay.CreateExternal(ctx, dbtest.NovaUser, external(f.poNo, 100))
	require.NoError(t, err)
	assert.Empty(t, f.bus.Pending(notify.ExternalPaymentPending))
	proc := f.bus.Pending(notify.ProcurementPending)
	require.Len(t, proc, 1)
	assert.Equal(t, "Sri Mobiles", proc[0].Prefill["vendor_name"])

	_, err = f.po.CreateProcurement(ctx, dbtest.NovaUser, purchasing.ProcurementInput{
		PONumber: f.poNo, VendorName: "Sri Mobiles", StoreLocation: "Hyderabad",
		IMEI: "356789012345679", DeviceModel: "Apple iPhone 15",
	})
	require.NoError(t, err)
	assert.Empty(t, f.bus.Pending(notify.ProcurementPending))

	view, err = f.po.Workflow(ctx, f.poNo)
	require.NoError(t, err)
	assert.Equal(t, workflow.StateFulfilled, view.State)
	assert.Equal(t, int64(1), view.Procured)
	assert.Equal(t, 100.0, view.InternalPaid)
	assert.Equal(t, 100.0, view.ExternalPaid)
}

func TestListTreatsUntypedAsInternal(t *testing.T) {
	db := dbtest.Open(t)
	svc := payments.NewService(db, nil, nil)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Payment{PONumber: "PO-1", Amount: 10}).Error)
	require.NoError(t, db.Create(&models.Payment{PONumber: "PO-1", PaymentType: models.PaymentExternal, Amount: 5}).Error)

	got, err := svc.List(ctx, "PO-1", "internal")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.PaymentInternal, got[0].PaymentType)

	got, err = svc.List(ctx, "", "external")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.List(ctx, "PO-1", "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDeletePaymentAdminOnly(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()

	p, err := f.pay.CreateInternal(ctx, dbtest.MagnovaUser, internal(f.poNo, 10))
	require.NoError(t, err)

	assert.True(t, errors.Is(f.pay.Delete(ctx, dbtest.MagnovaUser, p.ID), apperr.ErrForbidden))
	require.NoError(t, f.pay.Delete(ctx, dbtest.Admin, p.ID))
	assert.True(t, errors.Is(f.pay.Delete(ctx, dbtest.Admin, p.ID), apperr.ErrNotFound))
}
