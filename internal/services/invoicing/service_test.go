package invoicing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database/dbtest"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/services/invoicing"
)

func input(amount float64) invoicing.InvoiceInput {
	return invoicing.InvoiceInput{
		InvoiceType:      "Tax Invoice",
		PONumber:         "PO-MAG-00001",
		FromOrganization: "Nova",
		ToOrganization:   "Magnova",
		Amount:           money.NewFlex(amount),
	}
}

func TestAmounts(t *testing.T) {
	in := input(1000)
	amount, pct, gst, total := in.Amounts()
	assert.Equal(t, 1000.0, amount)
	assert.Equal(t, 18.0, pct)
	assert.Equal(t, 180.0, gst)
	assert.Equal(t, 1180.0, total)

	twelve := money.NewFlex(12)
	in.GSTPercentage = &twelve
	_, pct, gst, total = in.Amounts()
	assert.Equal(t, 12.0, pct)
	assert.Equal(t, 120.0, gst)
	assert.Equal(t, 1120.0, total)

	explicit := money.NewFlex(99.5)
	in.GSTAmount = &explicit
	_, _, gst, total = in.Amounts()
	assert.Equal(t, 99.5, gst)
	assert.Equal(t, 1099.5, total)
}

func TestCreateNumbersInvoices(t *testing.T) {
	db := dbtest.Open(t)
	svc := invoicing.NewService(db, nil, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, dbtest.NovaUser, input(100))
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", first.InvoiceNumber)
	assert.Equal(t, "Pending", first.PaymentStatus)
	assert.Equal(t, 118.0, first.TotalAmount)

	second, err := svc.Create(ctx, dbtest.NovaUser, input(200))
	require.NoError(t, err)
	assert.Equal(t, "INV-000002", second.InvoiceNumber)

	list, err := svc.List(ctx, "PO-MAG-00001")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.Create(ctx, dbtest.NovaUser, input(-1))
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestDeleteInvoice(t *testing.T) {
	db := dbtest.Open(t)
	svc := invoicing.NewService(db, nil, nil)
	ctx := context.Background()

	inv, err := svc.Create(ctx, dbtest.NovaUser, input(100))
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.Delete(ctx, dbtest.NovaUser, inv.ID), apperr.ErrForbidden))
	require.NoError(t, svc.Delete(ctx, dbtest.Admin, inv.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, dbtest.Admin, inv.ID), apperr.ErrNotFound))
}
