package logistics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database/dbtest"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/services/logistics"
	"github.com/xelth-com/tradetrack/internal/services/purchasing"
)

func newShipment(t *testing.T) (*logistics.Service, *models.Shipment) {
	t.Helper()
	db := dbtest.Open(t)
	ctx := context.Background()

	po, err := purchasing.NewService(db, nil, nil).CreatePO(ctx, dbtest.MagnovaUser, purchasing.CreatePOInput{
		Items: []purchasing.LineInput{{Vendor: "Sri Mobiles", Location: "Hyderabad", Qty: money.NewFlex(2), Rate: money.NewFlex(100)}},
	})
	require.NoError(t, err)

	svc := logistics.NewService(db, nil, nil)
	sh, err := svc.Create(ctx, dbtest.NovaUser, logistics.ShipmentInput{
		PONumber:         po.PONumber,
		LineItemID:       &po.Items[0].ID,
		TransporterName:  "Blue Dart",
		VehicleNumber:    "TS09AB1234",
		FromLocation:     "Hyderabad",
		ToLocation:       "Mumbai",
		PickupDate:       time.Now(),
		ExpectedDelivery: time.Now().Add(48 * time.Hour),
		IMEIList:         []string{"111", "222"},
	})
	require.NoError(t, err)
	return svc, sh
}

func TestCreateShipmentDefaults(t *testing.T) {
	_, sh := newShipment(t)
	assert.Equal(t, models.ShipmentPending, sh.Status)
	assert.Equal(t, 2, sh.PickupQuantity)
	require.NotNil(t, sh.Vendor)
	assert.Equal(t, "Sri Mobiles", *sh.Vendor)
	assert.Nil(t, sh.ActualDelivery)
}

func TestShipmentStatusFlow(t *testing.T) {
	svc, sh := newShipment(t)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, dbtest.NovaUser, sh.ID, logistics.StatusInput{Status: models.ShipmentDelivered})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	got, err := svc.UpdateStatus(ctx, dbtest.NovaUser, sh.ID, logistics.StatusInput{Status: models.ShipmentInTransit})
	require.NoError(t, err)
	assert.Nil(t, got.ActualDelivery)

	got, err = svc.UpdateStatus(ctx, dbtest.NovaUser, sh.ID, logistics.StatusInput{Status: models.ShipmentDelivered})
	require.NoError(t, err)
	require.NotNil(t, got.ActualDelivery)

	list, err := svc.List(ctx, sh.PONumber)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ShipmentDelivered, list[0].Status)
	assert.NotNil(t, list[0].ActualDelivery)

	_, err = svc.UpdateStatus(ctx, dbtest.NovaUser, sh.ID, logistics.StatusInput{Status: models.ShipmentCancelled})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.UpdateStatus(ctx, dbtest.NovaUser, sh.ID, logistics.StatusInput{Status: "Lost"})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	_, err = svc.UpdateStatus(ctx, dbtest.NovaUser, "missing", logistics.StatusInput{Status: models.ShipmentInTransit})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCanMove(t *testing.T) {
	assert.True(t, logistics.CanMove(models.ShipmentPending, models.ShipmentCancelled))
	assert.True(t, logistics.CanMove(models.ShipmentInTransit, models.ShipmentInTransit))
	assert.False(t, logistics.CanMove(models.ShipmentCancelled, models.ShipmentPending))
	assert.False(t, logistics.CanMove(models.ShipmentDelivered, models.ShipmentInTransit))
}

func TestDeleteShipment(t *testing.T) {
	svc, sh := newShipment(t)
	ctx := context.Background()

	assert.True(t, errors.Is(svc.Delete(ctx, dbtest.NovaUser, sh.ID), apperr.ErrForbidden))
	require.NoError(t, svc.Delete(ctx, dbtest.Admin, sh.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, dbtest.Admin, sh.ID), apperr.ErrNotFound))
}
