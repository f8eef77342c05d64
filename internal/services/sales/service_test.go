package sales_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/database/dbtest"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/services/sales"
)

func stock(t *testing.T, db *database.DB, imeis ...string) {
	t.Helper()
	for _, imei := range imeis {
		require.NoError(t, db.Create(&models.InventoryItem{IMEI: imei, Status: models.InventoryAvailable, Organization: models.OrgMagnova}).Error)
	}
}

func status(t *testing.T, db *database.DB, imei string) models.InventoryStatus {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, db.Where("imei = ?", imei).First(&item).Error)
	return item.Status
}

func order(imeis ...string) sales.OrderInput {
	return sales.OrderInput{CustomerName: "Reliance Digital", CustomerType: "Retail", TotalAmount: money.NewFlex(500), IMEIList: imeis}
}

func TestCreateReservesDevices(t *testing.T) {
	db := dbtest.Open(t)
	stock(t, db, "111", "222", "333")
	svc := sales.NewService(db, nil, nil)
	ctx := context.Background()

	so, err := svc.Create(ctx, dbtest.MagnovaUser, order("111", "222"))
	require.NoError(t, err)
	assert.Equal(t, "SO-MAG-00001", so.SONumber)
	assert.Equal(t, "Created", so.Status)
	assert.Equal(t, 2, so.TotalQuantity)

	assert.Equal(t, models.InventoryReserved, status(t, db, "111"))
	assert.Equal(t, models.InventoryReserved, status(t, db, "222"))
	assert.Equal(t, models.InventoryAvailable, status(t, db, "333"))

	// A reserved device cannot be sold twice, and nothing else is touched.
	_, err = svc.Create(ctx, dbtest.MagnovaUser, order("333", "111"))
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Equal(t, models.InventoryAvailable, status(t, db, "333"))

	_, err = svc.Create(ctx, dbtest.MagnovaUser, order("999"))
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	_, err = svc.Create(ctx, dbtest.NovaUser, order("333"))
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteReleasesReservation(t *testing.T) {
	db := dbtest.Open(t)
	stock(t, db, "111")
	svc := sales.NewService(db, nil, nil)
	ctx := context.Background()

	so, err := svc.Create(ctx, dbtest.MagnovaUser, order("111"))
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.Delete(ctx, dbtest.MagnovaUser, so.SONumber), apperr.ErrForbidden))
	require.NoError(t, svc.Delete(ctx, dbtest.Admin, so.SONumber))
	assert.Equal(t, models.InventoryAvailable, status(t, db, "111"))
	assert.True(t, errors.Is(svc.Delete(ctx, dbtest.Admin, so.SONumber), apperr.ErrNotFound))
}
