package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/database/dbtest"
	"github.com/xelth-com/tradetrack/internal/models"
)

func TestNextNumber(t *testing.T) {
	db := dbtest.Open(t)

	n, err := database.NextNumber(db.DB, "purchase_orders", "po_number", "PO-MAG-", 5)
	require.NoError(t, err)
	assert.Equal(t, "PO-MAG-00001", n)

	require.NoError(t, db.Create(&models.PurchaseOrder{PONumber: "PO-MAG-00001"}).Error)
	require.NoError(t, db.Create(&models.PurchaseOrder{PONumber: "PO-MAG-00007"}).Error)

	n, err = database.NextNumber(db.DB, "purchase_orders", "po_number", "PO-MAG-", 5)
	require.NoError(t, err)
	assert.Equal(t, "PO-MAG-00008", n)

	n, err = database.NextNumber(db.DB, "invoices", "invoice_number", "INV-", 6)
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", n)
}
