package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xelth-com/tradetrack/internal/database/dbtest"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/services/audit"
)

func TestRecordAndList(t *testing.T) {
	db := dbtest.Open(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := audit.Record(tx, dbtest.MagnovaUser, audit.ActionCreate, "purchase_order", "PO-MAG-00001", map[string]interface{}{"total_value": 350}); err != nil {
			return err
		}
		return audit.Record(tx, dbtest.NovaUser, audit.ActionScan, "inventory", "356789012345678", nil)
	})
	require.NoError(t, err)

	// A later entry so ordering does not depend on clock resolution
	later := models.AuditLog{Action: audit.ActionApprove, EntityType: "purchase_order", EntityID: "PO-MAG-00001", UserID: dbtest.Approver.UserID, Timestamp: time.Now().UTC().Add(time.Minute)}
	require.NoError(t, db.Create(&later).Error)

	svc := audit.NewService(db)
	logs, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, audit.ActionApprove, logs[0].Action)

	logs, err = svc.List(context.Background(), "purchase_order")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, "purchase_order", l.EntityType)
	}

	logs, err = svc.List(context.Background(), "inventory")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Nilesh Stores", logs[0].UserName)
	assert.NotNil(t, logs[0].Details)
}

func TestRecordRollsBackWithCaller(t *testing.T) {
	db := dbtest.Open(t)

	_ = db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, audit.Record(tx, dbtest.Admin, audit.ActionDelete, "payment", "p-1", nil))
		return gorm.ErrInvalidTransaction
	})

	var n int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&n).Error)
	assert.Zero(t, n)
}
