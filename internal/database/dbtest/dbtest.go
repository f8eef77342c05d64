// Package dbtest opens an isolated in-memory SQLite database with the full
// schema migrated, for service and handler tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated database private to t.
func Open(t testing.TB) *database.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// One connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database.Wrap(db)
}

// Actors used across service tests.
var (
	MagnovaUser = models.Actor{UserID: "u-mag", Name: "Mira Buyer", Email: "buyer@magnova.test", Organization: models.OrgMagnova, Role: models.RoleUser}
	NovaUser    = models.Actor{UserID: "u-nova", Name: "Nilesh Stores", Email: "stores@nova.test", Organization: models.OrgNova, Role: models.RoleUser}
	Approver    = models.Actor{UserID: "u-appr", Name: "Asha Approver", Email: "approver@magnova.test", Organization: models.OrgMagnova, Role: models.RoleApprover}
	Admin       = models.Actor{UserID: "u-admin", Name: "Root Admin", Email: "admin@magnova.test", Organization: models.OrgMagnova, Role: models.RoleAdmin}
)
