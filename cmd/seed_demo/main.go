package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xelth-com/tradetrack/internal/applog"
	"github.com/xelth-com/tradetrack/internal/config"
	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/services/inventory"
	"github.com/xelth-com/tradetrack/internal/services/invoicing"
	"github.com/xelth-com/tradetrack/internal/services/logistics"
	"github.com/xelth-com/tradetrack/internal/services/payments"
	"github.com/xelth-com/tradetrack/internal/services/purchasing"
	"github.com/xelth-com/tradetrack/internal/services/sales"
	"github.com/xelth-com/tradetrack/internal/utils"
)

const demoPassword = "demo1234"

var rule = strings.Repeat("=", 60)

func main() {
	fmt.Println("🌱 TradeTrack Demo Data Seeder")
	fmt.Println(rule)

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	logger, err := applog.New("warn", false)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")
	fmt.Println()

	// Check if data already exists
	var poCount int64
	db.Model(&models.PurchaseOrder{}).Count(&poCount)
	if poCount > 0 {
		fmt.Printf("⚠️  Database already has %d purchase orders. Clear it first? (y/N): ", poCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}
		fmt.Println("🗑️  Clearing existing data...")
		for _, table := range []string{"audit_logs", "sales_orders", "invoices", "logistics_shipments", "payments", "imei_inventory", "procurement", "po_line_items", "purchase_orders", "users"} {
			db.Exec("DELETE FROM " + table)
		}
		fmt.Println("✅ Data cleared")
	}

	// 1. Users
	fmt.Println("👤 Creating users...")
	users := []models.User{
		{Email: "admin@magnova.in", Name: "Magnova Admin", Organization: models.OrgMagnova, Role: models.RoleAdmin},
		{Email: "approver@magnova.in", Name: "Magnova Approver", Organization: models.OrgMagnova, Role: models.RoleApprover},
		{Email: "buyer@magnova.in", Name: "Magnova Buyer", Organization: models.OrgMagnova, Role: models.RoleUser},
		{Email: "stores@nova.in", Name: "Nova Stores", Organization: models.OrgNova, Role: models.RoleUser},
	}
	hash, err := utils.HashPassword(demoPassword)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	actors := make(map[string]models.Actor, len(users))
	for i := range users {
		users[i].Password = hash
		if err := db.Create(&users[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create user %s: %v", users[i].Email, err)
		}
		actors[users[i].Email] = models.ActorOf(&users[i])
		fmt.Printf("   ✓ %s (%s, %s)\n", users[i].Email, users[i].Organization, users[i].Role)
	}
	admin, approver := actors["admin@magnova.in"], actors["approver@magnova.in"]
	buyer, stores := actors["buyer@magnova.in"], actors["stores@nova.in"]
	fmt.Println()

	ctx := context.Background()
	ps := purchasing.NewService(db, nil, logger)
	pay := payments.NewService(db, nil, logger)
	inv := inventory.NewService(db, nil, logger)
	ship := logistics.NewService(db, nil, logger)
	bill := invoicing.NewService(db, nil, logger)
	sell := sales.NewService(db, nil, logger)

	// 2. Purchase order
	fmt.Println("📄 Raising purchase order...")
	po, err := ps.CreatePO(ctx, buyer, purchasing.CreatePOInput{
		PurchaseOffice: "Magnova Head Office",
		Items: []purchasing.LineInput{
			{Vendor: "Sri Mobiles", Location: "Hyderabad", Brand: "Apple", Model: "iPhone 15", Storage: strPtr("128GB"), Colour: strPtr("Black"), Qty: money.NewFlex(3), Rate: money.NewFlex(65000)},
			{Vendor: "Kiran Traders", Location: "Chennai", Brand: "Samsung", Model: "Galaxy S24", Storage: strPtr("256GB"), Colour: strPtr("Violet"), Qty: money.NewFlex(1), Rate: money.NewFlex(72000)},
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to create PO: %v", err)
	}
	if _, err := ps.Approve(ctx, approver, po.PONumber, purchasing.ApprovalInput{Action: "approve"}); err != nil {
		log.Fatalf("❌ Failed to approve PO: %v", err)
	}
	fmt.Printf("   ✓ %s approved, value ₹%.2f\n\n", po.PONumber, po.TotalValue)

	// 3. Payments
	fmt.Println("💳 Recording payments...")
	if _, err := pay.CreateInternal(ctx, buyer, payments.InternalInput{
		PONumber: po.PONumber, PayeeName: "Nova Enterprises", PayeeAccount: strPtr("50200012345678"), PayeeBank: strPtr("HDFC0000123"),
		PaymentMode: "NEFT", Amount: money.NewFlex(po.TotalValue), TransactionRef: strPtr("NEFT2025000001"),
	}); err != nil {
		log.Fatalf("❌ Internal payment: %v", err)
	}
	vendorType := models.PayeeVendor
	for i, item := range po.Items {
		lineID := item.ID
		if _, err := pay.CreateExternal(ctx, stores, payments.ExternalInput{
			PONumber: po.PONumber, LineItemID: &lineID, PayeeType: &vendorType, PayeeName: item.Vendor,
			AccountNumber: strPtr(fmt.Sprintf("3090100%07d", i+1)), IFSCCode: strPtr("ICIC0001234"),
			PaymentMode: "RTGS", Amount: money.NewFlex(item.POValue), UTRNumber: strPtr(fmt.Sprintf("UTR2025%06d", i+1)),
		}); err != nil {
			log.Fatalf("❌ External payment: %v", err)
		}
	}
	fmt.Println("   ✓ 1 internal, 2 external")
	fmt.Println()

	// 4. Procurement, one device per unit
	fmt.Println("📱 Procuring devices...")
	var imeis []string
	serial := 356789012345670
	for _, item := range po.Items {
		lineID := item.ID
		for n := 0; n < item.Qty; n++ {
			serial++
			imei := fmt.Sprintf("%d", serial)
			if _, err := ps.CreateProcurement(ctx, stores, purchasing.ProcurementInput{
				PONumber: po.PONumber, LineItemID: &lineID, VendorName: item.Vendor, StoreLocation: item.Location,
				IMEI: imei, DeviceModel: item.Brand + " " + item.Model, PurchasePrice: money.NewFlex(item.Rate),
			}); err != nil {
				log.Fatalf("❌ Procurement %s: %v", imei, err)
			}
			imeis = append(imeis, imei)
			fmt.Printf("   ✓ %s %s %s\n", imei, item.Brand, item.Model)
		}
	}
	fmt.Println()

	// 5. Logistics
	fmt.Println("🚚 Booking shipment...")
	sh, err := ship.Create(ctx, stores, logistics.ShipmentInput{
		PONumber: po.PONumber, LineItemID: &po.Items[0].ID, TransporterName: "Blue Dart", VehicleNumber: "TS09AB1234",
		FromLocation: "Hyderabad", ToLocation: "Magnova Warehouse", PickupDate: time.Now().UTC(),
		ExpectedDelivery: time.Now().UTC().Add(72 * time.Hour), IMEIList: imeis[:3],
	})
	if err != nil {
		log.Fatalf("❌ Shipment: %v", err)
	}
	if _, err := ship.UpdateStatus(ctx, stores, sh.ID, logistics.StatusInput{Status: models.ShipmentInTransit}); err != nil {
		log.Fatalf("❌ Shipment status: %v", err)
	}
	fmt.Printf("   ✓ %d devices in transit\n\n", len(imeis[:3]))

	// 6. Stock movement
	fmt.Println("📦 Scanning stock...")
	for _, imei := range imeis {
		for _, action := range []string{inventory.ActionInwardNova, inventory.ActionOutwardNova, inventory.ActionInwardMagnova, inventory.ActionAvailable} {
			if _, err := inv.Scan(ctx, admin, inventory.ScanInput{IMEI: imei, Action: action, Location: "Magnova Warehouse"}); err != nil {
				log.Fatalf("❌ Scan %s %s: %v", imei, action, err)
			}
		}
	}
	fmt.Printf("   ✓ %d devices available at Magnova\n\n", len(imeis))

	// 7. Invoice and sale
	fmt.Println("🧾 Invoicing and selling...")
	if _, err := bill.Create(ctx, stores, invoicing.InvoiceInput{
		InvoiceType: "Nova to Magnova", PONumber: po.PONumber, FromOrganization: string(models.OrgNova),
		ToOrganization: string(models.OrgMagnova), Amount: money.NewFlex(po.TotalValue), IMEIList: imeis,
	}); err != nil {
		log.Fatalf("❌ Invoice: %v", err)
	}
	so, err := sell.Create(ctx, buyer, sales.OrderInput{
		CustomerName: "Metro Retail", CustomerType: "Retailer", TotalAmount: money.NewFlex(140000), IMEIList: imeis[:2],
	})
	if err != nil {
		log.Fatalf("❌ Sales order: %v", err)
	}
	fmt.Printf("   ✓ %s reserves %d devices\n", so.SONumber, len(so.IMEIList))

	// Summary
	fmt.Println()
	fmt.Println(rule)
	fmt.Println("🎉 Demo data created successfully!")
	fmt.Printf("   Log in as any of the users above with password %q\n", demoPassword)
	fmt.Println("🌐 Start the server:")
	fmt.Println("   go run ./cmd/api")
	fmt.Printf("   Then visit: http://localhost:%s\n", cfg.Port)
	fmt.Println(rule)
}

func strPtr(s string) *string {
	return &s
}
