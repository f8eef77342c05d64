package reconcile

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xelth-com/tradetrack/internal/models"
)

func ptr(s string) *string { return &s }

func samplePO() models.PurchaseOrder {
	po := models.PurchaseOrder{
		ID:             "po-1",
		PONumber:       "PO-MAG-00001",
		PODate:         time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PurchaseOffice: "Magnova Head Office",
		ApprovalStatus: models.ApprovalPending,
		Items: []models.POLineItem{
			{ID: "line-1", POID: "po-1", SlNo: 1, Vendor: "Sri Mobiles", Location: "Hyderabad", Brand: "Apple", Model: "iPhone 15", Qty: 3, Rate: 100},
			{ID: "line-2", POID: "po-1", SlNo: 2, Vendor: "Kiran Traders", Location: "Chennai", Brand: "Samsung", Model: "S24", Qty: 1, Rate: 50},
		},
	}
	po.Recalculate()
	return po
}

func TestBuildScenarioTotals(t *testing.T) {
	rows := Build(Sources{PurchaseOrders: []models.PurchaseOrder{samplePO()}})
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].SlNo)
	assert.Equal(t, 2, rows[1].SlNo)
	assert.Equal(t, 300.0, rows[0].POValue)
	assert.Equal(t, 50.0, rows[1].POValue)
	assert.Equal(t, "2025-03-01", rows[0].PODate)
	assert.Equal(t, Missing, rows[0].IMEI)
	assert.Equal(t, Missing, rows[0].GRNNo)
	assert.Equal(t, MatchNone, rows[0].Match.Procurement)

	sum := Summarize(rows)
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, 4, sum.TotalQuantity)
	assert.Equal(t, 350.0, sum.TotalPOValue)
}

func TestBuildRowCountWithPlaceholder(t *testing.T) {
	empty := models.PurchaseOrder{ID: "po-2", PONumber: "PO-MAG-00002", ApprovalStatus: models.ApprovalApproved}
	rows := Build(Sources{PurchaseOrders: []models.PurchaseOrder{samplePO(), empty}})

	require.Len(t, rows, 3)
	placeholder := rows[2]
	assert.Equal(t, 3, placeholder.SlNo)
	assert.Equal(t, "PO-MAG-00002", placeholder.POID)
	assert.Empty(t, placeholder.LineItemID)
	assert.Equal(t, "Approved", placeholder.POStatus)
	assert.Equal(t, Missing, placeholder.PODate)
}

func TestBuildFuzzyLinksLegacyRecords(t *testing.T) {
	src := Sources{
		PurchaseOrders: []models.PurchaseOrder{samplePO()},
		Procurement: []models.ProcurementRecord{
			{ID: "proc-aaaa-1111", PONumber: "PO-MAG-00001", VendorName: "Other", DeviceModel: "Samsung S24 Ultra", IMEI: "222"},
		},
		Payments: []models.Payment{
			{ID: "pay-int-0001", PONumber: "PO-MAG-00001", Amount: 350, TransactionRef: ptr("UTR1")},
			{ID: "pay-ext-0001", PONumber: "PO-MAG-00001", PaymentType: models.PaymentExternal, PayeeName: "Sri Mobiles", Amount: 300},
			{ID: "pay-oth-0001", PONumber: "PO-MAG-00009", PaymentType: models.PaymentInternal, Amount: 1},
		},
		Shipments: []models.Shipment{
			{ID: "ship-0000-1", PONumber: "PO-MAG-00001", FromLocation: "Hyderabad", TransporterName: "Blue Dart", Status: models.ShipmentInTransit},
		},
		Inventory: []models.InventoryItem{
			{IMEI: "legacy-1", DeviceModel: ptr("Apple iPhone 15"), Status: models.InventoryAvailable, CurrentLocation: "Nova WH"},
		},
	}
	rows := Build(src)
	require.Len(t, rows, 2)

	// line 1: Apple, Sri Mobiles, Hyderabad
	assert.Equal(t, MatchNone, rows[0].Match.Procurement)
	assert.Equal(t, MatchFuzzy, rows[0].Match.InternalPayment)
	assert.Equal(t, "pay-int-", rows[0].PaymentNo)
	assert.Equal(t, "UTR1", rows[0].UTRNo)
	assert.Equal(t, 350.0, rows[0].PaymentAmount)
	assert.Equal(t, "Sri Mobiles", rows[0].ExtPayeeName)
	assert.Equal(t, "Blue Dart", rows[0].CourierName)
	assert.Equal(t, "ship-000", rows[0].PODNumber)
	assert.Equal(t, MatchFuzzy, rows[0].Match.Inventory)
	assert.Equal(t, 1, rows[0].ReceivedQty)
	assert.Equal(t, "Nova WH", rows[0].Warehouse)

	// line 2: model contained in the procurement device model
	assert.Equal(t, MatchFuzzy, rows[1].Match.Procurement)
	assert.Equal(t, "222", rows[1].IMEI)
	assert.Equal(t, "proc-aaa", rows[1].GRNNo)
	assert.Equal(t, MatchNone, rows[1].Match.Shipment)
	assert.Equal(t, MatchNone, rows[1].Match.Inventory)
	assert.Equal(t, 0, rows[1].ReceivedQty)

	// The PO-level payment shows on both lines but is counted once.
	assert.Equal(t, 350.0, Summarize(rows).TotalInternalPaid)
}

func TestBuildExactKeyWinsOverFuzzy(t *testing.T) {
	po := samplePO()
	po.Items[1].Vendor = "Sri Mobiles" // both lines now share a vendor

	src := Sources{
		PurchaseOrders: []models.PurchaseOrder{po},
		Procurement: []models.ProcurementRecord{
			{ID: "proc-keyed", PONumber: po.PONumber, LineItemID: ptr("line-2"), VendorName: "Sri Mobiles", DeviceModel: "Samsung S24", IMEI: "999"},
		},
		Payments: []models.Payment{
			{ID: "pay-keyed", PONumber: po.PONumber, LineItemID: ptr("line-2"), Amount: 50},
		},
		Shipments: []models.Shipment{
			{ID: "ship-keyed", PONumber: po.PONumber, LineItemID: ptr("line-2"), FromLocation: "Hyderabad"},
		},
		Inventory: []models.InventoryItem{
			{IMEI: "999", ProcurementID: ptr("proc-keyed"), DeviceModel: ptr("Apple iPhone 15"), Status: models.InventoryProcured},
		},
	}
	rows := Build(src)
	require.Len(t, rows, 2)

	// Line 1 would have matched every record by vendor or location.
	assert.Equal(t, MatchNone, rows[0].Match.Procurement)
	assert.Equal(t, MatchNone, rows[0].Match.InternalPayment)
	assert.Equal(t, MatchNone, rows[0].Match.Shipment)
	assert.Equal(t, MatchNone, rows[0].Match.Inventory)

	assert.Equal(t, MatchExact, rows[1].Match.Procurement)
	assert.Equal(t, "999", rows[1].IMEI)
	assert.Equal(t, MatchExact, rows[1].Match.InternalPayment)
	assert.Equal(t, MatchExact, rows[1].Match.Shipment)
	assert.Equal(t, MatchExact, rows[1].Match.Inventory)
	assert.Equal(t, "Procured", rows[1].StockStatus)
}

func TestFilterAndUniquePOs(t *testing.T) {
	second := samplePO()
	second.PONumber = "PO-MAG-00002"
	second.Items = second.Items[:1]
	rows := Build(Sources{PurchaseOrders: []models.PurchaseOrder{samplePO(), second}})
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"PO-MAG-00001", "PO-MAG-00002"}, UniquePOs(rows))
	assert.Len(t, Filter(rows, "samsung", ""), 1)
	assert.Len(t, Filter(rows, "CHENNAI", ""), 1)
	assert.Len(t, Filter(rows, "", "PO-MAG-00002"), 1)
	assert.Len(t, Filter(rows, "apple", "PO-MAG-00001"), 1)
	assert.Len(t, Filter(rows, "", "all"), 3)
	assert.Empty(t, Filter(rows, "nokia", ""))
}

func TestWriteCSV(t *testing.T) {
	po := samplePO()
	po.Items[0].Vendor = `Sri "Best", Mobiles`
	rows := Build(Sources{PurchaseOrders: []models.PurchaseOrder{po}})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, len(rows)+1)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Len(t, records[0], len(CSVHeaders))
	assert.Equal(t, `Sri "Best", Mobiles`, records[1][4])
	assert.Equal(t, "300", records[1][13])
}

func TestWriteXLSX(t *testing.T) {
	rows := Build(Sources{PurchaseOrders: []models.PurchaseOrder{samplePO()}})

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Master Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "PROCUREMENT (Magnova → Nova PO)", v)
	v, _ = f.GetCellValue("Master Report", "AG1")
	assert.Equal(t, "STORES", v)
	v, _ = f.GetCellValue("Master Report", "AJ2")
	assert.Equal(t, "Status", v)
	v, _ = f.GetCellValue("Master Report", "B3")
	assert.Equal(t, "PO-MAG-00001", v)
	v, _ = f.GetCellValue("Master Report", "G4")
	assert.Equal(t, "Samsung", v)
}

func TestWriteInventoryXLSX(t *testing.T) {
	items := []models.InventoryItem{{IMEI: "111", Brand: ptr("Apple"), Status: models.InventoryAvailable, Organization: models.OrgNova}}

	var buf bytes.Buffer
	require.NoError(t, WriteInventoryXLSX(&buf, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Inventory")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, InventoryHeaders, rows[0])
	assert.Equal(t, "111", rows[1][0])
	assert.Equal(t, "Available", rows[1][6])
}
