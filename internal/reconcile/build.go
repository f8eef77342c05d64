package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
)

func keyed(id *string) bool {
	return id != nil && *id != ""
}

func keyedTo(id *string, line string) bool {
	return line != "" && id != nil && *id == line
}

// Build produces one row per PO line, or a single placeholder row for a PO
// without lines. A record that carries a line item ID is linked to that line
// only; unkeyed records are linked by the first-match rules below.
func Build(src Sources) []Row {
	var internal, external []*models.Payment
	for i := range src.Payments {
		p := &src.Payments[i]
		if p.IsExternal() {
			external = append(external, p)
		} else {
			internal = append(internal, p)
		}
	}

	rows := make([]Row, 0, len(src.PurchaseOrders))
	sl := 1
	for i := range src.PurchaseOrders {
		po := &src.PurchaseOrders[i]
		items := po.Items
		if len(items) == 0 {
			items = []models.POLineItem{{}}
		}
		for j := range items {
			line := &items[j]
			row := lineRow(po, line)
			row.SlNo = sl
			sl++

			proc, m := findProcurement(src.Procurement, po.PONumber, line)
			row.Match.Procurement = m
			setProcurement(&row, line, proc)

			pay, m := findPayment(internal, po.PONumber, line.ID)
			row.Match.InternalPayment = m
			setInternal(&row, pay)

			pay, m = findPayment(external, po.PONumber, line.ID)
			row.Match.ExternalPayment = m
			setExternal(&row, pay)

			sh, m := findShipment(src.Shipments, po.PONumber, line)
			row.Match.Shipment = m
			setShipment(&row, sh)

			inv, m := findInventory(src.Inventory, proc, line)
			row.Match.Inventory = m
			setInventory(&row, inv)

			rows = append(rows, row)
		}
	}
	return rows
}

func lineRow(po *models.PurchaseOrder, line *models.POLineItem) Row {
	return Row{
		LineItemID:     line.ID,
		POID:           po.PONumber,
		PODate:         day(po.PODate),
		PurchaseOffice: po.PurchaseOffice,
		Vendor:         line.Vendor,
		Location:       line.Location,
		Brand:          line.Brand,
		Model:          line.Model,
		Storage:        textPtr(line.Storage),
		Colour:         textPtr(line.Colour),
		Qty:            line.Qty,
		Rate:           line.Rate,
		POValue:        line.POValue,
		POStatus:       string(po.ApprovalStatus),
	}
}

// findProcurement: the record keyed to the line, else the first unkeyed record
// of the PO whose vendor equals the line vendor or whose device model contains
// the line model.
func findProcurement(recs []models.ProcurementRecord, po string, line *models.POLineItem) (*models.ProcurementRecord, MatchKind) {
	for i := range recs {
		if keyedTo(recs[i].LineItemID, line.ID) {
			return &recs[i], MatchExact
		}
	}
	for i := range recs {
		r := &recs[i]
		if r.PONumber != po || keyed(r.LineItemID) {
			continue
		}
		if r.VendorName == line.Vendor || strings.Contains(r.DeviceModel, line.Model) {
			return r, MatchFuzzy
		}
	}
	return nil, MatchNone
}

// findPayment: the payment keyed to the line, else the first unkeyed payment of the PO.
func findPayment(pays []*models.Payment, po, line string) (*models.Payment, MatchKind) {
	for _, p := range pays {
		if keyedTo(p.LineItemID, line) {
			return p, MatchExact
		}
	}
	for _, p := range pays {
		if p.PONumber == po && !keyed(p.LineItemID) {
			return p, MatchFuzzy
		}
	}
	return nil, MatchNone
}

// findShipment: the shipment keyed to the line, else the first unkeyed
// shipment of the PO whose vendor or pickup location matches the line.
func findShipment(shs []models.Shipment, po string, line *models.POLineItem) (*models.Shipment, MatchKind) {
	for i := range shs {
		if keyedTo(shs[i].LineItemID, line.ID) {
			return &shs[i], MatchExact
		}
	}
	for i := range shs {
		s := &shs[i]
		if s.PONumber != po || keyed(s.LineItemID) {
			continue
		}
		if (s.Vendor != nil && *s.Vendor == line.Vendor) || s.FromLocation == line.Location {
			return s, MatchFuzzy
		}
	}
	return nil, MatchNone
}

// findInventory: the row created from the linked procurement record, else the
// first row with no procurement link whose device model names the line brand or model.
func findInventory(items []models.InventoryItem, proc *models.ProcurementRecord, line *models.POLineItem) (*models.InventoryItem, MatchKind) {
	if proc != nil {
		for i := range items {
			if keyedTo(items[i].ProcurementID, proc.ID) || items[i].IMEI == proc.IMEI {
				return &items[i], MatchExact
			}
		}
	}
	for i := range items {
		it := &items[i]
		if keyed(it.ProcurementID) || it.DeviceModel == nil {
			continue
		}
		if (line.Brand != "" && strings.Contains(*it.DeviceModel, line.Brand)) ||
			(line.Model != "" && strings.Contains(*it.DeviceModel, line.Model)) {
			return it, MatchFuzzy
		}
	}
	return nil, MatchNone
}

func setProcurement(row *Row, line *models.POLineItem, p *models.ProcurementRecord) {
	row.IMEI = Missing
	row.GRNNo = Missing
	if line.IMEI != nil && *line.IMEI != "" {
		row.IMEI = *line.IMEI
	}
	if p == nil {
		return
	}
	if row.IMEI == Missing {
		row.IMEI = text(p.IMEI)
	}
	row.GRNNo = models.ShortID(p.ID)
}

func setInternal(row *Row, p *models.Payment) {
	row.PaymentNo, row.BankAccount, row.IFSCCode, row.PaymentDate, row.UTRNo = Missing, Missing, Missing, Missing, Missing
	if p == nil {
		return
	}
	row.internalPaymentID = p.ID
	row.PaymentNo = models.ShortID(p.ID)
	row.BankAccount = firstText(p.PayeeAccount, p.AccountNumber)
	row.IFSCCode = firstText(p.IFSCCode, p.PayeeBank)
	row.PaymentDate = day(p.PaymentDate)
	row.UTRNo = firstText(p.TransactionRef, p.UTRNumber)
	row.PaymentAmount = p.Amount
}

func setExternal(row *Row, p *models.Payment) {
	row.ExtPaymentNo, row.ExtPayeeName, row.ExtPayeeType, row.ExtBankAccount = Missing, Missing, Missing, Missing
	row.ExtPaymentDate, row.ExtUTRNo = Missing, Missing
	if p == nil {
		return
	}
	row.ExtPaymentNo = models.ShortID(p.ID)
	row.ExtPayeeName = text(p.PayeeName)
	if p.PayeeType != nil {
		row.ExtPayeeType = text(string(*p.PayeeType))
	}
	row.ExtBankAccount = firstText(p.AccountNumber, p.PayeeAccount)
	row.ExtPaymentDate = day(p.PaymentDate)
	row.ExtUTRNo = firstText(p.UTRNumber, p.TransactionRef)
	row.ExtPaymentAmount = p.Amount
}

func setShipment(row *Row, s *models.Shipment) {
	row.CourierName, row.DispatchDate, row.PODNumber, row.ShipmentStatus = Missing, Missing, Missing, Missing
	if s == nil {
		return
	}
	row.CourierName = text(s.TransporterName)
	row.DispatchDate = day(s.PickupDate)
	row.PODNumber = models.ShortID(s.ID)
	row.ShipmentStatus = text(string(s.Status))
}

func setInventory(row *Row, it *models.InventoryItem) {
	row.StockReceivedDate, row.Warehouse, row.StockStatus = Missing, Missing, Missing
	if it == nil {
		return
	}
	row.StockReceivedDate = day(it.CreatedAt)
	row.ReceivedQty = 1
	row.Warehouse = text(it.CurrentLocation)
	row.StockStatus = text(string(it.Status))
}

// Filter keeps rows whose PO, vendor, brand, model, IMEI or location contains
// search (case-insensitive) and, when po is set, rows of that PO only.
func Filter(rows []Row, search, po string) []Row {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if po != "" && po != "all" && r.POID != po {
			continue
		}
		if term != "" && !r.contains(term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (r *Row) contains(term string) bool {
	for _, f := range []string{r.POID, r.Vendor, r.Brand, r.Model, r.IMEI, r.Location} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Summary totals a set of report rows
type Summary struct {
	Rows              int     `json:"rows"`
	TotalQuantity     int     `json:"total_quantity"`
	TotalPOValue      float64 `json:"total_po_value"`
	TotalInternalPaid float64 `json:"total_internal_paid"`
}

// Summarize totals quantity and value over rows. A PO-level internal payment
// repeated on several lines is counted once.
func Summarize(rows []Row) Summary {
	s := Summary{Rows: len(rows)}
	value, paid := decimal.Zero, decimal.Zero
	seen := make(map[string]bool)
	for _, r := range rows {
		s.TotalQuantity += r.Qty
		value = value.Add(decimal.NewFromFloat(r.POValue))
		if r.internalPaymentID == "" || seen[r.internalPaymentID] {
			continue
		}
		seen[r.internalPaymentID] = true
		paid = paid.Add(decimal.NewFromFloat(r.PaymentAmount))
	}
	s.TotalPOValue = value.Round(money.Places).InexactFloat64()
	s.TotalInternalPaid = paid.Round(money.Places).InexactFloat64()
	return s
}

// UniquePOs lists the PO numbers present in rows in first-seen order.
func UniquePOs(rows []Row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if r.POID == "" || seen[r.POID] {
			continue
		}
		seen[r.POID] = true
		out = append(out, r.POID)
	}
	return out
}
