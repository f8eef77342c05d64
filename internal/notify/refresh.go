package notify

import "time"

// DataType is a collection clients cache and refetch
type DataType string

const (
	PurchaseOrders DataType = "purchaseOrders"
	Procurement    DataType = "procurement"
	Payments       DataType = "payments"
	Logistics      DataType = "logistics"
	Inventory      DataType = "inventory"
	Invoices       DataType = "invoices"
	SalesOrders    DataType = "salesOrders"
	Dashboard      DataType = "dashboard"
	Reports        DataType = "reports"
)

// DataTypes lists every refreshable collection.
var DataTypes = []DataType{PurchaseOrders, Procurement, Payments, Logistics, Inventory, Invoices, SalesOrders, Dashboard, Reports}

// Change names the kind of write that happened
type Change string

const (
	POChange          Change = "po"
	ProcurementChange Change = "procurement"
	PaymentChange     Change = "payment"
	LogisticsChange   Change = "logistics"
	InventoryChange   Change = "inventory"
	InvoiceChange     Change = "invoice"
	SalesChange       Change = "sales"
)

// refreshGroups maps a write to the collections it invalidates.
var refreshGroups = map[Change][]DataType{
	POChange:          DataTypes,
	ProcurementChange: {Procurement, Inventory, Dashboard, Reports, Logistics},
	PaymentChange:     {Payments, Dashboard, Reports},
	LogisticsChange:   {Logistics, Dashboard, Reports},
	InventoryChange:   {Inventory, Dashboard, Reports},
	InvoiceChange:     {Invoices, Dashboard, Reports},
	SalesChange:       {SalesOrders, Inventory, Dashboard, Reports},
}

// Group returns the collections a change invalidates.
func Group(c Change) []DataType {
	return refreshGroups[c]
}

func (d DataType) known() bool {
	for _, dt := range DataTypes {
		if dt == d {
			return true
		}
	}
	return false
}

// TriggerRefresh stamps the given collections with the current time.
// Unknown types are ignored.
func (b *Bus) TriggerRefresh(types ...DataType) map[DataType]time.Time {
	now := b.now()
	stamped := make(map[DataType]time.Time, len(types))

	b.mu.Lock()
	for _, t := range types {
		if !t.known() {
			continue
		}
		b.refreshed[t] = now
		stamped[t] = now
	}
	b.mu.Unlock()

	if len(stamped) > 0 {
		b.emit(Event{Type: EventRefresh, Refreshed: stamped})
	}
	return stamped
}

// TriggerGlobalRefresh stamps every collection, used after cascade deletes.
func (b *Bus) TriggerGlobalRefresh() map[DataType]time.Time {
	return b.TriggerRefresh(DataTypes...)
}

// RefreshAfter stamps the collections a change invalidates.
func (b *Bus) RefreshAfter(c Change) map[DataType]time.Time {
	return b.TriggerRefresh(Group(c)...)
}

// Refreshed returns a snapshot of the last refresh stamps.
func (b *Bus) Refreshed() map[DataType]time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[DataType]time.Time, len(b.refreshed))
	for k, v := range b.refreshed {
		out[k] = v
	}
	return out
}
