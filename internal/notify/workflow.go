package notify

// Prefill carries the fields a client uses to open the next creation form.
type Prefill map[string]interface{}

// POCreated queues the internal payment step for a new purchase order.
func (b *Bus) POCreated(po string, prefill Prefill) {
	b.Push(Notification{Topic: InternalPaymentPending, PONumber: po, Prefill: prefill})
	b.RefreshAfter(POChange)
}

// InternalPaymentRecorded moves a PO from the internal to the external payment queue.
func (b *Bus) InternalPaymentRecorded(po string, prefill Prefill) {
	b.Clear(InternalPaymentPending, po, "")
	b.Push(Notification{Topic: ExternalPaymentPending, PONumber: po, Prefill: prefill})
	b.RefreshAfter(PaymentChange)
}

// ExternalPaymentRecorded moves a PO from the external payment queue to procurement.
func (b *Bus) ExternalPaymentRecorded(po string, prefill Prefill) {
	b.Clear(ExternalPaymentPending, po, "")
	b.Push(Notification{Topic: ProcurementPending, PONumber: po, Prefill: prefill})
	b.RefreshAfter(PaymentChange)
}

// ProcurementRecorded drops the procurement reminder for the device and the
// PO-level reminder queued by the external payment.
func (b *Bus) ProcurementRecorded(po, imei string) {
	if imei != "" {
		b.Clear(ProcurementPending, po, imei)
	}
	b.Clear(ProcurementPending, po, "")
	b.RefreshAfter(ProcurementChange)
}

// PODeleted forgets every reminder for a purchase order.
func (b *Bus) PODeleted(po string) {
	for _, t := range Topics {
		for _, n := range b.Pending(t) {
			if n.PONumber == po {
				b.Clear(t, n.PONumber, n.IMEI)
			}
		}
	}
	b.TriggerGlobalRefresh()
}
