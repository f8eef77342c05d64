// Package workflow is the purchase-order lifecycle owned by the backend:
// a PO is raised, paid internally (Magnova → Nova), paid externally (Nova → vendors),
// procured, and finally fulfilled once every ordered unit has been procured.
package workflow

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a purchase order.
type State string

const (
	StateCreated                 State = "Created"
	StateAwaitingInternalPayment State = "AwaitingInternalPayment"
	StateAwaitingExternalPayment State = "AwaitingExternalPayment"
	StateProcuring               State = "Procuring"
	StateFulfilled               State = "Fulfilled"
)

// Event moves a purchase order between states.
type Event string

const (
	EventSubmitted    Event = "Submitted"
	EventInternalPaid Event = "InternalPaid"
	EventExternalPaid Event = "ExternalPaid"
	EventProcured     Event = "Procured"
	EventClosed       Event = "Closed"
)

// ErrIllegalTransition is returned when an event is not accepted in the current state.
var ErrIllegalTransition = errors.New("illegal workflow transition")

type edge struct {
	from  State
	event Event
}

var transitions = map[edge]State{
	{StateCreated, EventSubmitted}: StateAwaitingInternalPayment,

	{StateAwaitingInternalPayment, EventInternalPaid}: StateAwaitingExternalPayment,

	{StateAwaitingExternalPayment, EventInternalPaid}: StateAwaitingExternalPayment,
	{StateAwaitingExternalPayment, EventExternalPaid}: StateProcuring,

	{StateProcuring, EventInternalPaid}: StateProcuring,
	{StateProcuring, EventExternalPaid}: StateProcuring,
	{StateProcuring, EventProcured}:     StateProcuring,
	{StateProcuring, EventClosed}:       StateFulfilled,

	{StateFulfilled, EventInternalPaid}: StateFulfilled,
	{StateFulfilled, EventExternalPaid}: StateFulfilled,
	{StateFulfilled, EventProcured}:     StateFulfilled,
}

// Next returns the state reached by applying ev in from.
func Next(from State, ev Event) (State, error) {
	if from == "" {
		from = StateCreated
	}
	to, ok := transitions[edge{from, ev}]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, ev, from)
	}
	return to, nil
}

// Can reports whether ev is accepted in from.
func Can(from State, ev Event) bool {
	_, err := Next(from, ev)
	return err == nil
}

// Allowed lists the events accepted in s, in a stable order.
func Allowed(s State) []Event {
	var out []Event
	for _, ev := range []Event{EventSubmitted, EventInternalPaid, EventExternalPaid, EventProcured, EventClosed} {
		if Can(s, ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Valid reports whether s is a known state.
func Valid(s State) bool {
	switch s {
	case StateCreated, StateAwaitingInternalPayment, StateAwaitingExternalPayment, StateProcuring, StateFulfilled:
		return true
	}
	return false
}
