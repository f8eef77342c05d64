package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPath(t *testing.T) {
	s := StateCreated
	steps := []struct {
		ev   Event
		want State
	}{
		{EventSubmitted, StateAwaitingInternalPayment},
		{EventInternalPaid, StateAwaitingExternalPayment},
		{EventInternalPaid, StateAwaitingExternalPayment},
		{EventExternalPaid, StateProcuring},
		{EventProcured, StateProcuring},
		{EventClosed, StateFulfilled},
		{EventProcured, StateFulfilled},
	}
	for _, st := range steps {
		next, err := Next(s, st.ev)
		require.NoError(t, err, "%s on %s", st.ev, s)
		assert.Equal(t, st.want, next)
		s = next
	}
}

func TestIllegalTransitions(t *testing.T) {
	cases := []struct {
		from State
		ev   Event
	}{
		{StateCreated, EventInternalPaid},
		{StateAwaitingInternalPayment, EventExternalPaid},
		{StateAwaitingInternalPayment, EventClosed},
		{StateAwaitingExternalPayment, EventProcured},
		{StateProcuring, EventSubmitted},
		{StateFulfilled, EventClosed},
	}
	for _, c := range cases {
		got, err := Next(c.from, c.ev)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIllegalTransition))
		assert.Equal(t, c.from, got, "state must not move on a rejected event")
	}
}

func TestEmptyStateIsCreated(t *testing.T) {
	next, err := Next("", EventSubmitted)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingInternalPayment, next)
}

func TestAllowed(t *testing.T) {
	assert.Equal(t, []Event{EventSubmitted}, Allowed(StateCreated))
	assert.Equal(t, []Event{EventInternalPaid, EventExternalPaid, EventProcured, EventClosed}, Allowed(StateProcuring))
	assert.True(t, Valid(StateFulfilled))
	assert.False(t, Valid("Shipped"))
}
