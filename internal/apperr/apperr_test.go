package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, Status(NotFound("PO %s not found", "PO-MAG-00001")))
	assert.Equal(t, http.StatusForbidden, Status(Forbidden("only Magnova")))
	assert.Equal(t, http.StatusConflict, Status(Conflict("IMEI already procured")))
	assert.Equal(t, http.StatusBadRequest, Status(Invalid("bad action")))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("boom")))

	wrapped := fmt.Errorf("approve: %w", Conflict("PO is not pending"))
	assert.Equal(t, http.StatusConflict, Status(wrapped))
	assert.True(t, errors.Is(wrapped, ErrConflict))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "PO X not found", Message(fmt.Errorf("get: %w", NotFound("PO %s not found", "X"))))
	assert.Equal(t, "Internal server error", Message(errors.New("pq: connection refused")))
}
