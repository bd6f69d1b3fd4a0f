package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionEventRoundTrip(t *testing.T) {
	event := NewTransactionEvent(ActionCreated, 42, 7)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Second)

	body, err := event.ToJSON()
	require.NoError(t, err)

	decoded, err := TransactionEventFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, decoded.Action)
	assert.Equal(t, int64(42), decoded.ID)
	assert.Equal(t, int64(7), decoded.LedgerID)
}

func TestTransactionEventFromInvalidJSON(t *testing.T) {
	_, err := TransactionEventFromJSON([]byte("{not json"))
	assert.Error(t, err)
}
