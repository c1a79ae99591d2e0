package paymentqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfox/ShopFox/app/models"
	"github.com/shopfox/ShopFox/internal/pkg/payments"
)

func TestEnqueueCreatesPendingEvent(t *testing.T) {
	queue := newFakeQueueRepo()
	enq := NewEnqueuer(queue)

	event, created, err := enq.Enqueue("pay-1", payments.EventTypePayment, []byte(`{"id":"pay-1"}`))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, event.ID)
	assert.Equal(t, models.QueueStatusPending, event.Status)
	assert.Equal(t, models.DefaultMaxRetries, event.MaxRetries)
	assert.Equal(t, 0, event.RetryCount)
	assert.False(t, event.NextRetryAt.IsZero())
}

func TestEnqueueDuplicateReturnsExistingEvent(t *testing.T) {
	queue := newFakeQueueRepo()
	enq := NewEnqueuer(queue)

	first, created, err := enq.Enqueue("pay-1", payments.EventTypePayment, []byte(`{"id":"pay-1"}`))
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := enq.Enqueue("pay-1", payments.EventTypePayment, []byte(`{"id":"pay-1","attempt":2}`))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	// The original payload wins, the redelivered body is discarded.
	assert.Equal(t, first.Payload, second.Payload)
	assert.Len(t, queue.events, 1)
}

func TestEnqueueDistinctEventTypesAreSeparate(t *testing.T) {
	queue := newFakeQueueRepo()
	enq := NewEnqueuer(queue)

	_, created, err := enq.Enqueue("pay-1", payments.EventTypePayment, []byte(`{}`))
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = enq.Enqueue("pay-1", "chargeback", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, queue.events, 2)
}
