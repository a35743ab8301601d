package lib

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestWebhookEventDedup(t *testing.T) {
	client, mock := redismock.NewClientMock()
	NewRedisClient(client)
	defer NewRedisClient(nil)

	ctx := context.Background()
	key := "webhook:event:evt_1Mr7f2LkdIwHu7ixlYz5gKfV"

	mock.ExpectSetNX(key, 1, 24*time.Hour).SetVal(true)
	assert.True(t, FirstDelivery(ctx, "evt_1Mr7f2LkdIwHu7ixlYz5gKfV"))

	mock.ExpectSetNX(key, 1, 24*time.Hour).SetVal(false)
	assert.False(t, FirstDelivery(ctx, "evt_1Mr7f2LkdIwHu7ixlYz5gKfV"))

	// a failed reconciliation releases the marker, so the processor's
	// redelivery of the same event is handled again
	mock.ExpectDel(key).SetVal(1)
	ForgetDelivery(ctx, "evt_1Mr7f2LkdIwHu7ixlYz5gKfV")

	mock.ExpectSetNX(key, 1, 24*time.Hour).SetVal(true)
	assert.True(t, FirstDelivery(ctx, "evt_1Mr7f2LkdIwHu7ixlYz5gKfV"))

	assert.Nil(t, mock.ExpectationsWereMet())
}

// The filter is best-effort: a cache failure processes the event rather
// than dropping it, since posting is idempotent anyway.
func TestWebhookEventDedupCacheError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	NewRedisClient(client)
	defer NewRedisClient(nil)

	mock.ExpectSetNX("webhook:event:evt_down", 1, 24*time.Hour).SetErr(errors.New("connection refused"))
	assert.True(t, FirstDelivery(context.Background(), "evt_down"))
	assert.Nil(t, mock.ExpectationsWereMet())
}
