//go:build integration

package redisdoc

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/storetest"
)

// Запуск: TEST_REDIS_ADDR="localhost:6379" \
//   go test -tags integration ./internal/infra/storage/redisdoc/...
func openTestClient(t *testing.T) (*redis.Client, string) {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())

	// Уникальный префикс изолирует тестовый прогон
	prefix := "availtest:" + uuid.NewString()

	t.Cleanup(func() {
		ctx := context.Background()
		iter := rdb.Scan(ctx, 0, prefix+":*", 0).Iterator()
		for iter.Next(ctx) {
			_ = rdb.Del(ctx, iter.Val()).Err()
		}
		_ = rdb.Close()
	})

	return rdb, prefix
}

func TestSlotStore_Contract(t *testing.T) {
	rdb, prefix := openTestClient(t)

	storetest.RunSlotStoreSuite(t, func(t *testing.T) storage.SlotStore {
		return NewSlotStore(rdb, WithPrefix(prefix))
	})
}

func TestBookingStore_Contract(t *testing.T) {
	rdb, prefix := openTestClient(t)

	storetest.RunBookingStoreSuite(t, func(t *testing.T) storage.BookingStore {
		return NewBookingStore(rdb, WithPrefix(prefix))
	})
}
