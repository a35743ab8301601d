package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient replaces the redis instance with a custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// FirstDelivery reports whether a webhook event id is seen for the first
// time, using SETNX with a TTL. This is a best-effort duplicate filter; the
// ledger's unique external-payment-id constraint stays authoritative, so on
// any cache error the event is processed anyway.
func FirstDelivery(ctx context.Context, eventId string) bool {
	rdb := GetRedisClient()
	if rdb == nil {
		return true
	}
	key := fmt.Sprintf("webhook:event:%s", eventId)
	ok, err := rdb.SetNX(ctx, key, 1, 24*time.Hour).Result()
	if err != nil {
		log.Printf("[redis] Error deduplicating event %s: %s\n", eventId, err.Error())
		return true
	}
	return ok
}

// ForgetDelivery drops an event's dedup marker after processing fails, so
// the processor's redelivery is handled instead of acknowledged away.
func ForgetDelivery(ctx context.Context, eventId string) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	key := fmt.Sprintf("webhook:event:%s", eventId)
	if err := rdb.Del(ctx, key).Err(); err != nil {
		log.Printf("[redis] Error releasing event %s: %s\n", eventId, err.Error())
	}
}
