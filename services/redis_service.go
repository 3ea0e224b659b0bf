package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Hàm lấy data từ Redis
func GetFromRedis(ctx context.Context, rdb *redis.Client, key string, target interface{}) error {
	cachedData, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	// Parse JSON thành object
	if err := json.Unmarshal([]byte(cachedData), target); err != nil {
		return err
	}
	return nil
}

// Hàm lưu dữ liệu vào Redis
func SetToRedis(ctx context.Context, rdb *redis.Client, key string, value interface{}, ttl time.Duration) error {
	dataJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if err := rdb.Set(ctx, key, dataJSON, ttl).Err(); err != nil {
		return err
	}
	return nil
}

// Hàm xóa cache Redis
func DeleteFromRedis(ctx context.Context, rdb *redis.Client, key string) error {
	if err := rdb.Del(ctx, key).Err(); err != nil {
		return err
	}
	return nil
}

// AcquireRunLock giữ lock cho một lượt đối soát, tránh hai run của cùng
// provider chạy chồng lên nhau. Trả về false nếu lock đang bị giữ.
func AcquireRunLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
}

// ReleaseRunLock nhả lock sau khi run kết thúc
func ReleaseRunLock(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}

// ReconcileLockKey khóa run lock của một provider, cron và trigger thủ công
// phải dùng chung một key
func ReconcileLockKey(provider string) string {
	return "reconcile_lock:" + provider
}

// RunLock giữ và nhả lock cho một lượt đối soát
type RunLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisRunLock implement RunLock trên Redis SetNX
type RedisRunLock struct {
	rdb *redis.Client
}

func NewRedisRunLock(rdb *redis.Client) *RedisRunLock {
	return &RedisRunLock{rdb: rdb}
}

func (l *RedisRunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return AcquireRunLock(ctx, l.rdb, key, ttl)
}

func (l *RedisRunLock) Release(ctx context.Context, key string) error {
	return ReleaseRunLock(ctx, l.rdb, key)
}
