package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key layout
const (
	onlineUsersKey  = "chat:presence:online"
	lastSeenKey     = "chat:presence:last_seen"
	rateLimitPrefix = "chat:rate_limit:"
)

// RedisClient wraps the redis.Client with centralized connection pooling
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates and initializes a Redis client with connection pooling
func NewRedisClient(host string, port int, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 6379
	}

	addr := fmt.Sprintf("%s:%d", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorWithFields("Failed to connect to Redis", err)
		_ = client.Close()
		return nil, err
	}

	logger.Log.Info("Redis client connected", zap.String("address", addr))
	return &RedisClient{client: client}, nil
}

// NewFromClient wraps an existing client
func NewFromClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// Close closes the Redis connection gracefully
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Ping tests the Redis connection
func (rc *RedisClient) Ping(ctx context.Context) error {
	start := time.Now()
	err := rc.client.Ping(ctx).Err()
	metrics.RecordRedisOperation("ping", time.Since(start), err)
	return err
}

// MarkOnline adds userID to the shared online set
func (rc *RedisClient) MarkOnline(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	start := time.Now()
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, onlineUsersKey, userID)
		pipe.HSet(ctx, lastSeenKey, userID, time.Now().UTC().Unix())
		return nil
	})
	metrics.RecordRedisOperation("presence_online", time.Since(start), err)
	if err != nil {
		logger.Log.Warn("Failed to mirror presence", logger.WithUserID(userID), zap.Error(err))
	}
}

// MarkOffline removes userID from the shared online set and stamps last seen
func (rc *RedisClient) MarkOffline(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	start := time.Now()
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, onlineUsersKey, userID)
		pipe.HSet(ctx, lastSeenKey, userID, time.Now().UTC().Unix())
		return nil
	})
	metrics.RecordRedisOperation("presence_offline", time.Since(start), err)
	if err != nil {
		logger.Log.Warn("Failed to mirror presence", logger.WithUserID(userID), zap.Error(err))
	}
}

// OnlineUsers returns the mirrored online set across all instances
func (rc *RedisClient) OnlineUsers(ctx context.Context) ([]string, error) {
	start := time.Now()
	users, err := rc.client.SMembers(ctx, onlineUsersKey).Result()
	metrics.RecordRedisOperation("presence_members", time.Since(start), err)
	return users, err
}

// LastSeen returns when userID last connected or disconnected
func (rc *RedisClient) LastSeen(ctx context.Context, userID string) (time.Time, error) {
	unix, err := rc.client.HGet(ctx, lastSeenKey, userID).Int64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0).UTC(), nil
}

// ResetPresence clears the mirrored set; run at startup since this instance
// holds no connections yet
func (rc *RedisClient) ResetPresence(ctx context.Context) error {
	return rc.client.Del(ctx, onlineUsersKey).Err()
}

// Hit counts one request against key in a fixed window and returns the
// count so far in the current window
func (rc *RedisClient) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := rateLimitPrefix + key

	start := time.Now()
	var incr *redis.IntCmd
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.ExpireNX(ctx, fullKey, window)
		return nil
	})
	metrics.RecordRedisOperation("rate_limit", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
