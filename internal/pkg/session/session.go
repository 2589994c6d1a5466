package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store 刷新令牌会话存储
type Store interface {
	// Save 记录一个刷新令牌
	Save(ctx context.Context, userID uint, tokenID string, ttl time.Duration) error
	// Valid 刷新令牌是否仍属于该用户
	Valid(ctx context.Context, userID uint, tokenID string) (bool, error)
	// Revoke 撤销单个刷新令牌
	Revoke(ctx context.Context, userID uint, tokenID string) error
	// InvalidateAll 撤销用户全部会话（封禁、注销时调用）
	InvalidateAll(ctx context.Context, userID uint) error
}

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore 创建基于 Redis 的会话存储
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

// tokenKey 单个令牌 -> 用户ID
func tokenKey(tokenID string) string {
	return fmt.Sprintf("session:token:%s", tokenID)
}

// userKey 用户 -> 令牌集合
func userKey(userID uint) string {
	return fmt.Sprintf("session:user:%d", userID)
}

func (s *redisStore) Save(ctx context.Context, userID uint, tokenID string, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, tokenKey(tokenID), userID, ttl)
	pipe.SAdd(ctx, userKey(userID), tokenID)
	pipe.Expire(ctx, userKey(userID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisStore) Valid(ctx context.Context, userID uint, tokenID string) (bool, error) {
	val, err := s.rdb.Get(ctx, tokenKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == strconv.FormatUint(uint64(userID), 10), nil
}

// Revoke 撤销后立即删除，防止重放
func (s *redisStore) Revoke(ctx context.Context, userID uint, tokenID string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, tokenKey(tokenID))
	pipe.SRem(ctx, userKey(userID), tokenID)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisStore) InvalidateAll(ctx context.Context, userID uint) error {
	tokens, err := s.rdb.SMembers(ctx, userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, id := range tokens {
		keys = append(keys, tokenKey(id))
	}
	keys = append(keys, userKey(userID))
	return s.rdb.Del(ctx, keys...).Err()
}
