package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/tailored-agentic-units/querymind/core/protocol"
)

const defaultRedisPrefix = "querymind:session:"

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Store that keeps each history in a Redis list
// named prefix+key.
func NewRedisStore(client *redis.Client, prefix string) Store {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) Load(ctx context.Context, key string) ([]protocol.Message, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	raw, err := s.client.LRange(ctx, s.prefix+key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
	}

	msgs := make([]protocol.Message, 0, len(raw))
	for _, item := range raw {
		var msg protocol.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (s *redisStore) Append(ctx context.Context, key string, msgs ...protocol.Message) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(msgs) == 0 {
		return nil
	}

	values := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSaveFailed, key, err)
		}
		values = append(values, data)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.prefix+key, values...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete failed: %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Keys(ctx context.Context) ([]string, error) {
	// SCAN may return a key more than once.
	seen := make(map[string]bool)
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := strings.TrimPrefix(iter.Val(), s.prefix)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
