package cache

import (
	"context"
	"time"
)

// Cache is a read-through JSON cache. A miss is (false, nil), never an error.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

func ConversationsKey(userID string) string { return "conversations:" + userID }

func ConversationKey(id string) string { return "conversation:" + id }
