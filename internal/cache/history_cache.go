package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"sarvuday-server/internal/model"
)

// HistoryCache keeps the recent completed turns of a conversation in redis.
// A short-lived dirty marker is set on every write so readers racing with a
// write fall through to the database instead of re-filling stale entries.
type HistoryCache struct {
	client         *redisv9.Client
	historyTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewHistoryCache(client *redisv9.Client, historyTTL, dirtyMarkerTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &HistoryCache{
		client:         client,
		historyTTL:     historyTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

// GetRecent returns the cached window of completed turns (message and
// response both present), oldest first. hit is false on a cache miss.
func (c *HistoryCache) GetRecent(ctx context.Context, userID uint, conversationID string) ([]model.ChatTurn, bool, error) {
	raw, err := c.client.Get(ctx, c.historyKey(userID, conversationID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var turns []model.ChatTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return turns, true, nil
}

// SetRecent stores the window of completed turns fed to the completion
// prompt. Callers pass at most chat.history_window turns, oldest first.
func (c *HistoryCache) SetRecent(ctx context.Context, userID uint, conversationID string, turns []model.ChatTurn) error {
	payload, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.historyKey(userID, conversationID), payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached window and marks the conversation dirty.
func (c *HistoryCache) Invalidate(ctx context.Context, userID uint, conversationID string) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.dirtyKey(userID, conversationID), "1", c.dirtyMarkerTTL)
	pipe.Del(ctx, c.historyKey(userID, conversationID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate history failed: %w", err)
	}
	return nil
}

// IsDirty reports whether a turn was appended within the marker TTL.
func (c *HistoryCache) IsDirty(ctx context.Context, userID uint, conversationID string) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(userID, conversationID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *HistoryCache) historyKey(userID uint, conversationID string) string {
	return fmt.Sprintf("chat:history:%d:%s", userID, conversationID)
}

func (c *HistoryCache) dirtyKey(userID uint, conversationID string) string {
	return fmt.Sprintf("chat:history:dirty:%d:%s", userID, conversationID)
}
