package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

var ErrLockHeld = errors.New("conversation lock is held")

// Release only deletes the key when it still carries our token.
var releaseScript = redisv9.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ConversationLock serializes assessment mapping per conversation across
// service instances.
type ConversationLock struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewConversationLock(client *redisv9.Client, ttl time.Duration) *ConversationLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ConversationLock{client: client, ttl: ttl}
}

// Acquire takes the lock or returns ErrLockHeld. The returned func releases it.
func (l *ConversationLock) Acquire(ctx context.Context, userID uint, conversationID string) (func(), error) {
	key := fmt.Sprintf("chat:assessment:lock:%d:%s", userID, conversationID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis acquire lock failed: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}, nil
}
