package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-legal-assistant-be/internal/repository/contract"
	"ai-legal-assistant-be/pkg/llm"

	"github.com/redis/go-redis/v9"
)

// DialogueRepository checkpoints dialogue context to Redis so an active
// stage conversation survives a process restart. Selected with
// DIALOGUE_STORE=redis.
type DialogueRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDialogueRepository(rdb *redis.Client, ttl time.Duration) *DialogueRepository {
	return &DialogueRepository{rdb: rdb, ttl: ttl}
}

var _ contract.DialogueRepository = (*DialogueRepository)(nil)

func key(userID int64) string {
	return fmt.Sprintf("dialogue:%d", userID)
}

func (r *DialogueRepository) Get(ctx context.Context, userID int64) ([]llm.Message, bool, error) {
	raw, err := r.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("dialogue get: %w", err)
	}

	var turns []llm.Message
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, false, fmt.Errorf("dialogue decode: %w", err)
	}
	return turns, true, nil
}

func (r *DialogueRepository) Save(ctx context.Context, userID int64, turns []llm.Message) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("dialogue encode: %w", err)
	}
	if err := r.rdb.Set(ctx, key(userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("dialogue save: %w", err)
	}
	return nil
}

func (r *DialogueRepository) Clear(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("dialogue clear: %w", err)
	}
	return nil
}
