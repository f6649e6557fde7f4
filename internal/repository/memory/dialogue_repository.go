package memory

import (
	"context"
	"strconv"
	"time"

	"ai-legal-assistant-be/internal/repository/contract"
	"ai-legal-assistant-be/pkg/llm"

	"github.com/patrickmn/go-cache"
)

// DialogueRepository keeps active-stage dialogue context in process memory.
// Context is intentionally ephemeral here: it is rebuilt from the persisted
// case materials on first use after a restart.
type DialogueRepository struct {
	cache *cache.Cache
}

func NewDialogueRepository(ttl time.Duration) *DialogueRepository {
	c := cache.New(ttl, 10*time.Minute)
	return &DialogueRepository{
		cache: c,
	}
}

var _ contract.DialogueRepository = (*DialogueRepository)(nil)

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (r *DialogueRepository) Get(_ context.Context, userID int64) ([]llm.Message, bool, error) {
	if x, found := r.cache.Get(key(userID)); found {
		return x.([]llm.Message), true, nil
	}
	return nil, false, nil
}

func (r *DialogueRepository) Save(_ context.Context, userID int64, turns []llm.Message) error {
	r.cache.Set(key(userID), turns, cache.DefaultExpiration)
	return nil
}

func (r *DialogueRepository) Clear(_ context.Context, userID int64) error {
	r.cache.Delete(key(userID))
	return nil
}
