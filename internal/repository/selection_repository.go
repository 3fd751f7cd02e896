package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/quick-event-planner/internal/models"
	appErrors "github.com/noah-isme/quick-event-planner/pkg/errors"
)

const selectionKeyPrefix = "planner:selection:"

// SelectionStore is implemented by every selection backend.
type SelectionStore interface {
	Get(ctx context.Context, id string) (*models.Selection, error)
	Save(ctx context.Context, sel *models.Selection, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

var (
	_ SelectionStore = (*SelectionRepository)(nil)
	_ SelectionStore = (*MemorySelectionRepository)(nil)
)

// SelectionRepository stores selections in Redis as JSON with a TTL.
type SelectionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSelectionRepository constructs a Redis-backed selection repository.
func NewSelectionRepository(client *redis.Client, logger *zap.Logger) *SelectionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionRepository{client: client, logger: logger}
}

func selectionKey(id string) string {
	return selectionKeyPrefix + id
}

// Get loads a selection, returning ErrCacheMiss when it is absent or expired.
func (r *SelectionRepository) Get(ctx context.Context, id string) (*models.Selection, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, selectionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get selection %s: %w", id, err)
	}

	var sel models.Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("unmarshal selection %s: %w", id, err)
	}
	return &sel, nil
}

// Save writes the selection and resets its TTL.
func (r *SelectionRepository) Save(ctx context.Context, sel *models.Selection, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client not configured")
	}

	payload, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection %s: %w", sel.ID, err)
	}

	if err := r.client.Set(ctx, selectionKey(sel.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set selection %s: %w", sel.ID, err)
	}
	r.logger.Debug("selection saved", zap.String("id", sel.ID), zap.Int("dates", len(sel.Dates)))
	return nil
}

// Delete removes a selection. Deleting a missing selection is not an error.
func (r *SelectionRepository) Delete(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, selectionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete selection %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *SelectionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
