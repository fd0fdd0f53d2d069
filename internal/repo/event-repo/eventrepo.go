package eventrepo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/pg"
)

const (
	isProcessedQuery = `
		SELECT EXISTS(SELECT 1 FROM processed_events WHERE provider_event_id = $1)
	`
	markProcessedQuery = `
		INSERT INTO processed_events (provider_event_id, provider, event_type, processed_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (provider_event_id) DO NOTHING
	`
	pruneQuery = `
		DELETE FROM processed_events
		WHERE processed_at < $1
	`
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, isProcessedQuery, eventID).Scan(&exists); err != nil {
		zap.L().Error("failed to check processed event", zap.String("eventID", eventID), zap.Error(err))
		return false, err
	}
	return exists, nil
}

// MarkProcessed records the event id. It returns false when the id was
// already recorded; inside a transaction a concurrent delivery of the same id
// blocks here until the first one commits or rolls back.
func (r *Repository) MarkProcessed(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	tag, err := r.db.Exec(ctx, markProcessedQuery, eventID, provider, eventType)
	if err != nil {
		zap.L().Error("can't record processed event", zap.String("eventID", eventID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, pruneQuery, cutoff)
	if err != nil {
		zap.L().Error("failed to prune processed events", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
