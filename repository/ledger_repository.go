package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/MilktreeAgency/landco/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventLedger stores processed events in Postgres. Rows older than the
// retention window are removed by Purge.
type GormEventLedger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormEventLedger(db *gorm.DB) *GormEventLedger {
	return &GormEventLedger{db: db, now: time.Now}
}

func (r *GormEventLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProcessedEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup processed event: %w", err)
	}
	return count > 0, nil
}

// Record inserts the event id. It returns false when the row already existed.
func (r *GormEventLedger) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEvent{
			EventID:     eventID,
			EventType:   eventType,
			ProcessedAt: r.now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("record processed event: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Purge deletes events processed before now minus retention.
func (r *GormEventLedger) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := r.now().Add(-retention).UTC()
	res := r.db.WithContext(ctx).
		Where("processed_at < ?", cutoff).
		Delete(&models.ProcessedEvent{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge processed events: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RedisEventLedger keeps one key per event id that expires after ttl.
type RedisEventLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisEventLedger(client *redis.Client, ttl time.Duration) *RedisEventLedger {
	return &RedisEventLedger{client: client, ttl: ttl}
}

func (r *RedisEventLedger) key(eventID string) string {
	return "webhook:processed:" + eventID
}

func (r *RedisEventLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisEventLedger) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	return r.client.SetNX(ctx, r.key(eventID), eventType, r.ttl).Result()
}
