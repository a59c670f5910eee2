package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carekiosk/internal/domain"

	"github.com/go-redis/redis/v8"
)

const (
	// kiosk 状态单例键（易变的展示状态存 Redis，持久化实体存 Postgres）
	kioskStateKey = "carekiosk:kiosk_state:" + domain.DefaultKioskID

	// reminder-due 去重标记键前缀，值按 (reminderID, 分钟) 组合
	dueMarkerPrefix = "carekiosk:reminder_due:"

	// 去重标记保留两分钟即可覆盖同分钟内的重复 tick
	dueMarkerTTL = 2 * time.Minute
)

// RedisKioskStateRepo kiosk 展示状态单例的 Redis 实现
// SET 整个 JSON 快照保证原子 upsert-by-key
type RedisKioskStateRepo struct {
	client *redis.Client
}

// NewRedisKioskStateRepo 创建 kiosk 状态仓库
func NewRedisKioskStateRepo(client *redis.Client) *RedisKioskStateRepo {
	return &RedisKioskStateRepo{client: client}
}

var _ KioskStateRepo = (*RedisKioskStateRepo)(nil)

// Get 读取单例；键不存在时返回初始空闲状态
func (r *RedisKioskStateRepo) Get(ctx context.Context) (*domain.KioskState, error) {
	val, err := r.client.Get(ctx, kioskStateKey).Result()
	if err != nil {
		if err == redis.Nil {
			return domain.NewKioskState(), nil
		}
		return nil, fmt.Errorf("failed to get kiosk state: %w", err)
	}

	var state domain.KioskState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kiosk state: %w", err)
	}
	return &state, nil
}

// Put 原子写入整个快照
func (r *RedisKioskStateRepo) Put(ctx context.Context, s *domain.KioskState) error {
	cp := *s
	cp.CurrentReminder = nil // derived, not stored

	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to marshal kiosk state: %w", err)
	}
	if err := r.client.Set(ctx, kioskStateKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to put kiosk state: %w", err)
	}
	return nil
}

// MarkAnnounced SETNX 去重：同一 (reminder, 分钟) 只有第一次返回 true
func (r *RedisKioskStateRepo) MarkAnnounced(ctx context.Context, reminderID, minute string) (bool, error) {
	key := dueMarkerPrefix + reminderID + ":" + minute
	ok, err := r.client.SetNX(ctx, key, "1", dueMarkerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder due: %w", err)
	}
	return ok, nil
}
