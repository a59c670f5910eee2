package bus

import (
	"sync"

	"go.uber.org/zap"
)

// Topic 广播主题
type Topic string

const (
	// TopicRemindersUpdated 提醒或完成记录发生任何变更
	TopicRemindersUpdated Topic = "reminders-updated"
	// TopicSettingsUpdated 配置变更，载荷为完整 Settings 快照
	TopicSettingsUpdated Topic = "settings-updated"
	// TopicKioskStateUpdate kiosk 状态变更，载荷为展开后的 KioskState
	TopicKioskStateUpdate Topic = "kiosk-state-update"
	// TopicReminderDue 新提醒到期，仅投递给 kiosk 订阅者
	TopicReminderDue Topic = "reminder-due"
)

// Role 订阅者的逻辑角色
type Role string

const (
	RoleKiosk     Role = "kiosk"
	RoleCaregiver Role = "caregiver"
	RoleMirror    Role = "mirror"
)

// ValidRole 校验角色取值
func ValidRole(r Role) bool {
	switch r {
	case RoleKiosk, RoleCaregiver, RoleMirror:
		return true
	}
	return false
}

// Event 投递给订阅者的事件
type Event struct {
	Topic   Topic
	Payload any
}

// Subscription 一个已连接 surface 的订阅句柄
type Subscription struct {
	id   int
	role Role
	ch   chan Event
	bus  *Bus
}

// Events 事件通道；通道关闭表示订阅已取消
func (s *Subscription) Events() <-chan Event { return s.ch }

// Role 订阅者角色
func (s *Subscription) Role() Role { return s.role }

// Close 取消订阅并关闭事件通道
func (s *Subscription) Close() {
	s.bus.unsubscribe(s.id)
}

// Bus 进程内主题广播
// 投递是尽力而为：订阅者缓冲满时丢弃并记日志，surface 收到任何
// 主题通知后都会通过 API 重新读取，丢失可以容忍；单主题内的
// 投递顺序与发布顺序一致
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
	logger *zap.Logger
}

// New 创建广播总线
func New(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   map[int]*Subscription{},
		logger: logger,
	}
}

// DefaultBuffer 每个订阅者的事件缓冲大小
const DefaultBuffer = 16

// Subscribe 以给定角色加入总线
func (b *Bus) Subscribe(role Role) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:   b.nextID,
		role: role,
		ch:   make(chan Event, DefaultBuffer),
		bus:  b,
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Publish 广播到所有订阅者；reminder-due 只投递给 kiosk 角色
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if topic == TopicReminderDue && sub.role != RoleKiosk {
			continue
		}
		select {
		case sub.ch <- Event{Topic: topic, Payload: payload}:
		default:
			// 缓冲满：丢弃，订阅者下次收到任何事件后会全量刷新
			b.logger.Warn("bus subscriber buffer full, dropping event",
				zap.String("topic", string(topic)),
				zap.String("role", string(sub.role)),
			)
		}
	}
}

// SubscriberCount 当前订阅者数量（诊断用）
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
