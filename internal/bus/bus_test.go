package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublish_FanOut(t *testing.T) {
	b := New(zap.NewNop())
	sub1 := b.Subscribe(RoleCaregiver)
	sub2 := b.Subscribe(RoleKiosk)
	defer sub1.Close()
	defer sub2.Close()

	b.Publish(TopicRemindersUpdated, nil)

	ev := <-sub1.Events()
	assert.Equal(t, TopicRemindersUpdated, ev.Topic)
	ev = <-sub2.Events()
	assert.Equal(t, TopicRemindersUpdated, ev.Topic)
}

func TestPublish_ReminderDueOnlyToKiosk(t *testing.T) {
	b := New(zap.NewNop())
	kiosk := b.Subscribe(RoleKiosk)
	caregiver := b.Subscribe(RoleCaregiver)
	mirror := b.Subscribe(RoleMirror)
	defer kiosk.Close()
	defer caregiver.Close()
	defer mirror.Close()

	b.Publish(TopicReminderDue, "payload")
	b.Publish(TopicSettingsUpdated, nil)

	// kiosk 两条都收到
	ev := <-kiosk.Events()
	assert.Equal(t, TopicReminderDue, ev.Topic)
	assert.Equal(t, "payload", ev.Payload)
	ev = <-kiosk.Events()
	assert.Equal(t, TopicSettingsUpdated, ev.Topic)

	// 其余角色只看到 settings-updated
	ev = <-caregiver.Events()
	assert.Equal(t, TopicSettingsUpdated, ev.Topic)
	ev = <-mirror.Events()
	assert.Equal(t, TopicSettingsUpdated, ev.Topic)
}

func TestPublish_OrderPreservedPerSubscriber(t *testing.T) {
	b := New(zap.NewNop())
	sub := b.Subscribe(RoleCaregiver)
	defer sub.Close()

	topics := []Topic{TopicRemindersUpdated, TopicSettingsUpdated, TopicKioskStateUpdate}
	for _, topic := range topics {
		b.Publish(topic, nil)
	}
	for _, want := range topics {
		ev := <-sub.Events()
		assert.Equal(t, want, ev.Topic)
	}
}

func TestPublish_DropsWhenBufferFull(t *testing.T) {
	b := New(zap.NewNop())
	sub := b.Subscribe(RoleCaregiver)
	defer sub.Close()

	// 不消费，填满缓冲之后的发布被丢弃而不是阻塞
	for i := 0; i < DefaultBuffer+5; i++ {
		b.Publish(TopicRemindersUpdated, i)
	}
	assert.Len(t, sub.Events(), DefaultBuffer)
}

func TestClose_RemovesSubscriberAndClosesChannel(t *testing.T) {
	b := New(zap.NewNop())
	sub := b.Subscribe(RoleKiosk)
	require.Equal(t, 1, b.SubscriberCount())

	sub.Close()
	assert.Equal(t, 0, b.SubscriberCount())

	_, open := <-sub.Events()
	assert.False(t, open)

	// 已关闭的订阅不再接收
	b.Publish(TopicRemindersUpdated, nil)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleKiosk))
	assert.True(t, ValidRole(RoleCaregiver))
	assert.True(t, ValidRole(RoleMirror))
	assert.False(t, ValidRole("admin"))
}
