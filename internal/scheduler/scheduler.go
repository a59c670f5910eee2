// Package scheduler 每分钟向 kiosk 状态机送一次 tick。
// 幂等由状态机保证（同分钟去重 + 目标变化检测），这里只负责节拍。
package scheduler

import (
	"context"
	"time"

	"carekiosk/internal/kiosk"

	"go.uber.org/zap"
)

// Scheduler 单调的分钟级滴答源
type Scheduler struct {
	machine  *kiosk.Machine
	interval time.Duration
	logger   *zap.Logger
}

// New 创建调度器；interval 不应大于一分钟
func New(machine *kiosk.Machine, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		machine:  machine,
		interval: interval,
		logger:   logger,
	}
}

// Run 阻塞运行直到 ctx 取消。启动时先 tick 一次，
// 之后对齐到下一个整分钟再按固定间隔走。
func (s *Scheduler) Run(ctx context.Context) {
	s.tick(ctx)

	// 对齐整分钟，使 HH:MM 精度的提醒在到点的那一分钟被评估
	now := time.Now()
	align := now.Truncate(time.Minute).Add(time.Minute).Sub(now)
	select {
	case <-ctx.Done():
		return
	case <-time.After(align):
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.machine.Tick(ctx); err != nil {
		// 下一个 tick 会重试状态选择，这里只记日志
		s.logger.Error("scheduler tick failed", zap.Error(err))
	}
}
