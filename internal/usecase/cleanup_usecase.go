package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"balikin/pkg/logger"
)

// CleanupUseCase periodically evicts chat rooms whose last activity is older
// than the TTL. Eviction is hard: the room and all of its messages are gone,
// and the pair re-establishes contact through a fresh room.
type CleanupUseCase struct {
	chat     *ChatUseCase
	ttl      time.Duration
	interval time.Duration
	running  atomic.Bool
}

func NewCleanupUseCase(chat *ChatUseCase, ttl, interval time.Duration) *CleanupUseCase {
	return &CleanupUseCase{
		chat:     chat,
		ttl:      ttl,
		interval: interval,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (uc *CleanupUseCase) Start(ctx context.Context) {
	logger.Info("Chat cleanup sweeper started (ttl=%s, interval=%s)", uc.ttl, uc.interval)

	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			uc.Sweep(ctx)
		case <-ctx.Done():
			logger.Info("Chat cleanup sweeper stopped")
			return
		}
	}
}

// Sweep runs one eviction pass. A tick that fires while a previous sweep is
// still running is skipped, not queued. Returns how many rooms were evicted.
func (uc *CleanupUseCase) Sweep(ctx context.Context) int {
	if !uc.running.CompareAndSwap(false, true) {
		logger.Debug("Skipping sweep tick: previous sweep still running")
		return 0
	}
	defer uc.running.Store(false)

	cutoff := time.Now().Add(-uc.ttl)
	evicted, err := uc.chat.EvictIdleRooms(ctx, cutoff)
	if err != nil {
		logger.Error("Sweep failed: %v", err)
		return 0
	}

	if evicted > 0 {
		logger.Info("Evicted %d idle chat room(s)", evicted)
	}
	return evicted
}
