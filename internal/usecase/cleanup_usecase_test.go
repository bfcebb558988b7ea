package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balikin/internal/adapter/repository"
	"balikin/internal/domain/entity"
	domainrepo "balikin/internal/domain/repository"
)

func newCleanupFixture(t *testing.T) (*CleanupUseCase, *ChatUseCase, domainrepo.ChatRepository) {
	t.Helper()

	chatRepo := repository.NewMemoryChatRepository()
	userRepo := repository.NewMemoryUserRepository()
	pusher := newStubPusher()

	for _, id := range []string{"alice", "bob", "carol"} {
		require.NoError(t, userRepo.Create(context.Background(), &entity.User{ID: id, Username: id}))
	}

	chatUC := NewChatUseCase(chatRepo, userRepo, pusher, nil)
	cleanupUC := NewCleanupUseCase(chatUC, 30*time.Minute, 5*time.Minute)
	return cleanupUC, chatUC, chatRepo
}

func TestSweepEvictsRoomIdlePastTTL(t *testing.T) {
	ctx := context.Background()
	cleanupUC, chatUC, chatRepo := newCleanupFixture(t)

	room, err := chatUC.StartChat(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = chatUC.SendMessage(ctx, room.ID, "alice", "hello")
	require.NoError(t, err)

	// Last activity 31 minutes ago.
	require.NoError(t, chatRepo.TouchRoom(ctx, room.ID, time.Now().Add(-31*time.Minute)))

	evicted := cleanupUC.Sweep(ctx)
	assert.Equal(t, 1, evicted)

	assert.False(t, chatUC.IsParticipant(ctx, room.ID, "alice"))
	assert.False(t, chatUC.IsParticipant(ctx, room.ID, "bob"))

	messages, _, err := chatRepo.ListMessagesByRoom(ctx, room.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSweepSparesRoomInsideTTL(t *testing.T) {
	ctx := context.Background()
	cleanupUC, chatUC, chatRepo := newCleanupFixture(t)

	room, err := chatUC.StartChat(ctx, "alice", "bob")
	require.NoError(t, err)

	// Last activity 29 minutes ago.
	require.NoError(t, chatRepo.TouchRoom(ctx, room.ID, time.Now().Add(-29*time.Minute)))

	assert.Equal(t, 0, cleanupUC.Sweep(ctx))
	assert.True(t, chatUC.IsParticipant(ctx, room.ID, "alice"))
}

func TestSweepEvictsOnlyIdleRooms(t *testing.T) {
	ctx := context.Background()
	cleanupUC, chatUC, chatRepo := newCleanupFixture(t)

	stale, err := chatUC.StartChat(ctx, "alice", "bob")
	require.NoError(t, err)
	fresh, err := chatUC.StartChat(ctx, "alice", "carol")
	require.NoError(t, err)

	require.NoError(t, chatRepo.TouchRoom(ctx, stale.ID, time.Now().Add(-2*time.Hour)))

	assert.Equal(t, 1, cleanupUC.Sweep(ctx))
	assert.False(t, chatUC.IsParticipant(ctx, stale.ID, "alice"))
	assert.True(t, chatUC.IsParticipant(ctx, fresh.ID, "alice"))
}

func TestSweepSkipsRoomTouchedAfterEvictionQuery(t *testing.T) {
	ctx := context.Background()
	cleanupUC, chatUC, chatRepo := newCleanupFixture(t)

	room, err := chatUC.StartChat(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, chatRepo.TouchRoom(ctx, room.ID, time.Now().Add(-31*time.Minute)))

	// A message lands before the per-room delete re-checks last activity.
	_, err = chatUC.SendMessage(ctx, room.ID, "bob", "still here")
	require.NoError(t, err)

	assert.Equal(t, 0, cleanupUC.Sweep(ctx))
	assert.True(t, chatUC.IsParticipant(ctx, room.ID, "alice"))
}

func TestEvictedPairGetsFreshRoomOnNextContact(t *testing.T) {
	ctx := context.Background()
	cleanupUC, chatUC, chatRepo := newCleanupFixture(t)

	room, err := chatUC.StartChat(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, chatRepo.TouchRoom(ctx, room.ID, time.Now().Add(-time.Hour)))
	require.Equal(t, 1, cleanupUC.Sweep(ctx))

	recreated, err := chatUC.StartChat(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.NotEqual(t, room.ID, recreated.ID)
	assert.Equal(t, 0, chatUC.GetTotalUnreadCount(ctx, "alice"))
}
