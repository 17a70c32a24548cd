package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"gator-post/internal/models"
	"gator-post/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentRegistrationSingleWinner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.SaveUser(ctx, &models.User{
				Username:       "alice",
				HashedPassword: "hash",
				JoinAt:         time.Now(),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, utils.IsErrorCode(err, utils.ErrDuplicate))
		}
	}
	assert.Equal(t, 1, succeeded)

	count, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkMessageReadConcurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	msg := &models.DirectMessage{
		ID:           uuid.New(),
		FromUsername: "bob",
		ToUsername:   "alice",
		Body:         "hi",
		SentAt:       time.Now(),
	}
	require.NoError(t, store.SaveMessage(ctx, msg))

	const readers = 16
	var wg sync.WaitGroup
	results := make([]*models.DirectMessage, readers)
	readErrs := make([]error, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], readErrs[i] = store.MarkMessageRead(ctx, msg.ID)
		}(i)
	}
	wg.Wait()

	for _, err := range readErrs {
		require.NoError(t, err)
	}

	// Every caller observes the same single read timestamp
	first := results[0]
	require.NotNil(t, first.ReadAt)
	for _, r := range results[1:] {
		require.NotNil(t, r.ReadAt)
		assert.True(t, first.ReadAt.Equal(*r.ReadAt))
	}

	stored, err := store.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReadAt)
	assert.True(t, first.ReadAt.Equal(*stored.ReadAt))
}

func TestMarkUnknownMessage(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.MarkMessageRead(context.Background(), uuid.New())
	assert.True(t, utils.IsErrorCode(err, utils.ErrMessageNotFound))
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, &models.User{Username: "alice", HashedPassword: "hash"}))

	user, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)

	// Mutating a fetched record must not leak into the store
	user.HashedPassword = "tampered"
	again, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash", again.HashedPassword)
}

func TestListOrdering(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	for i, body := range []string{"first", "second", "third"} {
		require.NoError(t, store.SaveMessage(ctx, &models.DirectMessage{
			ID:           uuid.New(),
			FromUsername: "bob",
			ToUsername:   "alice",
			Body:         body,
			SentAt:       base.Add(time.Duration(i) * time.Second),
		}))
	}

	inbox, err := store.GetMessagesTo(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	assert.Equal(t, "first", inbox[0].Body)
	assert.Equal(t, "third", inbox[2].Body)

	outbox, err := store.GetMessagesFrom(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, outbox)
}
