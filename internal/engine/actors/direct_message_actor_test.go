package actors

import (
	"context"
	"testing"
	"time"

	"gator-post/internal/database"
	"gator-post/internal/models"
	"gator-post/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnMessageActor(t *testing.T, store database.Store) (*actor.ActorSystem, *actor.PID) {
	t.Helper()

	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewDirectMessageActor(store, utils.NewMetricsCollector())
	})
	pid := system.Root.Spawn(props)
	return system, pid
}

func seedUser(t *testing.T, store database.Store, username string) {
	t.Helper()

	err := store.SaveUser(context.Background(), &models.User{
		Username:       username,
		HashedPassword: "not-a-real-hash",
		FirstName:      username,
		LastName:       "Test",
		Phone:          "555-0100",
		JoinAt:         time.Now(),
	})
	require.NoError(t, err)
}

func sendMessage(t *testing.T, system *actor.ActorSystem, pid *actor.PID, from, to, body string) *models.DirectMessage {
	t.Helper()

	future := system.Root.RequestFuture(pid, &SendDirectMessageMsg{
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
	}, 5*time.Second)

	result, err := future.Result()
	require.NoError(t, err)

	msg, ok := result.(*models.DirectMessage)
	require.True(t, ok, "unexpected send response: %T %v", result, result)
	return msg
}

func TestSendAndGetMessage(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnMessageActor(t, store)

	seedUser(t, store, "alice")
	seedUser(t, store, "bob")
	seedUser(t, store, "charlie")

	msg := sendMessage(t, system, pid, "bob", "alice", "hi")
	assert.Equal(t, "bob", msg.FromUsername)
	assert.Equal(t, "alice", msg.ToUsername)
	assert.False(t, msg.SentAt.IsZero())
	assert.Nil(t, msg.ReadAt)

	getAs := func(caller string) interface{} {
		future := system.Root.RequestFuture(pid, &GetMessageMsg{MessageID: msg.ID, Caller: caller}, 5*time.Second)
		result, err := future.Result()
		require.NoError(t, err)
		return result
	}

	// Sender and recipient both see identical message data
	bySender, ok := getAs("bob").(*models.MessageDetail)
	require.True(t, ok)
	byRecipient, ok := getAs("alice").(*models.MessageDetail)
	require.True(t, ok)
	assert.Equal(t, bySender, byRecipient)
	assert.Equal(t, "hi", bySender.Body)
	assert.Equal(t, "bob", bySender.FromUser.Username)
	assert.Equal(t, "alice", bySender.ToUser.Username)
	assert.Nil(t, bySender.ReadAt)

	// A third user is rejected without any message detail
	appErr, ok := getAs("charlie").(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrUnauthorized, appErr.Code)
	assert.NotContains(t, appErr.Message, "hi")
}

func TestSendToUnknownRecipient(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnMessageActor(t, store)

	seedUser(t, store, "bob")

	future := system.Root.RequestFuture(pid, &SendDirectMessageMsg{
		FromUsername: "bob",
		ToUsername:   "ghost",
		Body:         "hello?",
	}, 5*time.Second)

	result, err := future.Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrUserNotFound, appErr.Code)
}

func TestGetUnknownMessage(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnMessageActor(t, store)

	future := system.Root.RequestFuture(pid, &GetMessageMsg{MessageID: uuid.New(), Caller: "alice"}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrMessageNotFound, appErr.Code)
}

func TestMarkMessageRead(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnMessageActor(t, store)

	seedUser(t, store, "alice")
	seedUser(t, store, "bob")
	seedUser(t, store, "charlie")

	msg := sendMessage(t, system, pid, "bob", "alice", "hi")

	markAs := func(caller string) interface{} {
		future := system.Root.RequestFuture(pid, &MarkMessageReadMsg{MessageID: msg.ID, Caller: caller}, 5*time.Second)
		result, err := future.Result()
		require.NoError(t, err)
		return result
	}

	// Neither the sender nor a third party may mark the message read
	for _, caller := range []string{"bob", "charlie"} {
		appErr, ok := markAs(caller).(*utils.AppError)
		require.True(t, ok)
		assert.Equal(t, utils.ErrUnauthorized, appErr.Code)
	}

	unchanged, err := store.GetMessage(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.ReadAt)

	// The recipient sets read_at
	read, ok := markAs("alice").(*models.DirectMessage)
	require.True(t, ok)
	require.NotNil(t, read.ReadAt)
	assert.False(t, read.ReadAt.Before(read.SentAt))

	// Re-marking is a no-op that keeps the original timestamp
	again, ok := markAs("alice").(*models.DirectMessage)
	require.True(t, ok)
	require.NotNil(t, again.ReadAt)
	assert.Equal(t, read.ReadAt.Unix(), again.ReadAt.Unix())
	assert.True(t, read.ReadAt.Equal(*again.ReadAt))
}

func TestListMessages(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnMessageActor(t, store)

	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	first := sendMessage(t, system, pid, "bob", "alice", "hi")
	second := sendMessage(t, system, pid, "bob", "alice", "are you there?")
	sendMessage(t, system, pid, "alice", "bob", "yes")

	toFuture := system.Root.RequestFuture(pid, &GetMessagesToMsg{Username: "alice"}, 5*time.Second)
	toResult, err := toFuture.Result()
	require.NoError(t, err)

	inbox, ok := toResult.([]models.ReceivedMessage)
	require.True(t, ok)
	require.Len(t, inbox, 2)

	// Oldest first, sender embedded
	assert.Equal(t, first.ID, inbox[0].ID)
	assert.Equal(t, second.ID, inbox[1].ID)
	assert.Equal(t, "bob", inbox[0].FromUser.Username)

	fromFuture := system.Root.RequestFuture(pid, &GetMessagesFromMsg{Username: "bob"}, 5*time.Second)
	fromResult, err := fromFuture.Result()
	require.NoError(t, err)

	outbox, ok := fromResult.([]models.SentMessage)
	require.True(t, ok)
	require.Len(t, outbox, 2)
	assert.Equal(t, "alice", outbox[0].ToUser.Username)

	// Listing a user with no traffic is empty, not an error
	emptyFuture := system.Root.RequestFuture(pid, &GetMessagesFromMsg{Username: "alice"}, 5*time.Second)
	emptyResult, err := emptyFuture.Result()
	require.NoError(t, err)
	sent, ok := emptyResult.([]models.SentMessage)
	require.True(t, ok)
	require.Len(t, sent, 1)
}
