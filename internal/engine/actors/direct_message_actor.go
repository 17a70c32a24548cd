package actors

import (
	"log"
	"time"

	"gator-post/internal/database"
	"gator-post/internal/models"
	"gator-post/internal/utils"

	stdctx "context"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for DirectMessageActor. Caller fields hold the identity
// resolved from the session token, never a client-supplied value.
type (
	SendDirectMessageMsg struct {
		FromUsername string
		ToUsername   string
		Body         string
	}

	GetMessageMsg struct {
		MessageID uuid.UUID
		Caller    string
	}

	MarkMessageReadMsg struct {
		MessageID uuid.UUID
		Caller    string
	}

	GetMessagesFromMsg struct {
		Username string
	}

	GetMessagesToMsg struct {
		Username string
	}
)

// DirectMessageActor manages direct messaging operations and owns the
// access-control rules: only the sender or recipient may view a message,
// and only the recipient may mark it read.
type DirectMessageActor struct {
	store   database.Store
	metrics *utils.MetricsCollector
}

func NewDirectMessageActor(store database.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &DirectMessageActor{
		store:   store,
		metrics: metrics,
	}
}

func (a *DirectMessageActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *SendDirectMessageMsg:
		a.handleSendMessage(context, msg)
	case *GetMessageMsg:
		a.handleGetMessage(context, msg)
	case *MarkMessageReadMsg:
		a.handleMarkMessageRead(context, msg)
	case *GetMessagesFromMsg:
		a.handleGetMessagesFrom(context, msg)
	case *GetMessagesToMsg:
		a.handleGetMessagesTo(context, msg)
	case *GetCountsMsg:
		ctx := stdctx.Background()
		count, err := a.store.CountMessages(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count messages", err))
			return
		}
		context.Respond(count)
	}
}

func (a *DirectMessageActor) handleSendMessage(context actor.Context, msg *SendDirectMessageMsg) {
	startTime := time.Now()

	if msg.Body == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Message body is required", nil))
		return
	}

	// The recipient must reference an existing user
	ctx := stdctx.Background()
	if _, err := a.store.GetUserByUsername(ctx, msg.ToUsername); err != nil {
		if utils.IsErrorCode(err, utils.ErrUserNotFound) {
			context.Respond(utils.NewUserNotFoundError(msg.ToUsername))
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to verify recipient", err))
		return
	}

	newMessage := &models.DirectMessage{
		ID:           uuid.New(),
		FromUsername: msg.FromUsername,
		ToUsername:   msg.ToUsername,
		Body:         msg.Body,
		SentAt:       time.Now(),
	}

	if err := a.store.SaveMessage(ctx, newMessage); err != nil {
		log.Printf("Failed to save message from %s to %s: %v", msg.FromUsername, msg.ToUsername, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save message", err))
		return
	}

	log.Printf("New message sent from %s to %s", msg.FromUsername, msg.ToUsername)
	a.metrics.AddOperationLatency("send_message", time.Since(startTime))
	context.Respond(newMessage)
}

func (a *DirectMessageActor) handleGetMessage(context actor.Context, msg *GetMessageMsg) {
	ctx := stdctx.Background()

	message, err := a.store.GetMessage(ctx, msg.MessageID)
	if err != nil {
		context.Respond(err)
		return
	}

	// Only the sender or the recipient may view a message. The error must
	// not reveal anything about the message itself.
	if msg.Caller != message.FromUsername && msg.Caller != message.ToUsername {
		context.Respond(utils.NewUnauthorizedError())
		return
	}

	fromUser, err := a.store.GetUserByUsername(ctx, message.FromUsername)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to fetch sender", err))
		return
	}
	toUser, err := a.store.GetUserByUsername(ctx, message.ToUsername)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to fetch recipient", err))
		return
	}

	context.Respond(&models.MessageDetail{
		ID:       message.ID,
		Body:     message.Body,
		SentAt:   message.SentAt,
		ReadAt:   message.ReadAt,
		FromUser: fromUser.Summary(),
		ToUser:   toUser.Summary(),
	})
}

func (a *DirectMessageActor) handleMarkMessageRead(context actor.Context, msg *MarkMessageReadMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	message, err := a.store.GetMessage(ctx, msg.MessageID)
	if err != nil {
		context.Respond(err)
		return
	}

	// Only the recipient may mark a message read
	if msg.Caller != message.ToUsername {
		context.Respond(utils.NewUnauthorizedError())
		return
	}

	// Idempotent: an already-read message keeps its original read_at
	updated, err := a.store.MarkMessageRead(ctx, msg.MessageID)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("mark_message_read", time.Since(startTime))
	context.Respond(updated)
}

func (a *DirectMessageActor) handleGetMessagesFrom(context actor.Context, msg *GetMessagesFromMsg) {
	ctx := stdctx.Background()

	messages, err := a.store.GetMessagesFrom(ctx, msg.Username)
	if err != nil {
		context.Respond(err)
		return
	}

	result := make([]models.SentMessage, 0, len(messages))
	cache := make(map[string]models.UserSummary)

	for _, m := range messages {
		toUser, err := a.lookupSummary(ctx, cache, m.ToUsername)
		if err != nil {
			context.Respond(err)
			return
		}
		result = append(result, models.SentMessage{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: toUser,
		})
	}

	context.Respond(result)
}

func (a *DirectMessageActor) handleGetMessagesTo(context actor.Context, msg *GetMessagesToMsg) {
	ctx := stdctx.Background()

	messages, err := a.store.GetMessagesTo(ctx, msg.Username)
	if err != nil {
		context.Respond(err)
		return
	}

	result := make([]models.ReceivedMessage, 0, len(messages))
	cache := make(map[string]models.UserSummary)

	for _, m := range messages {
		fromUser, err := a.lookupSummary(ctx, cache, m.FromUsername)
		if err != nil {
			context.Respond(err)
			return
		}
		result = append(result, models.ReceivedMessage{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: fromUser,
		})
	}

	context.Respond(result)
}

func (a *DirectMessageActor) lookupSummary(ctx stdctx.Context, cache map[string]models.UserSummary, username string) (models.UserSummary, error) {
	if summary, ok := cache[username]; ok {
		return summary, nil
	}
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return models.UserSummary{}, utils.NewAppError(utils.ErrDatabase, "Failed to fetch user for message", err)
	}
	summary := user.Summary()
	cache[username] = summary
	return summary, nil
}
