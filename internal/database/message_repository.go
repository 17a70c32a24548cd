// internal/database/message_repository.go
package database

import (
	"context"
	"time"

	"gator-post/internal/models"
	"gator-post/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageDocument represents the MongoDB document structure for direct messages
type MessageDocument struct {
	ID           string     `bson:"_id"`
	FromUsername string     `bson:"fromUsername"`
	ToUsername   string     `bson:"toUsername"`
	Body         string     `bson:"body"`
	SentAt       time.Time  `bson:"sentAt"`
	ReadAt       *time.Time `bson:"readAt,omitempty"`
}

func messageFromDocument(doc *MessageDocument) (*models.DirectMessage, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Invalid message ID in database", err)
	}
	return &models.DirectMessage{
		ID:           id,
		FromUsername: doc.FromUsername,
		ToUsername:   doc.ToUsername,
		Body:         doc.Body,
		SentAt:       doc.SentAt,
		ReadAt:       doc.ReadAt,
	}, nil
}

// SaveMessage saves a new direct message to MongoDB
func (m *MongoDB) SaveMessage(ctx context.Context, message *models.DirectMessage) error {
	doc := MessageDocument{
		ID:           message.ID.String(),
		FromUsername: message.FromUsername,
		ToUsername:   message.ToUsername,
		Body:         message.Body,
		SentAt:       message.SentAt,
		ReadAt:       message.ReadAt,
	}

	_, err := m.Messages.InsertOne(ctx, doc)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to save message", err)
	}
	return nil
}

// GetMessage retrieves a direct message by its ID.
func (m *MongoDB) GetMessage(ctx context.Context, id uuid.UUID) (*models.DirectMessage, error) {
	var doc MessageDocument

	err := m.Messages.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewMessageNotFoundError()
	}
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to fetch message", err)
	}

	return messageFromDocument(&doc)
}

// MarkMessageRead sets read_at on an unread message. The update is filtered
// on readAt being unset, so once a message is read its timestamp never
// changes and concurrent calls are safe to race. Marking an already-read
// message returns it unchanged.
func (m *MongoDB) MarkMessageRead(ctx context.Context, id uuid.UUID) (*models.DirectMessage, error) {
	var doc MessageDocument

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.Messages.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String(), "readAt": nil},
		bson.M{"$set": bson.M{"readAt": time.Now()}},
		opts,
	).Decode(&doc)

	if err == mongo.ErrNoDocuments {
		// Either the message does not exist or it was already read.
		return m.GetMessage(ctx, id)
	}
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to mark message read", err)
	}

	return messageFromDocument(&doc)
}

// GetMessagesFrom returns all messages sent by a user, oldest first.
func (m *MongoDB) GetMessagesFrom(ctx context.Context, username string) ([]*models.DirectMessage, error) {
	return m.findMessages(ctx, bson.M{"fromUsername": username})
}

// GetMessagesTo returns all messages received by a user, oldest first.
func (m *MongoDB) GetMessagesTo(ctx context.Context, username string) ([]*models.DirectMessage, error) {
	return m.findMessages(ctx, bson.M{"toUsername": username})
}

func (m *MongoDB) findMessages(ctx context.Context, filter bson.M) ([]*models.DirectMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: 1}})
	cursor, err := m.Messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to list messages", err)
	}
	defer cursor.Close(ctx)

	messages := make([]*models.DirectMessage, 0)
	for cursor.Next(ctx) {
		var doc MessageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "Failed to decode message", err)
		}
		msg, err := messageFromDocument(&doc)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to iterate messages", err)
	}

	return messages, nil
}

func (m *MongoDB) CountMessages(ctx context.Context) (int, error) {
	n, err := m.Messages.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "Failed to count messages", err)
	}
	return int(n), nil
}
