// internal/database/user_repository.go
package database

import (
	"context"
	"time"

	"gator-post/internal/models"
	"gator-post/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserDocument represents the MongoDB schema for a user. The username is
// the document _id, so two users can never share one.
type UserDocument struct {
	Username       string     `bson:"_id"`
	HashedPassword string     `bson:"password"`
	FirstName      string     `bson:"firstName"`
	LastName       string     `bson:"lastName"`
	Phone          string     `bson:"phone"`
	JoinAt         time.Time  `bson:"joinAt"`
	LastLoginAt    *time.Time `bson:"lastLoginAt,omitempty"`
}

func userFromDocument(doc *UserDocument) *models.User {
	return &models.User{
		Username:       doc.Username,
		HashedPassword: doc.HashedPassword,
		FirstName:      doc.FirstName,
		LastName:       doc.LastName,
		Phone:          doc.Phone,
		JoinAt:         doc.JoinAt,
		LastLoginAt:    doc.LastLoginAt,
	}
}

// SaveUser inserts a new user. A username collision surfaces as a
// duplicate-key error from the server, never as a check-then-insert.
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := UserDocument{
		Username:       user.Username,
		HashedPassword: user.HashedPassword,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Phone:          user.Phone,
		JoinAt:         user.JoinAt,
		LastLoginAt:    user.LastLoginAt,
	}

	_, err := m.Users.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewAppError(utils.ErrDuplicate, "Username already taken", err)
	}
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to save user", err)
	}
	return nil
}

// GetUserByUsername retrieves a user by their username.
func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": username}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(username)
	}
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to fetch user", err)
	}

	return userFromDocument(&doc), nil
}

// GetAllUsers returns all registered users.
func (m *MongoDB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := m.Users.Find(ctx, bson.M{})
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to list users", err)
	}
	defer cursor.Close(ctx)

	users := make([]*models.User, 0)
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "Failed to decode user", err)
		}
		users = append(users, userFromDocument(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to iterate users", err)
	}

	return users, nil
}

// UpdateLastLogin sets last_login_at to now for the given user.
func (m *MongoDB) UpdateLastLogin(ctx context.Context, username string) error {
	result, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": username},
		bson.M{"$set": bson.M{"lastLoginAt": time.Now()}},
	)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to update login timestamp", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(username)
	}
	return nil
}

func (m *MongoDB) CountUsers(ctx context.Context) (int, error) {
	n, err := m.Users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "Failed to count users", err)
	}
	return int(n), nil
}
