package database

import (
	"context"

	"gator-post/internal/models"

	"github.com/google/uuid"
)

// Store defines the common interface for persistence operations.
// It allows using MongoDB or PostgreSQL as the backend.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// User methods
	SaveUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateLastLogin(ctx context.Context, username string) error
	CountUsers(ctx context.Context) (int, error)

	// Message methods
	SaveMessage(ctx context.Context, msg *models.DirectMessage) error
	GetMessage(ctx context.Context, id uuid.UUID) (*models.DirectMessage, error)
	MarkMessageRead(ctx context.Context, id uuid.UUID) (*models.DirectMessage, error)
	GetMessagesFrom(ctx context.Context, username string) ([]*models.DirectMessage, error)
	GetMessagesTo(ctx context.Context, username string) ([]*models.DirectMessage, error)
	CountMessages(ctx context.Context) (int, error)
}
