// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gator-post/internal/models"
	"gator-post/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	DB *sqlx.DB
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL!")

	return &PostgresDB{
		DB: db,
	}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	log.Println("Closing PostgreSQL connection...")
	return p.DB.Close()
}

// InitializeTables creates all necessary tables if they don't exist.
// The primary key on username carries the uniqueness guarantee for
// registration; the foreign keys on messages carry referential validity.
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			username VARCHAR(50) PRIMARY KEY,
			password TEXT NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			phone VARCHAR(30) NOT NULL,
			join_at TIMESTAMP WITH TIME ZONE NOT NULL,
			last_login_at TIMESTAMP WITH TIME ZONE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			from_username VARCHAR(50) NOT NULL REFERENCES users(username),
			to_username VARCHAR(50) NOT NULL REFERENCES users(username),
			body TEXT NOT NULL,
			sent_at TIMESTAMP WITH TIME ZONE NOT NULL,
			read_at TIMESTAMP WITH TIME ZONE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages table: %v", err)
	}

	return nil
}

// --- User Methods ---

// SaveUser inserts a new user into the database.
func (p *PostgresDB) SaveUser(ctx context.Context, user *models.User) error {
	if user.JoinAt.IsZero() {
		user.JoinAt = time.Now()
	}

	query := `
		INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		VALUES (:username, :password, :first_name, :last_name, :phone, :join_at, :last_login_at)
	`
	_, err := p.DB.NamedExecContext(ctx, query, user)
	if err != nil {
		// Duplicate key violation on the username primary key
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return utils.NewAppError(utils.ErrDuplicate, "Username already taken", err)
		}
		return utils.NewAppError(utils.ErrDatabase, "Failed to save user", err)
	}
	return nil
}

// GetUserByUsername fetches a user by their username.
func (p *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT username, password, first_name, last_name, phone, join_at, last_login_at FROM users WHERE username = $1`
	var user models.User
	err := p.DB.GetContext(ctx, &user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewUserNotFoundError(username)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to query user by username", err)
	}
	return &user, nil
}

// GetAllUsers returns all registered users.
func (p *PostgresDB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT username, password, first_name, last_name, phone, join_at, last_login_at FROM users ORDER BY username`
	var users []*models.User
	err := p.DB.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to list users", err)
	}
	if users == nil {
		users = make([]*models.User, 0)
	}
	return users, nil
}

// UpdateLastLogin sets last_login_at to now for the given user.
func (p *PostgresDB) UpdateLastLogin(ctx context.Context, username string) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE username = $1`
	result, err := p.DB.ExecContext(ctx, query, username)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to update login timestamp", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to get rows affected after update", err)
	}
	if rowsAffected == 0 {
		return utils.NewUserNotFoundError(username)
	}
	return nil
}

func (p *PostgresDB) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := p.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "Failed to count users", err)
	}
	return n, nil
}

// --- Message Methods ---

// SaveMessage inserts a new direct message.
func (p *PostgresDB) SaveMessage(ctx context.Context, msg *models.DirectMessage) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	query := `
		INSERT INTO messages (id, from_username, to_username, body, sent_at, read_at)
		VALUES (:id, :from_username, :to_username, :body, :sent_at, :read_at)
	`
	_, err := p.DB.NamedExecContext(ctx, query, msg)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to save message", err)
	}
	return nil
}

// GetMessage fetches a direct message by its ID.
func (p *PostgresDB) GetMessage(ctx context.Context, id uuid.UUID) (*models.DirectMessage, error) {
	query := `SELECT id, from_username, to_username, body, sent_at, read_at FROM messages WHERE id = $1`
	var msg models.DirectMessage
	err := p.DB.GetContext(ctx, &msg, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewMessageNotFoundError()
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to query message", err)
	}
	return &msg, nil
}

// MarkMessageRead sets read_at on an unread message. The WHERE clause keeps
// the update conditional on read_at being null, so a read timestamp is
// written exactly once even under concurrent calls. Marking an already-read
// message returns it unchanged.
func (p *PostgresDB) MarkMessageRead(ctx context.Context, id uuid.UUID) (*models.DirectMessage, error) {
	query := `
		UPDATE messages SET read_at = NOW()
		WHERE id = $1 AND read_at IS NULL
		RETURNING id, from_username, to_username, body, sent_at, read_at
	`
	var msg models.DirectMessage
	err := p.DB.GetContext(ctx, &msg, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			// Either the message does not exist or it was already read.
			return p.GetMessage(ctx, id)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to mark message read", err)
	}
	return &msg, nil
}

// GetMessagesFrom fetches all messages sent by a user, oldest first.
func (p *PostgresDB) GetMessagesFrom(ctx context.Context, username string) ([]*models.DirectMessage, error) {
	query := `SELECT id, from_username, to_username, body, sent_at, read_at FROM messages WHERE from_username = $1 ORDER BY sent_at ASC`
	return p.selectMessages(ctx, query, username)
}

// GetMessagesTo fetches all messages received by a user, oldest first.
func (p *PostgresDB) GetMessagesTo(ctx context.Context, username string) ([]*models.DirectMessage, error) {
	query := `SELECT id, from_username, to_username, body, sent_at, read_at FROM messages WHERE to_username = $1 ORDER BY sent_at ASC`
	return p.selectMessages(ctx, query, username)
}

func (p *PostgresDB) selectMessages(ctx context.Context, query string, username string) ([]*models.DirectMessage, error) {
	var messages []*models.DirectMessage
	err := p.DB.SelectContext(ctx, &messages, query, username)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to list messages", err)
	}
	if messages == nil {
		messages = make([]*models.DirectMessage, 0)
	}
	return messages, nil
}

func (p *PostgresDB) CountMessages(ctx context.Context) (int, error) {
	var n int
	if err := p.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM messages`); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "Failed to count messages", err)
	}
	return n, nil
}
