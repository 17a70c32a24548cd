// internal/database/memory.go
package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"gator-post/internal/models"
	"gator-post/internal/utils"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests. The users map plays the
// role of the unique index: inserts fail on an existing username under the
// same lock that adds the entry, so concurrent registrations behave like
// they do against a real constraint.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	messages map[uuid.UUID]*models.DirectMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*models.User),
		messages: make(map[uuid.UUID]*models.DirectMessage),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func cloneMessage(m *models.DirectMessage) *models.DirectMessage {
	c := *m
	if m.ReadAt != nil {
		t := *m.ReadAt
		c.ReadAt = &t
	}
	return &c
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return utils.NewAppError(utils.ErrDuplicate, "Username already taken", nil)
	}
	if user.JoinAt.IsZero() {
		user.JoinAt = time.Now()
	}
	s.users[user.Username] = cloneUser(user)
	return nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[username]
	if !exists {
		return nil, utils.NewUserNotFoundError(username)
	}
	return cloneUser(user), nil
}

func (s *MemoryStore) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *MemoryStore) UpdateLastLogin(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[username]
	if !exists {
		return utils.NewUserNotFoundError(username)
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *MemoryStore) SaveMessage(ctx context.Context, msg *models.DirectMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	s.messages[msg.ID] = cloneMessage(msg)
	return nil
}

func (s *MemoryStore) GetMessage(ctx context.Context, id uuid.UUID) (*models.DirectMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, exists := s.messages[id]
	if !exists {
		return nil, utils.NewMessageNotFoundError()
	}
	return cloneMessage(msg), nil
}

func (s *MemoryStore) MarkMessageRead(ctx context.Context, id uuid.UUID) (*models.DirectMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, exists := s.messages[id]
	if !exists {
		return nil, utils.NewMessageNotFoundError()
	}
	if msg.ReadAt == nil {
		now := time.Now()
		msg.ReadAt = &now
	}
	return cloneMessage(msg), nil
}

func (s *MemoryStore) GetMessagesFrom(ctx context.Context, username string) ([]*models.DirectMessage, error) {
	return s.listMessages(func(m *models.DirectMessage) bool { return m.FromUsername == username })
}

func (s *MemoryStore) GetMessagesTo(ctx context.Context, username string) ([]*models.DirectMessage, error) {
	return s.listMessages(func(m *models.DirectMessage) bool { return m.ToUsername == username })
}

func (s *MemoryStore) listMessages(match func(*models.DirectMessage) bool) ([]*models.DirectMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]*models.DirectMessage, 0)
	for _, m := range s.messages {
		if match(m) {
			messages = append(messages, cloneMessage(m))
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].SentAt.Before(messages[j].SentAt) })
	return messages, nil
}

func (s *MemoryStore) CountMessages(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages), nil
}
