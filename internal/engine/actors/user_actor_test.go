package actors

import (
	"context"
	"testing"
	"time"

	"gator-post/internal/api"
	"gator-post/internal/database"
	"gator-post/internal/models"
	"gator-post/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func spawnSupervisor(t *testing.T, store database.Store) (*actor.ActorSystem, *actor.PID) {
	t.Helper()

	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserSupervisor(store, utils.NewMetricsCollector(), bcrypt.MinCost)
	})
	pid := system.Root.Spawn(props)
	return system, pid
}

func registerUser(t *testing.T, system *actor.ActorSystem, pid *actor.PID, username, password string) *models.UserSummary {
	t.Helper()

	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username:  username,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
		Phone:     "555-0100",
	}, 5*time.Second)

	result, err := future.Result()
	require.NoError(t, err)

	summary, ok := result.(*models.UserSummary)
	require.True(t, ok, "unexpected registration response: %T %v", result, result)
	return summary
}

func TestUserRegistrationAndLogin(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnSupervisor(t, store)

	summary := registerUser(t, system, pid, "testuser", "password123")
	assert.Equal(t, "testuser", summary.Username)
	assert.Equal(t, "Test", summary.FirstName)

	// The stored password is a hash, never the plaintext
	stored, err := store.GetUserByUsername(context.Background(), "testuser")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("password123")))
	assert.False(t, stored.JoinAt.IsZero())
	assert.Nil(t, stored.LastLoginAt)

	// Correct credentials log in
	loginFuture := system.Root.RequestFuture(pid, &LoginMsg{
		Username: "testuser",
		Password: "password123",
	}, 5*time.Second)

	loginResult, err := loginFuture.Result()
	require.NoError(t, err)

	loginResponse, ok := loginResult.(*api.LoginResponse)
	require.True(t, ok)
	assert.True(t, loginResponse.Success)
	assert.Equal(t, "testuser", loginResponse.Username)

	// Successful login refreshes last_login_at
	stored, err = store.GetUserByUsername(context.Background(), "testuser")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnSupervisor(t, store)

	registerUser(t, system, pid, "testuser", "password123")

	badPassword := func(msg *LoginMsg) *api.LoginResponse {
		future := system.Root.RequestFuture(pid, msg, 5*time.Second)
		result, err := future.Result()
		require.NoError(t, err)
		resp, ok := result.(*api.LoginResponse)
		require.True(t, ok)
		return resp
	}

	wrongPw := badPassword(&LoginMsg{Username: "testuser", Password: "wrongpassword"})
	unknownUser := badPassword(&LoginMsg{Username: "nosuchuser", Password: "password123"})

	assert.False(t, wrongPw.Success)
	assert.False(t, unknownUser.Success)
	// Same caller-visible error for both failure modes
	assert.Equal(t, wrongPw.Error, unknownUser.Error)

	// A failed login does not touch last_login_at
	stored, err := store.GetUserByUsername(context.Background(), "testuser")
	require.NoError(t, err)
	assert.Nil(t, stored.LastLoginAt)
}

func TestDuplicateRegistration(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnSupervisor(t, store)

	registerUser(t, system, pid, "testuser", "password123")

	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "testuser",
		Password: "different",
	}, 5*time.Second)

	result, err := future.Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected AppError, got %T", result)
	assert.Equal(t, utils.ErrDuplicate, appErr.Code)

	// Exactly one user record exists afterward
	count, err := store.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetUserProfile(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnSupervisor(t, store)

	registerUser(t, system, pid, "testuser", "password123")

	future := system.Root.RequestFuture(pid, &GetUserProfileMsg{Username: "testuser"}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	user, ok := result.(*models.User)
	require.True(t, ok)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "555-0100", user.Phone)

	missing := system.Root.RequestFuture(pid, &GetUserProfileMsg{Username: "ghost"}, 5*time.Second)
	missingResult, err := missing.Result()
	require.NoError(t, err)

	appErr, ok := missingResult.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrUserNotFound, appErr.Code)
}

func TestGetAllUsers(t *testing.T) {
	store := database.NewMemoryStore()
	system, pid := spawnSupervisor(t, store)

	registerUser(t, system, pid, "alice", "password123")
	registerUser(t, system, pid, "bob", "password456")

	future := system.Root.RequestFuture(pid, &GetAllUsersMsg{}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	summaries, ok := result.([]models.UserSummary)
	require.True(t, ok)
	require.Len(t, summaries, 2)
	assert.Equal(t, "alice", summaries[0].Username)
	assert.Equal(t, "bob", summaries[1].Username)
}
